package main

import (
	"context"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/ndewijer/Fundamentals-Simulator-Backend/internal/api"
	"github.com/ndewijer/Fundamentals-Simulator-Backend/internal/config"
	"github.com/ndewijer/Fundamentals-Simulator-Backend/internal/database"
	"github.com/ndewijer/Fundamentals-Simulator-Backend/internal/feed"
	"github.com/ndewijer/Fundamentals-Simulator-Backend/internal/repository"
	"github.com/ndewijer/Fundamentals-Simulator-Backend/internal/scheduler"
	"github.com/ndewijer/Fundamentals-Simulator-Backend/internal/service"
)

func main() {
	// Load configuration
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("Failed to load configuration: %v", err)
	}

	// Open database connection
	db, err := database.Open(cfg.Database.Path)
	if err != nil {
		log.Fatalf("Failed to open database: %v", err)
	}
	defer db.Close()

	log.Printf("Connected to database: %s", cfg.Database.Path)

	// Apply schema migrations
	if err := database.Migrate(db); err != nil {
		log.Fatalf("Failed to apply migrations: %v", err)
	}

	// Create repositories
	recordRepo := repository.NewRecordRepository(db)
	panelRepo := repository.NewPanelRepository(db)
	historyRepo := repository.NewHistoryRepository(db)
	settingsRepo := repository.NewSettingsRepository(db)

	// Create services
	systemService := service.NewSystemService(db)
	settingsService, err := service.NewSettingsService(settingsRepo, cfg.Security.FernetKey)
	if err != nil {
		log.Fatalf("Failed to initialize settings service: %v", err)
	}
	panelService := service.NewPanelService(recordRepo, panelRepo)
	historyService := service.NewHistoryService(historyRepo)
	simulationService := service.NewSimulationService(panelRepo, historyService)
	snapshotService := service.NewSnapshotService(recordRepo)
	sessionService := service.NewSessionService()

	var feedClient *feed.Client
	if cfg.Feed.URL != "" {
		feedClient = feed.NewClient(cfg.Feed.URL)
	}
	importService := service.NewImportService(recordRepo, panelService, feedClient, settingsService)

	// Schedule the nightly feed refresh when a feed is configured
	if feedClient != nil {
		sched := scheduler.New(importService)
		if err := sched.Start(cfg.Feed.Schedule); err != nil {
			log.Fatalf("Failed to start feed scheduler: %v", err)
		}
		defer sched.Stop()
		log.Printf("Scheduled feed refresh: %s", cfg.Feed.Schedule)
	}

	// Create router
	router := api.NewRouter(api.Services{
		System:     systemService,
		Settings:   settingsService,
		Import:     importService,
		Snapshot:   snapshotService,
		Panel:      panelService,
		Simulation: simulationService,
		Session:    sessionService,
		History:    historyService,
	}, cfg)

	// Create HTTP server
	server := &http.Server{
		Addr:         cfg.Server.Addr,
		Handler:      router,
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 15 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	// Start server in a goroutine
	go func() {
		log.Printf("Starting server on %s", cfg.Server.Addr)
		if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatalf("Server failed to start: %v", err)
		}
	}()

	// Wait for interrupt signal for graceful shutdown
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	log.Println("Shutting down server...")

	// Graceful shutdown with timeout
	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	if err := server.Shutdown(ctx); err != nil {
		log.Fatalf("Server forced to shutdown: %v", err)
	}

	log.Println("Server exited")
}
