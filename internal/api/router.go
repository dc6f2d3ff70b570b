package api

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"

	"github.com/ndewijer/Fundamentals-Simulator-Backend/internal/api/handlers"
	custommiddleware "github.com/ndewijer/Fundamentals-Simulator-Backend/internal/api/middleware"
	"github.com/ndewijer/Fundamentals-Simulator-Backend/internal/config"
	"github.com/ndewijer/Fundamentals-Simulator-Backend/internal/service"
)

// Services bundles everything the router wires into handlers.
type Services struct {
	System     *service.SystemService
	Settings   *service.SettingsService
	Import     *service.ImportService
	Snapshot   *service.SnapshotService
	Panel      *service.PanelService
	Simulation *service.SimulationService
	Session    *service.SessionService
	History    *service.HistoryService
}

// NewRouter creates and configures the HTTP router
func NewRouter(services Services, cfg *config.Config) http.Handler {
	r := chi.NewRouter()

	// Global middleware
	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	r.Use(custommiddleware.Logger)
	r.Use(middleware.Recoverer)

	// CORS middleware
	corsMiddleware := custommiddleware.NewCORS(cfg.CORS.AllowedOrigins)
	r.Use(corsMiddleware.Handler)

	// API routes
	r.Route("/api", func(r chi.Router) {
		// System namespace
		r.Route("/system", func(r chi.Router) {
			systemHandler := handlers.NewSystemHandler(services.System, services.Settings)
			r.Get("/health", systemHandler.Health)
			r.Get("/version", systemHandler.Version)
			r.With(custommiddleware.APIKeyMiddleware).Put("/feed-token", systemHandler.SetFeedToken)
		})

		// Statement records: ingestion and screening
		r.Route("/records", func(r chi.Router) {
			recordsHandler := handlers.NewRecordsHandler(services.Import, services.Snapshot)
			r.Get("/snapshot", recordsHandler.Snapshot)
			r.With(custommiddleware.APIKeyMiddleware).Post("/import", recordsHandler.Import)
			r.With(custommiddleware.APIKeyMiddleware).Post("/refresh", recordsHandler.Refresh)
		})

		// Quarterly panel
		r.Route("/panel", func(r chi.Router) {
			panelHandler := handlers.NewPanelHandler(services.Panel)
			r.Get("/", panelHandler.Panel)
			r.Get("/quarters", panelHandler.Quarters)
			r.With(custommiddleware.APIKeyMiddleware).Post("/rebuild", panelHandler.Rebuild)
		})

		// Portfolio replay
		r.Route("/simulation", func(r chi.Router) {
			simulationHandler := handlers.NewSimulationHandler(services.Simulation, services.Session)
			r.Post("/run", simulationHandler.Run)
		})

		// Interactive sessions
		r.Route("/session", func(r chi.Router) {
			sessionHandler := handlers.NewSessionHandler(services.Session)
			r.Post("/", sessionHandler.Create)
			r.Route("/{sessionId}", func(r chi.Router) {
				r.Get("/", sessionHandler.Get)
				r.Put("/period", sessionHandler.SetPeriod)
				r.Post("/positions", sessionHandler.AddPosition)
				r.Delete("/positions", sessionHandler.ClearPortfolio)
				r.Delete("/positions/{ticker}", sessionHandler.RemovePosition)
			})
		})

		// Run history
		r.Route("/history", func(r chi.Router) {
			historyHandler := handlers.NewHistoryHandler(services.History)
			r.Get("/", historyHandler.List)
			r.Route("/{uuid}", func(r chi.Router) {
				r.Use(custommiddleware.ValidateUUIDMiddleware)
				r.Delete("/", historyHandler.Delete)
			})
		})
	})

	return r
}
