// Package scheduler runs the periodic statement feed refresh.
package scheduler

import (
	"context"
	"fmt"
	"log"
	"time"

	"github.com/robfig/cron/v3"

	"github.com/ndewijer/Fundamentals-Simulator-Backend/internal/service"
)

// refreshTimeout bounds one feed refresh, download and rebuild included.
const refreshTimeout = 10 * time.Minute

// Scheduler owns the cron runner for the feed refresh job.
type Scheduler struct {
	cron          *cron.Cron
	importService *service.ImportService
}

// New creates a scheduler around the given import service.
func New(importService *service.ImportService) *Scheduler {
	return &Scheduler{
		cron:          cron.New(),
		importService: importService,
	}
}

// Start registers the refresh job with the given cron schedule and starts the
// runner. The job logs outcomes; a failed refresh leaves the previous data in
// place and waits for the next tick.
func (s *Scheduler) Start(schedule string) error {
	_, err := s.cron.AddFunc(schedule, func() {
		ctx, cancel := context.WithTimeout(context.Background(), refreshTimeout)
		defer cancel()

		records, panelRows, err := s.importService.RefreshFromFeed(ctx)
		if err != nil {
			log.Printf("scheduled feed refresh failed: %v", err)
			return
		}
		log.Printf("scheduled feed refresh imported %d records, %d panel rows", records, panelRows)
	})
	if err != nil {
		return fmt.Errorf("failed to register feed refresh job: %w", err)
	}

	s.cron.Start()
	return nil
}

// Stop stops the cron runner and waits for a running job to finish.
func (s *Scheduler) Stop() {
	ctx := s.cron.Stop()
	<-ctx.Done()
}
