package service

import (
	"database/sql"
	"fmt"

	"github.com/ndewijer/Fundamentals-Simulator-Backend/internal/database"
	"github.com/ndewijer/Fundamentals-Simulator-Backend/internal/model"
	"github.com/ndewijer/Fundamentals-Simulator-Backend/internal/version"
)

// SystemService provides system health and version reporting.
type SystemService struct {
	db *sql.DB
}

// NewSystemService creates a new SystemService with the provided database handle.
func NewSystemService(db *sql.DB) *SystemService {
	return &SystemService{db: db}
}

// CheckHealth verifies database connectivity.
func (s *SystemService) CheckHealth() error {
	if err := database.HealthCheck(s.db); err != nil {
		return fmt.Errorf("health check failed: %w", err)
	}
	return nil
}

// CheckVersion returns the application version and the applied migration version.
func (s *SystemService) CheckVersion() (model.VersionInfo, error) {
	dbVersion, err := database.SchemaVersion(s.db)
	if err != nil {
		return model.VersionInfo{}, fmt.Errorf("failed to read schema version: %w", err)
	}

	return model.VersionInfo{
		AppVersion: version.Version,
		DBVersion:  fmt.Sprintf("%d", dbVersion),
	}, nil
}
