package testutil

import (
	"database/sql"
	"testing"

	"github.com/ndewijer/Fundamentals-Simulator-Backend/internal/repository"
	"github.com/ndewijer/Fundamentals-Simulator-Backend/internal/service"
)

func NewTestPanelService(t *testing.T, db *sql.DB) *service.PanelService {
	t.Helper()

	recordRepo := repository.NewRecordRepository(db)
	panelRepo := repository.NewPanelRepository(db)

	return service.NewPanelService(
		recordRepo,
		panelRepo,
	)
}

func NewTestHistoryService(t *testing.T, db *sql.DB) *service.HistoryService {
	t.Helper()

	historyRepo := repository.NewHistoryRepository(db)

	return service.NewHistoryService(
		historyRepo,
	)
}

func NewTestSimulationService(t *testing.T, db *sql.DB) *service.SimulationService {
	t.Helper()

	panelRepo := repository.NewPanelRepository(db)

	return service.NewSimulationService(
		panelRepo,
		NewTestHistoryService(t, db),
	)
}

func NewTestSnapshotService(t *testing.T, db *sql.DB) *service.SnapshotService {
	t.Helper()

	recordRepo := repository.NewRecordRepository(db)

	return service.NewSnapshotService(
		recordRepo,
	)
}

func NewTestSystemService(t *testing.T, db *sql.DB) *service.SystemService {
	t.Helper()

	return service.NewSystemService(db)
}

// TestFernetKey is a throwaway base64 fernet key for settings tests.
const TestFernetKey = "cOIeTu7pEMS8SNCCvsq628Hm5ePcY9nnh4dGMp7IXBo="

func NewTestSettingsService(t *testing.T, db *sql.DB) *service.SettingsService {
	t.Helper()

	settingsRepo := repository.NewSettingsRepository(db)

	svc, err := service.NewSettingsService(settingsRepo, TestFernetKey)
	if err != nil {
		t.Fatalf("Failed to create test settings service: %v", err)
	}
	return svc
}

func NewTestImportService(t *testing.T, db *sql.DB) *service.ImportService {
	t.Helper()

	recordRepo := repository.NewRecordRepository(db)

	return service.NewImportService(
		recordRepo,
		NewTestPanelService(t, db),
		nil,
		nil,
	)
}
