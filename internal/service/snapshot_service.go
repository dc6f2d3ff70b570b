package service

import (
	"fmt"

	"github.com/ndewijer/Fundamentals-Simulator-Backend/internal/apperrors"
	"github.com/ndewijer/Fundamentals-Simulator-Backend/internal/model"
	"github.com/ndewijer/Fundamentals-Simulator-Backend/internal/repository"
)

// SnapshotService serves the screening view: each ticker's latest statement
// record within an optional period, sector, and search filter.
type SnapshotService struct {
	recordRepo *repository.RecordRepository
}

// NewSnapshotService creates a new SnapshotService with the provided repository.
func NewSnapshotService(recordRepo *repository.RecordRepository) *SnapshotService {
	return &SnapshotService{recordRepo: recordRepo}
}

// LatestSnapshot returns, per ticker, the most recent statement record
// matching the filter. A quarter filter without a year is rejected; a bare
// quarter is ambiguous across years.
func (s *SnapshotService) LatestSnapshot(filter model.SnapshotFilter) ([]model.StatementRecord, error) {
	if filter.Quarter != 0 {
		if filter.Quarter < 1 || filter.Quarter > 4 {
			return nil, apperrors.ErrInvalidQuarter
		}
		if filter.Year == 0 {
			return nil, apperrors.ErrInvalidYear
		}
	}

	records, err := s.recordRepo.GetLatestRecords(filter)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", apperrors.ErrFailedToRetrieveRecords, err)
	}
	return records, nil
}
