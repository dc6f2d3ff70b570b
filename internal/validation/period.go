package validation

import (
	"github.com/ndewijer/Fundamentals-Simulator-Backend/internal/apperrors"
	"github.com/ndewijer/Fundamentals-Simulator-Backend/internal/model"
)

// Fiscal years outside this range are treated as data-entry mistakes rather
// than valid selections.
const (
	minFiscalYear = 1900
	maxFiscalYear = 2100
)

// ValidatePeriod checks a possibly partial period selection. Unset components
// (zero values) are allowed; set components must be in range.
func ValidatePeriod(period model.Period) error {
	if period.Year != 0 && (period.Year < minFiscalYear || period.Year > maxFiscalYear) {
		return apperrors.ErrInvalidYear
	}
	if period.Quarter != 0 && (period.Quarter < 1 || period.Quarter > 4) {
		return apperrors.ErrInvalidQuarter
	}
	return nil
}

// ValidateReplayBase checks a period intended as a simulation base quarter,
// which must be fully specified.
func ValidateReplayBase(period model.Period) error {
	if !period.Complete() {
		if err := ValidatePeriod(period); err != nil {
			return err
		}
		return apperrors.ErrIncompletePeriod
	}
	return ValidatePeriod(period)
}
