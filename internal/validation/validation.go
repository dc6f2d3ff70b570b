// Package validation provides input validation helpers shared by the service
// and API layers.
package validation

import (
	"github.com/google/uuid"

	"github.com/ndewijer/Fundamentals-Simulator-Backend/internal/apperrors"
)

// ValidateUUID checks that the provided string is a valid UUID format.
//
// Parameters:
//   - id: the string to validate
//
// Returns:
//   - error: apperrors.ErrInvalidUUID if the format is invalid, nil otherwise
func ValidateUUID(id string) error {
	if _, err := uuid.Parse(id); err != nil {
		return apperrors.ErrInvalidUUID
	}
	return nil
}
