package validation

import (
	"strings"

	"github.com/ndewijer/Fundamentals-Simulator-Backend/internal/apperrors"
	"github.com/ndewijer/Fundamentals-Simulator-Backend/internal/model"
)

// NormalizeTicker returns the canonical form of a ticker: trimmed and uppercased.
func NormalizeTicker(ticker string) string {
	return strings.ToUpper(strings.TrimSpace(ticker))
}

// ValidatePosition checks a portfolio position before it enters a session.
func ValidatePosition(position model.Position) error {
	if NormalizeTicker(position.Ticker) == "" {
		return apperrors.ErrEmptyTicker
	}
	if position.Quantity <= 0 {
		return apperrors.ErrNonPositiveQuantity
	}
	return nil
}
