package service

import (
	"math"
	"time"
)

// panelDateCutoff excludes statements dated at or after this day. Filings
// carrying future reference dates are data-entry noise, not observations.
var panelDateCutoff = time.Date(2025, 5, 1, 0, 0, 0, 0, time.UTC)

// nan is shorthand for the missing-value sentinel.
func nan() float64 {
	return math.NaN()
}

// isFinite reports whether v is a usable number (not NaN, not ±Inf).
func isFinite(v float64) bool {
	return !math.IsNaN(v) && !math.IsInf(v, 0)
}

// finiteOrZero maps NaN/Inf to 0. Used where the contract says a missing
// component contributes nothing, such as the DPS numerator.
func finiteOrZero(v float64) float64 {
	if isFinite(v) {
		return v
	}
	return 0
}

// safeMean returns the mean of the non-NaN values, or NaN when no value is
// usable. A group with no data must not look like a group that averaged to 0.
func safeMean(values []float64) float64 {
	sum := 0.0
	count := 0
	for _, v := range values {
		if !math.IsNaN(v) {
			sum += v
			count++
		}
	}
	if count == 0 {
		return math.NaN()
	}
	return sum / float64(count)
}

// safeSum returns the sum of the non-NaN values, or NaN when every value in
// the group is NaN. NaN entries in a partially populated group are treated as
// absent, not as zero.
func safeSum(values []float64) float64 {
	sum := 0.0
	count := 0
	for _, v := range values {
		if !math.IsNaN(v) {
			sum += v
			count++
		}
	}
	if count == 0 {
		return math.NaN()
	}
	return sum
}

// lastNonNull returns the last non-NaN value in order, or NaN when none exists.
// With values ordered by reference date this is the forward-filled carry the
// share-count aggregation requires.
func lastNonNull(values []float64) float64 {
	for i := len(values) - 1; i >= 0; i-- {
		if !math.IsNaN(values[i]) {
			return values[i]
		}
	}
	return math.NaN()
}
