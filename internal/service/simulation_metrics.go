package service

import (
	"math"

	"gonum.org/v1/gonum/stat"

	"github.com/ndewijer/Fundamentals-Simulator-Backend/internal/model"
)

// DeriveMetrics enriches a replay timeline with per-quarter return, cumulative
// dividend, total value, and drawdown series, and computes the aggregate risk
// metrics over the whole timeline.
//
// Quarterly return is the total return including that quarter's dividend
// cash: (value + dividends) / denominator - 1, where the denominator is the
// prior quarter's ex-dividend value (the initial value for the first
// quarter). A denominator that is NaN or not strictly positive yields a NaN
// return for that quarter; NaN returns are skipped by every aggregate below
// rather than poisoning it.
//
// Aggregates:
//   - annualized volatility: population standard deviation of the finite
//     quarterly returns, scaled by sqrt(4); NaN with fewer than two finite
//     returns
//   - hit ratio: share of finite returns that are strictly positive; NaN with
//     no finite return
//   - max drawdown: most negative value/runningPeak - 1 over the timeline;
//     NaN when no drawdown is computable
func DeriveMetrics(timeline []model.QuarterSnapshot, initialValue float64) ([]model.EnrichedSnapshot, float64, float64, float64) {
	enriched := make([]model.EnrichedSnapshot, 0, len(timeline))

	finiteReturns := []float64{}
	positiveReturns := 0
	cumulativeDividends := 0.0
	runningPeak := math.NaN()
	maxDrawdown := math.NaN()
	denominator := initialValue

	for _, snapshot := range timeline {
		quarterReturn := math.NaN()
		if isFinite(denominator) && denominator > 0 {
			quarterReturn = (snapshot.Value+snapshot.Dividends)/denominator - 1
		}
		if isFinite(quarterReturn) {
			finiteReturns = append(finiteReturns, quarterReturn)
			if quarterReturn > 0 {
				positiveReturns++
			}
		}
		denominator = snapshot.Value

		if isFinite(snapshot.Dividends) {
			cumulativeDividends += snapshot.Dividends
		}

		drawdown := math.NaN()
		if isFinite(snapshot.Value) {
			if !isFinite(runningPeak) || snapshot.Value > runningPeak {
				runningPeak = snapshot.Value
			}
			if runningPeak > 0 {
				drawdown = snapshot.Value/runningPeak - 1
			}
		}
		if isFinite(drawdown) && (!isFinite(maxDrawdown) || drawdown < maxDrawdown) {
			maxDrawdown = drawdown
		}

		enriched = append(enriched, model.EnrichedSnapshot{
			QuarterSnapshot:     snapshot,
			Return:              quarterReturn,
			CumulativeDividends: cumulativeDividends,
			TotalValue:          snapshot.Value + cumulativeDividends,
			Drawdown:            drawdown,
		})
	}

	volatility := math.NaN()
	if len(finiteReturns) >= 2 {
		volatility = stat.PopStdDev(finiteReturns, nil) * math.Sqrt(quartersPerYear)
	}

	hitRatio := math.NaN()
	if len(finiteReturns) >= 1 {
		hitRatio = float64(positiveReturns) / float64(len(finiteReturns))
	}

	return enriched, volatility, hitRatio, maxDrawdown
}
