package repository

import (
	"database/sql"
	"fmt"
	"time"

	"github.com/ndewijer/Fundamentals-Simulator-Backend/internal/apperrors"
	"github.com/ndewijer/Fundamentals-Simulator-Backend/internal/model"
)

// HistoryRepository provides data access methods for the simulation_run table.
// Runs are deduplicated by run_key: a later write with the same key replaces
// the earlier record instead of appending.
type HistoryRepository struct {
	db *sql.DB
}

// NewHistoryRepository creates a new repository instance.
func NewHistoryRepository(db *sql.DB) *HistoryRepository {
	return &HistoryRepository{db: db}
}

// SaveRun inserts a run record, replacing any existing record with the same
// run_key. The original row's primary key is kept on replace so external
// references stay stable.
func (r *HistoryRepository) SaveRun(run model.SimulationRun) error {
	query := `
		INSERT INTO simulation_run
			(id, sim_id, run_key, created_at, base_year, base_quarter,
			 end_year, end_quarter, tickers, n_tickers, initial_value,
			 final_value, accrued_dividends, total_return, return_ex_dividends,
			 cagr, annualized_volatility, hit_ratio, max_drawdown)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
		ON CONFLICT(run_key) DO UPDATE SET
			sim_id = excluded.sim_id,
			created_at = excluded.created_at,
			end_year = excluded.end_year,
			end_quarter = excluded.end_quarter,
			tickers = excluded.tickers,
			n_tickers = excluded.n_tickers,
			initial_value = excluded.initial_value,
			final_value = excluded.final_value,
			accrued_dividends = excluded.accrued_dividends,
			total_return = excluded.total_return,
			return_ex_dividends = excluded.return_ex_dividends,
			cagr = excluded.cagr,
			annualized_volatility = excluded.annualized_volatility,
			hit_ratio = excluded.hit_ratio,
			max_drawdown = excluded.max_drawdown
	`

	_, err := r.db.Exec(query,
		run.ID,
		run.SimID,
		run.RunKey,
		run.CreatedAt.UTC().Format("2006-01-02 15:04:05"),
		run.BaseYear,
		run.BaseQuarter,
		run.EndYear,
		run.EndQuarter,
		run.Tickers,
		run.NumTickers,
		run.InitialValue,
		run.FinalValue,
		run.AccruedDividends,
		NullFloat(run.TotalReturn),
		NullFloat(run.ReturnExDividends),
		NullFloat(run.CAGR),
		NullFloat(run.AnnualizedVolatility),
		NullFloat(run.HitRatio),
		NullFloat(run.MaxDrawdown),
	)
	if err != nil {
		return fmt.Errorf("failed to upsert simulation run: %w", err)
	}

	return nil
}

// GetRuns retrieves all recorded runs, newest first.
func (r *HistoryRepository) GetRuns() ([]model.SimulationRun, error) {
	query := `
		SELECT id, sim_id, run_key, created_at, base_year, base_quarter,
		       end_year, end_quarter, tickers, n_tickers, initial_value,
		       final_value, accrued_dividends, total_return, return_ex_dividends,
		       cagr, annualized_volatility, hit_ratio, max_drawdown
		FROM simulation_run
		ORDER BY created_at DESC, sim_id DESC
	`

	rows, err := r.db.Query(query)
	if err != nil {
		return nil, fmt.Errorf("failed to query simulation_run: %w", err)
	}
	defer rows.Close()

	runs := []model.SimulationRun{}

	for rows.Next() {
		var run model.SimulationRun
		var createdAtStr string
		var totalReturn, retExDiv, cagr, vol, hit, maxDD sql.NullFloat64

		err := rows.Scan(
			&run.ID,
			&run.SimID,
			&run.RunKey,
			&createdAtStr,
			&run.BaseYear,
			&run.BaseQuarter,
			&run.EndYear,
			&run.EndQuarter,
			&run.Tickers,
			&run.NumTickers,
			&run.InitialValue,
			&run.FinalValue,
			&run.AccruedDividends,
			&totalReturn,
			&retExDiv,
			&cagr,
			&vol,
			&hit,
			&maxDD,
		)
		if err != nil {
			return nil, fmt.Errorf("failed to scan simulation run: %w", err)
		}

		run.CreatedAt, err = parseTimestamp(createdAtStr)
		if err != nil {
			return nil, fmt.Errorf("failed to parse created_at: %w", err)
		}

		run.TotalReturn = FloatOrNaN(totalReturn)
		run.ReturnExDividends = FloatOrNaN(retExDiv)
		run.CAGR = FloatOrNaN(cagr)
		run.AnnualizedVolatility = FloatOrNaN(vol)
		run.HitRatio = FloatOrNaN(hit)
		run.MaxDrawdown = FloatOrNaN(maxDD)

		runs = append(runs, run)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating simulation runs: %w", err)
	}

	return runs, nil
}

// DeleteRun removes a run by primary key. Returns ErrRunNotFound when no row matched.
func (r *HistoryRepository) DeleteRun(id string) error {
	result, err := r.db.Exec("DELETE FROM simulation_run WHERE id = ?", id)
	if err != nil {
		return fmt.Errorf("failed to delete simulation run: %w", err)
	}

	affected, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to read affected rows: %w", err)
	}
	if affected == 0 {
		return apperrors.ErrRunNotFound
	}

	return nil
}

// parseTimestamp parses the stored "2006-01-02 15:04:05" timestamp format,
// falling back to the date-only and RFC3339 forms ParseTime accepts.
func parseTimestamp(str string) (time.Time, error) {
	if t, err := time.Parse("2006-01-02 15:04:05", str); err == nil {
		return t.UTC(), nil
	}
	return ParseTime(str)
}
