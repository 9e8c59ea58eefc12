package optimizer

import (
	"database/sql"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog"

	"github.com/fundline/allocator/internal/database/repositories"
	"github.com/fundline/allocator/internal/domain"
)

// RunSummary is the persisted header of one optimizer run
type RunSummary struct {
	ID             string    `json:"id"`
	CreatedAt      time.Time `json:"created_at"`
	Status         RunStatus `json:"status"`
	AUMTotal       float64   `json:"aum_total"`
	TargetTerm     *int      `json:"target_term,omitempty"`
	PoolSize       int       `json:"pool_size"`
	SelectedCount  int       `json:"selected_count"`
	SelectedAmount float64   `json:"selected_amount"`
}

// StoredRun is a persisted run with its full audit trail
type StoredRun struct {
	RunSummary
	Rows []AuditRow `json:"rows"`
}

// Repository persists optimizer runs and their audit rows
type Repository struct {
	*repositories.BaseRepository
}

// NewRepository creates a run repository
func NewRepository(db *sql.DB, log zerolog.Logger) *Repository {
	return &Repository{
		BaseRepository: repositories.NewBase(db, log.With().Str("repository", "optimizer_runs").Logger()),
	}
}

// SaveRun stores a run and all of its audit rows in one transaction and
// returns the generated run ID
func (r *Repository) SaveRun(req Request, result *Result) (string, error) {
	runID := uuid.NewString()
	now := time.Now().UTC()

	tx, err := r.DB().Begin()
	if err != nil {
		return "", fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback()

	_, err = tx.Exec(`
		INSERT INTO optimizer_runs
			(id, created_at, status, aum_total, target_term, pool_size, selected_count, selected_amount)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?)`,
		runID, now, string(result.Status), req.AUMTotal, nullableInt(req.TargetTerm),
		len(req.Candidates), result.SelectedCount, result.SelectedAmount,
	)
	if err != nil {
		return "", fmt.Errorf("failed to insert run: %w", err)
	}

	stmt, err := tx.Prepare(`
		INSERT INTO optimizer_audit_rows
			(run_id, position, candidate_id, input_index, amount, apr, term,
			 customer_id, industry, payer_rank, apr_bucket, line_bucket,
			 payer_bucket, score, selected, reason, cumulative_amount)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`)
	if err != nil {
		return "", fmt.Errorf("failed to prepare audit insert: %w", err)
	}
	defer stmt.Close()

	for position, row := range result.Rows {
		c := row.Candidate
		_, err = stmt.Exec(
			runID, position, c.ID, row.InputIndex, c.Amount, c.APR, nullableInt(c.Term),
			c.CustomerID, c.Industry, c.PayerRank, row.APRBucket, row.LineBucket,
			row.PayerBucket, row.Score, row.Selected, row.Reason, nullableFloat(row.CumulativeAmount),
		)
		if err != nil {
			return "", fmt.Errorf("failed to insert audit row %d: %w", position, err)
		}
	}

	if err := tx.Commit(); err != nil {
		return "", fmt.Errorf("failed to commit run: %w", err)
	}

	return runID, nil
}

// GetRun loads one run with its audit rows, or (nil, nil) when not found
func (r *Repository) GetRun(runID string) (*StoredRun, error) {
	var run StoredRun
	var status string
	var targetTerm sql.NullInt64

	err := r.DB().QueryRow(`
		SELECT id, created_at, status, aum_total, target_term, pool_size, selected_count, selected_amount
		FROM optimizer_runs WHERE id = ?`, runID,
	).Scan(&run.ID, &run.CreatedAt, &status, &run.AUMTotal, &targetTerm,
		&run.PoolSize, &run.SelectedCount, &run.SelectedAmount)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to query run: %w", err)
	}
	run.Status = RunStatus(status)
	if targetTerm.Valid {
		term := int(targetTerm.Int64)
		run.TargetTerm = &term
	}

	rows, err := r.DB().Query(`
		SELECT candidate_id, input_index, amount, apr, term, customer_id,
		       industry, payer_rank, apr_bucket, line_bucket, payer_bucket,
		       score, selected, reason, cumulative_amount
		FROM optimizer_audit_rows WHERE run_id = ? ORDER BY position`, runID)
	if err != nil {
		return nil, fmt.Errorf("failed to query audit rows: %w", err)
	}
	defer rows.Close()

	for rows.Next() {
		var row AuditRow
		var c domain.Candidate
		var term sql.NullInt64
		var cumulative sql.NullFloat64

		err := rows.Scan(&c.ID, &row.InputIndex, &c.Amount, &c.APR, &term,
			&c.CustomerID, &c.Industry, &c.PayerRank, &row.APRBucket,
			&row.LineBucket, &row.PayerBucket, &row.Score, &row.Selected,
			&row.Reason, &cumulative)
		if err != nil {
			return nil, fmt.Errorf("failed to scan audit row: %w", err)
		}
		if term.Valid {
			t := int(term.Int64)
			c.Term = &t
		}
		if cumulative.Valid {
			v := cumulative.Float64
			row.CumulativeAmount = &v
		}
		row.Candidate = c
		run.Rows = append(run.Rows, row)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating audit rows: %w", err)
	}

	return &run, nil
}

// ListRuns returns the most recent run summaries, newest first
func (r *Repository) ListRuns(limit int) ([]RunSummary, error) {
	if limit <= 0 {
		limit = 50
	}

	rows, err := r.DB().Query(`
		SELECT id, created_at, status, aum_total, target_term, pool_size, selected_count, selected_amount
		FROM optimizer_runs ORDER BY created_at DESC LIMIT ?`, limit)
	if err != nil {
		return nil, fmt.Errorf("failed to query runs: %w", err)
	}
	defer rows.Close()

	var summaries []RunSummary
	for rows.Next() {
		var summary RunSummary
		var status string
		var targetTerm sql.NullInt64

		err := rows.Scan(&summary.ID, &summary.CreatedAt, &status, &summary.AUMTotal,
			&targetTerm, &summary.PoolSize, &summary.SelectedCount, &summary.SelectedAmount)
		if err != nil {
			return nil, fmt.Errorf("failed to scan run: %w", err)
		}
		summary.Status = RunStatus(status)
		if targetTerm.Valid {
			term := int(targetTerm.Int64)
			summary.TargetTerm = &term
		}
		summaries = append(summaries, summary)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating runs: %w", err)
	}

	return summaries, nil
}

// DeleteOlderThan removes runs created before the cutoff and returns how
// many were deleted. Audit rows go with their run via ON DELETE CASCADE.
func (r *Repository) DeleteOlderThan(cutoff time.Time) (int64, error) {
	result, err := r.DB().Exec(`DELETE FROM optimizer_runs WHERE created_at < ?`, cutoff)
	if err != nil {
		return 0, fmt.Errorf("failed to delete expired runs: %w", err)
	}
	deleted, err := result.RowsAffected()
	if err != nil {
		return 0, fmt.Errorf("failed to count deleted runs: %w", err)
	}
	return deleted, nil
}

func nullableInt(v *int) interface{} {
	if v == nil {
		return nil
	}
	return *v
}

func nullableFloat(v *float64) interface{} {
	if v == nil {
		return nil
	}
	return *v
}
