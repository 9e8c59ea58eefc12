package scheduler

import (
	"path/filepath"
	"testing"
	"time"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/fundline/allocator/internal/database"
	"github.com/fundline/allocator/internal/domain"
	"github.com/fundline/allocator/internal/modules/optimizer"
)

func TestRetentionJob_Run(t *testing.T) {
	db, err := database.New(filepath.Join(t.TempDir(), "test.db"))
	require.NoError(t, err)
	t.Cleanup(func() { db.Close() })
	require.NoError(t, db.Migrate())

	repo := optimizer.NewRepository(db.Conn(), zerolog.Nop())

	svc, err := optimizer.NewService(optimizer.DefaultBands(), nil, zerolog.Nop())
	require.NoError(t, err)

	req := optimizer.Request{
		AUMTotal: 1000,
		Candidates: []domain.Candidate{
			{ID: "a", Amount: 500, APR: 0.08, CustomerID: "ob-1", Industry: "retail"},
		},
	}
	result, err := svc.Run(req)
	require.NoError(t, err)

	runID, err := repo.SaveRun(req, result)
	require.NoError(t, err)

	// Fresh run survives a sweep with a generous retention window
	job := NewRetentionJob(repo, nil, 30, zerolog.Nop())
	require.NoError(t, job.Run())

	stored, err := repo.GetRun(runID)
	require.NoError(t, err)
	assert.NotNil(t, stored)

	// Backdate the run past the horizon and sweep again
	_, err = db.Exec(`UPDATE optimizer_runs SET created_at = ? WHERE id = ?`,
		time.Now().UTC().AddDate(0, 0, -31), runID)
	require.NoError(t, err)

	require.NoError(t, job.Run())

	stored, err = repo.GetRun(runID)
	require.NoError(t, err)
	assert.Nil(t, stored)
}

func TestRetentionJob_Name(t *testing.T) {
	job := NewRetentionJob(nil, nil, 30, zerolog.Nop())
	assert.Equal(t, "run_retention", job.Name())
}
