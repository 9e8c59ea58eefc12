package scheduler

import (
	"time"

	"github.com/rs/zerolog"

	"github.com/fundline/allocator/internal/events"
	"github.com/fundline/allocator/internal/modules/optimizer"
)

// RetentionJob purges persisted optimizer runs older than the configured
// horizon. Selection semantics never depend on stored runs, so deleting
// them is always safe.
type RetentionJob struct {
	log           zerolog.Logger
	repo          *optimizer.Repository
	events        *events.Manager
	retentionDays int
}

// NewRetentionJob creates a retention job
func NewRetentionJob(repo *optimizer.Repository, ev *events.Manager, retentionDays int, log zerolog.Logger) *RetentionJob {
	return &RetentionJob{
		log:           log.With().Str("job", "run_retention").Logger(),
		repo:          repo,
		events:        ev,
		retentionDays: retentionDays,
	}
}

// Name returns the job name
func (j *RetentionJob) Name() string {
	return "run_retention"
}

// Run deletes expired runs
func (j *RetentionJob) Run() error {
	cutoff := time.Now().UTC().AddDate(0, 0, -j.retentionDays)

	deleted, err := j.repo.DeleteOlderThan(cutoff)
	if err != nil {
		j.log.Error().Err(err).Msg("Retention sweep failed")
		return err
	}

	j.log.Info().
		Int64("deleted", deleted).
		Time("cutoff", cutoff).
		Msg("Retention sweep completed")

	if j.events != nil {
		j.events.Emit(events.RetentionSweep, "scheduler", map[string]interface{}{
			"deleted": deleted,
			"cutoff":  cutoff.Format(time.RFC3339),
		})
	}

	return nil
}
