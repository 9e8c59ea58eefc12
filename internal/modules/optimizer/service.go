package optimizer

import (
	"fmt"
	"math"

	"github.com/rs/zerolog"

	"github.com/fundline/allocator/internal/domain"
	"github.com/fundline/allocator/internal/events"
)

// Request carries everything one optimizer run needs. Candidates are
// treated as read-only; the run is a pure function of this struct.
type Request struct {
	Candidates []domain.Candidate `json:"candidates"`
	AUMTotal   float64            `json:"aum_total"`
	TargetTerm *int               `json:"target_term,omitempty"`
	Rules      RuleSet            `json:"rules,omitempty"`
	Weights    *WeightSet         `json:"weights,omitempty"`
}

// Service orchestrates one optimizer invocation: row validation,
// bucketing, scoring, ranking, and the greedy selection pass
type Service struct {
	bucketizer *Bucketizer
	events     *events.Manager
	log        zerolog.Logger
}

// NewService creates an optimizer service with the given bands
func NewService(bands BandConfig, ev *events.Manager, log zerolog.Logger) (*Service, error) {
	bucketizer, err := NewBucketizer(bands)
	if err != nil {
		return nil, err
	}
	return &Service{
		bucketizer: bucketizer,
		events:     ev,
		log:        log.With().Str("service", "optimizer").Logger(),
	}, nil
}

// Run executes one full optimizer pass. Configuration errors are returned
// before any candidate is processed; per-row validation failures become
// flagged audit rows instead of errors.
func (s *Service) Run(req Request) (*Result, error) {
	if math.IsNaN(req.AUMTotal) || math.IsInf(req.AUMTotal, 0) || req.AUMTotal <= 0 {
		return nil, fmt.Errorf("%w: aum_total must be a positive finite number, got %v", ErrConfig, req.AUMTotal)
	}
	if req.TargetTerm != nil && *req.TargetTerm <= 0 {
		return nil, fmt.Errorf("%w: target_term must be positive, got %d", ErrConfig, *req.TargetTerm)
	}

	limits, err := NormalizeRules(req.Rules)
	if err != nil {
		return nil, err
	}

	weights := DefaultWeights()
	if req.Weights != nil {
		weights = *req.Weights
	}
	if err := weights.Validate(); err != nil {
		return nil, err
	}

	valid, invalid := splitValidCandidates(req.Candidates)

	stats := ComputePoolStats(validOnly(valid))
	scorer := NewScorer(weights, req.TargetTerm, stats)

	pool := make([]scoredCandidate, len(valid))
	for i, vc := range valid {
		aprBucket, lineBucket, payerBucket := s.bucketizer.Bucket(vc.candidate)
		pool[i] = scoredCandidate{
			Candidate:   vc.candidate,
			InputIndex:  vc.inputIndex,
			APRBucket:   aprBucket,
			LineBucket:  lineBucket,
			PayerBucket: payerBucket,
			Score:       scorer.Score(vc.candidate),
		}
	}

	selector := NewSelector(req.AUMTotal, limits, s.log)
	rows, status := selector.Run(Rank(pool))
	rows = append(rows, invalid...)

	result := &Result{
		Status: status,
		Rows:   rows,
	}
	for _, row := range rows {
		if row.Selected {
			result.SelectedCount++
			result.SelectedAmount += row.Candidate.Amount
		}
	}

	s.log.Info().
		Str("status", string(status)).
		Int("pool_size", len(req.Candidates)).
		Int("invalid", len(invalid)).
		Int("selected", result.SelectedCount).
		Float64("selected_amount", result.SelectedAmount).
		Float64("aum_total", req.AUMTotal).
		Float64("pool_apr_mean", stats.MeanAPR).
		Float64("pool_apr_stddev", stats.StdDevAPR).
		Msg("Optimizer run completed")

	if s.events != nil {
		s.events.Emit(events.RunCompleted, "optimizer", map[string]interface{}{
			"status":          string(status),
			"pool_size":       len(req.Candidates),
			"selected":        result.SelectedCount,
			"selected_amount": result.SelectedAmount,
		})
	}

	return result, nil
}

type validCandidate struct {
	candidate  domain.Candidate
	inputIndex int
}

// splitValidCandidates separates candidates with well-formed numeric fields
// from ones that can never enter the ranked pool. Invalid candidates come
// back as ready-made audit rows carrying a reason code.
func splitValidCandidates(candidates []domain.Candidate) ([]validCandidate, []AuditRow) {
	var valid []validCandidate
	var invalid []AuditRow

	for i, c := range candidates {
		reason := ""
		switch {
		case math.IsNaN(c.Amount) || math.IsInf(c.Amount, 0) || c.Amount <= 0:
			reason = domain.ReasonInvalidAmount
		case math.IsNaN(c.APR) || math.IsInf(c.APR, 0) || c.APR < 0:
			reason = domain.ReasonInvalidAPR
		case c.CustomerID == "":
			reason = domain.ReasonMissingID
		}

		if reason != "" {
			invalid = append(invalid, AuditRow{
				Candidate:  c,
				InputIndex: i,
				Selected:   false,
				Reason:     reason,
			})
			continue
		}
		valid = append(valid, validCandidate{candidate: c, inputIndex: i})
	}

	return valid, invalid
}

func validOnly(valid []validCandidate) []domain.Candidate {
	out := make([]domain.Candidate, len(valid))
	for i, vc := range valid {
		out[i] = vc.candidate
	}
	return out
}
