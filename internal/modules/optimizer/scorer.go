package optimizer

import (
	"github.com/fundline/allocator/internal/domain"
	"github.com/fundline/allocator/pkg/formulas"
)

// PoolStats holds the pool-wide aggregates the scorer normalizes against.
// They are computed once over the entire valid pool, never over the
// selected subset.
type PoolStats struct {
	MinAPR    float64
	MaxAPR    float64
	MeanAPR   float64
	StdDevAPR float64
	MaxAmount float64
}

// ComputePoolStats derives normalization aggregates from the valid pool
func ComputePoolStats(candidates []domain.Candidate) PoolStats {
	aprs := make([]float64, len(candidates))
	amounts := make([]float64, len(candidates))
	for i, c := range candidates {
		aprs[i] = c.APR
		amounts[i] = c.Amount
	}

	return PoolStats{
		MinAPR:    formulas.Min(aprs),
		MaxAPR:    formulas.Max(aprs),
		MeanAPR:   formulas.Mean(aprs),
		StdDevAPR: formulas.StdDev(aprs),
		MaxAmount: formulas.Max(amounts),
	}
}

// Scorer computes the composite desirability score. It is stateless apart
// from its immutable inputs; identical pools and weights reproduce scores
// bit for bit.
type Scorer struct {
	weights    WeightSet
	targetTerm *int
	stats      PoolStats
}

// NewScorer creates a scorer for one run
func NewScorer(weights WeightSet, targetTerm *int, stats PoolStats) *Scorer {
	return &Scorer{
		weights:    weights,
		targetTerm: targetTerm,
		stats:      stats,
	}
}

// Score returns the weighted composite of APR attractiveness, term fit,
// and the small-ticket bonus. The result lies in [0, sum of weights].
func (s *Scorer) Score(c domain.Candidate) float64 {
	// Min-max over the pool; the epsilon keeps a single-APR pool at 0
	// without branching on the degenerate case.
	aprNorm := (c.APR - s.stats.MinAPR) / (s.stats.MaxAPR - s.stats.MinAPR + normEpsilon)

	termFit := 0.5
	if s.targetTerm != nil {
		target := float64(*s.targetTerm)
		term := 0.0
		if c.Term != nil {
			term = float64(*c.Term)
		}
		diff := term - target
		if diff < 0 {
			diff = -diff
		}
		termFit = clamp(1-diff/(target+normEpsilon), 0, 1)
	}

	// Smaller tickets score higher: they keep the mix controllable
	sizeBonus := 1 - c.Amount/(s.stats.MaxAmount+normEpsilon)

	return s.weights.APRWeight*aprNorm +
		s.weights.TermFitWeight*termFit +
		s.weights.SizeBonusWeight*sizeBonus
}

func clamp(v, lo, hi float64) float64 {
	if v < lo {
		return lo
	}
	if v > hi {
		return hi
	}
	return v
}
