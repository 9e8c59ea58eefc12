package optimizer

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/fundline/allocator/internal/domain"
)

func poolOf(aprs []float64, amount float64) []domain.Candidate {
	pool := make([]domain.Candidate, len(aprs))
	for i, apr := range aprs {
		pool[i] = domain.Candidate{APR: apr, Amount: amount, CustomerID: "c"}
	}
	return pool
}

func TestScorer_APRNormalization(t *testing.T) {
	// Pure APR weighting: min-max normalization over the pool should land
	// the three candidates at 0, 0.5, and 1.
	pool := poolOf([]float64{0.05, 0.10, 0.15}, 1000)
	weights := WeightSet{APRWeight: 1, TermFitWeight: 0, SizeBonusWeight: 0}
	scorer := NewScorer(weights, nil, ComputePoolStats(pool))

	assert.InDelta(t, 0.0, scorer.Score(pool[0]), 1e-6)
	assert.InDelta(t, 0.5, scorer.Score(pool[1]), 1e-6)
	assert.InDelta(t, 1.0, scorer.Score(pool[2]), 1e-6)
}

func TestScorer_SingleDistinctAPR(t *testing.T) {
	// A degenerate pool (every APR identical) normalizes to 0 for all,
	// with the epsilon guarding the division instead of a branch.
	pool := poolOf([]float64{0.08, 0.08, 0.08}, 1000)
	weights := WeightSet{APRWeight: 1, TermFitWeight: 0, SizeBonusWeight: 0}
	scorer := NewScorer(weights, nil, ComputePoolStats(pool))

	for _, c := range pool {
		assert.InDelta(t, 0.0, scorer.Score(c), 1e-6)
	}
}

func TestScorer_TermFit(t *testing.T) {
	target := 90

	tests := []struct {
		name string
		term *int
		want float64
	}{
		{"exact match", intPtr(90), 1.0},
		{"half off target", intPtr(45), 0.5},
		{"double target clamps at zero", intPtr(180), 0.0},
		{"missing term treated as zero", nil, 0.0},
	}

	pool := poolOf([]float64{0.05, 0.10}, 1000)
	weights := WeightSet{APRWeight: 0, TermFitWeight: 1, SizeBonusWeight: 0}
	scorer := NewScorer(weights, &target, ComputePoolStats(pool))

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			c := domain.Candidate{APR: 0.05, Amount: 1000, Term: tt.term, CustomerID: "c"}
			assert.InDelta(t, tt.want, scorer.Score(c), 1e-6)
		})
	}
}

func TestScorer_NoTargetTermIsNeutral(t *testing.T) {
	// Without a target term every candidate gets the neutral 0.5,
	// regardless of its own term.
	pool := poolOf([]float64{0.05, 0.10}, 1000)
	weights := WeightSet{APRWeight: 0, TermFitWeight: 1, SizeBonusWeight: 0}
	scorer := NewScorer(weights, nil, ComputePoolStats(pool))

	short := domain.Candidate{APR: 0.05, Amount: 1000, Term: intPtr(30), CustomerID: "c"}
	long := domain.Candidate{APR: 0.05, Amount: 1000, Term: intPtr(360), CustomerID: "c"}

	assert.InDelta(t, 0.5, scorer.Score(short), 1e-9)
	assert.InDelta(t, 0.5, scorer.Score(long), 1e-9)
}

func TestScorer_SizeBonusFavorsSmallTickets(t *testing.T) {
	pool := []domain.Candidate{
		{APR: 0.08, Amount: 100, CustomerID: "a"},
		{APR: 0.08, Amount: 1000, CustomerID: "b"},
	}
	weights := WeightSet{APRWeight: 0, TermFitWeight: 0, SizeBonusWeight: 1}
	scorer := NewScorer(weights, nil, ComputePoolStats(pool))

	small := scorer.Score(pool[0])
	large := scorer.Score(pool[1])

	assert.Greater(t, small, large)
	assert.InDelta(t, 0.9, small, 1e-6)
	assert.InDelta(t, 0.0, large, 1e-6)
}

func TestScorer_Reproducible(t *testing.T) {
	pool := poolOf([]float64{0.05, 0.07, 0.09, 0.12}, 5000)
	weights := DefaultWeights()
	target := 120

	a := NewScorer(weights, &target, ComputePoolStats(pool))
	b := NewScorer(weights, &target, ComputePoolStats(pool))

	for _, c := range pool {
		assert.Equal(t, a.Score(c), b.Score(c))
	}
}

func intPtr(v int) *int {
	return &v
}
