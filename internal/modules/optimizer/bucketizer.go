package optimizer

import (
	"fmt"

	"github.com/fundline/allocator/internal/domain"
)

// BandConfig defines the classification bands for APR and ticket size.
// Each edge list must be strictly ascending and carry one more label than
// edges: bands are lower-inclusive, upper-exclusive, and the last band is
// open-ended, so every finite value maps to exactly one label.
type BandConfig struct {
	APREdges   []float64
	APRLabels  []string
	LineEdges  []float64
	LineLabels []string
}

// DefaultBands returns the standard rate and ticket-size bands
func DefaultBands() BandConfig {
	return BandConfig{
		APREdges:   []float64{0.05, 0.07, 0.10},
		APRLabels:  []string{"0-5", "5-7", "7-10", "10+"},
		LineEdges:  []float64{50_000, 250_000, 1_000_000},
		LineLabels: []string{"0-50k", "50k-250k", "250k-1m", "1m+"},
	}
}

// Bucketizer classifies candidates into the categorical buckets used for
// cap enforcement and audit labeling
type Bucketizer struct {
	cfg BandConfig
}

// NewBucketizer validates the band configuration and returns a bucketizer
func NewBucketizer(cfg BandConfig) (*Bucketizer, error) {
	if err := validateBands("apr", cfg.APREdges, cfg.APRLabels); err != nil {
		return nil, err
	}
	if err := validateBands("line", cfg.LineEdges, cfg.LineLabels); err != nil {
		return nil, err
	}
	return &Bucketizer{cfg: cfg}, nil
}

// Bucket returns the APR, ticket-size, and payer-tier labels for a
// candidate. It is pure; numeric validity is checked before candidates
// reach it.
func (b *Bucketizer) Bucket(c domain.Candidate) (aprBucket, lineBucket, payerBucket string) {
	aprBucket = bandLabel(c.APR, b.cfg.APREdges, b.cfg.APRLabels)
	lineBucket = bandLabel(c.Amount, b.cfg.LineEdges, b.cfg.LineLabels)
	payerBucket = payerTier(c.PayerRank)
	return aprBucket, lineBucket, payerBucket
}

// payerTier maps payer_rank to a descriptive tier. Hard limits key on the
// payer identity, not this label.
func payerTier(rank int) string {
	switch {
	case rank <= 1:
		return domain.PayerTierTop
	case rank <= 3:
		return domain.PayerTierMid
	default:
		return domain.PayerTierLow
	}
}

// bandLabel walks the edges and returns the label of the first band whose
// upper edge exceeds the value; values past the last edge fall into the
// open-ended final band.
func bandLabel(value float64, edges []float64, labels []string) string {
	for i, edge := range edges {
		if value < edge {
			return labels[i]
		}
	}
	return labels[len(labels)-1]
}

func validateBands(name string, edges []float64, labels []string) error {
	if len(labels) != len(edges)+1 {
		return fmt.Errorf("%w: %s bands need %d labels for %d edges, got %d",
			ErrConfig, name, len(edges)+1, len(edges), len(labels))
	}
	for i := 1; i < len(edges); i++ {
		if edges[i] <= edges[i-1] {
			return fmt.Errorf("%w: %s band edges must be strictly ascending", ErrConfig, name)
		}
	}
	return nil
}
