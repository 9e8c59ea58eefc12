package optimizer

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/fundline/allocator/internal/domain"
)

func TestBucketizer_APRBands(t *testing.T) {
	b, err := NewBucketizer(DefaultBands())
	require.NoError(t, err)

	tests := []struct {
		name string
		apr  float64
		want string
	}{
		{"zero rate", 0.0, "0-5"},
		{"below first edge", 0.049, "0-5"},
		{"first edge is lower-inclusive", 0.05, "5-7"},
		{"mid band", 0.06, "5-7"},
		{"second edge", 0.07, "7-10"},
		{"just below last edge", 0.0999, "7-10"},
		{"last edge opens final band", 0.10, "10+"},
		{"far above last edge", 0.95, "10+"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			aprBucket, _, _ := b.Bucket(domain.Candidate{APR: tt.apr, Amount: 1000})
			assert.Equal(t, tt.want, aprBucket)
		})
	}
}

func TestBucketizer_LineBands(t *testing.T) {
	b, err := NewBucketizer(DefaultBands())
	require.NoError(t, err)

	tests := []struct {
		name   string
		amount float64
		want   string
	}{
		{"small ticket", 10_000, "0-50k"},
		{"edge is lower-inclusive", 50_000, "50k-250k"},
		{"mid ticket", 100_000, "50k-250k"},
		{"large ticket", 500_000, "250k-1m"},
		{"jumbo", 2_000_000, "1m+"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, lineBucket, _ := b.Bucket(domain.Candidate{APR: 0.06, Amount: tt.amount})
			assert.Equal(t, tt.want, lineBucket)
		})
	}
}

func TestBucketizer_PayerTiers(t *testing.T) {
	b, err := NewBucketizer(DefaultBands())
	require.NoError(t, err)

	tests := []struct {
		rank int
		want string
	}{
		{0, domain.PayerTierTop},
		{1, domain.PayerTierTop},
		{2, domain.PayerTierMid},
		{3, domain.PayerTierMid},
		{4, domain.PayerTierLow},
		{100, domain.PayerTierLow},
	}

	for _, tt := range tests {
		_, _, payerBucket := b.Bucket(domain.Candidate{APR: 0.06, Amount: 1000, PayerRank: tt.rank})
		assert.Equal(t, tt.want, payerBucket, "rank %d", tt.rank)
	}
}

func TestNewBucketizer_InvalidConfig(t *testing.T) {
	tests := []struct {
		name string
		cfg  BandConfig
	}{
		{
			name: "label count mismatch",
			cfg: BandConfig{
				APREdges:   []float64{0.05, 0.07},
				APRLabels:  []string{"low", "high"},
				LineEdges:  []float64{1000},
				LineLabels: []string{"small", "large"},
			},
		},
		{
			name: "edges not ascending",
			cfg: BandConfig{
				APREdges:   []float64{0.07, 0.05},
				APRLabels:  []string{"a", "b", "c"},
				LineEdges:  []float64{1000},
				LineLabels: []string{"small", "large"},
			},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := NewBucketizer(tt.cfg)
			assert.ErrorIs(t, err, ErrConfig)
		})
	}
}
