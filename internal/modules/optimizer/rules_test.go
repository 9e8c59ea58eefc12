package optimizer

import (
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func floatPtr(v float64) *float64 {
	return &v
}

func TestNormalizeRules_EmptyRuleSetDefaultsToUnbound(t *testing.T) {
	limits, err := NormalizeRules(RuleSet{})
	require.NoError(t, err)

	assert.Equal(t, 1.0, limits.APRCap("10+"))
	assert.Equal(t, 1.0, limits.PayerCap())
	assert.Equal(t, 1.0, limits.IndustryCap())
}

func TestNormalizeRules_ConfiguredCaps(t *testing.T) {
	limits, err := NormalizeRules(RuleSet{
		APR: map[string]CapRule{
			"10+": {MaxPct: floatPtr(0.5)},
		},
		Payer: map[string]CapRule{
			PolicyAnyAnchor: {MaxPct: floatPtr(0.2)},
		},
		Industry: map[string]CapRule{
			PolicyAnySector: {MaxPct: floatPtr(0.3)},
		},
	})
	require.NoError(t, err)

	assert.Equal(t, 0.5, limits.APRCap("10+"))
	assert.Equal(t, 1.0, limits.APRCap("0-5"), "unconfigured bucket stays unbound")
	assert.Equal(t, 0.2, limits.PayerCap())
	assert.Equal(t, 0.3, limits.IndustryCap())
}

func TestNormalizeRules_NilMaxPctDefaults(t *testing.T) {
	limits, err := NormalizeRules(RuleSet{
		APR: map[string]CapRule{"5-7": {}},
	})
	require.NoError(t, err)

	assert.Equal(t, 1.0, limits.APRCap("5-7"))
}

func TestNormalizeRules_MalformedValues(t *testing.T) {
	tests := []struct {
		name string
		rs   RuleSet
	}{
		{"negative cap", RuleSet{APR: map[string]CapRule{"10+": {MaxPct: floatPtr(-0.1)}}}},
		{"cap above one", RuleSet{APR: map[string]CapRule{"10+": {MaxPct: floatPtr(1.5)}}}},
		{"NaN cap", RuleSet{Payer: map[string]CapRule{PolicyAnyAnchor: {MaxPct: floatPtr(math.NaN())}}}},
		{"unknown payer policy", RuleSet{Payer: map[string]CapRule{"largest_three": {MaxPct: floatPtr(0.5)}}}},
		{"unknown industry policy", RuleSet{Industry: map[string]CapRule{"per_region": {MaxPct: floatPtr(0.5)}}}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := NormalizeRules(tt.rs)
			assert.ErrorIs(t, err, ErrConfig)
		})
	}
}

func TestWeightSet_Validate(t *testing.T) {
	tests := []struct {
		name    string
		weights WeightSet
		wantErr bool
	}{
		{"defaults", DefaultWeights(), false},
		{"all zero is allowed", WeightSet{}, false},
		{"not normalized is allowed", WeightSet{APRWeight: 2, TermFitWeight: 1, SizeBonusWeight: 1}, false},
		{"negative weight", WeightSet{APRWeight: -0.1}, true},
		{"NaN weight", WeightSet{TermFitWeight: math.NaN()}, true},
		{"infinite weight", WeightSet{SizeBonusWeight: math.Inf(1)}, true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := tt.weights.Validate()
			if tt.wantErr {
				assert.ErrorIs(t, err, ErrConfig)
			} else {
				assert.NoError(t, err)
			}
		})
	}
}
