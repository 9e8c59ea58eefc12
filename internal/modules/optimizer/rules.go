package optimizer

import (
	"errors"
	"fmt"
	"math"
)

// ErrConfig marks configuration problems that abort a run before any
// selection work happens. Callers can test for it with errors.Is.
var ErrConfig = errors.New("optimizer configuration error")

// Policy names recognized in the payer and industry rule sections
const (
	PolicyAnyAnchor = "any_anchor"
	PolicyAnySector = "any_sector"
)

// CapRule is one hard limit entry as it arrives from configuration.
// MaxPct is a fraction of the currently selected cumulative amount.
type CapRule struct {
	MaxPct *float64 `json:"max_pct"`
}

// RuleSet is the raw nested hard-limit configuration. Every section and
// every entry is optional; anything unspecified means "no constraint".
type RuleSet struct {
	APR      map[string]CapRule `json:"apr,omitempty"`
	Payer    map[string]CapRule `json:"payer,omitempty"`
	Industry map[string]CapRule `json:"industry,omitempty"`
}

// HardLimits is the normalized form the selector consumes. Unspecified caps
// are made explicit here as 1.0 (100% of committed amount, i.e. unbound);
// silent permissive defaults hidden in lookup chains are how limit-breach
// bugs happen, so the defaulting lives in exactly one place.
type HardLimits struct {
	aprCaps     map[string]float64
	payerCap    float64
	industryCap float64
}

// NormalizeRules validates a raw rule set and resolves every cap,
// defaulting unspecified ones to 1.0. Malformed values (outside [0,1]) and
// unrecognized policy names are configuration errors.
func NormalizeRules(rs RuleSet) (*HardLimits, error) {
	limits := &HardLimits{
		aprCaps:     make(map[string]float64, len(rs.APR)),
		payerCap:    1.0,
		industryCap: 1.0,
	}

	for bucket, rule := range rs.APR {
		pct, err := resolveCap(fmt.Sprintf("apr[%s]", bucket), rule)
		if err != nil {
			return nil, err
		}
		limits.aprCaps[bucket] = pct
	}

	for policy, rule := range rs.Payer {
		if policy != PolicyAnyAnchor {
			return nil, fmt.Errorf("%w: unknown payer policy %q", ErrConfig, policy)
		}
		pct, err := resolveCap(fmt.Sprintf("payer[%s]", policy), rule)
		if err != nil {
			return nil, err
		}
		limits.payerCap = pct
	}

	for policy, rule := range rs.Industry {
		if policy != PolicyAnySector {
			return nil, fmt.Errorf("%w: unknown industry policy %q", ErrConfig, policy)
		}
		pct, err := resolveCap(fmt.Sprintf("industry[%s]", policy), rule)
		if err != nil {
			return nil, err
		}
		limits.industryCap = pct
	}

	return limits, nil
}

// APRCap returns the cap for an APR bucket, 1.0 when none is configured
func (h *HardLimits) APRCap(bucket string) float64 {
	if pct, ok := h.aprCaps[bucket]; ok {
		return pct
	}
	return 1.0
}

// PayerCap returns the single-obligor cap
func (h *HardLimits) PayerCap() float64 {
	return h.payerCap
}

// IndustryCap returns the single-sector cap
func (h *HardLimits) IndustryCap() float64 {
	return h.industryCap
}

func resolveCap(name string, rule CapRule) (float64, error) {
	if rule.MaxPct == nil {
		return 1.0, nil
	}
	pct := *rule.MaxPct
	if math.IsNaN(pct) || math.IsInf(pct, 0) {
		return 0, fmt.Errorf("%w: %s.max_pct is not a finite number", ErrConfig, name)
	}
	if pct < 0 || pct > 1 {
		return 0, fmt.Errorf("%w: %s.max_pct must be within [0, 1], got %v", ErrConfig, name, pct)
	}
	return pct, nil
}

// WeightSet holds the scoring weights. They need not sum to 1; the
// composite score is bounded by their sum.
type WeightSet struct {
	APRWeight       float64 `json:"apr_weight"`
	TermFitWeight   float64 `json:"term_fit_weight"`
	SizeBonusWeight float64 `json:"size_bonus_weight"`
}

// DefaultWeights returns the conventional weight distribution
func DefaultWeights() WeightSet {
	return WeightSet{
		APRWeight:       0.5,
		TermFitWeight:   0.3,
		SizeBonusWeight: 0.2,
	}
}

// Validate checks that all weights are finite and non-negative
func (w WeightSet) Validate() error {
	for _, entry := range []struct {
		name  string
		value float64
	}{
		{"apr_weight", w.APRWeight},
		{"term_fit_weight", w.TermFitWeight},
		{"size_bonus_weight", w.SizeBonusWeight},
	} {
		if math.IsNaN(entry.value) || math.IsInf(entry.value, 0) {
			return fmt.Errorf("%w: %s is not a finite number", ErrConfig, entry.name)
		}
		if entry.value < 0 {
			return fmt.Errorf("%w: %s must be non-negative, got %v", ErrConfig, entry.name, entry.value)
		}
	}
	return nil
}
