package optimizer

// Dimension identifies one of the three independently capped exposure
// dimensions
type Dimension string

const (
	DimAPR      Dimension = "apr"
	DimPayer    Dimension = "payer"
	DimIndustry Dimension = "industry"
)

// Ledger tracks cumulative committed exposure per bucket key across the
// three cap dimensions, plus the running committed total. It is owned by a
// single selector for the duration of one run and never shared.
//
// All operations are O(1) map lookups; aggregates are maintained
// incrementally instead of being recomputed over the selected set on every
// iteration.
type Ledger struct {
	exposure map[Dimension]map[string]float64
	total    float64
}

// NewLedger creates an empty concentration ledger
func NewLedger() *Ledger {
	return &Ledger{
		exposure: map[Dimension]map[string]float64{
			DimAPR:      {},
			DimPayer:    {},
			DimIndustry: {},
		},
	}
}

// PeekIfAdded returns the share key would hold of the prospective total if
// amount were committed to it, without mutating the ledger.
//
// Checking only the candidate's own key is equivalent to checking every
// key in the hypothetical selected set: adding to one key leaves every
// other numerator unchanged while the denominator grows, so all other
// shares strictly shrink and cannot newly breach a cap that held before.
func (l *Ledger) PeekIfAdded(dim Dimension, key string, amount float64) float64 {
	prospective := l.total + amount
	if prospective <= 0 {
		return 0
	}
	return (l.exposure[dim][key] + amount) / prospective
}

// Commit records a committed candidate across all three dimensions and
// advances the running total
func (l *Ledger) Commit(aprBucket, obligor, sector string, amount float64) {
	l.exposure[DimAPR][aprBucket] += amount
	l.exposure[DimPayer][obligor] += amount
	l.exposure[DimIndustry][sector] += amount
	l.total += amount
}

// Total returns the cumulative committed amount
func (l *Ledger) Total() float64 {
	return l.total
}

// Share returns key's current share of the committed total
func (l *Ledger) Share(dim Dimension, key string) float64 {
	if l.total <= 0 {
		return 0
	}
	return l.exposure[dim][key] / l.total
}

// Shares returns a copy of the exposure map for one dimension
func (l *Ledger) Shares(dim Dimension) map[string]float64 {
	out := make(map[string]float64, len(l.exposure[dim]))
	for key, amount := range l.exposure[dim] {
		out[key] = amount
	}
	return out
}
