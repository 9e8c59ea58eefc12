package domain

// Candidate represents one loan opportunity offered to the optimizer.
// Candidates are read-only inputs for a single run; derived fields live on
// the audit rows, never on the candidate itself.
type Candidate struct {
	ID         string  `json:"id"`
	Amount     float64 `json:"amount"`
	APR        float64 `json:"apr"`
	Term       *int    `json:"term,omitempty"`
	CustomerID string  `json:"customer_id"`
	Industry   string  `json:"industry"`
	PayerRank  int     `json:"payer_rank"`
}

// Payer tier labels derived from payer_rank (1 = strongest anchor debtor)
const (
	PayerTierTop = "top" // rank <= 1
	PayerTierMid = "mid" // rank <= 3
	PayerTierLow = "low" // everything else
)

// Reason codes attached to audit rows that were never committed
const (
	ReasonInvalidAmount = "invalid_amount"
	ReasonInvalidAPR    = "invalid_apr"
	ReasonMissingID     = "missing_customer_id"
	ReasonOverBudget    = "over_budget"
	ReasonAPRCap        = "apr_bucket_cap"
	ReasonPayerCap      = "payer_cap"
	ReasonIndustryCap   = "industry_cap"
	ReasonNotEvaluated  = "not_evaluated"
)
