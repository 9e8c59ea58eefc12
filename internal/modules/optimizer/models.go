package optimizer

import (
	"github.com/fundline/allocator/internal/domain"
)

// Comparison tolerances. Budget and cap checks use the relative tolerance
// from the selection contract; the normalization epsilon only guards
// divisions in the scorer and must stay well below it.
const (
	relTolerance = 1e-6
	normEpsilon  = 1e-9
)

// CandidateState tracks a candidate through the greedy pass
type CandidateState string

const (
	StatePending     CandidateState = "pending"
	StateProvisional CandidateState = "provisional"
	StateCommitted   CandidateState = "committed"
	StateRejected    CandidateState = "rejected"
)

// RunStatus distinguishes the two normal terminal outcomes of a run
type RunStatus string

const (
	StatusBudgetReached RunStatus = "budget_reached"
	StatusPoolExhausted RunStatus = "pool_exhausted"
)

// AuditRow is the per-candidate output record. Rows for committed candidates
// carry the cumulative committed amount at the moment of inclusion; all
// other rows carry a reason code instead.
type AuditRow struct {
	Candidate        domain.Candidate `json:"candidate"`
	InputIndex       int              `json:"input_index"`
	APRBucket        string           `json:"apr_bucket"`
	LineBucket       string           `json:"line_bucket"`
	PayerBucket      string           `json:"payer_bucket"`
	Score            float64          `json:"score"`
	Selected         bool             `json:"selected"`
	Reason           string           `json:"reason,omitempty"`
	CumulativeAmount *float64         `json:"cumulative_amount,omitempty"`
}

// Result is the outcome of one optimizer run. Rows appear in evaluation
// (ranked) order, with validation failures appended at the end; the
// original input order is recoverable through InputIndex.
type Result struct {
	Status         RunStatus  `json:"status"`
	Rows           []AuditRow `json:"rows"`
	SelectedCount  int        `json:"selected_count"`
	SelectedAmount float64    `json:"selected_amount"`
}

// scoredCandidate is a candidate annotated with derived fields, ready for
// ranking and selection. The input index is the position in the original,
// unsorted request sequence.
type scoredCandidate struct {
	Candidate   domain.Candidate
	InputIndex  int
	APRBucket   string
	LineBucket  string
	PayerBucket string
	Score       float64
}
