package optimizer

import (
	"github.com/rs/zerolog"

	"github.com/fundline/allocator/internal/domain"
)

// Selector runs the greedy selection pass. Each candidate moves
// Pending -> ProvisionallyIncluded -> {Committed, Rejected}; the run ends
// in BudgetReached or PoolExhausted. Correctness depends on strictly
// sequential evaluation in ranked order, so one selector owns one ledger
// and is never shared.
type Selector struct {
	aumTotal float64
	limits   *HardLimits
	ledger   *Ledger
	log      zerolog.Logger
}

// NewSelector creates a selector for one run with a fresh ledger
func NewSelector(aumTotal float64, limits *HardLimits, log zerolog.Logger) *Selector {
	return &Selector{
		aumTotal: aumTotal,
		limits:   limits,
		ledger:   NewLedger(),
		log:      log.With().Str("component", "selector").Logger(),
	}
}

// Ledger exposes the ledger for post-run inspection
func (s *Selector) Ledger() *Ledger {
	return s.ledger
}

// Run evaluates the ranked pool and returns one audit row per candidate,
// in evaluation order, plus the terminal status.
func (s *Selector) Run(ranked []scoredCandidate) ([]AuditRow, RunStatus) {
	rows := make([]AuditRow, 0, len(ranked))
	budgetTol := relTolerance * s.aumTotal
	status := StatusPoolExhausted

	for i, rc := range ranked {
		if status == StatusBudgetReached {
			// Budget already reached: remaining candidates are never
			// evaluated, but still appear in the audit output.
			rows = append(rows, s.auditRow(ranked[i], StateRejected, domain.ReasonNotEvaluated, 0))
			continue
		}

		state, reason := s.evaluate(rc, budgetTol)
		rows = append(rows, s.auditRow(rc, state, reason, s.ledger.Total()))

		if state == StateCommitted && s.ledger.Total() >= s.aumTotal-budgetTol {
			status = StatusBudgetReached
			s.log.Debug().
				Float64("committed", s.ledger.Total()).
				Float64("aum_total", s.aumTotal).
				Msg("Budget reached, stopping evaluation")
		}
	}

	return rows, status
}

// evaluate runs the state machine for one provisionally included candidate.
// A rejection never terminates the run: a later, smaller or differently
// bucketed candidate may still fit.
func (s *Selector) evaluate(rc scoredCandidate, budgetTol float64) (CandidateState, string) {
	amount := rc.Candidate.Amount

	// Budget check comes first and uses the absolute budget, not a share
	if s.ledger.Total()+amount > s.aumTotal+budgetTol {
		return StateRejected, domain.ReasonOverBudget
	}

	// All cap checks share the same denominator: the prospective new total
	if s.ledger.PeekIfAdded(DimAPR, rc.APRBucket, amount) > s.limits.APRCap(rc.APRBucket)+relTolerance {
		return StateRejected, domain.ReasonAPRCap
	}
	if s.ledger.PeekIfAdded(DimPayer, rc.Candidate.CustomerID, amount) > s.limits.PayerCap()+relTolerance {
		return StateRejected, domain.ReasonPayerCap
	}
	if s.ledger.PeekIfAdded(DimIndustry, rc.Candidate.Industry, amount) > s.limits.IndustryCap()+relTolerance {
		return StateRejected, domain.ReasonIndustryCap
	}

	s.ledger.Commit(rc.APRBucket, rc.Candidate.CustomerID, rc.Candidate.Industry, amount)
	return StateCommitted, ""
}

func (s *Selector) auditRow(rc scoredCandidate, state CandidateState, reason string, cumulative float64) AuditRow {
	row := AuditRow{
		Candidate:   rc.Candidate,
		InputIndex:  rc.InputIndex,
		APRBucket:   rc.APRBucket,
		LineBucket:  rc.LineBucket,
		PayerBucket: rc.PayerBucket,
		Score:       rc.Score,
		Selected:    state == StateCommitted,
		Reason:      reason,
	}
	if row.Selected {
		cum := cumulative
		row.CumulativeAmount = &cum
	}
	return row
}
