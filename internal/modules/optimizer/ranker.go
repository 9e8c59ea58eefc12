package optimizer

import "sort"

// Rank orders scored candidates by (score desc, apr desc, input index asc).
// The input-index key is what makes exact score ties deterministic; it is
// the position in the original request sequence, never an identifier
// string, so ordering is independent of ID formatting.
func Rank(pool []scoredCandidate) []scoredCandidate {
	ranked := make([]scoredCandidate, len(pool))
	copy(ranked, pool)

	sort.SliceStable(ranked, func(i, j int) bool {
		if ranked[i].Score != ranked[j].Score {
			return ranked[i].Score > ranked[j].Score
		}
		if ranked[i].Candidate.APR != ranked[j].Candidate.APR {
			return ranked[i].Candidate.APR > ranked[j].Candidate.APR
		}
		return ranked[i].InputIndex < ranked[j].InputIndex
	})

	return ranked
}
