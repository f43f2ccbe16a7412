package matching

import (
	"sort"
)

// MatchSelector turns scored candidate pairs into the cycle's accepted
// set via greedy maximal matching.
//
// This is a deliberate approximation: a single pass over candidates
// sorted by score can leave higher-total-weight configurations on the
// table compared to an optimal weighted matching. Acceptance order is
// part of the semantics, so the pass stays single-threaded and the
// sort carries a deterministic tie-break.
type MatchSelector struct {
	minScore float64
}

// NewMatchSelector creates a selector with the minimum score threshold.
func NewMatchSelector(minScore float64) *MatchSelector {
	return &MatchSelector{minScore: minScore}
}

// Select greedily accepts non-conflicting pairs: candidates are ordered
// by score descending (pair key ascending on ties), and a pair is
// accepted only when neither member was already used this cycle and the
// pair is clear of the cooldown index in both directions.
func (s *MatchSelector) Select(candidates []CompatibilityResult, cooldown *CooldownIndex) []CompatibilityResult {
	eligible := make([]CompatibilityResult, 0, len(candidates))
	for _, c := range candidates {
		if c.Score >= s.minScore {
			eligible = append(eligible, c)
		}
	}

	sort.Slice(eligible, func(i, j int) bool {
		if eligible[i].Score != eligible[j].Score {
			return eligible[i].Score > eligible[j].Score
		}
		return eligible[i].Key() < eligible[j].Key()
	})

	used := make(map[uint64]struct{})
	var accepted []CompatibilityResult
	for _, c := range eligible {
		if _, ok := used[c.UserA]; ok {
			continue
		}
		if _, ok := used[c.UserB]; ok {
			continue
		}
		if cooldown != nil && cooldown.Blocked(c.UserA, c.UserB) {
			continue
		}
		used[c.UserA] = struct{}{}
		used[c.UserB] = struct{}{}
		accepted = append(accepted, c)
	}

	return accepted
}
