package matching

import (
	"fmt"
	"math"
	"sort"

	"github.com/bookbuddy/matchengine/internal/db"
)

// Similarity weights. They sum to 1, which together with each factor
// being bounded to [0,1] keeps the overall score in [0,1].
const (
	weightAuthors    = 0.4
	weightCategories = 0.3
	weightRating     = 0.2
	weightDiscovery  = 0.1

	// maximum spread on the 1-5 rating scale
	ratingSpread = 4.0
)

// CompatibilityResult carries the similarity of one unordered pair and
// the shared-set evidence used for messaging.
type CompatibilityResult struct {
	UserA            uint64
	UserB            uint64
	Score            float64
	SharedAuthors    []string
	SharedCategories []string
}

// Key returns the canonical unordered pair key, e.g. "3|17".
func (r CompatibilityResult) Key() string {
	return pairKey(r.UserA, r.UserB)
}

// GenderCompatible reports whether each user's declared preference
// admits the other's declared gender, checked in both directions.
// An unset preference or gender reads as "any".
func GenderCompatible(a, b db.User) bool {
	return prefAccepts(a.PreferredGender, b.Gender) && prefAccepts(b.PreferredGender, a.Gender)
}

func prefAccepts(pref, gender string) bool {
	if pref == "" || pref == "any" {
		return true
	}
	if gender == "" {
		return true
	}
	return pref == gender
}

// Score computes the weighted similarity of two profiles:
// 0.4 author Jaccard + 0.3 category Jaccard + 0.2 rating agreement +
// 0.1 discovery potential. Symmetric in its arguments.
func Score(a, b *TasteProfile) CompatibilityResult {
	authorSim := jaccard(a.TopAuthors, b.TopAuthors)
	categorySim := jaccard(a.TopCategories, b.TopCategories)
	ratingSim := math.Max(0, 1-math.Abs(a.MeanRating-b.MeanRating)/ratingSpread)
	discovery := discoveryPotential(a.TopAuthors, b.TopAuthors)

	return CompatibilityResult{
		UserA: a.UserID,
		UserB: b.UserID,
		Score: weightAuthors*authorSim +
			weightCategories*categorySim +
			weightRating*ratingSim +
			weightDiscovery*discovery,
		SharedAuthors:    intersect(a.TopAuthors, b.TopAuthors),
		SharedCategories: intersect(a.TopCategories, b.TopCategories),
	}
}

// jaccard is |A∩B| / |A∪B|, 0 when the union is empty.
func jaccard(a, b []string) float64 {
	union := make(map[string]struct{}, len(a)+len(b))
	inA := make(map[string]struct{}, len(a))
	for _, s := range a {
		union[s] = struct{}{}
		inA[s] = struct{}{}
	}
	shared := 0
	for _, s := range b {
		if _, ok := inA[s]; ok {
			shared++
		}
		union[s] = struct{}{}
	}
	if len(union) == 0 {
		return 0
	}
	return float64(shared) / float64(len(union))
}

// discoveryPotential measures how much of the combined author pool is
// new to one side: (|union| - |intersection|) / |union|.
func discoveryPotential(a, b []string) float64 {
	union := make(map[string]struct{}, len(a)+len(b))
	inA := make(map[string]struct{}, len(a))
	for _, s := range a {
		union[s] = struct{}{}
		inA[s] = struct{}{}
	}
	shared := 0
	for _, s := range b {
		if _, ok := inA[s]; ok {
			shared++
		}
		union[s] = struct{}{}
	}
	if len(union) == 0 {
		return 0
	}
	return float64(len(union)-shared) / float64(len(union))
}

// intersect returns the sorted intersection of two string sets.
func intersect(a, b []string) []string {
	inA := make(map[string]struct{}, len(a))
	for _, s := range a {
		inA[s] = struct{}{}
	}
	var shared []string
	seen := make(map[string]struct{})
	for _, s := range b {
		if _, ok := inA[s]; !ok {
			continue
		}
		if _, dup := seen[s]; dup {
			continue
		}
		seen[s] = struct{}{}
		shared = append(shared, s)
	}
	sort.Strings(shared)
	return shared
}

// pairKey builds the canonical key of an unordered user pair.
func pairKey(a, b uint64) string {
	if a > b {
		a, b = b, a
	}
	return fmt.Sprintf("%d|%d", a, b)
}
