package matching

import (
	"time"

	"github.com/bookbuddy/matchengine/internal/db"
)

// BuildCycleReport aggregates a cycle's accepted set into the persisted
// report: unique pair count, mean similarity, the cycle-wide most
// frequent shared authors/categories, and wall-clock duration.
func BuildCycleReport(
	periodID string,
	eligibleUsers int,
	accepted []CompatibilityResult,
	duration time.Duration,
	topAuthors, topCategories int,
) *db.CycleReport {
	report := &db.CycleReport{
		PeriodID:       periodID,
		EligibleUsers:  eligibleUsers,
		PairCount:      len(accepted),
		DurationMillis: duration.Milliseconds(),
	}

	if len(accepted) == 0 {
		return report
	}

	sum := 0.0
	authorCounts := make(map[string]int)
	categoryCounts := make(map[string]int)
	for _, c := range accepted {
		// both directional records carry the same score, so the mean
		// over accepted pairs equals the mean over directional records
		sum += c.Score
		for _, a := range c.SharedAuthors {
			authorCounts[a]++
		}
		for _, cat := range c.SharedCategories {
			categoryCounts[cat]++
		}
	}

	report.MeanScore = sum / float64(len(accepted))
	report.TopAuthors = topN(authorCounts, topAuthors)
	report.TopCategories = topN(categoryCounts, topCategories)

	return report
}
