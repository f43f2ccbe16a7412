package matching

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/bookbuddy/matchengine/internal/db"
)

func candidate(a, b uint64, score float64) CompatibilityResult {
	return CompatibilityResult{UserA: a, UserB: b, Score: score}
}

func emptyCooldown() *CooldownIndex {
	return NewCooldownIndex(nil, "")
}

func TestSelect_GreedyByScore(t *testing.T) {
	s := NewMatchSelector(0.6)
	accepted := s.Select([]CompatibilityResult{
		candidate(1, 3, 0.8),
		candidate(1, 2, 0.9),
		candidate(3, 4, 0.7),
	}, emptyCooldown())

	assert.Len(t, accepted, 2)
	assert.Equal(t, "1|2", accepted[0].Key())
	assert.Equal(t, "3|4", accepted[1].Key())
}

func TestSelect_NoSubjectReuse(t *testing.T) {
	s := NewMatchSelector(0.6)
	accepted := s.Select([]CompatibilityResult{
		candidate(1, 2, 0.9),
		candidate(1, 3, 0.85),
		candidate(2, 3, 0.8),
	}, emptyCooldown())

	// once 1|2 is taken every remaining candidate conflicts
	assert.Len(t, accepted, 1)
	assert.Equal(t, "1|2", accepted[0].Key())
}

func TestSelect_ThresholdApplied(t *testing.T) {
	s := NewMatchSelector(0.6)
	accepted := s.Select([]CompatibilityResult{
		candidate(1, 2, 0.59),
	}, emptyCooldown())

	assert.Empty(t, accepted)
}

func TestSelect_CooldownExcludesBothDirections(t *testing.T) {
	cooldown := NewCooldownIndex([]db.Pairing{
		{SubjectID: 2, PartnerID: 1, PeriodID: "2024-W05"},
	}, "2024-W07")

	s := NewMatchSelector(0.6)
	accepted := s.Select([]CompatibilityResult{
		candidate(1, 2, 0.95),
		candidate(1, 3, 0.7),
	}, cooldown)

	// the 0.95 pair sits in cooldown, so the lower-scoring clear pair wins
	assert.Len(t, accepted, 1)
	assert.Equal(t, "1|3", accepted[0].Key())
}

func TestSelect_DeterministicTieBreak(t *testing.T) {
	s := NewMatchSelector(0.6)
	in := []CompatibilityResult{
		candidate(1, 3, 0.8),
		candidate(1, 2, 0.8),
	}
	for i := 0; i < 5; i++ {
		accepted := s.Select(append([]CompatibilityResult(nil), in...), emptyCooldown())
		assert.Len(t, accepted, 1)
		assert.Equal(t, "1|2", accepted[0].Key())
	}
}

func TestCooldownIndex_Symmetric(t *testing.T) {
	idx := NewCooldownIndex([]db.Pairing{{SubjectID: 5, PartnerID: 9, PeriodID: "2024-W05"}}, "2024-W07")

	assert.True(t, idx.Blocked(5, 9))
	assert.True(t, idx.Blocked(9, 5))
	assert.False(t, idx.Blocked(5, 8))
}

func TestCooldownIndex_ExcludesCurrentPeriod(t *testing.T) {
	idx := NewCooldownIndex([]db.Pairing{{SubjectID: 5, PartnerID: 9, PeriodID: "2024-W07"}}, "2024-W07")

	assert.False(t, idx.Blocked(5, 9))
}
