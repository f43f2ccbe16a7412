package matching

import (
	"context"
	"fmt"
	"time"

	"github.com/bookbuddy/matchengine/internal/db"
)

// CooldownIndex answers "was this pair matched recently" from pairing
// history loaded once per run. Pure membership, no mutation after load.
type CooldownIndex struct {
	keys map[string]struct{}
}

// NewCooldownIndex builds the index from pairing records, skipping rows
// of excludePeriod so a re-run of the current period is not blocked by
// its own output. Pairings are stored per direction, but both
// directions are indexed regardless so the exclusion stays symmetric
// even on partially written history.
func NewCooldownIndex(pairings []db.Pairing, excludePeriod string) *CooldownIndex {
	idx := &CooldownIndex{keys: make(map[string]struct{}, len(pairings)*2)}
	for _, p := range pairings {
		if p.PeriodID == excludePeriod {
			continue
		}
		idx.keys[fmt.Sprintf("%d|%d", p.SubjectID, p.PartnerID)] = struct{}{}
		idx.keys[fmt.Sprintf("%d|%d", p.PartnerID, p.SubjectID)] = struct{}{}
	}
	return idx
}

// LoadCooldownIndex fetches pairings created inside the lookback
// window and indexes them.
func LoadCooldownIndex(ctx context.Context, store PairingStore, since time.Time, excludePeriod string) (*CooldownIndex, error) {
	pairings, err := store.CreatedSince(ctx, since)
	if err != nil {
		return nil, err
	}
	return NewCooldownIndex(pairings, excludePeriod), nil
}

// Blocked reports whether the pair was matched inside the lookback
// window, in either direction.
func (c *CooldownIndex) Blocked(a, b uint64) bool {
	if _, ok := c.keys[fmt.Sprintf("%d|%d", a, b)]; ok {
		return true
	}
	_, ok := c.keys[fmt.Sprintf("%d|%d", b, a)]
	return ok
}

// Size returns the number of indexed directional keys.
func (c *CooldownIndex) Size() int {
	return len(c.keys)
}
