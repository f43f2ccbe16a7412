package matching

import (
	"fmt"
	"time"

	"github.com/google/uuid"
)

// pairingNamespace seeds deterministic pairing ids: the same
// (subject, partner, period) triple always yields the same UUID, which
// is what makes re-running a period an overwrite instead of an
// accumulation.
var pairingNamespace = uuid.MustParse("c9a1f3d2-5b70-4e11-9a55-6d4f0be7a9c3")

// messageNamespace seeds deterministic notice ids, one per pairing.
var messageNamespace = uuid.MustParse("e4d2b8a6-1c3f-47d9-b2e0-98a5c7f1d642")

// PeriodID derives the stable cycle identifier for an instant using
// ISO week numbering, e.g. "2024-W07".
func PeriodID(t time.Time) string {
	year, week := t.ISOWeek()
	return fmt.Sprintf("%d-W%02d", year, week)
}

// PairingID derives the deterministic id of a directional pairing record.
func PairingID(subjectID, partnerID uint64, periodID string) string {
	name := fmt.Sprintf("%d|%d|%s", subjectID, partnerID, periodID)
	return uuid.NewSHA1(pairingNamespace, []byte(name)).String()
}

// MessageID derives the deterministic id of the notice for a pairing.
func MessageID(pairingID string) string {
	return uuid.NewSHA1(messageNamespace, []byte(pairingID)).String()
}
