package matching

import (
	"context"
	"log/slog"
	"time"

	"github.com/bookbuddy/matchengine/internal/db"
)

// EligibilityFilter selects the users who may participate in the
// current cycle.
type EligibilityFilter struct {
	interactions    InteractionSource
	minInteractions int
	activeWindow    time.Duration
	log             *slog.Logger
}

// NewEligibilityFilter creates a filter with the cycle's thresholds.
func NewEligibilityFilter(interactions InteractionSource, minInteractions int, activeWindow time.Duration, log *slog.Logger) *EligibilityFilter {
	return &EligibilityFilter{
		interactions:    interactions,
		minInteractions: minInteractions,
		activeWindow:    activeWindow,
		log:             log,
	}
}

// Filter returns the subset of users who opted in, logged at least one
// public interaction inside the trailing activity window, and carry at
// least minInteractions interactions in total.
//
// A user whose interaction lookup fails is excluded, not retried; the
// error is logged with the user id and the run continues.
func (f *EligibilityFilter) Filter(ctx context.Context, users []db.User, now time.Time) []db.User {
	since := now.Add(-f.activeWindow)
	eligible := make([]db.User, 0, len(users))

	for _, u := range users {
		if !u.MatchOptIn {
			continue
		}

		total, err := f.interactions.CountForUser(ctx, u.ID)
		if err != nil {
			f.log.Warn("eligibility check failed, excluding user", "user_id", u.ID, "err", err)
			continue
		}
		if total < int64(f.minInteractions) {
			continue
		}

		active, err := f.interactions.HasPublicSince(ctx, u.ID, since)
		if err != nil {
			f.log.Warn("eligibility check failed, excluding user", "user_id", u.ID, "err", err)
			continue
		}
		if !active {
			continue
		}

		eligible = append(eligible, u)
	}

	return eligible
}
