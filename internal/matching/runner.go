package matching

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/bookbuddy/matchengine/internal/config"
	"github.com/bookbuddy/matchengine/internal/db"
)

// ErrRunInProgress is returned when another run already holds the lock
// for the requested period.
var ErrRunInProgress = errors.New("matching run already in progress for this period")

// runLockTTL bounds how long an abandoned lock can block retries.
const runLockTTL = 30 * time.Minute

// Result summarizes one completed cycle.
type Result struct {
	PeriodID      string
	EligibleUsers int
	PairCount     int
	MeanScore     float64
	Duration      time.Duration
}

// Engine orchestrates one matching cycle: eligibility, profiling,
// scoring, selection, and the three atomic persistence stages
// (pairings, notices, report). It owns no state between runs; all
// durable output is keyed by the period id, so re-running a period
// overwrites its own records.
type Engine struct {
	cfg          *config.Config
	users        Directory
	interactions InteractionSource
	pairings     PairingStore
	messenger    Messenger
	locks        Locker
	log          *slog.Logger

	now func() time.Time
}

// NewEngine wires an engine from its collaborators. locks may be nil
// when no lock service is available (e.g. one-shot CLI runs).
func NewEngine(
	cfg *config.Config,
	users Directory,
	interactions InteractionSource,
	pairings PairingStore,
	messenger Messenger,
	locks Locker,
	log *slog.Logger,
) *Engine {
	return &Engine{
		cfg:          cfg,
		users:        users,
		interactions: interactions,
		pairings:     pairings,
		messenger:    messenger,
		locks:        locks,
		log:          log,
		now:          time.Now,
	}
}

// Run executes one matching cycle. An empty periodID derives the ISO
// year-week id from the clock. Per-user failures are logged and those
// users dropped; a failure in any bulk persistence stage aborts the run
// and propagates so the caller can schedule a retry.
func (e *Engine) Run(ctx context.Context, periodID string) (*Result, error) {
	start := e.now()
	if periodID == "" {
		periodID = PeriodID(start)
	}
	log := e.log.With("period_id", periodID)

	if e.locks != nil {
		ok, err := e.locks.AcquireRunLock(ctx, periodID, runLockTTL)
		if err != nil {
			// the deterministic record ids already make re-entrancy
			// safe, so a lock-service outage downgrades to a warning
			log.Warn("run lock unavailable, continuing unlocked", "err", err)
		} else if !ok {
			return nil, ErrRunInProgress
		} else {
			defer func() {
				if err := e.locks.ReleaseRunLock(context.WithoutCancel(ctx), periodID); err != nil {
					log.Warn("failed to release run lock", "err", err)
				}
			}()
		}
	}

	log.Info("matching cycle started")

	users, err := e.users.ListOptedIn(ctx)
	if err != nil {
		return nil, e.fatal(log, periodID, "list users", err)
	}

	filter := NewEligibilityFilter(
		e.interactions,
		e.cfg.Match.MinInteractions,
		time.Duration(e.cfg.Match.ActiveWindowDays)*24*time.Hour,
		log,
	)
	eligible := filter.Filter(ctx, users, start)
	log.Info("eligibility filtered", "opted_in", len(users), "eligible", len(eligible))

	if len(eligible) < 2 {
		report := BuildCycleReport(periodID, len(eligible), nil, e.now().Sub(start),
			e.cfg.Match.TopAuthors, e.cfg.Match.TopCategories)
		if err := e.pairings.SaveReport(ctx, report); err != nil {
			return nil, e.fatal(log, periodID, "persist report", err)
		}
		log.Info("matching cycle complete with no pairings", "eligible", len(eligible))
		return &Result{PeriodID: periodID, EligibleUsers: len(eligible), Duration: e.now().Sub(start)}, nil
	}

	builder := NewProfileBuilder(
		e.interactions,
		e.cfg.Match.FetchLimit,
		e.cfg.Match.TopAuthors,
		e.cfg.Match.TopCategories,
		e.cfg.Match.Concurrency,
		log,
	)
	profiles := builder.BuildAll(ctx, eligible)
	log.Info("profiles built", "profiles", len(profiles))

	candidates := scoreCandidates(eligible, profiles)

	cooldownWindow := time.Duration(e.cfg.Match.CooldownCycles*e.cfg.Match.CycleDays) * 24 * time.Hour
	cooldown, err := LoadCooldownIndex(ctx, e.pairings, start.Add(-cooldownWindow), periodID)
	if err != nil {
		return nil, e.fatal(log, periodID, "load cooldown history", err)
	}

	accepted := NewMatchSelector(e.cfg.Match.MinScore).Select(candidates, cooldown)
	log.Info("pairs selected", "candidates", len(candidates), "accepted", len(accepted))

	pairings := buildPairings(accepted, periodID)
	if err := e.pairings.SaveAll(ctx, pairings); err != nil {
		return nil, e.fatal(log, periodID, "persist pairings", err)
	}

	messages := buildNotices(pairings, eligible)
	if err := e.messenger.DeliverAll(ctx, messages); err != nil {
		return nil, e.fatal(log, periodID, "deliver notices", err)
	}

	report := BuildCycleReport(periodID, len(eligible), accepted, e.now().Sub(start),
		e.cfg.Match.TopAuthors, e.cfg.Match.TopCategories)
	if err := e.pairings.SaveReport(ctx, report); err != nil {
		return nil, e.fatal(log, periodID, "persist report", err)
	}

	result := &Result{
		PeriodID:      periodID,
		EligibleUsers: len(eligible),
		PairCount:     len(accepted),
		MeanScore:     report.MeanScore,
		Duration:      e.now().Sub(start),
	}
	log.Info("matching cycle complete",
		"pairs", result.PairCount,
		"mean_score", result.MeanScore,
		"duration", result.Duration,
	)
	return result, nil
}

// fatal records a structured failure entry and wraps the error with its
// stage for the caller.
func (e *Engine) fatal(log *slog.Logger, periodID, stage string, err error) error {
	log.Error("matching cycle failed", "stage", stage, "err", err)
	return fmt.Errorf("cycle %s: %s: %w", periodID, stage, err)
}

// scoreCandidates computes compatibility for every gender-compatible
// unordered pair with profiles on both sides. Single-threaded and
// deterministic given the same profile set.
func scoreCandidates(eligible []db.User, profiles map[uint64]*TasteProfile) []CompatibilityResult {
	var results []CompatibilityResult
	for i := 0; i < len(eligible); i++ {
		a := eligible[i]
		profileA, ok := profiles[a.ID]
		if !ok {
			continue
		}
		for j := i + 1; j < len(eligible); j++ {
			b := eligible[j]
			profileB, ok := profiles[b.ID]
			if !ok {
				continue
			}
			if !GenderCompatible(a, b) {
				continue
			}
			results = append(results, Score(profileA, profileB))
		}
	}
	return results
}

// buildPairings turns each accepted pair into two directional records
// with deterministic ids.
func buildPairings(accepted []CompatibilityResult, periodID string) []db.Pairing {
	pairings := make([]db.Pairing, 0, len(accepted)*2)
	for _, c := range accepted {
		for _, dir := range [2][2]uint64{{c.UserA, c.UserB}, {c.UserB, c.UserA}} {
			pairings = append(pairings, db.Pairing{
				ID:               PairingID(dir[0], dir[1], periodID),
				SubjectID:        dir[0],
				PartnerID:        dir[1],
				PeriodID:         periodID,
				Score:            c.Score,
				SharedAuthors:    c.SharedAuthors,
				SharedCategories: c.SharedCategories,
			})
		}
	}
	return pairings
}

// buildNotices composes one message per directional pairing, addressed
// to its subject and naming its partner.
func buildNotices(pairings []db.Pairing, users []db.User) []db.Message {
	names := make(map[uint64]string, len(users))
	for _, u := range users {
		name := u.DisplayName
		if name == "" {
			name = u.Username
		}
		names[u.ID] = name
	}

	messages := make([]db.Message, 0, len(pairings))
	for _, p := range pairings {
		messages = append(messages, db.Message{
			ID:          MessageID(p.ID),
			RecipientID: p.SubjectID,
			PairingID:   p.ID,
			Body:        ComposeMatchNotice(names[p.PartnerID], p.SharedAuthors),
		})
	}
	return messages
}
