package matching

import (
	"context"
	"time"

	"github.com/bookbuddy/matchengine/internal/db"
)

// Directory supplies the user population. Implemented by
// repository.UserRepository.
type Directory interface {
	ListOptedIn(ctx context.Context) ([]db.User, error)
}

// InteractionSource supplies content-interaction history. Implemented
// by repository.InteractionRepository.
type InteractionSource interface {
	CountForUser(ctx context.Context, userID uint64) (int64, error)
	HasPublicSince(ctx context.Context, userID uint64, since time.Time) (bool, error)
	RecentPublic(ctx context.Context, userID uint64, limit int) ([]db.Interaction, error)
}

// PairingStore persists the cycle's durable output. Implemented by
// repository.PairingRepository.
type PairingStore interface {
	SaveAll(ctx context.Context, pairings []db.Pairing) error
	CreatedSince(ctx context.Context, since time.Time) ([]db.Pairing, error)
	SaveReport(ctx context.Context, report *db.CycleReport) error
}

// Messenger delivers composed match notices. Implemented by
// repository.MessageRepository; the engine does not know how
// conversations are rendered.
type Messenger interface {
	DeliverAll(ctx context.Context, messages []db.Message) error
}

// Locker guards against two concurrent runs of the same period.
// Implemented by cache.RedisCache.
type Locker interface {
	AcquireRunLock(ctx context.Context, periodID string, ttl time.Duration) (bool, error)
	ReleaseRunLock(ctx context.Context, periodID string) error
}
