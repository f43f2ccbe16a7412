package repository

import (
	"context"
	"time"

	"gorm.io/gorm"

	"github.com/bookbuddy/matchengine/internal/db"
)

// InteractionRepository provides read access to content-interaction
// history. The match engine never writes interactions.
type InteractionRepository struct {
	db *gorm.DB
}

// NewInteractionRepository creates a new repository bound to the given DB connection.
func NewInteractionRepository(database *gorm.DB) *InteractionRepository {
	return &InteractionRepository{db: database}
}

// CountForUser returns the total number of interactions logged by a
// user, regardless of visibility or age.
func (r *InteractionRepository) CountForUser(ctx context.Context, userID uint64) (int64, error) {
	var count int64
	err := r.db.WithContext(ctx).
		Model(&db.Interaction{}).
		Where("user_id = ?", userID).
		Count(&count).Error
	return count, err
}

// HasPublicSince reports whether the user logged at least one
// non-private interaction after the given instant.
func (r *InteractionRepository) HasPublicSince(ctx context.Context, userID uint64, since time.Time) (bool, error) {
	var count int64
	err := r.db.WithContext(ctx).
		Model(&db.Interaction{}).
		Where("user_id = ? AND created_at >= ?", userID, since).
		Where("visibility <> ?", "private").
		Count(&count).Error
	return count > 0, err
}

// RecentPublic returns up to limit non-private interactions for the
// user, most recent first. Ties on created_at break by id descending so
// the fetch is stable across runs.
func (r *InteractionRepository) RecentPublic(ctx context.Context, userID uint64, limit int) ([]db.Interaction, error) {
	var interactions []db.Interaction
	err := r.db.WithContext(ctx).
		Where("user_id = ?", userID).
		Where("visibility <> ?", "private").
		Order("created_at DESC, id DESC").
		Limit(limit).
		Find(&interactions).Error
	if err != nil {
		return nil, err
	}
	return interactions, nil
}
