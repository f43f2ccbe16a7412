package repository

import (
	"context"

	"gorm.io/gorm"

	"github.com/bookbuddy/matchengine/internal/db"
)

// UserRepository provides read access to the user directory.
type UserRepository struct {
	db *gorm.DB
}

// NewUserRepository creates a new repository bound to the given DB connection.
func NewUserRepository(database *gorm.DB) *UserRepository {
	return &UserRepository{db: database}
}

// ListOptedIn returns all active users who opted into match cycles,
// ordered by id for deterministic downstream processing.
func (r *UserRepository) ListOptedIn(ctx context.Context) ([]db.User, error) {
	var users []db.User
	err := r.db.WithContext(ctx).
		Where("match_opt_in = ? AND active = ?", true, true).
		Order("id ASC").
		Find(&users).Error
	if err != nil {
		return nil, err
	}
	return users, nil
}

// Get fetches a single user by id.
func (r *UserRepository) Get(ctx context.Context, id uint64) (*db.User, error) {
	var user db.User
	if err := r.db.WithContext(ctx).First(&user, id).Error; err != nil {
		return nil, err
	}
	return &user, nil
}
