package repository

import (
	"context"
	"time"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"github.com/bookbuddy/matchengine/internal/db"
	"github.com/bookbuddy/matchengine/internal/utils/pagination"
)

// PairingRepository provides data access methods for Pairing records
// and the per-cycle report.
type PairingRepository struct {
	db *gorm.DB
}

// NewPairingRepository creates a new repository bound to the given DB connection.
func NewPairingRepository(database *gorm.DB) *PairingRepository {
	return &PairingRepository{db: database}
}

// SaveAll persists a cycle's pairings as one all-or-nothing batch.
//
// Behavior:
//   - Runs in a single transaction; a partial failure rolls everything back.
//   - Upserts on the deterministic pairing id, so re-running the same
//     period overwrites rather than accumulates.
func (r *PairingRepository) SaveAll(ctx context.Context, pairings []db.Pairing) error {
	if len(pairings) == 0 {
		return nil
	}
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		return tx.Clauses(clause.OnConflict{
			Columns: []clause.Column{{Name: "id"}},
			DoUpdates: clause.AssignmentColumns([]string{
				"subject_id", "partner_id", "period_id", "score",
				"shared_authors", "shared_categories",
			}),
		}).Create(&pairings).Error
	})
}

// CreatedSince returns all pairings created after the given instant.
// Used to build the cooldown index.
func (r *PairingRepository) CreatedSince(ctx context.Context, since time.Time) ([]db.Pairing, error) {
	var pairings []db.Pairing
	err := r.db.WithContext(ctx).
		Where("created_at >= ?", since).
		Find(&pairings).Error
	if err != nil {
		return nil, err
	}
	return pairings, nil
}

// MarkNotified flips the notified flag for the given pairing ids.
func (r *PairingRepository) MarkNotified(ctx context.Context, ids []string) error {
	if len(ids) == 0 {
		return nil
	}
	return r.db.WithContext(ctx).
		Model(&db.Pairing{}).
		Where("id IN ?", ids).
		Update("notified", true).Error
}

// MarkResponded flips the responded flag for a single pairing. Called
// by the conversation surface when the subject reacts to a match.
func (r *PairingRepository) MarkResponded(ctx context.Context, id string) error {
	return r.db.WithContext(ctx).
		Model(&db.Pairing{}).
		Where("id = ?", id).
		Update("responded", true).Error
}

// CountForUser returns how many pairings a user has as subject.
// Used in conjunction with the Redis cache (DB is fallback).
func (r *PairingRepository) CountForUser(ctx context.Context, userID uint64) (int64, error) {
	var count int64
	err := r.db.WithContext(ctx).
		Model(&db.Pairing{}).
		Where("subject_id = ?", userID).
		Count(&count).Error
	return count, err
}

// ListForUser returns a user's pairing history, newest first, with
// cursor-based pagination via paginationToken.
func (r *PairingRepository) ListForUser(
	ctx context.Context,
	userID uint64,
	paginationToken *string,
	limit int,
) ([]db.Pairing, *string, error) {
	var pairings []db.Pairing

	// decode cursor if provided
	cursor, err := pagination.Decode(getString(paginationToken))
	if err != nil {
		return nil, nil, err
	}

	query := r.db.WithContext(ctx).
		Where("subject_id = ?", userID).
		Order("created_at DESC, id DESC").
		Limit(limit + 1)

	// apply cursor
	if cursor.PairingID != "" && cursor.CreatedUnix > 0 {
		ts := time.UnixMilli(cursor.CreatedUnix)
		query = query.Where(
			"(created_at < ? OR (created_at = ? AND id < ?))",
			ts, ts, cursor.PairingID,
		)
	}

	if err := query.Find(&pairings).Error; err != nil {
		return nil, nil, err
	}

	// pagination: build next cursor if needed
	var nextToken *string
	if len(pairings) > limit {
		last := pairings[limit-1]
		token, _ := pagination.Encode(pagination.Cursor{
			PairingID:   last.ID,
			CreatedUnix: last.CreatedAt.UnixMilli(),
		})
		nextToken = &token
		pairings = pairings[:limit]
	}

	return pairings, nextToken, nil
}

// SaveReport upserts the cycle report for its period.
func (r *PairingRepository) SaveReport(ctx context.Context, report *db.CycleReport) error {
	return r.db.WithContext(ctx).Clauses(clause.OnConflict{
		Columns: []clause.Column{{Name: "period_id"}},
		DoUpdates: clause.AssignmentColumns([]string{
			"eligible_users", "pair_count", "mean_score",
			"top_authors", "top_categories", "duration_millis",
		}),
	}).Create(report).Error
}

// GetReport fetches the report for a period.
func (r *PairingRepository) GetReport(ctx context.Context, periodID string) (*db.CycleReport, error) {
	var report db.CycleReport
	if err := r.db.WithContext(ctx).First(&report, "period_id = ?", periodID).Error; err != nil {
		return nil, err
	}
	return &report, nil
}

// getString safely dereferences a string pointer for pagination tokens.
func getString(s *string) string {
	if s == nil {
		return ""
	}
	return *s
}
