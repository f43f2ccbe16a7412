package db

import (
	"time"
)

// User table. Owned by the account/profile surface; the match engine
// only reads it.
type User struct {
	ID              uint64 `gorm:"primaryKey;autoIncrement"`
	Username        string `gorm:"uniqueIndex;size:64;not null"`
	Email           string `gorm:"uniqueIndex;size:128;not null"`
	PasswordHash    string `gorm:"size:255;not null"`
	DisplayName     string `gorm:"size:128"`
	Gender          string `gorm:"size:16"`
	PreferredGender string `gorm:"size:16"`
	MatchOptIn      bool   `gorm:"not null;default:false;index"`
	Active          bool   `gorm:"default:true"`
	LastLoginAt     time.Time
	CreatedAt       time.Time `gorm:"autoCreateTime"`
	UpdatedAt       time.Time `gorm:"autoUpdateTime"`
}

// Interaction is one logged interaction of a user with a content item
// (a book, an article, ...). Read-only to the match engine; only rows
// whose visibility is not "private" feed taste profiles.
//
// Index:
//   - idx_interactions_user_created(user_id, created_at DESC)
//     Optimizes the bounded recency-ordered fetch per user.
type Interaction struct {
	ID         uint64   `gorm:"primaryKey;autoIncrement"`
	UserID     uint64   `gorm:"not null;index:idx_interactions_user_created,priority:1"`
	ItemID     string   `gorm:"size:64;not null"`
	ItemKind   string   `gorm:"size:32"`
	Author     string   `gorm:"size:128"`
	Categories []string `gorm:"serializer:json;type:text"`
	// Rating is optional, bounded 1-5 when present.
	Rating     *float64
	Visibility string    `gorm:"size:16"` // "", "public" or "private"
	CreatedAt  time.Time `gorm:"autoCreateTime;index:idx_interactions_user_created,priority:2,sort:desc"`
}

// Pairing is one accepted match, stored per direction so each
// participant owns a personal record.
//
// The ID is a deterministic UUID derived from
// (subject_id, partner_id, period_id), so re-running a period
// overwrites instead of accumulating.
type Pairing struct {
	ID               string   `gorm:"primaryKey;size:36"`
	SubjectID        uint64   `gorm:"not null;index:idx_pairings_subject_period,priority:1"`
	PartnerID        uint64   `gorm:"not null"`
	PeriodID         string   `gorm:"size:16;not null;index:idx_pairings_subject_period,priority:2"`
	Score            float64  `gorm:"not null"`
	SharedAuthors    []string `gorm:"serializer:json;type:text"`
	SharedCategories []string `gorm:"serializer:json;type:text"`
	Notified         bool     `gorm:"not null;default:false"`
	Responded        bool     `gorm:"not null;default:false"`
	CreatedAt        time.Time `gorm:"autoCreateTime;index"`
}

// Conversation is the per-user system conversation that match notices
// are delivered into.
type Conversation struct {
	ID        string    `gorm:"primaryKey;size:36"`
	UserID    uint64    `gorm:"uniqueIndex;not null"`
	Kind      string    `gorm:"size:16;not null;default:system"`
	CreatedAt time.Time `gorm:"autoCreateTime"`
}

// Message is a delivered match notice.
type Message struct {
	ID             string    `gorm:"primaryKey;size:36"`
	ConversationID string    `gorm:"size:36;index"`
	RecipientID    uint64    `gorm:"not null;index"`
	PairingID      string    `gorm:"size:36;not null;uniqueIndex"`
	Body           string    `gorm:"type:text"`
	CreatedAt      time.Time `gorm:"autoCreateTime"`
}

// CycleReport summarizes one matching cycle. One row per period,
// immutable after the run that wrote it.
type CycleReport struct {
	PeriodID       string `gorm:"primaryKey;size:16"`
	EligibleUsers  int
	PairCount      int
	MeanScore      float64
	TopAuthors     []string `gorm:"serializer:json;type:text"`
	TopCategories  []string `gorm:"serializer:json;type:text"`
	DurationMillis int64
	CreatedAt      time.Time `gorm:"autoCreateTime"`
}
