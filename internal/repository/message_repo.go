package repository

import (
	"context"
	"strconv"

	"github.com/google/uuid"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"github.com/bookbuddy/matchengine/internal/db"
)

// conversationNamespace seeds deterministic system-conversation ids so
// repeated deliveries reuse the same conversation per user.
var conversationNamespace = uuid.MustParse("7f1b6c1e-9a34-4cf6-8a6e-2f8a35c2d101")

// MessageRepository delivers match notices: it owns the system
// conversation per recipient and the message rows.
type MessageRepository struct {
	db *gorm.DB
}

// NewMessageRepository creates a new repository bound to the given DB connection.
func NewMessageRepository(database *gorm.DB) *MessageRepository {
	return &MessageRepository{db: database}
}

// DeliverAll persists a cycle's match notices as one all-or-nothing batch.
//
// Behavior:
//   - Runs in a single transaction; a partial failure rolls everything back.
//   - Ensures each recipient has a system conversation (created on first
//     delivery, reused afterwards).
//   - Upserts messages on their deterministic id, so re-running a period
//     rewrites the same notices instead of duplicating them.
//   - Flips the notified flag on the delivered pairings.
func (r *MessageRepository) DeliverAll(ctx context.Context, messages []db.Message) error {
	if len(messages) == 0 {
		return nil
	}
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		pairingIDs := make([]string, 0, len(messages))

		for i := range messages {
			conv := db.Conversation{
				ID:     uuid.NewSHA1(conversationNamespace, []byte(strconv.FormatUint(messages[i].RecipientID, 10))).String(),
				UserID: messages[i].RecipientID,
				Kind:   "system",
			}
			if err := tx.Clauses(clause.OnConflict{
				Columns:   []clause.Column{{Name: "user_id"}},
				DoNothing: true,
			}).Create(&conv).Error; err != nil {
				return err
			}
			messages[i].ConversationID = conv.ID
			pairingIDs = append(pairingIDs, messages[i].PairingID)
		}

		if err := tx.Clauses(clause.OnConflict{
			Columns:   []clause.Column{{Name: "id"}},
			DoUpdates: clause.AssignmentColumns([]string{"conversation_id", "recipient_id", "body"}),
		}).Create(&messages).Error; err != nil {
			return err
		}

		return tx.Model(&db.Pairing{}).
			Where("id IN ?", pairingIDs).
			Update("notified", true).Error
	})
}

// ListForConversation returns a conversation's messages, oldest first.
func (r *MessageRepository) ListForConversation(ctx context.Context, conversationID string, limit int) ([]db.Message, error) {
	var messages []db.Message
	err := r.db.WithContext(ctx).
		Where("conversation_id = ?", conversationID).
		Order("created_at ASC").
		Limit(limit).
		Find(&messages).Error
	if err != nil {
		return nil, err
	}
	return messages, nil
}
