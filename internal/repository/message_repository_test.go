package repository_test

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/bookbuddy/matchengine/internal/db"
	"github.com/bookbuddy/matchengine/internal/repository"
)

func TestDeliverAll_CreatesConversationsAndMarksNotified(t *testing.T) {
	ctx := context.Background()
	gdb := setupTestDB(t)
	pairingRepo := repository.NewPairingRepository(gdb)
	messageRepo := repository.NewMessageRepository(gdb)

	now := time.Now().UTC()
	require.NoError(t, pairingRepo.SaveAll(ctx, []db.Pairing{
		pairing("p-1", 1, 2, "2024-W07", 0.8, now),
		pairing("p-2", 2, 1, "2024-W07", 0.8, now),
	}))

	messages := []db.Message{
		{ID: "m-1", RecipientID: 1, PairingID: "p-1", Body: "hello 1"},
		{ID: "m-2", RecipientID: 2, PairingID: "p-2", Body: "hello 2"},
	}
	require.NoError(t, messageRepo.DeliverAll(ctx, messages))

	var conversations []db.Conversation
	require.NoError(t, gdb.Order("user_id").Find(&conversations).Error)
	require.Len(t, conversations, 2)
	assert.Equal(t, "system", conversations[0].Kind)

	var stored []db.Message
	require.NoError(t, gdb.Order("id").Find(&stored).Error)
	require.Len(t, stored, 2)
	assert.Equal(t, conversations[0].ID, stored[0].ConversationID)

	var pairings []db.Pairing
	require.NoError(t, gdb.Find(&pairings).Error)
	for _, p := range pairings {
		assert.True(t, p.Notified)
	}
}

func TestDeliverAll_ReusesConversationAndIsIdempotent(t *testing.T) {
	ctx := context.Background()
	gdb := setupTestDB(t)
	pairingRepo := repository.NewPairingRepository(gdb)
	messageRepo := repository.NewMessageRepository(gdb)

	now := time.Now().UTC()
	require.NoError(t, pairingRepo.SaveAll(ctx, []db.Pairing{
		pairing("p-1", 1, 2, "2024-W07", 0.8, now),
	}))

	msg := []db.Message{{ID: "m-1", RecipientID: 1, PairingID: "p-1", Body: "hello"}}
	require.NoError(t, messageRepo.DeliverAll(ctx, append([]db.Message(nil), msg...)))

	// a second delivery of the same notice rewrites, not duplicates
	msg[0].Body = "hello again"
	require.NoError(t, messageRepo.DeliverAll(ctx, msg))

	var convCount, msgCount int64
	require.NoError(t, gdb.Model(&db.Conversation{}).Count(&convCount).Error)
	require.NoError(t, gdb.Model(&db.Message{}).Count(&msgCount).Error)
	assert.Equal(t, int64(1), convCount)
	assert.Equal(t, int64(1), msgCount)

	var stored db.Message
	require.NoError(t, gdb.First(&stored, "id = ?", "m-1").Error)
	assert.Equal(t, "hello again", stored.Body)
}

func TestListForConversation(t *testing.T) {
	ctx := context.Background()
	gdb := setupTestDB(t)
	pairingRepo := repository.NewPairingRepository(gdb)
	messageRepo := repository.NewMessageRepository(gdb)

	now := time.Now().UTC()
	require.NoError(t, pairingRepo.SaveAll(ctx, []db.Pairing{
		pairing("p-1", 1, 2, "2024-W06", 0.8, now),
		pairing("p-3", 1, 3, "2024-W07", 0.8, now),
	}))
	require.NoError(t, messageRepo.DeliverAll(ctx, []db.Message{
		{ID: "m-1", RecipientID: 1, PairingID: "p-1", Body: "first"},
		{ID: "m-2", RecipientID: 1, PairingID: "p-3", Body: "second"},
	}))

	var conv db.Conversation
	require.NoError(t, gdb.First(&conv, "user_id = ?", 1).Error)

	messages, err := messageRepo.ListForConversation(ctx, conv.ID, 10)
	require.NoError(t, err)
	assert.Len(t, messages, 2)
}
