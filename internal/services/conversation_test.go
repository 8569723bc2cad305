package services

import (
	"encoding/json"
	"testing"
	"time"

	"github.com/hivecrest/community-backend/internal/database"
	"github.com/hivecrest/community-backend/internal/models"
	apperrors "github.com/hivecrest/community-backend/pkg/errors"
	"github.com/stretchr/testify/assert"
)

func textDoc(text string) json.RawMessage {
	raw, _ := json.Marshal(text)
	return raw
}

func TestGetOrCreateConversationIdempotent(t *testing.T) {
	setupTestDB(t)
	seedProfile(t, "alice", models.TierGold)
	seedProfile(t, "bob", models.TierSilver)

	first, err := GetOrCreateConversation("alice", "bob")
	assert.NoError(t, err)

	// Same pair, both orders, repeatedly
	second, err := GetOrCreateConversation("bob", "alice")
	assert.NoError(t, err)
	third, err := GetOrCreateConversation("alice", "bob")
	assert.NoError(t, err)

	assert.Equal(t, first.ID, second.ID)
	assert.Equal(t, first.ID, third.ID)

	var convCount, participantCount int64
	database.DB.Model(&models.Conversation{}).Count(&convCount)
	database.DB.Model(&models.ConversationParticipant{}).Count(&participantCount)
	assert.Equal(t, int64(1), convCount)
	assert.Equal(t, int64(2), participantCount)
}

func TestGetOrCreateConversationRejectsSelf(t *testing.T) {
	setupTestDB(t)
	seedProfile(t, "alice", models.TierGold)

	_, err := GetOrCreateConversation("alice", "alice")
	assert.Error(t, err)
}

func TestMarkConversationReadMonotonic(t *testing.T) {
	setupTestDB(t)
	seedProfile(t, "alice", models.TierGold)
	seedProfile(t, "bob", models.TierSilver)

	conv, err := GetOrCreateConversation("alice", "bob")
	assert.NoError(t, err)

	later := time.Now()
	earlier := later.Add(-time.Hour)

	advanced, err := MarkConversationRead(conv.ID, "alice", later)
	assert.NoError(t, err)
	assert.True(t, advanced)

	// An older timestamp is a no-op, not an error
	advanced, err = MarkConversationRead(conv.ID, "alice", earlier)
	assert.NoError(t, err)
	assert.False(t, advanced)

	participant, err := GetParticipant(conv.ID, "alice")
	assert.NoError(t, err)
	assert.NotNil(t, participant.LastReadAt)
	assert.WithinDuration(t, later, *participant.LastReadAt, time.Millisecond)
}

func TestMarkConversationReadUnknownConversation(t *testing.T) {
	setupTestDB(t)
	seedProfile(t, "alice", models.TierGold)

	_, err := MarkConversationRead("no-such-conversation", "alice", time.Now())
	assert.Equal(t, apperrors.ErrNotFound, err)
}

func TestUnreadCountExchange(t *testing.T) {
	setupTestDB(t)
	seedProfile(t, "alice", models.TierGold)
	seedProfile(t, "bob", models.TierSilver)

	conv, err := GetOrCreateConversation("alice", "bob")
	assert.NoError(t, err)

	// Alice: "Hi"
	_, err = AppendMessage(conv.ID, "alice", textDoc("Hi"))
	assert.NoError(t, err)

	aliceUnread, _ := UnreadCount(conv.ID, "alice")
	bobUnread, _ := UnreadCount(conv.ID, "bob")
	assert.Equal(t, int64(0), aliceUnread)
	assert.Equal(t, int64(1), bobUnread)

	// Bob opens the thread, then replies: "Hello back"
	_, err = MarkConversationRead(conv.ID, "bob", time.Now())
	assert.NoError(t, err)
	_, err = AppendMessage(conv.ID, "bob", textDoc("Hello back"))
	assert.NoError(t, err)

	aliceUnread, _ = UnreadCount(conv.ID, "alice")
	bobUnread, _ = UnreadCount(conv.ID, "bob")
	assert.Equal(t, int64(1), aliceUnread)
	assert.Equal(t, int64(0), bobUnread)

	// Alice reads; both sides settle at zero
	_, err = MarkConversationRead(conv.ID, "alice", time.Now())
	assert.NoError(t, err)

	aliceUnread, _ = UnreadCount(conv.ID, "alice")
	assert.Equal(t, int64(0), aliceUnread)
}

func TestUnreadCountIncrementsPerCounterpartMessage(t *testing.T) {
	setupTestDB(t)
	seedProfile(t, "alice", models.TierGold)
	seedProfile(t, "bob", models.TierSilver)

	conv, err := GetOrCreateConversation("alice", "bob")
	assert.NoError(t, err)

	for i := 1; i <= 3; i++ {
		_, err = AppendMessage(conv.ID, "bob", textDoc("ping"))
		assert.NoError(t, err)

		unread, err := UnreadCount(conv.ID, "alice")
		assert.NoError(t, err)
		assert.Equal(t, int64(i), unread)
	}

	// Own messages never count against the sender
	unread, err := UnreadCount(conv.ID, "bob")
	assert.NoError(t, err)
	assert.Equal(t, int64(0), unread)
}

func TestListConversationsOrderAndCounts(t *testing.T) {
	setupTestDB(t)
	seedProfile(t, "alice", models.TierGold)
	seedProfile(t, "bob", models.TierSilver)
	seedProfile(t, "carol", models.TierPlatinum)

	convBob, _ := GetOrCreateConversation("alice", "bob")
	convCarol, _ := GetOrCreateConversation("alice", "carol")

	_, err := AppendMessage(convBob.ID, "bob", textDoc("first"))
	assert.NoError(t, err)
	time.Sleep(2 * time.Millisecond)
	_, err = AppendMessage(convCarol.ID, "carol", textDoc("second"))
	assert.NoError(t, err)

	summaries, err := ListConversations("alice")
	assert.NoError(t, err)
	assert.Len(t, summaries, 2)

	// Most recently touched conversation first
	assert.Equal(t, "carol", summaries[0].Counterpart.ID)
	assert.Equal(t, "bob", summaries[1].Counterpart.ID)
	assert.Equal(t, int64(1), summaries[0].UnreadCount)
	assert.NotNil(t, summaries[0].LastMessage)
	assert.Equal(t, "second", summaries[0].LastMessage.PlainText)
}
