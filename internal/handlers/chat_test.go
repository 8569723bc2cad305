package handlers

import (
	"encoding/json"
	"net/http"
	"testing"

	"github.com/hivecrest/community-backend/internal/database"
	"github.com/hivecrest/community-backend/internal/models"
	"github.com/hivecrest/community-backend/internal/services"
	"github.com/stretchr/testify/assert"
)

func TestSendMessageCreatesConversationLazily(t *testing.T) {
	setupTestDB(t)
	seedProfile(t, "alice", models.TierGold, models.RoleMember)
	seedProfile(t, "bob", models.TierSilver, models.RoleMember)

	c, w := testContext(t, "alice", "POST", "/api/chat/messages", map[string]interface{}{
		"recipientId": "bob",
		"content":     "Hi",
	})

	SendMessage(c)

	assert.Equal(t, http.StatusOK, w.Code)

	var response struct {
		Message        models.Message `json:"message"`
		ConversationID string         `json:"conversationId"`
	}
	assert.NoError(t, json.Unmarshal(w.Body.Bytes(), &response))
	assert.Equal(t, "alice", response.Message.SenderID)
	assert.Equal(t, "Hi", response.Message.PlainText)
	assert.NotEmpty(t, response.ConversationID)

	var convCount int64
	database.DB.Model(&models.Conversation{}).Count(&convCount)
	assert.Equal(t, int64(1), convCount)
}

func TestSendMessageRejectsMissingFields(t *testing.T) {
	setupTestDB(t)
	seedProfile(t, "alice", models.TierGold, models.RoleMember)

	c, w := testContext(t, "alice", "POST", "/api/chat/messages", map[string]interface{}{
		"recipientId": "",
	})

	SendMessage(c)

	assert.Equal(t, http.StatusBadRequest, w.Code)
}

func TestSendMessageRejectsEmptyDocument(t *testing.T) {
	setupTestDB(t)
	seedProfile(t, "alice", models.TierGold, models.RoleMember)
	seedProfile(t, "bob", models.TierSilver, models.RoleMember)

	c, w := testContext(t, "alice", "POST", "/api/chat/messages", map[string]interface{}{
		"recipientId": "bob",
		"content":     map[string]interface{}{"blocks": []interface{}{}},
	})

	SendMessage(c)

	assert.Equal(t, http.StatusBadRequest, w.Code)
}

func TestMarkConversationReadEndpoint(t *testing.T) {
	setupTestDB(t)
	seedProfile(t, "alice", models.TierGold, models.RoleMember)
	seedProfile(t, "bob", models.TierSilver, models.RoleMember)

	conv, err := services.GetOrCreateConversation("alice", "bob")
	assert.NoError(t, err)

	_, err = services.AppendMessage(conv.ID, "bob", json.RawMessage(`"hello"`))
	assert.NoError(t, err)

	c, w := testContext(t, "alice", "POST", "/api/chat/conversations/"+conv.ID+"/read", nil)
	c.Params = append(c.Params, paramID(conv.ID))

	MarkConversationRead(c)

	assert.Equal(t, http.StatusOK, w.Code)

	unread, err := services.UnreadCount(conv.ID, "alice")
	assert.NoError(t, err)
	assert.Equal(t, int64(0), unread)
}

func TestGetMessagesRequiresParticipation(t *testing.T) {
	setupTestDB(t)
	seedProfile(t, "alice", models.TierGold, models.RoleMember)
	seedProfile(t, "bob", models.TierSilver, models.RoleMember)
	seedProfile(t, "mallory", models.TierDiamond, models.RoleMember)

	conv, err := services.GetOrCreateConversation("alice", "bob")
	assert.NoError(t, err)

	c, w := testContext(t, "mallory", "GET", "/api/chat/conversations/"+conv.ID+"/messages", nil)
	c.Params = append(c.Params, paramID(conv.ID))

	GetMessages(c)

	assert.Equal(t, http.StatusNotFound, w.Code)
}

func TestGetConversationsInbox(t *testing.T) {
	setupTestDB(t)
	seedProfile(t, "alice", models.TierGold, models.RoleMember)
	seedProfile(t, "bob", models.TierSilver, models.RoleMember)

	conv, err := services.GetOrCreateConversation("alice", "bob")
	assert.NoError(t, err)
	_, err = services.AppendMessage(conv.ID, "bob", json.RawMessage(`"ping"`))
	assert.NoError(t, err)

	c, w := testContext(t, "alice", "GET", "/api/chat/conversations", nil)

	GetConversations(c)

	assert.Equal(t, http.StatusOK, w.Code)

	var response struct {
		Conversations []services.ConversationSummary `json:"conversations"`
	}
	assert.NoError(t, json.Unmarshal(w.Body.Bytes(), &response))
	if assert.Len(t, response.Conversations, 1) {
		assert.Equal(t, "bob", response.Conversations[0].Counterpart.ID)
		assert.Equal(t, int64(1), response.Conversations[0].UnreadCount)
	}
}
