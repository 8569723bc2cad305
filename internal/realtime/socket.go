// Package realtime owns the socket.io server: per-profile rooms for
// notification pushes, per-conversation rooms for message pushes, presence
// and typing relay. Emits are fire-and-forget; the store stays authoritative
// and clients merge pushes by row id.
package realtime

import (
	"fmt"
	"net/http"
	"sync"
	"time"

	"github.com/gin-gonic/gin"
	socketio "github.com/googollee/go-socket.io"
	"github.com/googollee/go-socket.io/engineio"
	"github.com/googollee/go-socket.io/engineio/transport"
	"github.com/googollee/go-socket.io/engineio/transport/polling"
	"github.com/googollee/go-socket.io/engineio/transport/websocket"
	"github.com/hivecrest/community-backend/pkg/logger"
	"github.com/hivecrest/community-backend/pkg/utils"
)

var Server *socketio.Server

// Presence tracking
var (
	onlineProfiles   = make(map[string]string) // profileId -> socketId
	onlineProfilesMu sync.RWMutex
)

// Viewing state: which conversations each profile currently has open.
// Fan-out uses this to skip persisting a notice for a thread the
// recipient is already looking at.
var (
	viewing   = make(map[string]map[string]bool) // conversationId -> profileId set
	viewingMu sync.RWMutex
)

// Typing throttle: minimum interval between relayed typing events per sender
var (
	lastTypingEmit         = make(map[string]time.Time)
	lastTypingMu           sync.RWMutex
	typingThrottleDuration = 3 * time.Second
)

func conversationRoom(conversationID string) string {
	return "conversation:" + conversationID
}

// GetOnlineProfiles returns the ids of currently connected profiles
func GetOnlineProfiles() []string {
	onlineProfilesMu.RLock()
	defer onlineProfilesMu.RUnlock()

	ids := make([]string, 0, len(onlineProfiles))
	for id := range onlineProfiles {
		ids = append(ids, id)
	}
	return ids
}

// IsProfileOnline checks if a profile has a live connection
func IsProfileOnline(profileID string) bool {
	onlineProfilesMu.RLock()
	defer onlineProfilesMu.RUnlock()
	_, exists := onlineProfiles[profileID]
	return exists
}

// IsViewingConversation reports whether the profile has the conversation open right now
func IsViewingConversation(profileID, conversationID string) bool {
	viewingMu.RLock()
	defer viewingMu.RUnlock()
	return viewing[conversationID][profileID]
}

func setViewing(profileID, conversationID string, on bool) {
	viewingMu.Lock()
	defer viewingMu.Unlock()
	if on {
		if viewing[conversationID] == nil {
			viewing[conversationID] = make(map[string]bool)
		}
		viewing[conversationID][profileID] = true
		return
	}
	delete(viewing[conversationID], profileID)
	if len(viewing[conversationID]) == 0 {
		delete(viewing, conversationID)
	}
}

func clearViewing(profileID string) {
	viewingMu.Lock()
	defer viewingMu.Unlock()
	for convID, members := range viewing {
		delete(members, profileID)
		if len(members) == 0 {
			delete(viewing, convID)
		}
	}
}

// EmitToProfile pushes an event to a profile's personal room.
// No-op when the server is not running or the profile is offline.
func EmitToProfile(profileID, event string, data interface{}) {
	if Server != nil {
		Server.BroadcastToRoom("/", profileID, event, data)
	}
}

// EmitToConversation pushes an event to everyone subscribed to a conversation
func EmitToConversation(conversationID, event string, data interface{}) {
	if Server != nil {
		Server.BroadcastToRoom("/", conversationRoom(conversationID), event, data)
	}
}

// BroadcastPresenceUpdate broadcasts online/offline status to all clients
func BroadcastPresenceUpdate(profileID string, isOnline bool) {
	if Server != nil {
		Server.BroadcastToRoom("/", "presence", "presence_update", map[string]interface{}{
			"profileId": profileID,
			"isOnline":  isOnline,
		})
	}
}

func InitSocketServer() *socketio.Server {
	server := socketio.NewServer(&engineio.Options{
		Transports: []transport.Transport{
			&websocket.Transport{
				CheckOrigin: func(r *http.Request) bool { return true },
			},
			&polling.Transport{
				CheckOrigin: func(r *http.Request) bool { return true },
			},
		},
	})

	server.OnConnect("/", func(s socketio.Conn) error {
		s.SetContext("")
		url := s.URL()

		token := url.Query().Get("token")
		if token == "" {
			token = url.Query().Get("auth_token") // Fallback
		}

		if token == "" {
			logger.Warn().Str("socket", s.ID()).Msg("Socket connection rejected: no token")
			return fmt.Errorf("authentication required")
		}

		claims, err := utils.ValidateToken(token)
		if err != nil {
			logger.Warn().Str("socket", s.ID()).Msg("Socket connection rejected: invalid token")
			return fmt.Errorf("invalid token")
		}

		profileID := claims.UserID
		logger.Debug().Str("socket", s.ID()).Str("profile_id", profileID).Msg("Socket authenticated")

		// Store profileId in socket context for O(1) lookup
		s.SetContext(profileID)

		onlineProfilesMu.Lock()
		onlineProfiles[profileID] = s.ID()
		onlineProfilesMu.Unlock()

		// Personal room doubles as the notification topic
		s.Join(profileID)
		s.Join("presence")

		BroadcastPresenceUpdate(profileID, true)
		s.Emit("online_profiles", GetOnlineProfiles())

		return nil
	})

	// Subscribing to a conversation topic carries no authorization of its
	// own: a bogus room name receives pushes for rows the fetch path will
	// never hand out.
	server.OnEvent("/", "join_conversation", func(s socketio.Conn, conversationID string) {
		profileID, _ := s.Context().(string)
		if profileID == "" || conversationID == "" {
			return
		}
		s.Join(conversationRoom(conversationID))
		setViewing(profileID, conversationID, true)
	})

	server.OnEvent("/", "leave_conversation", func(s socketio.Conn, conversationID string) {
		profileID, _ := s.Context().(string)
		if profileID == "" || conversationID == "" {
			return
		}
		s.Leave(conversationRoom(conversationID))
		setViewing(profileID, conversationID, false)
	})

	server.OnEvent("/", "typing", func(s socketio.Conn, data map[string]interface{}) {
		conversationID, _ := data["conversationId"].(string)
		if conversationID == "" {
			return
		}

		senderID, _ := s.Context().(string)
		if senderID == "" {
			return
		}

		lastTypingMu.RLock()
		lastTime, exists := lastTypingEmit[senderID]
		lastTypingMu.RUnlock()

		if exists && time.Since(lastTime) < typingThrottleDuration {
			return
		}

		lastTypingMu.Lock()
		lastTypingEmit[senderID] = time.Now()
		lastTypingMu.Unlock()

		server.BroadcastToRoom("/", conversationRoom(conversationID), "member_typing", map[string]interface{}{
			"profileId": senderID,
			"expiresAt": time.Now().Add(4 * time.Second).Unix(),
		})
	})

	server.OnEvent("/", "get_online_profiles", func(s socketio.Conn, msg string) {
		s.Emit("online_profiles", GetOnlineProfiles())
	})

	server.OnDisconnect("/", func(s socketio.Conn, reason string) {
		// Closing a subscription has no server-side read-state effect;
		// only an explicit mark-read call changes unread state.
		onlineProfilesMu.Lock()
		var disconnectedID string
		for profileID, socketID := range onlineProfiles {
			if socketID == s.ID() {
				disconnectedID = profileID
				delete(onlineProfiles, profileID)
				break
			}
		}
		onlineProfilesMu.Unlock()

		if disconnectedID != "" {
			clearViewing(disconnectedID)
			BroadcastPresenceUpdate(disconnectedID, false)
		}
	})

	server.OnError("/", func(s socketio.Conn, e error) {
		logger.Warn().Err(e).Msg("socket error")
	})

	go server.Serve()
	Server = server
	return server
}

// Handler wraps the socket.io server for gin
func Handler(server *socketio.Server) gin.HandlerFunc {
	return func(c *gin.Context) {
		server.ServeHTTP(c.Writer, c.Request)
	}
}
