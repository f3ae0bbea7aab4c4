package ws

import (
	"encoding/json"
	"net/http"
	"time"

	"linklet/internal/services"
	"linklet/internal/transport/httpdto"
	"linklet/pkg/logger"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/gorilla/websocket"
	"go.uber.org/zap"
)

var upgrader = websocket.Upgrader{
	ReadBufferSize:  1024,
	WriteBufferSize: 1024,
	CheckOrigin:     func(r *http.Request) bool { return true },
}

// clientFrame is what chat sessions send upstream: room membership changes.
type clientFrame struct {
	Type           string `json:"type"`
	ConversationID string `json:"conversation_id"`
}

// Handler upgrades authenticated HTTP requests into hub sessions.
type Handler struct {
	auth          *services.AuthService
	conversations *services.ConversationService
	hub           *Hub
	log           *logger.Logger
}

func NewHandler(auth *services.AuthService, conversations *services.ConversationService, hub *Hub, log *logger.Logger) *Handler {
	return &Handler{auth: auth, conversations: conversations, hub: hub, log: log}
}

// ConnectChat opens a chat session. The client joins and leaves conversation
// rooms explicitly with join/leave frames; each join is checked against the
// conversation's participant set.
func (h *Handler) ConnectChat(c *gin.Context) {
	userID, ok := h.authenticate(c)
	if !ok {
		return
	}

	conn, err := upgrader.Upgrade(c.Writer, c.Request, nil)
	if err != nil {
		return
	}

	client := NewClient(conn, userID, ChannelChat)
	h.hub.Register(client)
	go client.WritePump()

	h.readLoop(client, func(frame clientFrame) {
		convID, err := uuid.Parse(frame.ConversationID)
		if err != nil {
			return
		}
		switch frame.Type {
		case "join":
			ok, err := h.conversations.IsParticipant(c.Request.Context(), convID, userID)
			if err != nil || !ok {
				return
			}
			h.hub.Join(client, ConversationRoom(convID))
		case "leave":
			h.hub.Leave(client, ConversationRoom(convID))
		}
	})

	h.hub.Unregister(client)
}

// ConnectNotifications opens a notification session. The session is joined
// to the user's room immediately and sends nothing meaningful upstream.
func (h *Handler) ConnectNotifications(c *gin.Context) {
	userID, ok := h.authenticate(c)
	if !ok {
		return
	}

	conn, err := upgrader.Upgrade(c.Writer, c.Request, nil)
	if err != nil {
		return
	}

	client := NewClient(conn, userID, ChannelNotifications)
	h.hub.Register(client)
	go client.WritePump()
	h.hub.Join(client, UserRoom(userID))

	h.readLoop(client, func(clientFrame) {})

	h.hub.Unregister(client)
}

func (h *Handler) authenticate(c *gin.Context) (uuid.UUID, bool) {
	token := c.Query("token")
	if token == "" {
		c.JSON(http.StatusUnauthorized, httpdto.NewErrorResponse("unauthorized", "UNAUTHORIZED"))
		return uuid.Nil, false
	}
	userID, err := h.auth.Verify(token)
	if err != nil {
		c.JSON(http.StatusUnauthorized, httpdto.NewErrorResponse("unauthorized", "UNAUTHORIZED"))
		return uuid.Nil, false
	}
	return userID, true
}

// readLoop pumps inbound frames until the connection drops. Malformed frames
// are ignored.
func (h *Handler) readLoop(client *Client, onFrame func(clientFrame)) {
	conn := client.Conn
	conn.SetReadLimit(maxMessageSize)
	_ = conn.SetReadDeadline(time.Now().Add(pongWait))
	conn.SetPongHandler(func(string) error {
		return conn.SetReadDeadline(time.Now().Add(pongWait))
	})

	for {
		_, raw, err := conn.ReadMessage()
		if err != nil {
			if websocket.IsUnexpectedCloseError(err, websocket.CloseGoingAway, websocket.CloseNormalClosure) {
				h.log.Warn("websocket read failed",
					zap.String("user_id", client.UserID.String()),
					zap.String("channel", client.Channel),
					zap.Error(err))
			}
			return
		}
		var frame clientFrame
		if err := json.Unmarshal(raw, &frame); err != nil {
			continue
		}
		onFrame(frame)
	}
}
