package ws

import (
	"encoding/json"
	"time"

	"linklet/internal/domain/message"
	"linklet/internal/services"
	"linklet/internal/transport/httpdto"
	"linklet/pkg/logger"

	"github.com/google/uuid"
	"go.uber.org/zap"
)

// Frame types pushed to clients.
const (
	FrameMessage      = "message"
	FrameNotification = "notification"
)

// Envelope wraps every frame the dispatcher pushes.
type Envelope struct {
	Type      string      `json:"type"`
	Payload   interface{} `json:"payload"`
	Timestamp time.Time   `json:"timestamp"`
}

// Dispatcher fans persisted events out to live sessions. Push is fire and
// forget: no live session for a target is not an error, and a failed encode
// is logged and dropped.
type Dispatcher struct {
	hub *Hub
	log *logger.Logger
}

func NewDispatcher(hub *Hub, log *logger.Logger) *Dispatcher {
	return &Dispatcher{hub: hub, log: log}
}

// PushMessage delivers a new message to every session joined to the
// conversation's room.
func (d *Dispatcher) PushMessage(conversationID uuid.UUID, msg message.Message) {
	payload, err := json.Marshal(Envelope{
		Type:      FrameMessage,
		Payload:   httpdto.FromMessage(msg),
		Timestamp: time.Now(),
	})
	if err != nil {
		d.log.Error("message frame encode failed", zap.String("message_id", msg.ID.String()), zap.Error(err))
		return
	}
	d.hub.BroadcastToRoom(ConversationRoom(conversationID), payload)
}

// PushNotification delivers a notification to the receiver's notification
// sessions.
func (d *Dispatcher) PushNotification(view services.NotificationView) {
	payload, err := json.Marshal(Envelope{
		Type:      FrameNotification,
		Payload:   httpdto.FromNotification(view.Notification, view.Sender),
		Timestamp: time.Now(),
	})
	if err != nil {
		d.log.Error("notification frame encode failed", zap.String("notification_id", view.ID.String()), zap.Error(err))
		return
	}
	d.hub.BroadcastToRoom(UserRoom(view.ReceiverID), payload)
}
