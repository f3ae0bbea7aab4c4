package notification

import (
	"database/sql/driver"
	"encoding/json"
	"errors"
	"time"

	"github.com/google/uuid"
)

// Notification types. The rendering template table in the service is keyed by
// these; anything unknown falls through like TypeSystem.
const (
	TypeLike          = "like"
	TypeComment       = "comment"
	TypeFollow        = "follow"
	TypeShare         = "share"
	TypeFriendRequest = "friend_request"
	TypeFriendAccept  = "friend_accept"
	TypeMessage       = "message"
	TypeSystem        = "system"
)

// Metadata is the opaque per-type payload, stored as JSONB for forward
// compatibility. Only the rendering path interprets it.
type Metadata map[string]interface{}

func (m Metadata) Value() (driver.Value, error) {
	if m == nil {
		return "{}", nil
	}
	data, err := json.Marshal(m)
	if err != nil {
		return nil, err
	}
	return string(data), nil
}

func (m *Metadata) Scan(value interface{}) error {
	if value == nil {
		*m = nil
		return nil
	}
	switch v := value.(type) {
	case []byte:
		return json.Unmarshal(v, m)
	case string:
		return json.Unmarshal([]byte(v), m)
	default:
		return errors.New("unsupported metadata column type")
	}
}

// Notification represents the notifications table. Rows are only ever created
// as a side effect of another domain event.
type Notification struct {
	ID         uuid.UUID `gorm:"type:uuid;primaryKey"`
	SenderID   uuid.UUID `gorm:"type:uuid;index"`
	ReceiverID uuid.UUID `gorm:"type:uuid;index:idx_notifications_receiver"`
	Type       string    `gorm:"not null"`
	Message    string
	IsRead     bool      `gorm:"default:false"`
	Metadata   Metadata  `gorm:"type:jsonb"`
	CreatedAt  time.Time `gorm:"index:idx_notifications_receiver,sort:desc"`
}

func (Notification) TableName() string {
	return "notifications"
}
