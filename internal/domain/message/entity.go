package message

import (
	"database/sql"
	"database/sql/driver"
	"encoding/json"
	"errors"
	"time"

	"github.com/google/uuid"
)

// Attachments is a list of opaque URLs produced by the upload collaborator,
// stored as a JSONB array.
type Attachments []string

func (a Attachments) Value() (driver.Value, error) {
	if len(a) == 0 {
		return "[]", nil
	}
	data, err := json.Marshal(a)
	if err != nil {
		return nil, err
	}
	return string(data), nil
}

func (a *Attachments) Scan(value interface{}) error {
	if value == nil {
		*a = nil
		return nil
	}
	switch v := value.(type) {
	case []byte:
		return json.Unmarshal(v, a)
	case string:
		return json.Unmarshal([]byte(v), a)
	default:
		return errors.New("unsupported attachments column type")
	}
}

// Message represents the messages table. A message is immutable once created;
// reads and reactions live in satellite tables.
type Message struct {
	ID             uuid.UUID `gorm:"type:uuid;primaryKey"`
	ConversationID uuid.UUID `gorm:"type:uuid;index:idx_messages_conversation"`
	SenderID       uuid.UUID `gorm:"type:uuid"`
	Text           sql.NullString
	Attachments    Attachments `gorm:"type:jsonb"`
	CreatedAt      time.Time   `gorm:"index:idx_messages_conversation,sort:desc"`
}

// MessageRead represents the message_reads table. The composite key makes
// mark-read idempotent at the store level.
type MessageRead struct {
	MessageID uuid.UUID `gorm:"type:uuid;primaryKey"`
	UserID    uuid.UUID `gorm:"type:uuid;primaryKey"`
	ReadAt    time.Time
}

// MessageReaction represents the message_reactions table, keyed by user so a
// later reaction from the same user replaces the earlier one.
type MessageReaction struct {
	MessageID uuid.UUID `gorm:"type:uuid;primaryKey"`
	UserID    uuid.UUID `gorm:"type:uuid;primaryKey"`
	Emoji     string    `gorm:"not null"`
	UpdatedAt time.Time
}

func (Message) TableName() string {
	return "messages"
}

func (MessageRead) TableName() string {
	return "message_reads"
}

func (MessageReaction) TableName() string {
	return "message_reactions"
}
