package conversation

import (
	"database/sql"
	"strings"
	"time"

	"github.com/google/uuid"

	"linklet/internal/domain/message"
)

const (
	StatusPending = "PENDING"
	StatusActive  = "ACTIVE"
)

// Conversation represents the conversations table. For a direct conversation
// PairKey is the sorted participant pair and carries a unique index, which is
// what makes find-or-create race-safe: the loser of a concurrent create hits
// the constraint and re-reads the winner's row.
type Conversation struct {
	ID            uuid.UUID `gorm:"type:uuid;primaryKey"`
	IsGroup       bool
	GroupName     sql.NullString
	GroupAvatar   sql.NullString
	Status        string         `gorm:"not null;default:'PENDING'"`
	PairKey       sql.NullString `gorm:"uniqueIndex"`
	LastMessageID uuid.NullUUID  `gorm:"type:uuid"`
	CreatedAt     time.Time
	UpdatedAt     time.Time `gorm:"index:idx_conversations_updated,sort:desc"`

	// Relations
	Participants []Participant    `gorm:"foreignKey:ConversationID"`
	LastMessage  *message.Message `gorm:"foreignKey:LastMessageID;references:ID"`
}

// Participant represents the participants table.
type Participant struct {
	ConversationID uuid.UUID `gorm:"type:uuid;primaryKey"`
	UserID         uuid.UUID `gorm:"type:uuid;primaryKey;index:idx_participants_user"`
	JoinedAt       time.Time
}

func (Conversation) TableName() string {
	return "conversations"
}

func (Participant) TableName() string {
	return "participants"
}

// PairKey builds the canonical key for an unordered user pair.
func PairKey(a, b uuid.UUID) string {
	ids := []string{a.String(), b.String()}
	if strings.Compare(ids[0], ids[1]) > 0 {
		ids[0], ids[1] = ids[1], ids[0]
	}
	return ids[0] + ":" + ids[1]
}

// HasParticipant reports whether userID is a member of the conversation.
// Participants must be preloaded.
func (c Conversation) HasParticipant(userID uuid.UUID) bool {
	for _, p := range c.Participants {
		if p.UserID == userID {
			return true
		}
	}
	return false
}
