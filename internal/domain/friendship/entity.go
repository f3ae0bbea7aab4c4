package friendship

import (
	"time"

	"github.com/google/uuid"
)

// Request status values. A request leaves PENDING exactly once; rejected or
// accepted requests stay as history and never block a later request.
const (
	StatusPending  = "PENDING"
	StatusAccepted = "ACCEPTED"
	StatusRejected = "REJECTED"
)

// Relationship between the caller and another user, as annotated on search
// results.
const (
	RelationNone            = "none"
	RelationPendingSent     = "pending_sent"
	RelationPendingReceived = "pending_received"
	RelationActive          = "active"
)

// Friendship represents the friendships table. An accepted friendship is two
// rows, one per direction, written in the same transaction so the symmetric
// invariant holds at every commit point.
type Friendship struct {
	UserID    uuid.UUID `gorm:"type:uuid;primaryKey"`
	FriendID  uuid.UUID `gorm:"type:uuid;primaryKey"`
	CreatedAt time.Time
}

// FriendRequest represents the friend_requests table. At most one PENDING row
// exists per (sender, receiver) pair, enforced by a partial unique index.
type FriendRequest struct {
	ID         uuid.UUID `gorm:"type:uuid;primaryKey"`
	SenderID   uuid.UUID `gorm:"type:uuid;index"`
	ReceiverID uuid.UUID `gorm:"type:uuid;index"`
	Status     string    `gorm:"not null;default:'PENDING'"`
	CreatedAt  time.Time
	UpdatedAt  time.Time
}

func (Friendship) TableName() string {
	return "friendships"
}

func (FriendRequest) TableName() string {
	return "friend_requests"
}
