package repository

import (
	"context"

	"linklet/internal/domain/conversation"
	"linklet/internal/domain/friendship"
	"linklet/internal/domain/message"
	"linklet/internal/domain/notification"
	"linklet/internal/domain/user"

	"github.com/google/uuid"
)

// UserRepository is the user/profile collaborator surface. The friend and
// message services only read from it; the auth boundary writes.
type UserRepository interface {
	Create(ctx context.Context, u *user.User) error
	GetByID(ctx context.Context, id uuid.UUID) (user.User, error)
	GetByIdentity(ctx context.Context, identity string) (user.User, error)
	GetByIDs(ctx context.Context, ids []uuid.UUID) ([]user.User, error)
	ExistsByID(ctx context.Context, id uuid.UUID) (bool, error)
	Search(ctx context.Context, query string, excluding uuid.UUID, limit int) ([]user.User, error)
	SearchWithin(ctx context.Context, query string, within []uuid.UUID, limit int) ([]user.User, error)
	UpdateOnlineStatus(ctx context.Context, id uuid.UUID, online bool) error
}

// FriendRepository owns the friend graph: symmetric edges and the pending
// request queue. Every mutation is a single atomic statement (or one
// transaction for accept) so racing requests cannot lose updates.
type FriendRepository interface {
	AreFriends(ctx context.Context, a, b uuid.UUID) (bool, error)
	FriendIDs(ctx context.Context, userID uuid.UUID) ([]uuid.UUID, error)
	CreatePendingRequest(ctx context.Context, req *friendship.FriendRequest) error
	PendingRequests(ctx context.Context, receiverID uuid.UUID) ([]friendship.FriendRequest, error)
	PendingSentIDs(ctx context.Context, senderID uuid.UUID) ([]uuid.UUID, error)
	PendingReceivedIDs(ctx context.Context, receiverID uuid.UUID) ([]uuid.UUID, error)
	AcceptRequest(ctx context.Context, senderID, receiverID uuid.UUID) error
	RejectRequest(ctx context.Context, senderID, receiverID uuid.UUID) error
	RemoveFriendship(ctx context.Context, a, b uuid.UUID) error
}

// ConversationRepository owns conversation records and participant rows.
type ConversationRepository interface {
	Create(ctx context.Context, c *conversation.Conversation) error
	GetByID(ctx context.Context, id uuid.UUID) (conversation.Conversation, error)
	GetByPairKey(ctx context.Context, pairKey string) (conversation.Conversation, error)
	ListForUser(ctx context.Context, userID uuid.UUID) ([]conversation.Conversation, error)
	Activate(ctx context.Context, id uuid.UUID) error
	SetLastMessage(ctx context.Context, conversationID, messageID uuid.UUID) error
	IsParticipant(ctx context.Context, conversationID, userID uuid.UUID) (bool, error)
}

// MessageRepository owns message rows and their read/reaction satellites.
type MessageRepository interface {
	Create(ctx context.Context, m *message.Message) error
	GetByID(ctx context.Context, id uuid.UUID) (message.Message, error)
	ListByConversation(ctx context.Context, conversationID uuid.UUID, page, limit int) ([]message.Message, error)
	MarkRead(ctx context.Context, messageID, userID uuid.UUID) error
	UpsertReaction(ctx context.Context, r *message.MessageReaction) error
	RemoveReaction(ctx context.Context, messageID, userID uuid.UUID) error
	Reads(ctx context.Context, messageID uuid.UUID) ([]message.MessageRead, error)
	Reactions(ctx context.Context, messageID uuid.UUID) ([]message.MessageReaction, error)
}

// NotificationRepository owns notification rows.
type NotificationRepository interface {
	Create(ctx context.Context, n *notification.Notification) error
	GetByID(ctx context.Context, id uuid.UUID) (notification.Notification, error)
	ListByReceiver(ctx context.Context, receiverID uuid.UUID, isRead *bool, page, limit int) ([]notification.Notification, int64, error)
	MarkRead(ctx context.Context, id uuid.UUID) error
	MarkAllRead(ctx context.Context, receiverID uuid.UUID) (int64, error)
}
