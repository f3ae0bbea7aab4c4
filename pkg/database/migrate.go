package database

import (
	"linklet/internal/domain/conversation"
	"linklet/internal/domain/friendship"
	"linklet/internal/domain/message"
	"linklet/internal/domain/notification"
	"linklet/internal/domain/user"
)

// Migrate runs the schema migration for every aggregate plus the constraints
// gorm tags cannot express.
func Migrate() error {
	if err := DB.AutoMigrate(
		&user.User{},
		&friendship.Friendship{},
		&friendship.FriendRequest{},
		&conversation.Conversation{},
		&conversation.Participant{},
		&message.Message{},
		&message.MessageRead{},
		&message.MessageReaction{},
		&notification.Notification{},
	); err != nil {
		return err
	}

	// At most one PENDING request per (sender, receiver) pair. Resolved
	// requests stay as history and do not participate in the index.
	return DB.Exec(
		`CREATE UNIQUE INDEX IF NOT EXISTS idx_friend_requests_pending
		 ON friend_requests (sender_id, receiver_id)
		 WHERE status = 'PENDING'`,
	).Error
}
