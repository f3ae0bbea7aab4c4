package repository

import (
	"context"
	"errors"
	"time"

	"linklet/internal/domain/message"
	linklet_errors "linklet/pkg/errors"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

type PostgresMessageRepository struct {
	db *gorm.DB
}

func NewMessageRepository(db *gorm.DB) MessageRepository {
	return &PostgresMessageRepository{db: db}
}

func (r *PostgresMessageRepository) Create(ctx context.Context, m *message.Message) error {
	res := r.db.WithContext(ctx).Create(m)
	if res.Error != nil {
		if errors.Is(res.Error, gorm.ErrDuplicatedKey) {
			return linklet_errors.ErrAlreadyExists
		}
		return res.Error
	}
	return nil
}

func (r *PostgresMessageRepository) GetByID(ctx context.Context, id uuid.UUID) (message.Message, error) {
	var m message.Message
	err := r.db.WithContext(ctx).Where("id = ?", id).First(&m).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return message.Message{}, linklet_errors.ErrNotFound
		}
		return message.Message{}, err
	}
	return m, nil
}

// ListByConversation returns the requested page newest-first; the client
// reverses for chronological display.
func (r *PostgresMessageRepository) ListByConversation(ctx context.Context, conversationID uuid.UUID, page, limit int) ([]message.Message, error) {
	var messages []message.Message
	offset := (page - 1) * limit
	err := r.db.WithContext(ctx).
		Where("conversation_id = ?", conversationID).
		Order("created_at DESC").
		Offset(offset).
		Limit(limit).
		Find(&messages).Error
	if err != nil {
		return nil, err
	}
	return messages, nil
}

// MarkRead is idempotent: a repeated read receipt hits the composite key and
// is dropped by ON CONFLICT.
func (r *PostgresMessageRepository) MarkRead(ctx context.Context, messageID, userID uuid.UUID) error {
	return r.db.WithContext(ctx).Exec(
		`INSERT INTO message_reads (message_id, user_id, read_at)
		 VALUES (?, ?, ?)
		 ON CONFLICT DO NOTHING`,
		messageID, userID, time.Now(),
	).Error
}

// UpsertReaction replaces any earlier reaction from the same user. Last write
// wins, no merge semantics.
func (r *PostgresMessageRepository) UpsertReaction(ctx context.Context, reaction *message.MessageReaction) error {
	return r.db.WithContext(ctx).Exec(
		`INSERT INTO message_reactions (message_id, user_id, emoji, updated_at)
		 VALUES (?, ?, ?, ?)
		 ON CONFLICT (message_id, user_id)
		 DO UPDATE SET emoji = EXCLUDED.emoji, updated_at = EXCLUDED.updated_at`,
		reaction.MessageID, reaction.UserID, reaction.Emoji, time.Now(),
	).Error
}

func (r *PostgresMessageRepository) RemoveReaction(ctx context.Context, messageID, userID uuid.UUID) error {
	res := r.db.WithContext(ctx).
		Delete(&message.MessageReaction{}, "message_id = ? AND user_id = ?", messageID, userID)
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return linklet_errors.ErrNotFound
	}
	return nil
}

func (r *PostgresMessageRepository) Reads(ctx context.Context, messageID uuid.UUID) ([]message.MessageRead, error) {
	var reads []message.MessageRead
	err := r.db.WithContext(ctx).
		Where("message_id = ?", messageID).
		Find(&reads).Error
	if err != nil {
		return nil, err
	}
	return reads, nil
}

func (r *PostgresMessageRepository) Reactions(ctx context.Context, messageID uuid.UUID) ([]message.MessageReaction, error) {
	var reactions []message.MessageReaction
	err := r.db.WithContext(ctx).
		Where("message_id = ?", messageID).
		Find(&reactions).Error
	if err != nil {
		return nil, err
	}
	return reactions, nil
}
