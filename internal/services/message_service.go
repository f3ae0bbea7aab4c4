package services

import (
	"context"
	"database/sql"
	"strings"

	"linklet/internal/domain/message"
	"linklet/internal/repository"
	linklet_errors "linklet/pkg/errors"

	"github.com/google/uuid"
)

// MessageService is the sole mutator of message content, read receipts and
// reactions.
type MessageService struct {
	repo     repository.MessageRepository
	convRepo repository.ConversationRepository
}

func NewMessageService(repo repository.MessageRepository, convRepo repository.ConversationRepository) *MessageService {
	return &MessageService{repo: repo, convRepo: convRepo}
}

type SendMessageInput struct {
	ConversationID uuid.UUID
	SenderID       uuid.UUID
	Text           string
	Attachments    []string
}

// Send persists a message in a conversation the sender participates in. A
// message needs text or at least one attachment. The conversation's
// last-message pointer moves with it.
func (s *MessageService) Send(ctx context.Context, in SendMessageInput) (message.Message, error) {
	text := strings.TrimSpace(in.Text)
	if text == "" && len(in.Attachments) == 0 {
		return message.Message{}, linklet_errors.ErrInvalidOperation
	}

	if _, err := s.convRepo.GetByID(ctx, in.ConversationID); err != nil {
		return message.Message{}, err
	}
	if ok, err := s.convRepo.IsParticipant(ctx, in.ConversationID, in.SenderID); err != nil {
		return message.Message{}, err
	} else if !ok {
		return message.Message{}, linklet_errors.ErrForbidden
	}

	msg := message.Message{
		ID:             uuid.New(),
		ConversationID: in.ConversationID,
		SenderID:       in.SenderID,
		Attachments:    in.Attachments,
	}
	if text != "" {
		msg.Text = sql.NullString{String: text, Valid: true}
	}

	if err := s.repo.Create(ctx, &msg); err != nil {
		return message.Message{}, err
	}
	if err := s.convRepo.SetLastMessage(ctx, in.ConversationID, msg.ID); err != nil {
		return message.Message{}, err
	}
	return msg, nil
}

// ListConversationMessages returns a page of messages, newest first. Fails
// with not found when the conversation does not exist.
func (s *MessageService) ListConversationMessages(ctx context.Context, conversationID uuid.UUID, page, limit int) ([]message.Message, error) {
	if page < 1 {
		page = 1
	}
	if limit < 1 || limit > 100 {
		limit = 50
	}
	if _, err := s.convRepo.GetByID(ctx, conversationID); err != nil {
		return nil, err
	}
	return s.repo.ListByConversation(ctx, conversationID, page, limit)
}

// MarkRead records that the user has read the message. Repeated calls are
// no-ops.
func (s *MessageService) MarkRead(ctx context.Context, messageID, userID uuid.UUID) error {
	msg, err := s.repo.GetByID(ctx, messageID)
	if err != nil {
		return err
	}
	if ok, err := s.convRepo.IsParticipant(ctx, msg.ConversationID, userID); err != nil {
		return err
	} else if !ok {
		return linklet_errors.ErrForbidden
	}
	return s.repo.MarkRead(ctx, messageID, userID)
}

// AddReaction sets the user's reaction on the message. A second reaction
// from the same user replaces the first.
func (s *MessageService) AddReaction(ctx context.Context, messageID, userID uuid.UUID, emoji string) error {
	if emoji == "" {
		return linklet_errors.ErrInvalidInput
	}
	msg, err := s.repo.GetByID(ctx, messageID)
	if err != nil {
		return err
	}
	if ok, err := s.convRepo.IsParticipant(ctx, msg.ConversationID, userID); err != nil {
		return err
	} else if !ok {
		return linklet_errors.ErrForbidden
	}
	return s.repo.UpsertReaction(ctx, &message.MessageReaction{
		MessageID: messageID,
		UserID:    userID,
		Emoji:     emoji,
	})
}

// RemoveReaction clears the user's reaction on the message, if any.
func (s *MessageService) RemoveReaction(ctx context.Context, messageID, userID uuid.UUID) error {
	return s.repo.RemoveReaction(ctx, messageID, userID)
}

// Reads returns the read receipts for a message.
func (s *MessageService) Reads(ctx context.Context, messageID uuid.UUID) ([]message.MessageRead, error) {
	return s.repo.Reads(ctx, messageID)
}

// Reactions returns the reactions on a message.
func (s *MessageService) Reactions(ctx context.Context, messageID uuid.UUID) ([]message.MessageReaction, error) {
	return s.repo.Reactions(ctx, messageID)
}
