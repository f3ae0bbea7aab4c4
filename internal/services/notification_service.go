package services

import (
	"context"
	"fmt"

	"linklet/internal/domain/notification"
	"linklet/internal/domain/user"
	"linklet/internal/repository"
	linklet_errors "linklet/pkg/errors"

	"github.com/google/uuid"
)

// NotificationService persists notifications and renders their display text
// from the notification type, the sender's name and per-type metadata.
type NotificationService struct {
	repo     repository.NotificationRepository
	userRepo repository.UserRepository
}

func NewNotificationService(repo repository.NotificationRepository, userRepo repository.UserRepository) *NotificationService {
	return &NotificationService{repo: repo, userRepo: userRepo}
}

// NotificationView is a notification joined with its sender summary, the
// shape handed to transports and the websocket dispatcher.
type NotificationView struct {
	notification.Notification
	Sender user.Summary
}

type CreateNotificationInput struct {
	SenderID   uuid.UUID
	ReceiverID uuid.UUID
	Type       string
	Metadata   notification.Metadata
}

// Create validates sender and receiver, renders the message for the type and
// persists the notification.
func (s *NotificationService) Create(ctx context.Context, in CreateNotificationInput) (NotificationView, error) {
	if in.SenderID == in.ReceiverID {
		return NotificationView{}, linklet_errors.ErrInvalidOperation
	}

	sender, err := s.userRepo.GetByID(ctx, in.SenderID)
	if err != nil {
		return NotificationView{}, err
	}
	if ok, err := s.userRepo.ExistsByID(ctx, in.ReceiverID); err != nil {
		return NotificationView{}, err
	} else if !ok {
		return NotificationView{}, linklet_errors.ErrNotFound
	}

	n := notification.Notification{
		ID:         uuid.New(),
		SenderID:   in.SenderID,
		ReceiverID: in.ReceiverID,
		Type:       in.Type,
		Message:    renderMessage(in.Type, sender.Username, in.Metadata),
		Metadata:   in.Metadata,
	}
	if err := s.repo.Create(ctx, &n); err != nil {
		return NotificationView{}, err
	}
	return NotificationView{Notification: n, Sender: sender.Summary()}, nil
}

// renderMessage maps a notification type to its display text. Unknown and
// system types fall back to the metadata message when present.
func renderMessage(typ, senderName string, meta notification.Metadata) string {
	switch typ {
	case notification.TypeLike:
		return fmt.Sprintf("%s liked your post", senderName)
	case notification.TypeComment:
		return fmt.Sprintf("%s commented on your post", senderName)
	case notification.TypeFollow:
		return fmt.Sprintf("%s started following you", senderName)
	case notification.TypeShare:
		return fmt.Sprintf("%s shared your post", senderName)
	case notification.TypeFriendRequest:
		return fmt.Sprintf("%s sent you a friend request", senderName)
	case notification.TypeFriendAccept:
		return fmt.Sprintf("%s accepted your friend request", senderName)
	case notification.TypeMessage:
		return fmt.Sprintf("%s sent you a message", senderName)
	}
	if meta != nil {
		if msg, ok := meta["message"].(string); ok && msg != "" {
			return msg
		}
	}
	return "You have a new notification"
}

// List returns a page of the receiver's notifications, newest first, with
// sender summaries attached. isRead filters by read state when non-nil.
func (s *NotificationService) List(ctx context.Context, receiverID uuid.UUID, isRead *bool, page, limit int) ([]NotificationView, int64, error) {
	if page < 1 {
		page = 1
	}
	if limit < 1 || limit > 100 {
		limit = 20
	}

	items, total, err := s.repo.ListByReceiver(ctx, receiverID, isRead, page, limit)
	if err != nil {
		return nil, 0, err
	}

	senderIDs := make([]uuid.UUID, 0, len(items))
	seen := map[uuid.UUID]struct{}{}
	for _, n := range items {
		if _, ok := seen[n.SenderID]; ok {
			continue
		}
		seen[n.SenderID] = struct{}{}
		senderIDs = append(senderIDs, n.SenderID)
	}
	senders, err := s.userRepo.GetByIDs(ctx, senderIDs)
	if err != nil {
		return nil, 0, err
	}
	byID := make(map[uuid.UUID]user.Summary, len(senders))
	for _, u := range senders {
		byID[u.ID] = u.Summary()
	}

	views := make([]NotificationView, 0, len(items))
	for _, n := range items {
		views = append(views, NotificationView{Notification: n, Sender: byID[n.SenderID]})
	}
	return views, total, nil
}

// MarkRead marks one notification read. Only the receiver may do so.
func (s *NotificationService) MarkRead(ctx context.Context, notificationID, userID uuid.UUID) error {
	n, err := s.repo.GetByID(ctx, notificationID)
	if err != nil {
		return err
	}
	if n.ReceiverID != userID {
		return linklet_errors.ErrForbidden
	}
	return s.repo.MarkRead(ctx, notificationID)
}

// MarkAllRead marks every unread notification for the user and returns how
// many were updated.
func (s *NotificationService) MarkAllRead(ctx context.Context, userID uuid.UUID) (int64, error) {
	return s.repo.MarkAllRead(ctx, userID)
}
