package services

import (
	"context"
	"time"

	"linklet/internal/domain/friendship"
	"linklet/internal/domain/notification"
	"linklet/internal/domain/user"
	"linklet/internal/repository"
	linklet_errors "linklet/pkg/errors"
	"linklet/pkg/logger"

	"github.com/google/uuid"
	"go.uber.org/zap"
)

// NotificationPusher delivers a freshly created notification to the
// receiver's live sessions. Delivery is best effort.
type NotificationPusher interface {
	PushNotification(view NotificationView)
}

// FriendService runs the friend-request state machine and the follow-up
// pipeline that accepting a request triggers.
type FriendService struct {
	userRepo      repository.UserRepository
	friendRepo    repository.FriendRepository
	conversations *ConversationService
	notifications *NotificationService
	pusher        NotificationPusher
	log           *logger.Logger
}

func NewFriendService(
	userRepo repository.UserRepository,
	friendRepo repository.FriendRepository,
	conversations *ConversationService,
	notifications *NotificationService,
	pusher NotificationPusher,
	log *logger.Logger,
) *FriendService {
	return &FriendService{
		userRepo:      userRepo,
		friendRepo:    friendRepo,
		conversations: conversations,
		notifications: notifications,
		pusher:        pusher,
		log:           log,
	}
}

// RequestView is a pending friend request joined with its sender summary.
type RequestView struct {
	ID        uuid.UUID    `json:"id"`
	Sender    user.Summary `json:"sender"`
	CreatedAt time.Time    `json:"created_at"`
}

// SearchResult annotates a user with their relationship to the caller.
type SearchResult struct {
	user.Summary
	Relationship string `json:"relationship"`
}

// AcceptResult reports the outcome of the accept pipeline. ConversationID is
// nil when conversation activation failed; the friendship itself still holds.
type AcceptResult struct {
	FriendID       uuid.UUID
	ConversationID *uuid.UUID
}

// SendRequest records a pending request from sender to receiver. Fails on
// self-requests, unknown receivers, existing friendships and duplicate
// pending requests. The friend_request notification is best effort.
func (s *FriendService) SendRequest(ctx context.Context, senderID, receiverID uuid.UUID) error {
	if senderID == receiverID {
		return linklet_errors.ErrInvalidOperation
	}
	if ok, err := s.userRepo.ExistsByID(ctx, receiverID); err != nil {
		return err
	} else if !ok {
		return linklet_errors.ErrNotFound
	}
	if friends, err := s.friendRepo.AreFriends(ctx, senderID, receiverID); err != nil {
		return err
	} else if friends {
		return linklet_errors.ErrAlreadyFriends
	}

	req := friendship.FriendRequest{
		ID:         uuid.New(),
		SenderID:   senderID,
		ReceiverID: receiverID,
		Status:     friendship.StatusPending,
	}
	if err := s.friendRepo.CreatePendingRequest(ctx, &req); err != nil {
		return err
	}

	s.notify(ctx, senderID, receiverID, notification.TypeFriendRequest, nil)
	return nil
}

// AcceptRequest accepts the pending request from senderID to the current
// user. The friend edge is written first and is authoritative; conversation
// activation and the friend_accept notification follow, and a failure in
// either is logged without undoing the friendship.
func (s *FriendService) AcceptRequest(ctx context.Context, userID, senderID uuid.UUID) (AcceptResult, error) {
	if err := s.friendRepo.AcceptRequest(ctx, senderID, userID); err != nil {
		return AcceptResult{}, err
	}

	res := AcceptResult{FriendID: senderID}
	convID, err := s.conversations.ActivateDirect(ctx, userID, senderID)
	if err != nil {
		s.log.Error("friend accept: conversation activation failed",
			zap.String("user_id", userID.String()),
			zap.String("friend_id", senderID.String()),
			zap.Error(err))
	} else {
		res.ConversationID = &convID
	}

	s.notify(ctx, userID, senderID, notification.TypeFriendAccept, nil)
	return res, nil
}

// RejectRequest declines the pending request from senderID to the current
// user. The request record is kept with its terminal status.
func (s *FriendService) RejectRequest(ctx context.Context, userID, senderID uuid.UUID) error {
	return s.friendRepo.RejectRequest(ctx, senderID, userID)
}

// CancelFriend removes the friendship in both directions. Conversations
// between the pair are left untouched.
func (s *FriendService) CancelFriend(ctx context.Context, userID, friendID uuid.UUID) error {
	if userID == friendID {
		return linklet_errors.ErrInvalidOperation
	}
	return s.friendRepo.RemoveFriendship(ctx, userID, friendID)
}

// ListFriends returns summaries of the user's friends.
func (s *FriendService) ListFriends(ctx context.Context, userID uuid.UUID) ([]user.Summary, error) {
	ids, err := s.friendRepo.FriendIDs(ctx, userID)
	if err != nil {
		return nil, err
	}
	users, err := s.userRepo.GetByIDs(ctx, ids)
	if err != nil {
		return nil, err
	}
	out := make([]user.Summary, 0, len(users))
	for _, u := range users {
		out = append(out, u.Summary())
	}
	return out, nil
}

// ListRequests returns the user's incoming pending requests with sender
// summaries, newest first.
func (s *FriendService) ListRequests(ctx context.Context, userID uuid.UUID) ([]RequestView, error) {
	reqs, err := s.friendRepo.PendingRequests(ctx, userID)
	if err != nil {
		return nil, err
	}

	senderIDs := make([]uuid.UUID, 0, len(reqs))
	for _, r := range reqs {
		senderIDs = append(senderIDs, r.SenderID)
	}
	senders, err := s.userRepo.GetByIDs(ctx, senderIDs)
	if err != nil {
		return nil, err
	}
	byID := make(map[uuid.UUID]user.Summary, len(senders))
	for _, u := range senders {
		byID[u.ID] = u.Summary()
	}

	views := make([]RequestView, 0, len(reqs))
	for _, r := range reqs {
		views = append(views, RequestView{ID: r.ID, Sender: byID[r.SenderID], CreatedAt: r.CreatedAt})
	}
	return views, nil
}

// SearchUsers searches all users by name, email or phone and annotates each
// hit with the caller's relationship to them.
func (s *FriendService) SearchUsers(ctx context.Context, callerID uuid.UUID, query string, limit int) ([]SearchResult, error) {
	if query == "" {
		return nil, linklet_errors.ErrInvalidInput
	}
	if limit < 1 || limit > 50 {
		limit = 20
	}

	users, err := s.userRepo.Search(ctx, query, callerID, limit)
	if err != nil {
		return nil, err
	}
	return s.annotate(ctx, callerID, users)
}

// SearchFriends searches only within the caller's friend set.
func (s *FriendService) SearchFriends(ctx context.Context, callerID uuid.UUID, query string, limit int) ([]SearchResult, error) {
	if query == "" {
		return nil, linklet_errors.ErrInvalidInput
	}
	if limit < 1 || limit > 50 {
		limit = 20
	}

	friendIDs, err := s.friendRepo.FriendIDs(ctx, callerID)
	if err != nil {
		return nil, err
	}
	if len(friendIDs) == 0 {
		return []SearchResult{}, nil
	}

	users, err := s.userRepo.SearchWithin(ctx, query, friendIDs, limit)
	if err != nil {
		return nil, err
	}
	out := make([]SearchResult, 0, len(users))
	for _, u := range users {
		out = append(out, SearchResult{Summary: u.Summary(), Relationship: friendship.RelationActive})
	}
	return out, nil
}

func (s *FriendService) annotate(ctx context.Context, callerID uuid.UUID, users []user.User) ([]SearchResult, error) {
	friendIDs, err := s.friendRepo.FriendIDs(ctx, callerID)
	if err != nil {
		return nil, err
	}
	sentIDs, err := s.friendRepo.PendingSentIDs(ctx, callerID)
	if err != nil {
		return nil, err
	}
	receivedIDs, err := s.friendRepo.PendingReceivedIDs(ctx, callerID)
	if err != nil {
		return nil, err
	}

	toSet := func(ids []uuid.UUID) map[uuid.UUID]struct{} {
		m := make(map[uuid.UUID]struct{}, len(ids))
		for _, id := range ids {
			m[id] = struct{}{}
		}
		return m
	}
	friends, sent, received := toSet(friendIDs), toSet(sentIDs), toSet(receivedIDs)

	out := make([]SearchResult, 0, len(users))
	for _, u := range users {
		rel := friendship.RelationNone
		switch {
		case hasID(friends, u.ID):
			rel = friendship.RelationActive
		case hasID(sent, u.ID):
			rel = friendship.RelationPendingSent
		case hasID(received, u.ID):
			rel = friendship.RelationPendingReceived
		}
		out = append(out, SearchResult{Summary: u.Summary(), Relationship: rel})
	}
	return out, nil
}

func hasID(set map[uuid.UUID]struct{}, id uuid.UUID) bool {
	_, ok := set[id]
	return ok
}

// notify persists and pushes a notification without letting failures reach
// the caller.
func (s *FriendService) notify(ctx context.Context, senderID, receiverID uuid.UUID, typ string, meta notification.Metadata) {
	view, err := s.notifications.Create(ctx, CreateNotificationInput{
		SenderID:   senderID,
		ReceiverID: receiverID,
		Type:       typ,
		Metadata:   meta,
	})
	if err != nil {
		s.log.Error("friend notification create failed",
			zap.String("type", typ),
			zap.String("receiver_id", receiverID.String()),
			zap.Error(err))
		return
	}
	if s.pusher != nil {
		s.pusher.PushNotification(view)
	}
}
