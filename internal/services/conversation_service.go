package services

import (
	"context"
	"database/sql"
	"errors"
	"time"

	"linklet/internal/domain/conversation"
	"linklet/internal/repository"
	linklet_errors "linklet/pkg/errors"

	"github.com/google/uuid"
)

// ConversationService owns the conversation lifecycle: find-or-create for
// direct pairs, group creation and the pending -> active transition driven by
// the friend graph.
type ConversationService struct {
	repo       repository.ConversationRepository
	friendRepo repository.FriendRepository
}

func NewConversationService(repo repository.ConversationRepository, friendRepo repository.FriendRepository) *ConversationService {
	return &ConversationService{repo: repo, friendRepo: friendRepo}
}

// FindOrCreateDirect is the idempotent lookup for the one conversation per
// unordered pair. A new conversation starts PENDING unless the pair is
// already friends. Safe under concurrent calls: the pair_key unique index
// rejects the duplicate insert and the loser re-reads the winner's row.
func (s *ConversationService) FindOrCreateDirect(ctx context.Context, userA, userB uuid.UUID) (conversation.Conversation, error) {
	if userA == userB {
		return conversation.Conversation{}, linklet_errors.ErrInvalidOperation
	}

	pairKey := conversation.PairKey(userA, userB)

	existing, err := s.repo.GetByPairKey(ctx, pairKey)
	if err == nil {
		return existing, nil
	}
	if !errors.Is(err, linklet_errors.ErrNotFound) {
		return conversation.Conversation{}, err
	}

	status := conversation.StatusPending
	friends, err := s.friendRepo.AreFriends(ctx, userA, userB)
	if err != nil {
		return conversation.Conversation{}, err
	}
	if friends {
		status = conversation.StatusActive
	}

	now := time.Now()
	conv := conversation.Conversation{
		ID:        uuid.New(),
		IsGroup:   false,
		Status:    status,
		PairKey:   sql.NullString{String: pairKey, Valid: true},
		CreatedAt: now,
		UpdatedAt: now,
		Participants: []conversation.Participant{
			{UserID: userA, JoinedAt: now},
			{UserID: userB, JoinedAt: now},
		},
	}
	for i := range conv.Participants {
		conv.Participants[i].ConversationID = conv.ID
	}

	if err := s.repo.Create(ctx, &conv); err != nil {
		if errors.Is(err, linklet_errors.ErrAlreadyExists) {
			// Lost the create race; the winner's row is authoritative.
			return s.repo.GetByPairKey(ctx, pairKey)
		}
		return conversation.Conversation{}, err
	}
	return conv, nil
}

type CreateGroupInput struct {
	CreatorID    uuid.UUID
	Participants []uuid.UUID
	GroupName    string
	GroupAvatar  string
}

// CreateGroup creates a group conversation. Groups have no friendship
// precondition and are ACTIVE from creation.
func (s *ConversationService) CreateGroup(ctx context.Context, in CreateGroupInput) (conversation.Conversation, error) {
	if in.GroupName == "" || len(in.Participants) == 0 {
		return conversation.Conversation{}, linklet_errors.ErrInvalidInput
	}

	now := time.Now()
	conv := conversation.Conversation{
		ID:        uuid.New(),
		IsGroup:   true,
		GroupName: sql.NullString{String: in.GroupName, Valid: true},
		Status:    conversation.StatusActive,
		CreatedAt: now,
		UpdatedAt: now,
	}
	if in.GroupAvatar != "" {
		conv.GroupAvatar = sql.NullString{String: in.GroupAvatar, Valid: true}
	}

	seen := map[uuid.UUID]struct{}{}
	for _, id := range append([]uuid.UUID{in.CreatorID}, in.Participants...) {
		if _, ok := seen[id]; ok {
			continue
		}
		seen[id] = struct{}{}
		conv.Participants = append(conv.Participants, conversation.Participant{
			ConversationID: conv.ID,
			UserID:         id,
			JoinedAt:       now,
		})
	}

	if err := s.repo.Create(ctx, &conv); err != nil {
		return conversation.Conversation{}, err
	}
	return conv, nil
}

// TransitionToActive flips a pending conversation to active. Idempotent.
func (s *ConversationService) TransitionToActive(ctx context.Context, conversationID uuid.UUID) error {
	return s.repo.Activate(ctx, conversationID)
}

// ActivateDirect is the friend-accept hook: it resolves the pair's direct
// conversation with create-if-absent semantics, then makes sure it is active.
// Called after the friend edge is written, so a freshly created conversation
// is already active from creation.
func (s *ConversationService) ActivateDirect(ctx context.Context, userA, userB uuid.UUID) (uuid.UUID, error) {
	conv, err := s.FindOrCreateDirect(ctx, userA, userB)
	if err != nil {
		return uuid.Nil, err
	}
	if conv.Status != conversation.StatusActive {
		if err := s.repo.Activate(ctx, conv.ID); err != nil {
			return conv.ID, err
		}
	}
	return conv.ID, nil
}

func (s *ConversationService) GetByID(ctx context.Context, conversationID uuid.UUID) (conversation.Conversation, error) {
	return s.repo.GetByID(ctx, conversationID)
}

// ListForUser returns the user's conversations, most recent activity first.
func (s *ConversationService) ListForUser(ctx context.Context, userID uuid.UUID) ([]conversation.Conversation, error) {
	return s.repo.ListForUser(ctx, userID)
}

func (s *ConversationService) IsParticipant(ctx context.Context, conversationID, userID uuid.UUID) (bool, error) {
	return s.repo.IsParticipant(ctx, conversationID, userID)
}
