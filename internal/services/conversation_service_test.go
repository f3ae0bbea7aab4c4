package services

import (
	"context"
	"sync"
	"testing"

	"linklet/internal/domain/conversation"
	linklet_errors "linklet/pkg/errors"

	"github.com/google/uuid"
	"github.com/stretchr/testify/require"
)

func newConversationFixture() (*ConversationService, *fakeConversationRepo, *fakeFriendRepo) {
	convRepo := newFakeConversationRepo()
	friendRepo := newFakeFriendRepo()
	return NewConversationService(convRepo, friendRepo), convRepo, friendRepo
}

func TestFindOrCreateDirectIsIdempotent(t *testing.T) {
	svc, _, _ := newConversationFixture()
	a, b := uuid.New(), uuid.New()

	first, err := svc.FindOrCreateDirect(context.Background(), a, b)
	require.NoError(t, err)

	// Same pair in either order resolves to the same conversation.
	second, err := svc.FindOrCreateDirect(context.Background(), b, a)
	require.NoError(t, err)
	require.Equal(t, first.ID, second.ID)
}

func TestFindOrCreateDirectSelf(t *testing.T) {
	svc, _, _ := newConversationFixture()
	a := uuid.New()

	_, err := svc.FindOrCreateDirect(context.Background(), a, a)
	require.ErrorIs(t, err, linklet_errors.ErrInvalidOperation)
}

func TestFindOrCreateDirectStartsPending(t *testing.T) {
	svc, _, _ := newConversationFixture()
	a, b := uuid.New(), uuid.New()

	conv, err := svc.FindOrCreateDirect(context.Background(), a, b)
	require.NoError(t, err)
	require.Equal(t, conversation.StatusPending, conv.Status)
	require.False(t, conv.IsGroup)
	require.True(t, conv.HasParticipant(a))
	require.True(t, conv.HasParticipant(b))
}

func TestFindOrCreateDirectActiveWhenFriends(t *testing.T) {
	svc, _, friendRepo := newConversationFixture()
	a, b := uuid.New(), uuid.New()
	friendRepo.edges[pairKey{a, b}] = struct{}{}
	friendRepo.edges[pairKey{b, a}] = struct{}{}

	conv, err := svc.FindOrCreateDirect(context.Background(), a, b)
	require.NoError(t, err)
	require.Equal(t, conversation.StatusActive, conv.Status)
}

func TestFindOrCreateDirectConcurrent(t *testing.T) {
	svc, _, _ := newConversationFixture()
	a, b := uuid.New(), uuid.New()

	var wg sync.WaitGroup
	ids := make([]uuid.UUID, 8)
	errs := make([]error, 8)
	for i := 0; i < len(ids); i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			conv, err := svc.FindOrCreateDirect(context.Background(), a, b)
			ids[i] = conv.ID
			errs[i] = err
		}(i)
	}
	wg.Wait()

	for _, err := range errs {
		require.NoError(t, err)
	}
	for _, id := range ids[1:] {
		require.Equal(t, ids[0], id)
	}
}

func TestCreateGroup(t *testing.T) {
	svc, _, _ := newConversationFixture()
	creator := uuid.New()
	other := uuid.New()

	conv, err := svc.CreateGroup(context.Background(), CreateGroupInput{
		CreatorID:    creator,
		Participants: []uuid.UUID{other, creator},
		GroupName:    "weekend plans",
	})
	require.NoError(t, err)
	require.True(t, conv.IsGroup)
	require.Equal(t, conversation.StatusActive, conv.Status)
	require.Equal(t, "weekend plans", conv.GroupName.String)
	// Creator listed once even when repeated in the participant list.
	require.Len(t, conv.Participants, 2)
}

func TestCreateGroupRequiresNameAndParticipants(t *testing.T) {
	svc, _, _ := newConversationFixture()
	creator := uuid.New()

	_, err := svc.CreateGroup(context.Background(), CreateGroupInput{
		CreatorID: creator,
		GroupName: "no members",
	})
	require.ErrorIs(t, err, linklet_errors.ErrInvalidInput)

	_, err = svc.CreateGroup(context.Background(), CreateGroupInput{
		CreatorID:    creator,
		Participants: []uuid.UUID{uuid.New()},
	})
	require.ErrorIs(t, err, linklet_errors.ErrInvalidInput)
}

func TestTransitionToActiveIsIdempotent(t *testing.T) {
	svc, _, _ := newConversationFixture()
	a, b := uuid.New(), uuid.New()

	conv, err := svc.FindOrCreateDirect(context.Background(), a, b)
	require.NoError(t, err)

	require.NoError(t, svc.TransitionToActive(context.Background(), conv.ID))
	require.NoError(t, svc.TransitionToActive(context.Background(), conv.ID))

	got, err := svc.GetByID(context.Background(), conv.ID)
	require.NoError(t, err)
	require.Equal(t, conversation.StatusActive, got.Status)
}

func TestActivateDirectCreatesWhenAbsent(t *testing.T) {
	svc, _, friendRepo := newConversationFixture()
	a, b := uuid.New(), uuid.New()
	friendRepo.edges[pairKey{a, b}] = struct{}{}
	friendRepo.edges[pairKey{b, a}] = struct{}{}

	id, err := svc.ActivateDirect(context.Background(), a, b)
	require.NoError(t, err)

	conv, err := svc.GetByID(context.Background(), id)
	require.NoError(t, err)
	require.Equal(t, conversation.StatusActive, conv.Status)
}

func TestListForUserOrdersByActivity(t *testing.T) {
	svc, convRepo, _ := newConversationFixture()
	a, b, c := uuid.New(), uuid.New(), uuid.New()

	first, err := svc.FindOrCreateDirect(context.Background(), a, b)
	require.NoError(t, err)
	second, err := svc.FindOrCreateDirect(context.Background(), a, c)
	require.NoError(t, err)

	// Activity in the first conversation bumps it ahead.
	require.NoError(t, convRepo.SetLastMessage(context.Background(), second.ID, uuid.New()))
	require.NoError(t, convRepo.SetLastMessage(context.Background(), first.ID, uuid.New()))

	list, err := svc.ListForUser(context.Background(), a)
	require.NoError(t, err)
	require.Len(t, list, 2)
	require.Equal(t, first.ID, list[0].ID)
	require.Equal(t, second.ID, list[1].ID)
}
