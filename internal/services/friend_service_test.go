package services

import (
	"context"
	"testing"

	"linklet/internal/domain/conversation"
	"linklet/internal/domain/friendship"
	"linklet/internal/domain/notification"
	linklet_errors "linklet/pkg/errors"
	"linklet/pkg/logger"

	"github.com/stretchr/testify/require"
)

type friendFixture struct {
	users    *fakeUserRepo
	friends  *fakeFriendRepo
	convRepo *fakeConversationRepo
	pusher   *fakePusher
	convs    *ConversationService
	notifs   *NotificationService
	svc      *FriendService
}

func newFriendFixture() *friendFixture {
	users := newFakeUserRepo()
	friends := newFakeFriendRepo()
	convRepo := newFakeConversationRepo()
	notifRepo := newFakeNotificationRepo()
	pusher := &fakePusher{}

	convs := NewConversationService(convRepo, friends)
	notifs := NewNotificationService(notifRepo, users)
	svc := NewFriendService(users, friends, convs, notifs, pusher, logger.NewNop())

	return &friendFixture{
		users:    users,
		friends:  friends,
		convRepo: convRepo,
		pusher:   pusher,
		convs:    convs,
		notifs:   notifs,
		svc:      svc,
	}
}

func TestSendRequestToSelf(t *testing.T) {
	fx := newFriendFixture()
	alice := fx.users.add("alice")

	err := fx.svc.SendRequest(context.Background(), alice.ID, alice.ID)
	require.ErrorIs(t, err, linklet_errors.ErrInvalidOperation)
}

func TestSendRequestCreatesPending(t *testing.T) {
	fx := newFriendFixture()
	alice := fx.users.add("alice")
	bob := fx.users.add("bob")

	err := fx.svc.SendRequest(context.Background(), alice.ID, bob.ID)
	require.NoError(t, err)

	requests, err := fx.svc.ListRequests(context.Background(), bob.ID)
	require.NoError(t, err)
	require.Len(t, requests, 1)
	require.Equal(t, "alice", requests[0].Sender.Username)
}

func TestSendRequestMissingReceiver(t *testing.T) {
	fx := newFriendFixture()
	alice := fx.users.add("alice")
	ghost := newFakeUserRepo().add("ghost")

	err := fx.svc.SendRequest(context.Background(), alice.ID, ghost.ID)
	require.ErrorIs(t, err, linklet_errors.ErrNotFound)
}

func TestSendRequestDuplicatePending(t *testing.T) {
	fx := newFriendFixture()
	alice := fx.users.add("alice")
	bob := fx.users.add("bob")

	require.NoError(t, fx.svc.SendRequest(context.Background(), alice.ID, bob.ID))
	err := fx.svc.SendRequest(context.Background(), alice.ID, bob.ID)
	require.ErrorIs(t, err, linklet_errors.ErrDuplicateRequest)
}

func TestSendRequestAlreadyFriends(t *testing.T) {
	fx := newFriendFixture()
	alice := fx.users.add("alice")
	bob := fx.users.add("bob")

	require.NoError(t, fx.svc.SendRequest(context.Background(), alice.ID, bob.ID))
	_, err := fx.svc.AcceptRequest(context.Background(), bob.ID, alice.ID)
	require.NoError(t, err)

	err = fx.svc.SendRequest(context.Background(), alice.ID, bob.ID)
	require.ErrorIs(t, err, linklet_errors.ErrAlreadyFriends)
}

func TestSendRequestPushesNotification(t *testing.T) {
	fx := newFriendFixture()
	alice := fx.users.add("alice")
	bob := fx.users.add("bob")

	require.NoError(t, fx.svc.SendRequest(context.Background(), alice.ID, bob.ID))

	pushed := fx.pusher.views()
	require.Len(t, pushed, 1)
	require.Equal(t, notification.TypeFriendRequest, pushed[0].Type)
	require.Equal(t, bob.ID, pushed[0].ReceiverID)
	require.Equal(t, "alice sent you a friend request", pushed[0].Message)
}

func TestAcceptRequestCreatesActiveConversation(t *testing.T) {
	fx := newFriendFixture()
	alice := fx.users.add("alice")
	bob := fx.users.add("bob")

	require.NoError(t, fx.svc.SendRequest(context.Background(), alice.ID, bob.ID))
	res, err := fx.svc.AcceptRequest(context.Background(), bob.ID, alice.ID)
	require.NoError(t, err)

	// Edge holds in both directions.
	friends, err := fx.friends.AreFriends(context.Background(), alice.ID, bob.ID)
	require.NoError(t, err)
	require.True(t, friends)
	friends, err = fx.friends.AreFriends(context.Background(), bob.ID, alice.ID)
	require.NoError(t, err)
	require.True(t, friends)

	require.NotNil(t, res.ConversationID)
	conv, err := fx.convs.GetByID(context.Background(), *res.ConversationID)
	require.NoError(t, err)
	require.Equal(t, conversation.StatusActive, conv.Status)
	require.True(t, conv.HasParticipant(alice.ID))
	require.True(t, conv.HasParticipant(bob.ID))
}

func TestAcceptRequestActivatesExistingConversation(t *testing.T) {
	fx := newFriendFixture()
	alice := fx.users.add("alice")
	bob := fx.users.add("bob")

	existing, err := fx.convs.FindOrCreateDirect(context.Background(), alice.ID, bob.ID)
	require.NoError(t, err)
	require.Equal(t, conversation.StatusPending, existing.Status)

	require.NoError(t, fx.svc.SendRequest(context.Background(), alice.ID, bob.ID))
	res, err := fx.svc.AcceptRequest(context.Background(), bob.ID, alice.ID)
	require.NoError(t, err)

	require.NotNil(t, res.ConversationID)
	require.Equal(t, existing.ID, *res.ConversationID)

	conv, err := fx.convs.GetByID(context.Background(), existing.ID)
	require.NoError(t, err)
	require.Equal(t, conversation.StatusActive, conv.Status)
}

func TestAcceptRequestWithoutPending(t *testing.T) {
	fx := newFriendFixture()
	alice := fx.users.add("alice")
	bob := fx.users.add("bob")

	_, err := fx.svc.AcceptRequest(context.Background(), bob.ID, alice.ID)
	require.ErrorIs(t, err, linklet_errors.ErrNotFound)
}

func TestAcceptRequestPushesFriendAccept(t *testing.T) {
	fx := newFriendFixture()
	alice := fx.users.add("alice")
	bob := fx.users.add("bob")

	require.NoError(t, fx.svc.SendRequest(context.Background(), alice.ID, bob.ID))
	_, err := fx.svc.AcceptRequest(context.Background(), bob.ID, alice.ID)
	require.NoError(t, err)

	pushed := fx.pusher.views()
	require.Len(t, pushed, 2)
	accept := pushed[1]
	require.Equal(t, notification.TypeFriendAccept, accept.Type)
	require.Equal(t, alice.ID, accept.ReceiverID)
	require.Equal(t, "bob accepted your friend request", accept.Message)
}

func TestRejectRequestLeavesNoEdge(t *testing.T) {
	fx := newFriendFixture()
	alice := fx.users.add("alice")
	bob := fx.users.add("bob")

	require.NoError(t, fx.svc.SendRequest(context.Background(), alice.ID, bob.ID))
	require.NoError(t, fx.svc.RejectRequest(context.Background(), bob.ID, alice.ID))

	friends, err := fx.friends.AreFriends(context.Background(), alice.ID, bob.ID)
	require.NoError(t, err)
	require.False(t, friends)

	// A rejected request is terminal; a fresh one may follow.
	require.NoError(t, fx.svc.SendRequest(context.Background(), alice.ID, bob.ID))
}

func TestCancelFriendRemovesBothDirections(t *testing.T) {
	fx := newFriendFixture()
	alice := fx.users.add("alice")
	bob := fx.users.add("bob")

	require.NoError(t, fx.svc.SendRequest(context.Background(), alice.ID, bob.ID))
	res, err := fx.svc.AcceptRequest(context.Background(), bob.ID, alice.ID)
	require.NoError(t, err)

	require.NoError(t, fx.svc.CancelFriend(context.Background(), alice.ID, bob.ID))

	friends, err := fx.friends.AreFriends(context.Background(), bob.ID, alice.ID)
	require.NoError(t, err)
	require.False(t, friends)

	// The conversation outlives the friendship.
	conv, err := fx.convs.GetByID(context.Background(), *res.ConversationID)
	require.NoError(t, err)
	require.Equal(t, conversation.StatusActive, conv.Status)
}

func TestCancelFriendNotFriends(t *testing.T) {
	fx := newFriendFixture()
	alice := fx.users.add("alice")
	bob := fx.users.add("bob")

	err := fx.svc.CancelFriend(context.Background(), alice.ID, bob.ID)
	require.ErrorIs(t, err, linklet_errors.ErrNotFriends)
}

func TestListFriends(t *testing.T) {
	fx := newFriendFixture()
	alice := fx.users.add("alice")
	bob := fx.users.add("bob")
	carol := fx.users.add("carol")

	require.NoError(t, fx.svc.SendRequest(context.Background(), alice.ID, bob.ID))
	_, err := fx.svc.AcceptRequest(context.Background(), bob.ID, alice.ID)
	require.NoError(t, err)
	require.NoError(t, fx.svc.SendRequest(context.Background(), carol.ID, alice.ID))
	_, err = fx.svc.AcceptRequest(context.Background(), alice.ID, carol.ID)
	require.NoError(t, err)

	friends, err := fx.svc.ListFriends(context.Background(), alice.ID)
	require.NoError(t, err)
	require.Len(t, friends, 2)
}

func TestSearchUsersAnnotatesRelationship(t *testing.T) {
	fx := newFriendFixture()
	alice := fx.users.add("alice")
	bob := fx.users.add("bob")
	carol := fx.users.add("carl")
	dave := fx.users.add("carla")
	fx.users.add("caleb")

	// bob: friend. carol: pending sent. dave: pending received.
	require.NoError(t, fx.svc.SendRequest(context.Background(), alice.ID, bob.ID))
	_, err := fx.svc.AcceptRequest(context.Background(), bob.ID, alice.ID)
	require.NoError(t, err)
	require.NoError(t, fx.svc.SendRequest(context.Background(), alice.ID, carol.ID))
	require.NoError(t, fx.svc.SendRequest(context.Background(), dave.ID, alice.ID))

	results, err := fx.svc.SearchUsers(context.Background(), alice.ID, "ca", 10)
	require.NoError(t, err)

	byName := map[string]string{}
	for _, r := range results {
		byName[r.Username] = r.Relationship
	}
	require.Equal(t, friendship.RelationPendingSent, byName["carl"])
	require.Equal(t, friendship.RelationPendingReceived, byName["carla"])
	require.Equal(t, friendship.RelationNone, byName["caleb"])
}

func TestSearchFriendsOnlySearchesFriendSet(t *testing.T) {
	fx := newFriendFixture()
	alice := fx.users.add("alice")
	bob := fx.users.add("bob")
	fx.users.add("bobby")

	require.NoError(t, fx.svc.SendRequest(context.Background(), alice.ID, bob.ID))
	_, err := fx.svc.AcceptRequest(context.Background(), bob.ID, alice.ID)
	require.NoError(t, err)

	results, err := fx.svc.SearchFriends(context.Background(), alice.ID, "bob", 10)
	require.NoError(t, err)
	require.Len(t, results, 1)
	require.Equal(t, "bob", results[0].Username)
	require.Equal(t, friendship.RelationActive, results[0].Relationship)
}

func TestSearchRequiresQuery(t *testing.T) {
	fx := newFriendFixture()
	alice := fx.users.add("alice")

	_, err := fx.svc.SearchUsers(context.Background(), alice.ID, "", 10)
	require.ErrorIs(t, err, linklet_errors.ErrInvalidInput)
	_, err = fx.svc.SearchFriends(context.Background(), alice.ID, "", 10)
	require.ErrorIs(t, err, linklet_errors.ErrInvalidInput)
}
