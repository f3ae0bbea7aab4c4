package services

import (
	"context"
	"testing"

	linklet_errors "linklet/pkg/errors"

	"github.com/google/uuid"
	"github.com/stretchr/testify/require"
)

type messageFixture struct {
	msgRepo  *fakeMessageRepo
	convRepo *fakeConversationRepo
	convs    *ConversationService
	svc      *MessageService
	a, b     uuid.UUID
	convID   uuid.UUID
}

func newMessageFixture(t *testing.T) *messageFixture {
	msgRepo := newFakeMessageRepo()
	convRepo := newFakeConversationRepo()
	convs := NewConversationService(convRepo, newFakeFriendRepo())
	svc := NewMessageService(msgRepo, convRepo)

	a, b := uuid.New(), uuid.New()
	conv, err := convs.FindOrCreateDirect(context.Background(), a, b)
	require.NoError(t, err)

	return &messageFixture{
		msgRepo:  msgRepo,
		convRepo: convRepo,
		convs:    convs,
		svc:      svc,
		a:        a,
		b:        b,
		convID:   conv.ID,
	}
}

func TestSendMessage(t *testing.T) {
	fx := newMessageFixture(t)

	msg, err := fx.svc.Send(context.Background(), SendMessageInput{
		ConversationID: fx.convID,
		SenderID:       fx.a,
		Text:           "hey",
	})
	require.NoError(t, err)
	require.Equal(t, "hey", msg.Text.String)
	require.Equal(t, fx.convID, msg.ConversationID)

	conv, err := fx.convs.GetByID(context.Background(), fx.convID)
	require.NoError(t, err)
	require.True(t, conv.LastMessageID.Valid)
	require.Equal(t, msg.ID, conv.LastMessageID.UUID)
}

func TestSendMessageToUnknownConversation(t *testing.T) {
	fx := newMessageFixture(t)

	_, err := fx.svc.Send(context.Background(), SendMessageInput{
		ConversationID: uuid.New(),
		SenderID:       fx.a,
		Text:           "hello?",
	})
	require.ErrorIs(t, err, linklet_errors.ErrNotFound)
}

func TestSendMessageRequiresContent(t *testing.T) {
	fx := newMessageFixture(t)

	_, err := fx.svc.Send(context.Background(), SendMessageInput{
		ConversationID: fx.convID,
		SenderID:       fx.a,
		Text:           "   ",
	})
	require.ErrorIs(t, err, linklet_errors.ErrInvalidOperation)
}

func TestSendMessageAttachmentOnly(t *testing.T) {
	fx := newMessageFixture(t)

	msg, err := fx.svc.Send(context.Background(), SendMessageInput{
		ConversationID: fx.convID,
		SenderID:       fx.a,
		Attachments:    []string{"https://cdn.example/pic.png"},
	})
	require.NoError(t, err)
	require.False(t, msg.Text.Valid)
	require.Len(t, msg.Attachments, 1)
}

func TestSendMessageFromNonParticipant(t *testing.T) {
	fx := newMessageFixture(t)

	_, err := fx.svc.Send(context.Background(), SendMessageInput{
		ConversationID: fx.convID,
		SenderID:       uuid.New(),
		Text:           "let me in",
	})
	require.ErrorIs(t, err, linklet_errors.ErrForbidden)
}

func TestListConversationMessagesNewestFirst(t *testing.T) {
	fx := newMessageFixture(t)

	var ids []uuid.UUID
	for _, text := range []string{"m1", "m2", "m3", "m4"} {
		msg, err := fx.svc.Send(context.Background(), SendMessageInput{
			ConversationID: fx.convID,
			SenderID:       fx.a,
			Text:           text,
		})
		require.NoError(t, err)
		ids = append(ids, msg.ID)
	}

	page, err := fx.svc.ListConversationMessages(context.Background(), fx.convID, 1, 3)
	require.NoError(t, err)
	require.Len(t, page, 3)
	require.Equal(t, ids[3], page[0].ID)
	require.Equal(t, ids[2], page[1].ID)
	require.Equal(t, ids[1], page[2].ID)

	rest, err := fx.svc.ListConversationMessages(context.Background(), fx.convID, 2, 3)
	require.NoError(t, err)
	require.Len(t, rest, 1)
	require.Equal(t, ids[0], rest[0].ID)
}

func TestListMessagesUnknownConversation(t *testing.T) {
	fx := newMessageFixture(t)

	_, err := fx.svc.ListConversationMessages(context.Background(), uuid.New(), 1, 10)
	require.ErrorIs(t, err, linklet_errors.ErrNotFound)
}

func TestMarkReadIsIdempotent(t *testing.T) {
	fx := newMessageFixture(t)

	msg, err := fx.svc.Send(context.Background(), SendMessageInput{
		ConversationID: fx.convID,
		SenderID:       fx.a,
		Text:           "read me",
	})
	require.NoError(t, err)

	require.NoError(t, fx.svc.MarkRead(context.Background(), msg.ID, fx.b))
	require.NoError(t, fx.svc.MarkRead(context.Background(), msg.ID, fx.b))

	reads, err := fx.svc.Reads(context.Background(), msg.ID)
	require.NoError(t, err)
	require.Len(t, reads, 1)
}

func TestMarkReadByNonParticipant(t *testing.T) {
	fx := newMessageFixture(t)

	msg, err := fx.svc.Send(context.Background(), SendMessageInput{
		ConversationID: fx.convID,
		SenderID:       fx.a,
		Text:           "private",
	})
	require.NoError(t, err)

	err = fx.svc.MarkRead(context.Background(), msg.ID, uuid.New())
	require.ErrorIs(t, err, linklet_errors.ErrForbidden)
}

func TestReactionLastWriteWins(t *testing.T) {
	fx := newMessageFixture(t)

	msg, err := fx.svc.Send(context.Background(), SendMessageInput{
		ConversationID: fx.convID,
		SenderID:       fx.a,
		Text:           "react to me",
	})
	require.NoError(t, err)

	require.NoError(t, fx.svc.AddReaction(context.Background(), msg.ID, fx.b, "👍"))
	require.NoError(t, fx.svc.AddReaction(context.Background(), msg.ID, fx.b, "❤️"))

	reactions, err := fx.svc.Reactions(context.Background(), msg.ID)
	require.NoError(t, err)
	require.Len(t, reactions, 1)
	require.Equal(t, "❤️", reactions[0].Emoji)
}

func TestRemoveReaction(t *testing.T) {
	fx := newMessageFixture(t)

	msg, err := fx.svc.Send(context.Background(), SendMessageInput{
		ConversationID: fx.convID,
		SenderID:       fx.a,
		Text:           "react to me",
	})
	require.NoError(t, err)

	require.NoError(t, fx.svc.AddReaction(context.Background(), msg.ID, fx.b, "👍"))
	require.NoError(t, fx.svc.RemoveReaction(context.Background(), msg.ID, fx.b))

	reactions, err := fx.svc.Reactions(context.Background(), msg.ID)
	require.NoError(t, err)
	require.Empty(t, reactions)

	// Removing an absent reaction surfaces the store's not-found.
	err = fx.svc.RemoveReaction(context.Background(), msg.ID, fx.b)
	require.ErrorIs(t, err, linklet_errors.ErrNotFound)
}

func TestAddReactionRequiresEmoji(t *testing.T) {
	fx := newMessageFixture(t)

	err := fx.svc.AddReaction(context.Background(), uuid.New(), fx.b, "")
	require.ErrorIs(t, err, linklet_errors.ErrInvalidInput)
}
