package services

import (
	"context"
	"sort"
	"strings"
	"sync"
	"time"

	"linklet/internal/domain/conversation"
	"linklet/internal/domain/friendship"
	"linklet/internal/domain/message"
	"linklet/internal/domain/notification"
	"linklet/internal/domain/user"
	linklet_errors "linklet/pkg/errors"

	"github.com/google/uuid"
)

// In-memory repository fakes. They mirror the store-level guarantees the
// real ones get from Postgres constraints: pending uniqueness, pair key
// uniqueness, idempotent mark-read and reaction upsert.

type fakeUserRepo struct {
	mu    sync.Mutex
	users map[uuid.UUID]user.User
}

func newFakeUserRepo() *fakeUserRepo {
	return &fakeUserRepo{users: make(map[uuid.UUID]user.User)}
}

func (f *fakeUserRepo) add(username string) user.User {
	f.mu.Lock()
	defer f.mu.Unlock()
	u := user.User{ID: uuid.New(), Username: username, DisplayName: username}
	f.users[u.ID] = u
	return u
}

func (f *fakeUserRepo) Create(ctx context.Context, u *user.User) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	for _, existing := range f.users {
		if existing.Username == u.Username {
			return linklet_errors.ErrAlreadyExists
		}
	}
	f.users[u.ID] = *u
	return nil
}

func (f *fakeUserRepo) GetByID(ctx context.Context, id uuid.UUID) (user.User, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	u, ok := f.users[id]
	if !ok {
		return user.User{}, linklet_errors.ErrNotFound
	}
	return u, nil
}

func (f *fakeUserRepo) GetByIdentity(ctx context.Context, identity string) (user.User, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	for _, u := range f.users {
		if u.Username == identity || (u.Email.Valid && u.Email.String == identity) {
			return u, nil
		}
	}
	return user.User{}, linklet_errors.ErrNotFound
}

func (f *fakeUserRepo) GetByIDs(ctx context.Context, ids []uuid.UUID) ([]user.User, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	out := make([]user.User, 0, len(ids))
	for _, id := range ids {
		if u, ok := f.users[id]; ok {
			out = append(out, u)
		}
	}
	return out, nil
}

func (f *fakeUserRepo) ExistsByID(ctx context.Context, id uuid.UUID) (bool, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	_, ok := f.users[id]
	return ok, nil
}

func (f *fakeUserRepo) Search(ctx context.Context, query string, excluding uuid.UUID, limit int) ([]user.User, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	var out []user.User
	for _, u := range f.users {
		if u.ID == excluding {
			continue
		}
		if strings.Contains(strings.ToLower(u.Username), strings.ToLower(query)) {
			out = append(out, u)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Username < out[j].Username })
	if limit > 0 && len(out) > limit {
		out = out[:limit]
	}
	return out, nil
}

func (f *fakeUserRepo) SearchWithin(ctx context.Context, query string, within []uuid.UUID, limit int) ([]user.User, error) {
	allowed := make(map[uuid.UUID]struct{}, len(within))
	for _, id := range within {
		allowed[id] = struct{}{}
	}
	f.mu.Lock()
	defer f.mu.Unlock()
	var out []user.User
	for _, u := range f.users {
		if _, ok := allowed[u.ID]; !ok {
			continue
		}
		if strings.Contains(strings.ToLower(u.Username), strings.ToLower(query)) {
			out = append(out, u)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Username < out[j].Username })
	if limit > 0 && len(out) > limit {
		out = out[:limit]
	}
	return out, nil
}

func (f *fakeUserRepo) UpdateOnlineStatus(ctx context.Context, id uuid.UUID, online bool) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	u, ok := f.users[id]
	if !ok {
		return linklet_errors.ErrNotFound
	}
	u.IsOnline = online
	f.users[id] = u
	return nil
}

type pairKey struct {
	a, b uuid.UUID
}

type fakeFriendRepo struct {
	mu       sync.Mutex
	edges    map[pairKey]struct{}
	requests []*friendship.FriendRequest
}

func newFakeFriendRepo() *fakeFriendRepo {
	return &fakeFriendRepo{edges: make(map[pairKey]struct{})}
}

func (f *fakeFriendRepo) AreFriends(ctx context.Context, a, b uuid.UUID) (bool, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	_, ok := f.edges[pairKey{a, b}]
	return ok, nil
}

func (f *fakeFriendRepo) FriendIDs(ctx context.Context, userID uuid.UUID) ([]uuid.UUID, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	var out []uuid.UUID
	for k := range f.edges {
		if k.a == userID {
			out = append(out, k.b)
		}
	}
	return out, nil
}

func (f *fakeFriendRepo) CreatePendingRequest(ctx context.Context, req *friendship.FriendRequest) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	for _, r := range f.requests {
		if r.SenderID == req.SenderID && r.ReceiverID == req.ReceiverID && r.Status == friendship.StatusPending {
			return linklet_errors.ErrDuplicateRequest
		}
	}
	cp := *req
	cp.CreatedAt = time.Now()
	f.requests = append(f.requests, &cp)
	return nil
}

func (f *fakeFriendRepo) PendingRequests(ctx context.Context, receiverID uuid.UUID) ([]friendship.FriendRequest, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	var out []friendship.FriendRequest
	for _, r := range f.requests {
		if r.ReceiverID == receiverID && r.Status == friendship.StatusPending {
			out = append(out, *r)
		}
	}
	return out, nil
}

func (f *fakeFriendRepo) PendingSentIDs(ctx context.Context, senderID uuid.UUID) ([]uuid.UUID, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	var out []uuid.UUID
	for _, r := range f.requests {
		if r.SenderID == senderID && r.Status == friendship.StatusPending {
			out = append(out, r.ReceiverID)
		}
	}
	return out, nil
}

func (f *fakeFriendRepo) PendingReceivedIDs(ctx context.Context, receiverID uuid.UUID) ([]uuid.UUID, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	var out []uuid.UUID
	for _, r := range f.requests {
		if r.ReceiverID == receiverID && r.Status == friendship.StatusPending {
			out = append(out, r.SenderID)
		}
	}
	return out, nil
}

func (f *fakeFriendRepo) AcceptRequest(ctx context.Context, senderID, receiverID uuid.UUID) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	for _, r := range f.requests {
		if r.SenderID == senderID && r.ReceiverID == receiverID && r.Status == friendship.StatusPending {
			r.Status = friendship.StatusAccepted
			f.edges[pairKey{senderID, receiverID}] = struct{}{}
			f.edges[pairKey{receiverID, senderID}] = struct{}{}
			return nil
		}
	}
	return linklet_errors.ErrNotFound
}

func (f *fakeFriendRepo) RejectRequest(ctx context.Context, senderID, receiverID uuid.UUID) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	for _, r := range f.requests {
		if r.SenderID == senderID && r.ReceiverID == receiverID && r.Status == friendship.StatusPending {
			r.Status = friendship.StatusRejected
			return nil
		}
	}
	return linklet_errors.ErrNotFound
}

func (f *fakeFriendRepo) RemoveFriendship(ctx context.Context, a, b uuid.UUID) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if _, ok := f.edges[pairKey{a, b}]; !ok {
		return linklet_errors.ErrNotFriends
	}
	delete(f.edges, pairKey{a, b})
	delete(f.edges, pairKey{b, a})
	return nil
}

type fakeConversationRepo struct {
	mu        sync.Mutex
	convs     map[uuid.UUID]conversation.Conversation
	byPairKey map[string]uuid.UUID
	clock     int64
}

func newFakeConversationRepo() *fakeConversationRepo {
	return &fakeConversationRepo{
		convs:     make(map[uuid.UUID]conversation.Conversation),
		byPairKey: make(map[string]uuid.UUID),
	}
}

func (f *fakeConversationRepo) Create(ctx context.Context, c *conversation.Conversation) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if c.PairKey.Valid {
		if _, ok := f.byPairKey[c.PairKey.String]; ok {
			return linklet_errors.ErrAlreadyExists
		}
		f.byPairKey[c.PairKey.String] = c.ID
	}
	f.convs[c.ID] = *c
	return nil
}

func (f *fakeConversationRepo) GetByID(ctx context.Context, id uuid.UUID) (conversation.Conversation, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	c, ok := f.convs[id]
	if !ok {
		return conversation.Conversation{}, linklet_errors.ErrNotFound
	}
	return c, nil
}

func (f *fakeConversationRepo) GetByPairKey(ctx context.Context, key string) (conversation.Conversation, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	id, ok := f.byPairKey[key]
	if !ok {
		return conversation.Conversation{}, linklet_errors.ErrNotFound
	}
	return f.convs[id], nil
}

func (f *fakeConversationRepo) ListForUser(ctx context.Context, userID uuid.UUID) ([]conversation.Conversation, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	var out []conversation.Conversation
	for _, c := range f.convs {
		if c.HasParticipant(userID) {
			out = append(out, c)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].UpdatedAt.After(out[j].UpdatedAt) })
	return out, nil
}

func (f *fakeConversationRepo) Activate(ctx context.Context, id uuid.UUID) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	c, ok := f.convs[id]
	if !ok {
		return nil
	}
	c.Status = conversation.StatusActive
	f.convs[id] = c
	return nil
}

func (f *fakeConversationRepo) SetLastMessage(ctx context.Context, conversationID, messageID uuid.UUID) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	c, ok := f.convs[conversationID]
	if !ok {
		return linklet_errors.ErrNotFound
	}
	c.LastMessageID = uuid.NullUUID{UUID: messageID, Valid: true}
	f.clock++
	c.UpdatedAt = time.Unix(f.clock, 0)
	f.convs[conversationID] = c
	return nil
}

func (f *fakeConversationRepo) IsParticipant(ctx context.Context, conversationID, userID uuid.UUID) (bool, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	c, ok := f.convs[conversationID]
	if !ok {
		return false, nil
	}
	return c.HasParticipant(userID), nil
}

type fakeMessageRepo struct {
	mu        sync.Mutex
	messages  []message.Message
	reads     map[pairKey]message.MessageRead
	reactions map[pairKey]message.MessageReaction
	clock     int64
}

func newFakeMessageRepo() *fakeMessageRepo {
	return &fakeMessageRepo{
		reads:     make(map[pairKey]message.MessageRead),
		reactions: make(map[pairKey]message.MessageReaction),
	}
}

func (f *fakeMessageRepo) Create(ctx context.Context, m *message.Message) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.clock++
	m.CreatedAt = time.Unix(f.clock, 0)
	f.messages = append(f.messages, *m)
	return nil
}

func (f *fakeMessageRepo) GetByID(ctx context.Context, id uuid.UUID) (message.Message, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	for _, m := range f.messages {
		if m.ID == id {
			return m, nil
		}
	}
	return message.Message{}, linklet_errors.ErrNotFound
}

func (f *fakeMessageRepo) ListByConversation(ctx context.Context, conversationID uuid.UUID, page, limit int) ([]message.Message, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	var all []message.Message
	for _, m := range f.messages {
		if m.ConversationID == conversationID {
			all = append(all, m)
		}
	}
	sort.Slice(all, func(i, j int) bool { return all[i].CreatedAt.After(all[j].CreatedAt) })
	offset := (page - 1) * limit
	if offset >= len(all) {
		return nil, nil
	}
	end := offset + limit
	if end > len(all) {
		end = len(all)
	}
	return all[offset:end], nil
}

func (f *fakeMessageRepo) MarkRead(ctx context.Context, messageID, userID uuid.UUID) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	k := pairKey{messageID, userID}
	if _, ok := f.reads[k]; ok {
		return nil
	}
	f.reads[k] = message.MessageRead{MessageID: messageID, UserID: userID, ReadAt: time.Now()}
	return nil
}

func (f *fakeMessageRepo) UpsertReaction(ctx context.Context, r *message.MessageReaction) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.reactions[pairKey{r.MessageID, r.UserID}] = *r
	return nil
}

func (f *fakeMessageRepo) RemoveReaction(ctx context.Context, messageID, userID uuid.UUID) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if _, ok := f.reactions[pairKey{messageID, userID}]; !ok {
		return linklet_errors.ErrNotFound
	}
	delete(f.reactions, pairKey{messageID, userID})
	return nil
}

func (f *fakeMessageRepo) Reads(ctx context.Context, messageID uuid.UUID) ([]message.MessageRead, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	var out []message.MessageRead
	for k, r := range f.reads {
		if k.a == messageID {
			out = append(out, r)
		}
	}
	return out, nil
}

func (f *fakeMessageRepo) Reactions(ctx context.Context, messageID uuid.UUID) ([]message.MessageReaction, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	var out []message.MessageReaction
	for k, r := range f.reactions {
		if k.a == messageID {
			out = append(out, r)
		}
	}
	return out, nil
}

type fakeNotificationRepo struct {
	mu            sync.Mutex
	notifications []notification.Notification
	clock         int64
}

func newFakeNotificationRepo() *fakeNotificationRepo {
	return &fakeNotificationRepo{}
}

func (f *fakeNotificationRepo) Create(ctx context.Context, n *notification.Notification) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.clock++
	n.CreatedAt = time.Unix(f.clock, 0)
	f.notifications = append(f.notifications, *n)
	return nil
}

func (f *fakeNotificationRepo) GetByID(ctx context.Context, id uuid.UUID) (notification.Notification, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	for _, n := range f.notifications {
		if n.ID == id {
			return n, nil
		}
	}
	return notification.Notification{}, linklet_errors.ErrNotFound
}

func (f *fakeNotificationRepo) ListByReceiver(ctx context.Context, receiverID uuid.UUID, isRead *bool, page, limit int) ([]notification.Notification, int64, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	var all []notification.Notification
	for _, n := range f.notifications {
		if n.ReceiverID != receiverID {
			continue
		}
		if isRead != nil && n.IsRead != *isRead {
			continue
		}
		all = append(all, n)
	}
	sort.Slice(all, func(i, j int) bool { return all[i].CreatedAt.After(all[j].CreatedAt) })
	total := int64(len(all))
	offset := (page - 1) * limit
	if offset >= len(all) {
		return nil, total, nil
	}
	end := offset + limit
	if end > len(all) {
		end = len(all)
	}
	return all[offset:end], total, nil
}

func (f *fakeNotificationRepo) MarkRead(ctx context.Context, id uuid.UUID) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	for i := range f.notifications {
		if f.notifications[i].ID == id {
			f.notifications[i].IsRead = true
			return nil
		}
	}
	return linklet_errors.ErrNotFound
}

func (f *fakeNotificationRepo) MarkAllRead(ctx context.Context, receiverID uuid.UUID) (int64, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	var updated int64
	for i := range f.notifications {
		if f.notifications[i].ReceiverID == receiverID && !f.notifications[i].IsRead {
			f.notifications[i].IsRead = true
			updated++
		}
	}
	return updated, nil
}

// fakePusher records pushed notifications.
type fakePusher struct {
	mu     sync.Mutex
	pushed []NotificationView
}

func (f *fakePusher) PushNotification(view NotificationView) {
	f.mu.Lock()
	f.pushed = append(f.pushed, view)
	f.mu.Unlock()
}

func (f *fakePusher) views() []NotificationView {
	f.mu.Lock()
	defer f.mu.Unlock()
	out := make([]NotificationView, len(f.pushed))
	copy(out, f.pushed)
	return out
}
