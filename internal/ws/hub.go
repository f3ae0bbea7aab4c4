package ws

import (
	"context"
	"sync"
	"time"

	"linklet/pkg/logger"

	"github.com/google/uuid"
	"go.uber.org/zap"
)

// Room names. Conversation rooms carry message fan-out; user rooms carry
// notification fan-out.
func ConversationRoom(conversationID uuid.UUID) string {
	return "conversation:" + conversationID.String()
}

func UserRoom(userID uuid.UUID) string {
	return "user:" + userID.String()
}

// PresenceTracker flips a user's online flag when their first chat session
// arrives and their last one leaves.
type PresenceTracker interface {
	SetOnline(ctx context.Context, userID uuid.UUID) error
	SetOffline(ctx context.Context, userID uuid.UUID) error
}

type hubEventOp int

const (
	opRegister hubEventOp = iota
	opUnregister
	opJoin
	opLeave
)

type hubEvent struct {
	op     hubEventOp
	client *Client
	room   string
}

// Hub is the in-process connection registry: it tracks live sessions, room
// membership and per-user chat sessions for presence.
type Hub struct {
	mu sync.RWMutex

	// clients maps session ID to client.
	clients map[string]*Client

	// chatSessions groups chat-channel sessions by user, so presence only
	// flips when a user's first session arrives or last one leaves.
	chatSessions map[uuid.UUID]map[string]*Client

	// rooms maps room name to the sessions joined to it.
	rooms map[string]map[*Client]struct{}

	// events carries every registry mutation. A single channel keeps the
	// events from one connection goroutine in order: a join sent right
	// after registration cannot overtake it.
	events chan hubEvent

	presence PresenceTracker
	log      *logger.Logger
}

func NewHub(presence PresenceTracker, log *logger.Logger) *Hub {
	return &Hub{
		clients:      make(map[string]*Client),
		chatSessions: make(map[uuid.UUID]map[string]*Client),
		rooms:        make(map[string]map[*Client]struct{}),
		events:       make(chan hubEvent, 1024),
		presence:     presence,
		log:          log,
	}
}

// Run is the hub's event loop. All registry mutations funnel through here.
func (h *Hub) Run(ctx context.Context) {
	for {
		select {
		case <-ctx.Done():
			return
		case ev := <-h.events:
			switch ev.op {
			case opRegister:
				h.addClient(ev.client)
			case opUnregister:
				h.removeClient(ev.client)
			case opJoin:
				h.joinRoom(ev.client, ev.room)
			case opLeave:
				h.leaveRoom(ev.client, ev.room)
			}
		}
	}
}

func (h *Hub) Register(client *Client) {
	h.events <- hubEvent{op: opRegister, client: client}
}

func (h *Hub) Unregister(client *Client) {
	h.events <- hubEvent{op: opUnregister, client: client}
}

func (h *Hub) Join(client *Client, room string) {
	h.events <- hubEvent{op: opJoin, client: client, room: room}
}

func (h *Hub) Leave(client *Client, room string) {
	h.events <- hubEvent{op: opLeave, client: client, room: room}
}

// BroadcastToRoom fans a frame out to every session in the room. Sessions
// with a full buffer miss the frame.
func (h *Hub) BroadcastToRoom(room string, payload []byte) {
	h.mu.RLock()
	for c := range h.rooms[room] {
		c.Enqueue(payload)
	}
	h.mu.RUnlock()
}

// BroadcastToUser sends a frame to every session the user has open,
// regardless of channel or room.
func (h *Hub) BroadcastToUser(userID uuid.UUID, payload []byte) {
	h.mu.RLock()
	for _, c := range h.clients {
		if c.UserID == userID {
			c.Enqueue(payload)
		}
	}
	h.mu.RUnlock()
}

func (h *Hub) ClientCount() int {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return len(h.clients)
}

func (h *Hub) RoomSize(room string) int {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return len(h.rooms[room])
}

func (h *Hub) addClient(client *Client) {
	h.mu.Lock()
	h.clients[client.ID] = client

	firstChatSession := false
	if client.Channel == ChannelChat {
		sessions := h.chatSessions[client.UserID]
		if sessions == nil {
			sessions = make(map[string]*Client)
			h.chatSessions[client.UserID] = sessions
		}
		firstChatSession = len(sessions) == 0
		sessions[client.ID] = client
	}
	h.mu.Unlock()

	if firstChatSession {
		go h.markOnline(client.UserID)
	}
}

func (h *Hub) removeClient(client *Client) {
	h.mu.Lock()
	if _, ok := h.clients[client.ID]; !ok {
		h.mu.Unlock()
		return
	}

	for _, room := range client.Rooms() {
		if members, ok := h.rooms[room]; ok {
			delete(members, client)
			if len(members) == 0 {
				delete(h.rooms, room)
			}
		}
	}

	lastChatSession := false
	if client.Channel == ChannelChat {
		if sessions, ok := h.chatSessions[client.UserID]; ok {
			delete(sessions, client.ID)
			if len(sessions) == 0 {
				delete(h.chatSessions, client.UserID)
				lastChatSession = true
			}
		}
	}

	delete(h.clients, client.ID)
	close(client.Send)
	h.mu.Unlock()

	if lastChatSession {
		go h.markOffline(client.UserID)
	}
}

func (h *Hub) joinRoom(client *Client, room string) {
	h.mu.Lock()
	defer h.mu.Unlock()

	if _, ok := h.clients[client.ID]; !ok {
		return
	}
	if _, ok := h.rooms[room]; !ok {
		h.rooms[room] = make(map[*Client]struct{})
	}
	h.rooms[room][client] = struct{}{}
	client.joinRoom(room)
}

func (h *Hub) leaveRoom(client *Client, room string) {
	h.mu.Lock()
	defer h.mu.Unlock()

	if members, ok := h.rooms[room]; ok {
		delete(members, client)
		if len(members) == 0 {
			delete(h.rooms, room)
		}
	}
	client.leaveRoom(room)
}

func (h *Hub) markOnline(userID uuid.UUID) {
	if h.presence == nil {
		return
	}
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := h.presence.SetOnline(ctx, userID); err != nil {
		h.log.Warn("presence online update failed", zap.String("user_id", userID.String()), zap.Error(err))
	}
}

func (h *Hub) markOffline(userID uuid.UUID) {
	if h.presence == nil {
		return
	}
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := h.presence.SetOffline(ctx, userID); err != nil {
		h.log.Warn("presence offline update failed", zap.String("user_id", userID.String()), zap.Error(err))
	}
}
