package redis

import (
	"context"
	"time"

	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"
)

const (
	onlineSetKey   = "presence:online"
	presenceKeyTTL = 5 * time.Minute
)

// PresenceStore keeps the live-session view of who is online. Each online
// user holds a TTL key plus membership in a shared set, so stale entries age
// out even after an unclean shutdown.
type PresenceStore struct {
	rdb *redis.Client
}

func NewPresenceStore(rdb *redis.Client) *PresenceStore {
	return &PresenceStore{rdb: rdb}
}

func presenceKey(userID uuid.UUID) string {
	return "presence:user:" + userID.String()
}

func (p *PresenceStore) SetOnline(ctx context.Context, userID uuid.UUID) error {
	pipe := p.rdb.TxPipeline()
	pipe.Set(ctx, presenceKey(userID), time.Now().Unix(), presenceKeyTTL)
	pipe.SAdd(ctx, onlineSetKey, userID.String())
	_, err := pipe.Exec(ctx)
	return err
}

func (p *PresenceStore) SetOffline(ctx context.Context, userID uuid.UUID) error {
	pipe := p.rdb.TxPipeline()
	pipe.Del(ctx, presenceKey(userID))
	pipe.SRem(ctx, onlineSetKey, userID.String())
	_, err := pipe.Exec(ctx)
	return err
}

// Refresh extends the TTL for a user with an active session.
func (p *PresenceStore) Refresh(ctx context.Context, userID uuid.UUID) error {
	return p.rdb.Expire(ctx, presenceKey(userID), presenceKeyTTL).Err()
}

func (p *PresenceStore) IsOnline(ctx context.Context, userID uuid.UUID) (bool, error) {
	n, err := p.rdb.Exists(ctx, presenceKey(userID)).Result()
	if err != nil {
		return false, err
	}
	return n > 0, nil
}

// OnlineUsers returns the ids currently in the online set.
func (p *PresenceStore) OnlineUsers(ctx context.Context) ([]uuid.UUID, error) {
	raw, err := p.rdb.SMembers(ctx, onlineSetKey).Result()
	if err != nil {
		return nil, err
	}
	ids := make([]uuid.UUID, 0, len(raw))
	for _, s := range raw {
		id, err := uuid.Parse(s)
		if err != nil {
			continue
		}
		ids = append(ids, id)
	}
	return ids, nil
}
