package ws

import (
	"context"

	"linklet/internal/redis"
	"linklet/internal/repository"

	"github.com/google/uuid"
)

// DBPresenceTracker writes presence flips to both the users table and the
// Redis presence store. The Redis write is for fast lookups; the row flag is
// what list endpoints read.
type DBPresenceTracker struct {
	userRepo repository.UserRepository
	store    *redis.PresenceStore
}

func NewDBPresenceTracker(userRepo repository.UserRepository, store *redis.PresenceStore) *DBPresenceTracker {
	return &DBPresenceTracker{userRepo: userRepo, store: store}
}

func (t *DBPresenceTracker) SetOnline(ctx context.Context, userID uuid.UUID) error {
	if t.store != nil {
		if err := t.store.SetOnline(ctx, userID); err != nil {
			return err
		}
	}
	return t.userRepo.UpdateOnlineStatus(ctx, userID, true)
}

func (t *DBPresenceTracker) SetOffline(ctx context.Context, userID uuid.UUID) error {
	if t.store != nil {
		if err := t.store.SetOffline(ctx, userID); err != nil {
			return err
		}
	}
	return t.userRepo.UpdateOnlineStatus(ctx, userID, false)
}
