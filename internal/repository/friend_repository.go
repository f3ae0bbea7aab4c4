package repository

import (
	"context"
	"errors"
	"time"

	"linklet/internal/domain/friendship"
	linklet_errors "linklet/pkg/errors"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

type PostgresFriendRepository struct {
	db *gorm.DB
}

func NewFriendRepository(db *gorm.DB) FriendRepository {
	return &PostgresFriendRepository{db: db}
}

func (r *PostgresFriendRepository) AreFriends(ctx context.Context, a, b uuid.UUID) (bool, error) {
	var count int64
	err := r.db.WithContext(ctx).
		Model(&friendship.Friendship{}).
		Where("user_id = ? AND friend_id = ?", a, b).
		Count(&count).Error
	if err != nil {
		return false, err
	}
	return count > 0, nil
}

func (r *PostgresFriendRepository) FriendIDs(ctx context.Context, userID uuid.UUID) ([]uuid.UUID, error) {
	var ids []uuid.UUID
	err := r.db.WithContext(ctx).
		Model(&friendship.Friendship{}).
		Where("user_id = ?", userID).
		Order("created_at ASC").
		Pluck("friend_id", &ids).Error
	if err != nil {
		return nil, err
	}
	return ids, nil
}

// CreatePendingRequest inserts a new PENDING row. The partial unique index on
// (sender_id, receiver_id) WHERE status = 'PENDING' turns a racing duplicate
// into ErrDuplicateRequest instead of a second pending entry.
func (r *PostgresFriendRepository) CreatePendingRequest(ctx context.Context, req *friendship.FriendRequest) error {
	res := r.db.WithContext(ctx).Create(req)
	if res.Error != nil {
		if errors.Is(res.Error, gorm.ErrDuplicatedKey) {
			return linklet_errors.ErrDuplicateRequest
		}
		return res.Error
	}
	return nil
}

func (r *PostgresFriendRepository) PendingRequests(ctx context.Context, receiverID uuid.UUID) ([]friendship.FriendRequest, error) {
	var requests []friendship.FriendRequest
	err := r.db.WithContext(ctx).
		Where("receiver_id = ? AND status = ?", receiverID, friendship.StatusPending).
		Order("created_at ASC").
		Find(&requests).Error
	if err != nil {
		return nil, err
	}
	return requests, nil
}

func (r *PostgresFriendRepository) PendingSentIDs(ctx context.Context, senderID uuid.UUID) ([]uuid.UUID, error) {
	var ids []uuid.UUID
	err := r.db.WithContext(ctx).
		Model(&friendship.FriendRequest{}).
		Where("sender_id = ? AND status = ?", senderID, friendship.StatusPending).
		Pluck("receiver_id", &ids).Error
	if err != nil {
		return nil, err
	}
	return ids, nil
}

func (r *PostgresFriendRepository) PendingReceivedIDs(ctx context.Context, receiverID uuid.UUID) ([]uuid.UUID, error) {
	var ids []uuid.UUID
	err := r.db.WithContext(ctx).
		Model(&friendship.FriendRequest{}).
		Where("receiver_id = ? AND status = ?", receiverID, friendship.StatusPending).
		Pluck("sender_id", &ids).Error
	if err != nil {
		return nil, err
	}
	return ids, nil
}

// AcceptRequest resolves the pending request and writes both edge rows in one
// transaction. The conditional UPDATE is the linearization point: of two
// concurrent accepts only one sees RowsAffected > 0.
func (r *PostgresFriendRepository) AcceptRequest(ctx context.Context, senderID, receiverID uuid.UUID) error {
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		res := tx.Model(&friendship.FriendRequest{}).
			Where("sender_id = ? AND receiver_id = ? AND status = ?", senderID, receiverID, friendship.StatusPending).
			Updates(map[string]interface{}{
				"status":     friendship.StatusAccepted,
				"updated_at": time.Now(),
			})
		if res.Error != nil {
			return res.Error
		}
		if res.RowsAffected == 0 {
			return linklet_errors.ErrNotFound
		}

		now := time.Now()
		return tx.Exec(
			`INSERT INTO friendships (user_id, friend_id, created_at)
			 VALUES (?, ?, ?), (?, ?, ?)
			 ON CONFLICT DO NOTHING`,
			senderID, receiverID, now,
			receiverID, senderID, now,
		).Error
	})
}

func (r *PostgresFriendRepository) RejectRequest(ctx context.Context, senderID, receiverID uuid.UUID) error {
	res := r.db.WithContext(ctx).
		Model(&friendship.FriendRequest{}).
		Where("sender_id = ? AND receiver_id = ? AND status = ?", senderID, receiverID, friendship.StatusPending).
		Updates(map[string]interface{}{
			"status":     friendship.StatusRejected,
			"updated_at": time.Now(),
		})
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return linklet_errors.ErrNotFound
	}
	return nil
}

// RemoveFriendship deletes both directions of the edge in one statement.
func (r *PostgresFriendRepository) RemoveFriendship(ctx context.Context, a, b uuid.UUID) error {
	res := r.db.WithContext(ctx).Exec(
		`DELETE FROM friendships
		 WHERE (user_id = ? AND friend_id = ?) OR (user_id = ? AND friend_id = ?)`,
		a, b, b, a,
	)
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return linklet_errors.ErrNotFriends
	}
	return nil
}
