package repository

import (
	"context"
	"errors"
	"time"

	"linklet/internal/domain/user"
	linklet_errors "linklet/pkg/errors"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

type PostgresUserRepository struct {
	db *gorm.DB
}

func NewUserRepository(db *gorm.DB) UserRepository {
	return &PostgresUserRepository{db: db}
}

func (r *PostgresUserRepository) Create(ctx context.Context, u *user.User) error {
	res := r.db.WithContext(ctx).Create(u)
	if res.Error != nil {
		if errors.Is(res.Error, gorm.ErrDuplicatedKey) {
			return linklet_errors.ErrAlreadyExists
		}
		return res.Error
	}
	return nil
}

func (r *PostgresUserRepository) GetByID(ctx context.Context, id uuid.UUID) (user.User, error) {
	var u user.User
	err := r.db.WithContext(ctx).Where("id = ?", id).First(&u).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return user.User{}, linklet_errors.ErrNotFound
		}
		return user.User{}, err
	}
	return u, nil
}

func (r *PostgresUserRepository) GetByIdentity(ctx context.Context, identity string) (user.User, error) {
	var u user.User
	err := r.db.WithContext(ctx).
		Where("username = ? OR email = ? OR phone_number = ?", identity, identity, identity).
		First(&u).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return user.User{}, linklet_errors.ErrNotFound
		}
		return user.User{}, err
	}
	return u, nil
}

func (r *PostgresUserRepository) GetByIDs(ctx context.Context, ids []uuid.UUID) ([]user.User, error) {
	if len(ids) == 0 {
		return nil, nil
	}
	var users []user.User
	err := r.db.WithContext(ctx).Where("id IN ?", ids).Find(&users).Error
	if err != nil {
		return nil, err
	}
	return users, nil
}

func (r *PostgresUserRepository) ExistsByID(ctx context.Context, id uuid.UUID) (bool, error) {
	var count int64
	err := r.db.WithContext(ctx).
		Model(&user.User{}).
		Where("id = ?", id).
		Count(&count).Error
	if err != nil {
		return false, err
	}
	return count > 0, nil
}

func (r *PostgresUserRepository) Search(ctx context.Context, query string, excluding uuid.UUID, limit int) ([]user.User, error) {
	var users []user.User
	pattern := "%" + query + "%"
	err := r.db.WithContext(ctx).
		Where("id != ?", excluding).
		Where("username ILIKE ? OR email ILIKE ? OR phone_number ILIKE ?", pattern, pattern, pattern).
		Limit(limit).
		Find(&users).Error
	if err != nil {
		return nil, err
	}
	return users, nil
}

func (r *PostgresUserRepository) SearchWithin(ctx context.Context, query string, within []uuid.UUID, limit int) ([]user.User, error) {
	if len(within) == 0 {
		return nil, nil
	}
	var users []user.User
	pattern := "%" + query + "%"
	err := r.db.WithContext(ctx).
		Where("id IN ?", within).
		Where("username ILIKE ? OR email ILIKE ? OR phone_number ILIKE ?", pattern, pattern, pattern).
		Limit(limit).
		Find(&users).Error
	if err != nil {
		return nil, err
	}
	return users, nil
}

func (r *PostgresUserRepository) UpdateOnlineStatus(ctx context.Context, id uuid.UUID, online bool) error {
	updates := map[string]interface{}{"is_online": online}
	if !online {
		updates["last_seen_at"] = time.Now()
	}
	res := r.db.WithContext(ctx).
		Model(&user.User{}).
		Where("id = ?", id).
		Updates(updates)
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return linklet_errors.ErrNotFound
	}
	return nil
}
