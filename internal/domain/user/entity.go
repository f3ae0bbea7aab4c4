package user

import (
	"database/sql"
	"time"

	"github.com/google/uuid"
)

// User represents the users table. The friend graph lives in the
// friendship package; this aggregate only carries profile and presence.
type User struct {
	ID           uuid.UUID `gorm:"type:uuid;primaryKey"`
	Username     string    `gorm:"uniqueIndex;not null"`
	Email        sql.NullString
	PhoneNumber  sql.NullString
	PasswordHash string
	DisplayName  string
	AvatarURL    string
	IsOnline     bool
	LastSeenAt   sql.NullTime
	CreatedAt    time.Time
	UpdatedAt    time.Time
}

func (User) TableName() string {
	return "users"
}

// Summary is the public projection attached to friend lists, requests
// and notifications.
type Summary struct {
	ID          uuid.UUID `json:"id"`
	Username    string    `json:"username"`
	DisplayName string    `json:"display_name"`
	AvatarURL   string    `json:"avatar_url,omitempty"`
	IsOnline    bool      `json:"is_online"`
}

func (u User) Summary() Summary {
	return Summary{
		ID:          u.ID,
		Username:    u.Username,
		DisplayName: u.DisplayName,
		AvatarURL:   u.AvatarURL,
		IsOnline:    u.IsOnline,
	}
}
