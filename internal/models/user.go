package models

import (
	"time"

	"github.com/google/uuid"
)

// User represents a user profile
type User struct {
	ID        uuid.UUID `gorm:"type:uuid;primaryKey;column:id"`
	Username  string    `gorm:"type:varchar(30);not null;uniqueIndex:users_ux_username;column:username"`
	FullName  string    `gorm:"type:varchar(100);not null;default:'';column:full_name"`
	Bio       string    `gorm:"type:varchar(300);not null;default:'';column:bio"`
	AvatarURL string    `gorm:"type:varchar(1024);not null;default:'';column:avatar_url"`
	CreatedAt time.Time `gorm:"not null;column:created_at"`
	UpdatedAt time.Time `gorm:"not null;column:updated_at"`

	// Denormalized counters, best-effort mirrors of the underlying facts
	FollowersCount int64 `gorm:"not null;default:0;column:followers_count"`
	FollowingCount int64 `gorm:"not null;default:0;column:following_count"`
	PostsCount     int64 `gorm:"not null;default:0;column:posts_count"`
}

// TableName specifies the table name for User
func (User) TableName() string {
	return "users"
}
