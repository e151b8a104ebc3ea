package models

import (
	"time"

	"github.com/google/uuid"
)

// Comment represents a comment on a post, optionally a one-level reply
type Comment struct {
	ID       uuid.UUID  `gorm:"type:uuid;primaryKey;column:id"`
	PostID   uuid.UUID  `gorm:"type:uuid;not null;index:comments_ix_post;column:post_id"`
	UserID   uuid.UUID  `gorm:"type:uuid;not null;column:user_id"`
	ParentID *uuid.UUID `gorm:"type:uuid;index:comments_ix_parent;column:parent_id"`
	Content  string     `gorm:"type:varchar(1000);not null;column:content"`

	LikesCount   int64 `gorm:"not null;default:0;column:likes_count"`
	RepliesCount int64 `gorm:"not null;default:0;column:replies_count"`

	IsActive  bool      `gorm:"not null;default:true;column:is_active"`
	CreatedAt time.Time `gorm:"not null;column:created_at"`
	UpdatedAt time.Time `gorm:"not null;column:updated_at"`
}

// TableName specifies the table name for Comment
func (Comment) TableName() string {
	return "comments"
}
