package models

import (
	"time"

	"github.com/google/uuid"
)

// PostLike represents one (post, user) like fact. Existence is the fact;
// rows are created and deleted, never updated.
type PostLike struct {
	PostID    uuid.UUID `gorm:"type:uuid;primaryKey;column:post_id"`
	UserID    uuid.UUID `gorm:"type:uuid;primaryKey;column:user_id"`
	CreatedAt time.Time `gorm:"not null;column:created_at"`
}

// TableName specifies the table name for PostLike
func (PostLike) TableName() string {
	return "post_likes"
}

// CommentLike represents one (comment, user) like fact
type CommentLike struct {
	CommentID uuid.UUID `gorm:"type:uuid;primaryKey;column:comment_id"`
	UserID    uuid.UUID `gorm:"type:uuid;primaryKey;column:user_id"`
	CreatedAt time.Time `gorm:"not null;column:created_at"`
}

// TableName specifies the table name for CommentLike
func (CommentLike) TableName() string {
	return "comment_likes"
}
