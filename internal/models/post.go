package models

import (
	"time"

	"github.com/google/uuid"
)

// Post represents a published post
type Post struct {
	ID       uuid.UUID `gorm:"type:uuid;primaryKey;column:id"`
	AuthorID uuid.UUID `gorm:"type:uuid;not null;index:posts_ix_author;column:author_id"`
	Caption  string    `gorm:"type:varchar(2000);not null;default:'';column:caption"`
	Location string    `gorm:"type:varchar(255);not null;default:'';column:location"`

	// Denormalized counters, best-effort mirrors of the like/comment facts
	LikesCount    int64 `gorm:"not null;default:0;column:likes_count"`
	CommentsCount int64 `gorm:"not null;default:0;column:comments_count"`

	IsActive  bool      `gorm:"not null;default:true;column:is_active"`
	CreatedAt time.Time `gorm:"not null;index:posts_ix_created_at;column:created_at"`
	UpdatedAt time.Time `gorm:"not null;column:updated_at"`

	// Relationships
	Media []PostMedia `gorm:"foreignKey:PostID;references:ID"`
}

// TableName specifies the table name for Post
func (Post) TableName() string {
	return "posts"
}

// PostMedia represents one media attachment of a post, ordered by DisplayOrder
type PostMedia struct {
	ID           uuid.UUID `gorm:"type:uuid;primaryKey;column:id"`
	PostID       uuid.UUID `gorm:"type:uuid;not null;index:post_media_ix_post;column:post_id"`
	URL          string    `gorm:"type:varchar(1024);not null;column:url"`
	DisplayOrder int       `gorm:"not null;default:0;column:display_order"`
}

// TableName specifies the table name for PostMedia
func (PostMedia) TableName() string {
	return "post_media"
}
