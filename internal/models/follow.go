package models

import (
	"time"

	"github.com/google/uuid"
)

// Follow represents one directed edge of the follow graph. The edge is the
// single source of truth for both directions; follower and following queries
// are two indexes over the same relation.
type Follow struct {
	FollowerID  uuid.UUID `gorm:"type:uuid;primaryKey;index:follows_ix_follower;column:follower_id"`
	FollowingID uuid.UUID `gorm:"type:uuid;primaryKey;index:follows_ix_following;column:following_id"`
	CreatedAt   time.Time `gorm:"not null;column:created_at"`
}

// TableName specifies the table name for Follow
func (Follow) TableName() string {
	return "follows"
}
