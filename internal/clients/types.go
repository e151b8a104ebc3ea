package clients

import (
	"time"

	"github.com/google/uuid"
)

// Profile is the user projection exchanged between services
type Profile struct {
	ID             uuid.UUID `json:"id"`
	Username       string    `json:"username"`
	FullName       string    `json:"fullName"`
	Bio            string    `json:"bio"`
	AvatarURL      string    `json:"avatarUrl"`
	FollowersCount int64     `json:"followersCount"`
	FollowingCount int64     `json:"followingCount"`
	PostsCount     int64     `json:"postsCount"`
	IsFollowing    *bool     `json:"isFollowing,omitempty"`
	CreatedAt      time.Time `json:"createdAt"`
}

// FeedPost is the post summary exchanged between services and returned in
// feed pages. IsLiked is merged in by the feed aggregator and may be stale
// when served from cache.
type FeedPost struct {
	ID            uuid.UUID `json:"id"`
	AuthorID      uuid.UUID `json:"authorId"`
	Author        *Profile  `json:"author,omitempty"`
	Caption       string    `json:"caption"`
	Location      string    `json:"location"`
	MediaURLs     []string  `json:"mediaUrls"`
	LikesCount    int64     `json:"likesCount"`
	CommentsCount int64     `json:"commentsCount"`
	IsLiked       bool      `json:"isLiked"`
	CreatedAt     time.Time `json:"createdAt"`
}

// PostPage is one page of post summaries plus paging metadata
type PostPage struct {
	Content    []FeedPost `json:"content"`
	Page       int        `json:"page"`
	Size       int        `json:"size"`
	TotalCount int64      `json:"totalCount"`
}
