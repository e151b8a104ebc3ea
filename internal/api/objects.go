package api

import (
	"time"

	"github.com/google/uuid"

	"github.com/picstream/picstream/internal/clients"
	"github.com/picstream/picstream/internal/models"
)

// PagedResponse is the generic paged wire shape for non-post listings
type PagedResponse struct {
	Content    interface{} `json:"content"`
	Page       int         `json:"page"`
	Size       int         `json:"size"`
	TotalCount int64       `json:"totalCount"`
}

// CommentResponse is the comment wire shape
type CommentResponse struct {
	ID           uuid.UUID        `json:"id"`
	PostID       uuid.UUID        `json:"postId"`
	UserID       uuid.UUID        `json:"userId"`
	ParentID     *uuid.UUID       `json:"parentId,omitempty"`
	User         *clients.Profile `json:"user,omitempty"`
	Content      string           `json:"content"`
	LikesCount   int64            `json:"likesCount"`
	RepliesCount int64            `json:"repliesCount"`
	IsLiked      bool             `json:"isLiked"`
	CreatedAt    time.Time        `json:"createdAt"`
}

func toProfile(user *models.User, isFollowing *bool) *clients.Profile {
	return &clients.Profile{
		ID:             user.ID,
		Username:       user.Username,
		FullName:       user.FullName,
		Bio:            user.Bio,
		AvatarURL:      user.AvatarURL,
		FollowersCount: user.FollowersCount,
		FollowingCount: user.FollowingCount,
		PostsCount:     user.PostsCount,
		IsFollowing:    isFollowing,
		CreatedAt:      user.CreatedAt,
	}
}

func toFeedPost(post *models.Post, author *clients.Profile) clients.FeedPost {
	mediaURLs := make([]string, 0, len(post.Media))
	for _, m := range post.Media {
		mediaURLs = append(mediaURLs, m.URL)
	}
	return clients.FeedPost{
		ID:            post.ID,
		AuthorID:      post.AuthorID,
		Author:        author,
		Caption:       post.Caption,
		Location:      post.Location,
		MediaURLs:     mediaURLs,
		LikesCount:    post.LikesCount,
		CommentsCount: post.CommentsCount,
		CreatedAt:     post.CreatedAt,
	}
}

func toCommentResponse(comment *models.Comment, user *clients.Profile, isLiked bool) CommentResponse {
	return CommentResponse{
		ID:           comment.ID,
		PostID:       comment.PostID,
		UserID:       comment.UserID,
		ParentID:     comment.ParentID,
		User:         user,
		Content:      comment.Content,
		LikesCount:   comment.LikesCount,
		RepliesCount: comment.RepliesCount,
		IsLiked:      isLiked,
		CreatedAt:    comment.CreatedAt,
	}
}
