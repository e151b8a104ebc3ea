package db

import (
	"context"

	"github.com/google/uuid"

	"github.com/picstream/picstream/internal/models"
)

// LikeRepository owns the like facts for posts and comments. A fact is a
// unique (subject, user) pair; the composite primary keys are the store's
// duplicate protection.
type LikeRepository struct {
	*Repository
}

// NewLikeRepository creates a new like repository
func NewLikeRepository(repo *Repository) *LikeRepository {
	return &LikeRepository{Repository: repo}
}

// PostLikeExists checks whether the (post, user) like fact exists
func (r *LikeRepository) PostLikeExists(ctx context.Context, postID, userID uuid.UUID) (bool, error) {
	var count int64
	if err := r.db.WithContext(ctx).Model(&models.PostLike{}).
		Where("post_id = ? AND user_id = ?", postID, userID).
		Count(&count).Error; err != nil {
		return false, err
	}
	return count > 0, nil
}

// CreatePostLike inserts a post like fact
func (r *LikeRepository) CreatePostLike(ctx context.Context, like *models.PostLike) error {
	return r.db.WithContext(ctx).Create(like).Error
}

// DeletePostLike removes a post like fact and reports whether it existed
func (r *LikeRepository) DeletePostLike(ctx context.Context, postID, userID uuid.UUID) (bool, error) {
	res := r.db.WithContext(ctx).
		Where("post_id = ? AND user_id = ?", postID, userID).
		Delete(&models.PostLike{})
	if res.Error != nil {
		return false, res.Error
	}
	return res.RowsAffected > 0, nil
}

// LikedPostIDs retrieves the subset of postIDs liked by the user with a
// single query. Callers default the missing ids to not-liked.
func (r *LikeRepository) LikedPostIDs(ctx context.Context, postIDs []uuid.UUID, userID uuid.UUID) ([]uuid.UUID, error) {
	var ids []uuid.UUID
	if len(postIDs) == 0 {
		return ids, nil
	}
	if err := r.db.WithContext(ctx).Model(&models.PostLike{}).
		Where("post_id IN ? AND user_id = ?", postIDs, userID).
		Pluck("post_id", &ids).Error; err != nil {
		return nil, err
	}
	return ids, nil
}

// CommentLikeExists checks whether the (comment, user) like fact exists
func (r *LikeRepository) CommentLikeExists(ctx context.Context, commentID, userID uuid.UUID) (bool, error) {
	var count int64
	if err := r.db.WithContext(ctx).Model(&models.CommentLike{}).
		Where("comment_id = ? AND user_id = ?", commentID, userID).
		Count(&count).Error; err != nil {
		return false, err
	}
	return count > 0, nil
}

// CreateCommentLike inserts a comment like fact
func (r *LikeRepository) CreateCommentLike(ctx context.Context, like *models.CommentLike) error {
	return r.db.WithContext(ctx).Create(like).Error
}

// DeleteCommentLike removes a comment like fact and reports whether it existed
func (r *LikeRepository) DeleteCommentLike(ctx context.Context, commentID, userID uuid.UUID) (bool, error) {
	res := r.db.WithContext(ctx).
		Where("comment_id = ? AND user_id = ?", commentID, userID).
		Delete(&models.CommentLike{})
	if res.Error != nil {
		return false, res.Error
	}
	return res.RowsAffected > 0, nil
}

// LikedCommentIDs retrieves the subset of commentIDs liked by the user
func (r *LikeRepository) LikedCommentIDs(ctx context.Context, commentIDs []uuid.UUID, userID uuid.UUID) ([]uuid.UUID, error) {
	var ids []uuid.UUID
	if len(commentIDs) == 0 {
		return ids, nil
	}
	if err := r.db.WithContext(ctx).Model(&models.CommentLike{}).
		Where("comment_id IN ? AND user_id = ?", commentIDs, userID).
		Pluck("comment_id", &ids).Error; err != nil {
		return nil, err
	}
	return ids, nil
}
