package db

import (
	"context"
	"errors"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/picstream/picstream/internal/models"
)

// CommentRepository provides comment-related database operations
type CommentRepository struct {
	*Repository
}

// NewCommentRepository creates a new comment repository
func NewCommentRepository(repo *Repository) *CommentRepository {
	return &CommentRepository{Repository: repo}
}

// GetActiveByID retrieves an active comment by ID
func (r *CommentRepository) GetActiveByID(ctx context.Context, id uuid.UUID) (*models.Comment, error) {
	var comment models.Comment
	if err := r.db.WithContext(ctx).
		Where("id = ? AND is_active = true", id).
		First(&comment).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, err
	}
	return &comment, nil
}

// Create creates a new comment
func (r *CommentRepository) Create(ctx context.Context, comment *models.Comment) error {
	return r.db.WithContext(ctx).Create(comment).Error
}

// Update updates a comment
func (r *CommentRepository) Update(ctx context.Context, comment *models.Comment) error {
	return r.db.WithContext(ctx).Save(comment).Error
}

// SoftDelete marks a comment inactive
func (r *CommentRepository) SoftDelete(ctx context.Context, id uuid.UUID) error {
	return r.db.WithContext(ctx).Model(&models.Comment{}).
		Where("id = ?", id).
		UpdateColumn("is_active", false).Error
}

// TopLevelByPost retrieves one page of a post's top-level comments, oldest
// first, plus the total count
func (r *CommentRepository) TopLevelByPost(ctx context.Context, postID uuid.UUID, offset, limit int) ([]*models.Comment, int64, error) {
	q := r.db.WithContext(ctx).Model(&models.Comment{}).
		Where("post_id = ? AND parent_id IS NULL AND is_active = true", postID)

	var total int64
	if err := q.Count(&total).Error; err != nil {
		return nil, 0, err
	}

	var comments []*models.Comment
	if err := q.Order("created_at ASC, id ASC").Offset(offset).Limit(limit).
		Find(&comments).Error; err != nil {
		return nil, 0, err
	}
	return comments, total, nil
}

// RepliesByParent retrieves one page of replies to a comment, oldest first,
// plus the total count
func (r *CommentRepository) RepliesByParent(ctx context.Context, parentID uuid.UUID, offset, limit int) ([]*models.Comment, int64, error) {
	q := r.db.WithContext(ctx).Model(&models.Comment{}).
		Where("parent_id = ? AND is_active = true", parentID)

	var total int64
	if err := q.Count(&total).Error; err != nil {
		return nil, 0, err
	}

	var comments []*models.Comment
	if err := q.Order("created_at ASC, id ASC").Offset(offset).Limit(limit).
		Find(&comments).Error; err != nil {
		return nil, 0, err
	}
	return comments, total, nil
}

// AdjustCounter applies a +1/-1 delta to a comment counter, clamped at zero
func (r *CommentRepository) AdjustCounter(ctx context.Context, id uuid.UUID, column string, delta int) error {
	return adjustCounter(r.db.WithContext(ctx), &models.Comment{}, "id", id, column, delta)
}
