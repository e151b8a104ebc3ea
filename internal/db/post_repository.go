package db

import (
	"context"
	"errors"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/picstream/picstream/internal/models"
)

// PostRepository provides post-related database operations
type PostRepository struct {
	*Repository
}

// NewPostRepository creates a new post repository
func NewPostRepository(repo *Repository) *PostRepository {
	return &PostRepository{Repository: repo}
}

// GetActiveByID retrieves an active (not soft-deleted) post by ID with its
// media attachments in display order
func (r *PostRepository) GetActiveByID(ctx context.Context, id uuid.UUID) (*models.Post, error) {
	var post models.Post
	if err := r.db.WithContext(ctx).
		Preload("Media", func(tx *gorm.DB) *gorm.DB { return tx.Order("display_order ASC") }).
		Where("id = ? AND is_active = true", id).
		First(&post).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, err
	}
	return &post, nil
}

// Exists checks whether an active post exists
func (r *PostRepository) Exists(ctx context.Context, id uuid.UUID) (bool, error) {
	var count int64
	if err := r.db.WithContext(ctx).Model(&models.Post{}).
		Where("id = ? AND is_active = true", id).Count(&count).Error; err != nil {
		return false, err
	}
	return count > 0, nil
}

// Create creates a new post together with its media rows
func (r *PostRepository) Create(ctx context.Context, post *models.Post) error {
	return r.db.WithContext(ctx).Create(post).Error
}

// Update updates a post
func (r *PostRepository) Update(ctx context.Context, post *models.Post) error {
	return r.db.WithContext(ctx).Save(post).Error
}

// SoftDelete marks a post inactive. Posts are never hard-deleted.
func (r *PostRepository) SoftDelete(ctx context.Context, id uuid.UUID) error {
	return r.db.WithContext(ctx).Model(&models.Post{}).
		Where("id = ?", id).
		UpdateColumn("is_active", false).Error
}

// FeedPage retrieves one reverse-chronological page of active posts whose
// author is in the given id set, plus the total count. Ties on created_at
// are broken by id descending so pagination stays deterministic.
func (r *PostRepository) FeedPage(ctx context.Context, authorIDs []uuid.UUID, offset, limit int) ([]*models.Post, int64, error) {
	var posts []*models.Post
	if len(authorIDs) == 0 {
		return posts, 0, nil
	}

	q := r.db.WithContext(ctx).Model(&models.Post{}).
		Where("author_id IN ? AND is_active = true", authorIDs)

	var total int64
	if err := q.Count(&total).Error; err != nil {
		return nil, 0, err
	}

	if err := q.
		Preload("Media", func(tx *gorm.DB) *gorm.DB { return tx.Order("display_order ASC") }).
		Order("created_at DESC, id DESC").
		Offset(offset).Limit(limit).
		Find(&posts).Error; err != nil {
		return nil, 0, err
	}
	return posts, total, nil
}

// ByAuthorPage retrieves one reverse-chronological page of a single
// author's active posts, plus the total count
func (r *PostRepository) ByAuthorPage(ctx context.Context, authorID uuid.UUID, offset, limit int) ([]*models.Post, int64, error) {
	return r.FeedPage(ctx, []uuid.UUID{authorID}, offset, limit)
}

// AdjustCounter applies a +1/-1 delta to a post counter, clamped at zero
func (r *PostRepository) AdjustCounter(ctx context.Context, id uuid.UUID, column string, delta int) error {
	return adjustCounter(r.db.WithContext(ctx), &models.Post{}, "id", id, column, delta)
}
