package db

import (
	"context"

	"github.com/google/uuid"

	"github.com/picstream/picstream/internal/models"
)

// FollowRepository provides follow-graph database operations. Both query
// directions scan the same follows table by the other column; there is no
// mirrored reverse table.
type FollowRepository struct {
	*Repository
}

// NewFollowRepository creates a new follow repository
func NewFollowRepository(repo *Repository) *FollowRepository {
	return &FollowRepository{Repository: repo}
}

// FollowingIDs retrieves the ids of every user the given user follows
func (r *FollowRepository) FollowingIDs(ctx context.Context, userID uuid.UUID) ([]uuid.UUID, error) {
	var ids []uuid.UUID
	if err := r.db.WithContext(ctx).Model(&models.Follow{}).
		Where("follower_id = ?", userID).
		Pluck("following_id", &ids).Error; err != nil {
		return nil, err
	}
	return ids, nil
}

// FollowerIDs retrieves the ids of every follower of the given user
func (r *FollowRepository) FollowerIDs(ctx context.Context, userID uuid.UUID) ([]uuid.UUID, error) {
	var ids []uuid.UUID
	if err := r.db.WithContext(ctx).Model(&models.Follow{}).
		Where("following_id = ?", userID).
		Pluck("follower_id", &ids).Error; err != nil {
		return nil, err
	}
	return ids, nil
}

// FollowerIDsPage retrieves one page of follower ids plus the total count
func (r *FollowRepository) FollowerIDsPage(ctx context.Context, userID uuid.UUID, offset, limit int) ([]uuid.UUID, int64, error) {
	q := r.db.WithContext(ctx).Model(&models.Follow{}).Where("following_id = ?", userID)

	var total int64
	if err := q.Count(&total).Error; err != nil {
		return nil, 0, err
	}

	var ids []uuid.UUID
	if err := q.Order("created_at DESC").Offset(offset).Limit(limit).
		Pluck("follower_id", &ids).Error; err != nil {
		return nil, 0, err
	}
	return ids, total, nil
}

// FollowingIDsPage retrieves one page of following ids plus the total count
func (r *FollowRepository) FollowingIDsPage(ctx context.Context, userID uuid.UUID, offset, limit int) ([]uuid.UUID, int64, error) {
	q := r.db.WithContext(ctx).Model(&models.Follow{}).Where("follower_id = ?", userID)

	var total int64
	if err := q.Count(&total).Error; err != nil {
		return nil, 0, err
	}

	var ids []uuid.UUID
	if err := q.Order("created_at DESC").Offset(offset).Limit(limit).
		Pluck("following_id", &ids).Error; err != nil {
		return nil, 0, err
	}
	return ids, total, nil
}

// IsFollowing checks whether the edge (follower, following) exists
func (r *FollowRepository) IsFollowing(ctx context.Context, followerID, followingID uuid.UUID) (bool, error) {
	var count int64
	if err := r.db.WithContext(ctx).Model(&models.Follow{}).
		Where("follower_id = ? AND following_id = ?", followerID, followingID).
		Count(&count).Error; err != nil {
		return false, err
	}
	return count > 0, nil
}

// FollowingAmong retrieves the subset of candidateIDs the user follows,
// with a single query rather than one round trip per candidate
func (r *FollowRepository) FollowingAmong(ctx context.Context, userID uuid.UUID, candidateIDs []uuid.UUID) ([]uuid.UUID, error) {
	var ids []uuid.UUID
	if len(candidateIDs) == 0 {
		return ids, nil
	}
	if err := r.db.WithContext(ctx).Model(&models.Follow{}).
		Where("follower_id = ? AND following_id IN ?", userID, candidateIDs).
		Pluck("following_id", &ids).Error; err != nil {
		return nil, err
	}
	return ids, nil
}

// Create inserts a follow edge. The composite primary key rejects
// duplicates at the store level.
func (r *FollowRepository) Create(ctx context.Context, follow *models.Follow) error {
	return r.db.WithContext(ctx).Create(follow).Error
}

// Delete removes a follow edge and reports whether it existed
func (r *FollowRepository) Delete(ctx context.Context, followerID, followingID uuid.UUID) (bool, error) {
	res := r.db.WithContext(ctx).
		Where("follower_id = ? AND following_id = ?", followerID, followingID).
		Delete(&models.Follow{})
	if res.Error != nil {
		return false, res.Error
	}
	return res.RowsAffected > 0, nil
}
