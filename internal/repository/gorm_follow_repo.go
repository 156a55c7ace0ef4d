package repository

import (
	"context"

	"gorm.io/gorm"

	"github.com/moaahil1110/LikeLoop/internal/domain"
)

// GormFollowRepository implements FollowRepository using GORM. Each
// follower→following edge is one row, so a toggle can never leave the
// two sides of the relationship disagreeing.
type GormFollowRepository struct {
	db *gorm.DB
}

// NewGormFollowRepository creates a new GORM-based follow repository.
func NewGormFollowRepository(db *gorm.DB) *GormFollowRepository {
	return &GormFollowRepository{db: db}
}

// Toggle atomically flips the follower→following edge and returns the
// resulting state.
func (r *GormFollowRepository) Toggle(ctx context.Context, followerID, followingID string) (bool, error) {
	var following bool

	err := r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		// Step 1: unfollow — soft-delete an active edge.
		result := tx.Where("follower_id = ? AND following_id = ?", followerID, followingID).
			Delete(&domain.FollowModel{})
		if result.Error != nil {
			return result.Error
		}
		if result.RowsAffected > 0 {
			following = false
			return nil
		}

		// Step 2: follow — restore a previously soft-deleted edge.
		result = tx.Unscoped().
			Model(&domain.FollowModel{}).
			Where("follower_id = ? AND following_id = ? AND deleted_at IS NOT NULL", followerID, followingID).
			Update("deleted_at", nil)
		if result.Error != nil {
			return result.Error
		}
		if result.RowsAffected > 0 {
			following = true
			return nil
		}

		// Step 3: first follow — insert a fresh edge.
		model := domain.FollowModel{FollowerID: followerID, FollowingID: followingID}
		if err := tx.Create(&model).Error; err != nil {
			if isUniqueViolation(err) {
				following = true
				return nil
			}
			return err
		}
		following = true
		return nil
	})
	if err != nil {
		return false, err
	}
	return following, nil
}

// IsFollowing reports whether the follower→following edge exists.
func (r *GormFollowRepository) IsFollowing(ctx context.Context, followerID, followingID string) (bool, error) {
	var count int64
	err := r.db.WithContext(ctx).Model(&domain.FollowModel{}).
		Where("follower_id = ? AND following_id = ?", followerID, followingID).
		Count(&count).Error
	if err != nil {
		return false, err
	}
	return count > 0, nil
}

// FollowerCount returns how many users follow userID.
func (r *GormFollowRepository) FollowerCount(ctx context.Context, userID string) (int64, error) {
	var count int64
	err := r.db.WithContext(ctx).Model(&domain.FollowModel{}).
		Where("following_id = ?", userID).
		Count(&count).Error
	return count, err
}

// FollowingCount returns how many users userID follows.
func (r *GormFollowRepository) FollowingCount(ctx context.Context, userID string) (int64, error) {
	var count int64
	err := r.db.WithContext(ctx).Model(&domain.FollowModel{}).
		Where("follower_id = ?", userID).
		Count(&count).Error
	return count, err
}

// Ensure interface is satisfied at compile time.
var _ FollowRepository = (*GormFollowRepository)(nil)
