package repository

import (
	"context"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/moaahil1110/LikeLoop/internal/domain"
)

// GormPostRepository implements PostRepository using GORM. A post's
// like-set and comment log live in their own tables; the unique index
// on likes is what makes set membership atomic.
type GormPostRepository struct {
	db *gorm.DB
}

// NewGormPostRepository creates a new GORM-based post repository.
func NewGormPostRepository(db *gorm.DB) *GormPostRepository {
	return &GormPostRepository{db: db}
}

// Create creates a new post.
func (r *GormPostRepository) Create(ctx context.Context, post *domain.Post) error {
	if post.ID == "" {
		post.ID = uuid.New().String()
	}

	model := domain.PostModel{
		ID:       post.ID,
		UserID:   post.OwnerID,
		Caption:  post.Caption,
		ImageURL: post.Image.URL,
		ImageKey: post.Image.Key,
	}
	if err := r.db.WithContext(ctx).Create(&model).Error; err != nil {
		return err
	}

	post.CreatedAt = model.CreatedAt
	return nil
}

// GetByID retrieves a post by ID.
func (r *GormPostRepository) GetByID(ctx context.Context, id string) (*domain.Post, error) {
	var model domain.PostModel
	result := r.db.WithContext(ctx).First(&model, "id = ?", id)
	if result.Error != nil {
		if isNotFound(result.Error) {
			return nil, ErrPostNotFound
		}
		return nil, result.Error
	}
	return model.ToDomain(), nil
}

// Delete removes the post together with its likes and comments in one
// transaction. The post becomes unfetchable as soon as the transaction
// commits.
func (r *GormPostRepository) Delete(ctx context.Context, id string) error {
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		result := tx.Where("id = ?", id).Delete(&domain.PostModel{})
		if result.Error != nil {
			return result.Error
		}
		if result.RowsAffected == 0 {
			return ErrPostNotFound
		}

		if err := tx.Where("post_id = ?", id).Delete(&domain.LikeModel{}).Error; err != nil {
			return err
		}
		return tx.Where("post_id = ?", id).Delete(&domain.CommentModel{}).Error
	})
}

// ListFeed returns all posts ordered by creation time descending.
func (r *GormPostRepository) ListFeed(ctx context.Context, offset, limit int) ([]*domain.Post, int64, error) {
	return r.list(ctx, r.db.WithContext(ctx).Model(&domain.PostModel{}), offset, limit)
}

// ListByUser returns one user's posts ordered by creation time descending.
func (r *GormPostRepository) ListByUser(ctx context.Context, userID string, offset, limit int) ([]*domain.Post, int64, error) {
	q := r.db.WithContext(ctx).Model(&domain.PostModel{}).Where("user_id = ?", userID)
	return r.list(ctx, q, offset, limit)
}

func (r *GormPostRepository) list(ctx context.Context, q *gorm.DB, offset, limit int) ([]*domain.Post, int64, error) {
	var total int64
	if err := q.Count(&total).Error; err != nil {
		return nil, 0, err
	}

	var models []domain.PostModel
	err := q.
		Order("created_at DESC, id DESC").
		Offset(offset).
		Limit(limit).
		Find(&models).Error
	if err != nil {
		return nil, 0, err
	}

	posts := make([]*domain.Post, 0, len(models))
	for i := range models {
		posts = append(posts, models[i].ToDomain())
	}
	return posts, total, nil
}

// CountByUser returns the number of posts owned by userID.
func (r *GormPostRepository) CountByUser(ctx context.Context, userID string) (int64, error) {
	var count int64
	err := r.db.WithContext(ctx).Model(&domain.PostModel{}).
		Where("user_id = ?", userID).
		Count(&count).Error
	return count, err
}

// ToggleLike atomically flips userID's membership in the post's like-set.
// Membership changes are single UPDATE/INSERT/DELETE statements, never a
// read-modify-write of the whole set, so two simultaneous toggles by the
// same user cannot corrupt it: the unique index arbitrates the insert.
func (r *GormPostRepository) ToggleLike(ctx context.Context, postID, userID string) (bool, int64, error) {
	var liked bool

	err := r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var exists int64
		if err := tx.Model(&domain.PostModel{}).Where("id = ?", postID).Count(&exists).Error; err != nil {
			return err
		}
		if exists == 0 {
			return ErrPostNotFound
		}

		// Step 1: unlike — soft-delete an active membership row.
		result := tx.Where("post_id = ? AND user_id = ?", postID, userID).
			Delete(&domain.LikeModel{})
		if result.Error != nil {
			return result.Error
		}
		if result.RowsAffected > 0 {
			liked = false
			return nil
		}

		// Step 2: like — restore a previously soft-deleted row rather
		// than inserting a duplicate.
		result = tx.Unscoped().
			Model(&domain.LikeModel{}).
			Where("post_id = ? AND user_id = ? AND deleted_at IS NOT NULL", postID, userID).
			Update("deleted_at", nil)
		if result.Error != nil {
			return result.Error
		}
		if result.RowsAffected > 0 {
			liked = true
			return nil
		}

		// Step 3: first like by this user — insert a fresh row.
		model := domain.LikeModel{PostID: postID, UserID: userID}
		if err := tx.Create(&model).Error; err != nil {
			if isUniqueViolation(err) {
				// A concurrent toggle by the same user won the insert;
				// the membership state it established stands.
				liked = true
				return nil
			}
			return err
		}
		liked = true
		return nil
	})
	if err != nil {
		return false, 0, err
	}

	count, err := r.LikeCount(ctx, postID)
	if err != nil {
		return false, 0, err
	}
	return liked, count, nil
}

// LikeCount returns the cardinality of the post's like-set.
func (r *GormPostRepository) LikeCount(ctx context.Context, postID string) (int64, error) {
	var count int64
	err := r.db.WithContext(ctx).Model(&domain.LikeModel{}).
		Where("post_id = ?", postID).
		Count(&count).Error
	return count, err
}

// LikedSet reports, for each post id, whether userID has liked it.
func (r *GormPostRepository) LikedSet(ctx context.Context, userID string, postIDs []string) (map[string]bool, error) {
	result := make(map[string]bool, len(postIDs))
	for _, id := range postIDs {
		result[id] = false
	}

	if len(postIDs) == 0 || userID == "" {
		return result, nil
	}

	var models []domain.LikeModel
	err := r.db.WithContext(ctx).
		Where("user_id = ? AND post_id IN ?", userID, postIDs).
		Find(&models).Error
	if err != nil {
		return nil, err
	}

	for _, m := range models {
		result[m.PostID] = true
	}
	return result, nil
}

type postCount struct {
	PostID string
	N      int64
}

// EngagementCounts returns like and comment counts for each post id.
func (r *GormPostRepository) EngagementCounts(ctx context.Context, postIDs []string) (map[string]int64, map[string]int64, error) {
	likes := make(map[string]int64, len(postIDs))
	comments := make(map[string]int64, len(postIDs))
	if len(postIDs) == 0 {
		return likes, comments, nil
	}

	var rows []postCount
	err := r.db.WithContext(ctx).Model(&domain.LikeModel{}).
		Select("post_id, COUNT(*) AS n").
		Where("post_id IN ?", postIDs).
		Group("post_id").
		Scan(&rows).Error
	if err != nil {
		return nil, nil, err
	}
	for _, row := range rows {
		likes[row.PostID] = row.N
	}

	var commentRows []postCount
	err = r.db.WithContext(ctx).Model(&domain.CommentModel{}).
		Select("post_id, COUNT(*) AS n").
		Where("post_id IN ?", postIDs).
		Group("post_id").
		Scan(&commentRows).Error
	if err != nil {
		return nil, nil, err
	}
	for _, row := range commentRows {
		comments[row.PostID] = row.N
	}

	return likes, comments, nil
}

// AddComment appends a comment to the post's comment log.
func (r *GormPostRepository) AddComment(ctx context.Context, comment *domain.Comment) error {
	if comment.ID == "" {
		comment.ID = uuid.New().String()
	}

	model := domain.CommentModel{
		ID:     comment.ID,
		PostID: comment.PostID,
		UserID: comment.AuthorID,
		Text:   comment.Text,
	}
	if err := r.db.WithContext(ctx).Create(&model).Error; err != nil {
		return err
	}

	comment.CreatedAt = model.CreatedAt
	return nil
}

// GetComment retrieves a comment by id, scoped to its post.
func (r *GormPostRepository) GetComment(ctx context.Context, postID, commentID string) (*domain.Comment, error) {
	var model domain.CommentModel
	result := r.db.WithContext(ctx).First(&model, "id = ? AND post_id = ?", commentID, postID)
	if result.Error != nil {
		if isNotFound(result.Error) {
			return nil, ErrCommentNotFound
		}
		return nil, result.Error
	}
	return model.ToDomain(), nil
}

// DeleteComment removes a comment from the post's log. Other comments
// keep their identifiers.
func (r *GormPostRepository) DeleteComment(ctx context.Context, postID, commentID string) error {
	result := r.db.WithContext(ctx).
		Where("id = ? AND post_id = ?", commentID, postID).
		Delete(&domain.CommentModel{})
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return ErrCommentNotFound
	}
	return nil
}

// ListComments returns the post's comment log in insertion order.
func (r *GormPostRepository) ListComments(ctx context.Context, postID string) ([]*domain.Comment, error) {
	var models []domain.CommentModel
	err := r.db.WithContext(ctx).
		Where("post_id = ?", postID).
		Order("created_at ASC, id ASC").
		Find(&models).Error
	if err != nil {
		return nil, err
	}

	comments := make([]*domain.Comment, 0, len(models))
	for i := range models {
		comments = append(comments, models[i].ToDomain())
	}
	return comments, nil
}

// CommentCount returns the size of the post's comment log.
func (r *GormPostRepository) CommentCount(ctx context.Context, postID string) (int64, error) {
	var count int64
	err := r.db.WithContext(ctx).Model(&domain.CommentModel{}).
		Where("post_id = ?", postID).
		Count(&count).Error
	return count, err
}

// Ensure interface is satisfied at compile time.
var _ PostRepository = (*GormPostRepository)(nil)
