package repository

import (
	"context"
	"strings"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/moaahil1110/LikeLoop/internal/domain"
)

// GormUserRepository implements UserRepository using GORM.
type GormUserRepository struct {
	db *gorm.DB
}

// NewGormUserRepository creates a new GORM-based user repository.
func NewGormUserRepository(db *gorm.DB) *GormUserRepository {
	return &GormUserRepository{db: db}
}

// Create creates a new user.
func (r *GormUserRepository) Create(ctx context.Context, user *domain.User) error {
	if user.ID == "" {
		user.ID = uuid.New().String()
	}

	model := domain.UserToModel(user)
	result := r.db.WithContext(ctx).Create(model)
	if result.Error != nil {
		if isUniqueViolation(result.Error) {
			return ErrUsernameExists
		}
		return result.Error
	}

	user.CreatedAt = model.CreatedAt
	user.UpdatedAt = model.UpdatedAt
	return nil
}

// GetByID retrieves a user by ID.
func (r *GormUserRepository) GetByID(ctx context.Context, id string) (*domain.User, error) {
	var model domain.UserModel
	result := r.db.WithContext(ctx).First(&model, "id = ?", id)
	if result.Error != nil {
		if isNotFound(result.Error) {
			return nil, ErrUserNotFound
		}
		return nil, result.Error
	}
	return model.ToDomain(), nil
}

// GetByIDs retrieves users by ID, keyed by id.
func (r *GormUserRepository) GetByIDs(ctx context.Context, ids []string) (map[string]*domain.User, error) {
	result := make(map[string]*domain.User, len(ids))
	if len(ids) == 0 {
		return result, nil
	}

	var models []domain.UserModel
	err := r.db.WithContext(ctx).Where("id IN ?", ids).Find(&models).Error
	if err != nil {
		return nil, err
	}

	for i := range models {
		result[models[i].ID] = models[i].ToDomain()
	}
	return result, nil
}

// UsernameTaken reports whether another user already holds the username.
// The match is exact and case-sensitive.
func (r *GormUserRepository) UsernameTaken(ctx context.Context, username, excludeID string) (bool, error) {
	var count int64
	err := r.db.WithContext(ctx).Model(&domain.UserModel{}).
		Where("username = ? AND id <> ?", username, excludeID).
		Count(&count).Error
	if err != nil {
		return false, err
	}
	return count > 0, nil
}

// UpdateProfile applies the non-nil fields of req to the user.
func (r *GormUserRepository) UpdateProfile(ctx context.Context, id string, req *domain.UpdateProfileRequest) (*domain.User, error) {
	updates := map[string]interface{}{}
	if req.Username != nil {
		updates["username"] = *req.Username
	}
	if req.Bio != nil {
		updates["bio"] = *req.Bio
	}

	if len(updates) > 0 {
		result := r.db.WithContext(ctx).Model(&domain.UserModel{}).
			Where("id = ?", id).
			Updates(updates)
		if result.Error != nil {
			if isUniqueViolation(result.Error) {
				return nil, ErrUsernameExists
			}
			return nil, result.Error
		}
		if result.RowsAffected == 0 {
			return nil, ErrUserNotFound
		}
	}

	return r.GetByID(ctx, id)
}

// UpdateAvatar replaces the user's avatar reference and returns the
// previous storage key.
func (r *GormUserRepository) UpdateAvatar(ctx context.Context, id, url, key string) (string, error) {
	var oldKey string

	err := r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var model domain.UserModel
		if err := tx.First(&model, "id = ?", id).Error; err != nil {
			if isNotFound(err) {
				return ErrUserNotFound
			}
			return err
		}

		oldKey = model.AvatarKey

		return tx.Model(&domain.UserModel{}).Where("id = ?", id).Updates(map[string]interface{}{
			"avatar_url": url,
			"avatar_key": key,
		}).Error
	})
	if err != nil {
		return "", err
	}

	return oldKey, nil
}

// likeEscaper makes LIKE metacharacters in user input match literally.
var likeEscaper = strings.NewReplacer(`\`, `\\`, `%`, `\%`, `_`, `\_`)

// Search finds users whose username contains the query, case-insensitively,
// excluding excludeID, capped at limit.
func (r *GormUserRepository) Search(ctx context.Context, query, excludeID string, limit int) ([]*domain.User, error) {
	pattern := "%" + likeEscaper.Replace(strings.ToLower(query)) + "%"

	var models []domain.UserModel
	err := r.db.WithContext(ctx).
		Where(`LOWER(username) LIKE ? ESCAPE '\' AND id <> ?`, pattern, excludeID).
		Order("username ASC").
		Limit(limit).
		Find(&models).Error
	if err != nil {
		return nil, err
	}

	users := make([]*domain.User, 0, len(models))
	for i := range models {
		users = append(users, models[i].ToDomain())
	}
	return users, nil
}

// Ensure interface is satisfied at compile time.
var _ UserRepository = (*GormUserRepository)(nil)
