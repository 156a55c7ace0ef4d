package repository

import (
	"context"

	"github.com/moaahil1110/LikeLoop/internal/domain"
)

// UserRepository manages user records.
type UserRepository interface {
	// Create creates a new user, assigning an id.
	Create(ctx context.Context, user *domain.User) error

	// GetByID retrieves a user by ID.
	GetByID(ctx context.Context, id string) (*domain.User, error)

	// GetByIDs retrieves users by ID, keyed by id. Missing ids are
	// simply absent from the result.
	GetByIDs(ctx context.Context, ids []string) (map[string]*domain.User, error)

	// UsernameTaken reports whether another user already holds the
	// username (exact, case-sensitive match).
	UsernameTaken(ctx context.Context, username, excludeID string) (bool, error)

	// UpdateProfile applies the non-nil fields of req to the user.
	UpdateProfile(ctx context.Context, id string, req *domain.UpdateProfileRequest) (*domain.User, error)

	// UpdateAvatar replaces the user's avatar reference and returns the
	// previous storage key ("" when the user had no avatar).
	UpdateAvatar(ctx context.Context, id, url, key string) (oldKey string, err error)

	// Search finds users whose username contains the query,
	// case-insensitively, excluding excludeID, capped at limit.
	Search(ctx context.Context, query, excludeID string, limit int) ([]*domain.User, error)
}

// PostRepository manages posts and their embedded engagement state:
// the like-set and the comment log.
type PostRepository interface {
	Create(ctx context.Context, post *domain.Post) error
	GetByID(ctx context.Context, id string) (*domain.Post, error)

	// Delete removes the post together with its likes and comments in
	// one transaction.
	Delete(ctx context.Context, id string) error

	// ListFeed returns all posts ordered by creation time descending.
	ListFeed(ctx context.Context, offset, limit int) ([]*domain.Post, int64, error)

	// ListByUser is ListFeed filtered to one owner.
	ListByUser(ctx context.Context, userID string, offset, limit int) ([]*domain.Post, int64, error)

	CountByUser(ctx context.Context, userID string) (int64, error)

	// ToggleLike atomically flips userID's membership in the post's
	// like-set and returns the resulting state and cardinality.
	ToggleLike(ctx context.Context, postID, userID string) (liked bool, likeCount int64, err error)

	// LikedSet reports, for each post id, whether userID has liked it.
	LikedSet(ctx context.Context, userID string, postIDs []string) (map[string]bool, error)

	// EngagementCounts returns like and comment counts for each post id.
	EngagementCounts(ctx context.Context, postIDs []string) (likes, comments map[string]int64, err error)

	AddComment(ctx context.Context, comment *domain.Comment) error
	GetComment(ctx context.Context, postID, commentID string) (*domain.Comment, error)
	DeleteComment(ctx context.Context, postID, commentID string) error
	ListComments(ctx context.Context, postID string) ([]*domain.Comment, error)
	CommentCount(ctx context.Context, postID string) (int64, error)
	LikeCount(ctx context.Context, postID string) (int64, error)
}

// FollowRepository manages the follow graph. An edge is a single row,
// so both sides of the relationship stay consistent by construction.
type FollowRepository interface {
	// Toggle atomically flips the follower→following edge and returns
	// the resulting state.
	Toggle(ctx context.Context, followerID, followingID string) (following bool, err error)

	IsFollowing(ctx context.Context, followerID, followingID string) (bool, error)
	FollowerCount(ctx context.Context, userID string) (int64, error)
	FollowingCount(ctx context.Context, userID string) (int64, error)
}
