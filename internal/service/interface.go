package service

import (
	"context"

	"github.com/moaahil1110/LikeLoop/internal/domain"
)

// PostService covers posts and their engagement: likes and comments.
// viewerID is the authenticated user, or "" for anonymous reads.
type PostService interface {
	CreatePost(ctx context.Context, ownerID, caption string, upload *domain.ImageUpload) (*domain.PostView, error)
	GetPost(ctx context.Context, postID, viewerID string) (*domain.PostView, error)
	DeletePost(ctx context.Context, postID, requesterID string) error

	ToggleLike(ctx context.Context, postID, userID string) (*domain.LikeResult, error)
	AddComment(ctx context.Context, postID, authorID, text string) (*domain.CommentResult, error)
	DeleteComment(ctx context.Context, postID, commentID, requesterID string) (*domain.DeleteCommentResult, error)

	ListFeed(ctx context.Context, viewerID string, page, limit int) (*domain.FeedPage, error)
	ListUserPosts(ctx context.Context, ownerID, viewerID string, page, limit int) (*domain.FeedPage, error)
}

// UserService covers profiles, search and the follow graph.
type UserService interface {
	GetProfile(ctx context.Context, userID string) (*domain.Profile, error)
	UpdateProfile(ctx context.Context, userID string, req *domain.UpdateProfileRequest) (*domain.Profile, error)
	UpdateAvatar(ctx context.Context, userID string, upload *domain.ImageUpload) (*domain.AvatarResult, error)
	SearchUsers(ctx context.Context, query, excludeID string) ([]domain.SearchResult, error)
	ToggleFollow(ctx context.Context, targetID, requesterID string) (*domain.FollowResult, error)
}
