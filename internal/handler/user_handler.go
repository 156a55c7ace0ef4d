package handler

import (
	"errors"

	"github.com/gin-gonic/gin"

	"github.com/moaahil1110/LikeLoop/internal/domain"
	"github.com/moaahil1110/LikeLoop/internal/service"
	"github.com/moaahil1110/LikeLoop/pkg/log"
	"github.com/moaahil1110/LikeLoop/pkg/middleware"
	"github.com/moaahil1110/LikeLoop/pkg/response"
)

// UserHandler handles HTTP requests for profiles, search and follows.
type UserHandler struct {
	users          service.UserService
	authMiddleware *middleware.AuthMiddleware
}

// NewUserHandler creates a new user handler.
func NewUserHandler(users service.UserService, authMiddleware *middleware.AuthMiddleware) *UserHandler {
	return &UserHandler{
		users:          users,
		authMiddleware: authMiddleware,
	}
}

// RegisterRoutes registers all user routes.
func (h *UserHandler) RegisterRoutes(r *gin.Engine) {
	api := r.Group("/api")
	{
		users := api.Group("/users")
		{
			// Public route
			users.GET("/profile/:id", h.GetProfile)

			// Protected routes
			users.PUT("/profile", h.authMiddleware.RequireAuth(), h.UpdateProfile)
			users.POST("/avatar", h.authMiddleware.RequireAuth(), h.UpdateAvatar)
			users.GET("/search", h.authMiddleware.RequireAuth(), h.SearchUsers)
			users.POST("/follow/:id", h.authMiddleware.RequireAuth(), h.ToggleFollow)
		}
	}
}

// GetProfile returns a public profile.
func (h *UserHandler) GetProfile(c *gin.Context) {
	ctx := c.Request.Context()

	profile, err := h.users.GetProfile(ctx, c.Param("id"))
	if err != nil {
		if errors.Is(err, service.ErrUserNotFound) {
			response.NotFound(c, "user not found")
			return
		}
		log.Ctx(ctx).Error().Err(err).Msg("failed to get profile")
		response.InternalError(c, "failed to load profile")
		return
	}

	response.Success(c, profile)
}

// UpdateProfile applies a partial update to the caller's profile.
func (h *UserHandler) UpdateProfile(c *gin.Context) {
	ctx := c.Request.Context()
	l := log.Ctx(ctx)

	var req domain.UpdateProfileRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		l.Warn().Err(err).Msg("failed to bind profile update")
		response.BadRequest(c, err.Error())
		return
	}

	profile, err := h.users.UpdateProfile(ctx, middleware.GetUserID(c), &req)
	if err != nil {
		switch {
		case errors.Is(err, service.ErrInvalidUsername):
			response.ValidationFailed(c, err.Error(), map[string]string{"username": "must be 3-30 characters: letters, digits, underscores"})
		case errors.Is(err, service.ErrBioTooLong):
			response.ValidationFailed(c, err.Error(), map[string]string{"bio": "too long"})
		case errors.Is(err, service.ErrUsernameTaken):
			response.Conflict(c, "username is already taken")
		case errors.Is(err, service.ErrUserNotFound):
			response.NotFound(c, "user not found")
		default:
			l.Error().Err(err).Msg("failed to update profile")
			response.InternalError(c, "failed to update profile")
		}
		return
	}

	response.Success(c, profile)
}

// UpdateAvatar replaces the caller's avatar from a multipart form.
func (h *UserHandler) UpdateAvatar(c *gin.Context) {
	ctx := c.Request.Context()
	l := log.Ctx(ctx)

	upload, closeFn, err := imageUpload(c, "avatar")
	if err != nil {
		response.ValidationFailed(c, "an avatar file is required", map[string]string{"avatar": "required"})
		return
	}
	defer closeFn()

	result, err := h.users.UpdateAvatar(ctx, middleware.GetUserID(c), upload)
	if err != nil {
		switch {
		case errors.Is(err, service.ErrUnsupportedImage):
			response.ValidationFailed(c, err.Error(), map[string]string{"avatar": "unsupported type"})
		case errors.Is(err, service.ErrUserNotFound):
			response.NotFound(c, "user not found")
		default:
			l.Error().Err(err).Msg("failed to update avatar")
			response.InternalError(c, "failed to update avatar")
		}
		return
	}

	response.Success(c, result)
}

// SearchUsers finds users by username substring.
func (h *UserHandler) SearchUsers(c *gin.Context) {
	ctx := c.Request.Context()

	results, err := h.users.SearchUsers(ctx, c.Query("q"), middleware.GetUserID(c))
	if err != nil {
		if errors.Is(err, service.ErrQueryTooShort) {
			response.ValidationFailed(c, err.Error(), map[string]string{"q": "at least 2 characters"})
			return
		}
		log.Ctx(ctx).Error().Err(err).Msg("failed to search users")
		response.InternalError(c, "failed to search users")
		return
	}

	response.Success(c, gin.H{"users": results})
}

// ToggleFollow flips the caller's follow edge to the target user.
func (h *UserHandler) ToggleFollow(c *gin.Context) {
	ctx := c.Request.Context()

	result, err := h.users.ToggleFollow(ctx, c.Param("id"), middleware.GetUserID(c))
	if err != nil {
		switch {
		case errors.Is(err, service.ErrSelfFollow):
			response.BadRequest(c, "you cannot follow yourself")
		case errors.Is(err, service.ErrUserNotFound):
			response.NotFound(c, "user not found")
		default:
			log.Ctx(ctx).Error().Err(err).Msg("failed to toggle follow")
			response.InternalError(c, "failed to toggle follow")
		}
		return
	}

	response.Success(c, result)
}
