package handler

import (
	"errors"
	"strconv"

	"github.com/gin-gonic/gin"

	"github.com/moaahil1110/LikeLoop/internal/domain"
	"github.com/moaahil1110/LikeLoop/internal/service"
	"github.com/moaahil1110/LikeLoop/pkg/log"
	"github.com/moaahil1110/LikeLoop/pkg/middleware"
	"github.com/moaahil1110/LikeLoop/pkg/response"
)

// PostHandler handles HTTP requests for posts and their engagement.
type PostHandler struct {
	posts          service.PostService
	authMiddleware *middleware.AuthMiddleware
}

// NewPostHandler creates a new post handler.
func NewPostHandler(posts service.PostService, authMiddleware *middleware.AuthMiddleware) *PostHandler {
	return &PostHandler{
		posts:          posts,
		authMiddleware: authMiddleware,
	}
}

// RegisterRoutes registers all post routes.
func (h *PostHandler) RegisterRoutes(r *gin.Engine) {
	api := r.Group("/api")
	{
		posts := api.Group("/posts")
		{
			// Optional auth: anonymous viewers get isLiked=false.
			posts.GET("/user/:id", h.authMiddleware.OptionalAuth(), h.GetUserPosts)
			posts.GET("/:id", h.authMiddleware.OptionalAuth(), h.GetPost)

			// Protected routes
			posts.GET("", h.authMiddleware.RequireAuth(), h.GetFeed)
			posts.POST("", h.authMiddleware.RequireAuth(), h.CreatePost)
			posts.DELETE("/:id", h.authMiddleware.RequireAuth(), h.DeletePost)
			posts.POST("/:id/like", h.authMiddleware.RequireAuth(), h.ToggleLike)
			posts.POST("/:id/comment", h.authMiddleware.RequireAuth(), h.AddComment)
			posts.DELETE("/:id/comment/:commentId", h.authMiddleware.RequireAuth(), h.DeleteComment)
		}
	}
}

// CreatePost creates a post from a multipart form: image + caption.
func (h *PostHandler) CreatePost(c *gin.Context) {
	ctx := c.Request.Context()
	l := log.Ctx(ctx)

	userID := middleware.GetUserID(c)

	upload, closeFn, err := imageUpload(c, "image")
	if err != nil {
		response.ValidationFailed(c, "an image file is required", map[string]string{"image": "required"})
		return
	}
	defer closeFn()

	caption := c.PostForm("caption")

	view, err := h.posts.CreatePost(ctx, userID, caption, upload)
	if err != nil {
		switch {
		case errors.Is(err, service.ErrCaptionTooLong):
			response.ValidationFailed(c, err.Error(), map[string]string{"caption": "too long"})
		case errors.Is(err, service.ErrUnsupportedImage):
			response.ValidationFailed(c, err.Error(), map[string]string{"image": "unsupported type"})
		case errors.Is(err, service.ErrUserNotFound):
			response.NotFound(c, "user not found")
		default:
			l.Error().Err(err).Msg("failed to create post")
			response.InternalError(c, "failed to create post")
		}
		return
	}

	response.Created(c, view)
}

// GetFeed returns one page of the global feed.
func (h *PostHandler) GetFeed(c *gin.Context) {
	ctx := c.Request.Context()

	page, limit := pageParams(c)

	feed, err := h.posts.ListFeed(ctx, middleware.GetUserID(c), page, limit)
	if err != nil {
		log.Ctx(ctx).Error().Err(err).Msg("failed to list feed")
		response.InternalError(c, "failed to load feed")
		return
	}

	response.Success(c, feed)
}

// GetUserPosts returns one page of a user's posts.
func (h *PostHandler) GetUserPosts(c *gin.Context) {
	ctx := c.Request.Context()

	page, limit := pageParams(c)
	ownerID := c.Param("id")

	feed, err := h.posts.ListUserPosts(ctx, ownerID, middleware.GetUserID(c), page, limit)
	if err != nil {
		if errors.Is(err, service.ErrUserNotFound) {
			response.NotFound(c, "user not found")
			return
		}
		log.Ctx(ctx).Error().Err(err).Msg("failed to list user posts")
		response.InternalError(c, "failed to load posts")
		return
	}

	response.Success(c, feed)
}

// GetPost returns the post detail with comments.
func (h *PostHandler) GetPost(c *gin.Context) {
	ctx := c.Request.Context()

	view, err := h.posts.GetPost(ctx, c.Param("id"), middleware.GetUserID(c))
	if err != nil {
		if errors.Is(err, service.ErrPostNotFound) {
			response.NotFound(c, "post not found")
			return
		}
		log.Ctx(ctx).Error().Err(err).Msg("failed to get post")
		response.InternalError(c, "failed to load post")
		return
	}

	response.Success(c, view)
}

// DeletePost deletes the post; owner only.
func (h *PostHandler) DeletePost(c *gin.Context) {
	ctx := c.Request.Context()

	err := h.posts.DeletePost(ctx, c.Param("id"), middleware.GetUserID(c))
	if err != nil {
		switch {
		case errors.Is(err, service.ErrPostNotFound):
			response.NotFound(c, "post not found")
		case errors.Is(err, service.ErrNotPostOwner):
			response.Forbidden(c, "only the post owner can delete it")
		default:
			log.Ctx(ctx).Error().Err(err).Msg("failed to delete post")
			response.InternalError(c, "failed to delete post")
		}
		return
	}

	response.Success(c, gin.H{"deleted": true})
}

// ToggleLike flips the caller's like on the post.
func (h *PostHandler) ToggleLike(c *gin.Context) {
	ctx := c.Request.Context()

	result, err := h.posts.ToggleLike(ctx, c.Param("id"), middleware.GetUserID(c))
	if err != nil {
		if errors.Is(err, service.ErrPostNotFound) {
			response.NotFound(c, "post not found")
			return
		}
		log.Ctx(ctx).Error().Err(err).Msg("failed to toggle like")
		response.InternalError(c, "failed to toggle like")
		return
	}

	response.Success(c, result)
}

// AddComment adds a comment to the post.
func (h *PostHandler) AddComment(c *gin.Context) {
	ctx := c.Request.Context()
	l := log.Ctx(ctx)

	var req domain.AddCommentRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.ValidationFailed(c, "comment text is required", map[string]string{"text": "required"})
		return
	}

	result, err := h.posts.AddComment(ctx, c.Param("id"), middleware.GetUserID(c), req.Text)
	if err != nil {
		switch {
		case errors.Is(err, service.ErrInvalidComment):
			response.ValidationFailed(c, err.Error(), map[string]string{"text": "must be 1-500 characters"})
		case errors.Is(err, service.ErrPostNotFound):
			response.NotFound(c, "post not found")
		case errors.Is(err, service.ErrUserNotFound):
			response.NotFound(c, "user not found")
		default:
			l.Error().Err(err).Msg("failed to add comment")
			response.InternalError(c, "failed to add comment")
		}
		return
	}

	response.Created(c, result)
}

// DeleteComment removes a comment; the comment's author or the post's
// owner only.
func (h *PostHandler) DeleteComment(c *gin.Context) {
	ctx := c.Request.Context()

	result, err := h.posts.DeleteComment(ctx, c.Param("id"), c.Param("commentId"), middleware.GetUserID(c))
	if err != nil {
		switch {
		case errors.Is(err, service.ErrPostNotFound):
			response.NotFound(c, "post not found")
		case errors.Is(err, service.ErrCommentNotFound):
			response.NotFound(c, "comment not found")
		case errors.Is(err, service.ErrNotAllowed):
			response.Forbidden(c, "only the comment author or the post owner can delete it")
		default:
			log.Ctx(ctx).Error().Err(err).Msg("failed to delete comment")
			response.InternalError(c, "failed to delete comment")
		}
		return
	}

	response.Success(c, result)
}

// pageParams reads page/limit query parameters. Zero values are
// normalized by the service.
func pageParams(c *gin.Context) (int, int) {
	page, _ := strconv.Atoi(c.Query("page"))
	limit, _ := strconv.Atoi(c.Query("limit"))
	return page, limit
}

// imageUpload opens the named multipart file as an ImageUpload. The
// returned close function must be called after the upload is consumed.
func imageUpload(c *gin.Context, field string) (*domain.ImageUpload, func(), error) {
	header, err := c.FormFile(field)
	if err != nil {
		return nil, nil, err
	}

	file, err := header.Open()
	if err != nil {
		return nil, nil, err
	}

	upload := &domain.ImageUpload{
		Reader:      file,
		Size:        header.Size,
		ContentType: header.Header.Get("Content-Type"),
	}
	return upload, func() { file.Close() }, nil
}
