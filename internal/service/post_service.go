package service

import (
	"context"
	"errors"
	"strings"
	"unicode/utf8"

	"github.com/moaahil1110/LikeLoop/internal/audit"
	"github.com/moaahil1110/LikeLoop/internal/cache"
	"github.com/moaahil1110/LikeLoop/internal/domain"
	"github.com/moaahil1110/LikeLoop/internal/events"
	"github.com/moaahil1110/LikeLoop/internal/media"
	"github.com/moaahil1110/LikeLoop/internal/repository"
	"github.com/moaahil1110/LikeLoop/pkg/log"
)

// postServiceImpl implements PostService.
type postServiceImpl struct {
	posts    repository.PostRepository
	users    repository.UserRepository
	media    *media.Store
	recorder *events.Recorder
	cache    cache.ProfileCache // may be nil
}

// NewPostService creates a new post service. cache may be nil when the
// count cache is disabled.
func NewPostService(posts repository.PostRepository, users repository.UserRepository, mediaStore *media.Store, recorder *events.Recorder, profileCache cache.ProfileCache) PostService {
	return &postServiceImpl{
		posts:    posts,
		users:    users,
		media:    mediaStore,
		recorder: recorder,
		cache:    profileCache,
	}
}

// CreatePost stores the image and creates the post.
func (s *postServiceImpl) CreatePost(ctx context.Context, ownerID, caption string, upload *domain.ImageUpload) (*domain.PostView, error) {
	l := log.Ctx(ctx)

	if upload == nil {
		return nil, ErrImageRequired
	}
	if utf8.RuneCountInString(caption) > domain.MaxCaptionLen {
		return nil, ErrCaptionTooLong
	}

	owner, err := s.users.GetByID(ctx, ownerID)
	if err != nil {
		if errors.Is(err, repository.ErrUserNotFound) {
			return nil, ErrUserNotFound
		}
		l.Error().Err(err).Msg("failed to load post owner")
		return nil, err
	}

	image, err := s.media.Save(ctx, media.FolderPosts, upload)
	if err != nil {
		if errors.Is(err, media.ErrUnsupportedImageType) {
			return nil, ErrUnsupportedImage
		}
		l.Error().Err(err).Msg("failed to store post image")
		return nil, err
	}

	post := &domain.Post{
		OwnerID: ownerID,
		Caption: caption,
		Image:   image,
	}
	if err := s.posts.Create(ctx, post); err != nil {
		l.Error().Err(err).Msg("failed to create post")
		// The image is orphaned if this cleanup fails; the key is logged
		// so it can be removed by hand.
		if derr := s.media.Delete(ctx, image.Key); derr != nil {
			l.Error().Err(derr).Str(log.FieldImageKey, image.Key).Msg("failed to clean up image after create failure")
		}
		return nil, err
	}

	s.invalidateCounts(ctx, ownerID)
	s.recorder.PostCreated(ctx, post.ID, ownerID)
	audit.LogWithTarget(ctx, audit.ActionCreatePost, ownerID, post.ID, "post created")

	view := postView(post, owner.Summary(), 0, 0, false)
	view.Comments = []domain.CommentView{}
	return view, nil
}

// GetPost returns the post detail with its full comment log.
func (s *postServiceImpl) GetPost(ctx context.Context, postID, viewerID string) (*domain.PostView, error) {
	l := log.Ctx(ctx)

	post, err := s.posts.GetByID(ctx, postID)
	if err != nil {
		if errors.Is(err, repository.ErrPostNotFound) {
			return nil, ErrPostNotFound
		}
		l.Error().Err(err).Msg("failed to get post")
		return nil, err
	}

	comments, err := s.posts.ListComments(ctx, postID)
	if err != nil {
		l.Error().Err(err).Msg("failed to list comments")
		return nil, err
	}

	likeCount, err := s.posts.LikeCount(ctx, postID)
	if err != nil {
		l.Error().Err(err).Msg("failed to count likes")
		return nil, err
	}

	isLiked := false
	if viewerID != "" {
		likedSet, err := s.posts.LikedSet(ctx, viewerID, []string{postID})
		if err != nil {
			l.Error().Err(err).Msg("failed to resolve viewer like state")
			return nil, err
		}
		isLiked = likedSet[postID]
	}

	// One author lookup covers the post and every comment.
	authorIDs := []string{post.OwnerID}
	for _, c := range comments {
		authorIDs = append(authorIDs, c.AuthorID)
	}
	authors, err := s.users.GetByIDs(ctx, authorIDs)
	if err != nil {
		l.Error().Err(err).Msg("failed to load authors")
		return nil, err
	}

	view := postView(post, summaryFor(authors, post.OwnerID), likeCount, int64(len(comments)), isLiked)
	view.Comments = make([]domain.CommentView, 0, len(comments))
	for _, c := range comments {
		view.Comments = append(view.Comments, commentView(c, summaryFor(authors, c.AuthorID)))
	}
	return view, nil
}

// DeletePost removes the post, its engagement rows and, best-effort,
// its stored image.
func (s *postServiceImpl) DeletePost(ctx context.Context, postID, requesterID string) error {
	l := log.Ctx(ctx)

	post, err := s.posts.GetByID(ctx, postID)
	if err != nil {
		if errors.Is(err, repository.ErrPostNotFound) {
			return ErrPostNotFound
		}
		l.Error().Err(err).Msg("failed to get post for delete")
		return err
	}

	if post.OwnerID != requesterID {
		return ErrNotPostOwner
	}

	if err := s.posts.Delete(ctx, postID); err != nil {
		if errors.Is(err, repository.ErrPostNotFound) {
			return ErrPostNotFound
		}
		l.Error().Err(err).Msg("failed to delete post")
		return err
	}

	// Image deletion never blocks the request.
	if err := s.media.Delete(ctx, post.Image.Key); err != nil {
		l.Warn().Err(err).Str(log.FieldImageKey, post.Image.Key).Msg("failed to delete post image")
	}

	s.invalidateCounts(ctx, post.OwnerID)
	s.recorder.PostDeleted(ctx, postID, requesterID)
	audit.LogWithTarget(ctx, audit.ActionDeletePost, requesterID, postID, "post deleted")
	return nil
}

// ToggleLike flips the user's like on the post.
func (s *postServiceImpl) ToggleLike(ctx context.Context, postID, userID string) (*domain.LikeResult, error) {
	liked, likeCount, err := s.posts.ToggleLike(ctx, postID, userID)
	if err != nil {
		if errors.Is(err, repository.ErrPostNotFound) {
			return nil, ErrPostNotFound
		}
		log.Ctx(ctx).Error().Err(err).Msg("failed to toggle like")
		return nil, err
	}

	s.recorder.LikeToggled(ctx, postID, userID, liked, likeCount)
	audit.LogWithTarget(ctx, audit.ActionLikePost, userID, postID, "like toggled")

	return &domain.LikeResult{IsLiked: liked, LikeCount: likeCount}, nil
}

// AddComment appends a comment to the post.
func (s *postServiceImpl) AddComment(ctx context.Context, postID, authorID, text string) (*domain.CommentResult, error) {
	l := log.Ctx(ctx)

	text = strings.TrimSpace(text)
	if text == "" || utf8.RuneCountInString(text) > domain.MaxCommentLen {
		return nil, ErrInvalidComment
	}

	if _, err := s.posts.GetByID(ctx, postID); err != nil {
		if errors.Is(err, repository.ErrPostNotFound) {
			return nil, ErrPostNotFound
		}
		l.Error().Err(err).Msg("failed to get post for comment")
		return nil, err
	}

	author, err := s.users.GetByID(ctx, authorID)
	if err != nil {
		if errors.Is(err, repository.ErrUserNotFound) {
			return nil, ErrUserNotFound
		}
		l.Error().Err(err).Msg("failed to load comment author")
		return nil, err
	}

	comment := &domain.Comment{
		PostID:   postID,
		AuthorID: authorID,
		Text:     text,
	}
	if err := s.posts.AddComment(ctx, comment); err != nil {
		l.Error().Err(err).Msg("failed to add comment")
		return nil, err
	}

	count, err := s.posts.CommentCount(ctx, postID)
	if err != nil {
		l.Error().Err(err).Msg("failed to count comments")
		return nil, err
	}

	s.recorder.CommentAdded(ctx, postID, comment.ID, authorID, count)
	audit.LogWithTarget(ctx, audit.ActionAddComment, authorID, postID, "comment added")

	return &domain.CommentResult{
		Comment:      commentView(comment, author.Summary()),
		CommentCount: count,
	}, nil
}

// DeleteComment removes a comment. Both the comment's author and the
// post's owner may delete it; nobody else can.
func (s *postServiceImpl) DeleteComment(ctx context.Context, postID, commentID, requesterID string) (*domain.DeleteCommentResult, error) {
	l := log.Ctx(ctx)

	post, err := s.posts.GetByID(ctx, postID)
	if err != nil {
		if errors.Is(err, repository.ErrPostNotFound) {
			return nil, ErrPostNotFound
		}
		l.Error().Err(err).Msg("failed to get post for comment delete")
		return nil, err
	}

	comment, err := s.posts.GetComment(ctx, postID, commentID)
	if err != nil {
		if errors.Is(err, repository.ErrCommentNotFound) {
			return nil, ErrCommentNotFound
		}
		l.Error().Err(err).Msg("failed to get comment")
		return nil, err
	}

	if requesterID != comment.AuthorID && requesterID != post.OwnerID {
		return nil, ErrNotAllowed
	}

	if err := s.posts.DeleteComment(ctx, postID, commentID); err != nil {
		if errors.Is(err, repository.ErrCommentNotFound) {
			return nil, ErrCommentNotFound
		}
		l.Error().Err(err).Msg("failed to delete comment")
		return nil, err
	}

	count, err := s.posts.CommentCount(ctx, postID)
	if err != nil {
		l.Error().Err(err).Msg("failed to count comments")
		return nil, err
	}

	s.recorder.CommentDeleted(ctx, postID, commentID, requesterID, count)
	audit.LogWithTarget(ctx, audit.ActionDeleteComment, requesterID, commentID, "comment deleted")

	return &domain.DeleteCommentResult{CommentCount: count}, nil
}

// ListFeed returns one page of the global feed, newest first.
func (s *postServiceImpl) ListFeed(ctx context.Context, viewerID string, page, limit int) (*domain.FeedPage, error) {
	page, limit = normalizePage(page, limit, domain.DefaultFeedLimit)

	posts, total, err := s.posts.ListFeed(ctx, (page-1)*limit, limit)
	if err != nil {
		log.Ctx(ctx).Error().Err(err).Msg("failed to list feed")
		return nil, err
	}

	views, err := s.assembleViews(ctx, posts, viewerID)
	if err != nil {
		return nil, err
	}

	return &domain.FeedPage{
		Posts:      views,
		Pagination: domain.NewPagination(page, limit, total),
	}, nil
}

// ListUserPosts returns one page of a single user's posts, newest first.
func (s *postServiceImpl) ListUserPosts(ctx context.Context, ownerID, viewerID string, page, limit int) (*domain.FeedPage, error) {
	l := log.Ctx(ctx)

	if _, err := s.users.GetByID(ctx, ownerID); err != nil {
		if errors.Is(err, repository.ErrUserNotFound) {
			return nil, ErrUserNotFound
		}
		l.Error().Err(err).Msg("failed to load posts owner")
		return nil, err
	}

	page, limit = normalizePage(page, limit, domain.DefaultUserPostsLimit)

	posts, total, err := s.posts.ListByUser(ctx, ownerID, (page-1)*limit, limit)
	if err != nil {
		l.Error().Err(err).Msg("failed to list user posts")
		return nil, err
	}

	views, err := s.assembleViews(ctx, posts, viewerID)
	if err != nil {
		return nil, err
	}

	return &domain.FeedPage{
		Posts:      views,
		Pagination: domain.NewPagination(page, limit, total),
	}, nil
}

// assembleViews decorates posts with author info, engagement counts and
// the viewer's like state using three batch queries. viewerID "" means
// anonymous: isLiked stays false everywhere.
func (s *postServiceImpl) assembleViews(ctx context.Context, posts []*domain.Post, viewerID string) ([]domain.PostView, error) {
	l := log.Ctx(ctx)

	postIDs := make([]string, 0, len(posts))
	ownerIDs := make([]string, 0, len(posts))
	for _, p := range posts {
		postIDs = append(postIDs, p.ID)
		ownerIDs = append(ownerIDs, p.OwnerID)
	}

	authors, err := s.users.GetByIDs(ctx, ownerIDs)
	if err != nil {
		l.Error().Err(err).Msg("failed to load post authors")
		return nil, err
	}

	likes, comments, err := s.posts.EngagementCounts(ctx, postIDs)
	if err != nil {
		l.Error().Err(err).Msg("failed to load engagement counts")
		return nil, err
	}

	likedSet, err := s.posts.LikedSet(ctx, viewerID, postIDs)
	if err != nil {
		l.Error().Err(err).Msg("failed to load viewer like set")
		return nil, err
	}

	views := make([]domain.PostView, 0, len(posts))
	for _, p := range posts {
		views = append(views, *postView(p, summaryFor(authors, p.OwnerID), likes[p.ID], comments[p.ID], likedSet[p.ID]))
	}
	return views, nil
}

func (s *postServiceImpl) invalidateCounts(ctx context.Context, userIDs ...string) {
	if s.cache == nil {
		return
	}
	if err := s.cache.Invalidate(ctx, userIDs...); err != nil {
		log.Ctx(ctx).Warn().Err(err).Msg("failed to invalidate profile counts")
	}
}

func postView(p *domain.Post, author domain.UserSummary, likeCount, commentCount int64, isLiked bool) *domain.PostView {
	return &domain.PostView{
		ID:           p.ID,
		User:         author,
		Caption:      p.Caption,
		Image:        p.Image,
		LikeCount:    likeCount,
		CommentCount: commentCount,
		IsLiked:      isLiked,
		CreatedAt:    p.CreatedAt,
	}
}

func commentView(c *domain.Comment, author domain.UserSummary) domain.CommentView {
	return domain.CommentView{
		ID:        c.ID,
		User:      author,
		Text:      c.Text,
		CreatedAt: c.CreatedAt,
	}
}

// summaryFor tolerates a missing author (deleted account): the id is
// kept so the client can still render something.
func summaryFor(users map[string]*domain.User, id string) domain.UserSummary {
	if u, ok := users[id]; ok {
		return u.Summary()
	}
	return domain.UserSummary{ID: id}
}

func normalizePage(page, limit, defaultLimit int) (int, int) {
	if page < 1 {
		page = 1
	}
	if limit < 1 {
		limit = defaultLimit
	}
	if limit > domain.MaxPageLimit {
		limit = domain.MaxPageLimit
	}
	return page, limit
}
