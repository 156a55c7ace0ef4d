package domain

import (
	"io"
	"time"
)

// Boundary limits for post fields.
const (
	MaxCaptionLen = 2000
	MaxCommentLen = 500

	DefaultFeedLimit      = 10
	DefaultUserPostsLimit = 12
	MaxPageLimit          = 100
)

// Image is a stored image reference: a durable URL for display and the
// opaque storage key used for deletion.
type Image struct {
	URL string `json:"url"`
	Key string `json:"-"`
}

// ImageUpload carries raw image bytes into the media store.
type ImageUpload struct {
	Reader      io.Reader
	Size        int64
	ContentType string
}

// Post is the domain representation of a post.
type Post struct {
	ID        string
	OwnerID   string
	Caption   string
	Image     Image
	CreatedAt time.Time
}

// ToDomain converts PostModel to domain Post.
func (m *PostModel) ToDomain() *Post {
	return &Post{
		ID:        m.ID,
		OwnerID:   m.UserID,
		Caption:   m.Caption,
		Image:     Image{URL: m.ImageURL, Key: m.ImageKey},
		CreatedAt: m.CreatedAt,
	}
}

// Comment is the domain representation of a comment.
type Comment struct {
	ID        string
	PostID    string
	AuthorID  string
	Text      string
	CreatedAt time.Time
}

// ToDomain converts CommentModel to domain Comment.
func (m *CommentModel) ToDomain() *Comment {
	return &Comment{
		ID:        m.ID,
		PostID:    m.PostID,
		AuthorID:  m.UserID,
		Text:      m.Text,
		CreatedAt: m.CreatedAt,
	}
}

// CommentView is a comment with its author attached for display.
type CommentView struct {
	ID        string      `json:"id"`
	User      UserSummary `json:"user"`
	Text      string      `json:"text"`
	CreatedAt time.Time   `json:"createdAt"`
}

// PostView augments a post with author info, engagement counts, and the
// viewer-specific isLiked flag. Comments are populated on the detail
// view only.
type PostView struct {
	ID           string        `json:"id"`
	User         UserSummary   `json:"user"`
	Caption      string        `json:"caption"`
	Image        Image         `json:"image"`
	LikeCount    int64         `json:"likeCount"`
	CommentCount int64         `json:"commentCount"`
	IsLiked      bool          `json:"isLiked"`
	CreatedAt    time.Time     `json:"createdAt"`
	Comments     []CommentView `json:"comments,omitempty"`
}

// Pagination is the envelope shape for paginated listings:
// pages = ceil(total/limit).
type Pagination struct {
	Current int   `json:"current"`
	Pages   int   `json:"pages"`
	Total   int64 `json:"total"`
}

// NewPagination computes the pagination envelope for a listing.
func NewPagination(page, limit int, total int64) Pagination {
	pages := int((total + int64(limit) - 1) / int64(limit))
	return Pagination{Current: page, Pages: pages, Total: total}
}

// FeedPage is one page of the feed or of a user's posts.
type FeedPage struct {
	Posts      []PostView `json:"posts"`
	Pagination Pagination `json:"pagination"`
}

// AddCommentRequest is the body of a comment creation call.
type AddCommentRequest struct {
	Text string `json:"text" binding:"required"`
}

// LikeResult is the outcome of a like toggle.
type LikeResult struct {
	IsLiked   bool  `json:"isLiked"`
	LikeCount int64 `json:"likeCount"`
}

// CommentResult is the outcome of adding a comment.
type CommentResult struct {
	Comment      CommentView `json:"comment"`
	CommentCount int64       `json:"commentCount"`
}

// DeleteCommentResult reports the comment count after a removal.
type DeleteCommentResult struct {
	CommentCount int64 `json:"commentCount"`
}
