package repository

import (
	"context"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/moaahil1110/LikeLoop/internal/domain"
)

func TestToggleLike(t *testing.T) {
	db := newTestDB(t)
	posts := NewGormPostRepository(db)
	users := NewGormUserRepository(db)
	ctx := context.Background()

	alice := createUser(t, users, "alice")
	post := createPost(t, posts, alice.ID, "hello")

	liked, count, err := posts.ToggleLike(ctx, post.ID, alice.ID)
	require.NoError(t, err)
	assert.True(t, liked)
	assert.Equal(t, int64(1), count)

	liked, count, err = posts.ToggleLike(ctx, post.ID, alice.ID)
	require.NoError(t, err)
	assert.False(t, liked)
	assert.Equal(t, int64(0), count)

	// A re-like after an unlike must work despite the unique index.
	liked, count, err = posts.ToggleLike(ctx, post.ID, alice.ID)
	require.NoError(t, err)
	assert.True(t, liked)
	assert.Equal(t, int64(1), count)
}

func TestToggleLike_TwiceReturnsToOriginal(t *testing.T) {
	db := newTestDB(t)
	posts := NewGormPostRepository(db)
	users := NewGormUserRepository(db)
	ctx := context.Background()

	alice := createUser(t, users, "alice")
	bob := createUser(t, users, "bob")
	post := createPost(t, posts, alice.ID, "hi")

	_, _, err := posts.ToggleLike(ctx, post.ID, alice.ID)
	require.NoError(t, err)

	before, err := posts.LikeCount(ctx, post.ID)
	require.NoError(t, err)

	_, _, err = posts.ToggleLike(ctx, post.ID, bob.ID)
	require.NoError(t, err)
	_, _, err = posts.ToggleLike(ctx, post.ID, bob.ID)
	require.NoError(t, err)

	after, err := posts.LikeCount(ctx, post.ID)
	require.NoError(t, err)
	assert.Equal(t, before, after)

	likedSet, err := posts.LikedSet(ctx, bob.ID, []string{post.ID})
	require.NoError(t, err)
	assert.False(t, likedSet[post.ID])
}

func TestToggleLike_NoDuplicates(t *testing.T) {
	db := newTestDB(t)
	posts := NewGormPostRepository(db)
	users := NewGormUserRepository(db)
	ctx := context.Background()

	alice := createUser(t, users, "alice")
	post := createPost(t, posts, alice.ID, "")

	// An odd number of toggles ends in the liked state with exactly one row.
	for i := 0; i < 5; i++ {
		_, _, err := posts.ToggleLike(ctx, post.ID, alice.ID)
		require.NoError(t, err)
	}

	count, err := posts.LikeCount(ctx, post.ID)
	require.NoError(t, err)
	assert.Equal(t, int64(1), count)

	var rows int64
	require.NoError(t, db.Model(&domain.LikeModel{}).
		Where("post_id = ? AND user_id = ?", post.ID, alice.ID).
		Count(&rows).Error)
	assert.Equal(t, int64(1), rows)
}

func TestToggleLike_PostNotFound(t *testing.T) {
	db := newTestDB(t)
	posts := NewGormPostRepository(db)

	_, _, err := posts.ToggleLike(context.Background(), "missing", "user")
	assert.ErrorIs(t, err, ErrPostNotFound)
}

func TestDelete_Cascade(t *testing.T) {
	db := newTestDB(t)
	posts := NewGormPostRepository(db)
	users := NewGormUserRepository(db)
	ctx := context.Background()

	alice := createUser(t, users, "alice")
	bob := createUser(t, users, "bob")
	post := createPost(t, posts, alice.ID, "bye")

	_, _, err := posts.ToggleLike(ctx, post.ID, bob.ID)
	require.NoError(t, err)
	require.NoError(t, posts.AddComment(ctx, &domain.Comment{PostID: post.ID, AuthorID: bob.ID, Text: "nice"}))

	require.NoError(t, posts.Delete(ctx, post.ID))

	_, err = posts.GetByID(ctx, post.ID)
	assert.ErrorIs(t, err, ErrPostNotFound)

	count, err := posts.LikeCount(ctx, post.ID)
	require.NoError(t, err)
	assert.Equal(t, int64(0), count)

	comments, err := posts.ListComments(ctx, post.ID)
	require.NoError(t, err)
	assert.Empty(t, comments)

	assert.ErrorIs(t, posts.Delete(ctx, post.ID), ErrPostNotFound)
}

func TestListFeed_Pagination(t *testing.T) {
	db := newTestDB(t)
	posts := NewGormPostRepository(db)
	users := NewGormUserRepository(db)
	ctx := context.Background()

	alice := createUser(t, users, "alice")
	for i := 0; i < 25; i++ {
		createPost(t, posts, alice.ID, fmt.Sprintf("post %d", i))
	}

	page, total, err := posts.ListFeed(ctx, 0, 10)
	require.NoError(t, err)
	assert.Equal(t, int64(25), total)
	assert.Len(t, page, 10)

	// Page 3 holds the remainder.
	page, total, err = posts.ListFeed(ctx, 20, 10)
	require.NoError(t, err)
	assert.Equal(t, int64(25), total)
	assert.Len(t, page, 5)

	p := domain.NewPagination(3, 10, total)
	assert.Equal(t, 3, p.Pages)
	assert.Equal(t, 3, p.Current)
}

func TestListByUser(t *testing.T) {
	db := newTestDB(t)
	posts := NewGormPostRepository(db)
	users := NewGormUserRepository(db)
	ctx := context.Background()

	alice := createUser(t, users, "alice")
	bob := createUser(t, users, "bob")
	createPost(t, posts, alice.ID, "a1")
	createPost(t, posts, alice.ID, "a2")
	createPost(t, posts, bob.ID, "b1")

	page, total, err := posts.ListByUser(ctx, alice.ID, 0, 10)
	require.NoError(t, err)
	assert.Equal(t, int64(2), total)
	require.Len(t, page, 2)
	for _, p := range page {
		assert.Equal(t, alice.ID, p.OwnerID)
	}

	n, err := posts.CountByUser(ctx, alice.ID)
	require.NoError(t, err)
	assert.Equal(t, int64(2), n)
}

func TestComments(t *testing.T) {
	db := newTestDB(t)
	posts := NewGormPostRepository(db)
	users := NewGormUserRepository(db)
	ctx := context.Background()

	alice := createUser(t, users, "alice")
	post := createPost(t, posts, alice.ID, "")

	first := &domain.Comment{PostID: post.ID, AuthorID: alice.ID, Text: "first"}
	second := &domain.Comment{PostID: post.ID, AuthorID: alice.ID, Text: "second"}
	require.NoError(t, posts.AddComment(ctx, first))
	require.NoError(t, posts.AddComment(ctx, second))

	list, err := posts.ListComments(ctx, post.ID)
	require.NoError(t, err)
	require.Len(t, list, 2)
	assert.Equal(t, "first", list[0].Text)
	assert.Equal(t, "second", list[1].Text)

	// Removing one comment leaves the other untouched.
	require.NoError(t, posts.DeleteComment(ctx, post.ID, first.ID))

	list, err = posts.ListComments(ctx, post.ID)
	require.NoError(t, err)
	require.Len(t, list, 1)
	assert.Equal(t, second.ID, list[0].ID)

	count, err := posts.CommentCount(ctx, post.ID)
	require.NoError(t, err)
	assert.Equal(t, int64(1), count)
}

func TestGetComment_ScopedToPost(t *testing.T) {
	db := newTestDB(t)
	posts := NewGormPostRepository(db)
	users := NewGormUserRepository(db)
	ctx := context.Background()

	alice := createUser(t, users, "alice")
	postA := createPost(t, posts, alice.ID, "a")
	postB := createPost(t, posts, alice.ID, "b")

	comment := &domain.Comment{PostID: postA.ID, AuthorID: alice.ID, Text: "hi"}
	require.NoError(t, posts.AddComment(ctx, comment))

	_, err := posts.GetComment(ctx, postA.ID, comment.ID)
	require.NoError(t, err)

	// The same comment id under a different post is not found.
	_, err = posts.GetComment(ctx, postB.ID, comment.ID)
	assert.ErrorIs(t, err, ErrCommentNotFound)

	assert.ErrorIs(t, posts.DeleteComment(ctx, postB.ID, comment.ID), ErrCommentNotFound)
}

func TestEngagementCounts(t *testing.T) {
	db := newTestDB(t)
	posts := NewGormPostRepository(db)
	users := NewGormUserRepository(db)
	ctx := context.Background()

	alice := createUser(t, users, "alice")
	bob := createUser(t, users, "bob")
	postA := createPost(t, posts, alice.ID, "a")
	postB := createPost(t, posts, alice.ID, "b")

	_, _, err := posts.ToggleLike(ctx, postA.ID, alice.ID)
	require.NoError(t, err)
	_, _, err = posts.ToggleLike(ctx, postA.ID, bob.ID)
	require.NoError(t, err)
	require.NoError(t, posts.AddComment(ctx, &domain.Comment{PostID: postB.ID, AuthorID: bob.ID, Text: "hey"}))

	likes, comments, err := posts.EngagementCounts(ctx, []string{postA.ID, postB.ID})
	require.NoError(t, err)
	assert.Equal(t, int64(2), likes[postA.ID])
	assert.Equal(t, int64(0), likes[postB.ID])
	assert.Equal(t, int64(0), comments[postA.ID])
	assert.Equal(t, int64(1), comments[postB.ID])

	likedSet, err := posts.LikedSet(ctx, bob.ID, []string{postA.ID, postB.ID})
	require.NoError(t, err)
	assert.True(t, likedSet[postA.ID])
	assert.False(t, likedSet[postB.ID])
}
