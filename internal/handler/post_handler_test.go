package handler

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/moaahil1110/LikeLoop/internal/domain"
)

func TestGetUserPosts_AnonymousDegradesGracefully(t *testing.T) {
	app := newTestApp(t)

	alice := app.createUser(t, "alice")
	post := app.createPost(t, alice, "hello")

	_, err := app.posts.ToggleLike(context.Background(), post.ID, alice.ID)
	require.NoError(t, err)

	// No token, garbled token, wrongly signed token: all must serve the
	// page with isLiked=false instead of failing.
	for _, token := range []string{"", "garbage", "eyJ.not.ajwt"} {
		w, envelope := app.do(t, http.MethodGet, "/api/posts/user/"+alice.ID, token, nil, "")
		require.Equal(t, http.StatusOK, w.Code, "token=%q", token)

		var feed domain.FeedPage
		require.NoError(t, json.Unmarshal(envelope["data"], &feed))
		require.Len(t, feed.Posts, 1)
		assert.False(t, feed.Posts[0].IsLiked)
		assert.Equal(t, int64(1), feed.Posts[0].LikeCount)
	}

	// The owner with a real token sees their like.
	w, envelope := app.do(t, http.MethodGet, "/api/posts/user/"+alice.ID, app.tokenFor(t, alice), nil, "")
	require.Equal(t, http.StatusOK, w.Code)

	var feed domain.FeedPage
	require.NoError(t, json.Unmarshal(envelope["data"], &feed))
	require.Len(t, feed.Posts, 1)
	assert.True(t, feed.Posts[0].IsLiked)
}

func TestGetFeed_RequiresAuth(t *testing.T) {
	app := newTestApp(t)

	w, envelope := app.do(t, http.MethodGet, "/api/posts", "", nil, "")
	assert.Equal(t, http.StatusUnauthorized, w.Code)
	assert.NotNil(t, envelope["error"])

	w, _ = app.do(t, http.MethodGet, "/api/posts", "garbage", nil, "")
	assert.Equal(t, http.StatusUnauthorized, w.Code)
}

func TestGetFeed_PaginationEnvelope(t *testing.T) {
	app := newTestApp(t)

	alice := app.createUser(t, "alice")
	for i := 0; i < 25; i++ {
		app.createPost(t, alice, fmt.Sprintf("post %d", i))
	}

	w, envelope := app.do(t, http.MethodGet, "/api/posts?page=3&limit=10", app.tokenFor(t, alice), nil, "")
	require.Equal(t, http.StatusOK, w.Code)

	var feed domain.FeedPage
	require.NoError(t, json.Unmarshal(envelope["data"], &feed))
	assert.Len(t, feed.Posts, 5)
	assert.Equal(t, 3, feed.Pagination.Current)
	assert.Equal(t, 3, feed.Pagination.Pages)
	assert.Equal(t, int64(25), feed.Pagination.Total)
}

func TestCreatePost_Multipart(t *testing.T) {
	app := newTestApp(t)

	alice := app.createUser(t, "alice")

	body, contentType := multipartImage(t, "image", "my caption")
	w, envelope := app.do(t, http.MethodPost, "/api/posts", app.tokenFor(t, alice), body, contentType)
	require.Equal(t, http.StatusCreated, w.Code)

	var view domain.PostView
	require.NoError(t, json.Unmarshal(envelope["data"], &view))
	assert.Equal(t, "my caption", view.Caption)
	assert.Equal(t, "alice", view.User.Username)
	assert.NotEmpty(t, view.Image.URL)

	// Missing file is a validation failure, not a server error.
	w, _ = app.do(t, http.MethodPost, "/api/posts", app.tokenFor(t, alice), nil, "")
	assert.Equal(t, http.StatusBadRequest, w.Code)
}

func TestDeletePost_ForbiddenForNonOwner(t *testing.T) {
	app := newTestApp(t)

	alice := app.createUser(t, "alice")
	bob := app.createUser(t, "bob")
	post := app.createPost(t, alice, "mine")

	w, _ := app.do(t, http.MethodDelete, "/api/posts/"+post.ID, app.tokenFor(t, bob), nil, "")
	assert.Equal(t, http.StatusForbidden, w.Code)

	w, _ = app.do(t, http.MethodDelete, "/api/posts/"+post.ID, app.tokenFor(t, alice), nil, "")
	assert.Equal(t, http.StatusOK, w.Code)

	w, _ = app.do(t, http.MethodGet, "/api/posts/"+post.ID, "", nil, "")
	assert.Equal(t, http.StatusNotFound, w.Code)
}

func TestToggleLike_Endpoint(t *testing.T) {
	app := newTestApp(t)

	alice := app.createUser(t, "alice")
	post := app.createPost(t, alice, "")

	w, envelope := app.do(t, http.MethodPost, "/api/posts/"+post.ID+"/like", app.tokenFor(t, alice), nil, "")
	require.Equal(t, http.StatusOK, w.Code)

	var result domain.LikeResult
	require.NoError(t, json.Unmarshal(envelope["data"], &result))
	assert.True(t, result.IsLiked)
	assert.Equal(t, int64(1), result.LikeCount)

	w, _ = app.do(t, http.MethodPost, "/api/posts/missing/like", app.tokenFor(t, alice), nil, "")
	assert.Equal(t, http.StatusNotFound, w.Code)
}

func TestComments_Endpoints(t *testing.T) {
	app := newTestApp(t)

	alice := app.createUser(t, "alice")
	bob := app.createUser(t, "bob")
	carol := app.createUser(t, "carol")
	post := app.createPost(t, alice, "")

	w, envelope := app.do(t, http.MethodPost, "/api/posts/"+post.ID+"/comment",
		app.tokenFor(t, bob), jsonBody(t, map[string]string{"text": "nice shot"}), "application/json")
	require.Equal(t, http.StatusCreated, w.Code)

	var result domain.CommentResult
	require.NoError(t, json.Unmarshal(envelope["data"], &result))
	assert.Equal(t, "nice shot", result.Comment.Text)
	assert.Equal(t, int64(1), result.CommentCount)

	commentPath := "/api/posts/" + post.ID + "/comment/" + result.Comment.ID

	// A third user gets 403; the post owner succeeds.
	w, _ = app.do(t, http.MethodDelete, commentPath, app.tokenFor(t, carol), nil, "")
	assert.Equal(t, http.StatusForbidden, w.Code)

	w, _ = app.do(t, http.MethodDelete, commentPath, app.tokenFor(t, alice), nil, "")
	assert.Equal(t, http.StatusOK, w.Code)

	w, _ = app.do(t, http.MethodDelete, commentPath, app.tokenFor(t, alice), nil, "")
	assert.Equal(t, http.StatusNotFound, w.Code)
}
