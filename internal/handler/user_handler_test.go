package handler

import (
	"encoding/json"
	"net/http"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/moaahil1110/LikeLoop/internal/domain"
)

func TestGetProfile_Public(t *testing.T) {
	app := newTestApp(t)

	alice := app.createUser(t, "alice")
	app.createPost(t, alice, "p")

	// No token needed.
	w, envelope := app.do(t, http.MethodGet, "/api/users/profile/"+alice.ID, "", nil, "")
	require.Equal(t, http.StatusOK, w.Code)

	var profile domain.Profile
	require.NoError(t, json.Unmarshal(envelope["data"], &profile))
	assert.Equal(t, "alice", profile.Username)
	assert.Equal(t, int64(1), profile.PostCount)

	w, _ = app.do(t, http.MethodGet, "/api/users/profile/missing", "", nil, "")
	assert.Equal(t, http.StatusNotFound, w.Code)
}

func TestUpdateProfile_Conflict(t *testing.T) {
	app := newTestApp(t)

	alice := app.createUser(t, "alice")
	app.createUser(t, "bob")

	w, _ := app.do(t, http.MethodPut, "/api/users/profile", app.tokenFor(t, alice),
		jsonBody(t, map[string]string{"username": "bob"}), "application/json")
	assert.Equal(t, http.StatusConflict, w.Code)

	w, _ = app.do(t, http.MethodPut, "/api/users/profile", app.tokenFor(t, alice),
		jsonBody(t, map[string]string{"username": "x"}), "application/json")
	assert.Equal(t, http.StatusBadRequest, w.Code)

	w, envelope := app.do(t, http.MethodPut, "/api/users/profile", app.tokenFor(t, alice),
		jsonBody(t, map[string]string{"bio": "hello"}), "application/json")
	require.Equal(t, http.StatusOK, w.Code)

	var profile domain.Profile
	require.NoError(t, json.Unmarshal(envelope["data"], &profile))
	assert.Equal(t, "hello", profile.Bio)
}

func TestUpdateAvatar_Endpoint(t *testing.T) {
	app := newTestApp(t)

	alice := app.createUser(t, "alice")

	body, contentType := multipartImage(t, "avatar", "")
	w, envelope := app.do(t, http.MethodPost, "/api/users/avatar", app.tokenFor(t, alice), body, contentType)
	require.Equal(t, http.StatusOK, w.Code)

	var result domain.AvatarResult
	require.NoError(t, json.Unmarshal(envelope["data"], &result))
	assert.NotEmpty(t, result.Avatar)

	w, _ = app.do(t, http.MethodPost, "/api/users/avatar", app.tokenFor(t, alice), nil, "")
	assert.Equal(t, http.StatusBadRequest, w.Code)
}

func TestSearchUsers_Endpoint(t *testing.T) {
	app := newTestApp(t)

	alice := app.createUser(t, "alice")
	app.createUser(t, "alicia")

	w, _ := app.do(t, http.MethodGet, "/api/users/search?q=a", app.tokenFor(t, alice), nil, "")
	assert.Equal(t, http.StatusBadRequest, w.Code)

	w, envelope := app.do(t, http.MethodGet, "/api/users/search?q=ali", app.tokenFor(t, alice), nil, "")
	require.Equal(t, http.StatusOK, w.Code)

	var data struct {
		Users []domain.SearchResult `json:"users"`
	}
	require.NoError(t, json.Unmarshal(envelope["data"], &data))
	require.Len(t, data.Users, 1)
	assert.Equal(t, "alicia", data.Users[0].Username)
}

func TestToggleFollow_Endpoint(t *testing.T) {
	app := newTestApp(t)

	alice := app.createUser(t, "alice")
	bob := app.createUser(t, "bob")

	// Self-follow is a bad request, matching the validation taxonomy.
	w, _ := app.do(t, http.MethodPost, "/api/users/follow/"+alice.ID, app.tokenFor(t, alice), nil, "")
	assert.Equal(t, http.StatusBadRequest, w.Code)

	w, envelope := app.do(t, http.MethodPost, "/api/users/follow/"+bob.ID, app.tokenFor(t, alice), nil, "")
	require.Equal(t, http.StatusOK, w.Code)

	var result domain.FollowResult
	require.NoError(t, json.Unmarshal(envelope["data"], &result))
	assert.True(t, result.Following)

	w, envelope = app.do(t, http.MethodPost, "/api/users/follow/"+bob.ID, app.tokenFor(t, alice), nil, "")
	require.Equal(t, http.StatusOK, w.Code)
	require.NoError(t, json.Unmarshal(envelope["data"], &result))
	assert.False(t, result.Following)

	w, _ = app.do(t, http.MethodPost, "/api/users/follow/missing", app.tokenFor(t, alice), nil, "")
	assert.Equal(t, http.StatusNotFound, w.Code)
}
