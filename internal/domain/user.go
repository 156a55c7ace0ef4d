package domain

import (
	"regexp"
	"time"
)

// Boundary limits for user fields.
const (
	MinUsernameLen   = 3
	MaxUsernameLen   = 30
	MaxBioLen        = 150
	MinSearchLen     = 2
	MaxSearchResults = 20
)

// UsernamePattern matches valid usernames: letters, digits, underscores.
var UsernamePattern = regexp.MustCompile(`^[a-zA-Z0-9_]+$`)

// User is the domain representation of a user.
type User struct {
	ID        string
	Username  string
	Bio       string
	AvatarURL string
	AvatarKey string
	CreatedAt time.Time
	UpdatedAt time.Time
}

// ToDomain converts UserModel to domain User.
func (m *UserModel) ToDomain() *User {
	return &User{
		ID:        m.ID,
		Username:  m.Username,
		Bio:       m.Bio,
		AvatarURL: m.AvatarURL,
		AvatarKey: m.AvatarKey,
		CreatedAt: m.CreatedAt,
		UpdatedAt: m.UpdatedAt,
	}
}

// UserToModel converts domain User to UserModel.
func UserToModel(u *User) *UserModel {
	return &UserModel{
		ID:        u.ID,
		Username:  u.Username,
		Bio:       u.Bio,
		AvatarURL: u.AvatarURL,
		AvatarKey: u.AvatarKey,
		CreatedAt: u.CreatedAt,
		UpdatedAt: u.UpdatedAt,
	}
}

// Summary returns the embeddable author view of the user.
func (u *User) Summary() UserSummary {
	return UserSummary{
		ID:       u.ID,
		Username: u.Username,
		Avatar:   u.AvatarURL,
	}
}

// UserSummary is the author info attached to posts and comments.
type UserSummary struct {
	ID       string `json:"id"`
	Username string `json:"username"`
	Avatar   string `json:"avatar,omitempty"`
}

// Profile is the public profile view. Counts are derived from the
// follows and posts tables.
type Profile struct {
	ID             string `json:"id"`
	Username       string `json:"username"`
	Bio            string `json:"bio,omitempty"`
	Avatar         string `json:"avatar,omitempty"`
	FollowerCount  int64  `json:"followerCount"`
	FollowingCount int64  `json:"followingCount"`
	PostCount      int64  `json:"postCount"`
}

// SearchResult is a single username-search hit.
type SearchResult struct {
	ID            string `json:"id"`
	Username      string `json:"username"`
	Avatar        string `json:"avatar,omitempty"`
	Bio           string `json:"bio,omitempty"`
	FollowerCount int64  `json:"followerCount"`
}

// UpdateProfileRequest carries a partial profile update. Nil fields are
// left untouched.
type UpdateProfileRequest struct {
	Username *string `json:"username"`
	Bio      *string `json:"bio"`
}

// FollowResult is the outcome of a follow toggle.
type FollowResult struct {
	Following bool `json:"isFollowing"`
}

// AvatarResult is the outcome of an avatar upload.
type AvatarResult struct {
	Avatar string `json:"avatar"`
}
