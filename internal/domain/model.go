package domain

import (
	"time"

	"gorm.io/gorm"
)

// UserModel is the GORM model for the users table.
type UserModel struct {
	ID        string         `gorm:"type:varchar(36);primaryKey"`
	Username  string         `gorm:"type:varchar(30);uniqueIndex;not null"`
	Bio       string         `gorm:"type:varchar(150)"`
	AvatarURL string         `gorm:"type:varchar(512)"`
	AvatarKey string         `gorm:"type:varchar(255)"`
	CreatedAt time.Time      `gorm:"autoCreateTime"`
	UpdatedAt time.Time      `gorm:"autoUpdateTime"`
	DeletedAt gorm.DeletedAt `gorm:"index"`
}

func (UserModel) TableName() string { return "users" }

// PostModel is the GORM model for the posts table. UserID is immutable
// after creation; CreatedAt drives feed ordering.
type PostModel struct {
	ID        string         `gorm:"type:varchar(36);primaryKey"`
	UserID    string         `gorm:"type:varchar(36);not null;index"`
	Caption   string         `gorm:"type:varchar(2000)"`
	ImageURL  string         `gorm:"type:varchar(512);not null"`
	ImageKey  string         `gorm:"type:varchar(255);not null"`
	CreatedAt time.Time      `gorm:"autoCreateTime;index"`
	DeletedAt gorm.DeletedAt `gorm:"index"`
}

func (PostModel) TableName() string { return "posts" }

// LikeModel is the GORM model for the likes table. The unique index over
// (post_id, user_id) makes a like binary per user: membership is the
// authoritative state, not a counter.
type LikeModel struct {
	ID        uint           `gorm:"primaryKey;autoIncrement"`
	PostID    string         `gorm:"type:varchar(36);not null;uniqueIndex:idx_likes_post_user"`
	UserID    string         `gorm:"type:varchar(36);not null;uniqueIndex:idx_likes_post_user"`
	CreatedAt time.Time      `gorm:"autoCreateTime"`
	DeletedAt gorm.DeletedAt `gorm:"index"`
}

func (LikeModel) TableName() string { return "likes" }

// CommentModel is the GORM model for the comments table. Comments are
// keyed by a stable uuid so removal never renumbers the others.
type CommentModel struct {
	ID        string         `gorm:"type:varchar(36);primaryKey"`
	PostID    string         `gorm:"type:varchar(36);not null;index"`
	UserID    string         `gorm:"type:varchar(36);not null"`
	Text      string         `gorm:"type:varchar(500);not null"`
	CreatedAt time.Time      `gorm:"autoCreateTime"`
	DeletedAt gorm.DeletedAt `gorm:"index"`
}

func (CommentModel) TableName() string { return "comments" }

// FollowModel is the GORM model for the follows table. One row is the
// whole follow edge, so both directions of the relationship are always
// in sync by construction.
type FollowModel struct {
	ID          uint           `gorm:"primaryKey;autoIncrement"`
	FollowerID  string         `gorm:"type:varchar(36);not null;uniqueIndex:idx_follows_pair"`
	FollowingID string         `gorm:"type:varchar(36);not null;uniqueIndex:idx_follows_pair;index"`
	CreatedAt   time.Time      `gorm:"autoCreateTime"`
	DeletedAt   gorm.DeletedAt `gorm:"index"`
}

func (FollowModel) TableName() string { return "follows" }
