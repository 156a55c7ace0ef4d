package repository

import (
	"context"
	"fmt"
	"strings"
	"testing"

	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"

	"github.com/moaahil1110/LikeLoop/internal/domain"
)

// newTestDB opens an isolated in-memory sqlite database migrated with
// the full schema.
func newTestDB(t *testing.T) *gorm.DB {
	t.Helper()

	name := strings.ReplaceAll(t.Name(), "/", "_")
	dsn := fmt.Sprintf("file:%s?mode=memory&cache=shared", name)

	db, err := gorm.Open(sqlite.Open(dsn), &gorm.Config{
		Logger:         logger.Default.LogMode(logger.Silent),
		TranslateError: true,
	})
	require.NoError(t, err)

	require.NoError(t, db.AutoMigrate(
		&domain.UserModel{},
		&domain.PostModel{},
		&domain.LikeModel{},
		&domain.CommentModel{},
		&domain.FollowModel{},
	))

	return db
}

func createUser(t *testing.T, repo UserRepository, username string) *domain.User {
	t.Helper()

	user := &domain.User{Username: username}
	require.NoError(t, repo.Create(context.Background(), user))
	return user
}

func createPost(t *testing.T, repo PostRepository, ownerID, caption string) *domain.Post {
	t.Helper()

	post := &domain.Post{
		OwnerID: ownerID,
		Caption: caption,
		Image:   domain.Image{URL: "https://cdn.test/img.jpg", Key: "likeloop/posts/img.jpg"},
	}
	require.NoError(t, repo.Create(context.Background(), post))
	return post
}
