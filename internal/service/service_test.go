package service

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"

	"github.com/moaahil1110/LikeLoop/internal/domain"
	"github.com/moaahil1110/LikeLoop/internal/events"
	"github.com/moaahil1110/LikeLoop/internal/media"
	"github.com/moaahil1110/LikeLoop/internal/repository"
)

// fakeStorage is an in-memory storage.Storage that records deletions.
type fakeStorage struct {
	mu      sync.Mutex
	objects map[string][]byte
	deleted []string
}

func newFakeStorage() *fakeStorage {
	return &fakeStorage{objects: make(map[string][]byte)}
}

func (f *fakeStorage) Write(_ context.Context, key string, r io.Reader, _ int64, _ string) error {
	data, err := io.ReadAll(r)
	if err != nil {
		return err
	}
	f.mu.Lock()
	defer f.mu.Unlock()
	f.objects[key] = data
	return nil
}

func (f *fakeStorage) Read(_ context.Context, key string) (io.ReadCloser, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	data, ok := f.objects[key]
	if !ok {
		return nil, fmt.Errorf("not found: %s", key)
	}
	return io.NopCloser(bytes.NewReader(data)), nil
}

func (f *fakeStorage) Delete(_ context.Context, key string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	delete(f.objects, key)
	f.deleted = append(f.deleted, key)
	return nil
}

func (f *fakeStorage) Exists(_ context.Context, key string) (bool, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	_, ok := f.objects[key]
	return ok, nil
}

func (f *fakeStorage) GetURL(_ context.Context, key string, _ time.Duration) (string, error) {
	return "https://cdn.test/" + key, nil
}

func (f *fakeStorage) deletedKeys() []string {
	f.mu.Lock()
	defer f.mu.Unlock()
	return append([]string(nil), f.deleted...)
}

// testEnv wires real repositories over sqlite with fake storage and a
// disabled event bus.
type testEnv struct {
	db      *gorm.DB
	storage *fakeStorage
	users   repository.UserRepository
	posts   PostService
	userSvc UserService
}

func newTestEnv(t *testing.T) *testEnv {
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

	userRepo := repository.NewGormUserRepository(db)
	postRepo := repository.NewGormPostRepository(db)
	followRepo := repository.NewGormFollowRepository(db)

	fake := newFakeStorage()
	store := media.NewStore(fake)
	recorder := events.NewRecorder(nil)

	return &testEnv{
		db:      db,
		storage: fake,
		users:   userRepo,
		posts:   NewPostService(postRepo, userRepo, store, recorder, nil),
		userSvc: NewUserService(userRepo, postRepo, followRepo, store, recorder, nil, time.Minute),
	}
}

func (e *testEnv) createUser(t *testing.T, username string) *domain.User {
	t.Helper()

	user := &domain.User{Username: username}
	require.NoError(t, e.users.Create(context.Background(), user))
	return user
}

func (e *testEnv) createPost(t *testing.T, ownerID, caption string) *domain.PostView {
	t.Helper()

	view, err := e.posts.CreatePost(context.Background(), ownerID, caption, testUpload())
	require.NoError(t, err)
	return view
}

func testUpload() *domain.ImageUpload {
	data := []byte("not really a jpeg")
	return &domain.ImageUpload{
		Reader:      bytes.NewReader(data),
		Size:        int64(len(data)),
		ContentType: "image/jpeg",
	}
}
