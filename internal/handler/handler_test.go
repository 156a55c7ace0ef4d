package handler

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"mime/multipart"
	"net/http/httptest"
	"net/textproto"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"

	"github.com/moaahil1110/LikeLoop/internal/domain"
	"github.com/moaahil1110/LikeLoop/internal/events"
	"github.com/moaahil1110/LikeLoop/internal/media"
	"github.com/moaahil1110/LikeLoop/internal/repository"
	"github.com/moaahil1110/LikeLoop/internal/service"
	"github.com/moaahil1110/LikeLoop/pkg/jwt"
	"github.com/moaahil1110/LikeLoop/pkg/middleware"
)

// memStorage is a minimal in-memory storage.Storage for handler tests.
type memStorage struct {
	mu      sync.Mutex
	objects map[string][]byte
}

func (m *memStorage) Write(_ context.Context, key string, r io.Reader, _ int64, _ string) error {
	data, err := io.ReadAll(r)
	if err != nil {
		return err
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	m.objects[key] = data
	return nil
}

func (m *memStorage) Read(_ context.Context, key string) (io.ReadCloser, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	data, ok := m.objects[key]
	if !ok {
		return nil, fmt.Errorf("not found: %s", key)
	}
	return io.NopCloser(bytes.NewReader(data)), nil
}

func (m *memStorage) Delete(_ context.Context, key string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	delete(m.objects, key)
	return nil
}

func (m *memStorage) Exists(_ context.Context, key string) (bool, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	_, ok := m.objects[key]
	return ok, nil
}

func (m *memStorage) GetURL(_ context.Context, key string, _ time.Duration) (string, error) {
	return "https://cdn.test/" + key, nil
}

type testApp struct {
	router *gin.Engine
	jwt    *jwt.Manager
	users  repository.UserRepository
	posts  service.PostService
}

func newTestApp(t *testing.T) *testApp {
	t.Helper()
	gin.SetMode(gin.TestMode)

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

	store := media.NewStore(&memStorage{objects: make(map[string][]byte)})
	recorder := events.NewRecorder(nil)

	postService := service.NewPostService(postRepo, userRepo, store, recorder, nil)
	userService := service.NewUserService(userRepo, postRepo, followRepo, store, recorder, nil, time.Minute)

	manager := jwt.NewManager("test-secret", time.Hour, "likeloop-test")
	authMiddleware := middleware.NewAuthMiddleware(manager)

	r := gin.New()
	NewPostHandler(postService, authMiddleware).RegisterRoutes(r)
	NewUserHandler(userService, authMiddleware).RegisterRoutes(r)

	return &testApp{
		router: r,
		jwt:    manager,
		users:  userRepo,
		posts:  postService,
	}
}

func (a *testApp) createUser(t *testing.T, username string) *domain.User {
	t.Helper()

	user := &domain.User{Username: username}
	require.NoError(t, a.users.Create(context.Background(), user))
	return user
}

func (a *testApp) tokenFor(t *testing.T, user *domain.User) string {
	t.Helper()

	token, err := a.jwt.Generate(user.ID, user.Username)
	require.NoError(t, err)
	return token
}

func (a *testApp) createPost(t *testing.T, owner *domain.User, caption string) *domain.PostView {
	t.Helper()

	data := []byte("image bytes")
	view, err := a.posts.CreatePost(context.Background(), owner.ID, caption, &domain.ImageUpload{
		Reader:      bytes.NewReader(data),
		Size:        int64(len(data)),
		ContentType: "image/jpeg",
	})
	require.NoError(t, err)
	return view
}

// do performs a request and decodes the response envelope.
func (a *testApp) do(t *testing.T, method, path, token string, body io.Reader, contentType string) (*httptest.ResponseRecorder, map[string]json.RawMessage) {
	t.Helper()

	req := httptest.NewRequest(method, path, body)
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	if contentType != "" {
		req.Header.Set("Content-Type", contentType)
	}

	w := httptest.NewRecorder()
	a.router.ServeHTTP(w, req)

	var envelope map[string]json.RawMessage
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &envelope))
	return w, envelope
}

func jsonBody(t *testing.T, v interface{}) io.Reader {
	t.Helper()

	data, err := json.Marshal(v)
	require.NoError(t, err)
	return bytes.NewReader(data)
}

func multipartImage(t *testing.T, field, caption string) (io.Reader, string) {
	t.Helper()

	var buf bytes.Buffer
	w := multipart.NewWriter(&buf)

	header := make(textproto.MIMEHeader)
	header.Set("Content-Disposition", fmt.Sprintf(`form-data; name="%s"; filename="pic.jpg"`, field))
	header.Set("Content-Type", "image/jpeg")
	part, err := w.CreatePart(header)
	require.NoError(t, err)
	_, err = part.Write([]byte("image bytes"))
	require.NoError(t, err)

	if caption != "" {
		require.NoError(t, w.WriteField("caption", caption))
	}
	require.NoError(t, w.Close())

	return &buf, w.FormDataContentType()
}
