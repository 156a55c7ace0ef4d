package media

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/moaahil1110/LikeLoop/internal/domain"
	"github.com/moaahil1110/LikeLoop/pkg/storage"
)

// Storage folders. Every stored object lives under one of these.
const (
	FolderPosts   = "likeloop/posts"
	FolderAvatars = "likeloop/avatars"
)

// URLExpiry applies when the backing storage issues presigned URLs.
const URLExpiry = 7 * 24 * time.Hour

// ErrUnsupportedImageType is returned for uploads that are not images.
var ErrUnsupportedImageType = errors.New("unsupported image type")

var imageExtensions = map[string]string{
	"image/jpeg": ".jpg",
	"image/png":  ".png",
	"image/gif":  ".gif",
	"image/webp": ".webp",
}

// Store persists uploaded images and resolves their display URLs.
type Store struct {
	backend storage.Storage
}

// NewStore creates a media store over the given storage backend.
func NewStore(backend storage.Storage) *Store {
	return &Store{backend: backend}
}

// Save writes the upload under a fresh key in folder and returns the
// stored image reference.
func (s *Store) Save(ctx context.Context, folder string, upload *domain.ImageUpload) (domain.Image, error) {
	ext, ok := imageExtensions[upload.ContentType]
	if !ok {
		return domain.Image{}, ErrUnsupportedImageType
	}

	key := fmt.Sprintf("%s/%s%s", folder, uuid.New().String(), ext)

	if err := s.backend.Write(ctx, key, upload.Reader, upload.Size, upload.ContentType); err != nil {
		return domain.Image{}, fmt.Errorf("failed to store image: %w", err)
	}

	url, err := s.backend.GetURL(ctx, key, URLExpiry)
	if err != nil {
		return domain.Image{}, fmt.Errorf("failed to resolve image url: %w", err)
	}

	return domain.Image{URL: url, Key: key}, nil
}

// Delete removes a stored image by key. A blank key is a no-op.
func (s *Store) Delete(ctx context.Context, key string) error {
	if key == "" {
		return nil
	}
	return s.backend.Delete(ctx, key)
}
