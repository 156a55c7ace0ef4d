package service

import (
	"context"
	"errors"
	"strings"
	"time"
	"unicode/utf8"

	"github.com/moaahil1110/LikeLoop/internal/audit"
	"github.com/moaahil1110/LikeLoop/internal/cache"
	"github.com/moaahil1110/LikeLoop/internal/domain"
	"github.com/moaahil1110/LikeLoop/internal/events"
	"github.com/moaahil1110/LikeLoop/internal/media"
	"github.com/moaahil1110/LikeLoop/internal/repository"
	"github.com/moaahil1110/LikeLoop/pkg/log"
)

// userServiceImpl implements UserService.
type userServiceImpl struct {
	users    repository.UserRepository
	posts    repository.PostRepository
	follows  repository.FollowRepository
	media    *media.Store
	recorder *events.Recorder
	cache    cache.ProfileCache // may be nil
	cacheTTL time.Duration
}

// NewUserService creates a new user service. profileCache may be nil
// when the count cache is disabled.
func NewUserService(users repository.UserRepository, posts repository.PostRepository, follows repository.FollowRepository, mediaStore *media.Store, recorder *events.Recorder, profileCache cache.ProfileCache, cacheTTL time.Duration) UserService {
	return &userServiceImpl{
		users:    users,
		posts:    posts,
		follows:  follows,
		media:    mediaStore,
		recorder: recorder,
		cache:    profileCache,
		cacheTTL: cacheTTL,
	}
}

// GetProfile returns the public profile. Counts come from the cache
// when available; on a miss they are recomputed from the database and
// the cache repopulated.
func (s *userServiceImpl) GetProfile(ctx context.Context, userID string) (*domain.Profile, error) {
	l := log.Ctx(ctx)

	user, err := s.users.GetByID(ctx, userID)
	if err != nil {
		if errors.Is(err, repository.ErrUserNotFound) {
			return nil, ErrUserNotFound
		}
		l.Error().Err(err).Msg("failed to get user")
		return nil, err
	}

	counts, err := s.profileCounts(ctx, userID)
	if err != nil {
		return nil, err
	}

	return &domain.Profile{
		ID:             user.ID,
		Username:       user.Username,
		Bio:            user.Bio,
		Avatar:         user.AvatarURL,
		FollowerCount:  counts.Followers,
		FollowingCount: counts.Following,
		PostCount:      counts.Posts,
	}, nil
}

func (s *userServiceImpl) profileCounts(ctx context.Context, userID string) (*cache.ProfileCounts, error) {
	l := log.Ctx(ctx)

	if s.cache != nil {
		if err := s.cache.RecordAccess(ctx, userID); err != nil {
			l.Warn().Err(err).Msg("failed to record profile access")
		}

		counts, err := s.cache.Get(ctx, userID)
		if err == nil {
			return counts, nil
		}
		if !errors.Is(err, cache.ErrCacheMiss) {
			l.Warn().Err(err).Msg("profile count cache read failed")
		}
	}

	followers, err := s.follows.FollowerCount(ctx, userID)
	if err != nil {
		l.Error().Err(err).Msg("failed to count followers")
		return nil, err
	}
	following, err := s.follows.FollowingCount(ctx, userID)
	if err != nil {
		l.Error().Err(err).Msg("failed to count following")
		return nil, err
	}
	posts, err := s.posts.CountByUser(ctx, userID)
	if err != nil {
		l.Error().Err(err).Msg("failed to count posts")
		return nil, err
	}

	counts := &cache.ProfileCounts{Followers: followers, Following: following, Posts: posts}

	if s.cache != nil {
		if err := s.cache.Set(ctx, userID, counts, s.cacheTTL); err != nil {
			l.Warn().Err(err).Msg("profile count cache write failed")
		}
	}

	return counts, nil
}

// UpdateProfile applies a partial profile update.
func (s *userServiceImpl) UpdateProfile(ctx context.Context, userID string, req *domain.UpdateProfileRequest) (*domain.Profile, error) {
	l := log.Ctx(ctx)

	if req.Username != nil {
		username := strings.TrimSpace(*req.Username)
		if len(username) < domain.MinUsernameLen || len(username) > domain.MaxUsernameLen || !domain.UsernamePattern.MatchString(username) {
			return nil, ErrInvalidUsername
		}
		req.Username = &username

		taken, err := s.users.UsernameTaken(ctx, username, userID)
		if err != nil {
			l.Error().Err(err).Msg("failed to check username")
			return nil, err
		}
		if taken {
			return nil, ErrUsernameTaken
		}
	}
	if req.Bio != nil && utf8.RuneCountInString(*req.Bio) > domain.MaxBioLen {
		return nil, ErrBioTooLong
	}

	if _, err := s.users.UpdateProfile(ctx, userID, req); err != nil {
		switch {
		case errors.Is(err, repository.ErrUserNotFound):
			return nil, ErrUserNotFound
		case errors.Is(err, repository.ErrUsernameExists):
			// Lost the race with a concurrent rename.
			return nil, ErrUsernameTaken
		}
		l.Error().Err(err).Msg("failed to update profile")
		return nil, err
	}

	audit.Log(ctx, audit.ActionUpdateProfile, userID, "profile updated")

	return s.GetProfile(ctx, userID)
}

// UpdateAvatar stores the new avatar and removes the old object,
// best-effort.
func (s *userServiceImpl) UpdateAvatar(ctx context.Context, userID string, upload *domain.ImageUpload) (*domain.AvatarResult, error) {
	l := log.Ctx(ctx)

	if upload == nil {
		return nil, ErrImageRequired
	}

	image, err := s.media.Save(ctx, media.FolderAvatars, upload)
	if err != nil {
		if errors.Is(err, media.ErrUnsupportedImageType) {
			return nil, ErrUnsupportedImage
		}
		l.Error().Err(err).Msg("failed to store avatar")
		return nil, err
	}

	oldKey, err := s.users.UpdateAvatar(ctx, userID, image.URL, image.Key)
	if err != nil {
		if derr := s.media.Delete(ctx, image.Key); derr != nil {
			l.Error().Err(derr).Str(log.FieldImageKey, image.Key).Msg("failed to clean up avatar after update failure")
		}
		if errors.Is(err, repository.ErrUserNotFound) {
			return nil, ErrUserNotFound
		}
		l.Error().Err(err).Msg("failed to update avatar")
		return nil, err
	}

	// Old avatar deletion never blocks the request.
	if err := s.media.Delete(ctx, oldKey); err != nil {
		l.Warn().Err(err).Str(log.FieldImageKey, oldKey).Msg("failed to delete old avatar")
	}

	audit.Log(ctx, audit.ActionUpdateAvatar, userID, "avatar updated")

	return &domain.AvatarResult{Avatar: image.URL}, nil
}

// SearchUsers finds users by username substring, excluding the requester.
func (s *userServiceImpl) SearchUsers(ctx context.Context, query, excludeID string) ([]domain.SearchResult, error) {
	l := log.Ctx(ctx)

	query = strings.TrimSpace(query)
	if utf8.RuneCountInString(query) < domain.MinSearchLen {
		return nil, ErrQueryTooShort
	}

	users, err := s.users.Search(ctx, query, excludeID, domain.MaxSearchResults)
	if err != nil {
		l.Error().Err(err).Msg("failed to search users")
		return nil, err
	}

	results := make([]domain.SearchResult, 0, len(users))
	for _, u := range users {
		followers, err := s.follows.FollowerCount(ctx, u.ID)
		if err != nil {
			l.Error().Err(err).Str(log.FieldUserID, u.ID).Msg("failed to count followers for search hit")
			return nil, err
		}
		results = append(results, domain.SearchResult{
			ID:            u.ID,
			Username:      u.Username,
			Avatar:        u.AvatarURL,
			Bio:           u.Bio,
			FollowerCount: followers,
		})
	}
	return results, nil
}

// ToggleFollow flips the requester's follow edge to the target.
func (s *userServiceImpl) ToggleFollow(ctx context.Context, targetID, requesterID string) (*domain.FollowResult, error) {
	l := log.Ctx(ctx)

	if targetID == requesterID {
		return nil, ErrSelfFollow
	}

	if _, err := s.users.GetByID(ctx, targetID); err != nil {
		if errors.Is(err, repository.ErrUserNotFound) {
			return nil, ErrUserNotFound
		}
		l.Error().Err(err).Msg("failed to load follow target")
		return nil, err
	}

	following, err := s.follows.Toggle(ctx, requesterID, targetID)
	if err != nil {
		l.Error().Err(err).Msg("failed to toggle follow")
		return nil, err
	}

	if s.cache != nil {
		if err := s.cache.Invalidate(ctx, targetID, requesterID); err != nil {
			l.Warn().Err(err).Msg("failed to invalidate profile counts")
		}
	}

	s.recorder.FollowToggled(ctx, targetID, requesterID, following)
	audit.LogWithTarget(ctx, audit.ActionFollowUser, requesterID, targetID, "follow toggled")

	return &domain.FollowResult{Following: following}, nil
}
