package main

import (
	"context"
	"fmt"

	"github.com/gin-gonic/gin"

	"github.com/moaahil1110/LikeLoop/internal/cache"
	"github.com/moaahil1110/LikeLoop/internal/config"
	"github.com/moaahil1110/LikeLoop/internal/domain"
	"github.com/moaahil1110/LikeLoop/internal/events"
	"github.com/moaahil1110/LikeLoop/internal/handler"
	"github.com/moaahil1110/LikeLoop/internal/media"
	"github.com/moaahil1110/LikeLoop/internal/reconciler"
	"github.com/moaahil1110/LikeLoop/internal/repository"
	"github.com/moaahil1110/LikeLoop/internal/service"
	"github.com/moaahil1110/LikeLoop/pkg/database"
	"github.com/moaahil1110/LikeLoop/pkg/jwt"
	pkglog "github.com/moaahil1110/LikeLoop/pkg/log"
	"github.com/moaahil1110/LikeLoop/pkg/middleware"
	"github.com/moaahil1110/LikeLoop/pkg/pubsub"
	"github.com/moaahil1110/LikeLoop/pkg/storage"
)

func main() {
	ctx := context.Background()

	// Load configuration
	cfg, err := config.Load()
	if err != nil {
		pkglog.L().Fatal().Err(err).Msg("failed to load config")
	}

	pkglog.Init(cfg.Log)
	l := pkglog.L()

	if cfg.JWT.Secret == "" {
		l.Fatal().Msg("jwt.secret must be configured")
	}

	// Connect to database using GORM
	db, err := database.New(&database.Config{
		Driver:          cfg.Database.Driver,
		Host:            cfg.Database.Host,
		Port:            cfg.Database.Port,
		User:            cfg.Database.User,
		Password:        cfg.Database.Password,
		DBName:          cfg.Database.DBName,
		SSLMode:         cfg.Database.SSLMode,
		FilePath:        cfg.Database.FilePath,
		MaxIdleConns:    cfg.Database.MaxIdleConns,
		MaxOpenConns:    cfg.Database.MaxOpenConns,
		ConnMaxLifetime: cfg.Database.ConnMaxLifetime,
	})
	if err != nil {
		l.Fatal().Err(err).Msg("failed to connect to database")
	}

	// Auto-migrate
	if err := database.AutoMigrate(db,
		&domain.UserModel{},
		&domain.PostModel{},
		&domain.LikeModel{},
		&domain.CommentModel{},
		&domain.FollowModel{},
	); err != nil {
		l.Fatal().Err(err).Msg("failed to auto-migrate")
	}
	l.Info().Msg("database migration completed")

	// Initialize repositories
	userRepo := repository.NewGormUserRepository(db)
	postRepo := repository.NewGormPostRepository(db)
	followRepo := repository.NewGormFollowRepository(db)

	// Profile count cache is optional: the database always has the truth.
	var profileCache cache.ProfileCache
	if cfg.Redis.Enabled {
		c, err := cache.NewRedisProfileCache(cfg.Redis, cfg.Cache.Prefix)
		if err != nil {
			l.Warn().Err(err).Msg("redis unavailable, continuing without profile count cache")
		} else {
			profileCache = c
			defer c.Close()
		}
	}

	// Event publisher is optional in the same way.
	publisher, err := pubsub.NewPublisher(cfg.PubSub)
	if err != nil {
		l.Warn().Err(err).Msg("event bus unavailable, continuing without engagement events")
		publisher = nil
	}
	if publisher != nil {
		defer publisher.Close()
	}
	recorder := events.NewRecorder(publisher)

	// Image storage
	backend, err := newStorage(ctx, cfg.Storage)
	if err != nil {
		l.Fatal().Err(err).Msg("failed to initialize storage")
	}
	mediaStore := media.NewStore(backend)

	// Initialize services
	postService := service.NewPostService(postRepo, userRepo, mediaStore, recorder, profileCache)
	userService := service.NewUserService(userRepo, postRepo, followRepo, mediaStore, recorder, profileCache, cfg.Cache.TTL)

	// Initialize auth middleware
	jwtManager := jwt.NewManager(cfg.JWT.Secret, cfg.JWT.Duration, cfg.JWT.Issuer)
	authMiddleware := middleware.NewAuthMiddleware(jwtManager)

	// Hot-profile count reconciler runs only when the cache does.
	if profileCache != nil {
		rec := reconciler.New(profileCache, postRepo, followRepo, cfg.Reconciler, cfg.Cache.TTL)
		rec.Start(ctx)
		defer func() {
			rec.Stop()
			<-rec.Done()
		}()
	}

	// Setup Gin router
	gin.SetMode(gin.ReleaseMode)
	r := gin.New()
	r.Use(gin.Recovery())
	r.Use(pkglog.GinMiddleware(l))

	// Health check
	r.GET("/health", func(c *gin.Context) {
		c.JSON(200, gin.H{"status": "ok"})
	})

	// Locally stored images are served straight from disk.
	if local, ok := backend.(*storage.LocalStorage); ok {
		r.Static("/likeloop", local.GetBasePath()+"/likeloop")
	}

	// Register routes
	handler.NewPostHandler(postService, authMiddleware).RegisterRoutes(r)
	handler.NewUserHandler(userService, authMiddleware).RegisterRoutes(r)

	// Start server
	addr := fmt.Sprintf("%s:%d", cfg.Server.Host, cfg.Server.Port)
	l.Info().Str("addr", addr).Str("db_driver", cfg.Database.Driver).Str("storage_driver", cfg.Storage.Driver).Msg("likeloop starting")
	if err := r.Run(addr); err != nil {
		l.Fatal().Err(err).Msg("failed to start server")
	}
}

func newStorage(ctx context.Context, cfg config.StorageConfig) (storage.Storage, error) {
	switch cfg.Driver {
	case "s3":
		return storage.NewS3Storage(ctx, cfg.S3)
	case "", "local":
		return storage.NewLocalStorage(storage.LocalConfig{BasePath: cfg.LocalPath})
	default:
		return nil, fmt.Errorf("unsupported storage driver: %s", cfg.Driver)
	}
}
