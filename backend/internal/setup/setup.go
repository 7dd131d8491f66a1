package setup

import (
	"context"
	"fmt"
	"time"

	"github.com/itchan-dev/agenda/backend/internal/handler"
	"github.com/itchan-dev/agenda/backend/internal/service"
	"github.com/itchan-dev/agenda/backend/internal/storage/fs"
	"github.com/itchan-dev/agenda/backend/internal/storage/pg"
	"github.com/itchan-dev/agenda/backend/internal/storage/s3"
	"github.com/itchan-dev/agenda/shared/config"
	"github.com/itchan-dev/agenda/shared/jwt"
	"github.com/itchan-dev/agenda/shared/logger"
	mw "github.com/itchan-dev/agenda/shared/middleware"
	rl "github.com/itchan-dev/agenda/shared/middleware/ratelimiter"
	sharedpg "github.com/itchan-dev/agenda/shared/storage/pg"
)

// Dependencies holds everything the router and main need.
type Dependencies struct {
	Storage        *pg.Storage
	Handler        *handler.Handler
	AuthMiddleware *mw.Auth
	Config         *config.Config

	// LoginLimiter is keyed by client IP, UserLimiter by user id.
	LoginLimiter *rl.KeyedRateLimiter
	UserLimiter  *rl.KeyedRateLimiter
}

// SetupDependencies connects to the database, applies migrations and builds the service graph.
func SetupDependencies(cfg *config.Config) (*Dependencies, error) {
	storage, err := pg.New(cfg.Private.Pg, sharedpg.DefaultConnectionConfig())
	if err != nil {
		return nil, err
	}
	if err := storage.Migrate(); err != nil {
		storage.Cleanup()
		return nil, err
	}

	media, err := newMediaStorage(cfg)
	if err != nil {
		storage.Cleanup()
		return nil, err
	}

	jwtService := jwt.New(cfg.JwtKey(), cfg.JwtTTL())
	notifications := service.NewNotification(storage)

	h := handler.New(handler.Services{
		Auth:         service.NewAuth(storage, jwtService, cfg),
		Profile:      service.NewProfile(storage),
		Activity:     service.NewActivity(storage, media, notifications, cfg),
		Project:      service.NewProject(storage, cfg),
		Assignment:   service.NewAssignment(storage, notifications),
		Notification: notifications,
		Staff:        service.NewStaff(storage),
		Stats:        service.NewStats(storage, cfg),
	}, storage, cfg)

	return &Dependencies{
		Storage:        storage,
		Handler:        h,
		AuthMiddleware: mw.NewAuth(jwtService),
		Config:         cfg,
		LoginLimiter:   rl.New(1, 5, time.Hour),
		UserLimiter:    rl.New(100, 100, time.Hour),
	}, nil
}

// Cleanup stops background workers and closes the pool.
func (d *Dependencies) Cleanup() {
	d.LoginLimiter.Stop()
	d.UserLimiter.Stop()
	if err := d.Storage.Cleanup(); err != nil {
		logger.Log.Error("failed to close database", "error", err)
	}
}

func newMediaStorage(cfg *config.Config) (service.MediaStorage, error) {
	switch cfg.Public.Media.Backend {
	case "s3":
		ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		client, err := s3.NewClient(ctx, cfg.Private.S3)
		if err != nil {
			return nil, err
		}
		logger.Log.Info("using s3 media storage", "bucket", cfg.Private.S3.Bucket)
		return s3.New(client, cfg.Private.S3.Bucket), nil
	case "fs", "":
		logger.Log.Info("using filesystem media storage", "root", cfg.Public.Media.RootPath)
		return fs.New(cfg.Public.Media.RootPath, cfg.Public.Media.PublicBaseURL)
	default:
		return nil, fmt.Errorf("unknown media backend %q", cfg.Public.Media.Backend)
	}
}
