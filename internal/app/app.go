// Package app wires every component of the web application with fx.
package app

import (
	"context"
	"fmt"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/redis/go-redis/v9"
	"go.uber.org/fx"
	"go.uber.org/fx/fxevent"
	"go.uber.org/zap"
	"gorm.io/gorm"

	"github.com/pageza/recipebox/config"
	"github.com/pageza/recipebox/internal/api"
	"github.com/pageza/recipebox/internal/database"
	"github.com/pageza/recipebox/internal/hashing"
	"github.com/pageza/recipebox/internal/logger"
	"github.com/pageza/recipebox/internal/metrics"
	"github.com/pageza/recipebox/internal/middleware"
	"github.com/pageza/recipebox/internal/repository"
	"github.com/pageza/recipebox/internal/router"
	"github.com/pageza/recipebox/internal/server"
	"github.com/pageza/recipebox/internal/service"
	"github.com/pageza/recipebox/internal/session"
	"github.com/pageza/recipebox/internal/storage"
)

const migrateTimeout = time.Minute

// Module provides every component. The *config.Config is supplied by the
// caller.
var Module = fx.Options(
	InfrastructureModule,
	ServiceModule,
	HTTPModule,
	fx.WithLogger(func(log *zap.Logger) fxevent.Logger {
		return &fxevent.ZapLogger{Logger: log.Named("fx")}
	}),
)

// InfrastructureModule provides logging, storage and the session primitives.
var InfrastructureModule = fx.Provide(
	NewLogger,
	NewDatabase,
	NewRedis,
	repository.NewStore,
	NewHasher,
	metrics.New,
	session.NewSecret,
	NewSessions,
	NewFlash,
	NewPhotoStore,
)

// ServiceModule provides the business services.
var ServiceModule = fx.Provide(
	NewAuthService,
	NewRecipeService,
)

// HTTPModule provides the handlers, router and server and starts the
// server with the application.
var HTTPModule = fx.Options(
	fx.Provide(
		api.NewRenderer,
		api.NewAuthHandler,
		api.NewDashboardHandler,
		NewRecipeHandler,
		NewHealthHandler,
		NewRouter,
		NewServer,
	),
	fx.Invoke(registerServer),
)

func NewLogger(cfg *config.Config) (*zap.Logger, error) {
	return logger.New(logger.Config{
		Level:       cfg.Log.Level,
		Format:      cfg.Log.Format,
		Development: cfg.Environment == config.Development,
	})
}

// NewDatabase opens the database, brings the schema up to date and closes
// the handle on shutdown.
func NewDatabase(lc fx.Lifecycle, cfg *config.Config, log *zap.Logger) (*gorm.DB, error) {
	db, err := database.New(cfg.Database, log)
	if err != nil {
		return nil, err
	}

	ctx, cancel := context.WithTimeout(context.Background(), migrateTimeout)
	defer cancel()
	if err := database.RunMigrations(ctx, db, log); err != nil {
		database.Close(db)
		return nil, fmt.Errorf("migrate: %w", err)
	}

	lc.Append(fx.Hook{
		OnStop: func(context.Context) error {
			return database.Close(db)
		},
	})
	return db, nil
}

// NewRedis returns nil when Redis is not configured.
func NewRedis(lc fx.Lifecycle, cfg *config.Config, log *zap.Logger) (*redis.Client, error) {
	client, err := database.NewRedisClient(cfg.Redis, log)
	if err != nil || client == nil {
		return nil, err
	}
	lc.Append(fx.Hook{
		OnStop: func(context.Context) error {
			return client.Close()
		},
	})
	return client, nil
}

func NewHasher(cfg *config.Config) (hashing.Hasher, error) {
	m, err := hashing.NewDefaultManager(hashing.DriverName(cfg.Auth.Hasher), cfg.Auth.BcryptCost)
	if err != nil {
		return nil, err
	}
	return m, nil
}

func NewSessions(secret session.Secret, cfg *config.Config) *session.Manager {
	return session.NewManager(secret, session.Options{
		CookieName: cfg.Session.CookieName,
		TTL:        cfg.Session.TTL,
		Secure:     cfg.Session.Secure,
	})
}

func NewFlash(cfg *config.Config) *session.Flash {
	return session.NewFlash(cfg.Session.FlashCookieName, cfg.Session.Secure)
}

// NewPhotoStore returns a nil store when no bucket is configured, which
// turns photo uploads off.
func NewPhotoStore(cfg *config.Config, log *zap.Logger) (storage.PhotoStore, error) {
	if !cfg.Storage.Enabled() {
		log.Info("photo storage disabled")
		return nil, nil
	}
	client, err := config.NewS3Client(context.Background(), cfg.Storage)
	if err != nil {
		return nil, err
	}
	log.Info("photo storage enabled", zap.String("bucket", cfg.Storage.Bucket))
	return storage.NewS3PhotoStore(client, cfg.Storage.Bucket, cfg.Storage.PresignTTL), nil
}

func NewAuthService(store *repository.Store, hasher hashing.Hasher, cfg *config.Config, log *zap.Logger, m *metrics.Metrics) service.IAuthService {
	return service.NewAuthService(store, hasher, service.AuthOptions{
		RejectDuplicateEmails: cfg.Auth.RejectDuplicateEmails,
	}, log, m)
}

func NewRecipeService(store *repository.Store, photos storage.PhotoStore, log *zap.Logger, m *metrics.Metrics) service.IRecipeService {
	return service.NewRecipeService(store, photos, log, m)
}

func NewRecipeHandler(recipes service.IRecipeService, render *api.Renderer, cfg *config.Config, log *zap.Logger) *api.RecipeHandler {
	return api.NewRecipeHandler(recipes, render, cfg.Storage.MaxPhotoBytes, log)
}

func NewHealthHandler(db *gorm.DB, log *zap.Logger) (*api.HealthHandler, error) {
	checker, err := database.NewHealthChecker(db)
	if err != nil {
		return nil, err
	}
	return api.NewHealthHandler(checker, log), nil
}

// RouterParams collects the router's dependencies.
type RouterParams struct {
	fx.In

	Config    *config.Config
	Log       *zap.Logger
	Metrics   *metrics.Metrics
	Redis     *redis.Client
	Sessions  *session.Manager
	Render    *api.Renderer
	Auth      *api.AuthHandler
	Dashboard *api.DashboardHandler
	Recipes   *api.RecipeHandler
	Health    *api.HealthHandler
}

func NewRouter(p RouterParams) (*gin.Engine, error) {
	if p.Config.Environment == config.Production {
		gin.SetMode(gin.ReleaseMode)
	}

	opts := router.Options{AllowedOrigins: p.Config.Server.AllowedOrigins}
	if p.Config.Metrics.Enabled {
		opts.MetricsPath = p.Config.Metrics.Path
	}
	if rl := p.Config.RateLimit; rl.Enabled {
		opts.LoginLimiter = newLimiter(p.Redis, middleware.RateLimitConfig{
			Window:    rl.LoginWindow,
			Limit:     rl.LoginLimit,
			KeyPrefix: "rate_limit:login",
		})
		opts.CreateLimiter = newLimiter(p.Redis, middleware.RateLimitConfig{
			Window:    rl.RecipeCreateWindow,
			Limit:     rl.RecipeCreateLimit,
			KeyPrefix: "rate_limit:recipe_create",
		})
	}

	return router.SetupRouter(router.Handlers{
		Auth:      p.Auth,
		Dashboard: p.Dashboard,
		Recipes:   p.Recipes,
		Health:    p.Health,
	}, p.Render, p.Sessions, p.Metrics, p.Log, opts)
}

// newLimiter shares counters through Redis when it is configured.
func newLimiter(client *redis.Client, cfg middleware.RateLimitConfig) middleware.Limiter {
	if client != nil {
		return middleware.NewRedisLimiter(client, cfg)
	}
	return middleware.NewMemoryLimiter(cfg)
}

func NewServer(cfg *config.Config, engine *gin.Engine, log *zap.Logger) *server.Server {
	return server.New(cfg.Server, engine, log)
}

func registerServer(lc fx.Lifecycle, srv *server.Server) {
	lc.Append(fx.Hook{
		OnStart: func(context.Context) error {
			return srv.Start()
		},
		OnStop: func(ctx context.Context) error {
			return srv.Stop(ctx)
		},
	})
}
