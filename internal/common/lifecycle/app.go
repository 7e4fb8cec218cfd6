package lifecycle

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/redis/go-redis/v9"

	"go.venuehub.tech/internal/common/mongo"
	"go.venuehub.tech/internal/config"
)

// App holds initialized infrastructure that is guaranteed to be connected.
// Application wiring stays in the binary.
type App struct {
	Config *config.Config

	// Mongo is set when the store is MongoDB
	Mongo *mongo.Client

	// Redis is set when a Redis address is configured
	Redis *redis.Client

	cleanupFuncs []func() error
}

// AppOptions configures which infrastructure to initialize.
type AppOptions struct {
	// NeedsMongoDB connects MongoDB and creates its indexes
	NeedsMongoDB bool

	// NeedsRedis connects Redis when an address is configured
	NeedsRedis bool
}

// Initialize loads configuration and connects the requested
// infrastructure. The returned cleanup disconnects everything in reverse
// order.
//
// Usage:
//
//	app, cleanup, err := lifecycle.Initialize(ctx, lifecycle.AppOptions{
//	    NeedsMongoDB: cfg.Store == "mongo",
//	})
//	if err != nil {
//	    log.Fatal(err)
//	}
//	defer cleanup()
func Initialize(ctx context.Context, opts AppOptions) (*App, func(), error) {
	cfg, err := config.LoadWithFile()
	if err != nil {
		return nil, nil, fmt.Errorf("failed to load config: %w", err)
	}
	return InitializeWith(ctx, cfg, opts)
}

// InitializeWith is Initialize with an already loaded configuration.
func InitializeWith(ctx context.Context, cfg *config.Config, opts AppOptions) (*App, func(), error) {
	app := &App{Config: cfg}

	if opts.NeedsMongoDB {
		if err := app.initMongoDB(ctx); err != nil {
			app.Cleanup()
			return nil, nil, err
		}
	}

	if opts.NeedsRedis && cfg.Redis.Addr != "" {
		if err := app.initRedis(ctx); err != nil {
			app.Cleanup()
			return nil, nil, err
		}
	}

	return app, app.Cleanup, nil
}

// AddCleanup registers a cleanup function to be called on shutdown.
// Functions are called in reverse order of registration.
func (app *App) AddCleanup(fn func() error) {
	app.cleanupFuncs = append(app.cleanupFuncs, fn)
}

func (app *App) initMongoDB(ctx context.Context) error {
	client, err := mongo.Connect(ctx, app.Config.MongoDB)
	if err != nil {
		return err
	}
	app.Mongo = client
	app.AddCleanup(func() error {
		slog.Info("Disconnecting from MongoDB")
		return client.Disconnect(context.Background())
	})

	if err := mongo.NewIndexInitializer(client.Database()).Initialize(ctx); err != nil {
		return fmt.Errorf("failed to create indexes: %w", err)
	}
	return nil
}

func (app *App) initRedis(ctx context.Context) error {
	cfg := app.Config.Redis
	client := redis.NewClient(&redis.Options{
		Addr:     cfg.Addr,
		Password: cfg.Password,
		DB:       cfg.DB,
	})

	pingCtx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()
	if err := client.Ping(pingCtx).Err(); err != nil {
		client.Close()
		return fmt.Errorf("failed to ping Redis: %w", err)
	}

	app.Redis = client
	app.AddCleanup(func() error {
		slog.Info("Closing Redis client")
		return client.Close()
	})

	slog.Info("Connected to Redis", "addr", cfg.Addr)
	return nil
}

// Cleanup runs all cleanup functions in reverse order.
func (app *App) Cleanup() {
	for i := len(app.cleanupFuncs) - 1; i >= 0; i-- {
		if err := app.cleanupFuncs[i](); err != nil {
			slog.Error("Cleanup error", "error", err)
		}
	}
	app.cleanupFuncs = nil
}
