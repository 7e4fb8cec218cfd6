// VenueHub Authorization API
//
// Serves login, the feature catalog, roles and grants, enterprise
// provisioning and user lifecycle for the VenueHub marketplace.
package main

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"os"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"go.opentelemetry.io/contrib/instrumentation/net/http/otelhttp"

	"go.venuehub.tech/internal/common/health"
	"go.venuehub.tech/internal/common/lifecycle"
	"go.venuehub.tech/internal/common/lock"
	"go.venuehub.tech/internal/common/secrets"
	"go.venuehub.tech/internal/config"
	"go.venuehub.tech/internal/platform"
	"go.venuehub.tech/internal/platform/api"
	"go.venuehub.tech/internal/platform/auth"
	"go.venuehub.tech/internal/platform/auth/jwt"
	"go.venuehub.tech/internal/platform/auth/local"
	"go.venuehub.tech/internal/platform/auth/session"
	"go.venuehub.tech/internal/platform/authorization"
	enterpriseops "go.venuehub.tech/internal/platform/enterprise/operations"
	"go.venuehub.tech/internal/platform/notification"
	"go.venuehub.tech/internal/platform/store"
)

var (
	version   = "dev"
	buildTime = "unknown"
)

func main() {
	setupLogging()

	slog.Info("Starting VenueHub Authorization API",
		"version", version,
		"build_time", buildTime,
		"component", "platform")

	ctx := context.Background()

	// ========================================
	// 1. INFRASTRUCTURE INITIALIZATION
	// ========================================
	cfg, err := config.LoadWithFile()
	if err != nil {
		slog.Error("Failed to load config", "error", err)
		os.Exit(1)
	}

	app, cleanup, err := lifecycle.InitializeWith(ctx, cfg, lifecycle.AppOptions{
		NeedsMongoDB: cfg.Store == "mongo",
		NeedsRedis:   true,
	})
	if err != nil {
		slog.Error("Failed to initialize", "error", err)
		os.Exit(1)
	}
	defer cleanup()

	// ========================================
	// 2. COMPONENT WIRING
	// ========================================
	st := setupStore(app)
	locker := setupLocker(app)
	passwords := local.NewPasswordService()

	keyManager, err := setupKeys(ctx, cfg)
	if err != nil {
		slog.Error("Failed to initialize signing keys", "error", err)
		os.Exit(1)
	}

	tokenService := jwt.NewTokenService(keyManager, jwt.TokenServiceConfig{
		Issuer:             cfg.Auth.JWT.Issuer,
		SessionTokenExpiry: cfg.Auth.JWT.SessionTokenExpiry,
	})
	resolver := authorization.NewResolver(st.Roles, st.Grants, st.Features)
	issuer := auth.NewIssuer(resolver, tokenService, cfg.Auth.JWT.SessionTokenExpiry)
	throttle := auth.NewThrottle(cfg.Auth.LoginAttemptsPerMinute, cfg.Auth.LoginBurst)

	registry := authorization.NewRegistry(slog.Default())
	authorization.RegisterDefaults(registry)
	guard := authorization.NewGuard(registry, tokenService, cfg.Authz.LevelByMethod)

	if _, err := platform.Bootstrap(ctx, st, locker, passwords, platform.BootstrapConfig{
		CatalogFeatures: cfg.Authz.CatalogFeatures,
		AdminEmail:      cfg.Authz.BootstrapAdminEmail,
		AdminPassword:   cfg.Authz.BootstrapAdminPassword,
	}); err != nil {
		slog.Error("Failed to bootstrap catalog", "error", err)
		os.Exit(1)
	}

	transport, err := setupTransport(ctx, cfg.Notification)
	if err != nil {
		slog.Error("Failed to initialize notification transport", "error", err)
		os.Exit(1)
	}
	if closer, ok := transport.(io.Closer); ok {
		app.AddCleanup(closer.Close)
	}
	dispatcher := notification.NewDispatcher(transport, notification.DispatcherConfig{
		QueueSize:          cfg.Notification.QueueSize,
		Workers:            cfg.Notification.Workers,
		SendTimeout:        cfg.Notification.SendTimeout,
		BreakerMinRequests: cfg.Notification.Breaker.MinRequests,
		BreakerRatio:       cfg.Notification.Breaker.FailureRatio,
		BreakerInterval:    cfg.Notification.Breaker.Interval,
		BreakerTimeout:     cfg.Notification.Breaker.Timeout,
	})

	apiHandlers := api.NewHandlers(api.Services{
		Store:     st,
		Locker:    locker,
		Passwords: passwords,
		Login:     auth.NewLoginService(st.Users, issuer, passwords, throttle),
		Sessions: session.NewManager(session.Config{
			CookieName: cfg.Auth.Session.CookieName,
			Secure:     cfg.Auth.Session.Secure,
			SameSite:   session.ParseSameSite(cfg.Auth.Session.SameSite),
			Path:       "/",
		}),
		Keys:     keyManager,
		Guard:    guard,
		Notifier: dispatcher,
		Tenancy: enterpriseops.Config{
			EnforceAttenuation: cfg.Authz.EnforceAttenuation,
			ResetTokenTTL:      cfg.Authz.ResetTokenTTL,
		},
		AuthRequestsPerMinute: cfg.Auth.RequestsPerMinute,
	})

	healthChecker := setupHealth(app, transport.Name(), dispatcher)
	httpRouter := setupHTTPRouter(cfg, healthChecker, apiHandlers)

	httpServer := &http.Server{
		Addr:         fmt.Sprintf(":%d", cfg.HTTP.Port),
		Handler:      otelhttp.NewHandler(httpRouter, "venuehub-api"),
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 15 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	// ========================================
	// 3. SERVICE STARTUP
	// ========================================
	httpService := lifecycle.NewHTTPService("platform-api", httpServer)
	dispatcherService := lifecycle.NewServiceFunc("notification-dispatcher", nil, dispatcher.Close).
		WithHealth(func() error {
			if dispatcher.State().String() == "open" {
				return fmt.Errorf("%s circuit open", transport.Name())
			}
			return nil
		})

	slog.Info("Authorization API ready", "port", cfg.HTTP.Port, "store", cfg.Store)

	// ========================================
	// 4. RUN UNTIL SHUTDOWN
	// ========================================
	// The dispatcher is registered first so that it is stopped last and
	// drains whatever the API queued while shutting down.
	if err := lifecycle.Run(ctx, dispatcherService, httpService); err != nil {
		slog.Error("Service error", "error", err)
		cleanup()
		os.Exit(1)
	}

	slog.Info("VenueHub Authorization API stopped")
}

// setupLogging configures the slog default logger.
func setupLogging() {
	logLevel := slog.LevelInfo
	if os.Getenv("VENUEHUB_DEV") == "true" {
		logLevel = slog.LevelDebug
	}
	opts := &slog.HandlerOptions{Level: logLevel}

	var handler slog.Handler = slog.NewTextHandler(os.Stderr, opts)
	if os.Getenv("LOG_FORMAT") == "json" {
		handler = slog.NewJSONHandler(os.Stderr, opts)
	}
	slog.SetDefault(slog.New(handler))
}

// setupStore picks MongoDB or the in-process store.
func setupStore(app *lifecycle.App) *store.Store {
	if app.Mongo != nil {
		return store.NewMongo(app.Mongo.Raw(), app.Mongo.Database())
	}
	slog.Warn("Using in-memory store; data is lost on restart")
	st, _ := store.NewMemory()
	return st
}

// setupLocker uses Redis when connected so that several instances serialize
// on the same keys.
func setupLocker(app *lifecycle.App) lock.Locker {
	if app.Redis == nil {
		slog.Warn("Redis not configured; entity locks are local to this instance")
		return lock.NewLocalLocker()
	}
	return lock.NewRedisLocker(app.Redis, lock.RedisConfig{
		TTL:         app.Config.Redis.LockTTL,
		WaitTimeout: app.Config.Redis.LockTimeout,
	})
}

// setupKeys loads the RS256 signing key from the secrets provider, a PEM
// file, or a generated development key, in that order.
func setupKeys(ctx context.Context, cfg *config.Config) (*jwt.KeyManager, error) {
	km := jwt.NewKeyManager()

	if name := cfg.Auth.JWT.SigningKeySecret; name != "" {
		provider, err := secrets.NewProvider(ctx, cfg.Secrets)
		if err != nil {
			return nil, fmt.Errorf("secrets provider: %w", err)
		}
		if closer, ok := provider.(io.Closer); ok {
			defer closer.Close()
		}

		pem, err := provider.Get(ctx, name)
		if err != nil {
			return nil, fmt.Errorf("read signing key %q from %s: %w", name, provider.Name(), err)
		}
		if err := km.LoadPEM([]byte(pem)); err != nil {
			return nil, err
		}
		slog.Info("Loaded signing key", "source", provider.Name(), "kid", km.KeyID())
		return km, nil
	}

	if err := km.Initialize(cfg.Auth.JWT.PrivateKeyPath, cfg.Auth.JWT.DevKeyDir); err != nil {
		return nil, err
	}
	return km, nil
}

// setupTransport builds the configured notification transport.
func setupTransport(ctx context.Context, cfg config.NotificationConfig) (notification.Transport, error) {
	switch cfg.Transport {
	case "smtp":
		return notification.NewSMTPTransport(notification.SMTPConfig{
			Host:        cfg.SMTP.Host,
			Port:        cfg.SMTP.Port,
			Username:    cfg.SMTP.Username,
			Password:    cfg.SMTP.Password,
			FromAddress: cfg.SMTP.FromAddress,
			SetupURL:    cfg.SetupURL,
		}), nil
	case "nats":
		return notification.NewNATSTransport(ctx, notification.NATSConfig{
			URL:           cfg.NATS.URL,
			StreamName:    cfg.NATS.StreamName,
			SubjectPrefix: cfg.NATS.SubjectPrefix,
		})
	case "sqs":
		return notification.NewSQSTransport(ctx, notification.SQSConfig{
			QueueURL: cfg.SQS.QueueURL,
			Region:   cfg.SQS.Region,
			Endpoint: cfg.SQS.Endpoint,
		})
	case "log", "":
		return notification.NewLogTransport(), nil
	default:
		return nil, fmt.Errorf("unknown notification transport %q", cfg.Transport)
	}
}

// setupHealth registers readiness checks for the connected infrastructure.
func setupHealth(app *lifecycle.App, transport string, dispatcher *notification.Dispatcher) *health.Checker {
	checker := health.NewChecker()
	if app.Mongo != nil {
		checker.AddReadinessCheck(health.MongoDBCheck(app.Mongo.Ping))
	}
	if app.Redis != nil {
		checker.AddReadinessCheck(health.RedisCheck(func(ctx context.Context) error {
			return app.Redis.Ping(ctx).Err()
		}))
	}
	checker.AddReadinessCheck(health.BreakerCheck(transport, func() string {
		return dispatcher.State().String()
	}))
	return checker
}

// setupHTTPRouter creates the HTTP router with all routes and middleware.
func setupHTTPRouter(cfg *config.Config, healthChecker *health.Checker, apiHandlers *api.Handlers) http.Handler {
	r := chi.NewRouter()

	// Middleware stack
	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	r.Use(middleware.Logger)
	r.Use(middleware.Recoverer)
	r.Use(middleware.Timeout(60 * time.Second))

	r.Use(cors.Handler(cors.Options{
		AllowedOrigins:   cfg.HTTP.CORSOrigins,
		AllowedMethods:   []string{"GET", "POST", "PUT", "DELETE", "OPTIONS"},
		AllowedHeaders:   []string{"Accept", "Authorization", "Content-Type", "X-Request-ID", "X-Correlation-ID"},
		ExposedHeaders:   []string{"X-Request-ID"},
		AllowCredentials: true,
		MaxAge:           300,
	}))

	// Health endpoints
	r.Get("/q/health", healthChecker.HandleHealth)
	r.Get("/q/health/live", healthChecker.HandleLive)
	r.Get("/q/health/ready", healthChecker.HandleReady)

	// Prometheus metrics
	r.Handle("/metrics", promhttp.Handler())
	r.Handle("/q/metrics", promhttp.Handler())

	apiHandlers.Mount(r)

	return r
}
