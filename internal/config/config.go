package config

import (
	"os"
	"strconv"
	"strings"
	"time"

	"go.venuehub.tech/internal/common/secrets"
)

// Config holds all configuration for the VenueHub authorization service
type Config struct {
	HTTP         HTTPConfig         `toml:"http"`
	MongoDB      MongoDBConfig      `toml:"mongodb"`
	Redis        RedisConfig        `toml:"redis"`
	Auth         AuthConfig         `toml:"auth"`
	Authz        AuthzConfig        `toml:"authz"`
	Notification NotificationConfig `toml:"notification"`
	Secrets      secrets.Config     `toml:"secrets"`

	// Store selects the persistence backend: "mongo" or "memory"
	Store string `toml:"store"`

	// Development mode
	DevMode bool `toml:"dev_mode"`
}

// HTTPConfig holds HTTP server configuration
type HTTPConfig struct {
	Port        int      `toml:"port"`
	CORSOrigins []string `toml:"cors_origins"`
}

// MongoDBConfig holds MongoDB connection configuration
type MongoDBConfig struct {
	URI      string `toml:"uri"`
	Database string `toml:"database"`
}

// RedisConfig holds the entity lock backend. An empty Addr keeps locks in
// process, which is only safe for a single instance.
type RedisConfig struct {
	Addr        string        `toml:"addr"`
	Password    string        `toml:"password"`
	DB          int           `toml:"db"`
	LockTTL     time.Duration `toml:"lock_ttl"`
	LockTimeout time.Duration `toml:"lock_timeout"`
}

// AuthConfig holds authentication configuration
type AuthConfig struct {
	JWT     JWTConfig     `toml:"jwt"`
	Session SessionConfig `toml:"session"`

	// LoginAttemptsPerMinute and LoginBurst throttle attempts per account.
	LoginAttemptsPerMinute int `toml:"login_attempts_per_minute"`
	LoginBurst             int `toml:"login_burst"`

	// RequestsPerMinute limits /auth requests per client IP. Zero disables.
	RequestsPerMinute int `toml:"requests_per_minute"`
}

// JWTConfig holds JWT configuration. The signing key comes from
// SigningKeySecret when set, then PrivateKeyPath, then a development key.
type JWTConfig struct {
	Issuer             string        `toml:"issuer"`
	PrivateKeyPath     string        `toml:"private_key_path"`
	SigningKeySecret   string        `toml:"signing_key_secret"`
	DevKeyDir          string        `toml:"dev_key_dir"`
	SessionTokenExpiry time.Duration `toml:"session_token_expiry"`
}

// SessionConfig holds session cookie configuration
type SessionConfig struct {
	CookieName string `toml:"cookie_name"`
	Secure     bool   `toml:"secure"`
	SameSite   string `toml:"same_site"` // "Strict", "Lax", "None"
}

// AuthzConfig holds authorization policy settings
type AuthzConfig struct {
	// LevelByMethod evaluates every operation with the read/write/admin
	// level implied by the HTTP method instead of presence.
	LevelByMethod bool `toml:"level_by_method"`

	// EnforceAttenuation refuses sub-user grants the tenant admin lacks.
	EnforceAttenuation bool `toml:"enforce_attenuation"`

	ResetTokenTTL time.Duration `toml:"reset_token_ttl"`

	// CatalogFeatures are ensured at startup in addition to the platform
	// features.
	CatalogFeatures []string `toml:"catalog_features"`

	BootstrapAdminEmail    string `toml:"bootstrap_admin_email"`
	BootstrapAdminPassword string `toml:"bootstrap_admin_password"`
}

// NotificationConfig holds credential setup delivery settings
type NotificationConfig struct {
	// Transport is one of "log", "smtp", "nats", "sqs"
	Transport   string        `toml:"transport"`
	SetupURL    string        `toml:"setup_url"`
	QueueSize   int           `toml:"queue_size"`
	Workers     int           `toml:"workers"`
	SendTimeout time.Duration `toml:"send_timeout"`

	SMTP    SMTPConfig    `toml:"smtp"`
	NATS    NATSConfig    `toml:"nats"`
	SQS     SQSConfig     `toml:"sqs"`
	Breaker BreakerConfig `toml:"breaker"`
}

// SMTPConfig holds SMTP relay settings
type SMTPConfig struct {
	Host        string `toml:"host"`
	Port        int    `toml:"port"`
	Username    string `toml:"username"`
	Password    string `toml:"password"`
	FromAddress string `toml:"from_address"`
}

// NATSConfig holds NATS JetStream settings
type NATSConfig struct {
	URL           string `toml:"url"`
	StreamName    string `toml:"stream_name"`
	SubjectPrefix string `toml:"subject_prefix"`
}

// SQSConfig holds AWS SQS settings
type SQSConfig struct {
	QueueURL string `toml:"queue_url"`
	Region   string `toml:"region"`
	Endpoint string `toml:"endpoint"`
}

// BreakerConfig holds the delivery circuit breaker settings
type BreakerConfig struct {
	MinRequests  uint32        `toml:"min_requests"`
	FailureRatio float64       `toml:"failure_ratio"`
	Interval     time.Duration `toml:"interval"`
	Timeout      time.Duration `toml:"timeout"`
}

// Defaults returns the configuration used when nothing is set
func Defaults() *Config {
	return &Config{
		HTTP: HTTPConfig{
			Port:        8080,
			CORSOrigins: []string{"http://localhost:4200"},
		},
		MongoDB: MongoDBConfig{
			URI:      "mongodb://localhost:27017/?replicaSet=rs0&directConnection=true",
			Database: "venuehub",
		},
		Redis: RedisConfig{
			LockTTL:     15 * time.Second,
			LockTimeout: 5 * time.Second,
		},
		Auth: AuthConfig{
			JWT: JWTConfig{
				Issuer:             "venuehub",
				DevKeyDir:          ".jwt-keys",
				SessionTokenExpiry: 8 * time.Hour,
			},
			Session: SessionConfig{
				CookieName: "VENUEHUB_SESSION",
				Secure:     true,
				SameSite:   "Strict",
			},
			LoginAttemptsPerMinute: 5,
			LoginBurst:             10,
			RequestsPerMinute:      60,
		},
		Authz: AuthzConfig{
			EnforceAttenuation: true,
			ResetTokenTTL:      72 * time.Hour,
		},
		Notification: NotificationConfig{
			Transport:   "log",
			SetupURL:    "http://localhost:4200/setup-credentials",
			QueueSize:   1000,
			Workers:     2,
			SendTimeout: 10 * time.Second,
			SMTP: SMTPConfig{
				Port:        587,
				FromAddress: "no-reply@venuehub.tech",
			},
			NATS: NATSConfig{
				URL:           "nats://localhost:4222",
				StreamName:    "VENUEHUB_NOTIFICATIONS",
				SubjectPrefix: "venuehub.notifications",
			},
			SQS: SQSConfig{
				Region: "us-east-1",
			},
			Breaker: BreakerConfig{
				MinRequests:  5,
				FailureRatio: 0.5,
				Interval:     time.Minute,
				Timeout:      30 * time.Second,
			},
		},
		Secrets: secrets.DefaultConfig(),
		Store:   "mongo",
	}
}

// Load loads configuration from environment variables with sensible defaults
func Load() (*Config, error) {
	cfg := Defaults()
	applyEnv(cfg)
	return cfg, nil
}

// applyEnv overrides cfg with every variable that is set.
func applyEnv(cfg *Config) {
	cfg.HTTP.Port = getEnvInt("HTTP_PORT", cfg.HTTP.Port)
	cfg.HTTP.CORSOrigins = getEnvSlice("CORS_ORIGINS", cfg.HTTP.CORSOrigins)

	cfg.MongoDB.URI = getEnv("MONGODB_URI", cfg.MongoDB.URI)
	cfg.MongoDB.Database = getEnv("MONGODB_DATABASE", cfg.MongoDB.Database)
	cfg.Store = getEnv("STORE", cfg.Store)

	cfg.Redis.Addr = getEnv("REDIS_ADDR", cfg.Redis.Addr)
	cfg.Redis.Password = getEnv("REDIS_PASSWORD", cfg.Redis.Password)
	cfg.Redis.DB = getEnvInt("REDIS_DB", cfg.Redis.DB)
	cfg.Redis.LockTTL = getEnvDuration("LOCK_TTL", cfg.Redis.LockTTL)
	cfg.Redis.LockTimeout = getEnvDuration("LOCK_TIMEOUT", cfg.Redis.LockTimeout)

	jwt := &cfg.Auth.JWT
	jwt.Issuer = getEnv("JWT_ISSUER", jwt.Issuer)
	jwt.PrivateKeyPath = getEnv("JWT_PRIVATE_KEY_PATH", jwt.PrivateKeyPath)
	jwt.SigningKeySecret = getEnv("JWT_SIGNING_KEY_SECRET", jwt.SigningKeySecret)
	jwt.DevKeyDir = getEnv("JWT_DEV_KEY_DIR", jwt.DevKeyDir)
	jwt.SessionTokenExpiry = getEnvDuration("JWT_SESSION_TOKEN_EXPIRY", jwt.SessionTokenExpiry)

	cfg.Auth.Session.CookieName = getEnv("SESSION_COOKIE_NAME", cfg.Auth.Session.CookieName)
	cfg.Auth.Session.Secure = getEnvBool("SESSION_SECURE", cfg.Auth.Session.Secure)
	cfg.Auth.Session.SameSite = getEnv("SESSION_SAME_SITE", cfg.Auth.Session.SameSite)
	cfg.Auth.LoginAttemptsPerMinute = getEnvInt("LOGIN_ATTEMPTS_PER_MINUTE", cfg.Auth.LoginAttemptsPerMinute)
	cfg.Auth.LoginBurst = getEnvInt("LOGIN_BURST", cfg.Auth.LoginBurst)
	cfg.Auth.RequestsPerMinute = getEnvInt("AUTH_REQUESTS_PER_MINUTE", cfg.Auth.RequestsPerMinute)

	cfg.Authz.LevelByMethod = getEnvBool("AUTHZ_LEVEL_BY_METHOD", cfg.Authz.LevelByMethod)
	cfg.Authz.EnforceAttenuation = getEnvBool("AUTHZ_ENFORCE_ATTENUATION", cfg.Authz.EnforceAttenuation)
	cfg.Authz.ResetTokenTTL = getEnvDuration("RESET_TOKEN_TTL", cfg.Authz.ResetTokenTTL)
	cfg.Authz.CatalogFeatures = getEnvSlice("CATALOG_FEATURES", cfg.Authz.CatalogFeatures)
	cfg.Authz.BootstrapAdminEmail = getEnv("BOOTSTRAP_ADMIN_EMAIL", cfg.Authz.BootstrapAdminEmail)
	cfg.Authz.BootstrapAdminPassword = getEnv("BOOTSTRAP_ADMIN_PASSWORD", cfg.Authz.BootstrapAdminPassword)

	n := &cfg.Notification
	n.Transport = getEnv("NOTIFICATION_TRANSPORT", n.Transport)
	n.SetupURL = getEnv("NOTIFICATION_SETUP_URL", n.SetupURL)
	n.QueueSize = getEnvInt("NOTIFICATION_QUEUE_SIZE", n.QueueSize)
	n.Workers = getEnvInt("NOTIFICATION_WORKERS", n.Workers)
	n.SendTimeout = getEnvDuration("NOTIFICATION_SEND_TIMEOUT", n.SendTimeout)
	n.SMTP.Host = getEnv("SMTP_HOST", n.SMTP.Host)
	n.SMTP.Port = getEnvInt("SMTP_PORT", n.SMTP.Port)
	n.SMTP.Username = getEnv("SMTP_USERNAME", n.SMTP.Username)
	n.SMTP.Password = getEnv("SMTP_PASSWORD", n.SMTP.Password)
	n.SMTP.FromAddress = getEnv("SMTP_FROM_ADDRESS", n.SMTP.FromAddress)
	n.NATS.URL = getEnv("NATS_URL", n.NATS.URL)
	n.NATS.StreamName = getEnv("NATS_STREAM", n.NATS.StreamName)
	n.NATS.SubjectPrefix = getEnv("NATS_SUBJECT_PREFIX", n.NATS.SubjectPrefix)
	n.SQS.QueueURL = getEnv("SQS_QUEUE_URL", n.SQS.QueueURL)
	n.SQS.Region = getEnv("AWS_REGION", n.SQS.Region)
	n.SQS.Endpoint = getEnv("SQS_ENDPOINT", n.SQS.Endpoint)

	s := secrets.LoadConfigFromEnv()
	if _, ok := os.LookupEnv("VENUEHUB_SECRETS_PROVIDER"); ok {
		cfg.Secrets = s
	}

	cfg.DevMode = getEnvBool("VENUEHUB_DEV", cfg.DevMode)
}

// Helper functions for environment variable parsing. Each returns
// defaultValue when the variable is unset or does not parse.

func getEnv(key, defaultValue string) string {
	if value, ok := os.LookupEnv(key); ok {
		return value
	}
	return defaultValue
}

func getEnvInt(key string, defaultValue int) int {
	if value, ok := os.LookupEnv(key); ok {
		if intVal, err := strconv.Atoi(value); err == nil {
			return intVal
		}
	}
	return defaultValue
}

func getEnvBool(key string, defaultValue bool) bool {
	if value, ok := os.LookupEnv(key); ok {
		if boolVal, err := strconv.ParseBool(value); err == nil {
			return boolVal
		}
	}
	return defaultValue
}

func getEnvDuration(key string, defaultValue time.Duration) time.Duration {
	if value, ok := os.LookupEnv(key); ok {
		if duration, err := time.ParseDuration(value); err == nil {
			return duration
		}
	}
	return defaultValue
}

func getEnvSlice(key string, defaultValue []string) []string {
	value, ok := os.LookupEnv(key)
	if !ok {
		return defaultValue
	}
	var out []string
	for _, part := range strings.Split(value, ",") {
		if part = strings.TrimSpace(part); part != "" {
			out = append(out, part)
		}
	}
	return out
}
