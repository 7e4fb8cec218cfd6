// Package secrets reads deployment secrets, such as the token signing key,
// from one of several backends.
package secrets

import (
	"context"
	"errors"
	"fmt"
	"os"
	"strings"
)

var (
	ErrSecretNotFound = errors.New("secret not found")
	ErrProviderError  = errors.New("provider error")
)

// Provider is a read-only secret backend
type Provider interface {
	// Get retrieves a secret by key
	Get(ctx context.Context, key string) (string, error)

	// Name returns the provider name for logging
	Name() string
}

// ProviderType represents the type of secret provider
type ProviderType string

const (
	ProviderTypeEnv   ProviderType = "env"
	ProviderTypeAWSSM ProviderType = "aws-sm"
	ProviderTypeVault ProviderType = "vault"
	ProviderTypeGCPSM ProviderType = "gcp-sm"
)

// Config holds configuration for the secrets provider
type Config struct {
	Provider ProviderType `toml:"provider"`

	// Env provider
	EnvPrefix string `toml:"env_prefix"`

	// AWS Secrets Manager
	AWSRegion    string `toml:"aws_region"`
	AWSPrefix    string `toml:"aws_prefix"`
	AWSEndpoint  string `toml:"aws_endpoint"`
	AWSAccessKey string `toml:"aws_access_key"`
	AWSSecretKey string `toml:"aws_secret_key"`

	// HashiCorp Vault
	VaultAddr      string `toml:"vault_addr"`
	VaultToken     string `toml:"vault_token"`
	VaultMount     string `toml:"vault_mount"`
	VaultPath      string `toml:"vault_path"`
	VaultNamespace string `toml:"vault_namespace"`

	// GCP Secret Manager
	GCPProject string `toml:"gcp_project"`
	GCPPrefix  string `toml:"gcp_prefix"`
}

// DefaultConfig returns a default configuration
func DefaultConfig() Config {
	return Config{
		Provider:   ProviderTypeEnv,
		EnvPrefix:  "VENUEHUB_SECRET_",
		AWSPrefix:  "/venuehub/",
		VaultMount: "secret",
		VaultPath:  "venuehub",
		GCPPrefix:  "venuehub-",
	}
}

// LoadConfigFromEnv loads configuration from environment variables
func LoadConfigFromEnv() Config {
	cfg := DefaultConfig()

	if p := os.Getenv("VENUEHUB_SECRETS_PROVIDER"); p != "" {
		cfg.Provider = ProviderType(strings.ToLower(p))
	}
	if p := os.Getenv("VENUEHUB_SECRETS_ENV_PREFIX"); p != "" {
		cfg.EnvPrefix = p
	}

	cfg.AWSRegion = firstEnv("VENUEHUB_SECRETS_AWS_REGION", "AWS_REGION")
	if p := os.Getenv("VENUEHUB_SECRETS_AWS_PREFIX"); p != "" {
		cfg.AWSPrefix = p
	}
	cfg.AWSEndpoint = os.Getenv("VENUEHUB_SECRETS_AWS_ENDPOINT")

	cfg.VaultAddr = firstEnv("VENUEHUB_SECRETS_VAULT_ADDR", "VAULT_ADDR")
	cfg.VaultToken = firstEnv("VENUEHUB_SECRETS_VAULT_TOKEN", "VAULT_TOKEN")
	if m := os.Getenv("VENUEHUB_SECRETS_VAULT_MOUNT"); m != "" {
		cfg.VaultMount = m
	}
	if p := os.Getenv("VENUEHUB_SECRETS_VAULT_PATH"); p != "" {
		cfg.VaultPath = p
	}
	cfg.VaultNamespace = os.Getenv("VENUEHUB_SECRETS_VAULT_NAMESPACE")

	cfg.GCPProject = firstEnv("VENUEHUB_SECRETS_GCP_PROJECT", "GOOGLE_CLOUD_PROJECT")
	if p := os.Getenv("VENUEHUB_SECRETS_GCP_PREFIX"); p != "" {
		cfg.GCPPrefix = p
	}

	return cfg
}

// NewProvider creates the provider selected by cfg.Provider
func NewProvider(ctx context.Context, cfg Config) (Provider, error) {
	switch cfg.Provider {
	case ProviderTypeEnv, "":
		prefix := cfg.EnvPrefix
		if prefix == "" {
			prefix = DefaultConfig().EnvPrefix
		}
		return NewEnvProvider(prefix), nil
	case ProviderTypeAWSSM:
		return NewAWSSecretsManagerProvider(ctx, cfg)
	case ProviderTypeVault:
		return NewVaultProvider(cfg)
	case ProviderTypeGCPSM:
		return NewGCPSecretManagerProvider(ctx, cfg)
	default:
		return nil, fmt.Errorf("unknown provider type: %s", cfg.Provider)
	}
}

// EnvProvider reads secrets from environment variables. The key
// "jwt-signing-key" is read from PREFIX + "JWT_SIGNING_KEY".
type EnvProvider struct {
	prefix string
	lookup func(string) (string, bool)
}

// NewEnvProvider creates a new environment variable provider
func NewEnvProvider(prefix string) *EnvProvider {
	return &EnvProvider{prefix: prefix, lookup: os.LookupEnv}
}

// Get retrieves a secret from environment variables
func (p *EnvProvider) Get(ctx context.Context, key string) (string, error) {
	value, ok := p.lookup(p.envKey(key))
	if !ok || value == "" {
		return "", ErrSecretNotFound
	}
	return value, nil
}

func (p *EnvProvider) envKey(key string) string {
	return p.prefix + strings.ToUpper(strings.NewReplacer("-", "_", ".", "_", "/", "_").Replace(key))
}

// Name returns the provider name
func (p *EnvProvider) Name() string {
	return "env"
}

func firstEnv(keys ...string) string {
	for _, k := range keys {
		if v := os.Getenv(k); v != "" {
			return v
		}
	}
	return ""
}
