package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoadDefaults(t *testing.T) {
	cfg, err := Load()
	require.NoError(t, err)

	assert.Equal(t, 8080, cfg.HTTP.Port)
	assert.Equal(t, "mongo", cfg.Store)
	assert.True(t, cfg.Authz.EnforceAttenuation)
	assert.Equal(t, 72*time.Hour, cfg.Authz.ResetTokenTTL)
	assert.Equal(t, "log", cfg.Notification.Transport)
}

func TestLoadEnvOverrides(t *testing.T) {
	t.Setenv("HTTP_PORT", "9090")
	t.Setenv("STORE", "memory")
	t.Setenv("CATALOG_FEATURES", "ticketing, reporting,")
	t.Setenv("AUTHZ_ENFORCE_ATTENUATION", "false")
	t.Setenv("JWT_SESSION_TOKEN_EXPIRY", "not-a-duration")

	cfg, err := Load()
	require.NoError(t, err)

	assert.Equal(t, 9090, cfg.HTTP.Port)
	assert.Equal(t, "memory", cfg.Store)
	assert.Equal(t, []string{"ticketing", "reporting"}, cfg.Authz.CatalogFeatures)
	assert.False(t, cfg.Authz.EnforceAttenuation)
	assert.Equal(t, 8*time.Hour, cfg.Auth.JWT.SessionTokenExpiry, "unparsable values keep the default")
}

func TestLoadWithFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "venuehub.toml")
	require.NoError(t, os.WriteFile(path, []byte(`
store = "memory"

[mongodb]
database = "from-file"

[auth.jwt]
session_token_expiry = "2h"

[notification]
transport = "sqs"

[notification.sqs]
queue_url = "https://sqs.example/queue"
`), 0o644))

	t.Setenv("VENUEHUB_CONFIG", path)
	t.Setenv("MONGODB_DATABASE", "from-env")

	cfg, err := LoadWithFile()
	require.NoError(t, err)

	assert.Equal(t, "memory", cfg.Store)
	assert.Equal(t, "from-env", cfg.MongoDB.Database, "environment wins over the file")
	assert.Equal(t, 2*time.Hour, cfg.Auth.JWT.SessionTokenExpiry)
	assert.Equal(t, "sqs", cfg.Notification.Transport)
	assert.Equal(t, "https://sqs.example/queue", cfg.Notification.SQS.QueueURL)
	assert.Equal(t, "venuehub", cfg.Auth.JWT.Issuer, "keys absent from the file keep defaults")
}

func TestLoadFromFileRejectsUnknownKeys(t *testing.T) {
	path := filepath.Join(t.TempDir(), "bad.toml")
	require.NoError(t, os.WriteFile(path, []byte("[http]\nprot = 1\n"), 0o644))

	_, err := LoadFromFile(path)
	assert.Error(t, err)
}

func TestExampleConfigParses(t *testing.T) {
	path := filepath.Join(t.TempDir(), "example.toml")
	require.NoError(t, WriteExampleConfig(path))

	cfg, err := LoadFromFile(path)
	require.NoError(t, err)
	assert.Equal(t, []string{"seating-plans", "ticketing", "reporting"}, cfg.Authz.CatalogFeatures)
	assert.Equal(t, time.Minute, cfg.Notification.Breaker.Interval)
}
