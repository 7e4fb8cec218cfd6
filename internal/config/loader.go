package config

import (
	"fmt"
	"os"

	"github.com/BurntSushi/toml"
)

// ConfigPaths lists the paths to search for config files
var ConfigPaths = []string{
	"config.toml",
	"venuehub.toml",
	"./config/config.toml",
	"/etc/venuehub/config.toml",
}

// LoadFromFile loads defaults overlaid with a TOML file, without consulting
// the environment.
func LoadFromFile(path string) (*Config, error) {
	cfg := Defaults()
	if err := decodeFile(path, cfg); err != nil {
		return nil, err
	}
	return cfg, nil
}

// LoadWithFile loads defaults, then the config file if one is found, then
// environment variables. Later sources win.
func LoadWithFile() (*Config, error) {
	cfg := Defaults()

	if path := findConfigFile(); path != "" {
		if err := decodeFile(path, cfg); err != nil {
			return nil, fmt.Errorf("failed to load config from %s: %w", path, err)
		}
	}

	applyEnv(cfg)
	return cfg, nil
}

func findConfigFile() string {
	if path := os.Getenv("VENUEHUB_CONFIG"); path != "" {
		return path
	}
	for _, path := range ConfigPaths {
		if _, err := os.Stat(path); err == nil {
			return path
		}
	}
	return ""
}

// decodeFile decodes onto cfg so that keys absent from the file keep their
// current values. Unknown keys are rejected.
func decodeFile(path string, cfg *Config) error {
	md, err := toml.DecodeFile(path, cfg)
	if err != nil {
		return fmt.Errorf("failed to parse config file: %w", err)
	}
	if undecoded := md.Undecoded(); len(undecoded) > 0 {
		return fmt.Errorf("unknown config keys: %v", undecoded)
	}
	return nil
}

// WriteExampleConfig writes an example configuration file
func WriteExampleConfig(path string) error {
	return os.WriteFile(path, []byte(exampleConfig), 0644)
}

const exampleConfig = `# VenueHub authorization service
# Environment variables override these settings

store = "mongo"  # mongo or memory
dev_mode = false

[http]
port = 8080
cors_origins = ["http://localhost:4200"]

[mongodb]
uri = "mongodb://localhost:27017/?replicaSet=rs0&directConnection=true"
database = "venuehub"

[redis]
addr = ""  # empty keeps entity locks in process
lock_ttl = "15s"
lock_timeout = "5s"

[auth]
login_attempts_per_minute = 5
login_burst = 10
requests_per_minute = 60

[auth.jwt]
issuer = "venuehub"
private_key_path = ""
signing_key_secret = ""  # read through [secrets] when set
session_token_expiry = "8h"

[auth.session]
cookie_name = "VENUEHUB_SESSION"
secure = true
same_site = "Strict"

[authz]
level_by_method = false
enforce_attenuation = true
reset_token_ttl = "72h"
catalog_features = ["seating-plans", "ticketing", "reporting"]
bootstrap_admin_email = ""
bootstrap_admin_password = ""

[notification]
transport = "log"  # log, smtp, nats or sqs
setup_url = "http://localhost:4200/setup-credentials"
queue_size = 1000
workers = 2
send_timeout = "10s"

[notification.smtp]
host = ""
port = 587
from_address = "no-reply@venuehub.tech"

[notification.nats]
url = "nats://localhost:4222"
stream_name = "VENUEHUB_NOTIFICATIONS"
subject_prefix = "venuehub.notifications"

[notification.sqs]
queue_url = ""
region = "us-east-1"

[notification.breaker]
min_requests = 5
failure_ratio = 0.5
interval = "1m"
timeout = "30s"

[secrets]
provider = "env"  # env, aws-sm, vault or gcp-sm
env_prefix = "VENUEHUB_SECRET_"
aws_prefix = "/venuehub/"
vault_mount = "secret"
vault_path = "venuehub"
gcp_prefix = "venuehub-"
`
