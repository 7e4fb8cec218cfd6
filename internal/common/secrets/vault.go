package secrets

import (
	"context"
	"errors"
	"fmt"
	"strings"

	vault "github.com/hashicorp/vault/api"
)

// VaultProvider reads secrets from a KV version 2 engine. Each secret is a
// document at mount/path/key whose "value" field holds the secret.
type VaultProvider struct {
	client *vault.Client
	mount  string
	path   string
}

// NewVaultProvider creates a new HashiCorp Vault provider
func NewVaultProvider(cfg Config) (*VaultProvider, error) {
	if cfg.VaultAddr == "" {
		return nil, fmt.Errorf("%w: vault address is required", ErrProviderError)
	}

	vaultCfg := vault.DefaultConfig()
	vaultCfg.Address = cfg.VaultAddr

	client, err := vault.NewClient(vaultCfg)
	if err != nil {
		return nil, fmt.Errorf("failed to create Vault client: %w", err)
	}
	if cfg.VaultToken != "" {
		client.SetToken(cfg.VaultToken)
	}
	if cfg.VaultNamespace != "" {
		client.SetNamespace(cfg.VaultNamespace)
	}

	mount := cfg.VaultMount
	if mount == "" {
		mount = DefaultConfig().VaultMount
	}

	return &VaultProvider{
		client: client,
		mount:  mount,
		path:   strings.Trim(cfg.VaultPath, "/"),
	}, nil
}

// Get retrieves a secret from Vault
func (p *VaultProvider) Get(ctx context.Context, key string) (string, error) {
	secret, err := p.client.KVv2(p.mount).Get(ctx, p.secretPath(key))
	if err != nil {
		if errors.Is(err, vault.ErrSecretNotFound) {
			return "", ErrSecretNotFound
		}
		return "", fmt.Errorf("%w: %v", ErrProviderError, err)
	}
	if secret == nil || secret.Data == nil {
		return "", ErrSecretNotFound
	}

	value, ok := secret.Data["value"].(string)
	if !ok {
		return "", ErrSecretNotFound
	}
	return value, nil
}

func (p *VaultProvider) secretPath(key string) string {
	if p.path == "" {
		return key
	}
	return p.path + "/" + key
}

// Name returns the provider name
func (p *VaultProvider) Name() string {
	return "vault"
}
