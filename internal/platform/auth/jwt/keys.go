package jwt

import (
	"crypto/rand"
	"crypto/rsa"
	"crypto/sha256"
	"crypto/x509"
	"encoding/base64"
	"encoding/pem"
	"errors"
	"fmt"
	"log/slog"
	"math/big"
	"os"
	"path/filepath"
	"sync"
)

var (
	ErrKeyNotFound      = errors.New("key not found")
	ErrInvalidKeyFormat = errors.New("invalid key format")
)

// KeyManager holds the RSA key pair that signs session tokens
type KeyManager struct {
	mu         sync.RWMutex
	privateKey *rsa.PrivateKey
	publicKey  *rsa.PublicKey
	keyID      string
}

// NewKeyManager creates a new key manager
func NewKeyManager() *KeyManager {
	return &KeyManager{}
}

// Initialize loads the private key from a file, falling back to a dev key
// directory (generated on first use) and finally to an ephemeral key.
func (km *KeyManager) Initialize(privateKeyPath, devKeyDir string) error {
	if privateKeyPath != "" {
		data, err := os.ReadFile(privateKeyPath)
		if err == nil {
			if err = km.LoadPEM(data); err == nil {
				slog.Info("Loaded JWT signing key", "path", privateKeyPath, "keyId", km.KeyID())
				return nil
			}
		}
		slog.Warn("Failed to load JWT signing key, trying dev keys", "error", err, "path", privateKeyPath)
	}

	if devKeyDir != "" {
		path := filepath.Join(devKeyDir, "private.pem")
		if data, err := os.ReadFile(path); err == nil && km.LoadPEM(data) == nil {
			slog.Info("Loaded JWT dev key", "keyId", km.KeyID(), "dir", devKeyDir)
			return nil
		}

		slog.Info("Generating new JWT dev key", "dir", devKeyDir)
		if err := km.generateAndSave(path); err != nil {
			return fmt.Errorf("failed to generate dev key: %w", err)
		}
		return nil
	}

	slog.Warn("Generating ephemeral JWT key (tokens will not survive a restart)")
	return km.generate()
}

// LoadPEM installs a PEM-encoded RSA private key (PKCS#1 or PKCS#8), e.g.
// one fetched from a secrets provider.
func (km *KeyManager) LoadPEM(data []byte) error {
	block, _ := pem.Decode(data)
	if block == nil {
		return ErrInvalidKeyFormat
	}

	privateKey, err := x509.ParsePKCS1PrivateKey(block.Bytes)
	if err != nil {
		key, err8 := x509.ParsePKCS8PrivateKey(block.Bytes)
		if err8 != nil {
			return fmt.Errorf("failed to parse private key: %w", err8)
		}
		var ok bool
		if privateKey, ok = key.(*rsa.PrivateKey); !ok {
			return ErrInvalidKeyFormat
		}
	}

	km.install(privateKey)
	return nil
}

func (km *KeyManager) generate() error {
	privateKey, err := rsa.GenerateKey(rand.Reader, 2048)
	if err != nil {
		return fmt.Errorf("failed to generate RSA key: %w", err)
	}
	km.install(privateKey)
	return nil
}

func (km *KeyManager) generateAndSave(path string) error {
	if err := os.MkdirAll(filepath.Dir(path), 0700); err != nil {
		return fmt.Errorf("failed to create key directory: %w", err)
	}
	if err := km.generate(); err != nil {
		return err
	}

	privPEM := pem.EncodeToMemory(&pem.Block{
		Type:  "RSA PRIVATE KEY",
		Bytes: x509.MarshalPKCS1PrivateKey(km.PrivateKey()),
	})
	if err := os.WriteFile(path, privPEM, 0600); err != nil {
		return fmt.Errorf("failed to write private key: %w", err)
	}
	return nil
}

func (km *KeyManager) install(privateKey *rsa.PrivateKey) {
	pubBytes, _ := x509.MarshalPKIXPublicKey(&privateKey.PublicKey)
	hash := sha256.Sum256(pubBytes)

	km.mu.Lock()
	defer km.mu.Unlock()
	km.privateKey = privateKey
	km.publicKey = &privateKey.PublicKey
	km.keyID = base64.RawURLEncoding.EncodeToString(hash[:8])
}

// PrivateKey returns the private key for signing
func (km *KeyManager) PrivateKey() *rsa.PrivateKey {
	km.mu.RLock()
	defer km.mu.RUnlock()
	return km.privateKey
}

// PublicKey returns the public key for verification
func (km *KeyManager) PublicKey() *rsa.PublicKey {
	km.mu.RLock()
	defer km.mu.RUnlock()
	return km.publicKey
}

// KeyID returns the key ID placed in the kid header
func (km *KeyManager) KeyID() string {
	km.mu.RLock()
	defer km.mu.RUnlock()
	return km.keyID
}

// JWKS represents a JSON Web Key Set
type JWKS struct {
	Keys []JWK `json:"keys"`
}

// JWK represents a JSON Web Key
type JWK struct {
	Kty string `json:"kty"`
	Alg string `json:"alg"`
	Use string `json:"use"`
	Kid string `json:"kid"`
	N   string `json:"n"`
	E   string `json:"e"`
}

// GetJWKS publishes the verification key so that other services can check
// session tokens without calling back.
func (km *KeyManager) GetJWKS() *JWKS {
	km.mu.RLock()
	defer km.mu.RUnlock()

	if km.publicKey == nil {
		return &JWKS{Keys: []JWK{}}
	}

	return &JWKS{
		Keys: []JWK{{
			Kty: "RSA",
			Alg: "RS256",
			Use: "sig",
			Kid: km.keyID,
			N:   base64.RawURLEncoding.EncodeToString(km.publicKey.N.Bytes()),
			E:   base64.RawURLEncoding.EncodeToString(big.NewInt(int64(km.publicKey.E)).Bytes()),
		}},
	}
}
