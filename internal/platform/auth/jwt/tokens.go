// Package jwt signs and verifies session tokens. A token carries the user's
// identity, tenant and resolved AccessProfile, and is verified with the
// public key alone.
package jwt

import (
	"crypto/rand"
	"crypto/sha256"
	"encoding/base64"
	"errors"
	"io"
	"time"

	"github.com/golang-jwt/jwt/v5"

	"go.venuehub.tech/internal/platform/authorization"
	"go.venuehub.tech/internal/platform/permission"
)

var (
	ErrInvalidToken  = errors.New("invalid token")
	ErrExpiredToken  = errors.New("token expired")
	ErrInvalidIssuer = errors.New("invalid issuer")
)

// SessionClaims are the claims of a session token
type SessionClaims struct {
	jwt.RegisteredClaims
	TenantID string                      `json:"tenantId,omitempty"`
	Roles    []string                    `json:"roles"`
	Profile  map[string]permission.Flags `json:"profile"`
}

// TokenService signs and verifies session tokens with RS256
type TokenService struct {
	keyManager         *KeyManager
	issuer             string
	sessionTokenExpiry time.Duration
	now                func() time.Time
}

// TokenServiceConfig holds configuration for the token service
type TokenServiceConfig struct {
	Issuer             string
	SessionTokenExpiry time.Duration
}

// NewTokenService creates a new token service
func NewTokenService(keyManager *KeyManager, cfg TokenServiceConfig) *TokenService {
	return &TokenService{
		keyManager:         keyManager,
		issuer:             cfg.Issuer,
		sessionTokenExpiry: cfg.SessionTokenExpiry,
		now:                time.Now,
	}
}

// TTL returns the fixed lifetime of session tokens
func (s *TokenService) TTL() time.Duration {
	return s.sessionTokenExpiry
}

// Sign signs a session. Missing timestamps are filled in from the clock and
// the configured TTL.
func (s *TokenService) Sign(session *authorization.Session) (string, error) {
	issuedAt := session.IssuedAt
	if issuedAt.IsZero() {
		issuedAt = s.now()
	}
	expiresAt := session.ExpiresAt
	if expiresAt.IsZero() {
		expiresAt = issuedAt.Add(s.sessionTokenExpiry)
	}

	claims := SessionClaims{
		RegisteredClaims: jwt.RegisteredClaims{
			Issuer:    s.issuer,
			Subject:   session.UserID,
			IssuedAt:  jwt.NewNumericDate(issuedAt),
			ExpiresAt: jwt.NewNumericDate(expiresAt),
		},
		TenantID: session.TenantID,
		Roles:    session.Roles,
		Profile:  session.Profile,
	}

	token := jwt.NewWithClaims(jwt.SigningMethodRS256, claims)
	token.Header["kid"] = s.keyManager.KeyID()
	return token.SignedString(s.keyManager.PrivateKey())
}

// Verify checks signature, issuer and expiry and returns the signed session.
func (s *TokenService) Verify(tokenString string) (*authorization.Session, error) {
	token, err := jwt.ParseWithClaims(tokenString, &SessionClaims{},
		func(token *jwt.Token) (interface{}, error) {
			return s.keyManager.PublicKey(), nil
		},
		jwt.WithValidMethods([]string{jwt.SigningMethodRS256.Alg()}),
		jwt.WithIssuer(s.issuer),
		jwt.WithExpirationRequired(),
		jwt.WithTimeFunc(s.now),
	)
	if err != nil {
		switch {
		case errors.Is(err, jwt.ErrTokenExpired):
			return nil, ErrExpiredToken
		case errors.Is(err, jwt.ErrTokenInvalidIssuer):
			return nil, ErrInvalidIssuer
		default:
			return nil, ErrInvalidToken
		}
	}

	claims, ok := token.Claims.(*SessionClaims)
	if !ok || !token.Valid || claims.Subject == "" {
		return nil, ErrInvalidToken
	}

	session := &authorization.Session{
		UserID:   claims.Subject,
		TenantID: claims.TenantID,
		Roles:    claims.Roles,
		Profile:  authorization.AccessProfile(claims.Profile),
	}
	if claims.IssuedAt != nil {
		session.IssuedAt = claims.IssuedAt.Time
	}
	session.ExpiresAt = claims.ExpiresAt.Time
	if session.Profile == nil {
		session.Profile = authorization.AccessProfile{}
	}
	return session, nil
}

// HashToken creates a SHA-256 hash of a one-time token for storage
func HashToken(token string) string {
	hash := sha256.Sum256([]byte(token))
	return base64.RawURLEncoding.EncodeToString(hash[:])
}

// GenerateResetToken generates a random one-time credential setup token
func GenerateResetToken() (string, error) {
	return generateRandomString(32)
}

func generateRandomString(length int) (string, error) {
	bytes := make([]byte, length)
	if _, err := io.ReadFull(rand.Reader, bytes); err != nil {
		return "", err
	}
	return base64.RawURLEncoding.EncodeToString(bytes), nil
}
