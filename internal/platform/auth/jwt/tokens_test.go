package jwt

import (
	"crypto/x509"
	"encoding/pem"
	"errors"
	"strings"
	"testing"
	"time"

	"github.com/golang-jwt/jwt/v5"

	"go.venuehub.tech/internal/platform/authorization"
	"go.venuehub.tech/internal/platform/permission"
)

/*
THREAT MODEL: session token integrity

The access guard trusts the profile inside a token without consulting the
store. Anyone able to forge or extend a token gains every capability they
write into it. These tests cover:

1. Round trip: the signed claims come back unchanged
2. Tampering: a modified payload fails signature verification
3. Expiry: tokens are refused after their signed lifetime
4. Algorithm confusion: "none" and HMAC-with-public-key tokens are refused
5. Issuer: tokens from another issuer are refused
6. Foreign key: tokens signed by a different key are refused
*/

func newTestService(t *testing.T) *TokenService {
	t.Helper()
	km := NewKeyManager()
	if err := km.Initialize("", ""); err != nil {
		t.Fatalf("failed to initialize keys: %v", err)
	}
	return NewTokenService(km, TokenServiceConfig{Issuer: "venuehub", SessionTokenExpiry: time.Hour})
}

func testSession() *authorization.Session {
	return &authorization.Session{
		UserID:   "u1",
		TenantID: "e1",
		Roles:    []string{"r1", "r2"},
		Profile: authorization.AccessProfile{
			"vendor": {Read: true, Write: true},
		},
	}
}

func TestSignVerify_RoundTrip(t *testing.T) {
	svc := newTestService(t)

	token, err := svc.Sign(testSession())
	if err != nil {
		t.Fatalf("sign failed: %v", err)
	}

	got, err := svc.Verify(token)
	if err != nil {
		t.Fatalf("verify failed: %v", err)
	}
	if got.UserID != "u1" || got.TenantID != "e1" {
		t.Errorf("unexpected identity %+v", got)
	}
	if len(got.Roles) != 2 {
		t.Errorf("expected 2 roles, got %v", got.Roles)
	}
	if got.Profile["vendor"] != (permission.Flags{Read: true, Write: true}) {
		t.Errorf("profile not preserved: %+v", got.Profile)
	}
	if d := got.ExpiresAt.Sub(got.IssuedAt); d != time.Hour {
		t.Errorf("expected lifetime of one hour, got %v", d)
	}
}

func TestVerify_TamperedPayload(t *testing.T) {
	svc := newTestService(t)
	token, _ := svc.Sign(testSession())

	parts := strings.Split(token, ".")
	if len(parts) != 3 {
		t.Fatalf("unexpected token shape")
	}

	forged := jwt.NewWithClaims(jwt.SigningMethodRS256, SessionClaims{
		RegisteredClaims: jwt.RegisteredClaims{
			Issuer:    "venuehub",
			Subject:   "u1",
			ExpiresAt: jwt.NewNumericDate(time.Now().Add(time.Hour)),
		},
		Profile: map[string]permission.Flags{"platform-administration": {Admin: true}},
	})
	forgedString, _ := forged.SigningString()
	forgedParts := strings.Split(forgedString, ".")

	tampered := parts[0] + "." + forgedParts[1] + "." + parts[2]
	if _, err := svc.Verify(tampered); !errors.Is(err, ErrInvalidToken) {
		t.Errorf("expected ErrInvalidToken for tampered payload, got %v", err)
	}
}

func TestVerify_Expired(t *testing.T) {
	svc := newTestService(t)
	session := testSession()
	session.IssuedAt = time.Now().Add(-2 * time.Hour)
	session.ExpiresAt = time.Now().Add(-time.Hour)

	token, err := svc.Sign(session)
	if err != nil {
		t.Fatalf("sign failed: %v", err)
	}
	if _, err := svc.Verify(token); !errors.Is(err, ErrExpiredToken) {
		t.Errorf("expected ErrExpiredToken, got %v", err)
	}
}

func TestVerify_AlgorithmConfusion(t *testing.T) {
	svc := newTestService(t)
	claims := SessionClaims{
		RegisteredClaims: jwt.RegisteredClaims{
			Issuer:    "venuehub",
			Subject:   "attacker",
			ExpiresAt: jwt.NewNumericDate(time.Now().Add(time.Hour)),
		},
	}

	t.Run("none", func(t *testing.T) {
		token, err := jwt.NewWithClaims(jwt.SigningMethodNone, claims).SignedString(jwt.UnsafeAllowNoneSignatureType)
		if err != nil {
			t.Fatalf("failed to build token: %v", err)
		}
		if _, err := svc.Verify(token); !errors.Is(err, ErrInvalidToken) {
			t.Errorf("expected ErrInvalidToken, got %v", err)
		}
	})

	t.Run("hmac keyed with public key", func(t *testing.T) {
		pubBytes, _ := x509.MarshalPKIXPublicKey(svc.keyManager.PublicKey())
		pubPEM := pem.EncodeToMemory(&pem.Block{Type: "PUBLIC KEY", Bytes: pubBytes})
		token, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString(pubPEM)
		if err != nil {
			t.Fatalf("failed to build token: %v", err)
		}
		if _, err := svc.Verify(token); !errors.Is(err, ErrInvalidToken) {
			t.Errorf("expected ErrInvalidToken, got %v", err)
		}
	})
}

func TestVerify_WrongIssuer(t *testing.T) {
	svc := newTestService(t)
	other := NewTokenService(svc.keyManager, TokenServiceConfig{Issuer: "someone-else", SessionTokenExpiry: time.Hour})

	token, _ := other.Sign(testSession())
	if _, err := svc.Verify(token); !errors.Is(err, ErrInvalidIssuer) {
		t.Errorf("expected ErrInvalidIssuer, got %v", err)
	}
}

func TestVerify_ForeignKey(t *testing.T) {
	svc := newTestService(t)
	foreign := newTestService(t)

	token, _ := foreign.Sign(testSession())
	if _, err := svc.Verify(token); !errors.Is(err, ErrInvalidToken) {
		t.Errorf("expected ErrInvalidToken, got %v", err)
	}
}

func TestVerify_Garbage(t *testing.T) {
	svc := newTestService(t)
	for _, token := range []string{"", "not-a-token", "a.b.c"} {
		if _, err := svc.Verify(token); !errors.Is(err, ErrInvalidToken) {
			t.Errorf("Verify(%q): expected ErrInvalidToken, got %v", token, err)
		}
	}
}

func TestKeyManager_LoadPEM(t *testing.T) {
	source := NewKeyManager()
	if err := source.Initialize("", ""); err != nil {
		t.Fatalf("init: %v", err)
	}
	data := pem.EncodeToMemory(&pem.Block{
		Type:  "RSA PRIVATE KEY",
		Bytes: x509.MarshalPKCS1PrivateKey(source.PrivateKey()),
	})

	km := NewKeyManager()
	if err := km.LoadPEM(data); err != nil {
		t.Fatalf("LoadPEM failed: %v", err)
	}
	if km.KeyID() != source.KeyID() {
		t.Errorf("key id mismatch: %s vs %s", km.KeyID(), source.KeyID())
	}

	if err := km.LoadPEM([]byte("garbage")); !errors.Is(err, ErrInvalidKeyFormat) {
		t.Errorf("expected ErrInvalidKeyFormat, got %v", err)
	}

	jwks := km.GetJWKS()
	if len(jwks.Keys) != 1 || jwks.Keys[0].E != "AQAB" {
		t.Errorf("unexpected JWKS %+v", jwks)
	}
}

func TestHashToken(t *testing.T) {
	token, err := GenerateResetToken()
	if err != nil {
		t.Fatalf("generate: %v", err)
	}
	if HashToken(token) != HashToken(token) {
		t.Error("hash must be deterministic")
	}
	if HashToken(token) == token {
		t.Error("hash must differ from the token")
	}
	other, _ := GenerateResetToken()
	if other == token {
		t.Error("tokens must be unique")
	}
}
