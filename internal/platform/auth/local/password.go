// Package local implements password credentials: hashing, strength rules and
// email normalization.
package local

import (
	"crypto/sha256"
	"encoding/base64"
	"errors"
	"strings"
	"sync"
	"unicode"

	"github.com/go-playground/validator/v10"
	"golang.org/x/crypto/bcrypt"
)

var (
	ErrInvalidPassword  = errors.New("invalid password")
	ErrPasswordMismatch = errors.New("password mismatch")
	ErrPasswordTooWeak  = errors.New("password does not meet requirements")
	ErrInvalidEmail     = errors.New("invalid email address")
)

const (
	DefaultBcryptCost = 10
	MinPasswordLength = 8

	// bcrypt ignores input past 72 bytes.
	bcryptInputLimit = 72
)

// PasswordService hashes and verifies passwords with bcrypt
type PasswordService struct {
	cost int

	dummyOnce sync.Once
	dummyHash []byte
}

// NewPasswordService creates a password service with the default cost
func NewPasswordService() *PasswordService {
	return NewPasswordServiceWithCost(DefaultBcryptCost)
}

// NewPasswordServiceWithCost creates a password service with a custom cost,
// clamped to the range bcrypt accepts.
func NewPasswordServiceWithCost(cost int) *PasswordService {
	switch {
	case cost < bcrypt.MinCost:
		cost = DefaultBcryptCost
	case cost > bcrypt.MaxCost:
		cost = bcrypt.MaxCost
	}
	return &PasswordService{cost: cost}
}

// HashPassword returns a salted bcrypt hash
func (s *PasswordService) HashPassword(password string) (string, error) {
	if password == "" {
		return "", ErrInvalidPassword
	}
	hash, err := bcrypt.GenerateFromPassword(bcryptInput(password), s.cost)
	if err != nil {
		return "", err
	}
	return string(hash), nil
}

// VerifyPassword returns nil if password matches hash
func (s *PasswordService) VerifyPassword(password, hash string) error {
	if password == "" || hash == "" {
		return ErrPasswordMismatch
	}
	err := bcrypt.CompareHashAndPassword([]byte(hash), bcryptInput(password))
	if errors.Is(err, bcrypt.ErrMismatchedHashAndPassword) {
		return ErrPasswordMismatch
	}
	return err
}

// SpendVerification burns the time of one verification. Login calls it for
// unknown emails so that response timing does not reveal which accounts
// exist.
func (s *PasswordService) SpendVerification(password string) {
	s.dummyOnce.Do(func() {
		s.dummyHash, _ = bcrypt.GenerateFromPassword([]byte("venuehub-timing-equalizer"), s.cost)
	})
	_ = bcrypt.CompareHashAndPassword(s.dummyHash, bcryptInput(password))
}

// bcryptInput pre-hashes long passwords with SHA-256 so that bytes past the
// bcrypt limit still count.
func bcryptInput(password string) []byte {
	raw := []byte(password)
	if len(raw) <= bcryptInputLimit {
		return raw
	}
	sum := sha256.Sum256(raw)
	return []byte(base64.StdEncoding.EncodeToString(sum[:]))
}

// ValidatePasswordStrength requires MinPasswordLength characters from at
// least three of: upper case, lower case, digits, symbols.
func (s *PasswordService) ValidatePasswordStrength(password string) error {
	if len([]rune(password)) < MinPasswordLength {
		return ErrPasswordTooWeak
	}

	classes := map[string]bool{}
	for _, r := range password {
		switch {
		case unicode.IsUpper(r):
			classes["upper"] = true
		case unicode.IsLower(r):
			classes["lower"] = true
		case unicode.IsNumber(r):
			classes["digit"] = true
		case unicode.IsPunct(r) || unicode.IsSymbol(r):
			classes["symbol"] = true
		}
	}
	if len(classes) < 3 {
		return ErrPasswordTooWeak
	}
	return nil
}

var emailValidator = validator.New()

// NormalizeEmail lowercases and trims an email address
func NormalizeEmail(email string) string {
	return strings.ToLower(strings.TrimSpace(email))
}

// ValidateEmail normalizes and checks an email address
func ValidateEmail(email string) (string, error) {
	normalized := NormalizeEmail(email)
	if err := emailValidator.Var(normalized, "required,email"); err != nil {
		return "", ErrInvalidEmail
	}
	return normalized, nil
}
