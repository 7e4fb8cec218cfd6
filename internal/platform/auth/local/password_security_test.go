package local

import (
	"errors"
	"strings"
	"testing"

	"golang.org/x/crypto/bcrypt"
)

/*
THREAT MODEL: password credentials

Sub-users and tenant admins set their password through the one-time reset
flow, and signup users set it directly. Stored hashes must resist offline
attack and verification must not be bypassable. These tests cover:

1. Weak passwords are refused before hashing
2. Hashes are salted bcrypt at the configured cost
3. Verification is exact (case, whitespace, unicode)
4. Bytes past the bcrypt input limit still count
5. Empty and corrupt inputs never verify
6. Emails are normalized before lookups
*/

func testService() *PasswordService {
	return NewPasswordServiceWithCost(bcrypt.MinCost)
}

func TestPasswordSecurity_Strength(t *testing.T) {
	svc := testService()

	tests := []struct {
		password string
		ok       bool
	}{
		{"", false},
		{"Ab1!", false},
		{"alllowercase", false},
		{"ALLUPPER123", false},
		{"lowerUPPER", false},
		{"lower123!", true},
		{"Str0ngPass", true},
		{"Pässwört1", true},
		{"12345678", false},
	}
	for _, tt := range tests {
		t.Run(tt.password, func(t *testing.T) {
			err := svc.ValidatePasswordStrength(tt.password)
			if tt.ok && err != nil {
				t.Errorf("expected %q to be accepted: %v", tt.password, err)
			}
			if !tt.ok && !errors.Is(err, ErrPasswordTooWeak) {
				t.Errorf("expected %q to be refused, got %v", tt.password, err)
			}
		})
	}
}

func TestPasswordSecurity_SaltedHashes(t *testing.T) {
	svc := testService()

	first, err := svc.HashPassword("Str0ngPass!")
	if err != nil {
		t.Fatalf("hash failed: %v", err)
	}
	second, _ := svc.HashPassword("Str0ngPass!")

	if first == second {
		t.Error("identical passwords must produce different hashes")
	}
	if !strings.HasPrefix(first, "$2a$") {
		t.Errorf("expected bcrypt hash, got %q", first)
	}
	cost, err := bcrypt.Cost([]byte(first))
	if err != nil || cost != bcrypt.MinCost {
		t.Errorf("expected cost %d, got %d (%v)", bcrypt.MinCost, cost, err)
	}
}

func TestPasswordSecurity_ExactVerification(t *testing.T) {
	svc := testService()
	hash, _ := svc.HashPassword("Str0ngPass!")

	if err := svc.VerifyPassword("Str0ngPass!", hash); err != nil {
		t.Errorf("correct password must verify: %v", err)
	}
	for _, wrong := range []string{"str0ngpass!", "Str0ngPass! ", " Str0ngPass!", "Str0ngPass"} {
		if err := svc.VerifyPassword(wrong, hash); !errors.Is(err, ErrPasswordMismatch) {
			t.Errorf("VerifyPassword(%q) = %v, want ErrPasswordMismatch", wrong, err)
		}
	}
}

func TestPasswordSecurity_LongPasswords(t *testing.T) {
	svc := testService()
	base := strings.Repeat("a", 80) + "B1!"
	hash, err := svc.HashPassword(base)
	if err != nil {
		t.Fatalf("hash failed: %v", err)
	}

	if err := svc.VerifyPassword(base, hash); err != nil {
		t.Errorf("long password must verify: %v", err)
	}
	differentTail := strings.Repeat("a", 80) + "C2@"
	if err := svc.VerifyPassword(differentTail, hash); err == nil {
		t.Error("passwords differing past byte 72 must not verify")
	}
}

func TestPasswordSecurity_EmptyAndCorruptInputs(t *testing.T) {
	svc := testService()
	hash, _ := svc.HashPassword("Str0ngPass!")

	if _, err := svc.HashPassword(""); !errors.Is(err, ErrInvalidPassword) {
		t.Errorf("empty password must not hash, got %v", err)
	}
	if err := svc.VerifyPassword("", hash); err == nil {
		t.Error("empty password must not verify")
	}
	if err := svc.VerifyPassword("Str0ngPass!", ""); err == nil {
		t.Error("empty hash must not verify")
	}
	if err := svc.VerifyPassword("Str0ngPass!", "not-a-bcrypt-hash"); err == nil {
		t.Error("corrupt hash must not verify")
	}
}

func TestPasswordSecurity_SpendVerification(t *testing.T) {
	svc := testService()
	svc.SpendVerification("anything")
	svc.SpendVerification("")
	if svc.dummyHash == nil {
		t.Error("dummy hash must be prepared on first use")
	}
}

func TestPasswordSecurity_CostClamping(t *testing.T) {
	if got := NewPasswordServiceWithCost(1).cost; got != DefaultBcryptCost {
		t.Errorf("cost below minimum must fall back to default, got %d", got)
	}
	if got := NewPasswordServiceWithCost(99).cost; got != bcrypt.MaxCost {
		t.Errorf("cost above maximum must clamp, got %d", got)
	}
}

func TestValidateEmail(t *testing.T) {
	tests := []struct {
		in   string
		want string
		ok   bool
	}{
		{"  Admin@Acme.COM ", "admin@acme.com", true},
		{"user@example.org", "user@example.org", true},
		{"not-an-email", "", false},
		{"", "", false},
		{"@acme.com", "", false},
	}
	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			got, err := ValidateEmail(tt.in)
			if tt.ok {
				if err != nil || got != tt.want {
					t.Errorf("ValidateEmail(%q) = %q, %v; want %q", tt.in, got, err, tt.want)
				}
				return
			}
			if !errors.Is(err, ErrInvalidEmail) {
				t.Errorf("ValidateEmail(%q) must fail, got %v", tt.in, err)
			}
		})
	}
}
