// Package session carries session tokens over HTTP, either as a cookie set
// at login or as a Bearer credential.
package session

import (
	"net/http"
	"strings"
	"time"
)

// Config holds session cookie settings
type Config struct {
	CookieName string
	Secure     bool
	SameSite   http.SameSite
	Path       string
	Domain     string
}

// DefaultConfig returns the production cookie settings
func DefaultConfig() Config {
	return Config{
		CookieName: "VENUEHUB_SESSION",
		Secure:     true,
		SameSite:   http.SameSiteStrictMode,
		Path:       "/",
	}
}

// Manager reads and writes the session cookie
type Manager struct {
	config Config
	now    func() time.Time
}

// NewManager creates a new session manager
func NewManager(config Config) *Manager {
	if config.CookieName == "" {
		config.CookieName = DefaultConfig().CookieName
	}
	if config.Path == "" {
		config.Path = "/"
	}
	return &Manager{config: config, now: time.Now}
}

// SetSession stores the token in a cookie that expires with the token.
func (m *Manager) SetSession(w http.ResponseWriter, token string, expiresAt time.Time) {
	maxAge := int(expiresAt.Sub(m.now()).Seconds())
	if maxAge <= 0 {
		m.ClearSession(w)
		return
	}
	http.SetCookie(w, m.cookie(token, maxAge))
}

// ClearSession expires the session cookie
func (m *Manager) ClearSession(w http.ResponseWriter) {
	http.SetCookie(w, m.cookie("", -1))
}

func (m *Manager) cookie(value string, maxAge int) *http.Cookie {
	return &http.Cookie{
		Name:     m.config.CookieName,
		Value:    value,
		Path:     m.config.Path,
		Domain:   m.config.Domain,
		MaxAge:   maxAge,
		Secure:   m.config.Secure,
		HttpOnly: true,
		SameSite: m.config.SameSite,
	}
}

// Token returns the presented session token. An Authorization header wins
// over the cookie so that API clients are never shadowed by a stale browser
// session.
func (m *Manager) Token(r *http.Request) string {
	if token := BearerToken(r); token != "" {
		return token
	}
	if cookie, err := r.Cookie(m.config.CookieName); err == nil {
		return cookie.Value
	}
	return ""
}

// BearerToken extracts the token of a Bearer Authorization header
func BearerToken(r *http.Request) string {
	const prefix = "Bearer "
	auth := r.Header.Get("Authorization")
	if len(auth) <= len(prefix) || !strings.EqualFold(auth[:len(prefix)], prefix) {
		return ""
	}
	return strings.TrimSpace(auth[len(prefix):])
}

// ParseSameSite converts a config value to http.SameSite. Unknown values
// fall back to Strict.
func ParseSameSite(s string) http.SameSite {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "lax":
		return http.SameSiteLaxMode
	case "none":
		return http.SameSiteNoneMode
	default:
		return http.SameSiteStrictMode
	}
}
