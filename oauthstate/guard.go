// Package oauthstate issues and verifies the single-use anti-forgery token
// carried through the OAuth authorization redirect.
package oauthstate

import (
	"crypto/rand"
	"crypto/subtle"
	"encoding/hex"
	"fmt"
	"io"
	"net/http"
	"time"
)

const (
	// CookieName is the cookie holding the issued state
	CookieName = "oauth_state"
	// DefaultTTL bounds how long a login attempt may take
	DefaultTTL = 10 * time.Minute

	tokenBytes = 24
)

// Guard binds state tokens to a short-lived cookie
type Guard struct {
	ttl    time.Duration
	random io.Reader
}

// NewGuard creates a guard whose cookies live for ttl
func NewGuard(ttl time.Duration) *Guard {
	if ttl <= 0 {
		ttl = DefaultTTL
	}
	return &Guard{
		ttl:    ttl,
		random: rand.Reader,
	}
}

// Issue generates a new state token, sets it as a cookie and returns it
func (g *Guard) Issue(w http.ResponseWriter) (string, error) {
	b := make([]byte, tokenBytes)
	if _, err := io.ReadFull(g.random, b); err != nil {
		return "", fmt.Errorf("[oauthstate Issue] failed to generate state: %w", err)
	}
	token := hex.EncodeToString(b)

	http.SetCookie(w, &http.Cookie{
		Name:     CookieName,
		Value:    token,
		Path:     "/",
		HttpOnly: true,
		Secure:   true,
		SameSite: http.SameSiteLaxMode,
		MaxAge:   int(g.ttl.Seconds()),
	})
	return token, nil
}

// Verify compares candidate with the state cookie in constant time. A match
// deletes the cookie so the same state cannot be replayed.
func (g *Guard) Verify(w http.ResponseWriter, r *http.Request, candidate string) bool {
	if candidate == "" {
		return false
	}
	cookie, err := r.Cookie(CookieName)
	if err != nil || cookie.Value == "" {
		return false
	}
	if subtle.ConstantTimeCompare([]byte(cookie.Value), []byte(candidate)) != 1 {
		return false
	}

	http.SetCookie(w, &http.Cookie{
		Name:     CookieName,
		Value:    "",
		Path:     "/",
		HttpOnly: true,
		Secure:   true,
		SameSite: http.SameSiteLaxMode,
		MaxAge:   -1,
	})
	return true
}
