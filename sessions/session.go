// Package sessions encodes the signed in user, and optionally their Google
// credential, into a signed cookie.
package sessions

import (
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/jrsteele09/csv-sheet-sync/credentials"
)

// Session is the verified content of a session cookie. Exactly one of
// Credential and CredentialRef is set.
type Session struct {
	UserID        string
	Email         string
	Name          string
	Credential    *credentials.Credential // embedded mode
	CredentialRef string                  // store mode, key into a credentials.Store
	IssuedAt      time.Time
	ExpiresAt     time.Time
}

// User returns the identity held by the session
func (s Session) User() credentials.Identity {
	return credentials.Identity{ID: s.UserID, Email: s.Email, Name: s.Name}
}

// WithCredential returns a copy of s embedding cred
func (s Session) WithCredential(cred credentials.Credential) Session {
	s.Credential = &cred
	s.CredentialRef = ""
	return s
}

// sessionClaims is the JWT payload. Credential expiry is unix milliseconds.
type sessionClaims struct {
	Email            string `json:"email"`
	Name             string `json:"name"`
	AccessToken      string `json:"accessToken,omitempty"`
	RefreshToken     string `json:"refreshToken,omitempty"`
	CredentialExpiry int64  `json:"expiresAt,omitempty"`
	Scope            string `json:"scope,omitempty"`
	CredentialRef    string `json:"credRef,omitempty"`
	jwt.RegisteredClaims
}

func (c *sessionClaims) session() Session {
	s := Session{
		UserID:        c.Subject,
		Email:         c.Email,
		Name:          c.Name,
		CredentialRef: c.CredentialRef,
	}
	if c.IssuedAt != nil {
		s.IssuedAt = c.IssuedAt.Time
	}
	if c.ExpiresAt != nil {
		s.ExpiresAt = c.ExpiresAt.Time
	}
	if c.AccessToken != "" || c.RefreshToken != "" {
		s.Credential = &credentials.Credential{
			AccessToken:  c.AccessToken,
			RefreshToken: c.RefreshToken,
			ExpiresAt:    time.UnixMilli(c.CredentialExpiry),
			Scope:        c.Scope,
		}
	}
	return s
}
