// Package credentials exchanges, renews and stores the delegated Google
// credentials used for every spreadsheet call.
package credentials

import "time"

// Credential is the access/refresh token pair for one Google account
type Credential struct {
	AccessToken  string    `json:"accessToken"`
	RefreshToken string    `json:"refreshToken"`
	ExpiresAt    time.Time `json:"expiresAt"`
	Scope        string    `json:"scope,omitempty"`
}

// ExpiresWithin reports whether the access token expires less than d after now
func (c Credential) ExpiresWithin(d time.Duration, now time.Time) bool {
	return c.ExpiresAt.Sub(now) < d
}

// StoredCredential is the value kept in a Store, keyed by UserID
type StoredCredential struct {
	UserID string `json:"userId"`
	Email  string `json:"email"`
	Name   string `json:"name"`
	Credential
}

// Identity is the authenticated Google account
type Identity struct {
	ID    string `json:"id"`
	Email string `json:"email"`
	Name  string `json:"name"`
}

// Tokens is the result of a token grant
type Tokens struct {
	AccessToken  string
	RefreshToken string
	ExpiresIn    int64 // seconds
	Scope        string
}

// Credential converts the grant into a credential expiring ExpiresIn after now
func (t Tokens) Credential(now time.Time) Credential {
	return Credential{
		AccessToken:  t.AccessToken,
		RefreshToken: t.RefreshToken,
		ExpiresAt:    now.Add(time.Duration(t.ExpiresIn) * time.Second),
		Scope:        t.Scope,
	}
}
