package sessions

import (
	"errors"
	"net/http"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
	apperrors "github.com/jrsteele09/csv-sheet-sync/internal/errors"
)

const (
	// CookieName is the cookie carrying the signed session
	CookieName = "session"
	// DefaultDuration is how long a session stays valid
	DefaultDuration = 7 * 24 * time.Hour
)

// NowTimeFunc returns the current time. It can be overridden in tests.
var NowTimeFunc = time.Now

// Codec issues and verifies session tokens
type Codec struct {
	signer   *HMACsigner
	duration time.Duration
}

// NewCodec creates a codec signing with a key derived from secret. An empty
// secret yields a codec that rejects every session.
func NewCodec(secret string, duration time.Duration) *Codec {
	if duration <= 0 {
		duration = DefaultDuration
	}
	signer, _ := NewHMACSigner(secret)
	return &Codec{signer: signer, duration: duration}
}

// Issue signs s. IssuedAt and ExpiresAt are set from the current time.
func (c *Codec) Issue(s Session) (string, error) {
	if c.signer == nil {
		return "", apperrors.ErrMissingSecret
	}
	if s.UserID == "" {
		return "", apperrors.NewValidationError("sub", "session requires a user id")
	}

	now := NowTimeFunc()
	claims := sessionClaims{
		Email: s.Email,
		Name:  s.Name,
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   s.UserID,
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(c.duration)),
			ID:        uuid.NewString(),
		},
	}
	if s.Credential != nil {
		claims.AccessToken = s.Credential.AccessToken
		claims.RefreshToken = s.Credential.RefreshToken
		claims.CredentialExpiry = s.Credential.ExpiresAt.UnixMilli()
		claims.Scope = s.Credential.Scope
	} else {
		claims.CredentialRef = s.CredentialRef
	}

	return c.signer.Sign(&claims)
}

// Verify checks the algorithm, signature and expiry of token. Every failure
// is an AuthenticationError.
func (c *Codec) Verify(token string) (Session, error) {
	if c.signer == nil {
		return Session{}, &apperrors.AuthenticationError{Cause: apperrors.ErrMissingSecret}
	}

	var claims sessionClaims
	_, err := jwt.ParseWithClaims(token, &claims, c.signer.GetVerificationKey,
		jwt.WithValidMethods([]string{c.signer.GetSigningMethod().Alg()}),
		jwt.WithTimeFunc(NowTimeFunc),
		jwt.WithExpirationRequired(),
	)
	switch {
	case errors.Is(err, jwt.ErrTokenExpired):
		return Session{}, &apperrors.AuthenticationError{Cause: apperrors.ErrSessionExpired}
	case err != nil:
		return Session{}, &apperrors.AuthenticationError{Cause: apperrors.Wrapf(apperrors.ErrInvalidSession, "%v", err)}
	}

	s := claims.session()
	if s.UserID == "" || (s.Credential == nil && s.CredentialRef == "") {
		return Session{}, &apperrors.AuthenticationError{Cause: apperrors.ErrInvalidSession}
	}
	return s, nil
}

// RequireSession verifies the session cookie of r
func (c *Codec) RequireSession(r *http.Request) (Session, error) {
	cookie, err := r.Cookie(CookieName)
	if err != nil || cookie.Value == "" {
		return Session{}, &apperrors.AuthenticationError{Cause: apperrors.ErrNoSession}
	}
	return c.Verify(cookie.Value)
}

// SetCookie stores token in the session cookie
func (c *Codec) SetCookie(w http.ResponseWriter, token string) {
	http.SetCookie(w, &http.Cookie{
		Name:     CookieName,
		Value:    token,
		Path:     "/",
		HttpOnly: true,
		Secure:   true,
		SameSite: http.SameSiteLaxMode,
		MaxAge:   int(c.duration.Seconds()),
	})
}

// ClearCookie deletes the session cookie
func (c *Codec) ClearCookie(w http.ResponseWriter) {
	http.SetCookie(w, &http.Cookie{
		Name:     CookieName,
		Value:    "",
		Path:     "/",
		HttpOnly: true,
		Secure:   true,
		SameSite: http.SameSiteLaxMode,
		MaxAge:   -1,
	})
}
