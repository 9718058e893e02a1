package server

import (
	"context"
	"net/http"

	"github.com/jrsteele09/csv-sheet-sync/credentials"
	apperrors "github.com/jrsteele09/csv-sheet-sync/internal/errors"
	"github.com/jrsteele09/csv-sheet-sync/sessions"
)

// ContextKey is a custom type for context keys to avoid collisions
type ContextKey string

// ContextKeyAuth stores the authenticated request state
const ContextKeyAuth ContextKey = "auth"

// authenticated is what RequireSession resolves for a request
type authenticated struct {
	session    sessions.Session
	credential credentials.Credential
}

// RequireSession verifies the session cookie and resolves the user's Google
// credential, either embedded in the cookie or loaded from the store
func (s *Server) RequireSession() func(http.HandlerFunc) http.HandlerFunc {
	return func(next http.HandlerFunc) http.HandlerFunc {
		return func(w http.ResponseWriter, r *http.Request) {
			session, err := s.sessions.RequireSession(r)
			if err != nil {
				writeError(w, r, err, "Unauthorized")
				return
			}

			cred, err := s.resolveCredential(r.Context(), session)
			if err != nil {
				writeError(w, r, err, "Unauthorized")
				return
			}

			ctx := context.WithValue(r.Context(), ContextKeyAuth, authenticated{session: session, credential: cred})
			next(w, r.WithContext(ctx))
		}
	}
}

func (s *Server) resolveCredential(ctx context.Context, session sessions.Session) (credentials.Credential, error) {
	if session.Credential != nil {
		return *session.Credential, nil
	}
	if s.store == nil || session.CredentialRef == "" {
		return credentials.Credential{}, &apperrors.AuthenticationError{Cause: apperrors.ErrInvalidSession}
	}

	stored, err := s.store.Get(ctx, session.CredentialRef)
	if apperrors.Is(err, apperrors.ErrCredentialNotFound) {
		return credentials.Credential{}, &apperrors.AuthenticationError{Cause: err}
	}
	if err != nil {
		return credentials.Credential{}, apperrors.Wrapf(err, "load credential")
	}
	return stored.Credential, nil
}

func authFromContext(ctx context.Context) (authenticated, bool) {
	auth, ok := ctx.Value(ContextKeyAuth).(authenticated)
	return auth, ok
}
