package server

import (
	"context"
	"net/http"

	"github.com/jrsteele09/csv-sheet-sync/credentials"
	"github.com/jrsteele09/csv-sheet-sync/sessions"
	"github.com/jrsteele09/csv-sheet-sync/sheetsync"
)

// persistCredential saves a renewed credential where the session keeps it:
// a new session cookie in embedded mode, the store otherwise. It must run
// before the response status is written.
func (s *Server) persistCredential(w http.ResponseWriter, session sessions.Session) sheetsync.PersistFunc {
	return func(ctx context.Context, cred credentials.Credential) error {
		if session.Credential == nil && s.store != nil {
			return s.store.Put(ctx, credentials.StoredCredential{
				UserID:     session.UserID,
				Email:      session.Email,
				Name:       session.Name,
				Credential: cred,
			})
		}

		token, err := s.sessions.Issue(session.WithCredential(cred))
		if err != nil {
			return err
		}
		s.sessions.SetCookie(w, token)
		return nil
	}
}

// freshCredential returns a credential valid for at least the refresh leeway,
// persisting it when it had to be renewed
func (s *Server) freshCredential(w http.ResponseWriter, r *http.Request, auth authenticated) (credentials.Credential, error) {
	fresh, changed, err := s.broker.EnsureFresh(r.Context(), auth.credential)
	if err != nil {
		return credentials.Credential{}, err
	}
	if changed {
		if err := s.persistCredential(w, auth.session)(r.Context(), fresh); err != nil {
			return credentials.Credential{}, err
		}
	}
	return fresh, nil
}
