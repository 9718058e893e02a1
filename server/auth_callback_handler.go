package server

import (
	"fmt"
	"net/http"

	"github.com/jrsteele09/csv-sheet-sync/credentials"
	"github.com/jrsteele09/csv-sheet-sync/sessions"
	"github.com/rs/zerolog/log"
)

// GoogleLoginHandler starts the authorization code flow
func (s *Server) GoogleLoginHandler() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		state, err := s.state.Issue(w)
		if err != nil {
			writeError(w, r, err, "Failed to start authentication")
			return
		}
		http.Redirect(w, r, s.broker.AuthURL(state), http.StatusFound)
	}
}

func (s *Server) GoogleCallbackHandler() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		query := r.URL.Query()
		state := query.Get("state")
		code := query.Get("code")
		errorParam := query.Get("error")

		// Check for authorization errors
		if errorParam != "" {
			http.Error(w, fmt.Sprintf("Authorization failed: %s", errorParam), http.StatusBadRequest)
			return
		}

		if code == "" || state == "" {
			http.Error(w, "Missing code or state", http.StatusBadRequest)
			return
		}

		if !s.state.Verify(w, r, state) {
			http.Error(w, "Invalid OAuth state", http.StatusBadRequest)
			return
		}

		tokens, err := s.broker.Exchange(r.Context(), code)
		if err != nil {
			writeError(w, r, err, "Failed to complete authentication")
			return
		}

		identity, err := s.broker.FetchIdentity(r.Context(), tokens.AccessToken)
		if err != nil {
			writeError(w, r, err, "Failed to complete authentication")
			return
		}

		cred := tokens.Credential(credentials.NowTimeFunc())
		session := sessions.Session{
			UserID: identity.ID,
			Email:  identity.Email,
			Name:   identity.Name,
		}

		if s.store != nil {
			err := s.store.Put(r.Context(), credentials.StoredCredential{
				UserID:     identity.ID,
				Email:      identity.Email,
				Name:       identity.Name,
				Credential: cred,
			})
			if err != nil {
				writeError(w, r, err, "Failed to complete authentication")
				return
			}
			session.CredentialRef = identity.ID
		} else {
			session.Credential = &cred
		}

		token, err := s.sessions.Issue(session)
		if err != nil {
			writeError(w, r, err, "Failed to complete authentication")
			return
		}
		s.sessions.SetCookie(w, token)

		log.Info().Str("userId", identity.ID).Msg("user signed in")
		http.Redirect(w, r, RouteHome, http.StatusFound)
	}
}

// LogoutHandler deletes the session cookie and any stored credential. It
// succeeds whether or not a session was present.
func (s *Server) LogoutHandler() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if session, err := s.sessions.RequireSession(r); err == nil && s.store != nil && session.CredentialRef != "" {
			if err := s.store.Delete(r.Context(), session.CredentialRef); err != nil {
				log.Err(err).Str("userId", session.UserID).Msg("failed to delete stored credential")
			}
		}

		s.sessions.ClearCookie(w)
		w.WriteHeader(http.StatusNoContent)
	}
}
