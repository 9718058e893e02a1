package server

import (
	"encoding/json"
	"net/http"

	apperrors "github.com/jrsteele09/csv-sheet-sync/internal/errors"
	"github.com/rs/zerolog/log"
)

const (
	contentTypeJSON = "application/json; charset=utf-8"
)

func writeJSON(w http.ResponseWriter, status int, body any) {
	w.Header().Set("Content-Type", contentTypeJSON)
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(body)
}

// writeError maps err onto a response. Validation errors are returned to the
// caller, authentication errors become a bare 401 and everything else is
// logged and answered with fallback.
func writeError(w http.ResponseWriter, r *http.Request, err error, fallback string) {
	logger := log.With().
		Str("requestId", requestID(r.Context())).
		Str("method", r.Method).
		Str("path", r.URL.Path).
		Logger()

	var validation *apperrors.ValidationError
	if apperrors.As(err, &validation) {
		logger.Debug().Err(err).Msg("rejected request")
		if len(validation.MissingColumns) > 0 {
			writeJSON(w, http.StatusBadRequest, map[string]any{
				"error":          validation.Message,
				"missingColumns": validation.MissingColumns,
			})
			return
		}
		http.Error(w, validation.Message, http.StatusBadRequest)
		return
	}

	var authErr *apperrors.AuthenticationError
	if apperrors.As(err, &authErr) {
		logger.Info().Err(authErr.Cause).Msg("unauthorized")
		http.Error(w, "Unauthorized", http.StatusUnauthorized)
		return
	}

	var partial *apperrors.PartialSyncError
	if apperrors.As(err, &partial) {
		logger.Error().Err(err).
			Str("sheetId", partial.SpreadsheetID).
			Str("sheetTab", partial.Tab).
			Msg("tab was cleared but not rewritten, contents are undefined until the next sync")
	} else {
		logger.Error().Err(err).Msg(fallback)
	}
	http.Error(w, fallback, http.StatusInternalServerError)
}
