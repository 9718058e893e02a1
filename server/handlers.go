package server

import (
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"strings"

	"github.com/jrsteele09/csv-sheet-sync/csvexport"
	apperrors "github.com/jrsteele09/csv-sheet-sync/internal/errors"
	"github.com/jrsteele09/csv-sheet-sync/sheetsync"
)

func (s *Server) HealthHandler() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
	}
}

// PreflightHandler answers CORS preflight requests. The headers themselves
// are set by CorsMiddleware.
func (s *Server) PreflightHandler() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusNoContent)
	}
}

func (s *Server) MeHandler() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		auth, ok := authFromContext(r.Context())
		if !ok {
			writeError(w, r, &apperrors.AuthenticationError{Cause: apperrors.ErrNoSession}, "Unauthorized")
			return
		}
		writeJSON(w, http.StatusOK, map[string]any{"user": auth.session.User()})
	}
}

func (s *Server) ListSheetsHandler() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		auth, ok := authFromContext(r.Context())
		if !ok {
			writeError(w, r, &apperrors.AuthenticationError{Cause: apperrors.ErrNoSession}, "Unauthorized")
			return
		}

		cred, err := s.freshCredential(w, r, auth)
		if err != nil {
			writeError(w, r, err, "Failed to list sheets")
			return
		}

		sheets, err := s.sheets.List(r.Context(), cred.AccessToken)
		if err != nil {
			writeError(w, r, err, "Failed to list sheets")
			return
		}
		writeJSON(w, http.StatusOK, map[string]any{"sheets": sheets})
	}
}

func (s *Server) CreateSheetHandler() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		auth, ok := authFromContext(r.Context())
		if !ok {
			writeError(w, r, &apperrors.AuthenticationError{Cause: apperrors.ErrNoSession}, "Unauthorized")
			return
		}

		var body struct {
			Title string `json:"title"`
		}
		_ = json.NewDecoder(io.LimitReader(r.Body, 1<<16)).Decode(&body)
		title := strings.TrimSpace(body.Title)
		if title == "" {
			writeError(w, r, apperrors.NewValidationError("title", "Title is required"), "")
			return
		}

		cred, err := s.freshCredential(w, r, auth)
		if err != nil {
			writeError(w, r, err, "Failed to create sheet")
			return
		}

		sheet, err := s.sheets.Create(r.Context(), cred.AccessToken, title)
		if err != nil {
			writeError(w, r, err, "Failed to create sheet")
			return
		}
		writeJSON(w, http.StatusCreated, sheet)
	}
}

// SyncHandler accepts a multipart form with file, sheetId, sheetName,
// columns (a JSON array) and dryRun
func (s *Server) SyncHandler() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		dryRun := false
		fallback := func() string {
			if dryRun {
				return "Dry run failed"
			}
			return "Failed to sync sheet"
		}

		auth, ok := authFromContext(r.Context())
		if !ok {
			writeError(w, r, &apperrors.AuthenticationError{Cause: apperrors.ErrNoSession}, "Unauthorized")
			return
		}

		req, err := s.syncRequest(w, r)
		dryRun = req.DryRun
		if err != nil {
			writeError(w, r, err, fallback())
			return
		}

		result, err := s.sync.Run(r.Context(), auth.credential, req, s.persistCredential(w, auth.session))
		if err != nil {
			writeError(w, r, err, fallback())
			return
		}
		writeJSON(w, http.StatusOK, result)
	}
}

func (s *Server) syncRequest(w http.ResponseWriter, r *http.Request) (sheetsync.Request, error) {
	file, err := s.uploadedFile(w, r)
	if err != nil {
		return sheetsync.Request{}, err
	}

	req := sheetsync.Request{
		SheetID:  r.FormValue("sheetId"),
		SheetTab: strings.TrimSpace(r.FormValue("sheetName")),
		DryRun:   r.FormValue("dryRun") == "true",
		File:     file,
	}
	if req.SheetTab == "" {
		req.SheetTab = s.config.GetDefaultSheetTab()
	}

	if raw := r.FormValue("columns"); raw != "" {
		err := json.Unmarshal([]byte(raw), &req.Columns)
		if err == nil && req.Columns == nil {
			err = errors.New("columns is null")
		}
		if err != nil {
			return req, &apperrors.ValidationError{Field: "columns", Message: "Columns must be a JSON array of strings", Err: err}
		}
	}
	return req, nil
}

// uploadedFile reads the "file" part of a multipart request. A missing part
// returns nil without error.
func (s *Server) uploadedFile(w http.ResponseWriter, r *http.Request) ([]byte, error) {
	maxBytes := s.config.GetMaxUploadBytes()
	r.Body = http.MaxBytesReader(w, r.Body, maxBytes)
	if err := r.ParseMultipartForm(maxBytes); err != nil {
		return nil, &apperrors.ValidationError{Field: "file", Message: "Invalid multipart form", Err: err}
	}

	f, _, err := r.FormFile("file")
	if errors.Is(err, http.ErrMissingFile) {
		return nil, nil
	}
	if err != nil {
		return nil, &apperrors.ValidationError{Field: "file", Message: "Invalid file upload", Err: err}
	}
	defer f.Close()

	data, err := io.ReadAll(f)
	if err != nil {
		return nil, &apperrors.ValidationError{Field: "file", Message: "Invalid file upload", Err: err}
	}
	return data, nil
}

// ColumnsPreviewHandler returns the headers of an uploaded CSV together with
// the preselected default columns
func (s *Server) ColumnsPreviewHandler() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		file, err := s.uploadedFile(w, r)
		if err != nil {
			writeError(w, r, err, "Failed to read columns")
			return
		}
		if file == nil {
			writeError(w, r, apperrors.NewValidationError("file", "CSV file is required"), "")
			return
		}

		parsed, err := s.parser.Parse(file)
		if err != nil {
			writeError(w, r, &apperrors.ValidationError{Field: "file", Message: err.Error(), Err: err}, "")
			return
		}

		key := s.parser.KeyColumn()
		writeJSON(w, http.StatusOK, map[string]any{
			"headers":        parsed.Headers,
			"defaultColumns": csvexport.DefaultSelection(parsed.Headers, s.config.GetDefaultColumns(), key),
			"requiredColumn": key,
		})
	}
}
