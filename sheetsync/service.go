// Package sheetsync projects an uploaded CSV export onto selected columns and
// overwrites a spreadsheet tab with the result.
package sheetsync

import (
	"context"
	"strings"

	"github.com/jrsteele09/csv-sheet-sync/credentials"
	"github.com/jrsteele09/csv-sheet-sync/csvexport"
	apperrors "github.com/jrsteele09/csv-sheet-sync/internal/errors"
	"github.com/jrsteele09/csv-sheet-sync/spreadsheets"
	"github.com/rs/zerolog/log"
)

// DefaultTab is written when the request names no tab
const DefaultTab = "Sheet1"

// Writer overwrites a spreadsheet tab
type Writer interface {
	OverwriteTab(ctx context.Context, accessToken, spreadsheetID, tab string, grid [][]string) error
}

// TokenRefresher renews a credential close to expiry
type TokenRefresher interface {
	EnsureFresh(ctx context.Context, cred credentials.Credential) (credentials.Credential, bool, error)
}

// PersistFunc saves a renewed credential for the caller's session
type PersistFunc func(ctx context.Context, cred credentials.Credential) error

// Request is one sync submission. A nil File means no file was uploaded and
// nil Columns selects the default columns.
type Request struct {
	SheetID  string
	SheetTab string
	Columns  []string
	DryRun   bool
	File     []byte
}

// Result reports what was, or in a dry run would have been, written
type Result struct {
	RowCount       int      `json:"rowCount"`
	ColumnCount    int      `json:"columnCount"`
	SheetID        string   `json:"sheetId"`
	SheetTab       string   `json:"sheetTab"`
	DryRun         bool     `json:"dryRun"`
	Columns        []string `json:"columns"`
	SpreadsheetURL string   `json:"spreadsheetUrl"`
}

// Service runs sync requests
type Service struct {
	parser         *csvexport.Parser
	writer         Writer
	refresher      TokenRefresher
	defaultColumns []string
}

// NewService creates a sync service
func NewService(parser *csvexport.Parser, writer Writer, refresher TokenRefresher, defaultColumns []string) *Service {
	return &Service{
		parser:         parser,
		writer:         writer,
		refresher:      refresher,
		defaultColumns: defaultColumns,
	}
}

// Run validates req, projects the CSV and, unless req.DryRun is set, clears
// and rewrites the target tab. Every input check happens before the first
// network call. persist is called when the credential had to be renewed.
func (s *Service) Run(ctx context.Context, cred credentials.Credential, req Request, persist PersistFunc) (Result, error) {
	req, err := s.normalize(req)
	if err != nil {
		return Result{}, err
	}

	parsed, err := s.parser.Parse(req.File)
	if err != nil {
		return Result{}, &apperrors.ValidationError{Field: "file", Message: err.Error(), Err: err}
	}

	if missing := csvexport.MissingColumns(parsed.Headers, req.Columns); len(missing) > 0 {
		return Result{}, &apperrors.ValidationError{
			Field:          "columns",
			Message:        "Some selected columns are missing in the CSV",
			MissingColumns: missing,
		}
	}

	projected := csvexport.Project(parsed.Rows, req.Columns)
	grid := csvexport.ToGrid(req.Columns, projected)

	fresh, changed, err := s.refresher.EnsureFresh(ctx, cred)
	if err != nil {
		return Result{}, err
	}
	if changed && persist != nil {
		if err := persist(ctx, fresh); err != nil {
			return Result{}, apperrors.Wrapf(err, "persist renewed credential")
		}
	}

	if !req.DryRun {
		if err := s.writer.OverwriteTab(ctx, fresh.AccessToken, req.SheetID, req.SheetTab, grid); err != nil {
			return Result{}, err
		}
		log.Info().
			Str("sheetId", req.SheetID).
			Str("sheetTab", req.SheetTab).
			Int("rows", len(projected)).
			Msg("sheet synced")
	}

	return Result{
		RowCount:       len(projected),
		ColumnCount:    len(req.Columns),
		SheetID:        req.SheetID,
		SheetTab:       req.SheetTab,
		DryRun:         req.DryRun,
		Columns:        req.Columns,
		SpreadsheetURL: spreadsheets.SpreadsheetURL(req.SheetID),
	}, nil
}

func (s *Service) normalize(req Request) (Request, error) {
	req.SheetID = strings.TrimSpace(req.SheetID)
	req.SheetTab = strings.TrimSpace(req.SheetTab)
	if req.SheetTab == "" {
		req.SheetTab = DefaultTab
	}

	if req.SheetID == "" {
		return req, apperrors.NewValidationError("sheetId", "Sheet ID is required")
	}
	if req.File == nil {
		return req, apperrors.NewValidationError("file", "CSV file is required")
	}

	if req.Columns == nil {
		req.Columns = append([]string(nil), s.defaultColumns...)
	}
	if !contains(req.Columns, s.parser.KeyColumn()) {
		return req, apperrors.NewValidationError("columns", "Columns must include %s", s.parser.KeyColumn())
	}
	return req, nil
}

func contains(values []string, want string) bool {
	for _, v := range values {
		if v == want {
			return true
		}
	}
	return false
}
