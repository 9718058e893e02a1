// Package spreadsheets lists, creates and overwrites Google spreadsheets on
// behalf of a signed in user.
package spreadsheets

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"strings"

	apperrors "github.com/jrsteele09/csv-sheet-sync/internal/errors"
	"golang.org/x/oauth2"
	"google.golang.org/api/drive/v3"
	"google.golang.org/api/googleapi"
	"google.golang.org/api/option"
	"google.golang.org/api/sheets/v4"
)

const (
	spreadsheetMimeType = "application/vnd.google-apps.spreadsheet"
	listQuery           = "mimeType='" + spreadsheetMimeType + "' and trashed=false"
	listFields          = "files(id,name,modifiedTime)"
	listOrder           = "modifiedTime desc"
	listPageSize        = 50

	urlPrefix = "https://docs.google.com/spreadsheets/d/"
)

// Summary describes one spreadsheet visible to the user
type Summary struct {
	ID           string `json:"id"`
	Name         string `json:"name"`
	ModifiedTime string `json:"modifiedTime,omitempty"`
}

// Config points the client at non default endpoints. The zero value talks to Google.
type Config struct {
	SheetsEndpoint string
	DriveEndpoint  string
	Transport      http.RoundTripper
}

// Client calls the Sheets and Drive APIs with a caller supplied access token
type Client struct {
	cfg Config
}

// NewClient creates a spreadsheet client
func NewClient(cfg Config) *Client {
	if cfg.Transport == nil {
		cfg.Transport = http.DefaultTransport
	}
	return &Client{cfg: cfg}
}

// SpreadsheetURL is the browser URL of a spreadsheet
func SpreadsheetURL(id string) string {
	return urlPrefix + id
}

func (c *Client) httpClient(accessToken string) *http.Client {
	return &http.Client{
		Transport: &oauth2.Transport{
			Source: oauth2.StaticTokenSource(&oauth2.Token{AccessToken: accessToken, TokenType: "Bearer"}),
			Base:   c.cfg.Transport,
		},
	}
}

func (c *Client) sheetsService(ctx context.Context, accessToken string) (*sheets.Service, error) {
	opts := []option.ClientOption{option.WithHTTPClient(c.httpClient(accessToken))}
	if c.cfg.SheetsEndpoint != "" {
		opts = append(opts, option.WithEndpoint(c.cfg.SheetsEndpoint))
	}
	return sheets.NewService(ctx, opts...)
}

func (c *Client) driveService(ctx context.Context, accessToken string) (*drive.Service, error) {
	opts := []option.ClientOption{option.WithHTTPClient(c.httpClient(accessToken))}
	if c.cfg.DriveEndpoint != "" {
		opts = append(opts, option.WithEndpoint(c.cfg.DriveEndpoint))
	}
	return drive.NewService(ctx, opts...)
}

// List returns the user's most recently modified spreadsheets
func (c *Client) List(ctx context.Context, accessToken string) ([]Summary, error) {
	google, err := c.driveService(ctx, accessToken)
	if err != nil {
		return nil, upstreamError("list spreadsheets", err)
	}

	response, err := google.Files.List().
		Q(listQuery).
		Fields(listFields).
		OrderBy(listOrder).
		PageSize(listPageSize).
		Context(ctx).
		Do()
	if err != nil {
		return nil, upstreamError("list spreadsheets", err)
	}

	summaries := make([]Summary, 0, len(response.Files))
	for _, f := range response.Files {
		summaries = append(summaries, Summary{ID: f.Id, Name: f.Name, ModifiedTime: f.ModifiedTime})
	}
	return summaries, nil
}

// Create makes a new spreadsheet titled title
func (c *Client) Create(ctx context.Context, accessToken, title string) (Summary, error) {
	google, err := c.sheetsService(ctx, accessToken)
	if err != nil {
		return Summary{}, upstreamError("create spreadsheet", err)
	}

	rq := sheets.Spreadsheet{
		Properties: &sheets.SpreadsheetProperties{Title: title},
	}
	created, err := google.Spreadsheets.Create(&rq).Context(ctx).Do()
	if err != nil {
		return Summary{}, upstreamError("create spreadsheet", err)
	}

	summary := Summary{ID: created.SpreadsheetId, Name: title}
	if created.Properties != nil && created.Properties.Title != "" {
		summary.Name = created.Properties.Title
	}
	return summary, nil
}

// OverwriteTab clears tab and writes grid from A1. The two calls are not
// atomic: a failed write leaves the tab cleared and returns a PartialSyncError.
func (c *Client) OverwriteTab(ctx context.Context, accessToken, spreadsheetID, tab string, grid [][]string) error {
	google, err := c.sheetsService(ctx, accessToken)
	if err != nil {
		return upstreamError("clear tab", err)
	}

	tabRange := quoteTab(tab)
	if _, err := google.Spreadsheets.Values.Clear(spreadsheetID, tabRange, &sheets.ClearValuesRequest{}).Context(ctx).Do(); err != nil {
		return upstreamError("clear tab", err)
	}

	values := sheets.ValueRange{
		Range:  tabRange + "!A1",
		Values: toValues(grid),
	}
	if _, err := google.Spreadsheets.Values.Update(spreadsheetID, values.Range, &values).
		ValueInputOption("RAW").
		Context(ctx).
		Do(); err != nil {
		return &apperrors.PartialSyncError{
			SpreadsheetID: spreadsheetID,
			Tab:           tab,
			Err:           upstreamError("write tab", err),
		}
	}
	return nil
}

// quoteTab wraps a tab name in single quotes when A1 notation requires it
func quoteTab(tab string) string {
	plain := tab != ""
	for _, r := range tab {
		if !(r == '_' || r >= '0' && r <= '9' || r >= 'a' && r <= 'z' || r >= 'A' && r <= 'Z') {
			plain = false
			break
		}
	}
	if plain {
		return tab
	}
	return "'" + strings.ReplaceAll(tab, "'", "''") + "'"
}

func toValues(grid [][]string) [][]interface{} {
	values := make([][]interface{}, len(grid))
	for i, row := range grid {
		values[i] = make([]interface{}, len(row))
		for j, cell := range row {
			values[i][j] = cell
		}
	}
	return values
}

func upstreamError(op string, err error) error {
	var apiErr *googleapi.Error
	if errors.As(err, &apiErr) {
		return &apperrors.UpstreamError{Op: op, Status: apiErr.Code, Err: fmt.Errorf("%s: %w", apiErr.Message, err)}
	}
	return &apperrors.UpstreamError{Op: op, Err: err}
}
