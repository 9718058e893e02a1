package spreadsheets_test

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync"
	"testing"

	apperrors "github.com/jrsteele09/csv-sheet-sync/internal/errors"
	"github.com/jrsteele09/csv-sheet-sync/spreadsheets"
	"github.com/stretchr/testify/require"
)

type recordedCall struct {
	Method        string
	Path          string
	Query         map[string][]string
	Authorization string
	Body          string
}

// fakeGoogleAPI records every call and answers with canned responses
type fakeGoogleAPI struct {
	mu          sync.Mutex
	calls       []recordedCall
	clearStatus int
	writeStatus int
}

func newFakeGoogleAPI(t *testing.T) (*fakeGoogleAPI, *spreadsheets.Client) {
	t.Helper()
	f := &fakeGoogleAPI{clearStatus: http.StatusOK, writeStatus: http.StatusOK}
	srv := httptest.NewServer(http.HandlerFunc(f.serve))
	t.Cleanup(srv.Close)

	client := spreadsheets.NewClient(spreadsheets.Config{
		SheetsEndpoint: srv.URL + "/",
		DriveEndpoint:  srv.URL + "/drive/v3/",
		Transport:      srv.Client().Transport,
	})
	return f, client
}

func (f *fakeGoogleAPI) serve(w http.ResponseWriter, r *http.Request) {
	body, _ := io.ReadAll(r.Body)
	f.mu.Lock()
	f.calls = append(f.calls, recordedCall{
		Method:        r.Method,
		Path:          r.URL.Path,
		Query:         r.URL.Query(),
		Authorization: r.Header.Get("Authorization"),
		Body:          string(body),
	})
	clearStatus, writeStatus := f.clearStatus, f.writeStatus
	f.mu.Unlock()

	w.Header().Set("Content-Type", "application/json")
	switch {
	case r.Method == http.MethodGet && r.URL.Path == "/drive/v3/files":
		_, _ = w.Write([]byte(`{"files":[{"id":"s1","name":"Invoices","modifiedTime":"2024-01-02T10:00:00Z"},{"id":"s2","name":"Old"}]}`))

	case r.Method == http.MethodPost && r.URL.Path == "/v4/spreadsheets":
		_, _ = w.Write([]byte(`{"spreadsheetId":"new-id","properties":{"title":"Exports"}}`))

	case r.Method == http.MethodPost && strings.HasSuffix(r.URL.Path, ":clear"):
		if clearStatus != http.StatusOK {
			writeAPIError(w, clearStatus)
			return
		}
		_, _ = w.Write([]byte(`{}`))

	case r.Method == http.MethodPut && strings.Contains(r.URL.Path, "/values/"):
		if writeStatus != http.StatusOK {
			writeAPIError(w, writeStatus)
			return
		}
		_, _ = w.Write([]byte(`{}`))

	default:
		writeAPIError(w, http.StatusNotFound)
	}
}

func writeAPIError(w http.ResponseWriter, status int) {
	w.WriteHeader(status)
	_, _ = fmt.Fprintf(w, `{"error":{"code":%d,"message":"failed"}}`, status)
}

func (f *fakeGoogleAPI) recorded() []recordedCall {
	f.mu.Lock()
	defer f.mu.Unlock()
	return append([]recordedCall(nil), f.calls...)
}

func TestList(t *testing.T) {
	f, client := newFakeGoogleAPI(t)

	summaries, err := client.List(context.Background(), "token-1")
	require.NoError(t, err)
	require.Equal(t, []spreadsheets.Summary{
		{ID: "s1", Name: "Invoices", ModifiedTime: "2024-01-02T10:00:00Z"},
		{ID: "s2", Name: "Old"},
	}, summaries)

	calls := f.recorded()
	require.Len(t, calls, 1)
	require.Equal(t, "Bearer token-1", calls[0].Authorization)
	require.Equal(t, "mimeType='application/vnd.google-apps.spreadsheet' and trashed=false", calls[0].Query["q"][0])
	require.Equal(t, "files(id,name,modifiedTime)", calls[0].Query["fields"][0])
	require.Equal(t, "modifiedTime desc", calls[0].Query["orderBy"][0])
	require.Equal(t, "50", calls[0].Query["pageSize"][0])
}

func TestCreate(t *testing.T) {
	f, client := newFakeGoogleAPI(t)

	summary, err := client.Create(context.Background(), "token-1", "Exports")
	require.NoError(t, err)
	require.Equal(t, spreadsheets.Summary{ID: "new-id", Name: "Exports"}, summary)

	calls := f.recorded()
	require.Len(t, calls, 1)

	var body struct {
		Properties struct {
			Title string `json:"title"`
		} `json:"properties"`
	}
	require.NoError(t, json.Unmarshal([]byte(calls[0].Body), &body))
	require.Equal(t, "Exports", body.Properties.Title)
}

func TestOverwriteTab(t *testing.T) {
	grid := [][]string{{"Fatura No", "Tutar"}, {"F-1", "10"}}

	t.Run("clears then writes", func(t *testing.T) {
		f, client := newFakeGoogleAPI(t)
		require.NoError(t, client.OverwriteTab(context.Background(), "token-1", "abc123", "Sheet1", grid))

		calls := f.recorded()
		require.Len(t, calls, 2)

		require.Equal(t, http.MethodPost, calls[0].Method)
		require.Equal(t, "/v4/spreadsheets/abc123/values/Sheet1:clear", calls[0].Path)

		require.Equal(t, http.MethodPut, calls[1].Method)
		require.Equal(t, "/v4/spreadsheets/abc123/values/Sheet1!A1", calls[1].Path)
		require.Equal(t, "RAW", calls[1].Query["valueInputOption"][0])
		require.Equal(t, "Bearer token-1", calls[1].Authorization)

		var body struct {
			Values [][]string `json:"values"`
		}
		require.NoError(t, json.Unmarshal([]byte(calls[1].Body), &body))
		require.Equal(t, grid, body.Values)
	})

	t.Run("tab names with spaces are quoted", func(t *testing.T) {
		f, client := newFakeGoogleAPI(t)
		require.NoError(t, client.OverwriteTab(context.Background(), "token-1", "abc123", "Q1 Data", grid))

		calls := f.recorded()
		require.Len(t, calls, 2)
		require.Equal(t, "/v4/spreadsheets/abc123/values/'Q1 Data':clear", calls[0].Path)
		require.Equal(t, "/v4/spreadsheets/abc123/values/'Q1 Data'!A1", calls[1].Path)
	})

	t.Run("clear failure writes nothing", func(t *testing.T) {
		f, client := newFakeGoogleAPI(t)
		f.clearStatus = http.StatusForbidden

		err := client.OverwriteTab(context.Background(), "token-1", "abc123", "Sheet1", grid)
		var upstream *apperrors.UpstreamError
		require.ErrorAs(t, err, &upstream)
		require.Equal(t, http.StatusForbidden, upstream.Status)

		var partial *apperrors.PartialSyncError
		require.False(t, apperrors.As(err, &partial))
		require.Len(t, f.recorded(), 1)
	})

	t.Run("write failure after clear", func(t *testing.T) {
		f, client := newFakeGoogleAPI(t)
		f.writeStatus = http.StatusBadRequest

		err := client.OverwriteTab(context.Background(), "token-1", "abc123", "Sheet1", grid)
		var partial *apperrors.PartialSyncError
		require.ErrorAs(t, err, &partial)
		require.Equal(t, "abc123", partial.SpreadsheetID)
		require.Equal(t, "Sheet1", partial.Tab)
		require.Len(t, f.recorded(), 2)
	})
}

func TestSpreadsheetURL(t *testing.T) {
	require.Equal(t, "https://docs.google.com/spreadsheets/d/abc123", spreadsheets.SpreadsheetURL("abc123"))
}
