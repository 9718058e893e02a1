package fakespreadsheets

import (
	"context"
	"fmt"
	"sync"

	"github.com/jrsteele09/csv-sheet-sync/sheetsync"
	"github.com/jrsteele09/csv-sheet-sync/spreadsheets"
)

var _ sheetsync.Writer = (*FakeClient)(nil)

// Overwrite is one recorded OverwriteTab call
type Overwrite struct {
	AccessToken   string
	SpreadsheetID string
	Tab           string
	Grid          [][]string
}

// FakeClient keeps spreadsheets in memory and records every overwrite
type FakeClient struct {
	lock       sync.RWMutex
	sheets     []spreadsheets.Summary
	overwrites []Overwrite
	nextID     int

	// WriteErr, when set, is returned by OverwriteTab after recording the call
	WriteErr error
}

func NewFakeClient(existing ...spreadsheets.Summary) *FakeClient {
	return &FakeClient{sheets: existing}
}

func (f *FakeClient) List(_ context.Context, _ string) ([]spreadsheets.Summary, error) {
	f.lock.RLock()
	defer f.lock.RUnlock()
	return append([]spreadsheets.Summary{}, f.sheets...), nil
}

func (f *FakeClient) Create(_ context.Context, _ string, title string) (spreadsheets.Summary, error) {
	f.lock.Lock()
	defer f.lock.Unlock()
	f.nextID++
	sheet := spreadsheets.Summary{ID: fmt.Sprintf("fake-%d", f.nextID), Name: title}
	f.sheets = append(f.sheets, sheet)
	return sheet, nil
}

func (f *FakeClient) OverwriteTab(_ context.Context, accessToken, spreadsheetID, tab string, grid [][]string) error {
	f.lock.Lock()
	defer f.lock.Unlock()
	f.overwrites = append(f.overwrites, Overwrite{accessToken, spreadsheetID, tab, grid})
	return f.WriteErr
}

// Overwrites returns the recorded OverwriteTab calls in order
func (f *FakeClient) Overwrites() []Overwrite {
	f.lock.RLock()
	defer f.lock.RUnlock()
	return append([]Overwrite(nil), f.overwrites...)
}
