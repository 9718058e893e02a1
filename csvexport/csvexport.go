// Package csvexport turns a delimited CSV export into header keyed rows and
// projects them onto a column selection ready to be written to a spreadsheet.
package csvexport

import (
	"bytes"
	"encoding/csv"
	"fmt"
	"io"
	"slices"
	"strings"

	apperrors "github.com/jrsteele09/csv-sheet-sync/internal/errors"
)

var utf8BOM = []byte{0xEF, 0xBB, 0xBF}

// Row maps a header name to its cell value
type Row map[string]string

// Parsed holds the schema taken from the header line and the dense data rows
type Parsed struct {
	Headers []string
	Rows    []Row
}

// Parser reads exports with a fixed delimiter and a mandatory key column
type Parser struct {
	delimiter rune
	keyColumn string
}

// NewParser creates a parser for the given delimiter and required key column
func NewParser(delimiter rune, keyColumn string) *Parser {
	return &Parser{
		delimiter: delimiter,
		keyColumn: keyColumn,
	}
}

// KeyColumn returns the column every export must carry
func (p *Parser) KeyColumn() string {
	return p.keyColumn
}

// Parse reads buf into headers and rows. The first record is the header.
// Every returned row carries every header, missing cells are empty strings.
func (p *Parser) Parse(buf []byte) (Parsed, error) {
	r := csv.NewReader(bytes.NewReader(bytes.TrimPrefix(buf, utf8BOM)))
	r.Comma = p.delimiter
	r.FieldsPerRecord = -1

	header, err := r.Read()
	if err == io.EOF {
		return Parsed{}, apperrors.ErrNoRows
	} else if err != nil {
		return Parsed{}, fmt.Errorf("[csvexport Parse] read header: %w", err)
	}

	// blank header cells carry no name, so they are left out of the schema
	headers := make([]string, 0, len(header))
	index := make(map[string]int, len(header))
	for i, h := range header {
		if strings.TrimSpace(h) == "" {
			continue
		}
		if _, seen := index[h]; !seen {
			headers = append(headers, h)
		}
		index[h] = i
	}

	records, err := r.ReadAll()
	if err != nil {
		return Parsed{}, fmt.Errorf("[csvexport Parse] read records: %w", err)
	}
	if len(records) == 0 {
		return Parsed{}, apperrors.ErrNoRows
	}

	if !slices.Contains(headers, p.keyColumn) {
		return Parsed{}, fmt.Errorf("%w: %s", apperrors.ErrMissingKeyColumn, p.keyColumn)
	}

	rows := make([]Row, 0, len(records))
	for _, record := range records {
		row := make(Row, len(headers))
		for _, h := range headers {
			v := ""
			if ix := index[h]; ix < len(record) {
				v = record[ix]
			}
			row[h] = v
		}
		rows = append(rows, row)
	}

	return Parsed{Headers: headers, Rows: rows}, nil
}

// Project keeps only the requested columns of each row. Columns absent from a
// row come back as empty strings.
func Project(rows []Row, columns []string) []Row {
	projected := make([]Row, 0, len(rows))
	for _, row := range rows {
		out := make(Row, len(columns))
		for _, c := range columns {
			out[c] = row[c]
		}
		projected = append(projected, out)
	}
	return projected
}

// ToGrid renders rows as the value grid written to the sheet, the header row first.
func ToGrid(columns []string, rows []Row) [][]string {
	grid := make([][]string, 0, len(rows)+1)
	grid = append(grid, slices.Clone(columns))
	for _, row := range rows {
		values := make([]string, len(columns))
		for i, c := range columns {
			values[i] = row[c]
		}
		grid = append(grid, values)
	}
	return grid
}

// MissingColumns returns the selected columns that are not in headers, in selection order
func MissingColumns(headers, columns []string) []string {
	var missing []string
	for _, c := range columns {
		if !slices.Contains(headers, c) {
			missing = append(missing, c)
		}
	}
	return missing
}

// NormalizeColumns removes duplicates and appends the key column when it is absent
func NormalizeColumns(columns []string, keyColumn string) []string {
	seen := make(map[string]struct{}, len(columns)+1)
	normalized := make([]string, 0, len(columns)+1)
	for _, c := range columns {
		if _, ok := seen[c]; ok {
			continue
		}
		seen[c] = struct{}{}
		normalized = append(normalized, c)
	}
	if _, ok := seen[keyColumn]; !ok {
		normalized = append(normalized, keyColumn)
	}
	return normalized
}

// DefaultSelection picks the default columns present in headers, in header
// order, falling back to just the key column.
func DefaultSelection(headers, defaults []string, keyColumn string) []string {
	var selected []string
	for _, h := range headers {
		if slices.Contains(defaults, h) {
			selected = append(selected, h)
		}
	}
	return NormalizeColumns(selected, keyColumn)
}
