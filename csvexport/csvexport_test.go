package csvexport_test

import (
	"testing"

	"github.com/jrsteele09/csv-sheet-sync/csvexport"
	apperrors "github.com/jrsteele09/csv-sheet-sync/internal/errors"
	"github.com/stretchr/testify/require"
)

const keyColumn = "Fatura No"

func newParser() *csvexport.Parser {
	return csvexport.NewParser(';', keyColumn)
}

func TestParse(t *testing.T) {
	t.Run("single row", func(t *testing.T) {
		parsed, err := newParser().Parse([]byte("Fatura No;Fatura Tarihi\nF-1;2024-01-01\n"))
		require.NoError(t, err)
		require.Equal(t, []string{"Fatura No", "Fatura Tarihi"}, parsed.Headers)
		require.Equal(t, []csvexport.Row{{"Fatura No": "F-1", "Fatura Tarihi": "2024-01-01"}}, parsed.Rows)
	})

	t.Run("strips byte order mark", func(t *testing.T) {
		parsed, err := newParser().Parse([]byte("\xEF\xBB\xBFFatura No;Tutar\nF-1;10\n"))
		require.NoError(t, err)
		require.Equal(t, "Fatura No", parsed.Headers[0])
	})

	t.Run("skips empty lines", func(t *testing.T) {
		parsed, err := newParser().Parse([]byte("Fatura No;Tutar\r\nF-1;10\r\n\r\nF-2;20\r\n\r\n"))
		require.NoError(t, err)
		require.Len(t, parsed.Rows, 2)
	})

	t.Run("short rows are padded", func(t *testing.T) {
		parsed, err := newParser().Parse([]byte("Fatura No;Tutar;Not\nF-1\nF-2;20;x;extra\n"))
		require.NoError(t, err)
		require.Len(t, parsed.Rows, 2)
		for _, row := range parsed.Rows {
			require.Len(t, row, len(parsed.Headers))
		}
		require.Equal(t, "", parsed.Rows[0]["Tutar"])
		require.Equal(t, "x", parsed.Rows[1]["Not"])
	})

	t.Run("values are not trimmed", func(t *testing.T) {
		parsed, err := newParser().Parse([]byte("Fatura No;Tutar\n F-1 ; 10\n"))
		require.NoError(t, err)
		require.Equal(t, " F-1 ", parsed.Rows[0]["Fatura No"])
	})

	t.Run("blank header cells are dropped", func(t *testing.T) {
		parsed, err := newParser().Parse([]byte("Fatura No;;Tutar; \nF-1;a;10;b\n"))
		require.NoError(t, err)
		require.Equal(t, []string{"Fatura No", "Tutar"}, parsed.Headers)
	})

	t.Run("quoted delimiter", func(t *testing.T) {
		parsed, err := newParser().Parse([]byte("Fatura No;Gönderici\nF-1;\"ACME; Ltd\"\n"))
		require.NoError(t, err)
		require.Equal(t, "ACME; Ltd", parsed.Rows[0]["Gönderici"])
	})

	t.Run("missing key column", func(t *testing.T) {
		_, err := newParser().Parse([]byte("Fatura Tarihi;Tutar\n2024-01-01;10\n"))
		require.ErrorIs(t, err, apperrors.ErrMissingKeyColumn)
	})

	t.Run("header only", func(t *testing.T) {
		_, err := newParser().Parse([]byte("Fatura No;Tutar\n"))
		require.ErrorIs(t, err, apperrors.ErrNoRows)
	})

	t.Run("empty buffer", func(t *testing.T) {
		_, err := newParser().Parse(nil)
		require.ErrorIs(t, err, apperrors.ErrNoRows)
	})
}

func TestParse_RowCountMatchesDataLines(t *testing.T) {
	inputs := map[string]int{
		"Fatura No\nA\n":                1,
		"Fatura No;X\nA;1\nB;2\nC;3\n":  3,
		"Fatura No;X\n\nA;1\n\n\nB;2\n": 2,
	}
	for input, want := range inputs {
		parsed, err := newParser().Parse([]byte(input))
		require.NoError(t, err)
		require.Len(t, parsed.Rows, want, input)
	}
}

func TestProject(t *testing.T) {
	rows := []csvexport.Row{
		{"Fatura No": "F-1", "Tutar": "10", "Not": "a"},
		{"Fatura No": "F-2", "Tutar": "20", "Not": "b"},
	}
	columns := []string{"Tutar", "Fatura No", "Eksik"}

	once := csvexport.Project(rows, columns)
	require.Equal(t, []csvexport.Row{
		{"Tutar": "10", "Fatura No": "F-1", "Eksik": ""},
		{"Tutar": "20", "Fatura No": "F-2", "Eksik": ""},
	}, once)

	twice := csvexport.Project(once, columns)
	require.Equal(t, once, twice)
}

func TestToGrid(t *testing.T) {
	columns := []string{"Tutar", "Fatura No"}
	rows := []csvexport.Row{{"Fatura No": "F-1", "Tutar": "10"}}

	grid := csvexport.ToGrid(columns, rows)
	require.Equal(t, [][]string{{"Tutar", "Fatura No"}, {"10", "F-1"}}, grid)
	require.Equal(t, columns, grid[0])

	grid[0][0] = "changed"
	require.Equal(t, "Tutar", columns[0])
}

func TestMissingColumns(t *testing.T) {
	headers := []string{"Fatura No", "Tutar"}
	require.Nil(t, csvexport.MissingColumns(headers, []string{"Tutar", "Fatura No"}))
	require.Equal(t, []string{"Z", "A"}, csvexport.MissingColumns(headers, []string{"Z", "Fatura No", "A"}))
}

func TestNormalizeColumns(t *testing.T) {
	require.Equal(t, []string{"Tutar", keyColumn}, csvexport.NormalizeColumns([]string{"Tutar", "Tutar"}, keyColumn))
	require.Equal(t, []string{keyColumn, "Tutar"}, csvexport.NormalizeColumns([]string{keyColumn, "Tutar"}, keyColumn))
	require.Equal(t, []string{keyColumn}, csvexport.NormalizeColumns(nil, keyColumn))
}

func TestDefaultSelection(t *testing.T) {
	defaults := []string{"Fatura Tarihi", keyColumn, "Ödenecek Tutar"}

	selected := csvexport.DefaultSelection([]string{keyColumn, "Other", "Fatura Tarihi"}, defaults, keyColumn)
	require.Equal(t, []string{keyColumn, "Fatura Tarihi"}, selected)

	selected = csvexport.DefaultSelection([]string{"Other"}, defaults, keyColumn)
	require.Equal(t, []string{keyColumn}, selected)
}
