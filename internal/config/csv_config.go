package config

import "unicode/utf8"

const csvDelimiterVar = "CSV_DELIMITER"

type CsvConfig interface {
	GetCsvDelimiter() rune
	GetRequiredKeyColumn() string
	GetDefaultColumns() []string
	GetDefaultSheetTab() string
	GetMaxUploadBytes() int64
}

type Csv struct{}

var _ CsvConfig = Csv{}

func (Csv) GetCsvDelimiter() rune {
	r, _ := utf8.DecodeRuneInString(GetEnv(csvDelimiterVar, ";"))
	return r
}

// validDelimiter mirrors the delimiters encoding/csv accepts
func validDelimiter(r rune) bool {
	return r != 0 && r != '"' && r != '\r' && r != '\n' && utf8.ValidRune(r) && r != utf8.RuneError
}

func (Csv) GetRequiredKeyColumn() string {
	return GetEnv("CSV_REQUIRED_COLUMN", "Fatura No")
}

func (Csv) GetDefaultColumns() []string {
	return []string{
		"Fatura Tarihi",
		"Fatura No",
		"Gönderici",
		"Sipariş Numarası",
		"Ödenecek Tutar",
	}
}

func (Csv) GetDefaultSheetTab() string {
	return "Sheet1"
}

func (Csv) GetMaxUploadBytes() int64 {
	return 10 << 20 // 10 MiB
}
