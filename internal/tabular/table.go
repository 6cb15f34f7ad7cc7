// Package tabular loads heterogeneous tabular uploads (CSV or XLSX) into a
// uniform in-memory table with normalized headers, and validates them
// against per-role schemas before any downstream processing runs.
package tabular

import (
	"encoding/csv"
	"os"
	"path/filepath"
	"strings"

	"collections-reconciliation-service/pkg/errors"
	"collections-reconciliation-service/pkg/logger"

	"github.com/xuri/excelize/v2"
)

// Table is a loaded tabular file: normalized headers plus raw string rows.
// Cell values stay untyped here; coercion is the parsers' concern.
type Table struct {
	Source  string
	Headers []string
	Rows    [][]string

	headerIndex map[string]int
}

// NewTable builds a table from raw headers and rows, normalizing the
// headers. Used directly by tests; file loading goes through LoadFile.
func NewTable(source string, headers []string, rows [][]string) *Table {
	t := &Table{
		Source:  source,
		Headers: NormalizeHeaders(headers),
		Rows:    rows,
	}
	t.buildIndex()
	return t
}

func (t *Table) buildIndex() {
	t.headerIndex = make(map[string]int, len(t.Headers))
	for i, h := range t.Headers {
		if _, exists := t.headerIndex[h]; !exists {
			t.headerIndex[h] = i
		}
	}
}

// ColumnIndex returns the index of a normalized column name, or -1
func (t *Table) ColumnIndex(name string) int {
	if idx, ok := t.headerIndex[name]; ok {
		return idx
	}
	return -1
}

// Cell safely reads one cell from a row by column index. Ragged rows
// (shorter than the header) read as empty cells.
func (t *Table) Cell(row []string, idx int) string {
	if idx < 0 || idx >= len(row) {
		return ""
	}
	return strings.TrimSpace(row[idx])
}

// Len returns the number of data rows
func (t *Table) Len() int {
	return len(t.Rows)
}

// LoadFile loads a CSV or XLSX file into a Table. The first row is the
// header; fully empty rows are skipped. The delimiter applies to CSV only.
func LoadFile(path string, delimiter rune) (*Table, error) {
	log := logger.GetGlobalLogger().WithComponent("tabular")
	log.WithField("file_path", path).Debug("Loading tabular file")

	var raw [][]string
	var err error

	switch strings.ToLower(filepath.Ext(path)) {
	case ".csv", ".txt":
		raw, err = readCSV(path, delimiter)
	case ".xlsx", ".xlsm":
		raw, err = readXLSX(path)
	default:
		return nil, errors.FileError(errors.CodeUnsupportedExt, path, nil)
	}
	if err != nil {
		return nil, err
	}

	raw = dropEmptyRows(raw)
	if len(raw) == 0 {
		return nil, errors.New(errors.CategoryParse, errors.CodeEmptyTable,
			"file contains no header row: "+path).
			WithSuggestion("ensure the file has a header row followed by data rows").
			WithContext("file_path", path)
	}

	table := NewTable(path, raw[0], raw[1:])

	log.WithFields(logger.Fields{
		"file_path": path,
		"columns":   len(table.Headers),
		"rows":      table.Len(),
	}).Info("Loaded tabular file")

	return table, nil
}

func readCSV(path string, delimiter rune) ([][]string, error) {
	file, err := os.Open(path)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, errors.FileError(errors.CodeFileNotFound, path, err)
		}
		if os.IsPermission(err) {
			return nil, errors.FileError(errors.CodeFilePermission, path, err)
		}
		return nil, errors.FileError(errors.CodeFileCorrupted, path, err)
	}
	defer file.Close()

	reader := csv.NewReader(file)
	if delimiter != 0 {
		reader.Comma = delimiter
	}
	reader.TrimLeadingSpace = true
	reader.FieldsPerRecord = -1

	rows, err := reader.ReadAll()
	if err != nil {
		return nil, errors.Wrap(err, errors.CategoryParse, errors.CodeInvalidFormat,
			"failed to read CSV data from "+path).
			WithSuggestion("check the file format and delimiter")
	}

	return rows, nil
}

func readXLSX(path string) ([][]string, error) {
	f, err := excelize.OpenFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, errors.FileError(errors.CodeFileNotFound, path, err)
		}
		return nil, errors.FileError(errors.CodeFileCorrupted, path, err)
	}
	defer f.Close()

	sheet := f.GetSheetName(0)
	rows, err := f.GetRows(sheet)
	if err != nil {
		return nil, errors.Wrap(err, errors.CategoryParse, errors.CodeInvalidFormat,
			"failed to read worksheet '"+sheet+"' from "+path)
	}

	return rows, nil
}

func dropEmptyRows(rows [][]string) [][]string {
	kept := rows[:0]
	for _, row := range rows {
		if !isEmptyRow(row) {
			kept = append(kept, row)
		}
	}
	return kept
}

func isEmptyRow(row []string) bool {
	for _, cell := range row {
		if strings.TrimSpace(cell) != "" {
			return false
		}
	}
	return true
}
