// Package sheet materializes spreadsheet files into rows of string cells.
package sheet

import (
	"fmt"
	"path/filepath"
	"strings"

	"github.com/cognicore/recipebook/pkg/recipebook/internalerr"
)

// ReadRows loads every row of the file at path, header included. sheetName
// selects a worksheet for workbook formats; empty means the active sheet.
// Absent cells are returned as "" and rows are padded to the widest row.
func ReadRows(path, sheetName string) ([][]string, error) {
	var (
		rows [][]string
		err  error
	)

	switch ext := strings.ToLower(filepath.Ext(path)); ext {
	case ".xlsx", ".xlsm":
		rows, err = readWorkbook(path, sheetName)
	case ".csv":
		rows, err = readCSV(path)
	default:
		return nil, fmt.Errorf("%w: %q", internalerr.ErrUnsupportedFormat, ext)
	}
	if err != nil {
		return nil, err
	}

	return pad(rows), nil
}

// pad extends short rows with empty cells up to the widest row.
func pad(rows [][]string) [][]string {
	width := 0
	for _, r := range rows {
		width = max(width, len(r))
	}
	for i, r := range rows {
		if len(r) < width {
			padded := make([]string, width)
			copy(padded, r)
			rows[i] = padded
		}
	}
	return rows
}
