package sheet

import (
	"fmt"
	"slices"

	"github.com/xuri/excelize/v2"

	"github.com/cognicore/recipebook/pkg/recipebook/internalerr"
)

func readWorkbook(path, sheetName string) ([][]string, error) {
	f, err := excelize.OpenFile(path)
	if err != nil {
		return nil, fmt.Errorf("open workbook: %w", err)
	}
	defer f.Close()

	if sheetName == "" {
		sheetName = f.GetSheetName(f.GetActiveSheetIndex())
	} else if !slices.Contains(f.GetSheetList(), sheetName) {
		return nil, fmt.Errorf("%w: sheet %q", internalerr.ErrNotFound, sheetName)
	}

	rows, err := f.GetRows(sheetName)
	if err != nil {
		return nil, fmt.Errorf("read sheet %q: %w", sheetName, err)
	}
	return rows, nil
}
