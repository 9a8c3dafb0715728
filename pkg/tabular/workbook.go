package tabular

import (
	"bytes"
	"fmt"

	"github.com/extrame/xls"
	"github.com/xuri/excelize/v2"
)

// readWorkbook returns the display values of the active sheet. Missing cells
// come back as empty strings.
func readWorkbook(raw []byte) ([][]string, error) {
	file, err := excelize.OpenReader(bytes.NewReader(raw))
	if err != nil {
		return nil, fmt.Errorf("%w: open workbook: %v", ErrUndecodable, err)
	}
	defer func() { _ = file.Close() }()

	sheet := file.GetSheetName(file.GetActiveSheetIndex())
	if sheet == "" {
		sheets := file.GetSheetList()
		if len(sheets) == 0 {
			return nil, fmt.Errorf("%w: no worksheet found", ErrUndecodable)
		}
		sheet = sheets[0]
	}

	rows, err := file.GetRows(sheet)
	if err != nil {
		return nil, fmt.Errorf("%w: read sheet %q: %v", ErrUndecodable, sheet, err)
	}
	return rows, nil
}

// readLegacyWorkbook reads the first sheet of a BIFF (.xls) workbook.
func readLegacyWorkbook(raw []byte) (rows [][]string, err error) {
	// the xls reader panics on some malformed files
	defer func() {
		if r := recover(); r != nil {
			rows = nil
			err = fmt.Errorf("%w: malformed xls: %v", ErrUndecodable, r)
		}
	}()

	workbook, err := xls.OpenReader(bytes.NewReader(raw), "utf-8")
	if err != nil {
		return nil, fmt.Errorf("%w: open xls: %v", ErrUndecodable, err)
	}
	if workbook.NumSheets() == 0 {
		return nil, fmt.Errorf("%w: no worksheet found", ErrUndecodable)
	}
	sheet := workbook.GetSheet(0)
	if sheet == nil {
		return [][]string{}, nil
	}

	rows = make([][]string, 0, int(sheet.MaxRow)+1)
	for i := 0; i <= int(sheet.MaxRow); i++ {
		row := legacyRow(sheet, i)
		if row == nil {
			continue
		}
		cells := make([]string, 0, row.LastCol())
		for col := row.FirstCol(); col < row.LastCol(); col++ {
			cells = append(cells, row.Col(col))
		}
		rows = append(rows, cells)
	}
	return rows, nil
}

// legacyRow returns nil for row indexes the sheet has no record for. The xls
// reader dereferences the missing entry instead of returning nil.
func legacyRow(sheet *xls.WorkSheet, i int) (row *xls.Row) {
	defer func() {
		if recover() != nil {
			row = nil
		}
	}()
	return sheet.Row(i)
}
