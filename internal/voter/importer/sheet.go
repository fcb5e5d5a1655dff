package importer

import (
	"bytes"
	"fmt"
	"path/filepath"
	"strings"

	"github.com/extrame/xls"
	"github.com/xuri/excelize/v2"
)

// Supported spreadsheet extensions.
const (
	extXLSX = ".xlsx"
	extXLS  = ".xls"
)

// sheetReader returns the cells of the first sheet, one slice per row.
// Row i of the result is spreadsheet row i+1.
type sheetReader func(data []byte) ([][]string, error)

func readerFor(filename string) (sheetReader, bool) {
	switch strings.ToLower(filepath.Ext(filename)) {
	case extXLSX:
		return readXLSX, true
	case extXLS:
		return readXLS, true
	}
	return nil, false
}

func readXLSX(data []byte) ([][]string, error) {
	f, err := excelize.OpenReader(bytes.NewReader(data))
	if err != nil {
		return nil, fmt.Errorf("open xlsx: %w", err)
	}
	defer f.Close()

	sheets := f.GetSheetList()
	if len(sheets) == 0 {
		return nil, fmt.Errorf("workbook has no sheets")
	}
	rows, err := f.GetRows(sheets[0])
	if err != nil {
		return nil, fmt.Errorf("read sheet %q: %w", sheets[0], err)
	}
	return rows, nil
}

func readXLS(data []byte) (rows [][]string, err error) {
	// The legacy BIFF parser panics on some corrupt inputs.
	defer func() {
		if r := recover(); r != nil {
			rows, err = nil, fmt.Errorf("corrupt xls: %v", r)
		}
	}()

	wb, err := xls.OpenReader(bytes.NewReader(data), "utf-8")
	if err != nil {
		return nil, fmt.Errorf("open xls: %w", err)
	}
	sheet := wb.GetSheet(0)
	if sheet == nil {
		return nil, fmt.Errorf("workbook has no sheets")
	}

	// Rows written without a ROW record report no extent, so the widest
	// extent seen so far (normally the header) bounds them.
	width := 0
	rows = make([][]string, 0, int(sheet.MaxRow)+1)
	for i := 0; i <= int(sheet.MaxRow); i++ {
		row := sheetRow(sheet, i)
		if row == nil {
			rows = append(rows, nil)
			continue
		}
		last := max(row.LastCol(), width)
		width = max(width, row.LastCol())
		cells := make([]string, last)
		for c := range cells {
			cells[c] = row.Col(c)
		}
		rows = append(rows, cells)
	}
	return rows, nil
}

// sheetRow returns nil for a row the file holds no records for. The parser
// dereferences the missing row instead of returning nil.
func sheetRow(sheet *xls.WorkSheet, i int) (row *xls.Row) {
	defer func() {
		if recover() != nil {
			row = nil
		}
	}()
	return sheet.Row(i)
}
