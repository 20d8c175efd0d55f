package core

import (
	"bytes"
	"fmt"

	"github.com/xuri/excelize/v2"
)

// DefaultSheetName is the sheet written by the spreadsheet encoder.
const DefaultSheetName = "Sheet1"

// ListSheets returns the sheet names of a workbook in workbook order.
func ListSheets(raw []byte) ([]string, error) {
	f, err := openWorkbook(raw)
	if err != nil {
		return nil, err
	}
	defer func() {
		_ = f.Close()
	}()

	return f.GetSheetList(), nil
}

func openWorkbook(raw []byte) (*excelize.File, error) {
	if len(raw) == 0 {
		return nil, decodeErrorf("open workbook", ErrEmptySource, "zero bytes")
	}
	if bytes.HasPrefix(raw, oleMagic) {
		return nil, decodeErrorf("open workbook", ErrUnreadableWorkbook, "legacy .xls or encrypted workbook")
	}
	f, err := excelize.OpenReader(bytes.NewReader(raw))
	if err != nil {
		return nil, decodeErrorf("open workbook", ErrUnreadableWorkbook, "%v", err)
	}
	return f, nil
}

// readWorkbook reads every row of one sheet as formatted cell strings.
// An empty sheet name selects the first sheet.
func readWorkbook(raw []byte, sheet string) ([][]string, DecodeStats, error) {
	stats := DecodeStats{Bytes: int64(len(raw))}

	f, err := openWorkbook(raw)
	if err != nil {
		return nil, stats, err
	}
	defer func() {
		_ = f.Close()
	}()

	sheets := f.GetSheetList()
	if len(sheets) == 0 {
		return nil, stats, decodeErrorf("decode", ErrEmptySource, "workbook has no sheets")
	}

	if sheet == "" {
		sheet = sheets[0]
	} else if !containsString(sheets, sheet) {
		return nil, stats, decodeErrorf("decode", ErrSheetNotFound, "%q (available: %v)", sheet, sheets)
	}
	stats.Sheet = sheet

	iter, err := f.Rows(sheet)
	if err != nil {
		return nil, stats, decodeError("decode", fmt.Errorf("open rows of sheet %s: %w", sheet, err))
	}
	defer func() {
		_ = iter.Close()
	}()

	var records [][]string
	for iter.Next() {
		row, err := iter.Columns()
		if err != nil {
			return nil, stats, decodeError("decode", fmt.Errorf("read row %d of sheet %s: %w", stats.Lines+1, sheet, err))
		}
		stats.Lines++
		records = append(records, row)
	}
	if err := iter.Error(); err != nil {
		return nil, stats, decodeError("decode", fmt.Errorf("iterate sheet %s: %w", sheet, err))
	}

	if len(records) == 0 {
		return nil, stats, decodeErrorf("decode", ErrEmptySource, "sheet %s has no rows", sheet)
	}
	return records, stats, nil
}

func containsString(list []string, s string) bool {
	for _, v := range list {
		if v == s {
			return true
		}
	}
	return false
}
