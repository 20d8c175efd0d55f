package core

import (
	"strings"

	"github.com/xuri/excelize/v2"
)

// Encode serializes t in format f.
//
// Delimited formats join cells with the delimiter and lines with "\n". No
// quoting or escaping is applied, so a cell containing the delimiter or a
// newline does not survive a decode round trip.
func Encode(t *Table, f OutputFormat) ([]byte, error) {
	if t == nil {
		return nil, encodeErrorf("encode", ErrEmptySource, "nil table")
	}
	if i := t.checkShape(); i >= 0 {
		return nil, encodeErrorf("encode", ErrRaggedRow, "row %d has %d cells, header has %d", i+1, len(t.Rows[i]), t.Width())
	}

	switch f {
	case FormatCSV, FormatSemicolon, FormatTab:
		d, _ := f.Delimiter()
		return encodeDelimited(t, string(d)), nil
	case FormatXLSX:
		return encodeWorkbook(t)
	default:
		return nil, encodeErrorf("encode", ErrUnknownFormat, "%s", f)
	}
}

// EncodeAll encodes each table in order. The first failure aborts and no
// payloads are returned.
func EncodeAll(tables []*Table, f OutputFormat) ([][]byte, error) {
	out := make([][]byte, 0, len(tables))
	for i, t := range tables {
		data, err := Encode(t, f)
		if err != nil {
			return nil, encodeErrorf("encode all", err, "table %d", i+1)
		}
		out = append(out, data)
	}
	return out, nil
}

func encodeDelimited(t *Table, sep string) []byte {
	var b strings.Builder
	b.WriteString(strings.Join(t.Header, sep))
	for _, row := range t.Rows {
		b.WriteByte('\n')
		b.WriteString(strings.Join(row, sep))
	}
	return []byte(b.String())
}

// encodeWorkbook writes t into a single-sheet workbook named DefaultSheetName.
// Every cell is written as a string.
func encodeWorkbook(t *Table) ([]byte, error) {
	f := excelize.NewFile()
	defer func() {
		_ = f.Close()
	}()

	sw, err := f.NewStreamWriter(DefaultSheetName)
	if err != nil {
		return nil, encodeErrorf("encode", err, "open sheet writer")
	}

	writeRow := func(rowNum int, cells []string) error {
		cell, err := excelize.CoordinatesToCellName(1, rowNum)
		if err != nil {
			return err
		}
		values := make([]interface{}, len(cells))
		for i, v := range cells {
			values[i] = v
		}
		return sw.SetRow(cell, values)
	}

	if err := writeRow(1, t.Header); err != nil {
		return nil, encodeErrorf("encode", err, "write header")
	}
	for i, row := range t.Rows {
		if err := writeRow(i+2, row); err != nil {
			return nil, encodeErrorf("encode", err, "write row %d", i+1)
		}
	}
	if err := sw.Flush(); err != nil {
		return nil, encodeErrorf("encode", err, "flush sheet")
	}

	buf, err := f.WriteToBuffer()
	if err != nil {
		return nil, encodeErrorf("encode", err, "write workbook")
	}
	return buf.Bytes(), nil
}
