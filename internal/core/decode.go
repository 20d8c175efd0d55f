package core

// decode.go turns raw bytes into a Table.
//
// Delimited text is split line by line with a small repair pass for values
// that contain "<delim> " (for example "Smith, John"). This is not general
// quoting support: a delimiter anywhere else inside a value splits the cell.
// Workbook sources are handled in workbook.go.

import (
	"bytes"
	"fmt"
	"strings"
)

// DecodeStats reports what normalisation the decoder applied.
type DecodeStats struct {
	Bytes     int64 // text size after BOM and UTF-8 cleanup
	Lines     int   // lines seen, header included
	Blank     int   // blank rows dropped
	Padded    int   // short rows padded to the header width
	Truncated int   // over-long rows that lost non-empty cells
	Sheet     string
}

type decodeOptions struct {
	sheet     string
	delimiter rune
}

// DecodeOption configures Decode.
type DecodeOption func(*decodeOptions)

// WithSheet selects the workbook sheet. Empty selects the first sheet.
// Ignored for delimited sources.
func WithSheet(name string) DecodeOption {
	return func(o *decodeOptions) { o.sheet = name }
}

// WithDelimiter sets the input field separator for delimited sources.
func WithDelimiter(d rune) DecodeOption {
	return func(o *decodeOptions) {
		if d != 0 {
			o.delimiter = d
		}
	}
}

func buildDecodeOptions(opts []DecodeOption) decodeOptions {
	o := decodeOptions{delimiter: ','}
	for _, opt := range opts {
		opt(&o)
	}
	return o
}

// Decode parses raw into a Table.
func Decode(raw []byte, kind SourceKind, opts ...DecodeOption) (*Table, error) {
	t, _, err := DecodeWithStats(raw, kind, opts...)
	return t, err
}

// DecodeWithStats is Decode plus a report of dropped, padded and truncated rows.
func DecodeWithStats(raw []byte, kind SourceKind, opts ...DecodeOption) (*Table, DecodeStats, error) {
	o := buildDecodeOptions(opts)

	var records [][]string
	var stats DecodeStats
	var err error

	switch kind {
	case SourceDelimited:
		records, stats, err = readDelimited(raw, o.delimiter)
	case SourceWorkbook:
		records, stats, err = readWorkbook(raw, o.sheet)
	default:
		return nil, stats, configErrorf("decode", ErrUnknownFormat, "source kind %d", int(kind))
	}
	if err != nil {
		return nil, stats, err
	}

	t, err := buildTable(records, &stats)
	if err != nil {
		return nil, stats, err
	}
	return t, stats, nil
}

// ReadHeader returns only the header columns of a source. A header-only
// source is accepted.
func ReadHeader(raw []byte, kind SourceKind, opts ...DecodeOption) ([]string, error) {
	o := buildDecodeOptions(opts)

	var records [][]string
	var err error

	switch kind {
	case SourceDelimited:
		records, _, err = readDelimited(raw, o.delimiter)
	case SourceWorkbook:
		records, _, err = readWorkbook(raw, o.sheet)
	default:
		return nil, configErrorf("read header", ErrUnknownFormat, "source kind %d", int(kind))
	}
	if err != nil {
		return nil, err
	}

	if len(records) == 0 || isEmptyRow(records[0]) {
		return nil, decodeErrorf("read header", ErrEmptySource, "no header row")
	}
	return cloneStrings(records[0]), nil
}

// buildTable takes the first record as header and normalises the rest.
func buildTable(records [][]string, stats *DecodeStats) (*Table, error) {
	if len(records) == 0 || isEmptyRow(records[0]) {
		return nil, decodeErrorf("decode", ErrEmptySource, "no header row")
	}

	header := records[0]
	width := len(header)
	rows := make([][]string, 0, len(records)-1)

	for _, rec := range records[1:] {
		if isEmptyRow(rec) {
			stats.Blank++
			continue
		}
		if len(rec) < width {
			stats.Padded++
		}
		row, lost := fitRow(rec, width)
		if lost {
			stats.Truncated++
		}
		rows = append(rows, row)
	}

	if len(rows) == 0 {
		return nil, decodeErrorf("decode", ErrEmptySource, "no data rows")
	}

	return &Table{Header: header, Rows: rows}, nil
}

// readDelimited splits text into one record per line. A trailing newline
// yields an empty last record, which buildTable drops as blank.
func readDelimited(raw []byte, delim rune) ([][]string, DecodeStats, error) {
	var stats DecodeStats

	text, err := CleanText(raw)
	if err != nil {
		return nil, stats, decodeError("decode", fmt.Errorf("clean input: %w", err))
	}
	stats.Bytes = int64(len(text))

	if len(text) == 0 {
		return nil, stats, decodeErrorf("decode", ErrEmptySource, "zero bytes")
	}
	if i := bytes.IndexByte(text, 0); i >= 0 {
		return nil, stats, decodeErrorf("decode", ErrBinarySource, "NUL byte at offset %d", i)
	}

	sep := string(delim)
	lines := strings.Split(string(text), "\n")
	records := make([][]string, 0, len(lines))

	for _, line := range lines {
		stats.Lines++
		line = strings.TrimSuffix(line, "\r")
		records = append(records, splitFields(line, sep))
	}

	return records, stats, nil
}

// splitFields splits line on sep, then merges any field that starts with a
// space back into the field before it.
func splitFields(line, sep string) []string {
	parts := strings.Split(line, sep)
	fields := make([]string, 0, len(parts))

	for i, p := range parts {
		if i > 0 && len(fields) > 0 && strings.HasPrefix(p, " ") {
			fields[len(fields)-1] += sep + p
			continue
		}
		fields = append(fields, p)
	}
	return fields
}
