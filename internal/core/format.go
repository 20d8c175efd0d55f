package core

import (
	"fmt"
	"path/filepath"
	"strings"
)

// OutputFormat selects the encoding of produced files.
type OutputFormat int

const (
	FormatCSV       OutputFormat = iota // comma-delimited text
	FormatSemicolon                     // semicolon-delimited text
	FormatTab                           // tab-delimited text
	FormatXLSX                          // spreadsheet workbook
)

// OutputFormats lists every supported format in display order.
var OutputFormats = []OutputFormat{FormatCSV, FormatSemicolon, FormatTab, FormatXLSX}

// String returns the short name accepted by ParseOutputFormat.
func (f OutputFormat) String() string {
	switch f {
	case FormatCSV:
		return "csv"
	case FormatSemicolon:
		return "semicolon"
	case FormatTab:
		return "tab"
	case FormatXLSX:
		return "xlsx"
	default:
		return fmt.Sprintf("OutputFormat(%d)", int(f))
	}
}

// Label returns a human-readable description for selectors.
func (f OutputFormat) Label() string {
	switch f {
	case FormatCSV:
		return "CSV (comma)"
	case FormatSemicolon:
		return "CSV (semicolon)"
	case FormatTab:
		return "TSV (tab)"
	case FormatXLSX:
		return "Excel workbook"
	default:
		return f.String()
	}
}

// Delimiter returns the field separator for delimited formats.
// The second result is false for spreadsheet output.
func (f OutputFormat) Delimiter() (rune, bool) {
	switch f {
	case FormatCSV:
		return ',', true
	case FormatSemicolon:
		return ';', true
	case FormatTab:
		return '\t', true
	default:
		return 0, false
	}
}

// Extension returns the file extension without the dot.
func (f OutputFormat) Extension() string {
	switch f {
	case FormatCSV, FormatSemicolon:
		return "csv"
	case FormatTab:
		return "tsv"
	case FormatXLSX:
		return "xlsx"
	default:
		return "bin"
	}
}

// ContentType returns the MIME type for downloads.
func (f OutputFormat) ContentType() string {
	switch f {
	case FormatCSV, FormatSemicolon:
		return "text/csv; charset=utf-8"
	case FormatTab:
		return "text/tab-separated-values; charset=utf-8"
	case FormatXLSX:
		return "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet"
	default:
		return "application/octet-stream"
	}
}

func (f OutputFormat) valid() bool {
	return f >= FormatCSV && f <= FormatXLSX
}

// ParseOutputFormat parses a format name. Empty input selects FormatCSV.
func ParseOutputFormat(s string) (OutputFormat, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "", "csv", "comma":
		return FormatCSV, nil
	case "semicolon", "csv-semicolon", "ssv":
		return FormatSemicolon, nil
	case "tab", "tsv":
		return FormatTab, nil
	case "xlsx", "excel", "spreadsheet":
		return FormatXLSX, nil
	default:
		return 0, configErrorf("parse format", ErrUnknownFormat, "%q", s)
	}
}

// JoinMode selects how the Combiner merges its sources.
type JoinMode int

const (
	ModeUnion JoinMode = iota
	ModeLeftJoin
	ModeRightJoin
)

func (m JoinMode) String() string {
	switch m {
	case ModeUnion:
		return "union"
	case ModeLeftJoin:
		return "left"
	case ModeRightJoin:
		return "right"
	default:
		return fmt.Sprintf("JoinMode(%d)", int(m))
	}
}

// IsJoin reports whether the mode is key-based.
func (m JoinMode) IsJoin() bool {
	return m == ModeLeftJoin || m == ModeRightJoin
}

// ParseJoinMode parses a mode name.
func ParseJoinMode(s string) (JoinMode, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "union":
		return ModeUnion, nil
	case "left", "left-join", "leftjoin":
		return ModeLeftJoin, nil
	case "right", "right-join", "rightjoin":
		return ModeRightJoin, nil
	default:
		return 0, configErrorf("parse mode", ErrUnknownMode, "%q", s)
	}
}

// SourceKind tells the decoder how to read raw bytes.
type SourceKind int

const (
	SourceDelimited SourceKind = iota
	SourceWorkbook
)

func (k SourceKind) String() string {
	switch k {
	case SourceDelimited:
		return "delimited"
	case SourceWorkbook:
		return "workbook"
	default:
		return fmt.Sprintf("SourceKind(%d)", int(k))
	}
}

// DetectSourceKind picks the decoder from a file name's extension. Legacy
// .xls files are routed to the workbook reader, which rejects them with
// ErrUnreadableWorkbook. Unknown extensions are read as delimited text.
func DetectSourceKind(fileName string) SourceKind {
	switch strings.ToLower(filepath.Ext(fileName)) {
	case ".xlsx", ".xlsm", ".xltx", ".xltm", ".xls":
		return SourceWorkbook
	default:
		return SourceDelimited
	}
}

// DetectDelimiter picks the input separator from a file name's extension.
func DetectDelimiter(fileName string) rune {
	switch strings.ToLower(filepath.Ext(fileName)) {
	case ".tsv", ".tab":
		return '\t'
	default:
		return ','
	}
}

// ParseDelimiter parses an input separator by format name (csv, semicolon,
// tab) or as the literal character. Empty returns 0, meaning "detect".
func ParseDelimiter(s string) (rune, error) {
	switch s {
	case "":
		return 0, nil
	case ",", ";", "\t":
		return rune(s[0]), nil
	}
	f, err := ParseOutputFormat(s)
	if err != nil {
		return 0, configErrorf("parse delimiter", ErrUnknownFormat, "%q", s)
	}
	d, ok := f.Delimiter()
	if !ok {
		return 0, configErrorf("parse delimiter", ErrUnknownFormat, "%s has no delimiter", f)
	}
	return d, nil
}
