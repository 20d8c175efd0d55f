package core

import (
	"errors"
	"reflect"
	"testing"

	"github.com/xuri/excelize/v2"
)

// buildWorkbook writes an xlsx with one sheet per entry, in order.
func buildWorkbook(t *testing.T, sheets []string, rows map[string][][]string) []byte {
	t.Helper()

	f := excelize.NewFile()
	defer f.Close()

	for i, name := range sheets {
		if i == 0 {
			if err := f.SetSheetName("Sheet1", name); err != nil {
				t.Fatalf("SetSheetName: %v", err)
			}
		} else if _, err := f.NewSheet(name); err != nil {
			t.Fatalf("NewSheet(%s): %v", name, err)
		}
		for r, row := range rows[name] {
			cell, err := excelize.CoordinatesToCellName(1, r+1)
			if err != nil {
				t.Fatalf("CoordinatesToCellName: %v", err)
			}
			values := row
			if err := f.SetSheetRow(name, cell, &values); err != nil {
				t.Fatalf("SetSheetRow: %v", err)
			}
		}
	}

	buf, err := f.WriteToBuffer()
	if err != nil {
		t.Fatalf("WriteToBuffer: %v", err)
	}
	return buf.Bytes()
}

func TestDecode_Delimited(t *testing.T) {
	tests := []struct {
		name       string
		input      string
		opts       []DecodeOption
		wantHeader []string
		wantRows   [][]string
	}{
		{
			name:       "simple",
			input:      "id,name\n1,alice\n2,bob",
			wantHeader: []string{"id", "name"},
			wantRows:   [][]string{{"1", "alice"}, {"2", "bob"}},
		},
		{
			name:       "trailing newline",
			input:      "id,name\n1,alice\n",
			wantHeader: []string{"id", "name"},
			wantRows:   [][]string{{"1", "alice"}},
		},
		{
			name:       "CRLF line endings",
			input:      "id,name\r\n1,alice\r\n2,bob\r\n",
			wantHeader: []string{"id", "name"},
			wantRows:   [][]string{{"1", "alice"}, {"2", "bob"}},
		},
		{
			name:       "short rows padded",
			input:      "a,b,c\n1\n1,2",
			wantHeader: []string{"a", "b", "c"},
			wantRows:   [][]string{{"1", "", ""}, {"1", "2", ""}},
		},
		{
			name:       "long rows truncated to header width",
			input:      "a,b\n1,2,3",
			wantHeader: []string{"a", "b"},
			wantRows:   [][]string{{"1", "2"}},
		},
		{
			name:       "blank lines dropped",
			input:      "a,b,c\n1,2,3\n,,\n  , ,\n\n4,5,6",
			wantHeader: []string{"a", "b", "c"},
			wantRows:   [][]string{{"1", "2", "3"}, {"4", "5", "6"}},
		},
		{
			name:       "comma space rejoined",
			input:      "name,qty\nSmith, John,5",
			wantHeader: []string{"name", "qty"},
			wantRows:   [][]string{{"Smith, John", "5"}},
		},
		{
			name:       "several continuations rejoined",
			input:      "name,qty\nA, B, C,5",
			wantHeader: []string{"name", "qty"},
			wantRows:   [][]string{{"A, B, C", "5"}},
		},
		{
			name:       "BOM stripped from header",
			input:      "\xEF\xBB\xBFid,name\n1,alice",
			wantHeader: []string{"id", "name"},
			wantRows:   [][]string{{"1", "alice"}},
		},
		{
			name:       "semicolon delimiter",
			input:      "id;name\n1;alice",
			opts:       []DecodeOption{WithDelimiter(';')},
			wantHeader: []string{"id", "name"},
			wantRows:   [][]string{{"1", "alice"}},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := Decode([]byte(tt.input), SourceDelimited, tt.opts...)
			if err != nil {
				t.Fatalf("Decode() error = %v", err)
			}
			if !reflect.DeepEqual(got.Header, tt.wantHeader) {
				t.Errorf("Header = %q, want %q", got.Header, tt.wantHeader)
			}
			if !reflect.DeepEqual(got.Rows, tt.wantRows) {
				t.Errorf("Rows = %q, want %q", got.Rows, tt.wantRows)
			}
			if i := got.checkShape(); i >= 0 {
				t.Errorf("row %d does not match header width", i)
			}
		})
	}
}

func TestDecodeWithStats(t *testing.T) {
	input := "a,b\n1\n,\n1,2,3\n1,2,\n4,5"

	_, stats, err := DecodeWithStats([]byte(input), SourceDelimited)
	if err != nil {
		t.Fatalf("DecodeWithStats() error = %v", err)
	}

	if stats.Lines != 6 {
		t.Errorf("Lines = %d, want 6", stats.Lines)
	}
	if stats.Blank != 1 {
		t.Errorf("Blank = %d, want 1", stats.Blank)
	}
	if stats.Padded != 1 {
		t.Errorf("Padded = %d, want 1", stats.Padded)
	}
	// "1,2," loses only an empty cell, so it is not counted.
	if stats.Truncated != 1 {
		t.Errorf("Truncated = %d, want 1", stats.Truncated)
	}
}

func TestDecode_EmptyInput(t *testing.T) {
	tests := []struct {
		name  string
		input string
	}{
		{name: "zero bytes", input: ""},
		{name: "only BOM", input: "\xEF\xBB\xBF"},
		{name: "blank header line", input: "\nfoo,bar"},
		{name: "header only", input: "id,name\n"},
		{name: "header and blank rows", input: "id,name\n,\n \n"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := Decode([]byte(tt.input), SourceDelimited)
			if err == nil {
				t.Fatalf("Decode() = %v, want error", got)
			}
			if got != nil {
				t.Errorf("Decode() returned a table alongside the error")
			}
			if !errors.Is(err, ErrEmptySource) {
				t.Errorf("error = %v, want ErrEmptySource", err)
			}
			if !IsKind(err, KindDecode) {
				t.Errorf("error kind = %v, want decode", KindOf(err))
			}
		})
	}
}

func TestDecode_RoundTripLosesEmbeddedDelimiter(t *testing.T) {
	original := &Table{
		Header: []string{"a", "b", "c"},
		Rows:   [][]string{{"x,y", "z", ""}},
	}

	data, err := Encode(original, FormatCSV)
	if err != nil {
		t.Fatalf("Encode() error = %v", err)
	}

	got, err := Decode(data, SourceDelimited)
	if err != nil {
		t.Fatalf("Decode() error = %v", err)
	}

	// The embedded comma splits the first cell and shifts the rest.
	want := [][]string{{"x", "y", "z"}}
	if !reflect.DeepEqual(got.Rows, want) {
		t.Errorf("Rows = %q, want %q", got.Rows, want)
	}
	if reflect.DeepEqual(got.Rows, original.Rows) {
		t.Error("round trip unexpectedly preserved cell boundaries")
	}
}

func TestDecode_Workbook(t *testing.T) {
	raw := buildWorkbook(t, []string{"Stores", "Items"}, map[string][][]string{
		"Stores": {{"code", "city"}, {"NYC", "New York"}, {"SEA"}},
		"Items":  {{"sku", "name"}, {"1", "widget"}},
	})

	t.Run("first sheet by default", func(t *testing.T) {
		got, stats, err := DecodeWithStats(raw, SourceWorkbook)
		if err != nil {
			t.Fatalf("Decode() error = %v", err)
		}
		if stats.Sheet != "Stores" {
			t.Errorf("Sheet = %q, want Stores", stats.Sheet)
		}
		want := [][]string{{"NYC", "New York"}, {"SEA", ""}}
		if !reflect.DeepEqual(got.Rows, want) {
			t.Errorf("Rows = %q, want %q", got.Rows, want)
		}
	})

	t.Run("named sheet", func(t *testing.T) {
		got, err := Decode(raw, SourceWorkbook, WithSheet("Items"))
		if err != nil {
			t.Fatalf("Decode() error = %v", err)
		}
		if !reflect.DeepEqual(got.Header, []string{"sku", "name"}) {
			t.Errorf("Header = %q", got.Header)
		}
	})

	t.Run("unknown sheet", func(t *testing.T) {
		_, err := Decode(raw, SourceWorkbook, WithSheet("Missing"))
		if !errors.Is(err, ErrSheetNotFound) {
			t.Errorf("error = %v, want ErrSheetNotFound", err)
		}
		if !IsKind(err, KindDecode) {
			t.Errorf("error kind = %v, want decode", KindOf(err))
		}
	})

	t.Run("unreadable bytes", func(t *testing.T) {
		_, err := Decode([]byte("definitely not a zip"), SourceWorkbook)
		if !errors.Is(err, ErrUnreadableWorkbook) {
			t.Errorf("error = %v, want ErrUnreadableWorkbook", err)
		}
	})
}

func TestDecode_EmptyWorkbookSheet(t *testing.T) {
	raw := buildWorkbook(t, []string{"Empty"}, nil)

	_, err := Decode(raw, SourceWorkbook)
	if !errors.Is(err, ErrEmptySource) {
		t.Errorf("error = %v, want ErrEmptySource", err)
	}
}

func TestListSheets(t *testing.T) {
	raw := buildWorkbook(t, []string{"Q1", "Q2", "Q3"}, nil)

	got, err := ListSheets(raw)
	if err != nil {
		t.Fatalf("ListSheets() error = %v", err)
	}
	want := []string{"Q1", "Q2", "Q3"}
	if !reflect.DeepEqual(got, want) {
		t.Errorf("ListSheets() = %q, want %q", got, want)
	}

	if _, err := ListSheets(nil); !errors.Is(err, ErrEmptySource) {
		t.Errorf("ListSheets(nil) error = %v, want ErrEmptySource", err)
	}
}

func TestReadHeader(t *testing.T) {
	got, err := ReadHeader([]byte("id,name\n"), SourceDelimited)
	if err != nil {
		t.Fatalf("ReadHeader() error = %v", err)
	}
	if !reflect.DeepEqual(got, []string{"id", "name"}) {
		t.Errorf("ReadHeader() = %q", got)
	}

	if _, err := ReadHeader([]byte("\n\n"), SourceDelimited); !errors.Is(err, ErrEmptySource) {
		t.Errorf("ReadHeader(blank) error = %v, want ErrEmptySource", err)
	}
}

func TestDetectSourceKind(t *testing.T) {
	tests := []struct {
		name string
		want SourceKind
	}{
		{"data.csv", SourceDelimited},
		{"data.TSV", SourceDelimited},
		{"data", SourceDelimited},
		{"report.xlsx", SourceWorkbook},
		{"REPORT.XLSM", SourceWorkbook},
		{"template.xltx", SourceWorkbook},
		{"legacy.xls", SourceWorkbook},
		{"legacy.XLS", SourceWorkbook},
	}

	for _, tt := range tests {
		if got := DetectSourceKind(tt.name); got != tt.want {
			t.Errorf("DetectSourceKind(%q) = %v, want %v", tt.name, got, tt.want)
		}
	}
}

func TestDetectDelimiter(t *testing.T) {
	tests := []struct {
		name string
		want rune
	}{
		{"data.csv", ','},
		{"data.txt", ','},
		{"chunk_1.tsv", '\t'},
		{"EXPORT.TAB", '\t'},
		{"noext", ','},
	}

	for _, tt := range tests {
		if got := DetectDelimiter(tt.name); got != tt.want {
			t.Errorf("DetectDelimiter(%q) = %q, want %q", tt.name, got, tt.want)
		}
	}
}

func TestParseDelimiter(t *testing.T) {
	tests := []struct {
		input   string
		want    rune
		wantErr bool
	}{
		{"", 0, false},
		{",", ',', false},
		{";", ';', false},
		{"\t", '\t', false},
		{"csv", ',', false},
		{"semicolon", ';', false},
		{"tab", '\t', false},
		{"xlsx", 0, true},
		{"pipe", 0, true},
	}

	for _, tt := range tests {
		got, err := ParseDelimiter(tt.input)
		if tt.wantErr {
			if !IsKind(err, KindConfig) || !errors.Is(err, ErrUnknownFormat) {
				t.Errorf("ParseDelimiter(%q) error = %v, want config ErrUnknownFormat", tt.input, err)
			}
			continue
		}
		if err != nil || got != tt.want {
			t.Errorf("ParseDelimiter(%q) = %q, %v, want %q", tt.input, got, err, tt.want)
		}
	}
}

func TestSourceFile_Kind(t *testing.T) {
	ole := []byte{0xD0, 0xCF, 0x11, 0xE0, 0xA1, 0xB1, 0x1A, 0xE1, 0, 0, 'x'}

	tests := []struct {
		name string
		file SourceFile
		want SourceKind
	}{
		{"csv text", SourceFile{Name: "a.csv", Data: []byte("a\n1")}, SourceDelimited},
		{"zip named csv", SourceFile{Name: "a.csv", Data: []byte("PK\x03\x04rest")}, SourceWorkbook},
		{"ole2 named txt", SourceFile{Name: "a.txt", Data: ole}, SourceWorkbook},
		{"xls by name", SourceFile{Name: "a.xls", Data: []byte("junk")}, SourceWorkbook},
	}

	for _, tt := range tests {
		if got := tt.file.Kind(); got != tt.want {
			t.Errorf("%s: Kind() = %v, want %v", tt.name, got, tt.want)
		}
	}
}

func TestSourceFile_RejectsBinary(t *testing.T) {
	ole := append([]byte{0xD0, 0xCF, 0x11, 0xE0, 0xA1, 0xB1, 0x1A, 0xE1}, []byte("\x00\x00junk,data\nmore")...)

	tests := []struct {
		name    string
		file    SourceFile
		wantErr error
	}{
		{"legacy xls", SourceFile{Name: "legacy.xls", Data: ole}, ErrUnreadableWorkbook},
		{"ole2 renamed", SourceFile{Name: "legacy.csv", Data: ole}, ErrUnreadableWorkbook},
		{"nul bytes", SourceFile{Name: "blob.bin", Data: []byte("a,b\n1\x002,3")}, ErrBinarySource},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, _, err := tt.file.Decode()
			if !errors.Is(err, tt.wantErr) {
				t.Fatalf("Decode() error = %v, want %v", err, tt.wantErr)
			}
			if !IsKind(err, KindDecode) {
				t.Errorf("error kind = %v, want decode", KindOf(err))
			}
		})
	}
}

func TestSourceFile_ReadsOwnTabOutput(t *testing.T) {
	in := &Table{Header: []string{"id", "name"}, Rows: [][]string{{"1", "alice"}, {"2", "bob"}}}
	data, err := Encode(in, FormatTab)
	if err != nil {
		t.Fatalf("Encode: %v", err)
	}

	got, _, err := SourceFile{Name: ChunkEntryName(1, FormatTab), Data: data}.Decode()
	if err != nil {
		t.Fatalf("Decode: %v", err)
	}
	if !reflect.DeepEqual(got, in) {
		t.Errorf("round trip = %+v, want %+v", got, in)
	}

	// An explicit delimiter wins over the extension.
	semi := SourceFile{Name: "data.csv", Data: []byte("id;name\n1;alice"), Delimiter: ';'}
	hdr, err := semi.Header()
	if err != nil {
		t.Fatalf("Header: %v", err)
	}
	if !reflect.DeepEqual(hdr, []string{"id", "name"}) {
		t.Errorf("Header() = %q, want [id name]", hdr)
	}
}
