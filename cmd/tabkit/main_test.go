package main

import (
	"bytes"
	"context"
	"io"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/klauspost/compress/zip"
)

func writeFile(t *testing.T, dir, name, content string) string {
	t.Helper()
	path := filepath.Join(dir, name)
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		t.Fatalf("WriteFile: %v", err)
	}
	return path
}

func runCLI(t *testing.T, args ...string) (int, string, string) {
	t.Helper()
	var stdout, stderr bytes.Buffer
	code := run(context.Background(), args, &stdout, &stderr)
	return code, stdout.String(), stderr.String()
}

func TestChunkCommand(t *testing.T) {
	dir := t.TempDir()
	in := writeFile(t, dir, "data.csv", "n\n1\n2\n3\n4\n5\n")

	code, stdout, stderr := runCLI(t, "chunk", "-rows", "2", "-format", "tab", in)
	if code != 0 {
		t.Fatalf("exit = %d, stderr %q", code, stderr)
	}
	if !strings.Contains(stdout, "Success: 3 files chunked and zip downloaded.") {
		t.Errorf("stdout = %q", stdout)
	}

	zr, err := zip.OpenReader(filepath.Join(dir, "data_chunks.zip"))
	if err != nil {
		t.Fatalf("open archive: %v", err)
	}
	defer zr.Close()

	var names []string
	for _, f := range zr.File {
		names = append(names, f.Name)
	}
	if strings.Join(names, ",") != "chunk_1.tsv,chunk_2.tsv,chunk_3.tsv" {
		t.Errorf("entries = %q", names)
	}
}

func TestChunkCommand_ValidateFails(t *testing.T) {
	dir := t.TempDir()
	in := writeFile(t, dir, "data.csv", "a,b\n1,2\n")

	code, _, stderr := runCLI(t, "chunk", "-validate", in)
	if code != 1 {
		t.Fatalf("exit = %d, want 1", code)
	}
	if !strings.Contains(stderr, "DEC002") {
		t.Errorf("stderr = %q, want header mismatch code", stderr)
	}
}

func TestCombineCommand(t *testing.T) {
	dir := t.TempDir()
	a := writeFile(t, dir, "a.csv", "id,name\n1,alice\n2,bob\n")
	b := writeFile(t, dir, "b.csv", "id,city\n2,nyc\n")

	code, stdout, stderr := runCLI(t, "combine", "-mode", "left", "-left-key", "0", "-right-key", "0",
		"-out", "joined", "-dir", dir, a, b)
	if code != 0 {
		t.Fatalf("exit = %d, stderr %q", code, stderr)
	}
	if !strings.Contains(stdout, "(2 rows)") {
		t.Errorf("stdout = %q", stdout)
	}

	got, err := os.ReadFile(filepath.Join(dir, "joined.csv"))
	if err != nil {
		t.Fatalf("read output: %v", err)
	}
	if string(got) != "id,name,city\n1,alice,\n2,bob,nyc" {
		t.Errorf("output = %q", got)
	}
}

func TestCombineCommand_MissingKey(t *testing.T) {
	dir := t.TempDir()
	a := writeFile(t, dir, "a.csv", "id\n1\n")
	b := writeFile(t, dir, "b.csv", "id\n1\n")

	code, _, stderr := runCLI(t, "combine", "-mode", "right", "-dir", dir, a, b)
	if code != 1 {
		t.Fatalf("exit = %d, want 1", code)
	}
	if !strings.Contains(stderr, "CFG005") {
		t.Errorf("stderr = %q", stderr)
	}
}

func TestColumnsCommand(t *testing.T) {
	dir := t.TempDir()
	in := writeFile(t, dir, "data.csv", "id,name\n1,a\n2,b\n")

	code, stdout, stderr := runCLI(t, "columns", in)
	if code != 0 {
		t.Fatalf("exit = %d, stderr %q", code, stderr)
	}
	want := "0\tid\n1\tname\n"
	if stdout != want {
		t.Errorf("stdout = %q, want %q", stdout, want)
	}
}

func TestColumnsCommand_HeaderOnlyAndDelimiter(t *testing.T) {
	dir := t.TempDir()
	tests := []struct {
		name string
		file string
		body string
		args []string
		want string
	}{
		{"header only", "h.csv", "id,name\n", nil, "0\tid\n1\tname\n"},
		{"tsv by extension", "t.tsv", "id\tname\n1\ta\n", nil, "0\tid\n1\tname\n"},
		{"explicit semicolon", "s.csv", "id;name\n1;a\n", []string{"-delim", "semicolon"}, "0\tid\n1\tname\n"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			in := writeFile(t, dir, tt.file, tt.body)
			args := append(append([]string{"columns"}, tt.args...), in)
			code, stdout, stderr := runCLI(t, args...)
			if code != 0 {
				t.Fatalf("exit = %d, stderr %q", code, stderr)
			}
			if stdout != tt.want {
				t.Errorf("stdout = %q, want %q", stdout, tt.want)
			}
		})
	}
}

func TestChunkCommand_RejectsNonPositiveRows(t *testing.T) {
	dir := t.TempDir()
	in := writeFile(t, dir, "data.csv", "n\n1\n2\n")

	for _, rows := range []string{"0", "-5", "ten"} {
		code, stdout, stderr := runCLI(t, "chunk", "-rows", rows, in)
		if code != 1 {
			t.Errorf("-rows %s: exit = %d, want 1 (stdout %q)", rows, code, stdout)
		}
		if !strings.Contains(stderr, "CFG002") {
			t.Errorf("-rows %s: stderr = %q, want invalid chunk size code", rows, stderr)
		}
	}
	if _, err := os.Stat(filepath.Join(dir, "data_chunks.zip")); !os.IsNotExist(err) {
		t.Errorf("archive written despite invalid -rows: %v", err)
	}
}

func TestChunkCommand_ReadsTabOutput(t *testing.T) {
	dir := t.TempDir()
	in := writeFile(t, dir, "chunk_1.tsv", "id\tname\n1\talice\n2\tbob\n")
	out := filepath.Join(dir, "again.zip")

	code, _, stderr := runCLI(t, "chunk", "-rows", "1", "-out", out, in)
	if code != 0 {
		t.Fatalf("exit = %d, stderr %q", code, stderr)
	}

	zr, err := zip.OpenReader(out)
	if err != nil {
		t.Fatalf("open archive: %v", err)
	}
	defer zr.Close()
	if len(zr.File) != 2 {
		t.Fatalf("entries = %d, want 2", len(zr.File))
	}

	rc, err := zr.File[0].Open()
	if err != nil {
		t.Fatalf("open entry: %v", err)
	}
	defer rc.Close()
	got, err := io.ReadAll(rc)
	if err != nil {
		t.Fatalf("read entry: %v", err)
	}
	if string(got) != "id,name\n1,alice" {
		t.Errorf("chunk_1.csv = %q, want two comma separated columns", got)
	}
}

func TestChunkCommand_RejectsLegacyWorkbook(t *testing.T) {
	dir := t.TempDir()
	ole := string([]byte{0xD0, 0xCF, 0x11, 0xE0, 0xA1, 0xB1, 0x1A, 0xE1}) + "\x00junk,data\n1,2\n"
	in := writeFile(t, dir, "legacy.xls", ole)

	code, _, stderr := runCLI(t, "chunk", in)
	if code != 1 {
		t.Fatalf("exit = %d, want 1", code)
	}
	if !strings.Contains(stderr, "DEC004") {
		t.Errorf("stderr = %q, want unreadable workbook code", stderr)
	}
}

func TestUsageErrors(t *testing.T) {
	tests := [][]string{
		{},
		{"explode"},
		{"chunk"},
		{"sheets", "a", "b"},
		{"chunk", "-nope"},
		{"columns", "-delim"},
	}

	for _, args := range tests {
		if code, _, _ := runCLI(t, args...); code != 2 {
			t.Errorf("run(%q) exit = %d, want 2", args, code)
		}
	}
}
