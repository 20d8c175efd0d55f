package core

import (
	"bytes"
	"errors"
	"io"
	"testing"

	"github.com/klauspost/compress/zip"
)

// readZip returns the entries of an archive in order, name to content.
func readZip(t *testing.T, data []byte) ([]string, map[string]string) {
	t.Helper()

	zr, err := zip.NewReader(bytes.NewReader(data), int64(len(data)))
	if err != nil {
		t.Fatalf("zip.NewReader: %v", err)
	}

	var names []string
	contents := make(map[string]string)
	for _, f := range zr.File {
		rc, err := f.Open()
		if err != nil {
			t.Fatalf("open %s: %v", f.Name, err)
		}
		b, err := io.ReadAll(rc)
		rc.Close()
		if err != nil {
			t.Fatalf("read %s: %v", f.Name, err)
		}
		names = append(names, f.Name)
		contents[f.Name] = string(b)
	}
	return names, contents
}

func TestZipArchive(t *testing.T) {
	arc := NewZipArchive()

	if err := arc.AddEntry("a.csv", []byte("x\n1")); err != nil {
		t.Fatalf("AddEntry(a) error = %v", err)
	}
	if err := arc.AddEntry("b.csv", []byte("x\n2")); err != nil {
		t.Fatalf("AddEntry(b) error = %v", err)
	}
	if arc.Len() != 2 {
		t.Errorf("Len() = %d, want 2", arc.Len())
	}

	data, err := arc.Finalize()
	if err != nil {
		t.Fatalf("Finalize() error = %v", err)
	}

	names, contents := readZip(t, data)
	if len(names) != 2 || names[0] != "a.csv" || names[1] != "b.csv" {
		t.Errorf("entries = %q, want [a.csv b.csv]", names)
	}
	if contents["b.csv"] != "x\n2" {
		t.Errorf("b.csv = %q", contents["b.csv"])
	}
}

func TestZipArchive_Errors(t *testing.T) {
	arc := NewZipArchive()
	if err := arc.AddEntry("a.csv", nil); err != nil {
		t.Fatalf("AddEntry() error = %v", err)
	}

	if err := arc.AddEntry("a.csv", nil); !IsKind(err, KindArchive) {
		t.Errorf("duplicate AddEntry() error = %v, want archive error", err)
	}
	if err := arc.AddEntry("", nil); !IsKind(err, KindArchive) {
		t.Errorf("empty name AddEntry() error = %v, want archive error", err)
	}

	if _, err := arc.Finalize(); err != nil {
		t.Fatalf("Finalize() error = %v", err)
	}
	if err := arc.AddEntry("late.csv", nil); !IsKind(err, KindArchive) {
		t.Errorf("AddEntry after Finalize error = %v, want archive error", err)
	}
	if _, err := arc.Finalize(); !IsKind(err, KindArchive) {
		t.Errorf("second Finalize error = %v, want archive error", err)
	}
}

func TestArchivePartitions(t *testing.T) {
	parts, err := PartitionTable(numberedTable(5), 2)
	if err != nil {
		t.Fatalf("PartitionTable() error = %v", err)
	}

	data, err := ArchivePartitions(NewZipArchive(), parts, FormatCSV)
	if err != nil {
		t.Fatalf("ArchivePartitions() error = %v", err)
	}

	names, contents := readZip(t, data)
	want := []string{"chunk_1.csv", "chunk_2.csv", "chunk_3.csv"}
	if len(names) != len(want) {
		t.Fatalf("entries = %q, want %q", names, want)
	}
	for i := range want {
		if names[i] != want[i] {
			t.Errorf("entry %d = %q, want %q", i, names[i], want[i])
		}
	}

	if got := contents["chunk_1.csv"]; got != "n,sq\n0,0\n1,1" {
		t.Errorf("chunk_1.csv = %q", got)
	}
	if got := contents["chunk_3.csv"]; got != "n,sq\n4,16" {
		t.Errorf("chunk_3.csv = %q", got)
	}
}

type failingArchive struct{}

func (failingArchive) AddEntry(string, []byte) error { return archiveError("add entry", errors.New("boom")) }
func (failingArchive) Finalize() ([]byte, error)     { return nil, nil }

func TestArchivePartitions_Failure(t *testing.T) {
	parts, _ := PartitionTable(numberedTable(1), 1)

	data, err := ArchivePartitions(failingArchive{}, parts, FormatCSV)
	if data != nil {
		t.Error("ArchivePartitions() returned data alongside an error")
	}
	if !IsKind(err, KindArchive) {
		t.Errorf("error = %v, want archive error", err)
	}
}
