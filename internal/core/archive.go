package core

import (
	"bytes"
	"fmt"
	"time"

	"github.com/klauspost/compress/zip"
)

// DefaultArchiveName is the download name of a chunk archive.
const DefaultArchiveName = "chunked_files.zip"

// Archiver bundles named payloads into one container.
type Archiver interface {
	AddEntry(name string, data []byte) error
	Finalize() ([]byte, error)
}

// ZipArchive is an Archiver writing a Deflate-compressed zip in memory.
type ZipArchive struct {
	buf      bytes.Buffer
	zw       *zip.Writer
	names    map[string]struct{}
	modified time.Time
	closed   bool
}

// NewZipArchive returns an empty zip archive.
func NewZipArchive() *ZipArchive {
	a := &ZipArchive{
		names:    make(map[string]struct{}),
		modified: time.Now(),
	}
	a.zw = zip.NewWriter(&a.buf)
	return a
}

// AddEntry appends one file. Names must be unique within the archive.
func (a *ZipArchive) AddEntry(name string, data []byte) error {
	if a.closed {
		return archiveError("add entry", fmt.Errorf("archive already finalized"))
	}
	if name == "" {
		return archiveError("add entry", fmt.Errorf("empty entry name"))
	}
	if _, dup := a.names[name]; dup {
		return archiveError("add entry", fmt.Errorf("duplicate entry %q", name))
	}

	w, err := a.zw.CreateHeader(&zip.FileHeader{
		Name:     name,
		Method:   zip.Deflate,
		Modified: a.modified,
	})
	if err != nil {
		return archiveError("add entry", fmt.Errorf("create %s: %w", name, err))
	}
	if _, err := w.Write(data); err != nil {
		return archiveError("add entry", fmt.Errorf("write %s: %w", name, err))
	}

	a.names[name] = struct{}{}
	return nil
}

// Len returns the number of entries added so far.
func (a *ZipArchive) Len() int {
	return len(a.names)
}

// Finalize closes the archive and returns its bytes. The archive cannot be
// written to afterwards.
func (a *ZipArchive) Finalize() ([]byte, error) {
	if a.closed {
		return nil, archiveError("finalize", fmt.Errorf("archive already finalized"))
	}
	a.closed = true
	if err := a.zw.Close(); err != nil {
		return nil, archiveError("finalize", err)
	}
	return a.buf.Bytes(), nil
}

// ArchivePartitions encodes every partition in format f and bundles them as
// chunk_<i>.<ext> entries.
func ArchivePartitions(arc Archiver, parts []Partition, f OutputFormat) ([]byte, error) {
	tables := make([]*Table, len(parts))
	for i, p := range parts {
		tables[i] = p.Table()
	}
	payloads, err := EncodeAll(tables, f)
	if err != nil {
		return nil, err
	}
	for i, p := range parts {
		if err := arc.AddEntry(ChunkEntryName(p.Index, f), payloads[i]); err != nil {
			return nil, err
		}
	}
	return arc.Finalize()
}
