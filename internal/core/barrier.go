package core

import (
	"bytes"
	"context"
	"fmt"

	"golang.org/x/sync/errgroup"
	"golang.org/x/sync/semaphore"
)

// SourceFile is one raw input to decode.
type SourceFile struct {
	Name      string
	Data      []byte
	Sheet     string // workbook sheet; empty selects the first
	Delimiter rune   // input separator; zero picks one from the extension
}

var (
	zipMagic = []byte("PK\x03\x04")
	oleMagic = []byte{0xD0, 0xCF, 0x11, 0xE0, 0xA1, 0xB1, 0x1A, 0xE1}
)

// Kind returns the decoder for the file. Zip and OLE2 containers are always
// workbooks whatever their name says; otherwise the extension decides.
func (s SourceFile) Kind() SourceKind {
	if bytes.HasPrefix(s.Data, zipMagic) || bytes.HasPrefix(s.Data, oleMagic) {
		return SourceWorkbook
	}
	return DetectSourceKind(s.Name)
}

func (s SourceFile) options() []DecodeOption {
	delim := s.Delimiter
	if delim == 0 {
		delim = DetectDelimiter(s.Name)
	}
	return []DecodeOption{WithSheet(s.Sheet), WithDelimiter(delim)}
}

// Decode decodes the file with its own sheet and delimiter selection.
func (s SourceFile) Decode() (*Table, DecodeStats, error) {
	return DecodeWithStats(s.Data, s.Kind(), s.options()...)
}

// Header reads only the header row of the file.
func (s SourceFile) Header() ([]string, error) {
	return ReadHeader(s.Data, s.Kind(), s.options()...)
}

// DecodeAll decodes every source concurrently, at most parallelism at a time,
// and returns the tables in source order once all have finished. If any
// decode fails the first error is returned and no tables are. Started
// decodes always run to completion.
func DecodeAll(sources []SourceFile, parallelism int) ([]*Table, []DecodeStats, error) {
	if parallelism < 1 {
		parallelism = len(sources)
	}

	tables := make([]*Table, len(sources))
	stats := make([]DecodeStats, len(sources))
	sem := semaphore.NewWeighted(int64(max(parallelism, 1)))

	var g errgroup.Group
	for i, src := range sources {
		i, src := i, src
		g.Go(func() error {
			// Background never cancels, so Acquire cannot fail.
			_ = sem.Acquire(context.Background(), 1)
			defer sem.Release(1)

			if len(src.Data) == 0 {
				return decodeErrorf("decode", ErrEmptySource, "%s", src.Name)
			}
			t, st, err := src.Decode()
			if err != nil {
				return fmt.Errorf("%s: %w", src.Name, err)
			}
			tables[i] = t
			stats[i] = st
			return nil
		})
	}

	if err := g.Wait(); err != nil {
		return nil, nil, err
	}
	return tables, stats, nil
}
