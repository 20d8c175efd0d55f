package core

import (
	"fmt"
	"strconv"
	"strings"
)

// Partition is a contiguous run of a table's rows paired with a copy of its
// header. Partitions are produced by PartitionTable and are read-only.
type Partition struct {
	Index  int // 1-based
	Header []string
	Rows   [][]string
}

// Table returns the partition as a Table sharing its header and rows.
func (p Partition) Table() *Table {
	return &Table{Header: p.Header, Rows: p.Rows}
}

// PartitionTable splits t into ceil(len(rows)/maxRowsPerChunk) partitions in
// row order. A table without data rows yields no partitions.
func PartitionTable(t *Table, maxRowsPerChunk int) ([]Partition, error) {
	if maxRowsPerChunk < 1 {
		return nil, configErrorf("partition", ErrInvalidChunkSize, "got %d", maxRowsPerChunk)
	}
	if t == nil || len(t.Rows) == 0 {
		return nil, nil
	}

	count := (len(t.Rows) + maxRowsPerChunk - 1) / maxRowsPerChunk
	parts := make([]Partition, 0, count)

	for i := 0; i < count; i++ {
		start := i * maxRowsPerChunk
		end := min(start+maxRowsPerChunk, len(t.Rows))
		parts = append(parts, Partition{
			Index:  i + 1,
			Header: cloneStrings(t.Header),
			Rows:   t.Rows[start:end:end],
		})
	}

	return parts, nil
}

// ParseChunkSize parses a user-entered rows-per-chunk value.
func ParseChunkSize(s string) (int, error) {
	n, err := strconv.Atoi(strings.TrimSpace(s))
	if err != nil {
		return 0, configErrorf("parse chunk size", ErrInvalidChunkSize, "%q is not an integer", s)
	}
	if n < 1 {
		return 0, configErrorf("parse chunk size", ErrInvalidChunkSize, "got %d", n)
	}
	return n, nil
}

// ChunkEntryName returns the archive entry name of the i-th (1-based) chunk.
func ChunkEntryName(i int, f OutputFormat) string {
	return fmt.Sprintf("chunk_%d.%s", i, f.Extension())
}
