package core

// preview.go builds a read-only summary of a decoded table for the column
// selectors: sample rows, and for each column how many key values repeat.
// Joins match only the first row holding a key, so repeated keys on the
// lookup side are worth showing before a join runs.

import "sort"

// Sample limits
const (
	maxPreviewRows      = 10
	maxDuplicateSamples = 10
)

// RowPreview is one sample row keyed by column name.
type RowPreview struct {
	LineNumber int               `json:"lineNumber"`
	Values     map[string]string `json:"values"`
}

// DuplicatePreview is a key value held by more than one row.
type DuplicatePreview struct {
	Key         string `json:"key"`
	LineNumbers []int  `json:"lineNumbers"`
}

// ColumnPreview summarises one column as a join key candidate.
type ColumnPreview struct {
	Index         int                `json:"index"`
	Name          string             `json:"name"`
	EmptyCells    int                `json:"emptyCells"`
	DistinctKeys  int                `json:"distinctKeys"`
	DuplicateKeys int                `json:"duplicateKeys"`
	Duplicates    []DuplicatePreview `json:"duplicates,omitempty"`
}

// PreviewResponse is the full preview of one table.
type PreviewResponse struct {
	TotalRows int             `json:"totalRows"`
	Samples   []RowPreview    `json:"samples"`
	Columns   []ColumnPreview `json:"columns"`
}

// BuildPreview summarises t. Line numbers are 1-based data row positions
// plus one for the header, matching what a spreadsheet shows.
func BuildPreview(t *Table) *PreviewResponse {
	resp := &PreviewResponse{TotalRows: t.Len()}

	for i, row := range t.Rows {
		if i >= maxPreviewRows {
			break
		}
		values := make(map[string]string, len(t.Header))
		for c, name := range t.Header {
			values[name] = row[c]
		}
		resp.Samples = append(resp.Samples, RowPreview{LineNumber: i + 2, Values: values})
	}

	resp.Columns = make([]ColumnPreview, len(t.Header))
	for c, name := range t.Header {
		resp.Columns[c] = previewColumn(t, c, name)
	}
	return resp
}

func previewColumn(t *Table, c int, name string) ColumnPreview {
	col := ColumnPreview{Index: c, Name: name}
	lines := make(map[string][]int)

	for i, row := range t.Rows {
		v := row[c]
		if v == "" {
			col.EmptyCells++
			continue
		}
		lines[v] = append(lines[v], i+2)
	}

	col.DistinctKeys = len(lines)
	for key, ln := range lines {
		if len(ln) > 1 {
			col.DuplicateKeys++
			col.Duplicates = append(col.Duplicates, DuplicatePreview{Key: key, LineNumbers: ln})
		}
	}

	// Earliest duplicate first so samples are stable across runs.
	sort.Slice(col.Duplicates, func(i, j int) bool {
		return col.Duplicates[i].LineNumbers[0] < col.Duplicates[j].LineNumbers[0]
	})
	if len(col.Duplicates) > maxDuplicateSamples {
		col.Duplicates = col.Duplicates[:maxDuplicateSamples]
	}
	return col
}
