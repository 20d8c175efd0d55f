package core

import "fmt"

// NoKey marks a join key column that has not been selected.
const NoKey = -1

// Source count limits for union.
const (
	MinUnionSources = 2
	MaxUnionSources = 5
)

// JoinSpec describes one combine operation.
type JoinSpec struct {
	Mode    JoinMode
	Sources []*Table

	// Zero-based key columns into Sources[0] and Sources[1]. Join modes only.
	LeftKey  int
	RightKey int
}

// Combine merges the sources of spec into one table. All validation happens
// before any output row is built.
func Combine(spec JoinSpec) (*Table, error) {
	switch spec.Mode {
	case ModeUnion:
		if err := validateUnion(spec); err != nil {
			return nil, err
		}
		return union(spec.Sources), nil
	case ModeLeftJoin, ModeRightJoin:
		if err := validateJoin(spec); err != nil {
			return nil, err
		}
		a, b := spec.Sources[0], spec.Sources[1]
		if spec.Mode == ModeLeftJoin {
			return leftJoin(a, b, spec.LeftKey, spec.RightKey), nil
		}
		return rightJoin(a, b, spec.LeftKey, spec.RightKey), nil
	default:
		return nil, configErrorf("combine", ErrUnknownMode, "%s", spec.Mode)
	}
}

// SourceLimits returns the accepted source count range for mode.
func SourceLimits(mode JoinMode) (lo, hi int) {
	if mode.IsJoin() {
		return 2, 2
	}
	return MinUnionSources, MaxUnionSources
}

func validateUnion(spec JoinSpec) error {
	n := len(spec.Sources)
	if n < MinUnionSources || n > MaxUnionSources {
		return configErrorf("combine", ErrSourceCount, "union needs %d to %d files, got %d", MinUnionSources, MaxUnionSources, n)
	}
	for i, t := range spec.Sources {
		if t == nil {
			return configErrorf("combine", ErrMissingSource, "source %d", i+1)
		}
	}
	return nil
}

func validateJoin(spec JoinSpec) error {
	if len(spec.Sources) != 2 {
		return configErrorf("combine", ErrSourceCount, "%s join needs exactly 2 files, got %d", spec.Mode, len(spec.Sources))
	}
	a, b := spec.Sources[0], spec.Sources[1]
	if a == nil {
		return configErrorf("combine", ErrMissingSource, "left file")
	}
	if b == nil {
		return configErrorf("combine", ErrMissingSource, "right file")
	}
	if err := checkKey("left", spec.LeftKey, a); err != nil {
		return err
	}
	if err := checkKey("right", spec.RightKey, b); err != nil {
		return err
	}
	if i := a.checkShape(); i >= 0 {
		return configErrorf("combine", ErrRaggedRow, "left file row %d", i+1)
	}
	if i := b.checkShape(); i >= 0 {
		return configErrorf("combine", ErrRaggedRow, "right file row %d", i+1)
	}
	return nil
}

func checkKey(side string, key int, t *Table) error {
	if key == NoKey {
		return configErrorf("combine", ErrMissingKeyColumn, "%s key", side)
	}
	if key < 0 || key >= t.Width() {
		return configErrorf("combine", ErrMissingKeyColumn, "%s key %d out of range (%d columns)", side, key, t.Width())
	}
	return nil
}

// union concatenates rows in source order under the first source's header.
// Rows from later sources are fitted positionally to that header's width.
func union(sources []*Table) *Table {
	header := cloneStrings(sources[0].Header)
	width := len(header)

	total := 0
	for _, t := range sources {
		total += len(t.Rows)
	}

	rows := make([][]string, 0, total)
	for _, t := range sources {
		for _, row := range t.Rows {
			fitted, _ := fitRow(row, width)
			rows = append(rows, cloneStrings(fitted))
		}
	}
	return &Table{Header: header, Rows: rows}
}

// joinHeader is A's header followed by B's header without its key column.
func joinHeader(a, b *Table, kb int) []string {
	header := make([]string, 0, a.Width()+b.Width()-1)
	header = append(header, a.Header...)
	return append(header, withoutColumn(b.Header, kb)...)
}

func withoutColumn(row []string, k int) []string {
	out := make([]string, 0, len(row)-1)
	out = append(out, row[:k]...)
	return append(out, row[k+1:]...)
}

// firstIndex maps each key value to the first row holding it.
func firstIndex(t *Table, k int) map[string]int {
	idx := make(map[string]int, len(t.Rows))
	for i, row := range t.Rows {
		if _, seen := idx[row[k]]; !seen {
			idx[row[k]] = i
		}
	}
	return idx
}

// leftJoin keeps every row of a. Unmatched rows get empty B cells.
func leftJoin(a, b *Table, ka, kb int) *Table {
	header := joinHeader(a, b, kb)
	idx := firstIndex(b, kb)
	bWidth := b.Width() - 1

	rows := make([][]string, 0, len(a.Rows))
	for _, ra := range a.Rows {
		out := make([]string, 0, len(header))
		out = append(out, ra...)
		if j, ok := idx[ra[ka]]; ok {
			out = append(out, withoutColumn(b.Rows[j], kb)...)
		} else {
			out = append(out, make([]string, bWidth)...)
		}
		rows = append(rows, out)
	}
	return &Table{Header: header, Rows: rows}
}

// rightJoin keeps every row of b. Unmatched rows get empty A cells except
// column ka, which carries b's key value.
func rightJoin(a, b *Table, ka, kb int) *Table {
	header := joinHeader(a, b, kb)
	idx := firstIndex(a, ka)

	rows := make([][]string, 0, len(b.Rows))
	for _, rb := range b.Rows {
		out := make([]string, 0, len(header))
		if i, ok := idx[rb[kb]]; ok {
			out = append(out, a.Rows[i]...)
		} else {
			left := make([]string, a.Width())
			left[ka] = rb[kb]
			out = append(out, left...)
		}
		out = append(out, withoutColumn(rb, kb)...)
		rows = append(rows, out)
	}
	return &Table{Header: header, Rows: rows}
}

// Describe returns a short summary of spec for logs.
func (s JoinSpec) Describe() string {
	if s.Mode.IsJoin() {
		return fmt.Sprintf("%s join on columns %d/%d", s.Mode, s.LeftKey, s.RightKey)
	}
	return fmt.Sprintf("union of %d sources", len(s.Sources))
}
