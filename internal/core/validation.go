package core

// validation.go explains why a header failed a contract.
//
// The contract check itself is an exact string comparison. When it fails,
// DiffHeader lists the differences column by column so the message can say
// what to fix:
//  1. Missing: an expected column is absent
//  2. Unexpected: a column is present that the contract does not name
//  3. Misplaced: the column exists but at another position

import (
	"fmt"
	"strings"
)

// ValidationError describes one header difference.
type ValidationError struct {
	Field   string // Column name
	Message string // Human-readable error message
}

func (e ValidationError) Error() string {
	if e.Field != "" {
		return fmt.Sprintf("%s: %s", e.Field, e.Message)
	}
	return e.Message
}

// DiffHeader compares got against want. It returns nil when they are equal.
func DiffHeader(got, want []string) []ValidationError {
	var errs []ValidationError

	gotPos := make(map[string]int, len(got))
	for i, name := range got {
		if _, dup := gotPos[name]; !dup {
			gotPos[name] = i
		}
	}
	wantSet := make(map[string]bool, len(want))
	for _, name := range want {
		wantSet[name] = true
	}

	for i, name := range want {
		pos, ok := gotPos[name]
		switch {
		case !ok:
			errs = append(errs, ValidationError{Field: name, Message: "missing column"})
		case pos != i:
			errs = append(errs, ValidationError{
				Field:   name,
				Message: fmt.Sprintf("expected at position %d, found at %d", i+1, pos+1),
			})
		}
	}

	for _, name := range got {
		if !wantSet[name] {
			errs = append(errs, ValidationError{Field: name, Message: "unexpected column"})
		}
	}

	if len(errs) == 0 && len(got) != len(want) {
		errs = append(errs, ValidationError{
			Message: fmt.Sprintf("expected %d columns, found %d", len(want), len(got)),
		})
	}
	return errs
}

// summarizeDiff joins the first few differences for an error message.
func summarizeDiff(errs []ValidationError) string {
	const maxShown = 3

	parts := make([]string, 0, maxShown+1)
	for i, e := range errs {
		if i == maxShown {
			parts = append(parts, fmt.Sprintf("and %d more", len(errs)-maxShown))
			break
		}
		parts = append(parts, e.Error())
	}
	return strings.Join(parts, "; ")
}
