package core

// errors.go defines the error kinds surfaced by the engine.
//
// Every failure is classified as one of:
//   - KindConfig:  invalid or missing caller input, reported before any work
//   - KindDecode:  empty source, unreadable workbook, missing sheet
//   - KindEncode:  serialization of a table failed
//   - KindArchive: bundling encoded payloads failed
//
// The kind drives the user-facing message (see MapError) and the HTTP status
// chosen by the web layer. Specific causes are exposed as sentinels so callers
// can use errors.Is.

import (
	"errors"
	"fmt"
)

// ErrorKind classifies an engine error.
type ErrorKind int

const (
	KindConfig ErrorKind = iota + 1
	KindDecode
	KindEncode
	KindArchive
)

// String returns the kind name used in logs.
func (k ErrorKind) String() string {
	switch k {
	case KindConfig:
		return "config"
	case KindDecode:
		return "decode"
	case KindEncode:
		return "encode"
	case KindArchive:
		return "archive"
	default:
		return "unknown"
	}
}

// Sentinel causes. Wrapped inside *Error; match with errors.Is.
var (
	ErrNoFile             = errors.New("no file provided")
	ErrFileTooLarge       = errors.New("file too large")
	ErrInvalidChunkSize   = errors.New("rows per chunk must be a positive integer")
	ErrSourceCount        = errors.New("wrong number of source files")
	ErrMissingSource      = errors.New("missing source file")
	ErrMissingKeyColumn   = errors.New("key column not selected")
	ErrUnknownMode        = errors.New("unknown combine mode")
	ErrUnknownFormat      = errors.New("unknown output format")
	ErrUnknownContract    = errors.New("unknown header contract")
	ErrEmptySource        = errors.New("empty file")
	ErrSheetNotFound      = errors.New("sheet not found")
	ErrUnreadableWorkbook = errors.New("unreadable workbook")
	ErrBinarySource       = errors.New("file is not delimited text")
	ErrHeaderMismatch     = errors.New("header does not match expected format")
	ErrRaggedRow          = errors.New("row length does not match header")
)

// Error is the error type returned by engine operations.
type Error struct {
	Kind ErrorKind
	Op   string // operation that failed, e.g. "decode", "partition"
	Err  error
}

func (e *Error) Error() string {
	if e.Op == "" {
		return fmt.Sprintf("%s error: %v", e.Kind, e.Err)
	}
	return fmt.Sprintf("%s: %v", e.Op, e.Err)
}

func (e *Error) Unwrap() error {
	return e.Err
}

// IsKind reports whether err (or anything it wraps) is an *Error of kind k.
func IsKind(err error, k ErrorKind) bool {
	var e *Error
	if errors.As(err, &e) {
		return e.Kind == k
	}
	return false
}

// KindOf returns the kind of err, or 0 if err is not an engine error.
func KindOf(err error) ErrorKind {
	var e *Error
	if errors.As(err, &e) {
		return e.Kind
	}
	return 0
}

func configError(op string, err error) error {
	return &Error{Kind: KindConfig, Op: op, Err: err}
}

func configErrorf(op string, cause error, format string, args ...any) error {
	return &Error{Kind: KindConfig, Op: op, Err: fmt.Errorf("%w: "+format, append([]any{cause}, args...)...)}
}

func decodeError(op string, err error) error {
	return &Error{Kind: KindDecode, Op: op, Err: err}
}

func decodeErrorf(op string, cause error, format string, args ...any) error {
	return &Error{Kind: KindDecode, Op: op, Err: fmt.Errorf("%w: "+format, append([]any{cause}, args...)...)}
}

func encodeErrorf(op string, cause error, format string, args ...any) error {
	return &Error{Kind: KindEncode, Op: op, Err: fmt.Errorf("%w: "+format, append([]any{cause}, args...)...)}
}

func archiveError(op string, err error) error {
	return &Error{Kind: KindArchive, Op: op, Err: err}
}
