package core

// error_messages.go maps engine errors to user-facing messages.
//
// # Error Codes Reference
//
// Codes are grouped by error kind so users can quote them when reporting a
// problem.
//
// # Input Errors (CFG001-CFG099)
//
// Raised before any work starts. The operation was not attempted.
//
//	CFG001 - No file was selected
//	CFG002 - Rows per file is not a positive integer
//	CFG003 - Wrong number of source files for the combine mode
//	CFG004 - A join source file is missing
//	CFG005 - A join key column was not selected
//	CFG006 - Unknown combine mode
//	CFG007 - Unknown output format
//	CFG008 - Unknown header contract
//	CFG009 - File exceeds the size limit
//
// # Decode Errors (DEC001-DEC099)
//
// Raised per source. The whole operation is aborted.
//
//	DEC001 - File is empty (no header or no data rows)
//	DEC002 - Header does not match the expected contract
//	DEC003 - Sheet not found in workbook
//	DEC004 - Workbook could not be read
//	DEC005 - Any other decode failure
//
// # Output Errors (ENC001-ENC099, ARC001)
//
//	ENC001 - Row length does not match header
//	ENC002 - Any other encode failure
//	ARC001 - Archive could not be generated
//
// # Job Errors (JOB001-JOB099)
//
//	JOB001 - Too many jobs in progress
//	JOB002 - Request was cancelled
//	JOB003 - Request timed out
//
// # Default Error (ERR000)
//
// Fallback when nothing matches. Check the logs for the technical error.

import (
	"context"
	"errors"
	"fmt"
)

// Severity classes shown next to a status message.
const (
	SeverityError      = "error"
	SeverityProcessing = "processing"
	SeveritySuccess    = "success"
)

// UserMessage provides user-friendly error information with actionable guidance.
type UserMessage struct {
	Message  string // What happened (user-friendly)
	Action   string // What to do about it
	Code     string // Error code for support reference
	Severity string // error, processing or success
}

// errorMatch pairs a sentinel with its user message. Entries are checked in
// order with errors.Is; the first hit wins.
type errorMatch struct {
	target error
	msg    UserMessage
}

var errorMatches = []errorMatch{
	// Input errors
	{ErrNoFile, UserMessage{
		Message: "No file was selected",
		Action:  "Please select a file to process",
		Code:    "CFG001",
	}},
	{ErrInvalidChunkSize, UserMessage{
		Message: "Please enter a valid number of rows per file.",
		Action:  "Use a whole number greater than zero",
		Code:    "CFG002",
	}},
	{ErrSourceCount, UserMessage{
		Message: "Wrong number of files selected",
		Action:  "Select 2 to 5 files for a union, or exactly 2 for a join",
		Code:    "CFG003",
	}},
	{ErrMissingSource, UserMessage{
		Message: "Please select both files",
		Action:  "A join needs a left and a right file",
		Code:    "CFG004",
	}},
	{ErrMissingKeyColumn, UserMessage{
		Message: "Please select a key column for each file",
		Action:  "Pick the column that identifies matching rows in both files",
		Code:    "CFG005",
	}},
	{ErrUnknownMode, UserMessage{
		Message: "Unknown combine mode",
		Action:  "Choose union, left or right",
		Code:    "CFG006",
	}},
	{ErrUnknownFormat, UserMessage{
		Message: "Unknown output format",
		Action:  "Choose csv, semicolon, tab or xlsx",
		Code:    "CFG007",
	}},
	{ErrUnknownContract, UserMessage{
		Message: "Unknown header contract",
		Action:  "Pick one of the configured header contracts",
		Code:    "CFG008",
	}},
	{ErrFileTooLarge, UserMessage{
		Message: "File exceeds maximum size limit",
		Action:  "Split the file into smaller parts",
		Code:    "CFG009",
	}},

	// Decode errors
	{ErrEmptySource, UserMessage{
		Message: "CSV file is empty.",
		Action:  "Upload a file with a header row and at least one data row",
		Code:    "DEC001",
	}},
	{ErrHeaderMismatch, UserMessage{
		Message: "CSV header does not match expected format.",
		Action:  "Check the column names and order, or turn validation off",
		Code:    "DEC002",
	}},
	{ErrSheetNotFound, UserMessage{
		Message: "Sheet not found in workbook",
		Action:  "Pick one of the sheets listed for this file",
		Code:    "DEC003",
	}},
	{ErrUnreadableWorkbook, UserMessage{
		Message: "Workbook could not be read",
		Action:  "Save the file as .xlsx and try again",
		Code:    "DEC004",
	}},
	{ErrBinarySource, UserMessage{
		Message: "File is not a text or Excel file",
		Action:  "Upload a .csv, .tsv, .txt or .xlsx file",
		Code:    "DEC006",
	}},

	// Output errors
	{ErrRaggedRow, UserMessage{
		Message: "A row does not match the header length",
		Action:  "Please try again or contact support",
		Code:    "ENC001",
	}},

	// Job errors
	{ErrTooManyJobs, UserMessage{
		Message: "System is busy processing other files",
		Action:  "Please wait a moment and try again",
		Code:    "JOB001",
	}},
	{context.Canceled, UserMessage{
		Message: "Request was cancelled",
		Action:  "Please try again",
		Code:    "JOB002",
	}},
	{context.DeadlineExceeded, UserMessage{
		Message: "Request timed out",
		Action:  "Try a smaller file or check your connection",
		Code:    "JOB003",
	}},
}

// kindMessages is consulted when no sentinel matched.
var kindMessages = map[ErrorKind]UserMessage{
	KindDecode: {
		Message: "File could not be read",
		Action:  "Check that the file is a CSV or Excel workbook",
		Code:    "DEC005",
	},
	KindEncode: {
		Message: "Output file could not be generated",
		Action:  "Please try again or contact support",
		Code:    "ENC002",
	},
	KindArchive: {
		Message: "Error generating zip file.",
		Action:  "Please try again",
		Code:    "ARC001",
	},
}

// defaultMessage is returned when nothing matches (ERR000).
var defaultMessage = UserMessage{
	Message: "An unexpected error occurred",
	Action:  "Please try again or contact support",
	Code:    "ERR000",
}

// MapError converts an error to a user-friendly message with severity
// SeverityError. Known sentinels are matched first, then the error kind,
// then the ERR000 fallback.
func MapError(err error) UserMessage {
	if err == nil {
		return UserMessage{}
	}

	msg := defaultMessage
	matched := false
	for _, m := range errorMatches {
		if errors.Is(err, m.target) {
			msg = m.msg
			matched = true
			break
		}
	}
	if !matched {
		if km, ok := kindMessages[KindOf(err)]; ok {
			msg = km
		}
	}

	msg.Severity = SeverityError
	return msg
}

// SuccessMessage builds the status shown after a job completes.
func SuccessMessage(text string) UserMessage {
	return UserMessage{Message: text, Severity: SeveritySuccess}
}

// ProcessingMessage builds the status shown while a job runs.
func ProcessingMessage(text string) UserMessage {
	return UserMessage{Message: text, Severity: SeverityProcessing}
}

// FormatUserError creates a formatted error string for display.
// The format is: "Message (Code: XXX). Action"
func FormatUserError(err error) string {
	msg := MapError(err)
	if msg.Message == "" {
		return ""
	}
	return fmt.Sprintf("%s (Code: %s). %s", msg.Message, msg.Code, msg.Action)
}

// IsUserFacing reports whether err maps to something other than ERR000.
func IsUserFacing(err error) bool {
	if err == nil {
		return false
	}
	return MapError(err).Code != defaultMessage.Code
}
