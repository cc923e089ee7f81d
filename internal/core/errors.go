package core

// errors.go defines sentinel errors and maps technical errors to messages
// that can be shown to operators, each with a code for support reference.
//
// # Error Codes Reference
//
// Database (DB001-DB099):
//
//	DB001 - Duplicate key: a record with this key already exists
//	DB002 - Foreign key: a referenced cemetery or veteran is missing
//	DB003 - Connection: the database could not be reached
//	DB004 - Timeout: the operation took too long
//	DB005 - Deadlock or serialization failure: conflicting writers
//
// Validation (VAL001-VAL099):
//
//	VAL001 - Required field: a row is missing a required value
//	VAL002 - Not found: the requested veteran does not exist
//
// File (FILE001-FILE099):
//
//	FILE001 - File too large
//	FILE002 - Invalid CSV
//	FILE003 - No file provided
//	FILE004 - Empty file
//	FILE005 - Source unavailable (missing path or S3 object)
//
// Import (IMP001-IMP099):
//
//	IMP001 - System busy: another import is running
//	IMP002 - Import not found
//	IMP003 - Import cancelled
//	IMP004 - Import timed out
//
// Rate limiting (RATE001): too many requests.
//
// ERR000 is the fallback when nothing matches; check the logs for the
// technical error.
//
// Sentinels are matched with errors.Is first. The remaining patterns are
// matched case-insensitively with strings.Contains, first match wins.

import (
	"context"
	"errors"
	"fmt"
	"strings"
)

var (
	// ErrNotFound is returned by Tx finders when no record has the key.
	ErrNotFound = errors.New("record not found")

	// ErrTooManyImports is returned when the import limiter is saturated.
	ErrTooManyImports = errors.New("too many concurrent imports, please try again later")

	// ErrImportNotFound is returned when an import id is not in history.
	ErrImportNotFound = errors.New("import not found")

	// ErrEmptyFile is returned when a source holds no rows.
	ErrEmptyFile = errors.New("empty file")

	// ErrFileTooLarge is returned when a source exceeds the size limit.
	ErrFileTooLarge = errors.New("file too large")
)

// IsNotFound reports whether err is or wraps ErrNotFound.
func IsNotFound(err error) bool {
	return errors.Is(err, ErrNotFound)
}

// RowError is a persistence failure tied to the 1-based position of a
// record among the parsed rows.
type RowError struct {
	Row int
	Err error
}

func (e *RowError) Error() string {
	return fmt.Sprintf("row %d: %v", e.Row, e.Err)
}

func (e *RowError) Unwrap() error {
	return e.Err
}

// UserMessage provides operator-friendly error information with actionable guidance.
type UserMessage struct {
	Message string `json:"message"` // What happened
	Action  string `json:"action"`  // What to do about it
	Code    string `json:"code"`    // Error code for support reference
}

var (
	msgDuplicate   = UserMessage{"A record with this key already exists", "Review the extract for conflicting rows", "DB001"}
	msgForeignKey  = UserMessage{"Referenced record does not exist", "Check the cemetery and veteran columns of the failing row", "DB002"}
	msgConnection  = UserMessage{"Unable to connect to database", "Please try again in a few moments", "DB003"}
	msgTimeout     = UserMessage{"Operation timed out", "Try a smaller extract or try again later", "DB004"}
	msgDeadlock    = UserMessage{"Database was busy with conflicting operations", "Please try again", "DB005"}
	msgRequired    = UserMessage{"Required field is empty", "Ensure names, dates, cemetery and kin columns have values", "VAL001"}
	msgNotFound    = UserMessage{"Record not found", "Check the veteran key", "VAL002"}
	msgTooLarge    = UserMessage{"File exceeds maximum size limit", "Split the extract into smaller files", "FILE001"}
	msgInvalidCSV  = UserMessage{"File is not a valid CSV", "Ensure the file is comma-separated", "FILE002"}
	msgNoFile      = UserMessage{"No file was provided", "Attach a CSV extract in the file field", "FILE003"}
	msgEmptyFile   = UserMessage{"The file is empty", "Provide an extract with data rows", "FILE004"}
	msgSource      = UserMessage{"The source could not be opened", "Check the path or S3 location", "FILE005"}
	msgBusy        = UserMessage{"Another import is in progress", "Please wait for it to finish and try again", "IMP001"}
	msgImportGone  = UserMessage{"Import not found", "The import may have aged out of history", "IMP002"}
	msgCancelled   = UserMessage{"Import was cancelled", "Start a new import when ready", "IMP003"}
	msgImportTimer = UserMessage{"Import timed out", "Try a smaller extract or raise IMPORT_TIMEOUT", "IMP004"}
	msgRateLimited = UserMessage{"Too many requests", "Please wait a moment before trying again", "RATE001"}
)

// sentinelMessages are checked with errors.Is before any pattern.
var sentinelMessages = []struct {
	err error
	msg UserMessage
}{
	{ErrTooManyImports, msgBusy},
	{ErrImportNotFound, msgImportGone},
	{ErrNotFound, msgNotFound},
	{ErrEmptyFile, msgEmptyFile},
	{ErrFileTooLarge, msgTooLarge},
	{context.Canceled, msgCancelled},
	{context.DeadlineExceeded, msgImportTimer},
}

// errorPattern maps a lowercase substring to a user message.
type errorPattern struct {
	pattern string
	msg     UserMessage
}

// errorPatterns are matched in order; specific patterns come first.
var errorPatterns = []errorPattern{
	{"duplicate key", msgDuplicate},
	{"unique constraint", msgDuplicate},
	{"foreign key", msgForeignKey},
	{"connection refused", msgConnection},
	{"connection reset", msgConnection},
	{"no such host", msgConnection},
	{"deadlock", msgDeadlock},
	{"could not serialize", msgDeadlock},
	{"database is locked", msgDeadlock},
	{"timeout", msgTimeout},
	{"required field", msgRequired},
	{"no such file", msgSource},
	{"nosuchkey", msgSource},
	{"nosuchbucket", msgSource},
	{"no file provided", msgNoFile},
	{"parse error on line", msgInvalidCSV},
	{"invalid csv", msgInvalidCSV},
	{"rate limit", msgRateLimited},
}

// defaultMessage is returned when nothing matches.
var defaultMessage = UserMessage{
	Message: "An unexpected error occurred",
	Action:  "Please try again or contact support",
	Code:    "ERR000",
}

// MapError converts a technical error to a user-facing message.
func MapError(err error) UserMessage {
	if err == nil {
		return UserMessage{}
	}

	for _, s := range sentinelMessages {
		if errors.Is(err, s.err) {
			return s.msg
		}
	}

	errStr := strings.ToLower(err.Error())
	for _, ep := range errorPatterns {
		if strings.Contains(errStr, ep.pattern) {
			return ep.msg
		}
	}
	return defaultMessage
}

// FormatUserError formats err as "Message (Code: XXX). Action".
func FormatUserError(err error) string {
	msg := MapError(err)
	if msg.Message == "" {
		return ""
	}
	return fmt.Sprintf("%s (Code: %s). %s", msg.Message, msg.Code, msg.Action)
}

// IsUserFacing reports whether err maps to a specific message rather than ERR000.
func IsUserFacing(err error) bool {
	if err == nil {
		return false
	}
	return MapError(err).Code != defaultMessage.Code
}
