package ingest

// error_messages.go maps technical errors to user-facing messages with codes.
//
// # Error Codes Reference
//
// File errors (FILE001-FILE099), returned before any progress is streamed:
//
//	FILE001 - File too large: the upload exceeds UPLOAD_MAX_FILE_SIZE
//	FILE002 - Invalid CSV: the header row could not be parsed
//	FILE004 - No file: the request had no "file" part
//	FILE005 - Empty file: the upload has no header row
//	FILE006 - Unrecognized export: no header matches a survey column
//
// Row errors (ROW001-ROW099), reported as failed row results:
//
//	ROW001 - Invalid status: status is not unclaimed, claimed, in_progress or finished
//	ROW002 - Missing initials: initials are required unless the photo is unclaimed
//	ROW003 - Missing photo name: the row has no photo name to store it under
//
// Lookup errors:
//
//	REC001 - Photo not found: no stored photo has the requested photo name
//
// Import errors (UPL001-UPL099):
//
//	UPL002 - System busy: every import slot stayed taken for UPLOAD_MAX_WAIT_TIME
//	UPL004 - Request cancelled
//	UPL005 - Request timed out
//	UPL006 - Upload stalled: the client stopped sending before the export ended
//	UPL007 - Upload interrupted: reading the export failed for another reason
//
// Database errors (DB004-DB007) are matched on the error text.
//
//	ERR000 - Anything else. Check the logs for the technical error.
//
// Sentinel and typed errors are matched with errors.Is / errors.As first;
// text patterns are matched case-insensitively afterwards, first match wins.
// Failures reading the upload never fall through to the database patterns.

import (
	"context"
	"encoding/csv"
	"errors"
	"fmt"
	"net"
	"net/http"
	"os"
	"strings"

	"github.com/JonMunkholm/signsurvey/internal/store"
	"github.com/JonMunkholm/signsurvey/internal/survey"
)

// UserMessage provides user-friendly error information with actionable guidance.
type UserMessage struct {
	Message string // What happened (user-friendly)
	Action  string // What to do about it
	Code    string // Error code for support reference
}

var (
	msgFileTooLarge = UserMessage{
		Message: "File exceeds the maximum upload size",
		Action:  "Split the export into smaller files",
		Code:    "FILE001",
	}
	msgInvalidCSV = UserMessage{
		Message: "File is not a valid CSV",
		Action:  "Export the survey again as comma-separated values",
		Code:    "FILE002",
	}
	msgNoFile = UserMessage{
		Message: "No file was selected",
		Action:  "Please select a survey export to upload",
		Code:    "FILE004",
	}
	msgEmptyFile = UserMessage{
		Message: "The uploaded file is empty",
		Action:  "Please upload a survey export with a header row",
		Code:    "FILE005",
	}
	msgNoColumns = UserMessage{
		Message: "No survey columns were recognized in the header",
		Action:  "Check that this is a sign survey export",
		Code:    "FILE006",
	}
	msgInvalidStatus = UserMessage{
		Message: "Status is not one of unclaimed, claimed, in_progress or finished",
		Action:  "Correct the status column for this photo",
		Code:    "ROW001",
	}
	msgMissingInitials = UserMessage{
		Message: "Initials are required once a photo is claimed",
		Action:  "Fill in the surveyor's initials for this photo",
		Code:    "ROW002",
	}
	msgMissingKey = UserMessage{
		Message: "Photo name is empty",
		Action:  "Every row needs a photo name",
		Code:    "ROW003",
	}
	msgPhotoNotFound = UserMessage{
		Message: "No photo with that name has been imported",
		Action:  "Check the photo name or import the export that contains it",
		Code:    "REC001",
	}
	msgTooManyImports = UserMessage{
		Message: "System is busy processing other imports",
		Action:  "Please wait a moment and try again",
		Code:    "UPL002",
	}
	msgCancelled = UserMessage{
		Message: "Request was cancelled",
		Action:  "Please try again",
		Code:    "UPL004",
	}
	msgTimeout = UserMessage{
		Message: "Request timed out",
		Action:  "Try uploading a smaller file or check your connection",
		Code:    "UPL005",
	}
	msgUploadStalled = UserMessage{
		Message: "Upload stopped arriving before the import finished",
		Action:  "Check your connection and upload the export again",
		Code:    "UPL006",
	}
	msgUploadInterrupted = UserMessage{
		Message: "Upload was interrupted",
		Action:  "Upload the export again",
		Code:    "UPL007",
	}
)

// sentinelMessages is checked in order with errors.Is.
var sentinelMessages = []struct {
	err error
	msg UserMessage
}{
	{ErrNoFile, msgNoFile},
	{ErrEmptyFile, msgEmptyFile},
	{ErrNoRecognizedColumns, msgNoColumns},
	{ErrTooManyImports, msgTooManyImports},
	{survey.ErrInvalidStatus, msgInvalidStatus},
	{survey.ErrMissingInitials, msgMissingInitials},
	{store.ErrMissingKey, msgMissingKey},
	{store.ErrNotFound, msgPhotoNotFound},
	{context.Canceled, msgCancelled},
	{context.DeadlineExceeded, msgTimeout},
}

// errorPattern defines a pattern to match and its corresponding user message.
type errorPattern struct {
	pattern string
	msg     UserMessage
}

// errorPatterns maps technical error text (case-insensitive) to user messages
// for errors that carry no sentinel, mostly from the database driver.
var errorPatterns = []errorPattern{
	{
		pattern: "connection refused",
		msg: UserMessage{
			Message: "Unable to connect to database",
			Action:  "Please try again in a few moments",
			Code:    "DB004",
		},
	},
	{
		pattern: "connection reset",
		msg: UserMessage{
			Message: "Database connection was interrupted",
			Action:  "Please try again",
			Code:    "DB005",
		},
	},
	{
		pattern: "timeout",
		msg: UserMessage{
			Message: "Operation timed out",
			Action:  "Try uploading a smaller file or try again later",
			Code:    "DB006",
		},
	},
	{
		pattern: "deadlock",
		msg: UserMessage{
			Message: "Database was busy with conflicting operations",
			Action:  "Please try again",
			Code:    "DB007",
		},
	},
}

// defaultMessage is returned when nothing matches (ERR000).
var defaultMessage = UserMessage{
	Message: "An unexpected error occurred",
	Action:  "Please try again or contact support",
	Code:    "ERR000",
}

// MapError converts a technical error to a user-friendly message.
func MapError(err error) UserMessage {
	if err == nil {
		return UserMessage{}
	}

	for _, s := range sentinelMessages {
		if errors.Is(err, s.err) {
			return s.msg
		}
	}

	var maxBytes *http.MaxBytesError
	if errors.As(err, &maxBytes) {
		return msgFileTooLarge
	}
	var parseErr *csv.ParseError
	if errors.As(err, &parseErr) {
		return msgInvalidCSV
	}
	if errors.Is(err, ErrUploadRead) {
		if isTimeout(err) {
			return msgUploadStalled
		}
		return msgUploadInterrupted
	}

	errStr := strings.ToLower(err.Error())
	for _, ep := range errorPatterns {
		if strings.Contains(errStr, ep.pattern) {
			return ep.msg
		}
	}

	return defaultMessage
}

func isTimeout(err error) bool {
	if errors.Is(err, os.ErrDeadlineExceeded) {
		return true
	}
	var ne net.Error
	return errors.As(err, &ne) && ne.Timeout()
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

// IsUserFacing reports whether err maps to a specific message rather than
// the generic ERR000 fallback.
func IsUserFacing(err error) bool {
	if err == nil {
		return false
	}
	return MapError(err).Code != defaultMessage.Code
}

// UserError pairs a technical error with its user-facing message.
type UserError struct {
	Technical error       // Original technical error for logging
	User      UserMessage // User-friendly message for display
}

func (e *UserError) Error() string {
	return e.User.Message
}

func (e *UserError) Unwrap() error {
	return e.Technical
}

// NewUserError maps err to a UserError. Returns nil if err is nil.
func NewUserError(err error) *UserError {
	if err == nil {
		return nil
	}
	return &UserError{
		Technical: err,
		User:      MapError(err),
	}
}

// rowReason is the failure reason reported for one row. Validation problems
// are described precisely; storage errors are reduced to their user message
// so driver internals do not reach the client.
func rowReason(err error) string {
	var ve *survey.ValidationError
	if errors.As(err, &ve) || errors.Is(err, store.ErrMissingKey) {
		msg := MapError(err)
		return fmt.Sprintf("%s (Code: %s): %s", msg.Message, msg.Code, err.Error())
	}
	return FormatUserError(err)
}
