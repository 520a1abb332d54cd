package core

// errors.go maps errors to user-facing messages with codes for support
// reference.
//
// # Error Codes Reference
//
// Table operation errors are classified with errors.Is against the errs
// sentinels, most specific first:
//
//	PARAM001 - Conflicting or incomplete parameters (errs.ErrParam)
//	DUP001   - Duplicate names or values (errs.ErrDuplicate)
//	DUP002   - Column name collision between combined tables (errs.ErrCollision)
//	SHAPE001 - Input has the wrong shape (errs.ErrShape)
//	VAL001   - Null where a value is required (errs.ErrNull)
//	VAL002   - Invalid value (errs.ErrValue)
//	TYPE001  - Wrong type (errs.ErrType)
//	NI001    - Unsupported combination of options (errs.ErrNotImplemented)
//
// Request errors:
//
//	REQ001 - Too many tables in one request (ErrTooManyTables)
//	REQ002 - Too many operations in progress (ErrBusy)
//	REQ003 - No database configured (ErrNoDatabase)
//	REQ004 - Request cancelled (context.Canceled)
//	REQ005 - Request timed out (context.DeadlineExceeded)
//	REQ006 - Table too large (ErrTooManyRows)
//	REQ007 - Malformed request (ErrBadRequest)
//
// Database errors from pgx carry no sentinels and are matched
// case-insensitively on their text; the first pattern wins:
//
//	DB001 - Table does not exist ("does not exist")
//	DB002 - Duplicate key on save ("duplicate key", "violates unique")
//	DB003 - Column type mismatch on save ("invalid input syntax")
//	DB004 - Connection refused ("connection refused")
//	DB005 - Connection reset ("connection reset")
//	DB006 - Deadlock ("deadlock")
//
// Anything else is ERR000; check the logs for the technical error.

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/JonMunkholm/tabkit/internal/errs"
)

var (
	// ErrTooManyTables is returned when a request names more inputs than
	// the configured limit.
	ErrTooManyTables = errors.New("too many tables in request")

	// ErrTooManyRows is returned when an input exceeds the row limit.
	ErrTooManyRows = errors.New("table exceeds row limit")

	// ErrNoDatabase is returned by table load and save operations when the
	// service has no store.
	ErrNoDatabase = errors.New("no database configured")

	// ErrBadRequest wraps failures to decode a request.
	ErrBadRequest = errors.New("invalid request body")
)

// UserMessage provides user-friendly error information with actionable guidance.
type UserMessage struct {
	Message string // What happened (user-friendly)
	Action  string // What to do about it
	Code    string // Error code for support reference
}

type sentinelRule struct {
	target error
	msg    UserMessage
}

// sentinelRules are checked in order, so refinements precede their kinds.
var sentinelRules = []sentinelRule{
	{ErrBadRequest, UserMessage{
		Message: "The request could not be read",
		Action:  "Send a JSON body with tables as {columns, data} or {source: {table}}",
		Code:    "REQ007",
	}},
	{errs.ErrParam, UserMessage{
		Message: "Conflicting or incomplete parameters",
		Action:  "Pass either 'on' or both 'left_on' and 'right_on', and check which options apply to this operation",
		Code:    "PARAM001",
	}},
	{errs.ErrCollision, UserMessage{
		Message: "The tables share non-key column names",
		Action:  "Rename or drop the overlapping columns before combining",
		Code:    "DUP002",
	}},
	{errs.ErrDuplicate, UserMessage{
		Message: "Duplicates detected",
		Action:  "Review the listed entries and remove or rename the duplicates",
		Code:    "DUP001",
	}},
	{errs.ErrShape, UserMessage{
		Message: "The input has the wrong shape for this operation",
		Action:  "Check the number of columns and the nesting of the data",
		Code:    "SHAPE001",
	}},
	{errs.ErrNull, UserMessage{
		Message: "A required value is missing",
		Action:  "Fill in the null names or index values",
		Code:    "VAL001",
	}},
	{ErrTooManyRows, UserMessage{
		Message: "Table is too large",
		Action:  "Split the table or raise LIMIT_MAX_ROWS",
		Code:    "REQ006",
	}},
	{errs.ErrValue, UserMessage{
		Message: "Invalid value",
		Action:  "Check the parameter values against the allowed options",
		Code:    "VAL002",
	}},
	{errs.ErrType, UserMessage{
		Message: "Wrong type of input",
		Action:  "Check that each parameter has the expected type",
		Code:    "TYPE001",
	}},
	{errs.ErrNotImplemented, UserMessage{
		Message: "This combination of options is not supported",
		Action:  "Name the index or choose different options",
		Code:    "NI001",
	}},
	{ErrTooManyTables, UserMessage{
		Message: "Too many tables in one request",
		Action:  "Combine fewer tables at a time",
		Code:    "REQ001",
	}},
	{ErrBusy, UserMessage{
		Message: "Too many operations in progress",
		Action:  "Please wait a moment and try again",
		Code:    "REQ002",
	}},
	{ErrNoDatabase, UserMessage{
		Message: "No database is configured",
		Action:  "Set DATABASE_URL to load or save tables",
		Code:    "REQ003",
	}},
	{context.Canceled, UserMessage{
		Message: "Request was cancelled",
		Action:  "Please try again",
		Code:    "REQ004",
	}},
	{context.DeadlineExceeded, UserMessage{
		Message: "Request timed out",
		Action:  "Try smaller tables or try again later",
		Code:    "REQ005",
	}},
}

type errorPattern struct {
	pattern string
	msg     UserMessage
}

var errorPatterns = []errorPattern{
	{"does not exist", UserMessage{
		Message: "The table or column does not exist",
		Action:  "Verify the table name, including its schema",
		Code:    "DB001",
	}},
	{"duplicate key", UserMessage{
		Message: "A row with this key already exists",
		Action:  "Truncate the table or drop duplicate rows before saving",
		Code:    "DB002",
	}},
	{"violates unique", UserMessage{
		Message: "A row with this key already exists",
		Action:  "Truncate the table or drop duplicate rows before saving",
		Code:    "DB002",
	}},
	{"invalid input syntax", UserMessage{
		Message: "A value does not match the column type",
		Action:  "Run infer-types first or check the target column types",
		Code:    "DB003",
	}},
	{"connection refused", UserMessage{
		Message: "Unable to connect to database",
		Action:  "Please try again in a few moments",
		Code:    "DB004",
	}},
	{"connection reset", UserMessage{
		Message: "Database connection was interrupted",
		Action:  "Please try again",
		Code:    "DB005",
	}},
	{"deadlock", UserMessage{
		Message: "Database was busy with conflicting operations",
		Action:  "Please try again",
		Code:    "DB006",
	}},
}

// defaultMessage is returned when nothing matches (ERR000).
var defaultMessage = UserMessage{
	Message: "An unexpected error occurred",
	Action:  "Please try again or contact support",
	Code:    "ERR000",
}

// MapError converts an error to a user-friendly message. Sentinel kinds are
// checked first, then database error text. A nil error maps to the zero
// UserMessage.
func MapError(err error) UserMessage {
	if err == nil {
		return UserMessage{}
	}

	for _, r := range sentinelRules {
		if errors.Is(err, r.target) {
			return r.msg
		}
	}

	text := strings.ToLower(err.Error())
	for _, ep := range errorPatterns {
		if strings.Contains(text, ep.pattern) {
			return ep.msg
		}
	}

	return defaultMessage
}

// FormatUserError renders err as "Message (Code: XXX). Action".
func FormatUserError(err error) string {
	msg := MapError(err)
	if msg.Message == "" {
		return ""
	}
	return fmt.Sprintf("%s (Code: %s). %s", msg.Message, msg.Code, msg.Action)
}

// IsUserFacing reports whether err maps to a specific code rather than the
// ERR000 fallback. Such errors carry details that are safe to show.
func IsUserFacing(err error) bool {
	return err != nil && MapError(err).Code != defaultMessage.Code
}
