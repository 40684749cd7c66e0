// Error code reference for the catalogue API.
//
// Technical errors are mapped to user-facing messages with stable codes so
// that API consumers and support staff can identify a failure without
// reading server logs.
//
// Catalogue errors (CAT001-CAT099):
//
//	CAT001 - Duplicate target: the target id is already in the catalogue
//	CAT002 - Unknown target: the observation references an id that was
//	         never created
//	CAT003 - Ambiguous filter binding: neither or both of code/wavelength
//	         were supplied
//	CAT004 - Column shape conflict: an instrument label was reused with a
//	         different binding kind
//
// Unit errors (UNIT001-UNIT099):
//
//	UNIT001 - Incompatible unit: the supplied unit is not a flux density
//	          unit
//
// Validation errors (VAL001-VAL099):
//
//	VAL001 - Missing column: a required CSV column is absent
//	VAL002 - Invalid number: a numeric cell could not be parsed
//	VAL003 - Required field: a required cell is empty
//
// File errors (FILE001-FILE099):
//
//	FILE001 - File too large
//	FILE002 - Invalid CSV
//	FILE003 - Empty file
//	FILE004 - No file provided
//
// Session errors (SES001-SES099):
//
//	SES001 - Catalogue not found: the session handle is unknown or expired
//	SES002 - Too many catalogues: the in-memory session cap was reached
//
// ERR000 is the fallback when nothing matches. Patterns are matched
// case-insensitively with strings.Contains; specific patterns come before
// general ones.
package catalogue

import (
	"errors"
	"strings"

	"github.com/stardustkit/cataloguer/internal/fluxunit"
)

// UserMessage provides user-friendly error information with actionable
// guidance.
type UserMessage struct {
	Message string // What happened (user-friendly)
	Action  string // What to do about it
	Code    string // Error code for support reference
}

// sentinelMessages maps the catalogue error taxonomy to user messages.
// Checked with errors.Is before any pattern matching.
var sentinelMessages = []struct {
	err error
	msg UserMessage
}{
	{ErrDuplicateTarget, UserMessage{
		Message: "A target with this id already exists",
		Action:  "Check your data for duplicate target ids",
		Code:    "CAT001",
	}},
	{ErrUnknownTarget, UserMessage{
		Message: "The observation references a target that was never created",
		Action:  "Create the target before adding observations to it",
		Code:    "CAT002",
	}},
	{ErrAmbiguousFilterBinding, UserMessage{
		Message: "An observation must carry exactly one of filter code or wavelength",
		Action:  "Supply either a Stardust filter code or a central wavelength, not both",
		Code:    "CAT003",
	}},
	{ErrColumnShapeConflict, UserMessage{
		Message: "This instrument label was already registered with the other filter kind",
		Action:  "Use one label per filter kind; pick a new label for the other binding",
		Code:    "CAT004",
	}},
	{fluxunit.ErrIncompatibleUnit, UserMessage{
		Message: "The supplied unit is not a flux density unit",
		Action:  "Use a Jansky-family unit such as Jy, mJy or uJy",
		Code:    "UNIT001",
	}},
}

// errorPatterns maps technical error substrings (case-insensitive) to user
// messages. First match wins.
var errorPatterns = []struct {
	pattern string
	msg     UserMessage
}{
	{"missing required column", UserMessage{
		Message: "A required column is missing from the CSV",
		Action:  "Check that all required columns are present in your file",
		Code:    "VAL001",
	}},
	{"invalid number", UserMessage{
		Message: "Invalid number format detected",
		Action:  "Use standard decimal or scientific notation",
		Code:    "VAL002",
	}},
	{"required field", UserMessage{
		Message: "A required field is empty",
		Action:  "Ensure all required columns have values",
		Code:    "VAL003",
	}},
	{"file too large", UserMessage{
		Message: "The file exceeds the maximum size limit",
		Action:  "Split the file into smaller chunks",
		Code:    "FILE001",
	}},
	{"invalid csv", UserMessage{
		Message: "The file is not a valid CSV",
		Action:  "Ensure the file is comma-separated with consistent columns",
		Code:    "FILE002",
	}},
	{"empty file", UserMessage{
		Message: "The uploaded file is empty",
		Action:  "Upload a CSV file with data rows",
		Code:    "FILE003",
	}},
	{"no file provided", UserMessage{
		Message: "No file was selected",
		Action:  "Select a CSV file to upload",
		Code:    "FILE004",
	}},
	{"catalogue not found", UserMessage{
		Message: "The catalogue session does not exist",
		Action:  "It may have expired; create a new catalogue",
		Code:    "SES001",
	}},
	{"too many catalogues", UserMessage{
		Message: "Too many catalogue sessions are open",
		Action:  "Save or discard an existing catalogue and try again",
		Code:    "SES002",
	}},
}

// defaultMessage is returned when no sentinel or pattern matches.
var defaultMessage = UserMessage{
	Message: "An unexpected error occurred",
	Action:  "Please try again or contact support",
	Code:    "ERR000",
}

// MapError translates a technical error into a user-friendly message with
// a stable error code.
func MapError(err error) UserMessage {
	if err == nil {
		return UserMessage{}
	}

	for _, s := range sentinelMessages {
		if errors.Is(err, s.err) {
			return s.msg
		}
	}

	lower := strings.ToLower(err.Error())
	for _, p := range errorPatterns {
		if strings.Contains(lower, p.pattern) {
			return p.msg
		}
	}

	return defaultMessage
}
