package timeline

import "errors"

var (
	ErrMissingTimezone   = errors.New("timezone is missing or unknown")
	ErrInvalidTimeFormat = errors.New("time must be HH:MM")
	ErrInvalidDate       = errors.New("date must be YYYY-MM-DD")
	ErrTimeNonExistent   = errors.New("local time does not exist in timezone")
)

// Error codes are stable and machine readable. The API layer turns them into
// user facing messages.
const (
	CodeMissingTimezone   = "MISSING_TIMEZONE"
	CodeInvalidTimeFormat = "INVALID_TIME_FORMAT"
	CodeInvalidDate       = "INVALID_DATE"
	CodeTimeNonExistent   = "TIME_NON_EXISTENT"
)

// Code returns the machine code for a time pipeline error, or "" when err is
// not one of ours.
func Code(err error) string {
	switch {
	case errors.Is(err, ErrMissingTimezone):
		return CodeMissingTimezone
	case errors.Is(err, ErrInvalidTimeFormat):
		return CodeInvalidTimeFormat
	case errors.Is(err, ErrInvalidDate):
		return CodeInvalidDate
	case errors.Is(err, ErrTimeNonExistent):
		return CodeTimeNonExistent
	default:
		return ""
	}
}
