package booking

import (
	"errors"
	"fmt"
)

var (
	ErrRequiredField     = errors.New("required field missing")
	ErrInvalidDate       = errors.New("invalid date")
	ErrUnknownArea       = errors.New("unknown area")
	ErrAreaInactive      = errors.New("area inactive")
	ErrCapacityExceeded  = errors.New("capacity exceeded")
	ErrInvalidInterval   = errors.New("invalid time interval")
	ErrOutsideHours      = errors.New("outside opening hours")
	ErrHoliday           = errors.New("area closed on holiday")
	ErrTimeConflict      = errors.New("time conflict")
	ErrApprovedConflict  = errors.New("conflicts with an approved reservation")
	ErrInvalidTransition = errors.New("invalid status transition")
	ErrUnknownTab        = errors.New("unknown tab")
)

// ValidationError is a rejected submission. Message is the text shown to the
// user; Err is one of the sentinels above.
type ValidationError struct {
	Reason  string
	Message string
	Err     error
}

func (e *ValidationError) Error() string {
	if e.Reason != "" {
		return fmt.Sprintf("%s: %s", e.Reason, e.Message)
	}
	return e.Message
}

func (e *ValidationError) Unwrap() error { return e.Err }

func invalid(reason string, err error, format string, args ...any) *ValidationError {
	return &ValidationError{Reason: reason, Message: fmt.Sprintf(format, args...), Err: err}
}

// AsValidation extracts a ValidationError from err.
func AsValidation(err error) (*ValidationError, bool) {
	var ve *ValidationError
	if errors.As(err, &ve) {
		return ve, true
	}
	return nil, false
}
