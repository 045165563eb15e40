// Package service holds the dashboard modules besides reservations: the unit
// directory, finances, maintenance tickets, the communication feed and the
// notification list.
package service

import (
	"errors"
	"fmt"
)

var (
	ErrRequiredField = errors.New("required field missing")
	ErrInvalidValue  = errors.New("invalid value")
	ErrPollOptions   = errors.New("poll needs at least two options")
	ErrNotAPoll      = errors.New("post is not a poll")
)

// InputError is a rejected form. Message is shown to the user.
type InputError struct {
	Field   string
	Message string
	Err     error
}

func (e *InputError) Error() string {
	if e.Field != "" {
		return fmt.Sprintf("%s: %s", e.Field, e.Message)
	}
	return e.Message
}

func (e *InputError) Unwrap() error { return e.Err }

func required(field, message string) error {
	return &InputError{Field: field, Message: message, Err: ErrRequiredField}
}

func invalidValue(field, format string, args ...any) error {
	return &InputError{Field: field, Message: fmt.Sprintf(format, args...), Err: ErrInvalidValue}
}
