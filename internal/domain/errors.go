package domain

import (
	"errors"
	"fmt"
	"strings"
)

// Sentinel errors returned by the storage layer. Callers branch with errors.Is.
var (
	ErrNotFound        = errors.New("not found")
	ErrUnauthorized    = errors.New("not authorized")
	ErrInvalidState    = errors.New("invalid state")
	ErrAlreadyConsumed = errors.New("donation unit already consumed")
)

// ValidationError reports malformed or out-of-range input.
type ValidationError struct {
	Field  string
	Reason string
}

func NewValidationError(field, reason string) *ValidationError {
	return &ValidationError{Field: field, Reason: reason}
}

func (e *ValidationError) Error() string {
	if e.Field == "" {
		return "validation failed: " + e.Reason
	}
	return fmt.Sprintf("validation failed: %s: %s", e.Field, e.Reason)
}

// IneligibleDonorError is returned when a donation is attempted by a donor
// who is disabled, fails the base requirements or is still waiting.
type IneligibleDonorError struct {
	DonorID       int64
	DaysRemaining int
	Reasons       []string
}

func (e *IneligibleDonorError) Error() string {
	msg := fmt.Sprintf("donor %d is not eligible to donate", e.DonorID)
	if len(e.Reasons) > 0 {
		msg += ": " + strings.Join(e.Reasons, ", ")
	}
	return msg
}

func IsValidation(err error) bool {
	var ve *ValidationError
	return errors.As(err, &ve)
}

func IsIneligible(err error) bool {
	var ie *IneligibleDonorError
	return errors.As(err, &ie)
}
