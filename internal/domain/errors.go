package domain

import "errors"

var (
	// ErrInvalidInput is rejected locally, before any network call.
	ErrInvalidInput = errors.New("invalid input")
	// ErrUnavailable marks transient network or service failures.
	ErrUnavailable = errors.New("service unavailable")
	// ErrPartialData marks malformed or schema-violating responses.
	ErrPartialData = errors.New("partial data")
	// ErrRejected marks requests the backend refused (4xx).
	ErrRejected = errors.New("request rejected")
	// ErrNotOnboarded is returned by screens that need a user and a farm.
	ErrNotOnboarded = errors.New("user and farm not set up")
)

// ValidationError is an input failure with a message meant for the farmer.
type ValidationError struct {
	Field   string
	Message string
}

func (e *ValidationError) Error() string {
	if e.Field == "" {
		return e.Message
	}
	return e.Field + ": " + e.Message
}

func (e *ValidationError) Unwrap() error { return ErrInvalidInput }

// Invalid builds a ValidationError.
func Invalid(field, message string) error {
	return &ValidationError{Field: field, Message: message}
}

// UserMessage returns the farmer-facing text of err.
func UserMessage(err error) string {
	var ve *ValidationError
	if errors.As(err, &ve) {
		return ve.Message
	}
	var um interface{ UserMessage() string }
	if errors.As(err, &um) {
		return um.UserMessage()
	}
	switch {
	case errors.Is(err, ErrNotOnboarded):
		return "Please complete your profile first."
	case errors.Is(err, ErrUnavailable):
		return "Service is unreachable right now. Please try again."
	case errors.Is(err, ErrPartialData):
		return "Some data could not be loaded."
	}
	return err.Error()
}

// RejectedError is a refusal reported inside a successful response, such as
// a detection that ran but found nothing usable.
type RejectedError struct {
	Message string
}

func (e *RejectedError) Error() string       { return "rejected: " + e.Message }
func (e *RejectedError) Unwrap() error       { return ErrRejected }
func (e *RejectedError) UserMessage() string { return e.Message }

// Rejected builds a RejectedError.
func Rejected(message string) error {
	return &RejectedError{Message: message}
}
