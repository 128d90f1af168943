package errors

import (
	"errors"
	"net/http"
	"strings"
)

var (
	ErrInvalidInput        = errors.New("invalid input")
	ErrInvalidName         = errors.New("name must not be empty")
	ErrInvalidLimit        = errors.New("limit must be a positive integer")
	ErrNameTaken           = errors.New("name already in use")
	ErrParticipantNotFound = errors.New("participant not found")
	ErrMissingUser         = errors.New("User header is required")
	ErrStorageUnavailable  = errors.New("storage unavailable")
	ErrRateLimited         = errors.New("rate limit exceeded")
)

// ValidationError carries the list of client-facing validation messages
// returned with a 422.
type ValidationError struct {
	Details []string
}

func NewValidationError(details ...string) *ValidationError {
	return &ValidationError{Details: details}
}

func (e *ValidationError) Error() string {
	return "validation failed: " + strings.Join(e.Details, "; ")
}

func (e *ValidationError) Unwrap() error {
	return ErrInvalidInput
}

// Details returns the 422 body for err: the validation messages when err is a
// ValidationError, otherwise the error text itself.
func Details(err error) []string {
	var verr *ValidationError
	if errors.As(err, &verr) && len(verr.Details) > 0 {
		return verr.Details
	}
	return []string{err.Error()}
}

// Storage wraps a driver error so callers can match ErrStorageUnavailable
// while the original cause stays in the chain.
func Storage(op string, err error) error {
	if err == nil {
		return nil
	}
	return &StorageError{Op: op, Err: err}
}

type StorageError struct {
	Op  string
	Err error
}

func (e *StorageError) Error() string {
	return e.Op + ": " + e.Err.Error()
}

func (e *StorageError) Unwrap() []error {
	return []error{ErrStorageUnavailable, e.Err}
}

type APIError struct {
	Message string `json:"error"`
	Code    int    `json:"code"`
}

func (e *APIError) Error() string {
	return e.Message
}

func NewAPIError(message string, code int) *APIError {
	return &APIError{
		Message: message,
		Code:    code,
	}
}

func HTTPStatusFromError(err error) int {
	switch {
	case errors.Is(err, ErrInvalidInput), errors.Is(err, ErrInvalidName),
		errors.Is(err, ErrInvalidLimit), errors.Is(err, ErrMissingUser):
		return http.StatusUnprocessableEntity
	case errors.Is(err, ErrNameTaken):
		return http.StatusConflict
	case errors.Is(err, ErrParticipantNotFound):
		return http.StatusNotFound
	case errors.Is(err, ErrRateLimited):
		return http.StatusTooManyRequests
	default:
		return http.StatusInternalServerError
	}
}
