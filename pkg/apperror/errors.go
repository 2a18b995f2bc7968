package apperror

import (
	"errors"
	"net/http"
)

var (
	ErrNotFound     = errors.New("resource not found")
	ErrUnauthorized = errors.New("unauthorized")
	ErrForbidden    = errors.New("forbidden")
	ErrBadRequest   = errors.New("bad request")
	ErrInternal     = errors.New("internal server error")
	ErrInvalidInput = errors.New("invalid input")

	// Ledger errors.
	ErrUnknownActivity     = errors.New("unknown activity")
	ErrInsufficientBalance = errors.New("insufficient balance")
	ErrAlreadyReversed     = errors.New("transaction already reversed")
	ErrNotReversible       = errors.New("transaction is not reversible")

	ErrUserNotFound      = errors.New("user not found")
	ErrCommunityNotFound = errors.New("community not found")
	ErrNotAMember        = errors.New("not a member of this community")
)

// AppError is a custom error type that can hold an HTTP status code
type AppError struct {
	Code    int
	Message string
	Err     error
}

func (e *AppError) Error() string {
	if e.Err != nil {
		return e.Err.Error()
	}
	return e.Message
}

func (e *AppError) Unwrap() error {
	return e.Err
}

// New creates a new AppError
func New(code int, message string, err error) *AppError {
	return &AppError{
		Code:    code,
		Message: message,
		Err:     err,
	}
}

// MapErrorToStatus maps common errors to HTTP status codes
func MapErrorToStatus(err error) int {
	if errors.Is(err, ErrNotFound) || errors.Is(err, ErrUserNotFound) || errors.Is(err, ErrCommunityNotFound) {
		return http.StatusNotFound
	}
	if errors.Is(err, ErrUnauthorized) {
		return http.StatusUnauthorized
	}
	if errors.Is(err, ErrForbidden) || errors.Is(err, ErrNotAMember) {
		return http.StatusForbidden
	}
	if errors.Is(err, ErrBadRequest) || errors.Is(err, ErrInvalidInput) ||
		errors.Is(err, ErrUnknownActivity) || errors.Is(err, ErrInsufficientBalance) {
		return http.StatusBadRequest
	}
	if errors.Is(err, ErrAlreadyReversed) || errors.Is(err, ErrNotReversible) {
		return http.StatusConflict
	}
	// Default to internal server error
	return http.StatusInternalServerError
}
