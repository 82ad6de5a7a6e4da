package errors

import (
	"errors"
	"fmt"
)

// Sentinel errors shared across the repository, service, and API layers
var (
	ErrNotFound           = errors.New("resource not found")
	ErrDuplicateEntry     = errors.New("duplicate entry")
	ErrInvalidInput       = errors.New("invalid input")
	ErrDomainNotActive    = errors.New("domain is not active")
	ErrMailboxNotFound    = errors.New("mailbox not found")
	ErrMessageNotFound    = errors.New("message not found")
	ErrThreadNotFound     = errors.New("thread not found")
	ErrAttachmentNotFound = errors.New("attachment not found")
	ErrDomainNotFound     = errors.New("domain not found")

	// ErrInvalidModelSnapshot marks a persisted classifier model blob that
	// could not be decoded
	ErrInvalidModelSnapshot = errors.New("invalid classifier model snapshot")

	ErrUnauthorized = errors.New("unauthorized")
	ErrForbidden    = errors.New("forbidden")
	ErrInternal     = errors.New("internal server error")
)

// Error codes carried in API error responses
const (
	CodeNotFound             = "NOT_FOUND"
	CodeDuplicateEntry       = "DUPLICATE_ENTRY"
	CodeInvalidInput         = "INVALID_INPUT"
	CodeDomainNotActive      = "DOMAIN_NOT_ACTIVE"
	CodeInvalidModelSnapshot = "INVALID_MODEL_SNAPSHOT"
	CodeUnauthorized         = "UNAUTHORIZED"
	CodeForbidden            = "FORBIDDEN"
	CodeInternalError        = "INTERNAL_ERROR"
)

// notFoundErrors are the sentinels GetErrorCode treats as 404s
var notFoundErrors = []error{
	ErrNotFound,
	ErrMailboxNotFound,
	ErrMessageNotFound,
	ErrThreadNotFound,
	ErrAttachmentNotFound,
	ErrDomainNotFound,
}

// AppError carries an underlying error with a display message and API code
type AppError struct {
	Err     error
	Message string
	Code    string
}

func (e *AppError) Error() string {
	if e.Message != "" {
		return e.Message
	}
	return e.Err.Error()
}

func (e *AppError) Unwrap() error {
	return e.Err
}

// NewAppError creates a new AppError
func NewAppError(err error, message string, code string) *AppError {
	return &AppError{Err: err, Message: message, Code: code}
}

// Wrap adds context to err, preserving the chain for errors.Is
func Wrap(err error, message string) error {
	if err == nil {
		return nil
	}
	return fmt.Errorf("%s: %w", message, err)
}

// IsNotFound reports whether err is any of the not-found sentinels
func IsNotFound(err error) bool {
	for _, sentinel := range notFoundErrors {
		if errors.Is(err, sentinel) {
			return true
		}
	}
	return false
}

// IsDuplicateEntry reports a unique-constraint violation
func IsDuplicateEntry(err error) bool {
	return errors.Is(err, ErrDuplicateEntry)
}

// IsInvalidInput reports a request validation failure
func IsInvalidInput(err error) bool {
	return errors.Is(err, ErrInvalidInput)
}

// IsDomainNotActive reports mail addressed to a deactivated domain
func IsDomainNotActive(err error) bool {
	return errors.Is(err, ErrDomainNotActive)
}

// GetErrorCode maps err to its API error code, walking the wrap chain
func GetErrorCode(err error) string {
	switch {
	case IsNotFound(err):
		return CodeNotFound
	case IsDuplicateEntry(err):
		return CodeDuplicateEntry
	case IsInvalidInput(err):
		return CodeInvalidInput
	case IsDomainNotActive(err):
		return CodeDomainNotActive
	case errors.Is(err, ErrInvalidModelSnapshot):
		return CodeInvalidModelSnapshot
	case errors.Is(err, ErrUnauthorized):
		return CodeUnauthorized
	case errors.Is(err, ErrForbidden):
		return CodeForbidden
	default:
		return CodeInternalError
	}
}
