// Package apperror defines the typed errors surfaced by the auth flow and
// how they map onto HTTP responses.
package apperror

import (
	"errors"
	"fmt"
	"net/http"
)

// ErrorType categorises an application error.
type ErrorType int

const (
	// UnknownError is for unspecified errors.
	UnknownError ErrorType = iota
	// ValidationError is a missing or malformed input field.
	ValidationError
	// ConflictError is a duplicate username or email.
	ConflictError
	// AuthenticationError is a failed credential check. Its message never
	// reveals whether the username exists.
	AuthenticationError
	// StorageError is a persistence failure.
	StorageError
	// InternalError is any other server-side failure.
	InternalError
)

// GenericMessage is shown to users for failures whose details must stay in the logs.
const GenericMessage = "Something went wrong, please try again"

func (t ErrorType) String() string {
	switch t {
	case ValidationError:
		return "validation"
	case ConflictError:
		return "conflict"
	case AuthenticationError:
		return "authentication"
	case StorageError:
		return "storage"
	case InternalError:
		return "internal"
	default:
		return "unknown"
	}
}

// AppError carries a user-facing message and an optional underlying cause.
type AppError struct {
	Type    ErrorType
	Message string
	Err     error
}

func (e *AppError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("%s: %v", e.Message, e.Err)
	}
	return e.Message
}

func (e *AppError) Unwrap() error {
	return e.Err
}

// StatusCode returns the HTTP status appropriate for the error type.
func (e *AppError) StatusCode() int {
	switch e.Type {
	case ValidationError:
		return http.StatusBadRequest
	case ConflictError:
		return http.StatusConflict
	case AuthenticationError:
		return http.StatusUnauthorized
	default:
		return http.StatusInternalServerError
	}
}

func New(errType ErrorType, message string, cause error) *AppError {
	return &AppError{Type: errType, Message: message, Err: cause}
}

func NewValidationError(message string) *AppError {
	return New(ValidationError, message, nil)
}

func NewConflictError(message string, cause error) *AppError {
	return New(ConflictError, message, cause)
}

func NewAuthenticationError(message string) *AppError {
	return New(AuthenticationError, message, nil)
}

func NewStorageError(message string, cause error) *AppError {
	return New(StorageError, message, cause)
}

func NewInternalError(message string, cause error) *AppError {
	return New(InternalError, message, cause)
}

// FromError unwraps err looking for an *AppError.
func FromError(err error) (*AppError, bool) {
	var ae *AppError
	if errors.As(err, &ae) {
		return ae, true
	}
	return nil, false
}

// Is reports whether err carries an AppError of the given type.
func Is(err error, errType ErrorType) bool {
	ae, ok := FromError(err)
	return ok && ae.Type == errType
}

// StatusCode maps any error to an HTTP status, defaulting to 500.
func StatusCode(err error) int {
	if ae, ok := FromError(err); ok {
		return ae.StatusCode()
	}
	return http.StatusInternalServerError
}

// PublicMessage returns the text that may be shown to the end user. Storage
// and internal failures collapse into GenericMessage.
func PublicMessage(err error) string {
	ae, ok := FromError(err)
	if !ok {
		return GenericMessage
	}
	switch ae.Type {
	case ValidationError, ConflictError, AuthenticationError:
		return ae.Message
	default:
		return GenericMessage
	}
}
