package errors

import (
	"errors"
	"fmt"
	"net/http"
)

// StoreHint is shown to callers when a backing store cannot be reached.
const StoreHint = "check the record and blob store credentials and configuration"

var (
	// ErrUserNotFound is returned when no user record matches the identifier.
	ErrUserNotFound = errors.New("user not found")
	// ErrInvalidCredential is returned when the password does not match the stored hash.
	ErrInvalidCredential = errors.New("invalid password")
	// ErrDuplicateIdentifier is returned when provisioning an identifier that already exists.
	ErrDuplicateIdentifier = errors.New("identifier already registered")
	// ErrStoreUnavailable covers record and blob store connectivity or permission failures.
	ErrStoreUnavailable = errors.New("store unavailable")
	// ErrDocumentNotFound is returned when no document matches a blob reference.
	ErrDocumentNotFound = errors.New("document not found")
	// ErrForbidden is returned when the session may not access a resource.
	ErrForbidden = errors.New("access denied")
	// ErrInvalidDocument is returned when an upload is empty, too large or not a PDF.
	ErrInvalidDocument = errors.New("invalid document")
	// ErrInvalidInput is returned when a required field is empty.
	ErrInvalidInput = errors.New("invalid input")
	// ErrWeakPassword is returned when a password violates the configured policy.
	ErrWeakPassword = errors.New("password does not satisfy policy")
	// ErrInvalidRefreshToken is returned when refresh token is invalid or expired.
	ErrInvalidRefreshToken = errors.New("invalid or expired refresh token")
)

// StoreError wraps a failure talking to the record or blob store.
type StoreError struct {
	Store string
	Op    string
	Err   error
}

// NewStoreError wraps err as a StoreError. A nil err yields nil.
func NewStoreError(store, op string, err error) error {
	if err == nil {
		return nil
	}
	return &StoreError{Store: store, Op: op, Err: err}
}

func (e *StoreError) Error() string {
	return fmt.Sprintf("%s store unavailable: %s: %v", e.Store, e.Op, e.Err)
}

func (e *StoreError) Unwrap() error {
	return e.Err
}

// Is reports StoreError as ErrStoreUnavailable.
func (e *StoreError) Is(target error) bool {
	return target == ErrStoreUnavailable
}

// ErrorResponse represents a standardized error response.
type ErrorResponse struct {
	Error string `json:"error"`
	Code  string `json:"code"`
	Hint  string `json:"hint,omitempty"`
}

// HTTPError represents an HTTP error with status code.
type HTTPError struct {
	StatusCode int
	Message    string
	Code       string
	Hint       string
}

func (e *HTTPError) Error() string {
	return e.Message
}

// NewHTTPError creates a new HTTP error.
func NewHTTPError(statusCode int, message, code string) *HTTPError {
	return &HTTPError{
		StatusCode: statusCode,
		Message:    message,
		Code:       code,
	}
}

// ToErrorResponse converts an HTTPError to ErrorResponse.
func (e *HTTPError) ToErrorResponse() ErrorResponse {
	return ErrorResponse{
		Error: e.Message,
		Code:  e.Code,
		Hint:  e.Hint,
	}
}

// MapErrorToHTTP maps domain errors to HTTP errors.
func MapErrorToHTTP(err error) *HTTPError {
	switch {
	case errors.Is(err, ErrUserNotFound):
		return NewHTTPError(http.StatusUnauthorized, ErrUserNotFound.Error(), "USER_NOT_FOUND")
	case errors.Is(err, ErrInvalidCredential):
		return NewHTTPError(http.StatusUnauthorized, ErrInvalidCredential.Error(), "INVALID_CREDENTIAL")
	case errors.Is(err, ErrInvalidRefreshToken):
		return NewHTTPError(http.StatusUnauthorized, ErrInvalidRefreshToken.Error(), "INVALID_REFRESH_TOKEN")
	case errors.Is(err, ErrDuplicateIdentifier):
		return NewHTTPError(http.StatusConflict, ErrDuplicateIdentifier.Error(), "DUPLICATE_IDENTIFIER")
	case errors.Is(err, ErrDocumentNotFound):
		return NewHTTPError(http.StatusNotFound, ErrDocumentNotFound.Error(), "DOCUMENT_NOT_FOUND")
	case errors.Is(err, ErrForbidden):
		return NewHTTPError(http.StatusForbidden, ErrForbidden.Error(), "FORBIDDEN")
	case errors.Is(err, ErrInvalidDocument):
		return NewHTTPError(http.StatusBadRequest, err.Error(), "INVALID_DOCUMENT")
	case errors.Is(err, ErrInvalidInput):
		return NewHTTPError(http.StatusBadRequest, err.Error(), "INVALID_INPUT")
	case errors.Is(err, ErrWeakPassword):
		return NewHTTPError(http.StatusBadRequest, err.Error(), "WEAK_PASSWORD")
	case errors.Is(err, ErrStoreUnavailable):
		httpErr := NewHTTPError(http.StatusServiceUnavailable, ErrStoreUnavailable.Error(), "STORE_UNAVAILABLE")
		httpErr.Hint = StoreHint
		return httpErr
	default:
		return NewHTTPError(http.StatusInternalServerError, "internal server error", "INTERNAL_ERROR")
	}
}
