package errors

import (
	"errors"
	"fmt"
	"net/http"
)

// Error represents a typed domain error with HTTP awareness.
type Error struct {
	Code    string `json:"code"`
	Message string `json:"message"`
	Status  int    `json:"status"`
	Err     error  `json:"-"`
}

// Error implements the error interface.
func (e *Error) Error() string {
	if e == nil {
		return "<nil>"
	}
	if e.Err != nil {
		return fmt.Sprintf("%s: %v", e.Message, e.Err)
	}
	return e.Message
}

// Unwrap returns the wrapped error.
func (e *Error) Unwrap() error {
	if e == nil {
		return nil
	}
	return e.Err
}

// Is reports whether target carries the same code, so clones and wraps of a
// predefined error still match it through errors.Is.
func (e *Error) Is(target error) bool {
	if e == nil {
		return false
	}
	var t *Error
	if !errors.As(target, &t) || t == nil {
		return false
	}
	return e.Code == t.Code
}

// New creates a new Error instance.
func New(code string, status int, message string) *Error {
	return &Error{Code: code, Status: status, Message: message}
}

// Wrap attaches context to an existing error.
func Wrap(err error, code string, status int, message string) *Error {
	return &Error{Code: code, Status: status, Message: message, Err: err}
}

// WrapAs wraps err under the code and status of base.
func WrapAs(err error, base *Error, message string) *Error {
	if message == "" {
		message = base.Message
	}
	return Wrap(err, base.Code, base.Status, message)
}

// Predefined errors for common scenarios.
var (
	ErrNotFound            = New("NOT_FOUND", http.StatusNotFound, "resource not found")
	ErrConflict            = New("CONFLICT", http.StatusConflict, "conflict")
	ErrValidation          = New("VALIDATION_ERROR", http.StatusBadRequest, "validation failed")
	ErrInternal            = New("INTERNAL_ERROR", http.StatusInternalServerError, "internal server error")
	ErrDuplicateClass      = New("DUPLICATE_CLASS", http.StatusConflict, "class already exists")
	ErrDuplicateStudent    = New("DUPLICATE_STUDENT", http.StatusConflict, "student already exists in class")
	ErrDecodeFailure       = New("DECODE_FAILURE", http.StatusUnprocessableEntity, "file could not be decoded")
	ErrUnsupportedFileType = New("UNSUPPORTED_FILE_TYPE", http.StatusUnsupportedMediaType, "unsupported file type")
	ErrFileTooLarge        = New("FILE_TOO_LARGE", http.StatusRequestEntityTooLarge, "file too large")
	ErrBlobNotFound        = New("BLOB_NOT_FOUND", http.StatusNotFound, "stored blob not found")
	ErrPersistence         = New("PERSISTENCE_FAILURE", http.StatusInternalServerError, "failed to persist roster")
	ErrCorruptSnapshot     = New("CORRUPT_SNAPSHOT", http.StatusInternalServerError, "stored roster is corrupt")
)

// FromError normalises any error into an *Error.
func FromError(err error) *Error {
	if err == nil {
		return nil
	}
	var e *Error
	if errors.As(err, &e) {
		return e
	}
	return Wrap(err, ErrInternal.Code, ErrInternal.Status, ErrInternal.Message)
}

// Clone returns a copy of the error allowing for message overrides.
func Clone(err *Error, message string) *Error {
	if err == nil {
		return nil
	}
	clone := *err
	if message != "" {
		clone.Message = message
	}
	return &clone
}
