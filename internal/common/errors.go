package common

import (
	"errors"
	"net/http"
)

// Error kinds shared across handlers.
const (
	KindUnauthorized      = "UNAUTHORIZED"
	KindForbidden         = "FORBIDDEN"
	KindNotFound          = "NOT_FOUND"
	KindValidation        = "VALIDATION_ERROR"
	KindConflict          = "CONFLICT"
	KindSignatureMismatch = "SIGNATURE_MISMATCH"
	KindInternal          = "INTERNAL"
)

// User-facing messages.
const (
	MsgInternal     = "Lỗi hệ thống, vui lòng thử lại sau"
	MsgForbidden    = "Bạn không có quyền thực hiện thao tác này"
	MsgUnauthorized = "Vui lòng đăng nhập"
	MsgBadPayload   = "Dữ liệu gửi lên không hợp lệ"
)

// AppError represents an error with an attached code and HTTP status.
type AppError struct {
	Code       string
	Message    string
	HTTPStatus int
	Err        error
	Details    any
}

// Error implements the error interface.
func (e *AppError) Error() string {
	if e == nil {
		return ""
	}
	if e.Err != nil {
		return e.Err.Error()
	}
	return e.Message
}

// Unwrap allows errors.Is/As to inspect the underlying error.
func (e *AppError) Unwrap() error {
	if e == nil {
		return nil
	}
	return e.Err
}

// NewAppError constructs an AppError.
func NewAppError(code, message string, status int, err error) *AppError {
	return &AppError{Code: code, Message: message, HTTPStatus: status, Err: err}
}

// NotFound reports a missing resource.
func NotFound(message string) *AppError {
	return NewAppError(KindNotFound, message, http.StatusNotFound, nil)
}

// Validation reports malformed input.
func Validation(message string) *AppError {
	return NewAppError(KindValidation, message, http.StatusBadRequest, nil)
}

// Conflict reports a uniqueness or state conflict.
func Conflict(message string, err error) *AppError {
	return NewAppError(KindConflict, message, http.StatusConflict, err)
}

// Internal wraps an unexpected failure. The cause is logged, never rendered.
func Internal(err error) *AppError {
	return NewAppError(KindInternal, MsgInternal, http.StatusInternalServerError, err)
}

// IsAppError checks whether the error is an AppError.
func IsAppError(err error) bool {
	var target *AppError
	return errors.As(err, &target)
}

// HasKind reports whether err is an AppError of the given kind.
func HasKind(err error, kind string) bool {
	var target *AppError
	return errors.As(err, &target) && target.Code == kind
}

// Unauthorized reports a missing or invalid credential.
func Unauthorized(message string, err error) *AppError {
	return NewAppError(KindUnauthorized, message, http.StatusUnauthorized, err)
}

// Forbidden reports a caller lacking a permission token.
func Forbidden() *AppError {
	return NewAppError(KindForbidden, MsgForbidden, http.StatusForbidden, nil)
}
