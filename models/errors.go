package models

import (
	"errors"
	"fmt"
	"net/http"
)

type ErrorCode string

const (
	CodeValidation      ErrorCode = "VALIDATION_ERROR"
	CodeUnauthorized    ErrorCode = "UNAUTHORIZED"
	CodeNotFound        ErrorCode = "NOT_FOUND"
	CodeConflict        ErrorCode = "CONFLICT"
	CodePaymentDeclined ErrorCode = "PAYMENT_DECLINED"
	CodePersistence     ErrorCode = "PERSISTENCE_ERROR"
	CodeDependency      ErrorCode = "DEPENDENCY_ERROR"
	CodeInternal        ErrorCode = "INTERNAL_ERROR"
)

var httpStatusByCode = map[ErrorCode]int{
	CodeValidation:      http.StatusBadRequest,
	CodeUnauthorized:    http.StatusUnauthorized,
	CodeNotFound:        http.StatusNotFound,
	CodeConflict:        http.StatusConflict,
	CodePaymentDeclined: http.StatusPaymentRequired,
	CodePersistence:     http.StatusServiceUnavailable,
	CodeDependency:      http.StatusServiceUnavailable,
	CodeInternal:        http.StatusInternalServerError,
}

func (c ErrorCode) HTTPStatus() int {
	if status, ok := httpStatusByCode[c]; ok {
		return status
	}
	return http.StatusInternalServerError
}

// AppError is the error type every service returns to the HTTP layer.
type AppError struct {
	Code    ErrorCode
	Message string
	Details any
	cause   error
}

func NewAppError(code ErrorCode, message string) *AppError {
	return &AppError{Code: code, Message: message}
}

func WrapAppError(code ErrorCode, err error, message string) *AppError {
	return &AppError{Code: code, Message: message, cause: err}
}

func (e *AppError) WithDetails(details any) *AppError {
	e.Details = details
	return e
}

func (e *AppError) Error() string {
	if e.cause != nil {
		return fmt.Sprintf("%s: %s: %v", e.Code, e.Message, e.cause)
	}
	return fmt.Sprintf("%s: %s", e.Code, e.Message)
}

func (e *AppError) Unwrap() error {
	return e.cause
}

// AsAppError finds an *AppError in err's chain.
func AsAppError(err error) (*AppError, bool) {
	var appErr *AppError
	if errors.As(err, &appErr) {
		return appErr, true
	}
	return nil, false
}

func HasCode(err error, code ErrorCode) bool {
	appErr, ok := AsAppError(err)
	return ok && appErr.Code == code
}

func ValidationError(message string) *AppError {
	return NewAppError(CodeValidation, message)
}

func NotFoundError(message string) *AppError {
	return NewAppError(CodeNotFound, message)
}

func PersistenceError(err error, message string) *AppError {
	return WrapAppError(CodePersistence, err, message)
}

func PaymentDeclinedError(message string) *AppError {
	return NewAppError(CodePaymentDeclined, message)
}
