package errors

import (
	stderrors "errors"
	"fmt"
)

// As and Is re-export the standard matchers so callers need one errors import.
func As(err error, target any) bool { return stderrors.As(err, target) }

func Is(err, target error) bool { return stderrors.Is(err, target) }

// Error codes
const (
	CodeAPIError   = "API_ERROR"
	CodeValidation = "VALIDATION_ERROR"
	CodeCache      = "CACHE_ERROR"
	CodeStorage    = "STORAGE_ERROR"
	CodeQuota      = "QUOTA_ERROR"
	CodeNiche      = "NICHE_RESOLUTION_ERROR"
)

type AppError struct {
	Message    string
	Code       string
	StatusCode int
	Context    map[string]any
	Cause      error
}

func (e *AppError) Error() string {
	if e.Cause != nil {
		return fmt.Sprintf("%s: %v", e.Message, e.Cause)
	}
	return e.Message
}

func (e *AppError) Unwrap() error {
	return e.Cause
}

func NewAppError(message, code string, statusCode int, context map[string]any) *AppError {
	return &AppError{
		Message:    message,
		Code:       code,
		StatusCode: statusCode,
		Context:    context,
	}
}

func (e *AppError) WithCause(cause error) *AppError {
	e.Cause = cause
	return e
}

// ErrorCode exposes the machine-readable code; promoted through every wrapper
// type so CodeOf works on all of them.
func (e *AppError) ErrorCode() string {
	return e.Code
}

// ErrorStatus exposes the HTTP status the error maps to.
func (e *AppError) ErrorStatus() int {
	return e.StatusCode
}

type coded interface {
	ErrorCode() string
}

type statused interface {
	ErrorStatus() int
}

// CodeOf returns the machine code of the first coded error in the chain, or
// CodeAPIError for plain errors.
func CodeOf(err error) string {
	var c coded
	if As(err, &c) {
		return c.ErrorCode()
	}
	return CodeAPIError
}

// StatusOf returns the HTTP status of the first coded error in the chain, or
// 500 for plain errors.
func StatusOf(err error) int {
	var s statused
	if As(err, &s) {
		return s.ErrorStatus()
	}
	return 500
}

type APIError struct {
	*AppError
}

func NewAPIError(message string, statusCode int, context map[string]any) *APIError {
	return &APIError{
		AppError: &AppError{
			Message:    message,
			Code:       CodeAPIError,
			StatusCode: statusCode,
			Context:    context,
		},
	}
}

type ValidationError struct {
	*AppError
	Field string
	Value interface{}
}

func NewValidationError(message, field string, value interface{}) *ValidationError {
	return &ValidationError{
		AppError: &AppError{
			Message:    message,
			Code:       CodeValidation,
			StatusCode: 400,
			Context: map[string]any{
				"field": field,
				"value": value,
			},
		},
		Field: field,
		Value: value,
	}
}

type CacheError struct {
	*AppError
	Operation string
	Key       string
}

func NewCacheError(message, operation, key string, cause error) *CacheError {
	return &CacheError{
		AppError: &AppError{
			Message:    message,
			Code:       CodeCache,
			StatusCode: 500,
			Context: map[string]any{
				"operation": operation,
				"key":       key,
			},
			Cause: cause,
		},
		Operation: operation,
		Key:       key,
	}
}

type StorageError struct {
	*AppError
	Table     string
	Operation string
}

func NewStorageError(message, table, operation string, cause error) *StorageError {
	return &StorageError{
		AppError: &AppError{
			Message:    message,
			Code:       CodeStorage,
			StatusCode: 500,
			Context: map[string]any{
				"table":     table,
				"operation": operation,
			},
			Cause: cause,
		},
		Table:     table,
		Operation: operation,
	}
}

type QuotaError struct {
	*APIError
}

func NewQuotaError(message string, statusCode int, context map[string]any) *QuotaError {
	return &QuotaError{
		APIError: &APIError{
			AppError: &AppError{
				Message:    message,
				Code:       CodeQuota,
				StatusCode: statusCode,
				Context:    context,
			},
		},
	}
}
