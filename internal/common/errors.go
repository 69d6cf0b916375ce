package common

import (
	"errors"
	"fmt"
)

// AppError represents application-specific errors
type AppError struct {
	Code    string
	Message string
	Cause   error
}

func (e *AppError) Error() string {
	if e.Cause != nil {
		return fmt.Sprintf("%s: %s: %v", e.Code, e.Message, e.Cause)
	}
	return fmt.Sprintf("%s: %s", e.Code, e.Message)
}

func (e *AppError) Unwrap() error {
	return e.Cause
}

// Common application errors
var (
	ErrNotFound     = errors.New("resource not found")
	ErrInvalidInput = errors.New("invalid input")
	ErrUnauthorized = errors.New("unauthorized")
	ErrInternal     = errors.New("internal error")
	ErrDatabase     = errors.New("database error")
	ErrValidation   = errors.New("validation failed")
	ErrConflict     = errors.New("conflict")
)

// Pipeline errors
var (
	// ErrExtractionFailed: hosted backend and local fallback produced no usable text.
	ErrExtractionFailed = errors.New("extraction failed")
	// ErrFieldExtractionFailed: the extracted text was empty or non-textual.
	ErrFieldExtractionFailed = errors.New("field extraction failed")
	// ErrSchemaValidation: a structured-extraction response did not match the quote schema.
	ErrSchemaValidation = errors.New("schema validation failed")
	// ErrUploadRejected: wrong content type, oversize file or empty upload.
	ErrUploadRejected = errors.New("upload rejected")
)

// Error codes carried by AppError.
const (
	CodeConfig          = "CONFIG_ERROR"
	CodeUploadRejected  = "UPLOAD_REJECTED"
	CodeFileTooLarge    = "FILE_TOO_LARGE"
	CodeNotFound        = "NOT_FOUND"
	CodeInvalidInput    = "INVALID_INPUT"
	CodeUnauthorized    = "UNAUTHORIZED"
	CodeNotCompleted    = "COMPARISON_NOT_COMPLETED"
	CodeExtraction      = "EXTRACTION_FAILED"
	CodeFieldExtraction = "FIELD_EXTRACTION_FAILED"
	CodeInternal        = "INTERNAL_ERROR"
)

// Error constructors
func NewAppError(code, message string, cause error) *AppError {
	return &AppError{
		Code:    code,
		Message: message,
		Cause:   cause,
	}
}

func WrapError(err error, message string) error {
	if err == nil {
		return nil
	}
	return fmt.Errorf("%s: %w", message, err)
}

// NotFoundf builds a NOT_FOUND AppError wrapping ErrNotFound.
func NotFoundf(format string, args ...any) error {
	return NewAppError(CodeNotFound, fmt.Sprintf(format, args...), ErrNotFound)
}

// InvalidInputf builds an INVALID_INPUT AppError wrapping ErrInvalidInput.
func InvalidInputf(format string, args ...any) error {
	return NewAppError(CodeInvalidInput, fmt.Sprintf(format, args...), ErrInvalidInput)
}

// UploadRejectedf builds an UPLOAD_REJECTED AppError wrapping ErrUploadRejected.
func UploadRejectedf(format string, args ...any) error {
	return NewAppError(CodeUploadRejected, fmt.Sprintf(format, args...), ErrUploadRejected)
}

// CodeOf returns the AppError code in err's chain, or "" when there is none.
func CodeOf(err error) string {
	var ae *AppError
	if errors.As(err, &ae) {
		return ae.Code
	}
	return ""
}
