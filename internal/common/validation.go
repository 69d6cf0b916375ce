package common

import (
	"bytes"
	"fmt"
	"path/filepath"
	"strings"

	"github.com/google/uuid"

	"github.com/joseph-ayodele/quote-compare/constants"
)

// ValidationError represents validation failures
type ValidationError struct {
	Field   string
	Value   any
	Message string
}

func (e ValidationError) Error() string {
	return fmt.Sprintf("%s: %s", e.Field, e.Message)
}

// Validator provides validation utilities
type Validator struct {
	errors []ValidationError
}

// NewValidator creates a new validator instance
func NewValidator() *Validator {
	return &Validator{
		errors: make([]ValidationError, 0),
	}
}

// Field validates a field and collects errors
func (v *Validator) Field(fieldName string, value any, rules ...ValidationRule) *Validator {
	for _, rule := range rules {
		if err := rule(fieldName, value); err != nil {
			v.errors = append(v.errors, *err)
		}
	}
	return v
}

// HasErrors returns true if there are validation errors
func (v *Validator) HasErrors() bool {
	return len(v.errors) > 0
}

// Errors returns all validation errors
func (v *Validator) Errors() []ValidationError {
	return v.errors
}

// ErrorMessage returns a combined error message as string
func (v *Validator) ErrorMessage() string {
	if !v.HasErrors() {
		return ""
	}
	messages := make([]string, 0, len(v.errors))
	for _, err := range v.errors {
		messages = append(messages, err.Error())
	}
	return strings.Join(messages, "; ")
}

// ValidationRule represents a single validation rule
type ValidationRule func(fieldName string, value any) *ValidationError

// Required - Common validation rules
func Required(fieldName string, value any) *ValidationError {
	if value == nil {
		return &ValidationError{Field: fieldName, Value: value, Message: "is required"}
	}
	switch v := value.(type) {
	case string:
		if strings.TrimSpace(v) == "" {
			return &ValidationError{Field: fieldName, Value: value, Message: "is required"}
		}
	case []byte:
		if len(v) == 0 {
			return &ValidationError{Field: fieldName, Value: "<empty>", Message: "is required"}
		}
	}
	return nil
}

func UUID(fieldName string, value any) *ValidationError {
	str, ok := value.(string)
	if !ok {
		return &ValidationError{Field: fieldName, Value: value, Message: "must be a string"}
	}
	if _, err := uuid.Parse(str); err != nil {
		return &ValidationError{Field: fieldName, Value: value, Message: "must be a valid UUID"}
	}
	return nil
}

// MaxBytes rejects sizes (int64) above limit.
func MaxBytes(limit int64) ValidationRule {
	return func(fieldName string, value any) *ValidationError {
		n, ok := value.(int64)
		if !ok {
			return &ValidationError{Field: fieldName, Value: value, Message: "must be a size"}
		}
		if n > limit {
			return &ValidationError{
				Field:   fieldName,
				Value:   n,
				Message: fmt.Sprintf("file size %d exceeds the %d byte limit", n, limit),
			}
		}
		return nil
	}
}

// PDFFileName requires a .pdf extension.
func PDFFileName(fieldName string, value any) *ValidationError {
	name, _ := value.(string)
	ext := constants.NormalizeExt(filepath.Ext(name))
	if _, ok := constants.AllowedExtensions[ext]; !ok {
		return &ValidationError{Field: fieldName, Value: value, Message: "only PDF files are allowed"}
	}
	return nil
}

// PDFContentType accepts the declared content types PDFs arrive with.
func PDFContentType(fieldName string, value any) *ValidationError {
	ct, _ := value.(string)
	if _, ok := constants.AcceptedContentTypes[constants.NormalizeContentType(ct)]; !ok {
		return &ValidationError{Field: fieldName, Value: value, Message: "content type must be application/pdf"}
	}
	return nil
}

// PDFMagic checks the leading bytes ([]byte) for the PDF header.
func PDFMagic(fieldName string, value any) *ValidationError {
	b, _ := value.([]byte)
	head := b
	if len(head) > 1024 {
		head = head[:1024]
	}
	if !bytes.Contains(head, []byte(constants.PDFMagic)) {
		return &ValidationError{Field: fieldName, Value: "<bytes>", Message: "file is not a PDF document"}
	}
	return nil
}

// ValidateAndReturnError converts collected failures into an AppError with the given code and sentinel.
func ValidateAndReturnError(validator *Validator, code string, sentinel error) error {
	if validator.HasErrors() {
		return NewAppError(code, validator.ErrorMessage(), sentinel)
	}
	return nil
}
