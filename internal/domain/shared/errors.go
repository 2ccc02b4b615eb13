package shared

import (
	"errors"
	"fmt"
)

// Error codes shared across the inventory ledger
const (
	CodeNotFound                  = "NOT_FOUND"
	CodeValidation                = "VALIDATION_ERROR"
	CodeConflict                  = "CONFLICT"
	CodeDuplicateKey              = "DUPLICATE_KEY"
	CodeInsufficientStock         = "INSUFFICIENT_STOCK"
	CodeInsufficientBatchQuantity = "INSUFFICIENT_BATCH_QUANTITY"
	CodeInvalidState              = "INVALID_STATE"
)

// DomainError represents a domain-level error
type DomainError struct {
	Code    string `json:"code"`
	Message string `json:"message"`
}

// Error implements the error interface
func (e *DomainError) Error() string {
	return e.Message
}

// Is reports whether target is a DomainError with the same code, so
// errors.Is(err, shared.ErrNotFound) matches any not-found error.
func (e *DomainError) Is(target error) bool {
	var t *DomainError
	if !errors.As(target, &t) {
		return false
	}
	return t.Code == e.Code
}

// NewDomainError creates a new domain error
func NewDomainError(code, message string) *DomainError {
	return &DomainError{
		Code:    code,
		Message: message,
	}
}

// Common domain errors
var (
	ErrNotFound                  = NewDomainError(CodeNotFound, "Resource not found")
	ErrValidation                = NewDomainError(CodeValidation, "Invalid input provided")
	ErrConflict                  = NewDomainError(CodeConflict, "Resource is still referenced")
	ErrDuplicateKey              = NewDomainError(CodeDuplicateKey, "Resource already exists")
	ErrInsufficientStock         = NewDomainError(CodeInsufficientStock, "Insufficient stock available")
	ErrInsufficientBatchQuantity = NewDomainError(CodeInsufficientBatchQuantity, "Insufficient batch quantity available")
	ErrInvalidState              = NewDomainError(CodeInvalidState, "Operation not allowed in current state")
)

// NewNotFoundError reports a missing (or foreign-pharmacy) resource
func NewNotFoundError(resource string) *DomainError {
	return NewDomainError(CodeNotFound, fmt.Sprintf("%s not found", resource))
}

// NewValidationError reports malformed input
func NewValidationError(format string, args ...any) *DomainError {
	return NewDomainError(CodeValidation, fmt.Sprintf(format, args...))
}

// NewConflictError reports an operation blocked by existing references
func NewConflictError(format string, args ...any) *DomainError {
	return NewDomainError(CodeConflict, fmt.Sprintf(format, args...))
}

// HasCode reports whether err is a DomainError carrying code
func HasCode(err error, code string) bool {
	var de *DomainError
	if errors.As(err, &de) {
		return de.Code == code
	}
	return false
}
