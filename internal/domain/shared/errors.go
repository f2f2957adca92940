package shared

import "errors"

// DomainError represents a domain-level error
type DomainError struct {
	Code    string `json:"code"`
	Message string `json:"message"`
}

// Error implements the error interface
func (e *DomainError) Error() string {
	return e.Message
}

// Is reports whether target is a DomainError carrying the same code
func (e *DomainError) Is(target error) bool {
	var other *DomainError
	if !errors.As(target, &other) {
		return false
	}
	return other.Code == e.Code
}

// NewDomainError creates a new domain error
func NewDomainError(code, message string) *DomainError {
	return &DomainError{
		Code:    code,
		Message: message,
	}
}

// CodeOf returns the domain error code carried by err, or "" if err is not a DomainError
func CodeOf(err error) string {
	var de *DomainError
	if errors.As(err, &de) {
		return de.Code
	}
	return ""
}

// Common domain errors
var (
	ErrNotFound          = NewDomainError("NOT_FOUND", "Resource not found")
	ErrInvalidInput      = NewDomainError("INVALID_INPUT", "Invalid input provided")
	ErrInvalidState      = NewDomainError("INVALID_STATE", "Operation not allowed in current state")
	ErrInsufficientStock = NewDomainError("INSUFFICIENT_STOCK", "Insufficient stock available")

	ErrLineNotFound         = NewDomainError("LINE_NOT_FOUND", "Line not found in document")
	ErrDocumentNotFound     = NewDomainError("DOCUMENT_NOT_FOUND", "Document not found")
	ErrProductOutOfStock    = NewDomainError("PRODUCT_OUT_OF_STOCK", "Product has no available stock")
	ErrBatchNotFound        = NewDomainError("BATCH_NOT_FOUND", "Batch not found for product")
	ErrUnitNotFound         = NewDomainError("UNIT_NOT_FOUND", "Unit is not available for this product")
	ErrNoPendingBatchChoice = NewDomainError("NO_PENDING_BATCH_CHOICE", "No batch choice is pending for this line")
	ErrLookupSuperseded     = NewDomainError("LOOKUP_SUPERSEDED", "A newer selection was made for this line")
	ErrNoProduct            = NewDomainError("NO_PRODUCT", "Line has no product")
)
