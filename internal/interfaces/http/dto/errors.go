package dto

import (
	"net/http"
	"strings"
)

// Error code constants
// Format: ERR_<CATEGORY>_<DESCRIPTION>
const (
	ErrCodeInternal   = "ERR_INTERNAL"
	ErrCodeValidation = "ERR_VALIDATION"
	ErrCodeBadRequest = "ERR_BAD_REQUEST"

	ErrCodeInvalidInput = "ERR_INVALID_INPUT"
	ErrCodeNotFound     = "ERR_NOT_FOUND"

	// ErrCodeConflict is used when a newer request superseded this one
	ErrCodeConflict     = "ERR_CONFLICT"
	ErrCodeInvalidState = "ERR_INVALID_STATE"

	ErrCodeInsufficientStock = "ERR_INSUFFICIENT_STOCK"
	ErrCodeRowIncomplete     = "ERR_ROW_INCOMPLETE"
)

// ErrorCodeHTTPStatus maps error codes to HTTP status codes
var ErrorCodeHTTPStatus = map[string]int{
	ErrCodeInternal:          http.StatusInternalServerError,
	ErrCodeValidation:        http.StatusBadRequest,
	ErrCodeBadRequest:        http.StatusBadRequest,
	ErrCodeInvalidInput:      http.StatusBadRequest,
	ErrCodeNotFound:          http.StatusNotFound,
	ErrCodeConflict:          http.StatusConflict,
	ErrCodeInvalidState:      http.StatusUnprocessableEntity,
	ErrCodeInsufficientStock: http.StatusUnprocessableEntity,
	ErrCodeRowIncomplete:     http.StatusUnprocessableEntity,
}

// GetHTTPStatus returns the HTTP status for an error code, 500 when unknown
func GetHTTPStatus(code string) int {
	if status, ok := ErrorCodeHTTPStatus[code]; ok {
		return status
	}
	return http.StatusInternalServerError
}

// DomainErrorCodeMapping maps domain error codes that do not follow the
// NOT_FOUND or INVALID_ naming to API codes
var DomainErrorCodeMapping = map[string]string{
	"INVALID_STATE":           ErrCodeInvalidState,
	"INSUFFICIENT_STOCK":      ErrCodeInsufficientStock,
	"PRODUCT_OUT_OF_STOCK":    ErrCodeInsufficientStock,
	"LOOKUP_SUPERSEDED":       ErrCodeConflict,
	"NO_PENDING_BATCH_CHOICE": ErrCodeInvalidState,
	"NO_PRODUCT":              ErrCodeInvalidState,
	"ROW_VALIDATION_FAILED":   ErrCodeRowIncomplete,
	"DUPLICATE_MULTI_UNIT":    ErrCodeInvalidInput,
}

// NormalizeErrorCode converts a domain error code to an API code.
// Codes ending in NOT_FOUND map to ERR_NOT_FOUND and codes starting with
// INVALID_ map to ERR_INVALID_INPUT. Anything else is an internal error.
func NormalizeErrorCode(code string) string {
	if apiCode, ok := DomainErrorCodeMapping[code]; ok {
		return apiCode
	}
	switch {
	case strings.HasSuffix(code, "NOT_FOUND"):
		return ErrCodeNotFound
	case strings.HasPrefix(code, "INVALID_"):
		return ErrCodeInvalidInput
	case strings.HasPrefix(code, "ERR_"):
		return code
	}
	return ErrCodeInternal
}
