package dto

import "net/http"

// Transport-level error codes. Domain error codes pass through unchanged;
// these cover failures that never reach the domain.
const (
	// ErrCodeInternal is used for internal server errors
	ErrCodeInternal = "ERR_INTERNAL"
	// ErrCodeBadRequest is used for malformed requests
	ErrCodeBadRequest = "ERR_BAD_REQUEST"
	// ErrCodeInvalidJSON is used when JSON parsing fails
	ErrCodeInvalidJSON = "ERR_INVALID_JSON"
	// ErrCodeNotFound is used when a resource is not found
	ErrCodeNotFound = "NOT_FOUND"
	// ErrCodeMissingCompany is used when the company scope cannot be resolved
	ErrCodeMissingCompany = "ERR_MISSING_COMPANY"
)

// ErrorCodeHTTPStatus maps error codes to HTTP status codes. Malformed or
// invalid input is 400, missing resources are 404, conflicts with existing
// state are 409, and business rule violations on otherwise well-formed
// requests are 422.
var ErrorCodeHTTPStatus = map[string]int{
	ErrCodeInternal:       http.StatusInternalServerError,
	ErrCodeBadRequest:     http.StatusBadRequest,
	ErrCodeInvalidJSON:    http.StatusBadRequest,
	ErrCodeMissingCompany: http.StatusBadRequest,

	// Missing resources
	"NOT_FOUND":              http.StatusNotFound,
	"BANK_ACCOUNT_NOT_FOUND": http.StatusNotFound,
	"TRANSACTION_NOT_FOUND":  http.StatusNotFound,
	"PAYMENT_NOT_FOUND":      http.StatusNotFound,
	"INVOICE_NOT_FOUND":      http.StatusNotFound,
	"ALLOCATION_NOT_FOUND":   http.StatusNotFound,

	// State conflicts
	"ALREADY_EXISTS":       http.StatusConflict,
	"ALREADY_RECONCILED":   http.StatusConflict,
	"ALREADY_PAIRED":       http.StatusConflict,
	"CONCURRENCY_CONFLICT": http.StatusConflict,

	// Business rule violations
	"INVALID_STATE":       http.StatusUnprocessableEntity,
	"NOT_RECONCILED":      http.StatusUnprocessableEntity,
	"NOT_PAIRED":          http.StatusUnprocessableEntity,
	"INVALID_PAIRING":     http.StatusUnprocessableEntity,
	"EXCEEDS_UNALLOCATED": http.StatusUnprocessableEntity,

	// Validation failures
	"INVALID_INPUT":            http.StatusBadRequest,
	"INVALID_BANK_ACCOUNT":     http.StatusBadRequest,
	"INVALID_DATE":             http.StatusBadRequest,
	"INVALID_DATE_RANGE":       http.StatusBadRequest,
	"INVALID_TRANSACTION_TYPE": http.StatusBadRequest,
	"INVALID_AMOUNT":           http.StatusBadRequest,
	"INVALID_CURRENCY":         http.StatusBadRequest,
	"INVALID_SOURCE":           http.StatusBadRequest,
	"INVALID_SOURCE_KIND":      http.StatusBadRequest,
	"INVALID_SOURCE_ID":        http.StatusBadRequest,
	"INVALID_JOURNAL_REF":      http.StatusBadRequest,
	"INVALID_ACCOUNT_NAME":     http.StatusBadRequest,
	"INVALID_ACCOUNT_NUMBER":   http.StatusBadRequest,
	"INVALID_LEDGER_ACCOUNT":   http.StatusBadRequest,
	"INVALID_PAYMENT":          http.StatusBadRequest,
	"INVALID_ALLOCATION_TYPE":  http.StatusBadRequest,
	"INVALID_EXCHANGE_RATE":    http.StatusBadRequest,
	"INVALID_TDS":              http.StatusBadRequest,
	"INVALID_AUDIT_ENTRY":      http.StatusBadRequest,
	"INVALID_AUDIT_ACTION":     http.StatusBadRequest,
	"EMPTY_BATCH":              http.StatusBadRequest,
}

// GetHTTPStatus returns the HTTP status code for an error code.
// Unknown codes map to 500 so new domain errors fail loudly.
func GetHTTPStatus(code string) int {
	if status, ok := ErrorCodeHTTPStatus[code]; ok {
		return status
	}
	return http.StatusInternalServerError
}
