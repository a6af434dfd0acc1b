package dto

import "net/http"

// Transport-level error codes used by middleware and binding failures.
// Domain errors keep their own codes and are mapped to statuses below.
const (
	ErrCodeInternal     = "INTERNAL_ERROR"
	ErrCodeBadRequest   = "BAD_REQUEST"
	ErrCodeUnauthorized = "UNAUTHORIZED"
	ErrCodeForbidden    = "FORBIDDEN"
	ErrCodeNotFound     = "NOT_FOUND"
)

// domainErrorHTTPStatus maps domain error codes to HTTP status codes
var domainErrorHTTPStatus = map[string]int{
	// Missing resources
	"NOT_FOUND":              http.StatusNotFound,
	"PRODUCT_NOT_FOUND":      http.StatusNotFound,
	"PRODUCT_UNIT_NOT_FOUND": http.StatusNotFound,
	"ITEM_NOT_FOUND":         http.StatusNotFound,
	"LOCATION_NOT_FOUND":     http.StatusNotFound,

	// Conflicts
	"ALREADY_EXISTS":       http.StatusConflict,
	"DUPLICATE_CODE":       http.StatusConflict,
	"DUPLICATE_UNIT_CODE":  http.StatusConflict,
	"CONCURRENCY_CONFLICT": http.StatusConflict,
	"INVALID_TRANSITION":   http.StatusConflict,

	// Access
	"UNAUTHORIZED": http.StatusUnauthorized,
	"FORBIDDEN":    http.StatusForbidden,

	// Malformed input
	"BAD_REQUEST":             http.StatusBadRequest,
	"INVALID_INPUT":           http.StatusBadRequest,
	"INVALID_REQUEST_NUMBER":  http.StatusBadRequest,
	"INVALID_REQUESTER":       http.StatusBadRequest,
	"INVALID_APPROVER":        http.StatusBadRequest,
	"INVALID_REASON":          http.StatusBadRequest,
	"INVALID_CODE":            http.StatusBadRequest,
	"INVALID_NAME":            http.StatusBadRequest,
	"INVALID_BASE_UNIT":       http.StatusBadRequest,
	"INVALID_UNIT_CODE":       http.StatusBadRequest,
	"INVALID_UNIT_NAME":       http.StatusBadRequest,
	"INVALID_CONVERSION_RATE": http.StatusBadRequest,
	"INVALID_STOCK_KEY":       http.StatusBadRequest,
}

// GetHTTPStatus returns the HTTP status for a domain error code.
// Codes without an explicit mapping are business-rule violations and map to
// 422 Unprocessable Entity (SAME_LOCATION, INSUFFICIENT_STOCK,
// QUANTITY_DISABLED, UNIT_UNRESOLVED and friends).
func GetHTTPStatus(code string) int {
	if status, ok := domainErrorHTTPStatus[code]; ok {
		return status
	}
	return http.StatusUnprocessableEntity
}
