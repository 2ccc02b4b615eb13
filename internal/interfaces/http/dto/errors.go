package dto

import (
	"net/http"

	"github.com/pharmaops/backend/internal/domain/shared"
)

// Transport-level error codes. Domain codes come from the shared package.
const (
	ErrCodeInternal        = "INTERNAL_ERROR"
	ErrCodeBadRequest      = "BAD_REQUEST"
	ErrCodeUnauthorized    = "UNAUTHORIZED"
	ErrCodeTokenExpired    = "TOKEN_EXPIRED"
	ErrCodeTokenInvalid    = "INVALID_TOKEN"
	ErrCodeRequestTooLarge = "REQUEST_TOO_LARGE"
	ErrCodeRouteNotFound   = "ROUTE_NOT_FOUND"
)

// ErrorCodeHTTPStatus maps error codes to HTTP status codes. Every domain
// rejection except a missing resource is a client error.
var ErrorCodeHTTPStatus = map[string]int{
	shared.CodeNotFound:                  http.StatusNotFound,
	shared.CodeValidation:                http.StatusBadRequest,
	shared.CodeConflict:                  http.StatusBadRequest,
	shared.CodeDuplicateKey:              http.StatusBadRequest,
	shared.CodeInsufficientStock:         http.StatusBadRequest,
	shared.CodeInsufficientBatchQuantity: http.StatusBadRequest,
	shared.CodeInvalidState:              http.StatusBadRequest,

	ErrCodeInternal:        http.StatusInternalServerError,
	ErrCodeBadRequest:      http.StatusBadRequest,
	ErrCodeUnauthorized:    http.StatusUnauthorized,
	ErrCodeTokenExpired:    http.StatusUnauthorized,
	ErrCodeTokenInvalid:    http.StatusUnauthorized,
	ErrCodeRequestTooLarge: http.StatusRequestEntityTooLarge,
	ErrCodeRouteNotFound:   http.StatusNotFound,
}

// GetHTTPStatus returns the HTTP status code for an error code
// Returns 500 Internal Server Error if the error code is not found
func GetHTTPStatus(code string) int {
	if status, ok := ErrorCodeHTTPStatus[code]; ok {
		return status
	}
	return http.StatusInternalServerError
}
