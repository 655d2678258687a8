// File: internal/response/status.go
package response

import (
	"net/http"

	"devconnector/internal/services"
)

// ===============================
// STATUS CODE MAPPING
// ===============================

// StatusCodeMap maps error types to HTTP status codes
var StatusCodeMap = map[string]int{
	services.ErrTypeValidation:   http.StatusBadRequest,
	services.ErrTypeNotFound:     http.StatusNotFound,
	services.ErrTypeConflict:     http.StatusBadRequest,
	services.ErrTypeUnauthorized: http.StatusUnauthorized,
	services.ErrTypeRateLimited:  http.StatusTooManyRequests,
	services.ErrTypeInternal:     http.StatusInternalServerError,
}

// GetStatusCodeFromErrorType returns the HTTP status code for an error type
func GetStatusCodeFromErrorType(errorType string) int {
	if code, ok := StatusCodeMap[errorType]; ok {
		return code
	}
	return http.StatusInternalServerError
}

// IsClientError checks if status code indicates client error (4xx)
func IsClientError(code int) bool {
	return code >= 400 && code < 500
}

// IsServerError checks if status code indicates server error (5xx)
func IsServerError(code int) bool {
	return code >= 500 && code < 600
}
