package utils

import (
	"encoding/json"
	"errors"
	"io"
	"net/http"

	"devconnector/internal/services"
)

// DecodeJSON reads the request body into dst. An empty body leaves dst at its zero
// value so field validation reports what is missing.
func DecodeJSON(r *http.Request, dst interface{}) error {
	if r.Body == nil {
		return nil
	}

	err := json.NewDecoder(r.Body).Decode(dst)
	switch {
	case err == nil, errors.Is(err, io.EOF):
		return nil
	default:
		var maxErr *http.MaxBytesError
		if errors.As(err, &maxErr) {
			return services.NewValidationError("Request body too large", err)
		}
		return services.NewValidationError("Invalid request body", err)
	}
}
