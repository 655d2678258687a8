package utils

import (
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"devconnector/internal/services"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDecodeJSON(t *testing.T) {
	var req services.PostRequest

	r := httptest.NewRequest(http.MethodPost, "/", strings.NewReader(`{"text":"hi","name":"Alice"}`))
	require.NoError(t, DecodeJSON(r, &req))
	assert.Equal(t, "hi", req.Text)
	assert.Equal(t, "Alice", req.Name)

	var empty services.PostRequest
	require.NoError(t, DecodeJSON(httptest.NewRequest(http.MethodPost, "/", nil), &empty))
	assert.Empty(t, empty.Text)

	err := DecodeJSON(httptest.NewRequest(http.MethodPost, "/", strings.NewReader(`{"text":`)), &req)
	require.Error(t, err)
	assert.True(t, services.IsValidationError(err))

	rec := httptest.NewRecorder()
	big := httptest.NewRequest(http.MethodPost, "/", strings.NewReader(`{"text":"`+strings.Repeat("x", 64)+`"}`))
	big.Body = http.MaxBytesReader(rec, big.Body, 16)
	err = DecodeJSON(big, &req)
	require.Error(t, err)
	assert.Equal(t, "Request body too large", services.GetServiceError(err).Message)
}
