package response

import (
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"devconnector/internal/contextutils"
	"devconnector/internal/responseutil"
	"devconnector/internal/services"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

func decodeEnvelope(t *testing.T, rec *httptest.ResponseRecorder) ErrorResponse {
	t.Helper()
	var env ErrorResponse
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &env))
	return env
}

func TestWriteSuccessWritesRawDocument(t *testing.T) {
	b := NewBuilder(nil, zap.NewNop())
	rec := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodGet, "/api/posts", nil)

	b.WriteSuccess(rec, req, map[string]string{"text": "hello"})

	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "application/json; charset=utf-8", rec.Header().Get("Content-Type"))
	assert.JSONEq(t, `{"text":"hello"}`, rec.Body.String())
}

func TestWriteErrorEnvelope(t *testing.T) {
	tests := []struct {
		name    string
		err     error
		status  int
		errType string
		message string
		fields  int
	}{
		{"validation", services.NewFieldError("handle", "Profile handle is required"), http.StatusBadRequest, services.ErrTypeValidation, "Profile handle is required", 1},
		{"not found", services.NewNotFoundError("No post found").WithField("nopost", "No post found"), http.StatusNotFound, services.ErrTypeNotFound, "No post found", 1},
		{"conflict", services.NewConflictError("You have already liked this post"), http.StatusBadRequest, services.ErrTypeConflict, "You have already liked this post", 0},
		{"unauthorized", services.NewUnauthorizedError("Unauthorized"), http.StatusUnauthorized, services.ErrTypeUnauthorized, "Unauthorized", 0},
		{"rate limited", services.NewRateLimitError("Too many failed login attempts"), http.StatusTooManyRequests, services.ErrTypeRateLimited, "Too many failed login attempts", 0},
		{"plain error is masked", errors.New("pq: connection refused"), http.StatusInternalServerError, services.ErrTypeInternal, "An internal error occurred", 0},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			b := NewBuilder(nil, zap.NewNop())
			rec := httptest.NewRecorder()
			req := httptest.NewRequest(http.MethodGet, "/", nil)
			req = req.WithContext(contextutils.WithRequestID(req.Context(), "req-1"))

			b.WriteError(rec, req, tt.err)

			assert.Equal(t, tt.status, rec.Code)
			env := decodeEnvelope(t, rec)
			assert.False(t, env.Success)
			assert.Equal(t, tt.errType, env.Error.Type)
			assert.Equal(t, tt.message, env.Error.Message)
			assert.Len(t, env.Error.Fields, tt.fields)
			assert.Equal(t, "req-1", env.RequestID)
			assert.False(t, env.Timestamp.IsZero())
			assert.Equal(t, "no-cache, no-store, must-revalidate", rec.Header().Get("Cache-Control"))
		})
	}
}

func TestWriteErrorUnmaskedInDevelopment(t *testing.T) {
	b := NewBuilder(&Config{IncludeRequestID: false}, zap.NewNop())
	rec := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodGet, "/", nil)
	req = req.WithContext(contextutils.WithRequestID(req.Context(), "req-1"))

	b.WriteError(rec, req, services.NewInternalError("Failed to load posts", errors.New("boom")))

	env := decodeEnvelope(t, rec)
	assert.Equal(t, "Failed to load posts", env.Error.Message)
	assert.Empty(t, env.RequestID)
}

func TestMiddlewareStoresBuilder(t *testing.T) {
	b := NewBuilder(nil, zap.NewNop())

	var got *Builder
	var writer responseutil.ResponseBuilder
	h := Middleware(b)(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		got = GetBuilder(r.Context())
		writer = responseutil.GetErrorWriter(r.Context())
	}))
	h.ServeHTTP(httptest.NewRecorder(), httptest.NewRequest(http.MethodGet, "/", nil))

	assert.Same(t, b, got)
	assert.NotNil(t, writer)
	assert.Nil(t, GetBuilder(httptest.NewRequest(http.MethodGet, "/", nil).Context()))
}

func TestStatusHelpers(t *testing.T) {
	assert.Equal(t, http.StatusBadRequest, GetStatusCodeFromErrorType(services.ErrTypeConflict))
	assert.Equal(t, http.StatusInternalServerError, GetStatusCodeFromErrorType("SOMETHING_ELSE"))
	assert.True(t, IsClientError(http.StatusNotFound))
	assert.False(t, IsClientError(http.StatusInternalServerError))
	assert.True(t, IsServerError(http.StatusServiceUnavailable))
}
