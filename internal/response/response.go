package response

import (
	"context"
	"encoding/json"
	"net/http"
	"time"

	"devconnector/internal/contextutils"
	"devconnector/internal/responseutil"
	"devconnector/internal/services"
	"devconnector/internal/validation"

	"go.uber.org/zap"
)

// ===============================
// RESPONSE CONFIGURATION
// ===============================

// Config holds configuration for the response system
type Config struct {
	PrettyJSON       bool `json:"pretty_json"`
	IncludeRequestID bool `json:"include_request_id"`

	// Error handling
	MaskInternalErrors bool `json:"mask_internal_errors"`
}

// DefaultConfig returns production response configuration
func DefaultConfig() *Config {
	return &Config{
		PrettyJSON:         false,
		IncludeRequestID:   true,
		MaskInternalErrors: true,
	}
}

// ===============================
// RESPONSE TYPES
// ===============================

// ErrorResponse is the envelope written for every failed request
type ErrorResponse struct {
	Success   bool         `json:"success"`
	Error     *ErrorDetail `json:"error"`
	RequestID string       `json:"request_id,omitempty"`
	Timestamp time.Time    `json:"timestamp"`
}

// ErrorDetail represents error information in API responses
type ErrorDetail struct {
	Type    string                  `json:"type"`
	Message string                  `json:"message"`
	Fields  []validation.FieldError `json:"fields,omitempty"`
}

// ===============================
// RESPONSE BUILDER
// ===============================

// Builder writes JSON documents and error envelopes
type Builder struct {
	config *Config
	logger *zap.Logger
	now    func() time.Time
}

// NewBuilder creates a new response builder
func NewBuilder(config *Config, logger *zap.Logger) *Builder {
	if config == nil {
		config = DefaultConfig()
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Builder{
		config: config,
		logger: logger,
		now:    time.Now,
	}
}

// ===============================
// HTTP RESPONSE WRITERS
// ===============================

// WriteJSON writes any value as JSON with the given status
func (b *Builder) WriteJSON(w http.ResponseWriter, r *http.Request, data interface{}, statusCode int) {
	w.Header().Set("Content-Type", "application/json; charset=utf-8")
	w.Header().Set("X-Content-Type-Options", "nosniff")
	if statusCode >= http.StatusBadRequest {
		w.Header().Set("Cache-Control", "no-cache, no-store, must-revalidate")
	}

	w.WriteHeader(statusCode)

	encoder := json.NewEncoder(w)
	if b.config.PrettyJSON {
		encoder.SetIndent("", "  ")
	}

	if err := encoder.Encode(data); err != nil {
		b.logger.Error("Failed to encode JSON response",
			zap.Error(err),
			zap.String("request_id", b.getRequestID(r.Context())),
		)
	}
}

// WriteSuccess writes the document with 200
func (b *Builder) WriteSuccess(w http.ResponseWriter, r *http.Request, data interface{}) {
	b.WriteJSON(w, r, data, http.StatusOK)
}

// WriteError writes the error envelope with the status mapped from the error type
func (b *Builder) WriteError(w http.ResponseWriter, r *http.Request, err error) {
	se := services.GetServiceError(err)
	detail := b.convertError(se)
	b.logError(r.Context(), err, detail)

	b.WriteJSON(w, r, &ErrorResponse{
		Success:   false,
		Error:     detail,
		RequestID: b.getRequestID(r.Context()),
		Timestamp: b.now().UTC(),
	}, se.GetStatusCode())
}

// ===============================
// UTILITY METHODS
// ===============================

func (b *Builder) convertError(se *services.ServiceError) *ErrorDetail {
	detail := &ErrorDetail{
		Type:    se.Type,
		Message: se.Message,
		Fields:  se.Fields,
	}

	if b.config.MaskInternalErrors && se.Type == services.ErrTypeInternal {
		detail.Message = "An internal error occurred"
		detail.Fields = nil
	}
	return detail
}

func (b *Builder) getRequestID(ctx context.Context) string {
	if !b.config.IncludeRequestID {
		return ""
	}
	return contextutils.GetRequestID(ctx)
}

func (b *Builder) logError(ctx context.Context, err error, detail *ErrorDetail) {
	fields := []zap.Field{
		zap.String("request_id", contextutils.GetRequestID(ctx)),
		zap.String("error_type", detail.Type),
		zap.String("error_message", detail.Message),
	}

	switch {
	case detail.Type == services.ErrTypeInternal:
		b.logger.Error("Internal error", append(fields, zap.Error(err))...)
	case IsClientError(GetStatusCodeFromErrorType(detail.Type)):
		b.logger.Debug("Request error", fields...)
	default:
		b.logger.Info("Request completed with error", fields...)
	}
}

// ===============================
// CONTEXT HELPERS
// ===============================

// GetBuilder extracts the response builder from context
func GetBuilder(ctx context.Context) *Builder {
	if builder, ok := responseutil.GetBuilder(ctx).(*Builder); ok {
		return builder
	}
	return nil
}

// Middleware stores the builder on every request so middleware can write envelopes
func Middleware(builder *Builder) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			ctx := responseutil.SetBuilder(r.Context(), builder)
			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}
