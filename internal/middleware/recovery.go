// file: internal/middleware/recovery.go
package middleware

import (
	"fmt"
	"net/http"
	"runtime/debug"
	"time"

	"devconnector/internal/contextutils"
	"devconnector/internal/responseutil"

	"go.uber.org/zap"
)

// RecoveryConfig controls panic handling
type RecoveryConfig struct {
	EnableStackTrace bool `json:"enable_stack_trace"`
}

// DefaultRecoveryConfig returns the recovery defaults
func DefaultRecoveryConfig() *RecoveryConfig {
	return &RecoveryConfig{EnableStackTrace: true}
}

// Recovery turns a panic into a 500 error envelope
func Recovery(config *RecoveryConfig) func(http.Handler) http.Handler {
	if config == nil {
		config = DefaultRecoveryConfig()
	}

	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			defer func() {
				if rec := recover(); rec != nil {
					if rec == http.ErrAbortHandler {
						panic(rec)
					}

					fields := []zap.Field{
						zap.Any("panic", rec),
						zap.String("method", r.Method),
						zap.String("path", r.URL.Path),
					}
					if config.EnableStackTrace {
						fields = append(fields, zap.ByteString("stack", debug.Stack()))
					}
					GetRequestLogger(r.Context()).Error("Panic recovered", fields...)

					sendPanicResponse(w, r, fmt.Errorf("panic: %v", rec))
				}
			}()

			next.ServeHTTP(w, r)
		})
	}
}

func sendPanicResponse(w http.ResponseWriter, r *http.Request, err error) {
	if rb := responseutil.GetErrorWriter(r.Context()); rb != nil {
		rb.WriteError(w, r, err)
		return
	}
	sendFallbackPanicResponse(w, r)
}

// sendFallbackPanicResponse is used when no response builder is on the context
func sendFallbackPanicResponse(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "application/json; charset=utf-8")
	w.Header().Set("X-Content-Type-Options", "nosniff")
	w.WriteHeader(http.StatusInternalServerError)

	fmt.Fprintf(w, `{"success":false,"error":{"type":"INTERNAL_ERROR","message":"An internal error occurred"},"request_id":%q,"timestamp":%q}`,
		contextutils.GetRequestID(r.Context()), time.Now().UTC().Format(time.RFC3339Nano))
}
