// file: internal/middleware/structured_logger.go
package middleware

import (
	"net/http"
	"strings"
	"time"

	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

// LoggingConfig holds access log configuration
type LoggingConfig struct {
	SlowRequestThreshold time.Duration `json:"slow_request_threshold"`

	// Paths logged at debug level only (health checks, metric scrapes)
	QuietPaths []string `json:"quiet_paths"`
}

// DefaultLoggingConfig returns the access log defaults
func DefaultLoggingConfig() *LoggingConfig {
	return &LoggingConfig{
		SlowRequestThreshold: 2 * time.Second,
		QuietPaths:           []string{"/health", "/metrics"},
	}
}

// StructuredLogging writes one access log entry per request
func StructuredLogging(config *LoggingConfig) func(http.Handler) http.Handler {
	if config == nil {
		config = DefaultLoggingConfig()
	}

	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			start := GetRequestStart(r.Context())
			rw := newResponseWriter(w)

			next.ServeHTTP(rw, r)

			duration := time.Since(start)
			logger := GetRequestLogger(r.Context())

			logger.Check(accessLogLevel(r, rw.status, config), "Request completed").Write(
				zap.Int("status", rw.status),
				zap.Duration("duration", duration),
				zap.Int64("response_size", rw.bytesWritten),
			)

			if config.SlowRequestThreshold > 0 && duration > config.SlowRequestThreshold {
				logger.Warn("Slow request detected",
					zap.Duration("duration", duration),
					zap.Duration("threshold", config.SlowRequestThreshold),
				)
			}
		})
	}
}

func accessLogLevel(r *http.Request, status int, config *LoggingConfig) zapcore.Level {
	switch {
	case status >= http.StatusInternalServerError:
		return zapcore.ErrorLevel
	case isQuietPath(r.URL.Path, config.QuietPaths):
		return zapcore.DebugLevel
	default:
		return zapcore.InfoLevel
	}
}

func isQuietPath(path string, quiet []string) bool {
	for _, p := range quiet {
		if path == p || strings.HasPrefix(path, p+"/") {
			return true
		}
	}
	return false
}
