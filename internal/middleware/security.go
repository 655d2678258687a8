// file: internal/middleware/security.go
package middleware

import (
	"fmt"
	"net/http"
	"strings"

	"devconnector/internal/config"

	"go.uber.org/zap"
)

// ===============================
// SECURITY HEADERS
// ===============================

// SecureHeaders sets the standard hardening headers on every response
func SecureHeaders(cfg config.SecurityConfig) func(http.Handler) http.Handler {
	frameOptions := cfg.FrameOptions
	if frameOptions == "" {
		frameOptions = "DENY"
	}

	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			if cfg.EnableSecurityHeaders {
				h := w.Header()
				h.Set("X-Content-Type-Options", "nosniff")
				h.Set("X-Frame-Options", frameOptions)
				h.Set("Referrer-Policy", "strict-origin-when-cross-origin")
				if !strings.HasPrefix(r.URL.Path, "/swagger") {
					h.Set("Content-Security-Policy", "default-src 'none'; frame-ancestors 'none'")
				}
				if r.TLS != nil {
					h.Set("Strict-Transport-Security", "max-age=31536000; includeSubDomains")
				}
			}

			next.ServeHTTP(w, r)
		})
	}
}

// MaxBodySize caps request bodies; oversized JSON fails to decode
func MaxBodySize(limit int64) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			if limit > 0 && r.Body != nil {
				r.Body = http.MaxBytesReader(w, r.Body, limit)
			}
			next.ServeHTTP(w, r)
		})
	}
}

// ===============================
// CORS
// ===============================

// CORS applies the configured cross-origin policy and answers preflights
func CORS(cfg config.SecurityConfig) func(http.Handler) http.Handler {
	allowedMethods := strings.Join(cfg.CORSAllowedMethods, ", ")
	allowedHeaders := strings.Join(cfg.CORSAllowedHeaders, ", ")
	maxAge := fmt.Sprintf("%.0f", cfg.CORSMaxAge.Seconds())

	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			origin := r.Header.Get("Origin")
			if origin == "" {
				next.ServeHTTP(w, r)
				return
			}

			if !isOriginAllowed(origin, cfg.CORSAllowedOrigins) {
				GetRequestLogger(r.Context()).Warn("CORS violation: origin not allowed",
					zap.String("origin", origin),
				)
				// Don't expose that the origin is not allowed, just omit the headers
				next.ServeHTTP(w, r)
				return
			}

			h := w.Header()
			h.Set("Access-Control-Allow-Origin", origin)
			h.Add("Vary", "Origin")
			h.Set("Access-Control-Expose-Headers", HeaderXRequestID)
			if cfg.CORSAllowCredentials {
				h.Set("Access-Control-Allow-Credentials", "true")
			}

			// Preflight
			if r.Method == http.MethodOptions && r.Header.Get("Access-Control-Request-Method") != "" {
				if !isMethodAllowed(r.Header.Get("Access-Control-Request-Method"), cfg.CORSAllowedMethods) {
					w.WriteHeader(http.StatusMethodNotAllowed)
					return
				}
				h.Set("Access-Control-Allow-Methods", allowedMethods)
				h.Set("Access-Control-Allow-Headers", allowedHeaders)
				h.Set("Access-Control-Max-Age", maxAge)
				w.WriteHeader(http.StatusNoContent)
				return
			}

			next.ServeHTTP(w, r)
		})
	}
}

// isOriginAllowed checks exact origins, "*" and "*.domain" patterns
func isOriginAllowed(origin string, allowed []string) bool {
	for _, pattern := range allowed {
		if pattern == "*" || pattern == origin {
			return true
		}
		if domain, ok := strings.CutPrefix(pattern, "*."); ok && strings.HasSuffix(origin, "."+domain) {
			return true
		}
	}
	return false
}

// isMethodAllowed checks if the HTTP method is allowed
func isMethodAllowed(method string, allowedMethods []string) bool {
	for _, allowed := range allowedMethods {
		if strings.EqualFold(method, allowed) {
			return true
		}
	}
	return false
}
