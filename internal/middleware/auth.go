// file: internal/middleware/auth.go
package middleware

import (
	"context"
	"encoding/json"
	"net/http"
	"time"

	"devconnector/internal/contextutils"
	"devconnector/internal/responseutil"
	"devconnector/internal/services"

	"go.uber.org/zap"
)

// Authenticator verifies an Authorization header value
type Authenticator interface {
	Authenticate(ctx context.Context, header string) (*services.Claims, error)
}

// AuthMiddleware guards routes that need a logged-in user
type AuthMiddleware struct {
	auth   Authenticator
	logger *zap.Logger
}

// NewAuthMiddleware creates the bearer token middleware
func NewAuthMiddleware(auth Authenticator, logger *zap.Logger) *AuthMiddleware {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &AuthMiddleware{auth: auth, logger: logger}
}

// RequireAuth rejects requests without a valid bearer token for an existing user
func (am *AuthMiddleware) RequireAuth(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		ctx := r.Context()

		claims, err := am.auth.Authenticate(ctx, r.Header.Get("Authorization"))
		if err != nil {
			// Storage failures surface as 500, everything else is a 401
			if !services.IsErrorType(err, services.ErrTypeInternal) {
				GetRequestLogger(ctx).Debug("Authentication failed",
					zap.String("reason", err.Error()),
				)
				err = services.NewUnauthorizedError("Unauthorized")
			} else {
				WithRequestContext(am.logger, ctx).Error("Authentication lookup failed", zap.Error(err))
			}
			am.writeAuthError(w, r, err)
			return
		}

		ctx = context.WithValue(ctx, AuthContextKey, claims)
		ctx = contextutils.WithUserID(ctx, claims.ID)

		next.ServeHTTP(w, r.WithContext(ctx))
	})
}

func (am *AuthMiddleware) writeAuthError(w http.ResponseWriter, r *http.Request, err error) {
	if rb := responseutil.GetErrorWriter(r.Context()); rb != nil {
		rb.WriteError(w, r, err)
		return
	}

	se := services.GetServiceError(err)
	w.Header().Set("Content-Type", "application/json; charset=utf-8")
	w.WriteHeader(se.GetStatusCode())

	_ = json.NewEncoder(w).Encode(map[string]interface{}{
		"success": false,
		"error": map[string]interface{}{
			"type":    se.Type,
			"message": se.Message,
		},
		"request_id": contextutils.GetRequestID(r.Context()),
		"timestamp":  time.Now().UTC(),
	})
}

// ===============================
// CONTEXT ACCESSORS
// ===============================

type contextKey string

// AuthContextKey holds the authenticated claims
const AuthContextKey contextKey = "auth_claims"

// GetClaims returns the authenticated identity, or nil on public routes
func GetClaims(ctx context.Context) *services.Claims {
	if claims, ok := ctx.Value(AuthContextKey).(*services.Claims); ok {
		return claims
	}
	return nil
}

// GetUserID returns the authenticated user id, or ""
func GetUserID(ctx context.Context) string {
	if claims := GetClaims(ctx); claims != nil {
		return claims.ID
	}
	return contextutils.GetUserID(ctx)
}
