package health

import (
	"context"
	"net/http"
	"time"

	"devconnector/internal/database"
	"devconnector/internal/response"
	"devconnector/internal/services"

	"go.uber.org/zap"
)

// Checker reports dependency health
type Checker interface {
	Health(ctx context.Context) *services.HealthReport
}

// HealthController serves the liveness/readiness endpoint
type HealthController struct {
	checker         Checker
	responseBuilder *response.Builder
	logger          *zap.Logger
	timeout         time.Duration
}

// NewHealthController creates a health controller. Checks are bounded by timeout.
func NewHealthController(checker Checker, responseBuilder *response.Builder, logger *zap.Logger) *HealthController {
	return &HealthController{
		checker:         checker,
		responseBuilder: responseBuilder,
		logger:          logger,
		timeout:         5 * time.Second,
	}
}

// Health handles GET /health
// @Summary Health check
// @Description Database and cache status; 503 when a required dependency is down
// @Tags System
// @Produce json
// @Success 200 {object} services.HealthReport
// @Failure 503 {object} services.HealthReport
// @Router /health [get]
func (c *HealthController) Health(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), c.timeout)
	defer cancel()

	report := c.checker.Health(ctx)

	status := http.StatusOK
	if report.Status == database.StatusUnhealthy {
		status = http.StatusServiceUnavailable
		c.logger.Warn("Health check failed",
			zap.String("database", report.Database),
			zap.String("cache", report.Cache),
		)
	}

	w.Header().Set("Cache-Control", "no-store")
	c.responseBuilder.WriteJSON(w, r, report, status)
}
