package health

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"devconnector/internal/database"
	"devconnector/internal/response"
	"devconnector/internal/services"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

type stubChecker struct {
	report   *services.HealthReport
	deadline bool
}

func (s *stubChecker) Health(ctx context.Context) *services.HealthReport {
	_, s.deadline = ctx.Deadline()
	return s.report
}

func TestHealth(t *testing.T) {
	tests := []struct {
		name   string
		report services.HealthReport
		status int
	}{
		{"healthy", services.HealthReport{Status: database.StatusHealthy, Database: database.StatusHealthy, Cache: database.StatusHealthy}, http.StatusOK},
		{"cache down is degraded", services.HealthReport{Status: database.StatusDegraded, Database: database.StatusHealthy, Cache: database.StatusUnhealthy}, http.StatusOK},
		{"database down", services.HealthReport{Status: database.StatusUnhealthy, Database: database.StatusUnhealthy, Cache: database.StatusHealthy}, http.StatusServiceUnavailable},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			report := tt.report
			report.Timestamp = time.Now()
			checker := &stubChecker{report: &report}
			c := NewHealthController(checker, response.NewBuilder(nil, zap.NewNop()), zap.NewNop())

			rec := httptest.NewRecorder()
			c.Health(rec, httptest.NewRequest(http.MethodGet, "/health", nil))

			assert.Equal(t, tt.status, rec.Code)
			assert.True(t, checker.deadline)

			var got map[string]interface{}
			require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &got))
			assert.Equal(t, report.Status, got["status"])
			assert.Equal(t, report.Database, got["database"])
			assert.Equal(t, report.Cache, got["cache"])
			assert.Contains(t, got, "timestamp")
		})
	}
}
