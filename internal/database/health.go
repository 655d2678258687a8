package database

import (
	"context"
	"fmt"
	"sync"
	"time"

	"go.uber.org/zap"
)

// HealthStatus represents the current health status of the database
type HealthStatus struct {
	Status          string                 `json:"status"`
	Timestamp       time.Time              `json:"timestamp"`
	ResponseTime    time.Duration          `json:"response_time"`
	ConnectionCount int                    `json:"connection_count"`
	Errors          []string               `json:"errors,omitempty"`
	Details         map[string]interface{} `json:"details"`
}

// Health check statuses
const (
	StatusHealthy   = "healthy"
	StatusDegraded  = "degraded"
	StatusUnhealthy = "unhealthy"
)

// 🏥 HEALTH CHECKER
type HealthChecker struct {
	manager *Manager
	logger  *zap.Logger

	mu         sync.RWMutex
	lastStatus *HealthStatus

	timeout          time.Duration
	slowPingWarning  time.Duration
	poolUsageWarning float64
}

// NewHealthChecker creates a health checker bound to a manager
func NewHealthChecker(manager *Manager, logger *zap.Logger) *HealthChecker {
	return &HealthChecker{
		manager:          manager,
		logger:           logger,
		timeout:          5 * time.Second,
		slowPingWarning:  200 * time.Millisecond,
		poolUsageWarning: 0.9,
	}
}

// Check pings the database and inspects pool saturation
func (hc *HealthChecker) Check(ctx context.Context) *HealthStatus {
	start := time.Now()
	status := &HealthStatus{
		Status:    StatusHealthy,
		Timestamp: start,
		Details:   make(map[string]interface{}),
	}

	ctx, cancel := context.WithTimeout(ctx, hc.timeout)
	defer cancel()

	db := hc.manager.DB()
	if err := db.PingContext(ctx); err != nil {
		status.Status = StatusUnhealthy
		status.Errors = append(status.Errors, fmt.Sprintf("ping failed: %v", err))
	}

	status.ResponseTime = time.Since(start)
	if status.Status == StatusHealthy && status.ResponseTime > hc.slowPingWarning {
		status.Status = StatusDegraded
		status.Errors = append(status.Errors, "slow ping")
	}

	stats := db.Stats()
	status.ConnectionCount = stats.OpenConnections
	status.Details["in_use"] = stats.InUse
	status.Details["idle"] = stats.Idle
	status.Details["wait_count"] = stats.WaitCount

	if stats.MaxOpenConnections > 0 {
		usage := float64(stats.InUse) / float64(stats.MaxOpenConnections)
		status.Details["pool_usage"] = usage
		if status.Status == StatusHealthy && usage >= hc.poolUsageWarning {
			status.Status = StatusDegraded
			status.Errors = append(status.Errors, "connection pool near capacity")
		}
	}

	if status.Status != StatusHealthy {
		hc.logger.Warn("Database health check not healthy",
			zap.String("status", status.Status),
			zap.Strings("errors", status.Errors),
			zap.Duration("response_time", status.ResponseTime),
		)
	}

	hc.mu.Lock()
	hc.lastStatus = status
	hc.mu.Unlock()

	return status
}

// GetLastStatus returns the most recent check result, or nil before the first check
func (hc *HealthChecker) GetLastStatus() *HealthStatus {
	hc.mu.RLock()
	defer hc.mu.RUnlock()
	return hc.lastStatus
}
