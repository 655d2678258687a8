// file: internal/services/service_collection.go
package services

import (
	"context"
	"fmt"
	"sync"
	"time"

	"devconnector/internal/cache"
	"devconnector/internal/config"
	"devconnector/internal/database"
	"devconnector/internal/events"
	"devconnector/internal/repositories"

	"go.uber.org/zap"
)

// ServiceCollection holds all services with their shared infrastructure
type ServiceCollection struct {
	// Core Services
	AuthService    AuthService    `json:"-"`
	UserService    UserService    `json:"-"`
	ProfileService ProfileService `json:"-"`
	PostService    PostService    `json:"-"`
	CommentService CommentService `json:"-"`

	// Infrastructure Services
	CacheService CacheService `json:"-"`

	// Repository Collection
	Repositories *repositories.Collection `json:"-"`

	// Infrastructure Components
	Cache     cache.Cache       `json:"-"`
	EventBus  events.EventBus   `json:"-"`
	Logger    *zap.Logger       `json:"-"`
	Config    *config.Config    `json:"-"`
	DBManager *database.Manager `json:"-"`

	startTime time.Time
	mu        sync.Mutex
	stopped   bool
}

// NewServiceCollection creates the service collection in dependency order
func NewServiceCollection(
	dbManager *database.Manager,
	cacheBackend cache.Cache,
	cfg *config.Config,
	logger *zap.Logger,
) (*ServiceCollection, error) {
	if dbManager == nil {
		return nil, fmt.Errorf("database connection is required")
	}
	if cacheBackend == nil {
		return nil, fmt.Errorf("cache is required")
	}
	if cfg == nil {
		return nil, fmt.Errorf("configuration is required")
	}
	if logger == nil {
		logger = zap.NewNop()
	}

	repos, err := repositories.NewCollection(dbManager, logger)
	if err != nil {
		return nil, fmt.Errorf("failed to initialize repositories: %w", err)
	}

	collection := &ServiceCollection{
		Repositories: repos,
		Cache:        cacheBackend,
		Logger:       logger,
		Config:       cfg,
		DBManager:    dbManager,
		startTime:    time.Now(),
	}

	if err := collection.initializeEvents(); err != nil {
		return nil, fmt.Errorf("failed to initialize event bus: %w", err)
	}
	collection.initializeServices()

	logger.Info("✅ Service collection initialized")
	return collection, nil
}

func (sc *ServiceCollection) initializeEvents() error {
	sc.EventBus = events.NewInMemoryEventBus(events.DefaultEventBusConfig(), sc.Logger)

	if err := sc.EventBus.SubscribePattern("*", NewAuditHandler(sc.Logger)); err != nil {
		return err
	}
	return sc.EventBus.Start(context.Background())
}

func (sc *ServiceCollection) initializeServices() {
	cacheConfig := DefaultCacheConfig()
	if sc.Config.Auth.UserCacheTTL > 0 {
		cacheConfig.UserTTL = sc.Config.Auth.UserCacheTTL
	}
	if sc.Config.Cache.ProfileTTL > 0 {
		cacheConfig.ProfileTTL = sc.Config.Cache.ProfileTTL
	}
	if sc.Config.Auth.LockoutDuration > 0 {
		cacheConfig.LockoutWindow = sc.Config.Auth.LockoutDuration
	}

	sc.CacheService = NewCacheService(sc.Cache, sc.Logger, cacheConfig)
	sc.UserService = NewUserService(sc.Repositories.User, sc.CacheService, sc.Logger)
	sc.AuthService = NewAuthService(
		sc.Repositories.User,
		sc.UserService,
		sc.CacheService,
		sc.EventBus,
		sc.Logger,
		&sc.Config.Auth,
	)
	sc.ProfileService = NewProfileService(sc.Repositories.Profile, sc.CacheService, sc.EventBus, sc.Logger)
	sc.PostService = NewPostService(sc.Repositories.Post, sc.EventBus, sc.Logger)
	sc.CommentService = NewCommentService(sc.Repositories.Post, sc.EventBus, sc.Logger)
}

// ===============================
// HEALTH & LIFECYCLE
// ===============================

// Health checks the database, cache and event bus
func (sc *ServiceCollection) Health(ctx context.Context) *HealthReport {
	report := &HealthReport{
		Status:    database.StatusHealthy,
		Database:  database.StatusHealthy,
		Cache:     database.StatusHealthy,
		Events:    database.StatusHealthy,
		Timestamp: time.Now(),
	}

	if db := sc.DBManager.Health(ctx); db.Status != database.StatusHealthy {
		report.Database = db.Status
		if db.Status == database.StatusUnhealthy {
			report.Status = database.StatusUnhealthy
		} else if report.Status == database.StatusHealthy {
			report.Status = database.StatusDegraded
		}
	}

	// The cache is optional for correctness, so a failing cache only degrades
	if err := sc.Cache.Health(ctx); err != nil {
		sc.Logger.Warn("Cache health check failed", zap.Error(err))
		report.Cache = database.StatusUnhealthy
		if report.Status == database.StatusHealthy {
			report.Status = database.StatusDegraded
		}
	}

	if err := sc.EventBus.Health(); err != nil {
		report.Events = database.StatusDegraded
		if report.Status == database.StatusHealthy {
			report.Status = database.StatusDegraded
		}
	}

	return report
}

// Uptime returns how long the collection has been running
func (sc *ServiceCollection) Uptime() time.Duration {
	return time.Since(sc.startTime)
}

// Shutdown stops the event bus and closes the cache and database
func (sc *ServiceCollection) Shutdown(ctx context.Context) error {
	sc.mu.Lock()
	defer sc.mu.Unlock()
	if sc.stopped {
		return nil
	}
	sc.stopped = true

	sc.Logger.Info("🛑 Shutting down services")

	var errs []error
	if err := sc.EventBus.Stop(ctx); err != nil {
		errs = append(errs, fmt.Errorf("event bus: %w", err))
	}
	if err := sc.Cache.Close(); err != nil {
		errs = append(errs, fmt.Errorf("cache: %w", err))
	}
	if err := sc.DBManager.Close(); err != nil {
		errs = append(errs, fmt.Errorf("database: %w", err))
	}

	if len(errs) > 0 {
		return fmt.Errorf("shutdown errors: %v", errs)
	}
	return nil
}

// ===============================
// EVENTS
// ===============================

// NewAuditHandler logs every published domain event
func NewAuditHandler(logger *zap.Logger) events.EventHandler {
	return events.EventHandlerFunc{
		ID: "audit-log",
		Func: func(ctx context.Context, event events.Event) error {
			logger.Info("Domain event",
				zap.String("event_id", event.GetEventID()),
				zap.String("event_type", event.GetEventType()),
				zap.String("user_id", event.GetUserID()),
				zap.Time("timestamp", event.GetTimestamp()),
			)
			return nil
		},
	}
}

// publish queues an event for the bus workers so audit handlers run off the
// request path. A full queue falls back to inline delivery. A failed handler
// never fails the request.
func publish(ctx context.Context, bus events.EventBus, logger *zap.Logger, event events.Event) {
	if bus == nil {
		return
	}
	err := bus.PublishAsync(ctx, event)
	if err == nil {
		return
	}
	logger.Debug("Event queue unavailable, delivering inline",
		zap.String("event_type", event.GetEventType()),
		zap.Error(err),
	)
	if err := bus.Publish(ctx, event); err != nil {
		logger.Warn("Failed to publish event",
			zap.String("event_type", event.GetEventType()),
			zap.Error(err),
		)
	}
}
