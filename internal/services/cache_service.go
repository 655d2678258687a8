package services

import (
	"context"
	"strconv"
	"time"

	"devconnector/internal/cache"
	"devconnector/internal/models"

	"go.uber.org/zap"
)

// cacheService implements CacheService on top of a cache backend.
// Cache failures are logged and treated as misses; the database stays the source of truth.
type cacheService struct {
	backend cache.Cache
	logger  *zap.Logger
	config  *CacheConfig
}

// CacheConfig holds cache service configuration
type CacheConfig struct {
	UserTTL        time.Duration `json:"user_ttl"`
	ProfileTTL     time.Duration `json:"profile_ttl"`
	LockoutWindow  time.Duration `json:"lockout_window"`
	MaxKeySize     int           `json:"max_key_size"`
	DisableCaching bool          `json:"disable_caching"`
}

// DefaultCacheConfig returns default cache configuration
func DefaultCacheConfig() *CacheConfig {
	return &CacheConfig{
		UserTTL:       5 * time.Minute,
		ProfileTTL:    10 * time.Minute,
		LockoutWindow: 15 * time.Minute,
		MaxKeySize:    250,
	}
}

// NewCacheService creates a new cache service
func NewCacheService(backend cache.Cache, logger *zap.Logger, config *CacheConfig) CacheService {
	if config == nil {
		config = DefaultCacheConfig()
	}
	if logger == nil {
		logger = zap.NewNop()
	}

	return &cacheService{
		backend: backend,
		logger:  logger,
		config:  config,
	}
}

// ===============================
// KEYS
// ===============================

func userKey(id string) string             { return cache.Key("user", id) }
func profileHandleKey(handle string) string { return cache.Key("profile", "handle", handle) }
func loginAttemptsKey(email string) string  { return cache.Key("login_attempts", email) }

func (c *cacheService) usable(key string) bool {
	return c.backend != nil && !c.config.DisableCaching && key != "" && len(key) <= c.config.MaxKeySize
}

// ===============================
// USERS
// ===============================

// GetUser returns a cached user. Cached users never carry a password hash.
func (c *cacheService) GetUser(ctx context.Context, id string) (*models.User, bool) {
	key := userKey(id)
	if !c.usable(key) {
		return nil, false
	}

	var user models.User
	if !cache.GetJSON(ctx, c.backend, key, &user) {
		return nil, false
	}
	return &user, true
}

// SetUser caches a user for the configured TTL
func (c *cacheService) SetUser(ctx context.Context, user *models.User) error {
	if user == nil {
		return nil
	}
	key := userKey(user.ID)
	if !c.usable(key) {
		return nil
	}

	if err := cache.SetJSON(ctx, c.backend, key, user, c.config.UserTTL); err != nil {
		c.logger.Warn("Failed to cache user", zap.String("user_id", user.ID), zap.Error(err))
		return err
	}
	return nil
}

// InvalidateUser drops a cached user
func (c *cacheService) InvalidateUser(ctx context.Context, id string) error {
	key := userKey(id)
	if !c.usable(key) {
		return nil
	}
	return c.backend.Delete(ctx, key)
}

// ===============================
// PROFILES
// ===============================

// GetProfileByHandle returns a cached profile
func (c *cacheService) GetProfileByHandle(ctx context.Context, handle string) (*models.Profile, bool) {
	key := profileHandleKey(handle)
	if !c.usable(key) {
		return nil, false
	}

	var profile models.Profile
	if !cache.GetJSON(ctx, c.backend, key, &profile) {
		return nil, false
	}
	return &profile, true
}

// SetProfileByHandle caches a profile under its handle
func (c *cacheService) SetProfileByHandle(ctx context.Context, profile *models.Profile) error {
	if profile == nil {
		return nil
	}
	key := profileHandleKey(profile.Handle)
	if !c.usable(key) {
		return nil
	}

	if err := cache.SetJSON(ctx, c.backend, key, profile, c.config.ProfileTTL); err != nil {
		c.logger.Warn("Failed to cache profile", zap.String("handle", profile.Handle), zap.Error(err))
		return err
	}
	return nil
}

// InvalidateHandles drops cached profiles for the given handles
func (c *cacheService) InvalidateHandles(ctx context.Context, handles ...string) error {
	keys := make([]string, 0, len(handles))
	for _, h := range handles {
		if key := profileHandleKey(h); h != "" && c.usable(key) {
			keys = append(keys, key)
		}
	}
	if len(keys) == 0 {
		return nil
	}

	if err := c.backend.Delete(ctx, keys...); err != nil {
		c.logger.Warn("Failed to invalidate profile cache", zap.Strings("keys", keys), zap.Error(err))
		return err
	}
	return nil
}

// ===============================
// LOGIN ATTEMPTS
// ===============================

// RecordFailedLogin counts a failure. The window starts with the first failure.
func (c *cacheService) RecordFailedLogin(ctx context.Context, email string) (int64, error) {
	key := loginAttemptsKey(email)
	if !c.usable(key) {
		return 0, nil
	}

	count, err := c.backend.Increment(ctx, key, 1)
	if err != nil {
		c.logger.Warn("Failed to record login attempt", zap.Error(err))
		return 0, err
	}
	if count == 1 {
		if err := c.backend.SetTTL(ctx, key, c.config.LockoutWindow); err != nil {
			c.logger.Warn("Failed to set lockout window", zap.Error(err))
		}
	}
	return count, nil
}

// FailedLogins returns the failures recorded in the current window
func (c *cacheService) FailedLogins(ctx context.Context, email string) int64 {
	key := loginAttemptsKey(email)
	if !c.usable(key) {
		return 0
	}

	raw, ok := c.backend.Get(ctx, key)
	if !ok {
		return 0
	}
	n, err := strconv.ParseInt(string(raw), 10, 64)
	if err != nil {
		return 0
	}
	return n
}

// ClearFailedLogins resets the failure counter
func (c *cacheService) ClearFailedLogins(ctx context.Context, email string) error {
	key := loginAttemptsKey(email)
	if !c.usable(key) {
		return nil
	}
	return c.backend.Delete(ctx, key)
}
