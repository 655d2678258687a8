package config

import (
	"fmt"
	"net/url"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
)

const defaultJWTSecret = "devconnector-dev-secret-change-me"

// Config holds all configuration for the application
type Config struct {
	Server   ServerConfig
	Database DatabaseConfig
	Auth     AuthConfig
	Cache    CacheConfig
	Logging  LoggingConfig

	// 🚀 PRODUCTION ENHANCEMENTS
	Security   SecurityConfig   `json:"security"`
	Monitoring MonitoringConfig `json:"monitoring"`
}

// ServerConfig holds server configuration
type ServerConfig struct {
	Port         string
	Environment  string
	Host         string
	ReadTimeout  time.Duration
	WriteTimeout time.Duration
	IdleTimeout  time.Duration

	GracefulTimeout time.Duration `json:"graceful_timeout"`
	MaxHeaderBytes  int           `json:"max_header_bytes"`
	ServerName      string        `json:"server_name"`
}

// DatabaseConfig holds PostgreSQL connection and migration settings
type DatabaseConfig struct {
	URL                string
	MaxOpenConns       int
	MaxIdleConns       int
	ConnMaxLifetime    time.Duration
	ConnMaxIdleTime    time.Duration
	SlowQueryThreshold time.Duration
	MigrationsPath     string
	AutoMigrate        bool

	// Startup retry
	ConnectTimeout   time.Duration `json:"connect_timeout"`
	MaxRetryAttempts int           `json:"max_retry_attempts"`
	RetryBackoff     time.Duration `json:"retry_backoff"`
}

// AuthConfig holds token, password and login-throttling settings
type AuthConfig struct {
	JWTSecret  string
	JWTExpiry  time.Duration
	JWTIssuer  string
	BCryptCost int

	// Collapse "user not found" and "password incorrect" into one response
	UniformLoginErrors bool          `json:"uniform_login_errors"`
	MaxLoginAttempts   int           `json:"max_login_attempts"`
	LockoutDuration    time.Duration `json:"lockout_duration"`
	UserCacheTTL       time.Duration `json:"user_cache_ttl"`
}

// CacheConfig selects and tunes the cache provider
type CacheConfig struct {
	Provider   string // memory, redis
	RedisURL   string
	DefaultTTL time.Duration
	ProfileTTL time.Duration
	KeyPrefix  string
}

// LoggingConfig holds logging configuration
type LoggingConfig struct {
	Level  string
	Format string
}

// 🔒 SECURITY CONFIGURATION
type SecurityConfig struct {
	CORSAllowedOrigins   []string      `json:"cors_allowed_origins"`
	CORSAllowedMethods   []string      `json:"cors_allowed_methods"`
	CORSAllowedHeaders   []string      `json:"cors_allowed_headers"`
	CORSMaxAge           time.Duration `json:"cors_max_age"`
	CORSAllowCredentials bool          `json:"cors_allow_credentials"`

	EnableSecurityHeaders bool   `json:"enable_security_headers"`
	FrameOptions          string `json:"frame_options"` // DENY, SAMEORIGIN
	MaxRequestBodyBytes   int64  `json:"max_request_body_bytes"`
}

// 📊 MONITORING CONFIGURATION
type MonitoringConfig struct {
	EnableMetrics   bool   `json:"enable_metrics"`
	MetricsPath     string `json:"metrics_path"`
	HealthCheckPath string `json:"health_check_path"`
	EnableSwagger   bool   `json:"enable_swagger"`
}

// 🚀 PRODUCTION-READY CONFIGURATION LOADER
func Load() (*Config, error) {
	// Load environment file based on GO_ENV
	env := getEnv("GO_ENV", "development")
	if env != "production" {
		envFile := fmt.Sprintf(".env.%s", env)
		if _, err := os.Stat(envFile); err == nil {
			_ = godotenv.Load(envFile)
		} else {
			_ = godotenv.Load() // fallback to .env
		}
	}

	config := &Config{
		Server:     loadServerConfig(env),
		Database:   loadDatabaseConfig(env),
		Auth:       loadAuthConfig(env),
		Cache:      loadCacheConfig(),
		Logging:    loadLoggingConfig(env),
		Security:   loadSecurityConfig(env),
		Monitoring: loadMonitoringConfig(env),
	}

	if err := config.Validate(); err != nil {
		return nil, fmt.Errorf("configuration validation failed: %w", err)
	}

	return config, nil
}

// 🖥️ SERVER CONFIGURATION
func loadServerConfig(env string) ServerConfig {
	config := ServerConfig{
		Port:            getEnv("PORT", "5000"),
		Environment:     env,
		Host:            getEnv("SERVER_HOST", "0.0.0.0"),
		ReadTimeout:     getDurationEnv("SERVER_READ_TIMEOUT", 10*time.Second),
		WriteTimeout:    getDurationEnv("SERVER_WRITE_TIMEOUT", 15*time.Second),
		IdleTimeout:     getDurationEnv("SERVER_IDLE_TIMEOUT", 120*time.Second),
		GracefulTimeout: getDurationEnv("GRACEFUL_TIMEOUT", 30*time.Second),
		MaxHeaderBytes:  getIntEnv("MAX_HEADER_BYTES", 1<<20), // 1MB
		ServerName:      getEnv("SERVER_NAME", "DevConnector"),
	}

	if env == "development" {
		config.GracefulTimeout = 10 * time.Second
	}

	return config
}

// 🗄️ DATABASE CONFIGURATION
func loadDatabaseConfig(env string) DatabaseConfig {
	var defaultMaxOpen, defaultMaxIdle int
	var defaultConnLifetime time.Duration

	switch env {
	case "production":
		defaultMaxOpen = 50
		defaultMaxIdle = 20
		defaultConnLifetime = 15 * time.Minute
	case "staging":
		defaultMaxOpen = 25
		defaultMaxIdle = 10
		defaultConnLifetime = 10 * time.Minute
	default: // development
		defaultMaxOpen = 10
		defaultMaxIdle = 5
		defaultConnLifetime = 5 * time.Minute
	}

	return DatabaseConfig{
		URL:                os.Getenv("DATABASE_URL"),
		MaxOpenConns:       getIntEnv("DB_MAX_OPEN_CONNS", defaultMaxOpen),
		MaxIdleConns:       getIntEnv("DB_MAX_IDLE_CONNS", defaultMaxIdle),
		ConnMaxLifetime:    getDurationEnv("DB_CONN_MAX_LIFETIME", defaultConnLifetime),
		ConnMaxIdleTime:    getDurationEnv("DB_CONN_MAX_IDLE_TIME", 30*time.Minute),
		SlowQueryThreshold: getDurationEnv("DB_SLOW_QUERY_THRESHOLD", 100*time.Millisecond),
		MigrationsPath:     getEnv("DB_MIGRATIONS_PATH", "./migrations"),
		AutoMigrate:        getBoolEnv("DB_AUTO_MIGRATE", true),
		ConnectTimeout:     getDurationEnv("DB_CONNECT_TIMEOUT", 30*time.Second),
		MaxRetryAttempts:   getIntEnv("DB_MAX_RETRY_ATTEMPTS", 5),
		RetryBackoff:       getDurationEnv("DB_RETRY_BACKOFF", 1*time.Second),
	}
}

// 🔐 AUTH CONFIGURATION
func loadAuthConfig(env string) AuthConfig {
	return AuthConfig{
		JWTSecret:          getEnv("JWT_SECRET", defaultJWTSecret),
		JWTExpiry:          getDurationEnv("JWT_EXPIRY", 10*time.Hour),
		JWTIssuer:          getEnv("JWT_ISSUER", "devconnector"),
		BCryptCost:         getIntEnv("BCRYPT_COST", 10),
		UniformLoginErrors: getBoolEnv("AUTH_UNIFORM_LOGIN_ERRORS", false),
		MaxLoginAttempts:   getIntEnv("AUTH_MAX_LOGIN_ATTEMPTS", 5),
		LockoutDuration:    getDurationEnv("AUTH_LOCKOUT_DURATION", 15*time.Minute),
		UserCacheTTL:       getDurationEnv("AUTH_USER_CACHE_TTL", 5*time.Minute),
	}
}

// 💾 CACHE CONFIGURATION
func loadCacheConfig() CacheConfig {
	provider := "memory"
	redisURL := getEnv("REDIS_URL", "")
	if redisURL != "" {
		provider = "redis"
	}

	return CacheConfig{
		Provider:   getEnv("CACHE_PROVIDER", provider),
		RedisURL:   redisURL,
		DefaultTTL: getDurationEnv("CACHE_DEFAULT_TTL", 15*time.Minute),
		ProfileTTL: getDurationEnv("CACHE_PROFILE_TTL", 5*time.Minute),
		KeyPrefix:  getEnv("CACHE_KEY_PREFIX", "devconnector:"),
	}
}

// 📝 LOGGING CONFIGURATION
func loadLoggingConfig(env string) LoggingConfig {
	return LoggingConfig{
		Level:  getEnv("LOG_LEVEL", getDefaultLogLevel(env)),
		Format: getEnv("LOG_FORMAT", getDefaultLogFormat(env)),
	}
}

// 🔒 SECURITY CONFIGURATION
func loadSecurityConfig(env string) SecurityConfig {
	config := SecurityConfig{
		CORSMaxAge:            getDurationEnv("CORS_MAX_AGE", 24*time.Hour),
		CORSAllowCredentials:  getBoolEnv("CORS_ALLOW_CREDENTIALS", true),
		EnableSecurityHeaders: getBoolEnv("ENABLE_SECURITY_HEADERS", true),
		FrameOptions:          getEnv("FRAME_OPTIONS", "SAMEORIGIN"),
		MaxRequestBodyBytes:   getInt64Env("MAX_REQUEST_BODY_BYTES", 1<<20),
		CORSAllowedMethods:    []string{"GET", "POST", "DELETE", "OPTIONS"},
		CORSAllowedHeaders:    []string{"Accept", "Authorization", "Content-Type", "X-Request-ID"},
	}

	switch env {
	case "production":
		config.CORSAllowedOrigins = getSliceEnv("CORS_ALLOWED_ORIGINS", nil)
	default: // development, staging
		config.CORSAllowedOrigins = getSliceEnv("CORS_ALLOWED_ORIGINS", []string{"*"})
	}

	return config
}

// 📊 MONITORING CONFIGURATION
func loadMonitoringConfig(env string) MonitoringConfig {
	return MonitoringConfig{
		EnableMetrics:   getBoolEnv("ENABLE_METRICS", true),
		MetricsPath:     getEnv("METRICS_PATH", "/metrics"),
		HealthCheckPath: getEnv("HEALTH_CHECK_PATH", "/health"),
		EnableSwagger:   getBoolEnv("ENABLE_SWAGGER", env != "production"),
	}
}

// 🔍 VALIDATION
func (c *Config) Validate() error {
	if err := c.Server.Validate(); err != nil {
		return fmt.Errorf("server config: %w", err)
	}

	if err := c.Database.Validate(); err != nil {
		return fmt.Errorf("database config: %w", err)
	}

	if err := c.Auth.Validate(c.Server.Environment); err != nil {
		return fmt.Errorf("auth config: %w", err)
	}

	if err := c.Cache.Validate(); err != nil {
		return fmt.Errorf("cache config: %w", err)
	}

	if err := c.Security.Validate(); err != nil {
		return fmt.Errorf("security config: %w", err)
	}

	return nil
}

func (s *ServerConfig) Validate() error {
	if s.Port == "" {
		return fmt.Errorf("PORT is required")
	}

	if s.ReadTimeout <= 0 {
		return fmt.Errorf("ReadTimeout must be positive")
	}

	if s.WriteTimeout <= 0 {
		return fmt.Errorf("WriteTimeout must be positive")
	}

	return nil
}

func (d *DatabaseConfig) Validate() error {
	if d.URL == "" {
		return fmt.Errorf("DATABASE_URL is required")
	}

	if _, err := url.Parse(d.URL); err != nil {
		return fmt.Errorf("invalid DATABASE_URL: %w", err)
	}

	if d.MaxOpenConns <= 0 {
		return fmt.Errorf("MaxOpenConns must be positive")
	}

	if d.MaxIdleConns < 0 {
		return fmt.Errorf("MaxIdleConns cannot be negative")
	}

	if d.MaxIdleConns > d.MaxOpenConns {
		return fmt.Errorf("MaxIdleConns cannot be greater than MaxOpenConns")
	}

	if d.ConnMaxLifetime <= 0 {
		return fmt.Errorf("ConnMaxLifetime must be positive")
	}

	if d.SlowQueryThreshold <= 0 {
		return fmt.Errorf("SlowQueryThreshold must be positive")
	}

	return nil
}

// Validate checks token and password settings; a weak secret is fatal in production only
func (a *AuthConfig) Validate(environment string) error {
	if a.JWTSecret == "" {
		return fmt.Errorf("JWT_SECRET is required")
	}

	if environment == "production" {
		if a.JWTSecret == defaultJWTSecret {
			return fmt.Errorf("default JWT secret cannot be used in production")
		}
		if len(a.JWTSecret) < 32 {
			return fmt.Errorf("JWT_SECRET must be at least 32 characters in production")
		}
	}

	if a.JWTExpiry <= 0 {
		return fmt.Errorf("JWTExpiry must be positive")
	}

	if a.BCryptCost < 4 || a.BCryptCost > 31 {
		return fmt.Errorf("BCryptCost must be between 4 and 31")
	}

	if a.MaxLoginAttempts < 0 {
		return fmt.Errorf("max login attempts cannot be negative")
	}

	if a.MaxLoginAttempts > 0 && a.LockoutDuration < time.Minute {
		return fmt.Errorf("lockout duration must be at least 1 minute")
	}

	return nil
}

func (c *CacheConfig) Validate() error {
	switch c.Provider {
	case "memory":
	case "redis":
		if c.RedisURL == "" {
			return fmt.Errorf("REDIS_URL is required for the redis cache provider")
		}
	default:
		return fmt.Errorf("unsupported cache provider: %s", c.Provider)
	}

	if c.DefaultTTL <= 0 {
		return fmt.Errorf("DefaultTTL must be positive")
	}

	return nil
}

func (s *SecurityConfig) Validate() error {
	if s.FrameOptions != "DENY" && s.FrameOptions != "SAMEORIGIN" {
		return fmt.Errorf("frame options must be DENY or SAMEORIGIN")
	}

	if s.MaxRequestBodyBytes <= 0 {
		return fmt.Errorf("max request body bytes must be positive")
	}

	return nil
}

func (c *Config) IsProduction() bool {
	return c.Server.Environment == "production"
}

func (c *Config) IsDevelopment() bool {
	return c.Server.Environment == "development"
}

// 🛠️ UTILITY FUNCTIONS

func getEnv(key, defaultValue string) string {
	if value, exists := os.LookupEnv(key); exists {
		return value
	}
	return defaultValue
}

func getIntEnv(key string, defaultValue int) int {
	if value, exists := os.LookupEnv(key); exists {
		if intValue, err := strconv.Atoi(value); err == nil {
			return intValue
		}
	}
	return defaultValue
}

func getInt64Env(key string, defaultValue int64) int64 {
	if value, exists := os.LookupEnv(key); exists {
		if intValue, err := strconv.ParseInt(value, 10, 64); err == nil {
			return intValue
		}
	}
	return defaultValue
}

func getBoolEnv(key string, defaultValue bool) bool {
	if value, exists := os.LookupEnv(key); exists {
		if boolValue, err := strconv.ParseBool(value); err == nil {
			return boolValue
		}
	}
	return defaultValue
}

func getDurationEnv(key string, defaultValue time.Duration) time.Duration {
	if value, exists := os.LookupEnv(key); exists {
		if duration, err := time.ParseDuration(value); err == nil {
			return duration
		}
	}
	return defaultValue
}

func getSliceEnv(key string, defaultValue []string) []string {
	value, exists := os.LookupEnv(key)
	if !exists || strings.TrimSpace(value) == "" {
		return defaultValue
	}

	parts := strings.Split(value, ",")
	result := make([]string, 0, len(parts))
	for _, part := range parts {
		if part = strings.TrimSpace(part); part != "" {
			result = append(result, part)
		}
	}
	return result
}

func getDefaultLogLevel(env string) string {
	switch env {
	case "production":
		return "info"
	default:
		return "debug"
	}
}

func getDefaultLogFormat(env string) string {
	switch env {
	case "production":
		return "json"
	default:
		return "console"
	}
}
