// file: internal/services/auth_service.go
package services

import (
	"context"
	"crypto/md5"
	"encoding/hex"
	"errors"
	"fmt"
	"strings"
	"time"

	"devconnector/internal/config"
	"devconnector/internal/events"
	"devconnector/internal/models"
	"devconnector/internal/repositories"
	"devconnector/internal/validation"

	"github.com/golang-jwt/jwt/v5"
	"go.uber.org/zap"
	"golang.org/x/crypto/bcrypt"
)

// BearerPrefix precedes the token in the Authorization header and the login response
const BearerPrefix = "Bearer "

// authService implements AuthService
type authService struct {
	userRepo    repositories.UserRepository
	userService UserService
	cache       CacheService
	events      events.EventBus
	logger      *zap.Logger
	config      *config.AuthConfig
	now         Clock
}

// tokenClaims is the signed token payload: {id, name, avatar, iat, exp}
type tokenClaims struct {
	UserID string `json:"id"`
	Name   string `json:"name"`
	Avatar string `json:"avatar"`
	jwt.RegisteredClaims
}

// NewAuthService creates a new authentication service
func NewAuthService(
	userRepo repositories.UserRepository,
	userService UserService,
	cache CacheService,
	eventBus events.EventBus,
	logger *zap.Logger,
	cfg *config.AuthConfig,
) AuthService {
	return &authService{
		userRepo:    userRepo,
		userService: userService,
		cache:       cache,
		events:      eventBus,
		logger:      logger,
		config:      cfg,
		now:         time.Now,
	}
}

// ===============================
// REGISTRATION
// ===============================

// Register creates a new user account
func (s *authService) Register(ctx context.Context, req *RegisterRequest) (*models.User, error) {
	req.Email = normalizeEmail(req.Email)
	req.Name = strings.TrimSpace(req.Name)

	if err := validation.ValidateStruct(req); err != nil {
		return nil, NewValidationError("Validation failed", err)
	}

	existing, err := s.userRepo.GetByEmail(ctx, req.Email)
	if err != nil {
		s.logger.Error("Failed to check existing email", zap.Error(err))
		return nil, NewInternalError("Failed to register user", err)
	}
	if existing != nil {
		return nil, emailTakenError()
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(req.Password), s.config.BCryptCost)
	if err != nil {
		s.logger.Error("Failed to hash password", zap.Error(err))
		return nil, NewInternalError("Failed to register user", err)
	}

	user := &models.User{
		Name:         req.Name,
		Email:        req.Email,
		PasswordHash: string(hash),
		Avatar:       GravatarURL(req.Email),
	}

	if err := s.userRepo.Create(ctx, user); err != nil {
		// The unique index catches a concurrent registration that passed the pre-check
		if errors.Is(err, repositories.ErrDuplicate) {
			return nil, emailTakenError()
		}
		s.logger.Error("Failed to create user", zap.Error(err))
		return nil, NewInternalError("Failed to register user", err)
	}

	publish(ctx, s.events, s.logger, events.NewUserRegisteredEvent(user.ID, user.Email))

	s.logger.Info("User registered",
		zap.String("user_id", user.ID),
		zap.String("email", user.Email),
	)
	return user, nil
}

func emailTakenError() *ServiceError {
	return NewConflictError("Email is already registered").WithField("email", "Email is already registered")
}

// ===============================
// LOGIN
// ===============================

// Login verifies credentials and issues a bearer token
func (s *authService) Login(ctx context.Context, req *LoginRequest) (*LoginResponse, error) {
	req.Email = normalizeEmail(req.Email)

	if err := validation.ValidateStruct(req); err != nil {
		return nil, NewValidationError("Validation failed", err)
	}

	if s.lockedOut(ctx, req.Email) {
		s.logger.Warn("Login rejected, too many failed attempts", zap.String("email", req.Email))
		return nil, NewRateLimitError("Too many failed login attempts, please try again later")
	}

	user, err := s.userRepo.GetByEmail(ctx, req.Email)
	if err != nil {
		s.logger.Error("Failed to get user during login", zap.Error(err))
		return nil, NewInternalError("Authentication failed", err)
	}
	if user == nil {
		s.recordFailure(ctx, req.Email, "user_not_found")
		if s.config.UniformLoginErrors {
			return nil, invalidCredentialsError()
		}
		return nil, NewNotFoundError("User not found").WithField("email", "User not found")
	}

	if err := bcrypt.CompareHashAndPassword([]byte(user.PasswordHash), []byte(req.Password)); err != nil {
		s.recordFailure(ctx, req.Email, "invalid_password")
		if s.config.UniformLoginErrors {
			return nil, invalidCredentialsError()
		}
		return nil, NewFieldError("password", "Password is incorrect")
	}

	_ = s.cache.ClearFailedLogins(ctx, req.Email)

	token, err := s.IssueToken(user)
	if err != nil {
		s.logger.Error("Failed to sign token", zap.Error(err))
		return nil, NewInternalError("Failed to generate token", err)
	}

	publish(ctx, s.events, s.logger, events.NewUserLoggedInEvent(user.ID))
	s.logger.Info("User logged in", zap.String("user_id", user.ID))

	return &LoginResponse{Success: true, Token: BearerPrefix + token}, nil
}

func invalidCredentialsError() *ServiceError {
	return NewFieldError("email", "Invalid email or password")
}

func (s *authService) lockedOut(ctx context.Context, email string) bool {
	if s.config.MaxLoginAttempts <= 0 {
		return false
	}
	return s.cache.FailedLogins(ctx, email) >= int64(s.config.MaxLoginAttempts)
}

func (s *authService) recordFailure(ctx context.Context, email, reason string) {
	if s.config.MaxLoginAttempts > 0 {
		_, _ = s.cache.RecordFailedLogin(ctx, email)
	}
	s.logger.Info("Failed login attempt",
		zap.String("email", email),
		zap.String("reason", reason),
	)
}

// ===============================
// TOKENS
// ===============================

// IssueToken signs an HS256 token for the user
func (s *authService) IssueToken(user *models.User) (string, error) {
	now := s.now()
	claims := tokenClaims{
		UserID: user.ID,
		Name:   user.Name,
		Avatar: user.Avatar,
		RegisteredClaims: jwt.RegisteredClaims{
			Issuer:    s.config.JWTIssuer,
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(s.config.JWTExpiry)),
		},
	}

	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	signed, err := token.SignedString([]byte(s.config.JWTSecret))
	if err != nil {
		return "", fmt.Errorf("failed to sign token: %w", err)
	}
	return signed, nil
}

// ParseToken verifies signature, algorithm and expiry
func (s *authService) ParseToken(raw string) (*Claims, error) {
	opts := []jwt.ParserOption{
		jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}),
		jwt.WithExpirationRequired(),
		jwt.WithTimeFunc(s.now),
	}
	if s.config.JWTIssuer != "" {
		opts = append(opts, jwt.WithIssuer(s.config.JWTIssuer))
	}

	claims := &tokenClaims{}
	_, err := jwt.ParseWithClaims(raw, claims, func(t *jwt.Token) (interface{}, error) {
		if _, ok := t.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, fmt.Errorf("unexpected signing method: %v", t.Header["alg"])
		}
		return []byte(s.config.JWTSecret), nil
	}, opts...)
	if err != nil {
		if errors.Is(err, jwt.ErrTokenExpired) {
			return nil, NewUnauthorizedError("Token has expired")
		}
		return nil, NewUnauthorizedError("Invalid token")
	}

	if claims.UserID == "" {
		return nil, NewUnauthorizedError("Invalid token")
	}

	return &Claims{ID: claims.UserID, Name: claims.Name, Avatar: claims.Avatar}, nil
}

// Authenticate verifies an Authorization header value and resolves the current user
func (s *authService) Authenticate(ctx context.Context, header string) (*Claims, error) {
	raw := strings.TrimSpace(header)
	if raw == "" {
		return nil, NewUnauthorizedError("Unauthorized")
	}
	if len(raw) < len(BearerPrefix) || !strings.EqualFold(raw[:len(BearerPrefix)], BearerPrefix) {
		return nil, NewUnauthorizedError("Unauthorized")
	}

	claims, err := s.ParseToken(strings.TrimSpace(raw[len(BearerPrefix):]))
	if err != nil {
		return nil, err
	}

	user, err := s.userService.GetUserByID(ctx, claims.ID)
	if err != nil {
		if IsNotFoundError(err) {
			return nil, NewUnauthorizedError("Unauthorized")
		}
		return nil, err
	}

	return &Claims{ID: user.ID, Name: user.Name, Avatar: user.Avatar}, nil
}

// ===============================
// HELPERS
// ===============================

func normalizeEmail(email string) string {
	return strings.ToLower(strings.TrimSpace(email))
}

// GravatarURL builds the avatar URL for an email: 200px, pg rating, mystery-man default
func GravatarURL(email string) string {
	sum := md5.Sum([]byte(normalizeEmail(email)))
	return "//www.gravatar.com/avatar/" + hex.EncodeToString(sum[:]) + "?s=200&r=pg&d=mm"
}
