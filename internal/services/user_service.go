package services

import (
	"context"

	"devconnector/internal/models"
	"devconnector/internal/repositories"

	"go.uber.org/zap"
)

// userService implements UserService
type userService struct {
	userRepo repositories.UserRepository
	cache    CacheService
	logger   *zap.Logger
}

// NewUserService creates a new user service
func NewUserService(userRepo repositories.UserRepository, cache CacheService, logger *zap.Logger) UserService {
	return &userService{
		userRepo: userRepo,
		cache:    cache,
		logger:   logger,
	}
}

// GetUserByID returns a user, reading through the cache
func (s *userService) GetUserByID(ctx context.Context, id string) (*models.User, error) {
	if user, ok := s.cache.GetUser(ctx, id); ok {
		return user, nil
	}

	user, err := s.userRepo.GetByID(ctx, id)
	if err != nil {
		s.logger.Error("Failed to get user", zap.String("user_id", id), zap.Error(err))
		return nil, NewInternalError("Failed to load user", err)
	}
	if user == nil {
		return nil, NewNotFoundError("User not found").WithField("user", "User not found")
	}

	_ = s.cache.SetUser(ctx, user)
	return user, nil
}

// GetCurrentUser returns the caller's own record
func (s *userService) GetCurrentUser(ctx context.Context, id string) (*CurrentUserResponse, error) {
	user, err := s.GetUserByID(ctx, id)
	if err != nil {
		return nil, err
	}

	return &CurrentUserResponse{
		ID:     user.ID,
		Name:   user.Name,
		Email:  user.Email,
		Avatar: user.Avatar,
	}, nil
}
