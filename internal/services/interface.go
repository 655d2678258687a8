// file: internal/services/interface.go
package services

import (
	"context"
	"time"

	"devconnector/internal/models"
)

// ===============================
// CORE SERVICE INTERFACES
// ===============================

// AuthService defines registration, login and token verification
type AuthService interface {
	Register(ctx context.Context, req *RegisterRequest) (*models.User, error)
	Login(ctx context.Context, req *LoginRequest) (*LoginResponse, error)

	// IssueToken signs an access token for the user
	IssueToken(user *models.User) (string, error)
	// ParseToken verifies a raw (non-prefixed) token and returns its claims
	ParseToken(token string) (*Claims, error)
	// Authenticate verifies a bearer token and checks the user still exists
	Authenticate(ctx context.Context, token string) (*Claims, error)
}

// UserService defines user lookups
type UserService interface {
	GetUserByID(ctx context.Context, id string) (*models.User, error)
	GetCurrentUser(ctx context.Context, id string) (*CurrentUserResponse, error)
}

// ProfileService defines profile business logic
type ProfileService interface {
	GetOwnProfile(ctx context.Context, userID string) (*models.Profile, error)
	ListProfiles(ctx context.Context) ([]*models.Profile, error)
	GetProfileByHandle(ctx context.Context, handle string) (*models.Profile, error)
	GetProfileByUserID(ctx context.Context, userID string) (*models.Profile, error)
	UpsertProfile(ctx context.Context, req *ProfileRequest) (*models.Profile, error)

	AddExperience(ctx context.Context, req *ExperienceRequest) (*models.Profile, error)
	RemoveExperience(ctx context.Context, userID, experienceID string) (*models.Profile, error)
	AddEducation(ctx context.Context, req *EducationRequest) (*models.Profile, error)
	RemoveEducation(ctx context.Context, userID, educationID string) (*models.Profile, error)

	// DeleteAccount removes the profile and the user
	DeleteAccount(ctx context.Context, userID string) error
}

// PostService defines post business logic
type PostService interface {
	ListPosts(ctx context.Context) ([]*models.Post, error)
	GetPost(ctx context.Context, postID string) (*models.Post, error)
	CreatePost(ctx context.Context, req *PostRequest) (*models.Post, error)
	DeletePost(ctx context.Context, postID, userID string) error

	LikePost(ctx context.Context, postID, userID string) (*models.Post, error)
	UnlikePost(ctx context.Context, postID, userID string) (*models.Post, error)
}

// CommentService defines comment business logic
type CommentService interface {
	AddComment(ctx context.Context, postID string, req *PostRequest) (*models.Post, error)
	RemoveComment(ctx context.Context, postID, commentID, userID string) (*models.Post, error)
}

// ===============================
// INFRASTRUCTURE SERVICE INTERFACES
// ===============================

// CacheService wraps the cache with the application's key scheme
type CacheService interface {
	GetUser(ctx context.Context, id string) (*models.User, bool)
	SetUser(ctx context.Context, user *models.User) error
	InvalidateUser(ctx context.Context, id string) error

	GetProfileByHandle(ctx context.Context, handle string) (*models.Profile, bool)
	SetProfileByHandle(ctx context.Context, profile *models.Profile) error
	InvalidateHandles(ctx context.Context, handles ...string) error

	// RecordFailedLogin increments the failure counter and returns the new count
	RecordFailedLogin(ctx context.Context, email string) (int64, error)
	FailedLogins(ctx context.Context, email string) int64
	ClearFailedLogins(ctx context.Context, email string) error
}

// ===============================
// COMMON TYPES
// ===============================

// Clock returns the current time; tests replace it
type Clock func() time.Time
