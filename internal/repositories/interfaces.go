// file: internal/repositories/interfaces.go
package repositories

import (
	"context"
	"devconnector/internal/models"
)

// ===============================
// REPOSITORY INTERFACES
// ===============================
//
// Getters return (nil, nil) when the row does not exist. Mutations that
// target a missing row return ErrNotFound; unique violations return a
// *DuplicateError that matches ErrDuplicate.

// UserRepository defines user persistence
type UserRepository interface {
	Create(ctx context.Context, user *models.User) error
	GetByID(ctx context.Context, id string) (*models.User, error)
	GetByEmail(ctx context.Context, email string) (*models.User, error)
}

// ProfileFields is a partial profile write. Nil pointers leave the stored value untouched.
type ProfileFields struct {
	Handle         string
	Status         string
	Skills         []string
	Company        *string
	Website        *string
	Location       *string
	Bio            *string
	GitHubUsername *string
	Social         models.Social
}

// ProfileRepository defines profile persistence, including the experience and education sub-lists
type ProfileRepository interface {
	GetByUserID(ctx context.Context, userID string) (*models.Profile, error)
	GetByHandle(ctx context.Context, handle string) (*models.Profile, error)
	List(ctx context.Context) ([]*models.Profile, error)

	// Upsert creates the user's profile or merges fields into it in one statement
	Upsert(ctx context.Context, userID string, fields *ProfileFields) (*models.Profile, error)

	AddExperience(ctx context.Context, userID string, exp *models.Experience) error
	RemoveExperience(ctx context.Context, userID, experienceID string) error
	AddEducation(ctx context.Context, userID string, edu *models.Education) error
	RemoveEducation(ctx context.Context, userID, educationID string) error

	// DeleteWithUser removes the profile and its owning user atomically
	DeleteWithUser(ctx context.Context, userID string) error
}

// PostRepository defines post, like and comment persistence
type PostRepository interface {
	Create(ctx context.Context, post *models.Post) error
	GetByID(ctx context.Context, id string) (*models.Post, error)
	List(ctx context.Context) ([]*models.Post, error)
	Delete(ctx context.Context, id string) error

	// AddLike returns false when the user already liked the post
	AddLike(ctx context.Context, postID, userID string) (bool, error)
	// RemoveLike returns false when the user had not liked the post
	RemoveLike(ctx context.Context, postID, userID string) (bool, error)

	AddComment(ctx context.Context, postID string, comment *models.Comment) error
	RemoveComment(ctx context.Context, postID, commentID string) error
}
