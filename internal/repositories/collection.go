// file: internal/repositories/collection.go
package repositories

import (
	"devconnector/internal/database"
	"fmt"

	"go.uber.org/zap"
)

// Collection holds all repository instances for dependency injection
type Collection struct {
	User    UserRepository
	Profile ProfileRepository
	Post    PostRepository
}

// NewCollection creates a new repository collection with all dependencies
func NewCollection(db *database.Manager, logger *zap.Logger) (*Collection, error) {
	if db == nil {
		return nil, fmt.Errorf("database manager is required")
	}

	if logger == nil {
		logger = zap.NewNop()
	}

	return &Collection{
		User:    NewUserRepository(db, logger),
		Profile: NewProfileRepository(db, logger),
		Post:    NewPostRepository(db, logger),
	}, nil
}
