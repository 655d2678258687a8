// file: internal/services/post_service.go
package services

import (
	"context"
	"errors"
	"strings"

	"devconnector/internal/events"
	"devconnector/internal/models"
	"devconnector/internal/repositories"
	"devconnector/internal/validation"

	"go.uber.org/zap"
)

// postService implements PostService
type postService struct {
	postRepo repositories.PostRepository
	events   events.EventBus
	logger   *zap.Logger
}

// NewPostService creates a new post service
func NewPostService(
	postRepo repositories.PostRepository,
	eventBus events.EventBus,
	logger *zap.Logger,
) PostService {
	return &postService{
		postRepo: postRepo,
		events:   eventBus,
		logger:   logger,
	}
}

func postNotFoundError() *ServiceError {
	return NewNotFoundError("No post found").WithField("nopost", "No post found")
}

// ===============================
// READS
// ===============================

// ListPosts returns every post, newest first
func (s *postService) ListPosts(ctx context.Context) ([]*models.Post, error) {
	posts, err := s.postRepo.List(ctx)
	if err != nil {
		s.logger.Error("Failed to list posts", zap.Error(err))
		return nil, NewInternalError("Failed to load posts", err)
	}
	return posts, nil
}

// GetPost returns a single post
func (s *postService) GetPost(ctx context.Context, postID string) (*models.Post, error) {
	return loadPost(ctx, s.postRepo, s.logger, postID)
}

func loadPost(ctx context.Context, repo repositories.PostRepository, logger *zap.Logger, postID string) (*models.Post, error) {
	post, err := repo.GetByID(ctx, postID)
	if err != nil {
		logger.Error("Failed to get post", zap.String("post_id", postID), zap.Error(err))
		return nil, NewInternalError("Failed to load post", err)
	}
	if post == nil {
		return nil, postNotFoundError()
	}
	return post, nil
}

// ===============================
// WRITES
// ===============================

// CreatePost publishes a new post authored by req.UserID
func (s *postService) CreatePost(ctx context.Context, req *PostRequest) (*models.Post, error) {
	if err := validation.ValidateStruct(req); err != nil {
		return nil, NewValidationError("Validation failed", err)
	}

	post := &models.Post{
		UserID: req.UserID,
		Text:   strings.TrimSpace(req.Text),
		Name:   strings.TrimSpace(req.Name),
		Avatar: req.Avatar,
	}

	if err := s.postRepo.Create(ctx, post); err != nil {
		if errors.Is(err, repositories.ErrNotFound) {
			return nil, NewUnauthorizedError("Unauthorized")
		}
		s.logger.Error("Failed to create post", zap.String("user_id", req.UserID), zap.Error(err))
		return nil, NewInternalError("Failed to create post", err)
	}

	publish(ctx, s.events, s.logger, events.NewPostEvent(events.PostCreated, req.UserID, post.ID))
	return post, nil
}

// DeletePost removes a post; only its author may do so
func (s *postService) DeletePost(ctx context.Context, postID, userID string) error {
	post, err := s.GetPost(ctx, postID)
	if err != nil {
		return err
	}

	if post.UserID != userID {
		s.logger.Warn("Post delete rejected",
			zap.String("post_id", postID),
			zap.String("user_id", userID))
		return NewUnauthorizedError("User not authorized to delete this post").
			WithField("notauthorized", "User not authorized to delete this post")
	}

	if err := s.postRepo.Delete(ctx, postID); err != nil {
		if errors.Is(err, repositories.ErrNotFound) {
			return postNotFoundError()
		}
		s.logger.Error("Failed to delete post", zap.String("post_id", postID), zap.Error(err))
		return NewInternalError("Failed to delete post", err)
	}

	publish(ctx, s.events, s.logger, events.NewPostEvent(events.PostDeleted, userID, postID))
	return nil
}

// ===============================
// LIKES
// ===============================

// LikePost adds the user to the post's likes
func (s *postService) LikePost(ctx context.Context, postID, userID string) (*models.Post, error) {
	added, err := s.postRepo.AddLike(ctx, postID, userID)
	if err != nil {
		if errors.Is(err, repositories.ErrNotFound) {
			return nil, postNotFoundError()
		}
		s.logger.Error("Failed to like post", zap.String("post_id", postID), zap.Error(err))
		return nil, NewInternalError("Failed to like post", err)
	}
	if !added {
		return nil, NewConflictError("You have already liked this post").
			WithField("alreadyliked", "You have already liked this post")
	}

	publish(ctx, s.events, s.logger, events.NewPostEvent(events.PostLiked, userID, postID))
	return s.GetPost(ctx, postID)
}

// UnlikePost removes the user from the post's likes
func (s *postService) UnlikePost(ctx context.Context, postID, userID string) (*models.Post, error) {
	removed, err := s.postRepo.RemoveLike(ctx, postID, userID)
	if err != nil {
		s.logger.Error("Failed to unlike post", zap.String("post_id", postID), zap.Error(err))
		return nil, NewInternalError("Failed to unlike post", err)
	}

	post, err := s.GetPost(ctx, postID)
	if err != nil {
		return nil, err
	}
	if !removed {
		return nil, NewConflictError("You have not liked this post, so you can't unlike it").
			WithField("notliked", "You have not liked this post, so you can't unlike it")
	}

	publish(ctx, s.events, s.logger, events.NewPostEvent(events.PostUnliked, userID, postID))
	return post, nil
}
