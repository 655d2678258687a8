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

// commentService implements CommentService
type commentService struct {
	postRepo repositories.PostRepository
	events   events.EventBus
	logger   *zap.Logger
}

// NewCommentService creates a new comment service
func NewCommentService(
	postRepo repositories.PostRepository,
	eventBus events.EventBus,
	logger *zap.Logger,
) CommentService {
	return &commentService{
		postRepo: postRepo,
		events:   eventBus,
		logger:   logger,
	}
}

// AddComment puts a new comment at the head of the post's comment list
func (s *commentService) AddComment(ctx context.Context, postID string, req *PostRequest) (*models.Post, error) {
	if err := validation.ValidateStruct(req); err != nil {
		return nil, NewValidationError("Validation failed", err)
	}

	comment := &models.Comment{
		UserID: req.UserID,
		Text:   strings.TrimSpace(req.Text),
		Name:   strings.TrimSpace(req.Name),
		Avatar: req.Avatar,
	}

	if err := s.postRepo.AddComment(ctx, postID, comment); err != nil {
		if errors.Is(err, repositories.ErrNotFound) {
			return nil, postNotFoundError()
		}
		s.logger.Error("Failed to add comment", zap.String("post_id", postID), zap.Error(err))
		return nil, NewInternalError("Failed to add comment", err)
	}

	publish(ctx, s.events, s.logger, events.NewCommentEvent(events.CommentAdded, req.UserID, postID, comment.ID))
	return loadPost(ctx, s.postRepo, s.logger, postID)
}

// RemoveComment deletes a comment from a post on behalf of any authenticated user
func (s *commentService) RemoveComment(ctx context.Context, postID, commentID, userID string) (*models.Post, error) {
	post, err := loadPost(ctx, s.postRepo, s.logger, postID)
	if err != nil {
		return nil, err
	}

	if post.FindComment(commentID) == nil {
		return nil, commentNotFoundError()
	}

	if err := s.postRepo.RemoveComment(ctx, postID, commentID); err != nil {
		if errors.Is(err, repositories.ErrNotFound) {
			return nil, commentNotFoundError()
		}
		s.logger.Error("Failed to remove comment",
			zap.String("post_id", postID),
			zap.String("comment_id", commentID),
			zap.Error(err))
		return nil, NewInternalError("Failed to remove comment", err)
	}

	publish(ctx, s.events, s.logger, events.NewCommentEvent(events.CommentRemoved, userID, postID, commentID))
	return loadPost(ctx, s.postRepo, s.logger, postID)
}

func commentNotFoundError() *ServiceError {
	return NewNotFoundError("Comment does not exist").WithField("nocomment", "Comment does not exist")
}
