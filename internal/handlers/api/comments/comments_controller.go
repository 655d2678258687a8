// ===============================
// FILE: internal/handlers/api/comments/comments_controller.go
// ===============================

package comments

import (
	"net/http"

	"devconnector/internal/middleware"
	"devconnector/internal/response"
	"devconnector/internal/services"
	"devconnector/internal/utils"

	"github.com/gorilla/mux"
	"go.uber.org/zap"
)

// CommentController handles comments on posts
type CommentController struct {
	commentService  services.CommentService
	responseBuilder *response.Builder
	logger          *zap.Logger
}

// NewCommentController creates a new comment controller
func NewCommentController(
	commentService services.CommentService,
	responseBuilder *response.Builder,
	logger *zap.Logger,
) *CommentController {
	return &CommentController{
		commentService:  commentService,
		responseBuilder: responseBuilder,
		logger:          logger,
	}
}

// CreateComment handles POST /api/posts/comment/{id}
// @Summary Comment on a post
// @Tags Posts
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param id path string true "Post ID"
// @Param commentRequest body services.PostRequest true "Comment"
// @Success 200 {object} models.Post
// @Failure 400 {object} response.ErrorResponse
// @Failure 404 {object} response.ErrorResponse "No post found"
// @Router /posts/comment/{id} [post]
func (c *CommentController) CreateComment(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	userID := middleware.GetUserID(ctx)
	if userID == "" {
		c.responseBuilder.WriteError(w, r, services.NewUnauthorizedError("Unauthorized"))
		return
	}

	var req services.PostRequest
	if err := utils.DecodeJSON(r, &req); err != nil {
		c.responseBuilder.WriteError(w, r, err)
		return
	}
	req.UserID = userID

	post, err := c.commentService.AddComment(ctx, mux.Vars(r)["id"], &req)
	if err != nil {
		c.responseBuilder.WriteError(w, r, err)
		return
	}
	c.responseBuilder.WriteSuccess(w, r, post)
}

// DeleteComment handles DELETE /api/posts/comment/{id}/{comment_id}
// @Summary Remove a comment
// @Description Any authenticated user may remove an existing comment
// @Tags Posts
// @Produce json
// @Security BearerAuth
// @Param id path string true "Post ID"
// @Param comment_id path string true "Comment ID"
// @Success 200 {object} models.Post
// @Failure 401 {object} response.ErrorResponse "Unauthorized"
// @Failure 404 {object} response.ErrorResponse "Comment does not exist"
// @Router /posts/comment/{id}/{comment_id} [delete]
func (c *CommentController) DeleteComment(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	userID := middleware.GetUserID(ctx)
	if userID == "" {
		c.responseBuilder.WriteError(w, r, services.NewUnauthorizedError("Unauthorized"))
		return
	}

	vars := mux.Vars(r)
	post, err := c.commentService.RemoveComment(ctx, vars["id"], vars["comment_id"], userID)
	if err != nil {
		c.responseBuilder.WriteError(w, r, err)
		return
	}

	c.logger.Debug("Comment removed",
		zap.String("post_id", vars["id"]),
		zap.String("comment_id", vars["comment_id"]),
		zap.String("user_id", userID),
	)
	c.responseBuilder.WriteSuccess(w, r, post)
}
