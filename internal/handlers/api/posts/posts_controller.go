// ===============================
// FILE: internal/handlers/api/posts/posts_controller.go
// ===============================

package posts

import (
	"context"
	"net/http"

	"devconnector/internal/middleware"
	"devconnector/internal/models"
	"devconnector/internal/response"
	"devconnector/internal/services"
	"devconnector/internal/utils"

	"github.com/gorilla/mux"
	"go.uber.org/zap"
)

// PostController handles post and like endpoints
type PostController struct {
	postService     services.PostService
	responseBuilder *response.Builder
	logger          *zap.Logger
}

// NewPostController creates a new post controller
func NewPostController(
	postService services.PostService,
	responseBuilder *response.Builder,
	logger *zap.Logger,
) *PostController {
	return &PostController{
		postService:     postService,
		responseBuilder: responseBuilder,
		logger:          logger,
	}
}

// ListPosts handles GET /api/posts
// @Summary All posts, newest first
// @Tags Posts
// @Produce json
// @Success 200 {array} models.Post
// @Router /posts [get]
func (c *PostController) ListPosts(w http.ResponseWriter, r *http.Request) {
	posts, err := c.postService.ListPosts(r.Context())
	if err != nil {
		c.responseBuilder.WriteError(w, r, err)
		return
	}
	c.responseBuilder.WriteSuccess(w, r, posts)
}

// GetPost handles GET /api/posts/{id}
// @Summary Post by id
// @Tags Posts
// @Produce json
// @Param id path string true "Post ID"
// @Success 200 {object} models.Post
// @Failure 404 {object} response.ErrorResponse "No post found"
// @Router /posts/{id} [get]
func (c *PostController) GetPost(w http.ResponseWriter, r *http.Request) {
	post, err := c.postService.GetPost(r.Context(), mux.Vars(r)["id"])
	if err != nil {
		c.responseBuilder.WriteError(w, r, err)
		return
	}
	c.responseBuilder.WriteSuccess(w, r, post)
}

// CreatePost handles POST /api/posts
// @Summary Create a post
// @Tags Posts
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param postRequest body services.PostRequest true "Post"
// @Success 200 {object} models.Post
// @Failure 400 {object} response.ErrorResponse
// @Router /posts [post]
func (c *PostController) CreatePost(w http.ResponseWriter, r *http.Request) {
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

	post, err := c.postService.CreatePost(ctx, &req)
	if err != nil {
		c.responseBuilder.WriteError(w, r, err)
		return
	}

	middleware.GetRequestLogger(ctx).Info("Post created", zap.String("post_id", post.ID))
	c.responseBuilder.WriteSuccess(w, r, post)
}

// DeletePost handles DELETE /api/posts/{id}
// @Summary Delete a post
// @Description Only the author can delete a post
// @Tags Posts
// @Produce json
// @Security BearerAuth
// @Param id path string true "Post ID"
// @Success 200 {object} services.DeleteResponse
// @Failure 401 {object} response.ErrorResponse "User not authorized to delete this post"
// @Failure 404 {object} response.ErrorResponse "No post found"
// @Router /posts/{id} [delete]
func (c *PostController) DeletePost(w http.ResponseWriter, r *http.Request) {
	userID := middleware.GetUserID(r.Context())
	if userID == "" {
		c.responseBuilder.WriteError(w, r, services.NewUnauthorizedError("Unauthorized"))
		return
	}

	if err := c.postService.DeletePost(r.Context(), mux.Vars(r)["id"], userID); err != nil {
		c.responseBuilder.WriteError(w, r, err)
		return
	}
	c.responseBuilder.WriteSuccess(w, r, services.DeleteResponse{Success: true})
}

// LikePost handles POST /api/posts/like/{id}
// @Summary Like a post
// @Tags Posts
// @Produce json
// @Security BearerAuth
// @Param id path string true "Post ID"
// @Success 200 {object} models.Post
// @Failure 400 {object} response.ErrorResponse "You have already liked this post"
// @Failure 404 {object} response.ErrorResponse "No post found"
// @Router /posts/like/{id} [post]
func (c *PostController) LikePost(w http.ResponseWriter, r *http.Request) {
	c.toggleLike(w, r, c.postService.LikePost)
}

// UnlikePost handles POST /api/posts/unlike/{id}
// @Summary Remove a like
// @Tags Posts
// @Produce json
// @Security BearerAuth
// @Param id path string true "Post ID"
// @Success 200 {object} models.Post
// @Failure 400 {object} response.ErrorResponse "You have not liked this post"
// @Failure 404 {object} response.ErrorResponse "No post found"
// @Router /posts/unlike/{id} [post]
func (c *PostController) UnlikePost(w http.ResponseWriter, r *http.Request) {
	c.toggleLike(w, r, c.postService.UnlikePost)
}

func (c *PostController) toggleLike(
	w http.ResponseWriter,
	r *http.Request,
	op func(ctx context.Context, postID, userID string) (*models.Post, error),
) {
	userID := middleware.GetUserID(r.Context())
	if userID == "" {
		c.responseBuilder.WriteError(w, r, services.NewUnauthorizedError("Unauthorized"))
		return
	}

	post, err := op(r.Context(), mux.Vars(r)["id"], userID)
	if err != nil {
		c.responseBuilder.WriteError(w, r, err)
		return
	}
	c.responseBuilder.WriteSuccess(w, r, post)
}
