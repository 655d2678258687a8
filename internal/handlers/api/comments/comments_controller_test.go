package comments

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"devconnector/internal/contextutils"
	"devconnector/internal/models"
	"devconnector/internal/response"
	"devconnector/internal/services"

	"github.com/gorilla/mux"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

// mockCommentService is a simplified mock implementation for testing
type mockCommentService struct {
	addPostID string
	added     *services.PostRequest
	removed   []string
	post      *models.Post
	err       error
}

func (m *mockCommentService) AddComment(ctx context.Context, postID string, req *services.PostRequest) (*models.Post, error) {
	m.addPostID = postID
	m.added = req
	return m.post, m.err
}

func (m *mockCommentService) RemoveComment(ctx context.Context, postID, commentID, userID string) (*models.Post, error) {
	m.removed = []string{postID, commentID, userID}
	return m.post, m.err
}

func setupController(svc *mockCommentService) *CommentController {
	return NewCommentController(svc, response.NewBuilder(nil, zap.NewNop()), zap.NewNop())
}

func TestCreateComment(t *testing.T) {
	svc := &mockCommentService{post: &models.Post{
		ID:       "post-1",
		Comments: []models.Comment{{ID: "c-1", UserID: "user-2", Text: "nice"}},
	}}
	controller := setupController(svc)

	req := httptest.NewRequest(http.MethodPost, "/api/posts/comment/post-1", strings.NewReader(`{"text":"nice","name":"Bob","avatar":"//gravatar"}`))
	req = mux.SetURLVars(req, map[string]string{"id": "post-1"})
	req = req.WithContext(contextutils.WithUserID(req.Context(), "user-2"))

	rec := httptest.NewRecorder()
	controller.CreateComment(rec, req)

	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "post-1", svc.addPostID)
	assert.Equal(t, "user-2", svc.added.UserID)
	assert.Equal(t, "nice", svc.added.Text)

	var post models.Post
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &post))
	require.Len(t, post.Comments, 1)
	assert.Equal(t, "c-1", post.Comments[0].ID)
}

func TestCreateCommentErrors(t *testing.T) {
	t.Run("unauthenticated", func(t *testing.T) {
		svc := &mockCommentService{}
		rec := httptest.NewRecorder()
		setupController(svc).CreateComment(rec, httptest.NewRequest(http.MethodPost, "/api/posts/comment/post-1", strings.NewReader(`{}`)))

		assert.Equal(t, http.StatusUnauthorized, rec.Code)
		assert.Nil(t, svc.added)
	})

	t.Run("validation", func(t *testing.T) {
		svc := &mockCommentService{err: services.NewFieldError("text", "Text field is required")}
		req := httptest.NewRequest(http.MethodPost, "/api/posts/comment/post-1", strings.NewReader(`{}`))
		req = req.WithContext(contextutils.WithUserID(mux.SetURLVars(req, map[string]string{"id": "post-1"}).Context(), "user-2"))

		rec := httptest.NewRecorder()
		setupController(svc).CreateComment(rec, req)

		assert.Equal(t, http.StatusBadRequest, rec.Code)
		var env response.ErrorResponse
		require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &env))
		require.Len(t, env.Error.Fields, 1)
		assert.Equal(t, "text", env.Error.Fields[0].Field)
	})
}

func TestDeleteComment(t *testing.T) {
	svc := &mockCommentService{post: &models.Post{ID: "post-1", Comments: []models.Comment{}}}
	controller := setupController(svc)

	req := httptest.NewRequest(http.MethodDelete, "/api/posts/comment/post-1/c-1", nil)
	req = mux.SetURLVars(req, map[string]string{"id": "post-1", "comment_id": "c-1"})
	authed := req.WithContext(contextutils.WithUserID(req.Context(), "user-3"))

	rec := httptest.NewRecorder()
	controller.DeleteComment(rec, authed)
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, []string{"post-1", "c-1", "user-3"}, svc.removed)

	svc.removed = nil
	rec = httptest.NewRecorder()
	controller.DeleteComment(rec, req)
	assert.Equal(t, http.StatusUnauthorized, rec.Code)
	assert.Nil(t, svc.removed)

	svc.err = services.NewNotFoundError("Comment does not exist").WithField("nocomment", "Comment does not exist")
	rec = httptest.NewRecorder()
	controller.DeleteComment(rec, authed)
	assert.Equal(t, http.StatusNotFound, rec.Code)
}
