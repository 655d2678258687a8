package repositories

import (
	"context"
	"devconnector/internal/database"
	"devconnector/internal/models"
	"fmt"

	"github.com/lib/pq"
	"go.uber.org/zap"
)

// postRepository implements PostRepository
type postRepository struct {
	*BaseRepository
}

// NewPostRepository creates a new post repository
func NewPostRepository(db *database.Manager, logger *zap.Logger) PostRepository {
	return &postRepository{
		BaseRepository: NewBaseRepository(db, logger),
	}
}

const postColumns = `id, user_id, text, name, avatar, created_at`

// Create inserts a new post
func (r *postRepository) Create(ctx context.Context, post *models.Post) error {
	id, err := newID()
	if err != nil {
		return err
	}

	query := `
		INSERT INTO posts (id, user_id, text, name, avatar)
		VALUES ($1, $2, $3, $4, $5)
		RETURNING created_at`

	err = r.QueryRowContext(ctx, query,
		id, post.UserID, post.Text, post.Name, post.Avatar,
	).Scan(&post.CreatedAt)
	if err != nil {
		return fmt.Errorf("failed to create post: %w", classifyError(err))
	}

	post.ID = id
	post.Likes = []models.Like{}
	post.Comments = []models.Comment{}

	r.logger.Info("Post created",
		zap.String("post_id", id),
		zap.String("user_id", post.UserID))
	return nil
}

// GetByID retrieves a post with its likes and comments
func (r *postRepository) GetByID(ctx context.Context, id string) (*models.Post, error) {
	if !validID(id) {
		return nil, nil
	}

	post := &models.Post{}
	err := r.QueryRowContext(ctx, `SELECT `+postColumns+` FROM posts WHERE id = $1`, id).Scan(
		&post.ID, &post.UserID, &post.Text, &post.Name, &post.Avatar, &post.CreatedAt,
	)
	if err != nil {
		if r.IsNotFound(err) {
			return nil, nil
		}
		return nil, fmt.Errorf("failed to get post: %w", err)
	}

	if err := r.loadChildren(ctx, []*models.Post{post}); err != nil {
		return nil, err
	}
	return post, nil
}

// List retrieves all posts, newest first
func (r *postRepository) List(ctx context.Context) ([]*models.Post, error) {
	rows, err := r.QueryContext(ctx, `SELECT `+postColumns+` FROM posts ORDER BY created_at DESC`)
	if err != nil {
		return nil, fmt.Errorf("failed to list posts: %w", err)
	}
	defer rows.Close()

	posts := make([]*models.Post, 0)
	for rows.Next() {
		post := &models.Post{}
		if err := rows.Scan(&post.ID, &post.UserID, &post.Text, &post.Name, &post.Avatar, &post.CreatedAt); err != nil {
			return nil, fmt.Errorf("failed to scan post: %w", err)
		}
		posts = append(posts, post)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to iterate posts: %w", err)
	}

	if err := r.loadChildren(ctx, posts); err != nil {
		return nil, err
	}
	return posts, nil
}

// loadChildren batch loads likes and comments, most recent first
func (r *postRepository) loadChildren(ctx context.Context, posts []*models.Post) error {
	if len(posts) == 0 {
		return nil
	}

	byID := make(map[string]*models.Post, len(posts))
	ids := make([]string, 0, len(posts))
	for _, p := range posts {
		p.Likes = []models.Like{}
		p.Comments = []models.Comment{}
		byID[p.ID] = p
		ids = append(ids, p.ID)
	}

	likeRows, err := r.QueryContext(ctx, `
		SELECT post_id, user_id
		FROM post_likes
		WHERE post_id = ANY($1)
		ORDER BY seq DESC`, pq.Array(ids))
	if err != nil {
		return fmt.Errorf("failed to load likes: %w", err)
	}
	defer likeRows.Close()

	for likeRows.Next() {
		var postID string
		var like models.Like
		if err := likeRows.Scan(&postID, &like.UserID); err != nil {
			return fmt.Errorf("failed to scan like: %w", err)
		}
		if p, ok := byID[postID]; ok {
			p.Likes = append(p.Likes, like)
		}
	}
	if err := likeRows.Err(); err != nil {
		return fmt.Errorf("failed to iterate likes: %w", err)
	}

	commentRows, err := r.QueryContext(ctx, `
		SELECT post_id, id, user_id, text, name, avatar, created_at
		FROM post_comments
		WHERE post_id = ANY($1)
		ORDER BY seq DESC`, pq.Array(ids))
	if err != nil {
		return fmt.Errorf("failed to load comments: %w", err)
	}
	defer commentRows.Close()

	for commentRows.Next() {
		var postID string
		var c models.Comment
		if err := commentRows.Scan(&postID, &c.ID, &c.UserID, &c.Text, &c.Name, &c.Avatar, &c.CreatedAt); err != nil {
			return fmt.Errorf("failed to scan comment: %w", err)
		}
		if p, ok := byID[postID]; ok {
			p.Comments = append(p.Comments, c)
		}
	}
	if err := commentRows.Err(); err != nil {
		return fmt.Errorf("failed to iterate comments: %w", err)
	}

	return nil
}

// Delete removes a post. Likes and comments cascade.
func (r *postRepository) Delete(ctx context.Context, id string) error {
	if !validID(id) {
		return ErrNotFound
	}

	result, err := r.ExecContext(ctx, `DELETE FROM posts WHERE id = $1`, id)
	if err != nil {
		return fmt.Errorf("failed to delete post: %w", classifyError(err))
	}

	ok, err := rowsAffected(result)
	if err != nil {
		return err
	}
	if !ok {
		return ErrNotFound
	}

	r.logger.Info("Post deleted", zap.String("post_id", id))
	return nil
}

// ===============================
// LIKES
// ===============================

// AddLike records a like; the primary key keeps it to one per user
func (r *postRepository) AddLike(ctx context.Context, postID, userID string) (bool, error) {
	if !validID(postID) || !validID(userID) {
		return false, ErrNotFound
	}

	query := `
		INSERT INTO post_likes (post_id, user_id)
		VALUES ($1, $2)
		ON CONFLICT (post_id, user_id) DO NOTHING`

	result, err := r.ExecContext(ctx, query, postID, userID)
	if err != nil {
		return false, fmt.Errorf("failed to like post: %w", classifyError(err))
	}
	return rowsAffected(result)
}

// RemoveLike deletes the user's like
func (r *postRepository) RemoveLike(ctx context.Context, postID, userID string) (bool, error) {
	if !validID(postID) || !validID(userID) {
		return false, nil
	}

	result, err := r.ExecContext(ctx,
		`DELETE FROM post_likes WHERE post_id = $1 AND user_id = $2`, postID, userID)
	if err != nil {
		return false, fmt.Errorf("failed to unlike post: %w", classifyError(err))
	}
	return rowsAffected(result)
}

// ===============================
// COMMENTS
// ===============================

// AddComment attaches a comment to a post
func (r *postRepository) AddComment(ctx context.Context, postID string, comment *models.Comment) error {
	if !validID(postID) {
		return ErrNotFound
	}

	id, err := newID()
	if err != nil {
		return err
	}

	query := `
		INSERT INTO post_comments (id, post_id, user_id, text, name, avatar)
		VALUES ($1, $2, $3, $4, $5, $6)
		RETURNING created_at`

	err = r.QueryRowContext(ctx, query,
		id, postID, comment.UserID, comment.Text, comment.Name, comment.Avatar,
	).Scan(&comment.CreatedAt)
	if err != nil {
		return fmt.Errorf("failed to add comment: %w", classifyError(err))
	}

	comment.ID = id
	return nil
}

// RemoveComment deletes a comment from a post
func (r *postRepository) RemoveComment(ctx context.Context, postID, commentID string) error {
	if !validID(postID) || !validID(commentID) {
		return ErrNotFound
	}

	result, err := r.ExecContext(ctx,
		`DELETE FROM post_comments WHERE id = $1 AND post_id = $2`, commentID, postID)
	if err != nil {
		return fmt.Errorf("failed to remove comment: %w", classifyError(err))
	}

	ok, err := rowsAffected(result)
	if err != nil {
		return err
	}
	if !ok {
		return ErrNotFound
	}
	return nil
}
