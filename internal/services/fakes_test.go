package services

import (
	"context"
	"fmt"
	"sync"
	"testing"
	"time"

	"devconnector/internal/cache"
	"devconnector/internal/config"
	"devconnector/internal/events"
	"devconnector/internal/models"
	"devconnector/internal/repositories"

	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

// ===============================
// FAKE REPOSITORIES
// ===============================

type fakeUserRepo struct {
	mu     sync.Mutex
	users  map[string]*models.User
	nextID int
	err    error
}

func newFakeUserRepo() *fakeUserRepo {
	return &fakeUserRepo{users: make(map[string]*models.User)}
}

func (r *fakeUserRepo) Create(ctx context.Context, user *models.User) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.err != nil {
		return r.err
	}
	for _, u := range r.users {
		if u.Email == user.Email {
			return &repositories.DuplicateError{Constraint: "users_email_key"}
		}
	}
	r.nextID++
	user.ID = fmt.Sprintf("user-%d", r.nextID)
	user.CreatedAt = time.Now()
	copied := *user
	r.users[user.ID] = &copied
	return nil
}

func (r *fakeUserRepo) GetByID(ctx context.Context, id string) (*models.User, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.err != nil {
		return nil, r.err
	}
	if u, ok := r.users[id]; ok {
		copied := *u
		return &copied, nil
	}
	return nil, nil
}

func (r *fakeUserRepo) GetByEmail(ctx context.Context, email string) (*models.User, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.err != nil {
		return nil, r.err
	}
	for _, u := range r.users {
		if u.Email == email {
			copied := *u
			return &copied, nil
		}
	}
	return nil, nil
}

type fakeProfileRepo struct {
	mu       sync.Mutex
	users    *fakeUserRepo
	profiles map[string]*models.Profile // by user id
	nextID   int
}

func newFakeProfileRepo(users *fakeUserRepo) *fakeProfileRepo {
	return &fakeProfileRepo{users: users, profiles: make(map[string]*models.Profile)}
}

func (r *fakeProfileRepo) id(prefix string) string {
	r.nextID++
	return fmt.Sprintf("%s-%d", prefix, r.nextID)
}

func cloneProfile(p *models.Profile) *models.Profile {
	c := *p
	c.Skills = append([]string{}, p.Skills...)
	c.Experience = append([]models.Experience{}, p.Experience...)
	c.Education = append([]models.Education{}, p.Education...)
	c.Social = models.Social{}
	for k, v := range p.Social {
		c.Social[k] = v
	}
	return &c
}

func (r *fakeProfileRepo) GetByUserID(ctx context.Context, userID string) (*models.Profile, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if p, ok := r.profiles[userID]; ok {
		return cloneProfile(p), nil
	}
	return nil, nil
}

func (r *fakeProfileRepo) GetByHandle(ctx context.Context, handle string) (*models.Profile, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, p := range r.profiles {
		if p.Handle == handle {
			return cloneProfile(p), nil
		}
	}
	return nil, nil
}

func (r *fakeProfileRepo) List(ctx context.Context) ([]*models.Profile, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	out := make([]*models.Profile, 0, len(r.profiles))
	for _, p := range r.profiles {
		out = append(out, cloneProfile(p))
	}
	return out, nil
}

func (r *fakeProfileRepo) Upsert(ctx context.Context, userID string, fields *repositories.ProfileFields) (*models.Profile, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	for uid, p := range r.profiles {
		if uid != userID && p.Handle == fields.Handle {
			return nil, &repositories.DuplicateError{Constraint: "profiles_handle_key"}
		}
	}

	p, ok := r.profiles[userID]
	if !ok {
		if u, _ := r.users.GetByID(ctx, userID); u == nil {
			return nil, repositories.ErrNotFound
		}
		p = &models.Profile{
			ID:         r.id("profile"),
			UserID:     userID,
			User:       &models.UserSummary{ID: userID},
			Social:     models.Social{},
			Experience: []models.Experience{},
			Education:  []models.Education{},
			CreatedAt:  time.Now(),
		}
		r.profiles[userID] = p
	}

	p.Handle = fields.Handle
	p.Status = fields.Status
	p.Skills = fields.Skills
	set := func(dst *string, v *string) {
		if v != nil {
			*dst = *v
		}
	}
	set(&p.Company, fields.Company)
	set(&p.Website, fields.Website)
	set(&p.Location, fields.Location)
	set(&p.Bio, fields.Bio)
	set(&p.GitHubUsername, fields.GitHubUsername)
	for k, v := range fields.Social {
		p.Social[k] = v
	}
	return cloneProfile(p), nil
}

func (r *fakeProfileRepo) AddExperience(ctx context.Context, userID string, exp *models.Experience) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	p, ok := r.profiles[userID]
	if !ok {
		return repositories.ErrNotFound
	}
	exp.ID = r.id("exp")
	p.Experience = append([]models.Experience{*exp}, p.Experience...)
	return nil
}

func (r *fakeProfileRepo) RemoveExperience(ctx context.Context, userID, experienceID string) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	p, ok := r.profiles[userID]
	if !ok {
		return repositories.ErrNotFound
	}
	for i, e := range p.Experience {
		if e.ID == experienceID {
			p.Experience = append(p.Experience[:i], p.Experience[i+1:]...)
			return nil
		}
	}
	return repositories.ErrNotFound
}

func (r *fakeProfileRepo) AddEducation(ctx context.Context, userID string, edu *models.Education) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	p, ok := r.profiles[userID]
	if !ok {
		return repositories.ErrNotFound
	}
	edu.ID = r.id("edu")
	p.Education = append([]models.Education{*edu}, p.Education...)
	return nil
}

func (r *fakeProfileRepo) RemoveEducation(ctx context.Context, userID, educationID string) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	p, ok := r.profiles[userID]
	if !ok {
		return repositories.ErrNotFound
	}
	for i, e := range p.Education {
		if e.ID == educationID {
			p.Education = append(p.Education[:i], p.Education[i+1:]...)
			return nil
		}
	}
	return repositories.ErrNotFound
}

func (r *fakeProfileRepo) DeleteWithUser(ctx context.Context, userID string) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.users.mu.Lock()
	defer r.users.mu.Unlock()
	if _, ok := r.users.users[userID]; !ok {
		return repositories.ErrNotFound
	}
	delete(r.profiles, userID)
	delete(r.users.users, userID)
	return nil
}

type fakePostRepo struct {
	mu     sync.Mutex
	posts  map[string]*models.Post
	nextID int
}

func newFakePostRepo() *fakePostRepo {
	return &fakePostRepo{posts: make(map[string]*models.Post)}
}

func clonePost(p *models.Post) *models.Post {
	c := *p
	c.Likes = append([]models.Like{}, p.Likes...)
	c.Comments = append([]models.Comment{}, p.Comments...)
	return &c
}

func (r *fakePostRepo) Create(ctx context.Context, post *models.Post) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.nextID++
	post.ID = fmt.Sprintf("post-%d", r.nextID)
	post.Likes = []models.Like{}
	post.Comments = []models.Comment{}
	post.CreatedAt = time.Now()
	r.posts[post.ID] = clonePost(post)
	return nil
}

func (r *fakePostRepo) GetByID(ctx context.Context, id string) (*models.Post, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if p, ok := r.posts[id]; ok {
		return clonePost(p), nil
	}
	return nil, nil
}

func (r *fakePostRepo) List(ctx context.Context) ([]*models.Post, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	out := make([]*models.Post, 0, len(r.posts))
	for _, p := range r.posts {
		out = append(out, clonePost(p))
	}
	return out, nil
}

func (r *fakePostRepo) Delete(ctx context.Context, id string) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, ok := r.posts[id]; !ok {
		return repositories.ErrNotFound
	}
	delete(r.posts, id)
	return nil
}

func (r *fakePostRepo) AddLike(ctx context.Context, postID, userID string) (bool, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	p, ok := r.posts[postID]
	if !ok {
		return false, repositories.ErrNotFound
	}
	if p.LikedBy(userID) {
		return false, nil
	}
	p.Likes = append([]models.Like{{UserID: userID}}, p.Likes...)
	return true, nil
}

func (r *fakePostRepo) RemoveLike(ctx context.Context, postID, userID string) (bool, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	p, ok := r.posts[postID]
	if !ok {
		return false, nil
	}
	for i, l := range p.Likes {
		if l.UserID == userID {
			p.Likes = append(p.Likes[:i], p.Likes[i+1:]...)
			return true, nil
		}
	}
	return false, nil
}

func (r *fakePostRepo) AddComment(ctx context.Context, postID string, comment *models.Comment) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	p, ok := r.posts[postID]
	if !ok {
		return repositories.ErrNotFound
	}
	r.nextID++
	comment.ID = fmt.Sprintf("comment-%d", r.nextID)
	comment.CreatedAt = time.Now()
	p.Comments = append([]models.Comment{*comment}, p.Comments...)
	return nil
}

func (r *fakePostRepo) RemoveComment(ctx context.Context, postID, commentID string) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	p, ok := r.posts[postID]
	if !ok {
		return repositories.ErrNotFound
	}
	for i, c := range p.Comments {
		if c.ID == commentID {
			p.Comments = append(p.Comments[:i], p.Comments[i+1:]...)
			return nil
		}
	}
	return repositories.ErrNotFound
}

// ===============================
// RECORDING EVENT BUS
// ===============================

type recordingBus struct {
	events.EventBus
	mu     sync.Mutex
	events []events.Event
}

func newRecordingBus(t *testing.T) *recordingBus {
	bus := events.NewInMemoryEventBus(events.DefaultEventBusConfig(), zap.NewNop())
	require.NoError(t, bus.Start(context.Background()))
	t.Cleanup(func() {
		ctx, cancel := context.WithTimeout(context.Background(), time.Second)
		defer cancel()
		_ = bus.Stop(ctx)
	})
	return &recordingBus{EventBus: bus}
}

func (b *recordingBus) record(e events.Event) {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.events = append(b.events, e)
}

func (b *recordingBus) Publish(ctx context.Context, e events.Event) error {
	b.record(e)
	return b.EventBus.Publish(ctx, e)
}

func (b *recordingBus) PublishAsync(ctx context.Context, e events.Event) error {
	b.record(e)
	return b.EventBus.PublishAsync(ctx, e)
}

func (b *recordingBus) types() []string {
	b.mu.Lock()
	defer b.mu.Unlock()
	out := make([]string, 0, len(b.events))
	for _, e := range b.events {
		out = append(out, e.GetEventType())
	}
	return out
}

// ===============================
// FIXTURE
// ===============================

type fixture struct {
	users    *fakeUserRepo
	profiles *fakeProfileRepo
	posts    *fakePostRepo
	backend  cache.Cache
	cache    CacheService
	bus      *recordingBus
	authCfg  *config.AuthConfig

	auth    *authService
	user    UserService
	profile ProfileService
	post    PostService
	comment CommentService
}

func newFixture(t *testing.T) *fixture {
	t.Helper()
	logger := zap.NewNop()

	f := &fixture{
		users:   newFakeUserRepo(),
		posts:   newFakePostRepo(),
		backend: cache.NewMemoryCache(cache.DefaultConfig(), logger),
		bus:     newRecordingBus(t),
		authCfg: &config.AuthConfig{
			JWTSecret:        "test-secret-test-secret-test-secret",
			JWTExpiry:        time.Hour,
			BCryptCost:       4,
			MaxLoginAttempts: 3,
			LockoutDuration:  time.Minute,
		},
	}
	t.Cleanup(func() { _ = f.backend.Close() })

	f.profiles = newFakeProfileRepo(f.users)
	f.cache = NewCacheService(f.backend, logger, nil)
	f.user = NewUserService(f.users, f.cache, logger)
	f.auth = NewAuthService(f.users, f.user, f.cache, f.bus, logger, f.authCfg).(*authService)
	f.profile = NewProfileService(f.profiles, f.cache, f.bus, logger)
	f.post = NewPostService(f.posts, f.bus, logger)
	f.comment = NewCommentService(f.posts, f.bus, logger)
	return f
}

func (f *fixture) register(t *testing.T, name, email string) *models.User {
	t.Helper()
	user, err := f.auth.Register(context.Background(), &RegisterRequest{
		Name:      name,
		Email:     email,
		Password:  "secret123",
		Password2: "secret123",
	})
	require.NoError(t, err)
	return user
}

// requireServiceError asserts err is a ServiceError of the given type and returns it
func requireServiceError(t *testing.T, err error, errType string) *ServiceError {
	t.Helper()
	require.Error(t, err)
	se := GetServiceError(err)
	require.Equal(t, errType, se.Type, "unexpected error: %v", err)
	return se
}

func fieldMessage(se *ServiceError, field string) string {
	for _, f := range se.Fields {
		if f.Field == field {
			return f.Message
		}
	}
	return ""
}
