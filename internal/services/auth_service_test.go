package services

import (
	"context"
	"errors"
	"net/http"
	"strings"
	"testing"
	"time"

	"devconnector/internal/events"

	"github.com/golang-jwt/jwt/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRegister(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	user, err := f.auth.Register(ctx, &RegisterRequest{
		Name:      "  Alice  ",
		Email:     " Alice@Example.COM ",
		Password:  "secret123",
		Password2: "secret123",
	})
	require.NoError(t, err)

	assert.NotEmpty(t, user.ID)
	assert.Equal(t, "Alice", user.Name)
	assert.Equal(t, "alice@example.com", user.Email)
	assert.Equal(t, GravatarURL("alice@example.com"), user.Avatar)
	assert.NotEqual(t, "secret123", user.PasswordHash)
	assert.Contains(t, f.bus.types(), events.UserRegistered)

	t.Run("duplicate email", func(t *testing.T) {
		_, err := f.auth.Register(ctx, &RegisterRequest{
			Name:      "Other",
			Email:     "ALICE@example.com",
			Password:  "secret123",
			Password2: "secret123",
		})
		se := requireServiceError(t, err, ErrTypeConflict)
		assert.Equal(t, http.StatusBadRequest, se.GetStatusCode())
		assert.Equal(t, "Email is already registered", fieldMessage(se, "email"))
	})

	t.Run("validation", func(t *testing.T) {
		_, err := f.auth.Register(ctx, &RegisterRequest{
			Name:      "A",
			Email:     "not-an-email",
			Password:  "123",
			Password2: "456",
		})
		se := requireServiceError(t, err, ErrTypeValidation)
		assert.NotEmpty(t, fieldMessage(se, "name"))
		assert.NotEmpty(t, fieldMessage(se, "email"))
		assert.NotEmpty(t, fieldMessage(se, "password"))
		assert.Equal(t, "Passwords must match", fieldMessage(se, "password2"))
	})

	t.Run("multibyte password over the bcrypt limit", func(t *testing.T) {
		password := strings.Repeat("😀", 30)
		_, err := f.auth.Register(ctx, &RegisterRequest{
			Name:      "Dave",
			Email:     "dave@example.com",
			Password:  password,
			Password2: password,
		})
		se := requireServiceError(t, err, ErrTypeValidation)
		assert.Equal(t, http.StatusBadRequest, se.GetStatusCode())
		assert.Equal(t, "Password must be at most 72 bytes", fieldMessage(se, "password"))

		// 60 bytes still fits
		password = strings.Repeat("é", 30)
		_, err = f.auth.Register(ctx, &RegisterRequest{
			Name:      "Dave",
			Email:     "dave@example.com",
			Password:  password,
			Password2: password,
		})
		require.NoError(t, err)
	})

	t.Run("storage failure is masked", func(t *testing.T) {
		f.users.err = errors.New("connection refused")
		defer func() { f.users.err = nil }()

		_, err := f.auth.Register(ctx, &RegisterRequest{
			Name:      "Bob",
			Email:     "bob@example.com",
			Password:  "secret123",
			Password2: "secret123",
		})
		se := requireServiceError(t, err, ErrTypeInternal)
		assert.Equal(t, http.StatusInternalServerError, se.GetStatusCode())
		assert.NotContains(t, se.Message, "connection refused")
	})
}

func TestGravatarURL(t *testing.T) {
	assert.Equal(t,
		"//www.gravatar.com/avatar/0bc83cb571cd1c50ba6f3e8a78ef1346?s=200&r=pg&d=mm",
		GravatarURL(" MyEmailAddress@example.com "))
}

func TestLogin(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	user := f.register(t, "Alice", "alice@example.com")

	resp, err := f.auth.Login(ctx, &LoginRequest{Email: "ALICE@example.com", Password: "secret123"})
	require.NoError(t, err)
	assert.True(t, resp.Success)
	require.True(t, strings.HasPrefix(resp.Token, BearerPrefix))
	assert.Contains(t, f.bus.types(), events.UserLoggedIn)

	claims, err := f.auth.ParseToken(strings.TrimPrefix(resp.Token, BearerPrefix))
	require.NoError(t, err)
	assert.Equal(t, user.ID, claims.ID)
	assert.Equal(t, "Alice", claims.Name)
	assert.Equal(t, user.Avatar, claims.Avatar)

	t.Run("unknown email", func(t *testing.T) {
		_, err := f.auth.Login(ctx, &LoginRequest{Email: "nobody@example.com", Password: "secret123"})
		se := requireServiceError(t, err, ErrTypeNotFound)
		assert.Equal(t, "User not found", fieldMessage(se, "email"))
	})

	t.Run("wrong password", func(t *testing.T) {
		_, err := f.auth.Login(ctx, &LoginRequest{Email: "alice@example.com", Password: "wrong-one"})
		se := requireServiceError(t, err, ErrTypeValidation)
		assert.Equal(t, "Password is incorrect", fieldMessage(se, "password"))
	})

	t.Run("missing fields", func(t *testing.T) {
		_, err := f.auth.Login(ctx, &LoginRequest{})
		se := requireServiceError(t, err, ErrTypeValidation)
		assert.NotEmpty(t, fieldMessage(se, "email"))
		assert.NotEmpty(t, fieldMessage(se, "password"))
	})
}

func TestLoginUniformErrors(t *testing.T) {
	f := newFixture(t)
	f.authCfg.UniformLoginErrors = true
	f.register(t, "Alice", "alice@example.com")
	ctx := context.Background()

	_, errUnknown := f.auth.Login(ctx, &LoginRequest{Email: "nobody@example.com", Password: "secret123"})
	_, errWrong := f.auth.Login(ctx, &LoginRequest{Email: "alice@example.com", Password: "wrong-one"})

	unknown := requireServiceError(t, errUnknown, ErrTypeValidation)
	wrong := requireServiceError(t, errWrong, ErrTypeValidation)
	assert.Equal(t, unknown.Message, wrong.Message)
	assert.Equal(t, unknown.Fields, wrong.Fields)
}

func TestLoginLockout(t *testing.T) {
	f := newFixture(t)
	f.register(t, "Alice", "alice@example.com")
	ctx := context.Background()
	bad := &LoginRequest{Email: "alice@example.com", Password: "wrong-one"}

	for i := 0; i < f.authCfg.MaxLoginAttempts; i++ {
		_, err := f.auth.Login(ctx, bad)
		requireServiceError(t, err, ErrTypeValidation)
	}

	// Even the right password is refused while locked out
	_, err := f.auth.Login(ctx, &LoginRequest{Email: "alice@example.com", Password: "secret123"})
	se := requireServiceError(t, err, ErrTypeRateLimited)
	assert.Equal(t, http.StatusTooManyRequests, se.GetStatusCode())

	require.NoError(t, f.cache.ClearFailedLogins(ctx, "alice@example.com"))
	_, err = f.auth.Login(ctx, &LoginRequest{Email: "alice@example.com", Password: "secret123"})
	require.NoError(t, err)
}

func TestLoginSuccessResetsFailures(t *testing.T) {
	f := newFixture(t)
	f.register(t, "Alice", "alice@example.com")
	ctx := context.Background()

	_, err := f.auth.Login(ctx, &LoginRequest{Email: "alice@example.com", Password: "wrong-one"})
	require.Error(t, err)
	assert.Equal(t, int64(1), f.cache.FailedLogins(ctx, "alice@example.com"))

	_, err = f.auth.Login(ctx, &LoginRequest{Email: "alice@example.com", Password: "secret123"})
	require.NoError(t, err)
	assert.Equal(t, int64(0), f.cache.FailedLogins(ctx, "alice@example.com"))
}

func TestParseToken(t *testing.T) {
	f := newFixture(t)
	user := f.register(t, "Alice", "alice@example.com")

	valid, err := f.auth.IssueToken(user)
	require.NoError(t, err)

	t.Run("valid", func(t *testing.T) {
		claims, err := f.auth.ParseToken(valid)
		require.NoError(t, err)
		assert.Equal(t, user.ID, claims.ID)
	})

	t.Run("tampered", func(t *testing.T) {
		_, err := f.auth.ParseToken(valid + "x")
		se := requireServiceError(t, err, ErrTypeUnauthorized)
		assert.Equal(t, "Invalid token", se.Message)
	})

	t.Run("other secret", func(t *testing.T) {
		token := jwt.NewWithClaims(jwt.SigningMethodHS256, jwt.MapClaims{
			"id":  user.ID,
			"exp": time.Now().Add(time.Hour).Unix(),
		})
		signed, err := token.SignedString([]byte("a-completely-different-secret"))
		require.NoError(t, err)

		_, err = f.auth.ParseToken(signed)
		requireServiceError(t, err, ErrTypeUnauthorized)
	})

	t.Run("other algorithm", func(t *testing.T) {
		token := jwt.NewWithClaims(jwt.SigningMethodHS512, jwt.MapClaims{
			"id":  user.ID,
			"exp": time.Now().Add(time.Hour).Unix(),
		})
		signed, err := token.SignedString([]byte(f.authCfg.JWTSecret))
		require.NoError(t, err)

		_, err = f.auth.ParseToken(signed)
		requireServiceError(t, err, ErrTypeUnauthorized)
	})

	t.Run("none algorithm", func(t *testing.T) {
		token := jwt.NewWithClaims(jwt.SigningMethodNone, jwt.MapClaims{
			"id":  user.ID,
			"exp": time.Now().Add(time.Hour).Unix(),
		})
		signed, err := token.SignedString(jwt.UnsafeAllowNoneSignatureType)
		require.NoError(t, err)

		_, err = f.auth.ParseToken(signed)
		requireServiceError(t, err, ErrTypeUnauthorized)
	})

	t.Run("expired", func(t *testing.T) {
		f.auth.now = func() time.Time { return time.Now().Add(2 * time.Hour) }
		defer func() { f.auth.now = time.Now }()

		_, err := f.auth.ParseToken(valid)
		se := requireServiceError(t, err, ErrTypeUnauthorized)
		assert.Equal(t, "Token has expired", se.Message)
	})
}

func TestAuthenticate(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	user := f.register(t, "Alice", "alice@example.com")

	token, err := f.auth.IssueToken(user)
	require.NoError(t, err)

	claims, err := f.auth.Authenticate(ctx, "Bearer "+token)
	require.NoError(t, err)
	assert.Equal(t, user.ID, claims.ID)

	claims, err = f.auth.Authenticate(ctx, "bearer "+token)
	require.NoError(t, err)
	assert.Equal(t, user.ID, claims.ID)

	for _, header := range []string{"", token, "Basic " + token, "Bearer"} {
		_, err := f.auth.Authenticate(ctx, header)
		requireServiceError(t, err, ErrTypeUnauthorized)
	}

	t.Run("deleted user", func(t *testing.T) {
		require.NoError(t, f.profile.DeleteAccount(ctx, user.ID))

		_, err := f.auth.Authenticate(ctx, "Bearer "+token)
		requireServiceError(t, err, ErrTypeUnauthorized)
	})
}

func TestGetCurrentUser(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	user := f.register(t, "Alice", "alice@example.com")

	current, err := f.user.GetCurrentUser(ctx, user.ID)
	require.NoError(t, err)
	assert.Equal(t, &CurrentUserResponse{
		ID:     user.ID,
		Name:   "Alice",
		Email:  "alice@example.com",
		Avatar: user.Avatar,
	}, current)

	// Second read is served from the cache
	f.users.err = errors.New("database down")
	defer func() { f.users.err = nil }()
	_, err = f.user.GetUserByID(ctx, user.ID)
	require.NoError(t, err)

	_, err = f.user.GetUserByID(ctx, "missing")
	requireServiceError(t, err, ErrTypeInternal)
}
