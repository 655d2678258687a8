// ===============================
// FILE: internal/handlers/api/users/users_controller.go
// ===============================

package users

import (
	"net/http"

	"devconnector/internal/middleware"
	"devconnector/internal/response"
	"devconnector/internal/services"
	"devconnector/internal/utils"

	"go.uber.org/zap"
)

// UserController handles registration, login and the current user
type UserController struct {
	authService     services.AuthService
	userService     services.UserService
	responseBuilder *response.Builder
	logger          *zap.Logger
}

// NewUserController creates a new user API controller
func NewUserController(
	authService services.AuthService,
	userService services.UserService,
	responseBuilder *response.Builder,
	logger *zap.Logger,
) *UserController {
	return &UserController{
		authService:     authService,
		userService:     userService,
		responseBuilder: responseBuilder,
		logger:          logger,
	}
}

// Register handles POST /api/users/register
// @Summary Register a new user
// @Description Creates an account; the avatar is derived from the email via Gravatar
// @Tags Users
// @Accept json
// @Produce json
// @Param registerRequest body services.RegisterRequest true "Registration details"
// @Success 200 {object} models.User
// @Failure 400 {object} response.ErrorResponse "Validation error or email already registered"
// @Router /users/register [post]
func (c *UserController) Register(w http.ResponseWriter, r *http.Request) {
	var req services.RegisterRequest
	if err := utils.DecodeJSON(r, &req); err != nil {
		c.responseBuilder.WriteError(w, r, err)
		return
	}

	user, err := c.authService.Register(r.Context(), &req)
	if err != nil {
		c.responseBuilder.WriteError(w, r, err)
		return
	}

	middleware.GetRequestLogger(r.Context()).Info("User registered", zap.String("user_id", user.ID))
	c.responseBuilder.WriteSuccess(w, r, user)
}

// Login handles POST /api/users/login
// @Summary Log in
// @Description Exchanges email and password for a bearer token
// @Tags Users
// @Accept json
// @Produce json
// @Param loginRequest body services.LoginRequest true "Credentials"
// @Success 200 {object} services.LoginResponse
// @Failure 400 {object} response.ErrorResponse "Validation error or incorrect password"
// @Failure 404 {object} response.ErrorResponse "User not found"
// @Failure 429 {object} response.ErrorResponse "Too many failed attempts"
// @Router /users/login [post]
func (c *UserController) Login(w http.ResponseWriter, r *http.Request) {
	var req services.LoginRequest
	if err := utils.DecodeJSON(r, &req); err != nil {
		c.responseBuilder.WriteError(w, r, err)
		return
	}

	resp, err := c.authService.Login(r.Context(), &req)
	if err != nil {
		c.responseBuilder.WriteError(w, r, err)
		return
	}

	c.responseBuilder.WriteSuccess(w, r, resp)
}

// GetCurrentUser handles GET /api/users/current
// @Summary Current user
// @Tags Users
// @Produce json
// @Security BearerAuth
// @Success 200 {object} services.CurrentUserResponse
// @Failure 401 {object} response.ErrorResponse
// @Router /users/current [get]
func (c *UserController) GetCurrentUser(w http.ResponseWriter, r *http.Request) {
	userID := middleware.GetUserID(r.Context())
	if userID == "" {
		c.responseBuilder.WriteError(w, r, services.NewUnauthorizedError("Unauthorized"))
		return
	}

	current, err := c.userService.GetCurrentUser(r.Context(), userID)
	if err != nil {
		c.responseBuilder.WriteError(w, r, err)
		return
	}

	c.responseBuilder.WriteSuccess(w, r, current)
}
