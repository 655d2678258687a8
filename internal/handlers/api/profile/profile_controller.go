// ===============================
// FILE: internal/handlers/api/profile/profile_controller.go
// ===============================

package profile

import (
	"net/http"
	"strings"

	"devconnector/internal/middleware"
	"devconnector/internal/response"
	"devconnector/internal/services"
	"devconnector/internal/utils"

	"github.com/gorilla/mux"
	"go.uber.org/zap"
)

// ProfileController handles profile API endpoints
type ProfileController struct {
	profileService  services.ProfileService
	responseBuilder *response.Builder
	logger          *zap.Logger
}

// NewProfileController creates a new profile controller
func NewProfileController(
	profileService services.ProfileService,
	responseBuilder *response.Builder,
	logger *zap.Logger,
) *ProfileController {
	return &ProfileController{
		profileService:  profileService,
		responseBuilder: responseBuilder,
		logger:          logger,
	}
}

// requireUser returns the authenticated user id or writes a 401
func (c *ProfileController) requireUser(w http.ResponseWriter, r *http.Request) (string, bool) {
	userID := middleware.GetUserID(r.Context())
	if userID == "" {
		c.responseBuilder.WriteError(w, r, services.NewUnauthorizedError("Unauthorized"))
		return "", false
	}
	return userID, true
}

// ===============================
// OWNER OPERATIONS
// ===============================

// GetOwnProfile handles GET /api/profile
// @Summary Current user's profile
// @Tags Profile
// @Produce json
// @Security BearerAuth
// @Success 200 {object} models.Profile
// @Failure 404 {object} response.ErrorResponse "There is no profile for this user"
// @Router /profile [get]
func (c *ProfileController) GetOwnProfile(w http.ResponseWriter, r *http.Request) {
	userID, ok := c.requireUser(w, r)
	if !ok {
		return
	}

	p, err := c.profileService.GetOwnProfile(r.Context(), userID)
	if err != nil {
		c.responseBuilder.WriteError(w, r, err)
		return
	}
	c.responseBuilder.WriteSuccess(w, r, p)
}

// UpsertProfile handles POST /api/profile
// @Summary Create or update the current user's profile
// @Description Absent optional fields keep their stored value; skills is a comma-separated list
// @Tags Profile
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param profileRequest body services.ProfileRequest true "Profile fields"
// @Success 200 {object} models.Profile
// @Failure 400 {object} response.ErrorResponse "Validation error or handle taken"
// @Router /profile [post]
func (c *ProfileController) UpsertProfile(w http.ResponseWriter, r *http.Request) {
	userID, ok := c.requireUser(w, r)
	if !ok {
		return
	}

	var req services.ProfileRequest
	if err := utils.DecodeJSON(r, &req); err != nil {
		c.responseBuilder.WriteError(w, r, err)
		return
	}
	req.UserID = userID

	p, err := c.profileService.UpsertProfile(r.Context(), &req)
	if err != nil {
		c.responseBuilder.WriteError(w, r, err)
		return
	}
	c.responseBuilder.WriteSuccess(w, r, p)
}

// DeleteAccount handles DELETE /api/profile
// @Summary Delete the current user's profile and account
// @Tags Profile
// @Produce json
// @Security BearerAuth
// @Success 200 {object} services.DeleteResponse
// @Router /profile [delete]
func (c *ProfileController) DeleteAccount(w http.ResponseWriter, r *http.Request) {
	userID, ok := c.requireUser(w, r)
	if !ok {
		return
	}

	if err := c.profileService.DeleteAccount(r.Context(), userID); err != nil {
		c.responseBuilder.WriteError(w, r, err)
		return
	}

	middleware.GetRequestLogger(r.Context()).Info("Account deleted", zap.String("user_id", userID))
	c.responseBuilder.WriteSuccess(w, r, services.DeleteResponse{Success: true})
}

// AddExperience handles POST /api/profile/experience
// @Summary Add an experience entry
// @Tags Profile
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param experienceRequest body services.ExperienceRequest true "Experience"
// @Success 200 {object} models.Profile
// @Failure 400 {object} response.ErrorResponse
// @Failure 404 {object} response.ErrorResponse
// @Router /profile/experience [post]
func (c *ProfileController) AddExperience(w http.ResponseWriter, r *http.Request) {
	userID, ok := c.requireUser(w, r)
	if !ok {
		return
	}

	var req services.ExperienceRequest
	if err := utils.DecodeJSON(r, &req); err != nil {
		c.responseBuilder.WriteError(w, r, err)
		return
	}
	req.UserID = userID

	p, err := c.profileService.AddExperience(r.Context(), &req)
	if err != nil {
		c.responseBuilder.WriteError(w, r, err)
		return
	}
	c.responseBuilder.WriteSuccess(w, r, p)
}

// RemoveExperience handles DELETE /api/profile/experience/{exp_id}
// @Summary Remove an experience entry
// @Tags Profile
// @Produce json
// @Security BearerAuth
// @Param exp_id path string true "Experience ID"
// @Success 200 {object} models.Profile
// @Failure 404 {object} response.ErrorResponse
// @Router /profile/experience/{exp_id} [delete]
func (c *ProfileController) RemoveExperience(w http.ResponseWriter, r *http.Request) {
	userID, ok := c.requireUser(w, r)
	if !ok {
		return
	}

	p, err := c.profileService.RemoveExperience(r.Context(), userID, mux.Vars(r)["exp_id"])
	if err != nil {
		c.responseBuilder.WriteError(w, r, err)
		return
	}
	c.responseBuilder.WriteSuccess(w, r, p)
}

// AddEducation handles POST /api/profile/education
// @Summary Add an education entry
// @Tags Profile
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param educationRequest body services.EducationRequest true "Education"
// @Success 200 {object} models.Profile
// @Failure 400 {object} response.ErrorResponse
// @Failure 404 {object} response.ErrorResponse
// @Router /profile/education [post]
func (c *ProfileController) AddEducation(w http.ResponseWriter, r *http.Request) {
	userID, ok := c.requireUser(w, r)
	if !ok {
		return
	}

	var req services.EducationRequest
	if err := utils.DecodeJSON(r, &req); err != nil {
		c.responseBuilder.WriteError(w, r, err)
		return
	}
	req.UserID = userID

	p, err := c.profileService.AddEducation(r.Context(), &req)
	if err != nil {
		c.responseBuilder.WriteError(w, r, err)
		return
	}
	c.responseBuilder.WriteSuccess(w, r, p)
}

// RemoveEducation handles DELETE /api/profile/education/{edu_id}
// @Summary Remove an education entry
// @Tags Profile
// @Produce json
// @Security BearerAuth
// @Param edu_id path string true "Education ID"
// @Success 200 {object} models.Profile
// @Failure 404 {object} response.ErrorResponse
// @Router /profile/education/{edu_id} [delete]
func (c *ProfileController) RemoveEducation(w http.ResponseWriter, r *http.Request) {
	userID, ok := c.requireUser(w, r)
	if !ok {
		return
	}

	p, err := c.profileService.RemoveEducation(r.Context(), userID, mux.Vars(r)["edu_id"])
	if err != nil {
		c.responseBuilder.WriteError(w, r, err)
		return
	}
	c.responseBuilder.WriteSuccess(w, r, p)
}

// ===============================
// PUBLIC READS
// ===============================

// ListProfiles handles GET /api/profile/all
// @Summary All profiles
// @Tags Profile
// @Produce json
// @Success 200 {array} models.Profile
// @Router /profile/all [get]
func (c *ProfileController) ListProfiles(w http.ResponseWriter, r *http.Request) {
	profiles, err := c.profileService.ListProfiles(r.Context())
	if err != nil {
		c.responseBuilder.WriteError(w, r, err)
		return
	}
	c.responseBuilder.WriteSuccess(w, r, profiles)
}

// GetByHandle handles GET /api/profile/handle/{handle}
// @Summary Profile by handle
// @Tags Profile
// @Produce json
// @Param handle path string true "Handle"
// @Success 200 {object} models.Profile
// @Failure 404 {object} response.ErrorResponse "This handle does not exist"
// @Router /profile/handle/{handle} [get]
func (c *ProfileController) GetByHandle(w http.ResponseWriter, r *http.Request) {
	handle := strings.TrimSpace(mux.Vars(r)["handle"])

	p, err := c.profileService.GetProfileByHandle(r.Context(), handle)
	if err != nil {
		c.responseBuilder.WriteError(w, r, err)
		return
	}
	c.responseBuilder.WriteSuccess(w, r, p)
}

// GetByUserID handles GET /api/profile/user/{user_id}
// @Summary Profile by user id
// @Tags Profile
// @Produce json
// @Param user_id path string true "User ID"
// @Success 200 {object} models.Profile
// @Failure 404 {object} response.ErrorResponse "There is no profile with this id"
// @Router /profile/user/{user_id} [get]
func (c *ProfileController) GetByUserID(w http.ResponseWriter, r *http.Request) {
	p, err := c.profileService.GetProfileByUserID(r.Context(), mux.Vars(r)["user_id"])
	if err != nil {
		c.responseBuilder.WriteError(w, r, err)
		return
	}
	c.responseBuilder.WriteSuccess(w, r, p)
}
