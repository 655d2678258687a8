// file: internal/services/types.go
package services

import (
	"time"

	"devconnector/internal/models"
)

// ===============================
// AUTH TYPES
// ===============================

// RegisterRequest represents a registration request
type RegisterRequest struct {
	Name      string `json:"name" validate:"required,notblank,min=2,max=30"`
	Email     string `json:"email" validate:"required,email"`
	Password  string `json:"password" validate:"required,min=6,max=30,maxbytes=72"`
	Password2 string `json:"password2" label:"Confirm password" validate:"required,eqfield=Password" msg:"Passwords must match"`
}

// LoginRequest represents a login request
type LoginRequest struct {
	Email    string `json:"email" validate:"required,email"`
	Password string `json:"password" validate:"required"`
}

// LoginResponse is returned on successful login
type LoginResponse struct {
	Success bool   `json:"success"`
	Token   string `json:"token"`
}

// Claims are the identity fields carried in an access token
type Claims struct {
	ID     string `json:"id"`
	Name   string `json:"name"`
	Avatar string `json:"avatar"`
}

// CurrentUserResponse is the authenticated user's own record
type CurrentUserResponse struct {
	ID     string `json:"id"`
	Name   string `json:"name"`
	Email  string `json:"email"`
	Avatar string `json:"avatar"`
}

// ===============================
// PROFILE TYPES
// ===============================

// ProfileRequest represents a profile create/update request.
// Empty optional fields leave the stored value untouched.
type ProfileRequest struct {
	UserID string `json:"-"`

	Handle         string `json:"handle" validate:"required,notblank,min=2,max=40"`
	Status         string `json:"status" validate:"required,notblank"`
	Skills         string `json:"skills" validate:"required,notblank"`
	Company        string `json:"company" validate:"omitempty,max=100"`
	Website        string `json:"website" validate:"omitempty,url"`
	Location       string `json:"location" validate:"omitempty,max=100"`
	Bio            string `json:"bio" validate:"omitempty,max=1000"`
	GitHubUsername string `json:"githubusername" validate:"omitempty,max=39"`

	YouTube   string `json:"youtube" validate:"omitempty,url"`
	Twitter   string `json:"twitter" validate:"omitempty,url"`
	Facebook  string `json:"facebook" validate:"omitempty,url"`
	LinkedIn  string `json:"linkedin" validate:"omitempty,url"`
	Instagram string `json:"instagram" validate:"omitempty,url"`
}

// SocialLinks returns the non-empty social links keyed by platform
func (r *ProfileRequest) SocialLinks() models.Social {
	return models.Social{
		"youtube":   r.YouTube,
		"twitter":   r.Twitter,
		"facebook":  r.Facebook,
		"linkedin":  r.LinkedIn,
		"instagram": r.Instagram,
	}.Sanitize()
}

// ExperienceRequest represents a new experience entry
type ExperienceRequest struct {
	UserID string `json:"-"`

	Title       string `json:"title" validate:"required,notblank"`
	Company     string `json:"company" validate:"required,notblank"`
	Location    string `json:"location" validate:"required,notblank"`
	From        string `json:"from" label:"From" validate:"required,isodate"`
	To          string `json:"to" label:"To" validate:"omitempty,isodate"`
	Current     bool   `json:"current"`
	Description string `json:"description" validate:"omitempty,max=2000"`
}

// EducationRequest represents a new education entry
type EducationRequest struct {
	UserID string `json:"-"`

	School       string `json:"school" validate:"required,notblank"`
	Degree       string `json:"degree" validate:"required,notblank"`
	FieldOfStudy string `json:"fieldofstudy" label:"Field of study" validate:"required,notblank"`
	From         string `json:"from" label:"From" validate:"required,isodate"`
	To           string `json:"to" label:"To" validate:"omitempty,isodate"`
	Current      bool   `json:"current"`
	Description  string `json:"description" validate:"omitempty,max=2000"`
}

// ===============================
// POST TYPES
// ===============================

// PostRequest represents a new post or comment
type PostRequest struct {
	UserID string `json:"-"`

	Text   string `json:"text" validate:"required,notblank"`
	Name   string `json:"name" validate:"required,notblank"`
	Avatar string `json:"avatar" validate:"required"`
}

// DeleteResponse acknowledges a removal
type DeleteResponse struct {
	Success bool `json:"success"`
}

// ===============================
// HEALTH TYPES
// ===============================

// HealthReport summarises dependency health
type HealthReport struct {
	Status    string    `json:"status"`
	Database  string    `json:"database"`
	Cache     string    `json:"cache"`
	Events    string    `json:"events"`
	Timestamp time.Time `json:"timestamp"`
}
