package services

import (
	"context"
	"errors"
	"strings"
	"time"

	"devconnector/internal/events"
	"devconnector/internal/models"
	"devconnector/internal/repositories"
	"devconnector/internal/validation"

	"go.uber.org/zap"
)

// profileService implements ProfileService
type profileService struct {
	profileRepo repositories.ProfileRepository
	cache       CacheService
	events      events.EventBus
	logger      *zap.Logger
}

// NewProfileService creates a new profile service
func NewProfileService(
	profileRepo repositories.ProfileRepository,
	cache CacheService,
	eventBus events.EventBus,
	logger *zap.Logger,
) ProfileService {
	return &profileService{
		profileRepo: profileRepo,
		cache:       cache,
		events:      eventBus,
		logger:      logger,
	}
}

func noProfileError() *ServiceError {
	return NewNotFoundError("There is no profile for this user").
		WithField("noprofile", "There is no profile for this user")
}

// ===============================
// READS
// ===============================

// GetOwnProfile returns the caller's profile
func (s *profileService) GetOwnProfile(ctx context.Context, userID string) (*models.Profile, error) {
	profile, err := s.profileRepo.GetByUserID(ctx, userID)
	if err != nil {
		s.logger.Error("Failed to get profile", zap.String("user_id", userID), zap.Error(err))
		return nil, NewInternalError("Failed to load profile", err)
	}
	if profile == nil {
		return nil, noProfileError()
	}
	return profile, nil
}

// ListProfiles returns every profile, newest first
func (s *profileService) ListProfiles(ctx context.Context) ([]*models.Profile, error) {
	profiles, err := s.profileRepo.List(ctx)
	if err != nil {
		s.logger.Error("Failed to list profiles", zap.Error(err))
		return nil, NewInternalError("Failed to load profiles", err)
	}
	return profiles, nil
}

// GetProfileByHandle returns a public profile by handle, reading through the cache
func (s *profileService) GetProfileByHandle(ctx context.Context, handle string) (*models.Profile, error) {
	handle = strings.TrimSpace(handle)
	if handle == "" {
		return nil, handleNotFoundError()
	}

	if profile, ok := s.cache.GetProfileByHandle(ctx, handle); ok {
		return profile, nil
	}

	profile, err := s.profileRepo.GetByHandle(ctx, handle)
	if err != nil {
		s.logger.Error("Failed to get profile by handle", zap.String("handle", handle), zap.Error(err))
		return nil, NewInternalError("Failed to load profile", err)
	}
	if profile == nil {
		return nil, handleNotFoundError()
	}

	_ = s.cache.SetProfileByHandle(ctx, profile)
	return profile, nil
}

func handleNotFoundError() *ServiceError {
	return NewNotFoundError("This handle does not exist").
		WithField("noprofile", "This handle does not exist")
}

// GetProfileByUserID returns a public profile by owner id
func (s *profileService) GetProfileByUserID(ctx context.Context, userID string) (*models.Profile, error) {
	profile, err := s.profileRepo.GetByUserID(ctx, strings.TrimSpace(userID))
	if err != nil {
		s.logger.Error("Failed to get profile by user", zap.String("user_id", userID), zap.Error(err))
		return nil, NewInternalError("Failed to load profile", err)
	}
	if profile == nil {
		return nil, NewNotFoundError("There is no profile with this id").
			WithField("noprofile", "There is no profile with this id")
	}
	return profile, nil
}

// ===============================
// UPSERT
// ===============================

// UpsertProfile creates the caller's profile or merges the request into it
func (s *profileService) UpsertProfile(ctx context.Context, req *ProfileRequest) (*models.Profile, error) {
	req.Handle = strings.TrimSpace(req.Handle)
	skills := ParseSkills(req.Skills)

	var fieldErrs validation.Errors
	if err := validation.ValidateStruct(req); err != nil {
		if !errors.As(err, &fieldErrs) {
			return nil, NewValidationError("Validation failed", err)
		}
	}
	if len(skills) == 0 {
		fieldErrs = fieldErrs.Add("skills", "Skills field is required", "required")
	}
	if len(fieldErrs) > 0 {
		return nil, NewValidationError("Validation failed", fieldErrs)
	}

	previous, err := s.profileRepo.GetByUserID(ctx, req.UserID)
	if err != nil {
		s.logger.Error("Failed to load profile before upsert", zap.Error(err))
		return nil, NewInternalError("Failed to save profile", err)
	}

	fields := &repositories.ProfileFields{
		Handle:         req.Handle,
		Status:         strings.TrimSpace(req.Status),
		Skills:         skills,
		Company:        optional(req.Company),
		Website:        optional(req.Website),
		Location:       optional(req.Location),
		Bio:            optional(req.Bio),
		GitHubUsername: optional(req.GitHubUsername),
		Social:         req.SocialLinks(),
	}

	profile, err := s.profileRepo.Upsert(ctx, req.UserID, fields)
	if err != nil {
		switch {
		case errors.Is(err, repositories.ErrDuplicate):
			return nil, NewConflictError("The handle already exists").
				WithField("handle", "The handle already exists")
		case errors.Is(err, repositories.ErrNotFound):
			return nil, NewNotFoundError("User not found").WithField("user", "User not found")
		}
		s.logger.Error("Failed to upsert profile", zap.String("user_id", req.UserID), zap.Error(err))
		return nil, NewInternalError("Failed to save profile", err)
	}

	previousHandle := ""
	if previous != nil {
		previousHandle = previous.Handle
	}
	_ = s.cache.InvalidateHandles(ctx, previousHandle, profile.Handle)
	publish(ctx, s.events, s.logger, events.NewProfileUpdatedEvent(req.UserID, profile.Handle, previousHandle))

	return profile, nil
}

// ParseSkills splits a comma-separated list, trimming entries and dropping empty ones.
// Order is kept.
func ParseSkills(raw string) []string {
	parts := strings.Split(raw, ",")
	skills := make([]string, 0, len(parts))
	for _, p := range parts {
		if p = strings.TrimSpace(p); p != "" {
			skills = append(skills, p)
		}
	}
	return skills
}

func optional(v string) *string {
	v = strings.TrimSpace(v)
	if v == "" {
		return nil
	}
	return &v
}

// ===============================
// EXPERIENCE & EDUCATION
// ===============================

// AddExperience puts a new entry at the head of the caller's experience list
func (s *profileService) AddExperience(ctx context.Context, req *ExperienceRequest) (*models.Profile, error) {
	if err := validation.ValidateStruct(req); err != nil {
		return nil, NewValidationError("Validation failed", err)
	}

	from, to, err := parseRange(req.From, req.To)
	if err != nil {
		return nil, err
	}

	exp := &models.Experience{
		Title:       strings.TrimSpace(req.Title),
		Company:     strings.TrimSpace(req.Company),
		Location:    strings.TrimSpace(req.Location),
		From:        from,
		To:          to,
		Current:     req.Current,
		Description: req.Description,
	}

	if err := s.profileRepo.AddExperience(ctx, req.UserID, exp); err != nil {
		return nil, s.subListError("add experience", err, noProfileError())
	}
	return s.reload(ctx, req.UserID)
}

// RemoveExperience deletes one of the caller's experience entries
func (s *profileService) RemoveExperience(ctx context.Context, userID, experienceID string) (*models.Profile, error) {
	if err := s.profileRepo.RemoveExperience(ctx, userID, experienceID); err != nil {
		return nil, s.subListError("remove experience", err,
			NewNotFoundError("Experience not found").WithField("experience", "Experience not found"))
	}
	return s.reload(ctx, userID)
}

// AddEducation puts a new entry at the head of the caller's education list
func (s *profileService) AddEducation(ctx context.Context, req *EducationRequest) (*models.Profile, error) {
	if err := validation.ValidateStruct(req); err != nil {
		return nil, NewValidationError("Validation failed", err)
	}

	from, to, err := parseRange(req.From, req.To)
	if err != nil {
		return nil, err
	}

	edu := &models.Education{
		School:       strings.TrimSpace(req.School),
		Degree:       strings.TrimSpace(req.Degree),
		FieldOfStudy: strings.TrimSpace(req.FieldOfStudy),
		From:         from,
		To:           to,
		Current:      req.Current,
		Description:  req.Description,
	}

	if err := s.profileRepo.AddEducation(ctx, req.UserID, edu); err != nil {
		return nil, s.subListError("add education", err, noProfileError())
	}
	return s.reload(ctx, req.UserID)
}

// RemoveEducation deletes one of the caller's education entries
func (s *profileService) RemoveEducation(ctx context.Context, userID, educationID string) (*models.Profile, error) {
	if err := s.profileRepo.RemoveEducation(ctx, userID, educationID); err != nil {
		return nil, s.subListError("remove education", err,
			NewNotFoundError("Education not found").WithField("education", "Education not found"))
	}
	return s.reload(ctx, userID)
}

func (s *profileService) subListError(op string, err error, notFound *ServiceError) error {
	if errors.Is(err, repositories.ErrNotFound) {
		return notFound
	}
	s.logger.Error("Failed to "+op, zap.Error(err))
	return NewInternalError("Failed to update profile", err)
}

// reload returns the fresh profile after a sub-list change and drops its cached copy
func (s *profileService) reload(ctx context.Context, userID string) (*models.Profile, error) {
	profile, err := s.GetOwnProfile(ctx, userID)
	if err != nil {
		return nil, err
	}
	_ = s.cache.InvalidateHandles(ctx, profile.Handle)
	publish(ctx, s.events, s.logger, events.NewProfileUpdatedEvent(userID, profile.Handle, profile.Handle))
	return profile, nil
}

func parseRange(fromRaw, toRaw string) (time.Time, *time.Time, error) {
	from, err := validation.ParseDate(fromRaw)
	if err != nil {
		return time.Time{}, nil, NewFieldError("from", "From date is invalid")
	}
	if strings.TrimSpace(toRaw) == "" {
		return from, nil, nil
	}
	to, err := validation.ParseDate(toRaw)
	if err != nil {
		return time.Time{}, nil, NewFieldError("to", "To date is invalid")
	}
	return from, &to, nil
}

// ===============================
// DELETE
// ===============================

// DeleteAccount removes the caller's profile and user record
func (s *profileService) DeleteAccount(ctx context.Context, userID string) error {
	profile, err := s.profileRepo.GetByUserID(ctx, userID)
	if err != nil {
		s.logger.Error("Failed to load profile before delete", zap.Error(err))
		return NewInternalError("Failed to delete account", err)
	}

	if err := s.profileRepo.DeleteWithUser(ctx, userID); err != nil {
		if errors.Is(err, repositories.ErrNotFound) {
			return NewNotFoundError("User not found").WithField("user", "User not found")
		}
		s.logger.Error("Failed to delete account", zap.String("user_id", userID), zap.Error(err))
		return NewInternalError("Failed to delete account", err)
	}

	handle := ""
	if profile != nil {
		handle = profile.Handle
		_ = s.cache.InvalidateHandles(ctx, handle)
	}
	_ = s.cache.InvalidateUser(ctx, userID)
	publish(ctx, s.events, s.logger, events.NewAccountDeletedEvent(userID, handle))

	s.logger.Info("Account deleted", zap.String("user_id", userID))
	return nil
}

