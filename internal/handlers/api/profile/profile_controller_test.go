package profile

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

// mockProfileService records calls as "method:arg" strings
type mockProfileService struct {
	calls    []string
	profile  *models.Profile
	profiles []*models.Profile
	upsert   *services.ProfileRequest
	exp      *services.ExperienceRequest
	edu      *services.EducationRequest
	err      error
}

func (m *mockProfileService) record(call string) { m.calls = append(m.calls, call) }

func (m *mockProfileService) GetOwnProfile(ctx context.Context, userID string) (*models.Profile, error) {
	m.record("own:" + userID)
	return m.profile, m.err
}

func (m *mockProfileService) ListProfiles(ctx context.Context) ([]*models.Profile, error) {
	m.record("list")
	return m.profiles, m.err
}

func (m *mockProfileService) GetProfileByHandle(ctx context.Context, handle string) (*models.Profile, error) {
	m.record("handle:" + handle)
	return m.profile, m.err
}

func (m *mockProfileService) GetProfileByUserID(ctx context.Context, userID string) (*models.Profile, error) {
	m.record("user:" + userID)
	return m.profile, m.err
}

func (m *mockProfileService) UpsertProfile(ctx context.Context, req *services.ProfileRequest) (*models.Profile, error) {
	m.upsert = req
	return m.profile, m.err
}

func (m *mockProfileService) AddExperience(ctx context.Context, req *services.ExperienceRequest) (*models.Profile, error) {
	m.exp = req
	return m.profile, m.err
}

func (m *mockProfileService) RemoveExperience(ctx context.Context, userID, experienceID string) (*models.Profile, error) {
	m.record("rmexp:" + userID + ":" + experienceID)
	return m.profile, m.err
}

func (m *mockProfileService) AddEducation(ctx context.Context, req *services.EducationRequest) (*models.Profile, error) {
	m.edu = req
	return m.profile, m.err
}

func (m *mockProfileService) RemoveEducation(ctx context.Context, userID, educationID string) (*models.Profile, error) {
	m.record("rmedu:" + userID + ":" + educationID)
	return m.profile, m.err
}

func (m *mockProfileService) DeleteAccount(ctx context.Context, userID string) error {
	m.record("delete:" + userID)
	return m.err
}

func authed(req *http.Request, userID string) *http.Request {
	return req.WithContext(contextutils.WithUserID(req.Context(), userID))
}

func sampleProfile() *models.Profile {
	return &models.Profile{
		ID:     "profile-1",
		User:   &models.UserSummary{ID: "user-1", Name: "Alice"},
		Handle: "alice",
		Status: "Developer",
		Skills: []string{"Go", "SQL"},
	}
}

func newController(svc *mockProfileService) *ProfileController {
	return NewProfileController(svc, response.NewBuilder(nil, zap.NewNop()), zap.NewNop())
}

func TestOwnerRoutesRequireUser(t *testing.T) {
	svc := &mockProfileService{}
	c := newController(svc)

	handlers := map[string]http.HandlerFunc{
		"own":    c.GetOwnProfile,
		"upsert": c.UpsertProfile,
		"delete": c.DeleteAccount,
		"exp":    c.AddExperience,
		"rmexp":  c.RemoveExperience,
		"edu":    c.AddEducation,
		"rmedu":  c.RemoveEducation,
	}
	for name, h := range handlers {
		t.Run(name, func(t *testing.T) {
			rec := httptest.NewRecorder()
			h(rec, httptest.NewRequest(http.MethodPost, "/api/profile", strings.NewReader(`{}`)))
			assert.Equal(t, http.StatusUnauthorized, rec.Code)
		})
	}
	assert.Empty(t, svc.calls)
	assert.Nil(t, svc.upsert)
}

func TestUpsertProfile(t *testing.T) {
	svc := &mockProfileService{profile: sampleProfile()}
	c := newController(svc)

	body := `{"handle":"alice","status":"Developer","skills":"Go, SQL","twitter":"https://twitter.com/alice"}`
	rec := httptest.NewRecorder()
	c.UpsertProfile(rec, authed(httptest.NewRequest(http.MethodPost, "/api/profile", strings.NewReader(body)), "user-1"))

	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "user-1", svc.upsert.UserID)
	assert.Equal(t, "Go, SQL", svc.upsert.Skills)
	assert.Equal(t, "https://twitter.com/alice", svc.upsert.Twitter)

	var got models.Profile
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &got))
	assert.Equal(t, "alice", got.Handle)
	assert.Equal(t, []string{"Go", "SQL"}, got.Skills)
}

func TestUpsertProfileIgnoresBodyUserID(t *testing.T) {
	svc := &mockProfileService{profile: sampleProfile()}
	c := newController(svc)

	rec := httptest.NewRecorder()
	c.UpsertProfile(rec, authed(httptest.NewRequest(http.MethodPost, "/api/profile", strings.NewReader(`{"UserID":"user-2","handle":"x"}`)), "user-1"))

	assert.Equal(t, "user-1", svc.upsert.UserID)
}

func TestSubListRoutes(t *testing.T) {
	svc := &mockProfileService{profile: sampleProfile()}
	c := newController(svc)

	rec := httptest.NewRecorder()
	c.AddExperience(rec, authed(httptest.NewRequest(http.MethodPost, "/api/profile/experience",
		strings.NewReader(`{"title":"Engineer","company":"Acme","location":"Berlin","from":"2020-01-01","current":true}`)), "user-1"))
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "user-1", svc.exp.UserID)
	assert.True(t, svc.exp.Current)

	rec = httptest.NewRecorder()
	c.AddEducation(rec, authed(httptest.NewRequest(http.MethodPost, "/api/profile/education",
		strings.NewReader(`{"school":"MIT","degree":"BSc","fieldofstudy":"CS","from":"2012-09-01"}`)), "user-1"))
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "CS", svc.edu.FieldOfStudy)

	req := mux.SetURLVars(httptest.NewRequest(http.MethodDelete, "/api/profile/experience/exp-1", nil), map[string]string{"exp_id": "exp-1"})
	rec = httptest.NewRecorder()
	c.RemoveExperience(rec, authed(req, "user-1"))
	assert.Equal(t, http.StatusOK, rec.Code)

	req = mux.SetURLVars(httptest.NewRequest(http.MethodDelete, "/api/profile/education/edu-1", nil), map[string]string{"edu_id": "edu-1"})
	rec = httptest.NewRecorder()
	c.RemoveEducation(rec, authed(req, "user-1"))
	assert.Equal(t, http.StatusOK, rec.Code)

	assert.Equal(t, []string{"rmexp:user-1:exp-1", "rmedu:user-1:edu-1"}, svc.calls)

	svc.err = services.NewNotFoundError("Experience not found").WithField("experience", "Experience not found")
	req = mux.SetURLVars(httptest.NewRequest(http.MethodDelete, "/api/profile/experience/nope", nil), map[string]string{"exp_id": "nope"})
	rec = httptest.NewRecorder()
	c.RemoveExperience(rec, authed(req, "user-1"))
	assert.Equal(t, http.StatusNotFound, rec.Code)
}

func TestPublicReads(t *testing.T) {
	svc := &mockProfileService{profile: sampleProfile()}
	c := newController(svc)

	req := mux.SetURLVars(httptest.NewRequest(http.MethodGet, "/api/profile/handle/alice", nil), map[string]string{"handle": " alice "})
	rec := httptest.NewRecorder()
	c.GetByHandle(rec, req)
	assert.Equal(t, http.StatusOK, rec.Code)

	req = mux.SetURLVars(httptest.NewRequest(http.MethodGet, "/api/profile/user/user-1", nil), map[string]string{"user_id": "user-1"})
	rec = httptest.NewRecorder()
	c.GetByUserID(rec, req)
	assert.Equal(t, http.StatusOK, rec.Code)

	assert.Equal(t, []string{"handle:alice", "user:user-1"}, svc.calls)

	svc.err = services.NewNotFoundError("This handle does not exist").WithField("noprofile", "This handle does not exist")
	req = mux.SetURLVars(httptest.NewRequest(http.MethodGet, "/api/profile/handle/ghost", nil), map[string]string{"handle": "ghost"})
	rec = httptest.NewRecorder()
	c.GetByHandle(rec, req)
	assert.Equal(t, http.StatusNotFound, rec.Code)
	assert.Contains(t, rec.Body.String(), "This handle does not exist")
}

func TestListProfilesEmpty(t *testing.T) {
	svc := &mockProfileService{profiles: []*models.Profile{}}
	rec := httptest.NewRecorder()
	newController(svc).ListProfiles(rec, httptest.NewRequest(http.MethodGet, "/api/profile/all", nil))

	assert.Equal(t, http.StatusOK, rec.Code)
	assert.JSONEq(t, `[]`, rec.Body.String())
}

func TestDeleteAccount(t *testing.T) {
	svc := &mockProfileService{}
	rec := httptest.NewRecorder()
	newController(svc).DeleteAccount(rec, authed(httptest.NewRequest(http.MethodDelete, "/api/profile", nil), "user-1"))

	assert.Equal(t, http.StatusOK, rec.Code)
	assert.JSONEq(t, `{"success":true}`, rec.Body.String())
	assert.Equal(t, []string{"delete:user-1"}, svc.calls)
}
