package repositories

import (
	"context"
	"database/sql"
	"devconnector/internal/database"
	"devconnector/internal/models"
	"fmt"
	"time"

	"github.com/lib/pq"
	"go.uber.org/zap"
)

// profileRepository implements ProfileRepository
type profileRepository struct {
	*BaseRepository
}

// NewProfileRepository creates a new profile repository
func NewProfileRepository(db *database.Manager, logger *zap.Logger) ProfileRepository {
	return &profileRepository{
		BaseRepository: NewBaseRepository(db, logger),
	}
}

const profileSelect = `
	SELECT p.id, p.user_id, p.handle, p.company, p.website, p.location, p.status,
	       p.skills, p.bio, p.githubusername, p.social, p.created_at, p.updated_at,
	       u.name, u.avatar
	FROM profiles p
	JOIN users u ON u.id = p.user_id`

// ===============================
// READS
// ===============================

// GetByUserID retrieves the profile owned by a user
func (r *profileRepository) GetByUserID(ctx context.Context, userID string) (*models.Profile, error) {
	if !validID(userID) {
		return nil, nil
	}
	return r.getOne(ctx, profileSelect+` WHERE p.user_id = $1`, userID)
}

// GetByHandle retrieves a profile by its public handle
func (r *profileRepository) GetByHandle(ctx context.Context, handle string) (*models.Profile, error) {
	return r.getOne(ctx, profileSelect+` WHERE p.handle = $1`, handle)
}

// List retrieves all profiles, newest first
func (r *profileRepository) List(ctx context.Context) ([]*models.Profile, error) {
	rows, err := r.QueryContext(ctx, profileSelect+` ORDER BY p.created_at DESC`)
	if err != nil {
		return nil, fmt.Errorf("failed to list profiles: %w", err)
	}
	defer rows.Close()

	profiles := make([]*models.Profile, 0)
	for rows.Next() {
		profile, err := scanProfile(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan profile: %w", err)
		}
		profiles = append(profiles, profile)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to iterate profiles: %w", err)
	}

	if err := r.loadSubLists(ctx, profiles); err != nil {
		return nil, err
	}
	return profiles, nil
}

func (r *profileRepository) getOne(ctx context.Context, query string, arg interface{}) (*models.Profile, error) {
	profile, err := scanProfile(r.QueryRowContext(ctx, query, arg))
	if err != nil {
		if r.IsNotFound(err) {
			return nil, nil
		}
		return nil, fmt.Errorf("failed to get profile: %w", err)
	}

	if err := r.loadSubLists(ctx, []*models.Profile{profile}); err != nil {
		return nil, err
	}
	return profile, nil
}

type rowScanner interface {
	Scan(dest ...interface{}) error
}

func scanProfile(row rowScanner) (*models.Profile, error) {
	p := &models.Profile{User: &models.UserSummary{}}
	err := row.Scan(
		&p.ID, &p.UserID, &p.Handle, &p.Company, &p.Website, &p.Location, &p.Status,
		pq.Array(&p.Skills), &p.Bio, &p.GitHubUsername, &p.Social, &p.CreatedAt, &p.UpdatedAt,
		&p.User.Name, &p.User.Avatar,
	)
	if err != nil {
		return nil, err
	}

	p.User.ID = p.UserID
	if p.Skills == nil {
		p.Skills = []string{}
	}
	p.Experience = []models.Experience{}
	p.Education = []models.Education{}
	return p, nil
}

// loadSubLists fills experience and education for a batch of profiles, most recent entry first
func (r *profileRepository) loadSubLists(ctx context.Context, profiles []*models.Profile) error {
	if len(profiles) == 0 {
		return nil
	}

	byID := make(map[string]*models.Profile, len(profiles))
	ids := make([]string, 0, len(profiles))
	for _, p := range profiles {
		byID[p.ID] = p
		ids = append(ids, p.ID)
	}

	expRows, err := r.QueryContext(ctx, `
		SELECT profile_id, id, title, company, location, from_date, to_date, current, description
		FROM profile_experience
		WHERE profile_id = ANY($1)
		ORDER BY seq DESC`, pq.Array(ids))
	if err != nil {
		return fmt.Errorf("failed to load experience: %w", err)
	}
	defer expRows.Close()

	for expRows.Next() {
		var profileID string
		var to sql.NullTime
		var exp models.Experience
		if err := expRows.Scan(&profileID, &exp.ID, &exp.Title, &exp.Company, &exp.Location,
			&exp.From, &to, &exp.Current, &exp.Description); err != nil {
			return fmt.Errorf("failed to scan experience: %w", err)
		}
		exp.To = nullTimePtr(to)
		if p, ok := byID[profileID]; ok {
			p.Experience = append(p.Experience, exp)
		}
	}
	if err := expRows.Err(); err != nil {
		return fmt.Errorf("failed to iterate experience: %w", err)
	}

	eduRows, err := r.QueryContext(ctx, `
		SELECT profile_id, id, school, degree, fieldofstudy, from_date, to_date, current, description
		FROM profile_education
		WHERE profile_id = ANY($1)
		ORDER BY seq DESC`, pq.Array(ids))
	if err != nil {
		return fmt.Errorf("failed to load education: %w", err)
	}
	defer eduRows.Close()

	for eduRows.Next() {
		var profileID string
		var to sql.NullTime
		var edu models.Education
		if err := eduRows.Scan(&profileID, &edu.ID, &edu.School, &edu.Degree, &edu.FieldOfStudy,
			&edu.From, &to, &edu.Current, &edu.Description); err != nil {
			return fmt.Errorf("failed to scan education: %w", err)
		}
		edu.To = nullTimePtr(to)
		if p, ok := byID[profileID]; ok {
			p.Education = append(p.Education, edu)
		}
	}
	if err := eduRows.Err(); err != nil {
		return fmt.Errorf("failed to iterate education: %w", err)
	}

	return nil
}

// ===============================
// WRITES
// ===============================

// Upsert creates the profile or merges the given fields into it.
// The unique index on user_id makes concurrent first writes converge on one row;
// the unique index on handle rejects a taken handle on both paths.
func (r *profileRepository) Upsert(ctx context.Context, userID string, fields *ProfileFields) (*models.Profile, error) {
	id, err := newID()
	if err != nil {
		return nil, err
	}

	social := fields.Social
	if social == nil {
		social = models.Social{}
	}

	query := `
		INSERT INTO profiles (id, user_id, handle, status, skills,
		                      company, website, location, bio, githubusername, social)
		VALUES ($1, $2, $3, $4, $5,
		        COALESCE($6::text, ''), COALESCE($7::text, ''), COALESCE($8::text, ''),
		        COALESCE($9::text, ''), COALESCE($10::text, ''), $11::jsonb)
		ON CONFLICT (user_id) DO UPDATE SET
			handle         = EXCLUDED.handle,
			status         = EXCLUDED.status,
			skills         = EXCLUDED.skills,
			company        = COALESCE($6::text, profiles.company),
			website        = COALESCE($7::text, profiles.website),
			location       = COALESCE($8::text, profiles.location),
			bio            = COALESCE($9::text, profiles.bio),
			githubusername = COALESCE($10::text, profiles.githubusername),
			social         = profiles.social || EXCLUDED.social,
			updated_at     = NOW()`

	_, err = r.ExecContext(ctx, query,
		id, userID, fields.Handle, fields.Status, pq.Array(fields.Skills),
		fields.Company, fields.Website, fields.Location, fields.Bio, fields.GitHubUsername,
		social,
	)
	if err != nil {
		return nil, fmt.Errorf("failed to upsert profile: %w", classifyError(err))
	}

	profile, err := r.GetByUserID(ctx, userID)
	if err != nil {
		return nil, err
	}
	if profile == nil {
		return nil, fmt.Errorf("profile for user %s vanished after upsert: %w", userID, ErrNotFound)
	}

	r.logger.Info("Profile upserted",
		zap.String("user_id", userID),
		zap.String("handle", profile.Handle))
	return profile, nil
}

// AddExperience inserts an entry at the head of the user's experience list
func (r *profileRepository) AddExperience(ctx context.Context, userID string, exp *models.Experience) error {
	if !validID(userID) {
		return ErrNotFound
	}

	id, err := newID()
	if err != nil {
		return err
	}

	query := `
		INSERT INTO profile_experience (id, profile_id, title, company, location, from_date, to_date, current, description)
		SELECT $2, p.id, $3, $4, $5, $6, $7, $8, $9
		FROM profiles p
		WHERE p.user_id = $1`

	result, err := r.ExecContext(ctx, query,
		userID, id, exp.Title, exp.Company, exp.Location, exp.From, exp.To, exp.Current, exp.Description)
	if err != nil {
		return fmt.Errorf("failed to add experience: %w", classifyError(err))
	}

	if ok, err := rowsAffected(result); err != nil {
		return err
	} else if !ok {
		return ErrNotFound
	}

	exp.ID = id
	return nil
}

// RemoveExperience deletes one of the user's experience entries
func (r *profileRepository) RemoveExperience(ctx context.Context, userID, experienceID string) error {
	return r.removeEntry(ctx, "profile_experience", userID, experienceID)
}

// AddEducation inserts an entry at the head of the user's education list
func (r *profileRepository) AddEducation(ctx context.Context, userID string, edu *models.Education) error {
	if !validID(userID) {
		return ErrNotFound
	}

	id, err := newID()
	if err != nil {
		return err
	}

	query := `
		INSERT INTO profile_education (id, profile_id, school, degree, fieldofstudy, from_date, to_date, current, description)
		SELECT $2, p.id, $3, $4, $5, $6, $7, $8, $9
		FROM profiles p
		WHERE p.user_id = $1`

	result, err := r.ExecContext(ctx, query,
		userID, id, edu.School, edu.Degree, edu.FieldOfStudy, edu.From, edu.To, edu.Current, edu.Description)
	if err != nil {
		return fmt.Errorf("failed to add education: %w", classifyError(err))
	}

	if ok, err := rowsAffected(result); err != nil {
		return err
	} else if !ok {
		return ErrNotFound
	}

	edu.ID = id
	return nil
}

// RemoveEducation deletes one of the user's education entries
func (r *profileRepository) RemoveEducation(ctx context.Context, userID, educationID string) error {
	return r.removeEntry(ctx, "profile_education", userID, educationID)
}

// removeEntry deletes a sub-list row only when it belongs to the user's profile
func (r *profileRepository) removeEntry(ctx context.Context, table, userID, entryID string) error {
	if !validID(userID) || !validID(entryID) {
		return ErrNotFound
	}

	query := fmt.Sprintf(`
		DELETE FROM %s e
		USING profiles p
		WHERE e.profile_id = p.id AND p.user_id = $1 AND e.id = $2`, table)

	result, err := r.ExecContext(ctx, query, userID, entryID)
	if err != nil {
		return fmt.Errorf("failed to remove entry from %s: %w", table, classifyError(err))
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

// DeleteWithUser removes the user's profile and the user in one transaction.
// Posts, likes and comments go with the user through ON DELETE CASCADE.
func (r *profileRepository) DeleteWithUser(ctx context.Context, userID string) error {
	if !validID(userID) {
		return ErrNotFound
	}

	return r.WithTransaction(ctx, func(tx *sql.Tx) error {
		if _, err := tx.ExecContext(ctx, `DELETE FROM profiles WHERE user_id = $1`, userID); err != nil {
			return fmt.Errorf("failed to delete profile: %w", err)
		}

		result, err := tx.ExecContext(ctx, `DELETE FROM users WHERE id = $1`, userID)
		if err != nil {
			return fmt.Errorf("failed to delete user: %w", err)
		}

		ok, err := rowsAffected(result)
		if err != nil {
			return err
		}
		if !ok {
			return ErrNotFound
		}

		r.logger.Info("Profile and user deleted", zap.String("user_id", userID))
		return nil
	})
}

func nullTimePtr(t sql.NullTime) *time.Time {
	if !t.Valid {
		return nil
	}
	v := t.Time
	return &v
}
