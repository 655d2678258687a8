// file: internal/models/models.go
package models

import (
	"database/sql/driver"
	"encoding/json"
	"fmt"
	"time"

	"golang.org/x/exp/slices"
)

// ===============================
// CORE ENTITIES
// ===============================

// User is an account holder. The password hash never leaves the server.
type User struct {
	ID           string    `json:"id" db:"id"`
	Name         string    `json:"name" db:"name"`
	Email        string    `json:"email" db:"email"`
	PasswordHash string    `json:"-" db:"password_hash"`
	Avatar       string    `json:"avatar" db:"avatar"`
	CreatedAt    time.Time `json:"date" db:"created_at"`
}

// UserSummary is the populated user reference on a profile
type UserSummary struct {
	ID     string `json:"id"`
	Name   string `json:"name"`
	Avatar string `json:"avatar"`
}

// Profile is the professional profile owned by exactly one user
type Profile struct {
	ID             string       `json:"id" db:"id"`
	UserID         string       `json:"-" db:"user_id"`
	User           *UserSummary `json:"user"`
	Handle         string       `json:"handle" db:"handle"`
	Company        string       `json:"company,omitempty" db:"company"`
	Website        string       `json:"website,omitempty" db:"website"`
	Location       string       `json:"location,omitempty" db:"location"`
	Status         string       `json:"status" db:"status"`
	Skills         []string     `json:"skills" db:"skills"`
	Bio            string       `json:"bio,omitempty" db:"bio"`
	GitHubUsername string       `json:"githubusername,omitempty" db:"githubusername"`
	Social         Social       `json:"social" db:"social"`
	Experience     []Experience `json:"experience"`
	Education      []Education  `json:"education"`
	CreatedAt      time.Time    `json:"date" db:"created_at"`
	UpdatedAt      time.Time    `json:"updated_at" db:"updated_at"`
}

// Experience is one entry of a profile's work history, most recent first
type Experience struct {
	ID          string     `json:"id" db:"id"`
	Title       string     `json:"title" db:"title"`
	Company     string     `json:"company" db:"company"`
	Location    string     `json:"location,omitempty" db:"location"`
	From        time.Time  `json:"from" db:"from_date"`
	To          *time.Time `json:"to,omitempty" db:"to_date"`
	Current     bool       `json:"current" db:"current"`
	Description string     `json:"description,omitempty" db:"description"`
}

// Education is one entry of a profile's education history, most recent first
type Education struct {
	ID           string     `json:"id" db:"id"`
	School       string     `json:"school" db:"school"`
	Degree       string     `json:"degree" db:"degree"`
	FieldOfStudy string     `json:"fieldofstudy" db:"fieldofstudy"`
	From         time.Time  `json:"from" db:"from_date"`
	To           *time.Time `json:"to,omitempty" db:"to_date"`
	Current      bool       `json:"current" db:"current"`
	Description  string     `json:"description,omitempty" db:"description"`
}

// Post is a status update with its likes and comments, both most recent first
type Post struct {
	ID        string    `json:"id" db:"id"`
	UserID    string    `json:"user" db:"user_id"`
	Text      string    `json:"text" db:"text"`
	Name      string    `json:"name" db:"name"`
	Avatar    string    `json:"avatar" db:"avatar"`
	Likes     []Like    `json:"likes"`
	Comments  []Comment `json:"comments"`
	CreatedAt time.Time `json:"date" db:"created_at"`
}

// Like records that a user liked a post
type Like struct {
	UserID string `json:"user" db:"user_id"`
}

// Comment is a reply attached to a post
type Comment struct {
	ID        string    `json:"id" db:"id"`
	UserID    string    `json:"user" db:"user_id"`
	Text      string    `json:"text" db:"text"`
	Name      string    `json:"name" db:"name"`
	Avatar    string    `json:"avatar" db:"avatar"`
	CreatedAt time.Time `json:"date" db:"created_at"`
}

// LikedBy reports whether userID is in the like list
func (p *Post) LikedBy(userID string) bool {
	return slices.IndexFunc(p.Likes, func(l Like) bool { return l.UserID == userID }) >= 0
}

// FindComment returns the comment with the given id, or nil
func (p *Post) FindComment(commentID string) *Comment {
	i := slices.IndexFunc(p.Comments, func(c Comment) bool { return c.ID == commentID })
	if i < 0 {
		return nil
	}
	return &p.Comments[i]
}

// ===============================
// SOCIAL LINKS
// ===============================

// SocialPlatforms lists the accepted social link keys
var SocialPlatforms = []string{"youtube", "twitter", "facebook", "linkedin", "instagram"}

// Social maps a platform name to a profile URL. Stored as JSONB.
type Social map[string]string

// Sanitize drops unknown platforms and empty links
func (s Social) Sanitize() Social {
	out := make(Social, len(s))
	for platform, link := range s {
		if link != "" && slices.Contains(SocialPlatforms, platform) {
			out[platform] = link
		}
	}
	return out
}

// Scan implements sql.Scanner
func (s *Social) Scan(value interface{}) error {
	if value == nil {
		*s = Social{}
		return nil
	}

	var raw []byte
	switch v := value.(type) {
	case []byte:
		raw = v
	case string:
		raw = []byte(v)
	default:
		return fmt.Errorf("cannot scan %T into Social", value)
	}

	decoded := Social{}
	if len(raw) > 0 {
		if err := json.Unmarshal(raw, &decoded); err != nil {
			return fmt.Errorf("failed to decode social links: %w", err)
		}
	}
	*s = decoded
	return nil
}

// Value implements driver.Valuer. JSONB parameters are sent as text.
func (s Social) Value() (driver.Value, error) {
	if s == nil {
		return "{}", nil
	}
	raw, err := json.Marshal(map[string]string(s))
	if err != nil {
		return nil, err
	}
	return string(raw), nil
}
