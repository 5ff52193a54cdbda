// Package types provides type definitions for structured data used throughout the talent-pool system.
//
//nolint:revive // types is a standard Go package name pattern
package types

import (
	"time"

	"github.com/google/uuid"
)

// Role is the account role carried on users and sessions.
type Role string

// Account roles.
const (
	RoleJobSeeker Role = "job_seeker"
	RoleRecruiter Role = "recruiter"
	RoleAdmin     Role = "admin"
)

// Valid reports whether r is one of the known roles.
func (r Role) Valid() bool {
	switch r {
	case RoleJobSeeker, RoleRecruiter, RoleAdmin:
		return true
	default:
		return false
	}
}

// CanManageTalentPool reports whether the role may browse the talent pool and recompute scores.
func (r Role) CanManageTalentPool() bool {
	return r == RoleRecruiter || r == RoleAdmin
}

// Project is a portfolio entry on a candidate profile.
type Project struct {
	Title       string   `json:"title"`
	Description string   `json:"description,omitempty"`
	Tags        []string `json:"tags,omitempty"`
	Link        string   `json:"link,omitempty"`
}

// Candidate is a job-seeker profile together with its last computed score.
type Candidate struct {
	ID                  uuid.UUID       `json:"id"`
	Name                string          `json:"name"`
	Email               string          `json:"email"`
	Role                Role            `json:"role"`
	YearsOfExperience   *float64        `json:"yearsOfExperience,omitempty"`
	ProfessionalSummary string          `json:"professionalSummary,omitempty"`
	Skills              []string        `json:"skills"`
	Projects            []Project       `json:"projects"`
	Achievements        []string        `json:"achievements"`
	IsProfileComplete   bool            `json:"isProfileComplete"`
	LinkedInURL         string          `json:"linkedinUrl,omitempty"`
	UpdatedAt           time.Time       `json:"updatedAt"`
	Scores              *ScoreBreakdown `json:"scores,omitempty"`
	ProfileScore        int             `json:"profileScore"`
	ScoreVersion        int             `json:"scoreVersion"`
	LastScoreComputedAt *time.Time      `json:"lastScoreComputedAt,omitempty"`
}

// CandidateFilter selects job seekers for a recompute batch.
// An empty IDs slice selects all job seekers up to Limit.
type CandidateFilter struct {
	IDs   []uuid.UUID
	Limit int
}

// JobRequirements is the part of a job description used for job-aware ranking.
type JobRequirements struct {
	ID             uuid.UUID `json:"id"`
	Title          string    `json:"title"`
	SkillsRequired []string  `json:"skillsRequired"`
	Experience     string    `json:"experience,omitempty"`
}
