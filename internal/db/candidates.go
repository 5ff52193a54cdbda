package db

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jonathan/talent-pool/internal/types"
)

const candidateColumns = `id, name, email, role, years_of_experience, professional_summary,
	skills, projects, achievements, is_profile_complete, COALESCE(linkedin_url, ''),
	updated_at, scores, profile_score, score_version, last_score_computed_at`

// scanCandidate reads one row selected with candidateColumns.
func scanCandidate(row pgx.Row) (*types.Candidate, error) {
	var (
		c            types.Candidate
		role         string
		skills       StringArray
		projects     ProjectList
		achievements StringArray
		scores       Breakdown
	)
	err := row.Scan(
		&c.ID, &c.Name, &c.Email, &role, &c.YearsOfExperience, &c.ProfessionalSummary,
		&skills, &projects, &achievements, &c.IsProfileComplete, &c.LinkedInURL,
		&c.UpdatedAt, &scores, &c.ProfileScore, &c.ScoreVersion, &c.LastScoreComputedAt,
	)
	if err != nil {
		return nil, err
	}
	c.Role = types.Role(role)
	c.Skills = skills
	c.Projects = projects
	c.Achievements = achievements
	c.Scores = scores.Ptr()
	return &c, nil
}

// ListCandidates returns job seekers for a recompute batch, optionally restricted to IDs.
func (db *DB) ListCandidates(ctx context.Context, filter types.CandidateFilter) ([]types.Candidate, error) {
	query := `SELECT ` + candidateColumns + ` FROM users WHERE role = 'job_seeker'`
	args := []any{}
	if len(filter.IDs) > 0 {
		args = append(args, filter.IDs)
		query += fmt.Sprintf(" AND id = ANY($%d)", len(args))
	}
	query += " ORDER BY id"
	if filter.Limit > 0 {
		args = append(args, filter.Limit)
		query += fmt.Sprintf(" LIMIT $%d", len(args))
	}

	rows, err := db.pool.Query(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to list candidates: %w", err)
	}
	defer rows.Close()

	var candidates []types.Candidate
	for rows.Next() {
		c, err := scanCandidate(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan candidate: %w", err)
		}
		candidates = append(candidates, *c)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to iterate candidates: %w", err)
	}
	return candidates, nil
}

// GetCandidate retrieves a job seeker by ID. It returns nil, nil when none exists.
func (db *DB) GetCandidate(ctx context.Context, id uuid.UUID) (*types.Candidate, error) {
	row := db.pool.QueryRow(ctx,
		`SELECT `+candidateColumns+` FROM users WHERE id = $1 AND role = 'job_seeker'`, id)
	c, err := scanCandidate(row)
	if err != nil {
		if err == pgx.ErrNoRows {
			return nil, nil
		}
		return nil, fmt.Errorf("failed to get candidate: %w", err)
	}
	return c, nil
}

// SaveScore persists a computed score on a candidate. updated_at is left untouched so
// that storing a score never changes the recency input of the next computation.
func (db *DB) SaveScore(ctx context.Context, id uuid.UUID, update types.ScoreUpdate) error {
	tag, err := db.pool.Exec(ctx,
		`UPDATE users
		 SET scores = $2, profile_score = $3, score_version = $4, last_score_computed_at = $5
		 WHERE id = $1 AND role = 'job_seeker'`,
		id, Breakdown{ScoreBreakdown: update.Scores, Valid: true}, update.ProfileScore, update.ScoreVersion, update.ComputedAt,
	)
	if err != nil {
		return fmt.Errorf("failed to save score for %s: %w", id, err)
	}
	if tag.RowsAffected() == 0 {
		return fmt.Errorf("failed to save score for %s: %w", id, ErrCandidateNotFound)
	}
	return nil
}

// CandidateCreateInput holds the profile fields for a new job seeker.
type CandidateCreateInput struct {
	Name                string
	Email               string
	YearsOfExperience   *float64
	ProfessionalSummary string
	Skills              []string
	Projects            []types.Project
	Achievements        []string
	IsProfileComplete   bool
	LinkedInURL         string
	UpdatedAt           time.Time
}

// CreateCandidate inserts a job seeker profile and returns its ID.
func (db *DB) CreateCandidate(ctx context.Context, input *CandidateCreateInput) (uuid.UUID, error) {
	updatedAt := input.UpdatedAt
	if updatedAt.IsZero() {
		updatedAt = time.Now()
	}
	var id uuid.UUID
	err := db.pool.QueryRow(ctx,
		`INSERT INTO users (name, email, role, years_of_experience, professional_summary, skills,
		                    projects, achievements, is_profile_complete, linkedin_url, updated_at)
		 VALUES ($1, $2, 'job_seeker', $3, $4, $5, $6, $7, $8, NULLIF($9, ''), $10)
		 RETURNING id`,
		input.Name, strings.ToLower(strings.TrimSpace(input.Email)), input.YearsOfExperience, input.ProfessionalSummary,
		StringArray(input.Skills), ProjectList(input.Projects), StringArray(input.Achievements),
		input.IsProfileComplete, input.LinkedInURL, updatedAt,
	).Scan(&id)
	if err != nil {
		return uuid.Nil, fmt.Errorf("failed to create candidate: %w", err)
	}
	return id, nil
}

// DeleteUser removes a user and, through cascading, their applications.
func (db *DB) DeleteUser(ctx context.Context, id uuid.UUID) error {
	if _, err := db.pool.Exec(ctx, `DELETE FROM users WHERE id = $1`, id); err != nil {
		return fmt.Errorf("failed to delete user: %w", err)
	}
	return nil
}
