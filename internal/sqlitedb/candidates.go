package sqlitedb

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/jonathan/talent-pool/internal/types"
)

const candidateColumns = `id, name, email, role, years_of_experience, professional_summary,
	skills, projects, achievements, is_profile_complete, linkedin_url,
	updated_at, scores, profile_score, score_version, last_score_computed_at`

type rowScanner interface {
	Scan(dest ...any) error
}

func scanCandidate(row rowScanner) (*types.Candidate, error) {
	var (
		c                              types.Candidate
		id, role, updatedAt            string
		skills, projects, achievements string
		years                          sql.NullFloat64
		scores, lastComputed           sql.NullString
	)
	err := row.Scan(
		&id, &c.Name, &c.Email, &role, &years, &c.ProfessionalSummary,
		&skills, &projects, &achievements, &c.IsProfileComplete, &c.LinkedInURL,
		&updatedAt, &scores, &c.ProfileScore, &c.ScoreVersion, &lastComputed,
	)
	if err != nil {
		return nil, err
	}

	if c.ID, err = uuid.Parse(id); err != nil {
		return nil, fmt.Errorf("invalid candidate id %q: %w", id, err)
	}
	c.Role = types.Role(role)
	if years.Valid {
		v := years.Float64
		c.YearsOfExperience = &v
	}
	if err := json.Unmarshal([]byte(skills), &c.Skills); err != nil {
		return nil, fmt.Errorf("invalid skills for %s: %w", id, err)
	}
	if err := json.Unmarshal([]byte(projects), &c.Projects); err != nil {
		return nil, fmt.Errorf("invalid projects for %s: %w", id, err)
	}
	if err := json.Unmarshal([]byte(achievements), &c.Achievements); err != nil {
		return nil, fmt.Errorf("invalid achievements for %s: %w", id, err)
	}
	if c.UpdatedAt, err = parseTime(updatedAt); err != nil {
		return nil, fmt.Errorf("invalid updated_at for %s: %w", id, err)
	}
	if scores.Valid {
		var b types.ScoreBreakdown
		if err := json.Unmarshal([]byte(scores.String), &b); err != nil {
			return nil, fmt.Errorf("invalid scores for %s: %w", id, err)
		}
		c.Scores = &b
	}
	if lastComputed.Valid {
		t, err := parseTime(lastComputed.String)
		if err != nil {
			return nil, fmt.Errorf("invalid last_score_computed_at for %s: %w", id, err)
		}
		c.LastScoreComputedAt = &t
	}
	return &c, nil
}

func placeholders(n int) string {
	return strings.TrimSuffix(strings.Repeat("?,", n), ",")
}

// ListCandidates returns job seekers for a recompute batch, optionally restricted to IDs.
func (d *DB) ListCandidates(ctx context.Context, filter types.CandidateFilter) ([]types.Candidate, error) {
	query := `SELECT ` + candidateColumns + ` FROM users WHERE role = 'job_seeker'`
	args := []any{}
	if len(filter.IDs) > 0 {
		query += ` AND id IN (` + placeholders(len(filter.IDs)) + `)`
		for _, id := range filter.IDs {
			args = append(args, id.String())
		}
	}
	query += ` ORDER BY id`
	if filter.Limit > 0 {
		query += ` LIMIT ?`
		args = append(args, filter.Limit)
	}

	rows, err := d.db.QueryContext(ctx, query, args...)
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
func (d *DB) GetCandidate(ctx context.Context, id uuid.UUID) (*types.Candidate, error) {
	row := d.db.QueryRowContext(ctx,
		`SELECT `+candidateColumns+` FROM users WHERE id = ? AND role = 'job_seeker'`, id.String())
	c, err := scanCandidate(row)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, nil
		}
		return nil, fmt.Errorf("failed to get candidate: %w", err)
	}
	return c, nil
}

// SaveScore persists a computed score on a candidate without touching updated_at.
func (d *DB) SaveScore(ctx context.Context, id uuid.UUID, update types.ScoreUpdate) error {
	scores, err := jsonText(update.Scores)
	if err != nil {
		return fmt.Errorf("failed to encode scores: %w", err)
	}
	res, err := d.db.ExecContext(ctx,
		`UPDATE users SET scores = ?, profile_score = ?, score_version = ?, last_score_computed_at = ?
		 WHERE id = ? AND role = 'job_seeker'`,
		scores, update.ProfileScore, update.ScoreVersion, formatTime(update.ComputedAt), id.String(),
	)
	if err != nil {
		return fmt.Errorf("failed to save score for %s: %w", id, err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to save score for %s: %w", id, err)
	}
	if n == 0 {
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
func (d *DB) CreateCandidate(ctx context.Context, input *CandidateCreateInput) (uuid.UUID, error) {
	projects := input.Projects
	if projects == nil {
		projects = []types.Project{}
	}
	skillsJSON, err := jsonText(stringsOrEmpty(input.Skills))
	if err != nil {
		return uuid.Nil, err
	}
	projectsJSON, err := jsonText(projects)
	if err != nil {
		return uuid.Nil, err
	}
	achievementsJSON, err := jsonText(stringsOrEmpty(input.Achievements))
	if err != nil {
		return uuid.Nil, err
	}

	now := time.Now()
	updatedAt := input.UpdatedAt
	if updatedAt.IsZero() {
		updatedAt = now
	}
	var years any
	if input.YearsOfExperience != nil {
		years = *input.YearsOfExperience
	}

	id := uuid.New()
	_, err = d.db.ExecContext(ctx,
		`INSERT INTO users (id, name, email, role, years_of_experience, professional_summary, skills,
		                    projects, achievements, is_profile_complete, linkedin_url, created_at, updated_at)
		 VALUES (?, ?, ?, 'job_seeker', ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		id.String(), input.Name, strings.ToLower(strings.TrimSpace(input.Email)), years, input.ProfessionalSummary,
		skillsJSON, projectsJSON, achievementsJSON, input.IsProfileComplete, input.LinkedInURL,
		formatTime(now), formatTime(updatedAt),
	)
	if err != nil {
		return uuid.Nil, fmt.Errorf("failed to create candidate: %w", err)
	}
	return id, nil
}
