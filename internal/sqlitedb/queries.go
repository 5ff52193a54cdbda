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

// LatestAssessment returns the candidate's most recently completed scored application, or nil.
func (d *DB) LatestAssessment(ctx context.Context, candidateID uuid.UUID) (*types.AssessmentCompletion, error) {
	var (
		score       float64
		completedAt sql.NullString
	)
	err := d.db.QueryRowContext(ctx,
		`SELECT score, completed_at FROM applications
		 WHERE job_seeker_id = ? AND score IS NOT NULL
		 ORDER BY completed_at IS NULL, completed_at DESC
		 LIMIT 1`,
		candidateID.String(),
	).Scan(&score, &completedAt)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, nil
		}
		return nil, fmt.Errorf("failed to get latest assessment: %w", err)
	}

	result := &types.AssessmentCompletion{Score: score}
	if completedAt.Valid {
		if result.CompletedAt, err = parseTime(completedAt.String); err != nil {
			return nil, fmt.Errorf("invalid completed_at: %w", err)
		}
	}
	return result, nil
}

// RecordAssessment stores a completed application score for a candidate.
func (d *DB) RecordAssessment(ctx context.Context, candidateID uuid.UUID, jobID *uuid.UUID, score float64, completedAt time.Time) (uuid.UUID, error) {
	var job any
	if jobID != nil {
		job = jobID.String()
	}
	id := uuid.New()
	_, err := d.db.ExecContext(ctx,
		`INSERT INTO applications (id, job_seeker_id, job_id, score, completed_at, created_at) VALUES (?, ?, ?, ?, ?, ?)`,
		id.String(), candidateID.String(), job, score, formatTime(completedAt), formatTime(time.Now()),
	)
	if err != nil {
		return uuid.Nil, fmt.Errorf("failed to record assessment: %w", err)
	}
	return id, nil
}

// ListTalentPool returns one page of job seekers matching the query plus the total match count.
func (d *DB) ListTalentPool(ctx context.Context, q types.TalentPoolQuery) ([]types.Candidate, int, error) {
	q.Normalize()

	where := []string{"role = 'job_seeker'"}
	args := []any{}
	if q.Q != "" {
		pattern := "%" + escapeLike(q.Q) + "%"
		where = append(where, `(name LIKE ? ESCAPE '\' OR email LIKE ? ESCAPE '\' OR professional_summary LIKE ? ESCAPE '\')`)
		args = append(args, pattern, pattern, pattern)
	}
	if q.MinScore > 0 {
		where = append(where, "profile_score >= ?")
		args = append(args, q.MinScore)
	}
	if len(q.Skills) > 0 {
		where = append(where, `EXISTS (SELECT 1 FROM json_each(users.skills) WHERE json_each.value IN (`+placeholders(len(q.Skills))+`))`)
		for _, s := range q.Skills {
			args = append(args, s)
		}
	}
	if q.MinYears > 0 {
		where = append(where, "years_of_experience >= ?")
		args = append(args, q.MinYears)
	}
	whereSQL := strings.Join(where, " AND ")

	var total int
	if err := d.db.QueryRowContext(ctx, `SELECT COUNT(*) FROM users WHERE `+whereSQL, args...).Scan(&total); err != nil {
		return nil, 0, fmt.Errorf("failed to count talent pool: %w", err)
	}

	order := "profile_score DESC, id"
	if q.Sort == types.SortByRecent {
		order = "updated_at DESC, id"
	}
	pageArgs := append(append([]any{}, args...), q.Limit, q.Offset())
	rows, err := d.db.QueryContext(ctx,
		`SELECT `+candidateColumns+` FROM users WHERE `+whereSQL+` ORDER BY `+order+` LIMIT ? OFFSET ?`,
		pageArgs...)
	if err != nil {
		return nil, 0, fmt.Errorf("failed to list talent pool: %w", err)
	}
	defer rows.Close()

	candidates := []types.Candidate{}
	for rows.Next() {
		c, err := scanCandidate(rows)
		if err != nil {
			return nil, 0, fmt.Errorf("failed to scan candidate: %w", err)
		}
		candidates = append(candidates, *c)
	}
	if err := rows.Err(); err != nil {
		return nil, 0, fmt.Errorf("failed to iterate talent pool: %w", err)
	}
	return candidates, total, nil
}

// GetJobRequirements returns the ranking-relevant part of a job description, or nil, nil.
func (d *DB) GetJobRequirements(ctx context.Context, id uuid.UUID) (*types.JobRequirements, error) {
	var (
		job    types.JobRequirements
		rawID  string
		skills string
	)
	err := d.db.QueryRowContext(ctx,
		`SELECT id, title, skills_required, experience FROM job_descriptions WHERE id = ?`, id.String(),
	).Scan(&rawID, &job.Title, &skills, &job.Experience)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, nil
		}
		return nil, fmt.Errorf("failed to get job description: %w", err)
	}
	if job.ID, err = uuid.Parse(rawID); err != nil {
		return nil, fmt.Errorf("invalid job id %q: %w", rawID, err)
	}
	if err := json.Unmarshal([]byte(skills), &job.SkillsRequired); err != nil {
		return nil, fmt.Errorf("invalid skills_required: %w", err)
	}
	return &job, nil
}

// CreateJobDescription inserts a job description and returns its ID.
func (d *DB) CreateJobDescription(ctx context.Context, title string, skills []string, experience string) (uuid.UUID, error) {
	skillsJSON, err := jsonText(stringsOrEmpty(skills))
	if err != nil {
		return uuid.Nil, err
	}
	id := uuid.New()
	_, err = d.db.ExecContext(ctx,
		`INSERT INTO job_descriptions (id, title, skills_required, experience, created_at) VALUES (?, ?, ?, ?, ?)`,
		id.String(), title, skillsJSON, experience, formatTime(time.Now()),
	)
	if err != nil {
		return uuid.Nil, fmt.Errorf("failed to create job description: %w", err)
	}
	return id, nil
}

// GetUserByEmail retrieves an account by email. It returns nil, nil when none exists.
func (d *DB) GetUserByEmail(ctx context.Context, email string) (*types.User, error) {
	var (
		u        types.User
		id, role             string
		createdAt, updatedAt string
		hash                 sql.NullString
	)
	err := d.db.QueryRowContext(ctx,
		`SELECT id, name, email, password_hash, role, created_at, updated_at FROM users WHERE email = ?`,
		strings.ToLower(strings.TrimSpace(email)),
	).Scan(&id, &u.Name, &u.Email, &hash, &role, &createdAt, &updatedAt)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, nil
		}
		return nil, fmt.Errorf("failed to get user by email: %w", err)
	}
	if u.ID, err = uuid.Parse(id); err != nil {
		return nil, fmt.Errorf("invalid user id %q: %w", id, err)
	}
	if u.CreatedAt, err = parseTime(createdAt); err != nil {
		return nil, fmt.Errorf("invalid created_at: %w", err)
	}
	if u.UpdatedAt, err = parseTime(updatedAt); err != nil {
		return nil, fmt.Errorf("invalid updated_at: %w", err)
	}
	u.PasswordHash = hash.String
	u.Role = types.Role(role)
	return &u, nil
}

// CreateUser inserts an account with a password hash and returns its ID.
func (d *DB) CreateUser(ctx context.Context, name, email, passwordHash string, role types.Role) (uuid.UUID, error) {
	if !role.Valid() {
		return uuid.Nil, fmt.Errorf("invalid role %q", role)
	}
	var hash any
	if passwordHash != "" {
		hash = passwordHash
	}
	now := formatTime(time.Now())
	id := uuid.New()
	_, err := d.db.ExecContext(ctx,
		`INSERT INTO users (id, name, email, password_hash, role, created_at, updated_at) VALUES (?, ?, ?, ?, ?, ?, ?)`,
		id.String(), name, strings.ToLower(strings.TrimSpace(email)), hash, string(role), now, now,
	)
	if err != nil {
		return uuid.Nil, fmt.Errorf("failed to create user: %w", err)
	}
	return id, nil
}

func escapeLike(s string) string {
	r := strings.NewReplacer(`\`, `\\`, `%`, `\%`, `_`, `\_`)
	return r.Replace(s)
}
