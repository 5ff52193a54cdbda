package db

import (
	"context"
	"fmt"
	"strings"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jonathan/talent-pool/internal/types"
)

// ListTalentPool returns one page of job seekers matching the query plus the total match count.
func (db *DB) ListTalentPool(ctx context.Context, q types.TalentPoolQuery) ([]types.Candidate, int, error) {
	q.Normalize()

	where := []string{"role = 'job_seeker'"}
	args := []any{}
	add := func(clause string, v any) {
		args = append(args, v)
		where = append(where, fmt.Sprintf(clause, len(args)))
	}

	if q.Q != "" {
		add("(name ILIKE $%[1]d OR email ILIKE $%[1]d OR professional_summary ILIKE $%[1]d)", "%"+escapeLike(q.Q)+"%")
	}
	if q.MinScore > 0 {
		add("profile_score >= $%d", q.MinScore)
	}
	if len(q.Skills) > 0 {
		add("skills ?| $%d", q.Skills)
	}
	if q.MinYears > 0 {
		add("years_of_experience >= $%d", q.MinYears)
	}
	whereSQL := strings.Join(where, " AND ")

	var total int
	if err := db.pool.QueryRow(ctx, `SELECT COUNT(*) FROM users WHERE `+whereSQL, args...).Scan(&total); err != nil {
		return nil, 0, fmt.Errorf("failed to count talent pool: %w", err)
	}

	order := "profile_score DESC, id"
	if q.Sort == types.SortByRecent {
		order = "updated_at DESC, id"
	}
	pageArgs := append(append([]any{}, args...), q.Limit, q.Offset())
	query := fmt.Sprintf(`SELECT %s FROM users WHERE %s ORDER BY %s LIMIT $%d OFFSET $%d`,
		candidateColumns, whereSQL, order, len(args)+1, len(args)+2)

	rows, err := db.pool.Query(ctx, query, pageArgs...)
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
func (db *DB) GetJobRequirements(ctx context.Context, id uuid.UUID) (*types.JobRequirements, error) {
	var (
		job    types.JobRequirements
		skills StringArray
	)
	err := db.pool.QueryRow(ctx,
		`SELECT id, title, skills_required, experience FROM job_descriptions WHERE id = $1`, id,
	).Scan(&job.ID, &job.Title, &skills, &job.Experience)
	if err != nil {
		if err == pgx.ErrNoRows {
			return nil, nil
		}
		return nil, fmt.Errorf("failed to get job description: %w", err)
	}
	job.SkillsRequired = skills
	return &job, nil
}

// CreateJobDescription inserts a job description and returns its ID.
func (db *DB) CreateJobDescription(ctx context.Context, title string, skills []string, experience string) (uuid.UUID, error) {
	var id uuid.UUID
	err := db.pool.QueryRow(ctx,
		`INSERT INTO job_descriptions (title, skills_required, experience) VALUES ($1, $2, $3) RETURNING id`,
		title, StringArray(skills), experience,
	).Scan(&id)
	if err != nil {
		return uuid.Nil, fmt.Errorf("failed to create job description: %w", err)
	}
	return id, nil
}

func escapeLike(s string) string {
	r := strings.NewReplacer(`\`, `\\`, `%`, `\%`, `_`, `\_`)
	return r.Replace(s)
}
