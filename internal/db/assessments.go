package db

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jonathan/talent-pool/internal/types"
)

// LatestAssessment returns the candidate's most recently completed scored application,
// or nil when there is none.
func (db *DB) LatestAssessment(ctx context.Context, candidateID uuid.UUID) (*types.AssessmentCompletion, error) {
	var (
		score       float64
		completedAt *time.Time
	)
	err := db.pool.QueryRow(ctx,
		`SELECT score, completed_at FROM applications
		 WHERE job_seeker_id = $1 AND score IS NOT NULL
		 ORDER BY completed_at DESC NULLS LAST
		 LIMIT 1`,
		candidateID,
	).Scan(&score, &completedAt)
	if err != nil {
		if err == pgx.ErrNoRows {
			return nil, nil
		}
		return nil, fmt.Errorf("failed to get latest assessment: %w", err)
	}

	result := &types.AssessmentCompletion{Score: score}
	if completedAt != nil {
		result.CompletedAt = *completedAt
	}
	return result, nil
}

// RecordAssessment stores a completed application score for a candidate.
func (db *DB) RecordAssessment(ctx context.Context, candidateID uuid.UUID, jobID *uuid.UUID, score float64, completedAt time.Time) (uuid.UUID, error) {
	var id uuid.UUID
	err := db.pool.QueryRow(ctx,
		`INSERT INTO applications (job_seeker_id, job_id, score, completed_at)
		 VALUES ($1, $2, $3, $4)
		 RETURNING id`,
		candidateID, jobID, score, completedAt,
	).Scan(&id)
	if err != nil {
		return uuid.Nil, fmt.Errorf("failed to record assessment: %w", err)
	}
	return id, nil
}
