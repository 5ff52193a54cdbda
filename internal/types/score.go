package types

import (
	"time"
)

// ScoreBreakdown is the result of one scoring pass. Each component is bounded by
// its weight cap and Total is their sum clamped to [0, 100].
type ScoreBreakdown struct {
	Projects     int `json:"projects"`
	Experience   int `json:"experience"`
	Skills       int `json:"skills"`
	Coding       int `json:"coding"`
	Achievements int `json:"achievements"`
	Completeness int `json:"completeness"`
	Recency      int `json:"recency"`
	Total        int `json:"total"`
}

// ComponentSum returns the plain sum of the seven components.
func (b ScoreBreakdown) ComponentSum() int {
	return b.Projects + b.Experience + b.Skills + b.Coding + b.Achievements + b.Completeness + b.Recency
}

// AssessmentCompletion is the most recent scored assessment for a candidate.
type AssessmentCompletion struct {
	Score       float64   `json:"score"`
	CompletedAt time.Time `json:"completedAt"`
}

// ScoreUpdate holds the fields a recompute writes back onto a candidate.
type ScoreUpdate struct {
	Scores       ScoreBreakdown
	ProfileScore int
	ScoreVersion int
	ComputedAt   time.Time
}

// NewScoreUpdate builds the persisted form of a breakdown.
func NewScoreUpdate(b ScoreBreakdown, version int, computedAt time.Time) ScoreUpdate {
	return ScoreUpdate{
		Scores:       b,
		ProfileScore: b.Total,
		ScoreVersion: version,
		ComputedAt:   computedAt,
	}
}
