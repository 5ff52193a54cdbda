package types

import (
	"fmt"

	"github.com/google/uuid"
)

// TalentPoolSort selects the ordering of a talent pool listing.
type TalentPoolSort string

// Talent pool orderings.
const (
	SortByScore  TalentPoolSort = "score"
	SortByRecent TalentPoolSort = "recent"
	SortByJob    TalentPoolSort = "job"
)

// Talent pool paging bounds.
const (
	DefaultTalentPoolLimit = 20
	MaxTalentPoolLimit     = 50
)

// TalentPoolQuery filters and pages the talent pool.
type TalentPoolQuery struct {
	Q        string
	MinScore int
	Skills   []string
	MinYears float64
	Sort     TalentPoolSort
	JobID    *uuid.UUID
	Page     int
	Limit    int
}

// Normalize fills defaults and clamps paging values.
func (q *TalentPoolQuery) Normalize() {
	if q.Page < 1 {
		q.Page = 1
	}
	if q.Limit < 1 {
		q.Limit = DefaultTalentPoolLimit
	}
	if q.Limit > MaxTalentPoolLimit {
		q.Limit = MaxTalentPoolLimit
	}
	if q.MinScore < 0 {
		q.MinScore = 0
	}
	if q.MinYears < 0 {
		q.MinYears = 0
	}
	if q.Sort == "" {
		q.Sort = SortByScore
	}
}

// Offset returns the row offset for the requested page.
func (q *TalentPoolQuery) Offset() int {
	return (q.Page - 1) * q.Limit
}

// ParseTalentPoolSort parses a sort parameter, defaulting to score order.
func ParseTalentPoolSort(s string) (TalentPoolSort, error) {
	switch TalentPoolSort(s) {
	case "":
		return SortByScore, nil
	case SortByScore, SortByRecent, SortByJob:
		return TalentPoolSort(s), nil
	default:
		return "", fmt.Errorf("unknown sort %q", s)
	}
}

// TalentPoolEntry is one candidate in a listing.
type TalentPoolEntry struct {
	Candidate
	LatestAssessment *AssessmentCompletion `json:"latestAssessment"`
	JobMatchScore    *int                  `json:"jobMatchScore,omitempty"`
	FinalScore       *int                  `json:"finalScore,omitempty"`
}

// TalentPoolPage is a page of talent pool results.
type TalentPoolPage struct {
	Success    bool              `json:"success"`
	Page       int               `json:"page"`
	Limit      int               `json:"limit"`
	Total      int               `json:"total"`
	Candidates []TalentPoolEntry `json:"candidates"`
	JobID      *uuid.UUID        `json:"jobId,omitempty"`
}
