package scoring

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/jonathan/talent-pool/internal/types"
)

// AssessmentLookup returns the most recent scored assessment for a candidate,
// or nil when there is none.
type AssessmentLookup interface {
	LatestAssessment(ctx context.Context, candidateID uuid.UUID) (*types.AssessmentCompletion, error)
}

// Scorer computes profile scores. It holds no mutable state.
type Scorer struct {
	lookup  AssessmentLookup
	weights WeightScheme
	now     func() time.Time
}

// Option configures a Scorer.
type Option func(*Scorer)

// WithWeights overrides the weight scheme.
func WithWeights(w WeightScheme) Option {
	return func(s *Scorer) { s.weights = w }
}

// WithClock overrides the time source used for recency.
func WithClock(now func() time.Time) Option {
	return func(s *Scorer) { s.now = now }
}

// NewScorer creates a Scorer backed by the given assessment lookup.
func NewScorer(lookup AssessmentLookup, opts ...Option) *Scorer {
	s := &Scorer{
		lookup:  lookup,
		weights: DefaultWeights(),
		now:     time.Now,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Weights returns the scheme this scorer applies.
func (s *Scorer) Weights() WeightScheme {
	return s.weights
}

// Version returns the score version stamped on persisted results.
func (s *Scorer) Version() int {
	return s.weights.Version
}

// Now returns the scorer's notion of the current time.
func (s *Scorer) Now() time.Time {
	return s.now()
}

// ComputeProfileScore scores a candidate from its current data and latest assessment.
func (s *Scorer) ComputeProfileScore(ctx context.Context, c *types.Candidate) (types.ScoreBreakdown, error) {
	if c == nil {
		return types.ScoreBreakdown{}, fmt.Errorf("candidate is nil")
	}

	var latest *types.AssessmentCompletion
	if s.lookup != nil {
		var err error
		latest, err = s.lookup.LatestAssessment(ctx, c.ID)
		if err != nil {
			return types.ScoreBreakdown{}, fmt.Errorf("failed to look up latest assessment for %s: %w", c.ID, err)
		}
	}

	return Score(c, latest, s.now(), s.weights), nil
}

// Score is the pure scoring function.
func Score(c *types.Candidate, latest *types.AssessmentCompletion, now time.Time, w WeightScheme) types.ScoreBreakdown {
	return Aggregate(ExtractSignals(c, latest, now, w), w)
}
