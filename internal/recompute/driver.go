// Package recompute refreshes persisted profile scores in bulk.
package recompute

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"log/slog"
	"slices"
	"sync"
	"sync/atomic"
	"time"

	"github.com/google/uuid"
	"github.com/jonathan/talent-pool/internal/logging"
	"github.com/jonathan/talent-pool/internal/telemetry"
	"github.com/jonathan/talent-pool/internal/types"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"golang.org/x/sync/errgroup"
)

const component = "talent_pool.recompute"

// CandidateStore is the subset of the candidate store the driver needs.
type CandidateStore interface {
	ListCandidates(ctx context.Context, filter types.CandidateFilter) ([]types.Candidate, error)
	GetCandidate(ctx context.Context, id uuid.UUID) (*types.Candidate, error)
	SaveScore(ctx context.Context, id uuid.UUID, update types.ScoreUpdate) error
}

// ProfileScorer computes a breakdown for one candidate.
type ProfileScorer interface {
	ComputeProfileScore(ctx context.Context, c *types.Candidate) (types.ScoreBreakdown, error)
	Version() int
	Now() time.Time
}

// BreakdownValidator checks a breakdown before it is persisted.
type BreakdownValidator interface {
	ValidateBreakdown(b types.ScoreBreakdown) error
}

// Result summarizes one batch.
type Result struct {
	Selected     int
	UpdatedCount int
	FailedIDs    []uuid.UUID
	Truncated    bool
}

// Response converts the result into the API payload.
func (r *Result) Response() types.RecomputeResponse {
	return types.RecomputeResponse{
		Success:      true,
		UpdatedCount: r.UpdatedCount,
		FailedIDs:    r.FailedIDs,
		Truncated:    r.Truncated,
	}
}

// Driver runs recompute batches. It is safe for concurrent use.
type Driver struct {
	store     CandidateStore
	scorer    ProfileScorer
	validator BreakdownValidator
	cfg       Config
	logger    *slog.Logger
}

// NewDriver creates a Driver. A nil validator skips schema checks; a nil logger uses slog.Default().
func NewDriver(store CandidateStore, scorer ProfileScorer, validator BreakdownValidator, cfg Config, logger *slog.Logger) *Driver {
	if logger == nil {
		logger = slog.Default()
	}
	return &Driver{
		store:     store,
		scorer:    scorer,
		validator: validator,
		cfg:       cfg.normalize(),
		logger:    logger,
	}
}

// Config returns the normalized configuration.
func (d *Driver) Config() Config {
	return d.cfg
}

// Recompute scores and persists up to the effective limit of job seekers.
// Only a failure to list candidates fails the batch; per-candidate failures are
// logged, reported in FailedIDs and skipped. Scores persisted before an error or
// the batch deadline are kept.
func (d *Driver) Recompute(ctx context.Context, req types.RecomputeRequest) (*Result, error) {
	ctx, span := telemetry.Tracer().Start(ctx, "recompute.batch")
	defer span.End()
	ctx = logging.WithLogFields(ctx, logging.LogFields{Component: component})

	filter := types.CandidateFilter{
		IDs:   req.CandidateIDs,
		Limit: d.cfg.EffectiveLimit(req.Limit),
	}
	span.SetAttributes(
		attribute.Int("recompute.limit", filter.Limit),
		attribute.Int("recompute.requested_ids", len(filter.IDs)),
	)

	candidates, err := d.store.ListCandidates(ctx, filter)
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, "list candidates")
		return nil, fmt.Errorf("failed to list candidates: %w", err)
	}

	// The deadline only gates starting new candidates; in-flight work runs to completion.
	gate := ctx
	if d.cfg.Timeout > 0 {
		var cancel context.CancelFunc
		gate, cancel = context.WithTimeout(ctx, d.cfg.Timeout)
		defer cancel()
	}

	var (
		updated   atomic.Int64
		truncated atomic.Bool
		mu        sync.Mutex
		failed    []uuid.UUID
	)

	g := new(errgroup.Group)
	g.SetLimit(d.cfg.Concurrency)
	for i := range candidates {
		if gate.Err() != nil {
			truncated.Store(true)
			break
		}
		c := &candidates[i]
		g.Go(func() error {
			if gate.Err() != nil {
				truncated.Store(true)
				return nil
			}
			if _, err := d.scoreAndSave(ctx, c); err != nil {
				mu.Lock()
				failed = append(failed, c.ID)
				mu.Unlock()
				return nil
			}
			updated.Add(1)
			return nil
		})
	}
	_ = g.Wait()

	slices.SortFunc(failed, func(a, b uuid.UUID) int { return bytes.Compare(a[:], b[:]) })
	result := &Result{
		Selected:     len(candidates),
		UpdatedCount: int(updated.Load()),
		FailedIDs:    failed,
		Truncated:    truncated.Load(),
	}

	span.SetAttributes(
		attribute.Int("recompute.selected", result.Selected),
		attribute.Int("recompute.updated", result.UpdatedCount),
		attribute.Int("recompute.failed", len(result.FailedIDs)),
		attribute.Bool("recompute.truncated", result.Truncated),
	)
	d.logger.InfoContext(ctx, "recompute batch finished",
		"selected", result.Selected,
		"updated", result.UpdatedCount,
		"failed", len(result.FailedIDs),
		"truncated", result.Truncated,
	)
	return result, nil
}

// RecomputeOne rescores and persists a single candidate.
func (d *Driver) RecomputeOne(ctx context.Context, id uuid.UUID) (*types.ScoreUpdate, error) {
	ctx = logging.WithLogFields(ctx, logging.LogFields{Component: component})

	c, err := d.store.GetCandidate(ctx, id)
	if err != nil {
		return nil, fmt.Errorf("failed to load candidate %s: %w", id, err)
	}
	if c == nil {
		return nil, fmt.Errorf("candidate %s: %w", id, types.ErrCandidateNotFound)
	}
	return d.scoreAndSave(ctx, c)
}

func (d *Driver) scoreAndSave(ctx context.Context, c *types.Candidate) (*types.ScoreUpdate, error) {
	ctx = logging.WithLogFields(ctx, logging.LogFields{CandidateID: logging.Ptr(c.ID.String())})

	update, err := d.score(ctx, c)
	if err != nil {
		d.logger.WarnContext(ctx, "failed to score candidate", "error", err)
		return nil, err
	}
	if err := d.store.SaveScore(ctx, c.ID, *update); err != nil {
		d.logger.WarnContext(ctx, "failed to persist score", "error", err)
		return nil, fmt.Errorf("failed to persist score: %w", err)
	}
	d.logger.DebugContext(ctx, "score updated", "profile_score", update.ProfileScore)
	return update, nil
}

func (d *Driver) score(ctx context.Context, c *types.Candidate) (*types.ScoreUpdate, error) {
	breakdown, err := d.scorer.ComputeProfileScore(ctx, c)
	if err != nil {
		return nil, err
	}
	if d.validator != nil {
		if err := d.validator.ValidateBreakdown(breakdown); err != nil {
			return nil, fmt.Errorf("breakdown failed validation: %w", err)
		}
	}
	update := types.NewScoreUpdate(breakdown, d.scorer.Version(), d.scorer.Now())
	return &update, nil
}

// IsNotFound reports whether err means the candidate does not exist.
func IsNotFound(err error) bool {
	return errors.Is(err, types.ErrCandidateNotFound)
}
