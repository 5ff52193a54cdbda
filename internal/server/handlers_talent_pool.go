package server

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"net/url"
	"sort"
	"strconv"
	"strings"

	"github.com/google/uuid"
	"github.com/jonathan/talent-pool/internal/scoring"
	"github.com/jonathan/talent-pool/internal/types"
	"golang.org/x/sync/errgroup"
)

// enrichConcurrency bounds per-page assessment lookups and lazy scoring.
const enrichConcurrency = 8

// maxRecomputeBody caps the recompute request body.
const maxRecomputeBody = 1 << 20

// handleRecompute handles POST /v1/talent-pool/recompute.
func (s *Server) handleRecompute(w http.ResponseWriter, r *http.Request) {
	var req types.RecomputeRequest
	if err := json.NewDecoder(io.LimitReader(r.Body, maxRecomputeBody)).Decode(&req); err != nil && !errors.Is(err, io.EOF) {
		writeJSON(s.logger, w, http.StatusBadRequest, failure("Invalid request body"))
		return
	}
	if err := req.Validate(); err != nil {
		writeJSON(s.logger, w, http.StatusBadRequest, failure(extractValidationErrors(err)))
		return
	}

	result, err := s.recomputer.Recompute(r.Context(), req)
	if err != nil {
		s.logger.ErrorContext(r.Context(), "recompute failed", "error", err)
		writeJSON(s.logger, w, http.StatusInternalServerError, types.RecomputeResponse{
			Success: false,
			Message: "Failed to recompute scores",
		})
		return
	}

	writeJSON(s.logger, w, http.StatusOK, result.Response())
}

// handleListTalentPool handles GET /v1/talent-pool.
func (s *Server) handleListTalentPool(w http.ResponseWriter, r *http.Request) {
	q, err := parseTalentPoolQuery(r.URL.Query())
	if err != nil {
		writeJSON(s.logger, w, HTTPStatus(err), failure(err.Error()))
		return
	}

	candidates, total, err := s.store.ListTalentPool(r.Context(), q)
	if err != nil {
		s.logger.ErrorContext(r.Context(), "failed to list talent pool", "error", err)
		writeJSON(s.logger, w, http.StatusInternalServerError, failure("Failed to load talent pool"))
		return
	}

	entries := s.enrich(r.Context(), candidates)

	if q.JobID != nil && q.Sort == types.SortByJob {
		job, err := s.store.GetJobRequirements(r.Context(), *q.JobID)
		if err != nil {
			s.logger.WarnContext(r.Context(), "failed to load job for ranking", "job_id", q.JobID.String(), "error", err)
		}
		if job != nil {
			rankByJob(entries, job)
		}
	}

	writeJSON(s.logger, w, http.StatusOK, types.TalentPoolPage{
		Success:    true,
		Page:       q.Page,
		Limit:      q.Limit,
		Total:      total,
		Candidates: entries,
		JobID:      q.JobID,
	})
}

// enrich attaches the latest assessment to each candidate and scores any
// candidate without a score yet. Both steps are best-effort.
func (s *Server) enrich(ctx context.Context, candidates []types.Candidate) []types.TalentPoolEntry {
	entries := make([]types.TalentPoolEntry, len(candidates))

	g := new(errgroup.Group)
	g.SetLimit(enrichConcurrency)
	for i := range candidates {
		entries[i].Candidate = candidates[i]
		e := &entries[i]
		g.Go(func() error {
			latest, err := s.store.LatestAssessment(ctx, e.ID)
			if err != nil {
				s.logger.WarnContext(ctx, "failed to load latest assessment", "candidate_id", e.ID.String(), "error", err)
			}
			e.LatestAssessment = latest

			if e.ProfileScore == 0 {
				update, err := s.recomputer.RecomputeOne(ctx, e.ID)
				if err != nil {
					s.logger.WarnContext(ctx, "lazy scoring failed", "candidate_id", e.ID.String(), "error", err)
					return nil
				}
				applyUpdate(&e.Candidate, update)
			}
			return nil
		})
	}
	_ = g.Wait()

	return entries
}

func applyUpdate(c *types.Candidate, update *types.ScoreUpdate) {
	scores := update.Scores
	computedAt := update.ComputedAt
	c.Scores = &scores
	c.ProfileScore = update.ProfileScore
	c.ScoreVersion = update.ScoreVersion
	c.LastScoreComputedAt = &computedAt
}

// rankByJob sets job match and final scores and orders entries by final score, descending.
func rankByJob(entries []types.TalentPoolEntry, job *types.JobRequirements) {
	for i := range entries {
		match := scoring.JobMatch(&entries[i].Candidate, job)
		final := scoring.FinalScore(entries[i].ProfileScore, match)
		entries[i].JobMatchScore = &match
		entries[i].FinalScore = &final
	}
	sort.SliceStable(entries, func(a, b int) bool {
		return *entries[a].FinalScore > *entries[b].FinalScore
	})
}

func parseTalentPoolQuery(values url.Values) (types.TalentPoolQuery, error) {
	q := types.TalentPoolQuery{Q: strings.TrimSpace(values.Get("q"))}

	var err error
	if q.MinScore, err = intParam(values, "minScore"); err != nil {
		return q, err
	}
	if q.Page, err = intParam(values, "page"); err != nil {
		return q, err
	}
	if q.Limit, err = intParam(values, "limit"); err != nil {
		return q, err
	}
	if v := strings.TrimSpace(values.Get("minYears")); v != "" {
		if q.MinYears, err = strconv.ParseFloat(v, 64); err != nil {
			return q, &ErrValidation{Field: "minYears", Message: "must be a number"}
		}
	}
	for _, skill := range strings.Split(values.Get("skills"), ",") {
		if skill = strings.TrimSpace(skill); skill != "" {
			q.Skills = append(q.Skills, skill)
		}
	}
	if q.Sort, err = types.ParseTalentPoolSort(values.Get("sort")); err != nil {
		return q, &ErrValidation{Field: "sort", Message: err.Error()}
	}
	if v := strings.TrimSpace(values.Get("jobId")); v != "" {
		id, err := uuid.Parse(v)
		if err != nil {
			return q, &ErrValidation{Field: "jobId", Message: "must be a UUID"}
		}
		q.JobID = &id
	}

	q.Normalize()
	return q, nil
}

func intParam(values url.Values, name string) (int, error) {
	v := strings.TrimSpace(values.Get(name))
	if v == "" {
		return 0, nil
	}
	n, err := strconv.Atoi(v)
	if err != nil {
		return 0, &ErrValidation{Field: name, Message: "must be an integer"}
	}
	return n, nil
}
