package server

import (
	"net/http"
	"time"

	"github.com/google/uuid"
	"github.com/jonathan/talent-pool/internal/recompute"
	"github.com/jonathan/talent-pool/internal/server/middleware"
	"github.com/jonathan/talent-pool/internal/types"
)

// CandidateScoreResponse is the stored score of one candidate.
type CandidateScoreResponse struct {
	Success             bool                  `json:"success"`
	CandidateID         uuid.UUID             `json:"candidateId"`
	Scores              *types.ScoreBreakdown `json:"scores"`
	ProfileScore        int                   `json:"profileScore"`
	ScoreVersion        int                   `json:"scoreVersion"`
	LastScoreComputedAt *time.Time            `json:"lastScoreComputedAt,omitempty"`
}

// authorizeCandidate resolves {id} and checks the caller is that candidate or staff.
func (s *Server) authorizeCandidate(w http.ResponseWriter, r *http.Request) (uuid.UUID, bool) {
	id, err := uuid.Parse(r.PathValue("id"))
	if err != nil {
		writeJSON(s.logger, w, http.StatusBadRequest, failure("Invalid candidate ID"))
		return uuid.Nil, false
	}

	session, ok := middleware.SessionFromContext(r.Context())
	if !ok {
		writeJSON(s.logger, w, http.StatusUnauthorized, failure("Unauthorized"))
		return uuid.Nil, false
	}
	if session.UserID != id && !session.Role.CanManageTalentPool() {
		err := &ErrForbidden{Reason: "cannot access another candidate's score"}
		writeJSON(s.logger, w, HTTPStatus(err), failure(err.Error()))
		return uuid.Nil, false
	}
	return id, true
}

// handleGetScore handles GET /v1/candidates/{id}/score.
func (s *Server) handleGetScore(w http.ResponseWriter, r *http.Request) {
	id, ok := s.authorizeCandidate(w, r)
	if !ok {
		return
	}

	c, err := s.store.GetCandidate(r.Context(), id)
	if err != nil {
		s.logger.ErrorContext(r.Context(), "failed to load candidate", "candidate_id", id.String(), "error", err)
		writeJSON(s.logger, w, http.StatusInternalServerError, failure("Failed to load candidate"))
		return
	}
	if c == nil {
		err := &ErrCandidateNotFound{CandidateID: id}
		writeJSON(s.logger, w, HTTPStatus(err), failure(err.Error()))
		return
	}

	writeJSON(s.logger, w, http.StatusOK, CandidateScoreResponse{
		Success:             true,
		CandidateID:         c.ID,
		Scores:              c.Scores,
		ProfileScore:        c.ProfileScore,
		ScoreVersion:        c.ScoreVersion,
		LastScoreComputedAt: c.LastScoreComputedAt,
	})
}

// handleRecomputeScore handles POST /v1/candidates/{id}/score.
func (s *Server) handleRecomputeScore(w http.ResponseWriter, r *http.Request) {
	id, ok := s.authorizeCandidate(w, r)
	if !ok {
		return
	}

	update, err := s.recomputer.RecomputeOne(r.Context(), id)
	if err != nil {
		if recompute.IsNotFound(err) {
			notFound := &ErrCandidateNotFound{CandidateID: id}
			writeJSON(s.logger, w, HTTPStatus(notFound), failure(notFound.Error()))
			return
		}
		s.logger.ErrorContext(r.Context(), "failed to recompute score", "candidate_id", id.String(), "error", err)
		writeJSON(s.logger, w, http.StatusInternalServerError, failure("Failed to recompute score"))
		return
	}

	scores := update.Scores
	computedAt := update.ComputedAt
	writeJSON(s.logger, w, http.StatusOK, CandidateScoreResponse{
		Success:             true,
		CandidateID:         id,
		Scores:              &scores,
		ProfileScore:        update.ProfileScore,
		ScoreVersion:        update.ScoreVersion,
		LastScoreComputedAt: &computedAt,
	})
}
