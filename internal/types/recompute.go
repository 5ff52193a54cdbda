package types

import (
	"github.com/go-playground/validator/v10"
	"github.com/google/uuid"
)

// MaxRecomputeIDs bounds the explicit ID list of a single request.
const MaxRecomputeIDs = 1000

// RecomputeRequest is the body of a recompute call. Both fields are optional.
type RecomputeRequest struct {
	CandidateIDs []uuid.UUID `json:"candidateIds,omitempty" validate:"max=1000"`
	Limit        int         `json:"limit,omitempty"`
}

// Validate validates the RecomputeRequest using the validator.
func (r *RecomputeRequest) Validate() error {
	validate := validator.New()
	return validate.Struct(r)
}

// RecomputeResponse reports the outcome of a recompute batch.
type RecomputeResponse struct {
	Success      bool        `json:"success"`
	UpdatedCount int         `json:"updatedCount"`
	FailedIDs    []uuid.UUID `json:"failedIds,omitempty"`
	Truncated    bool        `json:"truncated,omitempty"`
	Message      string      `json:"message,omitempty"`
}
