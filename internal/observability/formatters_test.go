package observability

import (
	"bytes"
	"strings"
	"testing"

	"github.com/google/uuid"
	"github.com/jonathan/talent-pool/internal/recompute"
	"github.com/jonathan/talent-pool/internal/scoring"
	"github.com/jonathan/talent-pool/internal/types"
	"github.com/stretchr/testify/assert"
)

func TestBar(t *testing.T) {
	assert.Equal(t, strings.Repeat("#", 20), bar(20, 20))
	assert.Equal(t, strings.Repeat("#", 10)+strings.Repeat(".", 10), bar(10, 20))
	assert.Equal(t, strings.Repeat(".", 20), bar(0, 20))
	assert.Equal(t, strings.Repeat("#", 20), bar(50, 20), "over cap is clamped")
	assert.Equal(t, strings.Repeat(".", 20), bar(3, 0))
}

func TestPrintBreakdown(t *testing.T) {
	var buf bytes.Buffer
	p := NewPrinter(&buf)
	c := &types.Candidate{ID: uuid.New(), Name: "Ada"}
	b := types.ScoreBreakdown{Projects: 8, Experience: 10, Skills: 25, Coding: 17, Achievements: 4, Completeness: 3, Recency: 2, Total: 69}

	p.PrintBreakdown(c, b, scoring.DefaultWeights())

	out := buf.String()
	assert.Contains(t, out, "PROFILE SCORE")
	assert.Contains(t, out, "Candidate: Ada")
	assert.Contains(t, out, c.ID.String())
	assert.Contains(t, out, "Skills         25/25")
	assert.Contains(t, out, "TOTAL          69/100")
	assert.True(t, strings.HasPrefix(out, "┌"))
}

func TestPrintBreakdown_NilCandidate(t *testing.T) {
	var buf bytes.Buffer
	NewPrinter(&buf).PrintBreakdown(nil, types.ScoreBreakdown{}, scoring.DefaultWeights())
	assert.Empty(t, buf.String())
}

func TestPrintRecomputeResult(t *testing.T) {
	var buf bytes.Buffer
	p := NewPrinter(&buf)

	failed := make([]uuid.UUID, 7)
	for i := range failed {
		failed[i] = uuid.New()
	}
	p.PrintRecomputeResult(&recompute.Result{Selected: 20, UpdatedCount: 13, FailedIDs: failed, Truncated: true})

	out := buf.String()
	assert.Contains(t, out, "Selected:  20")
	assert.Contains(t, out, "Updated:   13")
	assert.Contains(t, out, "Failed:    7")
	assert.Contains(t, out, "Truncated:")
	assert.Contains(t, out, failed[0].String())
	assert.NotContains(t, out, failed[6].String())
	assert.Contains(t, out, "... and 2 more")
}

func TestPrintRecomputeResult_Nil(t *testing.T) {
	var buf bytes.Buffer
	NewPrinter(&buf).PrintRecomputeResult(nil)
	assert.Empty(t, buf.String())
}
