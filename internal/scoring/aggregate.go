package scoring

import (
	"math"

	"github.com/jonathan/talent-pool/internal/types"
)

// Aggregate combines raw signals into a breakdown. Non-finite inputs count as zero,
// each component is clamped to its cap and rounded, and the total is the clamped sum.
func Aggregate(s RawSignals, w WeightScheme) types.ScoreBreakdown {
	b := types.ScoreBreakdown{
		Projects:     component(s.Projects, w.Projects),
		Experience:   component(s.Experience, w.Experience),
		Skills:       component(s.Skills, w.Skills),
		Coding:       component(s.Coding, w.Coding),
		Achievements: component(s.Achievements, w.Achievements),
		Completeness: component(s.Completeness, w.Completeness),
		Recency:      component(s.Recency, w.Recency),
	}
	b.Total = min(max(b.ComponentSum(), 0), MaxTotal)
	return b
}

func component(raw float64, limit int) int {
	if !isUsable(raw) {
		raw = 0
	}
	return int(math.Round(clamp(raw, 0, float64(limit))))
}
