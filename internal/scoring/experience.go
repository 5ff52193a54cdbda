package scoring

import (
	"math"
	"regexp"
	"strconv"
	"strings"

	"github.com/jonathan/talent-pool/internal/types"
)

// yearsPattern matches phrases like "7 years", "10+ yrs" or "3years".
var yearsPattern = regexp.MustCompile(`(\d+)\+?\s*(?:years|yrs)`)

// ParseYearsFromSummary extracts the first "<n> years" figure from free text.
// The second return value is false when no figure is present. Figures too large
// to represent are reported as math.MaxInt.
func ParseYearsFromSummary(summary string) (int, bool) {
	m := yearsPattern.FindStringSubmatch(strings.ToLower(summary))
	if m == nil {
		return 0, false
	}
	n, err := strconv.Atoi(m[1])
	if err != nil {
		// only digits reach here, so the failure is a range error
		return math.MaxInt, true
	}
	return n, true
}

// ExperienceYears resolves a candidate's years of experience, clamped to [0, w.MaxYears].
// An explicit positive value wins; otherwise the professional summary is scanned.
func ExperienceYears(c *types.Candidate, w WeightScheme) float64 {
	years := 0.0
	if c.YearsOfExperience != nil && isUsable(*c.YearsOfExperience) && *c.YearsOfExperience > 0 {
		years = *c.YearsOfExperience
	} else if n, ok := ParseYearsFromSummary(c.ProfessionalSummary); ok {
		years = float64(n)
	}
	return clamp(years, 0, w.MaxYears)
}

// ExperienceSignal scores experience: two points per year up to the saturation point.
func ExperienceSignal(c *types.Candidate, w WeightScheme) float64 {
	years := math.Min(ExperienceYears(c, w), w.ExperienceFullYears)
	perYear := float64(w.Experience) / w.ExperienceFullYears
	return clamp(years*perYear, 0, float64(w.Experience))
}
