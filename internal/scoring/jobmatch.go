package scoring

import (
	"math"
	"regexp"
	"strconv"
	"strings"

	"github.com/jonathan/talent-pool/internal/types"
)

// Blend weights for job-aware ranking.
const (
	jobMatchSkillsWeight = 0.8
	jobMatchYearsWeight  = 0.2
	finalProfileWeight   = 0.7
	finalJobMatchWeight  = 0.3
)

var firstIntegerPattern = regexp.MustCompile(`(\d+)`)

// RequiredYears extracts the first integer from a free-text experience requirement
// such as "3+ years". It returns 0 when none is present.
func RequiredYears(experience string) int {
	m := firstIntegerPattern.FindStringSubmatch(strings.ToLower(experience))
	if m == nil {
		return 0
	}
	n, err := strconv.Atoi(m[1])
	if err != nil {
		return 0
	}
	return n
}

// JobMatch scores how well a candidate fits a job (0-100), weighting skill overlap
// over years of experience.
func JobMatch(c *types.Candidate, job *types.JobRequirements) int {
	required := make([]string, 0, len(job.SkillsRequired))
	for _, s := range job.SkillsRequired {
		required = append(required, strings.ToLower(s))
	}
	denominator := len(required)
	if denominator == 0 {
		denominator = 1
	}

	have := make(map[string]struct{}, len(required))
	for _, s := range required {
		have[s] = struct{}{}
	}
	overlap := 0
	for _, s := range c.Skills {
		if _, ok := have[strings.ToLower(s)]; ok {
			overlap++
		}
	}
	skillsPct := math.Min(100, math.Round(float64(overlap)/float64(denominator)*100))

	yearsPct := 100.0
	if reqYears := RequiredYears(job.Experience); reqYears > 0 {
		years := 0.0
		if c.YearsOfExperience != nil && isUsable(*c.YearsOfExperience) {
			years = math.Max(0, *c.YearsOfExperience)
		}
		yearsPct = math.Min(100, math.Round(math.Min(years, float64(reqYears))/float64(reqYears)*100))
	}

	return int(math.Round(jobMatchSkillsWeight*skillsPct + jobMatchYearsWeight*yearsPct))
}

// FinalScore blends a stored profile score with a job match score.
func FinalScore(profileScore, jobMatch int) int {
	return int(math.Round(finalProfileWeight*float64(profileScore) + finalJobMatchWeight*float64(jobMatch)))
}
