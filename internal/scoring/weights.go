// Package scoring computes talent-pool profile scores for job-seeker candidates.
package scoring

import (
	"fmt"
)

// WeightScheme is a versioned set of component caps and extractor tuning values.
// Scores persisted with a given version are always interpreted with the scheme of
// that version.
type WeightScheme struct {
	Version int

	// Component caps; they must sum to 100.
	Projects     int
	Experience   int
	Skills       int
	Coding       int
	Achievements int
	Completeness int
	Recency      int

	// Extractor tuning
	ExperienceFullYears   float64 // years at which the experience component saturates
	MaxYears              float64 // clamp applied to any years signal
	SkillsFullCount       int     // distinct skills at which the skills component saturates
	PointsPerProject      float64
	PointsPerAchievement  float64
	CompleteProfilePoints float64
	LinkedInPoints        float64
	SummaryPoints         float64
	SummaryMinLength      int // summary must be strictly longer than this (runes)
	RecentDays            float64
	RecentPoints          float64
	StaleDays             float64
	StalePoints           float64
}

// WeightsV1 is the first published weight scheme.
var WeightsV1 = WeightScheme{
	Version: 1,

	Projects:     20,
	Experience:   20,
	Skills:       25,
	Coding:       20,
	Achievements: 10,
	Completeness: 3,
	Recency:      2,

	ExperienceFullYears:   10,
	MaxYears:              20,
	SkillsFullCount:       15,
	PointsPerProject:      4,
	PointsPerAchievement:  2,
	CompleteProfilePoints: 2,
	LinkedInPoints:        1,
	SummaryPoints:         1,
	SummaryMinLength:      120,
	RecentDays:            30,
	RecentPoints:          2,
	StaleDays:             60,
	StalePoints:           1,
}

// CurrentScoreVersion is stamped on every breakdown computed with DefaultWeights.
var CurrentScoreVersion = WeightsV1.Version

// DefaultWeights returns the scheme new scores are computed with.
func DefaultWeights() WeightScheme {
	return WeightsV1
}

// MaxTotal is the upper bound of a total score.
const MaxTotal = 100

// CapSum returns the sum of the component caps.
func (w WeightScheme) CapSum() int {
	return w.Projects + w.Experience + w.Skills + w.Coding + w.Achievements + w.Completeness + w.Recency
}

// Validate checks that the scheme is internally consistent.
func (w WeightScheme) Validate() error {
	if w.Version < 1 {
		return fmt.Errorf("weight scheme version must be positive, got %d", w.Version)
	}
	caps := map[string]int{
		"projects":     w.Projects,
		"experience":   w.Experience,
		"skills":       w.Skills,
		"coding":       w.Coding,
		"achievements": w.Achievements,
		"completeness": w.Completeness,
		"recency":      w.Recency,
	}
	for name, c := range caps {
		if c < 0 {
			return fmt.Errorf("weight scheme v%d: %s cap is negative", w.Version, name)
		}
	}
	if sum := w.CapSum(); sum != MaxTotal {
		return fmt.Errorf("weight scheme v%d: caps sum to %d, want %d", w.Version, sum, MaxTotal)
	}
	if w.SkillsFullCount < 1 || w.ExperienceFullYears <= 0 {
		return fmt.Errorf("weight scheme v%d: saturation points must be positive", w.Version)
	}
	if w.StaleDays < w.RecentDays {
		return fmt.Errorf("weight scheme v%d: stale window shorter than recent window", w.Version)
	}
	return nil
}
