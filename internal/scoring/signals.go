package scoring

import (
	"math"
	"strings"
	"time"
	"unicode/utf8"

	"github.com/jonathan/talent-pool/internal/types"
)

// RawSignals are the unrounded component values for one candidate.
type RawSignals struct {
	Projects     float64
	Experience   float64
	Skills       float64
	Coding       float64
	Achievements float64
	Completeness float64
	Recency      float64
}

// UniqueSkills returns the normalized distinct skills of a candidate.
func UniqueSkills(skills []string) map[string]struct{} {
	set := make(map[string]struct{}, len(skills))
	for _, s := range skills {
		normalized := strings.ToLower(strings.TrimSpace(s))
		if normalized == "" {
			continue
		}
		set[normalized] = struct{}{}
	}
	return set
}

// SkillsSignal ramps linearly to the skills cap at w.SkillsFullCount distinct skills.
func SkillsSignal(c *types.Candidate, w WeightScheme) float64 {
	n := len(UniqueSkills(c.Skills))
	ratio := math.Min(float64(n)/float64(w.SkillsFullCount), 1)
	return clamp(ratio*float64(w.Skills), 0, float64(w.Skills))
}

// IsSubstantialProject reports whether a project earns credit: it needs a title and
// either two tags or a link.
func IsSubstantialProject(p types.Project) bool {
	if strings.TrimSpace(p.Title) == "" {
		return false
	}
	return len(p.Tags) >= 2 || strings.TrimSpace(p.Link) != ""
}

// ProjectsSignal awards a fixed number of points per substantial project.
func ProjectsSignal(c *types.Candidate, w WeightScheme) float64 {
	substantial := 0
	for _, p := range c.Projects {
		if IsSubstantialProject(p) {
			substantial++
		}
	}
	return clamp(float64(substantial)*w.PointsPerProject, 0, float64(w.Projects))
}

// AchievementsSignal awards a fixed number of points per listed achievement.
func AchievementsSignal(c *types.Candidate, w WeightScheme) float64 {
	return clamp(float64(len(c.Achievements))*w.PointsPerAchievement, 0, float64(w.Achievements))
}

// CompletenessSignal credits a complete profile, a LinkedIn URL and a substantive summary.
func CompletenessSignal(c *types.Candidate, w WeightScheme) float64 {
	points := 0.0
	if c.IsProfileComplete {
		points += w.CompleteProfilePoints
	}
	if strings.TrimSpace(c.LinkedInURL) != "" {
		points += w.LinkedInPoints
	}
	if utf8.RuneCountInString(c.ProfessionalSummary) > w.SummaryMinLength {
		points += w.SummaryPoints
	}
	return clamp(points, 0, float64(w.Completeness))
}

// RecencySignal credits recently updated profiles. Both windows are inclusive:
// an age of exactly RecentDays still earns RecentPoints.
func RecencySignal(updatedAt, now time.Time, w WeightScheme) float64 {
	if updatedAt.IsZero() {
		return 0
	}
	days := now.Sub(updatedAt).Hours() / 24
	if days < 0 {
		days = 0
	}
	switch {
	case days <= w.RecentDays:
		return clamp(w.RecentPoints, 0, float64(w.Recency))
	case days <= w.StaleDays:
		return clamp(w.StalePoints, 0, float64(w.Recency))
	default:
		return 0
	}
}

// CodingSignal scales the latest assessment score (0-100) onto the coding cap.
func CodingSignal(latest *types.AssessmentCompletion, w WeightScheme) float64 {
	if latest == nil || !isUsable(latest.Score) {
		return 0
	}
	ratio := math.Min(latest.Score/100, 1)
	return clamp(ratio*float64(w.Coding), 0, float64(w.Coding))
}

// ExtractSignals runs every extractor against a candidate.
func ExtractSignals(c *types.Candidate, latest *types.AssessmentCompletion, now time.Time, w WeightScheme) RawSignals {
	return RawSignals{
		Projects:     ProjectsSignal(c, w),
		Experience:   ExperienceSignal(c, w),
		Skills:       SkillsSignal(c, w),
		Coding:       CodingSignal(latest, w),
		Achievements: AchievementsSignal(c, w),
		Completeness: CompletenessSignal(c, w),
		Recency:      RecencySignal(c.UpdatedAt, now, w),
	}
}

func isUsable(f float64) bool {
	return !math.IsNaN(f) && !math.IsInf(f, 0)
}

func clamp(v, lo, hi float64) float64 {
	if !isUsable(v) {
		return lo
	}
	return math.Max(lo, math.Min(hi, v))
}
