package matching

import (
	"context"
	"math"
	"sort"
	"strings"

	"i-hire-go/internal/storage/models"
)

// HeuristicMatcher is the always-available deterministic scorer. It scores
// five independent signals; each signal contributes to maxScore only when
// both sides have usable data, so the final score is a percentage of the
// applicable signals rather than all possible ones.
type HeuristicMatcher struct{}

// NewHeuristicMatcher creates the fallback scorer.
func NewHeuristicMatcher() *HeuristicMatcher {
	return &HeuristicMatcher{}
}

func (m *HeuristicMatcher) Name() string {
	return "heuristic"
}

// Recommend scores every job and returns the top limit by descending score.
func (m *HeuristicMatcher) Recommend(ctx context.Context, candidate *Candidate, jobs []models.JobPosting, limit int) ([]MatchResult, error) {
	userSkills := lowercaseAll(candidate.Skills)
	userPosition := strings.ToLower(candidate.CurrentPosition)
	userLocation := strings.ToLower(candidate.Location)

	results := make([]MatchResult, 0, len(jobs))
	for i := range jobs {
		job := &jobs[i]
		score, maxScore := 0, 0
		var reasons []string

		// Skills overlap, weight 40.
		if job.Skills != "" && len(userSkills) > 0 {
			maxScore += 40
			jobSkills := splitSkills(job.Skills)
			matches := matchingSkills(userSkills, jobSkills)
			if len(matches) > 0 {
				score += min(len(matches)*10, 40)
				reasons = append(reasons, "Skills match: "+strings.Join(matches, ", "))
			}
		}

		// Experience sufficiency, weight 20. Number of listed roles stands
		// in for years of experience.
		if job.MinExperience > 0 && len(candidate.Experience) > 0 {
			maxScore += 20
			if len(candidate.Experience) >= job.MinExperience {
				score += 20
				reasons = append(reasons, "Experience level suitable")
			}
		}

		// Category vs current position, weight 15.
		categories := jobCategories(job)
		if len(categories) > 0 && userPosition != "" {
			maxScore += 15
			for _, category := range categories {
				lc := strings.ToLower(category)
				if strings.Contains(lc, userPosition) || strings.Contains(userPosition, lc) {
					score += 15
					reasons = append(reasons, "Job category matches your background")
					break
				}
			}
		}

		// Location overlap, weight 10.
		if job.City != "" && userLocation != "" {
			maxScore += 10
			city := strings.ToLower(job.City)
			if strings.Contains(city, userLocation) || strings.Contains(userLocation, city) {
				score += 10
				reasons = append(reasons, "Location preference match")
			}
		}

		// Description keyword hits, weight 15.
		if job.JobDescription != "" && len(userSkills) > 0 {
			maxScore += 15
			desc := strings.ToLower(job.JobDescription)
			var hits []string
			for _, skill := range userSkills {
				if strings.Contains(desc, skill) {
					hits = append(hits, skill)
				}
			}
			if len(hits) > 0 {
				score += min(len(hits)*3, 15)
				reasons = append(reasons, "Job description keywords match: "+strings.Join(distinct(hits), ", "))
			}
		}

		matchScore := 0
		if maxScore > 0 {
			matchScore = int(math.Round(float64(score) / float64(maxScore) * 100))
		}

		results = append(results, MatchResult{
			JobID:      job.JobID,
			JobTitle:   job.JobTitle,
			Company:    companyOrCity(job),
			Location:   job.City,
			MatchScore: matchScore,
			Reason:     strings.Join(reasons, "; "),
			Job:        job,
		})
	}

	sort.SliceStable(results, func(i, j int) bool {
		return results[i].MatchScore > results[j].MatchScore
	})
	if limit > 0 && len(results) > limit {
		results = results[:limit]
	}
	return results, nil
}

// matchingSkills returns the candidate skills that overlap a job skill in
// either substring direction.
func matchingSkills(userSkills, jobSkills []string) []string {
	var matches []string
	for _, skill := range userSkills {
		for _, jobSkill := range jobSkills {
			if strings.Contains(jobSkill, skill) || strings.Contains(skill, jobSkill) {
				matches = append(matches, skill)
				break
			}
		}
	}
	return matches
}

// splitSkills normalizes a comma-separated skill string.
func splitSkills(s string) []string {
	parts := strings.Split(strings.ToLower(s), ",")
	skills := make([]string, 0, len(parts))
	for _, p := range parts {
		if trimmed := strings.TrimSpace(p); trimmed != "" {
			skills = append(skills, trimmed)
		}
	}
	return skills
}

func lowercaseAll(values []string) []string {
	out := make([]string, 0, len(values))
	for _, v := range values {
		if trimmed := strings.TrimSpace(strings.ToLower(v)); trimmed != "" {
			out = append(out, trimmed)
		}
	}
	return out
}

func distinct(values []string) []string {
	seen := make(map[string]struct{}, len(values))
	out := make([]string, 0, len(values))
	for _, v := range values {
		if _, ok := seen[v]; !ok {
			seen[v] = struct{}{}
			out = append(out, v)
		}
	}
	return out
}

func companyOrCity(job *models.JobPosting) string {
	if job.Company != "" {
		return job.Company
	}
	return job.City
}

func min(a, b int) int {
	if a < b {
		return a
	}
	return b
}

var _ Strategy = (*HeuristicMatcher)(nil)
