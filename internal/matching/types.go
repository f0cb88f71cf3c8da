// Package matching ranks job postings against a candidate profile, using
// either a deterministic heuristic or embedding similarity.
package matching

import (
	"context"
	"encoding/json"

	"i-hire-go/internal/storage/models"
)

// ExperienceEntry is one role in a candidate's work history.
type ExperienceEntry struct {
	Title    string `json:"title"`
	Company  string `json:"company"`
	Duration string `json:"duration"`
}

// EducationEntry is one education record.
type EducationEntry struct {
	Degree      string `json:"degree"`
	Field       string `json:"field"`
	Institution string `json:"institution"`
}

// Candidate is the matcher's view of a user profile.
type Candidate struct {
	Name            string
	Skills          []string
	Experience      []ExperienceEntry
	Education       []EducationEntry
	CurrentPosition string
	Location        string
	CVText          string
}

// CandidateFromProfile decodes the JSON profile columns into a typed
// candidate. Corrupt columns decode to empty values.
func CandidateFromProfile(profile *models.UserProfile) *Candidate {
	c := &Candidate{
		Name:            profile.Name,
		CurrentPosition: profile.CurrentPosition,
		Location:        profile.Location,
		CVText:          profile.CVText,
	}
	if len(profile.Skills) > 0 {
		_ = json.Unmarshal(profile.Skills, &c.Skills)
	}
	if len(profile.Experience) > 0 {
		_ = json.Unmarshal(profile.Experience, &c.Experience)
	}
	if len(profile.Education) > 0 {
		_ = json.Unmarshal(profile.Education, &c.Education)
	}
	return c
}

// MatchResult is one scored job recommendation.
type MatchResult struct {
	JobID      string             `json:"jobId"`
	JobTitle   string             `json:"jobTitle"`
	Company    string             `json:"company"`
	Location   string             `json:"location"`
	MatchScore int                `json:"matchScore"`
	Reason     string             `json:"reason"`
	Job        *models.JobPosting `json:"job,omitempty"`
}

// ModelStatus reports which matching strategy is in effect.
type ModelStatus struct {
	Loaded  bool   `json:"loaded"`
	Status  string `json:"status"` // ready | fallback | error
	Message string `json:"message"`
}

// Strategy ranks jobs for a candidate. Implementations are stateless per
// call and must return at most limit results sorted by descending score.
type Strategy interface {
	Name() string
	Recommend(ctx context.Context, candidate *Candidate, jobs []models.JobPosting, limit int) ([]MatchResult, error)
}

// jobCategories decodes the posting's category list.
func jobCategories(job *models.JobPosting) []string {
	if len(job.JobCategories) == 0 {
		return nil
	}
	var categories []string
	_ = json.Unmarshal(job.JobCategories, &categories)
	return categories
}
