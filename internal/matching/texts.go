package matching

import (
	"fmt"
	"strings"

	"i-hire-go/internal/storage/models"
)

const cvTextLimit = 1000

// candidateText builds the single text blob embedded for a candidate.
func candidateText(candidate *Candidate) string {
	var parts []string

	if candidate.CurrentPosition != "" {
		parts = append(parts, "current position: "+candidate.CurrentPosition)
	}
	if len(candidate.Skills) > 0 {
		parts = append(parts, "skills: "+strings.Join(candidate.Skills, ", "))
	}
	if len(candidate.Experience) > 0 {
		entries := make([]string, 0, len(candidate.Experience))
		for _, exp := range candidate.Experience {
			entries = append(entries, fmt.Sprintf("%s at %s for %s", exp.Title, exp.Company, exp.Duration))
		}
		parts = append(parts, "experience: "+strings.Join(entries, ", "))
	}
	if len(candidate.Education) > 0 {
		entries := make([]string, 0, len(candidate.Education))
		for _, edu := range candidate.Education {
			entries = append(entries, fmt.Sprintf("%s in %s from %s", edu.Degree, edu.Field, edu.Institution))
		}
		parts = append(parts, "education: "+strings.Join(entries, ", "))
	}
	if candidate.Location != "" {
		parts = append(parts, "location: "+candidate.Location)
	}
	if candidate.CVText != "" {
		cv := candidate.CVText
		if len(cv) > cvTextLimit {
			cv = cv[:cvTextLimit]
		}
		parts = append(parts, "cv content: "+cv)
	}

	return strings.Join(parts, " ")
}

// jobText builds the single text blob embedded for a job posting.
func jobText(job *models.JobPosting) string {
	var parts []string

	if job.JobTitle != "" {
		parts = append(parts, "job title: "+job.JobTitle)
	}
	if job.JobDescription != "" {
		parts = append(parts, "description: "+job.JobDescription)
	}
	if job.Skills != "" {
		parts = append(parts, "required skills: "+job.Skills)
	}
	if categories := jobCategories(job); len(categories) > 0 {
		parts = append(parts, "categories: "+strings.Join(categories, ", "))
	}
	if job.MinExperience > 0 {
		parts = append(parts, fmt.Sprintf("minimum experience: %d years", job.MinExperience))
	}
	if job.City != "" {
		parts = append(parts, "location: "+job.City)
	}
	if job.Company != "" {
		parts = append(parts, "company: "+job.Company)
	}

	return strings.Join(parts, " ")
}
