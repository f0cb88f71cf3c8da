package matching

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"i-hire-go/internal/storage/models"

	"gorm.io/datatypes"
)

func reactCandidate() *Candidate {
	return &Candidate{
		Name:   "Sam",
		Skills: []string{"React", "Node"},
		Experience: []ExperienceEntry{
			{Title: "Frontend Engineer", Company: "Acme", Duration: "2 years"},
			{Title: "Web Developer", Company: "Initech", Duration: "1 year"},
		},
		CurrentPosition: "Frontend Engineer",
		Location:        "Berlin",
	}
}

func TestHeuristicRanksOverlappingJobHigher(t *testing.T) {
	jobs := []models.JobPosting{
		{
			JobID:          "job-react",
			JobTitle:       "React Developer",
			Skills:         "React, SQL",
			JobDescription: "We build React applications.",
		},
		{
			JobID:          "job-java",
			JobTitle:       "Java Developer",
			Skills:         "SQL, Java",
			JobDescription: "Backend services in Java.",
		},
	}

	m := NewHeuristicMatcher()
	results, err := m.Recommend(context.Background(), reactCandidate(), jobs, 10)
	require.NoError(t, err)
	require.Len(t, results, 2)

	assert.Equal(t, "job-react", results[0].JobID)
	assert.Equal(t, "job-java", results[1].JobID)
	assert.Greater(t, results[0].MatchScore, results[1].MatchScore)
	assert.Contains(t, results[0].Reason, "Skills match")
}

func TestHeuristicNoMatchableFieldsScoresZero(t *testing.T) {
	jobs := []models.JobPosting{{JobID: "job-empty", JobTitle: "Mystery Role"}}

	m := NewHeuristicMatcher()
	results, err := m.Recommend(context.Background(), reactCandidate(), jobs, 10)
	require.NoError(t, err)
	require.Len(t, results, 1)

	// No signal is applicable, so maxScore is 0 and the score is 0.
	assert.Equal(t, 0, results[0].MatchScore)
	assert.Empty(t, results[0].Reason)
}

func TestHeuristicExperienceBinarySignal(t *testing.T) {
	jobs := []models.JobPosting{
		{JobID: "senior", JobTitle: "Senior", MinExperience: 2},
		{JobID: "staff", JobTitle: "Staff", MinExperience: 5},
	}

	m := NewHeuristicMatcher()
	results, err := m.Recommend(context.Background(), reactCandidate(), jobs, 10)
	require.NoError(t, err)
	require.Len(t, results, 2)

	// Two experience entries satisfy minExperience=2 but not 5.
	assert.Equal(t, "senior", results[0].JobID)
	assert.Equal(t, 100, results[0].MatchScore)
	assert.Equal(t, 0, results[1].MatchScore)
}

func TestHeuristicCategoryAndLocationSignals(t *testing.T) {
	jobs := []models.JobPosting{{
		JobID:         "job-1",
		JobTitle:      "Engineer",
		City:          "Berlin",
		JobCategories: datatypes.JSON(`["Frontend Engineer"]`),
	}}

	m := NewHeuristicMatcher()
	results, err := m.Recommend(context.Background(), reactCandidate(), jobs, 10)
	require.NoError(t, err)
	require.Len(t, results, 1)

	// Both applicable signals (category 15, location 10) fire.
	assert.Equal(t, 100, results[0].MatchScore)
	assert.Contains(t, results[0].Reason, "Job category matches your background")
	assert.Contains(t, results[0].Reason, "Location preference match")
}

func TestHeuristicRespectsLimit(t *testing.T) {
	jobs := make([]models.JobPosting, 5)
	for i := range jobs {
		jobs[i] = models.JobPosting{JobID: string(rune('a' + i)), JobTitle: "Role", Skills: "React"}
	}

	m := NewHeuristicMatcher()
	results, err := m.Recommend(context.Background(), reactCandidate(), jobs, 3)
	require.NoError(t, err)
	assert.Len(t, results, 3)
}

func TestSplitSkills(t *testing.T) {
	assert.Equal(t, []string{"react", "node.js", "sql"}, splitSkills("React, Node.js , SQL,"))
}
