package profile

import (
	"context"
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"i-hire-go/internal/parser"
	"i-hire-go/internal/storage/models"
)

func TestAnalyzeCVValidatesInput(t *testing.T) {
	s := NewService(nil, nil, nil, nil)

	_, err := s.AnalyzeCV(context.Background(), "", "cv.pdf", []byte("data"))
	require.Error(t, err)

	_, err = s.AnalyzeCV(context.Background(), "user-1", "cv.pdf", nil)
	require.Error(t, err)
}

func TestDownloadCVRequiresUserID(t *testing.T) {
	s := NewService(nil, nil, nil, nil)
	_, err := s.DownloadCV(context.Background(), " ", "url")
	require.Error(t, err)
}

func TestUpsertRequiresUserID(t *testing.T) {
	s := NewService(nil, nil, nil, nil)
	_, err := s.Upsert(context.Background(), " ", &UpdateRequest{})
	require.Error(t, err)
}

func TestApplyCVToProfileMapsFields(t *testing.T) {
	profile := &models.UserProfile{UserID: "user-1"}
	cv := &parser.CVProfile{
		Name:  "Jane Doe",
		Email: "jane@example.com",
		Experience: []parser.CVExperience{
			{Company: "Acme", Position: "Software Engineer", Duration: "2020-2024"},
			{Company: "Initech", Position: "Intern", Duration: "2019"},
		},
		Education: []parser.CVEducation{
			{Degree: "BSc Computer Science", Institution: "TU Berlin", Year: "2019"},
		},
		Skills: []string{"Go", "SQL"},
	}

	err := applyCVToProfile(profile, cv, "cv/user-1/original.pdf", "cv/user-1/parsed_text.txt", "full cv text")
	require.NoError(t, err)

	assert.Equal(t, "Jane Doe", profile.Name)
	assert.Equal(t, "jane@example.com", profile.Email)
	// The most recent position becomes the current one.
	assert.Equal(t, "Software Engineer", profile.CurrentPosition)
	assert.Equal(t, "cv/user-1/original.pdf", profile.CVObjectKey)
	assert.Equal(t, "full cv text", profile.CVText)

	var experience []ExperienceEntry
	require.NoError(t, json.Unmarshal(profile.Experience, &experience))
	require.Len(t, experience, 2)
	assert.Equal(t, "Software Engineer", experience[0].Title)
	assert.Equal(t, "Acme", experience[0].Company)

	var skills []string
	require.NoError(t, json.Unmarshal(profile.Skills, &skills))
	assert.Equal(t, []string{"Go", "SQL"}, skills)
}

func TestApplyCVToProfileKeepsExistingData(t *testing.T) {
	existingSkills, err := models.ToJSON([]string{"Python"})
	require.NoError(t, err)

	profile := &models.UserProfile{
		UserID:          "user-1",
		Name:            "Existing Name",
		CurrentPosition: "Staff Engineer",
		Skills:          existingSkills,
	}

	// A sparse extraction must not blank out known fields.
	err = applyCVToProfile(profile, &parser.CVProfile{}, "key", "", "text")
	require.NoError(t, err)

	assert.Equal(t, "Existing Name", profile.Name)
	assert.Equal(t, "Staff Engineer", profile.CurrentPosition)

	var skills []string
	require.NoError(t, json.Unmarshal(profile.Skills, &skills))
	assert.Equal(t, []string{"Python"}, skills)
}
