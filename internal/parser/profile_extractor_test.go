package parser

import (
	"context"
	"errors"
	"testing"

	"github.com/cloudwego/eino/components/model"
	"github.com/cloudwego/eino/schema"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// mockChatModel returns a canned response or error.
type mockChatModel struct {
	response string
	err      error
	calls    int
}

func (m *mockChatModel) Generate(ctx context.Context, messages []*schema.Message, options ...model.Option) (*schema.Message, error) {
	m.calls++
	if m.err != nil {
		return nil, m.err
	}
	return schema.AssistantMessage(m.response, nil), nil
}

func (m *mockChatModel) Stream(ctx context.Context, messages []*schema.Message, options ...model.Option) (*schema.StreamReader[*schema.Message], error) {
	return nil, errors.New("not implemented")
}

func (m *mockChatModel) WithTools(tools []*schema.ToolInfo) (model.ToolCallingChatModel, error) {
	return m, nil
}

const sampleProfileResponse = "```json\n" + `{
	"name": "Jane Doe",
	"email": "jane@example.com",
	"phone": "+49 170 1234567",
	"education": [{"degree": "BSc Computer Science", "institution": "TU Berlin", "year": "2019"}],
	"experience": [{
		"company": "Acme",
		"position": "Software Engineer",
		"duration": "Jan 2020 – Mar 2024",
		"responsibilities": ["Built services", "Mentored juniors"]
	}],
	"skills": ["Go", "SQL"],
	"languages": ["English", "German"],
	"certifications": ["AWS SAA"]
}` + "\n```"

func TestProfileExtractorParsesResponse(t *testing.T) {
	extractor := NewProfileExtractor(&mockChatModel{response: sampleProfileResponse})

	profile, err := extractor.Extract(context.Background(), "Jane Doe, Software Engineer at Acme...")
	require.NoError(t, err)

	assert.Equal(t, "Jane Doe", profile.Name)
	assert.Equal(t, "jane@example.com", profile.Email)
	require.Len(t, profile.Education, 1)
	assert.Equal(t, "BSc Computer Science", profile.Education[0].Degree)
	require.Len(t, profile.Experience, 1)
	assert.Equal(t, []string{"Built services", "Mentored juniors"}, profile.Experience[0].Responsibilities)
	assert.Equal(t, []string{"Go", "SQL"}, profile.Skills)
}

func TestProfileExtractorOmittedFieldsStayEmpty(t *testing.T) {
	extractor := NewProfileExtractor(&mockChatModel{response: `{"name": "Jane Doe", "skills": ["Go"]}`})

	profile, err := extractor.Extract(context.Background(), "sparse cv text")
	require.NoError(t, err)

	assert.Equal(t, "Jane Doe", profile.Name)
	assert.Empty(t, profile.Email)
	assert.Empty(t, profile.Education)
	assert.Empty(t, profile.Certifications)
}

func TestProfileExtractorErrors(t *testing.T) {
	t.Run("empty cv text", func(t *testing.T) {
		extractor := NewProfileExtractor(&mockChatModel{response: "{}"})
		_, err := extractor.Extract(context.Background(), "   ")
		require.Error(t, err)
	})

	t.Run("model failure", func(t *testing.T) {
		extractor := NewProfileExtractor(&mockChatModel{err: errors.New("rate limited")})
		_, err := extractor.Extract(context.Background(), "cv text")
		require.Error(t, err)
	})

	t.Run("no json in response", func(t *testing.T) {
		extractor := NewProfileExtractor(&mockChatModel{response: "I cannot parse this CV."})
		_, err := extractor.Extract(context.Background(), "cv text")
		require.Error(t, err)
	})
}

func TestExtractBalancedJSON(t *testing.T) {
	assert.Equal(t, `{"a": "b{c}"}`, extractJSONObject(`noise {"a": "b{c}"} trailing`))
	assert.Equal(t, `[{"q": "x"}]`, extractJSONArray(`Here you go: [{"q": "x"}]`))
	assert.Empty(t, extractJSONObject("no braces here"))
}
