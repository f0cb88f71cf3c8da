package evaluation

import (
	"context"
	"errors"
	"testing"

	"github.com/cloudwego/eino/components/model"
	"github.com/cloudwego/eino/schema"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"i-hire-go/internal/constants"
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
	return &schema.Message{
		Role:    schema.Assistant,
		Content: m.response,
	}, nil
}

func (m *mockChatModel) Stream(ctx context.Context, messages []*schema.Message, options ...model.Option) (*schema.StreamReader[*schema.Message], error) {
	return nil, nil
}

func (m *mockChatModel) WithTools(tools []*schema.ToolInfo) (model.ToolCallingChatModel, error) {
	return m, nil
}

const validLabelResponse = `{
  "Relevance to Question": {"value": "Highly Relevant", "justification": "Addresses the question directly.", "category": "CORE"},
  "Technical Accuracy": {"value": "Mostly Correct", "justification": "Minor inaccuracy in terminology.", "category": "TECHNICAL"}
}`

func TestEvaluateAnswerSkipsEmptyAndSentinel(t *testing.T) {
	mock := &mockChatModel{response: validLabelResponse}
	e := NewEvaluator(mock)

	for _, answer := range []string{"", "   ", "\t\n", SkipSentinel} {
		result := e.EvaluateAnswer(context.Background(), "Tell me about Go.", answer, "technical")
		require.NotNil(t, result)
		assert.True(t, result.Skipped, "answer %q", answer)
		assert.Equal(t, 0.0, result.EvaluationScore)
		assert.Empty(t, result.Labels)
	}

	assert.Equal(t, 0, mock.calls, "skipped answers must not call the model")
}

func TestEvaluateAnswerWeightedScore(t *testing.T) {
	mock := &mockChatModel{response: validLabelResponse}
	e := NewEvaluator(mock)

	result := e.EvaluateAnswer(context.Background(), "Explain goroutines.", "They are lightweight threads.", constants.InterviewTypeTechnical)
	require.NotNil(t, result)
	assert.False(t, result.Skipped)
	assert.False(t, result.Degraded)

	// Highly Relevant = 8.3 at weight 1.5, Mostly Correct = 6.7 at the
	// technical-interview weight 2.0.
	expected := (8.3*1.5 + 6.7*2.0) / (1.5 + 2.0)
	assert.InDelta(t, expected, result.EvaluationScore, 0.05)

	require.Contains(t, result.DetailedScores, "Technical Accuracy")
	assert.Equal(t, 2.0, result.DetailedScores["Technical Accuracy"].Weight)
	assert.Equal(t, []string{"Technical Accuracy"}, result.LabelCategories["technical"])
}

func TestEvaluateAnswerUnknownValueDefaultsTo5(t *testing.T) {
	mock := &mockChatModel{response: `{
  "Confidence Level": {"value": "Totally Made Up", "justification": "n/a"}
}`}
	e := NewEvaluator(mock)

	result := e.EvaluateAnswer(context.Background(), "q", "a", "general")
	require.NotNil(t, result)
	assert.Equal(t, 5.0, result.DetailedScores["Confidence Level"].Score)
}

func TestEvaluateAnswerNeverErrors(t *testing.T) {
	cases := []struct {
		name string
		mock *mockChatModel
	}{
		{"model error", &mockChatModel{err: errors.New("connection refused")}},
		{"empty response", &mockChatModel{response: ""}},
		{"malformed JSON", &mockChatModel{response: "{not json at all"}},
		{"no JSON object", &mockChatModel{response: "I cannot evaluate this."}},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			e := NewEvaluator(tc.mock)
			result := e.EvaluateAnswer(context.Background(), "q", "a real answer", "general")
			require.NotNil(t, result)

			assert.False(t, result.Skipped)
			assert.Equal(t, 5.0, result.EvaluationScore)
			assert.True(t, result.Degraded)
			assert.NotEmpty(t, result.DegradedReason)

			judgment, ok := result.Labels["Default Evaluation"]
			require.True(t, ok)
			assert.Equal(t, "Average", judgment.Value)
			assert.GreaterOrEqual(t, result.EvaluationScore, 0.0)
			assert.LessOrEqual(t, result.EvaluationScore, 10.0)
		})
	}
}

func TestEvaluateAnswerSanitizesInnerQuotes(t *testing.T) {
	// The justification contains an unescaped inner quote pair.
	mock := &mockChatModel{response: `{
  "Answer Structure": {"value": "Well-Organized", "justification": "Used a "STAR" structure throughout."}
}`}
	e := NewEvaluator(mock)

	result := e.EvaluateAnswer(context.Background(), "q", "a", "general")
	require.NotNil(t, result)
	assert.False(t, result.Degraded)
	assert.Equal(t, 10.0, result.DetailedScores["Answer Structure"].Score)
}

func TestExtractJSONObject(t *testing.T) {
	assert.Equal(t, `{"a": {"b": 1}}`, extractJSONObject("noise before {\"a\": {\"b\": 1}} noise after"))
	assert.Equal(t, "", extractJSONObject("no braces here"))
	assert.Equal(t, "", extractJSONObject("{unbalanced"))
}

func TestNormalizeInterviewType(t *testing.T) {
	assert.Equal(t, constants.InterviewTypeTechnical, normalizeInterviewType(" Technical "))
	assert.Equal(t, constants.InterviewTypeGeneral, normalizeInterviewType(""))
	assert.Equal(t, constants.InterviewTypeGeneral, normalizeInterviewType("weird"))
}
