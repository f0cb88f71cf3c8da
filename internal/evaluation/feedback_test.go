package evaluation

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestServiceCombinedScore(t *testing.T) {
	evalMock := &mockChatModel{response: validLabelResponse}
	feedbackMock := &mockChatModel{response: "```json\n" + `{
  "rating": 8,
  "feedback": "Solid answer.",
  "suggestions": ["Add examples", "Slow down", "Summarize at the end"],
  "transcriptionQuality": 5,
  "language": "en",
  "overallAssessment": "Strong response"
}` + "\n```"}

	svc := NewService(evalMock, feedbackMock)
	combined := svc.Evaluate(context.Background(), "Explain channels.", "Channels synchronize goroutines.", "technical")
	require.NotNil(t, combined)

	assert.Equal(t, 8.0, combined.TraditionalFeedback.Rating)
	assert.Len(t, combined.TraditionalFeedback.Suggestions, 3)

	// evaluation_score 7.4 with rating 8 averages to 7.7.
	assert.Equal(t, 7.4, combined.EvaluationScore)
	assert.Equal(t, 7.7, combined.CombinedScore)
	assert.Len(t, combined.LabelTemplateUsed, 10)
	assert.NotEmpty(t, combined.Timestamp)
}

func TestServiceFeedbackFallback(t *testing.T) {
	evalMock := &mockChatModel{response: validLabelResponse}
	feedbackMock := &mockChatModel{err: errors.New("rate limit")}

	svc := NewService(evalMock, feedbackMock)
	combined := svc.Evaluate(context.Background(), "q", "a", "general")
	require.NotNil(t, combined)

	// Fallback anchors the rating on the evaluation score.
	assert.Equal(t, combined.EvaluationScore, combined.TraditionalFeedback.Rating)
	assert.Equal(t, combined.EvaluationScore, combined.CombinedScore)
	assert.Equal(t, "en", combined.TraditionalFeedback.Language)
}

func TestStripCodeFences(t *testing.T) {
	assert.Equal(t, `{"rating": 7}`, stripCodeFences("```json\n{\"rating\": 7}\n```"))
	assert.Equal(t, `{"rating": 7}`, stripCodeFences(`{"rating": 7}`))
}
