package evaluation

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"
	"time"

	"i-hire-go/internal/logger"
	"i-hire-go/internal/scoring"

	"github.com/cloudwego/eino/components/model"
	einoschema "github.com/cloudwego/eino/schema"
)

// Service runs the full answer-evaluation flow: label scoring plus the
// secondary free-form feedback prompt, merged into one result.
type Service struct {
	evaluator     *Evaluator
	feedbackModel model.ToolCallingChatModel
}

// NewService wires the evaluator and the feedback model. The two models may
// be the same instance.
func NewService(evalModel, feedbackModel model.ToolCallingChatModel) *Service {
	return &Service{
		evaluator:     NewEvaluator(evalModel),
		feedbackModel: feedbackModel,
	}
}

// Evaluate produces the merged evaluation for one answer. Like the
// underlying evaluator it never fails outright.
func (s *Service) Evaluate(ctx context.Context, question, answer, interviewType string) *CombinedEvaluation {
	result := s.evaluator.EvaluateAnswer(ctx, question, answer, interviewType)

	feedback := s.generateFeedback(ctx, question, answer, result.InterviewType, result.EvaluationScore)

	return &CombinedEvaluation{
		Result:              *result,
		TraditionalFeedback: feedback,
		CombinedScore:       roundTo1((result.EvaluationScore + feedback.Rating) / 2),
		Timestamp:           time.Now().UTC().Format(time.RFC3339),
		LabelTemplateUsed:   scoring.LabelTemplate(result.InterviewType),
	}
}

// generateFeedback runs the compatibility feedback prompt. Any failure falls
// back to a static assessment anchored on the evaluation score.
func (s *Service) generateFeedback(ctx context.Context, question, answer, interviewType string, evaluationScore float64) TraditionalFeedback {
	if s.feedbackModel == nil {
		return fallbackFeedback(evaluationScore)
	}

	prompt := fmt.Sprintf(`Analyze this interview response:
Question: %s
Answer: %s
Interview Type: %s

Provide JSON response with:
- "rating": number (1-10)
- "feedback": string (constructive feedback)
- "suggestions": string[] (3 improvement suggestions)
- "transcriptionQuality": number (1-5, how accurate the transcription is)
- "language": string (detected language)
- "overallAssessment": string (brief overall assessment)`, question, answer, interviewType)

	messages := []*einoschema.Message{
		einoschema.SystemMessage("You are an expert interview evaluator."),
		einoschema.UserMessage(prompt),
	}

	response, err := s.feedbackModel.Generate(ctx, messages)
	if err != nil || response == nil {
		logger.Warn().Err(err).Msg("feedback generation failed, using fallback")
		return fallbackFeedback(evaluationScore)
	}

	content := stripCodeFences(response.Content)

	var feedback TraditionalFeedback
	if err := json.Unmarshal([]byte(content), &feedback); err != nil {
		logger.Warn().Err(err).Msg("feedback response did not parse, using fallback")
		return fallbackFeedback(evaluationScore)
	}

	return feedback
}

// fallbackFeedback mirrors the static assessment served when the feedback
// prompt is unavailable or unparseable.
func fallbackFeedback(evaluationScore float64) TraditionalFeedback {
	return TraditionalFeedback{
		Rating:               evaluationScore,
		Feedback:             "Evaluation completed successfully",
		Suggestions:          []string{"Continue practicing", "Focus on clarity", "Provide more examples"},
		TranscriptionQuality: 5,
		Language:             "en",
		OverallAssessment:    "Good response with room for improvement",
	}
}

// stripCodeFences removes markdown code fences around a JSON payload.
func stripCodeFences(content string) string {
	content = strings.ReplaceAll(content, "```json", "")
	content = strings.ReplaceAll(content, "```", "")
	return strings.TrimSpace(content)
}
