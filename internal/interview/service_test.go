package interview

import (
	"context"
	"errors"
	"testing"

	"github.com/cloudwego/eino/components/model"
	"github.com/cloudwego/eino/schema"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"i-hire-go/internal/evaluation"
	"i-hire-go/internal/parser"
)

type failingChatModel struct{}

func (failingChatModel) Generate(ctx context.Context, messages []*schema.Message, options ...model.Option) (*schema.Message, error) {
	return nil, errors.New("model unavailable")
}

func (failingChatModel) Stream(ctx context.Context, messages []*schema.Message, options ...model.Option) (*schema.StreamReader[*schema.Message], error) {
	return nil, errors.New("not implemented")
}

func (m failingChatModel) WithTools(tools []*schema.ToolInfo) (model.ToolCallingChatModel, error) {
	return m, nil
}

func TestCreateValidatesInput(t *testing.T) {
	s := NewService(nil, parser.NewQuestionGenerator(failingChatModel{}), nil)

	_, err := s.Create(context.Background(), &CreateRequest{CreatedBy: "user@example.com"})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "job position")

	_, err = s.Create(context.Background(), &CreateRequest{JobPosition: "Go Developer"})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "creator")
}

func TestCreatePropagatesGenerationFailure(t *testing.T) {
	s := NewService(nil, parser.NewQuestionGenerator(failingChatModel{}), nil)

	_, err := s.Create(context.Background(), &CreateRequest{
		JobPosition: "Go Developer",
		CreatedBy:   "user@example.com",
	})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "generating questions")
}

func TestSubmitAnswerValidatesInput(t *testing.T) {
	s := NewService(nil, nil, nil)

	_, err := s.SubmitAnswer(context.Background(), &AnswerRequest{Question: "Q?"})
	require.Error(t, err)

	_, err = s.SubmitAnswer(context.Background(), &AnswerRequest{MockID: "mock-1"})
	require.Error(t, err)
}

func TestAnswerRecordFlagsFollowUp(t *testing.T) {
	evaluator := evaluation.NewService(nil, nil)
	req := &AnswerRequest{MockID: "mock-1", Question: "Q?", UserAns: "an actual answer"}

	// No evaluation model: the default result is degraded, not a real score.
	degraded := evaluator.Evaluate(context.Background(), req.Question, req.UserAns, "technical")
	require.True(t, degraded.Degraded)
	require.False(t, degraded.Skipped)

	record, err := answerRecord(req, degraded)
	require.NoError(t, err)
	assert.True(t, record.NeedsFollowUp)

	skipped := evaluator.Evaluate(context.Background(), req.Question, evaluation.SkipSentinel, "technical")
	require.True(t, skipped.Skipped)

	record, err = answerRecord(req, skipped)
	require.NoError(t, err)
	assert.True(t, record.NeedsFollowUp)

	healthy := &evaluation.CombinedEvaluation{Result: evaluation.Result{InterviewType: "technical"}}
	record, err = answerRecord(req, healthy)
	require.NoError(t, err)
	assert.False(t, record.NeedsFollowUp)
}

func TestNormalizeCategory(t *testing.T) {
	assert.Equal(t, "technical", normalizeCategory(" Technical "))
	assert.Equal(t, "behavioral", normalizeCategory("BEHAVIORAL"))
	assert.Equal(t, "leadership", normalizeCategory("leadership"))
	assert.Equal(t, "general", normalizeCategory(""))
	assert.Equal(t, "general", normalizeCategory("quiz"))
}
