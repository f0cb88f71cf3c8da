package parser

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestQuestionGeneratorParsesArray(t *testing.T) {
	response := "```json\n" + `[
		{"question": "What is a goroutine?", "answer": "A lightweight thread managed by the Go runtime."},
		{"question": "Explain channels.", "answer": "Typed conduits for communication between goroutines."}
	]` + "\n```"

	g := NewQuestionGenerator(&mockChatModel{response: response})
	questions, err := g.Generate(context.Background(), &QuestionRequest{
		JobPosition:   "Go Developer",
		JobExperience: "3",
		Category:      "technical",
	})
	require.NoError(t, err)
	require.Len(t, questions, 2)
	assert.Equal(t, "What is a goroutine?", questions[0].Question)
	assert.NotEmpty(t, questions[0].Answer)
}

func TestQuestionGeneratorUnwrapsObjectResponse(t *testing.T) {
	response := `{"questions": [{"question": "Tell me about a conflict you resolved.", "answer": "Example answer."}]}`

	g := NewQuestionGenerator(&mockChatModel{response: response})
	questions, err := g.Generate(context.Background(), &QuestionRequest{
		JobPosition: "Team Lead",
		Category:    "behavioral",
	})
	require.NoError(t, err)
	require.Len(t, questions, 1)
	assert.Contains(t, questions[0].Question, "conflict")
}

func TestQuestionGeneratorSkipsBlankQuestions(t *testing.T) {
	response := `[{"question": "", "answer": "orphan"}, {"question": "Real one?", "answer": "Yes."}]`

	g := NewQuestionGenerator(&mockChatModel{response: response})
	questions, err := g.Generate(context.Background(), &QuestionRequest{JobPosition: "QA Engineer"})
	require.NoError(t, err)
	require.Len(t, questions, 1)
	assert.Equal(t, "Real one?", questions[0].Question)
}

func TestQuestionGeneratorErrors(t *testing.T) {
	t.Run("missing job position", func(t *testing.T) {
		g := NewQuestionGenerator(&mockChatModel{response: "[]"})
		_, err := g.Generate(context.Background(), &QuestionRequest{})
		require.Error(t, err)
	})

	t.Run("empty question list", func(t *testing.T) {
		g := NewQuestionGenerator(&mockChatModel{response: "[]"})
		_, err := g.Generate(context.Background(), &QuestionRequest{JobPosition: "Developer"})
		require.Error(t, err)
	})

	t.Run("non-json response", func(t *testing.T) {
		g := NewQuestionGenerator(&mockChatModel{response: "Sorry, I cannot help with that."})
		_, err := g.Generate(context.Background(), &QuestionRequest{JobPosition: "Developer"})
		require.Error(t, err)
	})
}

func TestQuestionSystemMessagePersonas(t *testing.T) {
	behavioral := questionSystemMessage(&QuestionRequest{Category: "behavioral"})
	assert.Contains(t, behavioral, "behavioral strategist")
	assert.Contains(t, behavioral, "Do not ask technical")

	technical := questionSystemMessage(&QuestionRequest{Category: "technical", JobPosition: "Data Engineer", JobExperience: "5"})
	assert.Contains(t, technical, "Data Engineer")

	leadership := questionSystemMessage(&QuestionRequest{Category: "leadership"})
	assert.Contains(t, leadership, "leadership")

	general := questionSystemMessage(&QuestionRequest{Category: ""})
	assert.Contains(t, general, "structured interview questions")
}
