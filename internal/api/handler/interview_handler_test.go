package handler

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"i-hire-go/internal/evaluation"
)

func TestInterviewCreateRejectsMissingPosition(t *testing.T) {
	engine := newTestEngine()
	h := NewInterviewHandler(nil, nil)
	engine.POST("/interviews", h.HandleCreate)

	w := performJSON(t, engine, "POST", "/interviews", `{"jobDesc": "desc only"}`)
	resp := w.Result()

	assert.Equal(t, 400, resp.StatusCode())
	assert.Contains(t, string(resp.Body()), "Job position is required")
}

func TestSubmitAnswerRejectsMissingFields(t *testing.T) {
	engine := newTestEngine()
	h := NewInterviewHandler(nil, nil)
	engine.POST("/answers", h.HandleSubmitAnswer)

	w := performJSON(t, engine, "POST", "/answers", `{"userAns": "my answer"}`)
	assert.Equal(t, 400, w.Result().StatusCode())
}

func TestEvaluateSkippedAnswer(t *testing.T) {
	engine := newTestEngine()
	// Nil models force the evaluator's skip and degraded paths, which need
	// no upstream calls.
	h := NewInterviewHandler(nil, evaluation.NewService(nil, nil))
	engine.POST("/evaluation", h.HandleEvaluate)

	w := performJSON(t, engine, "POST", "/evaluation", `{"question": "Tell me about Go.", "answer": "[SKIPPED]"}`)
	resp := w.Result()
	require.Equal(t, 200, resp.StatusCode())

	var result evaluation.CombinedEvaluation
	require.NoError(t, json.Unmarshal(resp.Body(), &result))
	assert.True(t, result.Skipped)
	assert.Zero(t, result.EvaluationScore)
}

func TestEvaluateRejectsEmptyQuestion(t *testing.T) {
	engine := newTestEngine()
	h := NewInterviewHandler(nil, evaluation.NewService(nil, nil))
	engine.POST("/evaluation", h.HandleEvaluate)

	w := performJSON(t, engine, "POST", "/evaluation", `{"answer": "text"}`)
	assert.Equal(t, 400, w.Result().StatusCode())
}
