package handler

import (
	"context"
	"encoding/json"
	"errors"
	"strings"

	"i-hire-go/internal/evaluation"
	"i-hire-go/internal/interview"
	"i-hire-go/internal/logger"

	"github.com/cloudwego/hertz/pkg/app"
	"github.com/cloudwego/hertz/pkg/common/utils"
	"github.com/cloudwego/hertz/pkg/protocol/consts"
)

// InterviewHandler exposes mock interview management and answer evaluation.
type InterviewHandler struct {
	interviews *interview.Service
	evaluator  *evaluation.Service
}

// NewInterviewHandler creates the interview handler.
func NewInterviewHandler(interviews *interview.Service, evaluator *evaluation.Service) *InterviewHandler {
	return &InterviewHandler{
		interviews: interviews,
		evaluator:  evaluator,
	}
}

// HandleCreate generates and stores a new mock interview.
// POST /api/v1/interviews
func (h *InterviewHandler) HandleCreate(ctx context.Context, c *app.RequestContext) {
	var req interview.CreateRequest
	if err := json.Unmarshal(c.Request.Body(), &req); err != nil {
		c.JSON(consts.StatusBadRequest, utils.H{"error": "invalid request body"})
		return
	}
	if req.CreatedBy == "" {
		req.CreatedBy = userIdentity(c)
	}
	if strings.TrimSpace(req.JobPosition) == "" {
		c.JSON(consts.StatusBadRequest, utils.H{"error": "Job position is required"})
		return
	}

	mock, err := h.interviews.Create(ctx, &req)
	if err != nil {
		logger.Error().Err(err).Str("job_position", req.JobPosition).Msg("failed to create mock interview")
		c.JSON(consts.StatusInternalServerError, utils.H{"error": "failed to create interview"})
		return
	}
	c.JSON(consts.StatusOK, utils.H{"success": true, "interview": mock})
}

// HandleList returns the caller's visible interviews.
// GET /api/v1/interviews?user_id=
func (h *InterviewHandler) HandleList(ctx context.Context, c *app.RequestContext) {
	userID := c.Query("user_id")
	if userID == "" {
		userID = userIdentity(c)
	}
	if userID == "" {
		c.JSON(consts.StatusBadRequest, utils.H{"error": "User ID is required"})
		return
	}

	interviews, err := h.interviews.List(ctx, userID)
	if err != nil {
		logger.Error().Err(err).Str("user_id", userID).Msg("failed to list interviews")
		c.JSON(consts.StatusInternalServerError, utils.H{"error": "failed to list interviews"})
		return
	}
	c.JSON(consts.StatusOK, utils.H{"success": true, "interviews": interviews})
}

// HandleGet fetches one interview.
// GET /api/v1/interviews/:mock_id
func (h *InterviewHandler) HandleGet(ctx context.Context, c *app.RequestContext) {
	mockID := c.Param("mock_id")
	if mockID == "" {
		c.JSON(consts.StatusBadRequest, utils.H{"error": "Mock ID is required"})
		return
	}

	mock, err := h.interviews.Get(ctx, mockID)
	if err != nil {
		if errors.Is(err, interview.ErrInterviewNotFound) {
			c.JSON(consts.StatusNotFound, utils.H{"error": "Interview not found"})
			return
		}
		logger.Error().Err(err).Str("mock_id", mockID).Msg("failed to load interview")
		c.JSON(consts.StatusInternalServerError, utils.H{"error": "failed to load interview"})
		return
	}
	c.JSON(consts.StatusOK, utils.H{"success": true, "interview": mock})
}

// HandleHide flags an interview hidden.
// POST /api/v1/interviews/:mock_id/hide
func (h *InterviewHandler) HandleHide(ctx context.Context, c *app.RequestContext) {
	h.visibilityChange(ctx, c, h.interviews.Hide, "Interview hidden successfully")
}

// HandleDelete removes an interview with its answers and sessions.
// DELETE /api/v1/interviews/:mock_id
func (h *InterviewHandler) HandleDelete(ctx context.Context, c *app.RequestContext) {
	h.visibilityChange(ctx, c, h.interviews.Delete, "Interview deleted successfully")
}

func (h *InterviewHandler) visibilityChange(ctx context.Context, c *app.RequestContext, op func(context.Context, string) error, message string) {
	mockID := c.Param("mock_id")
	if mockID == "" {
		c.JSON(consts.StatusBadRequest, utils.H{"error": "Mock ID is required"})
		return
	}

	if err := op(ctx, mockID); err != nil {
		if errors.Is(err, interview.ErrInterviewNotFound) {
			c.JSON(consts.StatusNotFound, utils.H{"error": "Interview not found"})
			return
		}
		logger.Error().Err(err).Str("mock_id", mockID).Msg("interview operation failed")
		c.JSON(consts.StatusInternalServerError, utils.H{"error": "operation failed"})
		return
	}
	c.JSON(consts.StatusOK, utils.H{"success": true, "message": message})
}

// HandleSubmitAnswer evaluates and stores one answered question.
// POST /api/v1/interviews/answers
func (h *InterviewHandler) HandleSubmitAnswer(ctx context.Context, c *app.RequestContext) {
	var req interview.AnswerRequest
	if err := json.Unmarshal(c.Request.Body(), &req); err != nil {
		c.JSON(consts.StatusBadRequest, utils.H{"error": "invalid request body"})
		return
	}
	if req.MockID == "" || req.Question == "" {
		c.JSON(consts.StatusBadRequest, utils.H{"error": "Mock ID and question are required"})
		return
	}

	result, err := h.interviews.SubmitAnswer(ctx, &req)
	if err != nil {
		logger.Error().Err(err).Str("mock_id", req.MockID).Msg("failed to submit answer")
		c.JSON(consts.StatusInternalServerError, utils.H{"error": "failed to save answer"})
		return
	}
	c.JSON(consts.StatusOK, struct {
		Success bool `json:"success"`
		*evaluation.CombinedEvaluation
	}{true, result})
}

// HandleListAnswers returns the stored answers of one interview.
// GET /api/v1/interviews/:mock_id/answers?user_email=
func (h *InterviewHandler) HandleListAnswers(ctx context.Context, c *app.RequestContext) {
	mockID := c.Param("mock_id")
	if mockID == "" {
		c.JSON(consts.StatusBadRequest, utils.H{"error": "Mock ID is required"})
		return
	}

	answers, err := h.interviews.Answers(ctx, mockID, c.Query("user_email"))
	if err != nil {
		logger.Error().Err(err).Str("mock_id", mockID).Msg("failed to list answers")
		c.JSON(consts.StatusInternalServerError, utils.H{"error": "failed to list answers"})
		return
	}
	c.JSON(consts.StatusOK, utils.H{"success": true, "answers": answers})
}

type evaluationRequest struct {
	Question      string `json:"question"`
	Answer        string `json:"answer"`
	InterviewType string `json:"interviewType"`
}

// HandleEvaluate scores a single answer without persisting it. The evaluator
// never fails; upstream problems degrade to a default-scored result.
// POST /api/v1/interviews/evaluation
func (h *InterviewHandler) HandleEvaluate(ctx context.Context, c *app.RequestContext) {
	var req evaluationRequest
	if err := json.Unmarshal(c.Request.Body(), &req); err != nil {
		c.JSON(consts.StatusBadRequest, utils.H{"error": "invalid request body"})
		return
	}
	if strings.TrimSpace(req.Question) == "" {
		c.JSON(consts.StatusBadRequest, utils.H{"error": "Question is required"})
		return
	}

	result := h.evaluator.Evaluate(ctx, req.Question, req.Answer, req.InterviewType)
	c.JSON(consts.StatusOK, result)
}

// userIdentity returns the authenticated principal set by the keyauth
// middleware, when present.
func userIdentity(c *app.RequestContext) string {
	if v, ok := c.Get("identity"); ok {
		if s, ok := v.(string); ok {
			return s
		}
	}
	return ""
}
