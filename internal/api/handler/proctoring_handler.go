package handler

import (
	"context"
	"encoding/json"
	"errors"

	"i-hire-go/internal/logger"
	"i-hire-go/internal/proctoring"

	"github.com/cloudwego/hertz/pkg/app"
	"github.com/cloudwego/hertz/pkg/common/utils"
	"github.com/cloudwego/hertz/pkg/protocol/consts"
)

const errMissingSessionIDs = "Session ID and Mock ID are required"

// ProctoringHandler exposes the cheating-detection session endpoints.
type ProctoringHandler struct {
	service *proctoring.Service
}

// NewProctoringHandler creates the proctoring handler.
func NewProctoringHandler(service *proctoring.Service) *ProctoringHandler {
	return &ProctoringHandler{service: service}
}

type startSessionRequest struct {
	SessionID         string          `json:"sessionId"`
	MockID            string          `json:"mockId"`
	UserEmail         string          `json:"userEmail"`
	DetectionSettings json.RawMessage `json:"detectionSettings"`
}

// HandleStart creates or restarts a proctoring session.
// POST /api/v1/proctoring/sessions/start
func (h *ProctoringHandler) HandleStart(ctx context.Context, c *app.RequestContext) {
	var req startSessionRequest
	if err := json.Unmarshal(c.Request.Body(), &req); err != nil {
		c.JSON(consts.StatusBadRequest, utils.H{"error": "invalid request body"})
		return
	}
	if req.SessionID == "" || req.MockID == "" {
		c.JSON(consts.StatusBadRequest, utils.H{"error": errMissingSessionIDs})
		return
	}

	result, err := h.service.StartSession(ctx, req.SessionID, req.MockID, req.UserEmail, req.DetectionSettings)
	if err != nil {
		logger.Error().Err(err).Str("session_id", req.SessionID).Msg("failed to start proctoring session")
		c.JSON(consts.StatusInternalServerError, utils.H{"error": "failed to start session"})
		return
	}

	c.JSON(consts.StatusOK, struct {
		Success bool `json:"success"`
		*proctoring.StartResult
	}{true, result})
}

// HandleUpdate folds one detection event into the session aggregate.
// POST /api/v1/proctoring/sessions/update
func (h *ProctoringHandler) HandleUpdate(ctx context.Context, c *app.RequestContext) {
	var update proctoring.DetectionUpdate
	if err := json.Unmarshal(c.Request.Body(), &update); err != nil {
		c.JSON(consts.StatusBadRequest, utils.H{"error": "invalid request body"})
		return
	}
	if update.SessionID == "" || update.MockID == "" {
		c.JSON(consts.StatusBadRequest, utils.H{"error": errMissingSessionIDs})
		return
	}

	result, err := h.service.UpdateSession(ctx, &update)
	if err != nil {
		if errors.Is(err, proctoring.ErrSessionNotFound) {
			c.JSON(consts.StatusNotFound, utils.H{"error": "Session not found"})
			return
		}
		logger.Error().Err(err).Str("session_id", update.SessionID).Msg("failed to update proctoring session")
		c.JSON(consts.StatusInternalServerError, utils.H{"error": "failed to update session"})
		return
	}

	c.JSON(consts.StatusOK, struct {
		Success bool `json:"success"`
		*proctoring.UpdateResult
	}{true, result})
}

type endSessionRequest struct {
	SessionID     string          `json:"sessionId"`
	MockID        string          `json:"mockId"`
	DetectionData json.RawMessage `json:"detectionData"`
}

// HandleEnd closes a session and computes the final analytics.
// POST /api/v1/proctoring/sessions/end
func (h *ProctoringHandler) HandleEnd(ctx context.Context, c *app.RequestContext) {
	var req endSessionRequest
	if err := json.Unmarshal(c.Request.Body(), &req); err != nil {
		c.JSON(consts.StatusBadRequest, utils.H{"error": "invalid request body"})
		return
	}
	if req.SessionID == "" || req.MockID == "" {
		c.JSON(consts.StatusBadRequest, utils.H{"error": errMissingSessionIDs})
		return
	}

	result, err := h.service.EndSession(ctx, req.SessionID, req.MockID, req.DetectionData)
	if err != nil {
		if errors.Is(err, proctoring.ErrSessionNotFound) {
			c.JSON(consts.StatusNotFound, utils.H{"error": "Session not found"})
			return
		}
		logger.Error().Err(err).Str("session_id", req.SessionID).Msg("failed to end proctoring session")
		c.JSON(consts.StatusInternalServerError, utils.H{"error": "failed to end session"})
		return
	}

	c.JSON(consts.StatusOK, struct {
		Success bool `json:"success"`
		*proctoring.EndResult
	}{true, result})
}

// HandleDailyStats returns the per-day completed-session counters.
// GET /api/v1/proctoring/stats?date=YYYY-MM-DD
func (h *ProctoringHandler) HandleDailyStats(ctx context.Context, c *app.RequestContext) {
	day := c.Query("date")

	stats, err := h.service.DailyStats(ctx, day)
	if err != nil {
		if errors.Is(err, proctoring.ErrInvalidStatsDate) {
			c.JSON(consts.StatusBadRequest, utils.H{"error": err.Error()})
			return
		}
		logger.Error().Err(err).Str("date", day).Msg("failed to read daily proctoring stats")
		c.JSON(consts.StatusInternalServerError, utils.H{"error": "failed to read daily stats"})
		return
	}

	c.JSON(consts.StatusOK, struct {
		Success bool `json:"success"`
		*proctoring.DailyStats
	}{true, stats})
}

// HandleGetSessions lists the session aggregates of one mock interview.
// GET /api/v1/proctoring/sessions/:mock_id?session_id=
func (h *ProctoringHandler) HandleGetSessions(ctx context.Context, c *app.RequestContext) {
	mockID := c.Param("mock_id")
	if mockID == "" {
		c.JSON(consts.StatusBadRequest, utils.H{"error": "Mock ID is required"})
		return
	}
	sessionID := c.Query("session_id")

	result, err := h.service.GetSessions(ctx, mockID, sessionID)
	if err != nil {
		logger.Error().Err(err).Str("mock_id", mockID).Msg("failed to list proctoring sessions")
		c.JSON(consts.StatusInternalServerError, utils.H{"error": "failed to list sessions"})
		return
	}

	c.JSON(consts.StatusOK, struct {
		Success bool `json:"success"`
		*proctoring.SessionsResult
	}{true, result})
}
