package handler

import (
	"context"
	"encoding/json"
	"errors"
	"strconv"
	"strings"

	"i-hire-go/internal/logger"
	"i-hire-go/internal/matching"
	"i-hire-go/internal/storage"
	"i-hire-go/internal/storage/models"

	"github.com/cloudwego/hertz/pkg/app"
	"github.com/cloudwego/hertz/pkg/common/utils"
	"github.com/cloudwego/hertz/pkg/protocol/consts"
	"github.com/gofrs/uuid/v5"
)

// RecommendationHandler exposes job recommendations and posting management.
type RecommendationHandler struct {
	matcher *matching.Service
	pg      *storage.Postgres
}

// NewRecommendationHandler creates the recommendation handler.
func NewRecommendationHandler(matcher *matching.Service, pg *storage.Postgres) *RecommendationHandler {
	return &RecommendationHandler{
		matcher: matcher,
		pg:      pg,
	}
}

// HandleRecommendations ranks active postings for a user.
// GET /api/v1/jobs/recommendations?user_id=&limit=
func (h *RecommendationHandler) HandleRecommendations(ctx context.Context, c *app.RequestContext) {
	userID := c.Query("user_id")
	if userID == "" {
		userID = userIdentity(c)
	}
	if userID == "" {
		c.JSON(consts.StatusBadRequest, utils.H{"error": "User ID is required"})
		return
	}

	limit := 0
	if limitStr := c.Query("limit"); limitStr != "" {
		if parsed, err := strconv.Atoi(limitStr); err == nil && parsed > 0 {
			limit = parsed
		}
	}

	response, err := h.matcher.Recommend(ctx, userID, limit)
	if err != nil {
		if errors.Is(err, matching.ErrProfileNotFound) {
			c.JSON(consts.StatusNotFound, utils.H{"error": "User profile not found"})
			return
		}
		logger.Error().Err(err).Str("user_id", userID).Msg("failed to generate recommendations")
		c.JSON(consts.StatusInternalServerError, utils.H{"error": "failed to generate recommendations"})
		return
	}
	c.JSON(consts.StatusOK, response)
}

type createJobRequest struct {
	JobTitle       string   `json:"jobTitle"`
	Company        string   `json:"company"`
	City           string   `json:"city"`
	JobDescription string   `json:"jobDescription"`
	Skills         string   `json:"skills"`
	JobCategories  []string `json:"jobCategories"`
	MinExperience  int      `json:"minExperience"`
}

// HandleCreateJob stores a new job posting.
// POST /api/v1/jobs
func (h *RecommendationHandler) HandleCreateJob(ctx context.Context, c *app.RequestContext) {
	var req createJobRequest
	if err := json.Unmarshal(c.Request.Body(), &req); err != nil {
		c.JSON(consts.StatusBadRequest, utils.H{"error": "invalid request body"})
		return
	}
	if strings.TrimSpace(req.JobTitle) == "" {
		c.JSON(consts.StatusBadRequest, utils.H{"error": "Job title is required"})
		return
	}

	id, err := uuid.NewV7()
	if err != nil {
		c.JSON(consts.StatusInternalServerError, utils.H{"error": "failed to create job"})
		return
	}

	job := &models.JobPosting{
		JobID:          id.String(),
		JobTitle:       req.JobTitle,
		Company:        req.Company,
		City:           req.City,
		JobDescription: req.JobDescription,
		Skills:         req.Skills,
		MinExperience:  req.MinExperience,
		Status:         "ACTIVE",
	}
	if len(req.JobCategories) > 0 {
		if job.JobCategories, err = models.ToJSON(req.JobCategories); err != nil {
			c.JSON(consts.StatusBadRequest, utils.H{"error": "invalid job categories"})
			return
		}
	}

	if err := h.pg.CreateJobPosting(ctx, job); err != nil {
		logger.Error().Err(err).Str("job_title", req.JobTitle).Msg("failed to create job posting")
		c.JSON(consts.StatusInternalServerError, utils.H{"error": "failed to create job"})
		return
	}
	c.JSON(consts.StatusOK, utils.H{"success": true, "job": job})
}

// HandleListJobs lists postings, active ones by default.
// GET /api/v1/jobs?status=
func (h *RecommendationHandler) HandleListJobs(ctx context.Context, c *app.RequestContext) {
	status := c.Query("status")
	if status == "" {
		status = "ACTIVE"
	}

	jobs, err := h.pg.ListJobPostings(ctx, status)
	if err != nil {
		logger.Error().Err(err).Msg("failed to list job postings")
		c.JSON(consts.StatusInternalServerError, utils.H{"error": "failed to list jobs"})
		return
	}
	c.JSON(consts.StatusOK, utils.H{"success": true, "jobs": jobs, "totalCount": len(jobs)})
}
