package handler

import (
	"context"
	"encoding/json"
	"errors"
	"io"

	"i-hire-go/internal/logger"
	"i-hire-go/internal/profile"

	"github.com/cloudwego/hertz/pkg/app"
	"github.com/cloudwego/hertz/pkg/common/utils"
	"github.com/cloudwego/hertz/pkg/protocol/consts"
)

// 10 MB cap on uploaded CV files.
const maxCVSize = 10 << 20

// ProfileHandler exposes user profiles and the CV analysis pipeline.
type ProfileHandler struct {
	service *profile.Service
}

// NewProfileHandler creates the profile handler.
func NewProfileHandler(service *profile.Service) *ProfileHandler {
	return &ProfileHandler{service: service}
}

// HandleGetProfile fetches a user's profile.
// GET /api/v1/users/profile?user_id=
func (h *ProfileHandler) HandleGetProfile(ctx context.Context, c *app.RequestContext) {
	userID := c.Query("user_id")
	if userID == "" {
		userID = userIdentity(c)
	}
	if userID == "" {
		c.JSON(consts.StatusBadRequest, utils.H{"error": "User ID is required"})
		return
	}

	p, err := h.service.Get(ctx, userID)
	if err != nil {
		if errors.Is(err, profile.ErrProfileNotFound) {
			c.JSON(consts.StatusNotFound, utils.H{"error": "User profile not found"})
			return
		}
		logger.Error().Err(err).Str("user_id", userID).Msg("failed to load profile")
		c.JSON(consts.StatusInternalServerError, utils.H{"error": "failed to load profile"})
		return
	}
	c.JSON(consts.StatusOK, utils.H{"success": true, "profile": p})
}

// HandleUpsertProfile stores user-edited profile fields.
// PUT /api/v1/users/profile?user_id=
func (h *ProfileHandler) HandleUpsertProfile(ctx context.Context, c *app.RequestContext) {
	userID := c.Query("user_id")
	if userID == "" {
		userID = userIdentity(c)
	}
	if userID == "" {
		c.JSON(consts.StatusBadRequest, utils.H{"error": "User ID is required"})
		return
	}

	var req profile.UpdateRequest
	if err := json.Unmarshal(c.Request.Body(), &req); err != nil {
		c.JSON(consts.StatusBadRequest, utils.H{"error": "invalid request body"})
		return
	}

	p, err := h.service.Upsert(ctx, userID, &req)
	if err != nil {
		logger.Error().Err(err).Str("user_id", userID).Msg("failed to save profile")
		c.JSON(consts.StatusInternalServerError, utils.H{"error": "failed to save profile"})
		return
	}
	c.JSON(consts.StatusOK, utils.H{"success": true, "profile": p})
}

// HandleDownloadCV serves the stored CV as a presigned link, the original
// file, or the extracted text.
// GET /api/v1/users/profile/cv?user_id=&format=url|file|text
func (h *ProfileHandler) HandleDownloadCV(ctx context.Context, c *app.RequestContext) {
	userID := c.Query("user_id")
	if userID == "" {
		userID = userIdentity(c)
	}
	if userID == "" {
		c.JSON(consts.StatusBadRequest, utils.H{"error": "User ID is required"})
		return
	}

	format := c.Query("format")
	switch format {
	case "", "url", "file", "text":
	default:
		c.JSON(consts.StatusBadRequest, utils.H{"error": "format must be url, file, or text"})
		return
	}

	download, err := h.service.DownloadCV(ctx, userID, format)
	if err != nil {
		if errors.Is(err, profile.ErrProfileNotFound) || errors.Is(err, profile.ErrNoCV) {
			c.JSON(consts.StatusNotFound, utils.H{"error": "No CV found for this user"})
			return
		}
		logger.Error().Err(err).Str("user_id", userID).Msg("failed to prepare cv download")
		c.JSON(consts.StatusInternalServerError, utils.H{"error": "failed to download CV"})
		return
	}

	switch download.Format {
	case "file":
		c.Response.Header.Set("Content-Disposition", `attachment; filename="`+download.FileName+`"`)
		c.Data(consts.StatusOK, download.ContentType, download.Data)
	case "text":
		c.JSON(consts.StatusOK, utils.H{"success": true, "text": download.Text})
	default:
		c.JSON(consts.StatusOK, utils.H{"success": true, "url": download.URL, "expiresIn": "15m"})
	}
}

// HandleAnalyzeCV runs the CV analysis pipeline on an uploaded file.
// POST /api/v1/cv/analyze (multipart: file, user_id)
func (h *ProfileHandler) HandleAnalyzeCV(ctx context.Context, c *app.RequestContext) {
	userID := c.PostForm("user_id")
	if userID == "" {
		userID = userIdentity(c)
	}
	if userID == "" {
		c.JSON(consts.StatusBadRequest, utils.H{"error": "User ID is required"})
		return
	}

	fileHeader, err := c.FormFile("file")
	if err != nil {
		c.JSON(consts.StatusBadRequest, utils.H{"error": "CV file is required"})
		return
	}
	if fileHeader.Size > maxCVSize {
		c.JSON(consts.StatusBadRequest, utils.H{"error": "CV file exceeds the 10 MB limit"})
		return
	}

	file, err := fileHeader.Open()
	if err != nil {
		c.JSON(consts.StatusInternalServerError, utils.H{"error": "failed to read upload"})
		return
	}
	defer file.Close()

	data, err := io.ReadAll(file)
	if err != nil {
		c.JSON(consts.StatusInternalServerError, utils.H{"error": "failed to read upload"})
		return
	}

	result, err := h.service.AnalyzeCV(ctx, userID, fileHeader.Filename, data)
	if err != nil {
		logger.Error().Err(err).Str("user_id", userID).Str("filename", fileHeader.Filename).Msg("cv analysis failed")
		c.JSON(consts.StatusInternalServerError, utils.H{"error": "Failed to analyze CV"})
		return
	}
	c.JSON(consts.StatusOK, utils.H{"success": true, "analysis": result})
}
