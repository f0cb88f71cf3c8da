package handler

import (
	"testing"

	"github.com/cloudwego/hertz/pkg/common/ut"
	"github.com/stretchr/testify/assert"
)

func TestDownloadCVRequiresUserID(t *testing.T) {
	engine := newTestEngine()
	h := NewProfileHandler(nil)
	engine.GET("/cv", h.HandleDownloadCV)

	w := ut.PerformRequest(engine, "GET", "/cv", nil)
	resp := w.Result()

	assert.Equal(t, 400, resp.StatusCode())
	assert.Contains(t, string(resp.Body()), "User ID is required")
}

func TestDownloadCVRejectsUnknownFormat(t *testing.T) {
	engine := newTestEngine()
	h := NewProfileHandler(nil)
	engine.GET("/cv", h.HandleDownloadCV)

	w := ut.PerformRequest(engine, "GET", "/cv?user_id=user-1&format=zip", nil)
	resp := w.Result()

	assert.Equal(t, 400, resp.StatusCode())
	assert.Contains(t, string(resp.Body()), "format must be")
}
