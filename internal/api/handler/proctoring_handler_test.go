package handler

import (
	"bytes"
	"testing"

	appconfig "i-hire-go/internal/config"
	"i-hire-go/internal/proctoring"

	"github.com/cloudwego/hertz/pkg/common/config"
	"github.com/cloudwego/hertz/pkg/common/ut"
	"github.com/cloudwego/hertz/pkg/route"
	"github.com/stretchr/testify/assert"
)

func newTestEngine() *route.Engine {
	return route.NewEngine(config.NewOptions([]config.Option{}))
}

func performJSON(t *testing.T, engine *route.Engine, method, path, body string) *ut.ResponseRecorder {
	t.Helper()
	return ut.PerformRequest(engine, method, path,
		&ut.Body{Body: bytes.NewBufferString(body), Len: len(body)},
		ut.Header{Key: "Content-Type", Value: "application/json"})
}

func TestProctoringUpdateRejectsMissingIDs(t *testing.T) {
	engine := newTestEngine()
	h := NewProctoringHandler(nil)
	engine.POST("/update", h.HandleUpdate)

	w := performJSON(t, engine, "POST", "/update", `{"riskScore": 50}`)
	resp := w.Result()

	assert.Equal(t, 400, resp.StatusCode())
	assert.Contains(t, string(resp.Body()), "Session ID and Mock ID are required")
}

func TestProctoringStartRejectsInvalidBody(t *testing.T) {
	engine := newTestEngine()
	h := NewProctoringHandler(nil)
	engine.POST("/start", h.HandleStart)

	w := performJSON(t, engine, "POST", "/start", `not json`)
	assert.Equal(t, 400, w.Result().StatusCode())
}

func TestProctoringStatsRejectsBadDate(t *testing.T) {
	engine := newTestEngine()
	h := NewProctoringHandler(proctoring.NewService(nil, nil, &appconfig.Config{}))
	engine.GET("/stats", h.HandleDailyStats)

	w := ut.PerformRequest(engine, "GET", "/stats?date=31-08-2026", nil)
	resp := w.Result()

	assert.Equal(t, 400, resp.StatusCode())
	assert.Contains(t, string(resp.Body()), "invalid date")
}

func TestProctoringEndRejectsMissingIDs(t *testing.T) {
	engine := newTestEngine()
	h := NewProctoringHandler(nil)
	engine.POST("/end", h.HandleEnd)

	w := performJSON(t, engine, "POST", "/end", `{"sessionId": "s-1"}`)
	resp := w.Result()

	assert.Equal(t, 400, resp.StatusCode())
	assert.Contains(t, string(resp.Body()), "Session ID and Mock ID are required")
}
