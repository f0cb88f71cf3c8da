// Package router wires the HTTP API: route groups, API-key auth and the
// request-log middleware.
package router

import (
	"context"
	"time"

	"i-hire-go/internal/api/handler"
	"i-hire-go/internal/config"
	"i-hire-go/internal/logger"

	"github.com/cloudwego/hertz/pkg/app"
	"github.com/cloudwego/hertz/pkg/app/server"
	"github.com/cloudwego/hertz/pkg/common/utils"
	"github.com/cloudwego/hertz/pkg/protocol/consts"
	"github.com/hertz-contrib/keyauth"
)

// Handlers bundles every route handler for registration.
type Handlers struct {
	Proctoring     *handler.ProctoringHandler
	Interview      *handler.InterviewHandler
	Recommendation *handler.RecommendationHandler
	Profile        *handler.ProfileHandler
}

// RegisterRoutes attaches all API routes to the server. Everything under
// /api/v1 requires a valid API key except the health probe.
func RegisterRoutes(h *server.Hertz, cfg *config.Config, handlers *Handlers) {
	h.Use(requestLogMiddleware())

	h.GET("/api/v1/health", func(ctx context.Context, c *app.RequestContext) {
		c.JSON(consts.StatusOK, utils.H{"status": "ok"})
	})

	api := h.Group("/api/v1", apiKeyMiddleware(cfg.Server.APIKeys))

	proctoring := api.Group("/proctoring/sessions")
	proctoring.POST("/start", handlers.Proctoring.HandleStart)
	proctoring.POST("/update", handlers.Proctoring.HandleUpdate)
	proctoring.POST("/end", handlers.Proctoring.HandleEnd)
	proctoring.GET("/:mock_id", handlers.Proctoring.HandleGetSessions)
	api.GET("/proctoring/stats", handlers.Proctoring.HandleDailyStats)

	interviews := api.Group("/interviews")
	interviews.POST("", handlers.Interview.HandleCreate)
	interviews.GET("", handlers.Interview.HandleList)
	interviews.POST("/answers", handlers.Interview.HandleSubmitAnswer)
	interviews.POST("/evaluation", handlers.Interview.HandleEvaluate)
	interviews.GET("/:mock_id", handlers.Interview.HandleGet)
	interviews.POST("/:mock_id/hide", handlers.Interview.HandleHide)
	interviews.DELETE("/:mock_id", handlers.Interview.HandleDelete)
	interviews.GET("/:mock_id/answers", handlers.Interview.HandleListAnswers)

	jobs := api.Group("/jobs")
	jobs.GET("/recommendations", handlers.Recommendation.HandleRecommendations)
	jobs.POST("", handlers.Recommendation.HandleCreateJob)
	jobs.GET("", handlers.Recommendation.HandleListJobs)

	users := api.Group("/users")
	users.GET("/profile", handlers.Profile.HandleGetProfile)
	users.PUT("/profile", handlers.Profile.HandleUpsertProfile)
	users.GET("/profile/cv", handlers.Profile.HandleDownloadCV)

	api.POST("/cv/analyze", handlers.Profile.HandleAnalyzeCV)
}

// apiKeyMiddleware validates the bearer token against the configured keys.
func apiKeyMiddleware(apiKeys []string) app.HandlerFunc {
	validKeys := make(map[string]bool, len(apiKeys))
	for _, key := range apiKeys {
		validKeys[key] = true
	}

	return keyauth.New(
		keyauth.WithKeyLookUp("header:Authorization", "Bearer"),
		keyauth.WithContextKey("identity"),
		keyauth.WithValidator(func(ctx context.Context, c *app.RequestContext, key string) (bool, error) {
			return validKeys[key], nil
		}),
		keyauth.WithErrorHandler(func(ctx context.Context, c *app.RequestContext, err error) {
			c.JSON(consts.StatusUnauthorized, utils.H{"error": "invalid or missing API key"})
			c.Abort()
		}),
	)
}

// requestLogMiddleware logs one line per request with latency and status.
func requestLogMiddleware() app.HandlerFunc {
	return func(ctx context.Context, c *app.RequestContext) {
		start := time.Now()
		c.Next(ctx)

		logger.Info().
			Str("method", string(c.Method())).
			Str("path", string(c.Path())).
			Int("status", c.Response.StatusCode()).
			Dur("latency", time.Since(start)).
			Msg("request")
	}
}
