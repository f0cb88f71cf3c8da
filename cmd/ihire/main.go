package main

import (
	"context"
	"log"
	"os"
	"os/signal"
	"syscall"
	"time"

	"i-hire-go/internal/api/handler"
	"i-hire-go/internal/api/router"
	"i-hire-go/internal/config"
	"i-hire-go/internal/evaluation"
	"i-hire-go/internal/interview"
	"i-hire-go/internal/llm"
	applogger "i-hire-go/internal/logger"
	"i-hire-go/internal/matching"
	"i-hire-go/internal/outbox"
	"i-hire-go/internal/parser"
	"i-hire-go/internal/proctoring"
	"i-hire-go/internal/profile"
	"i-hire-go/internal/storage"
	"i-hire-go/pkg/ratelimit"

	"github.com/cloudwego/eino/components/embedding"
	"github.com/cloudwego/eino/components/model"
	"github.com/cloudwego/hertz/pkg/app/server"
	"github.com/cloudwego/hertz/pkg/common/hlog"
	hertzzerolog "github.com/hertz-contrib/logger/zerolog"
	"github.com/spf13/pflag"
)

func main() {
	var configPath string
	pflag.StringVarP(&configPath, "config", "c", "", "Path to config file")
	pflag.Parse()

	cfg, err := config.LoadConfig(configPath)
	if err != nil {
		log.Fatalf("loading config: %v", err)
	}

	applogger.Init(applogger.Config{
		Level:        cfg.Logger.Level,
		Format:       cfg.Logger.Format,
		TimeFormat:   cfg.Logger.TimeFormat,
		ReportCaller: cfg.Logger.ReportCaller,
	})
	hlog.SetLogger(hertzzerolog.From(applogger.Logger))
	applogger.Info().Str("config", configPath).Msg("configuration loaded")

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	store, err := storage.NewStorage(ctx, cfg)
	if err != nil {
		applogger.Fatal().Err(err).Msg("initializing storage")
	}
	defer store.Close()
	if store.Postgres == nil {
		applogger.Fatal().Msg("postgres is required but failed to initialize")
	}

	// The message relay drains the transactional outbox into RabbitMQ.
	var relay *outbox.MessageRelay
	if store.RabbitMQ != nil {
		relayLogger := log.New(applogger.Logger, "[MessageRelay] ", log.LstdFlags)
		relay = outbox.NewMessageRelay(store.Postgres.DB(), store.RabbitMQ, relayLogger)
		relay.Start()
		applogger.Info().Msg("outbox message relay started")
	} else {
		applogger.Warn().Msg("RabbitMQ unavailable, proctoring events will stay in the outbox")
	}

	evalModel := buildChatModel(cfg, cfg.Evaluator.ModelName, cfg.Evaluator.QPM)
	feedbackModel := buildChatModel(cfg, cfg.Evaluator.FeedbackModel, cfg.Evaluator.QPM)
	questionModel := buildChatModel(cfg, cfg.GetModelForTask("question_generation"), 0)
	cvModel := buildChatModel(cfg, cfg.GetModelForTask("cv_analysis"), 0)

	var embedder embedding.Embedder
	if cfg.Matcher.Strategy == "embedding" {
		openAIEmbedder, err := llm.NewOpenAIEmbedder(cfg.OpenAI.APIKey, cfg.OpenAI.Embedding)
		if err != nil {
			applogger.Warn().Err(err).Msg("embedder init failed, matcher falls back to heuristic")
		} else {
			embedder = openAIEmbedder
		}
	}

	tikaOptions := []parser.TikaOption{parser.WithMetadataMode(cfg.Tika.MetadataMode)}
	if cfg.Tika.Timeout > 0 {
		tikaOptions = append(tikaOptions, parser.WithTikaTimeout(time.Duration(cfg.Tika.Timeout)*time.Second))
	}
	extractor := parser.NewTikaCVExtractor(cfg.Tika.ServerURL, tikaOptions...)

	evaluator := evaluation.NewService(evalModel, feedbackModel)
	interviews := interview.NewService(store.Postgres, parser.NewQuestionGenerator(questionModel), evaluator)
	profiles := profile.NewService(store.Postgres, store.MinIO, extractor, parser.NewProfileExtractor(cvModel))
	matcher := matching.NewService(store.Postgres, store.Redis, embedder, &cfg.Matcher)
	sessions := proctoring.NewService(store.Postgres, store.Redis, cfg)

	if store.RabbitMQ != nil && store.Redis != nil {
		consumer := proctoring.NewStatsConsumer(store.RabbitMQ, store.Redis, &cfg.RabbitMQ)
		if _, err := consumer.Start(ctx); err != nil {
			applogger.Warn().Err(err).Msg("failed to start proctoring stats consumer")
		} else {
			applogger.Info().Msg("proctoring stats consumer started")
		}
	}

	h := server.New(
		server.WithHostPorts(cfg.Server.Address),
		server.WithHandleMethodNotAllowed(true),
	)
	router.RegisterRoutes(h, cfg, &router.Handlers{
		Proctoring:     handler.NewProctoringHandler(sessions),
		Interview:      handler.NewInterviewHandler(interviews, evaluator),
		Recommendation: handler.NewRecommendationHandler(matcher, store.Postgres),
		Profile:        handler.NewProfileHandler(profiles),
	})

	go func() {
		applogger.Info().Str("address", cfg.Server.Address).Msg("HTTP server starting")
		if err := h.Run(); err != nil {
			applogger.Fatal().Err(err).Msg("HTTP server failed")
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit
	applogger.Info().Msg("shutting down")

	cancel()
	if relay != nil {
		relay.Stop()
	}

	shutdownCtx, cancelShutdown := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancelShutdown()
	if err := h.Shutdown(shutdownCtx); err != nil {
		applogger.Error().Err(err).Msg("server shutdown failed")
	}
	applogger.Info().Msg("shutdown complete")
}

// buildChatModel creates a rate-limited chat model client for one model name.
// A nil return means the service runs degraded (the evaluator and parsers
// handle nil models with their fallback paths).
func buildChatModel(cfg *config.Config, modelName string, customQPM int) model.ToolCallingChatModel {
	base, err := llm.NewOpenAIChatModel(cfg.OpenAI.APIKey, modelName, cfg.OpenAI.APIURL,
		llm.WithTemperature(cfg.Evaluator.Temperature),
		llm.WithMaxTokens(cfg.Evaluator.MaxTokens),
	)
	if err != nil {
		applogger.Warn().Err(err).Str("model", modelName).Msg("chat model init failed, running degraded")
		return nil
	}

	retryWait := time.Duration(cfg.Evaluator.RetryWaitSeconds) * time.Second
	return ratelimit.NewLLMWithRateLimit(base, modelName, cfg.ModelQPMLimits, customQPM, cfg.Evaluator.MaxRetries, retryWait)
}
