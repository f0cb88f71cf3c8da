package proctoring

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"i-hire-go/internal/config"
	"i-hire-go/internal/constants"
	"i-hire-go/internal/logger"
	"i-hire-go/internal/storage"
)

// statsDedupTTL is how long a processed session-completed event stays marked.
// Redeliveries inside the window are dropped instead of double-counted.
const statsDedupTTL = 24 * time.Hour

// StatsConsumer consumes session-completed events and folds them into the
// per-day proctoring statistics kept in Redis.
type StatsConsumer struct {
	mq    *storage.RabbitMQ
	redis *storage.Redis
	cfg   *config.RabbitMQConfig
}

// NewStatsConsumer creates the consumer.
func NewStatsConsumer(mq *storage.RabbitMQ, redis *storage.Redis, cfg *config.RabbitMQConfig) *StatsConsumer {
	return &StatsConsumer{mq: mq, redis: redis, cfg: cfg}
}

// Start declares the exchange, queue, and binding, then begins consuming.
// The returned channel closes when the consumer stops.
func (c *StatsConsumer) Start(ctx context.Context) (<-chan struct{}, error) {
	if err := c.mq.EnsureExchange(c.cfg.ProctoringExchange, "topic", true); err != nil {
		return nil, fmt.Errorf("declaring proctoring exchange: %w", err)
	}
	if err := c.mq.EnsureQueue(c.cfg.SessionStatsQueue, true); err != nil {
		return nil, fmt.Errorf("declaring stats queue: %w", err)
	}
	if err := c.mq.BindQueue(c.cfg.SessionStatsQueue, c.cfg.ProctoringExchange, c.cfg.SessionCompletedRouting); err != nil {
		return nil, fmt.Errorf("binding stats queue: %w", err)
	}

	done, err := c.mq.StartConsumer(c.cfg.SessionStatsQueue, c.cfg.PrefetchCount, func(body []byte) bool {
		return c.handle(ctx, body)
	})
	if err != nil {
		return nil, fmt.Errorf("starting stats consumer: %w", err)
	}

	logger.Info().
		Str("queue", c.cfg.SessionStatsQueue).
		Msg("proctoring stats consumer started")
	return done, nil
}

// handle processes one session-completed message. Returning false requeues
// the delivery.
func (c *StatsConsumer) handle(ctx context.Context, body []byte) bool {
	var message storage.SessionCompletedMessage
	if err := json.Unmarshal(body, &message); err != nil {
		// Malformed payloads would requeue forever; drop them.
		logger.Error().Err(err).Msg("dropping malformed session-completed message")
		return true
	}

	// The broker delivers at least once; a per-session marker keeps the
	// counters from absorbing the same completion twice.
	lockKey := fmt.Sprintf(constants.KeyProctoringSessionLock, message.SessionID, message.MockID)
	token, err := c.redis.AcquireLock(ctx, lockKey, statsDedupTTL)
	if err != nil {
		logger.Warn().Err(err).Str("session_id", message.SessionID).Msg("stats dedup check failed, requeueing")
		return false
	}
	if token == "" {
		logger.Debug().Str("session_id", message.SessionID).Msg("duplicate session-completed event dropped")
		return true
	}

	day := message.EndedAt.UTC().Format("2006-01-02")
	if err := c.redis.IncrProctoringDailyStats(ctx, day, message.SeverityLevel, message.AlertsCount, message.RiskScore); err != nil {
		// Free the marker so the redelivery can count the session.
		if _, releaseErr := c.redis.ReleaseLock(ctx, lockKey, token); releaseErr != nil {
			logger.Warn().Err(releaseErr).Str("session_id", message.SessionID).Msg("failed to release stats dedup marker")
		}
		logger.Warn().
			Err(err).
			Str("session_id", message.SessionID).
			Msg("failed to record daily proctoring stats, requeueing")
		return false
	}

	logger.Debug().
		Str("session_id", message.SessionID).
		Str("day", day).
		Str("severity", message.SeverityLevel).
		Msg("recorded daily proctoring stats")
	return true
}
