package ratelimit

import (
	"context"
	"time"

	"github.com/cloudwego/eino/components/model"
	"github.com/cloudwego/eino/schema"
)

const (
	defaultQPM        = 30
	defaultMaxRetries = 3
	defaultRetryWait  = time.Second
)

// throttledChatModel wraps a chat model so every call pays a bucket token
// and transient failures retry with exponential backoff.
type throttledChatModel struct {
	inner      model.ToolCallingChatModel
	bucket     *Bucket
	retryWait  time.Duration
	maxRetries int
}

// NewLLMWithRateLimit wraps a chat model with per-model QPM limiting. A
// limit configured for modelName wins over customQPM and runs at 90% of the
// provider quota to leave headroom.
func NewLLMWithRateLimit(original model.ToolCallingChatModel, modelName string, qpmLimits map[string]int, customQPM int, maxRetries int, retryWait time.Duration) model.ToolCallingChatModel {
	qpm := customQPM
	if limit, ok := qpmLimits[modelName]; ok && limit > 0 {
		qpm = int(float64(limit) * 0.9)
	}
	if qpm <= 0 {
		qpm = defaultQPM
	}
	if maxRetries <= 0 {
		maxRetries = defaultMaxRetries
	}
	if retryWait <= 0 {
		retryWait = defaultRetryWait
	}

	return &throttledChatModel{
		inner:      original,
		bucket:     NewBucket(qpm, qpm/2),
		retryWait:  retryWait,
		maxRetries: maxRetries,
	}
}

func (t *throttledChatModel) Generate(ctx context.Context, messages []*schema.Message, options ...model.Option) (*schema.Message, error) {
	var response *schema.Message
	err := t.call(ctx, func() error {
		var callErr error
		response, callErr = t.inner.Generate(ctx, messages, options...)
		return callErr
	})
	return response, err
}

func (t *throttledChatModel) Stream(ctx context.Context, messages []*schema.Message, options ...model.Option) (*schema.StreamReader[*schema.Message], error) {
	var stream *schema.StreamReader[*schema.Message]
	err := t.call(ctx, func() error {
		var callErr error
		stream, callErr = t.inner.Stream(ctx, messages, options...)
		return callErr
	})
	return stream, err
}

// WithTools rebinds the tools on the inner model; the new wrapper shares
// this one's bucket so the budget stays global per model.
func (t *throttledChatModel) WithTools(tools []*schema.ToolInfo) (model.ToolCallingChatModel, error) {
	bound, err := t.inner.WithTools(tools)
	if err != nil {
		return nil, err
	}
	return &throttledChatModel{
		inner:      bound,
		bucket:     t.bucket,
		retryWait:  t.retryWait,
		maxRetries: t.maxRetries,
	}, nil
}

// call runs fn under the bucket, retrying transient errors. Permanent errors
// and exhausted retries return the last error unchanged.
func (t *throttledChatModel) call(ctx context.Context, fn func() error) error {
	var err error
	for attempt := 0; attempt <= t.maxRetries; attempt++ {
		if err = t.bucket.Take(ctx); err != nil {
			return err
		}

		if err = fn(); err == nil {
			return nil
		}
		if !retryable(err) || attempt == t.maxRetries {
			return err
		}

		backoff := t.retryWait * time.Duration(1<<uint(attempt))
		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-time.After(backoff):
		}
	}
	return err
}
