package ratelimit

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/cloudwego/eino/components/model"
	"github.com/cloudwego/eino/schema"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// countingModel fails a fixed number of times before succeeding.
type countingModel struct {
	calls    int
	failures int
	err      error
}

func (m *countingModel) Generate(ctx context.Context, messages []*schema.Message, options ...model.Option) (*schema.Message, error) {
	m.calls++
	if m.calls <= m.failures {
		return nil, m.err
	}
	return &schema.Message{Content: "ok"}, nil
}

func (m *countingModel) Stream(ctx context.Context, messages []*schema.Message, options ...model.Option) (*schema.StreamReader[*schema.Message], error) {
	return nil, errors.New("not implemented")
}

func (m *countingModel) WithTools(tools []*schema.ToolInfo) (model.ToolCallingChatModel, error) {
	return m, nil
}

func TestBucketTryTake(t *testing.T) {
	b := NewBucket(60, 2)

	assert.True(t, b.TryTake())
	assert.True(t, b.TryTake())
	// Burst spent; at 1 token/s an immediate third take fails.
	assert.False(t, b.TryTake())
}

func TestBucketTakeContextCancel(t *testing.T) {
	b := NewBucket(1, 1)
	require.True(t, b.TryTake())

	ctx, cancel := context.WithTimeout(context.Background(), 20*time.Millisecond)
	defer cancel()

	assert.ErrorIs(t, b.Take(ctx), context.DeadlineExceeded)
}

func TestThrottledModelDoesNotRetryPermanentErrors(t *testing.T) {
	inner := &countingModel{failures: 5, err: errors.New("invalid request")}
	llm := NewLLMWithRateLimit(inner, "", nil, 600, 3, time.Millisecond)

	_, err := llm.Generate(context.Background(), nil)
	require.Error(t, err)
	assert.Equal(t, 1, inner.calls, "permanent errors must not be retried")
}

func TestThrottledModelRetriesTransientErrors(t *testing.T) {
	inner := &countingModel{failures: 2, err: errors.New("429 Too Many Requests")}
	llm := NewLLMWithRateLimit(inner, "", nil, 6000, 3, time.Millisecond)

	response, err := llm.Generate(context.Background(), nil)
	require.NoError(t, err)
	assert.Equal(t, "ok", response.Content)
	assert.Equal(t, 3, inner.calls)
}

func TestPerModelLimitWinsOverCustomQPM(t *testing.T) {
	llm := NewLLMWithRateLimit(&countingModel{}, "gpt-4o", map[string]int{"gpt-4o": 1000}, 60, 0, 0)

	throttled, ok := llm.(*throttledChatModel)
	require.True(t, ok)
	// 90% of the 1000 QPM quota, in tokens per second.
	assert.InDelta(t, 900.0/60.0, throttled.bucket.perSecond, 1e-9)
}

func TestRetryable(t *testing.T) {
	assert.True(t, retryable(errors.New("context deadline exceeded")))
	assert.True(t, retryable(errors.New("openai: rate limit reached")))
	assert.False(t, retryable(errors.New("invalid api key")))
	assert.False(t, retryable(nil))
}
