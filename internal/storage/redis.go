package storage

import (
	"context"
	"encoding/json"
	"fmt"
	"math/rand"
	"strings"
	"sync"
	"time"

	"i-hire-go/internal/config"
	"i-hire-go/internal/constants"

	"github.com/redis/go-redis/v9"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	semconv "go.opentelemetry.io/otel/semconv/v1.21.0"
	"go.opentelemetry.io/otel/trace"
)

// ErrNotFound is returned when a key is not found in Redis.
// It wraps the underlying redis.Nil error for abstraction.
var ErrNotFound = redis.Nil

var redisTracer = otel.Tracer("i-hire-go/storage/redis")

// Per-prefix span sampling rates for high-volume operations.
var redisKeySamplingRates = map[string]float64{
	"app:proctoring:lock:":         0.5,
	"app:proctoring:stats:":        0.1,
	"app:job:":                     0.1,
	"app:profile:recommendations:": 0.25,
}

var (
	rnd      *rand.Rand
	rndMutex sync.Mutex
)

func init() {
	source := rand.NewSource(time.Now().UnixNano())
	rnd = rand.New(source)
}

func shouldSampleRedisOp(key string) bool {
	if key == "" {
		return false
	}
	for prefix, rate := range redisKeySamplingRates {
		if strings.HasPrefix(key, prefix) {
			return randFloat() < rate
		}
	}
	return randFloat() < 0.05
}

func randFloat() float64 {
	rndMutex.Lock()
	defer rndMutex.Unlock()
	return rnd.Float64()
}

// Redis wraps the Redis client.
type Redis struct {
	Client *redis.Client
	config *config.RedisConfig
}

// NewRedisAdapter creates a new Redis client connection.
func NewRedisAdapter(cfg *config.RedisConfig) (*Redis, error) {
	if cfg == nil {
		return nil, fmt.Errorf("redis config cannot be nil")
	}
	if cfg.Address == "" {
		return nil, fmt.Errorf("redis address is required")
	}

	opt := &redis.Options{
		Addr:     cfg.Address,
		Password: cfg.Password,
		DB:       cfg.DB,

		PoolSize:     cfg.PoolSize,
		MinIdleConns: cfg.MinIdleConns,

		DialTimeout:  time.Duration(cfg.DialTimeoutSeconds) * time.Second,
		ReadTimeout:  time.Duration(cfg.ReadTimeoutSeconds) * time.Second,
		WriteTimeout: time.Duration(cfg.WriteTimeoutSeconds) * time.Second,

		MaxRetries:      cfg.MaxRetries,
		MinRetryBackoff: time.Duration(cfg.MinRetryBackoffMS) * time.Millisecond,
		MaxRetryBackoff: time.Duration(cfg.MaxRetryBackoffMS) * time.Millisecond,

		ConnMaxLifetime: time.Duration(cfg.ConnMaxLifetimeMinutes) * time.Minute,
		ConnMaxIdleTime: time.Duration(cfg.ConnMaxIdleTimeMinutes) * time.Minute,
	}

	client := redis.NewClient(opt)

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	if _, err := client.Ping(ctx).Result(); err != nil {
		return nil, fmt.Errorf("failed to connect to Redis at %s: %w", cfg.Address, err)
	}

	return &Redis{
		Client: client,
		config: cfg,
	}, nil
}

// Close closes the Redis client connection.
func (r *Redis) Close() error {
	if r.Client != nil {
		return r.Client.Close()
	}
	return nil
}

// Ping checks the Redis connection.
func (r *Redis) Ping(ctx context.Context) error {
	if r.Client == nil {
		return fmt.Errorf("redis client is not initialized")
	}
	return r.Client.Ping(ctx).Err()
}

// Get retrieves a key's value.
func (r *Redis) Get(ctx context.Context, key string) (string, error) {
	if r.Client == nil {
		return "", fmt.Errorf("redis client is not initialized")
	}

	var span trace.Span
	if shouldSampleRedisOp(key) {
		ctx, span = redisTracer.Start(ctx, "Redis.Get", trace.WithSpanKind(trace.SpanKindClient))
		defer span.End()

		span.SetAttributes(
			semconv.DBSystemRedis,
			attribute.String("db.operation", "GET"),
			attribute.String("db.redis.key", key),
		)
	}

	val, err := r.Client.Get(ctx, key).Result()

	if span != nil {
		if err != nil {
			if err == redis.Nil {
				span.SetStatus(codes.Ok, "key not found")
				span.SetAttributes(attribute.Bool("db.redis.key_exists", false))
			} else {
				span.RecordError(err)
				span.SetStatus(codes.Error, err.Error())
			}
			return "", err
		}
		span.SetAttributes(
			attribute.Bool("db.redis.key_exists", true),
			attribute.Int("db.redis.value_length", len(val)),
		)
		span.SetStatus(codes.Ok, "")
	}

	return val, err
}

// Set stores a key with an expiration.
func (r *Redis) Set(ctx context.Context, key string, value string, expiration time.Duration) error {
	if r.Client == nil {
		return fmt.Errorf("redis client is not initialized")
	}

	var span trace.Span
	if shouldSampleRedisOp(key) {
		ctx, span = redisTracer.Start(ctx, "Redis.Set", trace.WithSpanKind(trace.SpanKindClient))
		defer span.End()

		span.SetAttributes(
			semconv.DBSystemRedis,
			attribute.String("db.operation", "SET"),
			attribute.String("db.redis.key", key),
			attribute.Int("db.redis.value_length", len(value)),
		)
		if expiration > 0 {
			span.SetAttributes(attribute.Int64("db.redis.expiration_ms", expiration.Milliseconds()))
		}
	}

	err := r.Client.Set(ctx, key, value, expiration).Err()

	if span != nil {
		if err != nil {
			span.RecordError(err)
			span.SetStatus(codes.Error, err.Error())
			return err
		}
		span.SetStatus(codes.Ok, "")
	}

	return err
}

// Del removes a key.
func (r *Redis) Del(ctx context.Context, key string) error {
	if r.Client == nil {
		return fmt.Errorf("redis client is not initialized")
	}
	return r.Client.Del(ctx, key).Err()
}

// SetJobText caches the text blob the matcher builds for a job posting.
func (r *Redis) SetJobText(ctx context.Context, jobID string, text string) error {
	key := fmt.Sprintf(constants.KeyJobText, jobID)
	return r.Set(ctx, key, text, constants.JobTextCacheDuration)
}

// GetJobText returns the cached matcher text for a job posting.
func (r *Redis) GetJobText(ctx context.Context, jobID string) (string, error) {
	key := fmt.Sprintf(constants.KeyJobText, jobID)
	return r.Get(ctx, key)
}

// SetJobVector caches a job posting's embedding as a JSON array.
func (r *Redis) SetJobVector(ctx context.Context, jobID string, vector []float64, ttl time.Duration) error {
	if r.Client == nil {
		return fmt.Errorf("redis client is not initialized")
	}

	vectorJSON, err := json.Marshal(vector)
	if err != nil {
		return fmt.Errorf("marshaling vector: %w", err)
	}

	key := fmt.Sprintf(constants.KeyJobVector, jobID)
	if err := r.Client.Set(ctx, key, vectorJSON, ttl).Err(); err != nil {
		return fmt.Errorf("caching job vector: %w", err)
	}
	return nil
}

// GetJobVector returns a cached job embedding, or ErrNotFound.
func (r *Redis) GetJobVector(ctx context.Context, jobID string) ([]float64, error) {
	if r.Client == nil {
		return nil, fmt.Errorf("redis client is not initialized")
	}

	key := fmt.Sprintf(constants.KeyJobVector, jobID)
	vectorJSON, err := r.Client.Get(ctx, key).Result()
	if err != nil {
		return nil, err
	}

	var vector []float64
	if err := json.Unmarshal([]byte(vectorJSON), &vector); err != nil {
		return nil, fmt.Errorf("unmarshaling cached vector: %w", err)
	}
	return vector, nil
}

// CacheRecommendations stores a user's recommendation payload.
func (r *Redis) CacheRecommendations(ctx context.Context, userID string, payload string) error {
	key := fmt.Sprintf(constants.KeyUserRecommendations, userID)
	return r.Set(ctx, key, payload, constants.RecommendationCacheDuration)
}

// GetCachedRecommendations returns a user's cached recommendation payload.
func (r *Redis) GetCachedRecommendations(ctx context.Context, userID string) (string, error) {
	key := fmt.Sprintf(constants.KeyUserRecommendations, userID)
	return r.Get(ctx, key)
}

// IncrProctoringDailyStats bumps the per-day counters for a completed
// session. Fields are written in one pipeline so the hash stays consistent.
func (r *Redis) IncrProctoringDailyStats(ctx context.Context, day string, severity string, alerts int, riskScore int) error {
	if r.Client == nil {
		return fmt.Errorf("redis client is not initialized")
	}

	key := fmt.Sprintf(constants.KeyProctoringDailyStats, day)

	pipe := r.Client.Pipeline()
	pipe.HIncrBy(ctx, key, "sessions_completed", 1)
	pipe.HIncrBy(ctx, key, "severity_"+severity, 1)
	pipe.HIncrBy(ctx, key, "total_alerts", int64(alerts))
	pipe.HIncrBy(ctx, key, "total_risk_score", int64(riskScore))
	pipe.ExpireNX(ctx, key, 35*24*time.Hour)

	if _, err := pipe.Exec(ctx); err != nil {
		return fmt.Errorf("updating daily proctoring stats: %w", err)
	}
	return nil
}

// GetProctoringDailyStats reads a day's counters.
func (r *Redis) GetProctoringDailyStats(ctx context.Context, day string) (map[string]string, error) {
	if r.Client == nil {
		return nil, fmt.Errorf("redis client is not initialized")
	}
	key := fmt.Sprintf(constants.KeyProctoringDailyStats, day)
	return r.Client.HGetAll(ctx, key).Result()
}

// AcquireLock attempts to take a distributed lock. It returns the lock token
// on success and an empty string when the lock is already held.
func (r *Redis) AcquireLock(ctx context.Context, lockKey string, expiration time.Duration) (string, error) {
	if r.Client == nil {
		return "", fmt.Errorf("redis client is not initialized")
	}
	lockValue := fmt.Sprintf("%d", time.Now().UnixNano())
	ok, err := r.Client.SetNX(ctx, lockKey, lockValue, expiration).Result()
	if err != nil {
		return "", err
	}
	if ok {
		return lockValue, nil
	}
	return "", nil
}

// ReleaseLock releases a distributed lock; the Lua script only deletes the
// key when the token matches the holder.
func (r *Redis) ReleaseLock(ctx context.Context, lockKey string, lockValue string) (bool, error) {
	if r.Client == nil {
		return false, fmt.Errorf("redis client is not initialized")
	}
	script := `
        if redis.call("get", KEYS[1]) == ARGV[1] then
            return redis.call("del", KEYS[1])
        else
            return 0
        end
    `
	res, err := r.Client.Eval(ctx, script, []string{lockKey}, lockValue).Result()
	if err != nil {
		return false, err
	}

	if released, ok := res.(int64); ok && released == 1 {
		return true, nil
	}

	return false, nil
}
