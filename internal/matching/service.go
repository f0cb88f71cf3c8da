package matching

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"sync"

	"i-hire-go/internal/config"
	"i-hire-go/internal/constants"
	"i-hire-go/internal/logger"
	"i-hire-go/internal/storage"
	"i-hire-go/internal/storage/models"

	"github.com/cloudwego/eino/components/embedding"
	"gorm.io/gorm"
)

// ErrProfileNotFound is returned when the user has no stored profile.
var ErrProfileNotFound = errors.New("user profile not found")

// ProfileSummary is the candidate data echoed back with recommendations.
type ProfileSummary struct {
	Name            string            `json:"name"`
	Skills          []string          `json:"skills"`
	Experience      []ExperienceEntry `json:"experience"`
	CurrentPosition string            `json:"currentPosition"`
}

// RecommendationResponse is the full recommendation payload for one user.
type RecommendationResponse struct {
	Recommendations []MatchResult  `json:"recommendations"`
	UserProfile     ProfileSummary `json:"userProfile"`
	ModelStatus     ModelStatus    `json:"modelStatus"`
}

// Service generates job recommendations. The strategy is selected by
// configuration; embedding failures silently fall back to the heuristic so a
// recommendation request never hard-fails on the ML dependency.
type Service struct {
	pg           *storage.Postgres
	redis        *storage.Redis
	heuristic    *HeuristicMatcher
	embedding    *EmbeddingMatcher
	useEmbedding bool
	defaultLimit int

	mu        sync.Mutex
	lastError string
}

// NewService wires the matcher. embedder may be nil, forcing the heuristic
// regardless of the configured strategy.
func NewService(pg *storage.Postgres, redis *storage.Redis, embedder embedding.Embedder, cfg *config.MatcherConfig) *Service {
	s := &Service{
		pg:           pg,
		redis:        redis,
		heuristic:    NewHeuristicMatcher(),
		defaultLimit: cfg.DefaultLimit,
	}

	if cfg.Strategy == "embedding" && embedder != nil {
		ttl := config.GetDuration(cfg.VectorCacheTTL, constants.JobVectorCacheDuration)
		s.embedding = NewEmbeddingMatcher(embedder, redis, ttl)
		s.useEmbedding = true
	} else if cfg.Strategy == "embedding" {
		logger.Warn().Msg("embedding strategy configured but no embedder available, using heuristic")
	}

	return s
}

// Recommend loads the user's profile and the active postings, ranks them,
// and returns the top limit matches. Results are cached briefly in Redis.
func (s *Service) Recommend(ctx context.Context, userID string, limit int) (*RecommendationResponse, error) {
	if limit <= 0 {
		limit = s.defaultLimit
	}

	if cached := s.cachedResponse(ctx, userID, limit); cached != nil {
		return cached, nil
	}

	profile, err := s.pg.GetUserProfile(ctx, userID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrProfileNotFound
		}
		return nil, fmt.Errorf("loading profile: %w", err)
	}
	candidate := CandidateFromProfile(profile)

	jobs, err := s.pg.FindActiveJobPostings(ctx)
	if err != nil {
		return nil, fmt.Errorf("loading job postings: %w", err)
	}

	recommendations := s.rank(ctx, candidate, jobs, limit)

	response := &RecommendationResponse{
		Recommendations: recommendations,
		UserProfile: ProfileSummary{
			Name:            candidate.Name,
			Skills:          candidate.Skills,
			Experience:      candidate.Experience,
			CurrentPosition: candidate.CurrentPosition,
		},
		ModelStatus: s.Status(),
	}

	s.cacheResponse(ctx, userID, limit, response)
	return response, nil
}

// rank runs the configured strategy, falling back to the heuristic on any
// embedding failure.
func (s *Service) rank(ctx context.Context, candidate *Candidate, jobs []models.JobPosting, limit int) []MatchResult {
	if s.useEmbedding {
		results, err := s.embedding.Recommend(ctx, candidate, jobs, limit)
		if err == nil {
			s.setLastError("")
			return results
		}
		s.setLastError(err.Error())
		logger.Warn().Err(err).Msg("embedding matcher failed, falling back to heuristic")
	}

	results, err := s.heuristic.Recommend(ctx, candidate, jobs, limit)
	if err != nil {
		// The heuristic is a pure function and cannot fail in practice.
		logger.Error().Err(err).Msg("heuristic matcher failed")
		return []MatchResult{}
	}
	return results
}

// Status reports the effective matching strategy.
func (s *Service) Status() ModelStatus {
	s.mu.Lock()
	lastError := s.lastError
	s.mu.Unlock()

	switch {
	case s.useEmbedding && lastError == "":
		return ModelStatus{
			Loaded:  true,
			Status:  "ready",
			Message: "Embedding model loaded successfully",
		}
	case s.useEmbedding:
		return ModelStatus{
			Loaded:  false,
			Status:  "error",
			Message: "Using fallback recommendation system: " + lastError,
		}
	default:
		return ModelStatus{
			Loaded:  false,
			Status:  "fallback",
			Message: "Using fallback recommendation system",
		}
	}
}

func (s *Service) setLastError(message string) {
	s.mu.Lock()
	s.lastError = message
	s.mu.Unlock()
}

func (s *Service) cacheKey(userID string, limit int) string {
	return fmt.Sprintf("%s:%d", userID, limit)
}

func (s *Service) cachedResponse(ctx context.Context, userID string, limit int) *RecommendationResponse {
	if s.redis == nil {
		return nil
	}
	payload, err := s.redis.GetCachedRecommendations(ctx, s.cacheKey(userID, limit))
	if err != nil {
		return nil
	}
	var response RecommendationResponse
	if err := json.Unmarshal([]byte(payload), &response); err != nil {
		return nil
	}
	return &response
}

func (s *Service) cacheResponse(ctx context.Context, userID string, limit int, response *RecommendationResponse) {
	if s.redis == nil {
		return
	}
	payload, err := json.Marshal(response)
	if err != nil {
		return
	}
	if err := s.redis.CacheRecommendations(ctx, s.cacheKey(userID, limit), string(payload)); err != nil {
		logger.Debug().Err(err).Str("user_id", userID).Msg("failed to cache recommendations")
	}
}
