package matching

import (
	"context"
	"fmt"
	"math"
	"sort"
	"strings"
	"time"

	"i-hire-go/internal/logger"
	"i-hire-go/internal/storage"
	"i-hire-go/internal/storage/models"

	"github.com/cloudwego/eino/components/embedding"
)

// EmbeddingMatcher ranks jobs by cosine similarity between the candidate's
// text blob and each job's text blob. Job vectors are cached in Redis; the
// candidate vector is computed per request.
type EmbeddingMatcher struct {
	embedder  embedding.Embedder
	redis     *storage.Redis
	vectorTTL time.Duration
}

// NewEmbeddingMatcher creates the embedding strategy. redis may be nil, in
// which case vectors are recomputed on every call.
func NewEmbeddingMatcher(embedder embedding.Embedder, redis *storage.Redis, vectorTTL time.Duration) *EmbeddingMatcher {
	return &EmbeddingMatcher{
		embedder:  embedder,
		redis:     redis,
		vectorTTL: vectorTTL,
	}
}

func (m *EmbeddingMatcher) Name() string {
	return "embedding"
}

// Recommend embeds the candidate and all uncached jobs, ranks by cosine
// similarity, and returns the top limit results. Any error propagates so
// the caller can fall back to the heuristic.
func (m *EmbeddingMatcher) Recommend(ctx context.Context, candidate *Candidate, jobs []models.JobPosting, limit int) ([]MatchResult, error) {
	if m.embedder == nil {
		return nil, fmt.Errorf("embedder is not configured")
	}
	if len(jobs) == 0 {
		return []MatchResult{}, nil
	}

	candidateVectors, err := m.embedder.EmbedStrings(ctx, []string{candidateText(candidate)})
	if err != nil {
		return nil, fmt.Errorf("embedding candidate: %w", err)
	}
	if len(candidateVectors) != 1 || len(candidateVectors[0]) == 0 {
		return nil, fmt.Errorf("embedder returned no candidate vector")
	}
	candidateVector := candidateVectors[0]

	jobVectors, err := m.jobVectors(ctx, jobs)
	if err != nil {
		return nil, err
	}

	results := make([]MatchResult, 0, len(jobs))
	for i := range jobs {
		job := &jobs[i]
		vector, ok := jobVectors[job.JobID]
		if !ok {
			continue
		}

		similarity := cosineSimilarity(candidateVector, vector)
		results = append(results, MatchResult{
			JobID:      job.JobID,
			JobTitle:   job.JobTitle,
			Company:    companyOrCity(job),
			Location:   job.City,
			MatchScore: int(math.Round(similarity * 100)),
			Reason:     matchReason(similarity, candidate, job),
			Job:        job,
		})
	}

	sort.SliceStable(results, func(i, j int) bool {
		return results[i].MatchScore > results[j].MatchScore
	})
	if limit > 0 && len(results) > limit {
		results = results[:limit]
	}
	return results, nil
}

// jobVectors returns an embedding per job, reading the Redis cache first and
// embedding cache misses in one batch.
func (m *EmbeddingMatcher) jobVectors(ctx context.Context, jobs []models.JobPosting) (map[string][]float64, error) {
	vectors := make(map[string][]float64, len(jobs))
	var missing []*models.JobPosting

	for i := range jobs {
		job := &jobs[i]
		if m.redis != nil {
			if vector, err := m.redis.GetJobVector(ctx, job.JobID); err == nil && len(vector) > 0 {
				vectors[job.JobID] = vector
				continue
			}
		}
		missing = append(missing, job)
	}

	if len(missing) == 0 {
		return vectors, nil
	}

	texts := make([]string, len(missing))
	for i, job := range missing {
		texts[i] = m.jobTextFor(ctx, job)
	}

	embedded, err := m.embedder.EmbedStrings(ctx, texts)
	if err != nil {
		return nil, fmt.Errorf("embedding %d jobs: %w", len(missing), err)
	}
	if len(embedded) != len(missing) {
		return nil, fmt.Errorf("embedder returned %d vectors for %d jobs", len(embedded), len(missing))
	}

	for i, job := range missing {
		vectors[job.JobID] = embedded[i]
		if m.redis != nil {
			if err := m.redis.SetJobVector(ctx, job.JobID, embedded[i], m.vectorTTL); err != nil {
				logger.Warn().Err(err).Str("job_id", job.JobID).Msg("failed to cache job vector")
			}
		}
	}

	return vectors, nil
}

// jobTextFor returns the text blob embedded for a job, served from the Redis
// job-text cache when possible so repeated rankings rebuild nothing.
func (m *EmbeddingMatcher) jobTextFor(ctx context.Context, job *models.JobPosting) string {
	if m.redis != nil {
		if text, err := m.redis.GetJobText(ctx, job.JobID); err == nil && text != "" {
			return text
		}
	}

	text := jobText(job)
	if m.redis != nil {
		if err := m.redis.SetJobText(ctx, job.JobID, text); err != nil {
			logger.Debug().Err(err).Str("job_id", job.JobID).Msg("failed to cache job text")
		}
	}
	return text
}

// matchReason buckets the similarity and appends skill and experience notes.
func matchReason(similarity float64, candidate *Candidate, job *models.JobPosting) string {
	var reasons []string

	switch {
	case similarity >= 0.8:
		reasons = append(reasons, "Excellent semantic match with your profile")
	case similarity >= 0.6:
		reasons = append(reasons, "Strong semantic match with your background")
	case similarity >= 0.4:
		reasons = append(reasons, "Good semantic alignment with your skills")
	default:
		reasons = append(reasons, "Moderate semantic match")
	}

	if candidate.CVText != "" {
		reasons = append(reasons, "Enhanced matching using your CV content")
	}

	if len(candidate.Skills) > 0 && job.Skills != "" {
		matches := matchingSkills(lowercaseAll(candidate.Skills), splitSkills(job.Skills))
		if len(matches) > 0 {
			if len(matches) > 3 {
				matches = matches[:3]
			}
			reasons = append(reasons, "Skills match: "+strings.Join(matches, ", "))
		}
	}

	if job.MinExperience > 0 && len(candidate.Experience) >= job.MinExperience {
		reasons = append(reasons, "Experience level suitable")
	}

	return strings.Join(reasons, "; ")
}

// cosineSimilarity computes the cosine of two vectors, clamped to [0,1].
func cosineSimilarity(a, b []float64) float64 {
	if len(a) == 0 || len(a) != len(b) {
		return 0
	}
	var dot, normA, normB float64
	for i := range a {
		dot += a[i] * b[i]
		normA += a[i] * a[i]
		normB += b[i] * b[i]
	}
	if normA == 0 || normB == 0 {
		return 0
	}
	similarity := dot / (math.Sqrt(normA) * math.Sqrt(normB))
	if similarity < 0 {
		return 0
	}
	if similarity > 1 {
		return 1
	}
	return similarity
}

var _ Strategy = (*EmbeddingMatcher)(nil)
