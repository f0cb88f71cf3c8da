package matching

import (
	"context"
	"errors"
	"testing"

	"github.com/cloudwego/eino/components/embedding"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"i-hire-go/internal/storage/models"
)

// mockEmbedder maps exact input texts to fixed vectors.
type mockEmbedder struct {
	vectors map[string][]float64
	err     error
}

func (m *mockEmbedder) EmbedStrings(ctx context.Context, texts []string, opts ...embedding.Option) ([][]float64, error) {
	if m.err != nil {
		return nil, m.err
	}
	out := make([][]float64, len(texts))
	for i, text := range texts {
		if v, ok := m.vectors[text]; ok {
			out[i] = v
		} else {
			out[i] = []float64{0, 0, 1}
		}
	}
	return out, nil
}

func TestEmbeddingMatcherRanksBySimilarity(t *testing.T) {
	candidate := reactCandidate()
	jobs := []models.JobPosting{
		{JobID: "close", JobTitle: "Frontend"},
		{JobID: "far", JobTitle: "Warehouse"},
	}

	embedder := &mockEmbedder{vectors: map[string][]float64{
		candidateText(candidate): {1, 0, 0},
		jobText(&jobs[0]):        {0.9, 0.1, 0},
		jobText(&jobs[1]):        {0, 1, 0},
	}}

	m := NewEmbeddingMatcher(embedder, nil, 0)
	results, err := m.Recommend(context.Background(), candidate, jobs, 10)
	require.NoError(t, err)
	require.Len(t, results, 2)

	assert.Equal(t, "close", results[0].JobID)
	assert.Greater(t, results[0].MatchScore, 90)
	assert.Equal(t, 0, results[1].MatchScore)
	assert.Contains(t, results[0].Reason, "semantic match")
}

func TestEmbeddingMatcherPropagatesErrors(t *testing.T) {
	m := NewEmbeddingMatcher(&mockEmbedder{err: errors.New("model unavailable")}, nil, 0)
	_, err := m.Recommend(context.Background(), reactCandidate(), []models.JobPosting{{JobID: "j"}}, 10)
	require.Error(t, err)
}

func TestJobTextForFallsBackWithoutCache(t *testing.T) {
	m := NewEmbeddingMatcher(&mockEmbedder{}, nil, 0)
	job := &models.JobPosting{JobID: "j", JobTitle: "Backend Engineer", Skills: "Go, SQL"}

	// Without Redis the blob is rebuilt on every call and stays deterministic.
	text := m.jobTextFor(context.Background(), job)
	assert.Equal(t, jobText(job), text)
	assert.Equal(t, text, m.jobTextFor(context.Background(), job))
}

func TestCosineSimilarity(t *testing.T) {
	assert.InDelta(t, 1.0, cosineSimilarity([]float64{1, 2, 3}, []float64{1, 2, 3}), 1e-9)
	assert.Equal(t, 0.0, cosineSimilarity([]float64{1, 0}, []float64{0, 1}))
	// Negative similarity clamps to zero.
	assert.Equal(t, 0.0, cosineSimilarity([]float64{1, 0}, []float64{-1, 0}))
	// Mismatched lengths are not comparable.
	assert.Equal(t, 0.0, cosineSimilarity([]float64{1}, []float64{1, 2}))
}

func TestMatchReasonBuckets(t *testing.T) {
	candidate := reactCandidate()
	job := &models.JobPosting{Skills: "React", MinExperience: 1}

	assert.Contains(t, matchReason(0.85, candidate, job), "Excellent semantic match")
	assert.Contains(t, matchReason(0.65, candidate, job), "Strong semantic match")
	assert.Contains(t, matchReason(0.45, candidate, job), "Good semantic alignment")
	assert.Contains(t, matchReason(0.1, candidate, job), "Moderate semantic match")

	full := matchReason(0.9, candidate, job)
	assert.Contains(t, full, "Skills match: react")
	assert.Contains(t, full, "Experience level suitable")
}
