package llm

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"time"

	"i-hire-go/internal/config"
	"i-hire-go/internal/logger"

	"github.com/cloudwego/eino/components/embedding"
)

// OpenAIEmbedder implements embedding.Embedder against an OpenAI-compatible
// embeddings endpoint.
type OpenAIEmbedder struct {
	apiKey     string
	model      string
	dimensions int
	httpClient *http.Client
	baseURL    string
}

// NewOpenAIEmbedder creates a new embedder client.
func NewOpenAIEmbedder(apiKey string, embeddingCfg config.EmbeddingConfig) (*OpenAIEmbedder, error) {
	if apiKey == "" {
		return nil, fmt.Errorf("API key is required")
	}

	model := embeddingCfg.Model
	if model == "" {
		model = "text-embedding-3-small"
	}
	baseURL := embeddingCfg.BaseURL
	if baseURL == "" {
		baseURL = "https://api.openai.com/v1/embeddings"
	}

	return &OpenAIEmbedder{
		apiKey:     apiKey,
		model:      model,
		dimensions: embeddingCfg.Dimensions,
		httpClient: &http.Client{Timeout: 60 * time.Second},
		baseURL:    baseURL,
	}, nil
}

// GetDimensions returns the configured embedding dimensionality.
func (e *OpenAIEmbedder) GetDimensions() int {
	return e.dimensions
}

type embeddingRequest struct {
	Input      interface{} `json:"input"` // string or []string
	Model      string      `json:"model"`
	Dimensions int         `json:"dimensions,omitempty"`
}

type embeddingDataEntry struct {
	Object    string    `json:"object"`
	Embedding []float64 `json:"embedding"`
	Index     int       `json:"index"`
}

type embeddingUsage struct {
	PromptTokens int `json:"prompt_tokens"`
	TotalTokens  int `json:"total_tokens"`
}

type embeddingAPIError struct {
	Message string `json:"message"`
	Type    string `json:"type"`
	Param   string `json:"param"`
	Code    string `json:"code"`
}

type embeddingResponse struct {
	Object string               `json:"object"`
	Data   []embeddingDataEntry `json:"data"`
	Model  string               `json:"model"`
	Usage  embeddingUsage       `json:"usage"`
	Error  *embeddingAPIError   `json:"error,omitempty"`
}

// EmbedStrings implements embedding.Embedder.
func (e *OpenAIEmbedder) EmbedStrings(ctx context.Context, texts []string, opts ...embedding.Option) ([][]float64, error) {
	options := &embedding.Options{}
	embedding.GetCommonOptions(options, opts...)

	effectiveModel := e.model
	if options.Model != nil && *options.Model != "" {
		effectiveModel = *options.Model
	}

	if len(texts) == 0 {
		return [][]float64{}, nil
	}

	var inputBody interface{}
	if len(texts) == 1 {
		inputBody = texts[0]
	} else {
		inputBody = texts
	}

	reqBody := embeddingRequest{
		Input: inputBody,
		Model: effectiveModel,
	}
	if e.dimensions > 0 {
		reqBody.Dimensions = e.dimensions
	}

	jsonData, err := json.Marshal(reqBody)
	if err != nil {
		return nil, fmt.Errorf("marshaling embedding request: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, e.baseURL, bytes.NewBuffer(jsonData))
	if err != nil {
		return nil, fmt.Errorf("creating HTTP request: %w", err)
	}

	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Authorization", "Bearer "+e.apiKey)

	resp, err := e.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("sending HTTP request: %w", err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("reading response body: %w", err)
	}

	if resp.StatusCode != http.StatusOK {
		var apiError embeddingAPIError
		if json.Unmarshal(body, &apiError) == nil && apiError.Message != "" {
			return nil, fmt.Errorf("embedding API failed, status %d, type %s: %s", resp.StatusCode, apiError.Type, apiError.Message)
		}
		return nil, fmt.Errorf("embedding API failed, status %d: %s", resp.StatusCode, string(body))
	}

	var parsedResp embeddingResponse
	if err := json.Unmarshal(body, &parsedResp); err != nil {
		return nil, fmt.Errorf("unmarshaling embedding response: %w", err)
	}

	if parsedResp.Error != nil && parsedResp.Error.Message != "" {
		return nil, fmt.Errorf("embedding API error: type=%s, message=%s", parsedResp.Error.Type, parsedResp.Error.Message)
	}

	outputEmbeddings := make([][]float64, len(parsedResp.Data))
	for i, dataEntry := range parsedResp.Data {
		outputEmbeddings[i] = dataEntry.Embedding
	}

	logger.Debug().
		Int("texts", len(texts)).
		Int("prompt_tokens", parsedResp.Usage.PromptTokens).
		Msg("embedded texts")

	return outputEmbeddings, nil
}

var _ embedding.Embedder = (*OpenAIEmbedder)(nil)
