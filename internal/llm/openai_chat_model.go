package llm

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"i-hire-go/internal/logger"

	"github.com/cloudwego/eino/components/model"
	"github.com/cloudwego/eino/schema"
)

const (
	defaultChatCompletionsURL = "https://api.openai.com/v1/chat/completions"
	defaultModelName          = "gpt-4o-mini"
)

// OpenAITool mirrors the wire format of a function tool definition.
type OpenAITool struct {
	Type     string         `json:"type"` // always "function"
	Function OpenAIFunction `json:"function"`
}

// OpenAIFunction describes one callable function.
type OpenAIFunction struct {
	Name        string          `json:"name"`
	Description string          `json:"description"`
	Parameters  json.RawMessage `json:"parameters,omitempty"`
}

// OpenAIChatModel talks to an OpenAI-compatible chat completions endpoint
// and implements eino's ToolCallingChatModel.
type OpenAIChatModel struct {
	apiKey      string
	modelName   string
	apiURL      string
	temperature *float64
	maxTokens   int
	httpClient  *http.Client
	boundTools  []OpenAITool
}

// Option configures an OpenAIChatModel.
type Option func(*OpenAIChatModel)

// WithTemperature sets the sampling temperature.
func WithTemperature(t float64) Option {
	return func(m *OpenAIChatModel) {
		m.temperature = &t
	}
}

// WithMaxTokens caps the completion length.
func WithMaxTokens(n int) Option {
	return func(m *OpenAIChatModel) {
		m.maxTokens = n
	}
}

// WithHTTPTimeout sets the HTTP client timeout.
func WithHTTPTimeout(d time.Duration) Option {
	return func(m *OpenAIChatModel) {
		m.httpClient.Timeout = d
	}
}

// NewOpenAIChatModel creates a chat model client.
func NewOpenAIChatModel(apiKey, modelName, apiURL string, opts ...Option) (*OpenAIChatModel, error) {
	if strings.TrimSpace(apiKey) == "" {
		return nil, fmt.Errorf("API key is required")
	}

	mn := modelName
	if strings.TrimSpace(mn) == "" {
		mn = defaultModelName
	}

	url := apiURL
	if strings.TrimSpace(url) == "" {
		url = defaultChatCompletionsURL
	}

	m := &OpenAIChatModel{
		apiKey:     apiKey,
		modelName:  mn,
		apiURL:     url,
		httpClient: &http.Client{Timeout: 120 * time.Second},
		boundTools: make([]OpenAITool, 0),
	}
	for _, opt := range opts {
		opt(m)
	}

	logger.Info().Str("api_url", url).Str("model", mn).Msg("LLM client initialized")
	return m, nil
}

type chatCompletionRequest struct {
	Model       string            `json:"model"`
	Messages    []*schema.Message `json:"messages"`
	Tools       []OpenAITool      `json:"tools,omitempty"`
	Temperature *float64          `json:"temperature,omitempty"`
	MaxTokens   int               `json:"max_tokens,omitempty"`
}

type apiMessage struct {
	Role      string        `json:"role"`
	Content   *string       `json:"content"`
	ToolCalls []apiToolCall `json:"tool_calls,omitempty"`
}

type apiToolCall struct {
	ID       string `json:"id"`
	Type     string `json:"type"`
	Function struct {
		Name      string `json:"name"`
		Arguments string `json:"arguments"`
	} `json:"function"`
}

type chatChoice struct {
	Index        int        `json:"index"`
	Message      apiMessage `json:"message"`
	FinishReason string     `json:"finish_reason"`
}

type chatCompletionResponse struct {
	ID      string       `json:"id"`
	Object  string       `json:"object"`
	Created int64        `json:"created"`
	Model   string       `json:"model"`
	Choices []chatChoice `json:"choices"`
}

// Generate implements model.ChatModel.
func (m *OpenAIChatModel) Generate(ctx context.Context, messages []*schema.Message, options ...model.Option) (*schema.Message, error) {
	reqPayload := chatCompletionRequest{
		Model:       m.modelName,
		Messages:    messages,
		Temperature: m.temperature,
		MaxTokens:   m.maxTokens,
	}

	if len(m.boundTools) > 0 {
		reqPayload.Tools = m.boundTools
	}

	jsonData, err := json.Marshal(reqPayload)
	if err != nil {
		return nil, fmt.Errorf("marshaling request: %w", err)
	}

	httpReq, err := http.NewRequestWithContext(ctx, http.MethodPost, m.apiURL, bytes.NewBuffer(jsonData))
	if err != nil {
		return nil, fmt.Errorf("creating HTTP request: %w", err)
	}

	httpReq.Header.Set("Authorization", "Bearer "+m.apiKey)
	httpReq.Header.Set("Content-Type", "application/json")

	httpResp, err := m.httpClient.Do(httpReq)
	if err != nil {
		return nil, fmt.Errorf("sending HTTP request: %w", err)
	}
	defer httpResp.Body.Close()

	bodyBytes, err := io.ReadAll(httpResp.Body)
	if err != nil {
		return nil, fmt.Errorf("reading response body: %w", err)
	}

	if httpResp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("API request failed with status %s: %s", httpResp.Status, string(bodyBytes))
	}

	var resp chatCompletionResponse
	if err := json.Unmarshal(bodyBytes, &resp); err != nil {
		return nil, fmt.Errorf("unmarshaling API response: %w", err)
	}

	if len(resp.Choices) == 0 {
		return nil, fmt.Errorf("empty choices in API response")
	}

	choice := resp.Choices[0].Message
	responseContent := ""
	if choice.Content != nil {
		responseContent = *choice.Content
	}

	result := &schema.Message{
		Role:    schema.RoleType(choice.Role),
		Content: responseContent,
	}

	if len(choice.ToolCalls) > 0 {
		result.ToolCalls = make([]schema.ToolCall, len(choice.ToolCalls))
		for i, tc := range choice.ToolCalls {
			result.ToolCalls[i] = schema.ToolCall{
				ID: tc.ID,
				Function: schema.FunctionCall{
					Name:      tc.Function.Name,
					Arguments: tc.Function.Arguments,
				},
			}
		}
	}

	if result.Role == "" {
		result.Role = schema.Assistant
	}

	return result, nil
}

// Stream implements model.ChatModel. Streaming is not used by this service;
// callers should use Generate.
func (m *OpenAIChatModel) Stream(ctx context.Context, messages []*schema.Message, options ...model.Option) (*schema.StreamReader[*schema.Message], error) {
	return nil, fmt.Errorf("streaming is not supported by OpenAIChatModel")
}

// BindTools stores the tool definitions sent with every request.
func (m *OpenAIChatModel) BindTools(tools []*schema.ToolInfo) error {
	m.boundTools = make([]OpenAITool, 0, len(tools))
	for _, toolInfo := range tools {
		if toolInfo == nil {
			continue
		}
		m.boundTools = append(m.boundTools, OpenAITool{
			Type: "function",
			Function: OpenAIFunction{
				Name:        toolInfo.Name,
				Description: toolInfo.Desc,
			},
		})
	}
	return nil
}

// WithTools implements model.ToolCallingChatModel.
func (m *OpenAIChatModel) WithTools(tools []*schema.ToolInfo) (model.ToolCallingChatModel, error) {
	if err := m.BindTools(tools); err != nil {
		return nil, err
	}
	return m, nil
}

var _ model.ChatModel = (*OpenAIChatModel)(nil)
var _ model.ToolCallingChatModel = (*OpenAIChatModel)(nil)
