package providers

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"
)

const (
	ChatCompletionsName    = "chat-completions"
	ChatCompletionsBaseURL = "https://api.openai.com/v1"
	ChatCompletionsModel   = "gpt-4"
)

// ChatCompletionsConfig holds configuration for a generic
// OpenAI-compatible chat completions endpoint.
type ChatCompletionsConfig struct {
	APIKey       string
	BaseURL      string
	DefaultModel string
	Timeout      time.Duration
	HTTPClient   *http.Client
}

// ChatCompletionsClient implements LLMClient against any service that
// speaks POST {base}/chat/completions with bearer authentication.
// It makes exactly one request per call: no retries, no fallback.
type ChatCompletionsClient struct {
	apiKey       string
	baseURL      string
	defaultModel string
	client       *http.Client
}

// NewChatCompletionsClient creates a new chat completions client.
func NewChatCompletionsClient(cfg ChatCompletionsConfig) *ChatCompletionsClient {
	if cfg.BaseURL == "" {
		cfg.BaseURL = ChatCompletionsBaseURL
	}
	if cfg.DefaultModel == "" {
		cfg.DefaultModel = ChatCompletionsModel
	}
	if cfg.Timeout == 0 {
		cfg.Timeout = 60 * time.Second
	}
	hc := cfg.HTTPClient
	if hc == nil {
		hc = &http.Client{Timeout: cfg.Timeout}
	}

	return &ChatCompletionsClient{
		apiKey:       cfg.APIKey,
		baseURL:      strings.TrimRight(cfg.BaseURL, "/"),
		defaultModel: cfg.DefaultModel,
		client:       hc,
	}
}

// Name returns the client identifier.
func (c *ChatCompletionsClient) Name() string {
	return ChatCompletionsName
}

// Chat sends a chat completion request.
func (c *ChatCompletionsClient) Chat(ctx context.Context, req *ChatRequest) (*ChatResult, error) {
	start := time.Now()

	model := req.Model
	if model == "" {
		model = c.defaultModel
	}

	body := chatCompletionsRequest{
		Model:       model,
		Messages:    make([]chatCompletionsMessage, len(req.Messages)),
		MaxTokens:   req.MaxTokens,
		Temperature: req.Temperature,
	}
	for i, m := range req.Messages {
		body.Messages[i] = chatCompletionsMessage{Role: m.Role, Content: m.Content}
	}

	respBody, err := c.doRequest(ctx, "/chat/completions", body)
	if err != nil {
		return nil, err
	}

	var resp chatCompletionsResponse
	if err := json.Unmarshal(respBody, &resp); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrMalformedResponse, err)
	}
	if len(resp.Choices) == 0 {
		return nil, fmt.Errorf("%w: no choices in response", ErrMalformedResponse)
	}
	msg := resp.Choices[0].Message
	if msg == nil || msg.Content == nil {
		return nil, fmt.Errorf("%w: first choice has no message content", ErrMalformedResponse)
	}

	result := &ChatResult{
		Content:       *msg.Content,
		ExecutionTime: time.Since(start),
		Provider:      ChatCompletionsName,
		ModelUsed:     resp.Model,
		RequestID:     resp.ID,
	}
	if result.ModelUsed == "" {
		result.ModelUsed = model
	}
	if resp.Usage != nil {
		result.PromptTokens = resp.Usage.PromptTokens
		result.CompletionTokens = resp.Usage.CompletionTokens
		result.TotalTokens = resp.Usage.TotalTokens
	}
	return result, nil
}

// doRequest posts body as JSON and returns the raw 2xx response body.
// Non-2xx statuses come back as *StatusError.
func (c *ChatCompletionsClient) doRequest(ctx context.Context, path string, body any) ([]byte, error) {
	bodyBytes, err := json.Marshal(body)
	if err != nil {
		return nil, fmt.Errorf("failed to marshal request: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+path, bytes.NewReader(bodyBytes))
	if err != nil {
		return nil, fmt.Errorf("failed to create request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	if c.apiKey != "" {
		req.Header.Set("Authorization", "Bearer "+c.apiKey)
	}

	resp, err := c.client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("request failed: %w", err)
	}
	defer resp.Body.Close()

	respBody, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("failed to read response: %w", err)
	}

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return nil, &StatusError{
			Provider:   ChatCompletionsName,
			StatusCode: resp.StatusCode,
			Body:       truncate(string(respBody), 512),
		}
	}
	return respBody, nil
}

func truncate(s string, n int) string {
	if len(s) <= n {
		return s
	}
	return s[:n] + "..."
}

// Chat completions wire types

type chatCompletionsRequest struct {
	Model       string                   `json:"model"`
	Messages    []chatCompletionsMessage `json:"messages"`
	MaxTokens   int                      `json:"max_tokens,omitempty"`
	Temperature float64                  `json:"temperature,omitempty"`
}

type chatCompletionsMessage struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}

// Pointers distinguish an absent message or content from an empty one.
type chatCompletionsResponse struct {
	ID      string `json:"id"`
	Model   string `json:"model"`
	Choices []struct {
		Message *struct {
			Role    string  `json:"role"`
			Content *string `json:"content"`
		} `json:"message"`
		FinishReason string `json:"finish_reason"`
	} `json:"choices"`
	Usage *struct {
		PromptTokens     int `json:"prompt_tokens"`
		CompletionTokens int `json:"completion_tokens"`
		TotalTokens      int `json:"total_tokens"`
	} `json:"usage"`
}

// Verify interface
var _ LLMClient = (*ChatCompletionsClient)(nil)
