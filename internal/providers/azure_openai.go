package providers

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"time"

	goopenai "github.com/sashabaranov/go-openai"
)

const AzureOpenAIName = "azure-openai"

// AzureOpenAIConfig holds configuration for an Azure OpenAI deployment.
type AzureOpenAIConfig struct {
	APIKey     string
	BaseURL    string // https://<resource>.openai.azure.com
	Deployment string // deployment name, sent as the model
	APIVersion string // optional; library default when empty
	Timeout    time.Duration
	HTTPClient *http.Client
}

// AzureOpenAIClient implements LLMClient against an Azure OpenAI deployment.
type AzureOpenAIClient struct {
	apiKey     string
	baseURL    string
	deployment string
	client     *goopenai.Client
}

// NewAzureOpenAIClient creates a new Azure OpenAI client.
func NewAzureOpenAIClient(cfg AzureOpenAIConfig) *AzureOpenAIClient {
	if cfg.Timeout == 0 {
		cfg.Timeout = 60 * time.Second
	}

	clientCfg := goopenai.DefaultAzureConfig(cfg.APIKey, cfg.BaseURL)
	if cfg.APIVersion != "" {
		clientCfg.APIVersion = cfg.APIVersion
	}
	if cfg.HTTPClient != nil {
		clientCfg.HTTPClient = cfg.HTTPClient
	} else {
		clientCfg.HTTPClient = &http.Client{Timeout: cfg.Timeout}
	}

	return &AzureOpenAIClient{
		apiKey:     cfg.APIKey,
		baseURL:    cfg.BaseURL,
		deployment: cfg.Deployment,
		client:     goopenai.NewClientWithConfig(clientCfg),
	}
}

// Name returns the client identifier.
func (c *AzureOpenAIClient) Name() string {
	return AzureOpenAIName
}

// Chat sends a chat completion request to the configured deployment.
func (c *AzureOpenAIClient) Chat(ctx context.Context, req *ChatRequest) (*ChatResult, error) {
	start := time.Now()

	model := req.Model
	if model == "" {
		model = c.deployment
	}

	msgs := make([]goopenai.ChatCompletionMessage, 0, len(req.Messages))
	for _, m := range req.Messages {
		role := m.Role
		if role != goopenai.ChatMessageRoleSystem && role != goopenai.ChatMessageRoleAssistant {
			role = goopenai.ChatMessageRoleUser
		}
		msgs = append(msgs, goopenai.ChatCompletionMessage{Role: role, Content: m.Content})
	}

	resp, err := c.client.CreateChatCompletion(ctx, goopenai.ChatCompletionRequest{
		Model:       model,
		Messages:    msgs,
		MaxTokens:   req.MaxTokens,
		Temperature: float32(req.Temperature),
	})
	if err != nil {
		return nil, mapAzureError(err)
	}
	if len(resp.Choices) == 0 {
		return nil, fmt.Errorf("%w: no choices in response", ErrMalformedResponse)
	}
	content := resp.Choices[0].Message.Content
	if content == "" {
		return nil, fmt.Errorf("%w: first choice has no message content", ErrMalformedResponse)
	}

	return &ChatResult{
		Content:          content,
		PromptTokens:     resp.Usage.PromptTokens,
		CompletionTokens: resp.Usage.CompletionTokens,
		TotalTokens:      resp.Usage.TotalTokens,
		ExecutionTime:    time.Since(start),
		Provider:         AzureOpenAIName,
		ModelUsed:        model,
		RequestID:        resp.ID,
	}, nil
}

func mapAzureError(err error) error {
	var apiErr *goopenai.APIError
	if errors.As(err, &apiErr) {
		return &StatusError{Provider: AzureOpenAIName, StatusCode: apiErr.HTTPStatusCode, Body: apiErr.Message}
	}
	var reqErr *goopenai.RequestError
	if errors.As(err, &reqErr) {
		body := ""
		if reqErr.Err != nil {
			body = reqErr.Err.Error()
		}
		return &StatusError{Provider: AzureOpenAIName, StatusCode: reqErr.HTTPStatusCode, Body: body}
	}
	var syntaxErr *json.SyntaxError
	var typeErr *json.UnmarshalTypeError
	if errors.As(err, &syntaxErr) || errors.As(err, &typeErr) {
		return fmt.Errorf("%w: %v", ErrMalformedResponse, err)
	}
	return err
}

// Verify interface
var _ LLMClient = (*AzureOpenAIClient)(nil)
