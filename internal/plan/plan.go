// Package plan turns a clinical context into a treatment plan suggestion by
// asking an inference service, or the local suggestion table when no
// service is configured.
package plan

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/jackzampolin/careplan/internal/clinical"
	"github.com/jackzampolin/careplan/internal/providers"
)

// Defaults for the inference request.
const (
	DefaultModel     = "gpt-4"
	DefaultMaxTokens = 150
)

// Source records where a plan came from.
type Source string

const (
	SourceInference Source = "inference"
	SourceLocal     Source = "local"
)

// Result is a generated treatment plan.
type Result struct {
	Text     string `json:"text"`
	Source   Source `json:"source"`
	Provider string `json:"provider,omitempty"`
	Model    string `json:"model,omitempty"`
}

// Options configures an Orchestrator.
type Options struct {
	Model       string
	MaxTokens   int
	Temperature float64
	Logger      *slog.Logger
}

// Orchestrator builds the prompt, sends one completion request and
// classifies the outcome. It never retries.
type Orchestrator struct {
	client    providers.LLMClient
	model     string
	maxTokens int
	temp      float64
	logger    *slog.Logger
}

// New creates an orchestrator around client.
func New(client providers.LLMClient, opts Options) (*Orchestrator, error) {
	if client == nil {
		return nil, errors.New("plan: LLM client is required")
	}
	if opts.Model == "" {
		opts.Model = DefaultModel
	}
	if opts.MaxTokens <= 0 {
		opts.MaxTokens = DefaultMaxTokens
	}
	if opts.Logger == nil {
		opts.Logger = slog.Default()
	}
	return &Orchestrator{
		client:    client,
		model:     opts.Model,
		maxTokens: opts.MaxTokens,
		temp:      opts.Temperature,
		logger:    opts.Logger,
	}, nil
}

// Provider returns the name of the underlying client.
func (o *Orchestrator) Provider() string {
	return o.client.Name()
}

// Generate validates c, sends the request and returns the trimmed
// completion. Validation happens before any network I/O.
func (o *Orchestrator) Generate(ctx context.Context, c clinical.Context) (*Result, error) {
	if err := c.Validate(); err != nil {
		return nil, err
	}

	userPrompt, err := UserPrompt(c)
	if err != nil {
		return nil, clinical.NewValidationError(fmt.Sprintf("Could not build the request: %v", err))
	}

	req := &providers.ChatRequest{
		Messages: []providers.Message{
			{Role: "system", Content: SystemPrompt()},
			{Role: "user", Content: userPrompt},
		},
		Model:       o.model,
		MaxTokens:   o.maxTokens,
		Temperature: o.temp,
		RequestID:   uuid.New().String(),
	}

	logger := o.logger.With("provider", o.client.Name(), "model", o.model, "request_id", req.RequestID)
	start := time.Now()

	result, err := o.client.Chat(ctx, req)
	if err != nil {
		if errors.Is(err, providers.ErrMalformedResponse) {
			logger.Warn("inference response malformed", "error", err)
			return nil, clinical.NewResponseShapeError(err)
		}
		var statusErr *providers.StatusError
		if errors.As(err, &statusErr) {
			logger.Warn("inference request rejected", "status", statusErr.StatusCode)
		} else {
			logger.Warn("inference request failed", "error", err)
		}
		return nil, clinical.NewTransportError(err)
	}
	if result == nil {
		return nil, clinical.NewResponseShapeError(errors.New("no result returned"))
	}

	text := strings.TrimSpace(result.Content)
	if text == "" {
		logger.Warn("inference returned empty content")
		return nil, clinical.NewResponseShapeError(fmt.Errorf("%w: empty completion", providers.ErrMalformedResponse))
	}

	logger.Info("plan generated",
		"duration", time.Since(start),
		"prompt_tokens", result.PromptTokens,
		"completion_tokens", result.CompletionTokens,
	)

	model := result.ModelUsed
	if model == "" {
		model = o.model
	}
	return &Result{
		Text:     text,
		Source:   SourceInference,
		Provider: o.client.Name(),
		Model:    model,
	}, nil
}
