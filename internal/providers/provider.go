package providers

import (
	"context"
	"errors"
	"fmt"
	"time"
)

// LLMClient sends chat completion requests to an inference service.
type LLMClient interface {
	// Chat sends a chat completion request.
	Chat(ctx context.Context, req *ChatRequest) (*ChatResult, error)

	// Name returns the client identifier (e.g., "openai").
	Name() string
}

// OCRProvider handles image-to-text extraction.
// Separate from LLM because it takes binary input and reports progress
// while the recognition runs.
type OCRProvider interface {
	// Name returns the provider identifier (e.g., "tesseract").
	Name() string

	// ProcessImage extracts text from a single image.
	ProcessImage(ctx context.Context, req *OCRRequest) (*OCRResult, error)
}

// ErrMalformedResponse is returned when a service answered 2xx but the body
// is missing the expected structure (no choices, no message, no content).
var ErrMalformedResponse = errors.New("malformed response")

// StatusError is returned when a service answered with a non-2xx status.
type StatusError struct {
	Provider   string
	StatusCode int
	Body       string
}

func (e *StatusError) Error() string {
	if e.Body == "" {
		return fmt.Sprintf("%s error (status %d)", e.Provider, e.StatusCode)
	}
	return fmt.Sprintf("%s error (status %d): %s", e.Provider, e.StatusCode, e.Body)
}

// Message represents a chat message.
type Message struct {
	Role    string `json:"role"` // "system", "user", "assistant"
	Content string `json:"content"`
}

// ChatRequest is a request to an LLM.
type ChatRequest struct {
	// Required
	Messages []Message `json:"messages"`

	// Model selection (uses client default if empty)
	Model string `json:"model,omitempty"`

	// Generation parameters
	Temperature float64 `json:"temperature,omitempty"`
	MaxTokens   int     `json:"max_tokens,omitempty"`

	// Request tracking
	RequestID string `json:"-"`
}

// ChatResult is the complete response from an LLM call.
type ChatResult struct {
	// Response content, exactly as returned by the service
	Content string `json:"content"`

	// Token counts
	PromptTokens     int `json:"prompt_tokens"`
	CompletionTokens int `json:"completion_tokens"`
	TotalTokens      int `json:"total_tokens"`

	ExecutionTime time.Duration `json:"execution_time"`

	// Provider info
	Provider  string `json:"provider"`
	ModelUsed string `json:"model_used"`

	// Request tracking
	RequestID string `json:"request_id"`
}

// OCRRequest is a single image handed to an OCR provider.
type OCRRequest struct {
	Image    []byte
	MIMEType string // "image/jpeg" or "image/png"
	Language string // recognition language hint, e.g. "eng"

	// Progress, when set, receives advisory progress events. It is called
	// from the goroutine running ProcessImage.
	Progress func(OCRProgress)
}

// OCRProgress is an advisory progress event.
type OCRProgress struct {
	Provider string  `json:"provider"`
	Stage    string  `json:"stage"`
	Fraction float64 `json:"fraction"`
}

func (r *OCRRequest) report(provider, stage string, fraction float64) {
	if r.Progress != nil {
		r.Progress(OCRProgress{Provider: provider, Stage: stage, Fraction: fraction})
	}
}

// OCRResult is the response from an OCR provider.
type OCRResult struct {
	// Success/content
	Success bool   `json:"success"`
	Text    string `json:"text"`

	// Metadata from provider (dimensions, confidence, etc.)
	Metadata map[string]any `json:"metadata,omitempty"`

	ExecutionTime time.Duration `json:"execution_time"`

	// Error info
	ErrorMessage string `json:"error_message,omitempty"`
}
