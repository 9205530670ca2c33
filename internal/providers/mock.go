package providers

import (
	"context"
	"fmt"
	"sync"
	"sync/atomic"
	"time"
)

const MockClientName = "mock"

// MockClient is an LLMClient for testing.
type MockClient struct {
	// Configurable behavior
	Latency      time.Duration
	ShouldFail   bool
	FailAfter    int   // Fail after N requests (0 = never)
	Err          error // Returned instead of the generic failure when set
	ResponseText string

	// State
	requestCount atomic.Int64
	mu           sync.Mutex
	lastRequest  *ChatRequest
}

// NewMockClient creates a new mock client with sensible defaults.
func NewMockClient() *MockClient {
	return &MockClient{
		Latency:      10 * time.Millisecond,
		ResponseText: "mock response",
	}
}

// Name returns the client identifier.
func (c *MockClient) Name() string {
	return MockClientName
}

// Chat sends a mock chat request.
func (c *MockClient) Chat(ctx context.Context, req *ChatRequest) (*ChatResult, error) {
	start := time.Now()
	count := c.requestCount.Add(1)

	c.mu.Lock()
	c.lastRequest = req
	c.mu.Unlock()

	// Simulate latency
	select {
	case <-time.After(c.Latency):
	case <-ctx.Done():
		return nil, ctx.Err()
	}

	if c.ShouldFail {
		if c.Err != nil {
			return nil, c.Err
		}
		return nil, fmt.Errorf("mock client configured to fail")
	}
	if c.FailAfter > 0 && int(count) > c.FailAfter {
		return nil, fmt.Errorf("mock client failed after %d requests", c.FailAfter)
	}

	// Rough token estimate
	promptTokens := 0
	for _, m := range req.Messages {
		promptTokens += len(m.Content) / 4
	}
	completionTokens := len(c.ResponseText) / 4

	return &ChatResult{
		Content:          c.ResponseText,
		PromptTokens:     promptTokens,
		CompletionTokens: completionTokens,
		TotalTokens:      promptTokens + completionTokens,
		ExecutionTime:    time.Since(start),
		Provider:         MockClientName,
		ModelUsed:        req.Model,
		RequestID:        fmt.Sprintf("mock-%d", count),
	}, nil
}

// RequestCount returns the number of requests made.
func (c *MockClient) RequestCount() int64 {
	return c.requestCount.Load()
}

// LastRequest returns the most recent request, or nil.
func (c *MockClient) LastRequest() *ChatRequest {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.lastRequest
}

// Reset resets the request counter.
func (c *MockClient) Reset() {
	c.requestCount.Store(0)
}

// Verify interface
var _ LLMClient = (*MockClient)(nil)

// MockOCRProvider is an OCRProvider for testing.
type MockOCRProvider struct {
	ProviderName string
	Latency      time.Duration
	ShouldFail   bool
	FailAfter    int
	ResponseText string

	// Gate, when non-nil, blocks each call until it receives or is closed.
	Gate chan struct{}

	requestCount atomic.Int64
	mu           sync.Mutex
	lastRequest  *OCRRequest
}

// NewMockOCRProvider creates a new mock OCR provider.
func NewMockOCRProvider() *MockOCRProvider {
	return &MockOCRProvider{
		ProviderName: "mock-ocr",
		Latency:      10 * time.Millisecond,
		ResponseText: "mock OCR text",
	}
}

// Name returns the provider identifier.
func (p *MockOCRProvider) Name() string {
	return p.ProviderName
}

// ProcessImage returns ResponseText after the configured latency.
func (p *MockOCRProvider) ProcessImage(ctx context.Context, req *OCRRequest) (*OCRResult, error) {
	start := time.Now()
	count := p.requestCount.Add(1)

	p.mu.Lock()
	p.lastRequest = req
	p.mu.Unlock()

	req.report(p.ProviderName, "recognizing", 0.5)

	if p.Gate != nil {
		select {
		case <-p.Gate:
		case <-ctx.Done():
			return &OCRResult{ErrorMessage: ctx.Err().Error()}, ctx.Err()
		}
	}

	// Simulate latency
	select {
	case <-time.After(p.Latency):
	case <-ctx.Done():
		return &OCRResult{ErrorMessage: ctx.Err().Error(), ExecutionTime: time.Since(start)}, ctx.Err()
	}

	if p.ShouldFail {
		err := fmt.Errorf("mock OCR provider configured to fail")
		return &OCRResult{ErrorMessage: err.Error(), ExecutionTime: time.Since(start)}, err
	}
	if p.FailAfter > 0 && int(count) > p.FailAfter {
		err := fmt.Errorf("mock OCR provider failed after %d requests", p.FailAfter)
		return &OCRResult{ErrorMessage: err.Error(), ExecutionTime: time.Since(start)}, err
	}

	req.report(p.ProviderName, "done", 1)

	return &OCRResult{
		Success:       true,
		Text:          p.ResponseText,
		ExecutionTime: time.Since(start),
		Metadata: map[string]any{
			"char_count": len(p.ResponseText),
			"language":   req.Language,
		},
	}, nil
}

// RequestCount returns the number of requests made.
func (p *MockOCRProvider) RequestCount() int64 {
	return p.requestCount.Load()
}

// LastRequest returns the most recent request, or nil.
func (p *MockOCRProvider) LastRequest() *OCRRequest {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.lastRequest
}

// Verify interface
var _ OCRProvider = (*MockOCRProvider)(nil)
