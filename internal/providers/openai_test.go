package providers

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync/atomic"
	"testing"
)

func TestOpenAIClient_Chat(t *testing.T) {
	t.Run("maps request and response", func(t *testing.T) {
		server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			if !strings.HasSuffix(r.URL.Path, "/chat/completions") {
				t.Errorf("unexpected path: %s", r.URL.Path)
			}
			if auth := r.Header.Get("Authorization"); auth != "Bearer sk-openai" {
				t.Errorf("unexpected authorization: %s", auth)
			}

			var body map[string]any
			if err := json.NewDecoder(r.Body).Decode(&body); err != nil {
				t.Errorf("decode: %v", err)
			}
			if body["model"] != "gpt-4" {
				t.Errorf("model = %v", body["model"])
			}
			if body["max_tokens"] != float64(150) {
				t.Errorf("max_tokens = %v", body["max_tokens"])
			}
			msgs, _ := body["messages"].([]any)
			if len(msgs) != 2 {
				t.Errorf("messages = %v", body["messages"])
			}

			w.Header().Set("Content-Type", "application/json")
			w.Write([]byte(`{"id":"chatcmpl-9","object":"chat.completion","created":1,"model":"gpt-4","choices":[{"index":0,"finish_reason":"stop","message":{"role":"assistant","content":"Ibuprofen 400mg."}}],"usage":{"prompt_tokens":10,"completion_tokens":4,"total_tokens":14}}`))
		}))
		defer server.Close()

		client := NewOpenAIClient(OpenAIConfig{APIKey: "sk-openai", BaseURL: server.URL})

		result, err := client.Chat(context.Background(), &ChatRequest{
			Messages: []Message{
				{Role: "system", Content: "sys"},
				{Role: "user", Content: "usr"},
			},
			MaxTokens: 150,
		})
		if err != nil {
			t.Fatalf("Chat() error = %v", err)
		}
		if result.Content != "Ibuprofen 400mg." {
			t.Errorf("Content = %q", result.Content)
		}
		if result.Provider != OpenAIName || result.RequestID != "chatcmpl-9" {
			t.Errorf("Provider = %q, RequestID = %q", result.Provider, result.RequestID)
		}
		if result.TotalTokens != 14 {
			t.Errorf("TotalTokens = %d", result.TotalTokens)
		}
	})

	t.Run("server error maps to StatusError without retry", func(t *testing.T) {
		var calls atomic.Int32
		server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			calls.Add(1)
			w.Header().Set("Content-Type", "application/json")
			w.WriteHeader(http.StatusInternalServerError)
			w.Write([]byte(`{"error":{"message":"The server had an error","type":"server_error"}}`))
		}))
		defer server.Close()

		client := NewOpenAIClient(OpenAIConfig{APIKey: "sk-openai", BaseURL: server.URL})
		_, err := client.Chat(context.Background(), &ChatRequest{Messages: []Message{{Role: "user", Content: "x"}}})

		var statusErr *StatusError
		if !errors.As(err, &statusErr) {
			t.Fatalf("err = %v, want *StatusError", err)
		}
		if statusErr.StatusCode != http.StatusInternalServerError {
			t.Errorf("StatusCode = %d", statusErr.StatusCode)
		}
		if calls.Load() != 1 {
			t.Errorf("calls = %d, want 1", calls.Load())
		}
	})

	t.Run("empty choices is malformed", func(t *testing.T) {
		server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			w.Header().Set("Content-Type", "application/json")
			w.Write([]byte(`{"id":"x","object":"chat.completion","model":"gpt-4","choices":[]}`))
		}))
		defer server.Close()

		client := NewOpenAIClient(OpenAIConfig{APIKey: "sk-openai", BaseURL: server.URL})
		_, err := client.Chat(context.Background(), &ChatRequest{Messages: []Message{{Role: "user", Content: "x"}}})
		if !errors.Is(err, ErrMalformedResponse) {
			t.Errorf("err = %v, want ErrMalformedResponse", err)
		}
	})
}

func TestOpenAIClient_Defaults(t *testing.T) {
	client := NewOpenAIClient(OpenAIConfig{APIKey: "k"})
	if client.Model() != "gpt-4" {
		t.Errorf("Model() = %q", client.Model())
	}
	if client.Name() != OpenAIName {
		t.Errorf("Name() = %q", client.Name())
	}
}
