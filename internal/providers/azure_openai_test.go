package providers

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
)

func TestAzureOpenAIClient_Chat(t *testing.T) {
	t.Run("posts to the deployment", func(t *testing.T) {
		server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			if !strings.Contains(r.URL.Path, "/openai/deployments/careplan-gpt4/chat/completions") {
				t.Errorf("unexpected path: %s", r.URL.Path)
			}
			if r.URL.Query().Get("api-version") == "" {
				t.Error("missing api-version")
			}
			if key := r.Header.Get("api-key"); key != "azure-key" {
				t.Errorf("api-key = %q", key)
			}
			w.Header().Set("Content-Type", "application/json")
			w.Write([]byte(`{"id":"az-1","object":"chat.completion","model":"gpt-4","choices":[{"index":0,"message":{"role":"assistant","content":"Hydrate."}}],"usage":{"prompt_tokens":3,"completion_tokens":1,"total_tokens":4}}`))
		}))
		defer server.Close()

		client := NewAzureOpenAIClient(AzureOpenAIConfig{
			APIKey:     "azure-key",
			BaseURL:    server.URL,
			Deployment: "careplan-gpt4",
		})

		result, err := client.Chat(context.Background(), &ChatRequest{
			Messages:  []Message{{Role: "user", Content: "x"}},
			MaxTokens: 150,
		})
		if err != nil {
			t.Fatalf("Chat() error = %v", err)
		}
		if result.Content != "Hydrate." {
			t.Errorf("Content = %q", result.Content)
		}
		if result.Provider != AzureOpenAIName {
			t.Errorf("Provider = %q", result.Provider)
		}
	})

	t.Run("api error maps to StatusError", func(t *testing.T) {
		server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			w.Header().Set("Content-Type", "application/json")
			w.WriteHeader(http.StatusTooManyRequests)
			w.Write([]byte(`{"error":{"message":"Rate limit reached","type":"requests","code":"429"}}`))
		}))
		defer server.Close()

		client := NewAzureOpenAIClient(AzureOpenAIConfig{APIKey: "k", BaseURL: server.URL, Deployment: "d"})
		_, err := client.Chat(context.Background(), &ChatRequest{Messages: []Message{{Role: "user", Content: "x"}}})

		var statusErr *StatusError
		if !errors.As(err, &statusErr) {
			t.Fatalf("err = %v, want *StatusError", err)
		}
		if statusErr.StatusCode != http.StatusTooManyRequests {
			t.Errorf("StatusCode = %d", statusErr.StatusCode)
		}
	})

	t.Run("unparseable error body maps to StatusError", func(t *testing.T) {
		server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			w.WriteHeader(http.StatusBadGateway)
			w.Write([]byte(`bad gateway`))
		}))
		defer server.Close()

		client := NewAzureOpenAIClient(AzureOpenAIConfig{APIKey: "k", BaseURL: server.URL, Deployment: "d"})
		_, err := client.Chat(context.Background(), &ChatRequest{Messages: []Message{{Role: "user", Content: "x"}}})

		var statusErr *StatusError
		if !errors.As(err, &statusErr) || statusErr.StatusCode != http.StatusBadGateway {
			t.Errorf("err = %v, want 502 StatusError", err)
		}
	})

	t.Run("empty choices is malformed", func(t *testing.T) {
		server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			w.Header().Set("Content-Type", "application/json")
			w.Write([]byte(`{"id":"az-2","choices":[]}`))
		}))
		defer server.Close()

		client := NewAzureOpenAIClient(AzureOpenAIConfig{APIKey: "k", BaseURL: server.URL, Deployment: "d"})
		_, err := client.Chat(context.Background(), &ChatRequest{Messages: []Message{{Role: "user", Content: "x"}}})
		if !errors.Is(err, ErrMalformedResponse) {
			t.Errorf("err = %v, want ErrMalformedResponse", err)
		}
	})

	t.Run("non-JSON success body is malformed", func(t *testing.T) {
		server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			w.Header().Set("Content-Type", "text/html")
			w.Write([]byte(`<html><body>gateway</body></html>`))
		}))
		defer server.Close()

		client := NewAzureOpenAIClient(AzureOpenAIConfig{APIKey: "k", BaseURL: server.URL, Deployment: "d"})
		_, err := client.Chat(context.Background(), &ChatRequest{Messages: []Message{{Role: "user", Content: "x"}}})
		if !errors.Is(err, ErrMalformedResponse) {
			t.Errorf("err = %v, want ErrMalformedResponse", err)
		}
		var statusErr *StatusError
		if errors.As(err, &statusErr) {
			t.Errorf("err = %v, want no StatusError", err)
		}
	})
}
