package providers

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"
)

func TestMistralOCRClient_ProcessImage(t *testing.T) {
	t.Run("successful OCR", func(t *testing.T) {
		server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			if r.URL.Path != "/ocr" {
				t.Errorf("unexpected path: %s", r.URL.Path)
			}
			if r.Method != "POST" {
				t.Errorf("unexpected method: %s", r.Method)
			}
			if auth := r.Header.Get("Authorization"); auth != "Bearer test-key" {
				t.Errorf("unexpected authorization: %s", auth)
			}

			var req mistralOCRRequest
			if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
				t.Errorf("decode request: %v", err)
			}
			if !strings.HasPrefix(req.Document.ImageURL.URL, "data:image/jpeg;base64,") {
				t.Errorf("image URL should carry the jpeg MIME type: %q", req.Document.ImageURL.URL)
			}

			resp := mistralOCRResponse{
				Model: "mistral-ocr-latest",
				Pages: []mistralOCRPage{
					{
						Index:      0,
						Markdown:   "Hemoglobin 13.5 g/dL",
						Dimensions: mistralPageDimensions{Width: 1700, Height: 2200, DPI: 300},
					},
				},
				UsageInfo: &mistralUsageInfo{PagesProcessed: 1},
			}
			w.Header().Set("Content-Type", "application/json")
			json.NewEncoder(w).Encode(resp)
		}))
		defer server.Close()

		client := NewMistralOCRClient(MistralOCRConfig{
			APIKey:  "test-key",
			BaseURL: server.URL,
		})

		var stages []string
		result, err := client.ProcessImage(context.Background(), &OCRRequest{
			Image:    []byte("fake image data"),
			MIMEType: "image/jpeg",
			Language: "eng",
			Progress: func(p OCRProgress) { stages = append(stages, p.Stage) },
		})

		if err != nil {
			t.Fatalf("ProcessImage() error = %v", err)
		}
		if !result.Success {
			t.Error("expected Success = true")
		}
		if result.Text != "Hemoglobin 13.5 g/dL" {
			t.Errorf("unexpected text: %q", result.Text)
		}
		if result.Metadata["model_used"] != "mistral-ocr-latest" {
			t.Errorf("model_used = %v", result.Metadata["model_used"])
		}
		if result.Metadata["language_hint"] != "eng" {
			t.Errorf("language_hint = %v", result.Metadata["language_hint"])
		}
		if len(stages) == 0 || stages[len(stages)-1] != "done" {
			t.Errorf("progress stages = %v, want last = done", stages)
		}
	})

	t.Run("empty pages response", func(t *testing.T) {
		server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			w.Header().Set("Content-Type", "application/json")
			json.NewEncoder(w).Encode(mistralOCRResponse{Model: "mistral-ocr-latest"})
		}))
		defer server.Close()

		client := NewMistralOCRClient(MistralOCRConfig{APIKey: "test-key", BaseURL: server.URL})

		result, err := client.ProcessImage(context.Background(), &OCRRequest{Image: []byte("fake")})

		if !errors.Is(err, ErrMalformedResponse) {
			t.Errorf("err = %v, want ErrMalformedResponse", err)
		}
		if result.Success {
			t.Error("expected Success = false")
		}
		if result.ErrorMessage == "" {
			t.Error("expected error message")
		}
	})

	t.Run("API error response", func(t *testing.T) {
		server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			w.WriteHeader(http.StatusBadRequest)
			json.NewEncoder(w).Encode(map[string]any{
				"error": map[string]string{
					"message": "Invalid image format",
					"type":    "invalid_request_error",
				},
			})
		}))
		defer server.Close()

		client := NewMistralOCRClient(MistralOCRConfig{APIKey: "test-key", BaseURL: server.URL})

		_, err := client.ProcessImage(context.Background(), &OCRRequest{Image: []byte("fake")})

		var statusErr *StatusError
		if !errors.As(err, &statusErr) {
			t.Fatalf("err = %v, want *StatusError", err)
		}
		if statusErr.StatusCode != http.StatusBadRequest {
			t.Errorf("StatusCode = %d", statusErr.StatusCode)
		}
		if statusErr.Body != "Invalid image format" {
			t.Errorf("Body = %q", statusErr.Body)
		}
	})

	t.Run("context cancellation", func(t *testing.T) {
		server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			time.Sleep(100 * time.Millisecond)
			w.WriteHeader(http.StatusOK)
		}))
		defer server.Close()

		client := NewMistralOCRClient(MistralOCRConfig{APIKey: "test-key", BaseURL: server.URL})

		ctx, cancel := context.WithCancel(context.Background())
		cancel()

		result, err := client.ProcessImage(ctx, &OCRRequest{Image: []byte("fake")})

		if err == nil {
			t.Error("expected error from cancelled context")
		}
		if result.Success {
			t.Error("expected Success = false")
		}
	})
}

func TestMistralOCRClient_Defaults(t *testing.T) {
	client := NewMistralOCRClient(MistralOCRConfig{APIKey: "k"})
	if client.baseURL != MistralOCRBaseURL {
		t.Errorf("baseURL = %q", client.baseURL)
	}
	if client.model != MistralOCRModel {
		t.Errorf("model = %q", client.model)
	}
	if client.Name() != MistralOCRName {
		t.Errorf("Name() = %q", client.Name())
	}
}
