package plan

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jackzampolin/careplan/internal/clinical"
	"github.com/jackzampolin/careplan/internal/providers"
	"github.com/jackzampolin/careplan/internal/vocab"
)

// inferenceServer serves a fixed status and body, counts requests and
// forwards each request body to bodies when it is non-nil.
func inferenceServer(t *testing.T, status int, body string, seen *atomic.Int32, bodies chan<- string) *httptest.Server {
	t.Helper()
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if seen != nil {
			seen.Add(1)
		}
		if bodies != nil {
			var buf bytes.Buffer
			_, _ = buf.ReadFrom(r.Body)
			bodies <- buf.String()
		}
		w.WriteHeader(status)
		_, _ = w.Write([]byte(body))
	}))
	t.Cleanup(srv.Close)
	return srv
}

func newOrchestrator(t *testing.T, baseURL string) *Orchestrator {
	t.Helper()
	client := providers.NewChatCompletionsClient(providers.ChatCompletionsConfig{APIKey: "sk-test", BaseURL: baseURL})
	o, err := New(client, Options{})
	require.NoError(t, err)
	return o
}

func TestGenerate(t *testing.T) {
	ctx := context.Background()
	okBody := `{"choices":[{"message":{"role":"assistant","content":"  Rest, fluids and follow-up.\n"}}]}`

	t.Run("extracted text is included verbatim", func(t *testing.T) {
		bodies := make(chan string, 1)
		srv := inferenceServer(t, http.StatusOK, okBody, nil, bodies)

		res, err := newOrchestrator(t, srv.URL).Generate(ctx, clinical.Build("", "", "", "glucose: 180"))
		require.NoError(t, err)
		assert.Equal(t, "Rest, fluids and follow-up.", res.Text)
		assert.Equal(t, SourceInference, res.Source)

		var sent struct {
			Model     string `json:"model"`
			MaxTokens int    `json:"max_tokens"`
			Messages  []struct {
				Role    string `json:"role"`
				Content string `json:"content"`
			} `json:"messages"`
		}
		require.NoError(t, json.Unmarshal([]byte(<-bodies), &sent))
		assert.Equal(t, DefaultModel, sent.Model)
		assert.Equal(t, DefaultMaxTokens, sent.MaxTokens)
		require.Len(t, sent.Messages, 2)
		assert.Equal(t, "system", sent.Messages[0].Role)
		assert.Equal(t, "user", sent.Messages[1].Role)
		assert.Contains(t, sent.Messages[1].Content, "glucose: 180")
		assert.Contains(t, sent.Messages[1].Content, "Symptoms: "+NotProvided)
	})

	t.Run("missing clinical input fails before any request", func(t *testing.T) {
		var calls atomic.Int32
		srv := inferenceServer(t, http.StatusOK, okBody, &calls, nil)

		_, err := newOrchestrator(t, srv.URL).Generate(ctx, clinical.Build("Alice", " ", "", ""))
		kind, ok := clinical.KindOf(err)
		require.True(t, ok)
		assert.Equal(t, clinical.KindValidation, kind)
		assert.Zero(t, calls.Load())
	})

	t.Run("server error is a transport error", func(t *testing.T) {
		var calls atomic.Int32
		srv := inferenceServer(t, http.StatusInternalServerError, `{"error":"boom"}`, &calls, nil)

		res, err := newOrchestrator(t, srv.URL).Generate(ctx, clinical.Build("Bob", "fever", "", ""))
		assert.Nil(t, res)
		assert.True(t, errors.Is(err, &clinical.OperationError{Kind: clinical.KindTransport}))
		assert.Equal(t, int32(1), calls.Load(), "no automatic retry")

		var opErr *clinical.OperationError
		require.ErrorAs(t, err, &opErr)
		assert.Equal(t, "Failed to fetch treatment plan. Please try again.", opErr.Message)
	})

	t.Run("unreachable service is a transport error", func(t *testing.T) {
		srv := httptest.NewServer(http.NotFoundHandler())
		url := srv.URL
		srv.Close()

		_, err := newOrchestrator(t, url).Generate(ctx, clinical.Build("Bob", "fever", "", ""))
		assert.True(t, errors.Is(err, &clinical.OperationError{Kind: clinical.KindTransport}))
	})

	t.Run("shape violations are response shape errors", func(t *testing.T) {
		for name, body := range map[string]string{
			"no choices":    `{"choices":[]}`,
			"no message":    `{"choices":[{}]}`,
			"empty content": `{"choices":[{"message":{"content":"   "}}]}`,
			"not json":      `ok`,
		} {
			t.Run(name, func(t *testing.T) {
				srv := inferenceServer(t, http.StatusOK, body, nil, nil)
				_, err := newOrchestrator(t, srv.URL).Generate(ctx, clinical.Build("", "cough", "", ""))
				assert.True(t, errors.Is(err, &clinical.OperationError{Kind: clinical.KindResponseShape}), "got %v", err)
			})
		}
	})

	t.Run("options reach the request", func(t *testing.T) {
		mock := providers.NewMockClient()
		mock.Latency = 0
		o, err := New(mock, Options{Model: "gpt-4o", MaxTokens: 300})
		require.NoError(t, err)

		_, err = o.Generate(ctx, clinical.Build("", "", "asthma", ""))
		require.NoError(t, err)
		req := mock.LastRequest()
		assert.Equal(t, "gpt-4o", req.Model)
		assert.Equal(t, 300, req.MaxTokens)
		assert.NotEmpty(t, req.RequestID)
	})

	t.Run("context is not mutated", func(t *testing.T) {
		mock := providers.NewMockClient()
		mock.Latency = 0
		o, err := New(mock, Options{})
		require.NoError(t, err)

		c := clinical.Build("Alice", "fever", "", "")
		before := c
		_, err = o.Generate(ctx, c)
		require.NoError(t, err)
		assert.Equal(t, before, c)
	})
}

func TestNew(t *testing.T) {
	_, err := New(nil, Options{})
	assert.Error(t, err)
}

func TestUserPrompt(t *testing.T) {
	got, err := UserPrompt(clinical.Build("Alice", "fever, cough", "", ""))
	require.NoError(t, err)
	assert.Contains(t, got, "Patient name: Alice")
	assert.Contains(t, got, "Symptoms: fever, cough")
	assert.Contains(t, got, "Medical history: "+NotProvided)
	assert.Contains(t, got, "Lab report text: "+NotProvided)
	assert.NotEmpty(t, SystemPrompt())
}

func TestLocal(t *testing.T) {
	table := []vocab.Suggestion{{Symptom: "fever", Suggestion: "rest and fluids"}}

	res, err := Local(clinical.Build("Alice", "fever, cough", "", ""), table)
	require.NoError(t, err)
	assert.Equal(t, "Treatment plan for Alice: rest and fluids", res.Text)
	assert.Equal(t, SourceLocal, res.Source)

	_, err = Local(clinical.Build("Alice", "", "", ""), table)
	assert.True(t, errors.Is(err, &clinical.OperationError{Kind: clinical.KindValidation}))
}
