package providers

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"mime/multipart"
	"net/http"
	"strings"
	"time"
)

const (
	TesseractName     = "tesseract"
	TesseractBaseURL  = "http://localhost:8884"
	TesseractLanguage = "eng"
)

// TesseractConfig holds configuration for a tesseract-server instance.
type TesseractConfig struct {
	BaseURL    string
	APIKey     string // optional; sent as a bearer token when set
	Language   string // default recognition language
	Timeout    time.Duration
	HTTPClient *http.Client
}

// TesseractClient implements OCRProvider against a tesseract-server HTTP
// endpoint (POST /tesseract, multipart "options" + "file").
type TesseractClient struct {
	baseURL  string
	apiKey   string
	language string
	client   *http.Client
}

// NewTesseractClient creates a new Tesseract client.
func NewTesseractClient(cfg TesseractConfig) *TesseractClient {
	if cfg.BaseURL == "" {
		cfg.BaseURL = TesseractBaseURL
	}
	if cfg.Language == "" {
		cfg.Language = TesseractLanguage
	}
	if cfg.Timeout == 0 {
		cfg.Timeout = 120 * time.Second
	}
	hc := cfg.HTTPClient
	if hc == nil {
		hc = &http.Client{Timeout: cfg.Timeout}
	}

	return &TesseractClient{
		baseURL:  strings.TrimRight(cfg.BaseURL, "/"),
		apiKey:   cfg.APIKey,
		language: cfg.Language,
		client:   hc,
	}
}

// Name returns the provider identifier.
func (c *TesseractClient) Name() string {
	return TesseractName
}

// ProcessImage uploads the image and returns the recognized text.
func (c *TesseractClient) ProcessImage(ctx context.Context, req *OCRRequest) (*OCRResult, error) {
	start := time.Now()
	fail := func(err error) (*OCRResult, error) {
		return &OCRResult{ErrorMessage: err.Error(), ExecutionTime: time.Since(start)}, err
	}

	lang := req.Language
	if lang == "" {
		lang = c.language
	}

	req.report(TesseractName, "uploading", 0)

	body := &bytes.Buffer{}
	writer := multipart.NewWriter(body)

	options, err := json.Marshal(tesseractOptions{Languages: strings.Split(lang, "+")})
	if err != nil {
		return fail(fmt.Errorf("failed to marshal options: %w", err))
	}
	if err := writer.WriteField("options", string(options)); err != nil {
		return fail(fmt.Errorf("failed to write options: %w", err))
	}
	part, err := writer.CreateFormFile("file", "report"+extensionFor(req.MIMEType))
	if err != nil {
		return fail(fmt.Errorf("failed to create form file: %w", err))
	}
	if _, err := part.Write(req.Image); err != nil {
		return fail(fmt.Errorf("failed to write image: %w", err))
	}
	if err := writer.Close(); err != nil {
		return fail(fmt.Errorf("failed to close multipart body: %w", err))
	}

	httpReq, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+"/tesseract", body)
	if err != nil {
		return fail(fmt.Errorf("failed to create request: %w", err))
	}
	httpReq.Header.Set("Content-Type", writer.FormDataContentType())
	if c.apiKey != "" {
		httpReq.Header.Set("Authorization", "Bearer "+c.apiKey)
	}

	req.report(TesseractName, "recognizing", 0.5)

	resp, err := c.client.Do(httpReq)
	if err != nil {
		return fail(fmt.Errorf("request failed: %w", err))
	}
	defer resp.Body.Close()

	respBody, err := io.ReadAll(resp.Body)
	if err != nil {
		return fail(fmt.Errorf("failed to read response: %w", err))
	}
	if resp.StatusCode != http.StatusOK {
		return fail(&StatusError{Provider: TesseractName, StatusCode: resp.StatusCode, Body: truncate(string(respBody), 512)})
	}

	var result tesseractResponse
	if err := json.Unmarshal(respBody, &result); err != nil {
		return fail(fmt.Errorf("%w: %v", ErrMalformedResponse, err))
	}
	if result.Data.Exit.Code != 0 {
		return fail(fmt.Errorf("tesseract exited with code %d: %s", result.Data.Exit.Code, strings.TrimSpace(result.Data.Stderr)))
	}

	req.report(TesseractName, "done", 1)

	return &OCRResult{
		Success: true,
		Text:    result.Data.Stdout,
		Metadata: map[string]any{
			"language": lang,
		},
		ExecutionTime: time.Since(start),
	}, nil
}

func extensionFor(mimeType string) string {
	switch mimeType {
	case "image/png":
		return ".png"
	case "image/jpeg":
		return ".jpg"
	default:
		return ""
	}
}

type tesseractOptions struct {
	Languages []string `json:"languages"`
}

type tesseractResponse struct {
	Data struct {
		Stdout string `json:"stdout"`
		Stderr string `json:"stderr"`
		Exit   struct {
			Code int `json:"code"`
		} `json:"exit"`
	} `json:"data"`
}

// Verify interface
var _ OCRProvider = (*TesseractClient)(nil)
