// Package extract runs a selected lab report image through an OCR provider
// and returns the recognized text.
package extract

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"time"

	"github.com/jackzampolin/careplan/internal/clinical"
	"github.com/jackzampolin/careplan/internal/providers"
)

const (
	// DefaultLanguage is the OCR language used when none is configured.
	DefaultLanguage = "eng"

	// DefaultMaxImageBytes bounds how much of an image is read into memory.
	DefaultMaxImageBytes int64 = 20 << 20
)

// Config configures a Pipeline.
type Config struct {
	Provider      providers.OCRProvider
	Language      string
	MaxImageBytes int64
	Logger        *slog.Logger
}

// Pipeline reads an image, submits it to the OCR provider with a fixed
// language and normalizes the result.
type Pipeline struct {
	provider providers.OCRProvider
	language string
	maxBytes int64
	logger   *slog.Logger
}

// New creates a pipeline. Provider is required.
func New(cfg Config) (*Pipeline, error) {
	if cfg.Provider == nil {
		return nil, errors.New("extract: OCR provider is required")
	}
	if cfg.Language == "" {
		cfg.Language = DefaultLanguage
	}
	if cfg.MaxImageBytes <= 0 {
		cfg.MaxImageBytes = DefaultMaxImageBytes
	}
	if cfg.Logger == nil {
		cfg.Logger = slog.Default()
	}
	return &Pipeline{
		provider: cfg.Provider,
		language: cfg.Language,
		maxBytes: cfg.MaxImageBytes,
		logger:   cfg.Logger,
	}, nil
}

// Provider returns the name of the OCR provider in use.
func (p *Pipeline) Provider() string {
	return p.provider.Name()
}

// Language returns the fixed recognition language.
func (p *Pipeline) Language() string {
	return p.language
}

// Extract returns the normalized text of img. Read failures are
// FileReadErrors; provider failures and empty results are ExtractionErrors.
func (p *Pipeline) Extract(ctx context.Context, img *clinical.UploadedImage) (string, error) {
	if img == nil {
		return "", clinical.NewValidationError("No lab report selected.")
	}

	data, err := p.read(img)
	if err != nil {
		return "", clinical.NewFileReadError(err)
	}

	logger := p.logger.With("image_id", img.ID, "provider", p.provider.Name())
	start := time.Now()

	result, err := p.provider.ProcessImage(ctx, &providers.OCRRequest{
		Image:    data,
		MIMEType: img.MIMEType,
		Language: p.language,
		Progress: func(ev providers.OCRProgress) {
			logger.Debug("ocr progress", "stage", ev.Stage, "fraction", ev.Fraction)
		},
	})
	if err != nil {
		logger.Warn("ocr failed", "error", err, "duration", time.Since(start))
		return "", clinical.NewExtractionError("Text could not be extracted from the lab report.", err)
	}
	if result == nil {
		return "", clinical.NewExtractionError("Text could not be extracted from the lab report.", errors.New("provider returned no result"))
	}

	text := Normalize(result.Text)
	if text == "" {
		return "", clinical.NewExtractionError("No text was found in the lab report.", nil)
	}

	logger.Info("ocr complete", "chars", len(text), "duration", time.Since(start))
	return text, nil
}

func (p *Pipeline) read(img *clinical.UploadedImage) ([]byte, error) {
	rc, err := img.Open()
	if err != nil {
		return nil, fmt.Errorf("open %s: %w", img.Name, err)
	}
	defer rc.Close()

	data, err := io.ReadAll(io.LimitReader(rc, p.maxBytes+1))
	if err != nil {
		return nil, fmt.Errorf("read %s: %w", img.Name, err)
	}
	if int64(len(data)) > p.maxBytes {
		return nil, fmt.Errorf("read %s: image exceeds %d bytes", img.Name, p.maxBytes)
	}
	if len(data) == 0 {
		return nil, fmt.Errorf("read %s: image is empty", img.Name)
	}
	return data, nil
}
