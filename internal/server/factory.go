package server

import (
	"log/slog"

	"github.com/jackzampolin/careplan/internal/config"
	"github.com/jackzampolin/careplan/internal/extract"
	"github.com/jackzampolin/careplan/internal/plan"
	"github.com/jackzampolin/careplan/internal/providers"
	"github.com/jackzampolin/careplan/internal/session"
	"github.com/jackzampolin/careplan/internal/vocab"
)

// SessionFactory builds session collaborators from the current config and
// the providers registered at call time. When the default LLM provider is
// unset or unavailable, sessions fall back to local suggestions.
func SessionFactory(cfgMgr *config.Manager, registry *providers.Registry, vocabulary *vocab.Set, logger *slog.Logger) session.Factory {
	if logger == nil {
		logger = slog.Default()
	}
	return func() session.Config {
		cfg := config.DefaultConfig()
		if cfgMgr != nil {
			cfg = cfgMgr.Get()
		}
		return sessionConfig(cfg, registry, vocabulary, logger)
	}
}

func sessionConfig(cfg *config.Config, registry *providers.Registry, vocabulary *vocab.Set, logger *slog.Logger) session.Config {
	sc := session.Config{Vocabulary: vocabulary, Logger: logger}

	if ocr, err := registry.GetOCR(cfg.Defaults.OCRProvider); err == nil {
		pipeline, err := extract.New(extract.Config{
			Provider: ocr,
			Language: cfg.OCRLanguage(),
			Logger:   logger,
		})
		if err == nil {
			sc.Extractor = pipeline
		}
	} else {
		logger.Warn("OCR provider unavailable, extraction disabled", "provider", cfg.Defaults.OCRProvider)
	}

	name := cfg.Defaults.LLMProvider
	if name == "" {
		return sc
	}
	llm, err := registry.GetLLM(name)
	if err != nil {
		logger.Warn("LLM provider unavailable, using local suggestions", "provider", name)
		return sc
	}

	model := cfg.Defaults.Model
	if model == "" {
		if p, ok := cfg.GetLLMProvider(name); ok {
			model = p.Model
		}
	}
	orchestrator, err := plan.New(llm, plan.Options{
		Model:     model,
		MaxTokens: cfg.Defaults.MaxTokens,
		Logger:    logger,
	})
	if err == nil {
		sc.Planner = orchestrator
	}
	return sc
}
