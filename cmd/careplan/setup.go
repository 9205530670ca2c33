package main

import (
	"fmt"
	"log/slog"
	"os"
	"strings"

	"github.com/jackzampolin/careplan/internal/config"
	"github.com/jackzampolin/careplan/internal/diag"
	"github.com/jackzampolin/careplan/internal/home"
	"github.com/jackzampolin/careplan/internal/vocab"
)

// newLogger returns a text logger on stderr that redacts credentials.
func newLogger() *slog.Logger {
	var level slog.Level
	if err := level.UnmarshalText([]byte(strings.ToUpper(logLevel))); err != nil {
		level = slog.LevelInfo
	}
	handler := slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: level})
	return slog.New(diag.NewRedactingHandler(handler))
}

// loadConfig resolves the home directory and loads configuration from
// --config, the home config file, or defaults.
func loadConfig() (*home.Dir, *config.Manager, error) {
	h, err := home.New(homeDir)
	if err != nil {
		return nil, nil, err
	}

	path := cfgFile
	if path == "" && h.ConfigExists() {
		path = h.ConfigPath()
	}
	cfgMgr, err := config.NewManager(path)
	if err != nil {
		return nil, nil, err
	}
	return h, cfgMgr, nil
}

// loadVocabulary reads vocabulary.path, then the home vocabulary file, and
// falls back to the built-in set.
func loadVocabulary(cfg *config.Config, h *home.Dir, logger *slog.Logger) (*vocab.Set, error) {
	path := config.ResolveEnvVars(cfg.Vocabulary.Path)
	if path == "" && h != nil && h.VocabularyExists() {
		path = h.VocabularyPath()
	}
	if path == "" {
		return vocab.Default(), nil
	}

	set, err := vocab.LoadFile(path)
	if err != nil {
		return nil, fmt.Errorf("vocabulary %s: %w", path, err)
	}
	logger.Info("loaded vocabulary", "path", path,
		"symptoms", len(set.Symptoms), "medical_history", len(set.MedicalHistory), "suggestions", len(set.Suggestions))
	return set, nil
}
