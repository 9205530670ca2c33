package config

import (
	"errors"
	"fmt"
	"time"
)

// Config holds careplan configuration.
// Stored at: ~/.careplan/config.yaml
type Config struct {
	OCRProviders map[string]OCRProviderCfg `mapstructure:"ocr_providers" yaml:"ocr_providers"`
	LLMProviders map[string]LLMProviderCfg `mapstructure:"llm_providers" yaml:"llm_providers"`
	Defaults     DefaultsCfg               `mapstructure:"defaults" yaml:"defaults"`
	Vocabulary   VocabularyCfg             `mapstructure:"vocabulary" yaml:"vocabulary"`
	Server       ServerCfg                 `mapstructure:"server" yaml:"server"`
}

// OCRProviderCfg configures an OCR provider.
type OCRProviderCfg struct {
	Type           string `mapstructure:"type" yaml:"type"`                       // "tesseract", "mistral-ocr"
	Model          string `mapstructure:"model" yaml:"model,omitempty"`           // Model name (mistral-ocr)
	BaseURL        string `mapstructure:"base_url" yaml:"base_url,omitempty"`     // Supports ${ENV_VAR} syntax
	APIKey         string `mapstructure:"api_key" yaml:"api_key,omitempty"`       // Supports ${ENV_VAR} syntax
	Language       string `mapstructure:"language" yaml:"language,omitempty"`     // Overrides defaults.ocr_language
	TimeoutSeconds int    `mapstructure:"timeout_seconds" yaml:"timeout_seconds"` // HTTP timeout
	Enabled        bool   `mapstructure:"enabled" yaml:"enabled"`
}

// LLMProviderCfg configures an LLM provider.
type LLMProviderCfg struct {
	Type           string `mapstructure:"type" yaml:"type"`                         // "openai", "azure-openai", "chat-completions"
	Model          string `mapstructure:"model" yaml:"model,omitempty"`             // Model or Azure deployment name
	BaseURL        string `mapstructure:"base_url" yaml:"base_url,omitempty"`       // Supports ${ENV_VAR} syntax
	APIKey         string `mapstructure:"api_key" yaml:"api_key,omitempty"`         // Supports ${ENV_VAR} syntax
	APIVersion     string `mapstructure:"api_version" yaml:"api_version,omitempty"` // azure-openai only
	TimeoutSeconds int    `mapstructure:"timeout_seconds" yaml:"timeout_seconds"`   // HTTP timeout
	Enabled        bool   `mapstructure:"enabled" yaml:"enabled"`
}

// DefaultsCfg specifies default provider selections and request parameters.
type DefaultsCfg struct {
	OCRProvider string `mapstructure:"ocr_provider" yaml:"ocr_provider"` // Used by extraction
	LLMProvider string `mapstructure:"llm_provider" yaml:"llm_provider"` // Empty or unavailable: local suggestions
	OCRLanguage string `mapstructure:"ocr_language" yaml:"ocr_language"` // Tesseract language code
	Model       string `mapstructure:"model" yaml:"model"`               // Overrides the provider model when set
	MaxTokens   int    `mapstructure:"max_tokens" yaml:"max_tokens"`     // Completion length cap
}

// VocabularyCfg points at an optional vocabulary override file.
type VocabularyCfg struct {
	Path string `mapstructure:"path" yaml:"path"`
}

// ServerCfg holds the HTTP listen address.
type ServerCfg struct {
	Host string `mapstructure:"host" yaml:"host"`
	Port string `mapstructure:"port" yaml:"port"`
}

// DefaultConfig returns configuration with sensible defaults.
func DefaultConfig() *Config {
	return &Config{
		OCRProviders: map[string]OCRProviderCfg{
			"tesseract": {
				Type:           "tesseract",
				BaseURL:        "http://localhost:8884",
				TimeoutSeconds: 120,
				Enabled:        true,
			},
			"mistral": {
				Type:           "mistral-ocr",
				APIKey:         "${MISTRAL_API_KEY}",
				TimeoutSeconds: 120,
				Enabled:        false,
			},
		},
		LLMProviders: map[string]LLMProviderCfg{
			"openai": {
				Type:           "openai",
				Model:          "gpt-4",
				APIKey:         "${OPENAI_API_KEY}",
				TimeoutSeconds: 60,
				Enabled:        true,
			},
			"azure": {
				Type:           "azure-openai",
				Model:          "gpt-4",
				BaseURL:        "${AZURE_OPENAI_ENDPOINT}",
				APIKey:         "${AZURE_OPENAI_API_KEY}",
				TimeoutSeconds: 60,
				Enabled:        false,
			},
		},
		Defaults: DefaultsCfg{
			OCRProvider: "tesseract",
			LLMProvider: "openai",
			OCRLanguage: "eng",
			MaxTokens:   150,
		},
		Server: ServerCfg{
			Host: "127.0.0.1",
			Port: "8080",
		},
	}
}

// Validate checks values that would otherwise fail later at request time.
func (c *Config) Validate() error {
	var errs []error
	if c.Defaults.MaxTokens <= 0 {
		errs = append(errs, fmt.Errorf("defaults.max_tokens must be positive, got %d", c.Defaults.MaxTokens))
	}
	for name, p := range c.OCRProviders {
		if p.Type == "" {
			errs = append(errs, fmt.Errorf("ocr_providers.%s.type is required", name))
		}
	}
	for name, p := range c.LLMProviders {
		if p.Type == "" {
			errs = append(errs, fmt.Errorf("llm_providers.%s.type is required", name))
		}
	}
	return errors.Join(errs...)
}

// GetOCRProvider returns an OCR provider config by name.
func (c *Config) GetOCRProvider(name string) (OCRProviderCfg, bool) {
	cfg, ok := c.OCRProviders[name]
	return cfg, ok
}

// GetLLMProvider returns an LLM provider config by name.
func (c *Config) GetLLMProvider(name string) (LLMProviderCfg, bool) {
	cfg, ok := c.LLMProviders[name]
	return cfg, ok
}

// OCRLanguage returns the language for the default OCR provider.
func (c *Config) OCRLanguage() string {
	if p, ok := c.OCRProviders[c.Defaults.OCRProvider]; ok && p.Language != "" {
		return p.Language
	}
	return c.Defaults.OCRLanguage
}

func seconds(n int) time.Duration {
	return time.Duration(n) * time.Second
}
