package providers

import (
	"fmt"
	"log/slog"
	"sort"
	"sync"
	"time"
)

// Registry holds references to LLM clients and OCR providers.
// It supports config-driven instantiation, hot-reload, and provides thread-safe access.
type Registry struct {
	mu           sync.RWMutex
	llmClients   map[string]LLMClient
	ocrProviders map[string]OCRProvider
	llmConfigs   map[string]LLMProviderConfig
	ocrConfigs   map[string]OCRProviderConfig
	logger       *slog.Logger
}

// NewRegistry creates a new empty provider registry.
func NewRegistry() *Registry {
	return &Registry{
		llmClients:   make(map[string]LLMClient),
		ocrProviders: make(map[string]OCRProvider),
		llmConfigs:   make(map[string]LLMProviderConfig),
		ocrConfigs:   make(map[string]OCRProviderConfig),
		logger:       slog.Default(),
	}
}

// SetLogger sets the logger for the registry.
func (r *Registry) SetLogger(logger *slog.Logger) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if logger == nil {
		logger = slog.Default()
	}
	r.logger = logger
}

// RegisterLLM registers an LLM client by name.
func (r *Registry) RegisterLLM(name string, client LLMClient) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.llmClients[name] = client
	delete(r.llmConfigs, name)
	r.logger.Info("registered LLM client", "name", name)
}

// UnregisterLLM removes an LLM client by name.
func (r *Registry) UnregisterLLM(name string) {
	r.mu.Lock()
	defer r.mu.Unlock()
	delete(r.llmClients, name)
	delete(r.llmConfigs, name)
	r.logger.Info("unregistered LLM client", "name", name)
}

// RegisterOCR registers an OCR provider by name.
func (r *Registry) RegisterOCR(name string, provider OCRProvider) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.ocrProviders[name] = provider
	delete(r.ocrConfigs, name)
	r.logger.Info("registered OCR provider", "name", name)
}

// UnregisterOCR removes an OCR provider by name.
func (r *Registry) UnregisterOCR(name string) {
	r.mu.Lock()
	defer r.mu.Unlock()
	delete(r.ocrProviders, name)
	delete(r.ocrConfigs, name)
	r.logger.Info("unregistered OCR provider", "name", name)
}

// GetLLM returns an LLM client by name.
func (r *Registry) GetLLM(name string) (LLMClient, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	client, ok := r.llmClients[name]
	if !ok {
		return nil, fmt.Errorf("LLM client not found: %s", name)
	}
	return client, nil
}

// GetOCR returns an OCR provider by name.
func (r *Registry) GetOCR(name string) (OCRProvider, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	provider, ok := r.ocrProviders[name]
	if !ok {
		return nil, fmt.Errorf("OCR provider not found: %s", name)
	}
	return provider, nil
}

// ListLLM returns all registered LLM client names, sorted.
func (r *Registry) ListLLM() []string {
	r.mu.RLock()
	defer r.mu.RUnlock()
	names := make([]string, 0, len(r.llmClients))
	for name := range r.llmClients {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// ListOCR returns all registered OCR provider names, sorted.
func (r *Registry) ListOCR() []string {
	r.mu.RLock()
	defer r.mu.RUnlock()
	names := make([]string, 0, len(r.ocrProviders))
	for name := range r.ocrProviders {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// HasLLM checks if an LLM client is registered.
func (r *Registry) HasLLM(name string) bool {
	r.mu.RLock()
	defer r.mu.RUnlock()
	_, ok := r.llmClients[name]
	return ok
}

// HasOCR checks if an OCR provider is registered.
func (r *Registry) HasOCR(name string) bool {
	r.mu.RLock()
	defer r.mu.RUnlock()
	_, ok := r.ocrProviders[name]
	return ok
}

// RegistryConfig defines the providers to instantiate from config.
// This mirrors the config.Config structure for provider setup.
type RegistryConfig struct {
	// OCRProviders maps provider names to their config
	OCRProviders map[string]OCRProviderConfig

	// LLMProviders maps provider names to their config
	LLMProviders map[string]LLMProviderConfig
}

// OCRProviderConfig matches config.OCRProviderCfg with resolved API key.
type OCRProviderConfig struct {
	Type     string // "tesseract", "mistral-ocr"
	Model    string // Model name (mistral-ocr)
	BaseURL  string // Service endpoint; provider default when empty
	APIKey   string // Resolved API key
	Language string // Default recognition language (tesseract)
	Timeout  time.Duration
	Enabled  bool
}

// LLMProviderConfig matches config.LLMProviderCfg with resolved API key.
type LLMProviderConfig struct {
	Type       string // "openai", "azure-openai", "chat-completions"
	Model      string // Model or deployment name
	BaseURL    string // Service endpoint; provider default when empty
	APIKey     string // Resolved API key
	APIVersion string // azure-openai only
	Timeout    time.Duration
	Enabled    bool
}

// llmRequiresKey reports whether the provider type refuses to run without a key.
// chat-completions may point at an unauthenticated local gateway.
func llmRequiresKey(providerType string) bool {
	return providerType != ChatCompletionsName
}

// ocrRequiresKey reports whether the provider type refuses to run without a key.
func ocrRequiresKey(providerType string) bool {
	return providerType == MistralOCRName
}

func (c LLMProviderConfig) usable() bool {
	return c.Enabled && (c.APIKey != "" || !llmRequiresKey(c.Type))
}

func (c OCRProviderConfig) usable() bool {
	return c.Enabled && (c.APIKey != "" || !ocrRequiresKey(c.Type))
}

// NewRegistryFromConfig creates a registry with providers based on configuration.
// Only enabled providers with the credentials they need will be registered.
func NewRegistryFromConfig(cfg RegistryConfig) *Registry {
	r := NewRegistry()
	r.Reload(cfg)
	return r
}

// Reload updates the registry based on new configuration.
// Providers that are no longer configured will be unregistered.
// Providers with changed settings will be re-created.
func (r *Registry) Reload(cfg RegistryConfig) {
	r.mu.Lock()
	defer r.mu.Unlock()

	wantLLM := make(map[string]bool)
	wantOCR := make(map[string]bool)

	for name, provCfg := range cfg.LLMProviders {
		if !provCfg.usable() {
			continue
		}
		prev, hasExisting := r.llmConfigs[name]
		if hasExisting && prev == provCfg {
			wantLLM[name] = true
			continue
		}
		client := createLLMClient(provCfg)
		if client == nil {
			r.logger.Warn("unknown LLM provider type", "name", name, "type", provCfg.Type)
			continue
		}
		wantLLM[name] = true
		r.llmClients[name] = client
		r.llmConfigs[name] = provCfg
		if hasExisting {
			r.logger.Info("updated LLM client", "name", name, "type", provCfg.Type)
		} else {
			r.logger.Info("registered LLM client", "name", name, "type", provCfg.Type)
		}
	}

	for name, provCfg := range cfg.OCRProviders {
		if !provCfg.usable() {
			continue
		}
		prev, hasExisting := r.ocrConfigs[name]
		if hasExisting && prev == provCfg {
			wantOCR[name] = true
			continue
		}
		provider := createOCRProvider(provCfg)
		if provider == nil {
			r.logger.Warn("unknown OCR provider type", "name", name, "type", provCfg.Type)
			continue
		}
		wantOCR[name] = true
		r.ocrProviders[name] = provider
		r.ocrConfigs[name] = provCfg
		if hasExisting {
			r.logger.Info("updated OCR provider", "name", name, "type", provCfg.Type)
		} else {
			r.logger.Info("registered OCR provider", "name", name, "type", provCfg.Type)
		}
	}

	// Remove providers that are no longer configured
	for name := range r.llmClients {
		if !wantLLM[name] {
			delete(r.llmClients, name)
			delete(r.llmConfigs, name)
			r.logger.Info("unregistered LLM client", "name", name)
		}
	}
	for name := range r.ocrProviders {
		if !wantOCR[name] {
			delete(r.ocrProviders, name)
			delete(r.ocrConfigs, name)
			r.logger.Info("unregistered OCR provider", "name", name)
		}
	}
}

// createLLMClient creates an LLM client based on provider type.
func createLLMClient(cfg LLMProviderConfig) LLMClient {
	switch cfg.Type {
	case OpenAIName:
		return NewOpenAIClient(OpenAIConfig{
			APIKey:       cfg.APIKey,
			DefaultModel: cfg.Model,
			BaseURL:      cfg.BaseURL,
			Timeout:      cfg.Timeout,
		})
	case AzureOpenAIName:
		return NewAzureOpenAIClient(AzureOpenAIConfig{
			APIKey:     cfg.APIKey,
			BaseURL:    cfg.BaseURL,
			Deployment: cfg.Model,
			APIVersion: cfg.APIVersion,
			Timeout:    cfg.Timeout,
		})
	case ChatCompletionsName:
		return NewChatCompletionsClient(ChatCompletionsConfig{
			APIKey:       cfg.APIKey,
			BaseURL:      cfg.BaseURL,
			DefaultModel: cfg.Model,
			Timeout:      cfg.Timeout,
		})
	default:
		return nil
	}
}

// createOCRProvider creates an OCR provider based on provider type.
func createOCRProvider(cfg OCRProviderConfig) OCRProvider {
	switch cfg.Type {
	case TesseractName:
		return NewTesseractClient(TesseractConfig{
			BaseURL:  cfg.BaseURL,
			APIKey:   cfg.APIKey,
			Language: cfg.Language,
			Timeout:  cfg.Timeout,
		})
	case MistralOCRName:
		return NewMistralOCRClient(MistralOCRConfig{
			APIKey:  cfg.APIKey,
			BaseURL: cfg.BaseURL,
			Model:   cfg.Model,
			Timeout: cfg.Timeout,
		})
	default:
		return nil
	}
}
