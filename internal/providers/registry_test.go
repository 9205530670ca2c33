package providers

import (
	"sync"
	"testing"
)

func TestRegistry(t *testing.T) {
	t.Run("register and get LLM", func(t *testing.T) {
		r := NewRegistry()
		mock := NewMockClient()

		r.RegisterLLM("test-llm", mock)

		client, err := r.GetLLM("test-llm")
		if err != nil {
			t.Fatalf("GetLLM() error = %v", err)
		}
		if client != mock {
			t.Error("got different client than registered")
		}
	})

	t.Run("register and get OCR", func(t *testing.T) {
		r := NewRegistry()
		mock := NewMockOCRProvider()

		r.RegisterOCR("test-ocr", mock)

		provider, err := r.GetOCR("test-ocr")
		if err != nil {
			t.Fatalf("GetOCR() error = %v", err)
		}
		if provider != mock {
			t.Error("got different provider than registered")
		}
	})

	t.Run("get nonexistent", func(t *testing.T) {
		r := NewRegistry()

		if _, err := r.GetLLM("nonexistent"); err == nil {
			t.Error("expected error for nonexistent LLM")
		}
		if _, err := r.GetOCR("nonexistent"); err == nil {
			t.Error("expected error for nonexistent OCR")
		}
	})

	t.Run("list providers sorted", func(t *testing.T) {
		r := NewRegistry()
		r.RegisterLLM("llm2", NewMockClient())
		r.RegisterLLM("llm1", NewMockClient())
		r.RegisterOCR("ocr1", NewMockOCRProvider())

		llmList := r.ListLLM()
		if len(llmList) != 2 || llmList[0] != "llm1" || llmList[1] != "llm2" {
			t.Errorf("ListLLM() = %v", llmList)
		}
		if ocrList := r.ListOCR(); len(ocrList) != 1 {
			t.Errorf("ListOCR() returned %d items, want 1", len(ocrList))
		}
	})

	t.Run("unregister", func(t *testing.T) {
		r := NewRegistry()
		r.RegisterLLM("gone", NewMockClient())
		r.UnregisterLLM("gone")
		if r.HasLLM("gone") {
			t.Error("HasLLM() = true after unregister")
		}
	})

	t.Run("concurrent access", func(t *testing.T) {
		r := NewRegistry()

		var wg sync.WaitGroup
		for i := 0; i < 10; i++ {
			wg.Add(2)
			go func() {
				defer wg.Done()
				r.RegisterLLM("concurrent-llm", NewMockClient())
			}()
			go func() {
				defer wg.Done()
				r.GetLLM("concurrent-llm") // May fail, that's ok
			}()
		}
		wg.Wait()
	})
}

func TestNewRegistryFromConfig(t *testing.T) {
	t.Run("registers providers from config", func(t *testing.T) {
		r := NewRegistryFromConfig(RegistryConfig{
			LLMProviders: map[string]LLMProviderConfig{
				"openai": {Type: "openai", Model: "gpt-4", APIKey: "sk-test", Enabled: true},
				"azure":  {Type: "azure-openai", Model: "dep", BaseURL: "https://x.openai.azure.com", APIKey: "k", Enabled: true},
				"local":  {Type: "chat-completions", BaseURL: "http://localhost:11434/v1", Enabled: true},
			},
			OCRProviders: map[string]OCRProviderConfig{
				"tesseract": {Type: "tesseract", Enabled: true},
				"mistral":   {Type: "mistral-ocr", APIKey: "m", Enabled: true},
			},
		})

		for _, name := range []string{"openai", "azure", "local"} {
			if !r.HasLLM(name) {
				t.Errorf("expected %s to be registered", name)
			}
		}
		if _, ok := mustLLM(t, r, "azure").(*AzureOpenAIClient); !ok {
			t.Error("azure should be an AzureOpenAIClient")
		}
		if !r.HasOCR("tesseract") || !r.HasOCR("mistral") {
			t.Error("expected both OCR providers to be registered")
		}
	})

	t.Run("skips disabled providers", func(t *testing.T) {
		r := NewRegistryFromConfig(RegistryConfig{
			LLMProviders: map[string]LLMProviderConfig{
				"openai": {Type: "openai", APIKey: "test-key", Enabled: false},
			},
			OCRProviders: map[string]OCRProviderConfig{
				"tesseract": {Type: "tesseract", Enabled: false},
			},
		})

		if r.HasLLM("openai") || r.HasOCR("tesseract") {
			t.Error("disabled provider should not be registered")
		}
	})

	t.Run("skips keyed providers without API keys", func(t *testing.T) {
		r := NewRegistryFromConfig(RegistryConfig{
			LLMProviders: map[string]LLMProviderConfig{
				"openai": {Type: "openai", Enabled: true},
			},
			OCRProviders: map[string]OCRProviderConfig{
				"mistral": {Type: "mistral-ocr", Enabled: true},
			},
		})

		if r.HasLLM("openai") {
			t.Error("provider without API key should not be registered")
		}
		if r.HasOCR("mistral") {
			t.Error("provider without API key should not be registered")
		}
	})

	t.Run("skips unknown types", func(t *testing.T) {
		r := NewRegistryFromConfig(RegistryConfig{
			LLMProviders: map[string]LLMProviderConfig{
				"weird": {Type: "carrier-pigeon", APIKey: "k", Enabled: true},
			},
		})
		if r.HasLLM("weird") {
			t.Error("unknown type should not be registered")
		}
	})
}

func TestRegistry_Reload(t *testing.T) {
	base := RegistryConfig{
		LLMProviders: map[string]LLMProviderConfig{
			"openai": {Type: "openai", Model: "gpt-4", APIKey: "sk-1", Enabled: true},
		},
		OCRProviders: map[string]OCRProviderConfig{
			"tesseract": {Type: "tesseract", Enabled: true},
		},
	}

	t.Run("unchanged config keeps instances", func(t *testing.T) {
		r := NewRegistryFromConfig(base)
		before := mustLLM(t, r, "openai")

		r.Reload(base)

		if mustLLM(t, r, "openai") != before {
			t.Error("client was recreated for unchanged config")
		}
	})

	t.Run("changed config recreates", func(t *testing.T) {
		r := NewRegistryFromConfig(base)
		before := mustLLM(t, r, "openai")

		r.Reload(RegistryConfig{
			LLMProviders: map[string]LLMProviderConfig{
				"openai": {Type: "openai", Model: "gpt-4", APIKey: "sk-2", Enabled: true},
			},
			OCRProviders: base.OCRProviders,
		})

		if mustLLM(t, r, "openai") == before {
			t.Error("client was not recreated after key change")
		}
	})

	t.Run("removed providers are unregistered", func(t *testing.T) {
		r := NewRegistryFromConfig(base)

		r.Reload(RegistryConfig{})

		if r.HasLLM("openai") || r.HasOCR("tesseract") {
			t.Error("providers should be removed")
		}
	})
}

func mustLLM(t *testing.T, r *Registry, name string) LLMClient {
	t.Helper()
	c, err := r.GetLLM(name)
	if err != nil {
		t.Fatalf("GetLLM(%q) error = %v", name, err)
	}
	return c
}
