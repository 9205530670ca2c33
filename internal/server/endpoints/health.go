package endpoints

import (
	"fmt"
	"net/http"

	"github.com/spf13/cobra"

	"github.com/jackzampolin/careplan/internal/api"
	"github.com/jackzampolin/careplan/internal/plan"
	"github.com/jackzampolin/careplan/internal/svcctx"
)

// HealthResponse is the response for health check endpoints.
type HealthResponse struct {
	Status string `json:"status"`
}

// HealthEndpoint handles GET /health.
type HealthEndpoint struct{}

func (e *HealthEndpoint) Route() (string, string, http.HandlerFunc) {
	return "GET", "/health", e.handler
}

func (e *HealthEndpoint) RequiresInit() bool { return false }

func (e *HealthEndpoint) handler(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, HealthResponse{Status: "ok"})
}

func (e *HealthEndpoint) Command(getServerURL func() string) *cobra.Command {
	return &cobra.Command{
		Use:   "health",
		Short: "Check server health",
		RunE: func(cmd *cobra.Command, args []string) error {
			client := api.NewClient(getServerURL())
			var resp HealthResponse
			if err := client.Get(cmd.Context(), "/health", &resp); err != nil {
				return err
			}
			fmt.Printf("Status: %s\n", resp.Status)
			return nil
		},
	}
}

// StatusResponse is the detailed status response.
type StatusResponse struct {
	Server     string          `json:"server"`
	Mode       plan.Source     `json:"mode"`
	Providers  ProvidersStatus `json:"providers"`
	Defaults   DefaultsStatus  `json:"defaults"`
	Sessions   int             `json:"sessions"`
	ConfigFile string          `json:"config_file,omitempty"`
	Home       string          `json:"home,omitempty"`
}

// ProvidersStatus shows registered OCR and LLM providers.
type ProvidersStatus struct {
	OCR []string `json:"ocr"`
	LLM []string `json:"llm"`
}

// DefaultsStatus shows which providers new sessions will use.
type DefaultsStatus struct {
	OCRProvider string `json:"ocr_provider"`
	LLMProvider string `json:"llm_provider"`
}

// StatusEndpoint handles GET /status.
type StatusEndpoint struct{}

func (e *StatusEndpoint) Route() (string, string, http.HandlerFunc) {
	return "GET", "/status", e.handler
}

func (e *StatusEndpoint) RequiresInit() bool { return false }

func (e *StatusEndpoint) handler(w http.ResponseWriter, r *http.Request) {
	resp := StatusResponse{
		Server: "running",
		Mode:   plan.SourceLocal,
	}

	registry := svcctx.RegistryFrom(r.Context())
	if registry != nil {
		resp.Providers.OCR = registry.ListOCR()
		resp.Providers.LLM = registry.ListLLM()
	}

	if cm := svcctx.ConfigManagerFrom(r.Context()); cm != nil {
		cfg := cm.Get()
		resp.Defaults = DefaultsStatus{
			OCRProvider: cfg.Defaults.OCRProvider,
			LLMProvider: cfg.Defaults.LLMProvider,
		}
		resp.ConfigFile = cm.ConfigFile()
		if registry != nil && registry.HasLLM(cfg.Defaults.LLMProvider) {
			resp.Mode = plan.SourceInference
		}
	}

	if sessions := svcctx.SessionsFrom(r.Context()); sessions != nil {
		resp.Sessions = sessions.Len()
	}
	if h := svcctx.HomeFrom(r.Context()); h != nil {
		resp.Home = h.Path()
	}

	writeJSON(w, http.StatusOK, resp)
}

func (e *StatusEndpoint) Command(getServerURL func() string) *cobra.Command {
	return &cobra.Command{
		Use:   "status",
		Short: "Get detailed server status",
		RunE: func(cmd *cobra.Command, args []string) error {
			client := api.NewClient(getServerURL())
			var resp StatusResponse
			if err := client.Get(cmd.Context(), "/status", &resp); err != nil {
				return err
			}
			fmt.Printf("Server:   %s\n", resp.Server)
			fmt.Printf("Mode:     %s\n", resp.Mode)
			fmt.Printf("Sessions: %d\n", resp.Sessions)
			fmt.Printf("Defaults:\n")
			fmt.Printf("  OCR: %s\n", resp.Defaults.OCRProvider)
			fmt.Printf("  LLM: %s\n", resp.Defaults.LLMProvider)
			fmt.Printf("Providers:\n")
			fmt.Printf("  LLM: %v\n", resp.Providers.LLM)
			fmt.Printf("  OCR: %v\n", resp.Providers.OCR)
			return nil
		},
	}
}
