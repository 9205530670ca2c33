package main

import (
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"github.com/jackzampolin/careplan/internal/api"
	"github.com/jackzampolin/careplan/internal/config"
	"github.com/jackzampolin/careplan/internal/diag"
	"github.com/jackzampolin/careplan/internal/home"
)

var configForce bool

var configCmd = &cobra.Command{
	Use:   "config",
	Short: "Manage the careplan configuration file",
}

var configInitCmd = &cobra.Command{
	Use:   "init",
	Short: "Write the default config to the home directory",
	RunE: func(cmd *cobra.Command, args []string) error {
		h, err := home.New(homeDir)
		if err != nil {
			return err
		}
		if err := h.EnsureExists(); err != nil {
			return err
		}
		if h.ConfigExists() && !configForce {
			return fmt.Errorf("%s already exists (use --force to overwrite)", h.ConfigPath())
		}
		if err := config.WriteDefault(h.ConfigPath()); err != nil {
			return err
		}
		fmt.Printf("Wrote %s\n", h.ConfigPath())
		return nil
	},
}

var configShowCmd = &cobra.Command{
	Use:   "show",
	Short: "Print the effective configuration with API keys redacted",
	RunE: func(cmd *cobra.Command, args []string) error {
		_, cfgMgr, err := loadConfig()
		if err != nil {
			return err
		}
		return api.Output(redactKeys(cfgMgr.Get()))
	},
}

// redactKeys returns a copy of cfg with literal API keys hidden.
// ${ENV} references are kept since they are not secrets.
func redactKeys(cfg *config.Config) config.Config {
	out := *cfg
	out.OCRProviders = make(map[string]config.OCRProviderCfg, len(cfg.OCRProviders))
	for name, p := range cfg.OCRProviders {
		p.APIKey = redactKey(p.APIKey)
		out.OCRProviders[name] = p
	}
	out.LLMProviders = make(map[string]config.LLMProviderCfg, len(cfg.LLMProviders))
	for name, p := range cfg.LLMProviders {
		p.APIKey = redactKey(p.APIKey)
		out.LLMProviders[name] = p
	}
	return out
}

func redactKey(key string) string {
	if key == "" || (strings.HasPrefix(key, "${") && strings.HasSuffix(key, "}")) {
		return key
	}
	return diag.Redacted
}

func init() {
	configInitCmd.Flags().BoolVar(&configForce, "force", false, "Overwrite an existing config file")
	configCmd.AddCommand(configInitCmd)
	configCmd.AddCommand(configShowCmd)
	rootCmd.AddCommand(configCmd)
}
