package main

import (
	"github.com/spf13/cobra"

	"github.com/jackzampolin/careplan/internal/server"
)

var (
	serveHost string
	servePort string
)

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Start the careplan server",
	Long: `Start the careplan HTTP server.

Sessions, including uploaded lab reports, live in memory only and are
lost when the server stops.
Provider settings are reloaded when the config file changes.

The server provides:
  - /health            Basic server health check
  - /status            Providers, defaults and session count
  - /api/vocabulary    Autocomplete vocabularies
  - /api/sessions      Session lifecycle, extraction and plan generation

Examples:
  careplan serve                    # Start on the configured port (default 8080)
  careplan serve --port 3000        # Start on custom port
  careplan serve --host 0.0.0.0     # Bind to all interfaces`,
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx := cmd.Context()
		logger := newLogger()

		h, cfgMgr, err := loadConfig()
		if err != nil {
			return err
		}
		cfg := cfgMgr.Get()

		vocabulary, err := loadVocabulary(cfg, h, logger)
		if err != nil {
			return err
		}

		host, port := cfg.Server.Host, cfg.Server.Port
		if cmd.Flags().Changed("host") {
			host = serveHost
		}
		if cmd.Flags().Changed("port") {
			port = servePort
		}

		if file := cfgMgr.ConfigFile(); file != "" {
			logger.Info("using config file", "path", file)
			cfgMgr.WatchConfig()
		}

		srv, err := server.New(server.Config{
			Host:          host,
			Port:          port,
			ConfigManager: cfgMgr,
			Home:          h,
			Vocabulary:    vocabulary,
			Logger:        logger,
		})
		if err != nil {
			return err
		}

		// Start server (blocks until shutdown)
		return srv.Start(ctx)
	},
}

func init() {
	serveCmd.Flags().StringVar(&serveHost, "host", "127.0.0.1", "Host to bind to (overrides server.host)")
	serveCmd.Flags().StringVar(&servePort, "port", "8080", "Port to listen on (overrides server.port)")

	rootCmd.AddCommand(serveCmd)
}
