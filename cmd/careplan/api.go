package main

import (
	"fmt"
	"time"

	"github.com/spf13/cobra"

	"github.com/jackzampolin/careplan/internal/api"
	"github.com/jackzampolin/careplan/internal/server/endpoints"
)

var (
	serverURL   string
	waitTimeout time.Duration
)

// getServerURL returns the server URL at runtime (after flag parsing).
func getServerURL() string {
	return serverURL
}

var waitCmd = &cobra.Command{
	Use:   "wait",
	Short: "Wait until the server answers its health check",
	RunE: func(cmd *cobra.Command, args []string) error {
		if err := api.WaitForHealthy(cmd.Context(), getServerURL(), waitTimeout, 500*time.Millisecond); err != nil {
			return err
		}
		fmt.Printf("Server at %s is healthy\n", getServerURL())
		return nil
	},
}

func init() {
	reg := api.NewRegistry()
	endpoints.Register(reg)
	apiCmd := reg.BuildCommands(getServerURL)

	// Persistent so all subcommands inherit it
	apiCmd.PersistentFlags().StringVar(
		&serverURL, "server", "http://localhost:8080", "Server URL",
	)

	waitCmd.Flags().DurationVar(&waitTimeout, "timeout", 30*time.Second, "How long to wait")
	apiCmd.AddCommand(waitCmd)

	rootCmd.AddCommand(apiCmd)
}
