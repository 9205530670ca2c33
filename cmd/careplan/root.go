package main

import (
	"github.com/joho/godotenv"
	"github.com/spf13/cobra"

	"github.com/jackzampolin/careplan/internal/api"
	"github.com/jackzampolin/careplan/version"
)

var (
	cfgFile      string
	homeDir      string
	outputFormat string
	logLevel     string
)

var rootCmd = &cobra.Command{
	Use:   "careplan",
	Short: "Treatment plan assistant with lab report OCR",
	Long: `careplan collects a patient's symptoms, medical history and an optional
lab report image, extracts the report text with OCR, and asks a chat
completion service for a short treatment plan.

Without an inference provider it answers from a built-in symptom table.

  careplan serve     # Run the HTTP API
  careplan plan      # One-shot plan from the command line
  careplan api ...   # Drive a running server`,
	Version:       version.GitRelease,
	SilenceUsage:  true,
	SilenceErrors: false,
}

func init() {
	rootCmd.PersistentFlags().StringVar(
		&cfgFile, "config", "", "config file (default: ./config.yaml or ~/.careplan/config.yaml)",
	)
	rootCmd.PersistentFlags().StringVar(
		&homeDir, "home", "", "careplan home directory (default: ~/.careplan)",
	)
	rootCmd.PersistentFlags().StringVarP(
		&outputFormat, "output", "o", "yaml", "output format: yaml or json",
	)
	rootCmd.PersistentFlags().StringVar(
		&logLevel, "log-level", "info", "log level: debug, info, warn or error",
	)

	rootCmd.PersistentPreRun = func(cmd *cobra.Command, args []string) {
		// A .env file is optional; real environment variables win.
		_ = godotenv.Load()
		api.SetOutputFormat(outputFormat)
	}

	rootCmd.AddCommand(versionCmd)
}
