package main

import (
	"errors"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/jackzampolin/careplan/internal/api"
	"github.com/jackzampolin/careplan/internal/clinical"
	"github.com/jackzampolin/careplan/internal/plan"
	"github.com/jackzampolin/careplan/internal/providers"
	"github.com/jackzampolin/careplan/internal/server"
	"github.com/jackzampolin/careplan/internal/session"
	"github.com/jackzampolin/careplan/internal/vocab"
)

var (
	planName     string
	planSymptoms string
	planHistory  string
	planImage    string
	planLocal    bool
)

// PlanOutput is what the one-shot plan command prints.
type PlanOutput struct {
	Mode          plan.Source        `json:"mode" yaml:"mode"`
	Provider      string             `json:"provider,omitempty" yaml:"provider,omitempty"`
	Model         string             `json:"model,omitempty" yaml:"model,omitempty"`
	ExtractedText string             `json:"extracted_text,omitempty" yaml:"extracted_text,omitempty"`
	Plan          string             `json:"plan,omitempty" yaml:"plan,omitempty"`
	Notice        string             `json:"notice,omitempty" yaml:"notice,omitempty"`
	Error         *session.ErrorView `json:"error,omitempty" yaml:"error,omitempty"`
}

var planCmd = &cobra.Command{
	Use:   "plan",
	Short: "Generate a treatment plan without a server",
	Long: `Run one session from the command line: fill the fields, extract the
lab report text if an image is given, and generate a treatment plan.

Examples:
  careplan plan --name Ana --symptoms fever --local
  careplan plan --symptoms "cough, fatigue" --image report.png
  careplan plan --history diabetes --image labs.jpg -o json`,
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx := cmd.Context()
		logger := newLogger()

		h, cfgMgr, err := loadConfig()
		if err != nil {
			return err
		}
		vocabulary, err := loadVocabulary(cfgMgr.Get(), h, logger)
		if err != nil {
			return err
		}

		registry := providers.NewRegistry()
		registry.SetLogger(logger)
		registry.Reload(cfgMgr.Get().ToProviderRegistryConfig())

		sc := server.SessionFactory(cfgMgr, registry, vocabulary, logger)()
		if planLocal {
			sc.Planner = nil
		}
		sc.Context = ctx
		c := session.New(sc)

		for field, text := range map[vocab.Field]string{
			vocab.FieldPatientName:    planName,
			vocab.FieldSymptoms:       planSymptoms,
			vocab.FieldMedicalHistory: planHistory,
		} {
			if _, err := c.EditField(field, text); err != nil {
				return err
			}
		}

		out := PlanOutput{Mode: c.Mode()}

		if planImage != "" {
			img, err := clinical.ImageFromFile(planImage, "")
			if err != nil {
				return err
			}
			if _, err := c.SelectImage(img); err != nil {
				return err
			}
			done, err := c.ExtractText()
			if err != nil {
				return err
			}
			snap := <-done
			out.ExtractedText = snap.ExtractedText
			if snap.Error != nil {
				logger.Warn("lab report extraction failed, continuing without it", "kind", snap.Error.Kind)
				out.Error = snap.Error
			}
		}

		done, err := c.GeneratePlan()
		if err != nil {
			var opErr *clinical.OperationError
			if errors.As(err, &opErr) {
				return errors.New(opErr.Message)
			}
			return err
		}
		snap := <-done

		out.Notice = snap.Notice
		if snap.Plan != nil {
			out.Plan = snap.Plan.Text
			out.Provider = snap.Plan.Provider
			out.Model = snap.Plan.Model
		}
		if snap.Error != nil {
			out.Error = snap.Error
		}

		if err := api.Output(out); err != nil {
			return err
		}
		if snap.State == session.StateFailed && snap.Error != nil {
			return fmt.Errorf("%s", snap.Error.Message)
		}
		return nil
	},
}

func init() {
	planCmd.Flags().StringVar(&planName, "name", "", "Patient name")
	planCmd.Flags().StringVar(&planSymptoms, "symptoms", "", "Symptoms")
	planCmd.Flags().StringVar(&planHistory, "history", "", "Medical history")
	planCmd.Flags().StringVar(&planImage, "image", "", "Lab report image (JPEG or PNG)")
	planCmd.Flags().BoolVar(&planLocal, "local", false, "Use the built-in suggestion table instead of an LLM")

	rootCmd.AddCommand(planCmd)
}
