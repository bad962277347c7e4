package main

import (
	"errors"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"

	"github.com/spf13/cobra"

	"github.com/jackzampolin/pafill/internal/config"
	"github.com/jackzampolin/pafill/internal/inference"
	"github.com/jackzampolin/pafill/internal/pipeline"
)

var (
	fillOutput string
	fillLock   bool
)

var fillCmd = &cobra.Command{
	Use:   "fill FORM_PDF REFERRAL_PDF",
	Short: "Fill a PA form from a referral package",
	Long: `Fill a prior-authorization form from a referral package.

Reads the fillable FORM_PDF and the patient's REFERRAL_PDF, answers the
form's questions from the referral content, and writes the filled form
to the output path. Fields the referral does not support are left blank.

Examples:
  pafill fill pa_form.pdf referral.pdf
  pafill fill pa_form.pdf referral.pdf -o filled.pdf --lock`,
	Args: cobra.ExactArgs(2),
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx := cmd.Context()

		logger := slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{
			Level: slog.LevelInfo,
		}))

		formPDF, err := os.ReadFile(args[0])
		if err != nil {
			return fmt.Errorf("failed to read form: %w", err)
		}
		referralPDF, err := os.ReadFile(args[1])
		if err != nil {
			return fmt.Errorf("failed to read referral package: %w", err)
		}

		cm, err := config.NewManager(cfgFile)
		if err != nil {
			return err
		}
		cfg := cm.Get()

		icfg := cfg.InferenceConfig()
		icfg.Logger = logger
		querier, err := inference.New(ctx, icfg)
		if err != nil {
			if errors.Is(err, inference.ErrMissingAPIKey) {
				return errors.New("no API key configured: set GEMINI_API_KEY or run 'pafill init'")
			}
			return err
		}

		filler := pipeline.NewFiller(pipeline.FillerConfig{
			Querier:       querier,
			Logger:        logger,
			SkipSentinels: cfg.Fill.SkipSentinels,
		})

		res, err := filler.Run(ctx, formPDF, referralPDF, pipeline.Options{
			Lock: fillLock || cfg.Fill.LockOutput,
		})
		if err != nil {
			if errors.Is(err, pipeline.ErrNoFields) {
				return fmt.Errorf("%s has no fillable fields; is it a fillable PDF?", args[0])
			}
			return err
		}

		output := res.Filled
		outPath := fillOutput
		if res.Locked != nil {
			output = res.Locked
		}
		if outPath == "" {
			outPath = defaultOutputPath(args[0])
		}
		if err := os.WriteFile(outPath, output, 0o644); err != nil {
			return fmt.Errorf("failed to write output: %w", err)
		}

		fmt.Printf("Wrote %s (%d/%d fields filled", outPath, res.Stats.Filled, res.Extracted)
		if len(res.Stats.Missing) > 0 {
			fmt.Printf(", %d unanswered", len(res.Stats.Missing))
		}
		fmt.Println(")")
		return nil
	},
}

// defaultOutputPath derives "filled_<name>.pdf" next to the input form.
func defaultOutputPath(formPath string) string {
	return filepath.Join(filepath.Dir(formPath), "filled_"+filepath.Base(formPath))
}

func init() {
	fillCmd.Flags().StringVarP(&fillOutput, "output", "o", "", "output path (default: filled_<form>.pdf)")
	fillCmd.Flags().BoolVar(&fillLock, "lock", false, "make the output form non-editable")

	rootCmd.AddCommand(fillCmd)
}
