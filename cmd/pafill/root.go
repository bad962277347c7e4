package main

import (
	"github.com/spf13/cobra"

	"github.com/jackzampolin/pafill/version"
)

var cfgFile string

var rootCmd = &cobra.Command{
	Use:   "pafill",
	Short: "Prior-authorization form autofill powered by LLM document analysis",
	Long: `Pafill fills prior-authorization (PA) PDF forms from a patient's
referral package.

The pipeline:
  - Extracts fillable widget metadata from the PA form
  - Annotates each field with the question it asks, per page
  - Answers each question from the referral package
  - Writes the answers back into the form's widgets

Answers the referral package does not support are left blank.`,
	Version: version.GitRelease,
}

func init() {
	rootCmd.PersistentFlags().StringVar(
		&cfgFile, "config", "", "config file (default: ./config.yaml or ~/.pafill/config.yaml)",
	)

	rootCmd.AddCommand(versionCmd)
}
