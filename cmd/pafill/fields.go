package main

import (
	"encoding/json"
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/jackzampolin/pafill/internal/fields"
)

var fieldsCmd = &cobra.Command{
	Use:   "fields FORM_PDF",
	Short: "List the fillable fields in a PA form",
	Long: `List the fillable widget metadata in a PA form as JSON, grouped
by page. Useful for checking whether a form is fillable before running
the full pipeline.`,
	Args: cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		formPDF, err := os.ReadFile(args[0])
		if err != nil {
			return fmt.Errorf("failed to read form: %w", err)
		}

		pm, err := fields.Extract(formPDF)
		if err != nil {
			return err
		}

		out, err := json.MarshalIndent(pm, "", "  ")
		if err != nil {
			return err
		}
		fmt.Println(string(out))
		return nil
	},
}

func init() {
	rootCmd.AddCommand(fieldsCmd)
}
