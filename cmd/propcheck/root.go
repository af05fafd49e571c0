package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
)

// NewRootCmd creates the root command for propcheck.
func NewRootCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "propcheck",
		Short: "Property document due diligence",
		Long: `propcheck analyzes a property document (PDF, PNG or JPEG) and produces a
due diligence report: title flow, encumbrances, financials, legal clauses
and an overall risk assessment.

The analyzer is configured through PROPCHECK_* environment variables;
the API key is read from PROPCHECK_ANALYZER_API_KEY or GEMINI_API_KEY.`,
		Version:       getVersion(),
		SilenceUsage:  true,
		SilenceErrors: true,
	}

	cmd.PersistentFlags().BoolP("verbose", "v", false, "Enable debug logging")

	cmd.AddCommand(NewAnalyzeCmd())
	cmd.AddCommand(NewSchemaCmd())
	cmd.AddCommand(NewVersionCmd())

	return cmd
}

// Execute runs the root command.
func Execute() {
	if err := NewRootCmd().Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}
