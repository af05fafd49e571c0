package main

import (
	"encoding/json"
	"fmt"

	"github.com/spf13/cobra"

	"propcheck/internal/schema"
)

// NewSchemaCmd creates the schema command.
func NewSchemaCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "schema",
		Short: "Print the report JSON schema",
		Long: `Print the schema every analysis result is validated against.

--gemini prints the form sent to the model as responseSchema.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			var v interface{} = schema.Report()
			if gemini, _ := cmd.Flags().GetBool("gemini"); gemini {
				g, err := schema.Gemini()
				if err != nil {
					return fmt.Errorf("building gemini schema: %w", err)
				}
				v = g
			}
			enc := json.NewEncoder(cmd.OutOrStdout())
			enc.SetIndent("", "  ")
			return enc.Encode(v)
		},
	}
	cmd.Flags().Bool("gemini", false, "Print the model-facing schema")
	return cmd
}
