package main

import (
	"errors"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/Navanit-git/genai-advance/core/schema"
)

func newInstructionsCmd(a *app) *cobra.Command {
	var (
		schemaFile string
		asYAML     bool
	)

	cmd := &cobra.Command{
		Use:   "instructions",
		Short: "Print the format instructions for a schema",
		Long: `Print the text that prompt mode appends to the system prompt, asking the
model to answer with a JSON (or YAML) instance of the schema.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			s, err := loadSchema(schemaFile)
			if err != nil {
				return err
			}
			if s == nil {
				return errors.New("--schema is required")
			}

			text := schema.FormatInstructions(s)
			if asYAML {
				text = schema.YAMLFormatInstructions(s)
			}
			_, err = fmt.Fprintln(cmd.OutOrStdout(), text)
			return err
		},
	}

	cmd.Flags().StringVar(&schemaFile, "schema", "", "JSON Schema file (.json, .yaml or .yml)")
	cmd.Flags().BoolVar(&asYAML, "yaml", false, "print the YAML variant")
	return cmd
}
