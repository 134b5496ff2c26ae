package main

import (
	"encoding/json"
	"fmt"
	"io"

	"github.com/spf13/cobra"

	"github.com/Navanit-git/genai-advance/core/parse"
)

type extractOptions struct {
	schemaFile  string
	yaml        bool
	all         bool
	repair      bool
	strictTypes bool
	unwrap      bool
	compact     bool
}

func (o extractOptions) parseOptions() []parse.Option {
	var opts []parse.Option
	if o.repair {
		opts = append(opts, parse.WithRepair())
	}
	if o.strictTypes {
		opts = append(opts, parse.WithStrictTypes())
	}
	if o.unwrap {
		opts = append(opts, parse.WithSchemaUnwrap())
	}
	return opts
}

func newExtractCmd(a *app) *cobra.Command {
	var o extractOptions

	cmd := &cobra.Command{
		Use:   "extract [INPUT]",
		Short: "Extract a record from model output",
		Long: `Extract the JSON object from a file of model output (stdin when INPUT is
omitted or "-"), validate it against the schema and print the record as JSON.

On failure the category and its details are printed to stderr and the exit
code is 2 when there is no JSON, 3 when it is malformed and 4 when it does not
match the schema.`,
		Args: cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			s, err := loadSchema(o.schemaFile)
			if err != nil {
				return err
			}
			var name string
			if len(args) == 1 {
				name = args[0]
			}
			raw, err := readInput(cmd, name)
			if err != nil {
				return err
			}

			var result any
			switch {
			case o.yaml:
				result, err = parse.ExtractYAML(raw, s, o.parseOptions()...)
			case o.all:
				result, err = parse.ExtractAll(raw, s, o.parseOptions()...)
			default:
				result, err = parse.Extract(raw, s, o.parseOptions()...)
			}
			if err != nil {
				a.logger.DebugContext(cmd.Context(), "extraction failed",
					"outcome", string(parse.KindOf(err)),
					"error", err.Error(),
				)
				return extractionFailure(cmd.ErrOrStderr(), err)
			}
			return writeJSON(cmd.OutOrStdout(), result, o.compact)
		},
	}

	cmd.Flags().StringVar(&o.schemaFile, "schema", "", "JSON Schema file (.json, .yaml or .yml); any object is accepted without one")
	cmd.Flags().BoolVar(&o.yaml, "yaml", false, "the output is YAML instead of JSON")
	cmd.Flags().BoolVar(&o.all, "all", false, "extract every top-level object and print a JSON array")
	cmd.Flags().BoolVar(&o.repair, "repair", false, "repair malformed JSON before validating")
	cmd.Flags().BoolVar(&o.strictTypes, "strict", false, "disable lax type coercion such as \"42\" to 42")
	cmd.Flags().BoolVar(&o.unwrap, "unwrap", false, "unwrap {\"type\", \"value\"} envelopes")
	cmd.Flags().BoolVar(&o.compact, "compact", false, "print compact JSON")
	cmd.MarkFlagsMutuallyExclusive("yaml", "all")
	return cmd
}

func writeJSON(w io.Writer, v any, compact bool) error {
	enc := json.NewEncoder(w)
	if !compact {
		enc.SetIndent("", "  ")
	}
	if err := enc.Encode(v); err != nil {
		return fmt.Errorf("failed to write result: %w", err)
	}
	return nil
}
