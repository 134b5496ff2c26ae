package main

import (
	"fmt"
	"io"
	"log/slog"
	"os"
	"strings"

	"github.com/spf13/cobra"

	"github.com/Navanit-git/genai-advance/internal/config"
	slogobs "github.com/Navanit-git/genai-advance/providers/observability/slog"
)

// version is set at build time with -ldflags "-X main.version=...".
var version = "dev"

// app holds what every subcommand needs once the root has run.
type app struct {
	cfgFile  string
	logLevel string

	cfg    *config.Config
	logger *slog.Logger
}

func newRootCmd() *cobra.Command {
	a := &app{}

	rootCmd := &cobra.Command{
		Use:   "genai",
		Short: "Extract schema-conforming records from LLM output",
		Long: `genai turns free-form model output into records that conform to a JSON Schema.

It locates the JSON object in the text, parses it, validates it against the
schema and reports one of three failures: no JSON, malformed JSON, or a schema
violation. The ask command sends a prompt to a provider first and can re-prompt
the model with the categorized failure.`,
		Version:       version,
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			return a.init(cmd.ErrOrStderr())
		},
	}

	rootCmd.PersistentFlags().StringVar(
		&a.cfgFile, "config", "", "config file (default: ./genai.yaml or ~/.genai/genai.yaml)",
	)
	rootCmd.PersistentFlags().StringVar(
		&a.logLevel, "log-level", "", "log level: trace, debug, info, warn or error (overrides the config)",
	)

	rootCmd.AddCommand(
		newExtractCmd(a),
		newAskCmd(a),
		newInstructionsCmd(a),
	)
	return rootCmd
}

// init loads the configuration and builds the logger.
func (a *app) init(stderr io.Writer) error {
	cfg, err := config.Load(a.cfgFile)
	if err != nil {
		return err
	}
	if a.logLevel != "" {
		cfg.Log.Level = a.logLevel
	}
	a.cfg = cfg
	a.logger = slogobs.NewLogger(stderr, slogobs.ParseLogLevel(cfg.Log.Level), cfg.Log.JSON)
	return nil
}

// readInput returns the contents of the named file, or stdin when name is
// empty or "-".
func readInput(cmd *cobra.Command, name string) (string, error) {
	if name == "" || name == "-" {
		data, err := io.ReadAll(cmd.InOrStdin())
		if err != nil {
			return "", fmt.Errorf("failed to read stdin: %w", err)
		}
		return string(data), nil
	}
	data, err := os.ReadFile(name)
	if err != nil {
		return "", fmt.Errorf("failed to read input: %w", err)
	}
	return string(data), nil
}

// promptFrom joins the positional arguments, reading stdin for "-".
func promptFrom(cmd *cobra.Command, args []string) (string, error) {
	if len(args) == 1 && args[0] == "-" {
		return readInput(cmd, "-")
	}
	prompt := strings.TrimSpace(strings.Join(args, " "))
	if prompt == "" {
		return "", fmt.Errorf("a prompt is required")
	}
	return prompt, nil
}
