package main

import (
	"errors"
	"fmt"
	"io"
	"strings"
	"time"

	"github.com/prometheus/common/expfmt"
	"github.com/spf13/cobra"

	"github.com/Navanit-git/genai-advance/core/client"
	"github.com/Navanit-git/genai-advance/core/client/middleware"
	"github.com/Navanit-git/genai-advance/core/overview"
	"github.com/Navanit-git/genai-advance/core/parse"
	"github.com/Navanit-git/genai-advance/core/schema"
	"github.com/Navanit-git/genai-advance/providers/observability"
	"github.com/Navanit-git/genai-advance/providers/observability/promobs"
	slogobs "github.com/Navanit-git/genai-advance/providers/observability/slog"
)

const defaultSystemPrompt = "Extract the requested information from the user's text. Use null for anything that is not stated."

type askOptions struct {
	schemaFile string
	provider   string
	model      string
	mode       string
	yaml       bool
	strict     bool
	reprompts  int
	stats      bool
	metrics    bool
	compact    bool
}

func newAskCmd(a *app) *cobra.Command {
	var o askOptions

	cmd := &cobra.Command{
		Use:   "ask PROMPT...",
		Short: "Ask a provider for a record about PROMPT",
		Long: `Send PROMPT ("-" reads stdin) to an LLM provider asking for a record that
conforms to the schema, extract it from the answer and print it as JSON.

The schema travels as the provider's native structured output format, or as
format instructions in the system prompt with --mode prompt. Failed
extractions are re-prompted with the categorized error up to --reprompts
times. Exit codes match the extract command.`,
		Args: cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			s, err := loadSchema(o.schemaFile)
			if err != nil {
				return err
			}
			if s == nil {
				return errors.New("--schema is required")
			}
			prompt, err := promptFrom(cmd, args)
			if err != nil {
				return err
			}

			records, metrics, err := a.recordClient(cmd, o, s)
			if err != nil {
				return err
			}

			ov := &overview.Overview{}
			ctx := ov.ToContext(cmd.Context())
			resp, err := records.SendMessage(ctx, prompt)

			if o.stats {
				writeStats(cmd.ErrOrStderr(), ov)
			}
			if metrics != nil {
				if err := writeMetrics(cmd.ErrOrStderr(), metrics); err != nil {
					return err
				}
			}

			if err != nil {
				var extractionErr *client.ExtractionError
				if errors.As(err, &extractionErr) && parse.KindOf(err) != parse.KindOther {
					fmt.Fprintf(cmd.ErrOrStderr(), "attempts: %d\n", extractionErr.Attempts)
					return extractionFailure(cmd.ErrOrStderr(), err)
				}
				return err
			}
			return writeJSON(cmd.OutOrStdout(), resp.Record, o.compact)
		},
	}

	cmd.Flags().StringVar(&o.schemaFile, "schema", "", "JSON Schema file (.json, .yaml or .yml)")
	cmd.Flags().StringVar(&o.provider, "provider", "", "provider: groq, gemini or openai (default from config)")
	cmd.Flags().StringVar(&o.model, "model", "", "model name (default from config or the provider)")
	cmd.Flags().StringVar(&o.mode, "mode", "", "native or prompt (default from config)")
	cmd.Flags().BoolVar(&o.yaml, "yaml", false, "ask for YAML instead of JSON; implies --mode prompt")
	cmd.Flags().BoolVar(&o.strict, "strict", false, "request strict schema adherence")
	cmd.Flags().IntVar(&o.reprompts, "reprompts", -1, "maximum repair prompts after a failed extraction (default from config)")
	cmd.Flags().BoolVar(&o.stats, "stats", false, "print attempts, tokens and cost to stderr")
	cmd.Flags().BoolVar(&o.metrics, "metrics", false, "print Prometheus metrics to stderr")
	cmd.Flags().BoolVar(&o.compact, "compact", false, "print compact JSON")
	_ = cmd.MarkFlagRequired("schema")
	return cmd
}

// recordClient builds the provider, the middleware chain and the record
// client from the configuration and the flags. The returned promobs
// observer is nil unless --metrics is set.
func (a *app) recordClient(cmd *cobra.Command, o askOptions, s *schema.Schema) (*client.RecordClient, *promobs.Observer, error) {
	cfg := a.cfg
	if o.model != "" {
		cfg.Model = o.model
	}
	providerName := o.provider
	if providerName == "" {
		providerName = cfg.Provider
	}

	provider, err := cfg.NewProvider(providerName)
	if err != nil {
		return nil, nil, err
	}

	var (
		observer observability.Provider = slogobs.New(a.logger)
		metrics  *promobs.Observer
	)
	if o.metrics {
		metrics = promobs.New(observer)
		observer = metrics
	}

	systemPrompt := cfg.SystemPrompt
	if systemPrompt == "" {
		systemPrompt = defaultSystemPrompt
	}
	opts := []func(*client.ClientOptions){
		client.WithSystemPrompt(systemPrompt),
		client.WithObserver(observer),
		client.WithMiddleware(a.middlewares()...),
	}
	model := cfg.ModelFor(providerName)
	if model == "" {
		if d, ok := provider.(interface{ DefaultModel() string }); ok {
			model = d.DefaultModel()
		}
	}
	if price, ok := cfg.CostTable().Lookup(model); ok {
		opts = append(opts, client.WithModelCost(price))
	}

	base, err := client.New(provider, opts...)
	if err != nil {
		return nil, nil, err
	}

	mode := cfg.Extraction.Mode
	if o.mode != "" {
		mode = o.mode
	}
	reprompts := cfg.Extraction.MaxReprompts
	if o.reprompts >= 0 {
		reprompts = o.reprompts
	}

	recordOpts := []client.RecordOption{
		client.WithMode(client.Mode(mode)),
		client.WithMaxReprompts(reprompts),
		client.WithParseOptions(extractOptions{
			repair:      cfg.Extraction.Repair,
			strictTypes: cfg.Extraction.StrictTypes,
			unwrap:      cfg.Extraction.Unwrap,
		}.parseOptions()...),
	}
	if o.yaml {
		recordOpts = append(recordOpts, client.WithYAMLOutput())
	}
	if o.strict || cfg.Extraction.Strict {
		recordOpts = append(recordOpts, client.WithStrictOutput())
	}

	records, err := client.NewRecordClient(base, s, recordOpts...)
	if err != nil {
		return nil, nil, err
	}
	return records, metrics, nil
}

// middlewares builds the configured chain: timeout outermost so it bounds
// every retry, then retry, then request logging.
func (a *app) middlewares() []client.Middleware {
	cfg := a.cfg
	var chain []client.Middleware
	if cfg.Timeout > 0 {
		chain = append(chain, middleware.NewTimeoutMiddleware(cfg.Timeout))
	}
	if cfg.Retry.MaxRetries > 0 {
		chain = append(chain, middleware.NewRetryMiddleware(middleware.RetryConfig{
			MaxRetries:     cfg.Retry.MaxRetries,
			InitialBackoff: cfg.Retry.InitialBackoff,
			MaxBackoff:     cfg.Retry.MaxBackoff,
		}))
	}
	if level, ok := middleware.ParseLogLevel(strings.ToLower(cfg.Log.Requests)); ok {
		chain = append(chain, middleware.NewLoggingMiddleware(a.logger, level))
	}
	return chain
}

func writeStats(w io.Writer, ov *overview.Overview) {
	fmt.Fprintf(w, "attempts: %d (re-prompts: %d)\n", len(ov.Attempts), ov.Reprompts())
	for _, attempt := range ov.Attempts {
		fmt.Fprintf(w, "  #%d %s in %s\n", attempt.Number, attempt.Outcome, attempt.Duration.Round(time.Millisecond))
	}
	fmt.Fprintf(w, "tokens: %d prompt, %d completion, %d total\n",
		ov.TotalUsage.PromptTokens, ov.TotalUsage.CompletionTokens, ov.TotalUsage.TotalTokens)
	if summary := ov.CostSummary(); summary.TotalCost > 0 {
		fmt.Fprintf(w, "cost: $%.6f %s\n", summary.TotalCost, summary.Currency)
	}
	fmt.Fprintf(w, "duration: %s\n", ov.ExecutionDuration().Round(time.Millisecond))
}

func writeMetrics(w io.Writer, metrics *promobs.Observer) error {
	families, err := metrics.Registry().Gather()
	if err != nil {
		return fmt.Errorf("failed to gather metrics: %w", err)
	}
	for _, mf := range families {
		if _, err := expfmt.MetricFamilyToText(w, mf); err != nil {
			return fmt.Errorf("failed to write metrics: %w", err)
		}
	}
	return nil
}
