package client

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/Navanit-git/genai-advance/core/overview"
	"github.com/Navanit-git/genai-advance/core/parse"
	"github.com/Navanit-git/genai-advance/core/schema"
	"github.com/Navanit-git/genai-advance/internal/utils"
	"github.com/Navanit-git/genai-advance/providers/ai"
	"github.com/Navanit-git/genai-advance/providers/observability"
)

// Mode selects how the schema reaches the model.
type Mode string

const (
	// ModeNative sends the schema as the provider's structured output format.
	ModeNative Mode = "native"
	// ModePrompt appends format instructions to the system prompt.
	ModePrompt Mode = "prompt"
)

// ErrRefused is returned when the model declines to answer.
var ErrRefused = errors.New("model refused to answer")

// defaultRepairPreview bounds the previous output quoted in a repair prompt.
const defaultRepairPreview = 4000

// ExtractionError is returned by RecordClient when no attempt produced a
// valid record. It unwraps to the failure of the last attempt, so
// parse.KindOf and errors.Is work on it directly.
type ExtractionError struct {
	// Attempts is the number of model calls made, re-prompts included.
	Attempts int
	// Outcome is the overview outcome of the last attempt.
	Outcome string
	// Response is the last model response.
	Response *ai.ChatResponse
	Err      error
}

func (e *ExtractionError) Error() string {
	return fmt.Sprintf("structured extraction failed after %d attempt(s): %v", e.Attempts, e.Err)
}

func (e *ExtractionError) Unwrap() error { return e.Err }

// RecordClient extracts schema-conforming records from model output. It asks
// the model for a record, runs the extractor over the answer, and optionally
// re-prompts with the categorized failure until a valid record comes back.
type RecordClient struct {
	client        *Client
	schema        *schema.Schema
	mode          Mode
	yaml          bool
	strict        bool
	schemaName    string
	maxReprompts  int
	repairPreview int
	parseOptions  []parse.Option
}

// RecordOption configures a RecordClient.
type RecordOption func(*RecordClient)

// WithMode selects native or prompt mode. The default is ModeNative.
func WithMode(mode Mode) RecordOption {
	return func(rc *RecordClient) {
		rc.mode = mode
	}
}

// WithYAMLOutput asks for YAML instead of JSON. It implies ModePrompt.
func WithYAMLOutput() RecordOption {
	return func(rc *RecordClient) {
		rc.yaml = true
	}
}

// WithStrictOutput requests strict schema adherence from providers that
// support it.
func WithStrictOutput() RecordOption {
	return func(rc *RecordClient) {
		rc.strict = true
	}
}

// WithSchemaName names the schema for providers that require one.
func WithSchemaName(name string) RecordOption {
	return func(rc *RecordClient) {
		rc.schemaName = name
	}
}

// WithMaxReprompts sets how many repair prompts may follow a failed
// extraction. The default is 0: the first failure is returned.
func WithMaxReprompts(n int) RecordOption {
	return func(rc *RecordClient) {
		rc.maxReprompts = max(n, 0)
	}
}

// WithRepairPreview bounds how much of the previous output a repair prompt
// quotes.
func WithRepairPreview(n int) RecordOption {
	return func(rc *RecordClient) {
		rc.repairPreview = n
	}
}

// WithParseOptions passes options to the extractor.
func WithParseOptions(opts ...parse.Option) RecordOption {
	return func(rc *RecordClient) {
		rc.parseOptions = append(rc.parseOptions, opts...)
	}
}

// NewRecordClient creates a RecordClient that extracts records conforming to s.
func NewRecordClient(base *Client, s *schema.Schema, opts ...RecordOption) (*RecordClient, error) {
	if base == nil {
		return nil, errors.New("base client is required")
	}
	if s == nil {
		return nil, errors.New("schema is required")
	}

	rc := &RecordClient{
		client:        base,
		schema:        s,
		mode:          ModeNative,
		repairPreview: defaultRepairPreview,
	}
	for _, opt := range opts {
		opt(rc)
	}
	if rc.yaml {
		rc.mode = ModePrompt
	}
	if rc.mode != ModeNative && rc.mode != ModePrompt {
		return nil, fmt.Errorf("unknown mode %q", rc.mode)
	}
	return rc, nil
}

// Schema returns the schema records are validated against.
func (rc *RecordClient) Schema() *schema.Schema {
	return rc.schema
}

// Mode returns the mode in effect.
func (rc *RecordClient) Mode() Mode {
	return rc.mode
}

// SendMessage asks the model for a record about prompt. On success Record
// holds the validated record and Data points at it. Provider errors are
// returned as they are; extraction failures come back as *ExtractionError.
func (rc *RecordClient) SendMessage(ctx context.Context, prompt string, opts ...SendMessageOption) (*ai.StructuredChatResponse[map[string]any], error) {
	if prompt == "" {
		return nil, errors.New("prompt cannot be empty")
	}

	observer := rc.client.observer
	providerName := ai.NameOf(rc.client.provider)
	var span observability.Span
	if observer != nil {
		ctx, span = observer.StartSpan(ctx, observability.SpanExtraction,
			observability.String(observability.AttrExtractionMode, string(rc.mode)),
			observability.String(observability.AttrLLMProvider, providerName),
		)
		defer span.End()
	}

	ov := overview.OverviewFromContext(&ctx)
	if ov == nil {
		ov = &overview.Overview{}
		ctx = ov.ToContext(ctx)
	}
	ov.StartExecution()
	defer ov.EndExecution()

	request := rc.initialRequest(prompt, opts)
	total := utils.NewTimer()

	for attempt := 1; ; attempt++ {
		timer := utils.NewTimer()
		response, err := rc.client.Send(ctx, request)
		if err != nil {
			ov.AddAttempt(overview.OutcomeProviderError, err, timer.Stop())
			rc.finish(ctx, span, overview.OutcomeProviderError, total, err)
			return nil, err
		}

		if response.Refusal != "" {
			ov.AddAttempt(overview.OutcomeRefused, nil, timer.Stop())
			err := &ExtractionError{Attempts: attempt, Outcome: overview.OutcomeRefused, Response: response, Err: fmt.Errorf("%w: %s", ErrRefused, response.Refusal)}
			rc.finish(ctx, span, overview.OutcomeRefused, total, err)
			return nil, err
		}

		record, err := rc.extract(response.Content)
		if err == nil {
			ov.AddAttempt(overview.OutcomeSuccess, nil, timer.Stop())
			if span != nil {
				span.AddEvent(observability.EventExtractionSucceeded, observability.Int(observability.AttrExtractionAttempt, attempt))
			}
			rc.finish(ctx, span, overview.OutcomeSuccess, total, nil)
			return &ai.StructuredChatResponse[map[string]any]{
				ChatResponse: *response,
				Data:         &record,
				Record:       record,
			}, nil
		}

		outcome := string(parse.KindOf(err))
		ov.AddAttempt(outcome, err, timer.Stop())
		rc.recordFailure(ctx, span, attempt, response, err)

		if attempt > rc.maxReprompts {
			extractionErr := &ExtractionError{Attempts: attempt, Outcome: outcome, Response: response, Err: err}
			rc.finish(ctx, span, outcome, total, extractionErr)
			return nil, extractionErr
		}

		if span != nil {
			span.AddEvent(observability.EventExtractionRepair, observability.Int(observability.AttrExtractionAttempt, attempt+1))
		}
		request.Messages = append(request.Messages,
			ai.Message{Role: ai.RoleAssistant, Content: response.Content},
			ai.Message{Role: ai.RoleUser, Content: rc.repairPrompt(response.Content, err)},
		)
	}
}

func (rc *RecordClient) initialRequest(prompt string, opts []SendMessageOption) ai.ChatRequest {
	request := rc.client.buildRequest(prompt, opts)

	switch rc.mode {
	case ModeNative:
		request.ResponseFormat = &ai.ResponseFormat{
			OutputSchema: rc.schema,
			Strict:       rc.strict,
			Name:         rc.schemaName,
		}
	case ModePrompt:
		instructions := schema.FormatInstructions(rc.schema)
		if rc.yaml {
			instructions = schema.YAMLFormatInstructions(rc.schema)
		}
		if request.SystemPrompt != "" {
			request.SystemPrompt += "\n\n"
		}
		request.SystemPrompt += instructions
		request.ResponseFormat = nil
	}
	return request
}

func (rc *RecordClient) extract(content string) (map[string]any, error) {
	if rc.yaml {
		return parse.ExtractYAML(content, rc.schema, rc.parseOptions...)
	}
	return parse.Extract(content, rc.schema, rc.parseOptions...)
}

func (rc *RecordClient) repairPrompt(previous string, problem error) string {
	if !rc.yaml {
		return schema.RepairInstructions(rc.schema, previous, problem, rc.repairPreview)
	}
	previous = strings.TrimSpace(previous)
	if rc.repairPreview > 0 {
		previous = utils.TruncateString(previous, rc.repairPreview)
	}
	return fmt.Sprintf("%s\n\nYour previous output:\n%s\n\nProblem:\n%v",
		schema.YAMLFormatInstructions(rc.schema), previous, problem)
}

// recordFailure adds the categorized failure to the span and the log.
func (rc *RecordClient) recordFailure(ctx context.Context, span observability.Span, attempt int, response *ai.ChatResponse, err error) {
	attrs := []observability.Attribute{
		observability.Int(observability.AttrExtractionAttempt, attempt),
		observability.String(observability.AttrExtractionOutcome, string(parse.KindOf(err))),
		observability.Error(err),
	}

	var (
		malformed  *parse.MalformedJSONError
		validation *parse.SchemaValidationError
	)
	switch {
	case errors.As(err, &malformed):
		attrs = append(attrs,
			observability.Int(observability.AttrExtractionOffset, malformed.Offset),
			observability.String(observability.AttrExtractionSpan, utils.TruncateStringDefault(malformed.Span)),
		)
	case errors.As(err, &validation):
		attrs = append(attrs, observability.Strings(observability.AttrExtractionFields, validation.Fields()))
	}
	if response.Truncated() {
		attrs = append(attrs, observability.String(observability.AttrLLMFinishReason, response.FinishReason))
	}

	if span != nil {
		span.AddEvent(observability.EventExtractionFailed, attrs...)
	}
	if rc.client.observer != nil {
		rc.client.observer.Warn(ctx, "structured extraction failed", attrs...)
	}
}

// finish records the extraction metrics and the span status.
func (rc *RecordClient) finish(ctx context.Context, span observability.Span, outcome string, total *utils.Timer, err error) {
	observer := rc.client.observer
	if observer == nil {
		return
	}
	total.Stop()

	observer.Counter(observability.MetricExtractionCount).Add(ctx, 1,
		observability.String(observability.AttrExtractionOutcome, outcome),
		observability.String(observability.AttrExtractionMode, string(rc.mode)),
		observability.String(observability.AttrLLMProvider, ai.NameOf(rc.client.provider)),
	)
	observer.Histogram(observability.MetricExtractionDuration).Record(ctx, total.Milliseconds(),
		observability.String(observability.AttrExtractionOutcome, outcome),
	)

	span.SetAttributes(observability.String(observability.AttrExtractionOutcome, outcome))
	if err != nil {
		span.RecordError(err)
		span.SetStatus(observability.StatusError, outcome)
		return
	}
	span.SetStatus(observability.StatusOK, outcome)
}
