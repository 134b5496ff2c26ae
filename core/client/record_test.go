package client

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Navanit-git/genai-advance/core/overview"
	"github.com/Navanit-git/genai-advance/core/parse"
	"github.com/Navanit-git/genai-advance/core/schema"
	"github.com/Navanit-git/genai-advance/providers/ai"
	"github.com/Navanit-git/genai-advance/providers/observability"
)

const validContact = "Sure!\n```json\n{\"name\": \"Ram\", \"email\": \"ram@example.com\"}\n```"

func contactSchema() *schema.Schema {
	return schema.Object(map[string]*schema.Schema{
		"name":  schema.String(),
		"email": schema.String(),
	}, "name")
}

func newRecordClient(t *testing.T, provider *mockProvider, obs observability.Provider, opts ...RecordOption) *RecordClient {
	t.Helper()
	clientOpts := []func(*ClientOptions){WithSystemPrompt("Extract the contact.")}
	if obs != nil {
		clientOpts = append(clientOpts, WithObserver(obs))
	}
	base, err := New(provider, clientOpts...)
	require.NoError(t, err)
	rc, err := NewRecordClient(base, contactSchema(), opts...)
	require.NoError(t, err)
	return rc
}

func TestNewRecordClient_Validation(t *testing.T) {
	base, err := New(&mockProvider{})
	require.NoError(t, err)

	_, err = NewRecordClient(nil, contactSchema())
	assert.Error(t, err)
	_, err = NewRecordClient(base, nil)
	assert.Error(t, err)
	_, err = NewRecordClient(base, contactSchema(), WithMode("telepathy"))
	assert.ErrorContains(t, err, "unknown mode")

	rc, err := NewRecordClient(base, contactSchema(), WithMode(ModeNative), WithYAMLOutput())
	require.NoError(t, err)
	assert.Equal(t, ModePrompt, rc.Mode(), "YAML output forces prompt mode")
}

func TestRecordClient_NativeMode(t *testing.T) {
	provider := &mockProvider{replies: []*ai.ChatResponse{reply(validContact)}}
	obs := newRecordingObserver()
	rc := newRecordClient(t, provider, obs, WithStrictOutput(), WithSchemaName("contact"))

	resp, err := rc.SendMessage(context.Background(), "Ram, ram@example.com")
	require.NoError(t, err)

	assert.Equal(t, map[string]any{"name": "Ram", "email": "ram@example.com"}, resp.Record)
	require.NotNil(t, resp.Data)
	assert.Equal(t, "Ram", (*resp.Data)["name"])
	assert.Equal(t, validContact, resp.Content)

	req := provider.requests[0]
	require.NotNil(t, req.ResponseFormat)
	assert.Same(t, rc.Schema(), req.ResponseFormat.OutputSchema)
	assert.True(t, req.ResponseFormat.Strict)
	assert.Equal(t, "contact", req.ResponseFormat.Name)
	assert.Equal(t, "Extract the contact.", req.SystemPrompt)

	assert.Equal(t, int64(1), obs.values[observability.MetricExtractionCount])
	assert.Equal(t, overview.OutcomeSuccess, obs.label(observability.MetricExtractionCount, 0, observability.AttrExtractionOutcome))
	assert.Equal(t, "native", obs.label(observability.MetricExtractionCount, 0, observability.AttrExtractionMode))
	assert.Equal(t, "mock", obs.label(observability.MetricExtractionCount, 0, observability.AttrLLMProvider))
	assert.Equal(t, 1, obs.records[observability.MetricExtractionDuration])

	span := obs.span(observability.SpanExtraction)
	require.NotNil(t, span)
	assert.True(t, span.ended)
	assert.Equal(t, observability.StatusOK, span.status)
	assert.Equal(t, []string{observability.EventExtractionSucceeded}, span.events)
}

func TestRecordClient_PromptMode(t *testing.T) {
	provider := &mockProvider{replies: []*ai.ChatResponse{reply(validContact)}}
	rc := newRecordClient(t, provider, nil, WithMode(ModePrompt))

	_, err := rc.SendMessage(context.Background(), "Ram")
	require.NoError(t, err)

	req := provider.requests[0]
	assert.Nil(t, req.ResponseFormat)
	assert.Contains(t, req.SystemPrompt, "Extract the contact.\n\nThe output should be formatted as a JSON instance")
	assert.Contains(t, req.SystemPrompt, `"email"`)
}

func TestRecordClient_RepromptRecovers(t *testing.T) {
	provider := &mockProvider{replies: []*ai.ChatResponse{
		reply(`{"name": "Ram", "email": `),
		reply(validContact),
	}}
	obs := newRecordingObserver()
	rc := newRecordClient(t, provider, obs, WithMaxReprompts(2))

	ov := &overview.Overview{}
	ctx := ov.ToContext(context.Background())
	resp, err := rc.SendMessage(ctx, "Ram, ram@example.com")
	require.NoError(t, err)
	assert.Equal(t, "Ram", resp.Record["name"])

	require.Equal(t, 2, provider.calls())
	repair := provider.requests[1]
	require.Len(t, repair.Messages, 3)
	assert.Equal(t, ai.RoleAssistant, repair.Messages[1].Role)
	assert.Equal(t, `{"name": "Ram", "email": `, repair.Messages[1].Content)
	assert.Equal(t, ai.RoleUser, repair.Messages[2].Role)
	assert.Contains(t, repair.Messages[2].Content, "Your previous output:")
	assert.Contains(t, repair.Messages[2].Content, "malformed JSON")
	assert.NotNil(t, repair.ResponseFormat, "re-prompts keep the native format")

	require.Len(t, ov.Attempts, 2)
	assert.Equal(t, overview.OutcomeMalformedJSON, ov.Attempts[0].Outcome)
	assert.Equal(t, overview.OutcomeSuccess, ov.Attempts[1].Outcome)
	assert.Equal(t, 1, ov.Reprompts())
	assert.Equal(t, 300, ov.TotalUsage.TotalTokens)
	assert.False(t, ov.ExecutionEndTime.IsZero())

	span := obs.span(observability.SpanExtraction)
	require.NotNil(t, span)
	assert.Equal(t, []string{
		observability.EventExtractionFailed,
		observability.EventExtractionRepair,
		observability.EventExtractionSucceeded,
	}, span.events)
	assert.Contains(t, obs.logs, "structured extraction failed")
}

func TestRecordClient_FailureCategories(t *testing.T) {
	tests := []struct {
		name    string
		content string
		kind    parse.Kind
		check   func(t *testing.T, err error)
	}{
		{
			name:    "no json",
			content: "I could not find any contact details.",
			kind:    parse.KindNoJSON,
			check: func(t *testing.T, err error) {
				assert.ErrorIs(t, err, parse.ErrNoJSONFound)
			},
		},
		{
			name:    "malformed",
			content: `{"name": "Ram" "email": "x"}`,
			kind:    parse.KindMalformedJSON,
			check: func(t *testing.T, err error) {
				var malformed *parse.MalformedJSONError
				require.ErrorAs(t, err, &malformed)
				assert.Equal(t, 1, malformed.Line)
			},
		},
		{
			name:    "schema validation",
			content: `{"email": "ram@example.com"}`,
			kind:    parse.KindSchemaValidation,
			check: func(t *testing.T, err error) {
				var validation *parse.SchemaValidationError
				require.ErrorAs(t, err, &validation)
				assert.Equal(t, []string{"name"}, validation.Fields())
			},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			provider := &mockProvider{replies: []*ai.ChatResponse{reply(tt.content)}}
			obs := newRecordingObserver()
			rc := newRecordClient(t, provider, obs, WithMaxReprompts(1))

			_, err := rc.SendMessage(context.Background(), "x")
			require.Error(t, err)

			var extractionErr *ExtractionError
			require.ErrorAs(t, err, &extractionErr)
			assert.Equal(t, 2, extractionErr.Attempts)
			assert.Equal(t, string(tt.kind), extractionErr.Outcome)
			assert.Equal(t, tt.kind, parse.KindOf(err))
			tt.check(t, err)

			assert.Equal(t, 2, provider.calls())
			assert.Equal(t, string(tt.kind), obs.label(observability.MetricExtractionCount, 0, observability.AttrExtractionOutcome))
			span := obs.span(observability.SpanExtraction)
			require.NotNil(t, span)
			assert.Equal(t, observability.StatusError, span.status)
		})
	}
}

func TestRecordClient_NoRepromptByDefault(t *testing.T) {
	provider := &mockProvider{replies: []*ai.ChatResponse{reply("nothing here")}}
	rc := newRecordClient(t, provider, nil)

	_, err := rc.SendMessage(context.Background(), "x")
	assert.ErrorIs(t, err, parse.ErrNoJSONFound)
	assert.Equal(t, 1, provider.calls())
}

func TestRecordClient_ProviderError(t *testing.T) {
	providerErr := &ai.APIError{StatusCode: 400, Message: "bad request"}
	provider := &mockProvider{err: providerErr}
	obs := newRecordingObserver()
	rc := newRecordClient(t, provider, obs, WithMaxReprompts(3))

	_, err := rc.SendMessage(context.Background(), "x")
	assert.ErrorIs(t, err, providerErr)
	var extractionErr *ExtractionError
	assert.False(t, errors.As(err, &extractionErr))
	assert.Equal(t, 1, provider.calls(), "provider errors are not re-prompted")
	assert.Equal(t, overview.OutcomeProviderError, obs.label(observability.MetricExtractionCount, 0, observability.AttrExtractionOutcome))
}

func TestRecordClient_Refusal(t *testing.T) {
	refused := reply("")
	refused.Refusal = "I can't help with that."
	rc := newRecordClient(t, &mockProvider{replies: []*ai.ChatResponse{refused}}, nil, WithMaxReprompts(2))

	_, err := rc.SendMessage(context.Background(), "x")
	assert.ErrorIs(t, err, ErrRefused)
	var extractionErr *ExtractionError
	require.ErrorAs(t, err, &extractionErr)
	assert.Equal(t, overview.OutcomeRefused, extractionErr.Outcome)
}

func TestRecordClient_YAMLOutput(t *testing.T) {
	provider := &mockProvider{replies: []*ai.ChatResponse{
		reply("```yaml\nname: [Ram\n```"),
		reply("```yaml\nname: Ram\nemail: ram@example.com\n```"),
	}}
	rc := newRecordClient(t, provider, nil, WithYAMLOutput(), WithMaxReprompts(1))

	resp, err := rc.SendMessage(context.Background(), "x")
	require.NoError(t, err)
	assert.Equal(t, "ram@example.com", resp.Record["email"])

	assert.Contains(t, provider.requests[0].SystemPrompt, "YAML instance")
	repair := provider.requests[1].Messages[2].Content
	assert.Contains(t, repair, "YAML instance")
	assert.Contains(t, repair, "malformed YAML")
}

func TestRecordClient_EmptyPrompt(t *testing.T) {
	rc := newRecordClient(t, &mockProvider{}, nil)
	_, err := rc.SendMessage(context.Background(), "")
	assert.Error(t, err)
}
