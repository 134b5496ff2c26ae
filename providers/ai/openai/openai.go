package openai

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"os"
	"time"

	openai "github.com/openai/openai-go/v3"
	"github.com/openai/openai-go/v3/option"

	"github.com/Navanit-git/genai-advance/core/schema"
	"github.com/Navanit-git/genai-advance/providers/ai"
	"github.com/Navanit-git/genai-advance/providers/observability"
)

const (
	defaultBaseURL = "https://api.openai.com/v1"
	defaultModel   = "gpt-4o-mini"
	providerName   = "openai"
)

// OpenAIProvider implements ai.Provider for OpenAI-compatible chat
// completion APIs on top of the official SDK.
type OpenAIProvider struct {
	name         string
	apiKey       string
	baseURL      string
	defaultModel string
	client       *http.Client
	capabilities Capabilities
	pinnedCaps   bool
}

// New creates a provider configured from OPENAI_API_KEY and
// OPENAI_API_BASE_URL.
func New() *OpenAIProvider {
	baseURL := os.Getenv("OPENAI_API_BASE_URL")
	if baseURL == "" {
		baseURL = defaultBaseURL
	}
	return &OpenAIProvider{
		name:         providerName,
		apiKey:       os.Getenv("OPENAI_API_KEY"),
		baseURL:      baseURL,
		defaultModel: defaultModel,
		client:       &http.Client{},
		capabilities: detectCapabilities(baseURL),
	}
}

var _ ai.Provider = (*OpenAIProvider)(nil)

// Name returns the provider identifier used in logs and metric labels.
func (p *OpenAIProvider) Name() string {
	return p.name
}

// WithName overrides the provider identifier, for OpenAI-compatible hosts.
func (p *OpenAIProvider) WithName(name string) *OpenAIProvider {
	p.name = name
	return p
}

// WithAPIKey sets the API key for the provider
func (p *OpenAIProvider) WithAPIKey(apiKey string) ai.Provider {
	p.apiKey = apiKey
	return p
}

// WithBaseURL sets the base URL for the API. Capabilities are re-detected
// unless they were set explicitly.
func (p *OpenAIProvider) WithBaseURL(baseURL string) ai.Provider {
	p.baseURL = baseURL
	if !p.pinnedCaps {
		p.capabilities = detectCapabilities(baseURL)
	}
	return p
}

// WithHttpClient sets a custom HTTP client
func (p *OpenAIProvider) WithHttpClient(httpClient *http.Client) ai.Provider {
	p.client = httpClient
	return p
}

// WithDefaultModel sets the model used when a request does not name one.
func (p *OpenAIProvider) WithDefaultModel(model string) *OpenAIProvider {
	p.defaultModel = model
	return p
}

// WithCapabilities overrides the detected capabilities.
func (p *OpenAIProvider) WithCapabilities(caps Capabilities) *OpenAIProvider {
	p.capabilities = caps
	p.pinnedCaps = true
	return p
}

// Capabilities returns the capabilities in effect.
func (p *OpenAIProvider) Capabilities() Capabilities {
	return p.capabilities
}

// DefaultModel returns the model used when a request does not name one.
func (p *OpenAIProvider) DefaultModel() string {
	return p.defaultModel
}

// SendMessage implements the Provider interface
func (p *OpenAIProvider) SendMessage(ctx context.Context, request ai.ChatRequest) (*ai.ChatResponse, error) {
	if p.apiKey == "" {
		return nil, fmt.Errorf("%s: API key is not set", p.name)
	}

	params, reqOpts := p.requestFromGeneric(request)
	span := observability.SpanFromContext(ctx)
	if span != nil {
		span.AddEvent(observability.EventLLMRequestStart,
			observability.String(observability.AttrLLMProvider, p.name),
			observability.String(observability.AttrLLMModel, string(params.Model)),
			observability.Int(observability.AttrRequestMessagesCount, len(params.Messages)),
		)
	}

	completion, err := p.sdkClient().Chat.Completions.New(ctx, params, reqOpts...)
	if err != nil {
		return nil, p.mapError(err)
	}
	if len(completion.Choices) == 0 {
		return nil, fmt.Errorf("%s: no choices in response", p.name)
	}

	resp := responseToGeneric(completion)
	if span != nil {
		span.AddEvent(observability.EventLLMRequestEnd,
			observability.String(observability.AttrLLMResponseID, resp.Id),
			observability.String(observability.AttrLLMFinishReason, resp.FinishReason),
		)
	}
	return resp, nil
}

func (p *OpenAIProvider) sdkClient() openai.Client {
	httpClient := p.client
	if httpClient == nil {
		httpClient = http.DefaultClient
	}
	return openai.NewClient(
		option.WithAPIKey(p.apiKey),
		option.WithBaseURL(p.baseURL),
		option.WithHTTPClient(httpClient),
		// Retries belong to the client middleware chain.
		option.WithMaxRetries(0),
	)
}

// requestFromGeneric maps a provider-agnostic request to SDK params. Fields
// the SDK does not model (reasoning_effort as free text, reasoning_format)
// travel as extra JSON request options.
func (p *OpenAIProvider) requestFromGeneric(request ai.ChatRequest) (openai.ChatCompletionNewParams, []option.RequestOption) {
	model := request.Model
	if model == "" {
		model = p.defaultModel
	}

	systemPrompt := request.SystemPrompt
	params := openai.ChatCompletionNewParams{Model: openai.ChatModel(model)}
	var opts []option.RequestOption

	if rf := request.ResponseFormat; rf != nil {
		format, fallback := p.responseFormat(rf)
		params.ResponseFormat = format
		if fallback != "" {
			if systemPrompt != "" {
				systemPrompt += "\n\n"
			}
			systemPrompt += fallback
		}
	}

	if systemPrompt != "" {
		params.Messages = append(params.Messages, openai.SystemMessage(systemPrompt))
	}
	for _, msg := range request.Messages {
		switch msg.Role {
		case ai.RoleSystem:
			params.Messages = append(params.Messages, openai.SystemMessage(msg.Content))
		case ai.RoleAssistant:
			params.Messages = append(params.Messages, openai.AssistantMessage(msg.Content))
		default:
			params.Messages = append(params.Messages, openai.UserMessage(msg.Content))
		}
	}

	if gc := request.GenerationConfig; gc != nil {
		if gc.MaxTokens > 0 {
			params.MaxCompletionTokens = openai.Int(int64(gc.MaxTokens))
		}
		if gc.Temperature > 0 {
			params.Temperature = openai.Float(float64(gc.Temperature))
		}
		if gc.TopP > 0 {
			params.TopP = openai.Float(float64(gc.TopP))
		}
		if gc.FrequencyPenalty != 0 {
			params.FrequencyPenalty = openai.Float(float64(gc.FrequencyPenalty))
		}
		if gc.PresencePenalty != 0 {
			params.PresencePenalty = openai.Float(float64(gc.PresencePenalty))
		}
		if gc.Seed != nil {
			params.Seed = openai.Int(*gc.Seed)
		}
		if gc.ReasoningEffort != "" && p.capabilities.SupportsReasoningEffort {
			opts = append(opts, option.WithJSONSet("reasoning_effort", gc.ReasoningEffort))
		}
		if gc.ReasoningFormat != "" && p.capabilities.SupportsReasoningFormat {
			opts = append(opts, option.WithJSONSet("reasoning_format", gc.ReasoningFormat))
		}
	}

	return params, opts
}

// responseFormat picks the wire response_format. When the endpoint cannot
// take a JSON schema it falls back to JSON mode and returns format
// instructions to append to the system prompt.
func (p *OpenAIProvider) responseFormat(rf *ai.ResponseFormat) (openai.ChatCompletionNewParamsResponseFormatUnion, string) {
	var union openai.ChatCompletionNewParamsResponseFormatUnion

	kind := rf.Type
	if rf.OutputSchema != nil {
		kind = ai.ResponseFormatJSONSchema
	}

	switch kind {
	case ai.ResponseFormatJSONSchema:
		if rf.OutputSchema == nil {
			break
		}
		if !p.capabilities.SupportsStructuredOutputs {
			if p.capabilities.SupportsJSONMode {
				union.OfJSONObject = &openai.ResponseFormatJSONObjectParam{}
			}
			return union, schema.FormatInstructions(rf.OutputSchema)
		}
		strict := rf.Strict && strictCompatible(rf.OutputSchema)
		name := rf.Name
		if name == "" {
			name = "response"
		}
		jsonSchema := openai.ResponseFormatJSONSchemaJSONSchemaParam{
			Name:   name,
			Schema: jsonSchemaFor(rf.OutputSchema, strict),
			Strict: openai.Bool(strict),
		}
		if rf.OutputSchema.Description != "" {
			jsonSchema.Description = openai.String(rf.OutputSchema.Description)
		}
		union.OfJSONSchema = &openai.ResponseFormatJSONSchemaParam{JSONSchema: jsonSchema}
	case ai.ResponseFormatJSONObject:
		if p.capabilities.SupportsJSONMode {
			union.OfJSONObject = &openai.ResponseFormatJSONObjectParam{}
		}
	}
	return union, ""
}

func responseToGeneric(completion *openai.ChatCompletion) *ai.ChatResponse {
	choice := completion.Choices[0]
	resp := &ai.ChatResponse{
		Id:           completion.ID,
		Model:        completion.Model,
		Object:       string(completion.Object),
		Created:      completion.Created,
		Content:      choice.Message.Content,
		FinishReason: string(choice.FinishReason),
		Refusal:      choice.Message.Refusal,
		Reasoning:    extraString(choice.Message.JSON.ExtraFields, "reasoning"),
		Usage: &ai.Usage{
			PromptTokens:     int(completion.Usage.PromptTokens),
			CompletionTokens: int(completion.Usage.CompletionTokens),
			TotalTokens:      int(completion.Usage.TotalTokens),
			ReasoningTokens:  int(completion.Usage.CompletionTokensDetails.ReasoningTokens),
			CachedTokens:     int(completion.Usage.PromptTokensDetails.CachedTokens),
		},
	}
	if resp.Reasoning == "" {
		resp.Reasoning = extraString(choice.Message.JSON.ExtraFields, "reasoning_content")
	}
	return resp
}

// rawField is the subset of the SDK's respjson.Field used here.
type rawField interface {
	Raw() string
}

// extraString decodes a non-standard string field kept by the SDK as raw JSON.
func extraString[F rawField](fields map[string]F, key string) string {
	f, ok := fields[key]
	if !ok {
		return ""
	}
	var s string
	if err := json.Unmarshal([]byte(f.Raw()), &s); err != nil {
		return ""
	}
	return s
}

func (p *OpenAIProvider) mapError(err error) error {
	var apiErr *openai.Error
	if !errors.As(err, &apiErr) {
		return fmt.Errorf("%s: %w", p.name, err)
	}
	mapped := &ai.APIError{
		Provider:   p.name,
		StatusCode: apiErr.StatusCode,
		Message:    apiErr.Message,
	}
	if mapped.Message == "" {
		mapped.Message = http.StatusText(apiErr.StatusCode)
	}
	if apiErr.Response != nil {
		mapped.RetryAfter = ai.ParseRetryAfter(apiErr.Response.Header, time.Now())
	}
	return mapped
}
