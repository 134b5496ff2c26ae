package client

import (
	"context"
	"errors"
	"fmt"

	"github.com/Navanit-git/genai-advance/core/cost"
	"github.com/Navanit-git/genai-advance/core/overview"
	"github.com/Navanit-git/genai-advance/core/schema"
	"github.com/Navanit-git/genai-advance/providers/ai"
	"github.com/Navanit-git/genai-advance/providers/observability"
)

// Client sends single-shot chat requests through a middleware chain. It holds
// no conversation state, so one Client can serve concurrent callers.
type Client struct {
	provider         ai.Provider
	systemPrompt     string
	defaultModel     string
	generationConfig *ai.GenerationConfig
	observer         observability.Provider
	modelCost        *cost.ModelCost
	send             SendFunc
}

// ClientOptions holds the configuration applied by New.
type ClientOptions struct {
	// SystemPrompt is sent with every request.
	SystemPrompt string
	// DefaultModel is used when a request does not name one. Empty lets the
	// provider choose.
	DefaultModel string
	// GenerationConfig is the default sampling configuration.
	GenerationConfig *ai.GenerationConfig
	// Observer receives spans, metrics and logs. Nil disables observability.
	Observer observability.Provider
	// ModelCost prices the usage recorded in the request overview.
	ModelCost *cost.ModelCost
	// Middlewares wrap every provider call, first entry outermost.
	Middlewares []Middleware
}

// WithSystemPrompt sets the system prompt sent with every request.
func WithSystemPrompt(prompt string) func(*ClientOptions) {
	return func(o *ClientOptions) {
		o.SystemPrompt = prompt
	}
}

// WithDefaultModel sets the model used when a request does not name one.
func WithDefaultModel(model string) func(*ClientOptions) {
	return func(o *ClientOptions) {
		o.DefaultModel = model
	}
}

// WithGenerationConfig sets the default generation configuration.
func WithGenerationConfig(cfg ai.GenerationConfig) func(*ClientOptions) {
	return func(o *ClientOptions) {
		o.GenerationConfig = &cfg
	}
}

// WithObserver enables tracing, metrics and logging.
func WithObserver(observer observability.Provider) func(*ClientOptions) {
	return func(o *ClientOptions) {
		o.Observer = observer
	}
}

// WithModelCost sets the pricing used for cost tracking.
func WithModelCost(mc cost.ModelCost) func(*ClientOptions) {
	return func(o *ClientOptions) {
		o.ModelCost = &mc
	}
}

// WithMiddleware appends middlewares to the chain.
func WithMiddleware(middlewares ...Middleware) func(*ClientOptions) {
	return func(o *ClientOptions) {
		o.Middlewares = append(o.Middlewares, middlewares...)
	}
}

// New creates a Client for provider. When an observer is configured the
// observability middleware is prepended, so it sees the final outcome after
// retries and timeouts.
func New(provider ai.Provider, opts ...func(*ClientOptions)) (*Client, error) {
	if provider == nil {
		return nil, errors.New("provider is required")
	}

	options := &ClientOptions{}
	for _, opt := range opts {
		opt(options)
	}

	for i, mw := range options.Middlewares {
		if mw == nil {
			return nil, fmt.Errorf("middleware at index %d is nil", i)
		}
	}

	middlewares := options.Middlewares
	if options.Observer != nil {
		middlewares = append([]Middleware{NewObservabilityMiddleware(options.Observer, ai.NameOf(provider), options.DefaultModel)}, middlewares...)
	}

	return &Client{
		provider:         provider,
		systemPrompt:     options.SystemPrompt,
		defaultModel:     options.DefaultModel,
		generationConfig: options.GenerationConfig,
		observer:         options.Observer,
		modelCost:        options.ModelCost,
		send:             buildSendChain(provider, middlewares),
	}, nil
}

// Provider returns the underlying provider.
func (c *Client) Provider() ai.Provider {
	return c.provider
}

// Observer returns the configured observer, or nil.
func (c *Client) Observer() observability.Provider {
	return c.observer
}

// SendMessageOption customizes a single request.
type SendMessageOption func(*sendMessageOptions)

type sendMessageOptions struct {
	model            string
	systemPrompt     *string
	history          []ai.Message
	generationConfig *ai.GenerationConfig
	responseFormat   *ai.ResponseFormat
}

// WithModel overrides the model for one request.
func WithModel(model string) SendMessageOption {
	return func(o *sendMessageOptions) {
		o.model = model
	}
}

// WithRequestSystemPrompt overrides the system prompt for one request.
func WithRequestSystemPrompt(prompt string) SendMessageOption {
	return func(o *sendMessageOptions) {
		o.systemPrompt = &prompt
	}
}

// WithHistory sends messages before the prompt.
func WithHistory(messages ...ai.Message) SendMessageOption {
	return func(o *sendMessageOptions) {
		o.history = append(o.history, messages...)
	}
}

// WithRequestGenerationConfig overrides the generation configuration for one request.
func WithRequestGenerationConfig(cfg ai.GenerationConfig) SendMessageOption {
	return func(o *sendMessageOptions) {
		o.generationConfig = &cfg
	}
}

// WithOutputSchema asks the provider for output that conforms to s.
func WithOutputSchema(s *schema.Schema) SendMessageOption {
	return func(o *sendMessageOptions) {
		if s == nil {
			o.responseFormat = nil
			return
		}
		o.responseFormat = &ai.ResponseFormat{OutputSchema: s}
	}
}

// WithResponseFormat sets the full response format for one request.
func WithResponseFormat(rf ai.ResponseFormat) SendMessageOption {
	return func(o *sendMessageOptions) {
		o.responseFormat = &rf
	}
}

// SendMessage sends prompt as a user message.
func (c *Client) SendMessage(ctx context.Context, prompt string, opts ...SendMessageOption) (*ai.ChatResponse, error) {
	if prompt == "" {
		return nil, errors.New("prompt cannot be empty")
	}
	return c.Send(ctx, c.buildRequest(prompt, opts))
}

// Send runs request through the middleware chain, filling in the client's
// defaults. The request and response are recorded in the overview carried by
// ctx, when there is one.
func (c *Client) Send(ctx context.Context, request ai.ChatRequest) (*ai.ChatResponse, error) {
	if request.Model == "" {
		request.Model = c.defaultModel
	}
	if request.GenerationConfig == nil {
		request.GenerationConfig = c.generationConfig
	}

	ov := overview.OverviewFromContext(&ctx)
	if ov != nil {
		if ov.ModelCost == nil {
			ov.SetModelCost(c.modelCost)
		}
		ov.AddRequest(&request)
	}

	response, err := c.send(ctx, request)
	if err != nil {
		return nil, err
	}
	if response == nil {
		return nil, errors.New("provider returned no response")
	}

	if ov != nil {
		ov.AddResponse(response)
		ov.IncludeUsage(response.Usage)
	}
	return response, nil
}

func (c *Client) buildRequest(prompt string, opts []SendMessageOption) ai.ChatRequest {
	o := &sendMessageOptions{}
	for _, opt := range opts {
		opt(o)
	}

	request := ai.ChatRequest{
		Model:            o.model,
		SystemPrompt:     c.systemPrompt,
		GenerationConfig: o.generationConfig,
		ResponseFormat:   o.responseFormat,
	}
	if o.systemPrompt != nil {
		request.SystemPrompt = *o.systemPrompt
	}
	request.Messages = append(request.Messages, o.history...)
	request.Messages = append(request.Messages, ai.Message{Role: ai.RoleUser, Content: prompt})
	return request
}
