package gemini

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"

	"github.com/Navanit-git/genai-advance/internal/utils"
	"github.com/Navanit-git/genai-advance/providers/ai"
	"github.com/Navanit-git/genai-advance/providers/observability"
)

const (
	defaultBaseURL = "https://generativelanguage.googleapis.com/v1beta"
	defaultModel   = Model20FlashLite // Most cost-effective model
	providerName   = "gemini"
)

// GeminiProvider implements the ai.Provider interface for Google's Gemini API.
type GeminiProvider struct {
	apiKey       string
	baseURL      string
	defaultModel string
	client       *http.Client
}

// New creates a new Gemini provider instance with default values from environment.
// Environment variables:
//   - GEMINI_API_KEY: API key for authentication
//   - GEMINI_API_BASE_URL: Base URL for API (optional, defaults to Google's API)
func New() *GeminiProvider {
	baseURL := os.Getenv("GEMINI_API_BASE_URL")
	if baseURL == "" {
		baseURL = defaultBaseURL
	}

	return &GeminiProvider{
		apiKey:       os.Getenv("GEMINI_API_KEY"),
		baseURL:      baseURL,
		defaultModel: defaultModel,
		client:       &http.Client{},
	}
}

var _ ai.Provider = (*GeminiProvider)(nil)

// Name returns the provider identifier used in logs and metric labels.
func (p *GeminiProvider) Name() string {
	return providerName
}

// WithAPIKey sets the API key for the provider.
func (p *GeminiProvider) WithAPIKey(apiKey string) ai.Provider {
	p.apiKey = apiKey
	return p
}

// WithBaseURL sets the base URL for the API.
func (p *GeminiProvider) WithBaseURL(baseURL string) ai.Provider {
	p.baseURL = baseURL
	return p
}

// WithHttpClient sets a custom HTTP client.
func (p *GeminiProvider) WithHttpClient(httpClient *http.Client) ai.Provider {
	p.client = httpClient
	return p
}

// WithDefaultModel sets the model used when a request does not name one.
func (p *GeminiProvider) WithDefaultModel(model string) *GeminiProvider {
	p.defaultModel = model
	return p
}

// DefaultModel returns the model used when a request does not name one.
func (p *GeminiProvider) DefaultModel() string {
	return p.defaultModel
}

// SendMessage implements the ai.Provider interface.
// It sends a chat request to the Gemini API and returns the response.
func (p *GeminiProvider) SendMessage(ctx context.Context, request ai.ChatRequest) (*ai.ChatResponse, error) {
	span := observability.SpanFromContext(ctx)

	model := request.Model
	if model == "" {
		model = p.defaultModel
	}

	if p.apiKey == "" {
		return nil, fmt.Errorf("%s: API key is not set", providerName)
	}

	geminiReq, fallback := requestToGemini(request)
	if span != nil {
		span.AddEvent(observability.EventLLMRequestStart,
			observability.String(observability.AttrLLMProvider, providerName),
			observability.String(observability.AttrLLMModel, model),
			observability.Int(observability.AttrRequestMessagesCount, len(request.Messages)),
			observability.Bool("llm.schema_native", request.ResponseFormat != nil && request.ResponseFormat.OutputSchema != nil && fallback == ""),
		)
	}

	url := fmt.Sprintf("%s/models/%s:generateContent", p.baseURL, model)

	// Gemini authenticates with its own header instead of a bearer token.
	httpResponse, resp, err := utils.DoPostSync[generateContentResponse](
		ctx,
		p.client,
		url,
		"",
		geminiReq,
		utils.HeaderOption{Key: "x-goog-api-key", Value: p.apiKey},
	)
	if err != nil {
		return nil, withProvider(err)
	}
	if resp == nil {
		return nil, fmt.Errorf("%s: empty response: %s", providerName, httpResponse.Status)
	}

	result := geminiToGeneric(*resp)
	if result.Model == "" {
		result.Model = model
	}

	if span != nil {
		span.AddEvent(observability.EventLLMRequestEnd,
			observability.String(observability.AttrLLMResponseID, result.Id),
			observability.String(observability.AttrLLMFinishReason, result.FinishReason),
			observability.Int(observability.AttrHTTPStatusCode, httpResponse.StatusCode),
		)
	}

	return result, nil
}

// withProvider stamps the provider name on API errors.
func withProvider(err error) error {
	var apiErr *ai.APIError
	if errors.As(err, &apiErr) {
		apiErr.Provider = providerName
		return apiErr
	}
	return fmt.Errorf("%s: %w", providerName, err)
}
