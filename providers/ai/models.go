package ai

import "github.com/Navanit-git/genai-advance/core/schema"

/*
	##### PROVIDER INPUT #####
*/

// ChatRequest represents a request to send a chat message
type ChatRequest struct {
	Model            string            `json:"model,omitempty"`             // Model name or identifier
	Messages         []Message         `json:"messages"`                    // Conversation messages except the system prompt
	SystemPrompt     string            `json:"system_prompt,omitempty"`     // Optional system prompt
	ResponseFormat   *ResponseFormat   `json:"response_format,omitempty"`   // Optional response format
	GenerationConfig *GenerationConfig `json:"generation_config,omitempty"` // Optional generation configuration
}

// Message represents a single message in a conversation
type Message struct {
	Role    MessageRole `json:"role"`
	Content string      `json:"content,omitempty"`

	Refusal   string `json:"refusal,omitempty"`   // If model refuses to respond (safety/policy)
	Reasoning string `json:"reasoning,omitempty"` // Chain-of-thought reasoning, when the provider exposes it
}

type GenerationConfig struct {
	MaxTokens        int     `json:"max_tokens,omitempty"`        // Optional max tokens for the response
	Temperature      float32 `json:"temperature,omitempty"`       // Sampling temperature [0..2]. Higher => more random; lower => more deterministic.
	TopP             float32 `json:"top_p,omitempty"`             // Nucleus (top-p) sampling [0..1]
	FrequencyPenalty float32 `json:"frequency_penalty,omitempty"` // OpenAI-compatible only: penalty [-2..2]
	PresencePenalty  float32 `json:"presence_penalty,omitempty"`  // OpenAI-compatible only: penalty [-2..2]
	Seed             *int64  `json:"seed,omitempty"`              // Best-effort deterministic sampling, where supported

	// ReasoningEffort is passed through to reasoning models: "none", "low",
	// "medium", "high" or "default", depending on the provider.
	ReasoningEffort string `json:"reasoning_effort,omitempty"`
	// ReasoningFormat selects how Groq returns reasoning: "raw" (inline
	// <think> blocks), "parsed" (separate field) or "hidden".
	ReasoningFormat string `json:"reasoning_format,omitempty"`
}

// Response format types.
const (
	ResponseFormatText       = "text"
	ResponseFormatJSONObject = "json_object"
	ResponseFormatJSONSchema = "json_schema"
)

type ResponseFormat struct {
	OutputSchema *schema.Schema `json:"output_schema,omitempty"` // Optional schema for structured response. Implementation may vary by provider.
	Strict       bool           `json:"strict,omitempty"`        // If true, the model must strictly adhere to the output schema, if possible.
	Name         string         `json:"name,omitempty"`          // Schema name for providers that require one
	Type         string         `json:"type,omitempty"`          // "text|json_object|json_schema", to use without a schema; with a schema json_schema is implied
}

/*
	##### PROVIDER OUTPUT #####
*/

type Usage struct {
	PromptTokens     int `json:"prompt_tokens,omitempty"`
	CompletionTokens int `json:"completion_tokens,omitempty"`
	TotalTokens      int `json:"total_tokens,omitempty"`

	// Extended token metrics
	ReasoningTokens int `json:"reasoning_tokens,omitempty"` // Tokens used for reasoning
	CachedTokens    int `json:"cached_tokens,omitempty"`    // Cached prompt tokens
}

// Add accumulates other into u.
func (u *Usage) Add(other *Usage) {
	if other == nil {
		return
	}
	u.PromptTokens += other.PromptTokens
	u.CompletionTokens += other.CompletionTokens
	u.TotalTokens += other.TotalTokens
	u.ReasoningTokens += other.ReasoningTokens
	u.CachedTokens += other.CachedTokens
}

// Finish reasons shared by all providers.
const (
	FinishReasonStop          = "stop"
	FinishReasonLength        = "length"
	FinishReasonContentFilter = "content_filter"
)

// ChatResponse represents the response from a chat completion
type ChatResponse struct {
	Id           string `json:"id"`
	Model        string `json:"model"`
	Object       string `json:"object"`
	Created      int64  `json:"created"`
	Content      string `json:"content"`
	FinishReason string `json:"finish_reason,omitempty"`
	Usage        *Usage `json:"usage,omitempty"`

	Refusal   string `json:"refusal,omitempty"`   // If model refuses to respond (safety/policy)
	Reasoning string `json:"reasoning,omitempty"` // Chain-of-thought reasoning, when the provider exposes it
}

// Truncated reports whether generation stopped because of the token limit.
func (r *ChatResponse) Truncated() bool {
	return r != nil && r.FinishReason == FinishReasonLength
}

// StructuredChatResponse is a ChatResponse whose content was extracted into
// a validated record and decoded into Data.
type StructuredChatResponse[T any] struct {
	ChatResponse
	Data *T `json:"data,omitempty"`
	// Record is the validated, normalized record Data was decoded from.
	Record map[string]any `json:"record,omitempty"`
}

// MessageRole represents the role of a message; compatible with string
type MessageRole string

const (
	RoleSystem    MessageRole = "system"    // System instructions/configuration
	RoleUser      MessageRole = "user"      // End-user message
	RoleAssistant MessageRole = "assistant" // Model response
)
