// Package groq provides ai.Provider for Groq through its OpenAI-compatible
// chat completions endpoint.
package groq

import (
	"os"

	"github.com/Navanit-git/genai-advance/providers/ai/openai"
)

const (
	// DefaultBaseURL is Groq's OpenAI-compatible API root.
	DefaultBaseURL = "https://api.groq.com/openai/v1"
	// DefaultModel is the model used when a request does not name one.
	DefaultModel = "qwen/qwen3-32b"
)

// New returns an OpenAI-compatible provider pointed at Groq. The API key is
// read from GROQ_API_KEY and the base URL from GROQ_API_BASE_URL when set.
func New() *openai.OpenAIProvider {
	baseURL := os.Getenv("GROQ_API_BASE_URL")
	if baseURL == "" {
		baseURL = DefaultBaseURL
	}

	p := openai.New().WithName("groq").WithDefaultModel(DefaultModel)
	p.WithAPIKey(os.Getenv("GROQ_API_KEY"))
	p.WithBaseURL(baseURL)
	return p
}
