package openai

import "strings"

// Capabilities describes what an OpenAI-compatible endpoint accepts. They are
// detected from the base URL by [detectCapabilities] and can be overridden
// with [OpenAIProvider.WithCapabilities] for non-standard hosts.
type Capabilities struct {
	// SupportsStructuredOutputs means response_format json_schema is honoured.
	SupportsStructuredOutputs bool
	// SupportsJSONMode means response_format json_object is honoured.
	SupportsJSONMode bool
	// SupportsReasoningEffort means reasoning_effort is forwarded.
	SupportsReasoningEffort bool
	// SupportsReasoningFormat means the Groq-style reasoning_format is forwarded.
	SupportsReasoningFormat bool
}

// detectCapabilities attempts to detect provider capabilities based on baseURL
func detectCapabilities(baseURL string) Capabilities {
	baseURL = strings.ToLower(baseURL)

	switch {
	case strings.Contains(baseURL, "api.openai.com"),
		strings.Contains(baseURL, "azure.com"),
		strings.Contains(baseURL, "openai.azure"):
		return Capabilities{
			SupportsStructuredOutputs: true,
			SupportsJSONMode:          true,
			SupportsReasoningEffort:   true,
		}

	case strings.Contains(baseURL, "api.groq.com"):
		// json_schema is limited to a handful of Groq models; JSON mode works everywhere.
		return Capabilities{
			SupportsJSONMode:        true,
			SupportsReasoningEffort: true,
			SupportsReasoningFormat: true,
		}

	case strings.Contains(baseURL, "openrouter.ai"):
		return Capabilities{
			SupportsStructuredOutputs: true, // Depends on model
			SupportsJSONMode:          true,
		}

	case strings.Contains(baseURL, "localhost:11434"), strings.Contains(baseURL, "127.0.0.1:11434"):
		// Ollama
		return Capabilities{
			SupportsStructuredOutputs: true,
			SupportsJSONMode:          true,
		}
	}

	// Conservative defaults for unknown providers
	return Capabilities{SupportsJSONMode: true}
}
