// Package openai implements ai.Provider for OpenAI-compatible chat completion
// APIs using the official github.com/openai/openai-go/v3 SDK.
//
// [New] reads OPENAI_API_KEY and OPENAI_API_BASE_URL from the environment and
// detects endpoint [Capabilities] from the base URL. A request carrying an
// output schema is sent as response_format json_schema when the endpoint
// supports it; otherwise it falls back to JSON mode with the schema's format
// instructions appended to the system prompt.
//
// Non-standard "reasoning" fields returned by hosts such as Groq are surfaced
// on ai.ChatResponse.Reasoning.
package openai
