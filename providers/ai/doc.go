// Package ai defines the shared, provider-agnostic types and interfaces used
// by every LLM provider implementation (OpenAI-compatible, Groq, Gemini).
// Each provider's conversion layer maps these types to its own wire format,
// keeping the rest of the codebase decoupled from provider-specific details.
//
// Request data flows through [ChatRequest], whose [ResponseFormat] carries
// the [schema.Schema] for native structured output, and responses are
// returned as [ChatResponse].
package ai
