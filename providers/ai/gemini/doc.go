// Package gemini implements [ai.Provider] for Google's Gemini generative
// language API.
//
// Requests go to the generateContent endpoint. A request carrying an output
// schema is sent with responseMimeType "application/json" and the schema
// converted to Gemini's OpenAPI subset; schemas that subset cannot express
// (free-form values, mappings) fall back to JSON output with the format
// instructions added to the system instruction. Thought parts are returned
// as ai.ChatResponse.Reasoning.
//
// [New] reads GEMINI_API_KEY and GEMINI_API_BASE_URL from the environment.
// Prices are exposed through [ModelPricing] and [CalculateCost].
package gemini
