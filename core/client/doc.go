// Package client sends requests to LLM providers and turns their answers into
// validated records.
//
// [New] builds a stateless [Client] from an [ai.Provider] and functional
// options ([WithSystemPrompt], [WithObserver], [WithMiddleware], ...).
// [RecordClient] adds schema-driven extraction on top: it sends the schema
// natively or as format instructions, runs the extractor over the answer and
// can re-prompt the model with the categorized failure. [StructuredClient]
// decodes the records into a Go type.
package client
