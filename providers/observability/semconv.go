package observability

// --- LLM Provider Attributes ---

const (
	// AttrLLMProvider is the name of the LLM provider (e.g., "groq", "gemini")
	AttrLLMProvider = "llm.provider"

	// AttrLLMModel is the model identifier
	AttrLLMModel = "llm.model"

	// AttrLLMResponseID is the unique response identifier from the provider
	AttrLLMResponseID = "llm.response.id"

	// AttrLLMFinishReason is the reason the generation finished
	AttrLLMFinishReason = "llm.finish_reason"

	// AttrLLMTemperature is the sampling temperature used
	AttrLLMTemperature = "llm.temperature"

	// AttrLLMMaxTokens is the maximum tokens allowed
	AttrLLMMaxTokens = "llm.max_tokens" // #nosec G101 -- Not a credential, token refers to LLM tokens

	// AttrLLMResponseFormat is the response format requested ("text", "json_object", "json_schema")
	AttrLLMResponseFormat = "llm.response_format"
)

// --- Token Usage Attributes ---

const (
	AttrLLMTokensPrompt     = "llm.tokens.prompt"     // #nosec G101 -- Not a credential, token refers to LLM tokens
	AttrLLMTokensCompletion = "llm.tokens.completion" // #nosec G101 -- Not a credential, token refers to LLM tokens
	AttrLLMTokensTotal      = "llm.tokens.total"      // #nosec G101 -- Not a credential, token refers to LLM tokens
	AttrLLMTokensReasoning  = "llm.tokens.reasoning"  // #nosec G101 -- Not a credential, token refers to LLM tokens
)

// --- Extraction Attributes ---

const (
	// AttrExtractionMode is "native" when the schema is sent to the provider, "prompt" otherwise
	AttrExtractionMode = "extraction.mode"

	// AttrExtractionOutcome is "success" or the parse.Kind of the failure
	AttrExtractionOutcome = "extraction.outcome"

	// AttrExtractionAttempt is the 1-based attempt number
	AttrExtractionAttempt = "extraction.attempt"

	// AttrExtractionFields lists the paths that failed validation
	AttrExtractionFields = "extraction.fields"

	// AttrExtractionOffset is the byte offset of the JSON syntax error
	AttrExtractionOffset = "extraction.offset"

	// AttrExtractionSpan is the located text (truncated)
	AttrExtractionSpan = "extraction.span"
)

// --- Request/Response Attributes ---

const (
	// AttrRequestMessagesCount is the number of messages in the request
	AttrRequestMessagesCount = "request.messages_count"

	// AttrResponseContent is the response content from LLM
	AttrResponseContent = "response.content"
)

// --- Retry Attributes ---

const (
	// AttrRetryAttempt is the 1-based number of the retry about to run
	AttrRetryAttempt = "retry.attempt"

	// AttrRetryDelay is the wait before the retry
	AttrRetryDelay = "retry.delay"
)

// --- HTTP Attributes ---

const (
	AttrHTTPMethod           = "http.method"
	AttrHTTPStatusCode       = "http.status_code"
	AttrHTTPURL              = "http.url"
	AttrHTTPRequestBodySize  = "http.request.body.size"
	AttrHTTPResponseBodySize = "http.response.body.size"
	AttrHTTPDuration         = "http.request.duration"
)

// --- Client Attributes ---

const (
	// AttrClientPrompt is the user prompt/input
	AttrClientPrompt = "client.prompt"
)

// --- General Attributes ---

const (
	AttrError             = "error"
	AttrErrorType         = "error.type"
	AttrDuration          = "duration"
	AttrStatus            = "status"
	AttrStatusDescription = "status_description"
	AttrSpanID            = "span.id"
	AttrParentSpanID      = "span.parent_id"
)

// --- Span Names ---

const (
	// SpanClientSendMessage is the span name for client message sending
	SpanClientSendMessage = "client.send_message"

	// SpanExtraction is the span name for a structured extraction, re-prompts included
	SpanExtraction = "client.extract"
)

// --- Event Names ---

const (
	EventLLMRequestStart = "llm.request.start"
	EventLLMRequestEnd   = "llm.request.end"
	EventLLMRetry        = "llm.retry"

	// EventExtractionFailed marks an attempt whose output could not be extracted
	EventExtractionFailed = "extraction.failed"

	// EventExtractionRepair marks a re-prompt with the repair instructions
	EventExtractionRepair = "extraction.repair"

	// EventExtractionSucceeded marks the attempt that produced the record
	EventExtractionSucceeded = "extraction.succeeded"
)

// --- Metric Names ---

const (
	// MetricClientRequestCount is the counter for client requests
	MetricClientRequestCount = "genai.client.request.count"

	// MetricClientRequestDuration is the histogram for request duration in milliseconds
	MetricClientRequestDuration = "genai.client.request.duration"

	// MetricClientTokensTotal is the counter for total tokens
	MetricClientTokensTotal = "genai.client.tokens.total" // #nosec G101 -- Not a credential, token refers to LLM tokens

	// MetricExtractionCount counts extractions by outcome
	MetricExtractionCount = "genai.structured.extractions"

	// MetricExtractionDuration is the histogram for extraction duration in milliseconds
	MetricExtractionDuration = "genai.structured.extraction.duration"
)
