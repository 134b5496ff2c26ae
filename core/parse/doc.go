// Package parse turns free-form LLM output into validated structured records.
//
// Models wrap JSON in prose, markdown code fences and <think> reasoning
// blocks. [Extract] locates the first JSON object with a balanced-brace
// scanner, parses it and validates it against a [schema.Schema], failing with
// one of three distinguishable errors:
//
//   - [ErrNoJSONFound]: the text contains no JSON object
//   - [MalformedJSONError]: an object was located but is not valid JSON
//   - [SchemaValidationError]: the object does not satisfy the schema
//
// Extraction is a pure function. It never logs, never retries and never
// calls a model; recovering from a failure, for instance by re-prompting, is
// left to the caller. [KindOf] classifies errors for logs and metrics.
package parse
