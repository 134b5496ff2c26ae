// Package schema describes the expected shape of structured LLM output and
// validates decoded values against it.
//
// A [Schema] uses the JSON Schema vocabulary, so the same value can be sent to
// a provider as its native structured output schema, rendered into prompt
// text with [FormatInstructions], and used locally by [Schema.Validate].
//
// Schemas are built in three ways: with the builders ([Object], [String],
// [Map], ...), from a Go type with [Generate], or from a JSON Schema document
// with [FromJSON].
//
// Validation is lax by default: "26" is accepted as the integer 26 and "yes"
// as true. [WithStrictTypes] turns the coercions off. Properties that the
// schema does not declare are dropped from the normalized value.
package schema
