// Package utils provides shared low-level helpers used throughout the
// genai-advance internals: a JSON-over-HTTP round trip for providers without
// an SDK, string helpers for logs and prompts, a generic pointer helper and
// an elapsed-time timer.
//
// Key entry points: [DoPostSync] for synchronous JSON round-trips,
// [TruncateString] and [JSONToString] for log output, [Ptr] for converting
// values to pointers, and [Timer] for measuring latency.
package utils
