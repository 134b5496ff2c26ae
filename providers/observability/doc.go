// Package observability defines the interfaces and attribute names used for
// tracing, metrics and structured logging across genai-advance.
//
// [Provider] composes [Tracer], [Metrics] and [Logger] into a single
// injectable dependency. The active [Provider] and [Span] travel through a
// [context.Context] via [ContextWithObserver] and [ContextWithSpan].
//
// Implementations live in sub-packages: slog logs everything through
// log/slog, promobs exports metrics to Prometheus.
package observability
