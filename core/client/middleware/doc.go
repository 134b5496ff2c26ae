// Package middleware provides built-in middleware for [client.Client]. Each
// constructor returns a [client.Middleware] ready to be passed to
// [client.WithMiddleware].
//
// # Available Middleware
//
//   - [NewRetryMiddleware]: retries transient provider errors (429, 5xx) with
//     exponential backoff and jitter, honouring Retry-After hints.
//
//   - [NewTimeoutMiddleware]: adds a per-request deadline via context.WithTimeout.
//
//   - [NewLoggingMiddleware]: emits slog entries before and after every provider
//     call, with three verbosity levels (Minimal, Standard, Verbose).
//
// # Usage
//
//	c, err := client.New(provider,
//	    client.WithMiddleware(
//	        middleware.NewTimeoutMiddleware(60*time.Second),
//	        middleware.NewRetryMiddleware(middleware.RetryConfig{MaxRetries: 3}),
//	        middleware.NewLoggingMiddleware(slog.Default(), middleware.LogLevelStandard),
//	    ),
//	)
//
// The first entry is the outermost wrapper. In the example above a request
// travels Timeout, Retry, Logging, Provider, and the response comes back in
// reverse order. Schema re-prompts issued by client.RecordClient go through
// the whole chain again.
package middleware
