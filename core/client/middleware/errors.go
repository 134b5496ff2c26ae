package middleware

import "errors"

// ErrRetryExhausted is returned by the retry middleware when every attempt
// failed with a retryable error. The last provider error is wrapped too, so
// errors.As still reaches the *ai.APIError.
var ErrRetryExhausted = errors.New("all retry attempts exhausted")
