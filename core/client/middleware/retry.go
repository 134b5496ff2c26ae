package middleware

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/avast/retry-go/v4"

	"github.com/Navanit-git/genai-advance/core/client"
	"github.com/Navanit-git/genai-advance/providers/ai"
	"github.com/Navanit-git/genai-advance/providers/observability"
)

// RetryConfig holds the tuning parameters for the retry middleware. Zero values
// are replaced with the defaults documented below when NewRetryMiddleware is called.
type RetryConfig struct {
	// MaxRetries is the maximum number of retry attempts after the first failure.
	// A value of 3 means the provider is called at most 4 times.
	// Default: 3.
	MaxRetries int

	// InitialBackoff is the wait before the first retry. Each further retry
	// doubles it.
	// Default: 1s.
	InitialBackoff time.Duration

	// MaxBackoff caps every wait, Retry-After hints included.
	// Default: 30s.
	MaxBackoff time.Duration

	// MaxJitter is the upper bound of the random delay added to each backoff.
	// Default: 100ms.
	MaxJitter time.Duration

	// RetryableFunc returns true when an error should trigger a retry.
	// Default: ai.IsRetryable (429, 5xx gateway errors and 529).
	RetryableFunc func(error) bool
}

func applyRetryDefaults(config *RetryConfig) {
	if config.MaxRetries <= 0 {
		config.MaxRetries = 3
	}
	if config.InitialBackoff == 0 {
		config.InitialBackoff = time.Second
	}
	if config.MaxBackoff == 0 {
		config.MaxBackoff = 30 * time.Second
	}
	if config.MaxJitter == 0 {
		config.MaxJitter = 100 * time.Millisecond
	}
	if config.RetryableFunc == nil {
		config.RetryableFunc = ai.IsRetryable
	}
}

// retryDelay waits for the provider's Retry-After hint when there is one and
// backs off exponentially with jitter otherwise.
func retryDelay(n uint, err error, config *retry.Config) time.Duration {
	var apiErr *ai.APIError
	if errors.As(err, &apiErr) && apiErr.RetryAfter > 0 {
		return apiErr.RetryAfter
	}
	return retry.CombineDelay(retry.BackOffDelay, retry.RandomDelay)(n, err, config)
}

// NewRetryMiddleware returns a middleware that retries failed provider calls
// according to config. Non-retryable errors are returned unchanged after the
// first failure. On exhaustion the returned error wraps both
// [ErrRetryExhausted] and the last provider error.
//
// Each retry is added as an event to the span found in the request context.
func NewRetryMiddleware(config RetryConfig) client.Middleware {
	applyRetryDefaults(&config)

	return func(next client.SendFunc) client.SendFunc {
		return func(ctx context.Context, request ai.ChatRequest) (*ai.ChatResponse, error) {
			attempts := 0
			response, err := retry.DoWithData(
				func() (*ai.ChatResponse, error) {
					attempts++
					return next(ctx, request)
				},
				retry.Context(ctx),
				retry.Attempts(uint(config.MaxRetries+1)),
				retry.Delay(config.InitialBackoff),
				retry.MaxDelay(config.MaxBackoff),
				retry.MaxJitter(config.MaxJitter),
				retry.DelayType(retryDelay),
				retry.RetryIf(config.RetryableFunc),
				retry.LastErrorOnly(true),
				retry.OnRetry(func(n uint, err error) {
					if span := observability.SpanFromContext(ctx); span != nil {
						span.AddEvent(observability.EventLLMRetry,
							observability.Int(observability.AttrRetryAttempt, int(n)+1),
							observability.Error(err),
						)
					}
				}),
			)
			if err == nil {
				return response, nil
			}
			if ctxErr := ctx.Err(); ctxErr != nil {
				return nil, ctxErr
			}
			if attempts > config.MaxRetries && config.RetryableFunc(err) {
				return nil, fmt.Errorf("%w after %d retries: %w", ErrRetryExhausted, config.MaxRetries, err)
			}
			return nil, err
		}
	}
}
