package middleware

import (
	"context"
	"time"

	"github.com/Navanit-git/genai-advance/core/client"
	"github.com/Navanit-git/genai-advance/providers/ai"
)

// NewTimeoutMiddleware returns a middleware that bounds every provider call
// with context.WithTimeout. A shorter deadline already on the caller's
// context wins. Placed outside the retry middleware it bounds all attempts
// together; placed inside, each attempt on its own.
func NewTimeoutMiddleware(timeout time.Duration) client.Middleware {
	return func(next client.SendFunc) client.SendFunc {
		return func(ctx context.Context, request ai.ChatRequest) (*ai.ChatResponse, error) {
			ctx, cancel := context.WithTimeout(ctx, timeout)
			defer cancel()

			return next(ctx, request)
		}
	}
}
