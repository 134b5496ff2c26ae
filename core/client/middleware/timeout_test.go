package middleware

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/Navanit-git/genai-advance/providers/ai"
)

// makeSendFunc returns a SendFunc that sleeps for the given duration before
// returning, simulating a slow provider.
func makeSendFunc(sleep time.Duration, resp *ai.ChatResponse, err error) func(context.Context, ai.ChatRequest) (*ai.ChatResponse, error) {
	return func(ctx context.Context, _ ai.ChatRequest) (*ai.ChatResponse, error) {
		select {
		case <-time.After(sleep):
			return resp, err
		case <-ctx.Done():
			return nil, ctx.Err()
		}
	}
}

func TestTimeoutMiddleware_CompletesBeforeTimeout(t *testing.T) {
	fast := makeSendFunc(0, &ai.ChatResponse{Content: "ok", FinishReason: "stop"}, nil)

	chain := NewTimeoutMiddleware(100 * time.Millisecond)(fast)
	resp, err := chain(context.Background(), ai.ChatRequest{})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if resp.Content != "ok" {
		t.Errorf("expected content 'ok', got %q", resp.Content)
	}
}

func TestTimeoutMiddleware_Expires(t *testing.T) {
	slow := makeSendFunc(time.Second, &ai.ChatResponse{Content: "late"}, nil)

	chain := NewTimeoutMiddleware(10 * time.Millisecond)(slow)
	start := time.Now()
	_, err := chain(context.Background(), ai.ChatRequest{})
	if !errors.Is(err, context.DeadlineExceeded) {
		t.Fatalf("expected context.DeadlineExceeded, got %v", err)
	}
	if elapsed := time.Since(start); elapsed > 500*time.Millisecond {
		t.Errorf("timeout took too long: %v", elapsed)
	}
}

func TestTimeoutMiddleware_ShorterParentDeadlineWins(t *testing.T) {
	var deadline time.Time
	next := func(ctx context.Context, _ ai.ChatRequest) (*ai.ChatResponse, error) {
		deadline, _ = ctx.Deadline()
		return &ai.ChatResponse{}, nil
	}

	parent, cancel := context.WithTimeout(context.Background(), 50*time.Millisecond)
	defer cancel()
	parentDeadline, _ := parent.Deadline()

	if _, err := NewTimeoutMiddleware(time.Hour)(next)(parent, ai.ChatRequest{}); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if !deadline.Equal(parentDeadline) {
		t.Errorf("expected the parent deadline %v, got %v", parentDeadline, deadline)
	}
}

func TestTimeoutMiddleware_PropagatesErrors(t *testing.T) {
	boom := errors.New("boom")
	chain := NewTimeoutMiddleware(time.Second)(makeSendFunc(0, nil, boom))
	if _, err := chain(context.Background(), ai.ChatRequest{}); !errors.Is(err, boom) {
		t.Fatalf("expected boom, got %v", err)
	}
}
