package client

import (
	"context"
	"errors"
	"strings"
	"testing"

	"github.com/Navanit-git/genai-advance/providers/ai"
)

// ========== Chain construction helpers ==========

// callRecorder records whether a middleware was invoked and in what order.
type callRecorder struct {
	order  *[]string
	name   string
	called bool
}

func newCallRecorder(name string, sharedOrder *[]string) *callRecorder {
	return &callRecorder{order: sharedOrder, name: name}
}

func (rec *callRecorder) middleware() Middleware {
	return func(next SendFunc) SendFunc {
		return func(ctx context.Context, request ai.ChatRequest) (*ai.ChatResponse, error) {
			rec.called = true
			*rec.order = append(*rec.order, rec.name)

			return next(ctx, request)
		}
	}
}

// ========== buildSendChain tests ==========

// TestBuildSendChain_EmptyMiddlewares verifies that an empty slice results in a
// direct provider call.
func TestBuildSendChain_EmptyMiddlewares(t *testing.T) {
	provider := &mockProvider{}
	chain := buildSendChain(provider, nil)

	resp, err := chain(context.Background(), ai.ChatRequest{})
	if err != nil {
		t.Fatalf("expected no error, got %v", err)
	}
	if resp.Content != "test response" {
		t.Errorf("unexpected content %q", resp.Content)
	}
	if provider.calls() != 1 {
		t.Errorf("expected 1 provider call, got %d", provider.calls())
	}
}

// TestBuildSendChain_Order verifies that the first middleware is outermost.
func TestBuildSendChain_Order(t *testing.T) {
	order := []string{}
	first := newCallRecorder("first", &order)
	second := newCallRecorder("second", &order)
	third := newCallRecorder("third", &order)

	chain := buildSendChain(&mockProvider{}, []Middleware{first.middleware(), second.middleware(), third.middleware()})
	if _, err := chain(context.Background(), ai.ChatRequest{}); err != nil {
		t.Fatalf("expected no error, got %v", err)
	}

	if got := strings.Join(order, ","); got != "first,second,third" {
		t.Errorf("unexpected order %q", got)
	}
}

// TestBuildSendChain_ShortCircuit verifies that a middleware can return early
// without calling next.
func TestBuildSendChain_ShortCircuit(t *testing.T) {
	provider := &mockProvider{}
	shortCircuitError := errors.New("short-circuit")

	shortCircuit := Middleware(func(next SendFunc) SendFunc {
		return func(ctx context.Context, request ai.ChatRequest) (*ai.ChatResponse, error) {
			return nil, shortCircuitError
		}
	})

	order := []string{}
	rec := newCallRecorder("after-short-circuit", &order)

	chain := buildSendChain(provider, []Middleware{shortCircuit, rec.middleware()})

	_, err := chain(context.Background(), ai.ChatRequest{})
	if !errors.Is(err, shortCircuitError) {
		t.Fatalf("expected short-circuit error, got %v", err)
	}
	if rec.called {
		t.Error("middleware after short-circuit should not be called")
	}
	if provider.calls() != 0 {
		t.Error("provider should not be called")
	}
}

// TestBuildSendChain_RewritesRequest verifies that a middleware can modify the
// request seen by the provider.
func TestBuildSendChain_RewritesRequest(t *testing.T) {
	provider := &mockProvider{}
	rewrite := Middleware(func(next SendFunc) SendFunc {
		return func(ctx context.Context, request ai.ChatRequest) (*ai.ChatResponse, error) {
			request.Model = "rewritten"
			return next(ctx, request)
		}
	})

	chain := buildSendChain(provider, []Middleware{rewrite})
	if _, err := chain(context.Background(), ai.ChatRequest{Model: "original"}); err != nil {
		t.Fatal(err)
	}
	if provider.requests[0].Model != "rewritten" {
		t.Errorf("expected rewritten model, got %q", provider.requests[0].Model)
	}
}

// ========== WithMiddleware client option ==========

// TestWithMiddleware_ClientCallsChain verifies that SendMessage routes through
// the configured middleware.
func TestWithMiddleware_ClientCallsChain(t *testing.T) {
	order := []string{}
	rec := newCallRecorder("client", &order)

	c, err := New(&mockProvider{}, WithMiddleware(rec.middleware()))
	if err != nil {
		t.Fatalf("New() error = %v", err)
	}
	if _, err := c.SendMessage(context.Background(), "hello"); err != nil {
		t.Fatalf("SendMessage() error = %v", err)
	}
	if !rec.called {
		t.Error("expected middleware to be called")
	}
}
