package observability

import (
	"context"
	"testing"
)

type mockSpan struct {
	name   string
	events []string
}

func (s *mockSpan) End()                                 {}
func (s *mockSpan) SetAttributes(...Attribute)           {}
func (s *mockSpan) SetStatus(StatusCode, string)         {}
func (s *mockSpan) RecordError(error)                    {}
func (s *mockSpan) AddEvent(name string, _ ...Attribute) { s.events = append(s.events, name) }

type mockProvider struct {
	Provider
	id string
}

func TestSpanFromContext_Empty(t *testing.T) {
	if span := SpanFromContext(context.Background()); span != nil {
		t.Errorf("Expected nil span from empty context, got %v", span)
	}
	//nolint:staticcheck // nil context is handled explicitly
	if span := SpanFromContext(nil); span != nil {
		t.Errorf("Expected nil span from nil context, got %v", span)
	}
}

func TestContextWithSpan(t *testing.T) {
	span1 := &mockSpan{name: "span-1"}
	span2 := &mockSpan{name: "span-2"}

	ctx := ContextWithSpan(context.Background(), span1)
	if got := SpanFromContext(ctx); got != span1 {
		t.Fatalf("Expected span1, got %v", got)
	}

	ctx = ContextWithSpan(ctx, span2)
	if got := SpanFromContext(ctx); got != span2 {
		t.Errorf("Expected span2 after overwrite, got %v", got)
	}

	ctx = ContextWithSpan(ctx, nil)
	if got := SpanFromContext(ctx); got != nil {
		t.Errorf("Expected nil span, got %v", got)
	}
}

func TestContextWithObserver(t *testing.T) {
	if got := ObserverFromContext(context.Background()); got != nil {
		t.Errorf("Expected nil observer, got %v", got)
	}

	p := &mockProvider{id: "a"}
	ctx := ContextWithObserver(context.Background(), p)
	if got := ObserverFromContext(ctx); got != p {
		t.Errorf("Expected stored observer, got %v", got)
	}

	// Span and observer keys must not collide.
	ctx = ContextWithSpan(ctx, &mockSpan{name: "s"})
	if got := ObserverFromContext(ctx); got != p {
		t.Errorf("Expected observer to survive span attach, got %v", got)
	}
}
