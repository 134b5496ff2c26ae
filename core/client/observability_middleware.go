package client

import (
	"context"
	"time"

	"github.com/Navanit-git/genai-advance/internal/utils"
	"github.com/Navanit-git/genai-advance/providers/ai"
	"github.com/Navanit-git/genai-advance/providers/observability"
)

// NewObservabilityMiddleware creates a Middleware that records a span, request
// metrics and log events for every LLM request.
//
// The span and the observer are injected into the context before calling
// next, so that provider implementations can retrieve them via
// [observability.SpanFromContext] and [observability.ObserverFromContext].
//
// [New] prepends it automatically when [WithObserver] is provided, making it
// the outermost wrapper.
//
// Parameters:
//   - observer: the observability provider; must not be nil.
//   - providerName: label for the provider dimension of every metric.
//   - defaultModel: model name used to label spans and metrics when the
//     request's own Model field is empty.
func NewObservabilityMiddleware(observer observability.Provider, providerName, defaultModel string) Middleware {
	return func(next SendFunc) SendFunc {
		return func(ctx context.Context, request ai.ChatRequest) (*ai.ChatResponse, error) {
			model := effectiveModel(request.Model, defaultModel)
			labels := []observability.Attribute{
				observability.String(observability.AttrLLMProvider, providerName),
				observability.String(observability.AttrLLMModel, model),
			}

			ctx, span := observer.StartSpan(ctx, observability.SpanClientSendMessage, labels...)
			ctx = observability.ContextWithObserver(ctx, observer)
			if request.ResponseFormat != nil {
				span.SetAttributes(observability.String(observability.AttrLLMResponseFormat, responseFormatName(request.ResponseFormat)))
			}

			observer.Debug(ctx, "llm send",
				observability.String(observability.AttrLLMModel, model),
				observability.Int(observability.AttrRequestMessagesCount, len(request.Messages)),
			)

			timer := utils.NewTimer()
			response, err := next(ctx, request)
			elapsed := timer.Stop()

			observer.Histogram(observability.MetricClientRequestDuration).Record(ctx, timer.Milliseconds(),
				observability.String(observability.AttrLLMProvider, providerName),
			)

			if err != nil {
				span.RecordError(err)
				span.SetStatus(observability.StatusError, "llm send failed")
				span.End()

				observer.Error(ctx, "llm send failed",
					observability.Error(err),
					observability.Duration(observability.AttrDuration, elapsed),
					observability.String(observability.AttrLLMModel, model),
				)
				observer.Counter(observability.MetricClientRequestCount).Add(ctx, 1,
					append(labels, observability.String(observability.AttrStatus, "error"))...,
				)
				return nil, err
			}

			recordObsSuccess(ctx, span, observer, response, elapsed, labels)
			return response, nil
		}
	}
}

// recordObsSuccess writes the success-path counters, span attributes and the
// completion log, then ends the span.
func recordObsSuccess(
	ctx context.Context,
	span observability.Span,
	observer observability.Provider,
	response *ai.ChatResponse,
	elapsed time.Duration,
	labels []observability.Attribute,
) {
	observer.Counter(observability.MetricClientRequestCount).Add(ctx, 1,
		append(labels, observability.String(observability.AttrStatus, "success"))...,
	)

	logAttrs := append([]observability.Attribute{
		observability.String(observability.AttrLLMFinishReason, response.FinishReason),
		observability.Duration(observability.AttrDuration, elapsed),
	}, labels...)

	if response.Usage != nil {
		observer.Counter(observability.MetricClientTokensTotal).Add(ctx, int64(response.Usage.TotalTokens), labels...)

		tokenAttrs := []observability.Attribute{
			observability.Int(observability.AttrLLMTokensPrompt, response.Usage.PromptTokens),
			observability.Int(observability.AttrLLMTokensCompletion, response.Usage.CompletionTokens),
			observability.Int(observability.AttrLLMTokensTotal, response.Usage.TotalTokens),
		}
		if response.Usage.ReasoningTokens > 0 {
			tokenAttrs = append(tokenAttrs, observability.Int(observability.AttrLLMTokensReasoning, response.Usage.ReasoningTokens))
		}
		span.SetAttributes(tokenAttrs...)
		logAttrs = append(logAttrs, tokenAttrs...)
	}

	if response.Content != "" {
		logAttrs = append(logAttrs,
			observability.String(observability.AttrResponseContent, utils.TruncateString(response.Content, 100)),
		)
	}

	observer.Info(ctx, "llm send completed", logAttrs...)

	if response.Truncated() {
		observer.Warn(ctx, "llm output truncated at the token limit",
			observability.String(observability.AttrLLMModel, response.Model),
		)
	}

	span.SetStatus(observability.StatusOK, "success")
	span.End()
}

func responseFormatName(rf *ai.ResponseFormat) string {
	if rf.OutputSchema != nil {
		return ai.ResponseFormatJSONSchema
	}
	if rf.Type == "" {
		return ai.ResponseFormatText
	}
	return rf.Type
}

// effectiveModel returns the request-level model when set, falling back to the
// client's configured default. Both being empty is valid (provider chooses).
func effectiveModel(requestModel, defaultModel string) string {
	if requestModel != "" {
		return requestModel
	}

	return defaultModel
}
