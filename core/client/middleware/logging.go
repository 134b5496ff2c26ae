package middleware

import (
	"context"
	"log/slog"
	"time"

	"github.com/Navanit-git/genai-advance/core/client"
	"github.com/Navanit-git/genai-advance/internal/utils"
	"github.com/Navanit-git/genai-advance/providers/ai"
)

// LogLevel controls how much detail the logging middleware emits per request.
type LogLevel int

const (
	// LogLevelMinimal logs only the model name, total duration, and token counts.
	LogLevelMinimal LogLevel = iota

	// LogLevelStandard adds the message count, the requested response format
	// and the finish reason. This is the recommended default.
	LogLevelStandard

	// LogLevelVerbose adds the last message and the response content, each
	// truncated to 500 characters.
	//
	// WARNING: do not use LogLevelVerbose in production. Prompts and model
	// output may contain personal data.
	LogLevelVerbose
)

// ParseLogLevel maps "minimal", "standard" and "verbose" to a LogLevel.
// Anything else yields LogLevelStandard and false.
func ParseLogLevel(s string) (LogLevel, bool) {
	switch s {
	case "minimal":
		return LogLevelMinimal, true
	case "standard":
		return LogLevelStandard, true
	case "verbose":
		return LogLevelVerbose, true
	}
	return LogLevelStandard, false
}

// truncateLen is the maximum content length included in verbose log output.
const truncateLen = 500

// NewLoggingMiddleware returns a middleware that emits slog entries before
// and after every provider call. A nil logger means slog.Default().
func NewLoggingMiddleware(logger *slog.Logger, level LogLevel) client.Middleware {
	if logger == nil {
		logger = slog.Default()
	}
	return func(next client.SendFunc) client.SendFunc {
		return func(ctx context.Context, request ai.ChatRequest) (*ai.ChatResponse, error) {
			logger.InfoContext(ctx, "llm send", buildRequestAttrs(request, level)...)

			start := time.Now()
			response, err := next(ctx, request)
			elapsed := time.Since(start)

			if err != nil {
				logger.ErrorContext(ctx, "llm send failed",
					slog.String("model", request.Model),
					slog.Duration("duration", elapsed),
					slog.String("error", err.Error()),
				)
				return nil, err
			}

			logger.InfoContext(ctx, "llm send completed", buildResponseAttrs(response, elapsed, level)...)
			return response, nil
		}
	}
}

func buildRequestAttrs(request ai.ChatRequest, level LogLevel) []any {
	attrs := []any{
		slog.String("model", request.Model),
	}

	if level >= LogLevelStandard {
		attrs = append(attrs, slog.Int("message_count", len(request.Messages)))
		if request.ResponseFormat != nil {
			format := string(request.ResponseFormat.Type)
			if request.ResponseFormat.OutputSchema != nil {
				format = string(ai.ResponseFormatJSONSchema)
			}
			attrs = append(attrs, slog.String("response_format", format))
		}
	}

	// The last message is the new prompt or, on a re-prompt, the repair request.
	if level >= LogLevelVerbose && len(request.Messages) > 0 {
		last := request.Messages[len(request.Messages)-1]
		attrs = append(attrs,
			slog.String("last_message_role", string(last.Role)),
			slog.String("last_message_content", utils.TruncateString(last.Content, truncateLen)),
		)
	}
	if level >= LogLevelVerbose && request.GenerationConfig != nil {
		attrs = append(attrs, slog.String("generation_config", utils.JSONToString(request.GenerationConfig)))
	}

	return attrs
}

func buildResponseAttrs(response *ai.ChatResponse, elapsed time.Duration, level LogLevel) []any {
	attrs := []any{
		slog.String("model", response.Model),
		slog.Duration("duration", elapsed),
	}

	if response.Usage != nil {
		attrs = append(attrs,
			slog.Int("prompt_tokens", response.Usage.PromptTokens),
			slog.Int("completion_tokens", response.Usage.CompletionTokens),
			slog.Int("total_tokens", response.Usage.TotalTokens),
		)
	}

	if level >= LogLevelStandard && response.FinishReason != "" {
		attrs = append(attrs, slog.String("finish_reason", response.FinishReason))
	}

	if level >= LogLevelVerbose && response.Content != "" {
		attrs = append(attrs,
			slog.String("response_content", utils.TruncateString(response.Content, truncateLen)),
		)
	}

	return attrs
}
