package gemini

import (
	"fmt"
	"strings"
	"time"

	"github.com/Navanit-git/genai-advance/core/schema"
	"github.com/Navanit-git/genai-advance/providers/ai"
)

// Thinking budgets used for the provider-neutral reasoning effort levels.
var thinkingBudgets = map[string]int{
	"none":   0,
	"low":    1024,
	"medium": 8192,
	"high":   24576,
}

// requestToGemini converts a generic chat request to Gemini's format. The
// returned string is non-empty when the schema could not be sent natively
// and format instructions were added to the system instruction instead.
func requestToGemini(request ai.ChatRequest) (generateContentRequest, string) {
	req := generateContentRequest{}

	gc, fallback := buildGenerationConfig(request.GenerationConfig, request.ResponseFormat)
	req.GenerationConfig = gc

	systemPrompt := request.SystemPrompt
	if fallback != "" {
		if systemPrompt != "" {
			systemPrompt += "\n\n"
		}
		systemPrompt += fallback
	}
	if systemPrompt != "" {
		req.SystemInstruction = &systemInstruction{
			Parts: []part{{Text: systemPrompt}},
		}
	}

	req.Contents = buildContents(request.Messages)
	return req, fallback
}

// buildContents converts messages to Gemini contents. Gemini only knows the
// "user" and "model" roles, so mid-conversation system messages are sent as
// user turns.
func buildContents(messages []ai.Message) []content {
	var contents []content

	for _, msg := range messages {
		switch msg.Role {
		case ai.RoleAssistant:
			if msg.Content != "" {
				contents = append(contents, content{Role: "model", Parts: []part{{Text: msg.Content}}})
			}
		default:
			contents = append(contents, content{Role: "user", Parts: []part{{Text: msg.Content}}})
		}
	}

	return contents
}

func buildGenerationConfig(cfg *ai.GenerationConfig, respFmt *ai.ResponseFormat) (*generationConfig, string) {
	if cfg == nil && respFmt == nil {
		return nil, ""
	}

	gc := &generationConfig{}
	var fallback string

	if cfg != nil {
		if cfg.Temperature > 0 {
			t := float64(cfg.Temperature)
			gc.Temperature = &t
		}
		if cfg.TopP > 0 {
			p := float64(cfg.TopP)
			gc.TopP = &p
		}
		if cfg.MaxTokens > 0 {
			gc.MaxOutputTokens = &cfg.MaxTokens
		}
		if cfg.FrequencyPenalty != 0 {
			fp := float64(cfg.FrequencyPenalty)
			gc.FrequencyPenalty = &fp
		}
		if cfg.PresencePenalty != 0 {
			pp := float64(cfg.PresencePenalty)
			gc.PresencePenalty = &pp
		}
		gc.Seed = cfg.Seed

		if budget, ok := thinkingBudgets[strings.ToLower(cfg.ReasoningEffort)]; ok {
			gc.ThinkingConfig = &thinkingConfig{ThinkingBudget: &budget}
		}
		if cfg.ReasoningFormat == "parsed" {
			if gc.ThinkingConfig == nil {
				gc.ThinkingConfig = &thinkingConfig{}
			}
			gc.ThinkingConfig.IncludeThoughts = true
		}
	}

	if respFmt != nil {
		switch {
		case respFmt.OutputSchema != nil:
			gc.ResponseMimeType = "application/json"
			if rs, ok := toResponseSchema(respFmt.OutputSchema); ok {
				gc.ResponseSchema = rs
			} else {
				fallback = schema.FormatInstructions(respFmt.OutputSchema)
			}
		case respFmt.Type == ai.ResponseFormatJSONObject || respFmt.Type == ai.ResponseFormatJSONSchema:
			gc.ResponseMimeType = "application/json"
		}
	}

	return gc, fallback
}

// geminiToGeneric converts a Gemini response to the generic format. Thought
// parts become Reasoning.
func geminiToGeneric(resp generateContentResponse) *ai.ChatResponse {
	result := &ai.ChatResponse{
		Id:      resp.ResponseID,
		Model:   resp.ModelVersion,
		Object:  "chat.completion",
		Created: time.Now().Unix(),
	}
	if result.Id == "" {
		result.Id = fmt.Sprintf("gemini-%d", time.Now().UnixNano())
	}

	if resp.UsageMetadata != nil {
		result.Usage = &ai.Usage{
			PromptTokens:     resp.UsageMetadata.PromptTokenCount,
			CompletionTokens: resp.UsageMetadata.CandidatesTokenCount,
			TotalTokens:      resp.UsageMetadata.TotalTokenCount,
			ReasoningTokens:  resp.UsageMetadata.ThoughtsTokenCount,
			CachedTokens:     resp.UsageMetadata.CachedContentTokenCount,
		}
	}

	if len(resp.Candidates) == 0 {
		result.FinishReason = "error"
		if resp.PromptFeedback != nil && resp.PromptFeedback.BlockReason != "" {
			result.FinishReason = ai.FinishReasonContentFilter
			result.Refusal = resp.PromptFeedback.BlockReason
		}
		return result
	}

	candidate := resp.Candidates[0]
	result.FinishReason = mapFinishReason(candidate.FinishReason)

	if candidate.Content != nil {
		var textParts []string
		var reasoningParts []string
		for _, p := range candidate.Content.Parts {
			if p.Text == "" {
				continue
			}
			if p.Thought {
				reasoningParts = append(reasoningParts, p.Text)
			} else {
				textParts = append(textParts, p.Text)
			}
		}
		result.Content = strings.Join(textParts, "")
		result.Reasoning = strings.Join(reasoningParts, "\n")
	}

	return result
}

// mapFinishReason converts Gemini finish reason to ai.ChatResponse finish reason.
func mapFinishReason(geminiReason string) string {
	switch geminiReason {
	case "MAX_TOKENS":
		return ai.FinishReasonLength
	case "SAFETY", "RECITATION", "BLOCKLIST", "PROHIBITED_CONTENT", "SPII":
		return ai.FinishReasonContentFilter
	default:
		return ai.FinishReasonStop
	}
}
