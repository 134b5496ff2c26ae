package cost

import (
	"fmt"
	"sort"
	"strings"

	"github.com/Navanit-git/genai-advance/providers/ai"
)

// ModelCost represents the pricing structure for a language model.
// Costs are expressed in USD per million tokens.
//
// Example usage:
//
//	modelCost := cost.ModelCost{
//	    InputCostPerMillion:  0.29,
//	    OutputCostPerMillion: 0.59,
//	}
type ModelCost struct {
	// InputCostPerMillion is the cost in USD per 1 million input tokens
	InputCostPerMillion float64 `json:"input_cost_per_million" mapstructure:"input_cost_per_million" yaml:"input_cost_per_million"`

	// OutputCostPerMillion is the cost in USD per 1 million output tokens
	OutputCostPerMillion float64 `json:"output_cost_per_million" mapstructure:"output_cost_per_million" yaml:"output_cost_per_million"`

	// CachedInputCostPerMillion is the discounted rate for cached input tokens (optional)
	CachedInputCostPerMillion float64 `json:"cached_input_cost_per_million,omitempty" mapstructure:"cached_input_cost_per_million" yaml:"cached_input_cost_per_million,omitempty"`

	// ReasoningCostPerMillion is the rate for reasoning tokens (optional)
	ReasoningCostPerMillion float64 `json:"reasoning_cost_per_million,omitempty" mapstructure:"reasoning_cost_per_million" yaml:"reasoning_cost_per_million,omitempty"`
}

// CalculateInputCost calculates the cost for the given number of input tokens.
func (mc ModelCost) CalculateInputCost(tokens int) float64 {
	return (float64(tokens) / 1_000_000.0) * mc.InputCostPerMillion
}

// CalculateOutputCost calculates the cost for the given number of output tokens.
func (mc ModelCost) CalculateOutputCost(tokens int) float64 {
	return (float64(tokens) / 1_000_000.0) * mc.OutputCostPerMillion
}

// CalculateCachedCost calculates the cost for the given number of cached tokens.
func (mc ModelCost) CalculateCachedCost(tokens int) float64 {
	return (float64(tokens) / 1_000_000.0) * mc.CachedInputCostPerMillion
}

// CalculateReasoningCost calculates the cost for the given number of reasoning tokens.
func (mc ModelCost) CalculateReasoningCost(tokens int) float64 {
	return (float64(tokens) / 1_000_000.0) * mc.ReasoningCostPerMillion
}

// Breakdown prices usage. Cached and reasoning tokens are only charged when
// the model declares a rate for them.
func (mc ModelCost) Breakdown(usage *ai.Usage) CostSummary {
	summary := CostSummary{Currency: "USD"}
	if usage == nil {
		return summary
	}
	summary.ModelInputCost = mc.CalculateInputCost(usage.PromptTokens)
	summary.ModelOutputCost = mc.CalculateOutputCost(usage.CompletionTokens)
	if mc.CachedInputCostPerMillion > 0 {
		summary.ModelCachedCost = mc.CalculateCachedCost(usage.CachedTokens)
	}
	if mc.ReasoningCostPerMillion > 0 {
		summary.ModelReasoningCost = mc.CalculateReasoningCost(usage.ReasoningTokens)
	}
	summary.TotalCost = summary.ModelInputCost + summary.ModelOutputCost + summary.ModelCachedCost + summary.ModelReasoningCost
	return summary
}

// CalculateTotalCost calculates the total cost for all token types.
func (mc ModelCost) CalculateTotalCost(usage *ai.Usage) float64 {
	return mc.Breakdown(usage).TotalCost
}

// String returns a formatted string representation of the model costs.
func (mc ModelCost) String() string {
	return fmt.Sprintf("Input: $%.6f/M, Output: $%.6f/M",
		mc.InputCostPerMillion, mc.OutputCostPerMillion)
}

// CostSummary is the priced breakdown of the tokens spent on one extraction,
// re-prompts included.
type CostSummary struct {
	ModelInputCost     float64 `json:"model_input_cost"`
	ModelOutputCost    float64 `json:"model_output_cost"`
	ModelCachedCost    float64 `json:"model_cached_cost"`
	ModelReasoningCost float64 `json:"model_reasoning_cost"`
	TotalCost          float64 `json:"total_cost"`
	// Currency is always "USD" for consistency
	Currency string `json:"currency"`
}

// Table maps model names to prices.
type Table map[string]ModelCost

// Lookup finds the price of model. Names are compared case-insensitively
// after dropping a "models/" prefix. When there is no exact entry, the
// longest table key that prefixes the model wins, so dated variants such as
// "gemini-2.5-flash-001" resolve to "gemini-2.5-flash".
func (t Table) Lookup(model string) (ModelCost, bool) {
	model = normalizeModel(model)
	if model == "" {
		return ModelCost{}, false
	}

	keys := make([]string, 0, len(t))
	for k := range t {
		keys = append(keys, k)
	}
	sort.Slice(keys, func(i, j int) bool { return len(keys[i]) > len(keys[j]) })

	for _, k := range keys {
		if normalizeModel(k) == model {
			return t[k], true
		}
	}
	for _, k := range keys {
		if strings.HasPrefix(model, normalizeModel(k)) {
			return t[k], true
		}
	}
	return ModelCost{}, false
}

// Merge returns a table holding t overridden by other.
func (t Table) Merge(other Table) Table {
	merged := make(Table, len(t)+len(other))
	for k, v := range t {
		merged[k] = v
	}
	for k, v := range other {
		merged[k] = v
	}
	return merged
}

func normalizeModel(model string) string {
	model = strings.ToLower(strings.TrimSpace(model))
	return strings.TrimPrefix(model, "models/")
}
