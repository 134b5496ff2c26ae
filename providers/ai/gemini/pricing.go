package gemini

import (
	"github.com/Navanit-git/genai-advance/core/cost"
	"github.com/Navanit-git/genai-advance/providers/ai"
)

// Model name constants for Gemini models.
const (
	Model25Pro       = "gemini-2.5-pro"
	Model25Flash     = "gemini-2.5-flash"
	Model25FlashLite = "gemini-2.5-flash-lite"
	Model20Flash     = "gemini-2.0-flash"
	Model20FlashLite = "gemini-2.0-flash-lite"
)

// ModelPricing contains standard-tier (prompts up to 200k tokens) prices in
// USD per million tokens. Dated and preview variants resolve to their base
// entry through [cost.Table.Lookup].
// Source: https://ai.google.dev/gemini-api/docs/pricing
var ModelPricing = cost.Table{
	Model25Pro: {
		InputCostPerMillion:       1.25,
		OutputCostPerMillion:      10.00,
		CachedInputCostPerMillion: 0.31,
		ReasoningCostPerMillion:   10.00,
	},
	Model25Flash: {
		InputCostPerMillion:       0.30,
		OutputCostPerMillion:      2.50,
		CachedInputCostPerMillion: 0.075,
		ReasoningCostPerMillion:   2.50,
	},
	Model25FlashLite: {
		InputCostPerMillion:       0.10,
		OutputCostPerMillion:      0.40,
		CachedInputCostPerMillion: 0.025,
		ReasoningCostPerMillion:   0.40,
	},
	Model20Flash: {
		InputCostPerMillion:       0.10,
		OutputCostPerMillion:      0.40,
		CachedInputCostPerMillion: 0.025,
	},
	Model20FlashLite: {
		InputCostPerMillion:  0.075,
		OutputCostPerMillion: 0.30,
	},
}

// CalculateCost returns the USD cost of usage on model, or 0 when the model
// has no known price.
func CalculateCost(model string, usage *ai.Usage) float64 {
	mc, ok := ModelPricing.Lookup(model)
	if !ok {
		return 0
	}
	return mc.CalculateTotalCost(usage)
}
