package openai

import "github.com/Navanit-git/genai-advance/core/cost"

// ModelPricing contains standard-tier prices in USD per million tokens.
// Reasoning tokens are billed as output and are already part of the
// completion count, so no separate reasoning rate is set.
// Source: https://openai.com/api/pricing
var ModelPricing = cost.Table{
	"gpt-4o": {
		InputCostPerMillion:       2.50,
		OutputCostPerMillion:      10.00,
		CachedInputCostPerMillion: 1.25,
	},
	"gpt-4o-mini": {
		InputCostPerMillion:       0.15,
		OutputCostPerMillion:      0.60,
		CachedInputCostPerMillion: 0.075,
	},
	"gpt-4.1": {
		InputCostPerMillion:       2.00,
		OutputCostPerMillion:      8.00,
		CachedInputCostPerMillion: 0.50,
	},
	"gpt-4.1-mini": {
		InputCostPerMillion:       0.40,
		OutputCostPerMillion:      1.60,
		CachedInputCostPerMillion: 0.10,
	},
}
