package groq

import "github.com/Navanit-git/genai-advance/core/cost"

// ModelPricing contains on-demand prices in USD per million tokens.
// Source: https://groq.com/pricing
var ModelPricing = cost.Table{
	"qwen/qwen3-32b": {
		InputCostPerMillion:  0.29,
		OutputCostPerMillion: 0.59,
	},
	"llama-3.3-70b-versatile": {
		InputCostPerMillion:  0.59,
		OutputCostPerMillion: 0.79,
	},
	"llama-3.1-8b-instant": {
		InputCostPerMillion:  0.05,
		OutputCostPerMillion: 0.08,
	},
	"openai/gpt-oss-120b": {
		InputCostPerMillion:  0.15,
		OutputCostPerMillion: 0.75,
	},
	"openai/gpt-oss-20b": {
		InputCostPerMillion:  0.10,
		OutputCostPerMillion: 0.50,
	},
}
