package config

import (
	"fmt"

	"github.com/Navanit-git/genai-advance/core/cost"
	"github.com/Navanit-git/genai-advance/providers/ai"
	"github.com/Navanit-git/genai-advance/providers/ai/gemini"
	"github.com/Navanit-git/genai-advance/providers/ai/groq"
	"github.com/Navanit-git/genai-advance/providers/ai/openai"
)

// envKeys names the variable to mention when a key is missing.
var envKeys = map[string]string{
	ProviderGroq:   "GROQ_API_KEY",
	ProviderGemini: "GEMINI_API_KEY",
	ProviderOpenAI: "OPENAI_API_KEY",
}

// ProviderSettings returns the settings of the named provider.
func (c *Config) ProviderSettings(name string) (ProviderConfig, error) {
	switch name {
	case ProviderGroq:
		return c.Providers.Groq, nil
	case ProviderGemini:
		return c.Providers.Gemini, nil
	case ProviderOpenAI:
		return c.Providers.OpenAI, nil
	}
	return ProviderConfig{}, fmt.Errorf("unknown provider %q (want groq, gemini or openai)", name)
}

// NewProvider builds the named provider, or Config.Provider when name is
// empty. The provider's default model is set from ModelFor.
func (c *Config) NewProvider(name string) (ai.Provider, error) {
	if name == "" {
		name = c.Provider
	}
	settings, err := c.ProviderSettings(name)
	if err != nil {
		return nil, err
	}
	if settings.APIKey == "" {
		return nil, fmt.Errorf("%s: API key is not set (set %s or providers.%s.api_key)", name, envKeys[name], name)
	}
	model := c.ModelFor(name)

	switch name {
	case ProviderGroq, ProviderOpenAI:
		var p *openai.OpenAIProvider
		if name == ProviderGroq {
			p = groq.New()
		} else {
			p = openai.New()
		}
		if settings.BaseURL != "" {
			p.WithBaseURL(settings.BaseURL)
		}
		if model != "" {
			p.WithDefaultModel(model)
		}
		p.WithAPIKey(settings.APIKey)
		return p, nil
	default:
		p := gemini.New()
		if settings.BaseURL != "" {
			p.WithBaseURL(settings.BaseURL)
		}
		if model != "" {
			p.WithDefaultModel(model)
		}
		p.WithAPIKey(settings.APIKey)
		return p, nil
	}
}

// ModelFor returns the model to use with the named provider: the top-level
// Model when set, else the provider's configured model. An empty result
// means the provider's built-in default.
func (c *Config) ModelFor(name string) string {
	if c.Model != "" {
		return c.Model
	}
	settings, err := c.ProviderSettings(name)
	if err != nil {
		return ""
	}
	return settings.Model
}

// CostTable returns the built-in prices of every provider overridden by
// Config.Pricing.
func (c *Config) CostTable() cost.Table {
	return gemini.ModelPricing.
		Merge(groq.ModelPricing).
		Merge(openai.ModelPricing).
		Merge(c.Pricing)
}
