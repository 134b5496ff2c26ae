package config

import (
	"errors"
	"fmt"
	"io/fs"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/spf13/viper"

	"github.com/Navanit-git/genai-advance/core/cost"
)

// Provider names accepted in Config.Provider.
const (
	ProviderGroq   = "groq"
	ProviderGemini = "gemini"
	ProviderOpenAI = "openai"
)

// Config is the complete runtime configuration of the genai tools.
type Config struct {
	// Provider selects the LLM provider: groq, gemini or openai.
	Provider string `mapstructure:"provider" yaml:"provider"`
	// Model overrides the model of whichever provider is selected.
	Model string `mapstructure:"model" yaml:"model,omitempty"`
	// SystemPrompt is sent with every request.
	SystemPrompt string `mapstructure:"system_prompt" yaml:"system_prompt,omitempty"`
	// Timeout bounds a single provider call. Zero disables it.
	Timeout time.Duration `mapstructure:"timeout" yaml:"timeout"`

	Log        LogConfig        `mapstructure:"log" yaml:"log"`
	Providers  ProvidersConfig  `mapstructure:"providers" yaml:"providers"`
	Extraction ExtractionConfig `mapstructure:"extraction" yaml:"extraction"`
	Retry      RetryConfig      `mapstructure:"retry" yaml:"retry"`

	// Pricing adds to or overrides the built-in per-model prices.
	Pricing cost.Table `mapstructure:"pricing" yaml:"pricing,omitempty"`
}

// LogConfig controls the slog logger.
type LogConfig struct {
	// Level is TRACE, DEBUG, INFO, WARN or ERROR.
	Level string `mapstructure:"level" yaml:"level"`
	JSON  bool   `mapstructure:"json" yaml:"json"`
	// Requests is the request logging verbosity: off, minimal, standard or verbose.
	Requests string `mapstructure:"requests" yaml:"requests"`
}

// ProvidersConfig holds per-provider settings.
type ProvidersConfig struct {
	Groq   ProviderConfig `mapstructure:"groq" yaml:"groq"`
	Gemini ProviderConfig `mapstructure:"gemini" yaml:"gemini"`
	OpenAI ProviderConfig `mapstructure:"openai" yaml:"openai"`
}

// ProviderConfig holds the credentials and endpoint of one provider. Empty
// fields keep the provider's defaults.
type ProviderConfig struct {
	APIKey  string `mapstructure:"api_key" yaml:"api_key,omitempty"`
	BaseURL string `mapstructure:"base_url" yaml:"base_url,omitempty"`
	Model   string `mapstructure:"model" yaml:"model,omitempty"`
}

// ExtractionConfig tunes structured extraction.
type ExtractionConfig struct {
	// Mode is "native" or "prompt".
	Mode string `mapstructure:"mode" yaml:"mode"`
	// Strict asks providers for strict schema adherence.
	Strict bool `mapstructure:"strict" yaml:"strict"`
	// StrictTypes disables lax coercion such as "42" to 42.
	StrictTypes bool `mapstructure:"strict_types" yaml:"strict_types"`
	// MaxReprompts is how many repair prompts may follow a failed extraction.
	MaxReprompts int `mapstructure:"max_reprompts" yaml:"max_reprompts"`
	// Repair runs JSON repair on malformed spans before giving up.
	Repair bool `mapstructure:"repair" yaml:"repair"`
	// Unwrap strips {"type", "value"} envelopes.
	Unwrap bool `mapstructure:"unwrap" yaml:"unwrap"`
}

// RetryConfig tunes the retry middleware. MaxRetries 0 disables retries.
type RetryConfig struct {
	MaxRetries     int           `mapstructure:"max_retries" yaml:"max_retries"`
	InitialBackoff time.Duration `mapstructure:"initial_backoff" yaml:"initial_backoff"`
	MaxBackoff     time.Duration `mapstructure:"max_backoff" yaml:"max_backoff"`
}

// DefaultConfig returns the configuration used when nothing is set.
func DefaultConfig() *Config {
	return &Config{
		Provider: ProviderGroq,
		Timeout:  60 * time.Second,
		Log: LogConfig{
			Level:    "INFO",
			Requests: "off",
		},
		Extraction: ExtractionConfig{
			Mode:         "native",
			MaxReprompts: 1,
		},
		Retry: RetryConfig{
			MaxRetries:     3,
			InitialBackoff: time.Second,
			MaxBackoff:     30 * time.Second,
		},
	}
}

// keyDelimiter separates nested keys. Model names in the pricing table
// contain dots, so the viper default cannot be used.
const keyDelimiter = "::"

func key(parts ...string) string {
	return strings.Join(parts, keyDelimiter)
}

// conventionalEnv maps config keys to the variables provider SDKs use, so
// GROQ_API_KEY works as well as GENAI_PROVIDERS_GROQ_API_KEY.
var conventionalEnv = map[string]string{
	key("providers", ProviderGroq, "api_key"):    "GROQ_API_KEY",
	key("providers", ProviderGroq, "base_url"):   "GROQ_API_BASE_URL",
	key("providers", ProviderGemini, "api_key"):  "GEMINI_API_KEY",
	key("providers", ProviderGemini, "base_url"): "GEMINI_API_BASE_URL",
	key("providers", ProviderOpenAI, "api_key"):  "OPENAI_API_KEY",
	key("providers", ProviderOpenAI, "base_url"): "OPENAI_API_BASE_URL",
	key("log", "level"):                          "LOG_LEVEL",
}

// Load reads the configuration. Values come, lowest precedence first, from
// DefaultConfig, the YAML file, and the environment. Environment keys are
// GENAI_ prefixed with nesting spelled as underscores, such as
// GENAI_EXTRACTION_MODE; the conventional provider variables such as
// GROQ_API_KEY work too. A .env file in the working directory is loaded into
// the environment first without overriding variables that are already set.
//
// An empty path searches ./genai.yaml and $HOME/.genai/genai.yaml and
// tolerates their absence. An explicit path must exist.
func Load(path string) (*Config, error) {
	if err := loadDotEnv(".env"); err != nil {
		return nil, err
	}

	v := viper.NewWithOptions(viper.KeyDelimiter(keyDelimiter))
	setDefaults(v, DefaultConfig())

	v.SetEnvPrefix("GENAI")
	v.SetEnvKeyReplacer(strings.NewReplacer(keyDelimiter, "_"))
	v.AutomaticEnv()
	for k, conventional := range conventionalEnv {
		prefixed := "GENAI_" + strings.ToUpper(strings.ReplaceAll(k, keyDelimiter, "_"))
		if err := v.BindEnv(k, prefixed, conventional); err != nil {
			return nil, fmt.Errorf("failed to bind %s: %w", k, err)
		}
	}

	if path != "" {
		v.SetConfigFile(path)
	} else {
		v.SetConfigName("genai")
		v.SetConfigType("yaml")
		v.AddConfigPath(".")
		v.AddConfigPath("$HOME/.genai")
	}
	if err := v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if path != "" || !errors.As(err, &notFound) {
			return nil, fmt.Errorf("error reading config file: %w", err)
		}
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("failed to unmarshal config: %w", err)
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

func loadDotEnv(path string) error {
	err := godotenv.Load(path)
	if err == nil || errors.Is(err, fs.ErrNotExist) {
		return nil
	}
	return fmt.Errorf("failed to load %s: %w", path, err)
}

// setDefaults registers every key so that environment variables can reach
// it through Unmarshal.
func setDefaults(v *viper.Viper, d *Config) {
	v.SetDefault("provider", d.Provider)
	v.SetDefault("model", d.Model)
	v.SetDefault("system_prompt", d.SystemPrompt)
	v.SetDefault("timeout", d.Timeout)

	v.SetDefault(key("log", "level"), d.Log.Level)
	v.SetDefault(key("log", "json"), d.Log.JSON)
	v.SetDefault(key("log", "requests"), d.Log.Requests)

	for name, p := range map[string]ProviderConfig{
		ProviderGroq:   d.Providers.Groq,
		ProviderGemini: d.Providers.Gemini,
		ProviderOpenAI: d.Providers.OpenAI,
	} {
		v.SetDefault(key("providers", name, "api_key"), p.APIKey)
		v.SetDefault(key("providers", name, "base_url"), p.BaseURL)
		v.SetDefault(key("providers", name, "model"), p.Model)
	}

	v.SetDefault(key("extraction", "mode"), d.Extraction.Mode)
	v.SetDefault(key("extraction", "strict"), d.Extraction.Strict)
	v.SetDefault(key("extraction", "strict_types"), d.Extraction.StrictTypes)
	v.SetDefault(key("extraction", "max_reprompts"), d.Extraction.MaxReprompts)
	v.SetDefault(key("extraction", "repair"), d.Extraction.Repair)
	v.SetDefault(key("extraction", "unwrap"), d.Extraction.Unwrap)

	v.SetDefault(key("retry", "max_retries"), d.Retry.MaxRetries)
	v.SetDefault(key("retry", "initial_backoff"), d.Retry.InitialBackoff)
	v.SetDefault(key("retry", "max_backoff"), d.Retry.MaxBackoff)
}

// Validate reports the first invalid setting.
func (c *Config) Validate() error {
	switch c.Provider {
	case ProviderGroq, ProviderGemini, ProviderOpenAI:
	default:
		return fmt.Errorf("unknown provider %q (want groq, gemini or openai)", c.Provider)
	}
	switch c.Extraction.Mode {
	case "native", "prompt":
	default:
		return fmt.Errorf("unknown extraction mode %q (want native or prompt)", c.Extraction.Mode)
	}
	switch strings.ToLower(c.Log.Requests) {
	case "", "off", "minimal", "standard", "verbose":
	default:
		return fmt.Errorf("unknown request log level %q", c.Log.Requests)
	}
	if c.Extraction.MaxReprompts < 0 {
		return errors.New("extraction.max_reprompts must not be negative")
	}
	if c.Retry.MaxRetries < 0 {
		return errors.New("retry.max_retries must not be negative")
	}
	if c.Timeout < 0 {
		return errors.New("timeout must not be negative")
	}
	for model, price := range c.Pricing {
		if price.InputCostPerMillion < 0 || price.OutputCostPerMillion < 0 {
			return fmt.Errorf("pricing for %q must not be negative", model)
		}
	}
	return nil
}
