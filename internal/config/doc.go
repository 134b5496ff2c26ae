// Package config loads the runtime configuration of the genai tools with
// viper: built-in defaults, an optional YAML file, a .env file and the
// environment, in increasing order of precedence. It also builds the
// configured provider and the price table used for cost reporting.
//
// A minimal genai.yaml:
//
//	provider: groq
//	extraction:
//	  mode: prompt
//	  max_reprompts: 2
//	pricing:
//	  my-finetune:
//	    input_cost_per_million: 0.5
//	    output_cost_per_million: 1.5
package config
