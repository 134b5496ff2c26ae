// Command genai extracts schema-conforming records from LLM output.
//
// Usage:
//
//	genai extract --schema contact.json answer.txt
//	genai ask --schema contact.json --provider groq "Ram, ram@example.com"
//	genai instructions --schema contact.json
package main

import (
	"errors"
	"fmt"
	"os"
)

func main() {
	if err := newRootCmd().Execute(); err != nil {
		fmt.Fprintln(os.Stderr, "Error:", err)
		var exitErr *exitError
		if errors.As(err, &exitErr) {
			os.Exit(exitErr.code)
		}
		os.Exit(1)
	}
}
