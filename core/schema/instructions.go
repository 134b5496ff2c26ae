package schema

import (
	"fmt"
	"strings"
	"unicode/utf8"
)

const formatInstructionsTemplate = `The output should be formatted as a JSON instance that conforms to the JSON schema below.

As an example, for the schema {"type": "object", "properties": {"foo": {"type": "array", "items": {"type": "string"}, "description": "a list of strings"}}, "required": ["foo"]}
the object {"foo": ["bar", "baz"]} is a well-formatted instance of the schema. The object {"properties": {"foo": ["bar", "baz"]}} is not well-formatted.

Here is the output schema:
` + "```json\n%s\n```" + `

Wrap the output in ` + "```json```" + ` tags and do not add any other JSON to the answer.`

// FormatInstructions returns prompt text asking a model to answer with a JSON
// object that conforms to s.
func FormatInstructions(s *Schema) string {
	text, err := s.JSONString(true)
	if err != nil {
		text = s.String()
	}
	return fmt.Sprintf(formatInstructionsTemplate, text)
}

const yamlInstructionsTemplate = `The output should be formatted as a YAML instance that conforms to the JSON schema below.

Please follow the standard YAML formatting conventions with an indent of 2 spaces and make sure that the data types adhere strictly to the following JSON schema:
` + "```json\n%s\n```" + `

Make sure to always enclose the YAML output in triple backticks (` + "```yaml```" + `). Please do not add anything other than valid YAML output!`

// YAMLFormatInstructions is the YAML counterpart of FormatInstructions.
func YAMLFormatInstructions(s *Schema) string {
	text, err := s.JSONString(true)
	if err != nil {
		text = s.String()
	}
	return fmt.Sprintf(yamlInstructionsTemplate, text)
}

// RepairInstructions returns a follow-up prompt asking the model to fix its
// previous answer. previous is truncated to at most maxLen bytes, on a rune
// boundary, when maxLen > 0.
func RepairInstructions(s *Schema, previous string, problem error, maxLen int) string {
	previous = strings.TrimSpace(previous)
	if maxLen > 0 && len(previous) > maxLen {
		cut := maxLen
		for cut > 0 && !utf8.RuneStart(previous[cut]) {
			cut--
		}
		previous = previous[:cut] + "\n...[truncated]"
	}
	return fmt.Sprintf(`Return ONLY valid JSON (no markdown, no commentary) that strictly conforms to this schema.

Schema:
%s

Your previous output:
%s

Problem:
%v`, s.String(), previous, problem)
}
