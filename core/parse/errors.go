package parse

import (
	"errors"
	"fmt"
	"strings"

	"github.com/Navanit-git/genai-advance/core/schema"
)

var (
	// ErrNoJSONFound is returned when the output contains no JSON object at all.
	ErrNoJSONFound = errors.New("no JSON object found in model output")

	// ErrNoYAMLFound is returned when the output contains no YAML mapping.
	ErrNoYAMLFound = errors.New("no YAML mapping found in model output")
)

// MalformedJSONError reports a located span that is not valid JSON.
type MalformedJSONError struct {
	// Span is the candidate text that failed to parse.
	Span string
	// Offset is the byte offset of the syntax error within Span.
	Offset int
	// Line and Column locate Offset within Span, both 1-based.
	Line   int
	Column int
	Err    error
}

func newMalformedJSONError(span string, offset int, err error) *MalformedJSONError {
	line, col := position(span, offset)
	return &MalformedJSONError{Span: span, Offset: offset, Line: line, Column: col, Err: err}
}

func (e *MalformedJSONError) Error() string {
	return fmt.Sprintf("malformed JSON at line %d, column %d: %v", e.Line, e.Column, e.Err)
}

func (e *MalformedJSONError) Unwrap() error { return e.Err }

// MalformedYAMLError reports a YAML document that failed to parse.
type MalformedYAMLError struct {
	Span string
	// Line is the 1-based line reported by the decoder, or 0 when unknown.
	Line int
	Err  error
}

func (e *MalformedYAMLError) Error() string {
	if e.Line > 0 {
		return fmt.Sprintf("malformed YAML at line %d: %v", e.Line, e.Err)
	}
	return fmt.Sprintf("malformed YAML: %v", e.Err)
}

func (e *MalformedYAMLError) Unwrap() error { return e.Err }

// SchemaValidationError reports a parsed object that does not satisfy the
// schema. It unwraps to the *schema.ValidationError carrying the same issues.
type SchemaValidationError struct {
	Span   string
	Issues []schema.Issue
	Err    *schema.ValidationError
}

func (e *SchemaValidationError) Error() string {
	parts := make([]string, len(e.Issues))
	for i, issue := range e.Issues {
		parts[i] = issue.String()
	}
	return "output does not match schema: " + strings.Join(parts, "; ")
}

func (e *SchemaValidationError) Unwrap() error { return e.Err }

// Fields returns the path of every offending field.
func (e *SchemaValidationError) Fields() []string {
	fields := make([]string, len(e.Issues))
	for i, issue := range e.Issues {
		fields[i] = issue.Path
	}
	return fields
}

// Kind classifies an extraction error.
type Kind string

const (
	KindNone             Kind = "none"
	KindNoJSON           Kind = "no_json"
	KindMalformedJSON    Kind = "malformed_json"
	KindSchemaValidation Kind = "schema_validation"
	KindNoYAML           Kind = "no_yaml"
	KindMalformedYAML    Kind = "malformed_yaml"
	KindOther            Kind = "other"
)

// KindOf returns the category of err. It is suitable as a metric label.
func KindOf(err error) Kind {
	var (
		malformed  *MalformedJSONError
		badYAML    *MalformedYAMLError
		validation *SchemaValidationError
	)
	switch {
	case err == nil:
		return KindNone
	case errors.Is(err, ErrNoJSONFound):
		return KindNoJSON
	case errors.Is(err, ErrNoYAMLFound):
		return KindNoYAML
	case errors.As(err, &malformed):
		return KindMalformedJSON
	case errors.As(err, &badYAML):
		return KindMalformedYAML
	case errors.As(err, &validation):
		return KindSchemaValidation
	default:
		return KindOther
	}
}

// position converts a byte offset into a 1-based line and column.
func position(text string, offset int) (line, col int) {
	if offset > len(text) {
		offset = len(text)
	}
	if offset < 0 {
		offset = 0
	}
	before := text[:offset]
	line = strings.Count(before, "\n") + 1
	col = offset - strings.LastIndexByte(before, '\n')
	return line, col
}
