package main

import (
	"errors"
	"fmt"
	"io"
	"strings"

	"github.com/Navanit-git/genai-advance/core/parse"
)

// Exit codes for extraction failures.
const (
	exitNoJSON     = 2
	exitMalformed  = 3
	exitValidation = 4
)

// exitError carries the process exit code of a failed command.
type exitError struct {
	code int
	err  error
}

func (e *exitError) Error() string { return e.err.Error() }

func (e *exitError) Unwrap() error { return e.err }

// exitCodeFor maps an extraction failure to its exit code.
func exitCodeFor(err error) int {
	switch parse.KindOf(err) {
	case parse.KindNoJSON, parse.KindNoYAML:
		return exitNoJSON
	case parse.KindMalformedJSON, parse.KindMalformedYAML:
		return exitMalformed
	case parse.KindSchemaValidation:
		return exitValidation
	}
	return 1
}

// extractionFailure prints the category and details of err to w and returns
// the error to hand back to cobra.
func extractionFailure(w io.Writer, err error) error {
	kind := parse.KindOf(err)
	fmt.Fprintf(w, "category: %s\n", kind)

	var (
		malformed  *parse.MalformedJSONError
		badYAML    *parse.MalformedYAMLError
		validation *parse.SchemaValidationError
	)
	switch {
	case errors.As(err, &malformed):
		fmt.Fprintf(w, "line %d, column %d (offset %d): %v\n", malformed.Line, malformed.Column, malformed.Offset, malformed.Err)
		fmt.Fprintf(w, "span: %s\n", excerpt(malformed.Span))
	case errors.As(err, &badYAML):
		if badYAML.Line > 0 {
			fmt.Fprintf(w, "line %d: ", badYAML.Line)
		}
		fmt.Fprintf(w, "%v\n", badYAML.Err)
	case errors.As(err, &validation):
		for _, issue := range validation.Issues {
			fmt.Fprintf(w, "  - %s\n", issue.String())
		}
	}
	return &exitError{code: exitCodeFor(err), err: err}
}

func excerpt(s string) string {
	s = strings.Join(strings.Fields(s), " ")
	if len(s) > 200 {
		return s[:200] + "..."
	}
	return s
}
