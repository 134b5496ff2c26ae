package parse

import (
	"encoding/json"
	"errors"
	"fmt"

	"github.com/Navanit-git/genai-advance/core/schema"
)

// Option configures an extraction.
type Option func(*options)

type options struct {
	repair bool
	strict bool
	unwrap bool
}

func newOptions(opts []Option) options {
	var o options
	for _, opt := range opts {
		opt(&o)
	}
	return o
}

// WithRepair runs a span that fails to parse through a JSON repairer before
// giving up. Without it, any syntax error is reported as *MalformedJSONError.
func WithRepair() Option {
	return func(o *options) { o.repair = true }
}

// WithStrictTypes disables the lax coercions of schema validation.
func WithStrictTypes() Option {
	return func(o *options) { o.strict = true }
}

// WithSchemaUnwrap unwraps {"type": ..., "value": ...} envelopes below the
// root object before validation.
func WithSchemaUnwrap() Option {
	return func(o *options) { o.unwrap = true }
}

// Extract converts free-form model output into a record that conforms to s.
//
// It locates the candidate object (see [Locate]), parses it, validates it
// against s and returns the normalized record. Failures are, in order:
//
//   - [ErrNoJSONFound] when the text has no opening brace
//   - *[MalformedJSONError] when the located span does not parse
//   - *[SchemaValidationError] when the parsed object does not satisfy s
//
// A nil schema accepts any object. Extract keeps no state, does not modify
// its inputs and is safe for concurrent use.
func Extract(raw string, s *schema.Schema, opts ...Option) (map[string]any, error) {
	o := newOptions(opts)
	span, err := Locate(raw)
	if err != nil {
		return nil, err
	}
	return extractSpan(span.Text, s, o)
}

// ExtractAll extracts every top-level object found by [LocateAll], in order.
// It stops at the first failure.
func ExtractAll(raw string, s *schema.Schema, opts ...Option) ([]map[string]any, error) {
	o := newOptions(opts)
	spans, err := LocateAll(raw)
	if err != nil {
		return nil, err
	}
	records := make([]map[string]any, 0, len(spans))
	for i, span := range spans {
		rec, err := extractSpan(span.Text, s, o)
		if err != nil {
			return nil, fmt.Errorf("object %d: %w", i, err)
		}
		records = append(records, rec)
	}
	return records, nil
}

// ExtractAs extracts a record using the schema generated from T and decodes
// it into a T.
func ExtractAs[T any](raw string, opts ...Option) (T, error) {
	var result T
	s, err := schema.Generate[T]()
	if err != nil {
		return result, fmt.Errorf("failed to generate schema for %T: %w", result, err)
	}
	rec, err := Extract(raw, s, opts...)
	if err != nil {
		return result, err
	}
	if err := Decode(rec, &result); err != nil {
		return result, err
	}
	return result, nil
}

// Decode copies a normalized record into target, which must be a pointer.
func Decode(rec map[string]any, target any) error {
	data, err := json.Marshal(rec)
	if err != nil {
		return fmt.Errorf("failed to encode record: %w", err)
	}
	if err := json.Unmarshal(data, target); err != nil {
		return fmt.Errorf("failed to decode record into %T: %w", target, err)
	}
	return nil
}

func extractSpan(span string, s *schema.Schema, o options) (map[string]any, error) {
	obj, err := decodeObject(span, o.repair)
	if err != nil {
		return nil, err
	}
	if o.unwrap {
		obj = unwrapEnvelopes(obj)
	}
	return validateRecord(span, obj, s, o)
}

func validateRecord(span string, obj map[string]any, s *schema.Schema, o options) (map[string]any, error) {
	var vopts []schema.ValidateOption
	if o.strict {
		vopts = append(vopts, schema.WithStrictTypes())
	}

	out, err := s.Validate(obj, vopts...)
	if err != nil {
		var verr *schema.ValidationError
		if errors.As(err, &verr) {
			return nil, &SchemaValidationError{Span: span, Issues: verr.Issues, Err: verr}
		}
		return nil, err
	}

	rec, ok := out.(map[string]any)
	if !ok {
		verr := &schema.ValidationError{Issues: []schema.Issue{{
			Expected: schema.TypeObject,
			Actual:   fmt.Sprintf("%T", out),
			Message:  "expected the output to be an object",
		}}}
		return nil, &SchemaValidationError{Span: span, Issues: verr.Issues, Err: verr}
	}
	return rec, nil
}
