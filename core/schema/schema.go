package schema

import (
	"encoding/json"
	"fmt"
)

// Type names understood by the validator. They match the JSON Schema "type" keyword.
const (
	TypeString  = "string"
	TypeNumber  = "number"
	TypeInteger = "integer"
	TypeBoolean = "boolean"
	TypeObject  = "object"
	TypeArray   = "array"
	typeNull    = "null"
)

// Schema describes the expected shape of a structured model output.
// It follows the JSON Schema vocabulary so the same value can be handed to a
// provider as a native structured output schema and used locally to validate
// what the model actually returned.
//
// A mapping (map[string]V) is an object whose AdditionalProperties holds the
// value schema and that declares no Properties.
type Schema struct {
	// Type is one of the Type* constants, or empty to accept any value.
	Type        string   `json:"type,omitempty"`
	Description string   `json:"description,omitempty"`
	Required    []string `json:"required,omitempty"`
	// Properties of an object, each with its own schema
	Properties map[string]*Schema `json:"properties,omitempty"`
	// Items is the element schema of an array
	Items *Schema `json:"items,omitempty"`
	// AdditionalProperties is either a *Schema (mapping values) or a bool.
	AdditionalProperties any `json:"additionalProperties,omitempty"`
	// Default is filled in when an optional property is absent.
	Default any   `json:"default,omitempty"`
	Enum    []any `json:"enum,omitempty"`
	// Nullable accepts a JSON null; the normalized value is nil.
	Nullable bool `json:"nullable,omitempty"`

	Minimum   *float64 `json:"minimum,omitempty"`
	Maximum   *float64 `json:"maximum,omitempty"`
	MinLength *int     `json:"minLength,omitempty"`
	MaxLength *int     `json:"maxLength,omitempty"`
	Pattern   string   `json:"pattern,omitempty"`

	// Rule is a CEL expression evaluated against the normalized value bound to
	// "self". It must evaluate to a bool.
	Rule string `json:"x-rule,omitempty"`

	// Ref points at an entry of the root Defs ("#/$defs/<name>").
	Ref  string             `json:"$ref,omitempty"`
	Defs map[string]*Schema `json:"$defs,omitempty"`
}

// Any returns a schema that accepts every value.
func Any() *Schema { return &Schema{} }

// String returns a string schema.
func String() *Schema { return &Schema{Type: TypeString} }

// Integer returns an integer schema.
func Integer() *Schema { return &Schema{Type: TypeInteger} }

// Number returns a number schema.
func Number() *Schema { return &Schema{Type: TypeNumber} }

// Boolean returns a boolean schema.
func Boolean() *Schema { return &Schema{Type: TypeBoolean} }

// Array returns a sequence schema whose elements conform to items.
func Array(items *Schema) *Schema {
	return &Schema{Type: TypeArray, Items: items}
}

// Map returns a mapping schema: an object with arbitrary keys whose values
// conform to values.
func Map(values *Schema) *Schema {
	return &Schema{Type: TypeObject, AdditionalProperties: values}
}

// Object returns an object schema with the given properties. Names listed in
// required must be present in the validated value.
func Object(properties map[string]*Schema, required ...string) *Schema {
	return &Schema{
		Type:       TypeObject,
		Properties: properties,
		Required:   required,
	}
}

// WithDescription sets the description and returns the schema.
func (s *Schema) WithDescription(description string) *Schema {
	s.Description = description
	return s
}

// WithDefault sets the default value used when the property is absent.
func (s *Schema) WithDefault(value any) *Schema {
	s.Default = value
	return s
}

// WithEnum restricts the schema to the given values.
func (s *Schema) WithEnum(values ...any) *Schema {
	s.Enum = append([]any(nil), values...)
	return s
}

// WithRule attaches a CEL rule evaluated against the normalized value.
func (s *Schema) WithRule(expr string) *Schema {
	s.Rule = expr
	return s
}

// AsNullable marks the schema as accepting JSON null.
func (s *Schema) AsNullable() *Schema {
	s.Nullable = true
	return s
}

// IsRequired reports whether name is listed in Required.
func (s *Schema) IsRequired(name string) bool {
	for _, r := range s.Required {
		if r == name {
			return true
		}
	}
	return false
}

// mapValues returns the value schema of a mapping, or nil when s is not one.
func (s *Schema) mapValues() *Schema {
	if len(s.Properties) > 0 {
		return nil
	}
	values, _ := s.AdditionalProperties.(*Schema)
	return values
}

// UnmarshalJSON accepts the common JSON Schema spellings produced by other
// generators: "additionalProperties" as an object, "type" as a list including
// "null", and "anyOf" of a single type plus null.
func (s *Schema) UnmarshalJSON(data []byte) error {
	type plain Schema
	var aux struct {
		plain
		Type                 json.RawMessage   `json:"type,omitempty"`
		AdditionalProperties json.RawMessage   `json:"additionalProperties,omitempty"`
		AnyOf                []json.RawMessage `json:"anyOf,omitempty"`
	}
	if err := json.Unmarshal(data, &aux); err != nil {
		return err
	}
	*s = Schema(aux.plain)

	if len(aux.Type) > 0 {
		if err := s.decodeType(aux.Type); err != nil {
			return err
		}
	}

	if len(aux.AdditionalProperties) > 0 {
		var flag bool
		if err := json.Unmarshal(aux.AdditionalProperties, &flag); err == nil {
			s.AdditionalProperties = flag
		} else {
			var values Schema
			if err := json.Unmarshal(aux.AdditionalProperties, &values); err != nil {
				return fmt.Errorf("additionalProperties: %w", err)
			}
			s.AdditionalProperties = &values
		}
	}

	if len(aux.AnyOf) > 0 && s.Type == "" && s.Ref == "" {
		return s.decodeAnyOf(aux.AnyOf)
	}
	return nil
}

func (s *Schema) decodeType(raw json.RawMessage) error {
	var single string
	if err := json.Unmarshal(raw, &single); err == nil {
		s.Type = single
		return nil
	}
	var list []string
	if err := json.Unmarshal(raw, &list); err != nil {
		return fmt.Errorf("type: %w", err)
	}
	for _, t := range list {
		if t == typeNull {
			s.Nullable = true
			continue
		}
		if s.Type != "" {
			return fmt.Errorf("type: union of %q and %q is not supported", s.Type, t)
		}
		s.Type = t
	}
	return nil
}

func (s *Schema) decodeAnyOf(branches []json.RawMessage) error {
	var chosen *Schema
	nullable := false
	for _, raw := range branches {
		var branch Schema
		if err := json.Unmarshal(raw, &branch); err != nil {
			return fmt.Errorf("anyOf: %w", err)
		}
		if branch.Type == typeNull {
			nullable = true
			continue
		}
		if chosen != nil {
			return fmt.Errorf("anyOf: only a single type plus null is supported")
		}
		b := branch
		chosen = &b
	}
	if chosen == nil {
		s.Nullable = s.Nullable || nullable
		return nil
	}
	description, def := s.Description, s.Default
	*s = *chosen
	if description != "" {
		s.Description = description
	}
	if def != nil {
		s.Default = def
	}
	s.Nullable = s.Nullable || nullable
	return nil
}

// JSONString converts the Schema to its JSON representation.
// indent: optional bool parameter. If true, formats JSON with indentation.
func (s *Schema) JSONString(indent ...bool) (string, error) {
	var (
		out []byte
		err error
	)
	if len(indent) > 0 && indent[0] {
		out, err = json.MarshalIndent(s, "", "  ")
	} else {
		out, err = json.Marshal(s)
	}
	if err != nil {
		return "", fmt.Errorf("failed to marshal schema to JSON: %w", err)
	}
	return string(out), nil
}

// String returns the compact JSON representation of the schema.
func (s *Schema) String() string {
	out, err := s.JSONString()
	if err != nil {
		return fmt.Sprintf("error: %v", err)
	}
	return out
}
