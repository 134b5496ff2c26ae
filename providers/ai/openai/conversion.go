package openai

import (
	"sort"

	"github.com/Navanit-git/genai-advance/core/schema"
)

// jsonSchemaFor renders s as the JSON Schema object OpenAI expects.
// Nullable becomes a ["T", "null"] type list and the local x-rule keyword is
// dropped. In strict mode every property is listed as required (optional ones
// turn nullable) and objects forbid additional properties.
func jsonSchemaFor(s *schema.Schema, strict bool) map[string]any {
	return convertSchema(s, strict, false)
}

func convertSchema(s *schema.Schema, strict, forceNullable bool) map[string]any {
	out := map[string]any{}
	if s == nil {
		return out
	}
	if s.Ref != "" {
		if s.Nullable || forceNullable {
			out["anyOf"] = []any{map[string]any{"$ref": s.Ref}, map[string]any{"type": "null"}}
			return out
		}
		out["$ref"] = s.Ref
		return out
	}

	nullable := s.Nullable || forceNullable
	if s.Type != "" {
		if nullable {
			out["type"] = []any{s.Type, "null"}
		} else {
			out["type"] = s.Type
		}
	}
	if s.Description != "" {
		out["description"] = s.Description
	}
	if len(s.Enum) > 0 {
		enum := append([]any(nil), s.Enum...)
		if nullable {
			enum = append(enum, nil)
		}
		out["enum"] = enum
	}
	if s.Default != nil && !strict {
		out["default"] = s.Default
	}
	if s.Minimum != nil {
		out["minimum"] = *s.Minimum
	}
	if s.Maximum != nil {
		out["maximum"] = *s.Maximum
	}
	if s.MinLength != nil {
		out["minLength"] = *s.MinLength
	}
	if s.MaxLength != nil {
		out["maxLength"] = *s.MaxLength
	}
	if s.Pattern != "" {
		out["pattern"] = s.Pattern
	}
	if s.Items != nil {
		out["items"] = convertSchema(s.Items, strict, false)
	}

	if len(s.Properties) > 0 {
		names := make([]string, 0, len(s.Properties))
		for name := range s.Properties {
			names = append(names, name)
		}
		sort.Strings(names)

		props := make(map[string]any, len(names))
		for _, name := range names {
			optional := strict && !s.IsRequired(name)
			props[name] = convertSchema(s.Properties[name], strict, optional)
		}
		out["properties"] = props
		if strict {
			out["required"] = names
			out["additionalProperties"] = false
		} else if len(s.Required) > 0 {
			out["required"] = append([]string(nil), s.Required...)
		}
	}

	switch ap := s.AdditionalProperties.(type) {
	case *schema.Schema:
		out["additionalProperties"] = convertSchema(ap, strict, false)
	case bool:
		if !strict || len(s.Properties) == 0 {
			out["additionalProperties"] = ap
		}
	}

	if len(s.Defs) > 0 {
		defs := make(map[string]any, len(s.Defs))
		for name, def := range s.Defs {
			defs[name] = convertSchema(def, strict, false)
		}
		out["$defs"] = defs
	}
	return out
}

// strictCompatible reports whether s can be sent with strict enabled. Strict
// mode rejects free-form values and mappings, so those schemas go non-strict.
func strictCompatible(s *schema.Schema) bool {
	return strictWalk(s, map[*schema.Schema]bool{})
}

func strictWalk(s *schema.Schema, seen map[*schema.Schema]bool) bool {
	if s == nil || seen[s] {
		return true
	}
	seen[s] = true
	if s.Ref == "" && s.Type == "" {
		return false
	}
	if _, ok := s.AdditionalProperties.(*schema.Schema); ok {
		return false
	}
	if s.Type == schema.TypeObject && len(s.Properties) == 0 {
		return false
	}
	for _, p := range s.Properties {
		if !strictWalk(p, seen) {
			return false
		}
	}
	for _, d := range s.Defs {
		if !strictWalk(d, seen) {
			return false
		}
	}
	return strictWalk(s.Items, seen)
}
