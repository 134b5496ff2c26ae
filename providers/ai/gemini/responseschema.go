package gemini

import (
	"sort"
	"strings"

	"github.com/Navanit-git/genai-advance/core/schema"
)

// maxRefDepth bounds how many times a $ref is inlined along one path.
// responseSchema has no references, so recursive types are cut off there.
const maxRefDepth = 3

var openAPITypes = map[string]string{
	schema.TypeString:  "STRING",
	schema.TypeInteger: "INTEGER",
	schema.TypeNumber:  "NUMBER",
	schema.TypeBoolean: "BOOLEAN",
	schema.TypeArray:   "ARRAY",
	schema.TypeObject:  "OBJECT",
}

// toResponseSchema converts s to Gemini's responseSchema. References are
// inlined, and rules and defaults are dropped. It returns false when s cannot
// be expressed, for example untyped values, mappings, objects without
// properties or a required field on a recursion cut.
func toResponseSchema(s *schema.Schema) (*openAPISchema, bool) {
	if s == nil {
		return nil, false
	}
	c := converter{root: s, depth: map[string]int{}}
	out := c.convert(s)
	return out, out != nil && !c.unsupported
}

type converter struct {
	root        *schema.Schema
	depth       map[string]int
	unsupported bool
}

// convert returns nil for a node that must be omitted (a recursion cut).
func (c *converter) convert(s *schema.Schema) *openAPISchema {
	if s.Ref != "" {
		name := strings.TrimPrefix(s.Ref, "#/$defs/")
		def := c.root.Defs[name]
		if def == nil {
			c.unsupported = true
			return nil
		}
		if c.depth[name] >= maxRefDepth {
			return nil
		}
		c.depth[name]++
		defer func() { c.depth[name]-- }()
		out := c.convert(def)
		if out != nil && s.Nullable {
			out.Nullable = true
		}
		return out
	}

	typ, ok := openAPITypes[s.Type]
	if !ok {
		c.unsupported = true
		return nil
	}
	if _, isMap := s.AdditionalProperties.(*schema.Schema); isMap {
		c.unsupported = true
		return nil
	}

	out := &openAPISchema{
		Type:        typ,
		Description: s.Description,
		Nullable:    s.Nullable,
		Minimum:     s.Minimum,
		Maximum:     s.Maximum,
		MinLength:   s.MinLength,
		MaxLength:   s.MaxLength,
		Pattern:     s.Pattern,
	}
	if enum, ok := stringEnum(s.Enum); ok && typ == "STRING" {
		out.Enum = enum
		out.Format = "enum"
	}

	switch typ {
	case "ARRAY":
		if s.Items == nil {
			c.unsupported = true
			return nil
		}
		out.Items = c.convert(s.Items)
		if out.Items == nil {
			return nil
		}
	case "OBJECT":
		if len(s.Properties) == 0 {
			c.unsupported = true
			return nil
		}
		names := make([]string, 0, len(s.Properties))
		for name := range s.Properties {
			names = append(names, name)
		}
		sort.Strings(names)

		out.Properties = make(map[string]*openAPISchema, len(names))
		for _, name := range names {
			prop := c.convert(s.Properties[name])
			if prop == nil {
				if s.IsRequired(name) {
					c.unsupported = true
				}
				continue
			}
			out.Properties[name] = prop
			out.PropertyOrdering = append(out.PropertyOrdering, name)
			if s.IsRequired(name) {
				out.Required = append(out.Required, name)
			}
		}
		if len(out.Properties) == 0 {
			return nil
		}
	}
	return out
}

func stringEnum(values []any) ([]string, bool) {
	if len(values) == 0 {
		return nil, false
	}
	out := make([]string, 0, len(values))
	for _, v := range values {
		str, ok := v.(string)
		if !ok {
			return nil, false
		}
		out = append(out, str)
	}
	return out, true
}
