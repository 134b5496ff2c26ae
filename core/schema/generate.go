package schema

import (
	"fmt"
	"reflect"
	"strconv"
	"strings"
	"time"
)

// Generate derives a Schema from the Go type T.
//
// Field names come from the `json` tag. A field is required when it is not a
// pointer and has no omitempty option, or when its `jsonschema` tag says so.
// Pointer fields are nullable. The `jsonschema` tag accepts a comma separated
// list of:
//
//	required
//	description=<text>
//	enum=<value>          (repeatable, converted to the field kind)
//	default=<value>       (converted to the field kind)
//	minimum=<n>, maximum=<n>, minLength=<n>, maxLength=<n>
//	pattern=<regexp>
//	rule=<CEL expression>
//
// A comma inside a description, pattern or rule is kept when the text after it
// does not start with one of the keys above.
//
// Types that reference themselves are emitted once under $defs and referenced
// with $ref.
func Generate[T any]() (*Schema, error) {
	return GenerateFor(reflect.TypeFor[T]())
}

// GenerateFor is the reflect.Type form of Generate.
func GenerateFor(t reflect.Type) (*Schema, error) {
	if t == nil {
		return nil, fmt.Errorf("cannot generate a schema for a nil type")
	}
	ctx := &schemaContext{
		visited: make(map[reflect.Type]string),
		defs:    make(map[string]*Schema),
	}
	for t.Kind() == reflect.Ptr {
		t = t.Elem()
	}

	s, err := ctx.generate(t, true)
	if err != nil {
		return nil, err
	}
	if len(ctx.defs) > 0 {
		s.Defs = ctx.defs
	}
	return s, nil
}

// schemaContext tracks the state during schema generation to handle recursion
type schemaContext struct {
	visited map[reflect.Type]string // Maps types to their definition names
	defs    map[string]*Schema      // Stores reusable schema definitions
}

var timeType = reflect.TypeFor[time.Time]()

func (ctx *schemaContext) generate(t reflect.Type, isRoot bool) (*Schema, error) {
	if t == timeType {
		return &Schema{Type: TypeString, Description: "RFC 3339 timestamp"}, nil
	}

	switch t.Kind() {
	case reflect.String:
		return String(), nil
	case reflect.Bool:
		return Boolean(), nil
	case reflect.Float32, reflect.Float64:
		return Number(), nil
	case reflect.Int, reflect.Int8, reflect.Int16, reflect.Int32, reflect.Int64,
		reflect.Uint, reflect.Uint8, reflect.Uint16, reflect.Uint32, reflect.Uint64:
		return Integer(), nil
	case reflect.Slice, reflect.Array:
		items, err := ctx.generate(t.Elem(), false)
		if err != nil {
			return nil, err
		}
		return Array(items), nil
	case reflect.Map:
		if t.Key().Kind() != reflect.String {
			return nil, fmt.Errorf("map key type %v is not supported, keys must be strings", t.Key())
		}
		values, err := ctx.generate(t.Elem(), false)
		if err != nil {
			return nil, err
		}
		return Map(values), nil
	case reflect.Ptr:
		s, err := ctx.generate(t.Elem(), isRoot)
		if err != nil {
			return nil, err
		}
		s.Nullable = true
		return s, nil
	case reflect.Interface:
		return Any(), nil
	case reflect.Struct:
		return ctx.generateStruct(t, isRoot)
	default:
		return nil, fmt.Errorf("type %v is not supported", t)
	}
}

func (ctx *schemaContext) generateStruct(t reflect.Type, isRoot bool) (*Schema, error) {
	// Already seen: the type is recursive, reference its definition.
	if defName, exists := ctx.visited[t]; exists {
		return &Schema{Ref: "#/$defs/" + defName}, nil
	}

	recursive := checkRecursion(t, t, make(map[reflect.Type]bool))
	defName := ""
	if recursive {
		defName = defNameFor(t)
		ctx.visited[t] = defName
	}

	s := &Schema{Type: TypeObject, Properties: make(map[string]*Schema)}
	for i := 0; i < t.NumField(); i++ {
		field := t.Field(i)
		if !field.IsExported() {
			continue
		}
		name, omitEmpty, skip := jsonFieldName(field)
		if skip {
			continue
		}

		fieldSchema, err := ctx.generate(field.Type, false)
		if err != nil {
			return nil, fmt.Errorf("field %s: %w", name, err)
		}

		requiredByTag := false
		if fieldSchema.Ref == "" {
			requiredByTag, err = applyTag(field.Type, field.Tag.Get("jsonschema"), fieldSchema)
			if err != nil {
				return nil, fmt.Errorf("field %s: %w", name, err)
			}
		}
		if (field.Type.Kind() != reflect.Ptr && !omitEmpty) || requiredByTag {
			s.Required = append(s.Required, name)
		}
		s.Properties[name] = fieldSchema
	}

	if !recursive {
		return s, nil
	}
	ctx.defs[defName] = s
	if isRoot {
		root := *s
		return &root, nil
	}
	return &Schema{Ref: "#/$defs/" + defName}, nil
}

// jsonFieldName returns the encoded name of field and whether it is omitempty.
func jsonFieldName(field reflect.StructField) (name string, omitEmpty bool, skip bool) {
	tag := field.Tag.Get("json")
	if tag == "-" {
		return "", false, true
	}
	name = field.Name
	if tag == "" {
		return name, false, false
	}
	parts := strings.Split(tag, ",")
	if parts[0] != "" {
		name = parts[0]
	}
	for _, opt := range parts[1:] {
		if opt == "omitempty" || opt == "omitzero" {
			omitEmpty = true
		}
	}
	return name, omitEmpty, false
}

// checkRecursion recursively checks if target appears in the fields of current
func checkRecursion(target, current reflect.Type, visited map[reflect.Type]bool) bool {
	if visited[current] {
		return false
	}
	visited[current] = true

	switch current.Kind() {
	case reflect.Struct:
		for i := 0; i < current.NumField(); i++ {
			field := current.Field(i)
			if !field.IsExported() {
				continue
			}
			if reachesType(target, field.Type, visited) {
				return true
			}
		}
	case reflect.Ptr, reflect.Slice, reflect.Array, reflect.Map:
		return reachesType(target, current.Elem(), visited)
	}
	return false
}

func reachesType(target, t reflect.Type, visited map[reflect.Type]bool) bool {
	for t.Kind() == reflect.Ptr || t.Kind() == reflect.Slice || t.Kind() == reflect.Array || t.Kind() == reflect.Map {
		t = t.Elem()
	}
	if t == target {
		return true
	}
	return t.Kind() == reflect.Struct && checkRecursion(target, t, visited)
}

// defNameFor creates a definition name for a type
func defNameFor(t reflect.Type) string {
	if t.Name() != "" {
		return strings.ToLower(t.Name())
	}
	return "anonymousStruct"
}

var tagKeys = map[string]bool{
	"required":    true,
	"description": true,
	"enum":        true,
	"default":     true,
	"minimum":     true,
	"maximum":     true,
	"minLength":   true,
	"maxLength":   true,
	"pattern":     true,
	"rule":        true,
}

// splitTag splits a jsonschema tag on commas, gluing back segments that do
// not start with a known key.
func splitTag(tag string) []string {
	var items []string
	for _, part := range strings.Split(tag, ",") {
		key, _, _ := strings.Cut(part, "=")
		if tagKeys[strings.TrimSpace(key)] || len(items) == 0 {
			items = append(items, part)
			continue
		}
		items[len(items)-1] += "," + part
	}
	return items
}

// applyTag parses a jsonschema struct tag into s and reports whether the
// field is explicitly required.
func applyTag(fieldType reflect.Type, tag string, s *Schema) (bool, error) {
	if tag == "" {
		return false, nil
	}
	for fieldType.Kind() == reflect.Ptr {
		fieldType = fieldType.Elem()
	}

	required := false
	for _, item := range splitTag(tag) {
		key, value, hasValue := strings.Cut(item, "=")
		key = strings.TrimSpace(key)
		if !hasValue {
			if key == "required" {
				required = true
			}
			continue
		}

		switch key {
		case "description":
			s.Description = value
		case "pattern":
			s.Pattern = value
		case "rule":
			s.Rule = value
		case "enum":
			v, err := parseTagValue(fieldType, value)
			if err != nil {
				return false, fmt.Errorf("enum: %w", err)
			}
			s.Enum = append(s.Enum, v)
		case "default":
			v, err := parseTagValue(fieldType, value)
			if err != nil {
				return false, fmt.Errorf("default: %w", err)
			}
			s.Default = v
		case "minimum", "maximum":
			f, err := strconv.ParseFloat(value, 64)
			if err != nil {
				return false, fmt.Errorf("%s: %w", key, err)
			}
			if key == "minimum" {
				s.Minimum = &f
			} else {
				s.Maximum = &f
			}
		case "minLength", "maxLength":
			n, err := strconv.Atoi(value)
			if err != nil {
				return false, fmt.Errorf("%s: %w", key, err)
			}
			if key == "minLength" {
				s.MinLength = &n
			} else {
				s.MaxLength = &n
			}
		}
	}
	return required, nil
}

// parseTagValue converts a tag literal to the normalized form of fieldType.
func parseTagValue(fieldType reflect.Type, value string) (any, error) {
	switch fieldType.Kind() {
	case reflect.String:
		return value, nil
	case reflect.Int, reflect.Int8, reflect.Int16, reflect.Int32, reflect.Int64,
		reflect.Uint, reflect.Uint8, reflect.Uint16, reflect.Uint32, reflect.Uint64:
		v, err := strconv.ParseInt(value, 10, 64)
		if err != nil {
			return nil, fmt.Errorf("parse %q as integer: %w", value, err)
		}
		return v, nil
	case reflect.Float32, reflect.Float64:
		v, err := strconv.ParseFloat(value, 64)
		if err != nil {
			return nil, fmt.Errorf("parse %q as number: %w", value, err)
		}
		return v, nil
	case reflect.Bool:
		v, err := strconv.ParseBool(value)
		if err != nil {
			return nil, fmt.Errorf("parse %q as boolean: %w", value, err)
		}
		return v, nil
	default:
		return nil, fmt.Errorf("unsupported field type %v", fieldType)
	}
}
