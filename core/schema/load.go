package schema

import (
	"bytes"
	"encoding/json"
	"fmt"
	"sort"
	"strings"

	"github.com/santhosh-tekuri/jsonschema/v5"
)

// FromJSON loads a JSON Schema document.
//
// The document is compiled with a full JSON Schema implementation first, so a
// malformed schema is rejected before any model output is checked against it.
// The provider wrappers {"name","strict","schema":{...}} and
// {"type":"json_schema","json_schema":{"schema":{...}}} are unwrapped.
func FromJSON(doc []byte) (*Schema, error) {
	core, err := unwrapSchemaDocument(doc)
	if err != nil {
		return nil, err
	}

	compiler := jsonschema.NewCompiler()
	if err := compiler.AddResource("schema.json", bytes.NewReader(core)); err != nil {
		return nil, fmt.Errorf("failed to load schema: %w", err)
	}
	if _, err := compiler.Compile("schema.json"); err != nil {
		return nil, fmt.Errorf("failed to compile schema: %w", err)
	}

	var s Schema
	if err := json.Unmarshal(core, &s); err != nil {
		return nil, fmt.Errorf("failed to decode schema: %w", err)
	}
	if err := s.Check(); err != nil {
		return nil, err
	}
	return &s, nil
}

func unwrapSchemaDocument(doc []byte) ([]byte, error) {
	var root map[string]json.RawMessage
	if err := json.Unmarshal(doc, &root); err != nil {
		return nil, fmt.Errorf("invalid schema JSON: %w", err)
	}
	if inner, ok := root["schema"]; ok {
		return inner, nil
	}
	if wrapper, ok := root["json_schema"]; ok {
		var js map[string]json.RawMessage
		if err := json.Unmarshal(wrapper, &js); err == nil {
			if inner, ok := js["schema"]; ok {
				return inner, nil
			}
		}
	}
	return doc, nil
}

// Check reports schema errors that would only surface during validation:
// unknown types, dangling references, bad patterns and rules that do not
// compile.
func (s *Schema) Check() error {
	var problems []string
	s.check(s, "", map[*Schema]bool{}, &problems)
	if len(problems) > 0 {
		return fmt.Errorf("invalid schema: %s", strings.Join(problems, "; "))
	}
	return nil
}

func (s *Schema) check(root *Schema, path string, seen map[*Schema]bool, problems *[]string) {
	if s == nil || seen[s] {
		return
	}
	seen[s] = true
	at := func(msg string) {
		if path != "" {
			msg = path + ": " + msg
		}
		*problems = append(*problems, msg)
	}

	switch s.Type {
	case "", TypeString, TypeNumber, TypeInteger, TypeBoolean, TypeObject, TypeArray:
	default:
		at(fmt.Sprintf("unknown type %q", s.Type))
	}
	if s.Ref != "" {
		name, ok := strings.CutPrefix(s.Ref, "#/$defs/")
		if !ok || root.Defs[name] == nil {
			at(fmt.Sprintf("unresolvable reference %q", s.Ref))
		}
	}
	if s.Pattern != "" {
		if _, err := compilePattern(s.Pattern); err != nil {
			at(fmt.Sprintf("invalid pattern %q: %v", s.Pattern, err))
		}
	}
	if s.Rule != "" {
		if err := CompileRule(s.Rule); err != nil {
			at(fmt.Sprintf("invalid rule %q: %v", s.Rule, err))
		}
	}

	names := make([]string, 0, len(s.Properties))
	for name := range s.Properties {
		names = append(names, name)
	}
	sort.Strings(names)
	for _, name := range names {
		s.Properties[name].check(root, joinPath(path, name), seen, problems)
	}
	s.Items.check(root, path+"[]", seen, problems)
	if values, ok := s.AdditionalProperties.(*Schema); ok {
		values.check(root, joinPath(path, "*"), seen, problems)
	}

	defs := make([]string, 0, len(s.Defs))
	for name := range s.Defs {
		defs = append(defs, name)
	}
	sort.Strings(defs)
	for _, name := range defs {
		s.Defs[name].check(root, "$defs."+name, seen, problems)
	}
}
