package parse

import (
	"errors"
	"regexp"
	"strconv"
	"strings"

	"gopkg.in/yaml.v3"

	"github.com/Navanit-git/genai-advance/core/schema"
)

var yamlLinePattern = regexp.MustCompile(`line (\d+)`)

// ExtractYAML is the YAML counterpart of [Extract]. The first ```yaml (or
// bare ```) code fence is decoded, or the whole text when there is none, and
// the resulting mapping is validated against s exactly like a JSON object.
//
// Output that decodes to anything but a mapping, prose included, yields
// [ErrNoYAMLFound]. A decoder failure yields *[MalformedYAMLError].
func ExtractYAML(raw string, s *schema.Schema, opts ...Option) (map[string]any, error) {
	o := newOptions(opts)
	r := searchRegions(maskReasoning(raw), "yaml", "yml")[0]
	doc := strings.TrimSpace(r.text)
	if doc == "" {
		return nil, ErrNoYAMLFound
	}

	var value any
	if err := yaml.Unmarshal([]byte(doc), &value); err != nil {
		return nil, &MalformedYAMLError{Span: doc, Line: yamlErrorLine(err), Err: err}
	}

	normalized, err := (*schema.Schema)(nil).Validate(value)
	if err != nil {
		return nil, err
	}
	obj, ok := normalized.(map[string]any)
	if !ok {
		return nil, ErrNoYAMLFound
	}
	if o.unwrap {
		obj = unwrapEnvelopes(obj)
	}
	return validateRecord(doc, obj, s, o)
}

func yamlErrorLine(err error) int {
	var typeErr *yaml.TypeError
	msg := err.Error()
	if errors.As(err, &typeErr) && len(typeErr.Errors) > 0 {
		msg = typeErr.Errors[0]
	}
	m := yamlLinePattern.FindStringSubmatch(msg)
	if m == nil {
		return 0
	}
	line, _ := strconv.Atoi(m[1])
	return line
}
