package parse

// unwrapEnvelopes replaces {"type": "...", "value": ...} envelopes with their
// value. Models produce them when they confuse the schema with the data:
//
//	{"name": {"type": "string", "value": "John"}, "age": {"type": "integer", "value": 30}}
//
// becomes
//
//	{"name": "John", "age": 30}
//
// The root object itself is never unwrapped, since a record may legitimately
// have "type" and "value" fields.
func unwrapEnvelopes(obj map[string]any) map[string]any {
	out := make(map[string]any, len(obj))
	for key, val := range obj {
		out[key] = recursiveUnwrap(val)
	}
	return out
}

// recursiveUnwrap recursively processes data structures to unwrap schema-like values
func recursiveUnwrap(data any) any {
	switch v := data.(type) {
	case map[string]any:
		if isEnvelope(v) {
			return recursiveUnwrap(v["value"])
		}
		result := make(map[string]any, len(v))
		for key, val := range v {
			result[key] = recursiveUnwrap(val)
		}
		return result
	case []any:
		result := make([]any, len(v))
		for i, val := range v {
			result[i] = recursiveUnwrap(val)
		}
		return result
	default:
		return data
	}
}

func isEnvelope(m map[string]any) bool {
	if len(m) != 2 {
		return false
	}
	typ, hasType := m["type"].(string)
	_, hasValue := m["value"]
	return hasType && hasValue && typ != ""
}
