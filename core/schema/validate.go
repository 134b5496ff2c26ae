package schema

import (
	"encoding/json"
	"fmt"
	"math"
	"reflect"
	"regexp"
	"sort"
	"strconv"
	"strings"
	"sync"
	"time"
	"unicode/utf8"
)

// Issue is a single schema violation.
type Issue struct {
	// Path locates the offending value: "age", "line_items[0].price".
	// It is empty for the root value.
	Path     string `json:"path"`
	Expected string `json:"expected,omitempty"`
	Actual   string `json:"actual,omitempty"`
	Message  string `json:"message"`
}

func (i Issue) String() string {
	if i.Path == "" {
		return i.Message
	}
	return i.Path + ": " + i.Message
}

// ValidationError lists every issue found while validating a value.
// Issues are ordered by traversal, with object keys visited in sorted order.
type ValidationError struct {
	Issues []Issue
}

func (e *ValidationError) Error() string {
	parts := make([]string, len(e.Issues))
	for i, issue := range e.Issues {
		parts[i] = issue.String()
	}
	return "schema validation failed: " + strings.Join(parts, "; ")
}

// Paths returns the path of every issue.
func (e *ValidationError) Paths() []string {
	paths := make([]string, len(e.Issues))
	for i, issue := range e.Issues {
		paths[i] = issue.Path
	}
	return paths
}

// ValidateOption configures Validate.
type ValidateOption func(*validateOptions)

type validateOptions struct {
	strict bool
}

// WithStrictTypes disables lax coercion: integers, numbers and booleans are only
// accepted in their native JSON form.
func WithStrictTypes() ValidateOption {
	return func(o *validateOptions) {
		o.strict = true
	}
}

// Validate checks value against the schema and returns its normalized form.
//
// Accepted input is what a JSON or YAML decoder produces (json.Number, float64,
// int, string, bool, nil, maps and slices). The normalized value uses int64,
// float64, bool, string, map[string]any and []any. Neither value nor the schema
// is modified. A nil schema accepts any value.
//
// On failure the returned error is a *ValidationError holding all issues.
func (s *Schema) Validate(value any, opts ...ValidateOption) (any, error) {
	if s == nil {
		return normalize(value), nil
	}
	v := &validator{root: s}
	for _, opt := range opts {
		opt(&v.opts)
	}
	out := v.validate(s, value, "")
	if len(v.issues) > 0 {
		return nil, &ValidationError{Issues: v.issues}
	}
	return out, nil
}

type validator struct {
	root   *Schema
	opts   validateOptions
	issues []Issue
}

func (v *validator) fail(path, expected, actual, message string) {
	v.issues = append(v.issues, Issue{Path: path, Expected: expected, Actual: actual, Message: message})
}

func (v *validator) mismatch(path, expected string, value any) {
	actual := describe(value)
	v.fail(path, expected, actual, fmt.Sprintf("expected %s, got %s", expected, actual))
}

func (v *validator) resolve(s *Schema, path string) *Schema {
	seen := 0
	for s.Ref != "" {
		name, ok := strings.CutPrefix(s.Ref, "#/$defs/")
		def := v.root.Defs[name]
		if !ok || def == nil {
			v.fail(path, "", "", fmt.Sprintf("unresolvable reference %q", s.Ref))
			return nil
		}
		s = def
		if seen++; seen > len(v.root.Defs) {
			v.fail(path, "", "", fmt.Sprintf("reference cycle at %q", s.Ref))
			return nil
		}
	}
	return s
}

func (v *validator) validate(s *Schema, value any, path string) any {
	// A nullable reference accepts null without looking at its target.
	if value == nil && s.Nullable {
		return nil
	}
	s = v.resolve(s, path)
	if s == nil {
		return nil
	}
	if value == nil {
		if s.Nullable || s.Type == "" {
			return nil
		}
		v.mismatch(path, s.Type, nil)
		return nil
	}

	before := len(v.issues)
	var out any
	switch s.Type {
	case "":
		out = normalize(value)
	case TypeString:
		str, ok := value.(string)
		if !ok {
			v.mismatch(path, TypeString, value)
			return nil
		}
		out = str
	case TypeInteger:
		i, ok := v.toInteger(value)
		if !ok {
			v.mismatch(path, TypeInteger, value)
			return nil
		}
		out = i
	case TypeNumber:
		f, ok := v.toNumber(value)
		if !ok {
			v.mismatch(path, TypeNumber, value)
			return nil
		}
		out = f
	case TypeBoolean:
		b, ok := v.toBoolean(value)
		if !ok {
			v.mismatch(path, TypeBoolean, value)
			return nil
		}
		out = b
	case TypeObject:
		m, ok := asObject(value)
		if !ok {
			v.mismatch(path, TypeObject, value)
			return nil
		}
		out = v.validateObject(s, m, path)
	case TypeArray:
		items, ok := asArray(value)
		if !ok {
			v.mismatch(path, TypeArray, value)
			return nil
		}
		out = v.validateArray(s, items, path)
	default:
		v.fail(path, s.Type, "", fmt.Sprintf("unsupported schema type %q", s.Type))
		return nil
	}

	// Constraints only apply to values that are otherwise well formed.
	if len(v.issues) > before {
		return out
	}
	v.checkEnum(s, out, path)
	v.checkConstraints(s, out, path)
	if s.Rule != "" && len(v.issues) == before {
		v.checkRule(s.Rule, out, path)
	}
	return out
}

func (v *validator) validateObject(s *Schema, m map[string]any, path string) map[string]any {
	out := make(map[string]any, len(m))

	if values := s.mapValues(); values != nil {
		for _, key := range sortedKeys(m) {
			out[key] = v.validate(values, m[key], joinPath(path, key))
		}
		return out
	}

	names := make([]string, 0, len(s.Properties)+len(s.Required))
	for name := range s.Properties {
		names = append(names, name)
	}
	for _, name := range s.Required {
		if _, declared := s.Properties[name]; !declared {
			names = append(names, name)
		}
	}
	sort.Strings(names)

	for _, name := range names {
		prop := s.Properties[name]
		val, present := m[name]
		if !present {
			if s.IsRequired(name) {
				expected := ""
				if prop != nil {
					expected = prop.Type
				}
				v.fail(joinPath(path, name), expected, "missing", "required field missing")
				continue
			}
			if prop != nil {
				if def := v.defaultOf(prop, joinPath(path, name)); def != nil {
					out[name] = def
				}
			}
			continue
		}
		if prop == nil {
			out[name] = normalize(val)
			continue
		}
		out[name] = v.validate(prop, val, joinPath(path, name))
	}

	// Free-form objects and explicit additionalProperties: true keep every key.
	keepExtra := len(s.Properties) == 0
	if flag, ok := s.AdditionalProperties.(bool); ok {
		keepExtra = flag
	}
	if keepExtra {
		for _, key := range sortedKeys(m) {
			if _, done := out[key]; done {
				continue
			}
			if _, declared := s.Properties[key]; declared {
				continue
			}
			out[key] = normalize(m[key])
		}
	}
	return out
}

func (v *validator) defaultOf(prop *Schema, path string) any {
	prop = v.resolve(prop, path)
	if prop == nil || prop.Default == nil {
		return nil
	}
	return normalize(prop.Default)
}

func (v *validator) validateArray(s *Schema, items []any, path string) []any {
	out := make([]any, len(items))
	for i, item := range items {
		itemPath := fmt.Sprintf("%s[%d]", path, i)
		if s.Items == nil {
			out[i] = normalize(item)
			continue
		}
		out[i] = v.validate(s.Items, item, itemPath)
	}
	return out
}

func (v *validator) checkEnum(s *Schema, value any, path string) {
	if len(s.Enum) == 0 {
		return
	}
	for _, allowed := range s.Enum {
		if equalValues(normalize(allowed), value) {
			return
		}
	}
	allowed := make([]string, len(s.Enum))
	for i, e := range s.Enum {
		allowed[i] = fmt.Sprint(e)
	}
	expected := "one of [" + strings.Join(allowed, ", ") + "]"
	actual := describe(value)
	v.fail(path, expected, actual, fmt.Sprintf("expected %s, got %s", expected, actual))
}

func (v *validator) checkConstraints(s *Schema, value any, path string) {
	if f, ok := asFloat(value); ok {
		if s.Minimum != nil && f < *s.Minimum {
			v.fail(path, fmt.Sprintf(">= %v", *s.Minimum), describe(value), fmt.Sprintf("value %v is below minimum %v", value, *s.Minimum))
		}
		if s.Maximum != nil && f > *s.Maximum {
			v.fail(path, fmt.Sprintf("<= %v", *s.Maximum), describe(value), fmt.Sprintf("value %v is above maximum %v", value, *s.Maximum))
		}
	}

	str, ok := value.(string)
	if !ok {
		return
	}
	n := utf8.RuneCountInString(str)
	if s.MinLength != nil && n < *s.MinLength {
		v.fail(path, fmt.Sprintf("length >= %d", *s.MinLength), fmt.Sprintf("length %d", n), fmt.Sprintf("string is shorter than %d characters", *s.MinLength))
	}
	if s.MaxLength != nil && n > *s.MaxLength {
		v.fail(path, fmt.Sprintf("length <= %d", *s.MaxLength), fmt.Sprintf("length %d", n), fmt.Sprintf("string is longer than %d characters", *s.MaxLength))
	}
	if s.Pattern != "" {
		re, err := compilePattern(s.Pattern)
		if err != nil {
			v.fail(path, "", "", fmt.Sprintf("invalid pattern %q: %v", s.Pattern, err))
			return
		}
		if !re.MatchString(str) {
			v.fail(path, "match "+s.Pattern, describe(value), fmt.Sprintf("string does not match pattern %q", s.Pattern))
		}
	}
}

func (v *validator) checkRule(expr string, value any, path string) {
	ok, err := evalRule(expr, value)
	if err != nil {
		v.fail(path, expr, "", fmt.Sprintf("rule %q could not be evaluated: %v", expr, err))
		return
	}
	if !ok {
		v.fail(path, expr, describe(value), fmt.Sprintf("rule %q not satisfied", expr))
	}
}

var patternCache sync.Map // pattern -> *regexp.Regexp

func compilePattern(pattern string) (*regexp.Regexp, error) {
	if re, ok := patternCache.Load(pattern); ok {
		return re.(*regexp.Regexp), nil
	}
	re, err := regexp.Compile(pattern)
	if err != nil {
		return nil, err
	}
	patternCache.Store(pattern, re)
	return re, nil
}

// toInteger applies the integer coercion rules.
func (v *validator) toInteger(value any) (int64, bool) {
	if n, ok := asNumeric(value); ok {
		return n.integral()
	}
	str, ok := value.(string)
	if !ok || v.opts.strict {
		return 0, false
	}
	str = strings.TrimSpace(str)
	if i, err := strconv.ParseInt(str, 10, 64); err == nil {
		return i, true
	}
	f, err := strconv.ParseFloat(str, 64)
	if err != nil || !isFinite(f) {
		return 0, false
	}
	return numeric{f: f}.integral()
}

// toNumber applies the number coercion rules.
func (v *validator) toNumber(value any) (float64, bool) {
	if n, ok := asNumeric(value); ok {
		return n.float(), true
	}
	str, ok := value.(string)
	if !ok || v.opts.strict {
		return 0, false
	}
	f, err := strconv.ParseFloat(strings.TrimSpace(str), 64)
	if err != nil || !isFinite(f) {
		return 0, false
	}
	return f, true
}

// toBoolean applies the boolean coercion rules.
func (v *validator) toBoolean(value any) (bool, bool) {
	if b, ok := value.(bool); ok {
		return b, true
	}
	if v.opts.strict {
		return false, false
	}
	if n, ok := asNumeric(value); ok {
		i, integral := n.integral()
		if integral && (i == 0 || i == 1) {
			return i == 1, true
		}
		return false, false
	}
	str, ok := value.(string)
	if !ok {
		return false, false
	}
	switch strings.ToLower(strings.TrimSpace(str)) {
	case "true", "yes", "on", "1":
		return true, true
	case "false", "no", "off", "0":
		return false, true
	}
	return false, false
}

// numeric is a decoded number that remembers whether it was written as an
// integer.
type numeric struct {
	isInt bool
	i     int64
	f     float64
}

func (n numeric) float() float64 {
	if n.isInt {
		return float64(n.i)
	}
	return n.f
}

func (n numeric) integral() (int64, bool) {
	if n.isInt {
		return n.i, true
	}
	if !isFinite(n.f) || n.f != math.Trunc(n.f) || n.f < math.MinInt64 || n.f >= math.MaxInt64 {
		return 0, false
	}
	return int64(n.f), true
}

func isFinite(f float64) bool {
	return !math.IsNaN(f) && !math.IsInf(f, 0)
}

func asNumeric(value any) (numeric, bool) {
	switch n := value.(type) {
	case json.Number:
		if i, err := n.Int64(); err == nil {
			return numeric{isInt: true, i: i}, true
		}
		f, err := n.Float64()
		if err != nil {
			return numeric{}, false
		}
		return numeric{f: f}, true
	case int:
		return numeric{isInt: true, i: int64(n)}, true
	case int8:
		return numeric{isInt: true, i: int64(n)}, true
	case int16:
		return numeric{isInt: true, i: int64(n)}, true
	case int32:
		return numeric{isInt: true, i: int64(n)}, true
	case int64:
		return numeric{isInt: true, i: n}, true
	case uint:
		return fromUint(uint64(n)), true
	case uint8:
		return numeric{isInt: true, i: int64(n)}, true
	case uint16:
		return numeric{isInt: true, i: int64(n)}, true
	case uint32:
		return numeric{isInt: true, i: int64(n)}, true
	case uint64:
		return fromUint(n), true
	case float32:
		return numeric{f: float64(n)}, true
	case float64:
		return numeric{f: n}, true
	}
	return numeric{}, false
}

func fromUint(u uint64) numeric {
	if u > math.MaxInt64 {
		return numeric{f: float64(u)}
	}
	return numeric{isInt: true, i: int64(u)}
}

func asFloat(value any) (float64, bool) {
	switch n := value.(type) {
	case int64:
		return float64(n), true
	case float64:
		return n, true
	}
	return 0, false
}

func asObject(value any) (map[string]any, bool) {
	switch m := value.(type) {
	case map[string]any:
		return m, true
	case map[any]any:
		out := make(map[string]any, len(m))
		for k, val := range m {
			out[fmt.Sprint(k)] = val
		}
		return out, true
	}
	rv := reflect.ValueOf(value)
	if rv.Kind() != reflect.Map || rv.Type().Key().Kind() != reflect.String {
		return nil, false
	}
	out := make(map[string]any, rv.Len())
	iter := rv.MapRange()
	for iter.Next() {
		out[iter.Key().String()] = iter.Value().Interface()
	}
	return out, true
}

func asArray(value any) ([]any, bool) {
	if items, ok := value.([]any); ok {
		return items, true
	}
	rv := reflect.ValueOf(value)
	if rv.Kind() != reflect.Slice && rv.Kind() != reflect.Array {
		return nil, false
	}
	if rv.Kind() == reflect.Slice && rv.Type().Elem().Kind() == reflect.Uint8 {
		return nil, false
	}
	out := make([]any, rv.Len())
	for i := range out {
		out[i] = rv.Index(i).Interface()
	}
	return out, true
}

// normalize converts a decoded value into the normalized representation,
// copying containers so the result never aliases the input.
func normalize(value any) any {
	if value == nil {
		return nil
	}
	if n, ok := asNumeric(value); ok {
		if i, integral := n.integral(); integral {
			return i
		}
		return n.float()
	}
	switch val := value.(type) {
	case string, bool:
		return val
	case time.Time:
		return val.Format(time.RFC3339Nano)
	}
	if m, ok := asObject(value); ok {
		out := make(map[string]any, len(m))
		for k, item := range m {
			out[k] = normalize(item)
		}
		return out
	}
	if items, ok := asArray(value); ok {
		out := make([]any, len(items))
		for i, item := range items {
			out[i] = normalize(item)
		}
		return out
	}
	return value
}

// equalValues compares normalized values, treating int64 and float64 with the
// same magnitude as equal.
func equalValues(a, b any) bool {
	fa, aNum := asFloat(a)
	fb, bNum := asFloat(b)
	if aNum && bNum {
		return fa == fb
	}
	return reflect.DeepEqual(a, b)
}

// describe renders a value for an issue: its JSON kind and, for scalars, a
// short rendering of the value.
func describe(value any) string {
	if value == nil {
		return "null"
	}
	if n, ok := asNumeric(value); ok {
		if n.isInt {
			return fmt.Sprintf("integer %d", n.i)
		}
		return fmt.Sprintf("number %v", n.f)
	}
	switch val := value.(type) {
	case string:
		if len(val) > 40 {
			val = val[:40] + "..."
		}
		return fmt.Sprintf("string %q", val)
	case bool:
		return fmt.Sprintf("boolean %t", val)
	}
	if _, ok := asObject(value); ok {
		return TypeObject
	}
	if _, ok := asArray(value); ok {
		return TypeArray
	}
	return fmt.Sprintf("%T", value)
}

func joinPath(path, name string) string {
	if path == "" {
		return name
	}
	return path + "." + name
}

func sortedKeys(m map[string]any) []string {
	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}
