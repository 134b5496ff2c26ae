package schema

import (
	"encoding/json"
	"testing"
)

func TestGeneratePrimitiveSchemas(t *testing.T) {
	cases := []struct {
		name string
		gen  func() (*Schema, error)
		want string
	}{
		{"string", Generate[string], TypeString},
		{"int", Generate[int], TypeInteger},
		{"uint8", Generate[uint8], TypeInteger},
		{"float32", Generate[float32], TypeNumber},
		{"bool", Generate[bool], TypeBoolean},
		{"slice", Generate[[]string], TypeArray},
		{"map", Generate[map[string]int], TypeObject},
		{"interface", Generate[any], ""},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			s, err := tc.gen()
			if err != nil {
				t.Fatalf("Unexpected error: %v", err)
			}
			if s.Type != tc.want {
				t.Errorf("Expected type %q, got %q", tc.want, s.Type)
			}
		})
	}
}

func TestGenerateMapUsesAdditionalProperties(t *testing.T) {
	s, err := Generate[map[string]string]()
	if err != nil {
		t.Fatalf("Unexpected error: %v", err)
	}
	values, ok := s.AdditionalProperties.(*Schema)
	if !ok {
		t.Fatalf("Expected additionalProperties to be a *Schema, got %T", s.AdditionalProperties)
	}
	if values.Type != TypeString {
		t.Errorf("Expected value type 'string', got %q", values.Type)
	}
	if s.mapValues() != values {
		t.Error("Expected schema to be recognised as a mapping")
	}
}

func TestGenerateRejectsNonStringMapKeys(t *testing.T) {
	if _, err := Generate[map[int]string](); err == nil {
		t.Fatal("Expected an error for map[int]string")
	}
}

type contact struct {
	Name           string            `json:"name" jsonschema:"description=The full name of the person"`
	Age            int               `json:"age"`
	Email          *string           `json:"email,omitempty" jsonschema:"description=Email address, if present"`
	Occupation     string            `json:"occupation,omitempty" jsonschema:"enum=engineer,enum=doctor,enum=teacher"`
	Country        string            `json:"country,omitempty" jsonschema:"default=India"`
	Score          float64           `json:"score,omitempty" jsonschema:"minimum=0,maximum=1"`
	SocialAccounts map[string]string `json:"social_accounts,omitempty"`
	Nickname       string            `json:"nickname,omitempty" jsonschema:"required,minLength=2"`
	internal       string
	Ignored        string `json:"-"`
}

func TestGenerateStructTags(t *testing.T) {
	s, err := Generate[contact]()
	if err != nil {
		t.Fatalf("Unexpected error: %v", err)
	}

	if s.Type != TypeObject {
		t.Fatalf("Expected object, got %q", s.Type)
	}
	if len(s.Properties) != 8 {
		t.Errorf("Expected 8 properties, got %d", len(s.Properties))
	}
	if _, ok := s.Properties["Ignored"]; ok {
		t.Error("Field tagged json:\"-\" must be skipped")
	}
	if _, ok := s.Properties["internal"]; ok {
		t.Error("Unexported field must be skipped")
	}

	wantRequired := map[string]bool{"name": true, "age": true, "nickname": true}
	if len(s.Required) != len(wantRequired) {
		t.Errorf("Expected required %v, got %v", wantRequired, s.Required)
	}
	for _, r := range s.Required {
		if !wantRequired[r] {
			t.Errorf("Unexpected required field %q", r)
		}
	}

	if got := s.Properties["name"].Description; got != "The full name of the person" {
		t.Errorf("Unexpected description %q", got)
	}
	if got := s.Properties["email"].Description; got != "Email address, if present" {
		t.Errorf("Comma inside description was not preserved: %q", got)
	}
	if !s.Properties["email"].Nullable {
		t.Error("Pointer field must be nullable")
	}
	if got := s.Properties["occupation"].Enum; len(got) != 3 || got[0] != "engineer" {
		t.Errorf("Unexpected enum %v", got)
	}
	if got := s.Properties["country"].Default; got != "India" {
		t.Errorf("Unexpected default %v", got)
	}
	score := s.Properties["score"]
	if score.Minimum == nil || *score.Minimum != 0 || score.Maximum == nil || *score.Maximum != 1 {
		t.Errorf("Unexpected bounds on score: %+v", score)
	}
	if got := s.Properties["nickname"].MinLength; got == nil || *got != 2 {
		t.Errorf("Unexpected minLength %v", got)
	}
}

func TestGenerateEnumConvertsToFieldKind(t *testing.T) {
	type level struct {
		Priority int     `json:"priority" jsonschema:"enum=1,enum=2"`
		Ratio    float64 `json:"ratio" jsonschema:"enum=0.5"`
		Flag     bool    `json:"flag" jsonschema:"enum=true"`
	}
	s, err := Generate[level]()
	if err != nil {
		t.Fatalf("Unexpected error: %v", err)
	}
	if got := s.Properties["priority"].Enum[1]; got != int64(2) {
		t.Errorf("Expected int64(2), got %#v", got)
	}
	if got := s.Properties["ratio"].Enum[0]; got != 0.5 {
		t.Errorf("Expected 0.5, got %#v", got)
	}
	if got := s.Properties["flag"].Enum[0]; got != true {
		t.Errorf("Expected true, got %#v", got)
	}
}

func TestGenerateInvalidTagValue(t *testing.T) {
	type bad struct {
		Count int `json:"count" jsonschema:"enum=many"`
	}
	if _, err := Generate[bad](); err == nil {
		t.Fatal("Expected an error for a non-integer enum on an int field")
	}
}

type treeNode struct {
	Value    string      `json:"value"`
	Children []*treeNode `json:"children,omitempty"`
}

func TestGenerateRecursiveType(t *testing.T) {
	s, err := Generate[treeNode]()
	if err != nil {
		t.Fatalf("Unexpected error: %v", err)
	}
	if s.Type != TypeObject {
		t.Fatalf("Expected root object, got %q", s.Type)
	}
	def, ok := s.Defs["treenode"]
	if !ok {
		t.Fatalf("Expected $defs.treenode, got %v", s.Defs)
	}
	if def.Type != TypeObject {
		t.Errorf("Expected definition to be an object, got %q", def.Type)
	}
	children := s.Properties["children"]
	if children.Type != TypeArray || children.Items == nil || children.Items.Ref != "#/$defs/treenode" {
		t.Errorf("Expected children items to reference the definition, got %s", children)
	}

	// The generated schema must be serialisable without looping.
	if _, err := json.Marshal(s); err != nil {
		t.Fatalf("Marshal failed: %v", err)
	}
}

type listNode struct {
	Name string    `json:"name"`
	Next *listNode `json:"next"`
}

func TestGenerateRecursivePointerIsNullable(t *testing.T) {
	s, err := Generate[listNode]()
	if err != nil {
		t.Fatalf("Unexpected error: %v", err)
	}
	next := s.Properties["next"]
	if next.Ref != "#/$defs/listnode" || !next.Nullable {
		t.Fatalf("Expected a nullable reference, got %s", next)
	}

	var doc any
	if err := json.Unmarshal([]byte(`{"name": "a", "next": {"name": "b", "next": null}}`), &doc); err != nil {
		t.Fatalf("Unmarshal failed: %v", err)
	}
	if _, err := s.Validate(doc); err != nil {
		t.Errorf("Expected null next to validate, got %v", err)
	}
}

func TestGenerateNestedStructIsInlined(t *testing.T) {
	type address struct {
		City string `json:"city"`
		Zip  string `json:"zip,omitempty"`
	}
	type person struct {
		Address address `json:"address"`
	}
	s, err := Generate[person]()
	if err != nil {
		t.Fatalf("Unexpected error: %v", err)
	}
	addr := s.Properties["address"]
	if addr.Ref != "" || addr.Type != TypeObject {
		t.Fatalf("Expected inline object, got %s", addr)
	}
	if len(addr.Required) != 1 || addr.Required[0] != "city" {
		t.Errorf("Expected nested required [city], got %v", addr.Required)
	}
	if len(s.Defs) != 0 {
		t.Errorf("Expected no $defs for a non-recursive type, got %v", s.Defs)
	}
}

func TestGeneratePointerRoot(t *testing.T) {
	s, err := Generate[*contact]()
	if err != nil {
		t.Fatalf("Unexpected error: %v", err)
	}
	if s.Type != TypeObject {
		t.Errorf("Expected object, got %q", s.Type)
	}
}
