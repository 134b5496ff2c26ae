package parse

import (
	"encoding/json"
	"errors"
	"fmt"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Navanit-git/genai-advance/core/schema"
)

func personSchema() *schema.Schema {
	return schema.Object(map[string]*schema.Schema{
		"name": schema.String(),
		"age":  schema.Integer(),
	}, "name", "age")
}

func TestExtractFencedOutputWithCoercion(t *testing.T) {
	raw := "Here is the result:\n```json\n{\"name\": \"Ram\", \"age\": \"26\"}\n```\nThanks."
	rec, err := Extract(raw, personSchema())
	require.NoError(t, err)
	assert.Equal(t, map[string]any{"name": "Ram", "age": int64(26)}, rec)
}

func TestExtractRefusalHasNoJSON(t *testing.T) {
	_, err := Extract("I cannot comply with this request.", personSchema())
	require.ErrorIs(t, err, ErrNoJSONFound)
	assert.Equal(t, KindNoJSON, KindOf(err))

	_, err = Extract("", nil)
	require.ErrorIs(t, err, ErrNoJSONFound)

	_, err = Extract("only a closing brace }", nil)
	require.ErrorIs(t, err, ErrNoJSONFound)
}

func TestExtractMalformedJSON(t *testing.T) {
	_, err := Extract(`{"name": "Ram", "age":}`, personSchema())
	var malformed *MalformedJSONError
	require.ErrorAs(t, err, &malformed)
	assert.Equal(t, `{"name": "Ram", "age":}`, malformed.Span)
	assert.Equal(t, 22, malformed.Offset)
	assert.Equal(t, 1, malformed.Line)
	assert.Equal(t, 23, malformed.Column)
	assert.Equal(t, KindMalformedJSON, KindOf(err))

	var syntax *json.SyntaxError
	assert.ErrorAs(t, err, &syntax)
}

func TestExtractTruncatedObjectIsMalformed(t *testing.T) {
	_, err := Extract("Sure:\n{\"a\": 1,", nil)
	var malformed *MalformedJSONError
	require.ErrorAs(t, err, &malformed)
	assert.Equal(t, `{"a": 1,`, malformed.Span)
	assert.Equal(t, len(malformed.Span), malformed.Offset)
}

func TestExtractMissingRequiredField(t *testing.T) {
	_, err := Extract(`{"name": "Ram"}`, personSchema())
	var verr *SchemaValidationError
	require.ErrorAs(t, err, &verr)
	assert.Equal(t, []string{"age"}, verr.Fields())
	assert.Equal(t, `{"name": "Ram"}`, verr.Span)
	assert.Equal(t, KindSchemaValidation, KindOf(err))

	var inner *schema.ValidationError
	assert.ErrorAs(t, err, &inner)
}

func TestExtractDropsExtraFields(t *testing.T) {
	rec, err := Extract(`{"name": "Ram", "age": 26, "mood": "happy"}`, personSchema())
	require.NoError(t, err)
	assert.NotContains(t, rec, "mood")
	assert.Equal(t, map[string]any{"name": "Ram", "age": int64(26)}, rec)
}

func TestExtractEmbeddedObjectRoundTrips(t *testing.T) {
	s := schema.Object(map[string]*schema.Schema{
		"name":            schema.String(),
		"age":             schema.Integer(),
		"score":           schema.Number(),
		"active":          schema.Boolean(),
		"tags":            schema.Array(schema.String()),
		"social_accounts": schema.Map(schema.String()),
		"address": schema.Object(map[string]*schema.Schema{
			"city": schema.String(),
		}, "city"),
	}, "name", "age")

	records := []map[string]any{
		{"name": "Ram", "age": int64(26)},
		{"name": "Sita {braces}", "age": int64(0), "score": 0.5, "active": true},
		{"name": "Lak \"quoted\" }", "age": int64(-3), "tags": []any{"a", "b"}},
		{"name": "Bharat", "age": int64(40), "social_accounts": map[string]any{"x": "@b"}, "address": map[string]any{"city": "Ayodhya"}},
		{"name": "Use ``` fences", "age": int64(1), "tags": []any{"```go", "```"}},
	}
	wrappers := []string{
		"%s",
		"Here you go: %s and that's all.",
		"```json\n%s\n```",
		"Sure!\n```\n%s\n```\nLet me know if you need anything else.",
		"<think>The user wants {json}.</think>\n%s",
	}

	for i, want := range records {
		doc, err := json.Marshal(want)
		require.NoError(t, err)
		for j, wrapper := range wrappers {
			t.Run(fmt.Sprintf("record%d/wrapper%d", i, j), func(t *testing.T) {
				got, err := Extract(fmt.Sprintf(wrapper, doc), s)
				require.NoError(t, err)
				assert.Equal(t, want, got)
			})
		}
	}
}

func TestExtractIsIdempotentAndDoesNotMutate(t *testing.T) {
	s := personSchema()
	before := s.String()
	raw := "```json\n{\"name\": \"Ram\", \"age\": \"26\", \"x\": 1}\n```"

	first, err1 := Extract(raw, s)
	second, err2 := Extract(raw, s)
	require.NoError(t, err1)
	require.NoError(t, err2)
	assert.Equal(t, first, second)
	assert.Equal(t, before, s.String())

	_, err1 = Extract(`{"name": 1}`, s)
	_, err2 = Extract(`{"name": 1}`, s)
	assert.Equal(t, err1.Error(), err2.Error())
}

func TestExtractConcurrentCalls(t *testing.T) {
	s := personSchema()
	inputs := []struct {
		raw  string
		kind Kind
	}{
		{`{"name": "Ram", "age": "26"}`, KindNone},
		{`no json here`, KindNoJSON},
		{`{"name": "Ram", "age":}`, KindMalformedJSON},
		{`{"name": "Ram"}`, KindSchemaValidation},
	}

	var wg sync.WaitGroup
	for i := 0; i < 64; i++ {
		in := inputs[i%len(inputs)]
		wg.Add(1)
		go func() {
			defer wg.Done()
			_, err := Extract(in.raw, s)
			assert.Equal(t, in.kind, KindOf(err))
		}()
	}
	wg.Wait()
}

func TestExtractPicksFirstObject(t *testing.T) {
	rec, err := Extract(`{"name": "A", "age": 1} then {"name": "B", "age": 2}`, personSchema())
	require.NoError(t, err)
	assert.Equal(t, "A", rec["name"])
}

func TestExtractPrefersFencedBlock(t *testing.T) {
	raw := "The format is {\"name\": string}.\n```json\n{\"name\": \"Ram\", \"age\": 26}\n```"
	rec, err := Extract(raw, personSchema())
	require.NoError(t, err)
	assert.Equal(t, "Ram", rec["name"])
}

func TestExtractIgnoresReasoning(t *testing.T) {
	raw := "<think>\nI should answer {\"name\": \"wrong\"} maybe\n</think>\n{\"name\": \"Ram\", \"age\": 26}"
	rec, err := Extract(raw, personSchema())
	require.NoError(t, err)
	assert.Equal(t, "Ram", rec["name"])

	// Reasoning with the opening tag stripped by the provider.
	raw = "thinking about {braces}</think>{\"name\": \"Ram\", \"age\": 26}"
	rec, err = Extract(raw, personSchema())
	require.NoError(t, err)
	assert.Equal(t, int64(26), rec["age"])
}

func TestExtractWithRepair(t *testing.T) {
	raw := `{'name': 'Ram', 'age': 26,}`
	_, err := Extract(raw, personSchema())
	require.Equal(t, KindMalformedJSON, KindOf(err))

	rec, err := Extract(raw, personSchema(), WithRepair())
	require.NoError(t, err)
	assert.Equal(t, map[string]any{"name": "Ram", "age": int64(26)}, rec)
}

func TestExtractStrictTypes(t *testing.T) {
	_, err := Extract(`{"name": "Ram", "age": "26"}`, personSchema(), WithStrictTypes())
	var verr *SchemaValidationError
	require.ErrorAs(t, err, &verr)
	assert.Equal(t, "age", verr.Issues[0].Path)
}

func TestExtractWithSchemaUnwrap(t *testing.T) {
	raw := `{"name": {"type": "string", "value": "Ram"}, "age": {"type": "integer", "value": 26}}`
	_, err := Extract(raw, personSchema())
	require.Equal(t, KindSchemaValidation, KindOf(err))

	rec, err := Extract(raw, personSchema(), WithSchemaUnwrap())
	require.NoError(t, err)
	assert.Equal(t, map[string]any{"name": "Ram", "age": int64(26)}, rec)

	// The root object is a record, not an envelope.
	s := schema.Object(map[string]*schema.Schema{"type": schema.String(), "value": schema.Integer()})
	rec, err = Extract(`{"type": "invoice", "value": 3}`, s, WithSchemaUnwrap())
	require.NoError(t, err)
	assert.Equal(t, "invoice", rec["type"])
}

func TestExtractNilSchemaAcceptsAnyObject(t *testing.T) {
	rec, err := Extract(`{"a": {"b": [1, 2.5, "c"]}}`, nil)
	require.NoError(t, err)
	assert.Equal(t, map[string]any{"a": map[string]any{"b": []any{int64(1), 2.5, "c"}}}, rec)
}

func TestExtractAll(t *testing.T) {
	raw := "First:\n```json\n{\"name\": \"A\", \"age\": 1}\n```\nSecond:\n```json\n{\"name\": \"B\", \"age\": \"2\"}\n```"
	recs, err := ExtractAll(raw, personSchema())
	require.NoError(t, err)
	require.Len(t, recs, 2)
	assert.Equal(t, "B", recs[1]["name"])
	assert.Equal(t, int64(2), recs[1]["age"])

	recs, err = ExtractAll(`{"name": "A", "age": 1} and {"name": "B", "age": 2}`, personSchema())
	require.NoError(t, err)
	assert.Len(t, recs, 2)

	_, err = ExtractAll(`{"name": "A", "age": 1} and {"name": "B"}`, personSchema())
	assert.Equal(t, KindSchemaValidation, KindOf(err))

	_, err = ExtractAll("nothing", personSchema())
	assert.ErrorIs(t, err, ErrNoJSONFound)
}

type user struct {
	Name           string            `json:"name"`
	Age            int               `json:"age"`
	Email          *string           `json:"email,omitempty"`
	SocialAccounts map[string]string `json:"social_accounts,omitempty"`
}

func TestExtractAs(t *testing.T) {
	raw := "```json\n{\"name\": \"Ram\", \"age\": \"26\", \"email\": null, \"social_accounts\": {\"github\": \"ram\"}}\n```"
	u, err := ExtractAs[user](raw)
	require.NoError(t, err)
	assert.Equal(t, "Ram", u.Name)
	assert.Equal(t, 26, u.Age)
	assert.Nil(t, u.Email)
	assert.Equal(t, map[string]string{"github": "ram"}, u.SocialAccounts)

	_, err = ExtractAs[user](`{"age": 3}`)
	assert.Equal(t, KindSchemaValidation, KindOf(err))
}

type linkedNode struct {
	Name string      `json:"name"`
	Next *linkedNode `json:"next"`
}

func TestExtractAsRecursivePointer(t *testing.T) {
	n, err := ExtractAs[linkedNode](`{"name": "a", "next": null}`)
	require.NoError(t, err)
	assert.Equal(t, "a", n.Name)
	assert.Nil(t, n.Next)

	n, err = ExtractAs[linkedNode](`{"name": "a", "next": {"name": "b", "next": null}}`)
	require.NoError(t, err)
	require.NotNil(t, n.Next)
	assert.Equal(t, "b", n.Next.Name)
	assert.Nil(t, n.Next.Next)

	_, err = ExtractAs[linkedNode](`{"name": "a", "next": {"name": 2}}`)
	assert.Equal(t, KindSchemaValidation, KindOf(err))
}

func TestKindOf(t *testing.T) {
	assert.Equal(t, KindNone, KindOf(nil))
	assert.Equal(t, KindNoJSON, KindOf(fmt.Errorf("wrapped: %w", ErrNoJSONFound)))
	assert.Equal(t, KindOther, KindOf(errors.New("boom")))
	assert.Equal(t, KindNoYAML, KindOf(ErrNoYAMLFound))
	assert.Equal(t, KindMalformedYAML, KindOf(&MalformedYAMLError{Err: errors.New("bad")}))
}
