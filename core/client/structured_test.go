package client

import (
	"context"
	"errors"
	"reflect"
	"strings"
	"testing"

	"github.com/Navanit-git/genai-advance/core/parse"
	"github.com/Navanit-git/genai-advance/providers/ai"
)

type user struct {
	Name           string            `json:"name" jsonschema:"description=Full name"`
	Age            int               `json:"age,omitempty" jsonschema:"minimum=0"`
	Email          *string           `json:"email"`
	SocialAccounts map[string]string `json:"social_accounts,omitempty"`
}

func TestNewStructured_GeneratesSchema(t *testing.T) {
	base, err := New(&mockProvider{})
	if err != nil {
		t.Fatalf("New() error = %v", err)
	}

	sc, err := NewStructured[user](base)
	if err != nil {
		t.Fatalf("NewStructured() error = %v", err)
	}

	s := sc.Schema()
	if !reflect.DeepEqual(s.Required, []string{"name"}) {
		t.Errorf("Expected required [name], got %v", s.Required)
	}
	if got := s.Properties["name"].Description; got != "Full name" {
		t.Errorf("Expected name description 'Full name', got %q", got)
	}
	if !s.Properties["email"].Nullable {
		t.Error("Expected email to be nullable")
	}
	if s.Properties["social_accounts"].AdditionalProperties == nil {
		t.Error("Expected social_accounts to carry additionalProperties")
	}

	if _, err := NewStructured[user](nil); err == nil {
		t.Error("Expected an error for a nil client")
	}
}

func TestStructuredClient_SendMessage(t *testing.T) {
	content := "<think>the user gave a name and an age</think>\n" +
		"```json\n" +
		`{"name": "Ram", "age": "42", "email": null, "social_accounts": {"twitter": "@ram"}, "notes": "dropped"}` +
		"\n```"
	provider := &mockProvider{replies: []*ai.ChatResponse{reply(content)}}
	base, err := New(provider)
	if err != nil {
		t.Fatalf("New() error = %v", err)
	}

	sc, err := NewStructured[user](base, WithMode(ModePrompt))
	if err != nil {
		t.Fatalf("NewStructured() error = %v", err)
	}

	resp, err := sc.SendMessage(context.Background(), "Ram is 42, @ram on twitter")
	if err != nil {
		t.Fatalf("SendMessage() error = %v", err)
	}
	if resp.Data == nil {
		t.Fatal("Expected decoded data")
	}

	if resp.Data.Name != "Ram" {
		t.Errorf("Expected name 'Ram', got %q", resp.Data.Name)
	}
	if resp.Data.Age != 42 {
		t.Errorf("Expected age 42, got %d", resp.Data.Age)
	}
	if resp.Data.Email != nil {
		t.Errorf("Expected nil email, got %q", *resp.Data.Email)
	}
	if want := map[string]string{"twitter": "@ram"}; !reflect.DeepEqual(resp.Data.SocialAccounts, want) {
		t.Errorf("Expected social accounts %v, got %v", want, resp.Data.SocialAccounts)
	}
	if _, ok := resp.Record["notes"]; ok {
		t.Error("Expected undeclared field 'notes' to be dropped")
	}
	if resp.Usage.TotalTokens != 150 {
		t.Errorf("Expected 150 total tokens, got %d", resp.Usage.TotalTokens)
	}
	if !strings.Contains(provider.requests[0].SystemPrompt, `"social_accounts"`) {
		t.Errorf("Expected the system prompt to carry the schema, got %q", provider.requests[0].SystemPrompt)
	}
}

func TestStructuredClient_StrictTypes(t *testing.T) {
	provider := &mockProvider{replies: []*ai.ChatResponse{reply(`{"name": "Ram", "age": "42", "email": null}`)}}
	base, err := New(provider)
	if err != nil {
		t.Fatalf("New() error = %v", err)
	}

	sc, err := NewStructured[user](base, WithParseOptions(parse.WithStrictTypes()))
	if err != nil {
		t.Fatalf("NewStructured() error = %v", err)
	}

	_, err = sc.SendMessage(context.Background(), "Ram")
	if err == nil {
		t.Fatal("Expected a validation error for a quoted integer")
	}
	if kind := parse.KindOf(err); kind != parse.KindSchemaValidation {
		t.Errorf("Expected kind %v, got %v", parse.KindSchemaValidation, kind)
	}

	var validation *parse.SchemaValidationError
	if !errors.As(err, &validation) {
		t.Fatalf("Expected *parse.SchemaValidationError, got %T", err)
	}
	if fields := validation.Fields(); !reflect.DeepEqual(fields, []string{"age"}) {
		t.Errorf("Expected failing fields [age], got %v", fields)
	}
}

func TestStructuredClient_PropagatesExtractionError(t *testing.T) {
	provider := &mockProvider{replies: []*ai.ChatResponse{reply("Sorry, no idea.")}}
	base, err := New(provider)
	if err != nil {
		t.Fatalf("New() error = %v", err)
	}

	sc, err := NewStructured[user](base)
	if err != nil {
		t.Fatalf("NewStructured() error = %v", err)
	}

	resp, err := sc.SendMessage(context.Background(), "who?")
	if resp != nil {
		t.Errorf("Expected nil response, got %+v", resp)
	}
	if !errors.Is(err, parse.ErrNoJSONFound) {
		t.Errorf("Expected ErrNoJSONFound, got %v", err)
	}
}
