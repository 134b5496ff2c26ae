package client

import (
	"context"
	"fmt"

	"github.com/Navanit-git/genai-advance/core/parse"
	"github.com/Navanit-git/genai-advance/core/schema"
	"github.com/Navanit-git/genai-advance/providers/ai"
)

// StructuredClient wraps a RecordClient and decodes every record into a T.
// The schema is generated once from T at creation time.
//
// Example usage:
//
//	type Contact struct {
//	    Name           string            `json:"name"`
//	    Email          string            `json:"email,omitempty"`
//	    SocialAccounts map[string]string `json:"social_accounts,omitempty"`
//	}
//
//	base, _ := client.New(groq.New(), client.WithSystemPrompt("Extract contact details."))
//	contacts, _ := client.NewStructured[Contact](base, client.WithMode(client.ModePrompt))
//
//	resp, err := contacts.SendMessage(ctx, "Ram, ram@example.com, @ram on twitter")
//	if err != nil {
//	    log.Fatal(err)
//	}
//	fmt.Println(resp.Data.Name, resp.Usage.TotalTokens)
type StructuredClient[T any] struct {
	records *RecordClient
}

// NewStructured creates a StructuredClient[T] on top of base.
func NewStructured[T any](base *Client, opts ...RecordOption) (*StructuredClient[T], error) {
	s, err := schema.Generate[T]()
	if err != nil {
		var zero T
		return nil, fmt.Errorf("failed to generate schema for %T: %w", zero, err)
	}
	records, err := NewRecordClient(base, s, opts...)
	if err != nil {
		return nil, err
	}
	return &StructuredClient[T]{records: records}, nil
}

// SendMessage extracts a record about prompt and decodes it into Data.
func (sc *StructuredClient[T]) SendMessage(ctx context.Context, prompt string, opts ...SendMessageOption) (*ai.StructuredChatResponse[T], error) {
	resp, err := sc.records.SendMessage(ctx, prompt, opts...)
	if err != nil {
		return nil, err
	}

	var data T
	if err := parse.Decode(resp.Record, &data); err != nil {
		return nil, err
	}
	return &ai.StructuredChatResponse[T]{
		ChatResponse: resp.ChatResponse,
		Data:         &data,
		Record:       resp.Record,
	}, nil
}

// Schema returns the schema generated from T.
func (sc *StructuredClient[T]) Schema() *schema.Schema {
	return sc.records.Schema()
}
