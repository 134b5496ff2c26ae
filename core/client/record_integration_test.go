//go:build integration

package client

import (
	"context"
	"os"
	"testing"
	"time"

	"github.com/Navanit-git/genai-advance/core/overview"
	"github.com/Navanit-git/genai-advance/providers/ai/groq"
)

const defaultIntegrationModel = groq.DefaultModel

// integrationModel reads GROQ_TEST_MODEL first, falling back to
// defaultIntegrationModel.
func integrationModel() string {
	if model := os.Getenv("GROQ_TEST_MODEL"); model != "" {
		return model
	}
	return defaultIntegrationModel
}

// requireAPIKey fails the test when GROQ_API_KEY is not set. Integration
// tests are opt-in through the build tag.
func requireAPIKey(t *testing.T) {
	t.Helper()
	if os.Getenv("GROQ_API_KEY") == "" {
		t.Fatal("GROQ_API_KEY is required for integration tests")
	}
}

type integrationContact struct {
	Name           string            `json:"name"`
	Email          string            `json:"email,omitempty"`
	SocialAccounts map[string]string `json:"social_accounts,omitempty"`
}

const integrationText = "I'm Ram Kumar, ram@example.com. Twitter: @ramk, GitHub: ram-kumar."

// TestStructuredPromptMode_Integration extracts a contact with format
// instructions appended to the prompt.
func TestStructuredPromptMode_Integration(t *testing.T) {
	requireAPIKey(t)

	ctx, cancel := context.WithTimeout(context.Background(), 60*time.Second)
	defer cancel()

	base, err := New(groq.New(),
		WithSystemPrompt("Extract contact details."),
		WithDefaultModel(integrationModel()),
		WithModelCost(groq.ModelPricing[integrationModel()]),
	)
	if err != nil {
		t.Fatalf("New failed: %v", err)
	}
	contacts, err := NewStructured[integrationContact](base, WithMode(ModePrompt), WithMaxReprompts(1))
	if err != nil {
		t.Fatalf("NewStructured failed: %v", err)
	}

	ov := &overview.Overview{}
	resp, err := contacts.SendMessage(ov.ToContext(ctx), integrationText)
	if err != nil {
		t.Fatalf("SendMessage failed: %v (attempts: %+v)", err, ov.Attempts)
	}

	if resp.Data.Name == "" {
		t.Error("expected a name")
	}
	if resp.Data.Email != "ram@example.com" {
		t.Errorf("email = %q", resp.Data.Email)
	}
	if !ov.Succeeded() {
		t.Errorf("overview does not record success: %+v", ov.Attempts)
	}
	t.Logf("Record: %+v", resp.Record)
	t.Logf("Attempts: %d, tokens: %d, cost: $%.6f", len(ov.Attempts), ov.TotalUsage.TotalTokens, ov.TotalCost())
}

// TestStructuredNativeMode_Integration extracts a contact through the
// provider's JSON mode. Groq does not take a JSON schema, so the provider
// falls back to JSON mode plus instructions.
func TestStructuredNativeMode_Integration(t *testing.T) {
	requireAPIKey(t)

	ctx, cancel := context.WithTimeout(context.Background(), 60*time.Second)
	defer cancel()

	base, err := New(groq.New(), WithDefaultModel(integrationModel()))
	if err != nil {
		t.Fatalf("New failed: %v", err)
	}
	contacts, err := NewStructured[integrationContact](base, WithMaxReprompts(1))
	if err != nil {
		t.Fatalf("NewStructured failed: %v", err)
	}

	resp, err := contacts.SendMessage(ctx, integrationText)
	if err != nil {
		t.Fatalf("SendMessage failed: %v", err)
	}
	if resp.Data.Name == "" {
		t.Error("expected a name")
	}
	if resp.Usage == nil || resp.Usage.TotalTokens <= 0 {
		t.Error("expected positive token usage")
	}
	t.Logf("Record: %+v", resp.Record)
}
