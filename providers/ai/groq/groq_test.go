package groq

import (
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Navanit-git/genai-advance/core/schema"
	"github.com/Navanit-git/genai-advance/providers/ai"
	"github.com/Navanit-git/genai-advance/providers/ai/openai"
)

func TestNewDefaults(t *testing.T) {
	t.Setenv("GROQ_API_BASE_URL", "")
	t.Setenv("GROQ_API_KEY", "gsk-test")

	p := New()
	assert.Equal(t, "groq", p.Name())
	assert.Equal(t, DefaultModel, p.DefaultModel())
	assert.Equal(t, openai.Capabilities{
		SupportsJSONMode:        true,
		SupportsReasoningEffort: true,
		SupportsReasoningFormat: true,
	}, p.Capabilities())
}

func TestSendMessageThroughGroqEndpoint(t *testing.T) {
	var body map[string]any
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/chat/completions", r.URL.Path)
		assert.Equal(t, "Bearer gsk-test", r.Header.Get("Authorization"))
		raw, _ := io.ReadAll(r.Body)
		require.NoError(t, json.Unmarshal(raw, &body))
		w.Header().Set("Content-Type", "application/json")
		_, _ = io.WriteString(w, `{"id": "g1", "object": "chat.completion", "model": "qwen/qwen3-32b",
			"choices": [{"index": 0, "finish_reason": "stop", "message": {"role": "assistant", "content": "{\"name\": \"Ram\"}", "reasoning": "thinking"}}],
			"usage": {"prompt_tokens": 1, "completion_tokens": 1, "total_tokens": 2}}`)
	}))
	defer server.Close()

	t.Setenv("GROQ_API_KEY", "gsk-test")
	t.Setenv("GROQ_API_BASE_URL", server.URL)
	p := New()
	// The test server URL does not look like Groq; keep Groq's capabilities.
	p.WithCapabilities(openai.Capabilities{SupportsJSONMode: true, SupportsReasoningFormat: true, SupportsReasoningEffort: true})
	p.WithHttpClient(server.Client())

	resp, err := p.SendMessage(context.Background(), ai.ChatRequest{
		Messages:         []ai.Message{{Role: ai.RoleUser, Content: "extract"}},
		ResponseFormat:   &ai.ResponseFormat{OutputSchema: schema.Object(map[string]*schema.Schema{"name": schema.String()}, "name")},
		GenerationConfig: &ai.GenerationConfig{ReasoningFormat: "parsed"},
	})
	require.NoError(t, err)
	assert.Equal(t, "thinking", resp.Reasoning)

	assert.Equal(t, DefaultModel, body["model"])
	assert.Equal(t, "parsed", body["reasoning_format"])
	assert.Equal(t, "json_object", body["response_format"].(map[string]any)["type"])
}
