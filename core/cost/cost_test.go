package cost

import (
	"math"
	"testing"

	"github.com/Navanit-git/genai-advance/providers/ai"
)

func almostEqual(a, b float64) bool {
	return math.Abs(a-b) < 1e-12
}

func TestModelCostCalculations(t *testing.T) {
	mc := ModelCost{
		InputCostPerMillion:       2.50,
		OutputCostPerMillion:      10.00,
		CachedInputCostPerMillion: 1.25,
		ReasoningCostPerMillion:   5.00,
	}

	tests := []struct {
		name string
		got  float64
		want float64
	}{
		{"input", mc.CalculateInputCost(1_000_000), 2.50},
		{"output", mc.CalculateOutputCost(500_000), 5.00},
		{"cached", mc.CalculateCachedCost(200_000), 0.25},
		{"reasoning", mc.CalculateReasoningCost(100_000), 0.50},
		{"zero", mc.CalculateInputCost(0), 0},
	}
	for _, tt := range tests {
		if !almostEqual(tt.got, tt.want) {
			t.Errorf("%s: got %v, want %v", tt.name, tt.got, tt.want)
		}
	}
}

func TestBreakdown(t *testing.T) {
	usage := &ai.Usage{PromptTokens: 1_000_000, CompletionTokens: 1_000_000, CachedTokens: 1_000_000, ReasoningTokens: 1_000_000}

	full := ModelCost{InputCostPerMillion: 1, OutputCostPerMillion: 2, CachedInputCostPerMillion: 0.5, ReasoningCostPerMillion: 3}
	s := full.Breakdown(usage)
	if !almostEqual(s.TotalCost, 6.5) || s.Currency != "USD" {
		t.Errorf("unexpected summary %+v", s)
	}

	// Without cached/reasoning rates those tokens are not charged.
	basic := ModelCost{InputCostPerMillion: 1, OutputCostPerMillion: 2}
	if got := basic.CalculateTotalCost(usage); !almostEqual(got, 3) {
		t.Errorf("CalculateTotalCost() = %v, want 3", got)
	}

	if got := full.Breakdown(nil); got.TotalCost != 0 || got.Currency != "USD" {
		t.Errorf("Breakdown(nil) = %+v", got)
	}
}

func TestModelCostString(t *testing.T) {
	got := ModelCost{InputCostPerMillion: 0.29, OutputCostPerMillion: 0.59}.String()
	if got != "Input: $0.290000/M, Output: $0.590000/M" {
		t.Errorf("String() = %q", got)
	}
}

func TestTableLookup(t *testing.T) {
	table := Table{
		"gemini-2.5-flash":      {InputCostPerMillion: 0.30},
		"gemini-2.5-flash-lite": {InputCostPerMillion: 0.10},
		"qwen/qwen3-32b":        {InputCostPerMillion: 0.29},
	}

	tests := []struct {
		model string
		want  float64
		found bool
	}{
		{"gemini-2.5-flash", 0.30, true},
		{"models/gemini-2.5-flash", 0.30, true},
		{"Gemini-2.5-Flash-Lite", 0.10, true},
		{"gemini-2.5-flash-lite-preview-06-17", 0.10, true},
		{"gemini-2.5-flash-001", 0.30, true},
		{"qwen/qwen3-32b", 0.29, true},
		{"gpt-4o", 0, false},
		{"", 0, false},
	}
	for _, tt := range tests {
		mc, found := table.Lookup(tt.model)
		if found != tt.found || mc.InputCostPerMillion != tt.want {
			t.Errorf("Lookup(%q) = %v, %v; want %v, %v", tt.model, mc.InputCostPerMillion, found, tt.want, tt.found)
		}
	}
}

func TestTableMerge(t *testing.T) {
	base := Table{"a": {InputCostPerMillion: 1}, "b": {InputCostPerMillion: 2}}
	merged := base.Merge(Table{"b": {InputCostPerMillion: 3}})
	if merged["a"].InputCostPerMillion != 1 || merged["b"].InputCostPerMillion != 3 {
		t.Errorf("unexpected merge result %v", merged)
	}
	if base["b"].InputCostPerMillion != 2 {
		t.Error("Merge must not modify the receiver")
	}
}
