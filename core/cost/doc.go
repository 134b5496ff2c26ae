// Package cost prices LLM token usage.
//
// [ModelCost] holds per-million-token rates for one model and produces a
// [CostSummary] from an ai.Usage. A [Table] maps model names to rates and
// resolves dated or prefixed model names to their base entry.
package cost
