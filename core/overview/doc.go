// Package overview tracks what one structured extraction cost.
// It collects token usage, per-attempt outcomes including re-prompts, and
// the request/response history of the calls made for a single record.
// Use [OverviewFromContext] to obtain or create an instance bound to a
// [context.Context], and [Overview.CostSummary] to price the usage once the
// extraction completes.
package overview
