package overview

import (
	"context"
	"time"

	"github.com/Navanit-git/genai-advance/core/cost"
	"github.com/Navanit-git/genai-advance/providers/ai"
)

// contextKey is a custom type for context keys to avoid collisions.
type contextKey string

// overviewContextKey is the key used to store Overview in context.
const overviewContextKey contextKey = "overview"

// Attempt outcomes. Extraction failures use the parse.Kind values.
const (
	OutcomeSuccess       = "success"
	OutcomeNoJSON        = "no_json"
	OutcomeMalformedJSON = "malformed_json"
	OutcomeValidation    = "schema_validation"
	OutcomeProviderError = "provider_error"
	OutcomeRefused       = "refused"
	OutcomeOther         = "other"
)

// Attempt is one model call made while extracting a record. The first call
// is attempt 1; every re-prompt adds one.
type Attempt struct {
	Number   int           `json:"number"`
	Outcome  string        `json:"outcome"`
	Error    string        `json:"error,omitempty"`
	Duration time.Duration `json:"duration"`
}

// Overview aggregates token usage, cost and the request/response history
// produced while extracting one record.
type Overview struct {
	LastResponse *ai.ChatResponse   `json:"last_response,omitempty"`
	Requests     []*ai.ChatRequest  `json:"requests"`
	Responses    []*ai.ChatResponse `json:"responses"`
	Attempts     []Attempt          `json:"attempts,omitempty"`
	TotalUsage   ai.Usage           `json:"total_usage"`
	// ModelCost is the pricing configuration for the model (optional)
	ModelCost *cost.ModelCost `json:"model_cost,omitempty"`

	// ExecutionStartTime marks when the execution started
	ExecutionStartTime time.Time `json:"execution_start_time,omitempty"`
	// ExecutionEndTime marks when the execution ended
	ExecutionEndTime time.Time `json:"execution_end_time,omitempty"`
}

// OverviewFromContext retrieves the Overview from the context, creating one if
// it does not already exist. The context pointer is updated in-place when a new
// Overview is created so callers see the enriched context.
func OverviewFromContext(ctx *context.Context) *Overview {
	overviewVal := (*ctx).Value(overviewContextKey)
	if overviewVal == nil {
		overview := &Overview{}
		*ctx = overview.ToContext(*ctx)
		return overview
	}

	overview, ok := overviewVal.(*Overview)
	if !ok {
		return nil
	}
	return overview
}

// ToContext stores the Overview in the given context and returns the enriched context.
func (overview *Overview) ToContext(ctx context.Context) context.Context {
	if ctx == nil {
		ctx = context.Background()
	}

	return context.WithValue(ctx, overviewContextKey, overview)
}

// IncludeUsage accumulates token usage from an AI response into the overview totals.
func (overview *Overview) IncludeUsage(usage *ai.Usage) {
	overview.TotalUsage.Add(usage)
}

// AddRequest appends a chat request to the overview's request history.
func (overview *Overview) AddRequest(request *ai.ChatRequest) {
	overview.Requests = append(overview.Requests, request)
}

// AddResponse appends a chat response to the overview's response history and
// updates the last response reference.
func (overview *Overview) AddResponse(response *ai.ChatResponse) {
	overview.Responses = append(overview.Responses, response)
	overview.LastResponse = response
}

// AddAttempt records the result of one model call. Number is assigned from
// the attempt count.
func (overview *Overview) AddAttempt(outcome string, err error, duration time.Duration) Attempt {
	attempt := Attempt{
		Number:   len(overview.Attempts) + 1,
		Outcome:  outcome,
		Duration: duration,
	}
	if err != nil {
		attempt.Error = err.Error()
	}
	overview.Attempts = append(overview.Attempts, attempt)
	return attempt
}

// Reprompts returns how many repair prompts were sent.
func (overview *Overview) Reprompts() int {
	if len(overview.Attempts) == 0 {
		return 0
	}
	return len(overview.Attempts) - 1
}

// Succeeded reports whether the last attempt produced a valid record.
func (overview *Overview) Succeeded() bool {
	n := len(overview.Attempts)
	return n > 0 && overview.Attempts[n-1].Outcome == OutcomeSuccess
}

// SetModelCost sets the model cost configuration for this overview.
func (overview *Overview) SetModelCost(modelCost *cost.ModelCost) {
	overview.ModelCost = modelCost
}

// StartExecution marks the start of the extraction.
func (overview *Overview) StartExecution() {
	overview.ExecutionStartTime = time.Now()
}

// EndExecution marks the end of the extraction.
func (overview *Overview) EndExecution() {
	overview.ExecutionEndTime = time.Now()
}

// ExecutionDuration returns the total execution duration.
// Returns 0 if execution hasn't started or ended.
func (overview *Overview) ExecutionDuration() time.Duration {
	if overview.ExecutionStartTime.IsZero() || overview.ExecutionEndTime.IsZero() {
		return 0
	}
	return overview.ExecutionEndTime.Sub(overview.ExecutionStartTime)
}

// TotalCost returns the model cost of every attempt.
func (overview *Overview) TotalCost() float64 {
	return overview.CostSummary().TotalCost
}

// CostSummary prices the accumulated usage. Without a ModelCost every amount
// is zero.
func (overview *Overview) CostSummary() cost.CostSummary {
	if overview.ModelCost == nil {
		return cost.CostSummary{Currency: "USD"}
	}
	return overview.ModelCost.Breakdown(&overview.TotalUsage)
}
