package llmbridge

// FinishReason is the normalized vocabulary for why a response ended. Vendor
// dialects map their own stop reasons into this set and never leak their wire
// strings past the translator.
type FinishReason string

const (
	// FinishStop means the model ended its turn naturally or hit a caller
	// stop sequence.
	FinishStop FinishReason = "stop"
	// FinishLength means generation was cut off by the output token limit.
	FinishLength FinishReason = "length"
	// FinishToolCalls means the model stopped to invoke one or more tools.
	FinishToolCalls FinishReason = "tool_calls"
	// FinishContentFilter means the provider suppressed output.
	FinishContentFilter FinishReason = "content_filter"
)

// Truncated reports whether the response was cut short rather than completed.
func (r FinishReason) Truncated() bool {
	return r == FinishLength || r == FinishContentFilter
}
