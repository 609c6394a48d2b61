package llmbridge

import "encoding/json"

// Chunk is one normalized increment of a streamed response. Fields are
// populated sparsely: a chunk may carry a role announcement, a text delta, a
// reasoning delta, or a finish reason, and the zero chunk carries nothing.
type Chunk struct {
	// Index is the position of the content block this delta extends, when
	// the source dialect exposes one.
	Index int

	// Role is set once, on the first chunk of a response.
	Role Role

	// Text is a visible text delta.
	Text string

	// Reasoning is a thinking/reasoning text delta. Callers that do not
	// surface reasoning can ignore it.
	Reasoning string

	// FinishReason is set on the chunk that ends the response.
	FinishReason *FinishReason
}

// IsZero reports whether the chunk carries no information and can be skipped.
func (c Chunk) IsZero() bool {
	return c.Role == "" && c.Text == "" && c.Reasoning == "" && c.FinishReason == nil
}

// ToolCall is a fully assembled tool invocation surfaced by a translator once
// the vendor stream closes the call's argument block.
type ToolCall struct {
	ID    string          `json:"id"`
	Name  string          `json:"name"`
	Input json.RawMessage `json:"input"`
}

// Block returns the tool_use content block for this call.
func (t ToolCall) Block() ContentBlock {
	return NewToolUseBlock(t.ID, t.Name, t.Input)
}

// Usage is normalized token accounting for one exchange.
type Usage struct {
	PromptTokens     int `json:"prompt_tokens"`
	CompletionTokens int `json:"completion_tokens"`
}

// TotalTokens returns prompt plus completion tokens.
func (u Usage) TotalTokens() int { return u.PromptTokens + u.CompletionTokens }

// UnaryResponse is the assembled form of a complete response, whether it
// arrived unary or was accumulated from a stream by a translator's Finalize.
type UnaryResponse struct {
	ID      string         `json:"id"`
	Model   string         `json:"model"`
	Role    Role           `json:"role"`
	Content []ContentBlock `json:"content"`

	// StopReason is the vendor's wire string, kept for callers that need
	// the raw value; FinishReason is its normalized mapping.
	StopReason   string       `json:"stop_reason,omitempty"`
	FinishReason FinishReason `json:"finish_reason,omitempty"`

	Usage Usage `json:"usage"`
}

// TextContent concatenates the visible text of all text blocks.
func (r UnaryResponse) TextContent() string {
	var s string
	for _, b := range r.Content {
		if b.Type == BlockTypeText {
			s += b.Text
		}
	}
	return s
}

// ToolCalls returns the assembled tool invocations in content order.
func (r UnaryResponse) ToolCalls() []ToolCall {
	var calls []ToolCall
	for _, b := range r.Content {
		if b.Type == BlockTypeToolUse {
			calls = append(calls, ToolCall{ID: b.ID, Name: b.Name, Input: b.Input})
		}
	}
	return calls
}
