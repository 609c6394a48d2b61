// Package claude implements the Anthropic Messages wire dialect: request and
// response schemas, the stream event union, and a translator that turns a
// stream of dialect events into normalized chunks and a unary response.
package claude

import (
	llmbridge "github.com/llmbridge/llmbridge-go"
)

// StopReason values the dialect reports on a finished message.
const (
	StopReasonEndTurn      = "end_turn"
	StopReasonMaxTokens    = "max_tokens"
	StopReasonStopSequence = "stop_sequence"
	StopReasonToolUse      = "tool_use"
)

// MapStopReason converts a dialect stop reason into the normalized finish
// vocabulary. The mapping is total: unknown values fall through to FinishStop,
// which matches how the dialect treats any natural end of turn.
func MapStopReason(stopReason string) llmbridge.FinishReason {
	switch stopReason {
	case StopReasonMaxTokens:
		return llmbridge.FinishLength
	case StopReasonToolUse:
		return llmbridge.FinishToolCalls
	default: // end_turn, stop_sequence
		return llmbridge.FinishStop
	}
}

// Request is the Messages API request body.
type Request struct {
	Model         string              `json:"model"`
	System        string              `json:"system,omitempty"`
	Messages      []llmbridge.Message `json:"messages"`
	MaxTokens     int                 `json:"max_tokens"`
	StopSequences []string            `json:"stop_sequences,omitempty"`
	Temperature   *float64            `json:"temperature,omitempty"`
	TopP          *float64            `json:"top_p,omitempty"`
	TopK          *int                `json:"top_k,omitempty"`
	Tools         []Tool              `json:"tools,omitempty"`
	Metadata      map[string]string   `json:"metadata,omitempty"`
	Stream        bool                `json:"stream,omitempty"`
}

// Tool is the dialect's flattened tool definition (input_schema, not the
// nested function object the openai dialect uses).
type Tool struct {
	Name        string         `json:"name"`
	Description string         `json:"description,omitempty"`
	InputSchema map[string]any `json:"input_schema"`
}

// ToolFromDefinition flattens a normalized tool definition into the dialect
// shape.
func ToolFromDefinition(def llmbridge.ToolDefinition) Tool {
	return Tool{
		Name:        def.Function.Name,
		Description: def.Function.Description,
		InputSchema: def.Function.Parameters,
	}
}

// Usage is the dialect's token accounting. InputTokens is a pointer because
// the API omits it on events that only report output growth.
type Usage struct {
	InputTokens  *int `json:"input_tokens,omitempty"`
	OutputTokens int  `json:"output_tokens"`
}

// Response is the unary Messages API response body.
type Response struct {
	ID           string                   `json:"id"`
	Type         string                   `json:"type"` // always "message"
	Role         llmbridge.Role           `json:"role"`
	Content      []llmbridge.ContentBlock `json:"content"`
	Model        string                   `json:"model"`
	StopReason   string                   `json:"stop_reason,omitempty"`
	StopSequence string                   `json:"stop_sequence,omitempty"`
	Usage        Usage                    `json:"usage"`
}

// Normalize converts a unary dialect response into the normalized response
// shape.
func (r Response) Normalize() llmbridge.UnaryResponse {
	var prompt int
	if r.Usage.InputTokens != nil {
		prompt = *r.Usage.InputTokens
	}
	out := llmbridge.UnaryResponse{
		ID:      r.ID,
		Model:   r.Model,
		Role:    r.Role,
		Content: r.Content,
		Usage: llmbridge.Usage{
			PromptTokens:     prompt,
			CompletionTokens: r.Usage.OutputTokens,
		},
	}
	if r.StopReason != "" {
		out.StopReason = r.StopReason
		out.FinishReason = MapStopReason(r.StopReason)
	}
	return out
}
