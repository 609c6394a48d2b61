package openai

import (
	llmbridge "github.com/llmbridge/llmbridge-go"
)

// StreamEncoder re-encodes normalized chunks into chat.completion.chunk
// bodies, so a gateway can serve any translated stream under an
// openai-compatible surface. id, created, and model are fixed per response
// and stamped on every chunk.
type StreamEncoder struct {
	ID      string
	Created int64
	Model   string
}

// Encode renders one normalized chunk as a wire chunk. Zero chunks still
// produce a valid body with an empty choice list, mirroring keep-alive
// behavior.
func (e StreamEncoder) Encode(c llmbridge.Chunk) ChunkResponse {
	out := ChunkResponse{
		ID:      e.ID,
		Object:  "chat.completion.chunk",
		Created: e.Created,
		Model:   e.Model,
	}
	if c.IsZero() {
		return out
	}

	choice := ChunkChoice{Index: 0}
	choice.Delta.Role = string(c.Role)
	if c.Text != "" || c.Role != "" {
		text := c.Text
		choice.Delta.Content = &text
	}
	choice.Delta.Reasoning = c.Reasoning
	if c.FinishReason != nil {
		choice.FinishReason = FinishReasonString(*c.FinishReason)
	}
	out.Choices = []ChunkChoice{choice}
	return out
}

// ResponseFromUnary renders a normalized unary response as a chat.completion
// body. Thinking blocks become the message's reasoning field; tool_use blocks
// become tool_calls; redacted thinking has no wire position and is dropped.
func ResponseFromUnary(u llmbridge.UnaryResponse, created int64) Response {
	msg := ResponseMessage{Role: string(u.Role)}

	var text, reasoning string
	var calls []ToolCall
	for _, b := range u.Content {
		switch b.Type {
		case llmbridge.BlockTypeText:
			text += b.Text
		case llmbridge.BlockTypeThinking:
			reasoning += b.Thinking
		case llmbridge.BlockTypeToolUse:
			calls = append(calls, ToolCall{
				ID:   b.ID,
				Type: "function",
				Function: FunctionCall{
					Name:      b.Name,
					Arguments: string(b.Input),
				},
			})
		}
	}
	if text != "" || len(calls) == 0 {
		msg.Content = &text
	}
	msg.Reasoning = reasoning
	msg.ToolCalls = calls

	choice := ResponseChoice{Index: 0, Message: msg}
	if u.FinishReason != "" {
		choice.FinishReason = FinishReasonString(u.FinishReason)
	}

	return Response{
		ID:      u.ID,
		Object:  "chat.completion",
		Created: created,
		Model:   u.Model,
		Choices: []ResponseChoice{choice},
		Usage: Usage{
			PromptTokens:     u.Usage.PromptTokens,
			CompletionTokens: u.Usage.CompletionTokens,
			TotalTokens:      u.Usage.TotalTokens(),
		},
	}
}
