package openai

import (
	"encoding/json"
	"strings"

	"github.com/tidwall/gjson"

	llmbridge "github.com/llmbridge/llmbridge-go"
)

// chunkToolAcc accumulates one streamed tool call's argument fragments. The
// dialect streams calls sequentially by tool index: the first fragment of a
// call carries id and name, later fragments only append to the arguments
// string.
type chunkToolAcc struct {
	id   string
	name string
	args strings.Builder
}

// Translator turns a chat.completion.chunk stream into normalized chunks,
// actionable tool calls, and finally a unary response.
//
// Same ownership contract as the claude translator: one instance per
// response, sequential Consume calls from one goroutine, no blocking inside.
type Translator struct {
	id    string
	model string

	text      strings.Builder
	reasoning strings.Builder

	// Tool calls stream sequentially, so at most one accumulator is open;
	// it closes (and is surfaced) when a fragment for a higher index
	// arrives, or at finalize.
	openIndex int
	open      *chunkToolAcc
	completed []llmbridge.ToolCall
	dropped   []llmbridge.ToolArgumentError

	finishReason string
	usage        *Usage
	finalized    bool
}

// NewTranslator returns a translator for one response. model pre-seeds the
// response model and is superseded only when "" was passed and a chunk
// announces one.
func NewTranslator(model string) *Translator {
	return &Translator{model: model}
}

// Consume applies one streamed chunk. It returns the normalized chunk it
// produces (zero for bookkeeping-only input), and the completed tool call
// when this chunk's tool index closes the previous one. Should a single chunk
// close more than one call, the first is surfaced and the rest are deferred
// to the finalized response. A *llmbridge.ToolArgumentError is recoverable;
// it reports a closed call whose accumulated arguments were not a JSON
// object.
func (t *Translator) Consume(chunk ChunkResponse) (llmbridge.Chunk, *llmbridge.ToolCall, error) {
	if t.finalized {
		return llmbridge.Chunk{}, nil, llmbridge.ErrAlreadyFinalized
	}

	if t.id == "" {
		t.id = chunk.ID
	}
	if t.model == "" {
		t.model = chunk.Model
	}
	if chunk.Usage != nil {
		u := *chunk.Usage
		t.usage = &u
	}

	if len(chunk.Choices) == 0 {
		return llmbridge.Chunk{}, nil, nil
	}
	choice := chunk.Choices[0]

	var out llmbridge.Chunk
	out.Index = choice.Index
	if choice.Delta.Role != "" {
		out.Role = llmbridge.Role(choice.Delta.Role)
	}
	if choice.Delta.Content != nil {
		t.text.WriteString(*choice.Delta.Content)
		out.Text = *choice.Delta.Content
	}
	if choice.Delta.Reasoning != "" {
		t.reasoning.WriteString(choice.Delta.Reasoning)
		out.Reasoning = choice.Delta.Reasoning
	}
	if choice.FinishReason != "" {
		t.finishReason = choice.FinishReason
		finish := MapFinishReason(choice.FinishReason)
		out.FinishReason = &finish
	}

	var completed *llmbridge.ToolCall
	var consumeErr error
	for _, tc := range choice.Delta.ToolCalls {
		if t.open != nil && tc.Index != t.openIndex {
			call, err := t.closeOpenCall()
			switch {
			case err != nil:
				consumeErr = err
			case completed == nil:
				// When one chunk advances the index more than once, only
				// the first closed call is surfaced here; the rest are
				// recorded and appear in the finalized response.
				completed = call
			}
		}
		if t.open == nil {
			t.open = &chunkToolAcc{}
			t.openIndex = tc.Index
		}
		if tc.ID != "" {
			t.open.id = tc.ID
		}
		if tc.Function != nil {
			if tc.Function.Name != "" {
				t.open.name = tc.Function.Name
			}
			t.open.args.WriteString(tc.Function.Arguments)
		}
	}

	return out, completed, consumeErr
}

// ConsumeJSON decodes one framed payload and consumes it. The [DONE] sentinel
// is a no-op.
func (t *Translator) ConsumeJSON(data []byte) (llmbridge.Chunk, *llmbridge.ToolCall, error) {
	chunk, done, err := ParseChunk(data)
	if err != nil || done {
		return llmbridge.Chunk{}, nil, err
	}
	return t.Consume(chunk)
}

// closeOpenCall parses the open accumulator's arguments and either records the
// completed call or reports it as malformed. The accumulator is consumed
// either way.
func (t *Translator) closeOpenCall() (*llmbridge.ToolCall, error) {
	acc := t.open
	t.open = nil

	raw := acc.args.String()
	if raw == "" {
		raw = "{}"
	}
	if !gjson.Valid(raw) || !gjson.Parse(raw).IsObject() {
		// Re-decode with encoding/json for a concrete cause (syntax error,
		// or type error when the value is not an object).
		var obj map[string]json.RawMessage
		argErr := llmbridge.ToolArgumentError{
			ID:   acc.id,
			Name: acc.name,
			Raw:  acc.args.String(),
			Err:  json.Unmarshal([]byte(raw), &obj),
		}
		t.dropped = append(t.dropped, argErr)
		return nil, &argErr
	}
	call := llmbridge.ToolCall{
		ID:    acc.id,
		Name:  acc.name,
		Input: json.RawMessage(raw),
	}
	t.completed = append(t.completed, call)
	return &call, nil
}

// Finalize closes any still-open tool call, assembles the unary response, and
// retires the translator. A malformed final tool call is dropped from content
// and reported alongside the (otherwise complete) response.
func (t *Translator) Finalize() (llmbridge.UnaryResponse, error) {
	if t.finalized {
		return llmbridge.UnaryResponse{}, llmbridge.ErrAlreadyFinalized
	}
	t.finalized = true

	var finalizeErr error
	if t.open != nil {
		if _, err := t.closeOpenCall(); err != nil {
			finalizeErr = err
		}
	}

	var content []llmbridge.ContentBlock
	if t.text.Len() > 0 {
		content = append(content, llmbridge.NewTextBlock(t.text.String()))
	}
	if t.reasoning.Len() > 0 {
		content = append(content, llmbridge.NewThinkingBlock(t.reasoning.String(), ""))
	}
	for _, call := range t.completed {
		content = append(content, call.Block())
	}

	res := llmbridge.UnaryResponse{
		ID:      t.id,
		Model:   t.model,
		Role:    llmbridge.RoleAssistant,
		Content: content,
	}
	if t.finishReason != "" {
		res.StopReason = t.finishReason
		res.FinishReason = MapFinishReason(t.finishReason)
	}
	if t.usage != nil {
		res.Usage = llmbridge.Usage{
			PromptTokens:     t.usage.PromptTokens,
			CompletionTokens: t.usage.CompletionTokens,
		}
	}
	return res, finalizeErr
}

// DroppedToolCalls returns the malformed tool calls excluded from content, in
// arrival order.
func (t *Translator) DroppedToolCalls() []llmbridge.ToolArgumentError {
	return t.dropped
}
