package claude

import (
	"encoding/json"
	"strings"

	"github.com/tidwall/gjson"

	llmbridge "github.com/llmbridge/llmbridge-go"
)

// toolAcc accumulates one streamed tool call's argument fragments between its
// content_block_start and content_block_stop.
type toolAcc struct {
	id   string
	name string
	args strings.Builder
}

// Translator turns a sequence of dialect stream events into normalized chunks,
// actionable tool calls, and finally a unary response.
//
// One instance serves exactly one in-flight response. Events must be fed to
// Consume sequentially, in arrival order, from a single goroutine; independent
// instances are fully isolated and may run in parallel. Consume and Finalize
// never block.
type Translator struct {
	id    string
	model string

	promptTokens     int
	completionTokens int

	text      strings.Builder
	reasoning strings.Builder
	signature string

	// Open tool-call accumulators keyed by content block index, so
	// interleaved tool blocks at distinct indices cannot cross-contaminate.
	open      map[int]*toolAcc
	completed []llmbridge.ToolCall
	dropped   []llmbridge.ToolArgumentError

	stopReason string
	finalized  bool
}

// NewTranslator returns a translator for one response. model pre-seeds the
// unary response's model field; capture is once-only, so pass "" to take the
// model the stream's message_start announces.
func NewTranslator(model string) *Translator {
	return &Translator{
		model: model,
		open:  make(map[int]*toolAcc),
	}
}

// Consume applies one stream event to the accumulator. It returns the
// normalized chunk the event produces (zero for bookkeeping-only events), a
// completed tool call when the event closes one, and an error for vendor
// error events or malformed tool arguments.
//
// An error never leaves the accumulator half-updated: the failed event's
// effects are either fully applied or not at all. Vendor errors terminate the
// stream from the caller's perspective, but Finalize remains callable to
// recover whatever accumulated before the failure. A *ToolArgumentError is
// recoverable: the offending call is dropped and consumption may continue.
func (t *Translator) Consume(ev StreamEvent) (llmbridge.Chunk, *llmbridge.ToolCall, error) {
	if t.finalized {
		return llmbridge.Chunk{}, nil, llmbridge.ErrAlreadyFinalized
	}

	switch ev.Type {
	case EventError:
		detail := ErrorDetail{Type: "api_error", Message: "unspecified stream error"}
		if ev.Error != nil {
			detail = *ev.Error
		}
		return llmbridge.Chunk{}, nil, detail.Normalize()

	case EventMessageStart:
		if ev.Message != nil {
			if t.id == "" {
				t.id = ev.Message.ID
			}
			if t.model == "" {
				t.model = ev.Message.Model
			}
			if ev.Message.Usage.InputTokens != nil {
				t.promptTokens = *ev.Message.Usage.InputTokens
			}
			t.completionTokens = ev.Message.Usage.OutputTokens
		}
		return llmbridge.Chunk{Role: llmbridge.RoleAssistant}, nil, nil

	case EventPing:
		return llmbridge.Chunk{}, nil, nil

	case EventContentBlockStart:
		if ev.ContentBlock != nil && ev.ContentBlock.Type == llmbridge.BlockTypeToolUse {
			t.open[ev.Index] = &toolAcc{
				id:   ev.ContentBlock.ID,
				name: ev.ContentBlock.Name,
			}
		}
		return llmbridge.Chunk{}, nil, nil

	case EventContentBlockDelta:
		if ev.Delta == nil {
			return llmbridge.Chunk{}, nil, nil
		}
		switch ev.Delta.Type {
		case DeltaText:
			t.text.WriteString(ev.Delta.Text)
			return llmbridge.Chunk{Index: ev.Index, Text: ev.Delta.Text}, nil, nil
		case DeltaThinking:
			t.reasoning.WriteString(ev.Delta.Thinking)
			return llmbridge.Chunk{Index: ev.Index, Reasoning: ev.Delta.Thinking}, nil, nil
		case DeltaSignature:
			t.signature = ev.Delta.Signature
			return llmbridge.Chunk{}, nil, nil
		case DeltaInputJSON:
			if acc, ok := t.open[ev.Index]; ok {
				acc.args.WriteString(ev.Delta.PartialJSON)
			}
			return llmbridge.Chunk{}, nil, nil
		default:
			return llmbridge.Chunk{}, nil, nil
		}

	case EventContentBlockStop:
		acc, ok := t.open[ev.Index]
		if !ok {
			return llmbridge.Chunk{}, nil, nil
		}
		delete(t.open, ev.Index)

		raw := acc.args.String()
		if raw == "" {
			// Tools without parameters stream no fragments.
			raw = "{}"
		}
		if !gjson.Valid(raw) || !gjson.Parse(raw).IsObject() {
			// Re-decode with encoding/json for a concrete cause (syntax
			// error, or type error when the value is not an object).
			var obj map[string]json.RawMessage
			argErr := llmbridge.ToolArgumentError{
				ID:   acc.id,
				Name: acc.name,
				Raw:  acc.args.String(),
				Err:  json.Unmarshal([]byte(raw), &obj),
			}
			t.dropped = append(t.dropped, argErr)
			return llmbridge.Chunk{}, nil, &argErr
		}
		call := llmbridge.ToolCall{
			ID:    acc.id,
			Name:  acc.name,
			Input: json.RawMessage(raw),
		}
		t.completed = append(t.completed, call)
		return llmbridge.Chunk{}, &call, nil

	case EventMessageDelta:
		if ev.MessageDelta != nil && ev.MessageDelta.StopReason != "" {
			t.stopReason = ev.MessageDelta.StopReason
		}
		if ev.Usage != nil {
			t.completionTokens += ev.Usage.OutputTokens
		}
		if t.stopReason == "" {
			return llmbridge.Chunk{}, nil, nil
		}
		finish := MapStopReason(t.stopReason)
		return llmbridge.Chunk{FinishReason: &finish}, nil, nil

	case EventMessageStop:
		return llmbridge.Chunk{}, nil, nil

	default:
		return llmbridge.Chunk{}, nil, &llmbridge.DecodeError{
			Reason: "unknown stream event type " + ev.Type,
		}
	}
}

// ConsumeJSON decodes one framed payload and consumes it.
func (t *Translator) ConsumeJSON(data []byte) (llmbridge.Chunk, *llmbridge.ToolCall, error) {
	ev, err := ParseEvent(data)
	if err != nil {
		return llmbridge.Chunk{}, nil, err
	}
	return t.Consume(ev)
}

// Finalize assembles the unary response from everything accumulated so far
// and retires the translator. It works whether or not message_stop was ever
// observed, so callers that buffered a whole stream (or hit an error mid-way)
// can still extract the partial response. A second call returns
// ErrAlreadyFinalized.
func (t *Translator) Finalize() (llmbridge.UnaryResponse, error) {
	if t.finalized {
		return llmbridge.UnaryResponse{}, llmbridge.ErrAlreadyFinalized
	}
	t.finalized = true

	var content []llmbridge.ContentBlock
	if t.text.Len() > 0 {
		content = append(content, llmbridge.NewTextBlock(t.text.String()))
	}
	if t.reasoning.Len() > 0 {
		content = append(content, llmbridge.NewThinkingBlock(t.reasoning.String(), t.signature))
	}
	for _, call := range t.completed {
		content = append(content, call.Block())
	}

	res := llmbridge.UnaryResponse{
		ID:      t.id,
		Model:   t.model,
		Role:    llmbridge.RoleAssistant,
		Content: content,
		Usage: llmbridge.Usage{
			PromptTokens:     t.promptTokens,
			CompletionTokens: t.completionTokens,
		},
	}
	if t.stopReason != "" {
		res.StopReason = t.stopReason
		res.FinishReason = MapStopReason(t.stopReason)
	}
	return res, nil
}

// DroppedToolCalls returns the malformed tool calls excluded from content, in
// arrival order.
func (t *Translator) DroppedToolCalls() []llmbridge.ToolArgumentError {
	return t.dropped
}
