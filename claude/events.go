package claude

import (
	"encoding/json"
	"fmt"

	"github.com/tidwall/gjson"

	llmbridge "github.com/llmbridge/llmbridge-go"
)

// Stream event type discriminators.
const (
	EventMessageStart      = "message_start"
	EventContentBlockStart = "content_block_start"
	EventContentBlockDelta = "content_block_delta"
	EventContentBlockStop  = "content_block_stop"
	EventMessageDelta      = "message_delta"
	EventMessageStop       = "message_stop"
	EventPing              = "ping"
	EventError             = "error"
)

// Delta type discriminators within content_block_delta events.
const (
	DeltaText      = "text_delta"
	DeltaThinking  = "thinking_delta"
	DeltaSignature = "signature_delta"
	DeltaInputJSON = "input_json_delta"
)

// Delta is the payload of a content_block_delta event. Type selects which of
// the fields carries the fragment.
type Delta struct {
	Type        string `json:"type"`
	Text        string `json:"text,omitempty"`
	Thinking    string `json:"thinking,omitempty"`
	Signature   string `json:"signature,omitempty"`
	PartialJSON string `json:"partial_json,omitempty"`
}

// MessageDeltaBody carries the end-of-message metadata of a message_delta
// event.
type MessageDeltaBody struct {
	StopReason   string `json:"stop_reason,omitempty"`
	StopSequence string `json:"stop_sequence,omitempty"`
}

// StreamEvent is one decoded event from a Messages API stream. Type selects
// the variant; only that variant's fields are populated. The union is closed:
// ParseEvent rejects types outside this set.
type StreamEvent struct {
	Type string `json:"type"`

	// message_start
	Message *Response `json:"message,omitempty"`

	// content_block_start, content_block_delta, content_block_stop
	Index        int                     `json:"index,omitempty"`
	ContentBlock *llmbridge.ContentBlock `json:"content_block,omitempty"`
	Delta        *Delta                  `json:"delta,omitempty"`

	// message_delta
	MessageDelta *MessageDeltaBody `json:"-"`
	Usage        *Usage            `json:"usage,omitempty"`

	// error
	Error *ErrorDetail `json:"error,omitempty"`
}

// ParseEvent decodes one already-framed stream payload. SSE framing (the
// "data:" prefix, event lines) is the caller's job; this only sees the JSON
// body. Payloads whose type is missing or outside the closed union return a
// *llmbridge.DecodeError.
func ParseEvent(data []byte) (StreamEvent, error) {
	typ := gjson.GetBytes(data, "type").String()
	if typ == "" {
		return StreamEvent{}, &llmbridge.DecodeError{
			Reason: "stream event missing type discriminator",
			Raw:    append([]byte(nil), data...),
		}
	}

	switch typ {
	case EventMessageStart, EventContentBlockStart, EventContentBlockDelta,
		EventContentBlockStop, EventMessageStop, EventPing, EventError:
		var ev StreamEvent
		if err := json.Unmarshal(data, &ev); err != nil {
			return StreamEvent{}, &llmbridge.DecodeError{
				Reason: fmt.Sprintf("malformed %s event", typ),
				Raw:    append([]byte(nil), data...),
				Err:    err,
			}
		}
		return ev, nil

	case EventMessageDelta:
		// message_delta overloads the "delta" key with a different shape
		// than content_block_delta, so it gets its own decode.
		var ev struct {
			Type  string           `json:"type"`
			Delta MessageDeltaBody `json:"delta"`
			Usage *Usage           `json:"usage"`
		}
		if err := json.Unmarshal(data, &ev); err != nil {
			return StreamEvent{}, &llmbridge.DecodeError{
				Reason: "malformed message_delta event",
				Raw:    append([]byte(nil), data...),
				Err:    err,
			}
		}
		return StreamEvent{
			Type:         EventMessageDelta,
			MessageDelta: &ev.Delta,
			Usage:        ev.Usage,
		}, nil

	default:
		return StreamEvent{}, &llmbridge.DecodeError{
			Reason: fmt.Sprintf("unknown stream event type %q", typ),
			Raw:    append([]byte(nil), data...),
		}
	}
}
