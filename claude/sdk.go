package claude

import (
	"github.com/anthropics/anthropic-sdk-go"

	llmbridge "github.com/llmbridge/llmbridge-go"
)

// FromSDKEvent converts an official anthropic-sdk-go stream event into the
// dialect's event union, so callers driving the SDK's own transport can feed
// this package's Translator without re-decoding raw payloads.
//
// The SDK surfaces the same wire events the raw stream carries, so the
// mapping is structural. Events the SDK may add in future versions fall back
// to a DecodeError from Consume, matching the closed-union contract.
func FromSDKEvent(event anthropic.MessageStreamEventUnion) StreamEvent {
	switch e := event.AsAny().(type) {
	case anthropic.MessageStartEvent:
		inputTokens := int(e.Message.Usage.InputTokens)
		return StreamEvent{
			Type: EventMessageStart,
			Message: &Response{
				ID:    e.Message.ID,
				Type:  "message",
				Role:  llmbridge.RoleAssistant,
				Model: string(e.Message.Model),
				Usage: Usage{
					InputTokens:  &inputTokens,
					OutputTokens: int(e.Message.Usage.OutputTokens),
				},
			},
		}

	case anthropic.ContentBlockStartEvent:
		block := llmbridge.ContentBlock{Type: string(e.ContentBlock.Type)}
		switch e.ContentBlock.Type {
		case "text":
			block.Text = e.ContentBlock.Text
		case "thinking":
			block.Thinking = e.ContentBlock.Thinking
		case "tool_use":
			block.ID = e.ContentBlock.ID
			block.Name = e.ContentBlock.Name
		}
		return StreamEvent{
			Type:         EventContentBlockStart,
			Index:        int(e.Index),
			ContentBlock: &block,
		}

	case anthropic.ContentBlockDeltaEvent:
		return StreamEvent{
			Type:  EventContentBlockDelta,
			Index: int(e.Index),
			Delta: &Delta{
				Type:        string(e.Delta.Type),
				Text:        e.Delta.Text,
				Thinking:    e.Delta.Thinking,
				Signature:   e.Delta.Signature,
				PartialJSON: e.Delta.PartialJSON,
			},
		}

	case anthropic.ContentBlockStopEvent:
		return StreamEvent{Type: EventContentBlockStop, Index: int(e.Index)}

	case anthropic.MessageDeltaEvent:
		return StreamEvent{
			Type: EventMessageDelta,
			MessageDelta: &MessageDeltaBody{
				StopReason:   string(e.Delta.StopReason),
				StopSequence: e.Delta.StopSequence,
			},
			Usage: &Usage{OutputTokens: int(e.Usage.OutputTokens)},
		}

	case anthropic.MessageStopEvent:
		return StreamEvent{Type: EventMessageStop}

	default:
		return StreamEvent{Type: event.Type}
	}
}
