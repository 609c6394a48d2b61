// Package lorem is a mock stream source that emits a synthetic claude-dialect
// event sequence filled with lorem ipsum text. It exists for development and
// testing without API keys: the stream it produces is shaped exactly like a
// real Messages API stream (message_start, block lifecycle events, message
// delta, message stop), so it can drive the claude translator end to end.
package lorem

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"
	"time"

	loremgen "github.com/bozaro/golorem"

	llmbridge "github.com/llmbridge/llmbridge-go"
	"github.com/llmbridge/llmbridge-go/claude"
)

// Options configures one synthetic stream.
type Options struct {
	// Model names select streaming speed: "lorem-fast", "lorem-medium",
	// "lorem-slow". Names containing "cutoff" end with a max_tokens stop.
	Model string

	// MaxTokens bounds the synthetic output length. Zero means 200.
	MaxTokens int

	// Thinking adds a thinking block (with a trailing signature delta,
	// matching real stream ordering) before the text.
	Thinking bool

	// Tools, when non-empty, appends one tool_use block per entry with its
	// input JSON streamed character by character.
	Tools []llmbridge.ToolDefinition
}

// streamDelay maps the model name to the pause between deltas.
func streamDelay(model string) time.Duration {
	switch {
	case strings.Contains(model, "slow"):
		return 500 * time.Millisecond
	case strings.Contains(model, "fast"):
		return time.Millisecond
	default:
		return 10 * time.Millisecond
	}
}

// Stream launches the generator and returns its event channel. The channel is
// closed after message_stop, or early when ctx is canceled. Events arrive in
// the same order a real stream delivers them.
func Stream(ctx context.Context, opts Options) <-chan claude.StreamEvent {
	events := make(chan claude.StreamEvent, 10)

	go func() {
		defer close(events)
		g := &generator{
			lorem: loremgen.New(),
			delay: streamDelay(opts.Model),
			out:   events,
		}
		g.run(ctx, opts)
	}()

	return events
}

type generator struct {
	lorem *loremgen.Lorem
	delay time.Duration
	out   chan<- claude.StreamEvent

	outputTokens int
}

func (g *generator) run(ctx context.Context, opts Options) {
	maxTokens := opts.MaxTokens
	if maxTokens <= 0 {
		maxTokens = 200
	}

	inputTokens := 10
	if !g.send(ctx, claude.StreamEvent{
		Type: claude.EventMessageStart,
		Message: &claude.Response{
			ID:    fmt.Sprintf("msg_lorem_%d", time.Now().UnixNano()),
			Type:  "message",
			Role:  llmbridge.RoleAssistant,
			Model: opts.Model,
			Usage: claude.Usage{InputTokens: &inputTokens, OutputTokens: 1},
		},
	}) {
		return
	}

	index := 0
	stopReason := claude.StopReasonEndTurn

	if opts.Thinking {
		if !g.thinkingBlock(ctx, index, min(maxTokens/4, 40)) {
			return
		}
		index++
	}

	words := maxTokens - g.outputTokens
	if strings.Contains(opts.Model, "cutoff") {
		stopReason = claude.StopReasonMaxTokens
	}
	if !g.textBlock(ctx, index, words) {
		return
	}
	index++

	for _, def := range opts.Tools {
		if !g.toolBlock(ctx, index, def) {
			return
		}
		index++
		stopReason = claude.StopReasonToolUse
	}

	if !g.send(ctx, claude.StreamEvent{
		Type:         claude.EventMessageDelta,
		MessageDelta: &claude.MessageDeltaBody{StopReason: stopReason},
		Usage:        &claude.Usage{OutputTokens: g.outputTokens},
	}) {
		return
	}
	g.send(ctx, claude.StreamEvent{Type: claude.EventMessageStop})
}

// send delivers one event unless the context is done. It also paces the
// stream with the configured delay.
func (g *generator) send(ctx context.Context, ev claude.StreamEvent) bool {
	select {
	case g.out <- ev:
	case <-ctx.Done():
		return false
	}
	if g.delay > 0 {
		select {
		case <-time.After(g.delay):
		case <-ctx.Done():
			return false
		}
	}
	return true
}

func (g *generator) textBlock(ctx context.Context, index, targetWords int) bool {
	start := llmbridge.NewTextBlock("")
	if !g.send(ctx, claude.StreamEvent{
		Type:         claude.EventContentBlockStart,
		Index:        index,
		ContentBlock: &start,
	}) {
		return false
	}

	for _, word := range g.words(targetWords) {
		if !g.send(ctx, claude.StreamEvent{
			Type:  claude.EventContentBlockDelta,
			Index: index,
			Delta: &claude.Delta{Type: claude.DeltaText, Text: word + " "},
		}) {
			return false
		}
		g.outputTokens++
	}

	return g.send(ctx, claude.StreamEvent{Type: claude.EventContentBlockStop, Index: index})
}

// thinkingBlock emits thinking deltas followed by the signature delta last,
// matching real stream ordering.
func (g *generator) thinkingBlock(ctx context.Context, index, targetWords int) bool {
	start := llmbridge.NewThinkingBlock("", "")
	if !g.send(ctx, claude.StreamEvent{
		Type:         claude.EventContentBlockStart,
		Index:        index,
		ContentBlock: &start,
	}) {
		return false
	}

	for _, word := range g.words(targetWords) {
		if !g.send(ctx, claude.StreamEvent{
			Type:  claude.EventContentBlockDelta,
			Index: index,
			Delta: &claude.Delta{Type: claude.DeltaThinking, Thinking: word + " "},
		}) {
			return false
		}
		g.outputTokens++
	}

	if !g.send(ctx, claude.StreamEvent{
		Type:  claude.EventContentBlockDelta,
		Index: index,
		Delta: &claude.Delta{Type: claude.DeltaSignature, Signature: "sig_lorem"},
	}) {
		return false
	}

	return g.send(ctx, claude.StreamEvent{Type: claude.EventContentBlockStop, Index: index})
}

// toolBlock opens a tool_use block and streams a mock input object character
// by character, the way real streams deliver input_json_delta fragments.
func (g *generator) toolBlock(ctx context.Context, index int, def llmbridge.ToolDefinition) bool {
	start := llmbridge.NewToolUseBlock(
		fmt.Sprintf("toolu_lorem_%d", index), def.Function.Name, nil,
	)
	if !g.send(ctx, claude.StreamEvent{
		Type:         claude.EventContentBlockStart,
		Index:        index,
		ContentBlock: &start,
	}) {
		return false
	}

	input := map[string]any{
		"query": g.lorem.Sentence(3, 6),
	}
	raw, err := json.Marshal(input)
	if err != nil {
		return false
	}
	for _, ch := range string(raw) {
		if !g.send(ctx, claude.StreamEvent{
			Type:  claude.EventContentBlockDelta,
			Index: index,
			Delta: &claude.Delta{Type: claude.DeltaInputJSON, PartialJSON: string(ch)},
		}) {
			return false
		}
	}
	g.outputTokens += len(raw) / 4

	return g.send(ctx, claude.StreamEvent{Type: claude.EventContentBlockStop, Index: index})
}

// words generates roughly targetWords lorem words.
func (g *generator) words(targetWords int) []string {
	var sb strings.Builder
	count := 0
	for count < targetWords {
		sentence := g.lorem.Sentence(5, 15)
		sb.WriteString(sentence)
		sb.WriteString(" ")
		count += len(strings.Fields(sentence))
	}
	words := strings.Fields(sb.String())
	if len(words) > targetWords {
		words = words[:targetWords]
	}
	return words
}
