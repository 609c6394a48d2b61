// Package openai implements the Chat Completions wire dialect: request and
// response schemas, the streamed chunk shape, a translator from chunk streams
// to normalized output, and encoders from normalized output back onto the
// wire.
package openai

import (
	"bytes"
	"encoding/json"
	"fmt"

	"github.com/tidwall/gjson"

	llmbridge "github.com/llmbridge/llmbridge-go"
)

// Message roles the dialect accepts beyond the shared user/assistant pair.
const (
	RoleSystem = "system"
	RoleTool   = "tool"
)

// Finish reason strings the dialect reports.
const (
	FinishReasonStop          = "stop"
	FinishReasonLength        = "length"
	FinishReasonToolCalls     = "tool_calls"
	FinishReasonContentFilter = "content_filter"
)

// MapFinishReason converts a dialect finish reason into the normalized
// vocabulary. Total: unknown strings map to FinishStop.
func MapFinishReason(reason string) llmbridge.FinishReason {
	switch reason {
	case FinishReasonLength:
		return llmbridge.FinishLength
	case FinishReasonToolCalls:
		return llmbridge.FinishToolCalls
	case FinishReasonContentFilter:
		return llmbridge.FinishContentFilter
	default:
		return llmbridge.FinishStop
	}
}

// FinishReasonString maps the normalized vocabulary back onto the wire.
func FinishReasonString(r llmbridge.FinishReason) string {
	switch r {
	case llmbridge.FinishLength:
		return FinishReasonLength
	case llmbridge.FinishToolCalls:
		return FinishReasonToolCalls
	case llmbridge.FinishContentFilter:
		return FinishReasonContentFilter
	default:
		return FinishReasonStop
	}
}

// ImageURL is the image payload of an image_url content part. URL is either
// an http(s) URL or a base64 data URL.
type ImageURL struct {
	URL    string `json:"url"`
	Detail string `json:"detail,omitempty"` // "auto", "low", "high"
}

// ContentPart is one element of an array-form message content.
type ContentPart struct {
	Type     string    `json:"type"` // "text" or "image_url"
	Text     string    `json:"text,omitempty"`
	ImageURL *ImageURL `json:"image_url,omitempty"`
}

// Content is a message body that arrives either as a bare string or as an
// array of typed parts. The variant is picked from the JSON shape at the
// decode boundary and carried explicitly from then on.
type Content struct {
	parts  []ContentPart
	text   string
	isText bool
}

// TextContent returns a string-form Content.
func TextContent(s string) Content {
	return Content{text: s, isText: true}
}

// PartsContent returns an array-form Content.
func PartsContent(parts ...ContentPart) Content {
	return Content{parts: parts}
}

// IsText reports whether the content is the string variant.
func (c Content) IsText() bool { return c.isText }

// TextValue returns the string form, or "" for the parts variant.
func (c Content) TextValue() string {
	if !c.isText {
		return ""
	}
	return c.text
}

// Parts returns the parts list, or nil for the string variant.
func (c Content) Parts() []ContentPart {
	if c.isText {
		return nil
	}
	return c.parts
}

func (c Content) MarshalJSON() ([]byte, error) {
	if c.isText {
		return json.Marshal(c.text)
	}
	return json.Marshal(c.parts)
}

func (c *Content) UnmarshalJSON(data []byte) error {
	switch parsed := gjson.ParseBytes(data); {
	case parsed.Type == gjson.String:
		var s string
		if err := json.Unmarshal(data, &s); err != nil {
			return err
		}
		*c = TextContent(s)
		return nil
	case parsed.IsArray():
		var parts []ContentPart
		if err := json.Unmarshal(data, &parts); err != nil {
			return err
		}
		// Fold json's non-nil empty slice into the canonical form so an empty
		// wire array is indistinguishable from PartsContent().
		if len(parts) == 0 {
			parts = nil
		}
		*c = PartsContent(parts...)
		return nil
	case parsed.Type == gjson.Null:
		*c = Content{}
		return nil
	default:
		return fmt.Errorf("openai: message content must be a string or an array")
	}
}

// FunctionCall is the function payload of an assistant tool call.
type FunctionCall struct {
	Name      string `json:"name"`
	Arguments string `json:"arguments"` // JSON object, encoded as a string
}

// ToolCall is a completed tool invocation on an assistant message.
type ToolCall struct {
	ID       string       `json:"id"`
	Type     string       `json:"type"` // always "function"
	Function FunctionCall `json:"function"`
}

// Message is one request message.
type Message struct {
	Role       string     `json:"role"`
	Content    Content    `json:"content,omitempty"`
	Name       string     `json:"name,omitempty"`
	ToolCalls  []ToolCall `json:"tool_calls,omitempty"`
	ToolCallID string     `json:"tool_call_id,omitempty"` // for role "tool"
}

// Stop is the request stop field: a single string or an array of strings.
type Stop struct {
	Sequences []string
}

func (s Stop) MarshalJSON() ([]byte, error) {
	if len(s.Sequences) == 1 {
		return json.Marshal(s.Sequences[0])
	}
	return json.Marshal(s.Sequences)
}

func (s *Stop) UnmarshalJSON(data []byte) error {
	switch parsed := gjson.ParseBytes(data); {
	case parsed.Type == gjson.String:
		var one string
		if err := json.Unmarshal(data, &one); err != nil {
			return err
		}
		s.Sequences = []string{one}
		return nil
	case parsed.IsArray():
		return json.Unmarshal(data, &s.Sequences)
	default:
		return fmt.Errorf("openai: stop must be a string or an array of strings")
	}
}

// Request is the Chat Completions request body.
type Request struct {
	Model       string                     `json:"model"`
	Messages    []Message                  `json:"messages"`
	MaxTokens   *int                       `json:"max_tokens,omitempty"`
	Temperature *float64                   `json:"temperature,omitempty"`
	TopP        *float64                   `json:"top_p,omitempty"`
	Stop        *Stop                      `json:"stop,omitempty"`
	Tools       []llmbridge.ToolDefinition `json:"tools,omitempty"`
	Stream      bool                       `json:"stream,omitempty"`
	User        string                     `json:"user,omitempty"`
}

// Usage is the dialect's token accounting.
type Usage struct {
	PromptTokens     int `json:"prompt_tokens"`
	CompletionTokens int `json:"completion_tokens"`
	TotalTokens      int `json:"total_tokens"`
}

// ResponseMessage is the assistant message inside a unary response choice.
type ResponseMessage struct {
	Role      string     `json:"role"`
	Content   *string    `json:"content"`
	Reasoning string     `json:"reasoning,omitempty"`
	ToolCalls []ToolCall `json:"tool_calls,omitempty"`
}

// ResponseChoice is one completion of a unary response.
type ResponseChoice struct {
	Index        int             `json:"index"`
	Message      ResponseMessage `json:"message"`
	FinishReason string          `json:"finish_reason,omitempty"`
}

// Response is the unary chat.completion body.
type Response struct {
	ID                string           `json:"id"`
	Object            string           `json:"object"` // "chat.completion"
	Created           int64            `json:"created"`
	Model             string           `json:"model"`
	SystemFingerprint string           `json:"system_fingerprint,omitempty"`
	Choices           []ResponseChoice `json:"choices"`
	Usage             Usage            `json:"usage"`
}

// ToolCallChunk is an incremental tool call fragment inside a streamed delta.
// The first fragment of a call carries id/name; later fragments carry only
// the index and another slice of the arguments string.
type ToolCallChunk struct {
	Index    int           `json:"index"`
	ID       string        `json:"id,omitempty"`
	Type     string        `json:"type,omitempty"`
	Function *FunctionCall `json:"function,omitempty"`
}

// DeltaMessage is the incremental payload of a streamed choice.
type DeltaMessage struct {
	Role      string          `json:"role,omitempty"`
	Content   *string         `json:"content,omitempty"`
	Reasoning string          `json:"reasoning,omitempty"`
	ToolCalls []ToolCallChunk `json:"tool_calls,omitempty"`
}

// ChunkChoice is one streamed choice.
type ChunkChoice struct {
	Index        int          `json:"index"`
	Delta        DeltaMessage `json:"delta"`
	FinishReason string       `json:"finish_reason,omitempty"`
}

// ChunkResponse is one chat.completion.chunk body.
type ChunkResponse struct {
	ID                string        `json:"id"`
	Object            string        `json:"object"` // "chat.completion.chunk"
	Created           int64         `json:"created"`
	Model             string        `json:"model"`
	SystemFingerprint string        `json:"system_fingerprint,omitempty"`
	Choices           []ChunkChoice `json:"choices"`
	Usage             *Usage        `json:"usage,omitempty"`
}

// doneSentinel is the non-JSON payload that ends a chunk stream.
var doneSentinel = []byte("[DONE]")

// ParseChunk decodes one already-framed stream payload. done is true for the
// [DONE] sentinel, which carries no chunk. SSE framing stays with the caller.
func ParseChunk(data []byte) (chunk ChunkResponse, done bool, err error) {
	if bytes.Equal(bytes.TrimSpace(data), doneSentinel) {
		return ChunkResponse{}, true, nil
	}
	if err := json.Unmarshal(data, &chunk); err != nil {
		return ChunkResponse{}, false, &llmbridge.DecodeError{
			Reason: "malformed chat.completion.chunk",
			Raw:    append([]byte(nil), data...),
			Err:    err,
		}
	}
	return chunk, false, nil
}
