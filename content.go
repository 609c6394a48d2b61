package llmbridge

import (
	"encoding/json"
	"fmt"
	"strings"

	"github.com/tidwall/gjson"
)

// Role identifies the author of a message.
type Role string

const (
	RoleUser      Role = "user"
	RoleAssistant Role = "assistant"
)

// Block type constants
const (
	BlockTypeText             = "text"
	BlockTypeThinking         = "thinking"          // Extended thinking (visible reasoning)
	BlockTypeRedactedThinking = "redacted_thinking" // Reasoning withheld by the provider (opaque data)
	BlockTypeToolUse          = "tool_use"
	BlockTypeToolResult       = "tool_result" // Result sent back from a client-executed tool call
	BlockTypeImage            = "image"
	BlockTypeDocument         = "document"
)

// Message is a single conversation turn.
type Message struct {
	Role    Role           `json:"role"`
	Content MessageContent `json:"content"`
}

// MessageContent is either plain text or an ordered list of content blocks.
// The two shapes are distinguished on the wire by JSON shape (string vs array),
// never by a tag field; internally the discriminant is explicit.
type MessageContent struct {
	blocks []ContentBlock
	text   string
	isText bool
}

// Text returns a MessageContent holding plain text.
func Text(s string) MessageContent {
	return MessageContent{text: s, isText: true}
}

// Blocks returns a MessageContent holding an ordered block list.
func Blocks(blocks ...ContentBlock) MessageContent {
	return MessageContent{blocks: blocks}
}

// IsText reports whether the content is the plain-text variant.
func (c MessageContent) IsText() bool { return c.isText }

// TextValue returns the plain text, or "" for the block variant.
func (c MessageContent) TextValue() string {
	if !c.isText {
		return ""
	}
	return c.text
}

// BlockList returns the block list, or nil for the text variant.
func (c MessageContent) BlockList() []ContentBlock {
	if c.isText {
		return nil
	}
	return c.blocks
}

// IsEmpty reports whether the content carries nothing worth sending:
// blank/whitespace-only text, an empty block list, or a list in which every
// block is empty by its own variant's predicate.
func (c MessageContent) IsEmpty() bool {
	if c.isText {
		return strings.TrimSpace(c.text) == ""
	}
	for _, b := range c.blocks {
		if !b.IsEmpty() {
			return false
		}
	}
	return true
}

// MarshalJSON emits a bare string for the text variant and an array for the
// block variant.
func (c MessageContent) MarshalJSON() ([]byte, error) {
	if c.isText {
		return json.Marshal(c.text)
	}
	if c.blocks == nil {
		return []byte("[]"), nil
	}
	return json.Marshal(c.blocks)
}

// UnmarshalJSON picks the variant from the decoded shape. This is the only
// place shape inspection happens; everything downstream switches on the
// explicit discriminant.
func (c *MessageContent) UnmarshalJSON(data []byte) error {
	switch gjson.ParseBytes(data).Type {
	case gjson.String:
		var s string
		if err := json.Unmarshal(data, &s); err != nil {
			return err
		}
		*c = Text(s)
		return nil
	case gjson.JSON:
		if !gjson.ParseBytes(data).IsArray() {
			return fmt.Errorf("llmbridge: message content must be a string or an array")
		}
		var blocks []ContentBlock
		if err := json.Unmarshal(data, &blocks); err != nil {
			return err
		}
		// json gives an empty wire array a non-nil slice; fold it into the
		// canonical form so it is indistinguishable from Blocks().
		if len(blocks) == 0 {
			blocks = nil
		}
		*c = Blocks(blocks...)
		return nil
	default:
		return fmt.Errorf("llmbridge: message content must be a string or an array")
	}
}

// ImageSource is the payload of an image block (base64 variant only).
type ImageSource struct {
	Type      string `json:"type"` // always "base64"
	MediaType string `json:"media_type"`
	Data      string `json:"data"`
}

// DocumentSource is the payload of a document block.
type DocumentSource struct {
	Type      string `json:"type"` // "base64" or "url"
	MediaType string `json:"media_type,omitempty"`
	Data      string `json:"data,omitempty"`
	URL       string `json:"url,omitempty"`
}

// ContentBlock is one typed unit of message content. Type selects the variant;
// only that variant's fields are meaningful.
//
// Variant fields:
//   - text:              Text
//   - thinking:          Thinking, Signature (optional)
//   - redacted_thinking: Data (opaque)
//   - tool_use:          ID, Name, Input (JSON object)
//   - tool_result:       ToolUseID, Content, IsError
//   - image:             Source
//   - document:          DocSource, Title (optional)
type ContentBlock struct {
	Type string

	Text      string
	Thinking  string
	Signature string
	Data      string

	ID    string
	Name  string
	Input json.RawMessage

	ToolUseID string
	Content   *MessageContent
	IsError   bool

	Source    *ImageSource
	DocSource *DocumentSource
	Title     string
}

// NewTextBlock returns a text block.
func NewTextBlock(text string) ContentBlock {
	return ContentBlock{Type: BlockTypeText, Text: text}
}

// NewThinkingBlock returns a thinking block. Signature may be empty.
func NewThinkingBlock(thinking, signature string) ContentBlock {
	return ContentBlock{Type: BlockTypeThinking, Thinking: thinking, Signature: signature}
}

// NewRedactedThinkingBlock returns a redacted thinking block carrying the
// provider's opaque payload.
func NewRedactedThinkingBlock(data string) ContentBlock {
	return ContentBlock{Type: BlockTypeRedactedThinking, Data: data}
}

// NewToolUseBlock returns a tool_use block. Input must be a JSON object.
func NewToolUseBlock(id, name string, input json.RawMessage) ContentBlock {
	return ContentBlock{Type: BlockTypeToolUse, ID: id, Name: name, Input: input}
}

// NewToolResultBlock returns a tool_result block.
func NewToolResultBlock(toolUseID string, content MessageContent, isError bool) ContentBlock {
	return ContentBlock{Type: BlockTypeToolResult, ToolUseID: toolUseID, Content: &content, IsError: isError}
}

// NewImageBlock returns a base64 image block.
func NewImageBlock(mediaType, data string) ContentBlock {
	return ContentBlock{Type: BlockTypeImage, Source: &ImageSource{Type: "base64", MediaType: mediaType, Data: data}}
}

// IsEmpty is the per-variant emptiness predicate. Empty blocks are filtered
// during normalization and never emitted by the translators.
func (b ContentBlock) IsEmpty() bool {
	switch b.Type {
	case BlockTypeText:
		return strings.TrimSpace(b.Text) == ""
	case BlockTypeThinking:
		return strings.TrimSpace(b.Thinking) == ""
	case BlockTypeRedactedThinking:
		return b.Data == ""
	case BlockTypeToolUse:
		return b.ID == "" || b.Name == "" || !gjson.ParseBytes(b.Input).IsObject()
	case BlockTypeToolResult:
		return b.ToolUseID == "" || b.Content == nil || b.Content.IsEmpty()
	case BlockTypeImage:
		return b.Source == nil || b.Source.MediaType == "" || b.Source.Data == ""
	case BlockTypeDocument:
		return b.DocSource == nil || (b.DocSource.Data == "" && b.DocSource.URL == "")
	default:
		return true
	}
}

// AllowedInRequest reports whether this block variant may appear in a
// caller-constructed request.
func (b ContentBlock) AllowedInRequest() bool {
	switch b.Type {
	case BlockTypeText, BlockTypeThinking, BlockTypeToolUse,
		BlockTypeToolResult, BlockTypeImage, BlockTypeDocument:
		return true
	default:
		return false
	}
}

// AllowedInResponse reports whether this block variant may appear in a
// provider response or stream.
func (b ContentBlock) AllowedInResponse() bool {
	switch b.Type {
	case BlockTypeText, BlockTypeThinking, BlockTypeToolUse, BlockTypeRedactedThinking:
		return true
	default:
		return false
	}
}

// IsTextBearing reports whether the block carries visible text subject to
// trailing-whitespace rules (text blocks only; thinking text is never
// trimmed).
func (b ContentBlock) IsTextBearing() bool {
	return b.Type == BlockTypeText
}

type wireBlock struct {
	Type string `json:"type"`

	Text      string          `json:"text,omitempty"`
	Thinking  string          `json:"thinking,omitempty"`
	Signature string          `json:"signature,omitempty"`
	Data      string          `json:"data,omitempty"`
	ID        string          `json:"id,omitempty"`
	Name      string          `json:"name,omitempty"`
	Input     json.RawMessage `json:"input,omitempty"`
	ToolUseID string          `json:"tool_use_id,omitempty"`
	Content   *MessageContent `json:"content,omitempty"`
	IsError   bool            `json:"is_error,omitempty"`
	Source    *ImageSource    `json:"source,omitempty"`
}

// MarshalJSON writes the block in its wire form, keeping only the fields that
// belong to the variant.
func (b ContentBlock) MarshalJSON() ([]byte, error) {
	w := wireBlock{Type: b.Type}
	switch b.Type {
	case BlockTypeText:
		// text is not omitempty on the wire: an empty text block still
		// serializes with its text field present.
		return json.Marshal(struct {
			Type string `json:"type"`
			Text string `json:"text"`
		}{b.Type, b.Text})
	case BlockTypeThinking:
		w.Thinking = b.Thinking
		w.Signature = b.Signature
	case BlockTypeRedactedThinking:
		w.Data = b.Data
	case BlockTypeToolUse:
		input := b.Input
		if len(input) == 0 {
			input = json.RawMessage(`{}`)
		}
		return json.Marshal(struct {
			Type  string          `json:"type"`
			ID    string          `json:"id"`
			Name  string          `json:"name"`
			Input json.RawMessage `json:"input"`
		}{b.Type, b.ID, b.Name, input})
	case BlockTypeToolResult:
		w.ToolUseID = b.ToolUseID
		w.Content = b.Content
		w.IsError = b.IsError
	case BlockTypeImage:
		w.Source = b.Source
	case BlockTypeDocument:
		return json.Marshal(struct {
			Type   string          `json:"type"`
			Source *DocumentSource `json:"source"`
			Title  string          `json:"title,omitempty"`
		}{b.Type, b.DocSource, b.Title})
	default:
		return nil, fmt.Errorf("llmbridge: cannot marshal unknown block type %q", b.Type)
	}
	return json.Marshal(w)
}

// UnmarshalJSON decodes a block from its wire form, sniffing the type
// discriminator first.
func (b *ContentBlock) UnmarshalJSON(data []byte) error {
	typ := gjson.GetBytes(data, "type").String()
	if typ == "" {
		return fmt.Errorf("llmbridge: content block missing type discriminator")
	}
	if typ == BlockTypeDocument {
		var w struct {
			Source *DocumentSource `json:"source"`
			Title  string          `json:"title"`
		}
		if err := json.Unmarshal(data, &w); err != nil {
			return err
		}
		*b = ContentBlock{Type: typ, DocSource: w.Source, Title: w.Title}
		return nil
	}
	var w wireBlock
	if err := json.Unmarshal(data, &w); err != nil {
		return err
	}
	switch typ {
	case BlockTypeText:
		*b = ContentBlock{Type: typ, Text: w.Text}
	case BlockTypeThinking:
		*b = ContentBlock{Type: typ, Thinking: w.Thinking, Signature: w.Signature}
	case BlockTypeRedactedThinking:
		*b = ContentBlock{Type: typ, Data: w.Data}
	case BlockTypeToolUse:
		*b = ContentBlock{Type: typ, ID: w.ID, Name: w.Name, Input: w.Input}
	case BlockTypeToolResult:
		*b = ContentBlock{Type: typ, ToolUseID: w.ToolUseID, Content: w.Content, IsError: w.IsError}
	case BlockTypeImage:
		*b = ContentBlock{Type: typ, Source: w.Source}
	default:
		return fmt.Errorf("llmbridge: unknown content block type %q", typ)
	}
	return nil
}
