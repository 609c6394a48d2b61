package claude

import (
	"encoding/json"
	"strings"

	llmbridge "github.com/llmbridge/llmbridge-go"
	"github.com/llmbridge/llmbridge-go/openai"
)

// defaultMaxTokens is used when the source request leaves max_tokens unset;
// the dialect requires it.
const defaultMaxTokens = 4000

// FromChatRequest converts a Chat Completions request into a Messages API
// request. System messages move into the top-level system field, image parts
// carry only base64 data URLs (http URLs have no dialect position and are
// skipped), assistant tool_calls become tool_use blocks, and tool-role
// messages become tool_result blocks on a user turn. The resulting message
// sequence is normalized before being placed in the request.
func FromChatRequest(req openai.Request) Request {
	out := Request{
		Model:       req.Model,
		MaxTokens:   defaultMaxTokens,
		Temperature: req.Temperature,
		TopP:        req.TopP,
		Stream:      req.Stream,
	}
	if req.MaxTokens != nil {
		out.MaxTokens = *req.MaxTokens
	}
	if req.Stop != nil {
		out.StopSequences = req.Stop.Sequences
	}
	for _, def := range req.Tools {
		out.Tools = append(out.Tools, ToolFromDefinition(def))
	}

	var system []string
	var messages []llmbridge.Message
	for _, msg := range req.Messages {
		switch msg.Role {
		case openai.RoleSystem:
			system = append(system, flattenText(msg.Content))
		case string(llmbridge.RoleUser):
			messages = append(messages, llmbridge.Message{
				Role:    llmbridge.RoleUser,
				Content: convertUserContent(msg.Content),
			})
		case string(llmbridge.RoleAssistant):
			messages = append(messages, convertAssistant(msg))
		case openai.RoleTool:
			messages = append(messages, llmbridge.Message{
				Role: llmbridge.RoleUser,
				Content: llmbridge.Blocks(llmbridge.NewToolResultBlock(
					msg.ToolCallID, llmbridge.Text(flattenText(msg.Content)), false,
				)),
			})
		}
	}

	out.System = strings.Join(system, "\n")
	out.Messages = llmbridge.NormalizeMessages(messages)
	return out
}

// flattenText extracts the visible text of either content form.
func flattenText(c openai.Content) string {
	if c.IsText() {
		return c.TextValue()
	}
	var parts []string
	for _, p := range c.Parts() {
		if p.Type == "text" && p.Text != "" {
			parts = append(parts, p.Text)
		}
	}
	return strings.Join(parts, "\n")
}

func convertUserContent(c openai.Content) llmbridge.MessageContent {
	if c.IsText() {
		return llmbridge.Text(c.TextValue())
	}
	var blocks []llmbridge.ContentBlock
	for _, p := range c.Parts() {
		switch p.Type {
		case "text":
			blocks = append(blocks, llmbridge.NewTextBlock(p.Text))
		case "image_url":
			if p.ImageURL == nil || strings.HasPrefix(p.ImageURL.URL, "http") {
				continue
			}
			if mime, data, ok := parseDataURL(p.ImageURL.URL); ok {
				blocks = append(blocks, llmbridge.NewImageBlock(mime, data))
			}
		}
	}
	return llmbridge.Blocks(blocks...)
}

func convertAssistant(msg openai.Message) llmbridge.Message {
	if len(msg.ToolCalls) == 0 {
		return llmbridge.Message{
			Role:    llmbridge.RoleAssistant,
			Content: llmbridge.Text(flattenText(msg.Content)),
		}
	}
	var blocks []llmbridge.ContentBlock
	if text := flattenText(msg.Content); text != "" {
		blocks = append(blocks, llmbridge.NewTextBlock(text))
	}
	for _, tc := range msg.ToolCalls {
		blocks = append(blocks, llmbridge.NewToolUseBlock(
			tc.ID, tc.Function.Name, json.RawMessage(tc.Function.Arguments),
		))
	}
	return llmbridge.Message{Role: llmbridge.RoleAssistant, Content: llmbridge.Blocks(blocks...)}
}

// parseDataURL splits a base64 image data URL into media type and payload.
// Only the image types the dialect accepts are recognized.
func parseDataURL(s string) (mime, data string, ok bool) {
	header, payload, found := strings.Cut(s, ",")
	if !found {
		return "", "", false
	}
	switch header {
	case "data:image/jpeg;base64":
		mime = "image/jpeg"
	case "data:image/png;base64":
		mime = "image/png"
	case "data:image/gif;base64":
		mime = "image/gif"
	case "data:image/webp;base64":
		mime = "image/webp"
	default:
		return "", "", false
	}
	return mime, payload, true
}
