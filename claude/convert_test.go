package claude

import (
	"encoding/json"
	"testing"

	llmbridge "github.com/llmbridge/llmbridge-go"
	"github.com/llmbridge/llmbridge-go/openai"
)

func TestFromChatRequestBasic(t *testing.T) {
	var req openai.Request
	body := `{"model":"gpt-3.5-turbo","messages":[{"role":"system","content":"You are a helpful assistant."},{"role":"user","content":"Hello!"}]}`
	if err := json.Unmarshal([]byte(body), &req); err != nil {
		t.Fatal(err)
	}

	got := FromChatRequest(req)

	if got.Model != "gpt-3.5-turbo" {
		t.Errorf("model = %s", got.Model)
	}
	if got.System != "You are a helpful assistant." {
		t.Errorf("system = %q", got.System)
	}
	if got.MaxTokens != defaultMaxTokens {
		t.Errorf("max_tokens = %d, want default %d", got.MaxTokens, defaultMaxTokens)
	}
	if len(got.Messages) != 1 || !got.Messages[0].Content.IsText() || got.Messages[0].Content.TextValue() != "Hello!" {
		t.Errorf("messages = %+v", got.Messages)
	}
}

func TestFromChatRequestImageParts(t *testing.T) {
	req := openai.Request{
		Model: "gpt-4o",
		Messages: []openai.Message{
			{
				Role: "user",
				Content: openai.PartsContent(
					openai.ContentPart{Type: "text", Text: "What's in this image?"},
					openai.ContentPart{Type: "image_url", ImageURL: &openai.ImageURL{URL: "data:image/png;base64,iVBORw0"}},
					openai.ContentPart{Type: "image_url", ImageURL: &openai.ImageURL{URL: "https://example.com/cat.png"}},
				),
			},
		},
	}

	got := FromChatRequest(req)

	if len(got.Messages) != 1 {
		t.Fatalf("messages = %+v", got.Messages)
	}
	blocks := got.Messages[0].Content.BlockList()
	if len(blocks) != 2 {
		t.Fatalf("blocks = %+v, want text + one image (http URL skipped)", blocks)
	}
	if blocks[0].Type != llmbridge.BlockTypeText {
		t.Errorf("block 0 = %+v", blocks[0])
	}
	img := blocks[1]
	if img.Type != llmbridge.BlockTypeImage || img.Source.MediaType != "image/png" || img.Source.Data != "iVBORw0" {
		t.Errorf("image block = %+v", img)
	}
}

func TestFromChatRequestToolMessages(t *testing.T) {
	req := openai.Request{
		Model: "gpt-4o",
		Messages: []openai.Message{
			{Role: "user", Content: openai.TextContent("weather?")},
			{
				Role: "assistant",
				ToolCalls: []openai.ToolCall{{
					ID:   "call_1",
					Type: "function",
					Function: openai.FunctionCall{
						Name:      "get_weather",
						Arguments: `{"city":"Oslo"}`,
					},
				}},
			},
			{Role: openai.RoleTool, ToolCallID: "call_1", Content: openai.TextContent("12C")},
		},
	}

	got := FromChatRequest(req)

	if len(got.Messages) != 3 {
		t.Fatalf("messages = %+v", got.Messages)
	}

	assistant := got.Messages[1]
	blocks := assistant.Content.BlockList()
	if len(blocks) != 1 || blocks[0].Type != llmbridge.BlockTypeToolUse {
		t.Fatalf("assistant blocks = %+v", blocks)
	}
	if blocks[0].ID != "call_1" || blocks[0].Name != "get_weather" || string(blocks[0].Input) != `{"city":"Oslo"}` {
		t.Errorf("tool_use block = %+v", blocks[0])
	}

	result := got.Messages[2]
	if result.Role != llmbridge.RoleUser {
		t.Errorf("tool result role = %s, want user", result.Role)
	}
	rb := result.Content.BlockList()
	if len(rb) != 1 || rb[0].Type != llmbridge.BlockTypeToolResult || rb[0].ToolUseID != "call_1" {
		t.Errorf("tool result blocks = %+v", rb)
	}
}

func TestFromChatRequestStopAndLimits(t *testing.T) {
	maxTokens := 300
	req := openai.Request{
		Model:     "gpt-4",
		MaxTokens: &maxTokens,
		Stop:      &openai.Stop{Sequences: []string{"END", "STOP"}},
		Messages: []openai.Message{
			{Role: "user", Content: openai.TextContent("hi")},
		},
	}

	got := FromChatRequest(req)

	if got.MaxTokens != 300 {
		t.Errorf("max_tokens = %d", got.MaxTokens)
	}
	if len(got.StopSequences) != 2 || got.StopSequences[0] != "END" {
		t.Errorf("stop sequences = %v", got.StopSequences)
	}
}

func TestFromChatRequestNormalizes(t *testing.T) {
	req := openai.Request{
		Model: "gpt-4o",
		Messages: []openai.Message{
			{Role: "assistant", Content: openai.TextContent("I begin.")},
		},
	}

	got := FromChatRequest(req)

	if len(got.Messages) != 2 {
		t.Fatalf("messages = %+v", got.Messages)
	}
	if got.Messages[0].Role != llmbridge.RoleUser || got.Messages[0].Content.TextValue() != llmbridge.ConversationOpener {
		t.Errorf("first message = %+v, want synthetic opener", got.Messages[0])
	}
}

func TestToolFromDefinition(t *testing.T) {
	def, err := llmbridge.NewFunctionTool("lookup", "Look something up", struct {
		Key string `json:"key"`
	}{})
	if err != nil {
		t.Fatal(err)
	}

	tool := ToolFromDefinition(*def)
	if tool.Name != "lookup" || tool.Description != "Look something up" {
		t.Errorf("tool = %+v", tool)
	}
	if tool.InputSchema["type"] != "object" {
		t.Errorf("input schema = %v", tool.InputSchema)
	}
}
