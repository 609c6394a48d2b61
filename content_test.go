package llmbridge

import (
	"encoding/json"
	"reflect"
	"testing"
)

func TestMessageContentUnmarshal(t *testing.T) {
	tests := []struct {
		name    string
		input   string
		want    MessageContent
		wantErr bool
	}{
		{
			name:  "string form",
			input: `"hello"`,
			want:  Text("hello"),
		},
		{
			name:  "array form",
			input: `[{"type":"text","text":"hi"}]`,
			want:  Blocks(NewTextBlock("hi")),
		},
		{
			name:  "empty array",
			input: `[]`,
			want:  Blocks(),
		},
		{
			name:    "object rejected",
			input:   `{"text":"hi"}`,
			wantErr: true,
		},
		{
			name:    "number rejected",
			input:   `42`,
			wantErr: true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var got MessageContent
			err := json.Unmarshal([]byte(tt.input), &got)
			if (err != nil) != tt.wantErr {
				t.Fatalf("Unmarshal error = %v, wantErr %v", err, tt.wantErr)
			}
			if err != nil {
				return
			}
			if !reflect.DeepEqual(got, tt.want) {
				t.Errorf("Unmarshal = %+v, want %+v", got, tt.want)
			}
		})
	}
}

func TestMessageContentMarshal(t *testing.T) {
	tests := []struct {
		name    string
		content MessageContent
		want    string
	}{
		{
			name:    "string form",
			content: Text("hello"),
			want:    `"hello"`,
		},
		{
			name:    "block form",
			content: Blocks(NewTextBlock("hi")),
			want:    `[{"type":"text","text":"hi"}]`,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := json.Marshal(tt.content)
			if err != nil {
				t.Fatalf("Marshal error = %v", err)
			}
			if string(got) != tt.want {
				t.Errorf("Marshal = %s, want %s", got, tt.want)
			}
		})
	}
}

func TestContentBlockRoundTrip(t *testing.T) {
	blocks := []ContentBlock{
		NewTextBlock("hello"),
		NewThinkingBlock("pondering", "sig_abc"),
		NewRedactedThinkingBlock("opaque-bytes"),
		NewToolUseBlock("toolu_1", "search", json.RawMessage(`{"q":"x"}`)),
		NewToolResultBlock("toolu_1", Text("result text"), false),
		NewImageBlock("image/png", "aGVsbG8="),
	}

	for _, b := range blocks {
		t.Run(b.Type, func(t *testing.T) {
			data, err := json.Marshal(b)
			if err != nil {
				t.Fatalf("Marshal error = %v", err)
			}
			var got ContentBlock
			if err := json.Unmarshal(data, &got); err != nil {
				t.Fatalf("Unmarshal error = %v", err)
			}
			if got.Type != b.Type {
				t.Errorf("round trip changed type: %s -> %s", b.Type, got.Type)
			}
			if b.Type == BlockTypeToolUse && string(got.Input) != string(b.Input) {
				t.Errorf("round trip changed input: %s -> %s", b.Input, got.Input)
			}
		})
	}
}

func TestContentBlockUnmarshalUnknownType(t *testing.T) {
	var b ContentBlock
	if err := json.Unmarshal([]byte(`{"type":"bogus"}`), &b); err == nil {
		t.Error("expected error for unknown block type")
	}
	if err := json.Unmarshal([]byte(`{"text":"no type"}`), &b); err == nil {
		t.Error("expected error for missing type discriminator")
	}
}

func TestContentBlockIsEmpty(t *testing.T) {
	tests := []struct {
		name  string
		block ContentBlock
		want  bool
	}{
		{"blank text", NewTextBlock("   "), true},
		{"real text", NewTextBlock("x"), false},
		{"blank thinking", NewThinkingBlock(" ", "sig"), true},
		{"real thinking", NewThinkingBlock("t", ""), false},
		{"redacted with data", NewRedactedThinkingBlock("d"), false},
		{"redacted without data", NewRedactedThinkingBlock(""), true},
		{"tool use missing id", NewToolUseBlock("", "n", json.RawMessage(`{}`)), true},
		{"tool use non-object input", NewToolUseBlock("id", "n", json.RawMessage(`[1]`)), true},
		{"tool use valid", NewToolUseBlock("id", "n", json.RawMessage(`{"a":1}`)), false},
		{"tool result empty content", NewToolResultBlock("id", Text("  "), false), true},
		{"tool result valid", NewToolResultBlock("id", Text("ok"), true), false},
		{"image missing data", ContentBlock{Type: BlockTypeImage, Source: &ImageSource{Type: "base64", MediaType: "image/png"}}, true},
		{"image valid", NewImageBlock("image/png", "aGVsbG8="), false},
		{"unknown type", ContentBlock{Type: "mystery"}, true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := tt.block.IsEmpty(); got != tt.want {
				t.Errorf("IsEmpty() = %v, want %v", got, tt.want)
			}
		})
	}
}

func TestContentBlockCapabilities(t *testing.T) {
	reqOnly := []string{BlockTypeToolResult, BlockTypeImage, BlockTypeDocument}
	resOnly := []string{BlockTypeRedactedThinking}
	both := []string{BlockTypeText, BlockTypeThinking, BlockTypeToolUse}

	for _, typ := range reqOnly {
		b := ContentBlock{Type: typ}
		if !b.AllowedInRequest() || b.AllowedInResponse() {
			t.Errorf("%s: want request-only", typ)
		}
	}
	for _, typ := range resOnly {
		b := ContentBlock{Type: typ}
		if b.AllowedInRequest() || !b.AllowedInResponse() {
			t.Errorf("%s: want response-only", typ)
		}
	}
	for _, typ := range both {
		b := ContentBlock{Type: typ}
		if !b.AllowedInRequest() || !b.AllowedInResponse() {
			t.Errorf("%s: want allowed in both", typ)
		}
	}
}
