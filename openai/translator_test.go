package openai

import (
	"errors"
	"testing"

	llmbridge "github.com/llmbridge/llmbridge-go"
)

func feed(t *testing.T, tr *Translator, payloads []string) {
	t.Helper()
	for _, p := range payloads {
		if _, _, err := tr.ConsumeJSON([]byte(p)); err != nil {
			t.Fatalf("consume %s: %v", p, err)
		}
	}
}

func TestTranslatorTextStream(t *testing.T) {
	tr := NewTranslator("")

	chunk, _, err := tr.ConsumeJSON([]byte(`{"id":"chatcmpl-1","object":"chat.completion.chunk","created":1708612360,"model":"gpt-4o","choices":[{"index":0,"delta":{"role":"assistant","content":""},"finish_reason":null}]}`))
	if err != nil {
		t.Fatal(err)
	}
	if chunk.Role != llmbridge.RoleAssistant {
		t.Errorf("role chunk = %+v", chunk)
	}

	feed(t, tr, []string{
		`{"id":"chatcmpl-1","object":"chat.completion.chunk","created":1708612360,"model":"gpt-4o","choices":[{"index":0,"delta":{"content":"Hel"}}]}`,
		`{"id":"chatcmpl-1","object":"chat.completion.chunk","created":1708612360,"model":"gpt-4o","choices":[{"index":0,"delta":{"content":"lo"}}]}`,
	})

	chunk, _, err = tr.ConsumeJSON([]byte(`{"id":"chatcmpl-1","object":"chat.completion.chunk","created":1708612360,"model":"gpt-4o","choices":[{"index":0,"delta":{},"finish_reason":"stop"}],"usage":{"prompt_tokens":9,"completion_tokens":2,"total_tokens":11}}`))
	if err != nil {
		t.Fatal(err)
	}
	if chunk.FinishReason == nil || *chunk.FinishReason != llmbridge.FinishStop {
		t.Errorf("finish chunk = %+v", chunk)
	}

	if _, done, err := ParseChunk([]byte("[DONE]")); err != nil || !done {
		t.Errorf("ParseChunk([DONE]) = done=%v err=%v", done, err)
	}

	res, err := tr.Finalize()
	if err != nil {
		t.Fatal(err)
	}
	if res.ID != "chatcmpl-1" || res.Model != "gpt-4o" {
		t.Errorf("identity = %s/%s", res.ID, res.Model)
	}
	if res.TextContent() != "Hello" {
		t.Errorf("text = %q", res.TextContent())
	}
	if res.Usage.PromptTokens != 9 || res.Usage.CompletionTokens != 2 {
		t.Errorf("usage = %+v", res.Usage)
	}
	if res.FinishReason != llmbridge.FinishStop {
		t.Errorf("finish = %s", res.FinishReason)
	}
}

func TestTranslatorSequentialToolCalls(t *testing.T) {
	tr := NewTranslator("gpt-4o")

	feed(t, tr, []string{
		`{"id":"chatcmpl-2","object":"chat.completion.chunk","created":1,"model":"gpt-4o","choices":[{"index":0,"delta":{"tool_calls":[{"index":0,"id":"call_a","type":"function","function":{"name":"first","arguments":""}}]}}]}`,
		`{"id":"chatcmpl-2","object":"chat.completion.chunk","created":1,"model":"gpt-4o","choices":[{"index":0,"delta":{"tool_calls":[{"index":0,"function":{"arguments":"{\"a\":"}}]}}]}`,
		`{"id":"chatcmpl-2","object":"chat.completion.chunk","created":1,"model":"gpt-4o","choices":[{"index":0,"delta":{"tool_calls":[{"index":0,"function":{"arguments":"1}"}}]}}]}`,
	})

	// Opening tool index 1 closes and surfaces index 0 immediately.
	_, call, err := tr.ConsumeJSON([]byte(`{"id":"chatcmpl-2","object":"chat.completion.chunk","created":1,"model":"gpt-4o","choices":[{"index":0,"delta":{"tool_calls":[{"index":1,"id":"call_b","type":"function","function":{"name":"second","arguments":"{}"}}]}}]}`))
	if err != nil {
		t.Fatal(err)
	}
	if call == nil || call.ID != "call_a" || call.Name != "first" || string(call.Input) != `{"a":1}` {
		t.Errorf("surfaced call = %+v, want completed call_a", call)
	}

	res, err := tr.Finalize()
	if err != nil {
		t.Fatal(err)
	}
	calls := res.ToolCalls()
	if len(calls) != 2 {
		t.Fatalf("finalized calls = %+v", calls)
	}
	if calls[1].ID != "call_b" || string(calls[1].Input) != `{}` {
		t.Errorf("second call = %+v", calls[1])
	}
}

func TestTranslatorDoubleIndexAdvance(t *testing.T) {
	tr := NewTranslator("gpt-4o")

	feed(t, tr, []string{
		`{"id":"chatcmpl-3","object":"chat.completion.chunk","created":1,"model":"gpt-4o","choices":[{"index":0,"delta":{"tool_calls":[{"index":0,"id":"call_a","type":"function","function":{"name":"first","arguments":"{}"}}]}}]}`,
	})

	// One chunk advancing the tool index twice closes two calls; the first
	// is surfaced, the second only appears in the finalized response.
	_, call, err := tr.ConsumeJSON([]byte(`{"id":"chatcmpl-3","object":"chat.completion.chunk","created":1,"model":"gpt-4o","choices":[{"index":0,"delta":{"tool_calls":[{"index":1,"id":"call_b","type":"function","function":{"name":"second","arguments":"{}"}},{"index":2,"id":"call_c","type":"function","function":{"name":"third","arguments":"{}"}}]}}]}`))
	if err != nil {
		t.Fatal(err)
	}
	if call == nil || call.ID != "call_a" {
		t.Errorf("surfaced call = %+v, want call_a", call)
	}

	res, err := tr.Finalize()
	if err != nil {
		t.Fatal(err)
	}
	calls := res.ToolCalls()
	if len(calls) != 3 {
		t.Fatalf("finalized calls = %+v, want call_a through call_c", calls)
	}
	if calls[1].ID != "call_b" || calls[2].ID != "call_c" {
		t.Errorf("call order = %s, %s, %s", calls[0].ID, calls[1].ID, calls[2].ID)
	}
}

func TestTranslatorMalformedToolArguments(t *testing.T) {
	tr := NewTranslator("")

	feed(t, tr, []string{
		`{"id":"c","object":"chat.completion.chunk","created":1,"model":"m","choices":[{"index":0,"delta":{"tool_calls":[{"index":0,"id":"call_x","type":"function","function":{"name":"broken","arguments":"{\"a\": nope"}}]}}]}`,
	})

	res, err := tr.Finalize()
	var argErr *llmbridge.ToolArgumentError
	if !errors.As(err, &argErr) {
		t.Fatalf("Finalize() error = %v, want *ToolArgumentError", err)
	}
	if argErr.ID != "call_x" || argErr.Raw != `{"a": nope` {
		t.Errorf("argErr = %+v", argErr)
	}
	if argErr.Err == nil {
		t.Error("argErr.Err = nil, want the underlying parse error")
	}
	if len(res.ToolCalls()) != 0 {
		t.Errorf("dropped call leaked into content: %+v", res.Content)
	}
	if dropped := tr.DroppedToolCalls(); len(dropped) != 1 {
		t.Errorf("DroppedToolCalls() = %+v", dropped)
	}
}

func TestTranslatorReasoningDeltas(t *testing.T) {
	tr := NewTranslator("")

	chunk, _, err := tr.ConsumeJSON([]byte(`{"id":"c","object":"chat.completion.chunk","created":1,"model":"m","choices":[{"index":0,"delta":{"reasoning":"thinking... "}}]}`))
	if err != nil {
		t.Fatal(err)
	}
	if chunk.Reasoning != "thinking... " || chunk.Text != "" {
		t.Errorf("reasoning chunk = %+v", chunk)
	}

	feed(t, tr, []string{
		`{"id":"c","object":"chat.completion.chunk","created":1,"model":"m","choices":[{"index":0,"delta":{"reasoning":"done"}}]}`,
		`{"id":"c","object":"chat.completion.chunk","created":1,"model":"m","choices":[{"index":0,"delta":{"content":"answer"}}]}`,
	})

	res, err := tr.Finalize()
	if err != nil {
		t.Fatal(err)
	}
	if len(res.Content) != 2 {
		t.Fatalf("content = %+v", res.Content)
	}
	if res.Content[1].Type != llmbridge.BlockTypeThinking || res.Content[1].Thinking != "thinking... done" {
		t.Errorf("thinking block = %+v", res.Content[1])
	}
}

func TestTranslatorFinalizeOnce(t *testing.T) {
	tr := NewTranslator("")
	if _, err := tr.Finalize(); err != nil {
		t.Fatalf("first Finalize() error = %v", err)
	}
	if _, err := tr.Finalize(); !errors.Is(err, llmbridge.ErrAlreadyFinalized) {
		t.Errorf("second Finalize() error = %v", err)
	}
	if _, _, err := tr.Consume(ChunkResponse{}); !errors.Is(err, llmbridge.ErrAlreadyFinalized) {
		t.Errorf("Consume after Finalize error = %v", err)
	}
}

func TestParseChunkMalformed(t *testing.T) {
	_, _, err := ParseChunk([]byte(`{"id": broken`))
	if !errors.Is(err, llmbridge.ErrDecode) {
		t.Errorf("error = %v, want ErrDecode", err)
	}
}

func TestMapFinishReasonRoundTrip(t *testing.T) {
	wire := []string{FinishReasonStop, FinishReasonLength, FinishReasonToolCalls, FinishReasonContentFilter}
	for _, w := range wire {
		if got := FinishReasonString(MapFinishReason(w)); got != w {
			t.Errorf("round trip %s -> %s", w, got)
		}
	}
}
