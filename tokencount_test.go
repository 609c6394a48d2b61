package llmbridge

import "testing"

func TestImageTokens(t *testing.T) {
	// Expected values come from OpenAI's published vision pricing examples.
	tests := []struct {
		name   string
		width  int
		height int
		detail ImageDetail
		want   int
	}{
		{"512 auto", 512, 512, ImageDetailAuto, 255},
		{"512 unset", 512, 512, "", 255},
		{"512 low", 512, 512, ImageDetailLow, 85},
		{"4096x8192 low", 4096, 8192, ImageDetailLow, 85},
		{"1024 high", 1024, 1024, ImageDetailHigh, 765},
		{"2048x4096 high", 2048, 4096, ImageDetailHigh, 1105},
		{"150 auto", 150, 150, ImageDetailAuto, 255},
		{"1024 auto", 1024, 1024, ImageDetailAuto, 765},
		{"1000x500 auto", 1000, 500, ImageDetailAuto, 425},
		{"2048x1024 auto", 2048, 1024, ImageDetailAuto, 1105},
		{"4096x5801 auto", 4096, 5801, ImageDetailAuto, 1105},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := ImageTokens(tt.width, tt.height, tt.detail); got != tt.want {
				t.Errorf("ImageTokens(%d, %d, %q) = %d, want %d",
					tt.width, tt.height, tt.detail, got, tt.want)
			}
		})
	}
}

func TestEstimateTokens(t *testing.T) {
	messages := []Message{
		{Role: RoleUser, Content: Text("hi, how are you")}, // 15 bytes -> 4 tokens
	}

	// 3 framing + 4 text + 3 priming
	if got, want := EstimateTokens(messages, nil), 10; got != want {
		t.Errorf("EstimateTokens() = %d, want %d", got, want)
	}
}

func TestEstimateTokensWithImages(t *testing.T) {
	messages := []Message{
		{Role: RoleUser, Content: Blocks(
			NewTextBlock("what"), // 4 bytes -> 1 token
			NewImageBlock("image/png", "aGVsbG8="),
		)},
	}

	counter := func(b ContentBlock) (int, int, ImageDetail, bool) {
		return 512, 512, ImageDetailLow, true
	}

	// 3 framing + 1 text + 85 image + 3 priming
	if got, want := EstimateTokens(messages, counter), 92; got != want {
		t.Errorf("EstimateTokens() = %d, want %d", got, want)
	}

	// Without dimensions the image costs nothing.
	if got, want := EstimateTokens(messages, nil), 7; got != want {
		t.Errorf("EstimateTokens(no counter) = %d, want %d", got, want)
	}
}
