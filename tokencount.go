package llmbridge

import "math"

// ImageDetail selects the image fidelity mode for token accounting.
type ImageDetail string

const (
	ImageDetailAuto ImageDetail = "auto"
	ImageDetailLow  ImageDetail = "low"
	ImageDetailHigh ImageDetail = "high"
)

// Image tile accounting constants, per OpenAI's published vision pricing.
const (
	imageBaseTokens     = 85
	imageTokensPerTile  = 170
	highDetailThreshold = 2048.0
	highDetailShortSide = 768.0
	tileSize            = 512
)

// ImageTokens returns the token cost of one image at the given pixel
// dimensions and detail mode.
//
// Low detail is a flat base cost. High detail scales the image to fit in a
// 2048px square, rescales the shortest side to 768px, and charges per 512px
// tile plus the base. Auto picks low-resolution tiling below the high-detail
// threshold and the high-detail path above it.
func ImageTokens(width, height int, detail ImageDetail) int {
	switch detail {
	case ImageDetailLow:
		return imageBaseTokens
	case ImageDetailHigh:
		return highDetailImageTokens(float64(width), float64(height))
	default: // auto or unset
		if max(width, height) < int(highDetailThreshold) {
			w := (width + tileSize - 1) / tileSize
			h := (height + tileSize - 1) / tileSize
			return imageBaseTokens + imageTokensPerTile*w*h
		}
		return highDetailImageTokens(float64(width), float64(height))
	}
}

func highDetailImageTokens(width, height float64) int {
	shorter, longer := math.Min(width, height), math.Max(width, height)

	if longer > highDetailThreshold {
		shorter *= highDetailThreshold / longer
		longer = highDetailThreshold
	}

	longer *= highDetailShortSide / shorter

	// The shorter side is now exactly 768px, which always spans two tiles,
	// so each column of tiles along the longer side costs 340 tokens.
	tiles := int(math.Ceil(longer / tileSize))
	return imageBaseTokens + 2*imageTokensPerTile*tiles
}

// ImageTokenCounter supplies per-block image dimensions during estimation.
// Blocks for which no dimensions are known cost zero image tokens.
type ImageTokenCounter func(b ContentBlock) (width, height int, detail ImageDetail, ok bool)

// EstimateTokens approximates the prompt token count of a message sequence
// without a tokenizer: text is charged at one token per four bytes (rounded
// up), plus the per-message framing overhead and reply priming the chat
// format adds. Image blocks are charged exactly via ImageTokens when the
// caller supplies dimensions through images (which may be nil).
//
// The estimate is meant for budgeting and pricing previews, not billing.
func EstimateTokens(messages []Message, images ImageTokenCounter) int {
	const (
		tokensPerMessage = 3 // message framing: role + separators
		replyPriming     = 3 // every reply is primed with the assistant header
	)

	total := 0
	for _, msg := range messages {
		total += tokensPerMessage
		if msg.Content.IsText() {
			total += approxTextTokens(msg.Content.TextValue())
			continue
		}
		for _, b := range msg.Content.BlockList() {
			switch b.Type {
			case BlockTypeText:
				total += approxTextTokens(b.Text)
			case BlockTypeThinking:
				total += approxTextTokens(b.Thinking)
			case BlockTypeToolUse:
				total += approxTextTokens(b.Name) + approxTextTokens(string(b.Input))
			case BlockTypeToolResult:
				if b.Content != nil && b.Content.IsText() {
					total += approxTextTokens(b.Content.TextValue())
				}
			case BlockTypeImage:
				if images != nil {
					if w, h, detail, ok := images(b); ok {
						total += ImageTokens(w, h, detail)
					}
				}
			}
		}
	}
	return total + replyPriming
}

func approxTextTokens(s string) int {
	return (len(s) + 3) / 4
}
