package llmbridge

import "strings"

// ConversationOpener is the synthetic user text prepended when a conversation
// would otherwise open with an assistant turn.
const ConversationOpener = "Starting the conversation..."

// NormalizeMessages repairs an arbitrary caller-supplied message sequence into
// the strict form vendor APIs require: non-empty, opening with a user turn,
// strictly alternating roles, and, when the final turn is an assistant turn,
// free of trailing whitespace in its visible text.
//
// The function is pure and total: the input slice is never mutated, no input
// fails, and an all-empty input yields an empty (non-nil-safe) result.
func NormalizeMessages(messages []Message) []Message {
	kept := make([]Message, 0, len(messages))

	for _, msg := range messages {
		if msg.Content.IsEmpty() {
			continue
		}
		if len(kept) > 0 && kept[len(kept)-1].Role == msg.Role {
			kept[len(kept)-1] = mergeMessages(kept[len(kept)-1], msg)
			continue
		}
		kept = append(kept, msg)
	}

	if len(kept) > 0 && kept[0].Role == RoleAssistant {
		opener := Message{Role: RoleUser, Content: Text(ConversationOpener)}
		kept = append([]Message{opener}, kept...)
	}

	if len(kept) > 0 && kept[len(kept)-1].Role == RoleAssistant {
		kept[len(kept)-1] = trimTrailingWhitespace(kept[len(kept)-1])
	}

	return kept
}

// mergeMessages folds b into a. Both are known non-empty and share a role.
func mergeMessages(a, b Message) Message {
	switch {
	case a.Content.IsText() && b.Content.IsText():
		return Message{Role: a.Role, Content: Text(a.Content.TextValue() + "\n" + b.Content.TextValue())}

	case !a.Content.IsText() && !b.Content.IsText():
		blocks := filterEmptyBlocks(a.Content.BlockList())
		blocks = append(blocks, filterEmptyBlocks(b.Content.BlockList())...)
		return Message{Role: a.Role, Content: Blocks(blocks...)}

	case !a.Content.IsText(): // Blocks + Text
		blocks := filterEmptyBlocks(a.Content.BlockList())
		blocks = append(blocks, NewTextBlock(b.Content.TextValue()))
		return Message{Role: a.Role, Content: Blocks(blocks...)}

	default: // Text + Blocks
		blocks := make([]ContentBlock, 0, len(b.Content.BlockList())+1)
		blocks = append(blocks, NewTextBlock(a.Content.TextValue()))
		blocks = append(blocks, filterEmptyBlocks(b.Content.BlockList())...)
		return Message{Role: a.Role, Content: Blocks(blocks...)}
	}
}

func filterEmptyBlocks(blocks []ContentBlock) []ContentBlock {
	out := make([]ContentBlock, 0, len(blocks))
	for _, b := range blocks {
		if !b.IsEmpty() {
			out = append(out, b)
		}
	}
	return out
}

// trimTrailingWhitespace trims trailing whitespace from every text-bearing
// position of the message. The message is known non-empty, so trimming cannot
// empty it entirely.
func trimTrailingWhitespace(msg Message) Message {
	if msg.Content.IsText() {
		return Message{Role: msg.Role, Content: Text(strings.TrimRight(msg.Content.TextValue(), " \t\r\n"))}
	}
	src := msg.Content.BlockList()
	blocks := make([]ContentBlock, len(src))
	copy(blocks, src)
	for i, b := range blocks {
		if b.IsTextBearing() {
			b.Text = strings.TrimRight(b.Text, " \t\r\n")
			blocks[i] = b
		}
	}
	return Message{Role: msg.Role, Content: Blocks(blocks...)}
}
