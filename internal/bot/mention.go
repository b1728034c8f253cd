// Package bot provides the core bot logic and message processing.
package bot

import (
	"slices"
	"strings"

	"github.com/line/line-bot-sdk-go/v8/linebot/webhook"
)

// IsBotMentioned reports whether the message @-mentions this bot. The SDK
// flags the bot's own mention with IsSelf on a UserMentionee.
func IsBotMentioned(textMsg webhook.TextMessageContent) bool {
	if textMsg.Mention == nil {
		return false
	}
	for _, mentionee := range textMsg.Mention.Mentionees {
		if user, ok := mentionee.(webhook.UserMentionee); ok && user.IsSelf {
			return true
		}
	}
	return false
}

type mentionSpan struct {
	index  int32
	length int32
}

// removeBotMentions strips every self mention out of text and collapses
// the surrounding whitespace. Mention offsets count characters, not
// bytes, so the cut happens on runes. Spans are removed back to front so
// earlier offsets stay valid.
func removeBotMentions(text string, mention *webhook.Mention) string {
	if mention == nil {
		return text
	}

	var spans []mentionSpan
	for _, mentionee := range mention.Mentionees {
		if user, ok := mentionee.(webhook.UserMentionee); ok && user.IsSelf {
			spans = append(spans, mentionSpan{index: user.Index, length: user.Length})
		}
	}
	if len(spans) == 0 {
		return text
	}

	slices.SortFunc(spans, func(a, b mentionSpan) int {
		return int(b.index - a.index)
	})

	runes := []rune(text)
	for _, span := range spans {
		start := max(int(span.index), 0)
		end := min(int(span.index+span.length), len(runes))
		if start >= end {
			continue
		}
		runes = append(runes[:start], runes[end:]...)
	}

	return strings.Join(strings.Fields(string(runes)), " ")
}
