// Package lineutil builds the LINE messages, templates, and quick replies
// this bot sends, enforcing the Messaging API limits on the way out.
package lineutil

import (
	"github.com/line/line-bot-sdk-go/v8/linebot/messaging_api"
)

// QuickReplyItem is one chip in a quick reply row.
type QuickReplyItem struct {
	ImageURL string
	Action   messaging_api.ActionInterface
}

// Action aliases the SDK action interface.
type Action = messaging_api.ActionInterface

// TruncateRunes truncates s to at most n runes.
// Byte-based truncation would split multi-byte characters.
func TruncateRunes(s string, n int) string {
	runes := []rune(s)
	if len(runes) <= n {
		return s
	}
	return string(runes[:n])
}

// NewTextMessage creates a text message, truncating past the 5000 rune API
// limit with an ellipsis.
func NewTextMessage(text string) *messaging_api.TextMessage {
	if len([]rune(text)) > MaxTextMessageLength {
		text = TruncateRunes(text, MaxTextMessageLength-3) + "..."
	}

	return &messaging_api.TextMessage{
		Text: text,
	}
}

// NewButtonsTemplate creates a buttons template. Title, text, and altText
// are truncated to their API limits; actions are capped at four.
func NewButtonsTemplate(altText, title, text string, actions []Action) messaging_api.MessageInterface {
	if len(actions) > MaxTemplateActionCount {
		actions = actions[:MaxTemplateActionCount]
	}
	if len([]rune(text)) > MaxTemplateTextLength {
		text = TruncateRunes(text, MaxTemplateTextLength-3) + "..."
	}
	if len([]rune(title)) > MaxTemplateTitleLength {
		title = TruncateRunes(title, MaxTemplateTitleLength-3) + "..."
	}
	if len([]rune(altText)) > MaxAltTextLength {
		altText = TruncateRunes(altText, MaxAltTextLength-3) + "..."
	}

	template := &messaging_api.ButtonsTemplate{
		Text:    text,
		Actions: actions,
	}
	if title != "" {
		template.Title = title
	}

	return &messaging_api.TemplateMessage{
		AltText:  altText,
		Template: template,
	}
}

// NewQuickReply builds a quick reply row, capped at the 13 item API limit.
func NewQuickReply(items []QuickReplyItem) *messaging_api.QuickReply {
	if len(items) > MaxQuickReplyItemCount {
		items = items[:MaxQuickReplyItemCount]
	}

	quickReplyItems := make([]messaging_api.QuickReplyItem, len(items))

	for i, item := range items {
		qrItem := messaging_api.QuickReplyItem{
			Action: item.Action,
		}

		if item.ImageURL != "" {
			qrItem.ImageUrl = item.ImageURL
		}

		quickReplyItems[i] = qrItem
	}

	return &messaging_api.QuickReply{
		Items: quickReplyItems,
	}
}

// NewMessageAction creates an action that sends text on tap.
func NewMessageAction(label, text string) Action {
	return &messaging_api.MessageAction{
		Label: label,
		Text:  text,
	}
}

// NewURIAction creates an action that opens a URL on tap.
func NewURIAction(label, uri string) Action {
	return &messaging_api.UriAction{
		Label: label,
		Uri:   uri,
	}
}

// SetSender attaches the sender identity to a message. Types without a
// sender field pass through unchanged.
func SetSender(msg messaging_api.MessageInterface, sender *messaging_api.Sender) messaging_api.MessageInterface {
	if sender == nil {
		return msg
	}

	switch m := msg.(type) {
	case *messaging_api.TextMessage:
		m.Sender = sender
	case *messaging_api.TemplateMessage:
		m.Sender = sender
	}

	return msg
}

// QuickReplyHelpAction returns a "使用說明" quick reply item
func QuickReplyHelpAction() QuickReplyItem {
	return QuickReplyItem{Action: NewMessageAction("📖 使用說明", "使用說明")}
}

// QuickReplyNewsAction returns a quick reply item that searches today's news
func QuickReplyNewsAction() QuickReplyItem {
	return QuickReplyItem{Action: NewMessageAction("📰 今日新聞", "我想看今天的新聞")}
}

// QuickReplyActivityAction returns a quick reply item that lists this week's activities
func QuickReplyActivityAction() QuickReplyItem {
	return QuickReplyItem{Action: NewMessageAction("📅 本週活動", "這禮拜有什麼活動")}
}

// QuickReplyRetryAction creates a retry quick reply item with custom text
func QuickReplyRetryAction(retryText string) QuickReplyItem {
	return QuickReplyItem{Action: NewMessageAction("🔄 重試", retryText)}
}

// QuickReplyMainNav returns the standard navigation quick reply items.
func QuickReplyMainNav() []QuickReplyItem {
	return []QuickReplyItem{
		QuickReplyNewsAction(),
		QuickReplyActivityAction(),
		QuickReplyHelpAction(),
	}
}

// AddQuickReplyToMessages attaches quick reply items to the last message in
// the slice. Empty slices and quick-reply-less message types are a no-op.
func AddQuickReplyToMessages(messages []messaging_api.MessageInterface, items ...QuickReplyItem) {
	if len(messages) == 0 || len(items) == 0 {
		return
	}
	lastMsg := messages[len(messages)-1]
	qr := NewQuickReply(items)
	switch m := lastMsg.(type) {
	case *messaging_api.TextMessage:
		m.QuickReply = qr
	case *messaging_api.TemplateMessage:
		m.QuickReply = qr
	}
}
