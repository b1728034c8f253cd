package lineutil

import (
	"github.com/line/line-bot-sdk-go/v8/linebot/messaging_api"
)

// GetSender creates a sender used for all messages in a single reply session.
// Keeping one sender per reply gives every message the same display name.
//
// Usage:
//
//	sender := lineutil.GetSender("小幫手")
//	msg1 := &messaging_api.TextMessage{Text: "訊息1", Sender: sender}
//	msg2 := &messaging_api.TextMessage{Text: "訊息2", Sender: sender}
func GetSender(name string) *messaging_api.Sender {
	return &messaging_api.Sender{
		Name: name,
	}
}

// NewTextMessageWithConsistentSender creates a text message using a pre-created sender.
// This is preferred when multiple messages need the same sender.
//
// LINE API limits: max 5000 characters per text message
func NewTextMessageWithConsistentSender(text string, sender *messaging_api.Sender) *messaging_api.TextMessage {
	// Validate and truncate if necessary
	if len([]rune(text)) > MaxTextMessageLength {
		text = TruncateRunes(text, MaxTextMessageLength-3) + "..."
	}

	return &messaging_api.TextMessage{
		Text:   text,
		Sender: sender,
	}
}

// ErrorMessageWithSender creates a user-friendly error message with a pre-created sender.
func ErrorMessageWithSender(sender *messaging_api.Sender) messaging_api.MessageInterface {
	return NewTextMessageWithConsistentSender("❌ 系統暫時無法處理您的請求\n\n請稍後再試，或聯絡管理員協助。", sender)
}
