package bot

import (
	"github.com/line/line-bot-sdk-go/v8/linebot/messaging_api"

	"github.com/freshLiver/SuperStudent/internal/lineutil"
	"github.com/freshLiver/SuperStudent/internal/nlu"
)

// ResponseKind is the outbound payload shape.
type ResponseKind int

// Response kinds mirror the three reply shapes the router produces.
const (
	ResponseInform ResponseKind = iota
	ResponseNews
	ResponseActivity
)

// Response is the routed reply before LINE serialization. Text is always
// set; URL only for news, Location only for activities.
type Response struct {
	Kind     ResponseKind
	Text     string
	URL      string
	Location string
	Language nlu.Language
}

// NewInformResponse builds a plain informational reply.
func NewInformResponse(text string, lang nlu.Language) Response {
	return Response{Kind: ResponseInform, Text: text, Language: lang}
}

// NewNewsResponse builds a news reply carrying the article URL.
func NewNewsResponse(snippet, url string, lang nlu.Language) Response {
	return Response{Kind: ResponseNews, Text: snippet, URL: url, Language: lang}
}

// NewActivityResponse builds an activity reply with its primary location.
func NewActivityResponse(text, location string, lang nlu.Language) Response {
	return Response{Kind: ResponseActivity, Text: text, Location: location, Language: lang}
}

// SenderName is the display name attached to every outbound message.
const SenderName = "小幫手"

// Messages renders the response as LINE messages. The last message carries
// the standard navigation quick reply.
func (r Response) Messages() []messaging_api.MessageInterface {
	sender := lineutil.GetSender(SenderName)

	var messages []messaging_api.MessageInterface
	switch r.Kind {
	case ResponseNews:
		messages = append(messages, lineutil.NewTextMessageWithConsistentSender(r.Text, sender))
		if r.URL != "" {
			link := lineutil.NewButtonsTemplate(
				"📰 "+r.Text,
				"📰 相關報導",
				"點選下方按鈕閱讀完整報導",
				[]lineutil.Action{lineutil.NewURIAction("🔗 閱讀全文", r.URL)},
			)
			messages = append(messages, lineutil.SetSender(link, sender))
		}
	case ResponseActivity:
		text := r.Text
		if r.Location != "" {
			text += "\n📍 " + r.Location
		}
		messages = append(messages, lineutil.NewTextMessageWithConsistentSender(text, sender))
	default:
		messages = append(messages, lineutil.NewTextMessageWithConsistentSender(r.Text, sender))
	}

	lineutil.AddQuickReplyToMessages(messages, lineutil.QuickReplyMainNav()...)
	return messages
}
