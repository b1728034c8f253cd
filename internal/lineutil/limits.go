package lineutil

// Messaging API limits, counted in runes.
// https://developers.line.biz/en/reference/messaging-api/
const (
	MaxTextMessageLength = 5000 // text message content

	MaxAltTextLength       = 400 // template alt text, shown in notifications
	MaxTemplateTitleLength = 40  // buttons template title
	MaxTemplateTextLength  = 160 // buttons template text without image
	MaxTemplateActionCount = 4   // actions per template

	MaxQuickReplyItemCount = 13 // chips per quick reply row
)
