// Package config provides LINE platform limit constants.
// Reference: https://developers.line.biz/en/reference/messaging-api/
package config

const (
	// LINEMaxMessagesPerReply is the maximum number of message objects per reply.
	LINEMaxMessagesPerReply = 5

	// LINEMaxTextMessageLength is the maximum length of an incoming text message.
	LINEMaxTextMessageLength = 20000

	// LINEMaxPostbackDataLength is the maximum postback action data length.
	LINEMaxPostbackDataLength = 300
)
