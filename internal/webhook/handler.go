// Package webhook provides LINE webhook handling. Events are acknowledged
// immediately and processed asynchronously through the bot processor.
package webhook

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"strings"
	"sync"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/line/line-bot-sdk-go/v8/linebot/messaging_api"
	"github.com/line/line-bot-sdk-go/v8/linebot/webhook"

	"github.com/freshLiver/SuperStudent/internal/bot"
	"github.com/freshLiver/SuperStudent/internal/config"
	"github.com/freshLiver/SuperStudent/internal/ctxutil"
	"github.com/freshLiver/SuperStudent/internal/lineutil"
	"github.com/freshLiver/SuperStudent/internal/logger"
	"github.com/freshLiver/SuperStudent/internal/metrics"
	"github.com/freshLiver/SuperStudent/internal/ratelimit"
)

// Handler receives LINE webhook callbacks and dispatches events to the
// bot processor.
type Handler struct {
	channelSecret string
	client        *messaging_api.MessagingApiAPI
	metrics       *metrics.Metrics
	logger        *logger.Logger
	processor     *bot.Processor
	rateLimiter   *ratelimit.Limiter // global outbound API pacing
	wg            sync.WaitGroup

	webhookTimeout      time.Duration
	maxMessagesPerReply int
	maxEventsPerWebhook int
	minReplyTokenLength int
}

// HandlerConfig holds the dependencies for NewHandler.
type HandlerConfig struct {
	ChannelSecret string
	ChannelToken  string
	BotConfig     *config.BotConfig
	Metrics       *metrics.Metrics
	Logger        *logger.Logger
	Processor     *bot.Processor
}

// NewHandler creates a webhook handler.
func NewHandler(cfg HandlerConfig) (*Handler, error) {
	client, err := messaging_api.NewMessagingApiAPI(cfg.ChannelToken)
	if err != nil {
		return nil, fmt.Errorf("create messaging API client: %w", err)
	}

	return &Handler{
		channelSecret:       cfg.ChannelSecret,
		client:              client,
		metrics:             cfg.Metrics,
		logger:              cfg.Logger,
		processor:           cfg.Processor,
		rateLimiter:         ratelimit.New(cfg.BotConfig.GlobalRateLimitRPS, cfg.BotConfig.GlobalRateLimitRPS),
		webhookTimeout:      cfg.BotConfig.WebhookTimeout,
		maxMessagesPerReply: cfg.BotConfig.MaxMessagesPerReply,
		maxEventsPerWebhook: cfg.BotConfig.MaxEventsPerWebhook,
		minReplyTokenLength: cfg.BotConfig.MinReplyTokenLength,
	}, nil
}

// Handle is the gin handler for the webhook endpoint. LINE expects a fast
// acknowledgment, so the 200 goes out before any event is processed.
func (h *Handler) Handle(c *gin.Context) {
	cb, err := webhook.ParseRequest(h.channelSecret, c.Request)
	if err != nil {
		if errors.Is(err, webhook.ErrInvalidSignature) {
			h.logger.Warn("Invalid webhook signature")
			h.metrics.RecordHTTPError("invalid_signature", "webhook")
			c.Status(http.StatusBadRequest)
		} else {
			h.logger.WithError(err).Error("Failed to parse webhook request")
			c.Status(http.StatusInternalServerError)
		}
		return
	}

	c.Status(http.StatusOK)

	start := time.Now()
	h.metrics.RecordWebhook("batch", "received", 0)

	if len(cb.Events) > h.maxEventsPerWebhook {
		h.logger.WithField("event_count", len(cb.Events)).
			WithField("limit", h.maxEventsPerWebhook).
			Warn("Too many events in webhook batch; truncating")
		cb.Events = cb.Events[:h.maxEventsPerWebhook]
	}

	// The callback struct is tied to the request; copy the events and
	// detach from the request context so processing survives the HTTP
	// response. Tracing values carry over for log correlation.
	events := make([]webhook.EventInterface, len(cb.Events))
	copy(events, cb.Events)
	processingCtx := ctxutil.PreserveTracing(c.Request.Context())

	h.wg.Go(func() {
		defer func() {
			if r := recover(); r != nil {
				h.logger.WithField("panic", r).Error("Panic in async event processing")
			}
		}()

		for _, event := range events {
			h.processEvent(processingCtx, event, start)
		}
	})
}

// eventMeta is the per-event envelope shared by every supported event
// type.
type eventMeta struct {
	id         string
	timestamp  int64
	redelivery *bool
	replyToken string
	source     webhook.SourceInterface
}

func metaOf(event webhook.EventInterface) eventMeta {
	redelivery := func(dc *webhook.DeliveryContext) *bool {
		if dc == nil {
			return nil
		}
		v := dc.IsRedelivery
		return &v
	}

	switch e := event.(type) {
	case webhook.MessageEvent:
		return eventMeta{e.WebhookEventId, e.Timestamp, redelivery(e.DeliveryContext), e.ReplyToken, e.Source}
	case webhook.PostbackEvent:
		return eventMeta{e.WebhookEventId, e.Timestamp, redelivery(e.DeliveryContext), e.ReplyToken, e.Source}
	case webhook.FollowEvent:
		return eventMeta{e.WebhookEventId, e.Timestamp, redelivery(e.DeliveryContext), e.ReplyToken, e.Source}
	case webhook.JoinEvent:
		return eventMeta{e.WebhookEventId, e.Timestamp, redelivery(e.DeliveryContext), e.ReplyToken, e.Source}
	default:
		return eventMeta{}
	}
}

func (m eventMeta) chatID() string {
	if m.source == nil {
		return ""
	}
	return bot.GetChatID(m.source)
}

// processEvent runs one event through the processor and replies.
func (h *Handler) processEvent(ctx context.Context, event webhook.EventInterface, webhookStart time.Time) {
	eventStart := time.Now()
	meta := metaOf(event)

	if meta.id != "" {
		ctx = ctxutil.WithRequestID(ctx, meta.id)
	}
	if chatID := meta.chatID(); chatID != "" {
		ctx = ctxutil.WithChatID(ctx, chatID)
	}

	log := h.logger
	if meta.id != "" {
		log = log.WithRequestID(meta.id)
	}
	if meta.redelivery != nil {
		log = log.WithField("is_redelivery", *meta.redelivery)
	}
	if meta.timestamp > 0 {
		log = log.WithField("event_timestamp_ms", meta.timestamp)
	}

	if h.shouldShowLoading(event) {
		if loadErr := h.showLoadingAnimation(meta.chatID()); loadErr != nil {
			log.WithError(loadErr).Warn("Failed to show loading animation")
		}
	}

	eventCtx, cancel := context.WithTimeout(ctx, h.webhookTimeout)
	defer cancel()

	var messages []messaging_api.MessageInterface
	var eventType string
	var err error
	switch e := event.(type) {
	case webhook.MessageEvent:
		eventType = "message"
		messages, err = h.processor.ProcessMessage(eventCtx, e)
	case webhook.PostbackEvent:
		eventType = "postback"
		messages, err = h.processor.ProcessPostback(eventCtx, e)
	case webhook.FollowEvent:
		eventType = "follow"
		messages, err = h.processor.ProcessFollow(e)
	case webhook.JoinEvent:
		eventType = "join"
		messages, err = h.processor.ProcessJoin(e)
	default:
		log.WithField("event_type", fmt.Sprintf("%T", e)).Debug("Unsupported event type")
		return
	}

	eventDurationMs := time.Since(eventStart).Milliseconds()
	status := "success"
	if err != nil {
		status = "error"
		log.WithError(err).WithField("event_type", eventType).Error("Failed to handle event")
		// Processing failures still answer the user with a generic apology.
		sender := lineutil.GetSender(bot.SenderName)
		messages = []messaging_api.MessageInterface{lineutil.ErrorMessageWithSender(sender)}
	}
	h.metrics.RecordWebhook(eventType, status, float64(eventDurationMs)/1000.0)

	if len(messages) > 0 {
		h.reply(log, meta, eventType, eventStart, messages)
	}

	log.WithField("event_type", eventType).
		WithField("event_duration_ms", eventDurationMs).
		WithField("batch_duration_ms", time.Since(webhookStart).Milliseconds()).
		Info("Event processed")
}

// reply sends messages back through the reply token, honoring the LINE
// per-reply message cap and the global outbound rate limit.
func (h *Handler) reply(log *logger.Logger, meta eventMeta, eventType string, eventStart time.Time, messages []messaging_api.MessageInterface) {
	if len(messages) > h.maxMessagesPerReply {
		log.WithField("message_count", len(messages)).
			WithField("limit", h.maxMessagesPerReply).
			Warn("Message count exceeds limit; truncating")
		messages = messages[:h.maxMessagesPerReply-1]
		msg := lineutil.NewTextMessage("ℹ️ 由於訊息數量限制，部分內容未完整顯示\n\n💡 請使用更具體的關鍵字縮小查詢範圍")
		msg.QuickReply = lineutil.NewQuickReply(lineutil.QuickReplyMainNav())
		messages = append(messages, msg)
	}

	if meta.replyToken == "" {
		log.Debug("Empty reply token, skipping reply")
		return
	}
	if len(meta.replyToken) < h.minReplyTokenLength {
		log.WithField("token_length", len(meta.replyToken)).Debug("Invalid reply token format")
		return
	}

	if !h.rateLimiter.Allow() {
		log.Warn("Global rate limit exceeded; waiting")
		h.metrics.RecordRateLimiterDrop("global")
		waitStart := time.Now()
		h.rateLimiter.WaitSimple()
		h.metrics.RecordRateLimiterWait("global", time.Since(waitStart).Seconds())
	}

	_, err := h.client.ReplyMessage(&messaging_api.ReplyMessageRequest{
		ReplyToken: meta.replyToken,
		Messages:   messages,
	})
	if err == nil {
		return
	}

	switch {
	case strings.Contains(err.Error(), "Invalid reply token"):
		log.WithError(err).Debug("Reply token already used or invalid")
	case strings.Contains(err.Error(), "rate limit"):
		log.WithError(err).Error("Rate limit exceeded")
	default:
		log.WithError(err).WithField("reply_token", meta.replyToken[:8]+"...").Error("Failed to send reply")
	}
	h.metrics.RecordWebhook(eventType, "reply_error", time.Since(eventStart).Seconds())
}

// shouldShowLoading reports whether the typing indicator is worth showing.
// Only events that will produce a reply get one: personal chats always
// answer, group and room chats answer only text messages that @-mention
// the bot.
func (h *Handler) shouldShowLoading(event webhook.EventInterface) bool {
	switch e := event.(type) {
	case webhook.MessageEvent:
		if _, ok := e.Source.(webhook.UserSource); ok {
			return true
		}
		textMsg, ok := e.Message.(webhook.TextMessageContent)
		return ok && bot.IsBotMentioned(textMsg)
	case webhook.FollowEvent, webhook.JoinEvent:
		return true
	default:
		return false
	}
}

// showLoadingAnimation asks LINE to show the typing indicator for the
// maximum 60 seconds, matching the processing timeout.
func (h *Handler) showLoadingAnimation(chatID string) error {
	if chatID == "" {
		return nil
	}

	_, err := h.client.ShowLoadingAnimation(&messaging_api.ShowLoadingAnimationRequest{
		ChatId:         chatID,
		LoadingSeconds: 60,
	})
	if err != nil {
		return fmt.Errorf("show loading animation: %w", err)
	}
	return nil
}

// Shutdown waits for in-flight event processing, or gives up when ctx
// expires.
func (h *Handler) Shutdown(ctx context.Context) error {
	done := make(chan struct{})
	go func() {
		defer close(done)
		h.wg.Wait()
	}()

	select {
	case <-done:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}
