// Package bot provides the core bot logic and message processing.
package bot

import (
	"context"
	"strings"
	"time"

	"github.com/line/line-bot-sdk-go/v8/linebot/messaging_api"
	"github.com/line/line-bot-sdk-go/v8/linebot/webhook"

	"github.com/freshLiver/SuperStudent/internal/config"
	apperrors "github.com/freshLiver/SuperStudent/internal/errors"
	"github.com/freshLiver/SuperStudent/internal/lineutil"
	"github.com/freshLiver/SuperStudent/internal/logger"
	"github.com/freshLiver/SuperStudent/internal/metrics"
	"github.com/freshLiver/SuperStudent/internal/ner"
	"github.com/freshLiver/SuperStudent/internal/news"
	"github.com/freshLiver/SuperStudent/internal/nlu"
	"github.com/freshLiver/SuperStudent/internal/ratelimit"
	"github.com/freshLiver/SuperStudent/internal/temporal"
)

// helpKeywords trigger the usage message regardless of NLU outcome.
var helpKeywords = []string{"使用說明", "說明", "help"}

const helpMessage = "📖 使用說明\n\n" +
	"直接用中文說出你的需求，例如：\n\n" +
	"📰 新聞查詢\n" +
	"・我想看今天的新聞\n" +
	"・三天前有什麼中時的報導\n\n" +
	"📅 活動查詢\n" +
	"・我想知道下禮拜有什麼活動\n\n" +
	"📝 活動登記\n" +
	"・三月七號台南火車站有發放免費便當的活動\n\n" +
	"時間可以用「明天」「下禮拜」「三天後」或「從三月一日到三月二十日」這樣的說法。"

const msgTooLong = "訊息太長了，請簡短描述您的需求"
const msgRateLimited = "您的訊息太頻繁了，請稍後再試"

// NERParser is the entity recognition collaborator.
type NERParser interface {
	Parse(ctx context.Context, sentence string) (*ner.Response, error)
}

// ProcessorConfig holds dependencies for creating a Processor.
type ProcessorConfig struct {
	Standardizer *temporal.Standardizer
	Extractor    *temporal.Extractor
	NERParser    NERParser
	Classifier   *nlu.Classifier
	Router       *Router
	BotConfig    *config.BotConfig
	Location     *time.Location
	Logger       *logger.Logger
	Metrics      *metrics.Metrics

	// Now overrides the clock; nil means time.Now.
	Now func() time.Time
}

// Processor turns incoming LINE events into replies. One utterance flows
// through sanitization, language extraction, temporal resolution, entity
// recognition, intent classification, and routing.
type Processor struct {
	standardizer *temporal.Standardizer
	extractor    *temporal.Extractor
	nerParser    NERParser
	classifier   *nlu.Classifier
	router       *Router
	userLimiter  *ratelimit.PerKeyLimiter
	loc          *time.Location
	logger       *logger.Logger
	metrics      *metrics.Metrics
	now          func() time.Time

	maxMessageLength int
}

// NewProcessor creates a message processor.
func NewProcessor(cfg ProcessorConfig) *Processor {
	now := cfg.Now
	if now == nil {
		now = time.Now
	}

	userLimiter := ratelimit.NewPerKeyLimiter(ratelimit.PerKeyLimiterConfig{
		MaxTokens:     cfg.BotConfig.UserRateLimitBurst,
		RefillRate:    cfg.BotConfig.UserRateLimitRefillPerSec,
		CleanupPeriod: config.RateLimiterCleanupInterval,
	})
	if cfg.Metrics != nil {
		userLimiter.OnDrop(func() { cfg.Metrics.RecordRateLimiterDrop("user") })
		userLimiter.OnUpdate(func(count int) { cfg.Metrics.SetRateLimiterActiveKeys(count) })
	}

	return &Processor{
		standardizer:     cfg.Standardizer,
		extractor:        cfg.Extractor,
		nerParser:        cfg.NERParser,
		classifier:       cfg.Classifier,
		router:           cfg.Router,
		userLimiter:      userLimiter,
		loc:              cfg.Location,
		logger:           cfg.Logger.WithModule("processor"),
		metrics:          cfg.Metrics,
		now:              now,
		maxMessageLength: cfg.BotConfig.MaxMessageLength,
	}
}

// Stop releases background resources (rate limiter cleanup loop).
func (p *Processor) Stop() {
	p.userLimiter.Stop()
}

// ProcessMessage handles a message event. Returns nil messages when no
// reply is warranted (non-text content, group chat without mention).
func (p *Processor) ProcessMessage(ctx context.Context, event webhook.MessageEvent) ([]messaging_api.MessageInterface, error) {
	textMsg, ok := event.Message.(webhook.TextMessageContent)
	if !ok {
		// Stickers, images, audio: nothing to parse
		return nil, nil
	}

	text := textMsg.Text

	// Group chats only answer when the bot is mentioned
	if !IsPersonalChat(event.Source) {
		if !IsBotMentioned(textMsg) {
			return nil, nil
		}
		text = removeBotMentions(text, textMsg.Mention)
	}

	userID := GetUserID(event.Source)
	if !p.userLimiter.Allow(userID) {
		p.logger.WithField("user_id", userID).Warn("User rate limit exceeded")
		return []messaging_api.MessageInterface{lineutil.NewTextMessage(msgRateLimited)}, nil
	}

	if len([]rune(text)) > p.maxMessageLength {
		p.logger.WithField("length", len(text)).Warn("Message exceeds length limit")
		return []messaging_api.MessageInterface{lineutil.NewTextMessage(msgTooLong)}, nil
	}

	text = sanitizeText(text)
	if text == "" {
		return nil, nil
	}

	if isHelpRequest(text) {
		msg := lineutil.NewTextMessage(helpMessage)
		msg.QuickReply = lineutil.NewQuickReply(lineutil.QuickReplyMainNav())
		return []messaging_api.MessageInterface{msg}, nil
	}

	response := p.Respond(ctx, text)
	return response.Messages(), nil
}

// Respond runs the NLU pipeline over a sanitized utterance and routes the
// resulting intent.
func (p *Processor) Respond(ctx context.Context, text string) Response {
	now := p.now().In(p.loc)

	remainder, lang := nlu.ExtractLanguage(text)
	parsed := p.standardizer.Standardize(remainder, now)
	rng := p.extractor.Extract(parsed, now)

	var intent nlu.Intent
	nerResp, err := p.nerParser.Parse(ctx, remainder)
	if err != nil {
		// Parse failure degrades to Unknown, never a hard error
		if apperrors.IsCollaborator(err) {
			p.logger.WithError(err).Warn("NER collaborator failed; degrading to unknown intent")
		} else {
			p.logger.WithError(err).Error("NER parse failed; degrading to unknown intent")
		}
		if p.metrics != nil {
			p.metrics.RecordNERRequest("error")
		}
		intent = nlu.Intent{Service: nlu.ServiceUnknown, Range: rng, Language: lang}
	} else {
		if p.metrics != nil {
			p.metrics.RecordNERRequest("success")
		}
		bag := nlu.NewEntityBag(nerResp, news.IsMediaName)
		intent = p.classifier.Classify(parsed, bag, rng, lang)
	}

	if p.metrics != nil {
		p.metrics.RecordIntent(intent.Service.String())
	}
	p.logger.WithFields(map[string]any{
		"service": intent.Service.String(),
		"parsed":  parsed,
	}).Info("Utterance classified")

	return p.router.Route(ctx, intent, text, parsed)
}

// ProcessPostback handles postback events. The bot exposes no postback
// actions, so these resolve to no reply.
func (p *Processor) ProcessPostback(_ context.Context, _ webhook.PostbackEvent) ([]messaging_api.MessageInterface, error) {
	return nil, nil
}

// ProcessFollow handles a new follower with a welcome message.
func (p *Processor) ProcessFollow(_ webhook.FollowEvent) ([]messaging_api.MessageInterface, error) {
	msg := lineutil.NewTextMessage("嗨！我可以幫你查新聞、查活動、登記活動 🎓\n\n" + helpMessage)
	msg.QuickReply = lineutil.NewQuickReply(lineutil.QuickReplyMainNav())
	return []messaging_api.MessageInterface{msg}, nil
}

// ProcessJoin handles the bot joining a group or room.
func (p *Processor) ProcessJoin(_ webhook.JoinEvent) ([]messaging_api.MessageInterface, error) {
	msg := lineutil.NewTextMessage("大家好！需要查新聞或活動時，記得標註我再說出需求 🙌")
	msg.QuickReply = lineutil.NewQuickReply(lineutil.QuickReplyMainNav())
	return []messaging_api.MessageInterface{msg}, nil
}

func isHelpRequest(text string) bool {
	lower := strings.ToLower(text)
	for _, kw := range helpKeywords {
		if lower == kw {
			return true
		}
	}
	return false
}
