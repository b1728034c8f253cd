package bot

import (
	"context"
	"errors"
	"io"
	"strings"
	"testing"
	"time"

	"github.com/line/line-bot-sdk-go/v8/linebot/messaging_api"
	"github.com/line/line-bot-sdk-go/v8/linebot/webhook"

	"github.com/freshLiver/SuperStudent/internal/config"
	"github.com/freshLiver/SuperStudent/internal/logger"
	"github.com/freshLiver/SuperStudent/internal/ner"
	"github.com/freshLiver/SuperStudent/internal/news"
	"github.com/freshLiver/SuperStudent/internal/nlu"
	"github.com/freshLiver/SuperStudent/internal/temporal"
)

var processorTestZone = time.FixedZone("Asia/Taipei", 8*60*60)

// Sunday morning anchor keeps relative expressions deterministic.
func processorTestNow() time.Time {
	return time.Date(2024, 3, 10, 9, 0, 0, 0, processorTestZone)
}

type fakeNERParser struct {
	resp *ner.Response
	err  error

	gotSentence string
}

func (f *fakeNERParser) Parse(_ context.Context, sentence string) (*ner.Response, error) {
	f.gotSentence = sentence
	return f.resp, f.err
}

func newTestProcessor(t *testing.T, nerParser NERParser, newsSvc NewsSearcher, activitySvc ActivityService) *Processor {
	t.Helper()

	log := logger.NewWithWriter("error", io.Discard)
	grammar := temporal.NewGrammar()

	p := NewProcessor(ProcessorConfig{
		Standardizer: temporal.NewStandardizer(grammar),
		Extractor:    temporal.NewExtractor(grammar, processorTestZone),
		NERParser:    nerParser,
		Classifier:   nlu.NewClassifier(),
		Router:       NewRouter(newsSvc, activitySvc, log),
		BotConfig: &config.BotConfig{
			WebhookTimeout:            config.WebhookProcessing,
			UserRateLimitBurst:        15,
			UserRateLimitRefillPerSec: 0.2,
			GlobalRateLimitRPS:        80,
			MaxMessagesPerReply:       config.LINEMaxMessagesPerReply,
			MaxEventsPerWebhook:       100,
			MinReplyTokenLength:       10,
			MaxMessageLength:          config.LINEMaxTextMessageLength,
		},
		Location: processorTestZone,
		Logger:   log,
		Now:      processorTestNow,
	})
	t.Cleanup(p.Stop)
	return p
}

func textEvent(text string) webhook.MessageEvent {
	return webhook.MessageEvent{
		Source:  webhook.UserSource{UserId: "U0001"},
		Message: webhook.TextMessageContent{Text: text},
	}
}

func TestRespondSearchNews(t *testing.T) {
	nerParser := &fakeNERParser{resp: &ner.Response{
		Categories: map[string][]string{ner.CategoryOrganization: {"中時"}},
		Objects:    []string{"新聞"},
	}}
	newsSvc := &fakeNewsSearcher{result: news.Result{URL: "https://www.chinatimes.com/a", Snippet: "摘要"}}
	p := newTestProcessor(t, nerParser, newsSvc, &fakeActivityService{})

	resp := p.Respond(context.Background(), "我想看今天中時的新聞")

	if resp.Kind != ResponseNews {
		t.Fatalf("Expected news response, got kind=%v text=%q", resp.Kind, resp.Text)
	}
	if newsSvc.gotMedia != news.MediaChinaTimes {
		t.Errorf("Expected chinatimes media, got %v", newsSvc.gotMedia)
	}
	if nerParser.gotSentence != "我想看今天中時的新聞" {
		t.Errorf("NER should receive the raw sentence, got %q", nerParser.gotSentence)
	}
}

func TestRespondNERFailureDegradesToUnknown(t *testing.T) {
	nerParser := &fakeNERParser{err: errors.New("connection refused")}
	newsSvc := &fakeNewsSearcher{}
	p := newTestProcessor(t, nerParser, newsSvc, &fakeActivityService{})

	resp := p.Respond(context.Background(), "我想看今天的新聞")

	if resp.Kind != ResponseInform {
		t.Fatalf("Expected inform response, got %v", resp.Kind)
	}
	if !strings.Contains(resp.Text, "我聽不懂您的需求") {
		t.Errorf("Expected apology, got %q", resp.Text)
	}
	if !strings.Contains(resp.Text, "我想看今天的新聞") {
		t.Errorf("Apology should echo the input, got %q", resp.Text)
	}
	if newsSvc.gotKeywords != nil {
		t.Error("News search should not run when NER fails")
	}
}

func TestRespondCreateActivity(t *testing.T) {
	t.Run("with location", func(t *testing.T) {
		nerParser := &fakeNERParser{resp: &ner.Response{
			Events:    []string{"發放免費便當的活動"},
			Locations: []string{"台南火車站"},
			Objects:   []string{"便當"},
		}}
		activitySvc := &fakeActivityService{createResult: "已新增活動：3月7日0點00分到3月7日23點59分 在台南火車站 便當"}
		p := newTestProcessor(t, nerParser, &fakeNewsSearcher{}, activitySvc)

		resp := p.Respond(context.Background(), "三月七號台南火車站有發放免費便當的活動")

		if resp.Kind != ResponseInform || !strings.Contains(resp.Text, "已新增活動") {
			t.Fatalf("Expected creation status, got kind=%v text=%q", resp.Kind, resp.Text)
		}
		if !strings.Contains(activitySvc.gotContent, "3月7日") {
			t.Errorf("Persisted content should carry the standardized date, got %q", activitySvc.gotContent)
		}
		if activitySvc.gotLocation != "台南火車站" {
			t.Errorf("Expected location forwarded, got %q", activitySvc.gotLocation)
		}
	})

	t.Run("ambiguous location", func(t *testing.T) {
		nerParser := &fakeNERParser{resp: &ner.Response{
			Events:  []string{"發放免費便當的活動"},
			Objects: []string{"便當"},
		}}
		activitySvc := &fakeActivityService{}
		p := newTestProcessor(t, nerParser, &fakeNewsSearcher{}, activitySvc)

		resp := p.Respond(context.Background(), "三月七號有發放免費便當的活動")

		if resp.Text != msgAmbiguousLocation {
			t.Errorf("Expected clarification, got %q", resp.Text)
		}
		if activitySvc.gotContent != "" {
			t.Error("Create should not run without a location")
		}
	})
}

func TestRespondLanguageDirective(t *testing.T) {
	nerParser := &fakeNERParser{resp: &ner.Response{Objects: []string{"新聞"}}}
	newsSvc := &fakeNewsSearcher{result: news.Result{URL: "https://web.ncku.edu.tw/n", Snippet: "摘要"}}
	p := newTestProcessor(t, nerParser, newsSvc, &fakeActivityService{})

	resp := p.Respond(context.Background(), "用台語我想看今天的新聞")

	if resp.Language != nlu.LanguageTaiwanese {
		t.Errorf("Expected Taiwanese response language, got %v", resp.Language)
	}
	if strings.Contains(nerParser.gotSentence, "用台語") {
		t.Errorf("Directive should be stripped before NER, got %q", nerParser.gotSentence)
	}
}

func TestProcessMessage(t *testing.T) {
	t.Run("help request", func(t *testing.T) {
		p := newTestProcessor(t, &fakeNERParser{}, &fakeNewsSearcher{}, &fakeActivityService{})

		messages, err := p.ProcessMessage(context.Background(), textEvent("使用說明"))
		if err != nil {
			t.Fatalf("ProcessMessage failed: %v", err)
		}
		if len(messages) != 1 {
			t.Fatalf("Expected 1 message, got %d", len(messages))
		}
		msg := messages[0].(*messaging_api.TextMessage)
		if !strings.Contains(msg.Text, "使用說明") {
			t.Errorf("Expected help text, got %q", msg.Text)
		}
	})

	t.Run("non-text content ignored", func(t *testing.T) {
		p := newTestProcessor(t, &fakeNERParser{}, &fakeNewsSearcher{}, &fakeActivityService{})

		event := webhook.MessageEvent{
			Source:  webhook.UserSource{UserId: "U0001"},
			Message: webhook.StickerMessageContent{},
		}
		messages, err := p.ProcessMessage(context.Background(), event)
		if err != nil || messages != nil {
			t.Errorf("Expected no reply for sticker, got %v, %v", messages, err)
		}
	})

	t.Run("group chat without mention ignored", func(t *testing.T) {
		p := newTestProcessor(t, &fakeNERParser{}, &fakeNewsSearcher{}, &fakeActivityService{})

		event := webhook.MessageEvent{
			Source:  webhook.GroupSource{GroupId: "G1", UserId: "U0001"},
			Message: webhook.TextMessageContent{Text: "我想看今天的新聞"},
		}
		messages, err := p.ProcessMessage(context.Background(), event)
		if err != nil || messages != nil {
			t.Errorf("Expected no reply without mention, got %v, %v", messages, err)
		}
	})

	t.Run("oversized message rejected", func(t *testing.T) {
		p := newTestProcessor(t, &fakeNERParser{}, &fakeNewsSearcher{}, &fakeActivityService{})

		long := strings.Repeat("活", config.LINEMaxTextMessageLength+1)
		messages, err := p.ProcessMessage(context.Background(), textEvent(long))
		if err != nil {
			t.Fatalf("ProcessMessage failed: %v", err)
		}
		if len(messages) != 1 {
			t.Fatalf("Expected 1 message, got %d", len(messages))
		}
		if messages[0].(*messaging_api.TextMessage).Text != msgTooLong {
			t.Errorf("Expected length rejection")
		}
	})

	t.Run("classifies and replies", func(t *testing.T) {
		nerParser := &fakeNERParser{resp: &ner.Response{Objects: []string{"新聞"}}}
		newsSvc := &fakeNewsSearcher{result: news.Result{URL: "https://web.ncku.edu.tw/n", Snippet: "摘要"}}
		p := newTestProcessor(t, nerParser, newsSvc, &fakeActivityService{})

		messages, err := p.ProcessMessage(context.Background(), textEvent("我想看今天的新聞！"))
		if err != nil {
			t.Fatalf("ProcessMessage failed: %v", err)
		}
		if len(messages) != 2 {
			t.Fatalf("Expected snippet + link messages, got %d", len(messages))
		}
		tmpl, ok := messages[1].(*messaging_api.TemplateMessage)
		if !ok {
			t.Fatalf("Second message should be a link template, got %T", messages[1])
		}
		uri := tmpl.Template.(*messaging_api.ButtonsTemplate).Actions[0].(*messaging_api.UriAction)
		if uri.Uri != "https://web.ncku.edu.tw/n" {
			t.Error("Link template should carry the article URL")
		}
	})
}

func TestProcessMessageUserRateLimit(t *testing.T) {
	log := logger.NewWithWriter("error", io.Discard)
	grammar := temporal.NewGrammar()
	p := NewProcessor(ProcessorConfig{
		Standardizer: temporal.NewStandardizer(grammar),
		Extractor:    temporal.NewExtractor(grammar, processorTestZone),
		NERParser:    &fakeNERParser{resp: &ner.Response{}},
		Classifier:   nlu.NewClassifier(),
		Router:       NewRouter(&fakeNewsSearcher{}, &fakeActivityService{}, log),
		BotConfig: &config.BotConfig{
			WebhookTimeout:            config.WebhookProcessing,
			UserRateLimitBurst:        1,
			UserRateLimitRefillPerSec: 0.0001,
			GlobalRateLimitRPS:        80,
			MaxMessagesPerReply:       config.LINEMaxMessagesPerReply,
			MaxEventsPerWebhook:       100,
			MinReplyTokenLength:       10,
			MaxMessageLength:          config.LINEMaxTextMessageLength,
		},
		Location: processorTestZone,
		Logger:   log,
		Now:      processorTestNow,
	})
	defer p.Stop()

	if _, err := p.ProcessMessage(context.Background(), textEvent("使用說明")); err != nil {
		t.Fatalf("First message failed: %v", err)
	}

	messages, err := p.ProcessMessage(context.Background(), textEvent("使用說明"))
	if err != nil {
		t.Fatalf("Second message failed: %v", err)
	}
	if len(messages) != 1 || messages[0].(*messaging_api.TextMessage).Text != msgRateLimited {
		t.Error("Second message should be rate limited")
	}
}

func TestProcessFollow(t *testing.T) {
	p := newTestProcessor(t, &fakeNERParser{}, &fakeNewsSearcher{}, &fakeActivityService{})

	messages, err := p.ProcessFollow(webhook.FollowEvent{})
	if err != nil {
		t.Fatalf("ProcessFollow failed: %v", err)
	}
	if len(messages) != 1 {
		t.Fatalf("Expected welcome message, got %d", len(messages))
	}
}
