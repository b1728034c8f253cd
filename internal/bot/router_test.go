package bot

import (
	"context"
	"errors"
	"fmt"
	"io"
	"strings"
	"testing"

	apperrors "github.com/freshLiver/SuperStudent/internal/errors"
	"github.com/freshLiver/SuperStudent/internal/logger"
	"github.com/freshLiver/SuperStudent/internal/news"
	"github.com/freshLiver/SuperStudent/internal/nlu"
	"github.com/freshLiver/SuperStudent/internal/temporal"
)

type fakeNewsSearcher struct {
	result news.Result
	err    error

	gotKeywords []string
	gotMedia    news.Media
}

func (f *fakeNewsSearcher) Search(_ context.Context, _ temporal.Range, keywords []string, media news.Media) (news.Result, error) {
	f.gotKeywords = keywords
	f.gotMedia = media
	return f.result, f.err
}

type fakeActivityService struct {
	searchResult string
	searchErr    error
	createResult string
	createErr    error

	gotContent  string
	gotLocation string
}

func (f *fakeActivityService) Search(_ context.Context, _ []string, _ temporal.Range) (string, error) {
	return f.searchResult, f.searchErr
}

func (f *fakeActivityService) Create(_ context.Context, content, location string, _ temporal.Range) (string, error) {
	f.gotContent = content
	f.gotLocation = location
	return f.createResult, f.createErr
}

func newTestRouter(newsSvc NewsSearcher, activitySvc ActivityService) *Router {
	return NewRouter(newsSvc, activitySvc, logger.NewWithWriter("error", io.Discard))
}

func TestRouteUnknown(t *testing.T) {
	r := newTestRouter(&fakeNewsSearcher{}, &fakeActivityService{})

	resp := r.Route(context.Background(), nlu.Intent{Service: nlu.ServiceUnknown}, "嗚啦啦", "嗚啦啦")

	if resp.Kind != ResponseInform {
		t.Fatalf("Expected inform response, got %v", resp.Kind)
	}
	if resp.Text != fmt.Sprintf(msgUnknownRequest, "嗚啦啦") {
		t.Errorf("Unexpected text %q", resp.Text)
	}
}

func TestRouteSearchNews(t *testing.T) {
	t.Run("success", func(t *testing.T) {
		fake := &fakeNewsSearcher{result: news.Result{URL: "https://udn.com/news/1", Snippet: "台南市發放免費便當"}}
		r := newTestRouter(fake, &fakeActivityService{})

		intent := nlu.Intent{
			Service:  nlu.ServiceSearchNews,
			Keywords: []string{"便當"},
			Media:    news.MediaUDN,
		}
		resp := r.Route(context.Background(), intent, "x", "x")

		if resp.Kind != ResponseNews {
			t.Fatalf("Expected news response, got %v", resp.Kind)
		}
		if resp.URL != "https://udn.com/news/1" {
			t.Errorf("Unexpected URL %q", resp.URL)
		}
		if fake.gotMedia != news.MediaUDN {
			t.Errorf("Media not forwarded, got %v", fake.gotMedia)
		}
		if len(fake.gotKeywords) != 1 || fake.gotKeywords[0] != "便當" {
			t.Errorf("Keywords not forwarded, got %v", fake.gotKeywords)
		}
	})

	t.Run("not found", func(t *testing.T) {
		fake := &fakeNewsSearcher{err: apperrors.ErrNotFound}
		r := newTestRouter(fake, &fakeActivityService{})

		resp := r.Route(context.Background(), nlu.Intent{Service: nlu.ServiceSearchNews}, "x", "x")

		if resp.Kind != ResponseInform || resp.Text != msgNewsNotFound {
			t.Errorf("Expected not-found inform, got kind=%v text=%q", resp.Kind, resp.Text)
		}
	})

	t.Run("scraper failure", func(t *testing.T) {
		fake := &fakeNewsSearcher{err: errors.New("connection refused")}
		r := newTestRouter(fake, &fakeActivityService{})

		resp := r.Route(context.Background(), nlu.Intent{Service: nlu.ServiceSearchNews}, "x", "x")

		if resp.Kind != ResponseInform || resp.Text != msgNewsUnavailable {
			t.Errorf("Expected unavailable inform, got kind=%v text=%q", resp.Kind, resp.Text)
		}
	})

	t.Run("wrapped failure surfaces its user message", func(t *testing.T) {
		wrapped := apperrors.NewWrapper("news", "search").Wrap(errors.New("tls handshake timeout"), "成大新聞查詢暫時無法使用，請稍後再試")
		fake := &fakeNewsSearcher{err: wrapped}
		r := newTestRouter(fake, &fakeActivityService{})

		resp := r.Route(context.Background(), nlu.Intent{Service: nlu.ServiceSearchNews}, "x", "x")

		if resp.Kind != ResponseInform || resp.Text != "成大新聞查詢暫時無法使用，請稍後再試" {
			t.Errorf("Expected wrapped user message, got kind=%v text=%q", resp.Kind, resp.Text)
		}
	})
}

func TestRouteSearchActivity(t *testing.T) {
	t.Run("success carries primary location", func(t *testing.T) {
		fake := &fakeActivityService{searchResult: "3月7日到3月7日 在台南火車站 發放免費便當"}
		r := newTestRouter(&fakeNewsSearcher{}, fake)

		intent := nlu.Intent{
			Service:   nlu.ServiceSearchActivity,
			Locations: []string{"台南火車站", "台南"},
		}
		resp := r.Route(context.Background(), intent, "x", "x")

		if resp.Kind != ResponseActivity {
			t.Fatalf("Expected activity response, got %v", resp.Kind)
		}
		if resp.Location != "台南火車站" {
			t.Errorf("Expected most specific location, got %q", resp.Location)
		}
		if !strings.Contains(resp.Text, "免費便當") {
			t.Errorf("Result text not carried, got %q", resp.Text)
		}
	})

	t.Run("not found", func(t *testing.T) {
		fake := &fakeActivityService{searchErr: apperrors.ErrNotFound}
		r := newTestRouter(&fakeNewsSearcher{}, fake)

		resp := r.Route(context.Background(), nlu.Intent{Service: nlu.ServiceSearchActivity}, "x", "x")

		if resp.Kind != ResponseInform || resp.Text != msgActivityNotFound {
			t.Errorf("Expected not-found inform, got kind=%v text=%q", resp.Kind, resp.Text)
		}
	})

	t.Run("store failure", func(t *testing.T) {
		fake := &fakeActivityService{searchErr: errors.New("database is locked")}
		r := newTestRouter(&fakeNewsSearcher{}, fake)

		resp := r.Route(context.Background(), nlu.Intent{Service: nlu.ServiceSearchActivity}, "x", "x")

		if resp.Kind != ResponseInform || resp.Text != msgActivityFailed {
			t.Errorf("Expected failure inform, got kind=%v text=%q", resp.Kind, resp.Text)
		}
	})
}

func TestRouteCreateActivity(t *testing.T) {
	t.Run("ambiguous location asks for clarification", func(t *testing.T) {
		fake := &fakeActivityService{}
		r := newTestRouter(&fakeNewsSearcher{}, fake)

		intent := nlu.Intent{Service: nlu.ServiceCreateActivity, AmbiguousLocation: true}
		resp := r.Route(context.Background(), intent, "x", "x")

		if resp.Kind != ResponseInform || resp.Text != msgAmbiguousLocation {
			t.Errorf("Expected clarification, got kind=%v text=%q", resp.Kind, resp.Text)
		}
		if fake.gotContent != "" {
			t.Error("Create should not be attempted for ambiguous location")
		}
	})

	t.Run("success persists parsed text", func(t *testing.T) {
		fake := &fakeActivityService{createResult: "已新增活動：3月7日0點00分到3月7日23點59分 在台南火車站 發放免費便當"}
		r := newTestRouter(&fakeNewsSearcher{}, fake)

		intent := nlu.Intent{
			Service:   nlu.ServiceCreateActivity,
			Locations: []string{"台南火車站"},
		}
		resp := r.Route(context.Background(), intent, "原始句子", "2024年3月7日台南火車站有發放免費便當的活動")

		if resp.Kind != ResponseInform {
			t.Fatalf("Expected inform response, got %v", resp.Kind)
		}
		if !strings.Contains(resp.Text, "已新增活動") {
			t.Errorf("Creation status not carried, got %q", resp.Text)
		}
		if fake.gotContent != "2024年3月7日台南火車站有發放免費便當的活動" {
			t.Errorf("Parsed text not persisted, got %q", fake.gotContent)
		}
		if fake.gotLocation != "台南火車站" {
			t.Errorf("Location not forwarded, got %q", fake.gotLocation)
		}
	})

	t.Run("store rejects blank location", func(t *testing.T) {
		fake := &fakeActivityService{createErr: apperrors.ErrAmbiguousLocation}
		r := newTestRouter(&fakeNewsSearcher{}, fake)

		intent := nlu.Intent{Service: nlu.ServiceCreateActivity, Locations: []string{" "}}
		resp := r.Route(context.Background(), intent, "x", "x")

		if resp.Kind != ResponseInform || resp.Text != msgAmbiguousLocation {
			t.Errorf("Expected clarification, got kind=%v text=%q", resp.Kind, resp.Text)
		}
	})
}
