package bot

import (
	"context"
	"errors"
	"fmt"

	apperrors "github.com/freshLiver/SuperStudent/internal/errors"
	"github.com/freshLiver/SuperStudent/internal/logger"
	"github.com/freshLiver/SuperStudent/internal/news"
	"github.com/freshLiver/SuperStudent/internal/nlu"
	"github.com/freshLiver/SuperStudent/internal/sentry"
	"github.com/freshLiver/SuperStudent/internal/temporal"
)

// User-facing reply texts.
const (
	msgUnknownRequest    = "非常抱歉，我聽不懂您的需求 (%s)"
	msgNewsNotFound      = "找不到相符的新聞"
	msgActivityNotFound  = "找不到活動"
	msgAmbiguousLocation = "地點不明，請補上活動舉辦的地點後再說一次"
	msgNewsUnavailable   = "新聞查詢暫時無法使用，請稍後再試"
	msgActivityFailed    = "活動服務暫時無法使用，請稍後再試"
)

// NewsSearcher finds one ranked article for the given window and keywords.
type NewsSearcher interface {
	Search(ctx context.Context, rng temporal.Range, keywords []string, media news.Media) (news.Result, error)
}

// ActivityService searches and creates stored activities.
type ActivityService interface {
	Search(ctx context.Context, keywords []string, rng temporal.Range) (string, error)
	Create(ctx context.Context, content, location string, rng temporal.Range) (string, error)
}

// Router maps a classified intent to a collaborator call and wraps the
// outcome in a Response. Collaborator failures never escape as errors;
// every intent yields a well-formed reply.
type Router struct {
	news     NewsSearcher
	activity ActivityService
	logger   *logger.Logger
}

// NewRouter creates a router over the news and activity collaborators.
func NewRouter(newsSvc NewsSearcher, activitySvc ActivityService, log *logger.Logger) *Router {
	return &Router{
		news:     newsSvc,
		activity: activitySvc,
		logger:   log.WithModule("router"),
	}
}

// Route dispatches the intent. originalText is the user's utterance as
// received (echoed in the Unknown apology); parsedText is the standardized
// form persisted as activity content.
func (r *Router) Route(ctx context.Context, intent nlu.Intent, originalText, parsedText string) Response {
	switch intent.Service {
	case nlu.ServiceSearchNews:
		return r.searchNews(ctx, intent)
	case nlu.ServiceSearchActivity:
		return r.searchActivity(ctx, intent)
	case nlu.ServiceCreateActivity:
		return r.createActivity(ctx, intent, parsedText)
	default:
		r.logger.WithField("text", originalText).Info("Unknown request")
		return NewInformResponse(fmt.Sprintf(msgUnknownRequest, originalText), intent.Language)
	}
}

func (r *Router) searchNews(ctx context.Context, intent nlu.Intent) Response {
	result, err := r.news.Search(ctx, intent.Range, intent.Keywords, intent.Media)
	if err != nil {
		if apperrors.IsNotFound(err) {
			return NewInformResponse(msgNewsNotFound, intent.Language)
		}
		r.logger.WithError(err).WithField("media", intent.Media.String()).Error("News search failed")
		sentry.CaptureExceptionWithContext(ctx, err)
		if msg := apperrors.GetUserMessage(err); msg != "" {
			return NewInformResponse(msg, intent.Language)
		}
		return NewInformResponse(msgNewsUnavailable, intent.Language)
	}
	return NewNewsResponse(result.Snippet, result.URL, intent.Language)
}

func (r *Router) searchActivity(ctx context.Context, intent nlu.Intent) Response {
	result, err := r.activity.Search(ctx, intent.Keywords, intent.Range)
	if err != nil {
		if apperrors.IsNotFound(err) {
			return NewInformResponse(msgActivityNotFound, intent.Language)
		}
		r.logger.WithError(err).Error("Activity search failed")
		sentry.CaptureExceptionWithContext(ctx, err)
		if msg := apperrors.GetUserMessage(err); msg != "" {
			return NewInformResponse(msg, intent.Language)
		}
		return NewInformResponse(msgActivityFailed, intent.Language)
	}
	return NewActivityResponse(result, primaryLocation(intent), intent.Language)
}

func (r *Router) createActivity(ctx context.Context, intent nlu.Intent, parsedText string) Response {
	if intent.AmbiguousLocation {
		return NewInformResponse(msgAmbiguousLocation, intent.Language)
	}

	result, err := r.activity.Create(ctx, parsedText, primaryLocation(intent), intent.Range)
	if err != nil {
		if errors.Is(err, apperrors.ErrAmbiguousLocation) {
			return NewInformResponse(msgAmbiguousLocation, intent.Language)
		}
		r.logger.WithError(err).Error("Activity creation failed")
		sentry.CaptureExceptionWithContext(ctx, err)
		if msg := apperrors.GetUserMessage(err); msg != "" {
			return NewInformResponse(msg, intent.Language)
		}
		return NewInformResponse(msgActivityFailed, intent.Language)
	}
	return NewInformResponse(result, intent.Language)
}

// primaryLocation returns the most specific extracted location. Locations
// are sorted longest-first by the entity bag, so the head wins.
func primaryLocation(intent nlu.Intent) string {
	if len(intent.Locations) == 0 {
		return ""
	}
	return intent.Locations[0]
}
