// Package activity answers activity searches and creates new activities over
// the SQLite-backed store.
package activity

import (
	"context"
	"fmt"
	"strings"
	"time"

	apperrors "github.com/freshLiver/SuperStudent/internal/errors"
	"github.com/freshLiver/SuperStudent/internal/logger"
	"github.com/freshLiver/SuperStudent/internal/metrics"
	"github.com/freshLiver/SuperStudent/internal/storage"
	"github.com/freshLiver/SuperStudent/internal/temporal"
)

// Service is the activity collaborator: search and create over the store.
type Service struct {
	repo    storage.ActivityRepository
	loc     *time.Location
	metrics *metrics.Metrics // nil disables recording
	logger  *logger.Logger

	searchWrap *apperrors.Wrapper
	createWrap *apperrors.Wrapper
}

// NewService creates an activity service. loc is the display timezone for
// formatted activity times.
func NewService(repo storage.ActivityRepository, loc *time.Location, m *metrics.Metrics, log *logger.Logger) *Service {
	return &Service{
		repo:       repo,
		loc:        loc,
		metrics:    m,
		logger:     log.WithModule("activity"),
		searchWrap: apperrors.NewWrapper("activity", "search"),
		createWrap: apperrors.NewWrapper("activity", "create"),
	}
}

// Search returns a text summary of the activities overlapping rng that match
// every keyword. An open range is padded to the end of its start day.
// Returns apperrors.ErrNotFound when nothing matches.
func (s *Service) Search(ctx context.Context, keywords []string, rng temporal.Range) (string, error) {
	from := rng.Start
	to := rng.EndOr(endOfDay(from))

	activities, err := s.repo.SearchActivities(ctx, keywords, from, to)
	if err != nil {
		if s.metrics != nil {
			s.metrics.RecordActivityOp("search", "error")
		}
		return "", s.searchWrap.Wrap(err, "活動服務暫時無法使用，請稍後再試")
	}
	if len(activities) == 0 {
		if s.metrics != nil {
			s.metrics.RecordActivityOp("search", "not_found")
		}
		s.logger.WithField("keywords", strings.Join(keywords, ",")).Infof("no matching activity")
		return "", fmt.Errorf("%w: no activity matched", apperrors.ErrNotFound)
	}
	if s.metrics != nil {
		s.metrics.RecordActivityOp("search", "success")
	}

	lines := make([]string, 0, len(activities))
	for _, a := range activities {
		lines = append(lines, s.formatActivity(a))
	}
	return strings.Join(lines, "\n"), nil
}

// Create stores a new activity and returns a confirmation text. An empty
// location is rejected with ErrAmbiguousLocation.
func (s *Service) Create(ctx context.Context, content, location string, rng temporal.Range) (string, error) {
	if strings.TrimSpace(location) == "" {
		return "", apperrors.ErrAmbiguousLocation
	}

	start := rng.Start
	end := rng.EndOr(endOfDay(start))

	activity := &storage.Activity{
		Content:  strings.TrimSpace(content),
		Location: location,
		StartAt:  start.Unix(),
		EndAt:    end.Unix(),
	}
	if err := s.repo.SaveActivity(ctx, activity); err != nil {
		if s.metrics != nil {
			s.metrics.RecordActivityOp("create", "error")
		}
		return "", s.createWrap.Wrap(err, "活動建立失敗，請稍後再試")
	}
	if s.metrics != nil {
		s.metrics.RecordActivityOp("create", "success")
	}

	s.logger.WithFields(map[string]any{
		"activity_id": activity.ID,
		"location":    location,
	}).Infof("activity created")

	return fmt.Sprintf("已新增活動：%s", s.formatActivity(*activity)), nil
}

// formatActivity renders one activity line: time span, location, content.
func (s *Service) formatActivity(a storage.Activity) string {
	start := time.Unix(a.StartAt, 0).In(s.loc)
	end := time.Unix(a.EndAt, 0).In(s.loc)

	return fmt.Sprintf("%s到%s 在%s %s",
		formatInstant(start), formatInstant(end), a.Location, a.Content)
}

func formatInstant(t time.Time) string {
	return fmt.Sprintf("%d月%d日%d點%02d分", int(t.Month()), t.Day(), t.Hour(), t.Minute())
}

func endOfDay(t time.Time) time.Time {
	return time.Date(t.Year(), t.Month(), t.Day(), 23, 59, 59, 0, t.Location())
}
