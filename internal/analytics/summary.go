package analytics

import (
	"Linkfolio-Backend/internal/domain"
	"Linkfolio-Backend/internal/repository"
	"context"
	"time"

	"go.uber.org/zap"
)

const (
	topReferrerLimit = 5
	recentClickLimit = 20
	historyDays      = 30
)

// Summary is the analytics dashboard payload for one profile.
type Summary struct {
	TotalClicks     int64                        `json:"total_clicks"`
	ClicksLast7d    int64                        `json:"clicks_last_7d"`
	ClicksLast30d   int64                        `json:"clicks_last_30d"`
	DirectClicks    int64                        `json:"direct_clicks"`
	UniqueReferrers int64                        `json:"unique_referrers"`
	ClicksByLink    []repository.LinkClickCount  `json:"clicks_by_link"`
	TopReferrers    []repository.ReferrerCount   `json:"top_referrers"`
	ClicksByDay     []repository.DayCount        `json:"clicks_by_day"`
	RecentClicks    []*domain.ClickEvent         `json:"recent_clicks"`
}

// SummaryService aggregates recorded click events for the dashboard.
type SummaryService struct {
	storage repository.Storage
	log     *zap.Logger
}

// NewSummaryService creates a new summary service.
func NewSummaryService(storage repository.Storage, log *zap.Logger) *SummaryService {
	return &SummaryService{
		storage: storage,
		log:     log,
	}
}

// GetSummary builds the full dashboard aggregation for a profile.
func (s *SummaryService) GetSummary(ctx context.Context, profileID string) (*Summary, error) {
	now := time.Now()
	last7d := now.AddDate(0, 0, -7)
	last30d := now.AddDate(0, 0, -30)

	summary := &Summary{}
	var err error

	if summary.TotalClicks, err = s.storage.CountClicks(ctx, profileID, nil); err != nil {
		return nil, err
	}
	if summary.ClicksLast7d, err = s.storage.CountClicks(ctx, profileID, &last7d); err != nil {
		return nil, err
	}
	if summary.ClicksLast30d, err = s.storage.CountClicks(ctx, profileID, &last30d); err != nil {
		return nil, err
	}
	if summary.DirectClicks, err = s.storage.CountDirectClicks(ctx, profileID); err != nil {
		return nil, err
	}
	if summary.UniqueReferrers, err = s.storage.CountUniqueReferrers(ctx, profileID); err != nil {
		return nil, err
	}
	if summary.ClicksByLink, err = s.storage.ClicksByLink(ctx, profileID); err != nil {
		return nil, err
	}
	if summary.TopReferrers, err = s.storage.TopReferrers(ctx, profileID, topReferrerLimit); err != nil {
		return nil, err
	}
	if summary.ClicksByDay, err = s.storage.ClicksByDay(ctx, profileID, historyDays); err != nil {
		return nil, err
	}
	if summary.RecentClicks, err = s.storage.RecentClicks(ctx, profileID, recentClickLimit); err != nil {
		return nil, err
	}
	return summary, nil
}
