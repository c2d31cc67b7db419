package usecase

import (
	"time"

	"meetingprep-ai/internal/analytics/domain"
	"meetingprep-ai/internal/analytics/dto"
)

type AnalyticsUsecase interface {
	Track(req *dto.TrackEventRequest) (*domain.AnalyticsEvent, error)
	Summary(since time.Time) (map[string]int64, error)
}

var _ AnalyticsUsecase = (*EventWorker)(nil)
