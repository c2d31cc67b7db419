package usecase

import (
	"context"

	"meetingprep-ai/internal/meeting/domain"
	subdto "meetingprep-ai/internal/subscription/dto"
	"meetingprep-ai/pkg/ai"
)

// GenerateResult is what a brief generation hands back to the caller
type GenerateResult struct {
	Brief   domain.BriefContent
	Meeting domain.MeetingRecord
	Usage   *subdto.UsageResponse
}

// MeetingUsecase covers the extension-facing meeting and brief operations
type MeetingUsecase interface {
	// GenerateBrief generates a brief. With an empty userID nothing is persisted and no quota applies.
	GenerateBrief(ctx context.Context, userID string, meeting domain.MeetingRecord) (*GenerateResult, error)
	GetMeetings(ctx context.Context, userID string) ([]domain.BriefRecord, error)
	DeleteMeeting(ctx context.Context, userID, meetingID string) error
	SearchMeetings(ctx context.Context, userID, query string) ([]domain.BriefRecord, error)
	GetUsage(ctx context.Context, userID string) (*subdto.UsageResponse, error)

	SetBriefGenerator(generator ai.BriefGenerator)
	SetNotifier(notifier BriefNotifier)
}

// BriefNotifier is told when a persisted brief is ready
type BriefNotifier interface {
	NotifyBriefReady(ctx context.Context, userID, meetingID, title string) error
}
