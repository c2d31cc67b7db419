package dto

import (
	"meetingprep-ai/internal/meeting/domain"
	subdto "meetingprep-ai/internal/subscription/dto"
)

type GenerateBriefRequest struct {
	Meeting *domain.MeetingRecord `json:"meeting" binding:"required"`
	UserID  string                `json:"userId,omitempty"`
}

type GenerateBriefResponse struct {
	Success bool                  `json:"success"`
	Brief   domain.BriefContent   `json:"brief"`
	Meeting *domain.MeetingRecord `json:"meeting,omitempty"`
	Usage   *subdto.UsageResponse `json:"usage,omitempty"`
}

type MeetingsResponse struct {
	Success  bool                 `json:"success"`
	Meetings []domain.BriefRecord `json:"meetings"`
}

type DeleteMeetingResponse struct {
	Success bool   `json:"success"`
	Message string `json:"message"`
}

type ErrorResponse struct {
	Success bool   `json:"success"`
	Error   string `json:"error"`
}
