// Package notification pushes "brief ready" notifications to the devices a user registered.
package notification

import (
	"context"

	authrepo "meetingprep-ai/internal/auth/repository"
	"meetingprep-ai/pkg/fcm"
	"meetingprep-ai/pkg/logging"

	"github.com/m-mizutani/goerr/v2"
)

// Sender delivers one notification to many device tokens and returns the tokens that failed
type Sender interface {
	SendToDevices(ctx context.Context, tokens []string, notification fcm.NotificationData) ([]string, error)
}

type Service struct {
	fcmRepo authrepo.DeviceTokenRepository
	sender  Sender
}

func NewService(fcmRepo authrepo.DeviceTokenRepository, sender Sender) *Service {
	return &Service{
		fcmRepo: fcmRepo,
		sender:  sender,
	}
}

// NotifyBriefReady tells every device of the user that a brief was generated.
// Tokens FCM rejects are unregistered so the next push skips them.
func (s *Service) NotifyBriefReady(ctx context.Context, userID, meetingID, title string) error {
	if s == nil || s.sender == nil {
		return nil
	}

	tokens, err := s.fcmRepo.TokensForUser(userID)
	if err != nil {
		return goerr.Wrap(err, "failed to load device tokens", goerr.V("user_id", userID))
	}
	if len(tokens) == 0 {
		return nil
	}

	if title == "" {
		title = "Untitled Meeting"
	}
	failed, err := s.sender.SendToDevices(ctx, tokens, fcm.NotificationData{
		Title: "📋 Your meeting brief is ready",
		Body:  title,
		Data: map[string]string{
			"type":       "brief_ready",
			"meeting_id": meetingID,
		},
	})
	if err != nil {
		return goerr.Wrap(err, "failed to push brief notification", goerr.V("user_id", userID))
	}

	if err := s.fcmRepo.Unregister(failed...); err != nil {
		logging.From(ctx).Warn("[Notify] Failed to remove stale device tokens", "error", err)
	}
	return nil
}
