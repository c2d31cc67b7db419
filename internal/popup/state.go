// Package popup holds the popup's application state and the transitions between its
// screens: signed out, no meeting, meeting detected and brief displayed.
package popup

import (
	authdomain "meetingprep-ai/internal/auth/domain"
	"meetingprep-ai/internal/meeting/domain"
	subdto "meetingprep-ai/internal/subscription/dto"
)

// Phase is the screen the popup shows
type Phase int

const (
	PhaseUnauthenticated Phase = iota
	PhaseNoMeeting
	PhaseMeetingDetected
	PhaseBriefDisplayed
)

func (p Phase) String() string {
	switch p {
	case PhaseUnauthenticated:
		return "unauthenticated"
	case PhaseNoMeeting:
		return "no_meeting"
	case PhaseMeetingDetected:
		return "meeting_detected"
	case PhaseBriefDisplayed:
		return "brief_displayed"
	default:
		return "unknown"
	}
}

// Authenticated reports whether the phase belongs to a signed-in user
func (p Phase) Authenticated() bool {
	return p != PhaseUnauthenticated
}

// MessageKind styles the status line
type MessageKind string

const (
	MessageInfo    MessageKind = "info"
	MessageSuccess MessageKind = "success"
	MessageError   MessageKind = "error"
)

// State is a snapshot of everything the popup renders
type State struct {
	Phase   Phase
	User    *authdomain.User
	Meeting *domain.MeetingRecord
	Source  Source
	Reason  error
	Brief   *domain.BriefRecord
	Usage   *subdto.UsageResponse

	Notice     string
	NoticeKind MessageKind
}

func (s State) withNotice(kind MessageKind, msg string) State {
	s.Notice = msg
	s.NoticeKind = kind
	return s
}
