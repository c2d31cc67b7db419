package popup

import (
	"fmt"
	"strings"

	"meetingprep-ai/internal/meeting/domain"
	"meetingprep-ai/internal/render"
)

// View renders the popup as plain text
func View(s State) string {
	var sb strings.Builder

	if !s.Phase.Authenticated() {
		sb.WriteString("🔐 Sign in to MeetingPrep AI\n")
		writeNotice(&sb, s)
		return sb.String()
	}

	if s.User != nil {
		sb.WriteString("👤 " + s.User.Email + "\n\n")
	}

	switch s.Phase {
	case PhaseNoMeeting:
		sb.WriteString(orDefault(s.Notice, NoMeetingMessage) + "\n")
		return sb.String()

	case PhaseMeetingDetected, PhaseBriefDisplayed:
		sb.WriteString(MeetingSummary(*s.Meeting))
		if s.Source == SourceFallback {
			sb.WriteString("(meeting details could not be read from the page)\n")
		}
	}

	if s.Phase == PhaseBriefDisplayed && s.Brief != nil {
		sb.WriteString("\n" + render.PlainBody(s.Brief.Brief.Text()) + "\n")
		if s.Usage != nil && !s.Usage.Unlimited {
			sb.WriteString(fmt.Sprintf("\n📊 %d of %d briefs used this period\n", s.Usage.BriefsUsed, s.Usage.BriefsLimit))
		}
	}

	writeNotice(&sb, s)
	return sb.String()
}

// MeetingSummary renders the detected meeting block
func MeetingSummary(m domain.MeetingRecord) string {
	return fmt.Sprintf("Title: %s\nDate: %s\nAttendees: %s\n",
		m.TitleOrDefault(),
		render.LongDate(m.Date),
		m.Attendees.Join(domain.DefaultAttendees))
}

func writeNotice(sb *strings.Builder, s State) {
	if s.Notice == "" {
		return
	}
	icon := "ℹ️"
	switch s.NoticeKind {
	case MessageSuccess:
		icon = "✅"
	case MessageError:
		icon = "❌"
	}
	sb.WriteString("\n" + icon + " " + s.Notice + "\n")
}

func orDefault(v, fallback string) string {
	if v == "" {
		return fallback
	}
	return v
}
