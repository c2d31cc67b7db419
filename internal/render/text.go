package render

import (
	"fmt"
	"strings"
	"time"

	"meetingprep-ai/internal/meeting/domain"
)

const separatorWidth = 50

// PlainBody strips the markdown subset from a brief, keeping one line per block
func PlainBody(content string) string {
	var sb strings.Builder
	for _, b := range Parse(content) {
		switch b.Kind {
		case KindHeading, KindText:
			sb.WriteString(boldPattern.ReplaceAllString(b.Text, "$1"))
		case KindList:
			for i, item := range b.Items {
				if i > 0 {
					sb.WriteString("\n")
				}
				sb.WriteString("• " + boldPattern.ReplaceAllString(item, "$1"))
			}
			sb.WriteString("\n")
		case KindLineBreak:
			sb.WriteString("\n")
		}
	}
	return strings.TrimRight(sb.String(), "\n")
}

// PlainText exports one brief with its meeting metadata for the clipboard
func PlainText(rec domain.BriefRecord) string {
	m := rec.Meeting
	var sb strings.Builder
	sb.WriteString(m.TitleOrDefault() + "\n")
	sb.WriteString(fmt.Sprintf("Date: %s | Time: %s\n",
		orDefault(m.Date, domain.DefaultViewerDate),
		orDefault(m.Time, domain.DefaultViewerTime)))
	sb.WriteString("Attendees: " + m.Attendees.Join(domain.DefaultViewerPeople) + "\n\n")

	if body := rec.Brief.Text(); body != "" {
		sb.WriteString(PlainBody(body))
	} else {
		sb.WriteString(domain.DefaultBriefContent)
	}
	sb.WriteString("\n")
	return sb.String()
}

// CopyAll exports every brief in list order under a single banner
func CopyAll(records []domain.BriefRecord, now time.Time) string {
	rule := strings.Repeat("=", separatorWidth)

	var sb strings.Builder
	sb.WriteString("MEETING BRIEFS\n")
	sb.WriteString(rule + "\n\n")

	for i, rec := range records {
		m := rec.Meeting
		status := "Completed"
		if rec.IsUpcoming(now) {
			status = "Upcoming"
		}

		sb.WriteString(fmt.Sprintf("BRIEF %d: %s\n", i+1, m.TitleOrDefault()))
		sb.WriteString("Status: " + status + "\n")
		sb.WriteString("Date: " + DisplayDate(m.Date, now))
		if m.Time != "" {
			sb.WriteString(" | Time: " + m.Time)
		}
		sb.WriteString("\n")
		if len(m.Attendees) > 0 {
			sb.WriteString("Attendees: " + m.Attendees.Join("") + "\n")
		}

		sb.WriteString("\n")
		if body := rec.Brief.Text(); body != "" {
			sb.WriteString(body + "\n")
		} else {
			sb.WriteString(domain.DefaultBriefContent + "\n")
		}
		sb.WriteString("\n" + rule + "\n\n")
	}
	return sb.String()
}

// DisplayDate renders an ISO date as M/D/YYYY. An empty date shows today, other
// formats are shown unchanged.
func DisplayDate(date string, now time.Time) string {
	date = strings.TrimSpace(date)
	if date == "" {
		return now.Format("1/2/2006")
	}
	d, err := time.Parse("2006-01-02", date)
	if err != nil {
		return date
	}
	return d.Format("1/2/2006")
}

// LongDate renders an ISO date as "Thursday, 23 October" for the popup header
func LongDate(date string) string {
	d, err := time.Parse("2006-01-02", strings.TrimSpace(date))
	if err != nil {
		return orDefault(date, domain.DefaultDate)
	}
	return d.Format("Monday, 2 January")
}

func orDefault(v, fallback string) string {
	if strings.TrimSpace(v) == "" {
		return fallback
	}
	return v
}
