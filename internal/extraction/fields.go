package extraction

import (
	"regexp"
	"slices"
	"strings"

	"meetingprep-ai/internal/meeting/domain"
)

// DefaultExcludedNames are product names that look like person names. They are always
// excluded; configured names are added to them.
var DefaultExcludedNames = []string{"Google Meet"}

var titleSelectors = []string{
	`h2`,
	`h1`,
	`[role="heading"]`,
	`.event-title`,
	`[data-test-id="event-title"]`,
}

var (
	datePattern = regexp.MustCompile(`(?i)(Monday|Tuesday|Wednesday|Thursday|Friday|Saturday|Sunday),?\s+\d{1,2}\s+(January|February|March|April|May|June|July|August|September|October|November|December)(?:,?\s+\d{4})?`)
	timePattern = regexp.MustCompile(`(?i)(\d{1,2}:\d{2}(?:\s*(?:AM|PM))?)\s*[-–—]\s*(\d{1,2}:\d{2}(?:\s*(?:AM|PM))?)`)
	namePattern = regexp.MustCompile(`[A-Z][a-z]+\s+[A-Z][a-z]+`)
)

const attendeeSelector = `[title*="@"], [data-email]`

type fieldExtractor struct {
	excluded []string
}

func (x *fieldExtractor) fromPopup(popup Element) domain.MeetingRecord {
	text := popup.Text()
	return domain.MeetingRecord{
		Title:     x.title(popup),
		Date:      datePattern.FindString(text),
		Time:      timePattern.FindString(text),
		Attendees: x.attendees(popup, text),
	}
}

func (x *fieldExtractor) title(popup Element) string {
	for _, selector := range titleSelectors {
		found := popup.Find(selector)
		if len(found) == 0 {
			continue
		}
		if title := strings.TrimSpace(found[0].Text()); title != "" {
			return title
		}
	}
	return ""
}

func (x *fieldExtractor) attendees(popup Element, text string) domain.AttendeeList {
	attendees := domain.AttendeeList{}

	for _, el := range popup.Find(attendeeSelector) {
		title, _ := el.Attr("title")
		email, _ := el.Attr("data-email")
		label := strings.TrimSpace(el.Text())

		switch {
		case strings.Contains(title, "@"):
			attendees = append(attendees, title)
		case strings.Contains(email, "@"):
			attendees = append(attendees, email)
		case len(label) > 2 && !strings.Contains(label, "guests"):
			attendees = append(attendees, label)
		}
	}

	// Person-name heuristic. Only names are deduplicated, element-derived entries are kept as found.
	for _, name := range namePattern.FindAllString(text, -1) {
		if x.isExcluded(name) || slices.Contains(attendees, name) {
			continue
		}
		attendees = append(attendees, name)
	}
	return attendees
}

func (x *fieldExtractor) isExcluded(name string) bool {
	for _, ex := range x.excluded {
		if strings.EqualFold(strings.TrimSpace(ex), name) {
			return true
		}
	}
	return false
}

func (x *fieldExtractor) fromSelected(event Element) domain.MeetingRecord {
	titleEl := event
	if found := event.Find(`.event-title, .title`); len(found) > 0 {
		titleEl = found[0]
	}
	return domain.MeetingRecord{
		Title:     strings.TrimSpace(titleEl.Text()),
		Attendees: domain.AttendeeList{},
	}
}
