package extraction

import (
	"regexp"
	"strings"
)

// Candidate selectors for an event details popup, tried in order
var popupSelectors = []string{
	`[role="dialog"]`,
	`[data-eventid]`,
	`.ep`,
	`[jsname="CnSW2d"]`,
	`div[style*="position: absolute"]`,
}

const popupSweepSelector = `[role="dialog"], .popup, [data-popup]`

var popupIndicators = []string{
	"join with google meet",
	"guests",
	"organiser",
	"organizer",
	"going?",
	"yes, no, maybe",
	"invite via link",
	"monday", "tuesday", "wednesday", "thursday", "friday", "saturday", "sunday",
	"january", "february", "march", "april", "may", "june", "july",
	"august", "september", "october", "november", "december",
}

var clockPattern = regexp.MustCompile(`\d{1,2}:\d{2}`)

// IsEventPopup reports whether el looks like an event details popup. It is a heuristic
// and accepts false positives.
func IsEventPopup(el Element) bool {
	text := strings.ToLower(el.Text())

	for _, indicator := range popupIndicators {
		if strings.Contains(text, indicator) {
			return true
		}
	}
	if len(el.Find(`[data-email]`)) > 0 {
		return true
	}
	return clockPattern.MatchString(text)
}

// FindEventPopup returns the first accepted popup candidate and the selector that found it
func FindEventPopup(doc Document) (Element, string, bool) {
	for _, selector := range popupSelectors {
		for _, el := range doc.Find(selector) {
			if IsEventPopup(el) {
				return el, selector, true
			}
		}
	}

	for _, el := range doc.Find(popupSweepSelector) {
		if IsEventPopup(el) {
			return el, popupSweepSelector, true
		}
	}
	return nil, "", false
}

var selectedEventSelectors = []string{
	`.Jmftzc`,
	`[data-eventid].selected`,
	`.calendar-event.selected`,
}

// FindSelectedEvent returns the highlighted event in the calendar grid
func FindSelectedEvent(doc Document) (Element, string, bool) {
	for _, selector := range selectedEventSelectors {
		if found := doc.Find(selector); len(found) > 0 {
			return found[0], selector, true
		}
	}
	return nil, "", false
}
