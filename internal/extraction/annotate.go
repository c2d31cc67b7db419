package extraction

import (
	"github.com/PuerkitoBio/goquery"
)

const (
	eventSelector      = `[data-eventid], .calendar-event`
	affordanceSelector = ".meetingprep-btn"
	affordanceMarkup   = `<button class="meetingprep-btn" title="Generate Meeting Brief" type="button">📋</button>`
)

// Annotate appends a brief affordance to every event element that does not already
// carry one. It returns the number of affordances added; a second call adds none.
func (d *HTMLDocument) Annotate() int {
	added := 0
	d.doc.Find(eventSelector).Each(func(_ int, event *goquery.Selection) {
		if event.Find(affordanceSelector).Length() > 0 {
			return
		}
		event.AppendHtml(affordanceMarkup)
		if eventID, ok := event.Attr("data-eventid"); ok {
			event.Children().Last().SetAttr("data-meetingprep-event", eventID)
		}
		added++
	})
	return added
}

// Affordances lists the event ids of every injected affordance, in document order.
// Affordances on elements without an event id are reported as "".
func (d *HTMLDocument) Affordances() []string {
	var ids []string
	d.doc.Find(affordanceSelector).Each(func(_ int, btn *goquery.Selection) {
		id, _ := btn.Attr("data-meetingprep-event")
		ids = append(ids, id)
	})
	return ids
}
