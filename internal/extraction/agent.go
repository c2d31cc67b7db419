package extraction

import (
	"context"
	"errors"
	"strconv"

	"github.com/m-mizutani/goerr/v2"

	"meetingprep-ai/internal/meeting/domain"
	"meetingprep-ai/internal/messaging"
	"meetingprep-ai/pkg/logging"
)

// PageAgent answers messages on behalf of the page: it scrapes the current document on
// request and forwards affordance activations.
type PageAgent struct {
	scraper *Scraper
	load    func() (Document, error)
	bus     *messaging.Bus
}

// NewPageAgent registers the page handlers on bus. load returns the current document.
func NewPageAgent(bus *messaging.Bus, scraper *Scraper, load func() (Document, error)) *PageAgent {
	a := &PageAgent{scraper: scraper, load: load, bus: bus}
	bus.Handle(messaging.ActionGetMeetingData, a.handleGetMeetingData)
	bus.Handle(messaging.ActionPing, func(context.Context, messaging.Message) (messaging.Reply, error) {
		return messaging.Reply{Success: true}, nil
	})
	return a
}

func (a *PageAgent) handleGetMeetingData(ctx context.Context, _ messaging.Message) (messaging.Reply, error) {
	doc, err := a.load()
	if err != nil {
		return messaging.Reply{}, err
	}

	res, err := a.scraper.Extract(doc)
	if errors.Is(err, domain.ErrMeetingNotFound) {
		logging.From(ctx).Debug("no meeting on page", "url", doc.URL())
		return messaging.Reply{Meeting: nil}, nil
	}
	if err != nil {
		return messaging.Reply{}, err
	}

	rec := res.Meeting
	return messaging.Reply{Meeting: &rec}, nil
}

// Activate handles a click on the affordance of event eventID: the event must be on the
// current page, then the popup is asked to open and its reply returned.
func (a *PageAgent) Activate(ctx context.Context, eventID string) (messaging.Reply, error) {
	doc, err := a.load()
	if err != nil {
		return messaging.Reply{}, err
	}
	if len(doc.Find(`[data-eventid=`+strconv.Quote(eventID)+`]`)) == 0 {
		return messaging.Reply{}, goerr.Wrap(domain.ErrMeetingNotFound, "event is not on the page",
			goerr.V("event_id", eventID), goerr.V("url", doc.URL()))
	}
	return a.bus.Request(ctx, messaging.Message{Action: messaging.ActionOpenPopup, EventID: eventID})
}
