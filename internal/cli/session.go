package cli

import (
	"context"
	"strconv"
	"strings"

	"github.com/m-mizutani/goerr/v2"

	authdomain "meetingprep-ai/internal/auth/domain"
	"meetingprep-ai/internal/briefsync"
	"meetingprep-ai/internal/extraction"
	"meetingprep-ai/internal/localstore"
	"meetingprep-ai/internal/meeting/domain"
	"meetingprep-ai/internal/messaging"
	"meetingprep-ai/internal/normalize"
	"meetingprep-ai/internal/popup"
)

// session ties the popup controller and the brief bridge to the cached sign-in
type session struct {
	controller *popup.Controller
	bridge     *briefsync.Bridge
	bus        *messaging.Bus
	state      popup.State
}

func (d *Dependencies) openSession(ctx context.Context) *session {
	var user authdomain.User
	userID := ""
	if ok, err := d.Store.GetJSON(ctx, localstore.KeyUser, &user); err == nil && ok {
		userID = user.ID
	}

	bridge := briefsync.NewBridge(d.API, d.Store, userID)
	bridge.SetClock(d.now)

	bus := messaging.NewBus(d.Config.RequestTimeout)
	detector := popup.NewDetector(bus)
	detector.SetClock(d.now)

	controller := popup.NewController(d.API, d.Store, bridge, detector, normalize.NewWithClock(d.now))
	state := controller.CheckAuth(ctx)

	return &session{controller: controller, bridge: bridge, bus: bus, state: state}
}

func (s *session) requireUser() (*authdomain.User, error) {
	if !s.state.Phase.Authenticated() || s.state.User == nil {
		return nil, popup.ErrNotSignedIn
	}
	return s.state.User, nil
}

// attachPage answers page requests on the session bus from an HTML snapshot
func (d *Dependencies) attachPage(s *session, path, pageURL string) *extraction.PageAgent {
	scraper := extraction.NewScraper(extraction.WithExcludedNames(d.Config.ExcludedNames...))
	return extraction.NewPageAgent(s.bus, scraper, func() (extraction.Document, error) {
		return extraction.LoadHTMLFile(path, pageURL)
	})
}

// resolve finds a brief by its 1-based position in the listing or by its meeting id
func resolve(records []domain.BriefRecord, ref string) (domain.BriefRecord, error) {
	ref = strings.TrimSpace(ref)
	if n, err := strconv.Atoi(ref); err == nil {
		if n < 1 || n > len(records) {
			return domain.BriefRecord{}, goerr.Wrap(domain.ErrNotFound, "no brief at that position", goerr.V("position", n), goerr.V("count", len(records)))
		}
		return records[n-1], nil
	}
	for _, rec := range records {
		if rec.RemoteID() == ref {
			return rec, nil
		}
	}
	return domain.BriefRecord{}, goerr.Wrap(domain.ErrNotFound, "no brief with that meeting id", goerr.V("meeting_id", ref))
}
