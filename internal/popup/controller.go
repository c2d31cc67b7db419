package popup

import (
	"context"
	"errors"
	"strings"

	"github.com/m-mizutani/goerr/v2"

	authdomain "meetingprep-ai/internal/auth/domain"
	authdto "meetingprep-ai/internal/auth/dto"
	"meetingprep-ai/internal/localstore"
	"meetingprep-ai/internal/meeting/domain"
	meetingdto "meetingprep-ai/internal/meeting/dto"
	"meetingprep-ai/internal/messaging"
	"meetingprep-ai/internal/normalize"
	"meetingprep-ai/pkg/logging"
)

// User-facing messages
const (
	MsgMissingCredentials = "Please enter email and password"
	MsgSignedIn           = "Successfully signed in!"
	MsgSignedOut          = "Signed out successfully"
	MsgNoMeeting          = "No meeting data available"
	MsgBriefGenerated     = "Brief generated successfully!"
	MsgSignInNeeded       = "Your session has expired. Please sign in again."
	MsgUpgradeNeeded      = "You've reached your brief limit for this period. Upgrade your plan to keep generating briefs."
	MsgTryAgain           = "Failed to generate brief. Please try again."
)

var ErrNotSignedIn = goerr.New("not signed in")

// API is the part of the backend the popup uses
type API interface {
	SetToken(token string)
	Login(ctx context.Context, email, password string) (*authdto.TokenResponse, error)
	GenerateBrief(ctx context.Context, meeting domain.MeetingRecord, userID string) (*meetingdto.GenerateBriefResponse, error)
}

// Cache holds the session and generated briefs
type Cache interface {
	GetJSON(ctx context.Context, key string, v any) (bool, error)
	Set(ctx context.Context, key string, v any) error
	Remove(ctx context.Context, keys ...string) error
}

// BriefSaver stores a generated brief locally
type BriefSaver interface {
	PersistGenerated(ctx context.Context, meeting domain.MeetingRecord, brief domain.BriefContent, meetingID string) (domain.BriefRecord, string, error)
}

// Controller drives the popup state machine
type Controller struct {
	api        API
	cache      Cache
	briefs     BriefSaver
	detector   *Detector
	normalizer *normalize.Normalizer

	state State
}

// NewController creates a controller in the signed-out state
func NewController(api API, cache Cache, briefs BriefSaver, detector *Detector, normalizer *normalize.Normalizer) *Controller {
	return &Controller{
		api:        api,
		cache:      cache,
		briefs:     briefs,
		detector:   detector,
		normalizer: normalizer,
	}
}

// State returns the current state
func (c *Controller) State() State {
	return c.state
}

// CheckAuth restores a cached session. Both a token and a user are required.
func (c *Controller) CheckAuth(ctx context.Context) State {
	var token string
	var user authdomain.User

	hasToken, err := c.cache.GetJSON(ctx, localstore.KeyAuthToken, &token)
	if err != nil {
		logging.From(ctx).Warn("failed to read cached token", "error", err)
	}
	hasUser, err := c.cache.GetJSON(ctx, localstore.KeyUser, &user)
	if err != nil {
		logging.From(ctx).Warn("failed to read cached user", "error", err)
	}

	if !hasToken || !hasUser || token == "" {
		c.state = State{Phase: PhaseUnauthenticated}
		return c.state
	}

	c.api.SetToken(token)
	c.state = State{Phase: PhaseNoMeeting, User: &user}
	return c.state
}

// Login signs in and caches the session
func (c *Controller) Login(ctx context.Context, email, password string) (State, error) {
	if strings.TrimSpace(email) == "" || password == "" {
		c.state = c.state.withNotice(MessageError, MsgMissingCredentials)
		return c.state, goerr.Wrap(domain.ErrInvalidInput, MsgMissingCredentials)
	}

	resp, err := c.api.Login(ctx, email, password)
	if err != nil {
		c.state = c.state.withNotice(MessageError, "Login failed: "+err.Error())
		return c.state, err
	}

	if err := c.cache.Set(ctx, localstore.KeyAuthToken, resp.AccessToken); err != nil {
		return c.state, err
	}
	if err := c.cache.Set(ctx, localstore.KeyUser, resp.User); err != nil {
		return c.state, err
	}

	c.api.SetToken(resp.AccessToken)
	c.state = State{Phase: PhaseNoMeeting, User: resp.User}.withNotice(MessageSuccess, MsgSignedIn)
	return c.state, nil
}

// Logout forgets the session. Cached briefs are kept.
func (c *Controller) Logout(ctx context.Context) (State, error) {
	if err := c.cache.Remove(ctx, localstore.KeyAuthToken, localstore.KeyUser); err != nil {
		return c.state, err
	}
	c.api.SetToken("")
	c.state = State{Phase: PhaseUnauthenticated}.withNotice(MessageSuccess, MsgSignedOut)
	return c.state, nil
}

// LoadMeeting detects the meeting on pageURL
func (c *Controller) LoadMeeting(ctx context.Context, pageURL string) State {
	if !c.state.Phase.Authenticated() {
		return c.state
	}

	det := c.detector.Detect(ctx, pageURL)
	next := State{Phase: PhaseNoMeeting, User: c.state.User, Reason: det.Reason}
	if det.Meeting == nil {
		c.state = next.withNotice(MessageInfo, det.Message)
		return c.state
	}

	next.Phase = PhaseMeetingDetected
	next.Meeting = det.Meeting
	next.Source = det.Source
	c.state = next
	return c.state
}

// OpenPopupHandler answers an affordance click by detecting the meeting on pageURL
func (c *Controller) OpenPopupHandler(pageURL string) messaging.Handler {
	return func(ctx context.Context, msg messaging.Message) (messaging.Reply, error) {
		state := c.LoadMeeting(ctx, pageURL)
		if state.Meeting == nil {
			return messaging.Reply{Error: state.Notice}, nil
		}
		return messaging.Reply{Success: true, Meeting: state.Meeting}, nil
	}
}

// SetMeeting replaces the detected meeting, e.g. with one typed by the user
func (c *Controller) SetMeeting(m domain.MeetingRecord) State {
	if !c.state.Phase.Authenticated() {
		return c.state
	}
	c.state = State{Phase: PhaseMeetingDetected, User: c.state.User, Meeting: &m, Source: SourcePage}
	return c.state
}

// GenerateBrief normalizes the current meeting, asks the backend for a brief and caches it
func (c *Controller) GenerateBrief(ctx context.Context) (State, error) {
	if !c.state.Phase.Authenticated() {
		return c.state, ErrNotSignedIn
	}
	if c.state.Meeting == nil {
		c.state = c.state.withNotice(MessageError, MsgNoMeeting)
		return c.state, goerr.Wrap(domain.ErrMeetingNotFound, MsgNoMeeting)
	}

	meeting := c.normalizer.Meeting(*c.state.Meeting)
	userID := ""
	if c.state.User != nil {
		userID = c.state.User.ID
	}

	resp, err := c.api.GenerateBrief(ctx, meeting, userID)
	if err != nil {
		c.state = c.state.withNotice(MessageError, GenerationMessage(err))
		return c.state, err
	}

	meetingID := ""
	if resp.Meeting != nil {
		meetingID = resp.Meeting.ID
		meeting.ID = resp.Meeting.ID
	}
	rec, _, err := c.briefs.PersistGenerated(ctx, meeting, resp.Brief, meetingID)
	if err != nil {
		logging.From(ctx).Warn("failed to cache generated brief", "error", err)
		rec = domain.BriefRecord{Meeting: meeting, Brief: resp.Brief, MeetingID: meetingID}
	}

	next := c.state
	next.Phase = PhaseBriefDisplayed
	next.Meeting = &meeting
	next.Brief = &rec
	next.Usage = resp.Usage
	c.state = next.withNotice(MessageSuccess, MsgBriefGenerated)
	return c.state, nil
}

// GenerationMessage maps a generation failure to what the user is told
func GenerationMessage(err error) string {
	switch {
	case errors.Is(err, domain.ErrUnauthorized):
		return MsgSignInNeeded
	case errors.Is(err, domain.ErrQuotaExceeded):
		return MsgUpgradeNeeded
	default:
		return MsgTryAgain
	}
}
