// Package client talks to the MeetingPrep backend API on behalf of the CLI.
package client

import (
	"bytes"
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/m-mizutani/goerr/v2"

	analyticsdto "meetingprep-ai/internal/analytics/dto"
	authdomain "meetingprep-ai/internal/auth/domain"
	authdto "meetingprep-ai/internal/auth/dto"
	"meetingprep-ai/internal/meeting/domain"
	meetingdto "meetingprep-ai/internal/meeting/dto"
	subdto "meetingprep-ai/internal/subscription/dto"
)

// DefaultTimeout bounds every API call
const DefaultTimeout = 10 * time.Second

var (
	ErrServer            = goerr.New("server error")
	ErrMalformedResponse = goerr.New("malformed response")
)

// Client is a backend API client
type Client struct {
	baseURL    string
	token      string
	httpClient *http.Client
}

// Option configures a Client
type Option func(*Client)

// WithHTTPClient replaces the underlying HTTP client
func WithHTTPClient(hc *http.Client) Option {
	return func(c *Client) { c.httpClient = hc }
}

// WithToken sets the bearer token sent with every request
func WithToken(token string) Option {
	return func(c *Client) { c.token = token }
}

// New creates a client for the API rooted at baseURL
func New(baseURL string, opts ...Option) *Client {
	c := &Client{
		baseURL:    strings.TrimRight(baseURL, "/"),
		httpClient: &http.Client{Timeout: DefaultTimeout},
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// SetToken replaces the bearer token, e.g. after signing in
func (c *Client) SetToken(token string) {
	c.token = token
}

// Login exchanges credentials for tokens
func (c *Client) Login(ctx context.Context, email, password string) (*authdto.TokenResponse, error) {
	var out authdto.TokenResponse
	req := authdto.LoginRequest{Email: email, Password: password}
	if err := c.do(ctx, http.MethodPost, "/api/auth/login", nil, req, &out); err != nil {
		return nil, err
	}
	if out.User == nil {
		return nil, goerr.Wrap(ErrMalformedResponse, "no user data received")
	}
	return &out, nil
}

// Me returns the user owning the current token
func (c *Client) Me(ctx context.Context) (*authdomain.User, error) {
	var out authdomain.User
	if err := c.do(ctx, http.MethodGet, "/api/auth/me", nil, nil, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

// GenerateBrief asks the backend to generate, and for signed-in users persist, a brief
func (c *Client) GenerateBrief(ctx context.Context, meeting domain.MeetingRecord, userID string) (*meetingdto.GenerateBriefResponse, error) {
	var out meetingdto.GenerateBriefResponse
	req := meetingdto.GenerateBriefRequest{Meeting: &meeting, UserID: userID}
	if err := c.do(ctx, http.MethodPost, "/api/extension/generate-brief", nil, req, &out); err != nil {
		return nil, err
	}
	if !out.Success || out.Brief.Content == "" {
		return nil, goerr.Wrap(ErrMalformedResponse, "brief missing from response")
	}
	return &out, nil
}

// GetMeetings lists the user's saved briefs, newest meeting first
func (c *Client) GetMeetings(ctx context.Context, userID string) ([]domain.BriefRecord, error) {
	var out meetingdto.MeetingsResponse
	q := url.Values{"userId": {userID}}
	if err := c.do(ctx, http.MethodGet, "/api/extension/get-meetings", q, nil, &out); err != nil {
		return nil, err
	}
	if !out.Success {
		return nil, goerr.Wrap(ErrServer, "get-meetings reported failure")
	}
	return out.Meetings, nil
}

// SearchMeetings fuzzy-matches the user's meetings against query
func (c *Client) SearchMeetings(ctx context.Context, userID, query string) ([]domain.BriefRecord, error) {
	var out meetingdto.MeetingsResponse
	q := url.Values{"userId": {userID}, "q": {query}}
	if err := c.do(ctx, http.MethodGet, "/api/extension/search-meetings", q, nil, &out); err != nil {
		return nil, err
	}
	return out.Meetings, nil
}

// DeleteMeeting removes a meeting and its briefs
func (c *Client) DeleteMeeting(ctx context.Context, meetingID, userID string) error {
	q := url.Values{"meetingId": {meetingID}, "userId": {userID}}
	var out meetingdto.DeleteMeetingResponse
	return c.do(ctx, http.MethodDelete, "/api/extension/delete-meeting", q, nil, &out)
}

// Usage returns the user's brief quota
func (c *Client) Usage(ctx context.Context, userID string) (*subdto.UsageResponse, error) {
	var out struct {
		Success bool                 `json:"success"`
		Usage   subdto.UsageResponse `json:"usage"`
	}
	q := url.Values{"userId": {userID}}
	if err := c.do(ctx, http.MethodGet, "/api/extension/usage", q, nil, &out); err != nil {
		return nil, err
	}
	return &out.Usage, nil
}

// TrackEvent records a usage analytics event
func (c *Client) TrackEvent(ctx context.Context, ev analyticsdto.TrackEventRequest) error {
	return c.do(ctx, http.MethodPost, "/api/extension/analytics", nil, ev, nil)
}

func (c *Client) do(ctx context.Context, method, path string, query url.Values, in, out interface{}) error {
	endpoint := c.baseURL + path
	if len(query) > 0 {
		endpoint += "?" + query.Encode()
	}

	var body io.Reader
	if in != nil {
		data, err := json.Marshal(in)
		if err != nil {
			return goerr.Wrap(err, "failed to marshal request")
		}
		body = bytes.NewReader(data)
	}

	req, err := http.NewRequestWithContext(ctx, method, endpoint, body)
	if err != nil {
		return goerr.Wrap(err, "failed to build request", goerr.V("path", path))
	}
	req.Header.Set("Content-Type", "application/json")
	if c.token != "" {
		req.Header.Set("Authorization", "Bearer "+c.token)
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return goerr.Wrap(domain.ErrNetwork, err.Error(), goerr.V("path", path))
	}
	defer resp.Body.Close()

	respBody, err := io.ReadAll(resp.Body)
	if err != nil {
		return goerr.Wrap(domain.ErrNetwork, "failed to read response", goerr.V("path", path))
	}

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return statusError(resp.StatusCode, respBody, path)
	}

	if out == nil {
		return nil
	}
	if err := json.Unmarshal(respBody, out); err != nil {
		return goerr.Wrap(ErrMalformedResponse, err.Error(), goerr.V("path", path))
	}
	return nil
}

func statusError(status int, body []byte, path string) error {
	var payload meetingdto.ErrorResponse
	_ = json.Unmarshal(body, &payload)
	msg := payload.Error
	if msg == "" {
		msg = http.StatusText(status)
	}

	var sentinel error
	switch status {
	case http.StatusUnauthorized:
		sentinel = domain.ErrUnauthorized
	case http.StatusForbidden:
		sentinel = domain.ErrQuotaExceeded
	case http.StatusNotFound:
		sentinel = domain.ErrNotFound
	case http.StatusBadRequest:
		sentinel = domain.ErrInvalidInput
	default:
		sentinel = ErrServer
	}
	return goerr.Wrap(sentinel, msg, goerr.V("status", status), goerr.V("path", path))
}
