package cli

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"sync/atomic"
	"testing"
	"time"

	"github.com/m-mizutani/gt"

	authdomain "meetingprep-ai/internal/auth/domain"
	authdto "meetingprep-ai/internal/auth/dto"
	"meetingprep-ai/internal/client"
	"meetingprep-ai/internal/localstore"
	"meetingprep-ai/internal/meeting/domain"
	meetingdto "meetingprep-ai/internal/meeting/dto"
	"meetingprep-ai/internal/popup"
	"meetingprep-ai/pkg/config"
)

var fixedNow = time.Date(2025, 10, 20, 9, 0, 0, 0, time.UTC)

func setup(t *testing.T, handler http.Handler) *Dependencies {
	t.Helper()
	srv := httptest.NewServer(handler)
	t.Cleanup(srv.Close)

	store, err := localstore.Open(filepath.Join(t.TempDir(), "local.db"))
	gt.NoError(t, err)
	t.Cleanup(func() { store.Close() })

	return &Dependencies{
		Config: &config.ClientConfig{
			APIBase:        srv.URL,
			RequestTimeout: 2 * time.Second,
			WatchInterval:  time.Second,
			ExcludedNames:  []string{"Google Meet"},
			CalendarID:     "primary",
		},
		Store: store,
		API:   client.New(srv.URL),
		Now:   func() time.Time { return fixedNow },
	}
}

func signIn(t *testing.T, deps *Dependencies) {
	t.Helper()
	ctx := context.Background()
	gt.NoError(t, deps.Store.Set(ctx, localstore.KeyAuthToken, "tok"))
	gt.NoError(t, deps.Store.Set(ctx, localstore.KeyUser, authdomain.User{ID: "u1", Email: "olivia@example.com"}))
}

func execute(deps *Dependencies, args ...string) (string, error) {
	var buf bytes.Buffer
	cmd := NewRootCmd(deps)
	cmd.SetOut(&buf)
	cmd.SetErr(&buf)
	cmd.SetArgs(args)
	err := cmd.ExecuteContext(context.Background())
	return buf.String(), err
}

func writeJSON(w http.ResponseWriter, status int, v interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

func failing(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusInternalServerError, meetingdto.ErrorResponse{Error: "boom"})
}

func TestLoginCachesSession(t *testing.T) {
	mux := http.NewServeMux()
	mux.HandleFunc("/api/auth/login", func(w http.ResponseWriter, r *http.Request) {
		var req authdto.LoginRequest
		_ = json.NewDecoder(r.Body).Decode(&req)
		if req.Password != "secret" {
			writeJSON(w, http.StatusUnauthorized, meetingdto.ErrorResponse{Error: "invalid email or password"})
			return
		}
		writeJSON(w, http.StatusOK, authdto.TokenResponse{
			AccessToken: "tok",
			User:        &authdomain.User{ID: "u1", Email: req.Email},
		})
	})
	deps := setup(t, mux)

	out, err := execute(deps, "login", "--email", "olivia@example.com", "--password", "secret")
	gt.NoError(t, err)
	gt.S(t, out).Contains(popup.MsgSignedIn)

	var token string
	ok, err := deps.Store.GetJSON(context.Background(), localstore.KeyAuthToken, &token)
	gt.NoError(t, err)
	gt.True(t, ok)
	gt.Equal(t, token, "tok")

	out, err = execute(deps, "logout")
	gt.NoError(t, err)
	gt.S(t, out).Contains(popup.MsgSignedOut)
}

func TestLoginMissingPassword(t *testing.T) {
	t.Setenv("MEETINGPREP_PASSWORD", "")
	deps := setup(t, http.NotFoundHandler())

	_, err := execute(deps, "login", "--email", "olivia@example.com")
	gt.True(t, errors.Is(err, domain.ErrInvalidInput))
}

func TestBriefRequiresSignIn(t *testing.T) {
	deps := setup(t, http.NotFoundHandler())

	_, err := execute(deps, "brief", "--title", "Sync")
	gt.True(t, errors.Is(err, popup.ErrNotSignedIn))
	gt.Equal(t, Message(err), "Not signed in. Run `meetingprep login` first.")
}

func TestBriefFromFlags(t *testing.T) {
	var tracked atomic.Int32
	mux := http.NewServeMux()
	mux.HandleFunc("/api/extension/generate-brief", func(w http.ResponseWriter, r *http.Request) {
		if r.Header.Get("Authorization") != "Bearer tok" {
			writeJSON(w, http.StatusUnauthorized, meetingdto.ErrorResponse{Error: "unauthorized"})
			return
		}
		var req meetingdto.GenerateBriefRequest
		_ = json.NewDecoder(r.Body).Decode(&req)
		if req.Meeting == nil || req.UserID != "u1" {
			writeJSON(w, http.StatusBadRequest, meetingdto.ErrorResponse{Error: "Meeting data required"})
			return
		}
		m := *req.Meeting
		m.ID = "m1"
		writeJSON(w, http.StatusOK, meetingdto.GenerateBriefResponse{
			Success: true,
			Brief:   domain.BriefContent{Content: "## Meeting Details\n- **Title:** " + m.Title},
			Meeting: &m,
		})
	})
	mux.HandleFunc("/api/extension/analytics", func(w http.ResponseWriter, r *http.Request) {
		tracked.Add(1)
		writeJSON(w, http.StatusAccepted, map[string]interface{}{"success": true})
	})
	deps := setup(t, mux)
	signIn(t, deps)

	htmlPath := filepath.Join(t.TempDir(), "brief.html")
	out, err := execute(deps, "brief", "--title", "Roadmap review", "--date", "2025-10-23", "--time", "3:00pm",
		"--attendee", "marcus@example.com", "--html", htmlPath)
	gt.NoError(t, err)
	gt.S(t, out).Contains(popup.MsgBriefGenerated)
	gt.S(t, out).Contains("Roadmap review")
	gt.Equal(t, tracked.Load(), int32(1))

	var latest domain.BriefRecord
	ok, err := deps.Store.GetJSON(context.Background(), localstore.KeyLatestBrief, &latest)
	gt.NoError(t, err)
	gt.True(t, ok)
	gt.Equal(t, latest.MeetingID, "m1")
	gt.Equal(t, latest.Meeting.Time, "15:00")

	page, err := os.ReadFile(htmlPath)
	gt.NoError(t, err)
	gt.S(t, string(page)).Contains("Meeting Details")
}

func TestDetectFromSnapshot(t *testing.T) {
	deps := setup(t, http.NotFoundHandler())
	signIn(t, deps)

	page := filepath.Join(t.TempDir(), "calendar.html")
	gt.NoError(t, os.WriteFile(page, []byte(`<html><body>
<div class="calendar-event selected"><span class="title"> Design sync </span></div>
</body></html>`), 0o644))

	out, err := execute(deps, "detect", "--page", page)
	gt.NoError(t, err)
	gt.S(t, out).Contains("Title: Design sync")
}

func TestDetectFromEventButton(t *testing.T) {
	deps := setup(t, http.NotFoundHandler())
	signIn(t, deps)

	page := filepath.Join(t.TempDir(), "calendar.html")
	gt.NoError(t, os.WriteFile(page, []byte(`<html><body>
<div class="calendar-event" data-eventid="e1">Roadmap review</div>
<div role="dialog">
  <h2>Roadmap review</h2>
  <div>Thursday, 23 October</div>
  <div>10:00 – 11:00pm</div>
</div>
</body></html>`), 0o644))

	out, err := execute(deps, "detect", "--page", page, "--event", "e1")
	gt.NoError(t, err)
	gt.S(t, out).Contains("Title: Roadmap review")

	_, err = execute(deps, "detect", "--page", page, "--event", "e9")
	gt.True(t, errors.Is(err, domain.ErrMeetingNotFound))

	_, err = execute(deps, "detect", "--event", "e1")
	gt.Error(t, err)
}

func TestDetectWithoutPageUsesPlaceholder(t *testing.T) {
	deps := setup(t, http.NotFoundHandler())
	signIn(t, deps)

	out, err := execute(deps, "detect")
	gt.NoError(t, err)
	gt.S(t, out).Contains(domain.DefaultTitle)
	gt.S(t, out).Contains("could not be read")
}

func TestListFallsBackToCache(t *testing.T) {
	mux := http.NewServeMux()
	mux.HandleFunc("/api/extension/get-meetings", failing)
	deps := setup(t, mux)
	signIn(t, deps)

	ctx := context.Background()
	rec := domain.BriefRecord{
		Meeting:     domain.MeetingRecord{Title: "Offline planning", Date: "2025-10-22"},
		Brief:       domain.BriefContent{Content: "## Meeting Details"},
		GeneratedAt: fixedNow,
	}
	gt.NoError(t, deps.Store.Set(ctx, deps.Store.NewSlotKey(fixedNow), rec))

	out, err := execute(deps, "list")
	gt.NoError(t, err)
	gt.S(t, out).Contains("from local cache")
	gt.S(t, out).Contains("Offline planning")
}

func TestDeleteLocalOnlyBrief(t *testing.T) {
	var deletes atomic.Int32
	mux := http.NewServeMux()
	mux.HandleFunc("/api/extension/get-meetings", failing)
	mux.HandleFunc("/api/extension/delete-meeting", func(w http.ResponseWriter, r *http.Request) {
		deletes.Add(1)
		writeJSON(w, http.StatusOK, meetingdto.DeleteMeetingResponse{Success: true})
	})
	deps := setup(t, mux)
	signIn(t, deps)

	rec := domain.BriefRecord{Meeting: domain.MeetingRecord{Title: "Local only"}, GeneratedAt: fixedNow}
	gt.NoError(t, deps.Store.Set(context.Background(), deps.Store.NewSlotKey(fixedNow), rec))

	_, err := execute(deps, "delete", "1")
	gt.True(t, errors.Is(err, domain.ErrNoRemoteID))
	gt.Equal(t, Message(err), domain.ErrNoRemoteID.Error())
	gt.Equal(t, deletes.Load(), int32(0))
}

func remoteList(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, meetingdto.MeetingsResponse{
		Success: true,
		Meetings: []domain.BriefRecord{
			{
				MeetingID:   "m1",
				Meeting:     domain.MeetingRecord{ID: "m1", Title: "Weekly sync", Date: "2025-10-21"},
				Brief:       domain.BriefContent{Content: "## Key Talking Points\n- Hiring"},
				GeneratedAt: fixedNow,
			},
			{
				MeetingID:   "m2",
				Meeting:     domain.MeetingRecord{ID: "m2", Title: "Retro", Date: "2025-10-01"},
				Brief:       domain.BriefContent{Content: "## Research Notes"},
				GeneratedAt: fixedNow.Add(-time.Hour),
			},
		},
	})
}

func TestDeleteRemoteBrief(t *testing.T) {
	var gotID string
	mux := http.NewServeMux()
	mux.HandleFunc("/api/extension/get-meetings", remoteList)
	mux.HandleFunc("/api/extension/delete-meeting", func(w http.ResponseWriter, r *http.Request) {
		gotID = r.URL.Query().Get("meetingId")
		writeJSON(w, http.StatusOK, meetingdto.DeleteMeetingResponse{Success: true, Message: "Meeting deleted successfully"})
	})
	deps := setup(t, mux)
	signIn(t, deps)

	out, err := execute(deps, "delete", "m2")
	gt.NoError(t, err)
	gt.Equal(t, gotID, "m2")
	gt.S(t, out).Contains("Brief deleted: Retro")
}

func TestViewAndCopyAll(t *testing.T) {
	mux := http.NewServeMux()
	mux.HandleFunc("/api/extension/get-meetings", remoteList)
	deps := setup(t, mux)
	signIn(t, deps)

	out, err := execute(deps, "view", "1")
	gt.NoError(t, err)
	gt.S(t, out).Contains("Weekly sync")
	gt.S(t, out).Contains("• Hiring")

	out, err = execute(deps, "copy-all")
	gt.NoError(t, err)
	gt.S(t, out).Contains("MEETING BRIEFS")
	gt.S(t, out).Contains("Retro")

	_, err = execute(deps, "view", "7")
	gt.True(t, errors.Is(err, domain.ErrNotFound))
}

func TestMessage(t *testing.T) {
	gt.Equal(t, Message(domain.ErrQuotaExceeded), popup.MsgUpgradeNeeded)
	gt.Equal(t, Message(domain.ErrUnauthorized), popup.MsgSignInNeeded)
	gt.Equal(t, Message(errors.New("plain")), "plain")
}
