package delivery

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	authdomain "meetingprep-ai/internal/auth/domain"
	"meetingprep-ai/internal/meeting/domain"
	meetingdto "meetingprep-ai/internal/meeting/dto"
	"meetingprep-ai/internal/meeting/usecase"
	subdto "meetingprep-ai/internal/subscription/dto"
	"meetingprep-ai/pkg/ai"

	"github.com/gin-gonic/gin"
	"github.com/m-mizutani/goerr/v2"
	"github.com/m-mizutani/gt"
)

type mockMeetingUsecase struct {
	GenerateBriefFunc  func(ctx context.Context, userID string, meeting domain.MeetingRecord) (*usecase.GenerateResult, error)
	GetMeetingsFunc    func(ctx context.Context, userID string) ([]domain.BriefRecord, error)
	DeleteMeetingFunc  func(ctx context.Context, userID, meetingID string) error
	SearchMeetingsFunc func(ctx context.Context, userID, query string) ([]domain.BriefRecord, error)
	GetUsageFunc       func(ctx context.Context, userID string) (*subdto.UsageResponse, error)
}

func (m *mockMeetingUsecase) GenerateBrief(ctx context.Context, userID string, meeting domain.MeetingRecord) (*usecase.GenerateResult, error) {
	return m.GenerateBriefFunc(ctx, userID, meeting)
}

func (m *mockMeetingUsecase) GetMeetings(ctx context.Context, userID string) ([]domain.BriefRecord, error) {
	return m.GetMeetingsFunc(ctx, userID)
}

func (m *mockMeetingUsecase) DeleteMeeting(ctx context.Context, userID, meetingID string) error {
	return m.DeleteMeetingFunc(ctx, userID, meetingID)
}

func (m *mockMeetingUsecase) SearchMeetings(ctx context.Context, userID, query string) ([]domain.BriefRecord, error) {
	return m.SearchMeetingsFunc(ctx, userID, query)
}

func (m *mockMeetingUsecase) GetUsage(ctx context.Context, userID string) (*subdto.UsageResponse, error) {
	return m.GetUsageFunc(ctx, userID)
}

func (m *mockMeetingUsecase) SetBriefGenerator(generator ai.BriefGenerator) {}
func (m *mockMeetingUsecase) SetNotifier(notifier usecase.BriefNotifier)    {}

// withUser stands in for the auth middleware: X-Test-User becomes the signed-in user
func withUser(c *gin.Context) {
	if id := c.GetHeader("X-Test-User"); id != "" {
		c.Set("user", &authdomain.User{ID: id, Email: id + "@example.com"})
		c.Set("userID", id)
	}
	c.Next()
}

func setupRouter(uc usecase.MeetingUsecase) *gin.Engine {
	gin.SetMode(gin.TestMode)
	r := gin.New()
	r.Use(withUser)
	h := NewMeetingHandler(uc)
	r.POST("/api/extension/generate-brief", h.GenerateBrief)
	r.GET("/api/extension/get-meetings", h.GetMeetings)
	r.GET("/api/extension/search-meetings", h.SearchMeetings)
	r.DELETE("/api/extension/delete-meeting", h.DeleteMeeting)
	r.GET("/api/extension/usage", h.Usage)
	return r
}

func do(r *gin.Engine, method, target, user, body string) *httptest.ResponseRecorder {
	req := httptest.NewRequest(method, target, strings.NewReader(body))
	if body != "" {
		req.Header.Set("Content-Type", "application/json")
	}
	if user != "" {
		req.Header.Set("X-Test-User", user)
	}
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)
	return w
}

func decodeError(t *testing.T, w *httptest.ResponseRecorder) string {
	t.Helper()
	var resp meetingdto.ErrorResponse
	gt.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	gt.False(t, resp.Success)
	return resp.Error
}

func TestGenerateBriefHandler(t *testing.T) {
	t.Run("missing meeting is rejected", func(t *testing.T) {
		r := setupRouter(&mockMeetingUsecase{})
		w := do(r, http.MethodPost, "/api/extension/generate-brief", "", `{"userId":"u1"}`)
		gt.Equal(t, w.Code, http.StatusBadRequest)
		gt.Equal(t, decodeError(t, w), "Meeting data required")
	})

	t.Run("anonymous request generates without a user", func(t *testing.T) {
		var gotUser string
		uc := &mockMeetingUsecase{
			GenerateBriefFunc: func(ctx context.Context, userID string, meeting domain.MeetingRecord) (*usecase.GenerateResult, error) {
				gotUser = userID
				gt.Equal(t, meeting.Title, "Sync")
				return &usecase.GenerateResult{
					Brief:   domain.BriefContent{Content: "## Meeting Details"},
					Meeting: meeting,
				}, nil
			},
		}
		r := setupRouter(uc)
		w := do(r, http.MethodPost, "/api/extension/generate-brief", "", `{"meeting":{"title":"Sync","attendees":"a@x.com"}}`)
		gt.Equal(t, w.Code, http.StatusOK)
		gt.Equal(t, gotUser, "")

		var resp meetingdto.GenerateBriefResponse
		gt.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
		gt.True(t, resp.Success)
		gt.Equal(t, resp.Brief.Content, "## Meeting Details")
	})

	t.Run("userId must match the bearer user", func(t *testing.T) {
		r := setupRouter(&mockMeetingUsecase{})
		w := do(r, http.MethodPost, "/api/extension/generate-brief", "u2", `{"meeting":{"title":"Sync"},"userId":"u1"}`)
		gt.Equal(t, w.Code, http.StatusUnauthorized)

		w = do(r, http.MethodPost, "/api/extension/generate-brief", "", `{"meeting":{"title":"Sync"},"userId":"u1"}`)
		gt.Equal(t, w.Code, http.StatusUnauthorized)
	})

	t.Run("quota exceeded maps to 403", func(t *testing.T) {
		uc := &mockMeetingUsecase{
			GenerateBriefFunc: func(ctx context.Context, userID string, meeting domain.MeetingRecord) (*usecase.GenerateResult, error) {
				return nil, goerr.Wrap(domain.ErrQuotaExceeded, usecase.MsgQuotaExceeded)
			},
		}
		r := setupRouter(uc)
		w := do(r, http.MethodPost, "/api/extension/generate-brief", "u1", `{"meeting":{"title":"Sync"},"userId":"u1"}`)
		gt.Equal(t, w.Code, http.StatusForbidden)
		gt.Equal(t, decodeError(t, w), usecase.MsgQuotaExceeded)
	})

	t.Run("unexpected failure is hidden", func(t *testing.T) {
		uc := &mockMeetingUsecase{
			GenerateBriefFunc: func(ctx context.Context, userID string, meeting domain.MeetingRecord) (*usecase.GenerateResult, error) {
				return nil, goerr.New("provider exploded")
			},
		}
		r := setupRouter(uc)
		w := do(r, http.MethodPost, "/api/extension/generate-brief", "u1", `{"meeting":{"title":"Sync"},"userId":"u1"}`)
		gt.Equal(t, w.Code, http.StatusInternalServerError)
		gt.Equal(t, decodeError(t, w), "Internal server error")
	})
}

func TestGetMeetingsHandler(t *testing.T) {
	uc := &mockMeetingUsecase{
		GetMeetingsFunc: func(ctx context.Context, userID string) ([]domain.BriefRecord, error) {
			return []domain.BriefRecord{
				{MeetingID: "m1", Meeting: domain.MeetingRecord{ID: "m1", Title: "Weekly"}},
			}, nil
		},
	}
	r := setupRouter(uc)

	t.Run("requires a user", func(t *testing.T) {
		w := do(r, http.MethodGet, "/api/extension/get-meetings?userId=u1", "", "")
		gt.Equal(t, w.Code, http.StatusUnauthorized)
	})

	t.Run("other users are forbidden", func(t *testing.T) {
		w := do(r, http.MethodGet, "/api/extension/get-meetings?userId=u2", "u1", "")
		gt.Equal(t, w.Code, http.StatusForbidden)
	})

	t.Run("lists meetings", func(t *testing.T) {
		w := do(r, http.MethodGet, "/api/extension/get-meetings?userId=u1", "u1", "")
		gt.Equal(t, w.Code, http.StatusOK)

		var resp meetingdto.MeetingsResponse
		gt.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
		gt.True(t, resp.Success)
		gt.A(t, resp.Meetings).Length(1)
		gt.Equal(t, resp.Meetings[0].MeetingID, "m1")
	})
}

func TestSearchMeetingsHandler(t *testing.T) {
	var gotQuery string
	uc := &mockMeetingUsecase{
		SearchMeetingsFunc: func(ctx context.Context, userID, query string) ([]domain.BriefRecord, error) {
			gotQuery = query
			return nil, nil
		},
	}
	r := setupRouter(uc)

	w := do(r, http.MethodGet, "/api/extension/search-meetings", "u1", "")
	gt.Equal(t, w.Code, http.StatusBadRequest)

	w = do(r, http.MethodGet, "/api/extension/search-meetings?q=roadmap", "u1", "")
	gt.Equal(t, w.Code, http.StatusOK)
	gt.Equal(t, gotQuery, "roadmap")
}

func TestDeleteMeetingHandler(t *testing.T) {
	uc := &mockMeetingUsecase{
		DeleteMeetingFunc: func(ctx context.Context, userID, meetingID string) error {
			if meetingID == "missing" {
				return goerr.Wrap(domain.ErrNotFound, "meeting not found")
			}
			return nil
		},
	}
	r := setupRouter(uc)

	t.Run("both ids are required", func(t *testing.T) {
		w := do(r, http.MethodDelete, "/api/extension/delete-meeting?meetingId=m1", "u1", "")
		gt.Equal(t, w.Code, http.StatusBadRequest)
		gt.Equal(t, decodeError(t, w), "Meeting ID and User ID required")
	})

	t.Run("missing meeting is 404", func(t *testing.T) {
		w := do(r, http.MethodDelete, "/api/extension/delete-meeting?meetingId=missing&userId=u1", "u1", "")
		gt.Equal(t, w.Code, http.StatusNotFound)
	})

	t.Run("deletes", func(t *testing.T) {
		w := do(r, http.MethodDelete, "/api/extension/delete-meeting?meetingId=m1&userId=u1", "u1", "")
		gt.Equal(t, w.Code, http.StatusOK)

		var resp meetingdto.DeleteMeetingResponse
		gt.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
		gt.True(t, resp.Success)
		gt.Equal(t, resp.Message, "Meeting deleted successfully")
	})
}

func TestUsageHandler(t *testing.T) {
	uc := &mockMeetingUsecase{
		GetUsageFunc: func(ctx context.Context, userID string) (*subdto.UsageResponse, error) {
			return &subdto.UsageResponse{Plan: "free", BriefsUsed: 3, BriefsLimit: 20}, nil
		},
	}
	r := setupRouter(uc)

	w := do(r, http.MethodGet, "/api/extension/usage", "u1", "")
	gt.Equal(t, w.Code, http.StatusOK)

	var resp struct {
		Success bool                 `json:"success"`
		Usage   subdto.UsageResponse `json:"usage"`
	}
	gt.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	gt.True(t, resp.Success)
	gt.Equal(t, resp.Usage.BriefsUsed, 3)
}
