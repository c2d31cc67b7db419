package delivery

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"meetingprep-ai/internal/analytics/domain"
	"meetingprep-ai/internal/analytics/dto"
	"meetingprep-ai/internal/analytics/usecase"

	"github.com/gin-gonic/gin"
	"github.com/m-mizutani/goerr/v2"
	"github.com/m-mizutani/gt"
)

type mockAnalyticsUsecase struct {
	TrackFunc   func(req *dto.TrackEventRequest) (*domain.AnalyticsEvent, error)
	SummaryFunc func(since time.Time) (map[string]int64, error)
}

func (m *mockAnalyticsUsecase) Track(req *dto.TrackEventRequest) (*domain.AnalyticsEvent, error) {
	return m.TrackFunc(req)
}

func (m *mockAnalyticsUsecase) Summary(since time.Time) (map[string]int64, error) {
	return m.SummaryFunc(since)
}

func setupRouter(uc usecase.AnalyticsUsecase, now time.Time) *gin.Engine {
	gin.SetMode(gin.TestMode)
	r := gin.New()
	h := NewAnalyticsHandler(uc)
	h.now = func() time.Time { return now }
	r.POST("/api/extension/analytics", h.Track)
	r.GET("/api/analytics/summary", h.Summary)
	return r
}

func post(r *gin.Engine, body string) *httptest.ResponseRecorder {
	req := httptest.NewRequest(http.MethodPost, "/api/extension/analytics", strings.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)
	return w
}

func TestTrackHandler(t *testing.T) {
	uc := &mockAnalyticsUsecase{
		TrackFunc: func(req *dto.TrackEventRequest) (*domain.AnalyticsEvent, error) {
			switch req.EventType {
			case "":
				return nil, usecase.ErrEventTypeRequired
			case "flood":
				return nil, goerr.Wrap(usecase.ErrQueueFull, "event dropped")
			}
			return &domain.AnalyticsEvent{ID: "ev-1", EventType: req.EventType}, nil
		},
	}
	r := setupRouter(uc, time.Now())

	t.Run("missing event type", func(t *testing.T) {
		w := post(r, `{"userId":"u1"}`)
		gt.Equal(t, w.Code, http.StatusBadRequest)
	})

	t.Run("malformed body", func(t *testing.T) {
		w := post(r, `{`)
		gt.Equal(t, w.Code, http.StatusBadRequest)
	})

	t.Run("queue full", func(t *testing.T) {
		w := post(r, `{"eventType":"flood"}`)
		gt.Equal(t, w.Code, http.StatusServiceUnavailable)
	})

	t.Run("accepted", func(t *testing.T) {
		w := post(r, `{"eventType":"brief_generated","metadata":{"n":1}}`)
		gt.Equal(t, w.Code, http.StatusAccepted)

		var resp dto.TrackEventResponse
		gt.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
		gt.True(t, resp.Success)
		gt.Equal(t, resp.EventID, "ev-1")
	})
}

func TestSummaryHandler(t *testing.T) {
	now := time.Date(2025, 10, 20, 12, 0, 0, 0, time.UTC)
	var gotSince time.Time
	uc := &mockAnalyticsUsecase{
		SummaryFunc: func(since time.Time) (map[string]int64, error) {
			gotSince = since
			return map[string]int64{"brief_generated": 4}, nil
		},
	}
	r := setupRouter(uc, now)

	req := httptest.NewRequest(http.MethodGet, "/api/analytics/summary?days=2", nil)
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)
	gt.Equal(t, w.Code, http.StatusOK)
	gt.Equal(t, gotSince, now.AddDate(0, 0, -2))

	var resp dto.SummaryResponse
	gt.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	gt.Equal(t, resp.Counts["brief_generated"], int64(4))

	req = httptest.NewRequest(http.MethodGet, "/api/analytics/summary?days=0", nil)
	w = httptest.NewRecorder()
	r.ServeHTTP(w, req)
	gt.Equal(t, w.Code, http.StatusBadRequest)
}
