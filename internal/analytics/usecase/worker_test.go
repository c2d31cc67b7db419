package usecase

import (
	"context"
	"encoding/json"
	"errors"
	"sync"
	"testing"
	"time"

	"meetingprep-ai/internal/analytics/domain"
	"meetingprep-ai/internal/analytics/dto"

	"github.com/m-mizutani/gt"
)

type memoryAnalyticsRepo struct {
	mu     sync.Mutex
	events []*domain.AnalyticsEvent
	fail   bool
}

func (m *memoryAnalyticsRepo) CreateBatch(events []*domain.AnalyticsEvent) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.fail {
		return errors.New("db down")
	}
	m.events = append(m.events, events...)
	return nil
}

func (m *memoryAnalyticsRepo) CountByType(since time.Time) (map[string]int64, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	counts := map[string]int64{}
	for _, ev := range m.events {
		if !ev.CreatedAt.Before(since) {
			counts[ev.EventType]++
		}
	}
	return counts, nil
}

type recordingPublisher struct {
	mu  sync.Mutex
	ids []string
}

func (p *recordingPublisher) Publish(ctx context.Context, event *domain.AnalyticsEvent) error {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.ids = append(p.ids, event.ID)
	return nil
}

func TestTrackRequiresEventType(t *testing.T) {
	w := NewEventWorker(&memoryAnalyticsRepo{}, 1, 10)
	_, err := w.Track(&dto.TrackEventRequest{EventType: "  "})
	gt.True(t, errors.Is(err, ErrEventTypeRequired))
}

func TestTrackStoresAndPublishes(t *testing.T) {
	repo := &memoryAnalyticsRepo{}
	pub := &recordingPublisher{}
	w := NewEventWorker(repo, 2, 10)
	w.SetPublisher(pub)
	fixed := time.Date(2025, 10, 20, 9, 0, 0, 0, time.UTC)
	w.now = func() time.Time { return fixed }
	w.Start()

	ev, err := w.Track(&dto.TrackEventRequest{
		EventType: "brief_generated",
		UserID:    " u1 ",
		Metadata:  map[string]interface{}{"source": "popup"},
	})
	gt.NoError(t, err)
	gt.Equal(t, ev.UserID, "u1")
	gt.Equal(t, ev.CreatedAt, fixed)

	var meta map[string]string
	gt.NoError(t, json.Unmarshal(ev.Metadata, &meta))
	gt.Equal(t, meta["source"], "popup")

	_, err = w.Track(&dto.TrackEventRequest{EventType: "popup_opened"})
	gt.NoError(t, err)

	w.Stop()

	gt.A(t, repo.events).Length(2)
	gt.A(t, pub.ids).Length(2)

	counts, err := w.Summary(fixed.Add(-time.Hour))
	gt.NoError(t, err)
	gt.Equal(t, counts["brief_generated"], int64(1))
	gt.Equal(t, counts["popup_opened"], int64(1))
}

func TestTrackQueueFull(t *testing.T) {
	w := NewEventWorker(&memoryAnalyticsRepo{}, 1, 1)

	_, err := w.Track(&dto.TrackEventRequest{EventType: "a"})
	gt.NoError(t, err)

	_, err = w.Track(&dto.TrackEventRequest{EventType: "b"})
	gt.True(t, errors.Is(err, ErrQueueFull))
}

func TestTrackAfterStop(t *testing.T) {
	w := NewEventWorker(&memoryAnalyticsRepo{}, 1, 10)
	w.Start()
	w.Stop()
	w.Stop()

	_, err := w.Track(&dto.TrackEventRequest{EventType: "a"})
	gt.True(t, errors.Is(err, ErrQueueFull))
}

func TestStoreFailureSkipsPublish(t *testing.T) {
	repo := &memoryAnalyticsRepo{fail: true}
	pub := &recordingPublisher{}
	w := NewEventWorker(repo, 1, 10)
	w.SetPublisher(pub)
	w.Start()

	_, err := w.Track(&dto.TrackEventRequest{EventType: "a"})
	gt.NoError(t, err)
	w.Stop()

	gt.A(t, pub.ids).Length(0)
}
