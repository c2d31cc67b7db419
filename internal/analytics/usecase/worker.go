package usecase

import (
	"context"
	"encoding/json"
	"strings"
	"sync"
	"time"

	"meetingprep-ai/internal/analytics/domain"
	"meetingprep-ai/internal/analytics/dto"
	"meetingprep-ai/internal/analytics/repository"
	"meetingprep-ai/pkg/logging"

	"github.com/google/uuid"
	"github.com/m-mizutani/goerr/v2"
	"gorm.io/datatypes"
)

var (
	ErrEventTypeRequired = goerr.New("event type required")
	ErrQueueFull         = goerr.New("analytics queue full")
)

const (
	defaultQueueSize = 1000
	maxBatch         = 50
	publishTimeout   = 5 * time.Second
)

// EventWorker stores analytics events in the background
type EventWorker struct {
	repo        repository.AnalyticsRepository
	publisher   Publisher
	queue       chan *domain.AnalyticsEvent
	workerWg    sync.WaitGroup
	workerCount int
	started     bool
	stopped     bool
	mu          sync.RWMutex
	now         func() time.Time
}

func NewEventWorker(repo repository.AnalyticsRepository, workerCount, queueSize int) *EventWorker {
	if workerCount <= 0 {
		workerCount = 2
	}
	if queueSize <= 0 {
		queueSize = defaultQueueSize
	}

	return &EventWorker{
		repo:        repo,
		queue:       make(chan *domain.AnalyticsEvent, queueSize),
		workerCount: workerCount,
		now:         time.Now,
	}
}

// SetPublisher enables fan-out of every stored event
func (w *EventWorker) SetPublisher(p Publisher) {
	w.publisher = p
}

func (w *EventWorker) Start() {
	w.mu.Lock()
	defer w.mu.Unlock()

	if w.started || w.stopped {
		return
	}

	for i := 0; i < w.workerCount; i++ {
		w.workerWg.Add(1)
		go w.worker(i)
	}
	w.started = true
	logging.Default().Info("[Analytics] workers started", "count", w.workerCount)
}

// Stop drains the queue and waits for in-flight batches
func (w *EventWorker) Stop() {
	w.mu.Lock()
	if w.stopped {
		w.mu.Unlock()
		return
	}
	w.stopped = true
	close(w.queue)
	started := w.started
	w.mu.Unlock()

	if started {
		w.workerWg.Wait()
	}
	logging.Default().Info("[Analytics] workers stopped")
}

// Track validates a request and queues the resulting event without blocking
func (w *EventWorker) Track(req *dto.TrackEventRequest) (*domain.AnalyticsEvent, error) {
	eventType := strings.TrimSpace(req.EventType)
	if eventType == "" {
		return nil, ErrEventTypeRequired
	}

	var metadata datatypes.JSON
	if len(req.Metadata) > 0 {
		data, err := json.Marshal(req.Metadata)
		if err != nil {
			return nil, goerr.Wrap(err, "failed to encode metadata", goerr.V("event_type", eventType))
		}
		metadata = datatypes.JSON(data)
	}

	event := &domain.AnalyticsEvent{
		ID:          uuid.New().String(),
		EventType:   eventType,
		UserID:      strings.TrimSpace(req.UserID),
		UserEmail:   strings.TrimSpace(req.UserEmail),
		ExtensionID: req.ExtensionID,
		Metadata:    metadata,
		CreatedAt:   w.now().UTC(),
	}

	if !w.queueEvent(event) {
		return nil, goerr.Wrap(ErrQueueFull, "event dropped", goerr.V("event_type", eventType))
	}
	return event, nil
}

// Summary counts stored events per type since the given time
func (w *EventWorker) Summary(since time.Time) (map[string]int64, error) {
	counts, err := w.repo.CountByType(since)
	if err != nil {
		return nil, goerr.Wrap(err, "failed to count analytics events")
	}
	return counts, nil
}

func (w *EventWorker) queueEvent(event *domain.AnalyticsEvent) bool {
	w.mu.RLock()
	defer w.mu.RUnlock()

	if w.stopped {
		return false
	}
	select {
	case w.queue <- event:
		return true
	default:
		return false
	}
}

func (w *EventWorker) worker(id int) {
	defer w.workerWg.Done()

	for event := range w.queue {
		batch := []*domain.AnalyticsEvent{event}
	drain:
		for len(batch) < maxBatch {
			select {
			case next, ok := <-w.queue:
				if !ok {
					break drain
				}
				batch = append(batch, next)
			default:
				break drain
			}
		}
		w.processBatch(batch)
	}

	logging.Default().Debug("[Analytics] worker stopped", "worker", id)
}

func (w *EventWorker) processBatch(batch []*domain.AnalyticsEvent) {
	if err := w.repo.CreateBatch(batch); err != nil {
		logging.Default().Error("[Analytics] failed to store events", "error", err, "count", len(batch))
		return
	}

	if w.publisher == nil {
		return
	}
	for _, event := range batch {
		ctx, cancel := context.WithTimeout(context.Background(), publishTimeout)
		if err := w.publisher.Publish(ctx, event); err != nil {
			logging.Default().Warn("[Analytics] publish failed", "error", err, "id", event.ID)
		}
		cancel()
	}
}
