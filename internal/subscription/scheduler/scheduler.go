package scheduler

import (
	"context"
	"sync"
	"time"

	"meetingprep-ai/pkg/logging"
)

// Resetter starts new usage periods for subscriptions whose period ended
type Resetter interface {
	ResetExpired(now time.Time) (int, error)
}

// UsageResetScheduler periodically rolls ended usage periods forward
type UsageResetScheduler struct {
	resetter Resetter
	interval time.Duration
	now      func() time.Time
	stopChan chan struct{}
	stopOnce sync.Once
	done     chan struct{}

	mu      sync.Mutex
	started bool
}

// NewUsageResetScheduler creates a new scheduler
func NewUsageResetScheduler(resetter Resetter, interval time.Duration) *UsageResetScheduler {
	if interval <= 0 {
		interval = time.Hour
	}
	return &UsageResetScheduler{
		resetter: resetter,
		interval: interval,
		now:      time.Now,
		stopChan: make(chan struct{}),
		done:     make(chan struct{}),
	}
}

// Start begins the scheduler loop
func (s *UsageResetScheduler) Start(ctx context.Context) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.started {
		return
	}
	s.started = true

	logger := logging.From(ctx)
	logger.Info("[UsageScheduler] Starting usage reset scheduler", "interval", s.interval)

	go func() {
		defer close(s.done)

		// Run immediately on start
		s.runOnce(ctx)

		ticker := time.NewTicker(s.interval)
		defer ticker.Stop()

		for {
			select {
			case <-ticker.C:
				s.runOnce(ctx)
			case <-s.stopChan:
				logger.Info("[UsageScheduler] Scheduler stopped")
				return
			case <-ctx.Done():
				return
			}
		}
	}()
}

// Stop gracefully stops the scheduler and waits for the loop to exit
func (s *UsageResetScheduler) Stop() {
	s.stopOnce.Do(func() { close(s.stopChan) })

	s.mu.Lock()
	started := s.started
	s.mu.Unlock()
	if started {
		<-s.done
	}
}

func (s *UsageResetScheduler) runOnce(ctx context.Context) {
	n, err := s.resetter.ResetExpired(s.now())
	if err != nil {
		logging.From(ctx).Error("[UsageScheduler] Reset failed", "error", err, "reset", n)
		return
	}
	if n > 0 {
		logging.From(ctx).Info("[UsageScheduler] Reset usage periods", "count", n)
	}
}
