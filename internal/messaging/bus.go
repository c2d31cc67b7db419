// Package messaging carries request/reply and fire-and-forget messages between the
// page context (scraper) and the popup/background contexts.
package messaging

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/m-mizutani/goerr/v2"

	"meetingprep-ai/internal/meeting/domain"
	"meetingprep-ai/pkg/logging"
)

// Actions understood by the page context
const (
	ActionGetMeetingData = "getMeetingData"
	ActionOpenPopup      = "openPopup"
	ActionPing           = "ping"
)

// DefaultTimeout bounds a request round trip. The page context may never answer if its
// script environment was torn down.
const DefaultTimeout = 8 * time.Second

var (
	ErrNoReceiver = goerr.New("no receiver for message")
	ErrNoReply    = goerr.New("no reply received")
)

// Message is a cross-context request
type Message struct {
	Action  string            `json:"action"`
	EventID string            `json:"eventId,omitempty"`
	Data    map[string]string `json:"data,omitempty"`
}

// Reply is the single response to a Message
type Reply struct {
	Meeting *domain.MeetingRecord `json:"meeting"`
	Success bool                  `json:"success,omitempty"`
	Error   string                `json:"error,omitempty"`
}

// Handler answers a message
type Handler func(ctx context.Context, msg Message) (Reply, error)

// Bus routes messages to the handler registered for their action
type Bus struct {
	mu       sync.RWMutex
	handlers map[string]Handler
	timeout  time.Duration
}

// NewBus creates a bus whose requests time out after timeout (DefaultTimeout when <= 0)
func NewBus(timeout time.Duration) *Bus {
	if timeout <= 0 {
		timeout = DefaultTimeout
	}
	return &Bus{
		handlers: make(map[string]Handler),
		timeout:  timeout,
	}
}

// Handle registers h for action, replacing any previous handler
func (b *Bus) Handle(action string, h Handler) {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.handlers[action] = h
}

func (b *Bus) handler(action string) (Handler, bool) {
	b.mu.RLock()
	defer b.mu.RUnlock()
	h, ok := b.handlers[action]
	return h, ok
}

// Request sends msg and waits for its single reply, the bus timeout, or ctx cancellation
func (b *Bus) Request(ctx context.Context, msg Message) (Reply, error) {
	h, ok := b.handler(msg.Action)
	if !ok {
		return Reply{}, goerr.Wrap(ErrNoReceiver, "request failed", goerr.V("action", msg.Action))
	}

	ctx, cancel := context.WithTimeout(ctx, b.timeout)
	defer cancel()

	type result struct {
		reply Reply
		err   error
	}
	done := make(chan result, 1)

	go func() {
		reply, err := invoke(ctx, h, msg)
		done <- result{reply: reply, err: err}
	}()

	select {
	case r := <-done:
		if r.err != nil {
			return Reply{}, goerr.Wrap(r.err, "handler failed", goerr.V("action", msg.Action))
		}
		return r.reply, nil
	case <-ctx.Done():
		return Reply{}, goerr.Wrap(ErrNoReply, ctx.Err().Error(), goerr.V("action", msg.Action))
	}
}

// Notify delivers msg without waiting for a reply. Missing receivers and handler
// failures are logged and dropped.
func (b *Bus) Notify(msg Message) {
	h, ok := b.handler(msg.Action)
	if !ok {
		logging.Default().Debug("dropping message without receiver", "action", msg.Action)
		return
	}

	go func() {
		ctx, cancel := context.WithTimeout(context.Background(), b.timeout)
		defer cancel()
		if _, err := invoke(ctx, h, msg); err != nil {
			logging.Default().Warn("notify handler failed", "action", msg.Action, "error", err)
		}
	}()
}

func invoke(ctx context.Context, h Handler, msg Message) (reply Reply, err error) {
	defer func() {
		if r := recover(); r != nil {
			err = fmt.Errorf("handler panic: %v", r)
		}
	}()
	return h(ctx, msg)
}
