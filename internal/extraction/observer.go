package extraction

import (
	"context"
	"time"
)

// DefaultSettleDelay is how long the observer waits after the last relevant mutation
// before re-running its action
const DefaultSettleDelay = 500 * time.Millisecond

// Mutation is a batch of nodes added to the page
type Mutation struct {
	Added []Element
}

// Observer re-runs an action after event elements are added to the page. Mutation
// bursts are coalesced into a single run.
type Observer struct {
	settle time.Duration
	action func()
}

// NewObserver creates an observer calling action once mutations settle for the given delay
func NewObserver(settle time.Duration, action func()) *Observer {
	if settle <= 0 {
		settle = DefaultSettleDelay
	}
	return &Observer{settle: settle, action: action}
}

// Relevant reports whether a mutation adds an event element. Affordance buttons never
// match, so the observer does not retrigger on its own output.
func Relevant(m Mutation) bool {
	for _, el := range m.Added {
		if el.Is(affordanceSelector) {
			continue
		}
		if el.Is(eventSelector) {
			return true
		}
	}
	return false
}

// Run consumes mutations until ctx is cancelled or the channel is closed. A pending
// action is dropped on shutdown.
func (o *Observer) Run(ctx context.Context, mutations <-chan Mutation) {
	timer := time.NewTimer(o.settle)
	timer.Stop()
	defer timer.Stop()

	pending := false
	for {
		select {
		case <-ctx.Done():
			return

		case m, ok := <-mutations:
			if !ok {
				return
			}
			if !Relevant(m) {
				continue
			}
			timer.Reset(o.settle)
			pending = true

		case <-timer.C:
			if pending {
				pending = false
				o.action()
			}
		}
	}
}
