package messaging_test

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/m-mizutani/gt"

	"meetingprep-ai/internal/meeting/domain"
	"meetingprep-ai/internal/messaging"
)

func TestRequestReturnsReply(t *testing.T) {
	bus := messaging.NewBus(time.Second)
	bus.Handle(messaging.ActionGetMeetingData, func(context.Context, messaging.Message) (messaging.Reply, error) {
		return messaging.Reply{Meeting: &domain.MeetingRecord{Title: "Sync"}}, nil
	})

	reply, err := bus.Request(context.Background(), messaging.Message{Action: messaging.ActionGetMeetingData})
	gt.NoError(t, err)
	gt.Equal(t, reply.Meeting.Title, "Sync")
}

func TestRequestWithoutReceiver(t *testing.T) {
	bus := messaging.NewBus(time.Second)

	_, err := bus.Request(context.Background(), messaging.Message{Action: messaging.ActionPing})
	gt.True(t, errors.Is(err, messaging.ErrNoReceiver))
}

func TestRequestTimesOut(t *testing.T) {
	bus := messaging.NewBus(30 * time.Millisecond)
	bus.Handle(messaging.ActionGetMeetingData, func(ctx context.Context, _ messaging.Message) (messaging.Reply, error) {
		<-ctx.Done()
		time.Sleep(10 * time.Millisecond)
		return messaging.Reply{Success: true}, nil
	})

	start := time.Now()
	_, err := bus.Request(context.Background(), messaging.Message{Action: messaging.ActionGetMeetingData})
	gt.True(t, errors.Is(err, messaging.ErrNoReply))
	gt.True(t, time.Since(start) < time.Second)
}

func TestRequestRecoversHandlerPanic(t *testing.T) {
	bus := messaging.NewBus(time.Second)
	bus.Handle(messaging.ActionPing, func(context.Context, messaging.Message) (messaging.Reply, error) {
		panic("page torn down")
	})

	_, err := bus.Request(context.Background(), messaging.Message{Action: messaging.ActionPing})
	gt.Error(t, err)
}

func TestNotifyDoesNotWait(t *testing.T) {
	bus := messaging.NewBus(time.Second)
	release := make(chan struct{})
	received := make(chan string, 1)
	bus.Handle(messaging.ActionOpenPopup, func(_ context.Context, msg messaging.Message) (messaging.Reply, error) {
		received <- msg.EventID
		<-release
		return messaging.Reply{}, nil
	})

	bus.Notify(messaging.Message{Action: messaging.ActionOpenPopup, EventID: "evt-1"})
	gt.Equal(t, <-received, "evt-1")
	close(release)

	// unknown actions are dropped silently
	bus.Notify(messaging.Message{Action: "unknown"})
}
