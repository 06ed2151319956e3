package eventbus

import (
	"context"
	"fmt"
	"testing"
	"time"

	"ai-writer-be/internal/agent/event"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func drain(t *testing.T, sub *Subscriber, n int) []event.Envelope {
	t.Helper()
	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
	defer cancel()

	out := make([]event.Envelope, 0, n)
	for i := 0; i < n; i++ {
		ev, err := sub.Next(ctx)
		require.NoError(t, err)
		out = append(out, ev)
	}
	return out
}

func TestPublishOrderPreserved(t *testing.T) {
	bus := New()
	sub := bus.Register("s1")

	for i := 0; i < 50; i++ {
		bus.Publish("s1", event.Envelope{
			Type: event.TypeAgentStatus,
			Data: map[string]interface{}{"seq": i},
		})
	}

	events := drain(t, sub, 50)
	for i, ev := range events {
		assert.Equal(t, i, ev.Data["seq"])
	}
}

func TestPublishWithoutSubscribersIsSilent(t *testing.T) {
	bus := New()
	assert.NotPanics(t, func() {
		bus.Publish("ghost", event.AgentStatus("running"))
	})

	// A late subscriber never sees dropped events.
	sub := bus.Register("ghost")
	assert.Equal(t, 0, sub.Pending())
}

func TestSnapshotExcludesLateSubscriber(t *testing.T) {
	bus := New()
	early := bus.Register("s1")

	bus.Publish("s1", event.AgentStatus("initializing"))

	late := bus.Register("s1")
	bus.Publish("s1", event.AgentStatus("running"))

	earlyEvents := drain(t, early, 2)
	assert.Equal(t, "initializing", earlyEvents[0].Data["stage"])
	assert.Equal(t, "running", earlyEvents[1].Data["stage"])

	lateEvents := drain(t, late, 1)
	assert.Equal(t, "running", lateEvents[0].Data["stage"])
	assert.Equal(t, 0, late.Pending())
}

func TestTwoSubscribersSeeIdenticalSequence(t *testing.T) {
	bus := New()
	a := bus.Register("s1")
	b := bus.Register("s1")

	for i := 0; i < 10; i++ {
		bus.Publish("s1", event.Envelope{
			Type: "e",
			Data: map[string]interface{}{"seq": fmt.Sprintf("%d", i)},
		})
	}

	eventsA := drain(t, a, 10)
	eventsB := drain(t, b, 10)
	assert.Equal(t, eventsA, eventsB)
}

func TestCloseSessionDeliversTerminalEvent(t *testing.T) {
	bus := New()
	a := bus.Register("s1")
	b := bus.Register("s1")

	bus.CloseSession("s1")

	assert.Equal(t, event.TypeSessionClosed, drain(t, a, 1)[0].Type)
	assert.Equal(t, event.TypeSessionClosed, drain(t, b, 1)[0].Type)

	// Events published after close reach nobody.
	bus.Publish("s1", event.AgentStatus("running"))
	assert.Equal(t, 0, a.Pending())
	assert.Equal(t, 0, b.Pending())
}

func TestUnregisterAfterCloseIsNoop(t *testing.T) {
	bus := New()
	sub := bus.Register("s1")
	bus.CloseSession("s1")

	assert.NotPanics(t, func() {
		bus.Unregister("s1", sub)
		bus.Unregister("s1", sub)
	})
}

func TestRegisterAfterCloseStartsFreshSet(t *testing.T) {
	bus := New()
	old := bus.Register("s1")
	bus.CloseSession("s1")

	fresh := bus.Register("s1")
	bus.Publish("s1", event.AgentStatus("initializing"))

	assert.Equal(t, "initializing", drain(t, fresh, 1)[0].Data["stage"])

	// The orphaned subscriber got its terminal event and nothing more.
	events := drain(t, old, 1)
	assert.Equal(t, event.TypeSessionClosed, events[0].Type)
	assert.Equal(t, 0, old.Pending())
}

func TestUnregisterRemovesOnlyTarget(t *testing.T) {
	bus := New()
	keep := bus.Register("s1")
	drop := bus.Register("s1")

	bus.Unregister("s1", drop)
	bus.Publish("s1", event.AgentStatus("running"))

	assert.Equal(t, 1, keep.Pending())
	assert.Equal(t, 0, drop.Pending())
}

func TestNextHonorsContextCancellation(t *testing.T) {
	bus := New()
	sub := bus.Register("s1")

	ctx, cancel := context.WithTimeout(context.Background(), 20*time.Millisecond)
	defer cancel()

	_, err := sub.Next(ctx)
	assert.ErrorIs(t, err, context.DeadlineExceeded)
}
