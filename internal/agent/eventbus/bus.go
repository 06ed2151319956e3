package eventbus

import (
	"context"
	"sync"

	"ai-writer-be/internal/agent/event"
)

// Subscriber is an ordered, unbounded delivery queue for one consumer.
// Pushing never blocks; a slow consumer accumulates memory instead of
// stalling the publisher. Known risk, see DESIGN.md.
type Subscriber struct {
	mu   sync.Mutex
	buf  []event.Envelope
	wake chan struct{}
}

func newSubscriber() *Subscriber {
	return &Subscriber{wake: make(chan struct{}, 1)}
}

func (s *Subscriber) push(ev event.Envelope) {
	s.mu.Lock()
	s.buf = append(s.buf, ev)
	s.mu.Unlock()
	select {
	case s.wake <- struct{}{}:
	default:
	}
}

// Next blocks until an envelope is available or ctx is done.
func (s *Subscriber) Next(ctx context.Context) (event.Envelope, error) {
	for {
		s.mu.Lock()
		if len(s.buf) > 0 {
			ev := s.buf[0]
			s.buf = s.buf[1:]
			s.mu.Unlock()
			return ev, nil
		}
		s.mu.Unlock()

		select {
		case <-ctx.Done():
			return event.Envelope{}, ctx.Err()
		case <-s.wake:
		}
	}
}

// Pending reports the number of queued envelopes not yet drained.
func (s *Subscriber) Pending() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.buf)
}

// Bus fans typed envelopes out to per-session subscriber sets. It knows
// nothing about agents or tools; sessions exist in the bus only while at
// least one subscriber is registered or a close is pending.
type Bus struct {
	mu       sync.Mutex
	sessions map[string]map[*Subscriber]struct{}
}

func New() *Bus {
	return &Bus{sessions: make(map[string]map[*Subscriber]struct{})}
}

// Register creates a new delivery queue for sessionID and adds it to the
// session's subscriber set. Registering after CloseSession starts a fresh
// set for the same id.
func (b *Bus) Register(sessionID string) *Subscriber {
	sub := newSubscriber()
	b.mu.Lock()
	set, ok := b.sessions[sessionID]
	if !ok {
		set = make(map[*Subscriber]struct{})
		b.sessions[sessionID] = set
	}
	set[sub] = struct{}{}
	b.mu.Unlock()
	return sub
}

// Unregister removes the subscriber. Idempotent: unregistering twice, or
// after the session was closed, is a no-op.
func (b *Bus) Unregister(sessionID string, sub *Subscriber) {
	b.mu.Lock()
	defer b.mu.Unlock()
	set, ok := b.sessions[sessionID]
	if !ok {
		return
	}
	delete(set, sub)
	if len(set) == 0 {
		delete(b.sessions, sessionID)
	}
}

// Publish delivers ev to every subscriber registered at call time. The set is
// snapshotted under the lock and delivery happens outside it, so a subscriber
// registered mid-publish does not see the event. No subscribers: silent drop.
func (b *Bus) Publish(sessionID string, ev event.Envelope) {
	b.mu.Lock()
	set := b.sessions[sessionID]
	snapshot := make([]*Subscriber, 0, len(set))
	for sub := range set {
		snapshot = append(snapshot, sub)
	}
	b.mu.Unlock()

	for _, sub := range snapshot {
		sub.push(ev)
	}
}

// CloseSession atomically removes the whole subscriber set and delivers one
// terminal session_closed envelope to each orphaned subscriber. Subsequent
// publishes for the id reach nobody until someone registers again.
func (b *Bus) CloseSession(sessionID string) {
	b.mu.Lock()
	set := b.sessions[sessionID]
	delete(b.sessions, sessionID)
	b.mu.Unlock()

	for sub := range set {
		sub.push(event.SessionClosed())
	}
}
