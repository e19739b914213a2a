// Package observer fans a Listener's observed events out to any number
// of independent subscribers — diagnostics, a status endpoint, an
// integration test — on top of the teacher's own event-broadcast
// library, github.com/itzmeanjan/pubsub, rather than hand-rolling a
// fan-out broker. The core listener package never imports this
// package; it only needs something satisfying chan<- ObservedEvent,
// which Hub.Sink provides.
package observer

import (
	"github.com/itzmeanjan/pubsub"
	"github.com/itzmeanjan/relaylisten/listener"
)

// topic is the single pubsub topic every observed event is published
// under; subscribers all share it, pubsub itself fans out to each.
const topic = "listener-events"

// Hub adapts listener.ObservedEvent delivery onto a pubsub.PubSub
// broker, so more than one consumer can observe the same event stream.
type Hub struct {
	broker *pubsub.PubSub
	sink   chan listener.ObservedEvent
	done   chan struct{}
}

// NewHub starts a Hub with the given per-subscriber buffer capacity.
func NewHub(capacity int) *Hub {
	h := &Hub{
		broker: pubsub.New(capacity),
		sink:   make(chan listener.ObservedEvent, capacity),
		done:   make(chan struct{}),
	}
	go h.pump()
	return h
}

func (h *Hub) pump() {
	for {
		select {
		case ev := <-h.sink:
			h.broker.Publish(topic, ev)
		case <-h.done:
			return
		}
	}
}

// Sink is the channel to hand a Listener via Listener.Observe.
func (h *Hub) Sink() chan<- listener.ObservedEvent { return h.sink }

// Subscription delivers every event published to a Hub after the
// subscription was created.
type Subscription struct {
	sub *pubsub.Subscriber
}

// Subscribe registers a new subscriber. Call Unsubscribe when done.
func (h *Hub) Subscribe() (*Subscription, error) {
	sub, err := h.broker.Subscribe(topic)
	if err != nil {
		return nil, err
	}
	return &Subscription{sub: sub}, nil
}

// Next blocks for the next observed event, or returns ok=false once the
// subscription is torn down.
func (s *Subscription) Next() (listener.ObservedEvent, bool) {
	msg, ok := <-s.sub.Channel
	if !ok {
		return listener.ObservedEvent{}, false
	}
	ev, ok := msg.(listener.ObservedEvent)
	return ev, ok
}

// Unsubscribe stops delivery to this subscription.
func (h *Hub) Unsubscribe(s *Subscription) bool {
	return h.broker.Unsubscribe(s.sub)
}

// Close stops the Hub's internal pump. The Sink channel must not be
// used by a Listener after Close.
func (h *Hub) Close() {
	close(h.done)
	h.broker.Stop()
}
