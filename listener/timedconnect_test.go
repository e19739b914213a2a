package listener

import (
	"context"
	"sync/atomic"
	"testing"
	"time"
)

type fakeConnector struct {
	ready chan *ByteChannel
	err   chan error
}

func newFakeConnector() *fakeConnector {
	return &fakeConnector{ready: make(chan *ByteChannel, 1), err: make(chan error, 1)}
}

func (f *fakeConnector) Connect(ctx context.Context) (*ByteChannel, error) {
	select {
	case ch := <-f.ready:
		return ch, nil
	case err := <-f.err:
		return nil, err
	case <-ctx.Done():
		return nil, ctx.Err()
	}
}

// stubbornConnector ignores ctx and only returns once a channel is
// handed to it, so it can produce a channel after its caller gave up.
type stubbornConnector struct{ ready chan *ByteChannel }

func (s *stubbornConnector) Connect(ctx context.Context) (*ByteChannel, error) {
	return <-s.ready, nil
}

type manualTickStream struct{ c chan struct{} }

func newManualTickStream() *manualTickStream   { return &manualTickStream{c: make(chan struct{})} }
func (m *manualTickStream) C() <-chan struct{} { return m.c }
func (m *manualTickStream) tick()              { m.c <- struct{}{} }
func (m *manualTickStream) die()               { close(m.c) }

func newFakeByteChannel() (*ByteChannel, *int32) {
	var closed int32
	bc := &ByteChannel{
		Sink:   discardSink{},
		Source: blockingSource{},
		Closer: func() error { atomic.AddInt32(&closed, 1); return nil },
	}
	return bc, &closed
}

type discardSink struct{}

func (discardSink) Send([]byte) error { return nil }

type blockingSource struct{}

func (blockingSource) Recv() ([]byte, error) { select {} }

// scenario 1 (spec.md §8): budget=8, connector replies immediately.
func TestConnectWithTimeoutSuccess(t *testing.T) {
	connector := newFakeConnector()
	want, _ := newFakeByteChannel()
	connector.ready <- want

	got, err := ConnectWithTimeout(connector, 8, newManualTickStream())
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if got != want {
		t.Fatalf("expected the connector's own channel back")
	}
}

// scenario 2 (spec.md §8): budget=8, connector never replies, 8 ticks
// delivered.
func TestConnectWithTimeoutTimeout(t *testing.T) {
	connector := newFakeConnector()
	ticks := newManualTickStream()

	done := make(chan struct{})
	var got *ByteChannel
	var err error
	go func() {
		got, err = ConnectWithTimeout(connector, 8, ticks)
		close(done)
	}()

	for i := 0; i < 8; i++ {
		ticks.tick()
	}
	<-done

	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if got != nil {
		t.Fatalf("expected nil channel on timeout")
	}
}

// boundary (spec.md §8): a 0-tick budget rejects any connector that is
// not synchronously ready.
func TestConnectWithTimeoutZeroBudgetRejects(t *testing.T) {
	connector := newFakeConnector()

	got, err := ConnectWithTimeout(connector, 0, newManualTickStream())
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if got != nil {
		t.Fatalf("expected nil channel for a 0-tick budget")
	}
}

// edge case (spec.md §4.1): the tick source dying before the budget is
// consumed is treated as the timer being dead — a timeout.
func TestConnectWithTimeoutDeadTickSourceIsTimeout(t *testing.T) {
	connector := newFakeConnector()
	ticks := newManualTickStream()
	ticks.die()

	got, err := ConnectWithTimeout(connector, 8, ticks)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if got != nil {
		t.Fatalf("expected nil channel when the tick source is dead")
	}
}

// spec.md §4.1: cancelling the loser is mandatory — a connection that
// arrives after the budget already expired must still be released.
func TestConnectWithTimeoutReleasesLoserConnection(t *testing.T) {
	connector := &stubbornConnector{ready: make(chan *ByteChannel, 1)}

	got, err := ConnectWithTimeout(connector, 0, newManualTickStream())
	if err != nil || got != nil {
		t.Fatalf("expected an immediate timeout, got (%v, %v)", got, err)
	}

	late, closed := newFakeByteChannel()
	connector.ready <- late

	deadline := time.Now().Add(2 * time.Second)
	for atomic.LoadInt32(closed) == 0 && time.Now().Before(deadline) {
		time.Sleep(time.Millisecond)
	}
	if atomic.LoadInt32(closed) != 1 {
		t.Fatal("the losing connector's channel was never released")
	}
}
