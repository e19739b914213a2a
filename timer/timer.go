// Package timer implements the tick-stream capability spec.md §6
// treats as an external collaborator: RequestTickStream() hands out an
// independent stream of ticks at a fixed rate.
//
// Grounded on smux's (*Session).keepalive use of a pair of
// time.Ticker values and on the teacher's time.After-driven polling
// loop (app/mempool/poll.go).
package timer

import (
	"errors"
	"sync"
	"time"

	"github.com/itzmeanjan/relaylisten/listener"
)

// ErrStopped is returned by RequestTickStream once the Timer has been
// stopped.
var ErrStopped = errors.New("timer: stopped")

// Stream is one independent tick-producing channel.
type Stream struct {
	c    chan struct{}
	stop chan struct{}
}

// C returns the channel ticks are delivered on, satisfying
// listener.TickStream / keepalive.TickSource structurally.
func (s *Stream) C() <-chan struct{} { return s.c }

// Stop releases the stream's background goroutine. Safe to call more
// than once.
func (s *Stream) Stop() {
	select {
	case <-s.stop:
	default:
		close(s.stop)
	}
}

// Timer produces independent Stream values at a fixed interval.
type Timer struct {
	interval time.Duration

	mu      sync.Mutex
	stopped bool
	streams []*Stream
}

// New returns a Timer emitting ticks every interval.
func New(interval time.Duration) *Timer {
	return &Timer{interval: interval}
}

// RequestTickStream hands out a fresh Stream, satisfying
// listener.Timer. Returns ErrStopped once Close has been called — the
// listener/accept task treats this as the timer refusing the request
// (spec.md §4.1, §4.2).
func (t *Timer) RequestTickStream() (listener.TickStream, error) {
	t.mu.Lock()
	if t.stopped {
		t.mu.Unlock()
		return nil, ErrStopped
	}
	s := &Stream{c: make(chan struct{}), stop: make(chan struct{})}
	t.streams = append(t.streams, s)
	t.mu.Unlock()

	go func() {
		ticker := time.NewTicker(t.interval)
		defer ticker.Stop()
		for {
			select {
			case <-ticker.C:
				select {
				case s.c <- struct{}{}:
				case <-s.stop:
					return
				}
			case <-s.stop:
				return
			}
		}
	}()
	return s, nil
}

// Close stops the Timer and every Stream it has handed out.
func (t *Timer) Close() {
	t.mu.Lock()
	defer t.mu.Unlock()
	if t.stopped {
		return
	}
	t.stopped = true
	for _, s := range t.streams {
		s.Stop()
	}
}
