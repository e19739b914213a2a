package transport

import (
	"context"
	"net"
	"sync"

	"github.com/itzmeanjan/relaylisten/listener"
)

// FakeRelay is a minimal in-process stand-in for a relay server, for
// exercising the Listen -> Incoming -> Accept/Reject cycle without real
// sockets. Only this package's own test uses it; listener's tests use
// in-package channel fakes instead.
// Grounded in the pack's martymcquaid-omnicloud2024 relay server's
// accept loop (one relay-side handle produced per incoming
// connection), simplified to an in-memory net.Pipe queue instead of
// real TCP (SPEC_FULL.md §5). Test/demo scaffolding only — not a
// production relay.
type FakeRelay struct {
	mu      sync.Mutex
	pending []*listener.ByteChannel
	waiters []chan *listener.ByteChannel
}

// NewFakeRelay returns an empty FakeRelay.
func NewFakeRelay() *FakeRelay {
	return &FakeRelay{}
}

// Connector returns the listener.Connector a test wires into a
// Listener (or calls directly): every Connect call opens a fresh
// net.Pipe, hands the client half back to the caller, and queues the
// relay half for retrieval via Next.
func (r *FakeRelay) Connector() listener.Connector {
	return &fakeRelayConnector{relay: r}
}

type fakeRelayConnector struct{ relay *FakeRelay }

func (c *fakeRelayConnector) Connect(ctx context.Context) (*listener.ByteChannel, error) {
	clientSide, relaySide := net.Pipe()
	c.relay.deliver(newTCPChannel(relaySide))
	return newTCPChannel(clientSide), nil
}

func (r *FakeRelay) deliver(ch *listener.ByteChannel) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if len(r.waiters) > 0 {
		w := r.waiters[0]
		r.waiters = r.waiters[1:]
		w <- ch
		return
	}
	r.pending = append(r.pending, ch)
}

// Next blocks until the relay observes the listener opening its next
// channel — the control channel on the first call, a data channel on
// every call after that — and returns the relay's end of it.
func (r *FakeRelay) Next() *listener.ByteChannel {
	r.mu.Lock()
	if len(r.pending) > 0 {
		ch := r.pending[0]
		r.pending = r.pending[1:]
		r.mu.Unlock()
		return ch
	}
	w := make(chan *listener.ByteChannel, 1)
	r.waiters = append(r.waiters, w)
	r.mu.Unlock()
	return <-w
}
