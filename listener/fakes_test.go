package listener

import (
	"context"
	"io"
	"sync"
)

// duplexHalf is one end of an in-memory duplex raw channel: sending on
// one end is observed by Recv on the other. Mirrors the Rust
// original's channel-driven DummyConnector test harness (SPEC_FULL.md
// §2.4).
type duplexHalf struct {
	send chan []byte
	recv chan []byte
}

func (p *duplexHalf) Send(frame []byte) error {
	p.send <- frame
	return nil
}

func (p *duplexHalf) Recv() ([]byte, error) {
	frame, ok := <-p.recv
	if !ok {
		return nil, io.EOF
	}
	return frame, nil
}

// closeSend closes this half's outbound channel, which the peer half
// observes as Recv returning io.EOF.
func (p *duplexHalf) closeSend() { close(p.send) }

func newDuplexPair() (local, remote *duplexHalf) {
	ab := make(chan []byte, 8)
	ba := make(chan []byte, 8)
	return &duplexHalf{send: ab, recv: ba}, &duplexHalf{send: ba, recv: ab}
}

// singleShotConnector always hands out the same pre-built channel.
type singleShotConnector struct{ ch *ByteChannel }

func (c *singleShotConnector) Connect(ctx context.Context) (*ByteChannel, error) {
	return c.ch, nil
}

// multiConnector hands out queued channels in order, one per Connect
// call; once the queue is drained it refuses (nil, nil) connections.
type multiConnector struct {
	mu    sync.Mutex
	conns []*ByteChannel
}

func (c *multiConnector) Connect(ctx context.Context) (*ByteChannel, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if len(c.conns) == 0 {
		return nil, nil
	}
	ch := c.conns[0]
	c.conns = c.conns[1:]
	return ch, nil
}

// chanConnectionSink delivers AcceptedConnections to a buffered Go
// channel a test can read from.
type chanConnectionSink struct{ out chan AcceptedConnection }

func newChanConnectionSink() *chanConnectionSink {
	return &chanConnectionSink{out: make(chan AcceptedConnection, 8)}
}

func (s *chanConnectionSink) Send(c AcceptedConnection) error {
	s.out <- c
	return nil
}

// chanAccessOpSource streams AccessOps fed in by a test; closing
// closed ends the stream.
type chanAccessOpSource struct {
	ops    chan AccessOp
	closed chan struct{}
}

func newChanAccessOpSource() *chanAccessOpSource {
	return &chanAccessOpSource{ops: make(chan AccessOp, 8), closed: make(chan struct{})}
}

func (s *chanAccessOpSource) Next() (AccessOp, bool) {
	select {
	case op := <-s.ops:
		return op, true
	case <-s.closed:
		return AccessOp{}, false
	}
}

func (s *chanAccessOpSource) close() {
	select {
	case <-s.closed:
	default:
		close(s.closed)
	}
}

// fakeTimer hands out an independent manualTickStream on every
// request; a test drives individual streams directly.
type fakeTimer struct {
	mu      sync.Mutex
	refuse  bool
	streams []*manualTickStream
}

func (f *fakeTimer) RequestTickStream() (TickStream, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.refuse {
		return nil, nil
	}
	s := newManualTickStream()
	f.streams = append(f.streams, s)
	return s, nil
}

func peerFilledWith(b byte) PeerID {
	var p PeerID
	for i := range p {
		p[i] = b
	}
	return p
}
