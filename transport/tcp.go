// Package transport provides concrete listener.Connector implementations
// and a length-delimited framing codec shared by all of them.
//
// Framing is grounded on the teacher's app/networking/listen.go
// ReadFrom/WriteTo pair: a 4-byte little-endian length prefix followed
// by the payload. Connect/dial context handling follows the pack's
// martymcquaid-omnicloud2024 internal/relay RelayDialer: a context-aware
// dial with a deadline, closing the raw connection on any failure
// before returning.
package transport

import (
	"bufio"
	"context"
	"fmt"
	"net"
	"sync"
	"time"

	"github.com/itzmeanjan/relaylisten/listener"
)

const maxFrameSize = 16 << 20 // 16 MiB, generous upper bound against a corrupt length prefix

// tcpChannel adapts a net.Conn into listener.FrameSink/FrameSource,
// serializing writes the way the teacher's WriteTo serializes writes
// onto a shared bufio.Writer (one accept task, one conn, no concurrent
// writers in practice — the mutex just makes that an invariant, not an
// assumption).
type tcpChannel struct {
	conn net.Conn
	r    *bufio.Reader
	w    *bufio.Writer
	mu   sync.Mutex
}

func newTCPChannel(conn net.Conn) *listener.ByteChannel {
	ch := &tcpChannel{conn: conn, r: bufio.NewReader(conn), w: bufio.NewWriter(conn)}
	return &listener.ByteChannel{Sink: ch, Source: ch, Closer: conn.Close}
}

func (c *tcpChannel) Send(frame []byte) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	return writeFrame(c.w, frame)
}

func (c *tcpChannel) Recv() ([]byte, error) {
	return readFrame(c.r)
}

// TCPConnector dials a TCP relay address fresh on every Connect call —
// the base-case listener.Connector, with no framework dependency beyond
// net and the standard library.
type TCPConnector struct {
	Address string
	// DialTimeout bounds a single dial attempt independently of the
	// tick-based budget ConnectWithTimeout applies on top.
	DialTimeout time.Duration
}

// NewTCPConnector builds a TCPConnector with a sane default dial
// timeout.
func NewTCPConnector(address string) *TCPConnector {
	return &TCPConnector{Address: address, DialTimeout: 10 * time.Second}
}

func (c *TCPConnector) Connect(ctx context.Context) (*listener.ByteChannel, error) {
	dialer := net.Dialer{Timeout: c.DialTimeout}
	conn, err := dialer.DialContext(ctx, "tcp", c.Address)
	if err != nil {
		return nil, fmt.Errorf("transport: tcp dial %s: %w", c.Address, err)
	}
	return newTCPChannel(conn), nil
}
