package listener

import (
	"context"
	"encoding/hex"
	"fmt"

	"github.com/ethereum/go-ethereum/common"
)

// PeerID is the fixed-width opaque identity of a peer reachable through
// the relay. It is comparable and hashable, so it can be used directly
// as a map key.
type PeerID [32]byte

// String renders the peer identity the same way the rest of the stack
// renders a go-ethereum style 32 byte hash.
func (p PeerID) String() string {
	return common.BytesToHash(p[:]).Hex()
}

// PeerIDFromHex parses the hex form produced by String.
func PeerIDFromHex(s string) (PeerID, error) {
	b, err := hex.DecodeString(trimHexPrefix(s))
	if err != nil {
		return PeerID{}, fmt.Errorf("peer id: %w", err)
	}
	if len(b) != len(PeerID{}) {
		return PeerID{}, fmt.Errorf("peer id: expected %d bytes, got %d", len(PeerID{}), len(b))
	}
	var p PeerID
	copy(p[:], b)
	return p, nil
}

func trimHexPrefix(s string) string {
	if len(s) >= 2 && s[0] == '0' && (s[1] == 'x' || s[1] == 'X') {
		return s[2:]
	}
	return s
}

// FrameSink is the outbound half of a ByteChannel: a sink of
// length-delimited, opaque frames. Framing itself is the connector's
// concern — the listener only ever sees whole frames.
type FrameSink interface {
	Send(frame []byte) error
}

// FrameSource is the inbound half of a ByteChannel.
type FrameSource interface {
	Recv() ([]byte, error)
}

// ByteChannel is a bidirectional opaque byte-stream, per spec.md §3.
// Closing it releases whatever transport resource backs Sink/Source —
// required when ConnectWithTimeout cancels the losing branch of a race.
type ByteChannel struct {
	Sink   FrameSink
	Source FrameSource
	Closer func() error
}

// Close releases the underlying transport resource, if any.
func (b *ByteChannel) Close() error {
	if b == nil || b.Closer == nil {
		return nil
	}
	return b.Closer()
}

// Connector opens raw ByteChannels. For this listener the address is
// always the zero value — the connector is pre-addressed to the relay.
// A nil return with a nil error represents a connection refusal
// (spec.md §6 Option::None). Connect must respect ctx cancellation so a
// caller racing it against a tick budget can release it promptly.
type Connector interface {
	Connect(ctx context.Context) (*ByteChannel, error)
}

// RelayNotification is the union of messages the relay pushes to a
// listening client.
type RelayNotification struct {
	Incoming PeerID
}

// RelayCommandKind tags a RelayCommand.
type RelayCommandKind int

const (
	CommandListen RelayCommandKind = iota
	CommandAccept
	CommandReject
)

// RelayCommand is the union of messages the listener sends to the relay.
type RelayCommand struct {
	Peer PeerID
	kind RelayCommandKind
}

// Listen builds the single startup command.
func Listen() RelayCommand { return RelayCommand{kind: CommandListen} }

// Accept builds the per-data-channel claim command.
func Accept(p PeerID) RelayCommand { return RelayCommand{kind: CommandAccept, Peer: p} }

// Reject builds the control-channel decline command.
func Reject(p PeerID) RelayCommand { return RelayCommand{kind: CommandReject, Peer: p} }

// Kind reports which variant this command is.
func (c RelayCommand) Kind() RelayCommandKind { return c.kind }

// AccessOpKind tags an AccessOp.
type AccessOpKind int

const (
	OpAdd AccessOpKind = iota
	OpRemove
	OpClear
)

// AccessOp is one incremental mutation of the AccessSet, per spec.md §3.
type AccessOp struct {
	Kind AccessOpKind
	Peer PeerID // unused for OpClear
}

// AddPeer builds an Add op.
func AddPeer(p PeerID) AccessOp { return AccessOp{Kind: OpAdd, Peer: p} }

// RemovePeer builds a Remove op.
func RemovePeer(p PeerID) AccessOp { return AccessOp{Kind: OpRemove, Peer: p} }

// ClearPeers builds a Clear op.
func ClearPeers() AccessOp { return AccessOp{Kind: OpClear} }

// AcceptedConnection is delivered upward once a peer's data channel is
// fully established and keepalive-wrapped.
type AcceptedConnection struct {
	Peer    PeerID
	Channel ByteChannel
}

// ConnectionSink is the upward delivery capability of spec.md §6.
// Back-pressure here propagates into the spawning accept task, never
// into the control loop.
type ConnectionSink interface {
	Send(AcceptedConnection) error
}

// AccessOpSource is a stream of AccessOp; end of stream is terminal.
type AccessOpSource interface {
	// Next blocks until the next op is available, or returns ok=false
	// once the source is exhausted.
	Next() (op AccessOp, ok bool)
}

// Tick is a unit-less liveness signal emitted by a TickStream. It is a
// plain alias for struct{} so that concrete tick sources (timer.Stream)
// satisfy TickStream without a wrapper: a channel's element type must
// match exactly for interface satisfaction in Go, and an alias keeps
// chan Tick identical to chan struct{}.
type Tick = struct{}

// TickStream is an independent stream of Tick values at a fixed rate.
type TickStream interface {
	C() <-chan Tick
}

// Timer hands out independent tick streams on demand. A nil return
// with a nil error represents the timer refusing the request
// (spec.md §6).
type Timer interface {
	RequestTickStream() (TickStream, error)
}
