package listener

import (
	"fmt"

	"github.com/itzmeanjan/relaylisten/keepalive"
)

// acceptPeer implements C2: connect a fresh data channel to the relay,
// claim peer on it, wrap it with a keepalive channel, and hand the
// result upward. Every invocation is independent and safe to run
// concurrently with any number of siblings — they only share the
// immutable connector and the cloneable feedback/out-sink handles
// (spec.md §4.2, §5).
//
// done is closed by the owning Listener when it stops running; a
// pending feedback send then becomes a no-op instead of blocking
// forever, mirroring a dropped mpsc receiver in the original.
func acceptPeer(
	done <-chan struct{},
	peer PeerID,
	connector Connector,
	rejectFeedback chan<- PeerID,
	out ConnectionSink,
	connTicks int,
	keepaliveTicks int,
	timer Timer,
) *AcceptError {
	tickStream, err := timer.RequestTickStream()
	if err != nil || tickStream == nil {
		return &AcceptError{Peer: peer, Kind: AcceptTimerUnavailable, Err: err}
	}

	raw, err := ConnectWithTimeout(connector, connTicks, tickStream)
	if raw == nil {
		if err == nil {
			err = fmt.Errorf("connector refused or timed out")
		}
		sendFeedback(done, rejectFeedback, peer)
		return &AcceptError{Peer: peer, Kind: AcceptConnectFailed, Err: err}
	}

	frame, err := encodeCommand(Accept(peer))
	if err == nil {
		err = raw.Sink.Send(frame)
	}
	if err != nil {
		raw.Close()
		sendFeedback(done, rejectFeedback, peer)
		return &AcceptError{Peer: peer, Kind: AcceptSendAcceptFailed, Err: err}
	}

	kaTickStream, err := timer.RequestTickStream()
	if err != nil || kaTickStream == nil {
		raw.Close()
		sendFeedback(done, rejectFeedback, peer)
		return &AcceptError{Peer: peer, Kind: AcceptTimerUnavailable, Err: err}
	}

	// raw.Sink/raw.Source and kaTickStream satisfy keepalive's Sink/
	// Source/TickSource contracts structurally — method sets match
	// exactly, so no adapter type is needed.
	wrapped := keepalive.Wrap(raw.Sink, raw.Source, kaTickStream, keepaliveTicks)

	conn := AcceptedConnection{
		Peer: peer,
		Channel: ByteChannel{
			Sink:   wrapped.Sink,
			Source: wrapped.Source,
			Closer: raw.Close,
		},
	}
	if err := out.Send(conn); err != nil {
		// The application is tearing down: no feedback is enqueued,
		// it would be lost anyway (spec.md §4.2 rationale, §7).
		raw.Close()
		return &AcceptError{Peer: peer, Kind: AcceptDeliveryFailed, Err: err}
	}
	return nil
}

// sendFeedback enqueues peer on the reject-feedback channel, abandoning
// the send if the listener has already stopped running (spec.md §5
// Cancellation: "accept tasks then observe the closure and exit their
// pending feedback send as a no-op failure").
func sendFeedback(done <-chan struct{}, rejectFeedback chan<- PeerID, peer PeerID) {
	select {
	case rejectFeedback <- peer:
	case <-done:
	}
}
