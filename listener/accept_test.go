package listener

import (
	"testing"
	"time"

	"github.com/itzmeanjan/relaylisten/relaywire"
)

const keepaliveTagData = byte(0)

// scenario 3 (spec.md §8): accept basic round trip.
func TestAcceptPeerBasic(t *testing.T) {
	peer := peerFilledWith(0x77)

	local, remote := newDuplexPair()
	connector := &singleShotConnector{ch: &ByteChannel{Sink: local, Source: local, Closer: func() error { return nil }}}

	timer := &fakeTimer{}
	sink := newChanConnectionSink()
	rejectFeedback := make(chan PeerID, 1)
	done := make(chan struct{})
	defer close(done)

	acceptErr := make(chan *AcceptError, 1)
	go func() {
		acceptErr <- acceptPeer(done, peer, connector, rejectFeedback, sink, 8, 16, timer)
	}()

	// the first outbound frame decodes to Accept(peer), unwrapped by
	// keepalive (it is sent before the wrap is installed).
	frame, err := remote.Recv()
	if err != nil {
		t.Fatalf("recv accept frame: %v", err)
	}
	kind, gotPeer, err := relaywire.DecodeInitConnection(frame)
	if err != nil {
		t.Fatalf("decode accept frame: %v", err)
	}
	if kind != relaywire.KindAccept || gotPeer != [32]byte(peer) {
		t.Fatalf("expected Accept(%x), got kind=%v peer=%x", peer, kind, gotPeer)
	}

	var conn AcceptedConnection
	select {
	case conn = <-sink.out:
	case <-time.After(time.Second):
		t.Fatal("timed out waiting for the delivered AcceptedConnection")
	}
	if conn.Peer != peer {
		t.Fatalf("delivered connection for wrong peer: got %x want %x", conn.Peer, peer)
	}

	// round trip: local -> remote.
	if err := conn.Channel.Sink.Send([]byte{1, 2, 3}); err != nil {
		t.Fatalf("send: %v", err)
	}
	tagged, err := remote.Recv()
	if err != nil {
		t.Fatalf("remote recv: %v", err)
	}
	if tagged[0] != keepaliveTagData {
		t.Fatalf("expected a data-tagged frame, got tag %d", tagged[0])
	}
	if got := tagged[1:]; string(got) != string([]byte{1, 2, 3}) {
		t.Fatalf("payload mismatch: got %v", got)
	}

	// round trip: remote -> local.
	if err := remote.Send(append([]byte{keepaliveTagData}, 3, 2, 1)); err != nil {
		t.Fatalf("remote send: %v", err)
	}
	got, err := conn.Channel.Source.Recv()
	if err != nil {
		t.Fatalf("source recv: %v", err)
	}
	if string(got) != string([]byte{3, 2, 1}) {
		t.Fatalf("payload mismatch: got %v", got)
	}

	select {
	case err := <-acceptErr:
		if err != nil {
			t.Fatalf("unexpected accept error: %v", err)
		}
	case <-time.After(time.Second):
		t.Fatal("accept task never returned")
	}
}

// spec.md §4.2 step 2: a connector that never produces a channel
// enqueues feedback and fails ConnectFailed.
func TestAcceptPeerConnectFailureEnqueuesFeedback(t *testing.T) {
	peer := peerFilledWith(0x11)
	connector := newFakeConnector() // never replies
	timer := &fakeTimer{}
	sink := newChanConnectionSink()
	rejectFeedback := make(chan PeerID, 1)
	done := make(chan struct{})
	defer close(done)

	errCh := make(chan *AcceptError, 1)
	go func() {
		errCh <- acceptPeer(done, peer, connector, rejectFeedback, sink, 0, 16, timer)
	}()

	select {
	case err := <-errCh:
		if err == nil || err.Kind != AcceptConnectFailed {
			t.Fatalf("expected AcceptConnectFailed, got %v", err)
		}
	case <-time.After(time.Second):
		t.Fatal("accept task never returned")
	}

	select {
	case got := <-rejectFeedback:
		if got != peer {
			t.Fatalf("feedback for wrong peer: got %x want %x", got, peer)
		}
	case <-time.After(time.Second):
		t.Fatal("expected reject feedback to be enqueued")
	}
}
