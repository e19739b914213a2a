package transport

import (
	"context"
	"testing"
	"time"
)

// TestFakeRelayDeliversInOrder exercises the control-then-data channel
// ordering a real Listener relies on: the first Connect call is always
// the control channel, and every call after that is a fresh per-peer
// data channel (SPEC_FULL.md §5).
func TestFakeRelayDeliversInOrder(t *testing.T) {
	relay := NewFakeRelay()
	connector := relay.Connector()

	clientControl, err := connector.Connect(context.Background())
	if err != nil {
		t.Fatalf("connect control: %v", err)
	}
	defer clientControl.Close()

	relayControl := relay.Next()
	defer relayControl.Close()

	// net.Pipe is unbuffered: the relay-side reader must be running
	// before the client-side Send can complete.
	got := make(chan []byte, 1)
	errCh := make(chan error, 1)
	go func() {
		frame, err := relayControl.Source.Recv()
		got <- frame
		errCh <- err
	}()
	if err := clientControl.Sink.Send([]byte{1, 2, 3}); err != nil {
		t.Fatalf("send: %v", err)
	}

	select {
	case frame := <-got:
		if err := <-errCh; err != nil {
			t.Fatalf("recv: %v", err)
		}
		if string(frame) != string([]byte{1, 2, 3}) {
			t.Fatalf("payload mismatch: got %v", frame)
		}
	case <-time.After(2 * time.Second):
		t.Fatal("timed out waiting for the relay side to observe the frame")
	}

	clientData, err := connector.Connect(context.Background())
	if err != nil {
		t.Fatalf("connect data: %v", err)
	}
	defer clientData.Close()
	relayData := relay.Next()
	defer relayData.Close()
	_ = clientData
	_ = relayData
}
