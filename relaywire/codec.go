package relaywire

import (
	"fmt"

	"github.com/vmihailenco/msgpack/v5"
)

// EncodeInitConnection serializes the listener → relay handshake
// union. peer is ignored for KindListen.
func EncodeInitConnection(kind InitKind, peer [32]byte) ([]byte, error) {
	return msgpack.Marshal(&initConnection{Kind: kind, Peer: peer})
}

// DecodeInitConnection deserializes a frame produced by
// EncodeInitConnection. Used by relay-side test/demo scaffolding.
func DecodeInitConnection(frame []byte) (kind InitKind, peer [32]byte, err error) {
	var msg initConnection
	if err := msgpack.Unmarshal(frame, &msg); err != nil {
		return 0, [32]byte{}, fmt.Errorf("decode init connection: %w", err)
	}
	return msg.Kind, msg.Peer, nil
}

// EncodeIncomingConnection serializes the relay → listener
// notification. Used by relay-side test/demo scaffolding.
func EncodeIncomingConnection(peer [32]byte) ([]byte, error) {
	return msgpack.Marshal(&incomingConnection{Peer: peer})
}

// DecodeIncomingConnection deserializes a frame produced by
// EncodeIncomingConnection. A malformed frame is reported as an error;
// the caller (the event multiplexer, C4) treats that as the relay
// source closing (spec.md §4.4).
func DecodeIncomingConnection(frame []byte) (peer [32]byte, err error) {
	var msg incomingConnection
	if err := msgpack.Unmarshal(frame, &msg); err != nil {
		return [32]byte{}, fmt.Errorf("decode incoming connection: %w", err)
	}
	return msg.Peer, nil
}

// EncodeRejectConnection serializes the listener → relay decline sent
// on the control channel after startup.
func EncodeRejectConnection(peer [32]byte) ([]byte, error) {
	return msgpack.Marshal(&rejectConnection{Peer: peer})
}

// DecodeRejectConnection deserializes a frame produced by
// EncodeRejectConnection. Used by relay-side test/demo scaffolding.
func DecodeRejectConnection(frame []byte) (peer [32]byte, err error) {
	var msg rejectConnection
	if err := msgpack.Unmarshal(frame, &msg); err != nil {
		return [32]byte{}, fmt.Errorf("decode reject connection: %w", err)
	}
	return msg.Peer, nil
}
