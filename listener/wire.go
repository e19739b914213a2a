package listener

import "github.com/itzmeanjan/relaylisten/relaywire"

// encodeCommand serializes a RelayCommand using the relaywire codec.
func encodeCommand(cmd RelayCommand) ([]byte, error) {
	var kind relaywire.InitKind
	switch cmd.Kind() {
	case CommandListen:
		kind = relaywire.KindListen
	case CommandAccept:
		kind = relaywire.KindAccept
	case CommandReject:
		kind = relaywire.KindReject
	}
	return relaywire.EncodeInitConnection(kind, [32]byte(cmd.Peer))
}

// encodeRejectConnection serializes the post-startup reject frame sent
// on the control channel.
func encodeRejectConnection(peer PeerID) ([]byte, error) {
	return relaywire.EncodeRejectConnection([32]byte(peer))
}

// decodeNotification deserializes a frame received on the control
// channel into a RelayNotification. An error here means the frame was
// malformed; the multiplexer (C4) treats that as the relay closing.
func decodeNotification(frame []byte) (RelayNotification, error) {
	peer, err := relaywire.DecodeIncomingConnection(frame)
	if err != nil {
		return RelayNotification{}, err
	}
	return RelayNotification{Incoming: PeerID(peer)}, nil
}
