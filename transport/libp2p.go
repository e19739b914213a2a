package transport

import (
	"bufio"
	"context"
	"fmt"
	"sync"

	"github.com/itzmeanjan/relaylisten/listener"
	"github.com/libp2p/go-libp2p-core/host"
	"github.com/libp2p/go-libp2p-core/network"
	"github.com/libp2p/go-libp2p-core/peer"
	"github.com/libp2p/go-libp2p-core/protocol"
	"github.com/multiformats/go-multiaddr"
)

// libp2pChannel adapts a network.Stream into listener.FrameSink/
// FrameSource, length-delimited the same way as tcpChannel — grounded
// on the teacher's app/networking/listen.go HandleStream, which wraps
// every stream in a bufio.ReadWriter before framing it.
type libp2pChannel struct {
	stream network.Stream
	r      *bufio.Reader
	w      *bufio.Writer
	mu     sync.Mutex
}

func newLibp2pChannel(stream network.Stream) *listener.ByteChannel {
	ch := &libp2pChannel{stream: stream, r: bufio.NewReader(stream), w: bufio.NewWriter(stream)}
	return &listener.ByteChannel{Sink: ch, Source: ch, Closer: stream.Close}
}

func (c *libp2pChannel) Send(frame []byte) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	return writeFrame(c.w, frame)
}

func (c *libp2pChannel) Recv() ([]byte, error) {
	return readFrame(c.r)
}

// Libp2pConnector opens a fresh stream to a pre-addressed relay peer
// on every Connect call, adapted from the teacher's
// networking.SetUpPeerDiscovery/HandleStream pairing: the host and
// protocol ID are already wired up (by cmd/relaylistenerd), this
// connector just dials the one relay peer the listener is pinned to.
type Libp2pConnector struct {
	Host        host.Host
	RelayAddr   multiaddr.Multiaddr
	ProtocolID  protocol.ID
}

// NewLibp2pConnector builds a connector pinned to a single relay peer
// reachable at relayAddr, speaking protocolID.
func NewLibp2pConnector(h host.Host, relayAddr multiaddr.Multiaddr, protocolID string) *Libp2pConnector {
	return &Libp2pConnector{Host: h, RelayAddr: relayAddr, ProtocolID: protocol.ID(protocolID)}
}

func (c *Libp2pConnector) Connect(ctx context.Context) (*listener.ByteChannel, error) {
	info, err := peer.AddrInfoFromP2pAddr(c.RelayAddr)
	if err != nil {
		return nil, fmt.Errorf("transport: parse relay multiaddr: %w", err)
	}
	if err := c.Host.Connect(ctx, *info); err != nil {
		return nil, fmt.Errorf("transport: connect to relay peer %s: %w", info.ID, err)
	}
	stream, err := c.Host.NewStream(ctx, info.ID, c.ProtocolID)
	if err != nil {
		return nil, fmt.Errorf("transport: open stream to relay peer %s: %w", info.ID, err)
	}
	return newLibp2pChannel(stream), nil
}
