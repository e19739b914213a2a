package main

import (
	"context"
	"fmt"
	"log"

	"github.com/itzmeanjan/relaylisten/config"
	libp2p "github.com/libp2p/go-libp2p"
	connmgr "github.com/libp2p/go-libp2p-connmgr"
	"github.com/libp2p/go-libp2p-core/host"
	discovery "github.com/libp2p/go-libp2p-discovery"
	dht "github.com/libp2p/go-libp2p-kad-dht"
	noise "github.com/libp2p/go-libp2p-noise"
	libp2ptls "github.com/libp2p/go-libp2p-tls"
)

// newHost builds the libp2p host the listener's connector dials the
// relay through, adapted from the teacher's
// app/networking.SetUpPeerDiscovery host options — noise and TLS
// security transports plus a bounded connection manager, the same
// stack go.mod pins (go-libp2p-connmgr, go-libp2p-noise,
// go-libp2p-tls), rather than the library's zero-option default.
func newHost(ctx context.Context, listenAddr string) (host.Host, error) {
	cm := connmgr.NewConnManager(64, 256, 0)
	h, err := libp2p.New(ctx,
		libp2p.ListenAddrStrings(listenAddr),
		libp2p.Security(noise.ID, noise.New),
		libp2p.Security(libp2ptls.ID, libp2ptls.New),
		libp2p.ConnectionManager(cm),
	)
	if err != nil {
		return nil, fmt.Errorf("relaylistenerd: build libp2p host: %w", err)
	}
	log.Printf("✅ Host up, id = %s\n", h.ID())
	return h, nil
}

// advertiseAndDiscover joins the DHT and advertises this host under the
// configured rendezvous — ported from
// app/networking.SetUpPeerDiscovery, trimmed to advertisement only: it
// does not search for, log or dial other peers, since this listener
// doesn't accept inbound libp2p streams from them and reaches the relay
// at its configured address.
func advertiseAndDiscover(ctx context.Context, h host.Host) {
	kad, err := dht.New(ctx, h, dht.Mode(dht.ModeClient))
	if err != nil {
		log.Printf("[❗️] Failed to create DHT : %s\n", err.Error())
		return
	}
	if err := kad.Bootstrap(ctx); err != nil {
		log.Printf("[❗️] Failed to bootstrap DHT : %s\n", err.Error())
		return
	}

	routingDiscovery := discovery.NewRoutingDiscovery(kad)
	discovery.Advertise(ctx, routingDiscovery, config.GetNetworkingRendezvous())
	log.Printf("✅ Advertised self with rendezvous\n")
}
