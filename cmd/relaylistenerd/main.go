// Command relaylistenerd wires the listener package's control loop to
// real collaborators: a libp2p connector pinned to a relay peer, a
// Redis-backed access-control source, a periodic timer, and an echo
// status endpoint — adapted from the teacher's main.go supervisor
// shape (signal handling, a comm channel a worker reports death on,
// graceful shutdown with a grace period) and app/bootup's resource
// construction.
package main

import (
	"context"
	"log"
	"os"
	"os/signal"
	"path/filepath"
	"syscall"
	"time"

	"github.com/gammazero/workerpool"
	"github.com/go-redis/redis/v8"
	"github.com/itzmeanjan/relaylisten/accesssource"
	"github.com/itzmeanjan/relaylisten/config"
	"github.com/itzmeanjan/relaylisten/listener"
	"github.com/itzmeanjan/relaylisten/observer"
	"github.com/itzmeanjan/relaylisten/timer"
	"github.com/itzmeanjan/relaylisten/transport"
	"github.com/multiformats/go-multiaddr"
)

func main() {
	log.Printf("[😌] relaylistenerd - a relay-mediated listener\n")

	abs, err := filepath.Abs(".env")
	if err != nil {
		log.Printf("[❗️] Failed to find absolute path of config file : %s\n", err.Error())
		os.Exit(1)
	}
	if err := config.Read(abs); err != nil {
		log.Printf("[❗️] Failed to read config : %s\n", err.Error())
		os.Exit(1)
	}

	ctx, cancel := context.WithCancel(context.Background())

	redisClient := redis.NewClient(&redis.Options{
		Addr:     config.GetRedisAddress(),
		Password: config.GetRedisPassword(),
		DB:       config.GetRedisDBIndex(),
	})
	if err := redisClient.Ping(ctx).Err(); err != nil {
		log.Printf("[❗️] Failed to reach redis : %s\n", err.Error())
		os.Exit(1)
	}

	h, err := newHost(ctx, "/ip4/0.0.0.0/tcp/0")
	if err != nil {
		log.Printf("[❗️] %s\n", err.Error())
		os.Exit(1)
	}
	go advertiseAndDiscover(ctx, h)

	relayAddr, err := multiaddr.NewMultiaddr(config.GetRelayAddress())
	if err != nil {
		log.Printf("[❗️] Failed to parse relay address : %s\n", err.Error())
		os.Exit(1)
	}
	connector := transport.NewLibp2pConnector(h, relayAddr, config.GetNetworkingStream())

	tck := timer.New(config.GetTickInterval())
	defer tck.Close()

	hub := observer.NewHub(64)
	defer hub.Close()
	counters := newStatusCounters()
	sub, err := hub.Subscribe()
	if err != nil {
		log.Printf("[❗️] Failed to subscribe status counters to the hub : %s\n", err.Error())
		os.Exit(1)
	}
	go drainInto(sub, counters)

	statusServer := newStatusServer(counters)
	go func() {
		if err := statusServer.Start(config.GetStatusServerPort()); err != nil {
			log.Printf("[🙃] Status server stopped : %s\n", err.Error())
		}
	}()

	pool := workerpool.New(config.GetConcurrencyFactor())
	sink := newChannelSink(pool)

	interruptChan := make(chan os.Signal, 1)
	comm := make(chan struct{}, 1)
	signal.Notify(interruptChan, syscall.SIGTERM, syscall.SIGINT)

	go runSupervised(ctx, comm, func() *listener.Listener {
		return listener.New(
			connector,
			accesssource.NewRedisSource(ctx, redisClient, config.GetAccessOpTopic()),
			sink,
			tck,
			listener.Config{
				StartupConnectTicks: config.GetConnectTimeoutTicks(),
				AcceptConnectTicks:  config.GetConnectTimeoutTicks(),
				KeepaliveTicks:      config.GetKeepaliveTicks(),
			},
		)
	}, hub.Sink())

	<-interruptChan
	cancel()
	log.Printf("[❗️] Shutting down, waiting up to 3 seconds for in-flight work\n")
	<-time.After(3 * time.Second)
	pool.Stop()
	if err := statusServer.Shutdown(context.Background()); err != nil {
		log.Printf("[🙃] Failed to shut down status server cleanly : %s\n", err.Error())
	}
	log.Printf("[✅] Gracefully shut down relaylistenerd\n")
}

// runSupervised re-invokes a fresh Listener every time one terminates,
// the way the teacher's main.go relies on a comm channel to learn a
// worker died and needs replacing — spec.md §1 explicitly leaves
// reconnection/supervision to a layer above the control loop itself,
// so this is that layer.
func runSupervised(ctx context.Context, comm chan struct{}, build func() *listener.Listener, observe chan<- listener.ObservedEvent) {
	for {
		select {
		case <-ctx.Done():
			return
		default:
		}

		l := build()
		l.Observe(observe)
		if err := l.Run(); err != nil {
			log.Printf("[🙃] Listener terminated : %s\n", err.Error())
		}

		select {
		case <-ctx.Done():
			return
		case comm <- struct{}{}:
		default:
		}
	}
}
