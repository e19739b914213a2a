package main

import (
	"log"

	"github.com/gammazero/workerpool"
	"github.com/itzmeanjan/relaylisten/listener"
)

// channelSink fans accepted connections out to a bounded worker pool
// for whatever this node does with an accepted peer (here: just
// logging and closing, since SPEC_FULL.md's "upstream consumer" is
// deployment-specific and out of scope) — sized the way the teacher
// sizes its worker pools, via config.GetConcurrencyFactor and
// gammazero/workerpool, rather than one goroutine per delivery.
type channelSink struct {
	pool *workerpool.WorkerPool
}

func newChannelSink(pool *workerpool.WorkerPool) *channelSink {
	return &channelSink{pool: pool}
}

func (s *channelSink) Send(conn listener.AcceptedConnection) error {
	s.pool.Submit(func() {
		log.Printf("✅ Accepted peer %s\n", conn.Peer)
		if err := conn.Channel.Close(); err != nil {
			log.Printf("[🙃] Failed to close accepted channel for %s : %s\n", conn.Peer, err.Error())
		}
	})
	return nil
}
