// Package accesssource implements listener.AccessOpSource, streaming
// AccessSet mutations published by another process or node.
//
// Grounded on the teacher's app/bootup redis client construction and
// the pub/sub-driven channel idiom its app/networking/listen.go
// WriteTo uses for mempool changes — here driving access-control
// changes instead of mempool entries.
package accesssource

import (
	"context"
	"log"

	"github.com/go-redis/redis/v8"
	"github.com/itzmeanjan/relaylisten/listener"
	"github.com/vmihailenco/msgpack/v5"
)

// wireOp is the msgpack shape an AccessOp is published as, mirroring
// relaywire's one-message-per-struct convention.
type wireOp struct {
	Kind int
	Peer [32]byte
}

// pubSub is the subset of *redis.PubSub RedisSource depends on, kept
// narrow so a test can substitute a fake without a live Redis server.
type pubSub interface {
	Channel() <-chan *redis.Message
	Close() error
}

// RedisSource streams AccessOps published on a Redis pub/sub channel,
// satisfying listener.AccessOpSource.
type RedisSource struct {
	sub pubSub
	ch  <-chan *redis.Message
}

// NewRedisSource subscribes to topic on client and returns a ready
// RedisSource. The subscription itself, and therefore the Next stream,
// ends when ctx is cancelled or Close is called — satisfying
// listener.AccessOpSource's end-of-stream contract (spec.md §6).
func NewRedisSource(ctx context.Context, client *redis.Client, topic string) *RedisSource {
	sub := client.Subscribe(ctx, topic)
	go func() {
		<-ctx.Done()
		sub.Close()
	}()
	return newRedisSource(sub)
}

func newRedisSource(sub pubSub) *RedisSource {
	return &RedisSource{sub: sub, ch: sub.Channel()}
}

// Next blocks for the next AccessOp, or returns ok=false once the
// subscription's channel closes.
func (s *RedisSource) Next() (listener.AccessOp, bool) {
	for {
		msg, ok := <-s.ch
		if !ok {
			return listener.AccessOp{}, false
		}
		var w wireOp
		if err := msgpack.Unmarshal([]byte(msg.Payload), &w); err != nil {
			log.Printf("[❗️] Failed to decode access-op from redis: %s\n", err.Error())
			continue
		}
		return listener.AccessOp{Kind: listener.AccessOpKind(w.Kind), Peer: listener.PeerID(w.Peer)}, true
	}
}

// Close tears down the subscription.
func (s *RedisSource) Close() error { return s.sub.Close() }

// PublishOp msgpack-encodes op and publishes it on topic — the
// producer side a companion process (or a test) uses to drive a
// RedisSource.
func PublishOp(ctx context.Context, client *redis.Client, topic string, op listener.AccessOp) error {
	payload, err := msgpack.Marshal(&wireOp{Kind: int(op.Kind), Peer: [32]byte(op.Peer)})
	if err != nil {
		return err
	}
	return client.Publish(ctx, topic, payload).Err()
}
