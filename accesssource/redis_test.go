package accesssource

import (
	"testing"

	"github.com/go-redis/redis/v8"
	"github.com/itzmeanjan/relaylisten/listener"
	"github.com/vmihailenco/msgpack/v5"
)

type fakePubSub struct {
	ch chan *redis.Message
}

func newFakePubSub() *fakePubSub { return &fakePubSub{ch: make(chan *redis.Message, 8)} }

func (f *fakePubSub) Channel() <-chan *redis.Message { return f.ch }
func (f *fakePubSub) Close() error                   { close(f.ch); return nil }

func (f *fakePubSub) publish(op listener.AccessOp) {
	payload, _ := msgpack.Marshal(&wireOp{Kind: int(op.Kind), Peer: [32]byte(op.Peer)})
	f.ch <- &redis.Message{Payload: string(payload)}
}

func TestRedisSourceDecodesOps(t *testing.T) {
	sub := newFakePubSub()
	src := newRedisSource(sub)

	var peer listener.PeerID
	peer[0] = 0x42
	sub.publish(listener.AddPeer(peer))

	op, ok := src.Next()
	if !ok {
		t.Fatal("expected an op, got end of stream")
	}
	if op.Kind != listener.OpAdd || op.Peer != peer {
		t.Fatalf("decoded op mismatch: %+v", op)
	}
}

func TestRedisSourceSkipsMalformedMessages(t *testing.T) {
	sub := newFakePubSub()
	src := newRedisSource(sub)

	sub.ch <- &redis.Message{Payload: "not msgpack"}
	var peer listener.PeerID
	peer[0] = 0x01
	sub.publish(listener.RemovePeer(peer))

	op, ok := src.Next()
	if !ok {
		t.Fatal("expected to skip the malformed message and decode the next one")
	}
	if op.Kind != listener.OpRemove || op.Peer != peer {
		t.Fatalf("decoded op mismatch: %+v", op)
	}
}

func TestRedisSourceEndsOnChannelClose(t *testing.T) {
	sub := newFakePubSub()
	src := newRedisSource(sub)

	sub.Close()
	if _, ok := src.Next(); ok {
		t.Fatal("expected end of stream once the channel closes")
	}
}
