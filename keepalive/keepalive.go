// Package keepalive wraps a raw bidirectional byte channel with
// liveness probing: it injects a probe frame every n ticks and closes
// the channel if no inbound frame — probe or application — has been
// observed for 2n ticks. Application frames pass through unchanged.
//
// Grounded on smux's (*Session).keepalive ping/timeout ticker pair and
// on the teacher's ReadFrom/WriteTo paired-goroutine-with-health-channel
// idiom (app/networking/listen.go).
package keepalive

import (
	"errors"
	"sync"
)

// ErrClosed is returned by Sink.Send / Source.Recv once the wrapped
// channel has detached, whether due to an inactivity timeout or the
// underlying raw channel failing.
var ErrClosed = errors.New("keepalive: channel closed")

// Sink is the outbound half of the raw channel being wrapped.
type Sink interface {
	Send(frame []byte) error
}

// Source is the inbound half of the raw channel being wrapped.
type Source interface {
	Recv() ([]byte, error)
}

// TickSource is an independent stream of unit-less ticks.
type TickSource interface {
	C() <-chan struct{}
}

// Channel is the pair of wrapped sink/source returned by Wrap.
type Channel struct {
	Sink   Sink
	Source Source
}

const (
	tagData byte = 0
	tagPing byte = 1
)

// Wrap installs the liveness layer described above. n <= 0 disables
// keepalive entirely: frames pass straight through and the channel
// never times out on inactivity.
func Wrap(rawSink Sink, rawSource Source, ticks TickSource, n int) Channel {
	outbound := make(chan []byte)
	inbound := make(chan []byte)
	closeCh := make(chan struct{})
	var closeOnce sync.Once
	detach := func() { closeOnce.Do(func() { close(closeCh) }) }

	if n <= 0 {
		return passthrough(rawSink, rawSource, outbound, inbound, closeCh, detach)
	}

	pings := make(chan struct{})
	seen := make(chan struct{}, 1)
	markSeen := func() {
		select {
		case seen <- struct{}{}:
		default:
		}
	}

	// reader: strip ping frames, forward application frames, track
	// liveness for any frame (ping or data).
	go func() {
		for {
			frame, err := rawSource.Recv()
			if err != nil {
				detach()
				return
			}
			if len(frame) == 0 {
				continue
			}
			markSeen()
			if frame[0] == tagPing {
				continue
			}
			select {
			case inbound <- frame[1:]:
			case <-closeCh:
				return
			}
		}
	}()

	// writer: tag every outbound application frame as data; probes
	// requested by the ticker go out as bare ping frames.
	go func() {
		for {
			select {
			case payload := <-outbound:
				frame := make([]byte, 0, len(payload)+1)
				frame = append(frame, tagData)
				frame = append(frame, payload...)
				if err := rawSink.Send(frame); err != nil {
					detach()
					return
				}
			case <-pings:
				if err := rawSink.Send([]byte{tagPing}); err != nil {
					detach()
					return
				}
			case <-closeCh:
				return
			}
		}
	}()

	// ticker: ping every n ticks, close after 2n ticks of silence.
	go func() {
		sincePing := 0
		sinceActivity := 0
		tickC := ticks.C()
		for {
			select {
			case _, ok := <-tickC:
				if !ok {
					detach()
					return
				}
				sincePing++
				sinceActivity++
				select {
				case <-seen:
					sinceActivity = 0
				default:
				}
				if sinceActivity >= 2*n {
					detach()
					return
				}
				if sincePing >= n {
					sincePing = 0
					select {
					case pings <- struct{}{}:
					case <-closeCh:
						return
					}
				}
			case <-closeCh:
				return
			}
		}
	}()

	return Channel{
		Sink:   &wrappedSink{outbound: outbound, closeCh: closeCh},
		Source: &wrappedSource{inbound: inbound, closeCh: closeCh},
	}
}

func passthrough(rawSink Sink, rawSource Source, outbound, inbound chan []byte, closeCh chan struct{}, detach func()) Channel {
	go func() {
		for {
			frame, err := rawSource.Recv()
			if err != nil {
				detach()
				return
			}
			select {
			case inbound <- frame:
			case <-closeCh:
				return
			}
		}
	}()
	go func() {
		for {
			select {
			case frame := <-outbound:
				if err := rawSink.Send(frame); err != nil {
					detach()
					return
				}
			case <-closeCh:
				return
			}
		}
	}()
	return Channel{
		Sink:   &wrappedSink{outbound: outbound, closeCh: closeCh},
		Source: &wrappedSource{inbound: inbound, closeCh: closeCh},
	}
}

type wrappedSink struct {
	outbound chan<- []byte
	closeCh  <-chan struct{}
}

func (w *wrappedSink) Send(frame []byte) error {
	select {
	case w.outbound <- frame:
		return nil
	case <-w.closeCh:
		return ErrClosed
	}
}

type wrappedSource struct {
	inbound <-chan []byte
	closeCh <-chan struct{}
}

func (w *wrappedSource) Recv() ([]byte, error) {
	select {
	case frame, ok := <-w.inbound:
		if !ok {
			return nil, ErrClosed
		}
		return frame, nil
	case <-w.closeCh:
		return nil, ErrClosed
	}
}
