package listener

// eventKind tags a listenerEvent with the source it came from
// (spec.md §3 ListenerEvent, §4.4).
type eventKind int

const (
	eventAccessApplied eventKind = iota
	eventAccessClosed
	eventFromRelay
	eventRelayClosed
	eventAcceptFailed
)

// listenerEvent is the internal tagged union C4 produces and C5
// consumes. Only the field matching kind is meaningful.
type listenerEvent struct {
	kind         eventKind
	accessOp     AccessOp
	notification RelayNotification
	failedPeer   PeerID
}

// mergeEvents fans three independent sources into one listenerEvent
// stream (spec.md §4.4): the access-op source, the relay's decoded
// inbound frames, and the reject-feedback receiver. Each source keeps
// its own order; across sources the merge is a fair race on a shared
// channel, matching "fair but otherwise unordered".
//
// Decoding happens here, not in the caller: a malformed frame from the
// relay is indistinguishable from the relay source closing, so it is
// tagged RelayClosed per spec.md §4.4.
//
// done is closed by the owner once it stops reading; every goroutine
// here selects on it so none leak past that point.
func mergeEvents(done <-chan struct{}, accessSrc AccessOpSource, relaySrc FrameSource, rejectFeedback <-chan PeerID) <-chan listenerEvent {
	out := make(chan listenerEvent)

	go func() {
		for {
			op, ok := accessSrc.Next()
			if !ok {
				send(done, out, listenerEvent{kind: eventAccessClosed})
				return
			}
			if !send(done, out, listenerEvent{kind: eventAccessApplied, accessOp: op}) {
				return
			}
		}
	}()

	go func() {
		for {
			frame, err := relaySrc.Recv()
			if err != nil {
				send(done, out, listenerEvent{kind: eventRelayClosed})
				return
			}
			notification, err := decodeNotification(frame)
			if err != nil {
				send(done, out, listenerEvent{kind: eventRelayClosed})
				return
			}
			if !send(done, out, listenerEvent{kind: eventFromRelay, notification: notification}) {
				return
			}
		}
	}()

	go func() {
		for {
			select {
			case peer, ok := <-rejectFeedback:
				if !ok {
					return
				}
				if !send(done, out, listenerEvent{kind: eventAcceptFailed, failedPeer: peer}) {
					return
				}
			case <-done:
				return
			}
		}
	}()

	return out
}

// send delivers ev on out unless done fires first, reporting whether
// the send happened.
func send(done <-chan struct{}, out chan<- listenerEvent, ev listenerEvent) bool {
	select {
	case out <- ev:
		return true
	case <-done:
		return false
	}
}

// EventKind mirrors eventKind for the exported ObservedEvent — keep
// the two enums' ordering in sync.
type EventKind int

const (
	EventAccessApplied EventKind = iota
	EventAccessClosed
	EventFromRelay
	EventRelayClosed
	EventAcceptFailed
)

// ObservedEvent is the exported shadow of the internal listenerEvent,
// delivered to an optional observer sink installed via
// Listener.Observe. It exists solely as a deterministic-testing seam
// (spec.md §4.5, §9) — production callers can leave it uninstalled.
type ObservedEvent struct {
	Kind         EventKind
	AccessOp     AccessOp
	Notification RelayNotification
	FailedPeer   PeerID
}

func toObservedEvent(ev listenerEvent) ObservedEvent {
	return ObservedEvent{
		Kind:         EventKind(ev.kind),
		AccessOp:     ev.accessOp,
		Notification: ev.notification,
		FailedPeer:   ev.failedPeer,
	}
}
