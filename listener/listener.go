package listener

import (
	"errors"
	"fmt"
	"log"
)

// Config bundles the tunables Run needs beyond its collaborators.
// Ticks are counted in units of the timer's tick (spec.md §6);
// addresses, transports, and framing are the connector's concern, not
// the listener's (spec.md §6 "No CLI, env, or persisted state").
type Config struct {
	// StartupConnectTicks bounds opening the control channel.
	StartupConnectTicks int
	// AcceptConnectTicks bounds opening each per-peer data channel.
	AcceptConnectTicks int
	// KeepaliveTicks parameterizes the keepalive wrapper installed on
	// every accepted data channel.
	KeepaliveTicks int
	// Logger receives the one log line per non-terminal accept
	// failure (spec.md §7 Policy, §9 design note b). Defaults to
	// log.Default().
	Logger *log.Logger
}

func (c Config) logger() *log.Logger {
	if c.Logger != nil {
		return c.Logger
	}
	return log.Default()
}

// Listener drives the control loop of spec.md §4.5. Build one with New
// and call Run exactly once — Run blocks until the listener
// terminates, then returns the *TerminalError explaining why.
type Listener struct {
	connector Connector
	accessSrc AccessOpSource
	outSink   ConnectionSink
	timer     Timer
	cfg       Config
	observer  chan<- ObservedEvent
}

// New builds a Listener from its external collaborators (spec.md §6):
// connector opens the control channel and, per accept task, data
// channels; accessSrc streams AccessSet mutations; outSink receives
// AcceptedConnections; timer hands out tick streams on demand.
func New(connector Connector, accessSrc AccessOpSource, outSink ConnectionSink, timer Timer, cfg Config) *Listener {
	return &Listener{connector: connector, accessSrc: accessSrc, outSink: outSink, timer: timer, cfg: cfg}
}

// Observe installs an optional event-observer sink (spec.md §4.5, §9):
// a deterministic-testing seam, not a production feature. Every
// dequeued event is cloned to it, non-blockingly, before the loop
// handles it — a slow or absent observer never stalls event
// processing. Call before Run; not safe to change concurrently with it.
func (l *Listener) Observe(sink chan<- ObservedEvent) {
	l.observer = sink
}

// Run executes startup and the main loop until termination (spec.md
// §4.5). The returned error is always a *TerminalError; a supervisor
// above is expected to construct a fresh Listener and call Run again
// if it wants to retry (spec.md §1 Non-goals, §7 Policy).
func (l *Listener) Run() error {
	startupTicks, err := l.timer.RequestTickStream()
	if err != nil || startupTicks == nil {
		return terminal(ReasonTimerUnavailable, err)
	}

	control, err := ConnectWithTimeout(l.connector, l.cfg.StartupConnectTicks, startupTicks)
	if control == nil {
		if err == nil {
			err = errors.New("control channel refused or timed out")
		}
		return terminal(ReasonControlConnectFailed, err)
	}
	defer control.Close()

	listenFrame, err := encodeCommand(Listen())
	if err == nil {
		err = control.Sink.Send(listenFrame)
	}
	if err != nil {
		return terminal(ReasonSendListenFailed, err)
	}

	access := NewAccessSet()
	rejectFeedback := make(chan PeerID)
	done := make(chan struct{})
	defer close(done)

	events := mergeEvents(done, l.accessSrc, control.Source, rejectFeedback)

	for ev := range events {
		l.observe(ev)

		switch ev.kind {
		case eventAccessApplied:
			if err := access.Apply(ev.accessOp); err != nil {
				return terminal(ReasonAccessPolicyError, err)
			}

		case eventFromRelay:
			peer := ev.notification.Incoming
			if !access.Allows(peer) {
				if err := l.reject(control, peer); err != nil {
					return terminal(ReasonControlSendFailed, err)
				}
				continue
			}
			l.spawnAccept(done, peer, rejectFeedback)

		case eventAcceptFailed:
			if err := l.reject(control, ev.failedPeer); err != nil {
				return terminal(ReasonControlSendFailed, err)
			}

		case eventRelayClosed:
			return terminal(ReasonRelayClosed, nil)

		case eventAccessClosed:
			return terminal(ReasonAccessClosed, nil)
		}
	}

	// mergeEvents' three goroutines only stop without a terminal tag
	// if done fires first, and done is only closed by this method's
	// own deferred close after a terminal return above — so in
	// practice this path is unreachable. Kept as a safety net rather
	// than a panic, per the teacher's preference for returned errors.
	return terminal(ReasonRelayClosed, fmt.Errorf("event stream ended without a terminal event"))
}

// reject sends RelayCommand::Reject(peer) on the control channel
// (spec.md §4.5).
func (l *Listener) reject(control *ByteChannel, peer PeerID) error {
	frame, err := encodeRejectConnection(peer)
	if err == nil {
		err = control.Sink.Send(frame)
	}
	return err
}

// spawnAccept launches an independent accept task for peer (spec.md
// §4.5, §4.2). The task owns no state shared with the loop beyond the
// capabilities spec.md §4.2/§9 calls cheaply cloneable: connector,
// out-sink, and the reject-feedback sender — Go interface values and
// channels already satisfy that without extra plumbing. A failed
// accept is logged here, matching the teacher's call-site bracketed
// log idiom, and is never surfaced to Run's caller (spec.md §7 Policy).
func (l *Listener) spawnAccept(done <-chan struct{}, peer PeerID, rejectFeedback chan<- PeerID) {
	connector := l.connector
	outSink := l.outSink
	timer := l.timer
	connTicks := l.cfg.AcceptConnectTicks
	keepaliveTicks := l.cfg.KeepaliveTicks
	logger := l.cfg.logger()

	go func() {
		if acceptErr := acceptPeer(done, peer, connector, rejectFeedback, outSink, connTicks, keepaliveTicks, timer); acceptErr != nil {
			logger.Printf("[🙃] accept task failed: %v", acceptErr)
		}
	}()
}

func (l *Listener) observe(ev listenerEvent) {
	if l.observer == nil {
		return
	}
	select {
	case l.observer <- toObservedEvent(ev):
	default:
	}
}
