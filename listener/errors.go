package listener

import "errors"

// TerminalReason identifies why a Listener stopped running. There is no
// recovery from a terminal state — a supervisor above must re-invoke
// the listener if it wants to retry.
type TerminalReason int

const (
	ReasonTimerUnavailable TerminalReason = iota
	ReasonControlConnectFailed
	ReasonSendListenFailed
	ReasonControlSendFailed
	ReasonAccessPolicyError
	ReasonAccessClosed
	ReasonRelayClosed
	ReasonSpawnFailed
)

func (r TerminalReason) String() string {
	switch r {
	case ReasonTimerUnavailable:
		return "timer unavailable"
	case ReasonControlConnectFailed:
		return "control connect failed"
	case ReasonSendListenFailed:
		return "send listen failed"
	case ReasonControlSendFailed:
		return "control send failed"
	case ReasonAccessPolicyError:
		return "access policy error"
	case ReasonAccessClosed:
		return "access closed"
	case ReasonRelayClosed:
		return "relay closed"
	case ReasonSpawnFailed:
		return "spawn failed"
	default:
		return "unknown"
	}
}

// TerminalError is the error a Listener's Run method returns once it
// stops. It wraps whatever I/O error caused the termination, if any.
type TerminalError struct {
	Reason TerminalReason
	Err    error
}

func (e *TerminalError) Error() string {
	if e.Err != nil {
		return e.Reason.String() + ": " + e.Err.Error()
	}
	return e.Reason.String()
}

func (e *TerminalError) Unwrap() error { return e.Err }

func terminal(reason TerminalReason, err error) error {
	return &TerminalError{Reason: reason, Err: err}
}

// Is reports whether err is a TerminalError with the given reason.
func (r TerminalReason) Is(err error) bool {
	var te *TerminalError
	if errors.As(err, &te) {
		return te.Reason == r
	}
	return false
}

// AcceptErrorKind identifies why a single accept task failed. These
// never terminate the Listener.
type AcceptErrorKind int

const (
	AcceptTimerUnavailable AcceptErrorKind = iota
	AcceptConnectFailed
	AcceptSendAcceptFailed
	AcceptDeliveryFailed
)

func (k AcceptErrorKind) String() string {
	switch k {
	case AcceptTimerUnavailable:
		return "timer unavailable"
	case AcceptConnectFailed:
		return "connect failed"
	case AcceptSendAcceptFailed:
		return "send accept failed"
	case AcceptDeliveryFailed:
		return "delivery failed"
	default:
		return "unknown"
	}
}

// AcceptError is returned by the accept task. Callers generally only
// log it (spec.md §7 Policy) — it is not propagated to Run's caller.
type AcceptError struct {
	Peer PeerID
	Kind AcceptErrorKind
	Err  error
}

func (e *AcceptError) Error() string {
	if e.Err != nil {
		return e.Kind.String() + " for " + e.Peer.String() + ": " + e.Err.Error()
	}
	return e.Kind.String() + " for " + e.Peer.String()
}

func (e *AcceptError) Unwrap() error { return e.Err }
