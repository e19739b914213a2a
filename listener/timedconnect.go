package listener

import "context"

// ConnectWithTimeout races a single connector attempt against a tick
// budget (spec.md §4.1). It returns the channel if the connector wins,
// or nil if the budget is exhausted first or the tick source dies
// before the budget is consumed. On a tie, the connector wins.
//
// The losing branch is always cancelled: if the budget runs out first,
// the connector's context is cancelled and any channel it produces
// afterwards is closed rather than leaked.
//
// ticks <= 0 returns nil immediately unless the connector has already
// produced a result synchronously.
func ConnectWithTimeout(connector Connector, ticks int, tickStream TickStream) (*ByteChannel, error) {
	ctx, cancel := context.WithCancel(context.Background())

	type connOutcome struct {
		ch  *ByteChannel
		err error
	}
	connResult := make(chan connOutcome, 1)
	go func() {
		ch, err := connector.Connect(ctx)
		connResult <- connOutcome{ch, err}
	}()

	giveUp := func() (*ByteChannel, error) {
		cancel()
		select {
		case out := <-connResult:
			if out.ch != nil {
				out.ch.Close()
			}
			return nil, nil
		default:
			// Connector hasn't replied yet; release it asynchronously
			// once it does, without blocking the caller.
			go func() {
				if out := <-connResult; out.ch != nil {
					out.ch.Close()
				}
			}()
			return nil, nil
		}
	}

	if ticks <= 0 {
		select {
		case out := <-connResult:
			cancel()
			return out.ch, out.err
		default:
			return giveUp()
		}
	}

	taken := 0
	tickC := tickStream.C()
	for {
		select {
		case out := <-connResult:
			cancel()
			return out.ch, out.err
		case _, ok := <-tickC:
			if !ok {
				// timer dead before budget consumed; treat as timeout,
				// but a connector result that raced in concurrently
				// still wins on a tie.
				select {
				case out := <-connResult:
					cancel()
					return out.ch, out.err
				default:
					return giveUp()
				}
			}
			taken++
			if taken >= ticks {
				select {
				case out := <-connResult:
					cancel()
					return out.ch, out.err
				default:
					return giveUp()
				}
			}
		}
	}
}
