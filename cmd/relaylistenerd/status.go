package main

import (
	"net/http"
	"sync"

	"github.com/itzmeanjan/relaylisten/listener"
	"github.com/itzmeanjan/relaylisten/observer"
	"github.com/labstack/echo/v4"
)

// statusCounters is the running tally a status server reports, kept up
// to date by draining an observer.Subscription — a read-only diagnostic
// view onto the control loop, never itself on the control loop's
// critical path (spec.md §9 design note: the observer hook must not
// gate event processing).
type statusCounters struct {
	mu               sync.Mutex
	accessApplied    int
	accessClosed     bool
	fromRelay        int
	relayClosed      bool
	acceptFailed     int
}

func newStatusCounters() *statusCounters { return &statusCounters{} }

func (c *statusCounters) apply(ev listener.ObservedEvent) {
	c.mu.Lock()
	defer c.mu.Unlock()
	switch ev.Kind {
	case listener.EventAccessApplied:
		c.accessApplied++
	case listener.EventAccessClosed:
		c.accessClosed = true
	case listener.EventFromRelay:
		c.fromRelay++
	case listener.EventRelayClosed:
		c.relayClosed = true
	case listener.EventAcceptFailed:
		c.acceptFailed++
	}
}

func (c *statusCounters) snapshot() echo.Map {
	c.mu.Lock()
	defer c.mu.Unlock()
	return echo.Map{
		"access_ops_applied": c.accessApplied,
		"access_closed":      c.accessClosed,
		"notifications_seen": c.fromRelay,
		"relay_closed":       c.relayClosed,
		"accept_failures":    c.acceptFailed,
	}
}

// drainInto runs until sub ends, applying every observed event to
// counters. Meant to be run as its own goroutine.
func drainInto(sub *observer.Subscription, counters *statusCounters) {
	for {
		ev, ok := sub.Next()
		if !ok {
			return
		}
		counters.apply(ev)
	}
}

// newStatusServer builds the teacher-style echo.v4 HTTP surface this
// daemon exposes for operational visibility, grounded on go.mod's
// labstack/echo/v4 dependency (the teacher's own app/server package
// wasn't present in the retrieved source, so the route shape here
// follows echo's own idiomatic JSON-handler style).
func newStatusServer(counters *statusCounters) *echo.Echo {
	e := echo.New()
	e.HideBanner = true
	e.GET("/status", func(c echo.Context) error {
		return c.JSON(http.StatusOK, counters.snapshot())
	})
	return e
}
