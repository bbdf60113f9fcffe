package service

import (
	"fmt"
	"time"

	"github.com/dustin/go-humanize"
)

// State is the sync engine's lifecycle state. At most one sync cycle runs at
// a time; the command loop serializes every transition.
type State int

const (
	StateIdle State = iota
	StateSyncing
	StateSucceeded
	StateFailed
	StateOffline
)

func (s State) String() string {
	switch s {
	case StateIdle:
		return "idle"
	case StateSyncing:
		return "syncing"
	case StateSucceeded:
		return "succeeded"
	case StateFailed:
		return "failed"
	case StateOffline:
		return "offline"
	default:
		return fmt.Sprintf("state(%d)", int(s))
	}
}

// Status is the value broadcast to subscribers on every transition.
type Status struct {
	State    State
	SyncedAt time.Time // last successful sync; set when State is StateSucceeded
	Err      string    // human-readable reason; set when State is StateFailed
}

// Describe renders the status for a UI indicator.
func (st Status) Describe() string {
	switch st.State {
	case StateSyncing:
		return "syncing"
	case StateSucceeded:
		return "synced " + humanize.Time(st.SyncedAt)
	case StateFailed:
		return "sync failed: " + st.Err
	case StateOffline:
		return "offline"
	default:
		return "not synced yet"
	}
}

// Status returns the current status.
func (e *Engine) Status() Status {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.status
}

// Subscribe returns a channel receiving status transitions. Delivery
// coalesces: a slow consumer may miss intermediate states but always ends up
// with the latest one, so a stalled UI can never block the engine.
func (e *Engine) Subscribe() <-chan Status {
	ch := make(chan Status, 1)
	e.mu.Lock()
	e.subs = append(e.subs, ch)
	ch <- e.status
	e.mu.Unlock()
	return ch
}

func (e *Engine) setStatus(st Status) {
	e.mu.Lock()
	e.status = st
	subs := make([]chan Status, len(e.subs))
	copy(subs, e.subs)
	e.mu.Unlock()

	for _, ch := range subs {
		select {
		case ch <- st:
		default:
			// Displace the stale value so the subscriber sees the newest.
			select {
			case <-ch:
			default:
			}
			select {
			case ch <- st:
			default:
			}
		}
	}
}
