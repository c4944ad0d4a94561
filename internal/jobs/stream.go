package jobs

import (
	"context"
	"sync"

	"ragcore/internal/ragtypes"
)

// StreamEvent is one element of a job's snapshot stream. Either State holds
// a snapshot, or Done is true: the done marker sent once after the terminal
// snapshot, immediately before the channel closes.
type StreamEvent struct {
	State ragtypes.JobState
	Done  bool
}

// Stream returns a lazy sequence of snapshots for a job: the current state
// first, then every subsequent emission, ending with the terminal snapshot
// followed by a single done marker, after which the channel is closed. The
// second return value is false for an unknown job id.
//
// Snapshots are queued rather than dropped, so a slow consumer (an SSE
// write, say) never blocks the orchestrator's publish path and still
// observes every state in publication order. Cancelling ctx detaches the
// subscription and closes the channel without waiting for the job to finish.
func (m *Manager) Stream(ctx context.Context, id string) (<-chan StreamEvent, bool) {
	m.mu.Lock()
	e, ok := m.jobs[id]
	if !ok {
		m.mu.Unlock()
		return nil, false
	}
	first := e.state

	var (
		qmu     sync.Mutex
		pending []ragtypes.JobState
	)
	wake := make(chan struct{}, 1)
	handle := e.nextHandle
	e.nextHandle++
	e.listeners[handle] = func(s ragtypes.JobState) {
		qmu.Lock()
		pending = append(pending, s)
		qmu.Unlock()
		select {
		case wake <- struct{}{}:
		default:
		}
	}
	m.mu.Unlock()

	detach := func() {
		m.mu.Lock()
		delete(e.listeners, handle)
		m.mu.Unlock()
	}

	out := make(chan StreamEvent)
	go func() {
		defer close(out)
		defer detach()

		send := func(s ragtypes.JobState) bool {
			select {
			case out <- StreamEvent{State: s}:
				return true
			case <-ctx.Done():
				return false
			}
		}
		finish := func() {
			select {
			case out <- StreamEvent{Done: true}:
			case <-ctx.Done():
			}
		}

		if !send(first) {
			return
		}
		if first.Terminal() {
			finish()
			return
		}

		for {
			select {
			case <-ctx.Done():
				return
			case <-wake:
			}
			for {
				qmu.Lock()
				if len(pending) == 0 {
					qmu.Unlock()
					break
				}
				s := pending[0]
				pending = pending[1:]
				qmu.Unlock()

				if !send(s) {
					return
				}
				if s.Terminal() {
					finish()
					return
				}
			}
		}
	}()
	return out, true
}
