// Package jobs implements the in-memory ingestion job registry: creation,
// partial state updates, and per-job pub-sub. It owns the job map and the
// subscriber set; it never mutates vector-store state and never reaches
// into the orchestrator's pipeline logic.
package jobs

import (
	"sync"
	"time"

	"github.com/google/uuid"

	"ragcore/internal/ragtypes"
)

// Listener receives every subsequent emission for the job it subscribed to.
// It must be cheap: the manager does not buffer deliveries and invokes
// listeners synchronously, outside its registry lock.
type Listener func(ragtypes.JobState)

// Unsubscribe detaches a previously registered listener. Calling it more
// than once is a no-op.
type Unsubscribe func()

// Update describes a partial mutation to a job's state. Zero-value fields
// are not applied; use the pointer/zero-means-unset fields below to mean
// "leave as is" versus "set to empty".
type Update struct {
	Status          ragtypes.JobStatus
	Stage           ragtypes.JobStage
	TotalChunks     *int
	ProcessedChunks *int
	DocumentID      *string
	Message         *string
	Error           *string
}

type jobEntry struct {
	state      ragtypes.JobState
	listeners  map[int]Listener
	nextHandle int
}

// Manager is the job registry. The zero value is not usable; construct
// with New.
type Manager struct {
	mu   sync.Mutex
	jobs map[string]*jobEntry
}

// New returns an empty job registry.
func New() *Manager {
	return &Manager{jobs: make(map[string]*jobEntry)}
}

// Create registers a new job in the queued state and returns its initial
// snapshot.
func (m *Manager) Create(filename, tenantID string) ragtypes.JobState {
	now := time.Now().UTC()
	state := ragtypes.JobState{
		JobID:     uuid.NewString(),
		Filename:  filename,
		TenantID:  tenantID,
		Status:    ragtypes.JobStatusQueued,
		Stage:     ragtypes.JobStageQueued,
		CreatedAt: now,
		UpdatedAt: now,
	}
	m.mu.Lock()
	m.jobs[state.JobID] = &jobEntry{state: state, listeners: make(map[int]Listener)}
	m.mu.Unlock()
	return state
}

// Get returns the current snapshot for a job, and whether it exists.
func (m *Manager) Get(id string) (ragtypes.JobState, bool) {
	m.mu.Lock()
	defer m.mu.Unlock()
	e, ok := m.jobs[id]
	if !ok {
		return ragtypes.JobState{}, false
	}
	return e.state, true
}

// Update applies a partial mutation to a job's state, bumps updated_at,
// sets completed_at on first transition into a terminal status, and
// delivers the new snapshot to every subscriber of that job. The listener
// list is copied under the lock and invoked outside it, so a slow or
// re-entrant listener cannot block other callers of the registry.
//
// Once a job has reached a terminal state, further updates are rejected:
// the existing terminal snapshot is returned unchanged and no emission
// occurs, honouring the at-most-one-terminal-state delivery invariant.
func (m *Manager) Update(id string, u Update) (ragtypes.JobState, bool) {
	m.mu.Lock()
	e, ok := m.jobs[id]
	if !ok {
		m.mu.Unlock()
		return ragtypes.JobState{}, false
	}
	if e.state.Terminal() {
		snap := e.state
		m.mu.Unlock()
		return snap, true
	}

	s := e.state
	if u.Status != "" {
		s.Status = u.Status
	}
	if u.Stage != "" {
		s.Stage = u.Stage
	}
	if u.TotalChunks != nil {
		s.TotalChunks = *u.TotalChunks
	}
	if u.ProcessedChunks != nil {
		s.ProcessedChunks = *u.ProcessedChunks
	}
	if u.DocumentID != nil {
		s.DocumentID = *u.DocumentID
	}
	if u.Message != nil {
		s.Message = *u.Message
	}
	if u.Error != nil {
		s.Error = *u.Error
	}
	s.UpdatedAt = time.Now().UTC()
	if s.Terminal() && s.CompletedAt == nil {
		t := s.UpdatedAt
		s.CompletedAt = &t
	}
	e.state = s

	listeners := make([]Listener, 0, len(e.listeners))
	for _, l := range e.listeners {
		listeners = append(listeners, l)
	}
	m.mu.Unlock()

	for _, l := range listeners {
		l(s)
	}
	return s, true
}

// Subscribe registers a listener for every subsequent emission on job id.
// The returned Unsubscribe detaches it; it is safe to call from within the
// listener itself. Subscribing to an unknown job id is a no-op whose
// Unsubscribe does nothing.
func (m *Manager) Subscribe(id string, l Listener) Unsubscribe {
	m.mu.Lock()
	defer m.mu.Unlock()
	e, ok := m.jobs[id]
	if !ok {
		return func() {}
	}
	handle := e.nextHandle
	e.nextHandle++
	e.listeners[handle] = l

	var once sync.Once
	return func() {
		once.Do(func() {
			m.mu.Lock()
			defer m.mu.Unlock()
			delete(e.listeners, handle)
		})
	}
}
