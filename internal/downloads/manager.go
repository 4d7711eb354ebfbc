package downloads

import (
	"sync"
	"time"

	"github.com/rs/zerolog"

	"modelsync/internal/transport"
	"modelsync/pkg/types"
)

// Manager merges periodic full-queue snapshots with discrete per-download
// events, throttles high-frequency progress, and performs idempotent
// actions against the backend. It is the single source of truth for what
// download UI is currently displayed.
type Manager struct {
	mu sync.Mutex

	t    transport.Transport
	opts Options
	log  zerolog.Logger

	status          types.QueueStatus
	ui              types.UiState
	progress        *types.Progress
	pendingProgress *types.Progress
	throttleTimer   *time.Timer
	inflightCancels map[string]struct{}
	summary         *types.QueueRunSummary
	lastErr         string

	listeners map[int]func()
	nextID    int
}

// New returns a Manager bound to the given transport.
func New(t transport.Transport, opts Options) *Manager {
	opts = opts.withDefaults()
	return &Manager{
		t:    t,
		opts: opts,
		log:  *opts.Logger,
		status: types.QueueStatus{
			Pending: []types.DownloadSummary{},
			Failed:  []types.DownloadSummary{},
		},
		ui:              types.UiState{Phase: types.PhaseNone},
		inflightCancels: make(map[string]struct{}),
		listeners:       make(map[int]func()),
	}
}

// Queue returns a copy of the last reconciled queue status.
func (m *Manager) Queue() types.QueueStatus {
	m.mu.Lock()
	defer m.mu.Unlock()
	out := m.status
	if m.status.Current != nil {
		cur := *m.status.Current
		out.Current = &cur
	}
	out.Pending = append([]types.DownloadSummary(nil), m.status.Pending...)
	out.Failed = append([]types.DownloadSummary(nil), m.status.Failed...)
	return out
}

// Progress returns a copy of the currently displayed progress, if any.
func (m *Manager) Progress() *types.Progress {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.progress == nil {
		return nil
	}
	p := *m.progress
	return &p
}

// UiState returns the authoritative progress-UI signal.
func (m *Manager) UiState() types.UiState {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.ui
}

// LastSummary returns the last completed queue-run summary, if not yet
// cleared.
func (m *Manager) LastSummary() *types.QueueRunSummary {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.summary == nil {
		return nil
	}
	s := *m.summary
	return &s
}

// QueueLength is the pending count plus one if a download is active.
// Used by UI badges.
func (m *Manager) QueueLength() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	n := len(m.status.Pending)
	if m.status.Current != nil {
		n++
	}
	return n
}

// LastError returns the last unexpected backend error, if any.
func (m *Manager) LastError() string {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.lastErr
}

// ClearSummary dismisses the queue-run summary banner.
func (m *Manager) ClearSummary() {
	m.mu.Lock()
	changed := m.summary != nil
	m.summary = nil
	m.mu.Unlock()
	if changed {
		m.notify()
	}
}

// Subscribe registers a change listener called after every state change.
// The returned func unsubscribes.
func (m *Manager) Subscribe(fn func()) func() {
	m.mu.Lock()
	id := m.nextID
	m.nextID++
	m.listeners[id] = fn
	m.mu.Unlock()
	return func() {
		m.mu.Lock()
		delete(m.listeners, id)
		m.mu.Unlock()
	}
}

// Close cancels pending timers. Grace timers already in flight become
// no-ops through the cleanup guard.
func (m *Manager) Close() {
	m.mu.Lock()
	if m.throttleTimer != nil {
		m.throttleTimer.Stop()
		m.throttleTimer = nil
	}
	m.pendingProgress = nil
	m.mu.Unlock()
}

// notify fans out to listeners. Never call with m.mu held.
func (m *Manager) notify() {
	m.mu.Lock()
	fns := make([]func(), 0, len(m.listeners))
	for _, fn := range m.listeners {
		fns = append(fns, fn)
	}
	m.mu.Unlock()
	for _, fn := range fns {
		fn()
	}
}

func (m *Manager) setErr(err error) {
	m.mu.Lock()
	m.lastErr = err.Error()
	m.mu.Unlock()
	m.notify()
}
