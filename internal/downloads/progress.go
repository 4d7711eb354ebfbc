package downloads

import (
	"time"

	"modelsync/pkg/types"
)

// progressView maps a canonical download event to the normalized view the
// UI renders.
func progressView(ev *types.DownloadEvent) types.Progress {
	switch ev.Kind {
	case types.EventDownloadStarted:
		return types.Progress{ID: ev.ID, Status: types.ProgressStarted}
	case types.EventDownloadCompleted:
		return types.Progress{ID: ev.ID, Status: types.ProgressComplete, Percentage: 100}
	case types.EventDownloadFailed:
		return types.Progress{ID: ev.ID, Status: types.ProgressErrored, Error: ev.Error}
	default:
		return types.Progress{
			ID:         ev.ID,
			Status:     types.ProgressRunning,
			Downloaded: ev.Downloaded,
			Total:      ev.Total,
			Percentage: ev.Percentage,
			SpeedBPS:   ev.SpeedBPS,
			ETASeconds: ev.ETASeconds,
			Shard:      ev.Shard,
		}
	}
}

// applyImmediate renders a non-progress status, bypassing the throttle.
func (m *Manager) applyImmediate(p types.Progress) {
	m.mu.Lock()
	m.markActiveLocked(p.ID)
	m.progress = &p
	m.mu.Unlock()
	m.notify()
}

// applyThrottled coalesces progress statuses to at most one state update
// per interval with trailing-edge delivery: inside an open window the
// value is buffered for the boundary flush; otherwise it applies
// immediately and the window restarts.
func (m *Manager) applyThrottled(p types.Progress) {
	m.mu.Lock()
	m.markActiveLocked(p.ID)
	if m.throttleTimer != nil {
		m.pendingProgress = &p
		m.mu.Unlock()
		return
	}
	m.progress = &p
	m.throttleTimer = time.AfterFunc(m.opts.ThrottleInterval, m.flushThrottle)
	m.mu.Unlock()
	m.notify()
}

// flushThrottle delivers the most recent buffered value at the window
// boundary.
func (m *Manager) flushThrottle() {
	m.mu.Lock()
	m.throttleTimer = nil
	p := m.pendingProgress
	m.pendingProgress = nil
	if p != nil {
		m.progress = p
	}
	m.mu.Unlock()
	if p != nil {
		m.notify()
	}
}

// dropThrottleLocked cancels a pending window and discards its buffered
// value.
func (m *Manager) dropThrottleLocked() {
	if m.throttleTimer != nil {
		m.throttleTimer.Stop()
		m.throttleTimer = nil
	}
	m.pendingProgress = nil
}
