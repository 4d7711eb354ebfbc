package downloads

import (
	"time"

	"modelsync/pkg/types"
)

// applyCompleted renders the success state, reports the completion, and
// schedules delayed cleanup so the success state is visibly rendered
// before disappearing. The render only happens when the id actually ends
// up displayed; a cancel in flight for another download keeps its own
// progress on screen.
func (m *Manager) applyCompleted(ev *types.DownloadEvent) {
	id := ev.ID
	m.mu.Lock()
	m.markActiveLocked(id)
	if m.ui.ActiveID == id {
		p := progressView(ev)
		m.progress = &p
		m.dropThrottleLocked()
	}
	info := m.completionInfoLocked(id)
	cb := m.opts.OnCompletion
	grace := m.opts.CompletionGrace
	m.mu.Unlock()

	downloadsCompleted.Inc()
	m.notify()
	if cb != nil {
		cb(info)
	}
	time.AfterFunc(grace, func() { m.finish(id) })
}

// applyFailed cleans up immediately; the item shows up in the failed list
// on the next snapshot. Like the cancelled path, a failure for an id that
// is not the displayed one leaves the displayed download alone.
func (m *Manager) applyFailed(ev *types.DownloadEvent) {
	m.finish(ev.ID)
}

// finish runs terminal cleanup for an id outside the lock.
func (m *Manager) finish(id string) {
	m.mu.Lock()
	changed := m.finishLocked(id)
	m.mu.Unlock()
	if changed {
		m.notify()
	}
}

// finishLocked is the single writer of "stop showing progress for this
// id". A no-op unless the id is the one currently displayed; when it
// matches it clears the UI state, the displayed and buffered progress,
// the pending throttle window, and the in-flight cancel mark.
func (m *Manager) finishLocked(id string) bool {
	if m.ui.ActiveID != id {
		return false
	}
	m.ui = types.UiState{Phase: types.PhaseNone}
	m.progress = nil
	m.dropThrottleLocked()
	delete(m.inflightCancels, id)
	return true
}
