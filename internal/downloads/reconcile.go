package downloads

import (
	"modelsync/pkg/types"
)

// Apply folds one canonical download event into the manager. Events for
// unknown ids still apply: snapshots are authoritative and per-item
// events are correlated purely by id.
func (m *Manager) Apply(ev *types.DownloadEvent) {
	if ev == nil {
		return
	}
	switch ev.Kind {
	case types.EventQueueSnapshot:
		m.ApplySnapshot(ev.Items, ev.MaxSize)
	case types.EventQueueRunComplete:
		m.applySummary(ev.Summary)
	case types.EventDownloadStarted:
		m.applyImmediate(progressView(ev))
	case types.EventDownloadProgress, types.EventShardProgress:
		m.applyThrottled(progressView(ev))
	case types.EventDownloadCompleted:
		m.applyCompleted(ev)
	case types.EventDownloadFailed:
		m.applyFailed(ev)
	case types.EventDownloadCancelled:
		m.finish(ev.ID)
	}
}

// ApplySnapshot rebuilds the queue view from a full, authoritative
// snapshot. Cancelled items fold into failed; at most one item is
// current.
func (m *Manager) ApplySnapshot(items []types.DownloadSummary, maxSize uint32) {
	m.mu.Lock()
	status := types.QueueStatus{
		Pending: []types.DownloadSummary{},
		Failed:  []types.DownloadSummary{},
		MaxSize: maxSize,
	}
	for _, item := range items {
		switch item.Status {
		case types.DownloadDownloading:
			if status.Current == nil {
				cur := item
				status.Current = &cur
			}
		case types.DownloadQueued:
			status.Pending = append(status.Pending, item)
		case types.DownloadFailed:
			status.Failed = append(status.Failed, item)
		case types.DownloadCancelled:
			item.Status = types.DownloadFailed
			status.Failed = append(status.Failed, item)
		case types.DownloadCompleted:
			// Completed items leave the queue; completion is reported by
			// its own event.
		}
	}
	m.status = status

	// A busy snapshot means a new run started: retire the old banner.
	if (status.Current != nil || len(status.Pending) > 0) && m.summary != nil {
		m.summary = nil
	}

	if status.Current != nil {
		phase := types.PhaseActive
		// A cancel in flight must not be demoted back to active by a
		// lagging snapshot.
		if m.ui.Phase == types.PhaseCancelling && m.ui.ActiveID == status.Current.ID {
			phase = types.PhaseCancelling
		}
		m.ui = types.UiState{ActiveID: status.Current.ID, Phase: phase}
	} else if m.ui.Phase != types.PhaseCancelling {
		m.ui = types.UiState{Phase: types.PhaseNone}
		m.progress = nil
		m.dropThrottleLocked()
	}
	m.mu.Unlock()
	m.notify()
}

func (m *Manager) applySummary(summary *types.QueueRunSummary) {
	if summary == nil {
		return
	}
	m.mu.Lock()
	s := *summary
	m.summary = &s
	m.mu.Unlock()
	m.notify()
}

// markActiveLocked eagerly promotes an id the moment any event arrives
// for it, so the UI does not lag behind the next snapshot. A cancel in
// flight is never overridden.
func (m *Manager) markActiveLocked(id string) {
	if m.ui.Phase == types.PhaseCancelling {
		return
	}
	if m.ui.ActiveID != id || m.ui.Phase != types.PhaseActive {
		m.ui = types.UiState{ActiveID: id, Phase: types.PhaseActive}
	}
}

// completionInfoLocked derives DownloadCompletionInfo from the event id
// plus a best-effort display-name lookup in the current snapshot.
func (m *Manager) completionInfoLocked(id string) types.CompletionInfo {
	modelID, quant := types.ParseDownloadID(id)
	info := types.CompletionInfo{
		ModelID:      modelID,
		Quantization: quant,
		Source:       "queue",
	}
	if m.status.Current != nil && m.status.Current.ID == id {
		info.DisplayName = m.status.Current.DisplayName
		return info
	}
	for _, it := range m.status.Pending {
		if it.ID == id {
			info.DisplayName = it.DisplayName
			return info
		}
	}
	for _, it := range m.status.Failed {
		if it.ID == id {
			info.DisplayName = it.DisplayName
			return info
		}
	}
	return info
}
