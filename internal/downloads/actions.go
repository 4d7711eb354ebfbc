package downloads

import (
	"context"
	"encoding/json"

	"modelsync/internal/transport"
	"modelsync/pkg/types"
)

// RefreshQueue fetches an authoritative snapshot from the backend and
// reconciles it.
func (m *Manager) RefreshQueue(ctx context.Context) error {
	raw, err := m.t.Invoke(ctx, transport.CmdGetDownloadQueue, nil)
	if err != nil {
		m.setErr(err)
		return err
	}
	var snap struct {
		Items   []types.DownloadSummary `json:"items"`
		MaxSize uint32                  `json:"max_size"`
	}
	if err := json.Unmarshal(raw, &snap); err != nil {
		m.setErr(err)
		return err
	}
	m.ApplySnapshot(snap.Items, snap.MaxSize)
	return nil
}

// refreshBestEffort swallows refresh failures: the next snapshot or event
// will reconcile state eventually.
func (m *Manager) refreshBestEffort(ctx context.Context) {
	raw, err := m.t.Invoke(ctx, transport.CmdGetDownloadQueue, nil)
	if err != nil {
		m.log.Debug().Err(err).Msg("queue refresh failed")
		return
	}
	var snap struct {
		Items   []types.DownloadSummary `json:"items"`
		MaxSize uint32                  `json:"max_size"`
	}
	if err := json.Unmarshal(raw, &snap); err != nil {
		m.log.Debug().Err(err).Msg("queue refresh returned malformed snapshot")
		return
	}
	m.ApplySnapshot(snap.Items, snap.MaxSize)
}

// QueueModel asks the backend to queue a download, then force-refreshes
// the snapshot.
func (m *Manager) QueueModel(ctx context.Context, modelID, quantization string) error {
	args := map[string]string{"modelId": modelID}
	if quantization != "" {
		args["quantization"] = quantization
	}
	if _, err := m.t.Invoke(ctx, transport.CmdQueueDownload, args); err != nil {
		m.setErr(err)
		return err
	}
	return m.RefreshQueue(ctx)
}

// Cancel cancels one download. Concurrent duplicate calls collapse to a
// single backend call through the in-flight set. Whatever the backend
// answers, local cleanup runs: a not-found means the item was already
// gone, and any other error must not leave the cancel UI stuck.
func (m *Manager) Cancel(ctx context.Context, id string) error {
	m.mu.Lock()
	if _, inflight := m.inflightCancels[id]; inflight {
		m.mu.Unlock()
		return nil
	}
	m.inflightCancels[id] = struct{}{}
	flipped := false
	if m.ui.ActiveID == id && m.ui.Phase != types.PhaseCancelling {
		m.ui.Phase = types.PhaseCancelling
		flipped = true
	}
	m.mu.Unlock()
	if flipped {
		m.notify()
	}

	_, err := m.t.Invoke(ctx, transport.CmdCancelDownload, map[string]string{"id": id})

	m.mu.Lock()
	delete(m.inflightCancels, id)
	cleaned := m.finishLocked(id)
	unexpected := err != nil && !transport.IsIdempotent(err)
	if unexpected {
		m.lastErr = err.Error()
	}
	m.mu.Unlock()
	if cleaned || unexpected {
		m.notify()
	}

	m.refreshBestEffort(ctx)
	if unexpected {
		return err
	}
	return nil
}

// CancelGroup cancels every shard of a sharded download.
func (m *Manager) CancelGroup(ctx context.Context, groupID string) error {
	return m.invokeThenRefresh(ctx, transport.CmdCancelShardGroup, map[string]string{"groupId": groupID})
}

// ClearFailed removes all failed items from the backend queue.
func (m *Manager) ClearFailed(ctx context.Context) error {
	return m.invokeThenRefresh(ctx, transport.CmdClearFailedDownloads, nil)
}

// RemoveQueued removes a not-yet-started item from the queue.
func (m *Manager) RemoveQueued(ctx context.Context, id string) error {
	return m.invokeThenRefresh(ctx, transport.CmdRemoveFromQueue, map[string]string{"id": id})
}

// Reorder moves pending items into the given order.
func (m *Manager) Reorder(ctx context.Context, ids []string) error {
	return m.invokeThenRefresh(ctx, transport.CmdReorderQueue, map[string][]string{"ids": ids})
}

func (m *Manager) invokeThenRefresh(ctx context.Context, command string, args any) error {
	if _, err := m.t.Invoke(ctx, command, args); err != nil && !transport.IsIdempotent(err) {
		m.setErr(err)
		return err
	}
	m.refreshBestEffort(ctx)
	return nil
}
