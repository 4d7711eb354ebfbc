package events

import (
	"encoding/json"

	"modelsync/pkg/types"
)

// Download normalizes a named-channel download event. Both plain and shard
// progress share the "download:progress" channel; the payload's own type
// tag distinguishes them.
func Download(name string, payload []byte) *types.DownloadEvent {
	m, ok := parseObject(payload)
	if !ok {
		return nil
	}
	switch name {
	case "download:queue_snapshot":
		return queueSnapshot(m)
	case "download:started":
		return downloadTerminal(m, types.EventDownloadStarted)
	case "download:progress":
		return downloadProgress(m)
	case "download:completed":
		return downloadTerminal(m, types.EventDownloadCompleted)
	case "download:failed":
		return downloadTerminal(m, types.EventDownloadFailed)
	case "download:cancelled":
		return downloadTerminal(m, types.EventDownloadCancelled)
	case "download:queue_run_complete":
		return queueRunComplete(m)
	default:
		return nil
	}
}

// DownloadTagged normalizes a single tagged record. A wrapper record of
// type "download" carrying a nested event is unwrapped first.
func DownloadTagged(payload []byte) *types.DownloadEvent {
	m, ok := parseObject(payload)
	if !ok {
		return nil
	}
	return downloadTagged(m)
}

func downloadTagged(m map[string]any) *types.DownloadEvent {
	t, ok := str(m, "type")
	if !ok {
		return nil
	}
	switch t {
	case "download":
		inner, ok := obj(m, "event")
		if !ok {
			return nil
		}
		return downloadTagged(inner)
	case "queue_snapshot":
		return queueSnapshot(m)
	case "download_started":
		return downloadTerminal(m, types.EventDownloadStarted)
	case "download_progress", "shard_progress":
		return downloadProgress(m)
	case "download_completed":
		return downloadTerminal(m, types.EventDownloadCompleted)
	case "download_failed":
		return downloadTerminal(m, types.EventDownloadFailed)
	case "download_cancelled":
		return downloadTerminal(m, types.EventDownloadCancelled)
	case "queue_run_complete":
		return queueRunComplete(m)
	default:
		return nil
	}
}

// downloadTerminal covers the id-only lifecycle variants. Records without
// an id cannot be correlated and are dropped.
func downloadTerminal(m map[string]any, kind types.DownloadEventKind) *types.DownloadEvent {
	id, ok := str(m, "id")
	if !ok || id == "" {
		return nil
	}
	ev := &types.DownloadEvent{Kind: kind, ID: id}
	ev.Error, _ = str(m, "error")
	ev.Message, _ = str(m, "message")
	return ev
}

func downloadProgress(m map[string]any) *types.DownloadEvent {
	id, ok := str(m, "id")
	if !ok || id == "" {
		return nil
	}
	t, _ := str(m, "type")
	_, sharded := num(m, "shard_index", "shardIndex")
	if t == "shard_progress" || sharded {
		filename, _ := str(m, "shard_filename", "shardFilename")
		return &types.DownloadEvent{
			Kind:       types.EventShardProgress,
			ID:         id,
			Downloaded: u64(m, "aggregate_downloaded", "aggregateDownloaded"),
			Total:      u64(m, "aggregate_total", "aggregateTotal"),
			SpeedBPS:   f64(m, "speed_bps", "speedBps"),
			ETASeconds: f64(m, "eta_seconds", "etaSeconds"),
			Percentage: f64(m, "percentage"),
			Shard: &types.ShardProgress{
				Index:               u32(m, "shard_index", "shardIndex"),
				Total:               u32(m, "total_shards", "totalShards"),
				Filename:            filename,
				Downloaded:          u64(m, "shard_downloaded", "shardDownloaded"),
				TotalBytes:          u64(m, "shard_total", "shardTotal"),
				AggregateDownloaded: u64(m, "aggregate_downloaded", "aggregateDownloaded"),
				AggregateTotal:      u64(m, "aggregate_total", "aggregateTotal"),
			},
		}
	}
	return &types.DownloadEvent{
		Kind:       types.EventDownloadProgress,
		ID:         id,
		Downloaded: u64(m, "downloaded"),
		Total:      u64(m, "total"),
		SpeedBPS:   f64(m, "speed_bps", "speedBps"),
		ETASeconds: f64(m, "eta_seconds", "etaSeconds"),
		Percentage: f64(m, "percentage"),
	}
}

func queueSnapshot(m map[string]any) *types.DownloadEvent {
	entries, ok := arr(m, "items")
	if !ok {
		return nil
	}
	ev := &types.DownloadEvent{
		Kind:    types.EventQueueSnapshot,
		MaxSize: u32(m, "max_size", "maxSize"),
	}
	for _, e := range entries {
		em, ok := e.(map[string]any)
		if !ok {
			continue
		}
		item, ok := queueItem(em)
		if !ok {
			continue
		}
		ev.Items = append(ev.Items, item)
	}
	return ev
}

func queueItem(em map[string]any) (types.DownloadSummary, bool) {
	id, ok := str(em, "id")
	if !ok || id == "" {
		return types.DownloadSummary{}, false
	}
	status, _ := str(em, "status")
	item := types.DownloadSummary{
		ID:       id,
		Status:   types.ParseDownloadStatus(status),
		Position: u32(em, "position"),
	}
	item.DisplayName, _ = str(em, "display_name", "displayName")
	item.Error, _ = str(em, "error")
	item.GroupID, _ = str(em, "group_id", "groupId")
	if si, ok := obj(em, "shard_info", "shardInfo"); ok {
		info := &types.ShardInfo{
			Index: u32(si, "index", "shard_index"),
			Total: u32(si, "total", "total_shards"),
		}
		info.Filename, _ = str(si, "filename")
		item.ShardInfo = info
	}
	return item, true
}

// queueRunComplete re-marshals the summary subtree so the uuid and count
// fields decode through the canonical struct tags.
func queueRunComplete(m map[string]any) *types.DownloadEvent {
	so, ok := obj(m, "summary")
	if !ok {
		return nil
	}
	b, err := json.Marshal(so)
	if err != nil {
		return nil
	}
	var summary types.QueueRunSummary
	if err := json.Unmarshal(b, &summary); err != nil {
		return nil
	}
	return &types.DownloadEvent{Kind: types.EventQueueRunComplete, Summary: &summary}
}
