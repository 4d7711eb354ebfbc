package types

import "strings"

// DownloadStatus is the wire status of a queue item. Cancelled exists on
// the wire only; reconciliation folds it into failed.
type DownloadStatus string

const (
	DownloadQueued      DownloadStatus = "queued"
	DownloadDownloading DownloadStatus = "downloading"
	DownloadCompleted   DownloadStatus = "completed"
	DownloadFailed      DownloadStatus = "failed"
	DownloadCancelled   DownloadStatus = "cancelled"
)

// ParseDownloadStatus maps a wire string to a status. Unknown values
// default to queued, matching the backend's own parser.
func ParseDownloadStatus(s string) DownloadStatus {
	switch s {
	case "downloading":
		return DownloadDownloading
	case "completed":
		return DownloadCompleted
	case "failed":
		return DownloadFailed
	case "cancelled":
		return DownloadCancelled
	default:
		return DownloadQueued
	}
}

// ShardInfo describes one shard of a multi-part download.
type ShardInfo struct {
	Index    uint32 `json:"index"`
	Total    uint32 `json:"total"`
	Filename string `json:"filename,omitempty"`
}

// DownloadSummary is one item in a queue snapshot. ID is the canonical
// download id (repo[:quantization]).
type DownloadSummary struct {
	ID          string         `json:"id"`
	DisplayName string         `json:"display_name"`
	Status      DownloadStatus `json:"status"`
	Position    uint32         `json:"position"`
	Error       string         `json:"error,omitempty"`
	GroupID     string         `json:"group_id,omitempty"`
	ShardInfo   *ShardInfo     `json:"shard_info,omitempty"`
}

// QueueStatus is the reconciled view of the download queue: at most one
// actively downloading item, ordered pending items, and failed items
// (cancelled folded in).
type QueueStatus struct {
	Current *DownloadSummary  `json:"current,omitempty"`
	Pending []DownloadSummary `json:"pending"`
	Failed  []DownloadSummary `json:"failed"`
	MaxSize uint32            `json:"maxSize"`
}

// UiPhase tells UI surfaces whether progress UI should be mounted.
// Cancelling only ever transitions to none, never back to active, until
// terminal cleanup runs.
type UiPhase string

const (
	PhaseActive     UiPhase = "active"
	PhaseCancelling UiPhase = "cancelling"
	PhaseNone       UiPhase = "none"
)

// UiState is the single authoritative progress-UI signal.
type UiState struct {
	ActiveID string  `json:"activeId,omitempty"`
	Phase    UiPhase `json:"phase"`
}

// ProgressStatus classifies a normalized progress view.
type ProgressStatus string

const (
	ProgressStarted  ProgressStatus = "started"
	ProgressRunning  ProgressStatus = "progress"
	ProgressComplete ProgressStatus = "completed"
	ProgressErrored  ProgressStatus = "error"
)

// ShardProgress carries per-shard and aggregate byte counts for sharded
// downloads.
type ShardProgress struct {
	Index               uint32 `json:"index"`
	Total               uint32 `json:"total"`
	Filename            string `json:"filename"`
	Downloaded          uint64 `json:"downloaded"`
	TotalBytes          uint64 `json:"totalBytes"`
	AggregateDownloaded uint64 `json:"aggregateDownloaded"`
	AggregateTotal      uint64 `json:"aggregateTotal"`
}

// Progress is the normalized per-download progress view shown by the UI.
type Progress struct {
	ID         string         `json:"id"`
	Status     ProgressStatus `json:"status"`
	Downloaded uint64         `json:"downloaded"`
	Total      uint64         `json:"total"`
	Percentage float64        `json:"percentage"`
	SpeedBPS   float64        `json:"speedBps"`
	ETASeconds float64        `json:"etaSeconds"`
	Error      string         `json:"error,omitempty"`
	Shard      *ShardProgress `json:"shard,omitempty"`
}

// DownloadEventKind discriminates canonical download events.
type DownloadEventKind string

const (
	EventQueueSnapshot     DownloadEventKind = "queue_snapshot"
	EventDownloadStarted   DownloadEventKind = "download_started"
	EventDownloadProgress  DownloadEventKind = "download_progress"
	EventShardProgress     DownloadEventKind = "shard_progress"
	EventDownloadCompleted DownloadEventKind = "download_completed"
	EventDownloadFailed    DownloadEventKind = "download_failed"
	EventDownloadCancelled DownloadEventKind = "download_cancelled"
	EventQueueRunComplete  DownloadEventKind = "queue_run_complete"
)

// DownloadEvent is the canonical download-side event vocabulary.
type DownloadEvent struct {
	Kind       DownloadEventKind
	ID         string
	Items      []DownloadSummary
	MaxSize    uint32
	Downloaded uint64
	Total      uint64
	SpeedBPS   float64
	ETASeconds float64
	Percentage float64
	Error      string
	Message    string
	Shard      *ShardProgress
	Summary    *QueueRunSummary
}

// CompletionInfo identifies one finished download for the completion
// batcher. It is derived client-side, not transport-native.
type CompletionInfo struct {
	ModelID      string `json:"modelId"`
	Quantization string `json:"quantization,omitempty"`
	DisplayName  string `json:"displayName,omitempty"`
	Source       string `json:"source"`
}

// ParseDownloadID splits a canonical download id of the form
// repo[:quantization]. The suffix after the last colon is treated as a
// quantization only when it is non-empty and contains no slash, so repo
// ids like "unsloth/Llama-3" survive intact.
func ParseDownloadID(id string) (modelID, quantization string) {
	if i := strings.LastIndex(id, ":"); i >= 0 {
		quant := id[i+1:]
		if quant != "" && !strings.Contains(quant, "/") {
			return id[:i], quant
		}
	}
	return id, ""
}
