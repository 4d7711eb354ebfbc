package types

import "github.com/google/uuid"

// CompletionKind is the result class of one completion attempt.
type CompletionKind string

const (
	CompletionDownloaded     CompletionKind = "downloaded"
	CompletionFailedKind     CompletionKind = "failed"
	CompletionCancelledKind  CompletionKind = "cancelled"
	CompletionAlreadyPresent CompletionKind = "already_present"
)

// CompletionDetail is one artifact's record inside a queue-run summary.
type CompletionDetail struct {
	ID                string         `json:"id"`
	DisplayName       string         `json:"display_name"`
	LastResult        CompletionKind `json:"last_result"`
	LastCompletedAtMS int64          `json:"last_completed_at_ms"`
	Attempts          uint32         `json:"attempts"`
}

// QueueRunSummary is the aggregate outcome of one queue-drain cycle,
// emitted when the queue transitions busy -> idle. UI shows it as a
// dismissible banner; it is cleared when a new run becomes busy.
type QueueRunSummary struct {
	RunID         uuid.UUID `json:"run_id"`
	StartedAtMS   int64     `json:"started_at_ms"`
	CompletedAtMS int64     `json:"completed_at_ms"`

	TotalAttemptsDownloaded uint32 `json:"total_attempts_downloaded"`
	TotalAttemptsFailed     uint32 `json:"total_attempts_failed"`
	TotalAttemptsCancelled  uint32 `json:"total_attempts_cancelled"`

	UniqueModelsDownloaded uint32 `json:"unique_models_downloaded"`
	UniqueModelsFailed     uint32 `json:"unique_models_failed"`
	UniqueModelsCancelled  uint32 `json:"unique_models_cancelled"`

	Truncated bool               `json:"truncated"`
	Items     []CompletionDetail `json:"items"`
}

// TotalUniqueModels sums unique models across all result kinds.
func (s QueueRunSummary) TotalUniqueModels() uint32 {
	return s.UniqueModelsDownloaded + s.UniqueModelsFailed + s.UniqueModelsCancelled
}

// TotalAttempts sums attempts across all result kinds.
func (s QueueRunSummary) TotalAttempts() uint32 {
	return s.TotalAttemptsDownloaded + s.TotalAttemptsFailed + s.TotalAttemptsCancelled
}
