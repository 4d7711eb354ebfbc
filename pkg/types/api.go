package types

// ErrorResponse is a consistent JSON error payload.
type ErrorResponse struct {
	// Error message.
	// example: invalid JSON body
	Error string `json:"error" example:"invalid JSON body"`
	// HTTP status code.
	// example: 400
	Code int `json:"code" example:"400"`
}

// ServersResponse wraps the registry view returned by GET /v1/servers.
type ServersResponse struct {
	// Current server states keyed by model id.
	Servers map[string]ServerState `json:"servers"`
}

// QueueResponse is the consolidated download view returned by
// GET /v1/downloads/queue.
type QueueResponse struct {
	Queue       QueueStatus      `json:"queue"`
	UiState     UiState          `json:"uiState"`
	Progress    *Progress        `json:"progress,omitempty"`
	QueueLength int              `json:"queueLength"`
	Summary     *QueueRunSummary `json:"summary,omitempty"`
	// Last unexpected backend error, if any. Informational only.
	Error string `json:"error,omitempty"`
}

// QueueDownloadRequest is the payload for POST /v1/downloads/queue.
type QueueDownloadRequest struct {
	// Model repository id.
	// example: unsloth/Llama-3-GGUF
	ModelID string `json:"modelId" example:"unsloth/Llama-3-GGUF"`
	// Optional quantization variant.
	// example: Q4_K_M
	Quantization string `json:"quantization,omitempty" example:"Q4_K_M"`
}

// CancelGroupRequest is the payload for POST /v1/downloads/cancel-group.
type CancelGroupRequest struct {
	GroupID string `json:"groupId"`
}

// ReorderRequest is the payload for POST /v1/downloads/reorder.
type ReorderRequest struct {
	// Download ids in the desired queue order.
	IDs []string `json:"ids"`
}

// StateSnapshot is the consolidated record pushed on the /v1/events
// stream whenever the registry or the queue manager changes.
type StateSnapshot struct {
	Servers     map[string]ServerState `json:"servers"`
	Queue       QueueStatus            `json:"queue"`
	UiState     UiState                `json:"uiState"`
	Progress    *Progress              `json:"progress,omitempty"`
	QueueLength int                    `json:"queueLength"`
	Summary     *QueueRunSummary       `json:"summary,omitempty"`
	Error       string                 `json:"error,omitempty"`
}
