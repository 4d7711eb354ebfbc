package types

// ServerStatus is the lifecycle state of a model-serving process as
// reported by the backend.
type ServerStatus string

const (
	ServerRunning  ServerStatus = "running"
	ServerStopping ServerStatus = "stopping"
	ServerStopped  ServerStatus = "stopped"
	ServerCrashed  ServerStatus = "crashed"
)

// HealthKind discriminates HealthStatus variants.
type HealthKind string

const (
	HealthHealthy     HealthKind = "healthy"
	HealthDegraded    HealthKind = "degraded"
	HealthUnreachable HealthKind = "unreachable"
	HealthProcessDied HealthKind = "process_died"
)

// HealthStatus is the tagged health variant carried by health-changed
// events. Reason is set for degraded, LastError for unreachable.
type HealthStatus struct {
	Status    HealthKind `json:"status"`
	Reason    string     `json:"reason,omitempty"`
	LastError string     `json:"lastError,omitempty"`
}

// Healthy reports whether the status is the healthy variant.
func (h HealthStatus) Healthy() bool { return h.Status == HealthHealthy }

// Failed reports whether the status is a critical variant.
func (h HealthStatus) Failed() bool {
	return h.Status == HealthUnreachable || h.Status == HealthProcessDied
}

// ServerState is the client-side view of one serving process, keyed by
// model id. UpdatedAt is a wall-clock timestamp in milliseconds and drives
// the monotonic merge rule: a stored state's UpdatedAt never decreases.
type ServerState struct {
	ModelID   string        `json:"modelId"`
	ModelName string        `json:"modelName,omitempty"`
	Status    ServerStatus  `json:"status"`
	Port      uint16        `json:"port,omitempty"`
	UpdatedAt int64         `json:"updatedAt"`
	Health    *HealthStatus `json:"health,omitempty"`
}

// ServerEventKind discriminates canonical server events.
type ServerEventKind string

const (
	EventSnapshot      ServerEventKind = "snapshot"
	EventRunning       ServerEventKind = "running"
	EventStopping      ServerEventKind = "stopping"
	EventStopped       ServerEventKind = "stopped"
	EventCrashed       ServerEventKind = "crashed"
	EventHealthChanged ServerEventKind = "server_health_changed"
)

// ServerEvent is the canonical server-side event vocabulary produced by
// the normalizer. Snapshot events carry Servers; all other kinds carry a
// single ModelID. Health is set only for EventHealthChanged.
type ServerEvent struct {
	Kind      ServerEventKind
	ModelID   string
	ModelName string
	Port      uint16
	UpdatedAt int64
	Error     string
	Health    *HealthStatus
	Detail    string
	Servers   []ServerState
}
