package events

import (
	"modelsync/pkg/types"
)

// Server normalizes a named-channel server event as delivered by the
// in-process transport: the event name selects the variant and the payload
// carries the fields.
func Server(name string, payload []byte) *types.ServerEvent {
	m, ok := parseObject(payload)
	if !ok {
		return nil
	}
	switch name {
	case "server:snapshot":
		return serverSnapshot(m)
	case "server:started":
		return serverLifecycle(m, types.EventRunning)
	case "server:stopping":
		return serverLifecycle(m, types.EventStopping)
	case "server:stopped":
		return serverLifecycle(m, types.EventStopped)
	case "server:error":
		return serverLifecycle(m, types.EventCrashed)
	case "server:health_changed":
		return serverHealth(m)
	default:
		return nil
	}
}

// ServerTagged normalizes a single tagged record as delivered by the
// push-stream transport, with the variant discriminator embedded in the
// payload. The tagged union has no stopping variant: the stream reports
// stop transitions only once they finish.
func ServerTagged(payload []byte) *types.ServerEvent {
	m, ok := parseObject(payload)
	if !ok {
		return nil
	}
	t, ok := str(m, "type")
	if !ok {
		return nil
	}
	switch t {
	case "server_snapshot":
		return serverSnapshot(m)
	case "server_started":
		return serverLifecycle(m, types.EventRunning)
	case "server_stopped":
		return serverLifecycle(m, types.EventStopped)
	case "server_error":
		return serverLifecycle(m, types.EventCrashed)
	case "server_health_changed":
		return serverHealth(m)
	default:
		return nil
	}
}

// serverLifecycle builds a single-server transition event. Events without
// a resolvable model id cannot be keyed and are dropped.
func serverLifecycle(m map[string]any, kind types.ServerEventKind) *types.ServerEvent {
	id, ok := modelID(m)
	if !ok {
		return nil
	}
	ev := &types.ServerEvent{
		Kind:      kind,
		ModelID:   id,
		UpdatedAt: timestampMillis(m),
	}
	ev.ModelName, _ = str(m, "modelName", "model_name")
	ev.Port = uint16(u32(m, "port"))
	ev.Error, _ = str(m, "error")
	return ev
}

func serverSnapshot(m map[string]any) *types.ServerEvent {
	entries, ok := arr(m, "servers")
	if !ok {
		return nil
	}
	ev := &types.ServerEvent{Kind: types.EventSnapshot}
	for _, e := range entries {
		em, ok := e.(map[string]any)
		if !ok {
			continue
		}
		id, ok := modelID(em)
		if !ok {
			continue
		}
		st := types.ServerState{
			ModelID:   id,
			Status:    types.ServerRunning,
			Port:      uint16(u32(em, "port")),
			UpdatedAt: timestampMillis(em),
		}
		st.ModelName, _ = str(em, "modelName", "model_name")
		if healthy, ok := em["healthy"].(bool); ok && healthy {
			st.Health = &types.HealthStatus{Status: types.HealthHealthy}
		}
		ev.Servers = append(ev.Servers, st)
	}
	return ev
}

// serverHealth builds a health-changed event. The nested status object
// must carry its own discriminant string, otherwise the whole event is
// invalid and dropped.
func serverHealth(m map[string]any) *types.ServerEvent {
	id, ok := modelID(m)
	if !ok {
		return nil
	}
	so, ok := obj(m, "status")
	if !ok {
		return nil
	}
	disc, ok := str(so, "status")
	if !ok {
		return nil
	}
	h := &types.HealthStatus{}
	switch disc {
	case "healthy":
		h.Status = types.HealthHealthy
	case "degraded":
		h.Status = types.HealthDegraded
		h.Reason, _ = str(so, "reason")
	case "unreachable":
		h.Status = types.HealthUnreachable
		h.LastError, _ = str(so, "lastError", "last_error")
	case "processdied", "process_died":
		h.Status = types.HealthProcessDied
	default:
		return nil
	}
	ev := &types.ServerEvent{
		Kind:      types.EventHealthChanged,
		ModelID:   id,
		UpdatedAt: timestampMillis(m),
		Health:    h,
	}
	ev.Detail, _ = str(m, "detail")
	return ev
}
