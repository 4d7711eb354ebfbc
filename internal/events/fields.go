package events

import (
	"encoding/json"
	"strconv"
	"time"
)

// nowMillis is overridable for tests that need deterministic fallback
// timestamps.
var nowMillis = func() int64 { return time.Now().UnixMilli() }

func parseObject(payload []byte) (map[string]any, bool) {
	var m map[string]any
	if err := json.Unmarshal(payload, &m); err != nil {
		return nil, false
	}
	return m, m != nil
}

// str returns the first present string value among keys.
func str(m map[string]any, keys ...string) (string, bool) {
	for _, k := range keys {
		if v, ok := m[k]; ok {
			if s, ok := v.(string); ok {
				return s, true
			}
		}
	}
	return "", false
}

// num returns the first present numeric value among keys.
func num(m map[string]any, keys ...string) (float64, bool) {
	for _, k := range keys {
		if v, ok := m[k]; ok {
			if f, ok := v.(float64); ok {
				return f, true
			}
		}
	}
	return 0, false
}

func obj(m map[string]any, keys ...string) (map[string]any, bool) {
	for _, k := range keys {
		if v, ok := m[k]; ok {
			if o, ok := v.(map[string]any); ok {
				return o, true
			}
		}
	}
	return nil, false
}

func arr(m map[string]any, keys ...string) ([]any, bool) {
	for _, k := range keys {
		if v, ok := m[k]; ok {
			if a, ok := v.([]any); ok {
				return a, true
			}
		}
	}
	return nil, false
}

// modelID resolves a model identifier that may arrive as a string or as a
// JSON number, under either casing convention.
func modelID(m map[string]any) (string, bool) {
	if s, ok := str(m, "modelId", "model_id"); ok && s != "" {
		return s, true
	}
	if f, ok := num(m, "modelId", "model_id"); ok {
		return strconv.FormatInt(int64(f), 10), true
	}
	return "", false
}

// Unit boundaries for coerceMillis. Values at or above nsFloor are
// nanoseconds; values in [msFloor, nsFloor) are already milliseconds;
// anything below is seconds.
const (
	msFloor = 1e11
	nsFloor = 1e17
)

// coerceMillis normalizes a "time server started" value of ambiguous unit
// into milliseconds using magnitude heuristics.
func coerceMillis(v float64) int64 {
	switch {
	case v >= nsFloor:
		return int64(v / 1e6)
	case v >= msFloor:
		return int64(v)
	default:
		return int64(v * 1000)
	}
}

// timestampMillis extracts the event timestamp under any of the accepted
// field names and coerces it to milliseconds. Events without a timestamp
// get the current time so they still pass the registry's ordering guard.
func timestampMillis(m map[string]any) int64 {
	if f, ok := num(m, "updatedAt", "updated_at", "startedAt", "started_at", "timestamp"); ok {
		return coerceMillis(f)
	}
	return nowMillis()
}

func u64(m map[string]any, keys ...string) uint64 {
	f, _ := num(m, keys...)
	if f < 0 {
		return 0
	}
	return uint64(f)
}

func u32(m map[string]any, keys ...string) uint32 {
	f, _ := num(m, keys...)
	if f < 0 {
		return 0
	}
	return uint32(f)
}

func f64(m map[string]any, keys ...string) float64 {
	f, _ := num(m, keys...)
	return f
}
