// Package events normalizes transport-specific payloads into the canonical
// event vocabulary consumed by the server-state registry and the download
// queue manager. It is split by concern:
//
//   - fields.go: tolerant field extraction (camelCase/snake_case duals) and
//     timestamp unit coercion.
//   - server.go: the two server-event entry points (named channel vs tagged
//     record) and the shared builders behind them.
//   - download.go: the two download-event entry points.
//
// Normalization never returns an error: unrecognized or invalid payloads
// yield nil and the event is dropped. The two entry points of each family
// are behaviorally equivalent for semantically equivalent input; both wire
// shapes funnel into the same builders.
package events
