// Package downloads reconciles the backend download queue into a single
// race-free client view. It is structured into small files by concern:
//
//   - manager.go: core Manager type, constructor, read API, subscribers.
//   - config.go: Options and package defaults.
//   - reconcile.go: snapshot reconciliation and event dispatch.
//   - progress.go: progress normalization and trailing-edge throttling.
//   - cleanup.go: the single terminal-cleanup writer and completion grace.
//   - actions.go: backend actions (queue, cancel, clear, reorder, refresh).
//   - batcher.go: the time-windowed completion batcher.
//
// The manager owns all of its state behind one mutex; the backend event
// stream is the final authority and every local mutation is an optimistic
// projection that the next snapshot can correct.
package downloads
