package downloads

import (
	"fmt"
	"sync"
	"time"

	"modelsync/pkg/types"
)

// defaultBatchWindow coalesces bursts of completions into one UI refresh
// and one notification.
const defaultBatchWindow = 350 * time.Millisecond

// Refresh triggers the model-list reload after a batch of completions.
type Refresh func()

// Notify emits one user-visible notification.
type Notify func(title, message string)

// Batcher accumulates completion infos and flushes them in one call once
// a fixed window from the first push elapses (the window does not slide).
// Each push after a flush starts a new independent window.
type Batcher struct {
	mu      sync.Mutex
	window  time.Duration
	items   []types.CompletionInfo
	timer   *time.Timer
	refresh Refresh
	notify  Notify
	closed  bool
}

// NewBatcher returns a batcher with the given window; window <= 0 takes
// the default.
func NewBatcher(window time.Duration, refresh Refresh, notify Notify) *Batcher {
	if window <= 0 {
		window = defaultBatchWindow
	}
	return &Batcher{window: window, refresh: refresh, notify: notify}
}

// Push adds one completion to the current batch, opening a window if none
// is pending.
func (b *Batcher) Push(info types.CompletionInfo) {
	b.mu.Lock()
	defer b.mu.Unlock()
	if b.closed {
		return
	}
	b.items = append(b.items, info)
	if b.timer == nil {
		b.timer = time.AfterFunc(b.window, b.flush)
	}
}

func (b *Batcher) flush() {
	b.mu.Lock()
	items := b.items
	b.items = nil
	b.timer = nil
	closed := b.closed
	b.mu.Unlock()
	if closed || len(items) == 0 {
		return
	}
	if b.refresh != nil {
		b.refresh()
	}
	if b.notify != nil {
		title, msg := batchMessage(items)
		b.notify(title, msg)
	}
}

// Close cancels any pending window; a closed batcher never flushes.
func (b *Batcher) Close() {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.closed = true
	if b.timer != nil {
		b.timer.Stop()
		b.timer = nil
	}
	b.items = nil
}

// batchMessage words the notification: singular naming the one model,
// plural as a count.
func batchMessage(items []types.CompletionInfo) (title, message string) {
	if len(items) == 1 {
		name := items[0].DisplayName
		if name == "" {
			name = items[0].ModelID
		}
		return "Download complete", fmt.Sprintf("%s downloaded", name)
	}
	return "Downloads complete", fmt.Sprintf("%d models downloaded", len(items))
}
