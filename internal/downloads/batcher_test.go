package downloads

import (
	"sync"
	"testing"
	"time"

	"modelsync/pkg/types"
)

type batchRecorder struct {
	mu       sync.Mutex
	refreshs int
	messages []string
}

func (r *batchRecorder) refresh() {
	r.mu.Lock()
	r.refreshs++
	r.mu.Unlock()
}

func (r *batchRecorder) notify(title, message string) {
	r.mu.Lock()
	r.messages = append(r.messages, title+": "+message)
	r.mu.Unlock()
}

func (r *batchRecorder) snapshot() (int, []string) {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.refreshs, append([]string(nil), r.messages...)
}

func TestBatcherCoalescesBurst(t *testing.T) {
	rec := &batchRecorder{}
	b := NewBatcher(50*time.Millisecond, rec.refresh, rec.notify)
	defer b.Close()

	b.Push(types.CompletionInfo{ModelID: "a"})
	b.Push(types.CompletionInfo{ModelID: "b"})
	b.Push(types.CompletionInfo{ModelID: "c"})

	time.Sleep(120 * time.Millisecond)
	refreshs, msgs := rec.snapshot()
	if refreshs != 1 {
		t.Fatalf("refreshs = %d", refreshs)
	}
	if len(msgs) != 1 || msgs[0] != "Downloads complete: 3 models downloaded" {
		t.Fatalf("messages = %v", msgs)
	}
}

func TestBatcherSingularMessage(t *testing.T) {
	rec := &batchRecorder{}
	b := NewBatcher(30*time.Millisecond, rec.refresh, rec.notify)
	defer b.Close()

	b.Push(types.CompletionInfo{ModelID: "org/model", DisplayName: "Model Q4"})
	time.Sleep(80 * time.Millisecond)
	_, msgs := rec.snapshot()
	if len(msgs) != 1 || msgs[0] != "Download complete: Model Q4 downloaded" {
		t.Fatalf("messages = %v", msgs)
	}
}

func TestBatcherSingularFallsBackToModelID(t *testing.T) {
	rec := &batchRecorder{}
	b := NewBatcher(30*time.Millisecond, rec.refresh, rec.notify)
	defer b.Close()

	b.Push(types.CompletionInfo{ModelID: "org/model"})
	time.Sleep(80 * time.Millisecond)
	_, msgs := rec.snapshot()
	if len(msgs) != 1 || msgs[0] != "Download complete: org/model downloaded" {
		t.Fatalf("messages = %v", msgs)
	}
}

func TestBatcherWindowIsFixedNotSliding(t *testing.T) {
	rec := &batchRecorder{}
	b := NewBatcher(60*time.Millisecond, rec.refresh, rec.notify)
	defer b.Close()

	// Pushes spaced wider than the window land in separate batches.
	b.Push(types.CompletionInfo{ModelID: "a"})
	time.Sleep(100 * time.Millisecond)
	b.Push(types.CompletionInfo{ModelID: "b"})
	time.Sleep(100 * time.Millisecond)

	refreshs, msgs := rec.snapshot()
	if refreshs != 2 || len(msgs) != 2 {
		t.Fatalf("refreshs = %d, messages = %v", refreshs, msgs)
	}
	if msgs[0] != "Download complete: a downloaded" || msgs[1] != "Download complete: b downloaded" {
		t.Fatalf("messages = %v", msgs)
	}
}

func TestBatcherCloseCancelsPendingFlush(t *testing.T) {
	rec := &batchRecorder{}
	b := NewBatcher(40*time.Millisecond, rec.refresh, rec.notify)

	b.Push(types.CompletionInfo{ModelID: "a"})
	b.Close()
	time.Sleep(100 * time.Millisecond)

	refreshs, msgs := rec.snapshot()
	if refreshs != 0 || len(msgs) != 0 {
		t.Fatalf("closed batcher flushed: %d, %v", refreshs, msgs)
	}

	// Pushes after Close are dropped.
	b.Push(types.CompletionInfo{ModelID: "b"})
	time.Sleep(80 * time.Millisecond)
	if refreshs, msgs = rec.snapshot(); refreshs != 0 || len(msgs) != 0 {
		t.Fatalf("push after close flushed: %d, %v", refreshs, msgs)
	}
}
