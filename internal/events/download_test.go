package events

import (
	"reflect"
	"testing"

	"modelsync/pkg/types"
)

func TestDownloadProgressNamed(t *testing.T) {
	payload := []byte(`{"id":"org/model:Q4","downloaded":1024,"total":4096,"speed_bps":512.5,"eta_seconds":6,"percentage":25}`)
	ev := Download("download:progress", payload)
	if ev == nil || ev.Kind != types.EventDownloadProgress {
		t.Fatalf("got %+v", ev)
	}
	if ev.ID != "org/model:Q4" || ev.Downloaded != 1024 || ev.Total != 4096 {
		t.Fatalf("fields = %+v", ev)
	}
	if ev.SpeedBPS != 512.5 || ev.ETASeconds != 6 || ev.Percentage != 25 {
		t.Fatalf("rates = %+v", ev)
	}
	if ev.Shard != nil {
		t.Fatalf("plain progress carried shard %+v", ev.Shard)
	}
}

func TestDownloadShardProgress(t *testing.T) {
	payload := []byte(`{"type":"shard_progress","id":"org/model","shard_index":2,"total_shards":5,
		"shard_filename":"model-00002-of-00005.gguf","shard_downloaded":10,"shard_total":100,
		"aggregate_downloaded":210,"aggregate_total":500,"speed_bps":99,"percentage":42}`)
	ev := Download("download:progress", payload)
	if ev == nil || ev.Kind != types.EventShardProgress {
		t.Fatalf("got %+v", ev)
	}
	if ev.Shard == nil {
		t.Fatal("expected shard detail")
	}
	if ev.Shard.Index != 2 || ev.Shard.Total != 5 || ev.Shard.Filename != "model-00002-of-00005.gguf" {
		t.Fatalf("shard = %+v", ev.Shard)
	}
	// The headline figures for a sharded download are the aggregates.
	if ev.Downloaded != 210 || ev.Total != 500 {
		t.Fatalf("aggregates = %d/%d", ev.Downloaded, ev.Total)
	}
}

func TestDownloadShardProgressByIndexAlone(t *testing.T) {
	// Some producers omit the type tag; a shard index alone marks the
	// record as sharded.
	ev := Download("download:progress", []byte(`{"id":"x","shard_index":0,"total_shards":3,"aggregate_downloaded":1,"aggregate_total":3}`))
	if ev == nil || ev.Kind != types.EventShardProgress {
		t.Fatalf("got %+v", ev)
	}
}

func TestDownloadTaggedWrapperUnwrap(t *testing.T) {
	wrapped := []byte(`{"type":"download","event":{"type":"download_completed","id":"org/model:Q8"}}`)
	ev := DownloadTagged(wrapped)
	if ev == nil || ev.Kind != types.EventDownloadCompleted || ev.ID != "org/model:Q8" {
		t.Fatalf("got %+v", ev)
	}
}

func TestDownloadTaggedMatchesNamed(t *testing.T) {
	named := Download("download:failed", []byte(`{"id":"a","error":"disk full"}`))
	tagged := DownloadTagged([]byte(`{"type":"download_failed","id":"a","error":"disk full"}`))
	if named == nil || tagged == nil {
		t.Fatal("expected events from both transports")
	}
	if !reflect.DeepEqual(named, tagged) {
		t.Fatalf("named %+v != tagged %+v", named, tagged)
	}
}

func TestDownloadTerminalWithoutID(t *testing.T) {
	if ev := Download("download:completed", []byte(`{"error":"x"}`)); ev != nil {
		t.Fatalf("expected nil, got %+v", ev)
	}
	if ev := Download("download:started", []byte(`{"id":""}`)); ev != nil {
		t.Fatalf("expected nil, got %+v", ev)
	}
}

func TestQueueSnapshot(t *testing.T) {
	payload := []byte(`{"max_size":10,"items":[
		{"id":"a","status":"downloading","display_name":"A","position":0},
		{"id":"b","status":"queued","position":1,"group_id":"g1","shard_info":{"index":1,"total":4,"filename":"f"}},
		{"id":"c","status":"some_future_state","position":2},
		{"status":"queued"}
	]}`)
	ev := Download("download:queue_snapshot", payload)
	if ev == nil || ev.Kind != types.EventQueueSnapshot {
		t.Fatalf("got %+v", ev)
	}
	if ev.MaxSize != 10 {
		t.Fatalf("MaxSize = %d", ev.MaxSize)
	}
	if len(ev.Items) != 3 {
		t.Fatalf("len(Items) = %d", len(ev.Items))
	}
	if ev.Items[0].Status != types.DownloadDownloading {
		t.Fatalf("Items[0].Status = %v", ev.Items[0].Status)
	}
	if ev.Items[1].ShardInfo == nil || ev.Items[1].ShardInfo.Total != 4 {
		t.Fatalf("Items[1].ShardInfo = %+v", ev.Items[1].ShardInfo)
	}
	// Unknown status strings degrade to queued rather than dropping the row.
	if ev.Items[2].Status != types.DownloadQueued {
		t.Fatalf("Items[2].Status = %v", ev.Items[2].Status)
	}
}

func TestQueueRunComplete(t *testing.T) {
	payload := []byte(`{"type":"queue_run_complete","summary":{
		"run_id":"6ba7b810-9dad-11d1-80b4-00c04fd430c8",
		"started_at_ms":1700000000000,"completed_at_ms":1700000060000,
		"total_attempts_downloaded":2,"total_attempts_failed":1,"total_attempts_cancelled":0,
		"unique_models_downloaded":2,"unique_models_failed":1,"unique_models_cancelled":0,
		"truncated":false,"items":[{"id":"a","display_name":"A","last_result":"downloaded","last_completed_at_ms":1700000050000,"attempts":1}]}}`)
	ev := DownloadTagged(payload)
	if ev == nil || ev.Kind != types.EventQueueRunComplete {
		t.Fatalf("got %+v", ev)
	}
	if ev.Summary == nil {
		t.Fatal("expected summary")
	}
	if ev.Summary.RunID.String() != "6ba7b810-9dad-11d1-80b4-00c04fd430c8" {
		t.Fatalf("RunID = %s", ev.Summary.RunID)
	}
	if ev.Summary.TotalAttemptsDownloaded != 2 || ev.Summary.TotalAttemptsFailed != 1 {
		t.Fatalf("counts = %+v", ev.Summary)
	}
	if len(ev.Summary.Items) != 1 || ev.Summary.Items[0].LastResult != types.CompletionDownloaded {
		t.Fatalf("items = %+v", ev.Summary.Items)
	}
	if got := ev.Summary.TotalAttempts(); got != 3 {
		t.Fatalf("TotalAttempts = %d", got)
	}
}

func TestDownloadUnknownKind(t *testing.T) {
	if ev := Download("download:resumed", []byte(`{"id":"a"}`)); ev != nil {
		t.Fatalf("expected nil, got %+v", ev)
	}
	if ev := DownloadTagged([]byte(`{"type":"mystery","id":"a"}`)); ev != nil {
		t.Fatalf("expected nil, got %+v", ev)
	}
}
