package httpapi

import (
	"bufio"
	"encoding/json"
	"net/http"
	"strings"
	"testing"

	"modelsync/pkg/types"
)

func TestEventStreamInitialFrame(t *testing.T) {
	sv := &fakeView{servers: map[string]types.ServerState{
		"m1": {ModelID: "m1", Status: types.ServerRunning},
	}}
	dl := &fakeDownloads{
		queue: types.QueueStatus{
			Pending: []types.DownloadSummary{{ID: "a", Status: types.DownloadQueued}},
			Failed:  []types.DownloadSummary{},
		},
		ui: types.UiState{Phase: types.PhaseNone},
	}
	srv := newTestServer(t, sv, dl)

	resp, err := http.Get(srv.URL + "/v1/events")
	if err != nil {
		t.Fatalf("GET: %v", err)
	}
	defer resp.Body.Close()
	if ct := resp.Header.Get("Content-Type"); ct != "text/event-stream" {
		t.Fatalf("content type = %q", ct)
	}

	// Read one complete frame: event line, data line, blank line.
	br := bufio.NewReader(resp.Body)
	line, err := br.ReadString('\n')
	if err != nil {
		t.Fatalf("read: %v", err)
	}
	if strings.TrimSpace(line) != "event: state" {
		t.Fatalf("event line = %q", line)
	}
	line, err = br.ReadString('\n')
	if err != nil {
		t.Fatalf("read: %v", err)
	}
	data, ok := strings.CutPrefix(strings.TrimSpace(line), "data: ")
	if !ok {
		t.Fatalf("data line = %q", line)
	}

	var snap types.StateSnapshot
	if err := json.Unmarshal([]byte(data), &snap); err != nil {
		t.Fatalf("unmarshal: %v", err)
	}
	if _, ok := snap.Servers["m1"]; !ok {
		t.Fatalf("snapshot servers = %+v", snap.Servers)
	}
	if len(snap.Queue.Pending) != 1 || snap.QueueLength != 1 {
		t.Fatalf("snapshot queue = %+v", snap.Queue)
	}
}
