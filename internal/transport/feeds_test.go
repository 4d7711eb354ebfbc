package transport

import (
	"testing"

	"github.com/rs/zerolog"

	"modelsync/internal/serverstate"
	"modelsync/pkg/types"
)

type sinkRecorder struct {
	events []*types.DownloadEvent
}

func (s *sinkRecorder) Apply(ev *types.DownloadEvent) { s.events = append(s.events, ev) }

func TestServerFeedNamedEvents(t *testing.T) {
	c := NewChannel()
	store := serverstate.New(zerolog.Nop())
	unsub, err := ServerFeed(c, store)
	if err != nil {
		t.Fatalf("ServerFeed: %v", err)
	}
	defer unsub()

	c.PublishRaw(TopicServer, "server:started",
		[]byte(`{"modelId":"m1","port":8100,"updatedAt":1700000000000}`))
	st, ok := store.Get("m1")
	if !ok || st.Status != types.ServerRunning || st.Port != 8100 {
		t.Fatalf("state = %+v, ok = %v", st, ok)
	}

	// Malformed payloads are dropped without touching the registry.
	c.PublishRaw(TopicServer, "server:started", []byte(`garbage`))
	if n := len(store.GetAll()); n != 1 {
		t.Fatalf("registry size = %d", n)
	}
}

func TestServerFeedTaggedRecords(t *testing.T) {
	c := NewChannel()
	store := serverstate.New(zerolog.Nop())
	unsub, err := ServerFeed(c, store)
	if err != nil {
		t.Fatalf("ServerFeed: %v", err)
	}
	defer unsub()

	// Empty name means a self-describing stream record.
	c.PublishRaw(TopicServer, "",
		[]byte(`{"type":"server_started","modelId":"m2","updatedAt":1700000000000}`))
	if !store.IsRunning("m2") {
		t.Fatal("tagged record not ingested")
	}
}

func TestDownloadFeed(t *testing.T) {
	c := NewChannel()
	sink := &sinkRecorder{}
	unsub, err := DownloadFeed(c, sink)
	if err != nil {
		t.Fatalf("DownloadFeed: %v", err)
	}
	defer unsub()

	c.PublishRaw(TopicDownload, "download:started", []byte(`{"id":"a"}`))
	c.PublishRaw(TopicDownload, "", []byte(`{"type":"download","event":{"type":"download_completed","id":"a"}}`))
	c.PublishRaw(TopicDownload, "download:started", []byte(`{}`)) // no id, dropped

	if len(sink.events) != 2 {
		t.Fatalf("len(events) = %d", len(sink.events))
	}
	if sink.events[0].Kind != types.EventDownloadStarted || sink.events[1].Kind != types.EventDownloadCompleted {
		t.Fatalf("events = %+v", sink.events)
	}
}
