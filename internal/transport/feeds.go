package transport

import (
	"modelsync/internal/events"
	"modelsync/internal/serverstate"
	"modelsync/pkg/types"
)

// DownloadSink is the queue-manager side of the download feed.
type DownloadSink interface {
	Apply(ev *types.DownloadEvent)
}

// ServerFeed wires the server topic through the normalizer into the
// registry. Named events take the named entry point; tagged stream
// records (empty name) take the tagged one. Malformed events are counted
// and dropped, never surfaced.
func ServerFeed(t Transport, store *serverstate.Store) (func(), error) {
	return t.Subscribe(TopicServer, func(name string, payload []byte) {
		var ev *types.ServerEvent
		if name == "" {
			ev = events.ServerTagged(payload)
		} else {
			ev = events.Server(name, payload)
		}
		if ev == nil {
			eventsDropped.WithLabelValues(TopicServer).Inc()
			return
		}
		eventsIngested.WithLabelValues(TopicServer, string(ev.Kind)).Inc()
		store.Ingest(ev)
	})
}

// DownloadFeed wires the download topic into the queue manager.
func DownloadFeed(t Transport, sink DownloadSink) (func(), error) {
	return t.Subscribe(TopicDownload, func(name string, payload []byte) {
		var ev *types.DownloadEvent
		if name == "" {
			ev = events.DownloadTagged(payload)
		} else {
			ev = events.Download(name, payload)
		}
		if ev == nil {
			eventsDropped.WithLabelValues(TopicDownload).Inc()
			return
		}
		eventsIngested.WithLabelValues(TopicDownload, string(ev.Kind)).Inc()
		sink.Apply(ev)
	})
}
