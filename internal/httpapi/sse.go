package httpapi

import (
	"encoding/json"
	"net/http"
	"time"

	"modelsync/pkg/types"
)

// eventStreamHandler pushes one consolidated state record per change to
// each connected UI surface. Change signals from the registry and the
// queue manager are collapsed into a single dirty flag so a burst of
// updates yields one frame.
func eventStreamHandler(sv ServerView, dl DownloadService) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		flusher, ok := w.(http.Flusher)
		if !ok {
			writeJSONError(w, http.StatusInternalServerError, "streaming unsupported")
			return
		}

		w.Header().Set("Content-Type", "text/event-stream")
		w.Header().Set("Cache-Control", "no-cache")
		w.Header().Set("Connection", "keep-alive")

		dirty := make(chan struct{}, 1)
		signal := func() {
			select {
			case dirty <- struct{}{}:
			default:
			}
		}
		unsubServers := sv.Subscribe(signal)
		defer unsubServers()
		unsubDownloads := dl.Subscribe(signal)
		defer unsubDownloads()

		sseClients.Inc()
		defer sseClients.Dec()

		ctx, cancel := joinContexts(serverBaseCtx, r.Context())
		defer cancel()

		heartbeat := time.NewTicker(heartbeatInterval)
		defer heartbeat.Stop()

		// Initial frame so a reconnecting client catches up immediately.
		if !writeStateFrame(w, flusher, sv, dl) {
			return
		}
		for {
			select {
			case <-ctx.Done():
				return
			case <-dirty:
				if !writeStateFrame(w, flusher, sv, dl) {
					return
				}
			case <-heartbeat.C:
				if _, err := w.Write([]byte(": keepalive\n\n")); err != nil {
					return
				}
				flusher.Flush()
			}
		}
	}
}

func writeStateFrame(w http.ResponseWriter, flusher http.Flusher, sv ServerView, dl DownloadService) bool {
	snap := types.StateSnapshot{
		Servers:     sv.GetAll(),
		Queue:       dl.Queue(),
		UiState:     dl.UiState(),
		Progress:    dl.Progress(),
		QueueLength: dl.QueueLength(),
		Summary:     dl.LastSummary(),
		Error:       dl.LastError(),
	}
	b, err := json.Marshal(snap)
	if err != nil {
		return false
	}
	if _, err := w.Write([]byte("event: state\ndata: ")); err != nil {
		return false
	}
	if _, err := w.Write(b); err != nil {
		return false
	}
	if _, err := w.Write([]byte("\n\n")); err != nil {
		return false
	}
	flusher.Flush()
	return true
}
