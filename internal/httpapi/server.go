package httpapi

import (
	"context"
	"net/http"
	"strings"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"modelsync/pkg/types"
)

// ServerView is the registry read surface required by the HTTP layer.
type ServerView interface {
	Get(modelID string) (types.ServerState, bool)
	GetAll() map[string]types.ServerState
	IsRunning(modelID string) bool
	Subscribe(fn func()) func()
}

// DownloadService is the queue-manager surface required by the HTTP layer.
type DownloadService interface {
	Queue() types.QueueStatus
	Progress() *types.Progress
	UiState() types.UiState
	LastSummary() *types.QueueRunSummary
	QueueLength() int
	LastError() string
	Subscribe(fn func()) func()

	RefreshQueue(ctx context.Context) error
	QueueModel(ctx context.Context, modelID, quantization string) error
	Cancel(ctx context.Context, id string) error
	CancelGroup(ctx context.Context, groupID string) error
	ClearFailed(ctx context.Context) error
	RemoveQueued(ctx context.Context, id string) error
	Reorder(ctx context.Context, ids []string) error
	ClearSummary()
}

func NewMux(sv ServerView, dl DownloadService) http.Handler {
	r := chi.NewRouter()
	// Basic middlewares: request id, real ip, recoverer
	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	r.Use(middleware.Recoverer)
	// Compression for JSON endpoints
	r.Use(middleware.Compress(5))
	if corsEnabled {
		r.Use(cors.Handler(cors.Options{
			AllowedOrigins: corsAllowedOrigins,
			AllowedMethods: corsAllowedMethods,
			AllowedHeaders: corsAllowedHeaders,
		}))
	}
	r.Use(MetricsMiddleware)
	// Security headers
	r.Use(func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			w.Header().Set("X-Content-Type-Options", "nosniff")
			next.ServeHTTP(w, r)
		})
	})

	r.Get("/v1/servers", func(w http.ResponseWriter, r *http.Request) {
		writeJSON(w, types.ServersResponse{Servers: sv.GetAll()})
	})

	r.Get("/v1/servers/{modelID}", func(w http.ResponseWriter, r *http.Request) {
		id := chi.URLParam(r, "modelID")
		st, ok := sv.Get(id)
		if !ok {
			writeJSONError(w, http.StatusNotFound, "unknown server: "+id)
			return
		}
		writeJSON(w, st)
	})

	r.Get("/v1/downloads/queue", func(w http.ResponseWriter, r *http.Request) {
		writeJSON(w, queueResponse(dl))
	})

	r.Post("/v1/downloads/queue", func(w http.ResponseWriter, r *http.Request) {
		var req types.QueueDownloadRequest
		if !decodeBody(w, r, &req) {
			return
		}
		if strings.TrimSpace(req.ModelID) == "" {
			writeJSONError(w, http.StatusBadRequest, "modelId is required")
			return
		}
		ctx, cancel := joinContexts(serverBaseCtx, r.Context())
		defer cancel()
		if err := dl.QueueModel(ctx, req.ModelID, req.Quantization); err != nil {
			writeServiceError(w, r, err)
			return
		}
		w.WriteHeader(http.StatusAccepted)
		writeJSON(w, queueResponse(dl))
	})

	r.Delete("/v1/downloads/{id}", func(w http.ResponseWriter, r *http.Request) {
		ctx, cancel := joinContexts(serverBaseCtx, r.Context())
		defer cancel()
		if err := dl.Cancel(ctx, chi.URLParam(r, "id")); err != nil {
			writeServiceError(w, r, err)
			return
		}
		writeJSON(w, queueResponse(dl))
	})

	// Removing a pending item is distinct from cancelling the active one.
	r.Delete("/v1/downloads/queue/{id}", func(w http.ResponseWriter, r *http.Request) {
		ctx, cancel := joinContexts(serverBaseCtx, r.Context())
		defer cancel()
		if err := dl.RemoveQueued(ctx, chi.URLParam(r, "id")); err != nil {
			writeServiceError(w, r, err)
			return
		}
		writeJSON(w, queueResponse(dl))
	})

	r.Post("/v1/downloads/clear-failed", func(w http.ResponseWriter, r *http.Request) {
		ctx, cancel := joinContexts(serverBaseCtx, r.Context())
		defer cancel()
		if err := dl.ClearFailed(ctx); err != nil {
			writeServiceError(w, r, err)
			return
		}
		writeJSON(w, queueResponse(dl))
	})

	r.Post("/v1/downloads/cancel-group", func(w http.ResponseWriter, r *http.Request) {
		var req types.CancelGroupRequest
		if !decodeBody(w, r, &req) {
			return
		}
		if req.GroupID == "" {
			writeJSONError(w, http.StatusBadRequest, "groupId is required")
			return
		}
		ctx, cancel := joinContexts(serverBaseCtx, r.Context())
		defer cancel()
		if err := dl.CancelGroup(ctx, req.GroupID); err != nil {
			writeServiceError(w, r, err)
			return
		}
		writeJSON(w, queueResponse(dl))
	})

	r.Post("/v1/downloads/reorder", func(w http.ResponseWriter, r *http.Request) {
		var req types.ReorderRequest
		if !decodeBody(w, r, &req) {
			return
		}
		ctx, cancel := joinContexts(serverBaseCtx, r.Context())
		defer cancel()
		if err := dl.Reorder(ctx, req.IDs); err != nil {
			writeServiceError(w, r, err)
			return
		}
		writeJSON(w, queueResponse(dl))
	})

	r.Post("/v1/downloads/clear-summary", func(w http.ResponseWriter, r *http.Request) {
		dl.ClearSummary()
		writeJSON(w, queueResponse(dl))
	})

	r.Get("/v1/events", eventStreamHandler(sv, dl))

	r.Get("/healthz", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
		w.Write([]byte("ok"))
	})

	r.Get("/readyz", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
		w.Write([]byte("ready"))
	})

	// Prometheus metrics endpoint
	r.Get("/metrics", promhttp.Handler().ServeHTTP)

	MountSwagger(r)

	return r
}

func queueResponse(dl DownloadService) types.QueueResponse {
	return types.QueueResponse{
		Queue:       dl.Queue(),
		UiState:     dl.UiState(),
		Progress:    dl.Progress(),
		QueueLength: dl.QueueLength(),
		Summary:     dl.LastSummary(),
		Error:       dl.LastError(),
	}
}

// decodeBody enforces the JSON content type and body size cap, writing the
// error response itself on failure.
func decodeBody(w http.ResponseWriter, r *http.Request, v any) bool {
	ct := r.Header.Get("Content-Type")
	if ct == "" || !strings.HasPrefix(strings.ToLower(ct), "application/json") {
		writeJSONError(w, http.StatusUnsupportedMediaType, "Content-Type must be application/json")
		return false
	}
	r.Body = http.MaxBytesReader(w, r.Body, maxBodyBytes)
	if err := jsonDecode(r, v); err != nil {
		writeJSONError(w, http.StatusBadRequest, "invalid JSON body")
		return false
	}
	return true
}

// writeServiceError maps service errors onto HTTP status codes and logs
// the outcome at the request log level.
func writeServiceError(w http.ResponseWriter, r *http.Request, err error) {
	status := http.StatusBadGateway
	if he, ok := err.(HTTPError); ok {
		status = he.StatusCode()
	}
	if requestLogLevel(r) >= LevelError && zlog != nil {
		z := zlog.Error().Str("path", r.URL.Path).Int("status", status)
		if rid := middleware.GetReqID(r.Context()); rid != "" {
			z = z.Str("request_id", rid)
		}
		z.Err(err).Msg("backend action failed")
	}
	writeJSONError(w, status, err.Error())
}

// Flush lets the metrics wrapper pass stream flushes through to the
// underlying writer; the event stream needs it.
func (sr *statusRecorder) Flush() {
	if f, ok := sr.ResponseWriter.(http.Flusher); ok {
		f.Flush()
	}
}

// heartbeatInterval keeps idle event streams from being reaped by
// intermediaries.
const heartbeatInterval = 15 * time.Second
