package main

import (
	"context"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/rs/zerolog"
	"github.com/spf13/cobra"

	"modelsync/internal/config"
	"modelsync/internal/downloads"
	"modelsync/internal/httpapi"
	"modelsync/internal/serverstate"
	"modelsync/internal/transport"
	"modelsync/pkg/types"
)

func main() {
	if err := buildRootCmd().Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func buildRootCmd() *cobra.Command {
	var (
		cfgPath    string
		addr       string
		backendURL string
		transKind  string
		logLevel   string
	)
	root := &cobra.Command{
		Use:           "modelsync",
		Short:         "Client-side reconciliation daemon for model servers and downloads",
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg := config.Config{}
			if cfgPath != "" {
				loaded, err := config.Load(cfgPath)
				if err != nil {
					return fmt.Errorf("load config: %w", err)
				}
				cfg = loaded
			}
			// Flags and env override the file.
			if addr != "" {
				cfg.Addr = addr
			}
			if backendURL != "" {
				cfg.BackendURL = backendURL
			}
			if transKind != "" {
				cfg.Transport = transKind
			}
			if logLevel != "" {
				cfg.LogLevel = logLevel
			}
			applyDefaults(&cfg)
			return run(cmd.Context(), cfg)
		},
	}
	root.Flags().StringVarP(&cfgPath, "config", "c", "", "Path to config file (.yaml/.json/.toml)")
	root.Flags().StringVar(&addr, "addr", envOr("MODELSYNC_ADDR", ""), "HTTP listen address, e.g. :8090")
	root.Flags().StringVar(&backendURL, "backend-url", envOr("MODELSYNC_BACKEND_URL", ""), "Backend base URL for the stream transport")
	root.Flags().StringVar(&transKind, "transport", envOr("MODELSYNC_TRANSPORT", ""), "Transport adapter: stream|channel")
	root.Flags().StringVar(&logLevel, "log-level", envOr("MODELSYNC_LOG_LEVEL", ""), "Log level: debug|info|warn|error")
	return root
}

func envOr(key, def string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return def
}

func applyDefaults(cfg *config.Config) {
	if cfg.Addr == "" {
		cfg.Addr = ":8090"
	}
	if cfg.BackendURL == "" {
		cfg.BackendURL = "http://127.0.0.1:8091"
	}
	if cfg.Transport == "" {
		cfg.Transport = "stream"
	}
	if cfg.LogLevel == "" {
		cfg.LogLevel = "info"
	}
}

func newLogger(level string) zerolog.Logger {
	lvl, err := zerolog.ParseLevel(level)
	if err != nil {
		lvl = zerolog.InfoLevel
	}
	return zerolog.New(zerolog.ConsoleWriter{Out: os.Stderr, TimeFormat: time.RFC3339}).
		Level(lvl).With().Timestamp().Logger()
}

func run(ctx context.Context, cfg config.Config) error {
	log := newLogger(cfg.LogLevel)

	var t transport.Transport
	switch cfg.Transport {
	case "stream":
		t = transport.NewStream(cfg.BackendURL, log)
	case "channel":
		// The channel adapter is for embedding; running it standalone
		// gives an empty bus, useful only for UI development.
		t = transport.NewChannel()
	default:
		return fmt.Errorf("unknown transport %q (want stream or channel)", cfg.Transport)
	}

	store := serverstate.New(log)

	notify := func(title, message string) {
		log.Info().Str("title", title).Msg(message)
	}
	refresh := func() {
		refreshCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		if _, err := t.Invoke(refreshCtx, transport.CmdRefreshModels, nil); err != nil {
			log.Debug().Err(err).Msg("model list refresh failed")
		}
	}
	batcher := downloads.NewBatcher(time.Duration(cfg.CompletionWindowMS)*time.Millisecond, refresh, notify)
	defer batcher.Close()

	mgr := downloads.New(t, downloads.Options{
		ThrottleInterval: time.Duration(cfg.ProgressThrottleMS) * time.Millisecond,
		CompletionGrace:  time.Duration(cfg.CompletionGraceMS) * time.Millisecond,
		OnCompletion:     func(info types.CompletionInfo) { batcher.Push(info) },
		Logger:           &log,
	})
	defer mgr.Close()

	unsubServers, err := transport.ServerFeed(t, store)
	if err != nil {
		return fmt.Errorf("server feed: %w", err)
	}
	defer unsubServers()
	unsubDownloads, err := transport.DownloadFeed(t, mgr)
	if err != nil {
		return fmt.Errorf("download feed: %w", err)
	}
	defer unsubDownloads()

	// Seed the queue view; the backend may be down, the feed reconciles
	// later either way.
	seedCtx, cancelSeed := context.WithTimeout(ctx, 5*time.Second)
	if err := mgr.RefreshQueue(seedCtx); err != nil {
		log.Warn().Err(err).Msg("initial queue refresh failed")
	}
	cancelSeed()

	baseCtx, cancelBase := context.WithCancel(ctx)
	defer cancelBase()
	httpapi.SetBaseContext(baseCtx)
	httpapi.SetLogger(log)
	httpapi.SetCORSOptions(true,
		[]string{"http://localhost:*", "http://127.0.0.1:*"},
		[]string{"GET", "POST", "DELETE", "OPTIONS"},
		[]string{"Content-Type", "X-Log-Level"},
	)

	srv := &http.Server{Addr: cfg.Addr, Handler: httpapi.NewMux(store, mgr)}
	errCh := make(chan error, 1)
	go func() {
		log.Info().Str("addr", cfg.Addr).Str("backend", cfg.BackendURL).Str("transport", cfg.Transport).Msg("modelsync listening")
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			errCh <- err
		}
	}()

	// Graceful shutdown (Ctrl+C / SIGTERM)
	stop := make(chan os.Signal, 1)
	signal.Notify(stop, syscall.SIGINT, syscall.SIGTERM)
	select {
	case err := <-errCh:
		return err
	case <-stop:
	case <-ctx.Done():
	}
	cancelBase()
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		log.Warn().Err(err).Msg("graceful shutdown error")
	}
	return nil
}
