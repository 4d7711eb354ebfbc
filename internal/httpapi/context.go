package httpapi

import (
	"context"
)

// serverBaseCtx ties in-flight handler work to process shutdown: main
// installs a cancellable context so queue actions and event streams stop
// when the daemon does.
var serverBaseCtx = context.Background()

// SetBaseContext installs the process-level context joined into every
// handler's request context. Nil restores Background.
func SetBaseContext(ctx context.Context) {
	if ctx == nil {
		serverBaseCtx = context.Background()
		return
	}
	serverBaseCtx = ctx
}

// joinContexts derives a context cancelled when either input is done, so a
// backend call ends on client disconnect or daemon shutdown, whichever
// comes first. The cancel func releases the watcher goroutine.
func joinContexts(a, b context.Context) (context.Context, context.CancelFunc) {
	ctx, cancel := context.WithCancel(context.Background())
	go func() {
		select {
		case <-a.Done():
			cancel()
		case <-b.Done():
			cancel()
		}
	}()
	return ctx, cancel
}
