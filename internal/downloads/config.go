package downloads

import (
	"time"

	"github.com/rs/zerolog"

	"modelsync/pkg/types"
)

const (
	// defaultThrottleInterval coalesces progress updates to at most one
	// state change per window, trailing edge.
	defaultThrottleInterval = 200 * time.Millisecond
	// defaultCompletionGrace keeps the success state rendered before the
	// progress UI unmounts.
	defaultCompletionGrace = 2 * time.Second
)

// Options configures a Manager. Zero values take package defaults.
type Options struct {
	// ThrottleInterval is the progress coalescing window.
	ThrottleInterval time.Duration
	// CompletionGrace delays terminal cleanup after a completed event.
	CompletionGrace time.Duration
	// OnCompletion receives one CompletionInfo per completed download,
	// synchronously from the event path. Typically a Batcher.Push.
	OnCompletion func(types.CompletionInfo)
	// Logger defaults to a no-op logger.
	Logger *zerolog.Logger
}

func (o Options) withDefaults() Options {
	if o.ThrottleInterval <= 0 {
		o.ThrottleInterval = defaultThrottleInterval
	}
	if o.CompletionGrace <= 0 {
		o.CompletionGrace = defaultCompletionGrace
	}
	if o.Logger == nil {
		nop := zerolog.Nop()
		o.Logger = &nop
	}
	return o
}
