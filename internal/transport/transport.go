// Package transport defines the opaque backend contract and the two
// interchangeable adapters that deliver backend events to the client:
// an in-process command/event channel and a push stream of tagged
// records. Exactly one adapter is active per runtime, selected once at
// startup.
package transport

import (
	"context"
	"encoding/json"
)

// Handler receives one event from a subscription. Named-event transports
// pass the event name plus its payload; stream transports pass an empty
// name and a single tagged record.
type Handler func(name string, payload []byte)

// Transport is the only way this core reaches the backend.
type Transport interface {
	// Invoke performs a request/response command call.
	Invoke(ctx context.Context, command string, args any) (json.RawMessage, error)
	// Subscribe opens a long-lived push subscription on a topic
	// (server, download, voice, log). The returned func unsubscribes.
	Subscribe(topic string, h Handler) (func(), error)
}

// Well-known backend commands.
const (
	CmdQueueDownload        = "queueDownload"
	CmdCancelDownload       = "cancelDownload"
	CmdRemoveFromQueue      = "removeFromQueue"
	CmdClearFailedDownloads = "clearFailedDownloads"
	CmdCancelShardGroup     = "cancelShardGroup"
	CmdReorderQueue         = "reorderQueue"
	CmdGetDownloadQueue     = "getDownloadQueue"
	CmdStopServer           = "stopServer"
	CmdListServers          = "listServers"
	CmdRefreshModels        = "refreshModels"
)

// Well-known subscription topics.
const (
	TopicServer   = "server"
	TopicDownload = "download"
	TopicVoice    = "voice"
	TopicLog      = "log"
)
