package transport

import (
	"context"
	"encoding/json"
	"sync"
)

// CommandFunc handles one Invoke call on the channel transport.
type CommandFunc func(ctx context.Context, args json.RawMessage) (json.RawMessage, error)

// Channel is the in-process adapter: the embedding backend publishes
// named events with variant-style payload nesting and registers command
// handlers. Dispatch is synchronous on the publisher's goroutine.
type Channel struct {
	mu       sync.RWMutex
	subs     map[string]map[int]Handler
	nextID   int
	commands map[string]CommandFunc
}

// NewChannel returns an empty in-process transport.
func NewChannel() *Channel {
	return &Channel{
		subs:     make(map[string]map[int]Handler),
		commands: make(map[string]CommandFunc),
	}
}

// RegisterCommand installs the handler for one command name.
func (c *Channel) RegisterCommand(command string, fn CommandFunc) {
	c.mu.Lock()
	c.commands[command] = fn
	c.mu.Unlock()
}

// Invoke dispatches to the registered command handler.
func (c *Channel) Invoke(ctx context.Context, command string, args any) (json.RawMessage, error) {
	c.mu.RLock()
	fn, ok := c.commands[command]
	c.mu.RUnlock()
	if !ok {
		return nil, unknownCommandError{command: command}
	}
	raw, err := json.Marshal(args)
	if err != nil {
		return nil, err
	}
	return fn(ctx, raw)
}

// Subscribe registers a handler for a topic.
func (c *Channel) Subscribe(topic string, h Handler) (func(), error) {
	c.mu.Lock()
	if c.subs[topic] == nil {
		c.subs[topic] = make(map[int]Handler)
	}
	id := c.nextID
	c.nextID++
	c.subs[topic][id] = h
	c.mu.Unlock()
	return func() {
		c.mu.Lock()
		delete(c.subs[topic], id)
		c.mu.Unlock()
	}, nil
}

// Publish delivers a named event to every subscriber of the topic. The
// payload is marshalled once and shared; handlers must not mutate it.
func (c *Channel) Publish(topic, name string, payload any) error {
	b, err := json.Marshal(payload)
	if err != nil {
		return err
	}
	c.PublishRaw(topic, name, b)
	return nil
}

// PublishRaw delivers a pre-encoded payload.
func (c *Channel) PublishRaw(topic, name string, payload []byte) {
	c.mu.RLock()
	handlers := make([]Handler, 0, len(c.subs[topic]))
	for _, h := range c.subs[topic] {
		handlers = append(handlers, h)
	}
	c.mu.RUnlock()
	for _, h := range handlers {
		h(name, payload)
	}
}
