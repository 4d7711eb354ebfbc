package transport

import (
	"bufio"
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/rs/zerolog"
)

const (
	streamBackoffMin = 500 * time.Millisecond
	streamBackoffMax = 10 * time.Second
	// Single event payloads can carry full queue snapshots.
	streamMaxLine = 1 << 20
)

// Stream is the push-stream adapter: events arrive as tagged records on a
// server-sent event stream, commands go out as POSTs. The subscription
// reconnects with backoff until unsubscribed.
type Stream struct {
	base   string
	client *http.Client
	log    zerolog.Logger
}

// NewStream returns a stream transport rooted at baseURL (no trailing
// slash required).
func NewStream(baseURL string, log zerolog.Logger) *Stream {
	return &Stream{
		base:   strings.TrimRight(baseURL, "/"),
		client: &http.Client{},
		log:    log,
	}
}

// Invoke POSTs a command to the backend. 404 and 409 map to the typed
// idempotent errors so callers can treat them as success.
func (s *Stream) Invoke(ctx context.Context, command string, args any) (json.RawMessage, error) {
	body, err := json.Marshal(args)
	if err != nil {
		return nil, err
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, s.base+"/invoke/"+command, bytes.NewReader(body))
	if err != nil {
		return nil, err
	}
	req.Header.Set("Content-Type", "application/json")
	resp, err := s.client.Do(req)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()
	raw, err := io.ReadAll(io.LimitReader(resp.Body, streamMaxLine))
	if err != nil {
		return nil, err
	}
	switch {
	case resp.StatusCode >= 200 && resp.StatusCode < 300:
		return raw, nil
	case resp.StatusCode == http.StatusNotFound:
		return nil, ErrNotFound(errorMessage(raw))
	case resp.StatusCode == http.StatusConflict:
		return nil, ErrConflict(errorMessage(raw))
	default:
		return nil, fmt.Errorf("backend %s: %s", command, errorMessage(raw))
	}
}

func errorMessage(raw []byte) string {
	var payload struct {
		Error string `json:"error"`
	}
	if err := json.Unmarshal(raw, &payload); err == nil && payload.Error != "" {
		return payload.Error
	}
	if len(raw) > 0 {
		return string(bytes.TrimSpace(raw))
	}
	return ""
}

// Subscribe opens the event stream for a topic. Records are delivered
// with an empty name; the payload carries its own type discriminator.
func (s *Stream) Subscribe(topic string, h Handler) (func(), error) {
	ctx, cancel := context.WithCancel(context.Background())
	go s.run(ctx, topic, h)
	return cancel, nil
}

func (s *Stream) run(ctx context.Context, topic string, h Handler) {
	backoff := streamBackoffMin
	for {
		delivered, err := s.consume(ctx, topic, h)
		if ctx.Err() != nil {
			return
		}
		if delivered {
			backoff = streamBackoffMin
		}
		s.log.Warn().Err(err).Str("topic", topic).Dur("retry_in", backoff).Msg("event stream disconnected")
		select {
		case <-ctx.Done():
			return
		case <-time.After(backoff):
		}
		backoff *= 2
		if backoff > streamBackoffMax {
			backoff = streamBackoffMax
		}
	}
}

// consume reads one stream connection until it breaks, dispatching each
// complete data frame. Reports whether any record was delivered so the
// caller can reset its backoff.
func (s *Stream) consume(ctx context.Context, topic string, h Handler) (bool, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, s.base+"/events?topics="+topic, nil)
	if err != nil {
		return false, err
	}
	req.Header.Set("Accept", "text/event-stream")
	resp, err := s.client.Do(req)
	if err != nil {
		return false, err
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		return false, fmt.Errorf("event stream status %d", resp.StatusCode)
	}

	delivered := false
	scanner := bufio.NewScanner(resp.Body)
	scanner.Buffer(make([]byte, 64*1024), streamMaxLine)
	var data bytes.Buffer
	for scanner.Scan() {
		line := scanner.Text()
		if line == "" {
			// Frame boundary.
			if data.Len() > 0 {
				payload := make([]byte, data.Len())
				copy(payload, data.Bytes())
				data.Reset()
				h("", payload)
				delivered = true
			}
			continue
		}
		if rest, ok := strings.CutPrefix(line, "data:"); ok {
			data.WriteString(strings.TrimPrefix(rest, " "))
		}
		// event:/id:/retry: fields and comments are ignored; records are
		// self-describing via their type tag.
	}
	if err := scanner.Err(); err != nil {
		return delivered, err
	}
	return delivered, io.EOF
}
