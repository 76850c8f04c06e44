package wildduck

import (
	"bufio"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"sync"
)

// Event is one server-sent event. Data is a JSON document the caller decodes.
type Event struct {
	ID   string
	Type string
	Data string
}

// Decode parses Data as JSON into v.
func (e Event) Decode(v any) error {
	if err := json.Unmarshal([]byte(e.Data), v); err != nil {
		return &DecodeError{Shape: ShapeJSON, Err: err}
	}
	return nil
}

// Subscription is an open event stream. It must be closed by the caller.
type Subscription struct {
	events chan Event
	cancel context.CancelFunc
	body   io.Closer
	done   chan struct{}

	closeOnce sync.Once
	closeErr  error
	mu        sync.Mutex
	err       error
}

// Events returns the channel of inbound events. It is closed when the stream
// ends, after which Err reports why.
func (s *Subscription) Events() <-chan Event {
	return s.events
}

// Err returns the error that ended the stream, or nil if it ended cleanly
// or was closed by the caller.
func (s *Subscription) Err() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.err
}

// Close stops the stream and waits for the reader to exit. Safe to call
// twice; every call returns the error from closing the response body.
func (s *Subscription) Close() error {
	s.closeOnce.Do(func() {
		s.cancel()
		s.closeErr = s.body.Close()
	})
	<-s.done
	return s.closeErr
}

// Stream opens a long-lived event stream at path. The opening response is
// checked like any other request; once open, events arrive on Events().
// The stream is never reconnected automatically.
func (c *Client) Stream(ctx context.Context, path string, query *Query) (*Subscription, error) {
	if query != nil {
		path += query.Encode()
	}

	ctx, cancel := context.WithCancel(ctx)
	req, err := c.newRequest(ctx, http.MethodGet, path, nil, ShapeText, []RequestOption{
		WithHeader("Accept", "text/event-stream"),
		WithHeader("Cache-Control", "no-cache"),
	})
	if err != nil {
		cancel()
		return nil, err
	}

	resp, err := c.send(req)
	if err != nil {
		cancel()
		return nil, err
	}

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		defer cancel()
		defer resp.Body.Close()
		data, _ := io.ReadAll(resp.Body)
		return nil, parseErrorResponse(resp.StatusCode, data)
	}

	sub := &Subscription{
		events: make(chan Event),
		cancel: cancel,
		body:   resp.Body,
		done:   make(chan struct{}),
	}
	go sub.read(ctx, resp.Body)

	return sub, nil
}

// read parses the event stream until EOF, error or cancellation.
func (s *Subscription) read(ctx context.Context, r io.Reader) {
	defer close(s.done)
	defer close(s.events)

	scanner := bufio.NewScanner(r)
	scanner.Buffer(make([]byte, 0, 64*1024), 1024*1024)

	var (
		ev      Event
		data    []string
		hasData bool
	)
	for scanner.Scan() {
		line := scanner.Text()

		if line == "" {
			if hasData {
				ev.Data = strings.Join(data, "\n")
				select {
				case s.events <- ev:
				case <-ctx.Done():
					return
				}
			}
			ev, data, hasData = Event{ID: ev.ID}, nil, false
			continue
		}

		if strings.HasPrefix(line, ":") {
			continue
		}

		field, value, _ := strings.Cut(line, ":")
		value = strings.TrimPrefix(value, " ")
		switch field {
		case "data":
			data = append(data, value)
			hasData = true
		case "event":
			ev.Type = value
		case "id":
			ev.ID = value
		}
	}

	if err := scanner.Err(); err != nil && ctx.Err() == nil {
		s.mu.Lock()
		s.err = fmt.Errorf("read event stream: %w", err)
		s.mu.Unlock()
	}
}
