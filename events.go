package sessionkit

import (
	"context"
	"encoding/json"
	"io"
	"sync"
	"time"
)

// Event types emitted by the middleware and the maintenance runner.
const (
	EventCredentialRejected  = "credential_rejected"
	EventSessionUpdated      = "session_updated"
	EventSessionUpdateFailed = "session_update_failed"
	EventSessionLoadFailed   = "session_load_failed"
	EventLockLost            = "lock_lost"
	EventJobSkipped          = "job_skipped"
	EventJobCompleted        = "job_completed"
	EventJobFailed           = "job_failed"
)

// Event is a structured observability record. Emission must never block
// request handling or a maintenance job.
type Event struct {
	Timestamp time.Time         `json:"timestamp"`
	EventType string            `json:"event_type"`
	UserID    string            `json:"user_id,omitempty"`
	LockName  string            `json:"lock_name,omitempty"`
	Success   bool              `json:"success"`
	Error     string            `json:"error,omitempty"`
	Metadata  map[string]string `json:"metadata,omitempty"`
}

// Sink receives events. Implementations must be safe for concurrent use.
type Sink interface {
	Emit(ctx context.Context, event Event)
}

// NoOpSink discards all events.
type NoOpSink struct{}

// Emit does nothing.
func (NoOpSink) Emit(context.Context, Event) {}

// ChannelSink buffers events on a channel for an external consumer. Emit
// drops the event rather than block when the buffer is full and the caller's
// context is done.
type ChannelSink struct {
	events chan Event
}

// NewChannelSink creates a sink with the given buffer size.
func NewChannelSink(buffer int) *ChannelSink {
	if buffer <= 0 {
		buffer = 1
	}
	return &ChannelSink{
		events: make(chan Event, buffer),
	}
}

// Emit enqueues the event, giving up when the context is cancelled first.
func (s *ChannelSink) Emit(ctx context.Context, event Event) {
	select {
	case s.events <- event:
	case <-ctx.Done():
	}
}

// Events returns the consumer side of the sink.
func (s *ChannelSink) Events() <-chan Event {
	return s.events
}

// JSONWriterSink writes one JSON document per event to an io.Writer,
// typically a log file or stderr.
type JSONWriterSink struct {
	writer io.Writer
	mu     sync.Mutex
}

// NewJSONWriterSink creates a writer-backed sink.
func NewJSONWriterSink(w io.Writer) *JSONWriterSink {
	return &JSONWriterSink{writer: w}
}

// Emit serializes and writes the event. Serialization or write failures are
// swallowed; an observability sink must not fail its caller.
func (s *JSONWriterSink) Emit(_ context.Context, event Event) {
	data, err := json.Marshal(event)
	if err != nil {
		return
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	_, _ = s.writer.Write(append(data, '\n'))
}
