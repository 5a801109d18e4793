package progress

import (
	"context"
	"fmt"
	"io"
	"strings"
	"sync"
)

// Phase classifies a progress event.
type Phase string

const (
	PhaseProcessing Phase = "processing"
	PhaseSuccess    Phase = "success"
	PhaseWarning    Phase = "warning"
	PhaseError      Phase = "error"
	PhaseCompleted  Phase = "completed"
)

// Event is one ordered status update for a verification run.
type Event struct {
	Phase   Phase  `json:"step"`
	Message string `json:"message"`
}

// Reporter receives pipeline events. Implementations must tolerate being
// called after the observer has gone away.
type Reporter interface {
	Report(ctx context.Context, event Event)
}

// Processing emits a processing-phase event.
func Processing(ctx context.Context, r Reporter, format string, args ...any) {
	report(ctx, r, PhaseProcessing, format, args...)
}

// Success emits a success-phase event.
func Success(ctx context.Context, r Reporter, format string, args ...any) {
	report(ctx, r, PhaseSuccess, format, args...)
}

// Warning emits a warning-phase event.
func Warning(ctx context.Context, r Reporter, format string, args ...any) {
	report(ctx, r, PhaseWarning, format, args...)
}

// Errorf emits an error-phase event.
func Errorf(ctx context.Context, r Reporter, format string, args ...any) {
	report(ctx, r, PhaseError, format, args...)
}

// Completed emits the terminal completed-phase event.
func Completed(ctx context.Context, r Reporter, format string, args ...any) {
	report(ctx, r, PhaseCompleted, format, args...)
}

func report(ctx context.Context, r Reporter, phase Phase, format string, args ...any) {
	if r == nil {
		return
	}
	message := format
	if len(args) > 0 {
		message = fmt.Sprintf(format, args...)
	}
	r.Report(ctx, Event{Phase: phase, Message: strings.TrimSpace(message)})
}

// Noop discards every event.
type Noop struct{}

func (Noop) Report(context.Context, Event) {}

// Console writes events as plain lines, one per event.
type Console struct {
	mu     sync.Mutex
	writer io.Writer
}

// NewConsole builds a console reporter writing to w.
func NewConsole(w io.Writer) *Console {
	return &Console{writer: w}
}

func (c *Console) Report(_ context.Context, event Event) {
	if c == nil || c.writer == nil {
		return
	}
	c.mu.Lock()
	defer c.mu.Unlock()
	fmt.Fprintf(c.writer, "[%s] %s\n", event.Phase, event.Message)
}

// Stream buffers events on a channel for a single consumer, typically a
// transport adapter. Once closed (observer disconnected), further events are
// dropped silently so in-flight pipeline work can finish without a panic.
type Stream struct {
	mu       sync.Mutex
	events   chan Event
	done     chan struct{}
	closed   bool
	inFlight sync.WaitGroup
}

// NewStream builds a stream reporter with the given buffer size.
func NewStream(buffer int) *Stream {
	if buffer <= 0 {
		buffer = 16
	}
	return &Stream{
		events: make(chan Event, buffer),
		done:   make(chan struct{}),
	}
}

// Events exposes the consumer side of the stream. The channel is closed once
// Close has been called and every in-flight Report has returned.
func (s *Stream) Events() <-chan Event {
	return s.events
}

// Report enqueues an event, blocking until the consumer drains it, the stream
// is closed, or the context is cancelled. Events reported after Close are
// discarded.
func (s *Stream) Report(ctx context.Context, event Event) {
	s.mu.Lock()
	if s.closed {
		s.mu.Unlock()
		return
	}
	s.inFlight.Add(1)
	s.mu.Unlock()
	defer s.inFlight.Done()

	if ctx == nil {
		ctx = context.Background()
	}
	select {
	case s.events <- event:
	case <-s.done:
	case <-ctx.Done():
	}
}

// Close marks the observer as gone, unblocks pending Reports, and closes the
// event channel once they have drained. Safe to call more than once.
func (s *Stream) Close() {
	s.mu.Lock()
	if s.closed {
		s.mu.Unlock()
		return
	}
	s.closed = true
	close(s.done)
	s.mu.Unlock()

	s.inFlight.Wait()
	close(s.events)
}

// Fanout forwards each event to every reporter in order.
type Fanout []Reporter

func (f Fanout) Report(ctx context.Context, event Event) {
	for _, r := range f {
		if r != nil {
			r.Report(ctx, event)
		}
	}
}
