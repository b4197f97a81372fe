package extract

import (
	"fmt"
	"sync"
)

// ProgressReporter receives run notifications. Implementations can display
// progress bars, forward events to a UI, or remain silent. Methods may be
// called from arbitrary worker goroutines.
type ProgressReporter interface {
	// OnCountComplete is called once the counting pass has produced the total.
	OnCountComplete(total int)

	// OnProgress is called with the completed fraction and a "<n> / <total>" label.
	OnProgress(fraction float64, label string)

	// OnError is called when the run fails. It is terminal.
	OnError(message string)

	// OnFinished is called with "<total> objects" when the run succeeds. It is terminal.
	OnFinished(label string)
}

// NoOpProgressReporter is a progress reporter that does nothing.
// Used when progress reporting is disabled (e.g., --quiet flag).
type NoOpProgressReporter struct{}

func (n *NoOpProgressReporter) OnCountComplete(total int)                 {}
func (n *NoOpProgressReporter) OnProgress(fraction float64, label string) {}
func (n *NoOpProgressReporter) OnError(message string)                    {}
func (n *NoOpProgressReporter) OnFinished(label string)                   {}

// EventKind discriminates Event values.
type EventKind int

const (
	EventProgress EventKind = iota
	EventError
	EventFinished
)

func (k EventKind) String() string {
	switch k {
	case EventProgress:
		return "progress"
	case EventError:
		return "error"
	case EventFinished:
		return "finished"
	}
	return "unknown"
}

// Event is one notification of the progress stream. Label carries the
// progress label, the error message or the completion label depending on
// Kind.
type Event struct {
	Kind     EventKind
	Fraction float64
	Label    string
}

// ChannelReporter turns notifications into Event values on a channel, for
// front-ends that poll. The channel is closed after the terminal event.
type ChannelReporter struct {
	events chan Event
}

// NewChannelReporter creates a ChannelReporter with the given buffer size.
// Sends block when the buffer is full, so the consumer must keep draining.
func NewChannelReporter(buffer int) *ChannelReporter {
	return &ChannelReporter{events: make(chan Event, buffer)}
}

// Events returns the receive side of the stream.
func (c *ChannelReporter) Events() <-chan Event {
	return c.events
}

func (c *ChannelReporter) OnCountComplete(total int) {}

func (c *ChannelReporter) OnProgress(fraction float64, label string) {
	c.events <- Event{Kind: EventProgress, Fraction: fraction, Label: label}
}

func (c *ChannelReporter) OnError(message string) {
	c.events <- Event{Kind: EventError, Label: message}
	close(c.events)
}

func (c *ChannelReporter) OnFinished(label string) {
	c.events <- Event{Kind: EventFinished, Fraction: 1, Label: label}
	close(c.events)
}

// progressPublisher throttles progress notifications to every interval-th
// node plus the last one. Notifications that arrive after a newer one was
// already published are dropped, so the reporter sees n strictly increase
// and "total / total" is always the final progress event.
type progressPublisher struct {
	reporter ProgressReporter
	total    int64
	interval int64

	mu   sync.Mutex
	last int64
}

func newProgressPublisher(reporter ProgressReporter, total, interval int) *progressPublisher {
	if interval <= 0 {
		interval = DefaultProgressInterval
	}
	return &progressPublisher{
		reporter: reporter,
		total:    int64(total),
		interval: int64(interval),
	}
}

func (p *progressPublisher) observe(n int64) {
	if n%p.interval != 0 && n != p.total {
		return
	}

	p.mu.Lock()
	defer p.mu.Unlock()
	if n <= p.last {
		return
	}
	p.last = n
	p.reporter.OnProgress(float64(n)/float64(p.total), fmt.Sprintf("%d / %d", n, p.total))
}
