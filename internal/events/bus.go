// Package events fans published samples out to subscribers.
package events

import (
	"context"
	"sync"

	"github.com/pkg/errors"
	"go.uber.org/zap"

	"github.com/actionsum/activitymon/internal/models"
)

// ActivityUpdate is the name of the event carrying a new sample.
const ActivityUpdate = "activity-update"

// ErrSubscriberFull is returned when a channel subscriber has no room left.
var ErrSubscriberFull = errors.New("subscriber buffer full")

// Event is the envelope written to websocket clients and redis.
type Event struct {
	Name    string        `json:"event"`
	Payload models.Sample `json:"payload"`
}

// Sink receives every published sample.
type Sink interface {
	Name() string
	Deliver(ctx context.Context, sample models.Sample) error
}

// Bus delivers samples to registered sinks in registration order. A failing
// sink never prevents delivery to the others.
type Bus struct {
	mu     sync.RWMutex
	sinks  []Sink
	logger *zap.Logger
}

// NewBus creates an empty bus.
func NewBus(logger *zap.Logger) *Bus {
	return &Bus{logger: logger}
}

// Register adds a sink.
func (b *Bus) Register(s Sink) {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.sinks = append(b.sinks, s)
}

func (b *Bus) unregister(s Sink) {
	b.mu.Lock()
	defer b.mu.Unlock()
	for i, existing := range b.sinks {
		if existing == s {
			b.sinks = append(b.sinks[:i:i], b.sinks[i+1:]...)
			return
		}
	}
}

// Subscribe returns a channel receiving published samples and a function
// that cancels the subscription and closes the channel. Samples are dropped
// when the channel buffer is full.
func (b *Bus) Subscribe(buffer int) (<-chan models.Sample, func()) {
	if buffer < 1 {
		buffer = 1
	}
	sub := &chanSink{ch: make(chan models.Sample, buffer)}
	b.Register(sub)

	var once sync.Once
	return sub.ch, func() {
		once.Do(func() {
			b.unregister(sub)
			sub.close()
		})
	}
}

// Publish delivers sample to every sink. Errors are logged.
func (b *Bus) Publish(ctx context.Context, sample models.Sample) {
	b.mu.RLock()
	sinks := make([]Sink, len(b.sinks))
	copy(sinks, b.sinks)
	b.mu.RUnlock()

	for _, s := range sinks {
		if err := s.Deliver(ctx, sample); err != nil {
			b.logger.Warn("event delivery failed",
				zap.String("event", ActivityUpdate),
				zap.String("sink", s.Name()),
				zap.Error(err))
		}
	}
}

type chanSink struct {
	mu     sync.Mutex
	ch     chan models.Sample
	closed bool
}

func (c *chanSink) Name() string {
	return "subscriber"
}

func (c *chanSink) Deliver(ctx context.Context, sample models.Sample) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.closed {
		return nil
	}
	select {
	case c.ch <- sample:
		return nil
	default:
		return ErrSubscriberFull
	}
}

func (c *chanSink) close() {
	c.mu.Lock()
	defer c.mu.Unlock()
	if !c.closed {
		c.closed = true
		close(c.ch)
	}
}
