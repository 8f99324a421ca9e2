package notifier

import (
	"context"
	"errors"
	"sync"

	"github.com/campoos/backend-lixeira-app/internal/core"
	"go.uber.org/zap"
)

// ErrQueueFull is returned when the publish queue has no free slot
var ErrQueueFull = errors.New("notification queue full")

// ErrClosed is returned for events submitted after Close
var ErrClosed = errors.New("notifier closed")

// sink is the notifier events are forwarded to
type sink interface {
	core.ActionNotifier
	Close() error
}

// AsyncNotifier hands events to a single background publisher through a
// bounded queue. Notify never waits on the broker; a full queue drops the event.
type AsyncNotifier struct {
	next   sink
	events chan *core.ActionEvent
	done   chan struct{}
	logger *zap.Logger

	mu     sync.RWMutex
	closed bool
}

// NewAsyncNotifier starts the publisher goroutine. Close must be called to stop it.
func NewAsyncNotifier(next sink, queueSize int, logger *zap.Logger) *AsyncNotifier {
	if queueSize <= 0 {
		queueSize = 1
	}
	n := &AsyncNotifier{
		next:   next,
		events: make(chan *core.ActionEvent, queueSize),
		done:   make(chan struct{}),
		logger: logger,
	}
	go n.run()
	return n
}

func (n *AsyncNotifier) run() {
	defer close(n.done)
	for event := range n.events {
		if err := n.next.Notify(context.Background(), event); err != nil {
			n.logger.Warn("Failed to publish bin action",
				zap.Error(err),
				zap.Int64("analysis_id", event.AnalysisID))
		}
	}
}

// Notify queues the event for publishing
func (n *AsyncNotifier) Notify(ctx context.Context, event *core.ActionEvent) error {
	n.mu.RLock()
	defer n.mu.RUnlock()
	if n.closed {
		return ErrClosed
	}
	select {
	case n.events <- event:
		return nil
	default:
		return ErrQueueFull
	}
}

// Close publishes the queued events, stops the worker and closes the wrapped notifier
func (n *AsyncNotifier) Close() error {
	n.mu.Lock()
	if n.closed {
		n.mu.Unlock()
		return nil
	}
	n.closed = true
	close(n.events)
	n.mu.Unlock()

	<-n.done
	return n.next.Close()
}
