package notify

import (
	"context"
	"sync"
	"time"

	"go.uber.org/zap"

	"guardrail/internal/metrics"
)

// Dispatcher delivers messages to every notifier from a single background
// worker. Enqueue never blocks: when the queue is full the message is
// dropped and logged.
type Dispatcher struct {
	notifiers []Notifier
	timeout   time.Duration
	logger    *zap.Logger

	mu     sync.RWMutex
	closed bool
	queue  chan Message
	done   chan struct{}
}

func NewDispatcher(logger *zap.Logger, queueSize int, timeout time.Duration, notifiers ...Notifier) *Dispatcher {
	if queueSize <= 0 {
		queueSize = 64
	}
	if timeout <= 0 {
		timeout = 5 * time.Second
	}
	d := &Dispatcher{
		notifiers: notifiers,
		timeout:   timeout,
		logger:    logger,
		queue:     make(chan Message, queueSize),
		done:      make(chan struct{}),
	}
	go d.run()
	return d
}

// Enqueue reports whether the message was queued.
func (d *Dispatcher) Enqueue(msg Message) bool {
	if d == nil {
		return false
	}
	d.mu.RLock()
	defer d.mu.RUnlock()
	if d.closed || len(d.notifiers) == 0 {
		return false
	}
	select {
	case d.queue <- msg:
		return true
	default:
		for _, n := range d.notifiers {
			metrics.RecordNotificationDropped(n.Name())
		}
		if d.logger != nil {
			d.logger.Warn("notify: queue full, message dropped", zap.String("event", msg.Event))
		}
		return false
	}
}

// Close stops accepting messages and waits for queued ones to be delivered
// or for ctx to end.
func (d *Dispatcher) Close(ctx context.Context) error {
	if d == nil {
		return nil
	}
	d.mu.Lock()
	if !d.closed {
		d.closed = true
		close(d.queue)
	}
	d.mu.Unlock()
	select {
	case <-d.done:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}

func (d *Dispatcher) run() {
	defer close(d.done)
	for msg := range d.queue {
		d.deliver(msg)
	}
}

func (d *Dispatcher) deliver(msg Message) {
	for _, n := range d.notifiers {
		ctx, cancel := context.WithTimeout(context.Background(), d.timeout)
		err := n.Notify(ctx, msg)
		cancel()
		metrics.RecordNotification(n.Name(), err)
		if err != nil && d.logger != nil {
			d.logger.Warn("notify: delivery failed",
				zap.String("channel", n.Name()),
				zap.String("event", msg.Event),
				zap.Error(err),
			)
		}
	}
}
