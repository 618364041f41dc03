package events

import (
	"context"
	"sync"

	"github.com/panjf2000/ants/v2"
	"go.uber.org/zap"
)

// EventHandler handles a published event.
type EventHandler func(context.Context, Event) error

// Dispatcher interface allows event publication/subscription.
type Dispatcher interface {
	Publish(ctx context.Context, event Event) error
	Subscribe(eventType EventType, handler EventHandler)
}

type listeners struct {
	mu       sync.RWMutex
	handlers map[EventType][]EventHandler
}

func (l *listeners) add(eventType EventType, handler EventHandler) {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.handlers[eventType] = append(l.handlers[eventType], handler)
}

func (l *listeners) snapshot(eventType EventType) []EventHandler {
	l.mu.RLock()
	defer l.mu.RUnlock()
	return append([]EventHandler{}, l.handlers[eventType]...)
}

// inMemoryDispatcher invokes handlers synchronously on the publisher's goroutine.
type inMemoryDispatcher struct {
	listeners
	logger *zap.Logger
}

// NewInMemoryDispatcher creates a dispatcher instance.
func NewInMemoryDispatcher(logger *zap.Logger) Dispatcher {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &inMemoryDispatcher{
		listeners: listeners{handlers: make(map[EventType][]EventHandler)},
		logger:    logger,
	}
}

// Publish synchronously invokes handlers for the given event. Handler errors
// are logged and never stop the remaining handlers.
func (d *inMemoryDispatcher) Publish(ctx context.Context, event Event) error {
	for _, handler := range d.snapshot(event.Type) {
		if err := handler(ctx, event); err != nil {
			d.logger.Warn("event handler failed",
				zap.String("event_type", string(event.Type)),
				zap.String("service_id", event.ServiceID),
				zap.Error(err))
		}
	}
	return nil
}

// Subscribe registers a handler for the given event type.
func (d *inMemoryDispatcher) Subscribe(eventType EventType, handler EventHandler) {
	d.add(eventType, handler)
}

// PooledDispatcher runs handlers on an ants worker pool so publishers never
// wait on observers.
type PooledDispatcher struct {
	listeners
	pool   *ants.Pool
	logger *zap.Logger
	wg     sync.WaitGroup
}

// NewPooledDispatcher creates an asynchronous dispatcher backed by size workers.
func NewPooledDispatcher(size int, logger *zap.Logger) (*PooledDispatcher, error) {
	if logger == nil {
		logger = zap.NewNop()
	}
	pool, err := ants.NewPool(size, ants.WithNonblocking(false))
	if err != nil {
		return nil, err
	}
	return &PooledDispatcher{
		listeners: listeners{handlers: make(map[EventType][]EventHandler)},
		pool:      pool,
		logger:    logger,
	}, nil
}

// Publish hands every handler to the pool. Handlers run with a context that
// is detached from the publisher's cancellation.
func (d *PooledDispatcher) Publish(ctx context.Context, event Event) error {
	detached := context.WithoutCancel(ctx)
	for _, handler := range d.snapshot(event.Type) {
		handler := handler
		d.wg.Add(1)
		err := d.pool.Submit(func() {
			defer d.wg.Done()
			if err := handler(detached, event); err != nil {
				d.logger.Warn("event handler failed",
					zap.String("event_type", string(event.Type)),
					zap.String("service_id", event.ServiceID),
					zap.Error(err))
			}
		})
		if err != nil {
			d.wg.Done()
			return err
		}
	}
	return nil
}

// Subscribe registers a handler for the given event type.
func (d *PooledDispatcher) Subscribe(eventType EventType, handler EventHandler) {
	d.add(eventType, handler)
}

// Wait blocks until every submitted handler has returned.
func (d *PooledDispatcher) Wait() {
	d.wg.Wait()
}

// Close drains in-flight handlers and releases the pool.
func (d *PooledDispatcher) Close() {
	d.wg.Wait()
	d.pool.Release()
}
