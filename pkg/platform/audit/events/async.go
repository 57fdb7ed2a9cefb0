package events

import (
	"context"
	"io"
	"log/slog"
	"sync"
	"time"

	audit "rosterid/pkg/platform/audit"
	"rosterid/pkg/platform/circuit"
)

const (
	defaultBatchSize     = 100
	defaultFlushInterval = 500 * time.Millisecond
	defaultWriteTimeout  = 5 * time.Second
)

// Async buffers events in memory and flushes them to a Sink from a
// background goroutine. Publish never blocks on the sink. A failed batch is
// dropped and counted; the breaker tracks sink health for logs and metrics.
type Async struct {
	sink    Sink
	buffer  *ringBuffer
	breaker *circuit.Breaker
	logger  *slog.Logger
	metrics *audit.Metrics

	batchSize     int
	flushInterval time.Duration
	writeTimeout  time.Duration

	wake     chan struct{}
	stop     chan struct{}
	done     chan struct{}
	stopOnce sync.Once
}

// AsyncOption configures Async.
type AsyncOption func(*Async)

func WithLogger(logger *slog.Logger) AsyncOption {
	return func(a *Async) {
		a.logger = logger
	}
}

func WithMetrics(m *audit.Metrics) AsyncOption {
	return func(a *Async) {
		a.metrics = m
	}
}

// WithBufferCapacity bounds the number of undelivered events held in memory.
func WithBufferCapacity(n int) AsyncOption {
	return func(a *Async) {
		a.buffer = newRingBuffer(n)
	}
}

func WithBatchSize(n int) AsyncOption {
	return func(a *Async) {
		if n > 0 {
			a.batchSize = n
		}
	}
}

func WithFlushInterval(d time.Duration) AsyncOption {
	return func(a *Async) {
		if d > 0 {
			a.flushInterval = d
		}
	}
}

// WithBreaker replaces the default sink breaker.
func WithBreaker(b *circuit.Breaker) AsyncOption {
	return func(a *Async) {
		a.breaker = b
	}
}

// NewAsync starts the flush loop. Call Close to drain and stop it.
func NewAsync(sink Sink, opts ...AsyncOption) *Async {
	a := &Async{
		sink:          sink,
		buffer:        newRingBuffer(defaultBufferCapacity),
		breaker:       circuit.New("event-sink"),
		logger:        slog.New(slog.NewTextHandler(io.Discard, nil)),
		batchSize:     defaultBatchSize,
		flushInterval: defaultFlushInterval,
		writeTimeout:  defaultWriteTimeout,
		wake:          make(chan struct{}, 1),
		stop:          make(chan struct{}),
		done:          make(chan struct{}),
	}
	for _, opt := range opts {
		opt(a)
	}
	go a.run()
	return a
}

// Publish enqueues event. The oldest buffered event is dropped when full.
func (a *Async) Publish(_ context.Context, event Event) {
	if a.buffer.enqueue(event) {
		a.metrics.AddEventsDropped(1)
	}
	if a.buffer.len() >= a.batchSize {
		select {
		case a.wake <- struct{}{}:
		default:
		}
	}
}

// Pending is the number of buffered, undelivered events.
func (a *Async) Pending() int {
	return a.buffer.len()
}

// Dropped is the number of events lost to overflow.
func (a *Async) Dropped() int64 {
	return a.buffer.droppedTotal()
}

// Close stops the flush loop after delivering whatever is still buffered.
func (a *Async) Close() {
	a.stopOnce.Do(func() {
		close(a.stop)
	})
	<-a.done
}

func (a *Async) run() {
	defer close(a.done)
	ticker := time.NewTicker(a.flushInterval)
	defer ticker.Stop()

	for {
		select {
		case <-a.stop:
			for a.buffer.len() > 0 {
				if !a.flush() {
					a.metrics.AddEventsDropped(a.buffer.len())
					a.buffer.dequeueBatch(0)
				}
			}
			return
		case <-ticker.C:
			a.drain()
		case <-a.wake:
			a.flush()
		}
	}
}

// drain flushes batches until the buffer is empty or a write fails.
func (a *Async) drain() {
	for a.buffer.len() > 0 {
		if !a.flush() {
			return
		}
	}
}

// flush delivers one batch and reports whether it succeeded.
func (a *Async) flush() bool {
	batch := a.buffer.dequeueBatch(a.batchSize)
	if len(batch) == 0 {
		return true
	}

	ctx, cancel := context.WithTimeout(context.Background(), a.writeTimeout)
	defer cancel()

	if err := a.sink.Write(ctx, batch); err != nil {
		a.metrics.AddEventsDropped(len(batch))
		_, change := a.breaker.RecordFailure()
		if change.Opened {
			a.metrics.SetSinkCircuitState(true)
			a.logger.Warn("event sink circuit opened", "breaker", a.breaker.Name(), "error", err)
		}
		a.logger.Error("failed to deliver audit events", "count", len(batch), "error", err)
		return false
	}

	a.metrics.AddEventsPublished(len(batch))
	if _, change := a.breaker.RecordSuccess(); change.Closed {
		a.metrics.SetSinkCircuitState(false)
		a.logger.Info("event sink circuit closed", "breaker", a.breaker.Name())
	}
	return true
}
