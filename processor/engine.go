// Package processor implements the batching engine that sits between record
// producers and an OTLP exporter, plus the adapters that plug it into the
// OTel SDK log and trace providers.
package processor

import (
	"context"
	"fmt"
	"sync"
	"sync/atomic"
	"time"

	"github.com/sirupsen/logrus"
)

// Exporter is the transport boundary of the engine. Implementations report
// failures as an error value; the engine never retries, it only counts.
type Exporter[T any] interface {
	Export(ctx context.Context, batch []T) error
	Shutdown(ctx context.Context) error
}

// Engine states. Transitions are one-way: running -> draining -> stopped.
const (
	stateRunning int32 = iota
	stateDraining
	stateStopped
)

// Engine buffers records of one kind and exports them in batches from a
// single background worker. Enqueue never blocks on network I/O: the buffer
// is swapped for an empty one under the lock and the network call happens
// off it.
type Engine[T any] struct {
	exporter Exporter[T]

	interval      time.Duration
	exportTimeout time.Duration
	maxBatch      int

	mu  sync.Mutex
	buf []T

	wake   chan struct{}
	flushc chan chan error
	stopc  chan struct{}
	wg     sync.WaitGroup

	state        atomic.Int32
	failures     atomic.Uint64
	dropped      atomic.Uint64
	shutdownOnce sync.Once
}

// settings is shared by the engine and its adapters.
type settings struct {
	interval      time.Duration
	exportTimeout time.Duration
	maxBatch      int
}

// Option configures an Engine (or an adapter built on one).
type Option func(*settings)

// WithExportInterval sets the periodic flush interval.
func WithExportInterval(d time.Duration) Option {
	return func(s *settings) {
		if d > 0 {
			s.interval = d
		}
	}
}

// WithExportTimeout bounds each export call. A timed-out export counts as a
// failure and the batch is discarded.
func WithExportTimeout(d time.Duration) Option {
	return func(s *settings) {
		if d > 0 {
			s.exportTimeout = d
		}
	}
}

// WithMaxBatchSize sets the buffer size that triggers an early flush.
func WithMaxBatchSize(n int) Option {
	return func(s *settings) {
		if n > 0 {
			s.maxBatch = n
		}
	}
}

func newSettings(opts []Option) settings {
	s := settings{
		interval:      5 * time.Second,
		exportTimeout: 30 * time.Second,
		maxBatch:      512,
	}
	for _, opt := range opts {
		opt(&s)
	}
	return s
}

// NewEngine creates a running Engine exporting through exp.
func NewEngine[T any](exp Exporter[T], opts ...Option) *Engine[T] {
	s := newSettings(opts)
	e := &Engine[T]{
		exporter:      exp,
		interval:      s.interval,
		exportTimeout: s.exportTimeout,
		maxBatch:      s.maxBatch,
		buf:           make([]T, 0, s.maxBatch),
		wake:          make(chan struct{}, 1),
		flushc:        make(chan chan error),
		stopc:         make(chan struct{}),
	}
	e.wg.Add(1)
	go e.run()
	return e
}

// Enqueue appends a record to the active buffer. When the buffer reaches
// the batch-size threshold a flush is signaled without blocking the caller.
// After shutdown has begun the record is dropped; that is the documented
// data-loss boundary of a stopping pipeline, not an error.
func (e *Engine[T]) Enqueue(record T) {
	if e.state.Load() != stateRunning {
		e.dropped.Add(1)
		return
	}

	e.mu.Lock()
	// Re-check under the buffer lock: Shutdown flips the state before its
	// final buffer swap, so a record that passed the fast check above could
	// otherwise land in a buffer nobody will export again.
	if e.state.Load() != stateRunning {
		e.mu.Unlock()
		e.dropped.Add(1)
		return
	}
	e.buf = append(e.buf, record)
	full := len(e.buf) >= e.maxBatch
	e.mu.Unlock()

	if full {
		select {
		case e.wake <- struct{}{}:
		default:
		}
	}
}

// ForceFlush drains the current buffer through the exporter and waits for
// completion or ctx expiry. The flush is serviced by the export worker so
// batch ordering is preserved. After shutdown it is a no-op.
func (e *Engine[T]) ForceFlush(ctx context.Context) error {
	if e.state.Load() != stateRunning {
		return nil
	}

	done := make(chan error, 1)
	select {
	case e.flushc <- done:
	case <-e.stopc:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}

	select {
	case err := <-done:
		return err
	case <-ctx.Done():
		return ctx.Err()
	}
}

// Shutdown stops the background worker, performs one final synchronous flush
// of whatever remains, and shuts the exporter down. Safe to call multiple
// times; only the first call does any work.
func (e *Engine[T]) Shutdown(ctx context.Context) error {
	var err error
	e.shutdownOnce.Do(func() {
		e.state.Store(stateDraining)
		close(e.stopc)
		e.wg.Wait()

		flushErr := e.export(ctx)
		e.state.Store(stateStopped)

		if shutdownErr := e.exporter.Shutdown(ctx); shutdownErr != nil {
			err = fmt.Errorf("exporter shutdown: %w", shutdownErr)
			return
		}
		err = flushErr
	})
	return err
}

// ExportFailures reports how many batches failed to export and were
// discarded.
func (e *Engine[T]) ExportFailures() uint64 {
	return e.failures.Load()
}

// Dropped reports how many records were rejected because the engine was
// already draining or stopped.
func (e *Engine[T]) Dropped() uint64 {
	return e.dropped.Load()
}

// run is the single export worker. All outbound calls to the collector for
// this engine happen here, serializing exports per signal type.
func (e *Engine[T]) run() {
	defer e.wg.Done()

	ticker := time.NewTicker(e.interval)
	defer ticker.Stop()

	for {
		select {
		case <-e.stopc:
			return
		case <-ticker.C:
			_ = e.export(context.Background())
		case <-e.wake:
			_ = e.export(context.Background())
		case done := <-e.flushc:
			done <- e.export(context.Background())
		}
	}
}

// export swaps the active buffer for an empty one and hands the previous
// contents to the exporter as one batch. Failures are counted, logged at
// debug level, and otherwise swallowed: retry policy belongs to the
// exporter, not here.
func (e *Engine[T]) export(ctx context.Context) error {
	e.mu.Lock()
	if len(e.buf) == 0 {
		e.mu.Unlock()
		return nil
	}
	batch := e.buf
	e.buf = make([]T, 0, e.maxBatch)
	e.mu.Unlock()

	ctx, cancel := context.WithTimeout(ctx, e.exportTimeout)
	defer cancel()

	if err := e.exporter.Export(ctx, batch); err != nil {
		e.failures.Add(1)
		logrus.WithError(err).WithField("batch_size", len(batch)).Debug("Telemetry batch export failed; batch discarded")
		return fmt.Errorf("export batch of %d records: %w", len(batch), err)
	}
	return nil
}
