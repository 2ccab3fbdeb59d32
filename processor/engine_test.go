package processor

import (
	"context"
	"errors"
	"slices"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type captureExporter struct {
	mu        sync.Mutex
	batches   [][]int
	fail      bool
	shutdowns int
}

func (c *captureExporter) Export(_ context.Context, batch []int) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.fail {
		return errors.New("collector unreachable")
	}
	c.batches = append(c.batches, slices.Clone(batch))
	return nil
}

func (c *captureExporter) Shutdown(context.Context) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.shutdowns++
	return nil
}

func (c *captureExporter) setFail(fail bool) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.fail = fail
}

func (c *captureExporter) snapshot() [][]int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return slices.Clone(c.batches)
}

func (c *captureExporter) shutdownCount() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.shutdowns
}

// A long interval keeps the timer out of the way so tests control flushing.
func newTestEngine(exp Exporter[int], opts ...Option) *Engine[int] {
	base := []Option{WithExportInterval(time.Hour), WithExportTimeout(time.Second)}
	return NewEngine[int](exp, append(base, opts...)...)
}

func TestForceFlushExportsOneBatchInEnqueueOrder(t *testing.T) {
	exp := &captureExporter{}
	engine := newTestEngine(exp)
	defer engine.Shutdown(context.Background())

	engine.Enqueue(1)
	engine.Enqueue(2)
	engine.Enqueue(3)

	require.NoError(t, engine.ForceFlush(context.Background()))
	require.Equal(t, [][]int{{1, 2, 3}}, exp.snapshot())
}

func TestBatchSizeTriggersFlushWithoutBlockingProducer(t *testing.T) {
	exp := &captureExporter{}
	engine := newTestEngine(exp, WithMaxBatchSize(2))
	defer engine.Shutdown(context.Background())

	engine.Enqueue(1)
	engine.Enqueue(2)

	require.Eventually(t, func() bool {
		return len(exp.snapshot()) == 1
	}, 2*time.Second, 10*time.Millisecond)
	assert.Equal(t, []int{1, 2}, exp.snapshot()[0])
}

func TestTimerTriggersFlush(t *testing.T) {
	exp := &captureExporter{}
	engine := NewEngine[int](exp, WithExportInterval(20*time.Millisecond), WithExportTimeout(time.Second))
	defer engine.Shutdown(context.Background())

	engine.Enqueue(7)

	require.Eventually(t, func() bool {
		return len(exp.snapshot()) == 1
	}, 2*time.Second, 10*time.Millisecond)
}

func TestShutdownDrainsRemainingRecords(t *testing.T) {
	exp := &captureExporter{}
	engine := newTestEngine(exp)

	engine.Enqueue(1)
	engine.Enqueue(2)

	require.NoError(t, engine.Shutdown(context.Background()))
	require.Equal(t, [][]int{{1, 2}}, exp.snapshot())
	assert.Equal(t, 1, exp.shutdownCount())
}

func TestShutdownIsIdempotent(t *testing.T) {
	exp := &captureExporter{}
	engine := newTestEngine(exp)

	require.NoError(t, engine.Shutdown(context.Background()))
	require.NoError(t, engine.Shutdown(context.Background()))
	assert.Equal(t, 1, exp.shutdownCount())
}

func TestEnqueueAfterShutdownDropsRecord(t *testing.T) {
	exp := &captureExporter{}
	engine := newTestEngine(exp)
	require.NoError(t, engine.Shutdown(context.Background()))

	engine.Enqueue(99)

	assert.Equal(t, uint64(1), engine.Dropped())
	assert.Empty(t, exp.snapshot())
}

func TestForceFlushAfterShutdownIsNoOp(t *testing.T) {
	exp := &captureExporter{}
	engine := newTestEngine(exp)

	engine.Enqueue(1)
	require.NoError(t, engine.Shutdown(context.Background()))
	before := len(exp.snapshot())

	require.NoError(t, engine.ForceFlush(context.Background()))
	assert.Equal(t, before, len(exp.snapshot()))
}

func TestExportFailureDiscardsBatchAndCounts(t *testing.T) {
	exp := &captureExporter{}
	exp.setFail(true)
	engine := newTestEngine(exp)
	defer engine.Shutdown(context.Background())

	engine.Enqueue(1)
	require.Error(t, engine.ForceFlush(context.Background()))
	assert.Equal(t, uint64(1), engine.ExportFailures())

	// The failed batch is gone; only new records reach the exporter.
	exp.setFail(false)
	engine.Enqueue(2)
	require.NoError(t, engine.ForceFlush(context.Background()))
	require.Equal(t, [][]int{{2}}, exp.snapshot())
}

func TestForceFlushHonorsContextTimeout(t *testing.T) {
	exp := &captureExporter{}
	engine := newTestEngine(exp)
	defer engine.Shutdown(context.Background())

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	engine.Enqueue(1)

	// Either the worker serviced the flush before the deadline check or the
	// context error surfaces; both are acceptable, crashing is not.
	err := engine.ForceFlush(ctx)
	if err != nil {
		assert.ErrorIs(t, err, context.Canceled)
	}
}

func TestConcurrentEnqueue(t *testing.T) {
	exp := &captureExporter{}
	engine := newTestEngine(exp)

	var wg sync.WaitGroup
	const producers, perProducer = 8, 100
	for i := 0; i < producers; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for j := 0; j < perProducer; j++ {
				engine.Enqueue(j)
			}
		}()
	}
	wg.Wait()

	require.NoError(t, engine.Shutdown(context.Background()))

	total := 0
	for _, batch := range exp.snapshot() {
		total += len(batch)
	}
	assert.Equal(t, producers*perProducer, total)
}

// Every record racing a shutdown must end up exported or counted as dropped;
// none may vanish into a buffer the worker no longer services.
func TestEnqueueRacingShutdownIsAccounted(t *testing.T) {
	exp := &captureExporter{}
	engine := newTestEngine(exp)

	var wg sync.WaitGroup
	start := make(chan struct{})
	const producers, perProducer = 8, 200
	for i := 0; i < producers; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			<-start
			for j := 0; j < perProducer; j++ {
				engine.Enqueue(j)
			}
		}()
	}

	close(start)
	require.NoError(t, engine.Shutdown(context.Background()))
	wg.Wait()

	exported := 0
	for _, batch := range exp.snapshot() {
		exported += len(batch)
	}
	assert.Equal(t, producers*perProducer, exported+int(engine.Dropped()))
}
