package instrument

import (
	"fmt"
	"sync"
	"time"

	"go.opentelemetry.io/contrib/instrumentation/host"
	"go.opentelemetry.io/contrib/instrumentation/runtime"
)

var (
	procMu        sync.Mutex
	runtimeActive bool
	hostActive    bool
)

// Runtime starts Go runtime metric collection (GC, heap, goroutines)
// through the globally registered meter provider. Idempotent.
func Runtime() error {
	procMu.Lock()
	defer procMu.Unlock()

	if runtimeActive {
		return nil
	}
	if err := runtime.Start(runtime.WithMinimumReadMemStatsInterval(10 * time.Second)); err != nil {
		return fmt.Errorf("failed to start runtime instrumentation: %w", err)
	}
	runtimeActive = true
	return nil
}

// Host starts host metric collection (CPU, memory, network) through the
// globally registered meter provider. Idempotent.
func Host() error {
	procMu.Lock()
	defer procMu.Unlock()

	if hostActive {
		return nil
	}
	if err := host.Start(); err != nil {
		return fmt.Errorf("failed to start host instrumentation: %w", err)
	}
	hostActive = true
	return nil
}
