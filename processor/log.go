package processor

import (
	"context"

	sdklog "go.opentelemetry.io/otel/sdk/log"
)

// Logs adapts the generic Engine to the sdklog.Processor interface so it can
// be installed in a LoggerProvider.
type Logs struct {
	engine *Engine[sdklog.Record]
}

var _ sdklog.Processor = (*Logs)(nil)

// NewLogs creates a running log batch processor exporting through exp.
func NewLogs(exp sdklog.Exporter, opts ...Option) *Logs {
	return &Logs{
		engine: NewEngine[sdklog.Record](logExporter{exp}, opts...),
	}
}

// OnEmit enqueues a clone of the record. The cheap enqueue is all the
// producer pays for; exporting happens on the engine's worker.
func (p *Logs) OnEmit(_ context.Context, record *sdklog.Record) error {
	p.engine.Enqueue(record.Clone())
	return nil
}

// ForceFlush synchronously drains the buffer through the exporter.
func (p *Logs) ForceFlush(ctx context.Context) error {
	return p.engine.ForceFlush(ctx)
}

// Shutdown drains remaining records and shuts the exporter down.
// Idempotent.
func (p *Logs) Shutdown(ctx context.Context) error {
	return p.engine.Shutdown(ctx)
}

// ExportFailures reports how many batches were discarded after a failed
// export.
func (p *Logs) ExportFailures() uint64 {
	return p.engine.ExportFailures()
}

// Dropped reports how many records arrived after shutdown began.
func (p *Logs) Dropped() uint64 {
	return p.engine.Dropped()
}

// logExporter narrows sdklog.Exporter to the engine's Exporter shape.
type logExporter struct {
	exp sdklog.Exporter
}

func (x logExporter) Export(ctx context.Context, batch []sdklog.Record) error {
	return x.exp.Export(ctx, batch)
}

func (x logExporter) Shutdown(ctx context.Context) error {
	return x.exp.Shutdown(ctx)
}
