// Package bridge adapts the log provider to logrus, the host logging
// framework. The hook holds the internal entry-to-record translator by
// composition rather than extension: logrus (or any code holding the hook)
// can change the bridge's level and formatter freely without ever touching
// the translator's protocol-defined mapping or its construction-time
// severity gate. That separation is what keeps one consumer's formatting
// preference from corrupting the wire encoding for everyone.
package bridge

import (
	"context"
	"fmt"
	"os"
	"sync"

	"github.com/sirupsen/logrus"

	"github.com/brenordv/log-factory-package-ext-otel/provider"
)

// ErrorHandler receives errors raised while translating or emitting an
// entry. It must not log through a logger carrying this hook.
type ErrorHandler func(entry *logrus.Entry, err error)

// Hook ships logrus entries to the OTel log pipeline.
type Hook struct {
	provider   *provider.LogProvider
	translator emitter

	mu         sync.Mutex
	level      logrus.Level
	formatter  logrus.Formatter
	errHandler ErrorHandler
}

var _ logrus.Hook = (*Hook)(nil)

type options struct {
	level      logrus.Level
	minLevel   logrus.Level
	formatter  logrus.Formatter
	errHandler ErrorHandler
	scope      string
}

// Option configures a Hook.
type Option func(*options)

// WithLevel sets the bridge's own severity gate. This gate belongs to the
// bridge alone and can be changed later with SetLevel.
func WithLevel(level logrus.Level) Option {
	return func(o *options) {
		o.level = level
	}
}

// WithMinLevel sets the internal translator's severity gate. Unlike the
// bridge gate it is fixed for the life of the hook.
func WithMinLevel(level logrus.Level) Option {
	return func(o *options) {
		o.minLevel = level
	}
}

// WithFormatter sets the bridge's formatter, used only to render entries in
// local error reports. The translator's record mapping is unaffected.
func WithFormatter(formatter logrus.Formatter) Option {
	return func(o *options) {
		o.formatter = formatter
	}
}

// WithErrorHandler sets the local error-reporting hook invoked when an emit
// fails. The default writes to stderr.
func WithErrorHandler(handler ErrorHandler) Option {
	return func(o *options) {
		o.errHandler = handler
	}
}

// WithScope sets the instrumentation scope name used for the internal
// logger.
func WithScope(name string) Option {
	return func(o *options) {
		o.scope = name
	}
}

// NewHook creates a bridge hook emitting through p.
func NewHook(p *provider.LogProvider, opts ...Option) *Hook {
	o := options{
		level:    logrus.TraceLevel,
		minLevel: logrus.TraceLevel,
		scope:    "github.com/brenordv/log-factory-package-ext-otel/bridge",
	}
	for _, opt := range opts {
		opt(&o)
	}

	return &Hook{
		provider:   p,
		translator: newTranslator(p.Logger(o.scope), toSeverity(o.minLevel)),
		level:      o.level,
		formatter:  o.formatter,
		errHandler: o.errHandler,
	}
}

// Levels registers the hook for every level; gating happens in Fire so the
// bridge does not depend on the host logger pre-filtering.
func (h *Hook) Levels() []logrus.Level {
	return logrus.AllLevels
}

// Fire translates and forwards the entry. It never returns an error:
// telemetry failures must not break application logging, so problems go to
// the error handler instead.
func (h *Hook) Fire(entry *logrus.Entry) error {
	h.fire(entry)
	return nil
}

func (h *Hook) fire(entry *logrus.Entry) {
	defer func() {
		if r := recover(); r != nil {
			h.reportError(entry, fmt.Errorf("panic during telemetry translation: %v", r))
		}
	}()

	h.mu.Lock()
	level := h.level
	h.mu.Unlock()

	// logrus levels grow less severe as they grow numerically.
	if entry.Level > level {
		return
	}

	if err := h.translator.emit(entry); err != nil {
		h.reportError(entry, err)
	}
}

// SetLevel changes the bridge's own severity gate.
func (h *Hook) SetLevel(level logrus.Level) {
	h.mu.Lock()
	defer h.mu.Unlock()
	h.level = level
}

// Level returns the bridge's own severity gate.
func (h *Hook) Level() logrus.Level {
	h.mu.Lock()
	defer h.mu.Unlock()
	return h.level
}

// SetFormatter changes the bridge's formatter. The internal translator never
// sees it.
func (h *Hook) SetFormatter(formatter logrus.Formatter) {
	h.mu.Lock()
	defer h.mu.Unlock()
	h.formatter = formatter
}

// Formatter returns the bridge's formatter.
func (h *Hook) Formatter() logrus.Formatter {
	h.mu.Lock()
	defer h.mu.Unlock()
	return h.formatter
}

// Flush force-flushes the log pipeline.
func (h *Hook) Flush(ctx context.Context) error {
	return h.provider.Flush(ctx)
}

// Close shuts the log provider down. Idempotent.
func (h *Hook) Close(ctx context.Context) error {
	return h.provider.Shutdown(ctx)
}

// Provider exposes the underlying log provider for advanced use cases.
func (h *Hook) Provider() *provider.LogProvider {
	return h.provider
}

func (h *Hook) reportError(entry *logrus.Entry, err error) {
	h.mu.Lock()
	handler := h.errHandler
	formatter := h.formatter
	h.mu.Unlock()

	if handler != nil {
		handler(entry, err)
		return
	}

	rendered := entry.Message
	if formatter != nil {
		if out, ferr := formatter.Format(entry); ferr == nil {
			rendered = string(out)
		}
	}
	fmt.Fprintf(os.Stderr, "telemetry emit failed: %v (record: %s)\n", err, rendered)
}
