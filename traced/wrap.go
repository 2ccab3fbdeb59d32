package traced

import (
	"context"
	"reflect"
	"runtime"
	"strings"

	"go.opentelemetry.io/otel/attribute"
)

// Wrap returns a function that runs fn inside a span on every invocation.
// The wrapper keeps fn's calling convention: same signature in, same out,
// errors handed back unchanged after being recorded on the span. An empty
// name defaults to fn's package-qualified symbol name.
func (t *TracedLogger) Wrap(name string, fn func(context.Context) error, attrs ...attribute.KeyValue) func(context.Context) error {
	if name == "" {
		name = functionName(fn)
	}
	return func(ctx context.Context) error {
		return t.WithSpan(ctx, name, fn, attrs...)
	}
}

// WrapFunc is the result-carrying counterpart of Wrap for functions that
// return a value alongside the error.
func WrapFunc[T any](t *TracedLogger, name string, fn func(context.Context) (T, error), attrs ...attribute.KeyValue) func(context.Context) (T, error) {
	if name == "" {
		name = functionName(fn)
	}
	return func(ctx context.Context) (result T, err error) {
		err = t.WithSpan(ctx, name, func(ctx context.Context) error {
			var inner error
			result, inner = fn(ctx)
			return inner
		}, attrs...)
		return result, err
	}
}

// functionName resolves a function value to its package-qualified symbol
// name, with the import path directory stripped.
func functionName(fn any) string {
	pc := reflect.ValueOf(fn).Pointer()
	rf := runtime.FuncForPC(pc)
	if rf == nil {
		return "<unknown>"
	}
	name := rf.Name()
	if idx := strings.LastIndexByte(name, '/'); idx != -1 {
		name = name[idx+1:]
	}
	return name
}
