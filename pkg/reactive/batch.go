package reactive

import (
	"context"
	"log/slog"
	"sync/atomic"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/trace"
)

// tracerName is the instrumentation scope for transaction spans.
const tracerName = "github.com/vango-dev/vstore/reactive"

var logger atomic.Pointer[slog.Logger]

// SetLogger replaces the logger used for transaction and computed
// diagnostics. A nil logger restores slog.Default().
func SetLogger(l *slog.Logger) {
	logger.Store(l)
}

func log() *slog.Logger {
	if l := logger.Load(); l != nil {
		return l
	}
	return slog.Default()
}

// Batch groups multiple signal updates into a single notification phase.
// All listeners marked dirty inside fn are collected, deduplicated and
// notified once when the outermost batch completes.
//
// Example:
//
//	Batch(func() {
//	    firstName.Set("John")
//	    lastName.Set("Doe")
//	})
//	// dependents run once with both changes
func Batch(fn func()) {
	incrementBatchDepth()

	defer func() {
		if decrementBatchDepth() {
			processPendingUpdates()
		}
	}()

	fn()
}

// processPendingUpdates deduplicates and notifies all pending listeners.
func processPendingUpdates() {
	updates := drainPendingUpdates()
	if len(updates) == 0 {
		return
	}

	seen := make(map[uint64]bool, len(updates))
	unique := make([]Listener, 0, len(updates))
	for _, listener := range updates {
		id := listener.ID()
		if !seen[id] {
			seen[id] = true
			unique = append(unique, listener)
		}
	}

	for _, listener := range unique {
		listener.MarkDirty()
	}
}

// Untracked runs fn without tracking signal reads as dependencies.
func Untracked(fn func()) {
	old := setCurrentListener(nil)
	defer setCurrentListener(old)
	fn()
}

// UntrackedValue evaluates fn without tracking and returns its result.
func UntrackedValue[T any](fn func() T) T {
	var v T
	Untracked(func() { v = fn() })
	return v
}

// Tx runs fn as a transaction. It is an alias for Batch.
func Tx(fn func()) {
	Batch(fn)
}

// TxNamed runs fn as a named transaction. The name is recorded on an
// OpenTelemetry span and logged at debug level.
func TxNamed(name string, fn func()) {
	TxNamedContext(context.Background(), name, fn)
}

// TxNamedContext is TxNamed with an explicit parent context for the span.
func TxNamedContext(ctx context.Context, name string, fn func()) {
	_, span := otel.Tracer(tracerName).Start(ctx, "reactive.tx",
		trace.WithAttributes(
			attribute.String("reactive.tx.name", name),
			attribute.Int("reactive.batch_depth", getBatchDepth()),
		),
	)
	defer span.End()

	log().Debug("tx start", "name", name)
	defer log().Debug("tx end", "name", name)

	Batch(fn)
}
