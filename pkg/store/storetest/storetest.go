// Package storetest provides helpers for testing code built on stores.
//
//	func TestCart(t *testing.T) {
//	    state, set := storetest.New(t, map[string]any{"items": []any{}})
//	    total := storetest.Track(t, func() { cartTotal(state) })
//
//	    storetest.MustSet(t, set, "items", 0, map[string]any{"price": 3})
//	    storetest.ExpectRuns(t, total, 2)
//	}
package storetest

import (
	"encoding/json"
	"errors"
	"reflect"
	"sync"
	"testing"

	"github.com/vango-dev/vstore/pkg/reactive"
	"github.com/vango-dev/vstore/pkg/store"
)

// New creates a store and fails the test if initial is not storable.
func New(t testing.TB, initial any, opts ...store.Option) (*store.View, store.Setter) {
	t.Helper()
	state, set, err := store.New(initial, opts...)
	if err != nil {
		t.Fatalf("store.New: %v", err)
	}
	return state, set
}

// MustSet applies a path expression and fails the test on error.
func MustSet(t testing.TB, set store.Setter, path ...any) {
	t.Helper()
	if err := set(path...); err != nil {
		t.Fatalf("set(%v): %v", path, err)
	}
}

// ExpectErr asserts that a path expression fails with target.
func ExpectErr(t testing.TB, set store.Setter, target error, path ...any) {
	t.Helper()
	err := set(path...)
	if !errors.Is(err, target) {
		t.Fatalf("set(%v): expected %v, got %v", path, target, err)
	}
}

// Tracker is a synchronous computation created by Track.
type Tracker struct {
	effect *reactive.Effect
}

// Runs returns how many times the computation has run, including the
// initial run.
func (tr *Tracker) Runs() int {
	return tr.effect.Runs()
}

// Track runs fn as a computed that re-runs synchronously whenever something
// it read changes. It is disposed when the test ends.
func Track(t testing.TB, fn func()) *Tracker {
	t.Helper()
	owner := reactive.NewOwner(nil)
	t.Cleanup(owner.Dispose)

	var tr Tracker
	reactive.WithOwner(owner, func() {
		tr.effect = reactive.CreateComputed(fn)
	})
	return &tr
}

// ExpectRuns asserts how many times a tracker has run.
func ExpectRuns(t testing.TB, tr *Tracker, want int) {
	t.Helper()
	if got := tr.Runs(); got != want {
		t.Errorf("expected %d runs, got %d", want, got)
	}
}

// ExpectValue asserts that the unwrapped contents of v deep-equal want.
func ExpectValue(t testing.TB, v any, want any) {
	t.Helper()
	got := store.Unwrap(v)
	if !reflect.DeepEqual(got, want) {
		t.Errorf("expected %s, got %s", render(want), render(got))
	}
}

func render(v any) string {
	b, err := json.Marshal(v)
	if err != nil {
		return "<unrenderable>"
	}
	return string(b)
}

// Recorder is a store.Observer that counts events.
type Recorder struct {
	mu       sync.Mutex
	Nodes    int
	Writes   map[store.WriteKind]int
	Notifies map[store.SignalKind]int
	Errors   []error
}

// NewRecorder returns an empty Recorder.
func NewRecorder() *Recorder {
	return &Recorder{
		Writes:   make(map[store.WriteKind]int),
		Notifies: make(map[store.SignalKind]int),
	}
}

func (r *Recorder) NodeCreated(*store.Store) {
	r.mu.Lock()
	r.Nodes++
	r.mu.Unlock()
}

func (r *Recorder) Wrote(_ *store.Store, kind store.WriteKind) {
	r.mu.Lock()
	r.Writes[kind]++
	r.mu.Unlock()
}

func (r *Recorder) Notified(_ *store.Store, kind store.SignalKind) {
	r.mu.Lock()
	r.Notifies[kind]++
	r.mu.Unlock()
}

func (r *Recorder) Failed(_ *store.Store, err error) {
	r.mu.Lock()
	r.Errors = append(r.Errors, err)
	r.mu.Unlock()
}
