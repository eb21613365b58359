package reactive

import (
	"sync"
	"sync/atomic"
)

// maxImmediateReruns bounds how often a computed may re-run because it
// invalidated itself during a single run.
const maxImmediateReruns = 100

// Effect represents a reactive side effect that runs when its dependencies
// change.
//
// Effects created with CreateEffect re-run on their owner's next
// RunPendingEffects call; effects created with CreateComputed re-run
// synchronously as soon as they are notified (after the enclosing batch, if
// any, settles).
type Effect struct {
	id uint64

	fn      func() Cleanup
	cleanup Cleanup

	// sources are the signals/memos this effect read on its last run.
	sources   []*signalBase
	sourcesMu sync.Mutex

	owner *Owner

	// immediate effects run on MarkDirty instead of being scheduled.
	immediate bool

	pending  atomic.Bool
	disposed atomic.Bool
	running  bool

	runs atomic.Int64
}

// MarkDirty marks the effect as needing to re-run.
// Implements the Listener interface.
func (e *Effect) MarkDirty() {
	if e.disposed.Load() {
		return
	}

	if e.immediate || e.owner == nil {
		if e.running {
			// Re-run once the current pass finishes.
			e.pending.Store(true)
			return
		}
		e.run()
		return
	}

	if e.pending.CompareAndSwap(false, true) {
		e.owner.scheduleEffect(e)
	}
}

// ID returns the unique identifier for this effect.
func (e *Effect) ID() uint64 {
	return e.id
}

// Runs returns how many times the effect body has executed.
func (e *Effect) Runs() int {
	return int(e.runs.Load())
}

// run executes the effect function, re-running while it invalidated itself.
func (e *Effect) run() {
	e.running = true
	defer func() { e.running = false }()

	for i := 0; ; i++ {
		if e.disposed.Load() {
			return
		}
		e.pending.Store(false)
		e.runOnce()
		if !e.pending.Load() {
			return
		}
		if i >= maxImmediateReruns {
			log().Warn("computed keeps invalidating itself; giving up", "id", e.id, "reruns", i)
			e.pending.Store(false)
			return
		}
	}
}

func (e *Effect) runOnce() {
	if e.cleanup != nil {
		e.cleanup()
		e.cleanup = nil
	}

	e.clearSources()

	old := setCurrentListener(e)
	defer setCurrentListener(old)

	e.runs.Add(1)
	e.cleanup = e.fn()
}

func (e *Effect) clearSources() {
	e.sourcesMu.Lock()
	for _, source := range e.sources {
		source.unsubscribe(e)
	}
	e.sources = e.sources[:0]
	e.sourcesMu.Unlock()
}

// addSource adds a source dependency.
func (e *Effect) addSource(source *signalBase) {
	e.sourcesMu.Lock()
	defer e.sourcesMu.Unlock()

	for _, s := range e.sources {
		if s == source {
			return
		}
	}
	e.sources = append(e.sources, source)
}

// Dispose stops the effect and unsubscribes it from all sources.
func (e *Effect) Dispose() {
	if e.disposed.Swap(true) {
		return
	}

	if e.cleanup != nil {
		e.cleanup()
		e.cleanup = nil
	}

	e.sourcesMu.Lock()
	for _, source := range e.sources {
		source.unsubscribe(e)
	}
	e.sources = nil
	e.sourcesMu.Unlock()
}

func newEffect(fn func() Cleanup, immediate bool) *Effect {
	owner := getCurrentOwner()
	e := &Effect{
		id:        nextID(),
		fn:        fn,
		owner:     owner,
		immediate: immediate,
	}
	if owner != nil {
		owner.registerEffect(e)
	}
	e.run()
	return e
}

// CreateEffect creates and runs a new effect within the current owner.
// The effect re-runs on the owner's next RunPendingEffects after any signal
// it read changes. Without an owner it re-runs immediately.
//
// Example:
//
//	CreateEffect(func() Cleanup {
//	    fmt.Println("Count is:", count.Get())
//	    return func() { fmt.Println("Cleanup") }
//	})
func CreateEffect(fn func() Cleanup) *Effect {
	return newEffect(fn, false)
}

// CreateComputed creates a computation that runs immediately and re-runs
// synchronously every time one of its dependencies changes.
func CreateComputed(fn func()) *Effect {
	return newEffect(func() Cleanup {
		fn()
		return nil
	}, true)
}

// On returns a computation body that tracks only what deps reads and then
// calls fn with its result untracked.
//
//	CreateComputed(On(func() any { return state.Get("obj") }, func(v any) {
//	    // reads here do not subscribe
//	}))
func On[T any](deps func() T, fn func(T)) func() {
	return func() {
		v := deps()
		Untracked(func() { fn(v) })
	}
}

// OnCleanup registers fn to run when the current owner is disposed.
func OnCleanup(fn func()) {
	if owner := getCurrentOwner(); owner != nil {
		owner.OnCleanup(fn)
	}
}
