package reactive

// Listener is anything that can be notified when a dependency changes.
// It is implemented by memos, effects and computeds.
type Listener interface {
	// MarkDirty notifies the listener that one of its dependencies changed.
	// Memos invalidate their cached value, effects schedule a re-run on
	// their owner and computeds re-run immediately.
	MarkDirty()

	// ID returns a unique identifier used for deduplication during batch
	// processing.
	ID() uint64
}

// Cleanup is a function returned by effects to release resources.
// It is called before the effect re-runs and when the effect is disposed.
type Cleanup func()

// sourceTracker is implemented by listeners that remember what they read so
// they can unsubscribe before re-running.
type sourceTracker interface {
	Listener
	addSource(source *signalBase)
}
