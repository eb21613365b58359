// Package reactive provides the fine-grained reactive graph that stores
// attach to.
//
// Dependencies are tracked automatically at runtime: reading a Signal while a
// listener (Memo, Effect or Computed) is executing subscribes that listener to
// the signal, and writing the signal marks every subscriber dirty.
//
// # Core Types
//
// Signal[T] is a reactive value container:
//
//	count := NewSignal(0)
//	value := count.Get()  // Read (subscribes current listener)
//	count.Set(5)          // Write (notifies subscribers)
//
// Memo[T] is a cached derived computation:
//
//	doubled := NewMemo(func() int { return count.Get() * 2 })
//
// Computed re-runs synchronously whenever a dependency changes:
//
//	CreateComputed(func() {
//	    fmt.Println("count is", count.Get())
//	})
//
// # Batching
//
// Batch defers notifications to a single settle point:
//
//	Batch(func() {
//	    a.Set(1)
//	    b.Set(2)
//	})  // each dependent runs once
//
// Reads inside a batch observe the latest written value; only notification is
// deferred.
//
// # Goroutines
//
// The tracking context is per-goroutine. Spawned goroutines start with no
// listener and no owner; use WithOwner to re-establish ownership.
package reactive
