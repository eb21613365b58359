// Package store implements fine-grained reactive stores over plain nested
// data.
//
// A store wraps a tree of map[string]any objects and []any lists. Readers
// see it through *View values; every property read made inside a reactive
// computation subscribes that computation to exactly that property, so a
// write only re-runs the computations that read what changed.
//
//	state, set, err := store.New(map[string]any{
//	    "user": map[string]any{"name": "John"},
//	    "rows": []any{1, 2, 3, 4, 5},
//	})
//
//	reactive.CreateComputed(func() {
//	    user := state.Get("user").(*store.View)
//	    fmt.Println(user.Get("name"))
//	})
//
//	set("user", "name", "Jake")                      // re-runs the computed
//	set("rows", []int{1, 3}, func(v any) any {       // rows = [1 4 3 8 5]
//	    return v.(int) * 2
//	})
//
// # Views
//
// Views are read-only. Writes go through the Setter returned by New, which
// takes a path expression: keys, indices, index sets, predicates and ranges
// followed by a value or an updater. Objects written over objects are merged
// recursively, lists are replaced.
//
// The same raw container always yields the same *View, including containers
// reached through cycles. Frozen values, typed Go values and functions are
// never wrapped.
//
// # Tracking
//
// Three kinds of signals back a container:
//
//   - a value signal per property, notified when its value changes
//   - an existence signal per property, notified when it is added or removed
//   - an enumeration signal, notified when keys are added or removed or a
//     list changes length
//
// Keys, Len and iteration subscribe to the enumeration signal, so they are
// not invalidated by value-only writes. Signals are created on first tracked
// read; writes to properties nobody tracked cost no notifications.
//
// # Concurrency
//
// A store is not safe for concurrent use. All reads and writes for a store
// must happen on the goroutine that owns its reactive graph.
package store
