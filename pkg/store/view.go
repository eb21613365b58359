package store

import (
	"fmt"
	"iter"
	"sort"
	"strconv"
)

// View is the read-only tracked projection of a raw container. Reads made
// while a reactive listener is running subscribe that listener to exactly
// the properties read. Views are stable: reading the same container twice
// yields the same *View.
type View struct {
	n *node
}

// Store returns the store the view belongs to.
func (v *View) Store() *Store {
	return v.n.st
}

// IsArray reports whether the view projects a list.
func (v *View) IsArray() bool {
	return classify(v.n.raw) == kindList
}

// Get reads an object property. On a list, key is parsed as an index.
// Containers come back as *View, Getter properties are evaluated against
// this view, and missing keys read as nil.
func (v *View) Get(key string) any {
	obj, ok := v.n.raw.(map[string]any)
	if !ok {
		i, err := strconv.Atoi(key)
		if err != nil {
			return nil
		}
		return v.At(i)
	}

	value := obj[key]
	if g, ok := value.(Getter); ok {
		return g(v)
	}
	v.n.trackProp(key, value)
	return v.n.project(value, func(nv any) { obj[key] = nv })
}

// At reads a list element. Out-of-range reads return nil but are still
// tracked, so a reader waiting for index i re-runs once it is written.
func (v *View) At(i int) any {
	list, ok := v.n.raw.(*[]any)
	if !ok {
		return v.Get(strconv.Itoa(i))
	}

	var value any
	inRange := i >= 0 && i < len(*list)
	if inRange {
		value = (*list)[i]
	}
	v.n.trackProp(strconv.Itoa(i), value)
	if !inRange {
		return nil
	}
	return v.n.project(value, func(nv any) { (*list)[i] = nv })
}

// Len returns the number of elements or properties and tracks the
// container's enumeration signal.
func (v *View) Len() int {
	v.n.trackKeys()
	return v.n.length()
}

// Keys returns the object's keys in sorted order, or "0".."n-1" for a list,
// and tracks the enumeration signal. Value-only changes do not invalidate it.
func (v *View) Keys() []string {
	v.n.trackKeys()
	switch raw := v.n.raw.(type) {
	case map[string]any:
		keys := make([]string, 0, len(raw))
		for k := range raw {
			keys = append(keys, k)
		}
		sort.Strings(keys)
		return keys
	case *[]any:
		keys := make([]string, len(*raw))
		for i := range keys {
			keys[i] = strconv.Itoa(i)
		}
		return keys
	}
	return nil
}

// Has reports whether key exists. It tracks existence only: a reader of Has
// re-runs when the key is added or removed, not when its value changes.
func (v *View) Has(key string) bool {
	v.n.trackHas(key)
	_, ok, _ := v.n.slot(key)
	return ok
}

// Lookup walks a path of string keys and int indices and returns the value
// at its end, or nil if any step is missing or not a container.
func (v *View) Lookup(path ...any) any {
	var cur any = v
	for _, p := range path {
		view, ok := cur.(*View)
		if !ok {
			return nil
		}
		switch k := p.(type) {
		case string:
			cur = view.Get(k)
		case int:
			cur = view.At(k)
		default:
			return nil
		}
	}
	return cur
}

// Each calls fn for every element of a list through tracked per-index reads,
// stopping early when fn returns false. A reader that inspects only some
// elements is not invalidated by changes to the others.
func (v *View) Each(fn func(i int, value any) bool) {
	n := v.Len()
	for i := 0; i < n; i++ {
		if !fn(i, v.At(i)) {
			return
		}
	}
}

// All returns an iterator over the list's elements using tracked reads.
func (v *View) All() iter.Seq2[int, any] {
	return func(yield func(int, any) bool) {
		v.Each(yield)
	}
}

// Map collects fn over every element.
func (v *View) Map(fn func(value any, i int) any) []any {
	out := make([]any, 0, v.n.length())
	v.Each(func(i int, value any) bool {
		out = append(out, fn(value, i))
		return true
	})
	return out
}

// Filter returns the elements for which keep returns true.
func (v *View) Filter(keep func(value any, i int) bool) []any {
	var out []any
	v.Each(func(i int, value any) bool {
		if keep(value, i) {
			out = append(out, value)
		}
		return true
	})
	return out
}

// Slice returns the list's elements as a new []any. Container elements are
// views, so the result can be extended and handed back to the setter.
func (v *View) Slice() []any {
	return v.Map(func(value any, _ int) any { return value })
}

// Set is rejected: stores change only through their setter. In strict mode
// it returns ErrMutationNotAllowed, otherwise it is a no-op.
func (v *View) Set(key string, value any) error {
	return v.reject("set", key)
}

// Delete is rejected like Set.
func (v *View) Delete(key string) error {
	return v.reject("delete", key)
}

func (v *View) reject(op, key string) error {
	st := v.n.st
	st.logger.Debug("direct store mutation ignored", "store", st.id, "op", op, "key", key)
	if st.strict {
		return fmt.Errorf("%w: %s %q", ErrMutationNotAllowed, op, key)
	}
	return nil
}

// String renders the view's unwrapped contents.
func (v *View) String() string {
	return fmt.Sprint(Unwrap(v))
}

// Get reads path from v and converts the result to T.
func Get[T any](v *View, path ...any) (T, bool) {
	val, ok := v.Lookup(path...).(T)
	return val, ok
}
