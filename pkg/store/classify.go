package store

import (
	"reflect"
	"unsafe"
)

// Frozen marks a container as read-only. Frozen values are never wrapped:
// reading one through a View returns the Frozen value itself.
type Frozen struct {
	Value any
}

// Freeze marks v as non-wrappable.
func Freeze(v any) Frozen {
	return Frozen{Value: v}
}

// Getter is a computed property. Reading a key whose raw value is a Getter
// calls it with the tracked view of the containing object, so reads inside
// the getter are tracked like any other store read.
type Getter func(self *View) any

type kind uint8

const (
	kindLeaf kind = iota
	kindObject
	kindList
)

// classify reports how the engine treats v. Views must be resolved with
// rawOf first.
func classify(v any) kind {
	switch x := v.(type) {
	case map[string]any:
		if x != nil {
			return kindObject
		}
	case *[]any:
		if x != nil {
			return kindList
		}
	case []any:
		return kindList
	}
	return kindLeaf
}

// IsWrappable reports whether v is a plain container the store can track:
// a non-nil map[string]any, a []any or a non-nil *[]any. Frozen values,
// primitives, functions, times, byte slices, typed maps and slices, structs
// and pointers to anything else are opaque leaves.
func IsWrappable(v any) bool {
	return classify(rawOf(v)) != kindLeaf
}

// rawOf resolves a View to its backing raw container.
func rawOf(v any) any {
	if view, ok := v.(*View); ok && view != nil {
		return view.n.raw
	}
	return v
}

// identity returns the key under which a boxed raw container is cached.
func identity(raw any) unsafe.Pointer {
	switch x := raw.(type) {
	case map[string]any:
		return reflect.ValueOf(x).UnsafePointer()
	case *[]any:
		return unsafe.Pointer(x)
	}
	return nil
}

// sliceKey identifies a []any header by its backing array and length.
type sliceKey struct {
	data unsafe.Pointer
	len  int
}

// box converts a []any into the *[]any form used as backing storage so a
// list keeps its identity when it grows. Headers over the same backing array
// and length resolve to the same box, so every alias of a list shares one
// node. Lists without capacity have no backing array and are boxed alone.
// Other values are returned as is.
func (s *Store) box(v any) (any, bool) {
	list, ok := v.([]any)
	if !ok {
		return v, false
	}
	if cap(list) == 0 {
		return &list, true
	}
	key := sliceKey{data: unsafe.Pointer(unsafe.SliceData(list)), len: len(list)}
	if boxed, ok := s.boxes[key]; ok {
		return boxed, true
	}
	boxed := &list
	s.boxes[key] = boxed
	return boxed, true
}
