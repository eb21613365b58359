package store

import (
	"math"
	"reflect"
	"unsafe"
)

// sameValue is the change detection used by the setter. Containers compare
// by identity, numbers by value with NaN equal to NaN (signed zeros are
// already equal under ==), and anything that is not comparable at runtime,
// such as functions, is always considered changed.
func sameValue(a, b any) bool {
	a, b = rawOf(a), rawOf(b)
	if a == nil || b == nil {
		return a == nil && b == nil
	}

	switch x := a.(type) {
	case float64:
		y, ok := b.(float64)
		return ok && (x == y || (math.IsNaN(x) && math.IsNaN(y)))
	case float32:
		y, ok := b.(float32)
		return ok && (x == y || (x != x && y != y))
	case map[string]any:
		y, ok := b.(map[string]any)
		return ok && identity(x) == identity(y)
	case []any:
		y, ok := b.([]any)
		return ok && len(x) == len(y) && cap(x) == cap(y) && unsafe.SliceData(x) == unsafe.SliceData(y)
	case Frozen:
		y, ok := b.(Frozen)
		return ok && sameValue(x.Value, y.Value)
	}

	if reflect.TypeOf(a) != reflect.TypeOf(b) {
		return false
	}
	if !reflect.ValueOf(a).Comparable() {
		return false
	}
	return a == b
}
