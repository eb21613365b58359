package store

import "unsafe"

// Unwrap returns a deep copy of the raw data behind v with every nested view
// resolved. Views of other stores are unwrapped too. Containers reached more
// than once, including through cycles, map to the same copy, so the aliasing
// of the raw graph is preserved. Frozen values stay Frozen, with their
// contents unwrapped the same way; other leaves are returned as they are.
// Unwrap never registers dependencies.
func Unwrap(v any) any {
	return unwrap(v, make(map[unsafe.Pointer]any))
}

func unwrap(v any, seen map[unsafe.Pointer]any) any {
	v = rawOf(v)
	switch x := v.(type) {
	case map[string]any:
		if x == nil {
			return x
		}
		id := identity(x)
		if out, ok := seen[id]; ok {
			return out
		}
		out := make(map[string]any, len(x))
		seen[id] = out
		for k, e := range x {
			out[k] = unwrap(e, seen)
		}
		return out

	case []any:
		if len(x) == 0 {
			return []any{}
		}
		id := unsafe.Pointer(unsafe.SliceData(x))
		if out, ok := seen[id]; ok {
			return out
		}
		return unwrapList(x, id, seen)

	case *[]any:
		if x == nil {
			return x
		}
		id := identity(x)
		if out, ok := seen[id]; ok {
			return out
		}
		return unwrapList(*x, id, seen)

	case Frozen:
		return Frozen{Value: unwrap(x.Value, seen)}
	}
	return v
}

func unwrapList(list []any, id unsafe.Pointer, seen map[unsafe.Pointer]any) []any {
	out := make([]any, len(list))
	seen[id] = out
	for i, e := range list {
		out[i] = unwrap(e, seen)
	}
	return out
}
