package store

import (
	"fmt"
	"strconv"
)

// Segment is one step of a path expression. Setter arguments of the plain Go
// kinds listed on Store.Set are converted to these types; the types can also
// be passed directly.
type Segment interface {
	segment()
}

// Key selects an object property. On a list it is parsed as an index.
type Key string

// Index selects a list element. Writing at Len() or beyond grows the list.
type Index int

// Keys selects several object properties.
type Keys []string

// Indices selects several list elements. Indices outside the list are
// skipped.
type Indices []int

// Filter selects the list elements for which it returns true. It receives
// the element as a reader would see it and its index.
type Filter func(value any, i int) bool

// Range selects From, From+By, From+2*By, ... up to and including To. A nil
// To means the last element and a By below 1 means 1, so Range{} selects
// every element.
type Range struct {
	From int
	To   *int
	By   int
}

// Span returns the range from..to stepping by.
func Span(from, to, by int) Range {
	return Range{From: from, To: &to, By: by}
}

func (Key) segment()     {}
func (Index) segment()   {}
func (Keys) segment()    {}
func (Indices) segment() {}
func (Filter) segment()  {}
func (Range) segment()   {}

// indices returns the indices the range selects in a list of length n. Only
// positions inside the list are produced: To is clamped to the last element
// and a negative From starts at the first non-negative index on the stride.
func (r Range) indices(n int) []int {
	to := n - 1
	if r.To != nil && *r.To < to {
		to = *r.To
	}
	by := max(r.By, 1)
	from := r.From
	if from < 0 {
		from += (-from + by - 1) / by * by
	}
	var out []int
	for i := from; i <= to; {
		out = append(out, i)
		if to-i < by {
			break
		}
		i += by
	}
	return out
}

// Terminal is what a path expression does at the selected positions: write a
// value, apply an updater, replace without merging or remove.
type Terminal struct {
	value   any
	update  func(prev any, traversed []any) any
	replace bool
	remove  bool
}

// Remove deletes the selected property. Used as a property value inside a
// merged object it deletes that property.
var Remove = Terminal{remove: true}

// Value writes v. Objects written over objects are merged. Use Value to pass
// a function or a Terminal as a plain value.
func Value(v any) Terminal {
	return Terminal{value: v}
}

// Replace writes v without merging it into the previous value.
func Replace(v any) Terminal {
	return Terminal{value: v, replace: true}
}

// Update computes the new value from the previous one. Containers are passed
// as views of their state before the call; returning prev unchanged is a
// no-op.
func Update(fn func(prev any) any) Terminal {
	return Terminal{update: func(prev any, _ []any) any { return fn(prev) }}
}

// UpdatePath is Update with the path walked from the root to the selected
// position, as string keys and int indices.
func UpdatePath(fn func(prev any, traversed []any) any) Terminal {
	return Terminal{update: fn}
}

// IsRemove reports whether v is the Remove marker.
func IsRemove(v any) bool {
	t, ok := v.(Terminal)
	return ok && t.remove
}

// terminalOf interprets the trailing setter argument.
func terminalOf(v any) Terminal {
	switch x := v.(type) {
	case Terminal:
		return x
	case func(any) any:
		return Update(x)
	case func(any, []any) any:
		return UpdatePath(x)
	}
	return Value(v)
}

// parsePath splits setter arguments into segments and the trailing terminal.
func parsePath(args []any) ([]Segment, Terminal, error) {
	if len(args) == 0 {
		return nil, Terminal{}, fmt.Errorf("%w: empty path", ErrPathTypeMismatch)
	}

	segs := make([]Segment, 0, len(args)-1)
	for i, arg := range args[:len(args)-1] {
		seg, err := segmentOf(arg)
		if err != nil {
			return nil, Terminal{}, fmt.Errorf("%w: argument %d: %v", ErrPathTypeMismatch, i, err)
		}
		segs = append(segs, seg)
	}
	return segs, terminalOf(args[len(args)-1]), nil
}

func segmentOf(arg any) (Segment, error) {
	switch x := arg.(type) {
	case Segment:
		return x, nil
	case string:
		return Key(x), nil
	case int:
		return Index(x), nil
	case []int:
		return Indices(x), nil
	case []string:
		return Keys(x), nil
	case func(any, int) bool:
		return Filter(x), nil
	}
	return nil, fmt.Errorf("unsupported path segment %T", arg)
}

// listIndex converts a key segment addressing a list into an index.
func listIndex(key string) (int, bool) {
	i, err := strconv.Atoi(key)
	return i, err == nil
}
