package store

import (
	"fmt"
	"sort"
	"strconv"
	"unsafe"

	"github.com/vango-dev/vstore/pkg/reactive"
)

// update applies segs and t below the raw container cur. traversed is the
// path walked so far.
func (s *Store) update(cur any, segs []Segment, t Terminal, traversed []any) error {
	n := s.nodeFor(cur)
	if len(segs) == 0 {
		return s.assignRoot(n, t)
	}

	seg, rest := segs[0], segs[1:]
	switch seg := seg.(type) {
	case Key:
		key := string(seg)
		if _, isList := n.raw.(*[]any); isList {
			i, ok := listIndex(key)
			if !ok {
				return fmt.Errorf("%w: key %q on a list", ErrPathTypeMismatch, key)
			}
			if i < 0 {
				return fmt.Errorf("%w: negative index %d", ErrPathTypeMismatch, i)
			}
		}
		return s.step(n, key, key, rest, t, traversed)

	case Index:
		if _, isList := n.raw.(*[]any); !isList {
			return fmt.Errorf("%w: index %d on an object", ErrPathTypeMismatch, int(seg))
		}
		if seg < 0 {
			return fmt.Errorf("%w: negative index %d", ErrPathTypeMismatch, int(seg))
		}
		return s.step(n, strconv.Itoa(int(seg)), int(seg), rest, t, traversed)

	case Keys:
		for _, k := range seg {
			if err := s.update(cur, prepend(Key(k), rest), t, traversed); err != nil {
				return err
			}
		}
		return nil

	case Indices:
		return s.each(n, seg, rest, t, traversed)

	case Range:
		list, ok := n.raw.(*[]any)
		if !ok {
			return fmt.Errorf("%w: range on an object", ErrPathTypeMismatch)
		}
		return s.each(n, seg.indices(len(*list)), rest, t, traversed)

	case Filter:
		list, ok := n.raw.(*[]any)
		if !ok {
			return fmt.Errorf("%w: filter on an object", ErrPathTypeMismatch)
		}
		var selected []int
		reactive.Untracked(func() {
			for i := 0; i < len(*list); i++ {
				v := n.project((*list)[i], func(nv any) { (*list)[i] = nv })
				if seg(v, i) {
					selected = append(selected, i)
				}
			}
		})
		return s.each(n, selected, rest, t, traversed)
	}
	return fmt.Errorf("%w: unsupported segment %T", ErrPathTypeMismatch, seg)
}

// each applies the remaining path to every in-range index of a list node.
// Indices outside the list are skipped.
func (s *Store) each(n *node, indices []int, rest []Segment, t Terminal, traversed []any) error {
	if _, ok := n.raw.(*[]any); !ok {
		return fmt.Errorf("%w: index set on an object", ErrPathTypeMismatch)
	}
	for _, i := range indices {
		if i < 0 || i >= n.length() {
			continue
		}
		if err := s.update(n.raw, prepend(Index(i), rest), t, traversed); err != nil {
			return err
		}
	}
	return nil
}

// step either assigns at key or descends into the container stored there.
func (s *Store) step(n *node, key string, part any, rest []Segment, t Terminal, traversed []any) error {
	traversed = append(traversed[:len(traversed):len(traversed)], part)
	if len(rest) == 0 {
		return s.assign(n, key, t, traversed, nil)
	}

	value, ok, replace := n.slot(key)
	if !ok {
		return fmt.Errorf("%w: %v is missing", ErrPathTypeMismatch, traversed)
	}
	if v, isView := value.(*View); isView && v != nil {
		if v.n.st != s {
			return v.n.st.update(v.n.raw, rest, t, traversed)
		}
		value = v.n.raw
	}
	if boxed, ok := s.box(value); ok {
		replace(boxed)
		value = boxed
	}
	if classify(value) == kindLeaf {
		return fmt.Errorf("%w: %v is %T, not a container", ErrPathTypeMismatch, traversed, value)
	}
	return s.update(value, rest, t, traversed)
}

// assign applies t to the property key of n. visited guards merges of cyclic
// source objects.
func (s *Store) assign(n *node, key string, t Terminal, traversed []any, visited map[unsafe.Pointer]bool) error {
	if t.remove {
		s.deleteProperty(n, key)
		return nil
	}

	value := t.value
	if t.update != nil {
		prev, _, replace := n.slot(key)
		prevView := n.projectUntracked(prev, replace)

		var next any
		reactive.Untracked(func() { next = t.update(prevView, traversed) })
		if sameValue(next, prevView) {
			return nil
		}
		if nt, ok := next.(Terminal); ok {
			return s.assign(n, key, nt, traversed, visited)
		}
		value = next
	}

	value = s.own(value)
	if !t.replace {
		if src, ok := value.(map[string]any); ok {
			prev, _, _ := n.slot(key)
			if target, ok := s.targetOf(prev); ok {
				return target.st.merge(target, src, visited)
			}
		}
	}
	s.setProperty(n, key, value)
	return nil
}

// assignRoot applies a terminal with no path to the root container.
func (s *Store) assignRoot(n *node, t Terminal) error {
	if t.remove {
		return fmt.Errorf("%w: cannot remove the root", ErrPathTypeMismatch)
	}

	value := t.value
	if t.update != nil {
		var next any
		reactive.Untracked(func() { next = t.update(n.view, nil) })
		if sameValue(next, n.view) {
			return nil
		}
		if nt, ok := next.(Terminal); ok {
			return s.assignRoot(n, nt)
		}
		value = next
	}
	if value == nil {
		return nil
	}

	value = s.own(value)
	switch src := value.(type) {
	case map[string]any:
		if _, ok := n.raw.(map[string]any); !ok {
			return fmt.Errorf("%w: cannot merge an object into a list", ErrPathTypeMismatch)
		}
		if identity(src) == identity(n.raw) {
			return nil
		}
		if t.replace {
			s.prune(n, src)
		}
		return s.merge(n, src, nil)
	case *[]any:
		if _, ok := n.raw.(*[]any); !ok {
			return fmt.Errorf("%w: cannot merge a list into an object", ErrPathTypeMismatch)
		}
		if identity(src) != identity(n.raw) {
			s.reconcile(n, *src)
		}
		return nil
	}
	return fmt.Errorf("%w: cannot set the root to %T", ErrPathTypeMismatch, value)
}

// own resolves views of this store to their raw containers and boxes bare
// lists. Views of other stores are kept, which nests that store.
func (s *Store) own(value any) any {
	if v, ok := value.(*View); ok && v != nil && v.n.st == s {
		value = v.n.raw
	}
	value, _ = s.box(value)
	return value
}

// targetOf returns the node an object value should be merged into, following
// nested views into their own store.
func (s *Store) targetOf(prev any) (*node, bool) {
	if v, ok := prev.(*View); ok && v != nil {
		if _, isObj := v.n.raw.(map[string]any); isObj {
			return v.n, true
		}
		return nil, false
	}
	if obj, ok := prev.(map[string]any); ok && obj != nil {
		return s.nodeFor(obj), true
	}
	return nil, false
}

// merge writes every property of src into the object node target. Nested
// objects merge recursively, everything else is a leaf write. Terminal
// property values apply to their property; functions are stored as they are.
func (s *Store) merge(target *node, src map[string]any, visited map[unsafe.Pointer]bool) error {
	if visited == nil {
		visited = make(map[unsafe.Pointer]bool)
	}
	id := identity(src)
	if visited[id] || id == identity(target.raw) {
		return nil
	}
	visited[id] = true

	keys := make([]string, 0, len(src))
	for k := range src {
		keys = append(keys, k)
	}
	sort.Strings(keys)

	for _, k := range keys {
		t, ok := src[k].(Terminal)
		if !ok {
			t = Value(src[k])
		}
		if err := s.assign(target, k, t, nil, visited); err != nil {
			return err
		}
	}
	return nil
}

// prune deletes the properties of n that src does not have.
func (s *Store) prune(n *node, src map[string]any) {
	obj := n.raw.(map[string]any)
	var stale []string
	for k := range obj {
		if _, ok := src[k]; !ok {
			stale = append(stale, k)
		}
	}
	sort.Strings(stale)
	for _, k := range stale {
		s.deleteProperty(n, k)
	}
}

// reconcile makes the list node n hold the elements of src, writing index by
// index so that unchanged positions do not notify.
func (s *Store) reconcile(n *node, src []any) {
	for i, v := range src {
		s.setProperty(n, strconv.Itoa(i), s.own(v))
	}
	if len(src) < n.length() {
		s.truncate(n, len(src))
	}
}

// setProperty is the leaf write. It mutates raw in place and notifies the
// property signal, plus existence and enumeration signals when a key or
// element is added.
func (s *Store) setProperty(n *node, key string, value any) {
	switch raw := n.raw.(type) {
	case map[string]any:
		prev, present := raw[key]
		if present && sameValue(prev, value) {
			return
		}
		raw[key] = value
		n.notifyProp(key, value)
		if present {
			s.wrote(WriteSet)
			return
		}
		n.notifyHas(key)
		n.notifyKeys()
		s.wrote(WriteAdd)

	case *[]any:
		i, ok := listIndex(key)
		if !ok || i < 0 {
			return
		}
		if i < len(*raw) {
			if sameValue((*raw)[i], value) {
				return
			}
			(*raw)[i] = value
			n.notifyProp(key, value)
			s.wrote(WriteSet)
			return
		}

		old := len(*raw)
		for len(*raw) <= i {
			*raw = append(*raw, nil)
		}
		(*raw)[i] = value
		for j := old; j <= i; j++ {
			k := strconv.Itoa(j)
			n.notifyProp(k, (*raw)[j])
			n.notifyHas(k)
		}
		n.notifyKeys()
		s.wrote(WriteAdd)
	}
}

// deleteProperty removes key from an object. On a list, removing the last
// element shortens it and removing any other element clears the slot.
func (s *Store) deleteProperty(n *node, key string) {
	switch raw := n.raw.(type) {
	case map[string]any:
		if _, ok := raw[key]; !ok {
			return
		}
		delete(raw, key)
		n.notifyProp(key, nil)
		n.notifyHas(key)
		n.notifyKeys()
		s.wrote(WriteRemove)

	case *[]any:
		i, ok := listIndex(key)
		if !ok || i < 0 || i >= len(*raw) {
			return
		}
		if i == len(*raw)-1 {
			s.truncate(n, i)
			return
		}
		s.setProperty(n, key, nil)
	}
}

// truncate shortens a list node to size.
func (s *Store) truncate(n *node, size int) {
	raw := n.raw.(*[]any)
	old := len(*raw)
	clear((*raw)[size:old])
	*raw = (*raw)[:size]
	for j := size; j < old; j++ {
		k := strconv.Itoa(j)
		n.notifyProp(k, nil)
		n.notifyHas(k)
	}
	n.notifyKeys()
	s.wrote(WriteRemove)
}

func (s *Store) wrote(kind WriteKind) {
	s.observer.Wrote(s, kind)
}

func prepend(seg Segment, rest []Segment) []Segment {
	out := make([]Segment, 0, len(rest)+1)
	out = append(out, seg)
	return append(out, rest...)
}
