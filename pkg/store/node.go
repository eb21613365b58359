package store

import (
	"strconv"

	"github.com/vango-dev/vstore/pkg/reactive"
)

// node is the bookkeeping for one raw container: its tracked view, one value
// signal per property that has been read under tracking, one existence
// signal per property queried with Has, and one enumeration signal.
type node struct {
	st   *Store
	raw  any // map[string]any or *[]any
	view *View

	props map[string]*reactive.Signal[any]
	has   map[string]*reactive.Signal[struct{}]
	keys  *reactive.Signal[struct{}]
}

// trackProp registers the current listener on the value signal for key.
func (n *node) trackProp(key string, current any) {
	if !reactive.IsTracking() {
		return
	}
	sig, ok := n.props[key]
	if !ok {
		if n.props == nil {
			n.props = make(map[string]*reactive.Signal[any])
		}
		sig = reactive.NewSignal(current).WithEquals(sameValue)
		n.props[key] = sig
	}
	sig.Get()
}

// trackHas registers the current listener on the existence signal for key.
func (n *node) trackHas(key string) {
	if !reactive.IsTracking() {
		return
	}
	sig, ok := n.has[key]
	if !ok {
		if n.has == nil {
			n.has = make(map[string]*reactive.Signal[struct{}])
		}
		sig = reactive.NewSignal(struct{}{})
		n.has[key] = sig
	}
	sig.Get()
}

// trackKeys registers the current listener on the enumeration signal.
func (n *node) trackKeys() {
	if !reactive.IsTracking() {
		return
	}
	if n.keys == nil {
		n.keys = reactive.NewSignal(struct{}{})
	}
	n.keys.Get()
}

// notifyProp pushes value into the property's signal, if anyone ever
// tracked it.
func (n *node) notifyProp(key string, value any) {
	if sig, ok := n.props[key]; ok {
		sig.Set(value)
		n.st.observer.Notified(n.st, SignalValue)
	}
}

func (n *node) notifyHas(key string) {
	if sig, ok := n.has[key]; ok {
		sig.Notify()
		n.st.observer.Notified(n.st, SignalHas)
	}
}

func (n *node) notifyKeys() {
	if n.keys != nil {
		n.keys.Notify()
		n.st.observer.Notified(n.st, SignalKeys)
	}
}

// project turns a raw property value into what readers see: containers
// become tracked views, everything else passes through. A []any is boxed in
// place through store before it is wrapped. When tracking, reading a
// container also subscribes to its shape so that adding or removing keys
// below it re-runs the reader.
func (n *node) project(value any, store func(any)) any {
	if v, ok := value.(*View); ok && v != nil {
		if v.n.st == n.st {
			value = v.n.raw
		} else {
			v.n.trackKeys()
			return v
		}
	}
	if boxed, ok := n.st.box(value); ok {
		store(boxed)
		value = boxed
	}
	if classify(value) == kindLeaf {
		return value
	}
	child := n.st.nodeFor(value)
	child.trackKeys()
	return child.view
}

// projectUntracked is project without shape tracking, used for values handed
// to updaters and predicates.
func (n *node) projectUntracked(value any, store func(any)) any {
	return reactive.UntrackedValue(func() any { return n.project(value, store) })
}

// slot returns the raw value stored under key and a function that replaces it
// without notifying anyone.
func (n *node) slot(key string) (any, bool, func(any)) {
	switch raw := n.raw.(type) {
	case map[string]any:
		v, ok := raw[key]
		return v, ok, func(nv any) { raw[key] = nv }
	case *[]any:
		i, err := strconv.Atoi(key)
		if err != nil || i < 0 || i >= len(*raw) {
			return nil, false, func(any) {}
		}
		return (*raw)[i], true, func(nv any) { (*raw)[i] = nv }
	}
	return nil, false, func(any) {}
}

// length returns the number of properties or elements.
func (n *node) length() int {
	switch raw := n.raw.(type) {
	case map[string]any:
		return len(raw)
	case *[]any:
		return len(*raw)
	}
	return 0
}
