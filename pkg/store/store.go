package store

import (
	"fmt"
	"log/slog"
	"unsafe"

	"github.com/google/uuid"

	"github.com/vango-dev/vstore/pkg/reactive"
)

// Store owns the raw backing structure of one store root together with the
// node cache that maps every raw container reachable from it to its tracked
// view and signals.
type Store struct {
	id   uuid.UUID
	name string

	root  *node
	nodes map[unsafe.Pointer]*node
	boxes map[sliceKey]*[]any

	strict   bool
	logger   *slog.Logger
	observer Observer
}

// Setter applies a path expression to a store. See Store.Set.
type Setter func(path ...any) error

// New creates a store over initial and returns its tracked root view and
// setter. initial must be a map[string]any, a []any or a *[]any; anything
// else fails with ErrNotStorable.
//
// The store takes ownership of initial: it is mutated in place by the setter
// and callers must not keep writing to it directly.
//
// Passing a View returns that same view with a setter rooted at it.
func New(initial any, opts ...Option) (*View, Setter, error) {
	if v, ok := initial.(*View); ok && v != nil {
		st, raw := v.n.st, v.n.raw
		return v, func(path ...any) error { return st.setAt(raw, path) }, nil
	}

	if classify(initial) == kindLeaf {
		return nil, nil, fmt.Errorf("%w: %T", ErrNotStorable, initial)
	}

	st := &Store{
		id:       uuid.New(),
		nodes:    make(map[unsafe.Pointer]*node),
		boxes:    make(map[sliceKey]*[]any),
		logger:   slog.Default(),
		observer: NopObserver{},
	}
	for _, opt := range opts {
		opt(st)
	}
	raw, _ := st.box(initial)
	st.root = st.nodeFor(raw)

	st.logger.Debug("store created", "store", st.id, "name", st.name)

	return st.root.view, st.Set, nil
}

// ID returns the store's unique identifier.
func (s *Store) ID() uuid.UUID {
	return s.id
}

// Name returns the name configured with WithName.
func (s *Store) Name() string {
	return s.name
}

// Root returns the tracked view of the root container.
func (s *Store) Root() *View {
	return s.root.view
}

// Nodes returns the number of raw containers currently cached.
func (s *Store) Nodes() int {
	return len(s.nodes)
}

// Set applies a path expression to the root. The leading arguments select
// what to change:
//
//	string / Key        object property
//	int / Index         list index (writing at Len() appends)
//	[]int / Indices     several list indices
//	[]string / Keys     several object properties
//	func(any, int) bool list elements matching a predicate
//	Range               a strided list range
//
// The final argument is the new value, an updater (func(any) any or
// func(any, []any) any) receiving the previous value, Remove to delete the
// property, or Replace(v) to skip merging. Objects merge into objects
// recursively; everything else replaces. Inside a merged object only
// Terminal values (Remove, Replace, Value) are interpreted; functions there
// are stored as property values, not run as updaters.
//
//	set("rows", []int{1, 3}, func(v any) any { return v.(int) * 2 })
//	set("user", map[string]any{"name": "Jake"})
//	set(func(prev any) any { return map[string]any{"count": 1} })
//
// All notifications caused by one call are delivered after it completes.
func (s *Store) Set(path ...any) error {
	return s.setAt(s.root.raw, path)
}

// Batch runs fn inside a reactive batch so several setter calls settle once.
func (s *Store) Batch(fn func()) {
	reactive.Batch(fn)
}

func (s *Store) setAt(raw any, args []any) error {
	segs, term, err := parsePath(args)
	if err != nil {
		return s.fail(err)
	}

	reactive.Batch(func() {
		err = s.update(raw, segs, term, nil)
	})
	if err != nil {
		return s.fail(err)
	}
	return nil
}

func (s *Store) fail(err error) error {
	s.observer.Failed(s, err)
	s.logger.Debug("store setter failed", "store", s.id, "name", s.name, "error", err)
	return err
}

// nodeFor returns the node for a boxed raw container, creating it on first
// use. Revisiting a container returns the cached node, which is what breaks
// cycles in the raw graph.
func (s *Store) nodeFor(raw any) *node {
	key := identity(raw)
	if n, ok := s.nodes[key]; ok {
		return n
	}
	n := &node{st: s, raw: raw}
	n.view = &View{n: n}
	s.nodes[key] = n
	s.observer.NodeCreated(s)
	return n
}

// lookupNode returns the cached node for raw without creating one.
func (s *Store) lookupNode(raw any) *node {
	if key := identity(raw); key != nil {
		return s.nodes[key]
	}
	return nil
}
