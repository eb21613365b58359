package store_test

import (
	"errors"
	"testing"
	"time"

	"github.com/vango-dev/vstore/pkg/reactive"
	"github.com/vango-dev/vstore/pkg/store"
	"github.com/vango-dev/vstore/pkg/store/storetest"
)

func TestView_DirectSetIsIgnored(t *testing.T) {
	state, _ := storetest.New(t, map[string]any{"name": "John"})

	if err := state.Set("name", "Jake"); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if got := state.Get("name"); got != "John" {
		t.Errorf("expected John, got %v", got)
	}
}

func TestView_DirectDeleteIsIgnored(t *testing.T) {
	state, _ := storetest.New(t, map[string]any{"name": "John"})

	if err := state.Delete("name"); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if got := state.Get("name"); got != "John" {
		t.Errorf("expected John, got %v", got)
	}
}

func TestView_DirectSetInsideSetter(t *testing.T) {
	state, set := storetest.New(t, map[string]any{"name": "John"})

	storetest.MustSet(t, set, func(prev any) any {
		_ = prev.(*store.View).Set("name", "Jake")
		return prev
	})
	if got := state.Get("name"); got != "John" {
		t.Errorf("expected John, got %v", got)
	}
}

func TestView_StrictMode(t *testing.T) {
	state, _ := storetest.New(t, map[string]any{"name": "John"}, store.WithStrict(true))

	if err := state.Set("name", "Jake"); !errors.Is(err, store.ErrMutationNotAllowed) {
		t.Errorf("expected ErrMutationNotAllowed, got %v", err)
	}
	if err := state.Delete("name"); !errors.Is(err, store.ErrMutationNotAllowed) {
		t.Errorf("expected ErrMutationNotAllowed, got %v", err)
	}
	if got := state.Get("name"); got != "John" {
		t.Errorf("expected John, got %v", got)
	}
}

func TestView_Getter(t *testing.T) {
	state, set := storetest.New(t, map[string]any{
		"name": "John",
		"greeting": store.Getter(func(self *store.View) any {
			return "Hi, " + self.Get("name").(string)
		}),
	})

	if got := state.Get("greeting"); got != "Hi, John" {
		t.Errorf("expected 'Hi, John', got %v", got)
	}
	storetest.MustSet(t, set, map[string]any{"name": "Jake"})
	if got := state.Get("greeting"); got != "Hi, Jake" {
		t.Errorf("expected 'Hi, Jake', got %v", got)
	}
}

func TestView_GetterBackedByMemo(t *testing.T) {
	var greeting *reactive.Memo[string]
	state, set := storetest.New(t, map[string]any{
		"name": "John",
		"greeting": store.Getter(func(*store.View) any {
			return greeting.Get()
		}),
	})
	greeting = reactive.NewMemo(func() string {
		return "Hi, " + state.Get("name").(string)
	})

	if got := state.Get("greeting"); got != "Hi, John" {
		t.Errorf("expected 'Hi, John', got %v", got)
	}
	storetest.MustSet(t, set, map[string]any{"name": "Jake"})
	if got := state.Get("greeting"); got != "Hi, Jake" {
		t.Errorf("expected 'Hi, Jake', got %v", got)
	}
}

func TestView_IdentityStable(t *testing.T) {
	state, _ := storetest.New(t, map[string]any{
		"user": map[string]any{"name": "John"},
		"rows": []any{1, 2},
	})

	if state.Get("user") != state.Get("user") {
		t.Error("expected the same view for the same object")
	}
	if state.Get("rows") != state.Get("rows") {
		t.Error("expected the same view for the same list")
	}
	if state.Store().Root() != state {
		t.Error("expected Root to return the root view")
	}
}

func TestView_Wrapping(t *testing.T) {
	data := map[string]any{"withProperty": "y"}
	now := time.Now()
	state, _ := storetest.New(t, map[string]any{
		"data":  data,
		"list":  []any{1, 2, 3},
		"time":  now,
		"bytes": []byte("raw"),
	})

	if _, ok := state.Get("data").(*store.View); !ok {
		t.Errorf("expected object to be wrapped, got %T", state.Get("data"))
	}
	list, ok := state.Get("list").(*store.View)
	if !ok || !list.IsArray() {
		t.Errorf("expected list to be wrapped, got %T", state.Get("list"))
	}
	if got := state.Get("time"); got != now {
		t.Errorf("expected time to pass through, got %v", got)
	}
	if _, ok := state.Get("bytes").([]byte); !ok {
		t.Errorf("expected bytes to pass through, got %T", state.Get("bytes"))
	}
}

func TestView_FrozenPassthrough(t *testing.T) {
	frozen := store.Freeze(map[string]any{"user": map[string]any{"name": "John"}})
	state, _ := storetest.New(t, map[string]any{"data": frozen})

	got := state.Get("data")
	if _, ok := got.(*store.View); ok {
		t.Fatal("expected frozen value not to be wrapped")
	}
	if _, ok := got.(store.Frozen); !ok {
		t.Errorf("expected Frozen, got %T", got)
	}
	storetest.ExpectValue(t, state, map[string]any{"data": frozen})
}

func TestView_FrozenList(t *testing.T) {
	frozen := store.Freeze([]any{1, 2, 3})
	state, _ := storetest.New(t, map[string]any{"list": frozen})

	if _, ok := state.Get("list").(*store.View); ok {
		t.Error("expected frozen list not to be wrapped")
	}
	if store.IsWrappable(frozen) {
		t.Error("expected Frozen to be non-wrappable")
	}
}

func TestView_KeysAndLen(t *testing.T) {
	state, _ := storetest.New(t, map[string]any{
		"b":    1,
		"a":    2,
		"rows": []any{"x", "y", "z"},
	})

	keys := state.Keys()
	if len(keys) != 3 || keys[0] != "a" || keys[1] != "b" || keys[2] != "rows" {
		t.Errorf("expected sorted keys, got %v", keys)
	}
	if state.Len() != 3 {
		t.Errorf("expected 3, got %d", state.Len())
	}

	rows := state.Get("rows").(*store.View)
	if rows.Len() != 3 {
		t.Errorf("expected 3, got %d", rows.Len())
	}
	if k := rows.Keys(); len(k) != 3 || k[2] != "2" {
		t.Errorf("expected index keys, got %v", k)
	}
	if rows.Get("1") != "y" {
		t.Errorf("expected y, got %v", rows.Get("1"))
	}
	if rows.At(5) != nil || rows.At(-1) != nil {
		t.Error("expected out-of-range reads to be nil")
	}
	if !state.Has("a") || state.Has("missing") {
		t.Error("unexpected Has result")
	}
}

func TestView_Aggregates(t *testing.T) {
	state, _ := storetest.New(t, map[string]any{"list": []any{0, 1, 2}})
	list := state.Get("list").(*store.View)

	odd := list.Filter(func(v any, _ int) bool { return v.(int)%2 == 1 })
	if len(odd) != 1 || odd[0] != 1 {
		t.Errorf("expected [1], got %v", odd)
	}

	doubled := list.Map(func(v any, _ int) any { return v.(int) * 2 })
	if len(doubled) != 3 || doubled[2] != 4 {
		t.Errorf("expected [0 2 4], got %v", doubled)
	}

	sum := 0
	for _, v := range list.All() {
		sum += v.(int)
	}
	if sum != 3 {
		t.Errorf("expected 3, got %d", sum)
	}
}

func TestView_FilterInsideMemo(t *testing.T) {
	state, _ := storetest.New(t, map[string]any{"list": []any{0, 1, 2}})
	filtered := reactive.NewMemo(func() []any {
		return state.Get("list").(*store.View).Filter(func(v any, _ int) bool {
			return v.(int)%2 == 1
		})
	})

	got := filtered.Get()
	if len(got) != 1 || got[0] != 1 {
		t.Errorf("expected [1], got %v", got)
	}
}

func TestView_Lookup(t *testing.T) {
	state, _ := storetest.New(t, map[string]any{
		"todos": []any{map[string]any{"title": "Go To Work"}},
	})

	if got := state.Lookup("todos", 0, "title"); got != "Go To Work" {
		t.Errorf("expected 'Go To Work', got %v", got)
	}
	if got := state.Lookup("todos", 3, "title"); got != nil {
		t.Errorf("expected nil, got %v", got)
	}
	if got := state.Lookup("todos", 0, "title", "deeper"); got != nil {
		t.Errorf("expected nil, got %v", got)
	}

	title, ok := store.Get[string](state, "todos", 0, "title")
	if !ok || title != "Go To Work" {
		t.Errorf("expected typed lookup, got %q %v", title, ok)
	}
	if _, ok := store.Get[int](state, "todos", 0, "title"); ok {
		t.Error("expected typed lookup of the wrong type to fail")
	}
}

func TestView_Cycle(t *testing.T) {
	x := map[string]any{"a": 1}
	x["b"] = x

	state, _ := storetest.New(t, x)

	b, ok := state.Get("b").(*store.View)
	if !ok {
		t.Fatalf("expected view, got %T", state.Get("b"))
	}
	if b != state {
		t.Error("expected cyclic reference to yield the root view")
	}
	if state.Get("a") != b.Get("a") {
		t.Error("expected state.a == state.b.a")
	}
}
