package store_test

import (
	"errors"
	"math"
	"testing"

	"github.com/vango-dev/vstore/pkg/store"
	"github.com/vango-dev/vstore/pkg/store/storetest"
)

func double(v any) any { return v.(int) * 2 }

func TestSet_KeyValue(t *testing.T) {
	state, set := storetest.New(t, map[string]any{"key": ""})

	storetest.MustSet(t, set, "key", "value")
	if got := state.Get("key"); got != "value" {
		t.Errorf("expected value, got %v", got)
	}
}

func TestSet_TopLevelMerge(t *testing.T) {
	state, set := storetest.New(t, map[string]any{"starting": 1, "ending": 1})

	storetest.MustSet(t, set, map[string]any{"ending": 2})
	storetest.ExpectValue(t, state, map[string]any{"starting": 1, "ending": 2})

	storetest.MustSet(t, set, map[string]any{})
	storetest.ExpectValue(t, state, map[string]any{"starting": 1, "ending": 2})
}

func TestSet_TopLevelUpdater(t *testing.T) {
	state, set := storetest.New(t, map[string]any{"starting": 1, "ending": 1})

	storetest.MustSet(t, set, func(prev any) any {
		s := prev.(*store.View)
		return map[string]any{"ending": s.Get("starting").(int) + 1}
	})
	storetest.ExpectValue(t, state, map[string]any{"starting": 1, "ending": 2})
}

func TestSet_NestedMerge(t *testing.T) {
	state, set := storetest.New(t, map[string]any{
		"data": map[string]any{"starting": 1, "ending": 1},
	})

	storetest.MustSet(t, set, "data", map[string]any{"ending": 2})
	storetest.ExpectValue(t, state.Get("data"), map[string]any{"starting": 1, "ending": 2})

	storetest.MustSet(t, set, "data", func(prev any) any {
		d := prev.(*store.View)
		return map[string]any{"ending": d.Get("starting").(int) + 5}
	})
	storetest.ExpectValue(t, state.Get("data"), map[string]any{"starting": 1, "ending": 6})
}

func TestSet_DeepMerge(t *testing.T) {
	state, set := storetest.New(t, map[string]any{
		"user": map[string]any{
			"name":    "John",
			"address": map[string]any{"city": "Austin", "zip": "78701"},
		},
	})

	storetest.MustSet(t, set, "user", map[string]any{
		"address": map[string]any{"city": "Boston"},
	})
	storetest.ExpectValue(t, state, map[string]any{
		"user": map[string]any{
			"name":    "John",
			"address": map[string]any{"city": "Boston", "zip": "78701"},
		},
	})
}

func TestSet_MergeRemovesMarkedKeys(t *testing.T) {
	state, set := storetest.New(t, map[string]any{"a": 1, "b": 2})

	storetest.MustSet(t, set, map[string]any{"a": store.Remove, "c": 3})
	storetest.ExpectValue(t, state, map[string]any{"b": 2, "c": 3})
}

func TestSet_Replace(t *testing.T) {
	state, set := storetest.New(t, map[string]any{
		"data": map[string]any{"x": 1, "y": 2},
		"keep": true,
	})

	storetest.MustSet(t, set, "data", store.Replace(map[string]any{"x": 3}))
	storetest.ExpectValue(t, state.Get("data"), map[string]any{"x": 3})

	storetest.MustSet(t, set, store.Replace(map[string]any{"z": 1}))
	storetest.ExpectValue(t, state, map[string]any{"z": 1})
}

func TestSet_ArrayOfObjects(t *testing.T) {
	state, set := storetest.New(t, map[string]any{
		"todos": []any{
			map[string]any{"id": 1, "title": "Go To Work", "done": true},
			map[string]any{"id": 2, "title": "Eat Lunch", "done": false},
		},
	})

	storetest.MustSet(t, set, "todos", 1, map[string]any{"done": true})

	todos := state.Get("todos").(*store.View)
	storetest.MustSet(t, set, "todos", append(todos.Slice(),
		map[string]any{"id": 3, "title": "Go Home", "done": false}))

	todos = state.Get("todos").(*store.View)
	if !todos.IsArray() {
		t.Fatal("expected todos to stay a list")
	}
	if got := todos.At(1).(*store.View).Get("done"); got != true {
		t.Errorf("expected todos[1].done, got %v", got)
	}
	if got := todos.At(2).(*store.View).Get("title"); got != "Go Home" {
		t.Errorf("expected 'Go Home', got %v", got)
	}
}

func TestSet_ArraySelectors(t *testing.T) {
	tests := []struct {
		name string
		path []any
		want []any
	}{
		{"indices", []any{"rows", []int{1, 3}, double}, []any{1, 4, 3, 8, 5}},
		{"filter", []any{"rows", func(_ any, i int) bool { return i%2 == 1 }, double}, []any{1, 4, 3, 8, 5}},
		{"range", []any{"rows", store.Span(1, 4, 2), double}, []any{1, 4, 3, 8, 5}},
		{"range defaults", []any{"rows", store.Range{}, double}, []any{2, 4, 6, 8, 10}},
		{"range from", []any{"rows", store.Range{From: 3}, double}, []any{1, 2, 3, 8, 10}},
		{"filter on value", []any{"rows", func(v any, _ int) bool { return v.(int) > 3 }, 0}, []any{1, 2, 3, 0, 0}},
		{"range past the end", []any{"rows", store.Span(0, math.MaxInt, 1), double}, []any{2, 4, 6, 8, 10}},
		{"range with a huge step", []any{"rows", store.Range{By: math.MaxInt}, double}, []any{2, 2, 3, 4, 5}},
		{"range from before the start", []any{"rows", store.Range{From: -1, By: 2}, double}, []any{1, 4, 3, 8, 5}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			state, set := storetest.New(t, map[string]any{"rows": []any{1, 2, 3, 4, 5}})
			storetest.MustSet(t, set, tt.path...)
			storetest.ExpectValue(t, state.Get("rows"), tt.want)
		})
	}
}

func TestSet_KeySet(t *testing.T) {
	state, set := storetest.New(t, map[string]any{"a": 1, "b": 2, "c": 3})

	storetest.MustSet(t, set, []string{"a", "b"}, 0)
	storetest.ExpectValue(t, state, map[string]any{"a": 0, "b": 0, "c": 3})
}

func TestSet_SelectorThenKey(t *testing.T) {
	state, set := storetest.New(t, map[string]any{
		"todos": []any{
			map[string]any{"done": false},
			map[string]any{"done": false},
			map[string]any{"done": false},
		},
	})

	storetest.MustSet(t, set, "todos", []int{0, 2}, "done", true)
	storetest.ExpectValue(t, state.Get("todos"), []any{
		map[string]any{"done": true},
		map[string]any{"done": false},
		map[string]any{"done": true},
	})
}

func TestSet_IndicesOutOfRangeAreSkipped(t *testing.T) {
	state, set := storetest.New(t, map[string]any{"rows": []any{1, 2, 3}})

	storetest.MustSet(t, set, "rows", []int{0, 7, -1, 2}, double)
	storetest.ExpectValue(t, state.Get("rows"), []any{2, 2, 6})

	storetest.MustSet(t, set, "rows", store.Span(-2, 10, 1), double)
	storetest.ExpectValue(t, state.Get("rows"), []any{4, 4, 12})
}

func TestSet_SelectorMismatchKeepsAppliedElements(t *testing.T) {
	state, set := storetest.New(t, map[string]any{
		"rows": []any{
			map[string]any{"a": 1},
			5,
			map[string]any{"a": 1},
		},
	})

	storetest.ExpectErr(t, set, store.ErrPathTypeMismatch, "rows", store.Range{}, "a", 9)
	storetest.ExpectValue(t, state.Get("rows"), []any{
		map[string]any{"a": 9},
		5,
		map[string]any{"a": 1},
	})
}

func TestSet_IndexGrowsList(t *testing.T) {
	state, set := storetest.New(t, map[string]any{"rows": []any{1, 2, 3}})

	storetest.MustSet(t, set, "rows", 3, 4)
	storetest.ExpectValue(t, state.Get("rows"), []any{1, 2, 3, 4})

	storetest.MustSet(t, set, "rows", 6, "x")
	storetest.ExpectValue(t, state.Get("rows"), []any{1, 2, 3, 4, nil, nil, "x"})
}

func TestSet_RemoveFromList(t *testing.T) {
	state, set := storetest.New(t, map[string]any{"rows": []any{1, 2, 3}})

	storetest.MustSet(t, set, "rows", 2, store.Remove)
	storetest.ExpectValue(t, state.Get("rows"), []any{1, 2})

	storetest.MustSet(t, set, "rows", 0, store.Remove)
	storetest.ExpectValue(t, state.Get("rows"), []any{nil, 2})
}

func TestSet_RootList(t *testing.T) {
	state, set := storetest.New(t, []any{1, 2, 3})

	storetest.MustSet(t, set, 1, 20)
	storetest.ExpectValue(t, state, []any{1, 20, 3})

	storetest.MustSet(t, set, []any{1, 5})
	storetest.ExpectValue(t, state, []any{1, 5})

	storetest.MustSet(t, set, func(prev any) any {
		return append(prev.(*store.View).Slice(), 6)
	})
	storetest.ExpectValue(t, state, []any{1, 5, 6})
}

func TestSet_UpdaterSameValueIsNoop(t *testing.T) {
	rec := storetest.NewRecorder()
	_, set := storetest.New(t, map[string]any{"a": 1, "obj": map[string]any{}}, store.WithObserver(rec))

	storetest.MustSet(t, set, "a", func(v any) any { return v })
	storetest.MustSet(t, set, "obj", func(v any) any { return v })
	storetest.MustSet(t, set, "a", 1)

	if n := rec.Writes[store.WriteSet] + rec.Writes[store.WriteAdd]; n != 0 {
		t.Errorf("expected no writes, got %d", n)
	}
}

func TestSet_UpdaterPath(t *testing.T) {
	_, set := storetest.New(t, map[string]any{"rows": []any{1, 2}})

	var traversed []any
	storetest.MustSet(t, set, "rows", 1, store.UpdatePath(func(prev any, path []any) any {
		traversed = path
		return prev
	}))
	if len(traversed) != 2 || traversed[0] != "rows" || traversed[1] != 1 {
		t.Errorf("expected [rows 1], got %v", traversed)
	}
}

func TestSet_ValueWrapsFunctions(t *testing.T) {
	state, set := storetest.New(t, map[string]any{})

	fn := func(v any) any { return v }
	storetest.MustSet(t, set, "fn", store.Value(fn))
	if _, ok := state.Get("fn").(func(any) any); !ok {
		t.Errorf("expected the function to be stored, got %T", state.Get("fn"))
	}
}

func TestSet_MergeStoresFunctions(t *testing.T) {
	state, set := storetest.New(t, map[string]any{"fn": nil, "a": 1})

	fn := func(v any) any { return "ran" }
	storetest.MustSet(t, set, map[string]any{"fn": fn, "a": store.Remove})

	if _, ok := state.Get("fn").(func(any) any); !ok {
		t.Errorf("expected the function to be stored, got %T", state.Get("fn"))
	}
	if state.Has("a") {
		t.Error("expected a to be removed")
	}
}

func TestSet_PathTypeMismatch(t *testing.T) {
	tests := []struct {
		name string
		path []any
	}{
		{"through a leaf", []any{"a", "b", 2}},
		{"through a missing key", []any{"missing", "x", 1}},
		{"unsupported segment", []any{1.5, 2}},
		{"empty path", nil},
		{"key on a list", []any{"rows", "x", 1}},
		{"index on an object", []any{"obj", 0, 1}},
		{"negative index", []any{"rows", -1, 1}},
		{"negative key on a list", []any{"rows", "-1", 1}},
		{"range on an object", []any{"obj", store.Range{}, 1}},
		{"remove the root", []any{store.Remove}},
		{"list into object root", []any{[]any{1}}},
		{"leaf root", []any{42}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rec := storetest.NewRecorder()
			_, set := storetest.New(t, map[string]any{
				"a":    1,
				"obj":  map[string]any{},
				"rows": []any{1},
			}, store.WithObserver(rec))

			storetest.ExpectErr(t, set, store.ErrPathTypeMismatch, tt.path...)
			if len(rec.Errors) != 1 {
				t.Errorf("expected one failure event, got %d", len(rec.Errors))
			}
		})
	}
}

func TestNew_NotStorable(t *testing.T) {
	for _, v := range []any{
		nil,
		42,
		"text",
		map[string]int{"a": 1},
		store.Freeze(map[string]any{}),
		struct{}{},
	} {
		if _, _, err := store.New(v); !errors.Is(err, store.ErrNotStorable) {
			t.Errorf("New(%#v): expected ErrNotStorable, got %v", v, err)
		}
	}
}

func TestNew_FromView(t *testing.T) {
	state, _ := storetest.New(t, map[string]any{"user": map[string]any{"name": "John"}})
	user := state.Get("user").(*store.View)

	same, setUser, err := store.New(user)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if same != user {
		t.Error("expected the same view back")
	}
	storetest.MustSet(t, setUser, "name", "Jake")
	if got := state.Lookup("user", "name"); got != "Jake" {
		t.Errorf("expected Jake, got %v", got)
	}
}

func TestSet_NestedStore(t *testing.T) {
	inner, setInner := storetest.New(t, map[string]any{"x": 1})
	outer, setOuter := storetest.New(t, map[string]any{"child": inner})

	if outer.Get("child") != inner {
		t.Fatal("expected the nested store's view to be returned as is")
	}

	storetest.MustSet(t, setOuter, "child", "x", 2)
	if got := inner.Get("x"); got != 2 {
		t.Errorf("expected 2, got %v", got)
	}

	storetest.MustSet(t, setOuter, "child", map[string]any{"y": 3})
	storetest.ExpectValue(t, inner, map[string]any{"x": 2, "y": 3})

	tr := storetest.Track(t, func() {
		outer.Get("child").(*store.View).Get("x")
	})
	storetest.MustSet(t, setInner, "x", 4)
	storetest.ExpectRuns(t, tr, 2)
}

func TestSet_Observer(t *testing.T) {
	rec := storetest.NewRecorder()
	_, set := storetest.New(t, map[string]any{"a": 1}, store.WithObserver(rec), store.WithName("obs"))

	storetest.MustSet(t, set, "a", 2)
	storetest.MustSet(t, set, "b", 1)
	storetest.MustSet(t, set, "b", store.Remove)

	if rec.Writes[store.WriteSet] != 1 || rec.Writes[store.WriteAdd] != 1 || rec.Writes[store.WriteRemove] != 1 {
		t.Errorf("unexpected writes %v", rec.Writes)
	}
	if rec.Nodes != 1 {
		t.Errorf("expected 1 node, got %d", rec.Nodes)
	}
	if len(rec.Notifies) != 0 {
		t.Errorf("expected no notifications without readers, got %v", rec.Notifies)
	}
}
