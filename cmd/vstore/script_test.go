package main

import (
	stderrors "errors"
	"reflect"
	"testing"

	"github.com/vango-dev/vstore/internal/errors"
	"github.com/vango-dev/vstore/pkg/store"
)

func TestParseScript(t *testing.T) {
	src := `[
  // mark the first todo done
  {"path": ["todos", 0, "done"], "value": true},
  {"path": ["todos", [1, 2], "title"], "op": "remove"},
  {"path": ["todos", {"from": 0, "to": 4, "by": 2}, "n"], "op": "increment"},
  {"path": ["user", ["first", "last"]], "value": null},
  {"batch": [{"path": ["count"], "value": 2.5}]},
]`

	script, err := parseScript("ops.jsonc", []byte(src))
	if err != nil {
		t.Fatalf("parseScript: %v", err)
	}
	steps := script.Steps
	if len(steps) != 5 {
		t.Fatalf("expected 5 steps, got %d", len(steps))
	}

	if want := []any{"todos", 0, "done"}; !reflect.DeepEqual(steps[0].Path, want) {
		t.Errorf("steps[0].Path = %#v, want %#v", steps[0].Path, want)
	}
	if steps[0].Value != true || !steps[0].HasValue {
		t.Errorf("steps[0] value = %v (%v)", steps[0].Value, steps[0].HasValue)
	}

	if want := []int{1, 2}; !reflect.DeepEqual(steps[1].Path[1], want) {
		t.Errorf("steps[1].Path[1] = %#v, want %#v", steps[1].Path[1], want)
	}
	if steps[1].Op != opRemove || steps[1].HasValue {
		t.Errorf("steps[1] = %+v", steps[1])
	}

	rng, ok := steps[2].Path[1].(store.Range)
	if !ok {
		t.Fatalf("steps[2].Path[1] is %T, want store.Range", steps[2].Path[1])
	}
	if rng.From != 0 || rng.To == nil || *rng.To != 4 || rng.By != 2 {
		t.Errorf("range = %+v", rng)
	}

	if want := []string{"first", "last"}; !reflect.DeepEqual(steps[3].Path[1], want) {
		t.Errorf("steps[3].Path[1] = %#v, want %#v", steps[3].Path[1], want)
	}
	if steps[3].Value != nil || !steps[3].HasValue {
		t.Errorf("null value should be kept as a write of nil")
	}

	if !steps[4].IsBatch() || len(steps[4].Batch) != 1 {
		t.Fatalf("steps[4] should be a batch of one step")
	}
	if steps[4].Batch[0].Value != 2.5 {
		t.Errorf("batch value = %v, want 2.5", steps[4].Batch[0].Value)
	}
}

func TestParseScriptIntegers(t *testing.T) {
	script, err := parseScript("", []byte(`[{"path": ["user"], "value": {"age": 30, "score": 1.5}}]`))
	if err != nil {
		t.Fatal(err)
	}
	want := map[string]any{"age": 30, "score": 1.5}
	if got := script.Steps[0].Value; !reflect.DeepEqual(got, want) {
		t.Errorf("value = %#v, want %#v", got, want)
	}
}

func TestParseScriptErrors(t *testing.T) {
	tests := []struct {
		name string
		src  string
		code string
	}{
		{"not an array", `{"path": ["a"]}`, "X003"},
		{"syntax", `[{"path": ]`, "X003"},
		{"no value or op", `[{"path": ["a"]}]`, "X003"},
		{"unknown op", `[{"path": ["a"], "op": "explode"}]`, "X004"},
		{"unknown field", `[{"path": ["a"], "value": 1, "extra": 2}]`, "X003"},
		{"fractional index", `[{"path": [1.5], "value": 1}]`, "X003"},
		{"mixed set", `[{"path": [["a", 1]], "value": 1}]`, "X003"},
		{"where with range", `[{"path": [{"from": 1, "where": {"a": 1}}], "value": 1}]`, "X003"},
		{"batch with path", `[{"batch": [], "path": ["a"]}]`, "X003"},
		{"append without value", `[{"path": ["a"], "op": "append"}]`, "X003"},
		{"remove with value", `[{"path": ["a"], "op": "remove", "value": 1}]`, "X003"},
		{"bad nested step", `[{"batch": [{"path": ["a"], "op": "explode"}]}]`, "X004"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := parseScript("ops.jsonc", []byte(tt.src))
			var ce *errors.CodedError
			if !stderrors.As(err, &ce) {
				t.Fatalf("expected a coded error, got %v", err)
			}
			if ce.Code != tt.code {
				t.Errorf("Code = %q, want %q (%v)", ce.Code, tt.code, err)
			}
		})
	}
}

func TestParseScriptLocation(t *testing.T) {
	src := `[
  // first
  {"path": ["a"], "value": 1},
  {"path": ["a"], "op": "explode"}
]`
	_, err := parseScript("ops.jsonc", []byte(src))
	var ce *errors.CodedError
	if !stderrors.As(err, &ce) {
		t.Fatalf("expected a coded error, got %v", err)
	}
	if ce.Location == nil || ce.Location.Line != 4 || ce.Location.Column != 3 {
		t.Errorf("Location = %v, want ops.jsonc:4:3", ce.Location)
	}
}

func TestWhereFilter(t *testing.T) {
	state, _, err := store.New(map[string]any{
		"todos": []any{
			map[string]any{"done": false, "n": float64(1)},
			map[string]any{"done": true, "n": 2},
			"note",
		},
	})
	if err != nil {
		t.Fatal(err)
	}
	todos := state.Get("todos").(*store.View)

	elem, err := pathElem([]byte(`{"where": {"done": false, "n": 1}}`))
	if err != nil {
		t.Fatal(err)
	}
	keep, ok := elem.(store.Filter)
	if !ok {
		t.Fatalf("pathElem returned %T, want store.Filter", elem)
	}

	want := []bool{true, false, false}
	for i := range want {
		if got := keep(todos.At(i), i); got != want[i] {
			t.Errorf("keep(todos[%d]) = %v, want %v", i, got, want[i])
		}
	}
}

func TestParseWatchPath(t *testing.T) {
	tests := []struct {
		in      string
		want    []any
		wantErr bool
	}{
		{"todos.0.title", []any{"todos", 0, "title"}, false},
		{"count", []any{"count"}, false},
		{"", nil, false},
		{"a..b", nil, true},
		{"a.", nil, true},
	}

	for _, tt := range tests {
		got, err := parseWatchPath(tt.in)
		if (err != nil) != tt.wantErr {
			t.Errorf("parseWatchPath(%q) error = %v, wantErr %v", tt.in, err, tt.wantErr)
			continue
		}
		if !tt.wantErr && !reflect.DeepEqual(got, tt.want) {
			t.Errorf("parseWatchPath(%q) = %#v, want %#v", tt.in, got, tt.want)
		}
	}
}
