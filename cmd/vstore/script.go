package main

import (
	"bytes"
	"encoding/json"
	stderrors "errors"
	"fmt"
	"os"
	"strconv"
	"strings"

	"github.com/tidwall/jsonc"

	"github.com/vango-dev/vstore/internal/errors"
	"github.com/vango-dev/vstore/pkg/store"
)

// Script operations besides plain value writes.
const (
	opRemove    = "remove"
	opReplace   = "replace"
	opIncrement = "increment"
	opDouble    = "double"
	opAppend    = "append"
)

var errUnknownOp = stderrors.New("unknown operation")

// Step is one entry of a script: a path expression, or a batch of steps
// whose notifications settle together.
type Step struct {
	Path     []any
	Value    any
	HasValue bool
	Op       string
	Batch    []Step

	// Offset is the byte offset of the top-level step in the script file.
	Offset int64
}

// IsBatch reports whether the step groups other steps.
func (s Step) IsBatch() bool {
	return s.Batch != nil
}

type rawStep struct {
	Path  []json.RawMessage `json:"path"`
	Value json.RawMessage   `json:"value"`
	Op    string            `json:"op"`
	Batch []json.RawMessage `json:"batch"`
}

type rawRange struct {
	From  *int           `json:"from"`
	To    *int           `json:"to"`
	By    *int           `json:"by"`
	Where map[string]any `json:"where"`
}

// Script is a parsed script file.
type Script struct {
	Name  string
	Steps []Step

	data []byte
}

// errorAt converts an error raised while applying step into a coded error
// pointing at the step in the script file.
func (s *Script) errorAt(step Step, err error) error {
	ce := errors.FromError(err, "X003")
	if s.Name != "" && ce.Location == nil {
		ce.WithOffset(s.Name, s.data, step.Offset)
	}
	return ce
}

// readScript loads and parses a script file.
func readScript(path string) (*Script, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, errors.New("X001").WithDetail("Cannot read script " + path).Wrap(err)
	}
	return parseScript(path, data)
}

// parseScript parses a JSONC array of steps. Errors carry the location of
// the offending top-level step.
func parseScript(name string, data []byte) (*Script, error) {
	src := jsonc.ToJSON(data)
	dec := json.NewDecoder(bytes.NewReader(src))

	tok, err := dec.Token()
	if err != nil {
		return nil, scriptError(name, data, dec.InputOffset(), "X003", err)
	}
	if d, ok := tok.(json.Delim); !ok || d != '[' {
		return nil, scriptError(name, data, 0, "X003", stderrors.New("script must be an array of steps"))
	}

	steps := []Step{}
	for dec.More() {
		off := skipSpace(src, dec.InputOffset())
		var raw json.RawMessage
		if err := dec.Decode(&raw); err != nil {
			return nil, scriptError(name, data, off, "X003", err)
		}
		step, err := parseStep(raw, off)
		if err != nil {
			code := "X003"
			if stderrors.Is(err, errUnknownOp) {
				code = "X004"
			}
			return nil, scriptError(name, data, off, code, fmt.Errorf("step %d: %w", len(steps), err))
		}
		steps = append(steps, step)
	}
	return &Script{Name: name, Steps: steps, data: data}, nil
}

func scriptError(name string, data []byte, off int64, code string, err error) *errors.CodedError {
	ce := errors.New(code).Wrap(err)
	var syntax *json.SyntaxError
	if stderrors.As(err, &syntax) {
		off = syntax.Offset
	}
	if name != "" {
		ce.WithOffset(name, data, off)
	}
	if code == "X003" {
		ce.WithExample(`[{"path": ["todos", 0, "done"], "value": true}]`)
	}
	return ce
}

func skipSpace(src []byte, off int64) int64 {
	for off < int64(len(src)) {
		switch src[off] {
		case ' ', '\t', '\r', '\n', ',':
			off++
		default:
			return off
		}
	}
	return off
}

func parseStep(raw []byte, off int64) (Step, error) {
	var rs rawStep
	dec := json.NewDecoder(bytes.NewReader(raw))
	dec.DisallowUnknownFields()
	if err := dec.Decode(&rs); err != nil {
		return Step{}, err
	}

	step := Step{Op: rs.Op, Offset: off}

	if rs.Batch != nil {
		if rs.Path != nil || rs.Value != nil || rs.Op != "" {
			return Step{}, stderrors.New("a batch step takes no path, value or op")
		}
		step.Batch = make([]Step, 0, len(rs.Batch))
		for i, b := range rs.Batch {
			inner, err := parseStep(b, off)
			if err != nil {
				return Step{}, fmt.Errorf("batch[%d]: %w", i, err)
			}
			step.Batch = append(step.Batch, inner)
		}
		return step, nil
	}

	for i, p := range rs.Path {
		elem, err := pathElem(p)
		if err != nil {
			return Step{}, fmt.Errorf("path[%d]: %w", i, err)
		}
		step.Path = append(step.Path, elem)
	}

	if rs.Value != nil {
		if err := decodeNumbers(rs.Value, &step.Value); err != nil {
			return Step{}, fmt.Errorf("value: %w", err)
		}
		step.HasValue = true
	}

	switch rs.Op {
	case "":
		if !step.HasValue {
			return Step{}, stderrors.New(`a step needs "value", "op" or "batch"`)
		}
	case opRemove, opIncrement, opDouble:
		if step.HasValue {
			return Step{}, fmt.Errorf("%s takes no value", rs.Op)
		}
	case opReplace, opAppend:
		if !step.HasValue {
			return Step{}, fmt.Errorf("%s needs a value", rs.Op)
		}
	default:
		return Step{}, fmt.Errorf("%w %q", errUnknownOp, rs.Op)
	}
	return step, nil
}

// decodeNumbers unmarshals JSON keeping integral numbers as int.
func decodeNumbers(raw []byte, v *any) error {
	dec := json.NewDecoder(bytes.NewReader(raw))
	dec.UseNumber()
	if err := dec.Decode(v); err != nil {
		return err
	}
	*v = numbers(*v)
	return nil
}

func numbers(v any) any {
	switch x := v.(type) {
	case json.Number:
		if i, err := x.Int64(); err == nil {
			return int(i)
		}
		f, _ := x.Float64()
		return f
	case map[string]any:
		for k, e := range x {
			x[k] = numbers(e)
		}
	case []any:
		for i, e := range x {
			x[i] = numbers(e)
		}
	}
	return v
}

// pathElem converts one script path element into a setter argument:
// strings are keys, integers indices, arrays key or index sets and objects
// ranges or filters.
func pathElem(raw json.RawMessage) (any, error) {
	var v any
	if err := decodeNumbers(raw, &v); err != nil {
		return nil, err
	}

	switch x := v.(type) {
	case string:
		return x, nil
	case int:
		return x, nil
	case float64:
		return nil, fmt.Errorf("index %v is not an integer", x)
	case []any:
		return setOf(x)
	case map[string]any:
		return selectorOf(raw)
	}
	return nil, fmt.Errorf("unsupported path element %s", raw)
}

func setOf(elems []any) (any, error) {
	if len(elems) == 0 {
		return []int{}, nil
	}
	if _, ok := elems[0].(string); ok {
		keys := make([]string, len(elems))
		for i, e := range elems {
			s, ok := e.(string)
			if !ok {
				return nil, fmt.Errorf("key set mixes %v with strings", e)
			}
			keys[i] = s
		}
		return keys, nil
	}
	indices := make([]int, len(elems))
	for i, e := range elems {
		n, ok := e.(int)
		if !ok {
			return nil, fmt.Errorf("index set element %v is not an integer", e)
		}
		indices[i] = n
	}
	return indices, nil
}

func selectorOf(raw json.RawMessage) (any, error) {
	var r rawRange
	dec := json.NewDecoder(bytes.NewReader(raw))
	dec.DisallowUnknownFields()
	dec.UseNumber()
	if err := dec.Decode(&r); err != nil {
		return nil, err
	}

	if r.Where != nil {
		if r.From != nil || r.To != nil || r.By != nil {
			return nil, stderrors.New("where cannot be combined with from, to or by")
		}
		return whereFilter(numbers(r.Where).(map[string]any)), nil
	}

	rng := store.Range{To: r.To}
	if r.From != nil {
		rng.From = *r.From
	}
	if r.By != nil {
		rng.By = *r.By
	}
	return rng, nil
}

// whereFilter selects the object elements whose properties equal every
// entry of match.
func whereFilter(match map[string]any) store.Filter {
	return func(value any, _ int) bool {
		view, ok := value.(*store.View)
		if !ok || view.IsArray() {
			return false
		}
		for k, want := range match {
			if !sameLeaf(store.Unwrap(view.Get(k)), want) {
				return false
			}
		}
		return true
	}
}

// sameLeaf compares decoded values, treating numbers of different Go types
// as equal when they hold the same value.
func sameLeaf(a, b any) bool {
	if fa, ok := toFloat(a); ok {
		fb, ok := toFloat(b)
		return ok && fa == fb
	}
	ja, errA := json.Marshal(a)
	jb, errB := json.Marshal(b)
	return errA == nil && errB == nil && bytes.Equal(ja, jb)
}

func toFloat(v any) (float64, bool) {
	switch n := v.(type) {
	case int:
		return float64(n), true
	case int64:
		return float64(n), true
	case uint64:
		return float64(n), true
	case float64:
		return n, true
	}
	return 0, false
}

// parseWatchPath splits a dotted path such as todos.0.title into string
// keys and int indices.
func parseWatchPath(s string) ([]any, error) {
	if s == "" {
		return nil, nil
	}
	parts := strings.Split(s, ".")
	path := make([]any, len(parts))
	for i, p := range parts {
		if p == "" {
			return nil, errors.New("X005").WithDetail(fmt.Sprintf("Empty segment in watch path %q", s))
		}
		if n, err := strconv.Atoi(p); err == nil {
			path[i] = n
			continue
		}
		path[i] = p
	}
	return path, nil
}
