package main

import (
	"context"
	stderrors "errors"
	"fmt"
	"io"
	"log/slog"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/spf13/cobra"
	"go.opentelemetry.io/otel/trace"

	"github.com/vango-dev/vstore/internal/config"
	"github.com/vango-dev/vstore/internal/errors"
	"github.com/vango-dev/vstore/pkg/metrics"
	"github.com/vango-dev/vstore/pkg/reactive"
	"github.com/vango-dev/vstore/pkg/store"
)

type runOptions struct {
	doc     string
	script  string
	watches []string
	output  string
	metrics bool
	trace   bool
}

func runCmd(flags *globalFlags) *cobra.Command {
	opts := &runOptions{}

	cmd := &cobra.Command{
		Use:   "run",
		Short: "Apply a script of path expressions to a document",
		Long: `Load a document into a store, apply every step of a script and print
the final document.

Each --watch registers a computation that reads the dotted path; the report
lists how many times each one ran. A watch on a container re-runs when the
container is replaced or its keys change.

Examples:
  vstore run --doc state.json --script ops.jsonc
  vstore run --doc state.yaml --script ops.jsonc --watch todos.0.done --watch count
  vstore run --doc state.json --script ops.jsonc --metrics --output yaml`,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runRun(cmd.Context(), cmd.OutOrStdout(), cmd.ErrOrStderr(), flags, opts)
		},
	}

	cmd.Flags().StringVarP(&opts.doc, "doc", "d", "", "Document file (JSON or YAML)")
	cmd.Flags().StringVarP(&opts.script, "script", "s", "", "Script file (JSONC)")
	cmd.Flags().StringArrayVarP(&opts.watches, "watch", "w", nil, "Dotted path to watch (repeatable)")
	cmd.Flags().StringVarP(&opts.output, "output", "o", formatJSON, "Output format: json or yaml")
	cmd.Flags().BoolVar(&opts.metrics, "metrics", false, "Print store metrics to stderr")
	cmd.Flags().BoolVar(&opts.trace, "trace", false, "Print a span per step to stderr")
	_ = cmd.MarkFlagRequired("doc")
	_ = cmd.MarkFlagRequired("script")

	return cmd
}

func runRun(ctx context.Context, stdout, stderr io.Writer, flags *globalFlags, opts *runOptions) error {
	if ctx == nil {
		ctx = context.Background()
	}

	cfg, err := flags.loadConfig()
	if err != nil {
		return err
	}
	if opts.metrics {
		cfg.Metrics.Enabled = true
	}
	if opts.trace {
		cfg.Trace.Enabled = true
	}

	doc, err := readDocument(opts.doc)
	if err != nil {
		return err
	}
	script, err := readScript(opts.script)
	if err != nil {
		return err
	}

	if cfg.Trace.Enabled {
		tp, err := initTracing(stderr)
		if err != nil {
			return err
		}
		defer shutdownTracing(context.Background(), tp)

		var span trace.Span
		ctx, span = tp.Tracer("github.com/vango-dev/vstore/cmd/vstore").Start(ctx, "vstore.run")
		defer span.End()
	}

	r, err := newRunner(cfg, cfg.Logger(stderr), doc)
	if err != nil {
		return err
	}
	defer r.close()

	for _, w := range opts.watches {
		if err := r.watch(w); err != nil {
			return err
		}
	}

	if err := r.run(ctx, script); err != nil {
		return err
	}

	if err := writeValue(stdout, r.report(), opts.output); err != nil {
		return err
	}
	success(stderr, "Applied %d steps to %s", len(script.Steps), opts.doc)

	if r.registry != nil {
		info(stderr, "Metrics:")
		return writeMetrics(stderr, r.registry)
	}
	return nil
}

// runner applies script steps to one store and keeps the watches
// registered on it.
type runner struct {
	logger   *slog.Logger
	state    *store.View
	set      store.Setter
	owner    *reactive.Owner
	watches  []*watch
	registry *prometheus.Registry
	applied  int
}

// watch is a computation reading one path of the document.
type watch struct {
	path   string
	value  any
	effect *reactive.Effect
}

// Report is the result of a run.
type Report struct {
	Steps    int           `json:"steps" yaml:"steps"`
	Watches  []WatchReport `json:"watches" yaml:"watches"`
	Document any           `json:"document" yaml:"document"`
}

// WatchReport describes one watch after a run. Runs includes the initial
// read.
type WatchReport struct {
	Path  string `json:"path" yaml:"path"`
	Runs  int    `json:"runs" yaml:"runs"`
	Value any    `json:"value" yaml:"value"`
}

func newRunner(cfg *config.Config, logger *slog.Logger, doc any) (*runner, error) {
	r := &runner{logger: logger}

	opts := []store.Option{
		store.WithStrict(cfg.Strict),
		store.WithLogger(logger),
		store.WithName(cfg.Name),
	}
	if cfg.Metrics.Enabled {
		r.registry = prometheus.NewRegistry()
		opts = append(opts, store.WithObserver(metrics.New(
			metrics.WithNamespace(cfg.Metrics.Namespace),
			metrics.WithRegistry(r.registry),
		)))
	}

	state, set, err := store.New(doc, opts...)
	if err != nil {
		return nil, errors.FromError(err, "X002")
	}
	r.state, r.set = state, set
	r.owner = reactive.NewOwner(nil)

	reactive.SetLogger(logger)
	return r, nil
}

func (r *runner) close() {
	r.owner.Dispose()
	reactive.SetLogger(nil)
}

// watch registers a computation that reads path and records its value.
func (r *runner) watch(path string) error {
	p, err := parseWatchPath(path)
	if err != nil {
		return err
	}

	w := &watch{path: path}
	reactive.WithOwner(r.owner, func() {
		w.effect = reactive.CreateComputed(func() {
			w.value = store.Unwrap(r.state.Lookup(p...))
		})
	})
	r.watches = append(r.watches, w)
	r.logger.Debug("watch registered", "path", path)
	return nil
}

// run applies every step of script in order, each as its own transaction.
// It stops at the first failing step; earlier steps stay applied.
func (r *runner) run(ctx context.Context, script *Script) error {
	for i, step := range script.Steps {
		var err error
		reactive.TxNamedContext(ctx, fmt.Sprintf("step %d", i), func() {
			err = r.apply(step)
		})
		if err != nil {
			r.logger.Debug("step failed", "step", i, "error", err)
			return script.errorAt(step, fmt.Errorf("step %d: %w", i, err))
		}
		r.applied++
	}
	return nil
}

// apply runs one step. The steps of a batch share the enclosing
// transaction, so watches see them settle together.
func (r *runner) apply(step Step) error {
	if step.IsBatch() {
		for i, inner := range step.Batch {
			if err := r.apply(inner); err != nil {
				return fmt.Errorf("batch[%d]: %w", i, err)
			}
		}
		return nil
	}

	term, check := terminal(step)
	args := make([]any, 0, len(step.Path)+1)
	args = append(args, step.Path...)
	args = append(args, term)
	if err := r.set(args...); err != nil {
		return err
	}
	return check()
}

func (r *runner) report() Report {
	rep := Report{
		Steps:    r.applied,
		Watches:  make([]WatchReport, 0, len(r.watches)),
		Document: store.Unwrap(r.state),
	}
	for _, w := range r.watches {
		rep.Watches = append(rep.Watches, WatchReport{
			Path:  w.path,
			Runs:  w.effect.Runs(),
			Value: w.value,
		})
	}
	return rep
}

// terminal builds the setter terminal for a step. The returned check
// reports errors raised inside updaters once the setter call returns.
func terminal(step Step) (any, func() error) {
	var failed error
	check := func() error { return failed }
	fail := func(prev any, err error) any {
		if failed == nil {
			failed = err
		}
		return prev
	}

	switch step.Op {
	case opRemove:
		return store.Remove, check
	case opReplace:
		return store.Replace(step.Value), check
	case opIncrement, opDouble:
		op := step.Op
		return store.Update(func(prev any) any {
			next, err := arith(op, prev)
			if err != nil {
				return fail(prev, err)
			}
			return next
		}), check
	case opAppend:
		value := step.Value
		return store.Update(func(prev any) any {
			switch x := prev.(type) {
			case nil:
				return []any{value}
			case *store.View:
				if x.IsArray() {
					return append(x.Slice(), value)
				}
			}
			return fail(prev, fmt.Errorf("append: %s is not a list", describe(store.Unwrap(prev))))
		}), check
	}
	return store.Value(step.Value), check
}

var errNotNumber = stderrors.New("not a number")

func arith(op string, prev any) (any, error) {
	switch n := prev.(type) {
	case int:
		if op == opIncrement {
			return n + 1, nil
		}
		return n * 2, nil
	case float64:
		if op == opIncrement {
			return n + 1, nil
		}
		return n * 2, nil
	}
	return nil, fmt.Errorf("%s: %s is %w", op, describe(store.Unwrap(prev)), errNotNumber)
}
