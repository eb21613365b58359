package main

import (
	"io"

	"github.com/spf13/cobra"

	"github.com/vango-dev/vstore/internal/errors"
	"github.com/vango-dev/vstore/pkg/store"
)

type inspectOptions struct {
	doc    string
	output string
	keys   bool
}

func inspectCmd(flags *globalFlags) *cobra.Command {
	opts := &inspectOptions{}

	cmd := &cobra.Command{
		Use:   "inspect [path]",
		Short: "Print the value at a path of a document",
		Long: `Load a document into a store and print the value at a dotted path,
or the whole document when no path is given.

Examples:
  vstore inspect --doc state.json todos.0
  vstore inspect --doc state.yaml user --keys`,
		Args: cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			path := ""
			if len(args) == 1 {
				path = args[0]
			}
			return runInspect(cmd.OutOrStdout(), cmd.ErrOrStderr(), flags, opts, path)
		},
	}

	cmd.Flags().StringVarP(&opts.doc, "doc", "d", "", "Document file (JSON or YAML)")
	cmd.Flags().StringVarP(&opts.output, "output", "o", formatJSON, "Output format: json or yaml")
	cmd.Flags().BoolVarP(&opts.keys, "keys", "k", false, "Print the keys of the value instead")
	_ = cmd.MarkFlagRequired("doc")

	return cmd
}

func runInspect(w, stderr io.Writer, flags *globalFlags, opts *inspectOptions, path string) error {
	cfg, err := flags.loadConfig()
	if err != nil {
		return err
	}

	doc, err := readDocument(opts.doc)
	if err != nil {
		return err
	}
	p, err := parseWatchPath(path)
	if err != nil {
		return err
	}

	state, _, err := store.New(doc, store.WithName(cfg.Name), store.WithLogger(cfg.Logger(stderr)))
	if err != nil {
		return errors.FromError(err, "X002")
	}

	value := state.Lookup(p...)
	if opts.keys {
		view, ok := value.(*store.View)
		if !ok {
			return errors.New("X005").
				WithDetail(path + " is " + describe(value) + ", which has no keys")
		}
		return writeValue(w, view.Keys(), opts.output)
	}
	return writeValue(w, store.Unwrap(value), opts.output)
}
