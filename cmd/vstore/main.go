package main

import (
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/spf13/cobra"

	"github.com/vango-dev/vstore/internal/config"
	"github.com/vango-dev/vstore/internal/errors"
)

// Version information set at build time.
var (
	version = "dev"
	commit  = "none"
	date    = "unknown"
)

const banner = `
  ╦  ╦┌─┐┌┬┐┌─┐┬─┐┌─┐
  ╚╗╔╝└─┐ │ │ │├┬┘├┤
   ╚╝ └─┘ ┴ └─┘┴└─└─┘
`

// globalFlags are the persistent flags shared by every command.
type globalFlags struct {
	config   string
	strict   bool
	logLevel string
	noColor  bool
}

func main() {
	flags := &globalFlags{}

	rootCmd := &cobra.Command{
		Use:   "vstore",
		Short: "Drive a reactive document store from the command line",
		Long: `vstore loads a JSON or YAML document into a reactive store and
applies scripted path expressions to it.

  • Fine-grained tracking per property and per index
  • Deep merges, selectors and ranges in one setter call
  • Watches that report how often each path was recomputed
  • Optional Prometheus metrics and OpenTelemetry spans`,
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRun: func(cmd *cobra.Command, args []string) {
			if flags.noColor {
				errors.DisableColors()
			}
		},
	}

	rootCmd.PersistentFlags().StringVar(&flags.config, "config", "", "Config file (default: nearest vstore.json or vstore.yaml)")
	rootCmd.PersistentFlags().BoolVar(&flags.strict, "strict", false, "Fail on direct writes through views")
	rootCmd.PersistentFlags().StringVar(&flags.logLevel, "log-level", "", "Log level: debug, info, warn or error")
	rootCmd.PersistentFlags().BoolVar(&flags.noColor, "no-color", false, "Disable colored error output")

	rootCmd.AddCommand(
		runCmd(flags),
		inspectCmd(flags),
		versionCmd(),
	)

	if err := rootCmd.Execute(); err != nil {
		errors.PrintError(os.Stderr, err)
		os.Exit(1)
	}
}

// loadConfig resolves the configuration for a command. An explicit --config
// must exist; otherwise the nearest config file is used and defaults apply
// when there is none.
func (g *globalFlags) loadConfig() (*config.Config, error) {
	var (
		cfg *config.Config
		err error
	)
	if g.config != "" {
		cfg, err = config.LoadFile(g.config)
	} else {
		cfg, err = config.LoadFromWorkingDir()
		if config.IsNotFound(err) {
			cfg, err = config.New(), nil
		}
	}
	if err != nil {
		return nil, err
	}

	if g.strict {
		cfg.Strict = true
	}
	if g.logLevel != "" {
		cfg.Log.Level = strings.ToLower(g.logLevel)
		if err := cfg.Validate(); err != nil {
			return nil, err
		}
	}
	return cfg, nil
}

// printBanner prints the vstore ASCII art banner.
func printBanner(w io.Writer) {
	fmt.Fprint(w, banner)
}

// success prints a success message.
func success(w io.Writer, format string, args ...any) {
	fmt.Fprintf(w, "\033[32m✓\033[0m %s\n", fmt.Sprintf(format, args...))
}

// info prints an info message.
func info(w io.Writer, format string, args ...any) {
	fmt.Fprintf(w, "  %s\n", fmt.Sprintf(format, args...))
}
