package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"os/signal"
	"syscall"

	"github.com/fatih/color"
	"github.com/go-logr/logr"
	"github.com/spf13/cobra"
)

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	cmd := newRootCmd(newGlobalOptions(os.Stdout, os.Stderr))
	if err := cmd.ExecuteContext(ctx); err != nil {
		if !isReported(err) {
			color.New(color.FgRed).Fprintf(os.Stderr, "Error: %v\n", err)
		}
		stop()
		os.Exit(1)
	}
}

type globalOptions struct {
	configPath string
	root       string
	logLevel   string
	logDev     bool
	noColor    bool

	stdout   io.Writer
	stderr   io.Writer
	log      logr.Logger
	sync     func()
	prompter prompter
}

func newGlobalOptions(stdout, stderr io.Writer) *globalOptions {
	return &globalOptions{
		logLevel: "info",
		stdout:   stdout,
		stderr:   stderr,
		log:      logr.Discard(),
		sync:     func() {},
		prompter: surveyPrompter{},
	}
}

func newRootCmd(opts *globalOptions) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "liquid-schemas",
		Short: "Inline schema modules into Liquid section templates",
		Long: `liquid-schemas evaluates the JSON, YAML, TOML or templated JSON module
referenced by each section template and writes it into the template as a
static {% schema %} block.`,
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, _ []string) error {
			if opts.noColor {
				color.NoColor = true
			}
			log, sync, err := newLogger(opts.logLevel, opts.logDev, opts.stderr)
			if err != nil {
				return err
			}
			opts.log, opts.sync = log, sync
			return nil
		},
		PersistentPostRun: func(*cobra.Command, []string) {
			opts.sync()
		},
	}
	cmd.SetOut(opts.stdout)
	cmd.SetErr(opts.stderr)

	flags := cmd.PersistentFlags()
	flags.StringVarP(&opts.configPath, "config", "c", "", "project file (default: search upwards for liquid-schemas.yaml)")
	flags.StringVar(&opts.root, "root", "", "project root (overrides the project file)")
	flags.StringVar(&opts.logLevel, "log-level", opts.logLevel, "log level (debug|info|warn|error)")
	flags.BoolVar(&opts.logDev, "log-dev", false, "human readable development logs")
	flags.BoolVar(&opts.noColor, "no-color", false, "disable colored output")

	cmd.AddCommand(
		newBuildCmd(opts),
		newSettingsCmd(opts),
		newMatchCmd(opts),
		newInitCmd(opts),
	)
	return cmd
}

// reportedError marks failures already printed to the user.
type reportedError struct {
	err error
}

func (e reportedError) Error() string { return e.err.Error() }

func (e reportedError) Unwrap() error { return e.err }

func isReported(err error) bool {
	var reported reportedError
	return errors.As(err, &reported)
}

func fail(w io.Writer, format string, args ...any) {
	color.New(color.FgRed).Fprintf(w, format, args...)
	fmt.Fprintln(w)
}
