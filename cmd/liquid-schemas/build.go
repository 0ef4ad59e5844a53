package main

import (
	"context"
	"errors"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/goliatone/go-liquid-schemas/internal/cache"
	"github.com/goliatone/go-liquid-schemas/internal/config"
	"github.com/goliatone/go-liquid-schemas/pkg/build"
)

type buildOptions struct {
	sections []string
	output   string
	dryRun   bool
	watch    bool
	noCache  bool
	cache    string
}

func newBuildCmd(g *globalOptions) *cobra.Command {
	opts := &buildOptions{}
	cmd := &cobra.Command{
		Use:   "build",
		Short: "Rewrite section templates with their evaluated schema",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return runBuild(cmd.Context(), g, opts)
		},
	}

	flags := cmd.Flags()
	flags.StringSliceVarP(&opts.sections, "sections", "s", nil, "section template globs (overrides the project file)")
	flags.StringVarP(&opts.output, "output", "o", "", "output directory relative to the root")
	flags.BoolVar(&opts.dryRun, "dry-run", false, "report outputs without writing them")
	flags.BoolVarP(&opts.watch, "watch", "w", false, "rebuild when templates or schema modules change")
	flags.BoolVar(&opts.noCache, "no-cache", false, "ignore and do not update the digest cache")
	flags.StringVar(&opts.cache, "cache", "", "digest cache file (default: .liquid-schemas.cache under the root)")
	return cmd
}

func runBuild(ctx context.Context, g *globalOptions, opts *buildOptions) error {
	cfg, err := loadProject(g)
	if err != nil {
		return err
	}
	if len(opts.sections) > 0 {
		cfg.Sections = opts.sections
	}
	if opts.output != "" {
		cfg.Output = opts.output
	}
	if opts.cache != "" {
		cfg.Cache = opts.cache
	}
	cfg.ApplyDefaults()
	if err := cfg.Validate(); err != nil {
		return err
	}

	builder := newProjectBuilder(cfg, g, opts.dryRun)
	session := build.NewSession()
	useCache := !opts.noCache && !opts.dryRun
	if useCache {
		if err := cache.Restore(cfg.CachePath(), session); err != nil {
			g.log.Info("discarding unreadable cache", "path", cfg.CachePath(), "error", err.Error())
		}
	}

	run := func(ctx context.Context) error {
		err := buildProject(ctx, g, cfg, builder, session)
		if useCache {
			if perr := cache.Persist(cfg.CachePath(), session); perr != nil {
				g.log.Error(perr, "cache not saved", "path", cfg.CachePath())
			}
		}
		return err
	}

	if !opts.watch {
		return run(ctx)
	}
	if err := run(ctx); err != nil && !isReported(err) {
		return err
	}
	return watch(ctx, g, cfg, run)
}

func newProjectBuilder(cfg config.Config, g *globalOptions, dryRun bool) *build.Builder {
	options := append(cfg.BuilderOptions(),
		build.WithWrite(!dryRun),
		build.WithLogger(g.log.WithName("build")),
	)
	return build.New(options...)
}

// buildProject runs one build of the section templates plus the settings
// schema when configured, and prints the summary.
func buildProject(ctx context.Context, g *globalOptions, cfg config.Config, builder *build.Builder, session *build.Session) error {
	result, buildErr := builder.Build(ctx, session)

	var failed *build.BuildError
	if buildErr != nil && !errors.As(buildErr, &failed) {
		return buildErr
	}

	var outputs []build.Output
	outputs = append(outputs, result.Outputs...)

	var settingsErr error
	if cfg.Settings.Input != "" {
		out, err := builder.BuildSettings(ctx, session, cfg.Settings.Input, cfg.Settings.Output)
		if err != nil {
			if ctx.Err() != nil {
				return ctx.Err()
			}
			settingsErr = err
		} else {
			outputs = append(outputs, out)
		}
	}

	printReport(g.stdout, outputs, result.Skipped)
	if failed != nil {
		for _, failure := range failed.Failures {
			fail(g.stderr, "✗ %s: %v", failure.Template, failure.Err)
		}
	}
	if settingsErr != nil {
		fail(g.stderr, "✗ settings: %v", settingsErr)
	}

	switch {
	case failed != nil && settingsErr != nil:
		return reportedError{err: errors.Join(failed, settingsErr)}
	case failed != nil:
		return reportedError{err: failed}
	case settingsErr != nil:
		return reportedError{err: settingsErr}
	}
	return nil
}

func countStatus(outputs []build.Output, status build.Status) int {
	n := 0
	for _, o := range outputs {
		if o.Status == status {
			n++
		}
	}
	return n
}

func plural(n int, word string) string {
	if n == 1 {
		return fmt.Sprintf("%d %s", n, word)
	}
	return fmt.Sprintf("%d %ss", n, word)
}
