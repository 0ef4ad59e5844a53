package main

import (
	"errors"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/goliatone/go-liquid-schemas/pkg/build"
)

func newSettingsCmd(g *globalOptions) *cobra.Command {
	var (
		input     string
		output    string
		printOnly bool
	)
	cmd := &cobra.Command{
		Use:   "settings",
		Short: "Build the theme settings schema from a settings module",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			cfg, err := loadProject(g)
			if err != nil {
				return err
			}
			if input != "" {
				cfg.Settings.Input = input
			}
			if output != "" {
				cfg.Settings.Output = output
			}
			cfg.ApplyDefaults()
			if cfg.Settings.Input == "" {
				return errors.New("settings: no input module (set settings.input or pass --input)")
			}

			builder := newProjectBuilder(cfg, g, printOnly)
			out, err := builder.BuildSettings(cmd.Context(), build.NewSession(), cfg.Settings.Input, cfg.Settings.Output)
			if err != nil {
				return err
			}
			if printOnly {
				fmt.Fprintln(g.stdout, out.Content)
				return nil
			}
			printReport(g.stdout, []build.Output{out}, nil)
			return nil
		},
	}

	flags := cmd.Flags()
	flags.StringVarP(&input, "input", "i", "", "settings module specifier, resolved from the root")
	flags.StringVarP(&output, "output", "o", "", "output path relative to the root (default config/settings_schema.json)")
	flags.BoolVar(&printOnly, "print", false, "print the settings schema instead of writing it")
	return cmd
}
