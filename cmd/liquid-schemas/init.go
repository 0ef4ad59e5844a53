package main

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/AlecAivazis/survey/v2"
	"github.com/AlecAivazis/survey/v2/terminal"
	"github.com/spf13/cobra"
	"gopkg.in/yaml.v3"

	"github.com/goliatone/go-liquid-schemas/internal/config"
)

// errAborted reports an interrupted prompt.
var errAborted = errors.New("init: aborted")

// prompter asks the init questions. Tests replace it.
type prompter interface {
	Input(message, def string) (string, error)
	Confirm(message string, def bool) (bool, error)
}

type surveyPrompter struct{}

func (surveyPrompter) Input(message, def string) (string, error) {
	var out string
	if err := survey.AskOne(&survey.Input{Message: message, Default: def}, &out); err != nil {
		return "", translateSurveyErr(err)
	}
	return out, nil
}

func (surveyPrompter) Confirm(message string, def bool) (bool, error) {
	var out bool
	if err := survey.AskOne(&survey.Confirm{Message: message, Default: def}, &out); err != nil {
		return false, translateSurveyErr(err)
	}
	return out, nil
}

func translateSurveyErr(err error) error {
	if errors.Is(err, terminal.InterruptErr) {
		return errAborted
	}
	return err
}

func newInitCmd(g *globalOptions) *cobra.Command {
	var yes, force bool
	cmd := &cobra.Command{
		Use:   "init",
		Short: "Create a liquid-schemas.yaml project file",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			root := g.root
			if root == "" {
				root = "."
			}
			target := filepath.Join(root, config.FileNames[0])
			if _, err := os.Stat(target); err == nil && !force {
				return fmt.Errorf("init: %s already exists (use --force to overwrite)", target)
			}

			cfg, err := askProject(g.prompter, yes)
			if err != nil {
				return err
			}
			data, err := yaml.Marshal(cfg)
			if err != nil {
				return fmt.Errorf("init: encode: %w", err)
			}
			if err := os.WriteFile(target, data, 0o644); err != nil {
				return fmt.Errorf("init: write %s: %w", target, err)
			}
			writtenColor.Fprintf(g.stdout, "✓ wrote %s\n", target)
			return nil
		},
	}
	cmd.Flags().BoolVarP(&yes, "yes", "y", false, "accept the defaults without prompting")
	cmd.Flags().BoolVarP(&force, "force", "f", false, "overwrite an existing project file")
	return cmd
}

// askProject collects the project file fields. With yes set the defaults
// are used and p is never called.
func askProject(p prompter, yes bool) (config.Config, error) {
	cfg := config.Config{Sections: []string{config.DefaultSections}}
	if yes {
		return cfg, nil
	}

	sections, err := p.Input("Section template globs (comma separated)", config.DefaultSections)
	if err != nil {
		return config.Config{}, err
	}
	cfg.Sections = splitList(sections)
	if len(cfg.Sections) == 0 {
		cfg.Sections = []string{config.DefaultSections}
	}

	if cfg.Output, err = p.Input("Output directory (empty rewrites in place)", ""); err != nil {
		return config.Config{}, err
	}
	cfg.Output = strings.TrimSpace(cfg.Output)

	settingsInput, err := p.Input("Settings schema module (empty to skip)", "")
	if err != nil {
		return config.Config{}, err
	}
	cfg.Settings.Input = strings.TrimSpace(settingsInput)

	if cfg.Sanitize, err = p.Confirm("Sanitize HTML in schema strings?", false); err != nil {
		return config.Config{}, err
	}
	return cfg, cfg.Validate()
}

func splitList(raw string) []string {
	var out []string
	for _, part := range strings.Split(raw, ",") {
		if part = strings.TrimSpace(part); part != "" {
			out = append(out, part)
		}
	}
	return out
}
