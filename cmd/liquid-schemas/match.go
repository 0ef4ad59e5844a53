package main

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/bndr/gotabulate"
	"github.com/spf13/cobra"

	"github.com/goliatone/go-liquid-schemas/pkg/build"
	"github.com/goliatone/go-liquid-schemas/pkg/marker"
)

var matchHeaders = []string{"template", "variant", "specifier", "static block", "references"}

func newMatchCmd(g *globalOptions) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "match [template...]",
		Short: "List the schema reference found in each section template",
		Long: `match reports the schema reference of every template given as an argument,
or of every template matched by the project's section patterns when no
argument is given. Nothing is evaluated or written.`,
		RunE: func(cmd *cobra.Command, args []string) error {
			files, err := matchTargets(g, args)
			if err != nil {
				return err
			}
			rows := make([][]any, 0, len(files))
			for _, f := range files {
				raw, err := os.ReadFile(f.path)
				if err != nil {
					return err
				}
				rows = append(rows, matchRow(f.name, string(raw)))
			}
			if len(rows) == 0 {
				fmt.Fprintln(g.stdout, "no section templates found")
				return nil
			}
			fmt.Fprint(g.stdout, renderMatchTable(rows))
			return nil
		},
	}
	return cmd
}

type matchTarget struct {
	name string
	path string
}

func matchTargets(g *globalOptions, args []string) ([]matchTarget, error) {
	if len(args) > 0 {
		out := make([]matchTarget, len(args))
		for i, arg := range args {
			out[i] = matchTarget{name: filepath.ToSlash(arg), path: arg}
		}
		return out, nil
	}

	cfg, err := loadProject(g)
	if err != nil {
		return nil, err
	}
	names, err := build.Templates(os.DirFS(cfg.Root), cfg.Sections...)
	if err != nil {
		return nil, err
	}
	out := make([]matchTarget, len(names))
	for i, name := range names {
		out[i] = matchTarget{name: name, path: filepath.Join(cfg.Root, filepath.FromSlash(name))}
	}
	return out, nil
}

func matchRow(name, text string) []any {
	m := marker.Find(text)
	specifier := "-"
	if m.Found {
		specifier = fmt.Sprintf("%q", m.Specifier)
	}
	static := "no"
	if marker.HasStaticBlock(text) {
		static = "yes"
	}
	return []any{name, marker.Classify(text).String(), specifier, static, fmt.Sprint(len(marker.FindAll(text)))}
}

func renderMatchTable(rows [][]any) string {
	t := gotabulate.Create(rows)
	t.SetHeaders(matchHeaders)
	t.SetAlign("left")
	t.SetWrapStrings(true)
	t.SetMaxCellSize(60)
	return t.Render("grid")
}
