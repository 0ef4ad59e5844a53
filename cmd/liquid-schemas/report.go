package main

import (
	"fmt"
	"io"
	"strings"

	"github.com/fatih/color"

	"github.com/goliatone/go-liquid-schemas/pkg/build"
)

var (
	writtenColor   = color.New(color.FgGreen)
	unchangedColor = color.New(color.Faint)
	pendingColor   = color.New(color.FgYellow)
)

func printReport(w io.Writer, outputs []build.Output, skipped []string) {
	for _, out := range outputs {
		label := out.Template
		if label == "" {
			label = "settings"
		}
		line := fmt.Sprintf("%s -> %s (%s)", label, out.Path, out.Schema)
		switch out.Status {
		case build.StatusWritten:
			writtenColor.Fprintf(w, "✓ %s\n", line)
		case build.StatusPending:
			pendingColor.Fprintf(w, "~ %s\n", line)
		default:
			unchangedColor.Fprintf(w, "= %s\n", line)
		}
	}
	for _, name := range skipped {
		unchangedColor.Fprintf(w, "- %s (no schema reference)\n", name)
	}

	parts := []string{
		plural(countStatus(outputs, build.StatusWritten), "file") + " written",
		fmt.Sprintf("%d unchanged", countStatus(outputs, build.StatusUnchanged)),
	}
	if n := countStatus(outputs, build.StatusPending); n > 0 {
		parts = append(parts, fmt.Sprintf("%d pending", n))
	}
	if len(skipped) > 0 {
		parts = append(parts, fmt.Sprintf("%d skipped", len(skipped)))
	}
	fmt.Fprintln(w, strings.Join(parts, ", "))
}
