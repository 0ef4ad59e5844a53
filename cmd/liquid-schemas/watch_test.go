package main

import (
	"context"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/goliatone/go-liquid-schemas/internal/config"
)

func waitRun(t *testing.T, runs <-chan struct{}) {
	t.Helper()
	select {
	case <-runs:
	case <-time.After(5 * time.Second):
		t.Fatalf("expected a rebuild")
	}
}

func expectNoRun(t *testing.T, runs <-chan struct{}, wait time.Duration) {
	t.Helper()
	select {
	case <-runs:
		t.Fatalf("unexpected rebuild")
	case <-time.After(wait):
	}
}

func TestProjectWatcher_RebuildsOncePerBurst(t *testing.T) {
	root := t.TempDir()
	sections := filepath.Join(root, "sections")
	if err := os.MkdirAll(sections, 0o755); err != nil {
		t.Fatalf("mkdir: %v", err)
	}

	g := newGlobalOptions(io.Discard, io.Discard)
	w, err := newProjectWatcher(root, filepath.Join(root, config.DefaultCache))
	if err != nil {
		t.Fatalf("watcher: %v", err)
	}
	defer w.close(g)

	runs := make(chan struct{}, 16)
	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan error, 1)
	go func() {
		done <- w.loop(ctx, g, func(context.Context) error {
			runs <- struct{}{}
			return nil
		})
	}()

	quiet := 4 * w.debounce
	for i := 0; i < 5; i++ {
		writeFile(t, filepath.Join(sections, "hero.liquid"), fmt.Sprintf("{%% schema './hero-%d' %%}\n", i))
	}
	waitRun(t, runs)
	expectNoRun(t, runs, quiet)

	writeFile(t, filepath.Join(root, config.DefaultCache), "digests")
	writeFile(t, filepath.Join(sections, "hero.liquid.tmp"), "partial")
	expectNoRun(t, runs, quiet)

	writeFile(t, filepath.Join(sections, "hero.json"), `{"name":"Hero"}`)
	waitRun(t, runs)
	expectNoRun(t, runs, quiet)

	cancel()
	select {
	case err := <-done:
		if err != nil {
			t.Fatalf("loop: %v", err)
		}
	case <-time.After(5 * time.Second):
		t.Fatalf("loop did not stop after cancellation")
	}
}
