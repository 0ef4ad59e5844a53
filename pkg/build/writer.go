package build

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
)

// Writer persists build outputs. Names are slash separated and relative to
// the project root.
type Writer interface {
	WriteFile(name string, data []byte) error
}

// DirWriter writes outputs below a directory on disk, creating parent
// directories as needed.
type DirWriter struct {
	Root string
}

var _ Writer = DirWriter{}

func (w DirWriter) WriteFile(name string, data []byte) error {
	target := w.path(name)
	if err := os.MkdirAll(filepath.Dir(target), 0o755); err != nil {
		return fmt.Errorf("build: create output dir: %w", err)
	}
	tmp := target + ".tmp"
	if err := os.WriteFile(tmp, data, 0o644); err != nil {
		return fmt.Errorf("build: write %s: %w", name, err)
	}
	if err := os.Rename(tmp, target); err != nil {
		_ = os.Remove(tmp)
		return fmt.Errorf("build: write %s: %w", name, err)
	}
	return nil
}

// Exists reports whether name is present on disk. Builds use it to rewrite
// outputs deleted behind the session's back.
func (w DirWriter) Exists(name string) bool {
	_, err := os.Stat(w.path(name))
	return !errors.Is(err, fs.ErrNotExist)
}

func (w DirWriter) path(name string) string {
	root := w.Root
	if root == "" {
		root = "."
	}
	return filepath.Join(root, filepath.FromSlash(name))
}

type existenceChecker interface {
	Exists(name string) bool
}
