package build

import (
	"fmt"
	"io/fs"
	"path"
	"sort"
	"strings"

	"github.com/bmatcuk/doublestar/v4"
)

// Templates returns the section templates of files matched by patterns, in
// the order a build processes them.
func Templates(files fs.FS, patterns ...string) ([]string, error) {
	return expandPatterns(files, patterns)
}

// expandPatterns returns the sorted, de-duplicated regular files matching
// any of patterns. Patterns are slash separated and relative to the root of
// files; "**" matches any number of directories and {a,b} alternates.
func expandPatterns(files fs.FS, patterns []string) ([]string, error) {
	seen := make(map[string]struct{})
	for _, raw := range patterns {
		pattern := strings.TrimPrefix(path.Clean(strings.TrimSpace(raw)), "./")
		if pattern == "" || pattern == "." {
			continue
		}
		if !doublestar.ValidatePattern(pattern) {
			return nil, fmt.Errorf("build: pattern %q: %w", raw, doublestar.ErrBadPattern)
		}

		matches, err := doublestar.Glob(files, pattern, doublestar.WithFilesOnly())
		if err != nil {
			return nil, fmt.Errorf("build: expand %q: %w", raw, err)
		}
		for _, name := range matches {
			seen[name] = struct{}{}
		}
	}

	out := make([]string, 0, len(seen))
	for name := range seen {
		out = append(out, name)
	}
	sort.Strings(out)
	return out, nil
}
