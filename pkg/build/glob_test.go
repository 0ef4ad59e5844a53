package build

import (
	"errors"
	"testing"
	"testing/fstest"

	"github.com/bmatcuk/doublestar/v4"
	"github.com/google/go-cmp/cmp"
)

func TestExpandPatterns(t *testing.T) {
	files := fstest.MapFS{
		"sections/hero.liquid":              {},
		"sections/footer.liquid":            {},
		"sections/hero.json":                {},
		"src/sections/a.liquid":             {},
		"src/sections/nested/b.liquid":      {},
		"src/sections/nested/deep/c.liquid": {},
		"snippets/icon.liquid":              {},
	}

	tests := []struct {
		name     string
		patterns []string
		want     []string
	}{
		{
			name:     "single directory",
			patterns: []string{"sections/*.liquid"},
			want:     []string{"sections/footer.liquid", "sections/hero.liquid"},
		},
		{
			name:     "double star",
			patterns: []string{"src/**/*.liquid"},
			want:     []string{"src/sections/a.liquid", "src/sections/nested/b.liquid", "src/sections/nested/deep/c.liquid"},
		},
		{
			name:     "double star in the middle",
			patterns: []string{"src/sections/**/c.liquid"},
			want:     []string{"src/sections/nested/deep/c.liquid"},
		},
		{
			name:     "literal path and duplicates",
			patterns: []string{"./sections/hero.liquid", "sections/hero.*", "missing/*.liquid"},
			want:     []string{"sections/hero.json", "sections/hero.liquid"},
		},
		{
			name:     "root wildcard",
			patterns: []string{"**/icon.liquid"},
			want:     []string{"snippets/icon.liquid"},
		},
		{
			name:     "brace alternation",
			patterns: []string{"sections/{hero,footer}.liquid"},
			want:     []string{"sections/footer.liquid", "sections/hero.liquid"},
		},
		{
			name:     "brace alternation under double star",
			patterns: []string{"src/**/{a,c}.liquid"},
			want:     []string{"src/sections/a.liquid", "src/sections/nested/deep/c.liquid"},
		},
		{
			name:     "directories are not templates",
			patterns: []string{"src/sections/nested"},
			want:     []string{},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := expandPatterns(files, tt.patterns)
			if err != nil {
				t.Fatalf("expand: %v", err)
			}
			if diff := cmp.Diff(tt.want, got); diff != "" {
				t.Fatalf("matches mismatch (-want +got):\n%s", diff)
			}
		})
	}
}

func TestExpandPatterns_BadPattern(t *testing.T) {
	for _, pattern := range []string{"sections/[*.liquid", "sections/{hero,footer.liquid"} {
		if _, err := expandPatterns(fstest.MapFS{}, []string{pattern}); !errors.Is(err, doublestar.ErrBadPattern) {
			t.Fatalf("%s: expected bad pattern error, got %v", pattern, err)
		}
	}
}
