// Package liquidschemas inlines schema modules into Liquid section
// templates. The sub packages hold the pieces; this package re-exports the
// common entry points so callers need a single import for the quick path:
//
//	builder := liquidschemas.NewBuilder(
//		liquidschemas.WithRoot("theme"),
//		liquidschemas.WithSections("sections/*.liquid"),
//	)
//	result, err := builder.Build(ctx, liquidschemas.NewSession())
package liquidschemas

import (
	"context"

	"github.com/goliatone/go-liquid-schemas/pkg/build"
	"github.com/goliatone/go-liquid-schemas/pkg/marker"
	"github.com/goliatone/go-liquid-schemas/pkg/transform"
)

// Match describes the schema reference found in a template.
type Match = marker.Match

// Variant identifies the tag form of a Match.
type Variant = marker.Variant

const (
	StaticBlock      = marker.StaticBlock
	ReferenceMarker  = marker.ReferenceMarker
	ReferenceComment = marker.ReferenceComment
)

// Builder rewrites the section templates of a project.
type Builder = build.Builder

// Session carries output digests and module references between builds.
type Session = build.Session

// Option configures a Builder.
type Option = build.Option

// Result summarises one build.
type Result = build.Result

// Find returns the schema reference of text.
func Find(text string) Match {
	return marker.Find(text)
}

// Rewrite inlines payload into text; see transform.Rewrite.
func Rewrite(text, payload string) string {
	return transform.Rewrite(text, payload)
}

// NewBuilder exposes the builder constructor from the top-level module.
func NewBuilder(options ...Option) *Builder {
	return build.New(options...)
}

// NewSession returns an empty build session.
func NewSession() *Session {
	return build.NewSession()
}

// Build runs a single build with a fresh session.
func Build(ctx context.Context, options ...Option) (Result, error) {
	return build.New(options...).Build(ctx, build.NewSession())
}

// WithRoot sets the project root; see build.WithRoot.
func WithRoot(dir string) Option {
	return build.WithRoot(dir)
}

// WithSections sets the section template globs; see build.WithSections.
func WithSections(patterns ...string) Option {
	return build.WithSections(patterns...)
}

// WithOutputDir writes outputs below dir instead of in place.
func WithOutputDir(dir string) Option {
	return build.WithOutputDir(dir)
}
