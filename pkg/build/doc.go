// Package build inlines schema modules into Liquid section templates.
//
// A Builder expands section globs, classifies each template with the marker
// package, resolves and evaluates every referenced module once, and rewrites
// the templates with the encoded default export. State that must survive
// between builds, such as the digest of every output already written, lives
// in a Session supplied by the caller so watch loops and one-off builds share
// the same code path:
//
//	b := build.New(
//		build.WithRoot("."),
//		build.WithSections("src/sections/*.liquid"),
//		build.WithOutputDir("sections"),
//	)
//	result, err := b.Build(ctx, build.NewSession())
//
// Failures are reported per template. A failing template never prevents the
// others from being written; Build returns them together as a *BuildError.
package build
