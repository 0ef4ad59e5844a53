package build

import (
	"context"
	"io/fs"
	"path"
	"strings"

	"github.com/go-logr/logr"

	"github.com/goliatone/go-liquid-schemas/pkg/module"
	"github.com/goliatone/go-liquid-schemas/pkg/payload"
)

// Formatter post-processes a rewritten template before it is digested and
// written. path is the template path relative to the root.
type Formatter func(ctx context.Context, path, source string) (string, error)

// Option customises the builder configuration.
type Option func(*Builder)

// WithRoot sets the project directory templates and modules are read from
// and outputs are written to.
func WithRoot(dir string) Option {
	return func(b *Builder) {
		b.root = strings.TrimSpace(dir)
	}
}

// WithFileSystem reads templates and modules from files instead of the root
// directory.
func WithFileSystem(files fs.FS) Option {
	return func(b *Builder) {
		b.files = files
	}
}

// WithWriter replaces the writer used for outputs.
func WithWriter(w Writer) Option {
	return func(b *Builder) {
		b.writer = w
	}
}

// WithSections appends glob patterns selecting section templates.
func WithSections(patterns ...string) Option {
	return func(b *Builder) {
		for _, p := range patterns {
			if p = strings.TrimSpace(p); p != "" {
				b.sections = append(b.sections, p)
			}
		}
	}
}

// WithOutputDir writes each rewritten template to dir using its base name.
// An empty dir rewrites templates in place.
func WithOutputDir(dir string) Option {
	return func(b *Builder) {
		dir = strings.TrimSpace(dir)
		if dir == "" {
			b.outputDir = ""
			return
		}
		b.outputDir = strings.TrimPrefix(path.Clean(strings.ReplaceAll(dir, "\\", "/")), "./")
	}
}

// WithResolver injects a custom module resolver.
func WithResolver(r module.Resolver) Option {
	return func(b *Builder) {
		b.resolver = r
	}
}

// WithResolverOptions configures the built-in resolver.
func WithResolverOptions(options ...module.ResolverOption) Option {
	return func(b *Builder) {
		b.resolverOptions = append(b.resolverOptions, options...)
	}
}

// WithLoader injects a custom module loader.
func WithLoader(l module.Loader) Option {
	return func(b *Builder) {
		b.loader = l
	}
}

// WithLoaderOptions configures the built-in loader.
func WithLoaderOptions(options ...module.LoaderOption) Option {
	return func(b *Builder) {
		b.loaderOptions = append(b.loaderOptions, options...)
	}
}

// WithEvaluator injects a custom module evaluator.
func WithEvaluator(e module.Evaluator) Option {
	return func(b *Builder) {
		b.evaluator = e
	}
}

// WithGlobals exposes data to templated modules.
func WithGlobals(data map[string]any) Option {
	return func(b *Builder) {
		if len(data) == 0 {
			return
		}
		if b.globals == nil {
			b.globals = make(map[string]any, len(data))
		}
		for key, value := range data {
			b.globals[key] = value
		}
	}
}

// WithEncodeOptions controls payload serialization.
func WithEncodeOptions(opts payload.EncodeOptions) Option {
	return func(b *Builder) {
		b.encode = opts
	}
}

// WithSanitize strips unsupported markup from the named setting fields
// before encoding. No fields selects payload.DefaultSanitizeFields.
func WithSanitize(fields ...string) Option {
	return func(b *Builder) {
		b.sanitize = true
		b.sanitizeFields = append([]string(nil), fields...)
	}
}

// WithFormatter registers a hook run on every rewritten template.
func WithFormatter(f Formatter) Option {
	return func(b *Builder) {
		b.formatter = f
	}
}

// WithWrite toggles writing. Disabled builds still report every output.
func WithWrite(enabled bool) Option {
	return func(b *Builder) {
		b.write = enabled
	}
}

// WithConcurrency caps the number of templates and modules processed at
// once. Values below one are ignored.
func WithConcurrency(n int) Option {
	return func(b *Builder) {
		if n > 0 {
			b.concurrency = n
		}
	}
}

// WithLogger sets the logger used for build progress.
func WithLogger(log logr.Logger) Option {
	return func(b *Builder) {
		b.log = log
	}
}
