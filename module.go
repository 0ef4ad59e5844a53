package liquidschemas

import (
	"io/fs"

	"github.com/goliatone/go-liquid-schemas/internal/module/evaluator"
	"github.com/goliatone/go-liquid-schemas/internal/module/loader"
	"github.com/goliatone/go-liquid-schemas/internal/module/resolver"
	"github.com/goliatone/go-liquid-schemas/pkg/module"
)

// NewResolver constructs the built-in specifier resolver while keeping the
// concrete type hidden from consumers.
func NewResolver(options ...module.ResolverOption) module.Resolver {
	return resolver.New(module.NewResolverOptions(options...))
}

// NewLoader constructs the built-in module loader.
func NewLoader(options ...module.LoaderOption) module.Loader {
	return loader.New(module.NewLoaderOptions(options...))
}

// NewEvaluator constructs the built-in evaluator for JSON, YAML, TOML and
// templated JSON modules. files backs template includes; globals are exposed
// to templated modules.
func NewEvaluator(files fs.FS, globals map[string]any) module.Evaluator {
	return evaluator.New(
		evaluator.WithTemplateFS(files),
		evaluator.WithGlobals(globals),
	)
}
