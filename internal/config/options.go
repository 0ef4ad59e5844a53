package config

import (
	"github.com/goliatone/go-liquid-schemas/pkg/build"
	"github.com/goliatone/go-liquid-schemas/pkg/module"
	"github.com/goliatone/go-liquid-schemas/pkg/payload"
)

// BuilderOptions maps the configuration onto build options. Callers append
// their own options to override individual settings.
func (c Config) BuilderOptions() []build.Option {
	encode := payload.DefaultEncodeOptions()
	if c.Indent != nil {
		encode.Indent = *c.Indent
	}

	opts := []build.Option{
		build.WithRoot(c.Root),
		build.WithSections(c.Sections...),
		build.WithOutputDir(c.Output),
		build.WithConcurrency(c.Concurrency),
		build.WithGlobals(c.Globals),
		build.WithEncodeOptions(encode),
		build.WithResolverOptions(c.resolverOptions()...),
	}
	if c.Sanitize {
		opts = append(opts, build.WithSanitize(c.SanitizeFields...))
	}
	if c.HTTP.Enabled {
		opts = append(opts, build.WithLoaderOptions(module.WithHTTPFallback(c.HTTP.Timeout.Duration)))
	}
	return opts
}

func (c Config) resolverOptions() []module.ResolverOption {
	var opts []module.ResolverOption
	for prefix, dir := range c.Aliases {
		opts = append(opts, module.WithAlias(prefix, dir))
	}
	if len(c.ModuleRoots) > 0 {
		opts = append(opts, module.WithModuleRoots(c.ModuleRoots...))
	}
	if c.HTTP.Enabled {
		opts = append(opts, module.WithRemoteModules(true))
	}
	return opts
}
