package module

import (
	"context"
	"io/fs"
	"net/http"
	"time"
)

// DefaultExport is the export name inlined into templates.
const DefaultExport = "default"

// Resolver maps a specifier written in a template to the module it names.
// importer is the path of the template that contains the specifier.
// Implementations return an *UnresolvedError when nothing matches.
type Resolver interface {
	Resolve(ctx context.Context, specifier, importer string) (Source, error)
}

// Loader fetches the raw module document behind a Source.
type Loader interface {
	Load(ctx context.Context, src Source) (Document, error)
}

// Evaluator turns a loaded document into a Module.
type Evaluator interface {
	Evaluate(ctx context.Context, doc Document) (Module, error)
}

// Module is an evaluated schema module.
type Module struct {
	// Location identifies the document the module was evaluated from.
	Location string
	// Exports holds the named values the module provides.
	Exports map[string]Value
}

// Export returns the named export or a *MissingExportError.
func (m Module) Export(name string) (Value, error) {
	value, ok := m.Exports[name]
	if !ok {
		return nil, &MissingExportError{Module: m.Location, Export: name}
	}
	return value, nil
}

// Default returns the default export.
func (m Module) Default() (Value, error) {
	return m.Export(DefaultExport)
}

// ResolverOptions configures how specifiers map to module paths.
type ResolverOptions struct {
	// FileSystem is the project root every path is relative to.
	FileSystem fs.FS

	// Aliases maps specifier prefixes (for example "@schemas") to directories
	// inside FileSystem. The longest matching prefix wins.
	Aliases map[string]string

	// ModuleRoots are searched, in order, for bare specifiers that do not
	// resolve next to the importing template.
	ModuleRoots []string

	// Extensions are probed, in order, when a specifier omits one.
	Extensions []string

	// AllowHTTP lets http:// and https:// specifiers resolve to URL sources.
	AllowHTTP bool
}

// ResolverOption mutates ResolverOptions prior to construction.
type ResolverOption func(*ResolverOptions)

// WithResolverFileSystem sets the project filesystem.
func WithResolverFileSystem(files fs.FS) ResolverOption {
	return func(opts *ResolverOptions) {
		opts.FileSystem = files
	}
}

// WithAlias registers a specifier prefix alias.
func WithAlias(prefix, dir string) ResolverOption {
	return func(opts *ResolverOptions) {
		if opts.Aliases == nil {
			opts.Aliases = make(map[string]string)
		}
		opts.Aliases[prefix] = dir
	}
}

// WithModuleRoots appends directories searched for bare specifiers.
func WithModuleRoots(dirs ...string) ResolverOption {
	return func(opts *ResolverOptions) {
		opts.ModuleRoots = append(opts.ModuleRoots, dirs...)
	}
}

// WithExtensions replaces the probed extensions.
func WithExtensions(exts ...string) ResolverOption {
	return func(opts *ResolverOptions) {
		opts.Extensions = append([]string(nil), exts...)
	}
}

// WithRemoteModules allows URL specifiers.
func WithRemoteModules(enabled bool) ResolverOption {
	return func(opts *ResolverOptions) {
		opts.AllowHTTP = enabled
	}
}

// NewResolverOptions applies a set of ResolverOption values.
func NewResolverOptions(options ...ResolverOption) ResolverOptions {
	cfg := ResolverOptions{}
	for _, opt := range options {
		opt(&cfg)
	}
	return cfg
}

// LoaderOptions configures how a Loader fetches module documents.
type LoaderOptions struct {
	// FileSystem serves SourceKindFS documents.
	FileSystem fs.FS

	// HTTPClient enables URL sources with custom behaviour. Nil means URL
	// sources are disabled unless AllowHTTPFallback is true.
	HTTPClient *http.Client

	// AllowHTTPFallback enables URL sources with a default client.
	AllowHTTPFallback bool

	// RequestTimeout caps remote fetch durations.
	RequestTimeout time.Duration
}

// LoaderOption mutates LoaderOptions prior to construction.
type LoaderOption func(*LoaderOptions)

// WithFileSystem injects the fs.FS used for SourceKindFS documents.
func WithFileSystem(files fs.FS) LoaderOption {
	return func(opts *LoaderOptions) {
		opts.FileSystem = files
	}
}

// WithHTTPClient injects a custom HTTP client for remote modules.
func WithHTTPClient(client *http.Client) LoaderOption {
	return func(opts *LoaderOptions) {
		opts.HTTPClient = client
	}
}

// WithHTTPFallback enables HTTP loading with a default client and an
// optional timeout.
func WithHTTPFallback(timeout time.Duration) LoaderOption {
	return func(opts *LoaderOptions) {
		opts.AllowHTTPFallback = true
		opts.RequestTimeout = timeout
	}
}

// NewLoaderOptions applies a set of LoaderOption values.
func NewLoaderOptions(options ...LoaderOption) LoaderOptions {
	cfg := LoaderOptions{}
	for _, opt := range options {
		opt(&cfg)
	}
	return cfg
}
