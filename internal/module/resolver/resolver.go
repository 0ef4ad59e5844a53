package resolver

import (
	"context"
	"errors"
	"io/fs"
	"path"
	"sort"
	"strings"

	"github.com/goliatone/go-liquid-schemas/pkg/module"
)

// DefaultExtensions are probed, in order, when a specifier has no extension
// of its own.
var DefaultExtensions = []string{".json", ".yaml", ".yml", ".toml", ".json.tpl"}

const indexName = "index"

type alias struct {
	prefix string
	dir    string
}

// Resolver implements module.Resolver over a project filesystem.
type Resolver struct {
	fs          fs.FS
	aliases     []alias
	roots       []string
	extensions  []string
	allowRemote bool
}

var _ module.Resolver = (*Resolver)(nil)

// New constructs a Resolver from pre-resolved options.
func New(options module.ResolverOptions) *Resolver {
	aliases := make([]alias, 0, len(options.Aliases))
	for prefix, dir := range options.Aliases {
		prefix = strings.TrimSpace(prefix)
		if prefix == "" {
			continue
		}
		aliases = append(aliases, alias{prefix: prefix, dir: cleanDir(dir)})
	}
	sort.Slice(aliases, func(i, j int) bool {
		if len(aliases[i].prefix) == len(aliases[j].prefix) {
			return aliases[i].prefix < aliases[j].prefix
		}
		return len(aliases[i].prefix) > len(aliases[j].prefix)
	})

	roots := make([]string, 0, len(options.ModuleRoots))
	for _, root := range options.ModuleRoots {
		if strings.TrimSpace(root) == "" {
			continue
		}
		roots = append(roots, cleanDir(root))
	}

	extensions := options.Extensions
	if len(extensions) == 0 {
		extensions = DefaultExtensions
	}

	return &Resolver{
		fs:          options.FileSystem,
		aliases:     aliases,
		roots:       roots,
		extensions:  append([]string(nil), extensions...),
		allowRemote: options.AllowHTTP,
	}
}

// Resolve maps specifier, written in the template at importer, to a module
// source. Relative specifiers resolve against the importer directory, aliased
// ones against the alias target, and bare ones against the importer
// directory and then each module root.
func (r *Resolver) Resolve(ctx context.Context, specifier, importer string) (module.Source, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	unresolved := &module.UnresolvedError{Specifier: specifier, Importer: importer}

	spec := strings.TrimSpace(specifier)
	if spec == "" {
		return nil, unresolved
	}

	if isRemote(spec) {
		if !r.allowRemote {
			return nil, unresolved
		}
		return module.SourceFromURL(spec), nil
	}

	if r.fs == nil {
		return nil, errors.New("module resolver: filesystem is nil")
	}

	for _, candidate := range r.candidates(spec, importer) {
		if name, ok := r.probe(candidate); ok {
			return module.SourceFromFS(name), nil
		}
	}
	return nil, unresolved
}

func (r *Resolver) candidates(spec, importer string) []string {
	importerDir := path.Dir(strings.TrimPrefix(importer, "/"))

	switch {
	case isRelative(spec):
		return []string{path.Join(importerDir, spec)}
	case strings.HasPrefix(spec, "/"):
		return []string{strings.TrimPrefix(path.Clean(spec), "/")}
	}

	if target, ok := r.expandAlias(spec); ok {
		return []string{target}
	}

	out := []string{path.Join(importerDir, spec)}
	for _, root := range r.roots {
		out = append(out, path.Join(root, spec))
	}
	return out
}

func (r *Resolver) expandAlias(spec string) (string, bool) {
	for _, a := range r.aliases {
		if spec == a.prefix {
			return a.dir, true
		}
		if !strings.HasPrefix(spec, a.prefix) {
			continue
		}
		rest := spec[len(a.prefix):]
		if !strings.HasSuffix(a.prefix, "/") && !strings.HasPrefix(rest, "/") {
			continue
		}
		return path.Join(a.dir, rest), true
	}
	return "", false
}

// probe returns the first existing file for candidate: the candidate itself,
// candidate plus each extension, then an index file inside it.
func (r *Resolver) probe(candidate string) (string, bool) {
	name := path.Clean(candidate)
	if escapesRoot(name) {
		return "", false
	}

	if r.isFile(name) {
		return name, true
	}
	for _, ext := range r.extensions {
		if r.isFile(name + ext) {
			return name + ext, true
		}
	}
	for _, ext := range r.extensions {
		index := path.Join(name, indexName+ext)
		if r.isFile(index) {
			return index, true
		}
	}
	return "", false
}

func (r *Resolver) isFile(name string) bool {
	info, err := fs.Stat(r.fs, name)
	if err != nil {
		return false
	}
	return info.Mode().IsRegular()
}

func isRelative(spec string) bool {
	return spec == "." || spec == ".." || strings.HasPrefix(spec, "./") || strings.HasPrefix(spec, "../")
}

func isRemote(spec string) bool {
	return strings.HasPrefix(spec, "http://") || strings.HasPrefix(spec, "https://")
}

func escapesRoot(name string) bool {
	return name == ".." || strings.HasPrefix(name, "../")
}

func cleanDir(dir string) string {
	cleaned := path.Clean(strings.TrimSpace(strings.ReplaceAll(dir, "\\", "/")))
	return strings.TrimPrefix(cleaned, "./")
}
