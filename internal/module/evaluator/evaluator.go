package evaluator

import (
	"context"
	"errors"
	"fmt"
	"io/fs"
	"net/url"
	"sort"
	"strings"
	"sync"

	"github.com/goliatone/go-liquid-schemas/pkg/module"
)

// Decoder turns one document format into a module value.
type Decoder interface {
	Name() string
	Extensions() []string
	Decode(ctx context.Context, doc module.Document) (module.Value, error)
}

// Option configures the registry before construction.
type Option func(*config)

type config struct {
	globals    map[string]any
	templateFS fs.FS
	decoders   []Decoder
}

// WithGlobals seeds the context available to templated modules.
func WithGlobals(data map[string]any) Option {
	return func(cfg *config) {
		if len(data) == 0 {
			return
		}
		if cfg.globals == nil {
			cfg.globals = make(map[string]any, len(data))
		}
		for key, value := range data {
			cfg.globals[strings.TrimSpace(key)] = value
		}
	}
}

// WithTemplateFS lets templated modules include other files from files.
func WithTemplateFS(files fs.FS) Option {
	return func(cfg *config) {
		cfg.templateFS = files
	}
}

// WithDecoder registers an additional decoder. Its extensions take
// precedence over the built-in ones.
func WithDecoder(decoder Decoder) Option {
	return func(cfg *config) {
		if decoder != nil {
			cfg.decoders = append(cfg.decoders, decoder)
		}
	}
}

// Registry implements module.Evaluator by dispatching on the document
// extension.
type Registry struct {
	mu       sync.RWMutex
	decoders map[string]Decoder
}

var _ module.Evaluator = (*Registry)(nil)

// New returns a registry with the JSON, YAML, TOML and templated JSON
// decoders installed.
func New(options ...Option) *Registry {
	cfg := &config{}
	for _, opt := range options {
		if opt == nil {
			continue
		}
		opt(cfg)
	}

	r := &Registry{decoders: make(map[string]Decoder)}
	r.install(JSONDecoder{})
	r.install(YAMLDecoder{})
	r.install(TOMLDecoder{})
	r.install(NewTemplateDecoder(cfg.templateFS, cfg.globals))
	for _, d := range cfg.decoders {
		r.install(d)
	}
	return r
}

func (r *Registry) install(d Decoder) {
	for _, ext := range d.Extensions() {
		r.decoders[normalizeExt(ext)] = d
	}
}

// Register adds a decoder. Extensions already claimed by another decoder
// return an error.
func (r *Registry) Register(d Decoder) error {
	if d == nil {
		return errors.New("module evaluator: decoder is required")
	}
	exts := d.Extensions()
	if len(exts) == 0 {
		return fmt.Errorf("module evaluator: decoder %q declares no extensions", d.Name())
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	for _, ext := range exts {
		if existing, ok := r.decoders[normalizeExt(ext)]; ok {
			return fmt.Errorf("module evaluator: extension %q already handled by %q", ext, existing.Name())
		}
	}
	r.install(d)
	return nil
}

// Extensions returns the handled extensions, longest first.
func (r *Registry) Extensions() []string {
	r.mu.RLock()
	defer r.mu.RUnlock()

	exts := make([]string, 0, len(r.decoders))
	for ext := range r.decoders {
		exts = append(exts, ext)
	}
	sortLongestFirst(exts)
	return exts
}

// Evaluate decodes doc and exposes the document value as the default export.
// Documents that decode to nothing report a *module.MissingExportError.
func (r *Registry) Evaluate(ctx context.Context, doc module.Document) (module.Module, error) {
	if err := ctx.Err(); err != nil {
		return module.Module{}, err
	}

	location := doc.Location()
	decoder, err := r.lookup(location)
	if err != nil {
		return module.Module{}, err
	}

	value, err := decoder.Decode(ctx, doc)
	switch {
	case errors.Is(err, module.ErrEmptyDocument):
		return module.Module{}, &module.MissingExportError{Module: location, Export: module.DefaultExport}
	case err != nil:
		return module.Module{}, fmt.Errorf("module evaluator: %s %s: %w", decoder.Name(), location, err)
	case value == nil:
		return module.Module{}, &module.MissingExportError{Module: location, Export: module.DefaultExport}
	}

	return module.Module{
		Location: location,
		Exports:  map[string]module.Value{module.DefaultExport: value},
	}, nil
}

func (r *Registry) lookup(location string) (Decoder, error) {
	name := strings.ToLower(location)
	if u, err := url.Parse(location); err == nil && u.Scheme != "" && u.Path != "" {
		name = strings.ToLower(u.Path)
	}

	r.mu.RLock()
	defer r.mu.RUnlock()

	var (
		match   Decoder
		longest int
	)
	for ext, d := range r.decoders {
		if strings.HasSuffix(name, ext) && len(ext) > longest {
			match, longest = d, len(ext)
		}
	}
	if match == nil {
		return nil, fmt.Errorf("module evaluator: no decoder for %q", extensionOf(name))
	}
	return match, nil
}

func normalizeExt(ext string) string {
	ext = strings.ToLower(strings.TrimSpace(ext))
	if ext != "" && !strings.HasPrefix(ext, ".") {
		ext = "." + ext
	}
	return ext
}

func extensionOf(name string) string {
	base := name[strings.LastIndex(name, "/")+1:]
	if idx := strings.Index(base, "."); idx >= 0 {
		return base[idx:]
	}
	return base
}

func sortLongestFirst(exts []string) {
	sort.Slice(exts, func(i, j int) bool {
		if len(exts[i]) == len(exts[j]) {
			return exts[i] < exts[j]
		}
		return len(exts[i]) > len(exts[j])
	})
}
